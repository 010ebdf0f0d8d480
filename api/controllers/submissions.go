package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/haneulpark/idolbase-backend/api/middleware"
	"github.com/haneulpark/idolbase-backend/api/responses"
	"github.com/haneulpark/idolbase-backend/api/validators"
	"github.com/haneulpark/idolbase-backend/internal/submissions"
	dbtypes "github.com/haneulpark/idolbase-backend/pkg/db/types"
	"github.com/haneulpark/idolbase-backend/pkg/diff"
	"github.com/haneulpark/idolbase-backend/pkg/enums"
	pkgerrors "github.com/haneulpark/idolbase-backend/pkg/errors"
	"github.com/haneulpark/idolbase-backend/pkg/logger"
)

type newSubmissionBody struct {
	Kind    string            `json:"kind" validate:"required"`
	Name    string            `json:"name" validate:"required,min=1,max=120"`
	Profile map[string]string `json:"profile"`
}

type editSubmissionBody struct {
	Kind       string                     `json:"kind" validate:"required"`
	TargetSlug string                     `json:"target_slug" validate:"required"`
	Changes    map[string]editFieldChange `json:"changes" validate:"required,min=1"`
	Reason     string                     `json:"reason,omitempty"`
}

type editFieldChange struct {
	Old string `json:"old"`
	New string `json:"new"`
}

func submitterFromContext(r *http.Request) (uuid.UUID, string, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, "", pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, "", pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user id")
	}
	return id, middleware.UsernameFromContext(r.Context()), nil
}

// CreateSubmission accepts a proposal for a brand-new idol or group record.
func CreateSubmission(svc submissions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "submissions service unavailable"))
			return
		}

		submitterID, submitterName, err := submitterFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body newSubmissionBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		kind, err := enums.ParseSubmissionKind(body.Kind)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "parse kind"))
			return
		}

		created, err := svc.SubmitNew(r.Context(), submissions.NewSubmissionRequest{
			Kind:          kind,
			Name:          body.Name,
			Profile:       body.Profile,
			SubmittedBy:   submitterID,
			SubmittedName: submitterName,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

// CreateEditRequest accepts field-level changes proposed against a committed
// record.
func CreateEditRequest(svc submissions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "submissions service unavailable"))
			return
		}

		submitterID, submitterName, err := submitterFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body editSubmissionBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		kind, err := enums.ParseSubmissionKind(body.Kind)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "parse kind"))
			return
		}

		changes := make(map[string]dbtypes.FieldChange, len(body.Changes))
		for field, change := range body.Changes {
			changes[field] = dbtypes.FieldChange{Old: change.Old, New: change.New}
		}

		created, err := svc.SubmitEdit(r.Context(), submissions.EditSubmissionRequest{
			Kind:          kind,
			TargetSlug:    body.TargetSlug,
			Changes:       changes,
			Reason:        body.Reason,
			SubmittedBy:   submitterID,
			SubmittedName: submitterName,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

// ListPendingSubmissions serves the moderator review queue for a kind.
func ListPendingSubmissions(svc submissions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "submissions service unavailable"))
			return
		}

		kind, err := kindFromURL(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items, err := svc.ListPending(r.Context(), kind)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"items": items})
	}
}

// GetPendingSubmission serves a single pending submission for review.
func GetPendingSubmission(svc submissions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "submissions service unavailable"))
			return
		}

		kind, err := kindFromURL(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		submissionID, err := uuid.Parse(chi.URLParam(r, "submissionId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid submission id"))
			return
		}

		item, err := svc.GetPending(r.Context(), kind, submissionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

type amendSubmissionBody struct {
	Name    *string           `json:"name,omitempty" validate:"omitempty,min=1,max=120"`
	Profile map[string]string `json:"profile,omitempty"`
}

// AmendPendingSubmission applies an in-place correction to a submission that
// is still awaiting review.
func AmendPendingSubmission(svc submissions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "submissions service unavailable"))
			return
		}

		kind, err := kindFromURL(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		submissionID, err := uuid.Parse(chi.URLParam(r, "submissionId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid submission id"))
			return
		}

		var body amendSubmissionBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.AmendPending(r.Context(), submissions.AmendSubmissionRequest{
			Kind:    kind,
			ID:      submissionID,
			Name:    body.Name,
			Profile: body.Profile,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}

// ListEditRequests serves the pending edit queue for moderators.
func ListEditRequests(svc submissions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "submissions service unavailable"))
			return
		}

		items, err := svc.ListEditRequests(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"items": items})
	}
}

// EditRequestDiff renders character-level spans for every changed field so
// the review screen can show inline insert/strike-through previews.
func EditRequestDiff(svc submissions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "submissions service unavailable"))
			return
		}

		requestID, err := uuid.Parse(chi.URLParam(r, "requestId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid request id"))
			return
		}

		item, err := svc.GetEditRequest(r.Context(), requestID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		fields := make(map[string][]diff.Span, len(item.Changes))
		for field, change := range item.Changes {
			fields[field] = diff.Chars(change.Old, change.New)
		}
		responses.WriteSuccess(w, map[string]any{
			"request_id": item.ID,
			"fields":     fields,
		})
	}
}

// GetEditRequest serves a single edit request for review.
func GetEditRequest(svc submissions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "submissions service unavailable"))
			return
		}

		requestID, err := uuid.Parse(chi.URLParam(r, "requestId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid request id"))
			return
		}

		item, err := svc.GetEditRequest(r.Context(), requestID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}
