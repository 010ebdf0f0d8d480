package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/haneulpark/idolbase-backend/api/responses"
	"github.com/haneulpark/idolbase-backend/api/validators"
	"github.com/haneulpark/idolbase-backend/internal/audit"
	"github.com/haneulpark/idolbase-backend/internal/catalog"
	"github.com/haneulpark/idolbase-backend/pkg/enums"
	pkgerrors "github.com/haneulpark/idolbase-backend/pkg/errors"
	"github.com/haneulpark/idolbase-backend/pkg/logger"
)

func kindFromURL(r *http.Request) (enums.SubmissionKind, error) {
	kind, err := enums.ParseSubmissionKind(chi.URLParam(r, "kind"))
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "parse kind")
	}
	return kind, nil
}

// CatalogGet serves a single committed record by kind and slug.
func CatalogGet(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		kind, err := kindFromURL(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entity, err := svc.Get(r.Context(), kind, chi.URLParam(r, "slug"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, entity)
	}
}

// CatalogList serves a page of committed records for a kind.
func CatalogList(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		kind, err := kindFromURL(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", 50, 1, 200)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items, err := svc.List(r.Context(), kind, limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"items": items})
	}
}

// CatalogHistory serves the audit trail for a committed record.
func CatalogHistory(svc audit.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "audit service unavailable"))
			return
		}

		kind, err := kindFromURL(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entries, err := svc.HistoryForTarget(r.Context(), kind, chi.URLParam(r, "slug"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"entries": entries})
	}
}
