package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/haneulpark/idolbase-backend/internal/submissions"
	"github.com/haneulpark/idolbase-backend/pkg/db/models"
	dbtypes "github.com/haneulpark/idolbase-backend/pkg/db/types"
	"github.com/haneulpark/idolbase-backend/pkg/diff"
)

type testSubmissionsService struct {
	submissions.Service

	getEditRequestFn func(ctx context.Context, id uuid.UUID) (*models.EditRequest, error)
}

func (s *testSubmissionsService) GetEditRequest(ctx context.Context, id uuid.UUID) (*models.EditRequest, error) {
	return s.getEditRequestFn(ctx, id)
}

func TestEditRequestDiffSpansChangedFields(t *testing.T) {
	requestID := uuid.New()
	svc := &testSubmissionsService{
		getEditRequestFn: func(ctx context.Context, id uuid.UUID) (*models.EditRequest, error) {
			if id != requestID {
				t.Fatalf("expected lookup of %s got %s", requestID, id)
			}
			return &models.EditRequest{
				ID: requestID,
				Changes: dbtypes.FieldChanges{
					"height": {Old: "160cm", New: "162cm"},
				},
			}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/moderation/edits/"+requestID.String()+"/diff", nil)
	rc := chi.NewRouteContext()
	rc.URLParams.Add("requestId", requestID.String())
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rc))

	resp := httptest.NewRecorder()
	EditRequestDiff(svc, nil)(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}

	var envelope struct {
		Data struct {
			RequestID uuid.UUID              `json:"request_id"`
			Fields    map[string][]diff.Span `json:"fields"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.RequestID != requestID {
		t.Fatalf("expected request id echoed")
	}

	spans, ok := envelope.Data.Fields["height"]
	if !ok {
		t.Fatalf("expected spans for the changed field")
	}
	var oldText, newText string
	for _, span := range spans {
		if !span.Removed {
			newText += span.Value
		}
		if !span.Added {
			oldText += span.Value
		}
	}
	if oldText != "160cm" || newText != "162cm" {
		t.Fatalf("spans do not reassemble the change: old=%q new=%q", oldText, newText)
	}
}

func TestEditRequestDiffRejectsBadID(t *testing.T) {
	svc := &testSubmissionsService{
		getEditRequestFn: func(ctx context.Context, id uuid.UUID) (*models.EditRequest, error) {
			t.Fatal("service must not be called for an invalid id")
			return nil, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/moderation/edits/not-a-uuid/diff", nil)
	rc := chi.NewRouteContext()
	rc.URLParams.Add("requestId", "not-a-uuid")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rc))

	resp := httptest.NewRecorder()
	EditRequestDiff(svc, nil)(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}
