package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/haneulpark/idolbase-backend/internal/auth"
	"github.com/haneulpark/idolbase-backend/internal/users"
	"github.com/haneulpark/idolbase-backend/pkg/config"
	"github.com/haneulpark/idolbase-backend/pkg/db/models"
	"github.com/haneulpark/idolbase-backend/pkg/enums"
)

type stubAdminRegisterService struct {
	user *models.User
	err  error
}

func (s stubAdminRegisterService) Register(ctx context.Context, req auth.AdminRegisterRequest) (*models.User, error) {
	return s.user, s.err
}

func TestAdminAuthRegisterSuccess(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Env: "dev", Port: "0"}}
	user := &models.User{
		ID:          uuid.New(),
		Email:       "mod@example.com",
		Username:    "mod_haneul",
		DisplayName: "Haneul",
		Role:        enums.MemberRoleModerator,
		IsActive:    true,
	}

	handler := AdminAuthRegister(
		stubAdminRegisterService{user: user},
		stubAuthService{adminResp: &auth.AdminLoginResponse{
			AccessToken:  "access-token",
			RefreshToken: "refresh-token",
			User:         users.FromModel(user),
		}},
		cfg,
		nil,
	)

	body := []byte(`{"username":"mod_haneul","display_name":"Haneul","email":"mod@example.com","password":"Secret#12","role":"moderator"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/admin/v1/auth/register", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", resp.Code)
	}
	if got := resp.Header().Get("X-IDB-Token"); got != "access-token" {
		t.Fatalf("expected x-idb-token header set to access-token got %s", got)
	}

	var envelope struct {
		Data struct {
			User *users.UserDTO `json:"user"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.User == nil || envelope.Data.User.Email != user.Email {
		t.Fatalf("expected user in payload got %+v", envelope.Data.User)
	}
}

func TestAdminAuthRegisterInvalidPayload(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Env: "dev", Port: "0"}}
	handler := AdminAuthRegister(stubAdminRegisterService{}, stubAuthService{}, cfg, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/admin/v1/auth/register", bytes.NewReader([]byte(`{"password":"Secret#12"}`)))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestAdminAuthRegisterDisabledInProd(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Env: "prod", Port: "0"}}
	handler := AdminAuthRegister(nil, nil, cfg, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/admin/v1/auth/register", bytes.NewReader([]byte(`{"email":"mod@example.com","password":"Secret#12"}`)))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", resp.Code)
	}
}
