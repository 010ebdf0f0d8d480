package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/haneulpark/idolbase-backend/internal/audit"
	"github.com/haneulpark/idolbase-backend/internal/auth"
	"github.com/haneulpark/idolbase-backend/internal/moderation"
	"github.com/haneulpark/idolbase-backend/internal/notifications"
	"github.com/haneulpark/idolbase-backend/internal/social"
	"github.com/haneulpark/idolbase-backend/internal/submissions"
	pkgAuth "github.com/haneulpark/idolbase-backend/pkg/auth"
	"github.com/haneulpark/idolbase-backend/pkg/auth/session"
	"github.com/haneulpark/idolbase-backend/pkg/config"
	"github.com/haneulpark/idolbase-backend/pkg/db/models"
	"github.com/haneulpark/idolbase-backend/pkg/enums"
	"github.com/haneulpark/idolbase-backend/pkg/logger"
	"github.com/haneulpark/idolbase-backend/pkg/redis"
)

type stubAuthService struct{}

func (stubAuthService) Login(ctx context.Context, req auth.LoginRequest) (*auth.LoginResponse, error) {
	return &auth.LoginResponse{}, nil
}

func (stubAuthService) AdminLogin(ctx context.Context, req auth.LoginRequest) (*auth.AdminLoginResponse, error) {
	return &auth.AdminLoginResponse{}, nil
}

type stubRegisterService struct{}

func (stubRegisterService) Register(ctx context.Context, req auth.RegisterRequest) error {
	return nil
}

type stubAdminRegisterService struct{}

func (stubAdminRegisterService) Register(ctx context.Context, req auth.AdminRegisterRequest) (*models.User, error) {
	return &models.User{}, nil
}

type stubSessionManager struct{}

func (stubSessionManager) HasSession(ctx context.Context, accessID string) (bool, error) {
	return true, nil
}

func (stubSessionManager) Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error) {
	return "", "", nil
}

func (stubSessionManager) Revoke(ctx context.Context, accessID string) error {
	return nil
}

type stubCatalogService struct{}

func (stubCatalogService) Get(ctx context.Context, kind enums.SubmissionKind, slug string) (*models.Entity, error) {
	return &models.Entity{Slug: slug, Name: "stub"}, nil
}

func (stubCatalogService) List(ctx context.Context, kind enums.SubmissionKind, limit int) ([]models.Entity, error) {
	return nil, nil
}

type stubSubmissionsService struct{}

func (stubSubmissionsService) SubmitNew(ctx context.Context, req submissions.NewSubmissionRequest) (*models.PendingSubmission, error) {
	return &models.PendingSubmission{}, nil
}

func (stubSubmissionsService) SubmitEdit(ctx context.Context, req submissions.EditSubmissionRequest) (*models.EditRequest, error) {
	return &models.EditRequest{}, nil
}

func (stubSubmissionsService) GetPending(ctx context.Context, kind enums.SubmissionKind, id uuid.UUID) (*models.PendingSubmission, error) {
	return &models.PendingSubmission{}, nil
}

func (stubSubmissionsService) ListPending(ctx context.Context, kind enums.SubmissionKind) ([]models.PendingSubmission, error) {
	return nil, nil
}

func (stubSubmissionsService) AmendPending(ctx context.Context, req submissions.AmendSubmissionRequest) (*models.PendingSubmission, error) {
	return &models.PendingSubmission{}, nil
}

func (stubSubmissionsService) GetEditRequest(ctx context.Context, id uuid.UUID) (*models.EditRequest, error) {
	return &models.EditRequest{}, nil
}

func (stubSubmissionsService) ListEditRequests(ctx context.Context) ([]models.EditRequest, error) {
	return nil, nil
}

type stubModerationService struct{}

func (stubModerationService) ApproveSubmission(ctx context.Context, kind enums.SubmissionKind, submissionID uuid.UUID, moderator moderation.Moderator) (*models.Entity, error) {
	return &models.Entity{}, nil
}

func (stubModerationService) RejectSubmission(ctx context.Context, kind enums.SubmissionKind, submissionID uuid.UUID, moderator moderation.Moderator, reason string) error {
	return nil
}

func (stubModerationService) ApproveEditRequest(ctx context.Context, requestID uuid.UUID, moderator moderation.Moderator) (*models.Entity, error) {
	return &models.Entity{}, nil
}

func (stubModerationService) RejectEditRequest(ctx context.Context, requestID uuid.UUID, moderator moderation.Moderator, reason string) error {
	return nil
}

func (stubModerationService) Broadcast(ctx context.Context, moderator moderation.Moderator, title, message string) error {
	return nil
}

type stubSocialService struct{}

func (stubSocialService) SendRequest(ctx context.Context, fromID, toID uuid.UUID) (*models.FriendRequest, error) {
	return &models.FriendRequest{}, nil
}

func (stubSocialService) Accept(ctx context.Context, selfID, fromID uuid.UUID) error {
	return nil
}

func (stubSocialService) Decline(ctx context.Context, selfID, fromID uuid.UUID) error {
	return nil
}

func (stubSocialService) RemoveFriend(ctx context.Context, selfID, otherID uuid.UUID) error {
	return nil
}

func (stubSocialService) ListFriends(ctx context.Context, ownerID uuid.UUID) ([]models.FriendshipEdge, error) {
	return nil, nil
}

func (stubSocialService) ListIncoming(ctx context.Context, userID uuid.UUID, limit int) ([]models.FriendRequest, error) {
	return nil, nil
}

func (stubSocialService) PendingCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	return 0, nil
}

func (stubSocialService) SearchUsers(ctx context.Context, query string, limit int) ([]social.UserSummary, error) {
	return nil, nil
}

type stubNotificationsService struct{}

func (stubNotificationsService) Create(ctx context.Context, params notifications.CreateParams) (*models.Notification, error) {
	return &models.Notification{}, nil
}

func (stubNotificationsService) Broadcast(ctx context.Context, params notifications.BroadcastParams) (*notifications.BroadcastResult, error) {
	return &notifications.BroadcastResult{}, nil
}

func (stubNotificationsService) List(ctx context.Context, params notifications.ListParams) (*notifications.ListResult, error) {
	return &notifications.ListResult{}, nil
}

func (stubNotificationsService) UnreadCount(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	return 0, nil
}

func (stubNotificationsService) MarkRead(ctx context.Context, recipientID, notificationID uuid.UUID) error {
	return nil
}

func (stubNotificationsService) MarkReadBatch(ctx context.Context, recipientID uuid.UUID, ids []uuid.UUID) (int64, error) {
	return 0, nil
}

func (stubNotificationsService) MarkAllRead(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	return 0, nil
}

func (stubNotificationsService) Delete(ctx context.Context, recipientID, notificationID uuid.UUID) error {
	return nil
}

func (stubNotificationsService) DeleteBatch(ctx context.Context, recipientID uuid.UUID, ids []uuid.UUID) (int64, error) {
	return 0, nil
}

type stubAuditService struct{}

func (stubAuditService) Record(ctx context.Context, entry audit.Entry) error {
	return nil
}

func (stubAuditService) HistoryForTarget(ctx context.Context, targetType enums.SubmissionKind, targetID string) ([]models.AuditLogEntry, error) {
	return nil, nil
}

func (stubAuditService) Recent(ctx context.Context, limit int) ([]models.AuditLogEntry, error) {
	return nil, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{Secret: "secret", Issuer: "issuer", ExpirationMinutes: 60},
	}
}

func newTestRouter(cfg *config.Config) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("debug"), Output: io.Discard})
	return NewRouter(RouterParams{
		Config:               cfg,
		Logger:               logg,
		Redis:                (*redis.Client)(nil),
		SessionManager:       stubSessionManager{},
		AuthService:          stubAuthService{},
		RegisterService:      stubRegisterService{},
		AdminRegisterService: stubAdminRegisterService{},
		CatalogService:       stubCatalogService{},
		SubmissionsService:   stubSubmissionsService{},
		ModerationService:    stubModerationService{},
		SocialService:        stubSocialService{},
		NotificationsService: stubNotificationsService{},
		AuditService:         stubAuditService{},
	})
}

func buildToken(t *testing.T, cfg *config.Config, role enums.MemberRole) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{
		UserID:   uuid.New(),
		Username: "haneul",
		Role:     role,
		JTI:      session.NewAccessID(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestPrivateGroupRejectsMissingJWT(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/ping", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestPrivateGroupSucceedsWithJWT(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	req := httptest.NewRequest(http.MethodGet, "/api/ping", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.MemberRoleMember))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for private ping got %d", resp.Code)
	}
}

func TestPublicCatalogNeedsNoSession(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/public/v1/catalog/idol/kim-minji", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for public catalog got %d", resp.Code)
	}
}

func TestPublicCatalogRejectsUnknownKind(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/public/v1/catalog/album/some-slug", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown kind got %d", resp.Code)
	}
}

func TestModerationGroupRequiresModeratorRole(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	member := httptest.NewRequest(http.MethodGet, "/api/v1/moderation/edits", nil)
	member.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.MemberRoleMember))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, member)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for member got %d", resp.Code)
	}

	moderatorReq := httptest.NewRequest(http.MethodGet, "/api/v1/moderation/edits", nil)
	moderatorReq.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.MemberRoleModerator))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, moderatorReq)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for moderator got %d", resp.Code)
	}
}

func TestModerationGroupAdmitsAdmin(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/moderation/submissions/idol", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.MemberRoleAdmin))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin got %d", resp.Code)
	}
}

func TestAdminGroupRequiresAdminRole(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	moderatorReq := httptest.NewRequest(http.MethodGet, "/api/admin/ping", nil)
	moderatorReq.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.MemberRoleModerator))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, moderatorReq)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for moderator got %d", resp.Code)
	}

	admin := httptest.NewRequest(http.MethodGet, "/api/admin/ping", nil)
	admin.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.MemberRoleAdmin))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, admin)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin got %d", resp.Code)
	}
}

func TestFriendRoutesWired(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/friends", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.MemberRoleMember))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for friend list got %d", resp.Code)
	}

	count := httptest.NewRequest(http.MethodGet, "/api/v1/friends/requests/count", nil)
	count.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.MemberRoleMember))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, count)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for request count got %d", resp.Code)
	}
}

func TestAdminRegisterHiddenInProd(t *testing.T) {
	cfg := testConfig()
	cfg.App.Env = "prod"
	router := newTestRouter(cfg)

	req := httptest.NewRequest(http.MethodPost, "/api/admin/v1/auth/register", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusNotFound && resp.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected admin register to be unrouted in prod got %d", resp.Code)
	}
}

func TestHealthLive(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for liveness got %d", resp.Code)
	}
}

func TestMetricsEndpointExposed(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 from metrics scrape, got %d", resp.Code)
	}
	if body := resp.Body.String(); !strings.Contains(body, "go_goroutines") {
		t.Fatalf("expected runtime metrics in scrape output")
	}
}

func TestCORSAllowsConfiguredOrigin(t *testing.T) {
	router := newTestRouter(testConfig())

	req := httptest.NewRequest(http.MethodOptions, "/api/public/v1/catalog/idol/kim-minji", nil)
	req.Header.Set("Origin", "https://idolbase.app")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if got := resp.Header().Get("Access-Control-Allow-Origin"); got != "https://idolbase.app" {
		t.Fatalf("expected allowed origin echoed, got %q", got)
	}
}

func TestCORSRejectsUnknownOrigin(t *testing.T) {
	router := newTestRouter(testConfig())

	req := httptest.NewRequest(http.MethodOptions, "/api/public/v1/catalog/idol/kim-minji", nil)
	req.Header.Set("Origin", "https://evil.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if got := resp.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("expected no allow-origin header for unknown origin, got %q", got)
	}
}
