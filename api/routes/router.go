package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/haneulpark/idolbase-backend/api/controllers"
	"github.com/haneulpark/idolbase-backend/api/middleware"
	"github.com/haneulpark/idolbase-backend/internal/audit"
	"github.com/haneulpark/idolbase-backend/internal/auth"
	"github.com/haneulpark/idolbase-backend/internal/catalog"
	"github.com/haneulpark/idolbase-backend/internal/moderation"
	"github.com/haneulpark/idolbase-backend/internal/notifications"
	"github.com/haneulpark/idolbase-backend/internal/social"
	"github.com/haneulpark/idolbase-backend/internal/submissions"
	"github.com/haneulpark/idolbase-backend/pkg/auth/session"
	"github.com/haneulpark/idolbase-backend/pkg/config"
	"github.com/haneulpark/idolbase-backend/pkg/logger"
	"github.com/haneulpark/idolbase-backend/pkg/redis"
)

type sessionManager interface {
	session.AccessSessionChecker
	Rotate(context.Context, string, string) (string, string, error)
	Revoke(context.Context, string) error
}

// RouterParams carries everything the HTTP surface depends on.
type RouterParams struct {
	Config               *config.Config
	Logger               *logger.Logger
	Redis                *redis.Client
	SessionManager       sessionManager
	AuthService          auth.Service
	RegisterService      auth.RegisterService
	AdminRegisterService auth.AdminRegisterService
	CatalogService       catalog.Service
	SubmissionsService   submissions.Service
	ModerationService    moderation.Service
	SocialService        social.Service
	NotificationsService notifications.Service
	AuditService         audit.Service
	Readiness            http.HandlerFunc
}

func NewRouter(p RouterParams) http.Handler {
	cfg := p.Config
	logg := p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.CORS(),
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		if p.Readiness != nil {
			r.Get("/ready", p.Readiness)
		} else {
			r.Get("/ready", controllers.HealthLive(cfg))
		}
	})

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
		r.Post("/validate", controllers.PublicValidate(logg))

		// The public catalog needs no session.
		r.Route("/v1/catalog/{kind}", func(r chi.Router) {
			r.Get("/", controllers.CatalogList(p.CatalogService, logg))
			r.Get("/{slug}", controllers.CatalogGet(p.CatalogService, logg))
			r.Get("/{slug}/history", controllers.CatalogHistory(p.AuditService, logg))
		})
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, p.Redis, logg)).Post("/login", controllers.AuthLogin(p.AuthService, logg))
		r.With(middleware.AuthRateLimit(registerPolicy, p.Redis, logg)).Post("/register", controllers.AuthRegister(p.RegisterService, p.AuthService, logg))
		r.Post("/logout", controllers.AuthLogout(p.SessionManager, cfg.JWT, logg))
		r.Post("/refresh", controllers.AuthRefresh(p.SessionManager, cfg.JWT, logg))
	})

	r.Route("/api/admin/v1/auth", func(r chi.Router) {
		if !cfg.App.IsProd() {
			r.Post("/register", controllers.AdminAuthRegister(p.AdminRegisterService, p.AuthService, cfg, logg))
		}
		r.With(middleware.AuthRateLimit(loginPolicy, p.Redis, logg)).Post("/login", controllers.AdminAuthLogin(p.AuthService, logg))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, p.SessionManager, logg))
		r.Use(middleware.Idempotency(p.Redis, logg))

		r.Get("/ping", controllers.PrivatePing())

		r.Post("/v1/submissions", controllers.CreateSubmission(p.SubmissionsService, logg))
		r.Post("/v1/edits", controllers.CreateEditRequest(p.SubmissionsService, logg))

		r.Route("/v1/friends", func(r chi.Router) {
			r.Get("/", controllers.ListFriends(p.SocialService, logg))
			r.Delete("/{userId}", controllers.RemoveFriend(p.SocialService, logg))
			r.Route("/requests", func(r chi.Router) {
				r.Post("/", controllers.SendFriendRequest(p.SocialService, logg))
				r.Get("/incoming", controllers.ListIncomingFriendRequests(p.SocialService, logg))
				r.Get("/count", controllers.PendingFriendRequestCount(p.SocialService, logg))
				r.Post("/{userId}/accept", controllers.AcceptFriendRequest(p.SocialService, logg))
				r.Post("/{userId}/decline", controllers.DeclineFriendRequest(p.SocialService, logg))
			})
		})

		r.Get("/v1/users/search", controllers.SearchUsers(p.SocialService, logg))

		r.Route("/v1/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(p.NotificationsService, logg))
			r.Get("/unread-count", controllers.UnreadNotificationCount(p.NotificationsService, logg))
			r.Post("/{notificationId}/read", controllers.MarkNotificationRead(p.NotificationsService, logg))
			r.Post("/read-batch", controllers.MarkNotificationsReadBatch(p.NotificationsService, logg))
			r.Post("/read-all", controllers.MarkAllNotificationsRead(p.NotificationsService, logg))
			r.Delete("/{notificationId}", controllers.DeleteNotification(p.NotificationsService, logg))
			r.Post("/delete-batch", controllers.DeleteNotificationsBatch(p.NotificationsService, logg))
		})

		r.Route("/v1/moderation", func(r chi.Router) {
			r.Use(middleware.RequireModerator(logg))

			r.Route("/submissions/{kind}", func(r chi.Router) {
				r.Get("/", controllers.ListPendingSubmissions(p.SubmissionsService, logg))
				r.Get("/{submissionId}", controllers.GetPendingSubmission(p.SubmissionsService, logg))
				r.Patch("/{submissionId}", controllers.AmendPendingSubmission(p.SubmissionsService, logg))
				r.Post("/{submissionId}/approve", controllers.ApproveSubmission(p.ModerationService, logg))
				r.Post("/{submissionId}/reject", controllers.RejectSubmission(p.ModerationService, logg))
			})

			r.Route("/edits", func(r chi.Router) {
				r.Get("/", controllers.ListEditRequests(p.SubmissionsService, logg))
				r.Get("/{requestId}", controllers.GetEditRequest(p.SubmissionsService, logg))
				r.Get("/{requestId}/diff", controllers.EditRequestDiff(p.SubmissionsService, logg))
				r.Post("/{requestId}/approve", controllers.ApproveEditRequest(p.ModerationService, logg))
				r.Post("/{requestId}/reject", controllers.RejectEditRequest(p.ModerationService, logg))
			})

			r.Post("/broadcast", controllers.ModerationBroadcast(p.ModerationService, logg))
			r.Get("/audit", controllers.ModerationAuditRecent(p.AuditService, logg))
		})
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, p.SessionManager, logg))
		r.Use(middleware.RequireRole("admin", logg))
		r.Get("/ping", controllers.AdminPing())
	})

	return r
}
