package app

import (
	"context"
	"net/http"

	"github.com/aliuyar1234/finhub/internal/apperrors"
	"github.com/aliuyar1234/finhub/internal/audit"
	"github.com/aliuyar1234/finhub/internal/auth"
	"github.com/aliuyar1234/finhub/internal/config"
	"github.com/aliuyar1234/finhub/internal/metrics"
	"github.com/aliuyar1234/finhub/internal/teams"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// RouterDeps are the handlers' collaborators. Ready reports whether the
// service can take traffic; it backs /readyz.
type RouterDeps struct {
	Config      *config.Config
	Teams       *teams.Service
	Auditor     *audit.Writer
	AuditReader teams.AuditLister
	Metrics     *metrics.Metrics
	Ready       func(ctx context.Context) error
}

// NewRouter creates and configures the Chi router with all middleware and routes
func NewRouter(deps RouterDeps) *chi.Mux {
	r := chi.NewRouter()
	cfg := deps.Config

	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{cfg.BaseURL}
	}

	r.Use(middleware.RealIP)
	r.Use(apperrors.RequestIDMiddleware)
	r.Use(LoggingMiddleware(deps.Metrics))
	r.Use(RecoveryMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", apperrors.RequestIDHeader},
		ExposedHeaders:   []string{apperrors.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(auth.AuthMiddleware(cfg.JWTSecret))

	r.Get("/healthz", handleHealthz)
	r.Get("/readyz", handleReadyz(deps.Ready))
	r.Handle("/metrics", deps.Metrics.Handler())

	svc := deps.Teams
	auditor := deps.Auditor

	r.Route("/api/v1/teams", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(auth.RequireAuth)

		r.With(TeamCreateRateLimit(cfg.TeamCreateRPM, deps.Metrics)).Post("/", teams.HandleCreate(svc, auditor))
		r.Get("/", teams.HandleList(svc))

		r.Route("/{team_id}", func(r chi.Router) {
			r.Get("/access", teams.HandleAccess(svc))
			r.Get("/audit", teams.HandleListAudit(svc, deps.AuditReader))

			// Roles
			r.Get("/roles", teams.HandleListRoles(svc))
			r.Post("/roles", teams.HandleCreateRole(svc, auditor))
			r.Put("/roles/{role_id}", teams.HandleUpdateRole(svc, auditor))
			r.Delete("/roles/{role_id}", teams.HandleDeleteRole(svc, auditor))

			// Members
			r.Get("/members", teams.HandleListMembers(svc))
			r.Put("/members/{profile_id}", teams.HandleUpdateMemberRole(svc, auditor))
			r.Delete("/members/{profile_id}", teams.HandleRemoveMember(svc, auditor))
			r.Post("/leave", teams.HandleLeave(svc, auditor))

			// Invites
			r.Get("/invites", teams.HandleListInvites(svc))
			r.Post("/invites", teams.HandleCreateInvite(svc, auditor))
			r.Delete("/invites/{invite_id}", teams.HandleCancelInvite(svc, auditor))
		})
	})

	// Invites addressed to the caller
	r.Route("/api/v1/invites", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(auth.RequireAuth)

		r.Get("/", teams.HandleListMyInvites(svc))
		r.Post("/{invite_id}/accept", teams.HandleAcceptInvite(svc, auditor))
		r.Post("/{invite_id}/decline", teams.HandleDeclineInvite(svc, auditor))
	})

	return r
}

// handleHealthz returns a simple liveness check
func handleHealthz(w http.ResponseWriter, r *http.Request) {
	apperrors.WriteSuccess(w, r, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// handleReadyz returns 200 when ready reports no error, 503 otherwise.
func handleReadyz(ready func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ready != nil {
			if err := ready(r.Context()); err != nil {
				apperrors.WriteServiceUnavailable(w, r, "Database connection failed")
				return
			}
		}

		apperrors.WriteSuccess(w, r, http.StatusOK, map[string]string{
			"status": "ready",
			"db":     "ok",
		})
	}
}
