package http

import (
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"

	"github.com/chronos-hq/timetrack-backend-go/internal/handler/http/middleware"
	"github.com/chronos-hq/timetrack-backend-go/internal/pkg/jwt"
)

func NewRouter(
	jwtService jwt.Service,
	timeLogHandler TimeLogHandler,
	regHandler RegularizationHandler,
	leaveHandler LeaveHandler,
	notifHandler NotificationHandler,
	sessionHandler SessionHandler,
) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "timetrack"),
		slog.String("version", "v1.0.0"),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {

		// SSE stream authenticates through its own short-lived token.
		r.Get("/events", notifHandler.Stream)

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(jwtService.JWTAuth()))
			r.Use(middleware.AuthRequired(jwtService.JWTAuth(), jwtService))

			r.Post("/logout", sessionHandler.Logout)

			r.Route("/timelogs", func(r chi.Router) {
				r.Post("/clock-in", timeLogHandler.ClockIn)
				r.Post("/{id}/clock-out", timeLogHandler.ClockOut)
				r.Get("/my", timeLogHandler.GetMyTimeLogs)
				r.Get("/{id}", timeLogHandler.Get)

				// Manager or owner only
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireManager)
					r.Get("/", timeLogHandler.List)
				})
			})

			r.Route("/regularizations", func(r chi.Router) {
				r.Post("/", regHandler.Submit)
				r.Get("/my", regHandler.GetMyRequests)
				r.Post("/{id}/clarification", regHandler.SubmitClarification)

				// Manager or owner only
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireManager)
					r.Get("/", regHandler.List)
					r.Post("/{id}/approve", regHandler.Approve)
					r.Post("/{id}/reject", regHandler.Reject)
					r.Post("/{id}/request-clarification", regHandler.RequestClarification)
				})
			})

			r.Route("/leaves", func(r chi.Router) {
				r.Post("/requests", leaveHandler.CreateRequest)
				r.Get("/requests/my", leaveHandler.GetMyRequests)
				r.Get("/balances/my", leaveHandler.GetMyBalances)

				// Manager or owner only
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireManager)
					r.Get("/requests", leaveHandler.List)
					r.Post("/requests/{id}/approve", leaveHandler.Approve)
					r.Post("/requests/{id}/reject", leaveHandler.Reject)
				})
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", notifHandler.List)
				r.Post("/{id}/read", notifHandler.MarkAsRead)
				r.Get("/sse-token", notifHandler.GetSSEToken)
			})
		})
	})
	return r
}
