package http

import (
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
	"github.com/saudkhanbpk/EMS-sub000/internal/handler/http/middleware"
	"github.com/saudkhanbpk/EMS-sub000/internal/pkg/jwt"
)

func NewRouter(JWTService jwt.Service, sessionHandler SessionHandler, statsHandler StatsHandler) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "ems-attendance"),
		slog.String("version", "v1.0.0"),
		slog.String("env", "development"),
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

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired(JWTService.JWTAuth()))

			r.Route("/sessions", func(r chi.Router) {
				r.Post("/check-in", sessionHandler.CheckIn)
				r.Post("/check-out", sessionHandler.CheckOut)
				r.Post("/breaks/start", sessionHandler.StartBreak)
				r.Post("/breaks/end", sessionHandler.EndBreak)
				r.Get("/open", sessionHandler.GetOpen)
				r.Get("/", sessionHandler.List)
			})

			r.Route("/stats", func(r chi.Router) {
				r.Get("/daily", statsHandler.Daily)
				r.Get("/weekly", statsHandler.Weekly)
				r.Get("/monthly", statsHandler.Monthly)
				r.Get("/range", statsHandler.Range)

				// Admin only
				r.Group(func(r chi.Router) {
					r.Use(middleware.AdminOnly)
					r.Get("/all", statsHandler.RangeAllUsers)
				})
			})
		})
	})
	return r
}
