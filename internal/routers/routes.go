package routers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"collabedit/internal/auth"
	"collabedit/internal/handlers"
	"collabedit/internal/metrics"
)

// Deps carries everything the router mounts.
type Deps struct {
	JWT      *auth.JWT
	Auth     *handlers.AuthHandler
	Rooms    *handlers.RoomHandler
	Snippets *handlers.SnippetHandler
	Executor *handlers.ExecutorHandler
	WS       *handlers.WSHandler

	CORSOrigin string
}

func New(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{d.CORSOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))
	r.Use(metrics.Middleware)

	r.Get("/healthz", handlers.Health)
	r.Get("/readyz", handlers.Ready)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/register", d.Auth.Register)
		r.Post("/auth/login", d.Auth.Login)
		r.With(d.JWT.Middleware).Get("/auth/me", d.Auth.Me)

		r.Route("/rooms", func(r chi.Router) {
			r.Get("/", d.Rooms.List)
			r.Get("/{roomId}", d.Rooms.Get)
			r.With(d.JWT.Middleware).Post("/", d.Rooms.Create)
			r.With(d.JWT.Middleware).Post("/{roomId}/join", d.Rooms.Join)
		})

		r.Route("/snippets", func(r chi.Router) {
			r.With(d.JWT.OptionalMiddleware).Post("/", d.Snippets.Create)
			r.Get("/{id}", d.Snippets.Get)
			r.With(d.JWT.Middleware).Get("/", d.Snippets.List)
			r.With(d.JWT.Middleware).Delete("/{id}", d.Snippets.Delete)
		})

		r.Post("/execute", d.Executor.Execute)
	})

	r.Get("/ws", d.WS.Collab)

	return r
}
