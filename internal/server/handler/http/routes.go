package http

import (
	"net/http"

	"github.com/atinyakov/TodoKeeper/internal/metrics"
	"github.com/atinyakov/TodoKeeper/internal/middleware"
	"go.uber.org/zap"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// Handlers groups the resource handlers mounted by NewRouter.
type Handlers struct {
	Auth   *AuthHandler
	Todo   *TodoHandler
	User   *UserHandler
	Admin  *AdminHandler
	Book   *BookHandler
	Health *HealthHandler
}

// NewRouter constructs and returns an HTTP handler that serves
// the todo API.
//
// Routes:
//
//	POST   /auth/register, /auth/  → h.Auth.Register (JSON)
//	POST   /auth/token             → h.Auth.Token (form)
//	GET    /books, /books/{id}     → h.Book
//	GET    /healthz                → h.Health.Check
//	GET    /metrics                → Prometheus exposition (when m != nil)
//	*      /todos...               → h.Todo (bearer token)
//	*      /user...                → h.User (bearer token)
//	*      /admin/todos...         → h.Admin (bearer token + admin role)
//
// Middleware chain (applied in order):
//  1. Recoverer                 : turns panics into 500
//  2. WithRequestLogging(logger): logs each request with its request id
//  3. WithMetrics(m)            : per-route counters and latencies
//  4. BearerAuth / RequireAdmin : on protected groups only
func NewRouter(
	h Handlers,
	verifier middleware.Verifier,
	roles middleware.RoleLookup,
	m *metrics.Metrics,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.Recoverer)
	// Log each request and its metadata
	r.Use(middleware.WithRequestLogging(logger))
	if m != nil {
		r.Use(middleware.WithMetrics(m))
		r.Method(http.MethodGet, "/metrics", m.Handler())
	}

	jsonOnly := chiMiddleware.AllowContentType("application/json")
	formOnly := chiMiddleware.AllowContentType("application/x-www-form-urlencoded")

	// Public endpoints
	r.Get("/healthz", h.Health.Check)

	r.Route("/auth", func(r chi.Router) {
		r.With(jsonOnly).Post("/", h.Auth.Register)
		r.With(jsonOnly).Post("/register", h.Auth.Register)
		r.With(formOnly).Post("/token", h.Auth.Token)
	})

	r.Route("/books", func(r chi.Router) {
		r.Get("/", h.Book.List)
		r.Get("/{id}", h.Book.Get)
	})

	// Protected group: requires a valid bearer token
	r.Group(func(r chi.Router) {
		r.Use(middleware.BearerAuth(verifier, logger, m))

		r.Route("/todos", func(r chi.Router) {
			r.Get("/", h.Todo.List)
			r.With(jsonOnly).Post("/", h.Todo.Create)
			r.Get("/{id}", h.Todo.Get)
			r.With(jsonOnly).Put("/{id}", h.Todo.Update)
			r.Delete("/{id}", h.Todo.Delete)
		})

		r.Route("/user", func(r chi.Router) {
			r.Get("/profile", h.User.Profile)
			r.With(jsonOnly).Put("/password", h.User.ChangePassword)
			r.With(jsonOnly).Put("/phone", h.User.ChangePhone)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireAdmin(roles, logger))
			r.Get("/todos", h.Admin.ListTodos)
			r.Delete("/todos/{id}", h.Admin.DeleteTodo)
		})
	})

	return r
}
