package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/keyfort/keyfort/internal/auth"
	keymiddleware "github.com/keyfort/keyfort/internal/middleware"
	"github.com/keyfort/keyfort/internal/services/identity"
)

// AdminRole gates the /admin routes.
const AdminRole = "admin"

// RouterOptions controls the construction of the HTTP router.
// The zero value is valid; sensible defaults are applied where fields are not set.
type RouterOptions struct {
	Identity      *identity.Service
	Codec         *auth.TokenCodec
	CORSOptions   *cors.Options
	Middleware    []func(http.Handler) http.Handler
	HealthHandler http.HandlerFunc
	ExtraRoutes   func(chi.Router)
}

// DefaultCORSOptions returns the shared development CORS policy.
func DefaultCORSOptions() cors.Options {
	return cors.Options{
		AllowedOrigins: []string{
			"http://localhost:5173",
			"http://127.0.0.1:5173",
		},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{
			"Content-Type",
			"Authorization",
		},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}
}

func defaultHealthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// requestIDHeader echoes the request id assigned by chi back to the client
// so failures can be correlated with server logs.
func requestIDHeader(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if reqID := middleware.GetReqID(r.Context()); reqID != "" {
			w.Header().Set("X-Request-Id", reqID)
		}
		next.ServeHTTP(w, r)
	})
}

// NewRouter assembles a chi.Router with shared middleware, CORS policy, and
// the auth and user handlers mounted. The router can be tailored via
// RouterOptions for CLI usage, tests, or other entrypoints.
func NewRouter(opts RouterOptions) chi.Router {
	r := chi.NewRouter()

	// Baseline middleware shared across entrypoints.
	r.Use(middleware.RequestID)
	r.Use(requestIDHeader)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	corsCfg := DefaultCORSOptions()
	if opts.CORSOptions != nil {
		corsCfg = *opts.CORSOptions
	}
	r.Use(cors.Handler(corsCfg))

	// Apply custom middleware passed from the caller.
	for _, mw := range opts.Middleware {
		if mw != nil {
			r.Use(mw)
		}
	}

	healthHandler := opts.HealthHandler
	if healthHandler == nil {
		healthHandler = defaultHealthHandler
	}
	r.Get("/health", healthHandler)

	if opts.Identity != nil {
		// Public endpoints: no token required.
		r.Post("/auth/register", HandleRegister(opts.Identity))
		r.Post("/auth/login", HandleLogin(opts.Identity))
		r.Get("/users", HandleListUsers(opts.Identity))
		r.Get("/users/{id}", HandleGetUser(opts.Identity))

		// Everything below requires a valid bearer token.
		if opts.Codec != nil {
			authn := keymiddleware.NewAuthnMiddleware(opts.Codec)

			r.Group(func(pr chi.Router) {
				pr.Use(authn)
				pr.Get("/me", HandleMe(opts.Identity))
			})

			r.Group(func(ar chi.Router) {
				ar.Use(authn)
				ar.Use(keymiddleware.RequireRole(AdminRole))
				ar.Get("/admin/users", HandleAdminListUsers(opts.Identity))
			})
		}
	}

	if opts.ExtraRoutes != nil {
		opts.ExtraRoutes(r)
	}

	return r
}

// NewH2CHandler wraps the shared router with an h2c server to provide
// HTTP/2 over cleartext during development.
func NewH2CHandler(opts RouterOptions) http.Handler {
	return h2c.NewHandler(NewRouter(opts), &http2.Server{})
}
