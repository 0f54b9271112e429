package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/benvon/careerontrack/internal/database"
	"github.com/benvon/careerontrack/internal/handlers"
	logpkg "github.com/benvon/careerontrack/internal/logger"
	"github.com/benvon/careerontrack/internal/middleware"
	"github.com/benvon/careerontrack/internal/models"
	"github.com/benvon/careerontrack/internal/services/auth"
	"github.com/gorilla/mux"
	"github.com/ulule/limiter/v3"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.uber.org/zap"
)

// ServiceName identifies the API in traces
const ServiceName = "careerontrack-api"

// Deps are everything the HTTP API needs
type Deps struct {
	Users  database.UserRepositoryInterface
	Goals  database.GoalRepositoryInterface
	Tokens *auth.TokenService

	// RateLimitStore backs the auth route limiter; nil uses a per-process memory store
	RateLimitStore limiter.Store
	RateLimit      string

	FrontendURL     string
	EnableHSTS      bool
	MaxRequestBytes int64
	RequestTimeout  time.Duration
	Tracing         bool
	HealthChecks    []handlers.DependencyCheck
	Logger          *zap.Logger
}

// NewRouter wires handlers and middleware into the API handler
func NewRouter(d Deps) (http.Handler, error) {
	if d.Users == nil || d.Goals == nil || d.Tokens == nil {
		return nil, errors.New("users, goals and tokens are required")
	}
	logger := logpkg.OrNop(d.Logger)

	store := d.RateLimitStore
	if store == nil {
		var err error
		if store, err = middleware.NewRateLimitStore(nil); err != nil {
			return nil, err
		}
	}
	rateLimitMW, err := middleware.RateLimit(store, d.RateLimit, logger)
	if err != nil {
		return nil, err
	}

	authHandler := handlers.NewAuthHandler(d.Users, d.Tokens, logger)
	usersHandler := handlers.NewUsersHandler(d.Users, logger)
	goalHandler := handlers.NewGoalHandler(d.Goals, logger)
	healthChecker := handlers.NewHealthChecker(d.HealthChecks...)
	requireAuth := middleware.Auth(d.Tokens, d.Users, logger)

	methodNotAllowed := jsonError(http.StatusMethodNotAllowed, models.ErrCodeBadRequest, "Method not allowed")

	r := mux.NewRouter()
	r.NotFoundHandler = jsonError(http.StatusNotFound, models.ErrCodeNotFound, "Route not found")
	r.MethodNotAllowedHandler = methodNotAllowed

	// gorilla/mux runs middleware in registration order, first is outermost
	if d.Tracing {
		r.Use(otelmux.Middleware(ServiceName))
	}
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging(logger))
	r.Use(middleware.SecurityHeaders(d.EnableHSTS))
	r.Use(middleware.ErrorHandler(logger))
	r.Use(middleware.Audit(logger))
	r.Use(middleware.MaxRequestSize(d.MaxRequestBytes))
	r.Use(middleware.ContentType)
	r.Use(middleware.Timeout(d.RequestTimeout))

	r.HandleFunc("/healthz", healthChecker.HealthCheck).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()

	// A method mismatch is forgotten once a later sibling subrouter is tried, so
	// every API subrouter answers 405 itself instead of leaving it to the root
	healthRouter := api.Path("/health").Subrouter()
	healthRouter.Methods("GET").HandlerFunc(healthChecker.APIHealth)
	healthRouter.MethodNotAllowedHandler = methodNotAllowed

	authRouter := api.PathPrefix("/auth").Subrouter()
	authRouter.MethodNotAllowedHandler = methodNotAllowed
	authRouter.Use(rateLimitMW)
	authHandler.RegisterRoutes(authRouter)

	usersRouter := api.PathPrefix("/users").Subrouter()
	usersRouter.MethodNotAllowedHandler = methodNotAllowed
	usersRouter.Use(requireAuth)
	usersHandler.RegisterRoutes(usersRouter)

	goalsRouter := api.PathPrefix("/goals").Subrouter()
	goalsRouter.MethodNotAllowedHandler = methodNotAllowed
	goalsRouter.Use(requireAuth)
	goalHandler.RegisterRoutes(goalsRouter)

	// CORS wraps the router so preflights are answered even though no route accepts OPTIONS
	return middleware.CORS(d.FrontendURL, logger)(r), nil
}

func jsonError(status int, code, message string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(models.ErrorResponse{Error: message, Code: code})
	})
}
