package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/marmos91/dittomds/internal/controlplane/api/auth"
	"github.com/marmos91/dittomds/internal/controlplane/api/handlers"
	apiMiddleware "github.com/marmos91/dittomds/internal/controlplane/api/middleware"
	"github.com/marmos91/dittomds/internal/logger"
	"github.com/marmos91/dittomds/pkg/catalog"
)

// Coordinator is the part of the layout coordinator the API drives.
type Coordinator interface {
	handlers.PoolNotifier
	handlers.StateSource
}

// Deps are the components served by the API.
type Deps struct {
	Coordinator Coordinator

	// Workers is the pNFS operation dispatcher. Optional; without it the
	// threads setting is not routed.
	Workers handlers.WorkerPool

	// Catalog is the storage-class catalog. Optional; without it the catalog
	// routes are not routed and readiness fails.
	Catalog catalog.Store
}

// NewRouter creates and configures the chi router with all middleware and routes.
//
// The router is configured with:
//   - Request ID middleware for request tracking
//   - Real IP extraction for proper client identification
//   - Custom request logging using the internal logger
//   - Panic recovery to prevent server crashes
//   - Request timeout to prevent hung requests
//
// Routes:
//   - GET /health - Liveness probe
//   - GET /health/ready - Readiness probe (catalog reachable)
//   - POST /api/v1/pools/{pool}/ready - Pool ready notification (pool + admin)
//   - POST /api/v1/transfers/finished - Mover finished notification (pool + admin)
//   - POST /api/v1/pools/{pool}/movers/{id}/kill - Kill a mover (admin only)
//   - GET /api/v1/devices, /sessions, /info - Door state (admin only)
//   - GET|PUT /api/v1/settings/threads - pNFS worker limit (admin only)
//   - /api/v1/catalog/* - Storage-class catalog management (admin only)
//
// A nil jwtService disables authentication on every route.
func NewRouter(deps Deps, jwtService *auth.JWTService) http.Handler {
	r := chi.NewRouter()

	// Middleware stack - order matters
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	healthHandler := handlers.NewHealthHandler(healthChecker(deps.Catalog))
	r.Route("/health", func(r chi.Router) {
		r.Get("/", healthHandler.Liveness)
		r.Get("/ready", healthHandler.Readiness)
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/health", http.StatusTemporaryRedirect)
	})

	requireRole := func(r chi.Router, roles ...string) {
		if jwtService == nil {
			return
		}
		r.Use(apiMiddleware.JWTAuth(jwtService))
		r.Use(apiMiddleware.RequireRole(roles...))
	}

	poolHandler := handlers.NewPoolHandler(deps.Coordinator)

	r.Route("/api/v1", func(r chi.Router) {
		// Notifications from data servers
		r.Group(func(r chi.Router) {
			requireRole(r, auth.RolePool, auth.RoleAdmin)

			r.Post("/pools/{pool}/ready", poolHandler.Ready)
			r.Post("/transfers/finished", poolHandler.TransferFinished)
		})

		// Admin routes
		r.Group(func(r chi.Router) {
			requireRole(r, auth.RoleAdmin)

			r.Post("/pools/{pool}/movers/{id}/kill", poolHandler.KillMover)

			stateHandler := handlers.NewStateHandler(deps.Coordinator, deps.Workers)
			r.Get("/devices", stateHandler.Devices)
			r.Get("/sessions", stateHandler.Sessions)
			r.Get("/info", stateHandler.Info)

			if deps.Workers != nil {
				settingsHandler := handlers.NewSettingsHandler(deps.Workers)
				r.Route("/settings/threads", func(r chi.Router) {
					r.Get("/", settingsHandler.GetThreads)
					r.Put("/", settingsHandler.PutThreads)
				})
			}

			if deps.Catalog != nil {
				catalogHandler := handlers.NewCatalogHandler(deps.Catalog)
				r.Route("/catalog", func(r chi.Router) {
					r.Get("/", catalogHandler.List)
					r.Get("/{fileID}", catalogHandler.Get)
					r.Put("/{fileID}", catalogHandler.Put)
					r.Delete("/{fileID}", catalogHandler.Delete)
				})
			}
		})
	})

	return r
}

// healthChecker avoids handing a typed nil store to the health handler.
func healthChecker(store catalog.Store) handlers.HealthChecker {
	if store == nil {
		return nil
	}
	return store
}

// isHealthPath returns true if the request path is a healthcheck endpoint.
func isHealthPath(path string) bool {
	return path == "/health" || strings.HasPrefix(path, "/health/")
}

// requestLogger logs each request using the internal logger.
// Healthcheck requests are logged at DEBUG level to reduce noise.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := middleware.GetReqID(r.Context())

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		logArgs := []any{
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			logger.DurationMs(logger.Duration(start)),
		}

		if isHealthPath(r.URL.Path) {
			logger.Debug("API request completed", logArgs...)
		} else {
			logger.Info("API request completed", logArgs...)
		}
	})
}
