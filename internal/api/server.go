// Package api serves the simulator's HTTP interface: a read-only status view
// and one POST endpoint per cluster operation.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"golang.org/x/time/rate"

	"github.com/developer-vif/openshift-workload-simulator/internal/cluster"
	"github.com/developer-vif/openshift-workload-simulator/internal/config"
	simerrors "github.com/developer-vif/openshift-workload-simulator/internal/errors"
	"github.com/developer-vif/openshift-workload-simulator/internal/observability"
)

// Server routes API requests to a Cluster.
type Server struct {
	cluster        *cluster.Cluster
	metrics        *observability.Metrics
	errorCollector *simerrors.ErrorCollector

	maxBodyBytes int64
	limiter      *rate.Limiter // nil when mutations are unlimited

	handler    http.Handler
	httpServer *http.Server
}

// NewServer builds the router and middleware chain. errCollector may be nil.
func NewServer(cfg *config.Config, c *cluster.Cluster, metrics *observability.Metrics, errCollector *simerrors.ErrorCollector) *Server {
	s := &Server{
		cluster:        c,
		metrics:        metrics,
		errorCollector: errCollector,
		maxBodyBytes:   cfg.MaxBodyBytes,
	}
	if cfg.MutationRate > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(cfg.MutationRate), cfg.MutationBurst)
	}

	router := mux.NewRouter()
	router.Use(loggingMiddleware, recoveryMiddleware, s.bodyLimitMiddleware, s.rateLimitMiddleware)

	router.HandleFunc("/api/status", s.handleStatus).Methods(http.MethodGet)
	router.HandleFunc("/api/summary", s.handleSummary).Methods(http.MethodGet)
	router.HandleFunc("/api/set_node_count", s.handleSetNodeCount).Methods(http.MethodPost)
	router.HandleFunc("/api/create_namespace", s.handleCreateNamespace).Methods(http.MethodPost)
	router.HandleFunc("/api/add_deployment", s.handleAddDeployment).Methods(http.MethodPost)
	router.HandleFunc("/api/scale_deployment", s.handleScaleDeployment).Methods(http.MethodPost)
	router.HandleFunc("/api/delete_deployment", s.handleDeleteDeployment).Methods(http.MethodPost)
	router.HandleFunc("/api/set_simulated_workload_factor", s.handleSetWorkloadFactor).Methods(http.MethodPost)

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeAction(w, http.StatusNotFound, false, "Route not found", simerrors.ErrNotFound)
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeAction(w, http.StatusMethodNotAllowed, false, "Method not allowed", "")
	})

	s.handler = router
	if len(cfg.CORSOrigins) > 0 {
		s.handler = cors.New(cors.Options{
			AllowedOrigins: cfg.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Content-Type"},
		}).Handler(router)
	}

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           s.handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return s
}

// Handler returns the full middleware chain, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Addr returns the listen address; after Start it is the bound address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Start begins listening and serving HTTP in a background goroutine.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("api server listen: %w", err)
	}
	s.httpServer.Addr = ln.Addr().String()

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("api server exited", "error", err)
		}
	}()
	return nil
}

// Stop gracefully shuts down the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
