package api

import (
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/confaudit/confaudit/internal/api/handlers"
	"github.com/confaudit/confaudit/internal/observability/metrics"
	"github.com/confaudit/confaudit/pkg/constants"
)

// Router assembles the HTTP surface around the analysis pipeline.
type Router struct {
	analysisHandler *handlers.AnalysisHandler
	healthHandler   *handlers.HealthHandler
	metrics         *metrics.PrometheusMetrics
	logger          *logrus.Logger
}

// NewRouter creates the API router and its handlers.
func NewRouter(pm *metrics.PrometheusMetrics, logger *logrus.Logger) *Router {
	if logger == nil {
		logger = logrus.New()
	}
	if pm == nil {
		pm = metrics.NewPrometheusMetrics(logger)
	}

	return &Router{
		analysisHandler: handlers.NewAnalysisHandler(pm, logger),
		healthHandler:   handlers.NewHealthHandler(constants.AppVersion),
		metrics:         pm,
		logger:          logger,
	}
}

// SetupRoutes configures all routes and middleware.
func (router *Router) SetupRoutes() *mux.Router {
	r := mux.NewRouter()

	r.Use(RecoveryMiddleware(router.logger))
	r.Use(LoggingMiddleware(router.logger))
	r.Use(MetricsMiddleware(router.metrics))

	r.Handle("/metrics", router.metrics.Handler()).Methods("GET")

	api := r.PathPrefix(constants.APIPrefix).Subrouter()

	// Health endpoints
	health := api.PathPrefix("/health").Subrouter()
	health.HandleFunc("", router.healthHandler.GetHealth).Methods("GET")
	health.HandleFunc("/live", router.healthHandler.GetLiveness).Methods("GET")
	health.HandleFunc("/ready", router.healthHandler.GetReadiness).Methods("GET")
	health.HandleFunc("/version", router.healthHandler.GetVersion).Methods("GET")

	// Analysis endpoints
	api.HandleFunc("/analyze", router.analysisHandler.Analyze).Methods("POST")
	api.HandleFunc("/validate", router.analysisHandler.Validate).Methods("POST")

	return r
}
