// Package httpapi exposes the prediction and dashboard HTTP surfaces.
// Routing, CORS, and error-to-status mapping live here; all semantics live
// in the packages behind the handlers.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aerostat/flight-delay-service/internal/aggregate"
	"github.com/aerostat/flight-delay-service/internal/domain"
)

// PredictionService is the request orchestrator behind POST /predict.
type PredictionService interface {
	ModelLoaded() bool
	CheckReadiness(ctx context.Context) error
	Predict(ctx context.Context, in domain.RawInput) (domain.Outcome, error)
}

// Server wraps an http.Server with graceful shutdown.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewPredictionServer builds the prediction API: POST /predict plus the
// health, readiness, and metrics routes.
func NewPredictionServer(addr string, svc PredictionService, logger *slog.Logger) *Server {
	engine := newEngine()

	engine.POST("/predict", handlePredict(svc, logger))
	engine.GET("/healthz", handleHealth)
	engine.GET("/readyz", handleReady(svc))
	engine.GET("/metrics", prometheusHandler())

	return newServer(addr, engine, logger)
}

// NewStatsServer builds the dashboard API serving the aggregation report to
// the external visualization layer.
func NewStatsServer(addr string, report aggregate.Report, logger *slog.Logger) *Server {
	engine := newEngine()

	api := engine.Group("/api")
	{
		api.GET("/summary", func(c *gin.Context) { c.JSON(http.StatusOK, report.Summary) })
		api.GET("/flights-by-airline", func(c *gin.Context) { c.JSON(http.StatusOK, report.ByAirline) })
		api.GET("/delays-by-day", func(c *gin.Context) { c.JSON(http.StatusOK, report.DelayByDay) })
		api.GET("/status-totals", func(c *gin.Context) { c.JSON(http.StatusOK, report.StatusTotals) })
	}
	engine.GET("/healthz", handleHealth)
	engine.GET("/metrics", prometheusHandler())

	return newServer(addr, engine, logger)
}

// newEngine builds a gin engine with recovery and a permissive CORS policy;
// both surfaces are called from browser dashboards.
func newEngine() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(cors.New(cors.Config{
		AllowMethods:     []string{"POST", "GET"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		AllowCredentials: true,
		AllowOriginFunc: func(origin string) bool {
			return true
		},
		MaxAge: 12 * time.Hour,
	}))
	return engine
}

func newServer(addr string, handler http.Handler, logger *slog.Logger) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      handler,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
	}
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func handlePredict(svc PredictionService, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		// The degraded model-unavailable state short-circuits before any
		// body parsing.
		if !svc.ModelLoaded() {
			c.JSON(http.StatusInternalServerError, gin.H{"error": domain.ErrModelUnavailable.Error()})
			return
		}

		var in domain.RawInput
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "JSON request expected"})
			return
		}

		out, err := svc.Predict(c.Request.Context(), in)
		if err != nil {
			if domain.IsClientFault(err) {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			logger.Error("prediction failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

func handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

func handleReady(svc PredictionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := svc.CheckReadiness(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	}
}

func prometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()

	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
