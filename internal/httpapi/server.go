// Package httpapi exposes travel advice, conditions and civic reports over REST.
package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"CityPulse/internal/config"
	"CityPulse/internal/domain"
)

// TravelAdvisor answers trip requests and exposes the live snapshot.
type TravelAdvisor interface {
	GetTravelAdvice(ctx context.Context, trip domain.TripRequest) (domain.TravelAdvice, error)
	Conditions(ctx context.Context) domain.ConditionsSnapshot
}

// IssueDescriber classifies a photographed civic issue.
type IssueDescriber interface {
	DescribeIssue(ctx context.Context, img domain.Image) (domain.CivicIssueDescription, error)
}

// ReportService files and lists civic reports.
type ReportService interface {
	Submit(ctx context.Context, in domain.NewReport) (domain.Report, error)
	History(ctx context.Context, submittedBy string, limit int) ([]domain.Report, error)
}

// Services groups the use cases behind the API. Nil services disable their routes.
type Services struct {
	Travel  TravelAdvisor
	Issues  IssueDescriber
	Reports ReportService
}

// Server bundles router and dependencies for the REST API.
type Server struct {
	cfg      config.ServerConfig
	services Services
	logger   *slog.Logger
	engine   *gin.Engine
}

// New constructs a server with routes and middleware.
func New(cfg config.ServerConfig, services Services, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(accessLogMiddleware(logger))
	engine.Use(corsMiddleware())

	server := &Server{cfg: cfg, services: services, logger: logger, engine: engine}
	server.registerRoutes()
	return server
}

// Engine exposes the underlying gin engine (for tests).
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Run starts the HTTP server and blocks until shutdown.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	s.logger.Info("http api listening", "addr", s.cfg.Addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) registerRoutes() {
	s.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := s.engine.Group("/api/v1")
	if s.cfg.BearerToken != "" {
		v1.Use(bearerAuthMiddleware(s.cfg.BearerToken))
	}
	if s.cfg.MaxUploadBytes > 0 {
		v1.Use(bodyLimitMiddleware(s.cfg.MaxUploadBytes))
	}

	if s.services.Travel != nil {
		v1.POST("/advice", s.handleAdvice)
		v1.GET("/conditions", s.handleConditions)
	}
	if s.services.Issues != nil {
		v1.POST("/issues/describe", s.handleDescribeIssue)
	}
	if s.services.Reports != nil {
		v1.POST("/reports", s.handleSubmitReport)
		v1.GET("/reports", s.handleReportHistory)
	}
}

// requestContext bounds a handler's outbound work.
func (s *Server) requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	if s.cfg.RequestTimeout <= 0 {
		return context.WithCancel(c.Request.Context())
	}
	return context.WithTimeout(c.Request.Context(), s.cfg.RequestTimeout)
}

// writeError maps domain error kinds onto status codes. Generation failures get
// a generic message so the caller can retry without seeing backend details.
func (s *Server) writeError(c *gin.Context, err error, generationMsg string) {
	switch {
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrInvalidImage):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrGeneration):
		s.logger.Error("generation failed", "path", c.FullPath(), "err", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": generationMsg})
	default:
		s.logger.Error("request failed", "path", c.FullPath(), "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
