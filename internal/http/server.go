// Package http serves the graphd HTTP API.
package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/piyushh2304/NOTIONGPT-sub000/internal/gaps"
	"github.com/piyushh2304/NOTIONGPT-sub000/internal/graph"
	"github.com/piyushh2304/NOTIONGPT-sub000/internal/logging"
	"github.com/piyushh2304/NOTIONGPT-sub000/internal/radar"
	"github.com/piyushh2304/NOTIONGPT-sub000/internal/tenant"
)

// HeaderOrgID carries the org scope when the orgId query parameter is absent.
const HeaderOrgID = "X-Org-ID"

// GraphBuilder builds the graph of an org scope.
type GraphBuilder interface {
	Build(ctx context.Context, orgID string) (*graph.Graph, error)
}

// Suggester returns documents related to draft text.
type Suggester interface {
	Suggest(ctx context.Context, orgID, text, currentDocID string) ([]radar.Suggestion, error)
}

// GapAnalyzer runs gap analysis for an org scope.
type GapAnalyzer interface {
	Analyze(ctx context.Context, orgID string) (*gaps.Analysis, error)
}

// Services are the handlers' dependencies.
type Services struct {
	Graph GraphBuilder
	Radar Suggester
	Gaps  GapAnalyzer
}

// Config holds HTTP server configuration.
type Config struct {
	Host string
	Port int
}

// Server provides the graph HTTP endpoints.
type Server struct {
	echo     *echo.Echo
	services Services
	logger   *zap.Logger
	config   *Config
}

// NewServer creates a new HTTP server.
func NewServer(services Services, logger *zap.Logger, cfg *Config) (*Server, error) {
	if services.Graph == nil || services.Radar == nil || services.Gaps == nil {
		return nil, fmt.Errorf("graph, radar and gaps services are required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required for request tracking and debugging")
	}
	if cfg == nil {
		cfg = &Config{Host: "localhost", Port: 9191}
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = &requestValidator{validate: tenant.Validator()}

	s := &Server{
		echo:     e,
		services: services,
		logger:   logger,
		config:   cfg,
	}
	e.HTTPErrorHandler = s.handleError

	e.Use(middleware.RequestID())
	e.Use(s.requestContext)
	e.Use(s.requestLog)
	e.Use(NewHTTPMetrics(logger).MetricsMiddleware())
	e.Use(middleware.Recover())

	s.registerRoutes()
	return s, nil
}

func (s *Server) registerRoutes() {
	s.echo.GET("/health", s.handleHealth)

	g := s.echo.Group("/graph")
	g.GET("/data", s.handleGraphData)
	g.POST("/suggest", s.handleSuggest)
	g.GET("/analyze-gaps", s.handleAnalyzeGaps)
}

// Mount serves h at path for all methods. Used for /metrics.
func (s *Server) Mount(path string, h http.Handler) {
	s.echo.Any(path, echo.WrapHandler(h))
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

// Start starts the HTTP server. It returns http.ErrServerClosed after
// Shutdown.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.logger.Info("starting http server", zap.String("addr", addr))
	return s.echo.Start(addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.echo.Shutdown(ctx)
}

// requestContext attaches the request id and the raw org scope to the
// request context. The scope is validated by the handlers.
func (s *Server) requestContext(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		if id := c.Response().Header().Get(echo.HeaderXRequestID); id != "" {
			ctx = logging.WithRequestID(ctx, id)
		}
		orgID := c.QueryParam("orgId")
		if orgID == "" {
			orgID = c.Request().Header.Get(HeaderOrgID)
		}
		if orgID != "" {
			ctx = tenant.ContextWithOrg(ctx, orgID)
			ctx = logging.WithOrgID(ctx, orgID)
		}
		c.SetRequest(c.Request().WithContext(ctx))
		return next(c)
	}
}

func (s *Server) requestLog(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)
		s.logger.Info("http request",
			append(logging.ContextFields(c.Request().Context()),
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Int("status", c.Response().Status),
				zap.Duration("duration", time.Since(start)))...)
		return err
	}
}

// handleError writes every error as {"error": "..."}.
func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	msg := http.StatusText(code)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		msg = fmt.Sprint(he.Message)
		if he.Internal != nil {
			err = he.Internal
		}
	}
	if code >= http.StatusInternalServerError {
		s.logger.Error("request failed",
			append(logging.ContextFields(c.Request().Context()),
				zap.String("path", c.Path()),
				zap.Int("status", code),
				zap.Error(err))...)
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}
	_ = c.JSON(code, ErrorResponse{Error: msg})
}

type requestValidator struct {
	validate *validator.Validate
}

func (v *requestValidator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}
