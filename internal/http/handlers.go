package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/piyushh2304/NOTIONGPT-sub000/internal/gaps"
	"github.com/piyushh2304/NOTIONGPT-sub000/internal/graph"
	"github.com/piyushh2304/NOTIONGPT-sub000/internal/logging"
	"github.com/piyushh2304/NOTIONGPT-sub000/internal/tenant"
)

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

// handleGraphData answers an invalid or missing scope with an empty graph.
func (s *Server) handleGraphData(c echo.Context) error {
	ctx := c.Request().Context()
	orgID, err := tenant.OrgFromContext(ctx)
	if err != nil {
		s.logger.Debug("graph data without valid org scope", append(logging.ContextFields(ctx), zap.Error(err))...)
		return c.JSON(http.StatusOK, emptyGraph())
	}

	g, err := s.services.Graph.Build(ctx, orgID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to build graph").SetInternal(err)
	}
	return c.JSON(http.StatusOK, graphResponse(g))
}

func (s *Server) handleSuggest(c echo.Context) error {
	ctx := c.Request().Context()
	orgID, err := tenant.OrgFromContext(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var req SuggestRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body").SetInternal(err)
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body").SetInternal(err)
	}

	suggestions, err := s.services.Radar.Suggest(ctx, orgID, req.Text, req.CurrentDocID)
	if err != nil {
		if errors.Is(err, graph.ErrUpstream) {
			return echo.NewHTTPError(http.StatusBadGateway, "suggestion lookup unavailable").SetInternal(err)
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "suggestion lookup failed").SetInternal(err)
	}
	return c.JSON(http.StatusOK, suggestResponse(suggestions))
}

func (s *Server) handleAnalyzeGaps(c echo.Context) error {
	ctx := c.Request().Context()
	orgID, err := tenant.OrgFromContext(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	analysis, err := s.services.Gaps.Analyze(ctx, orgID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to analyze gaps").SetInternal(err)
	}
	resp := GapsResponse{ClustersCount: analysis.ClustersCount, Gaps: analysis.Gaps}
	if resp.Gaps == nil {
		resp.Gaps = []gaps.Suggestion{}
	}
	return c.JSON(http.StatusOK, resp)
}
