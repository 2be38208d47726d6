package api

import (
	models "github.com/Dahilon/Atlas/internal/domain/models"
	domrepo "github.com/Dahilon/Atlas/internal/domain/repository"
	"github.com/Dahilon/Atlas/internal/usecase"
	xhttp "github.com/Dahilon/Atlas/pkg/http"
	xlogger "github.com/Dahilon/Atlas/pkg/logger"
	"github.com/Dahilon/Atlas/pkg/util"

	"github.com/labstack/echo/v4"
)

// InsightsEchoHandler implements Echo-based HTTP handlers following Clean Architecture.
type InsightsEchoHandler struct {
	logger   *xlogger.Logger
	agg      *usecase.InsightAggregator
	insights *usecase.CountryInsightsUseCase
	events   *usecase.EventsUseCase
}

func NewInsightsEchoHandler(logger *xlogger.Logger, agg *usecase.InsightAggregator, insights *usecase.CountryInsightsUseCase, events *usecase.EventsUseCase) *InsightsEchoHandler {
	return &InsightsEchoHandler{logger: logger, agg: agg, insights: insights, events: events}
}

func (h *InsightsEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/insights", h.Insights)
	g.GET("/insights/anomalies", h.Anomalies)
	g.GET("/insights/trend", h.Trend)
	g.GET("/insights/trends", h.Trends)
	g.GET("/insights/decomposition", h.Decomposition)
	g.GET("/tiers", h.Tiers)
	g.GET("/events", h.Events)
}

func (h *InsightsEchoHandler) Insights(c echo.Context) error {
	req := &models.InsightsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.insights.GetInsights(c.Request().Context(), usecase.GetInsightsParams{
		Country: req.Country,
		Window:  domrepo.NormalizeWindow(req.Window),
		Period:  req.Period,
	})
	if err != nil {
		h.logger.Error("insights usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=60")
	return xhttp.SuccessResponse(c, res)
}

func (h *InsightsEchoHandler) Anomalies(c echo.Context) error {
	req := &models.AnomaliesRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.agg.Anomalies(c.Request().Context(), req.Country, domrepo.NormalizeWindow(req.Window))
	if err != nil {
		h.logger.Error("anomalies usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *InsightsEchoHandler) Trend(c echo.Context) error {
	req := &models.TrendRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.agg.Trend(c.Request().Context(), req.Country, domrepo.NormalizeWindow(req.Window))
	if err != nil {
		h.logger.Error("trend usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *InsightsEchoHandler) Trends(c echo.Context) error {
	req := &models.TrendsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.agg.TrendsByCountry(c.Request().Context(), domrepo.NormalizeWindow(req.Window), req.Span)
	if err != nil {
		h.logger.Error("trends usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *InsightsEchoHandler) Decomposition(c echo.Context) error {
	req := &models.InsightsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.agg.Decomposition(c.Request().Context(), req.Country, domrepo.NormalizeWindow(req.Window), req.Period)
	if err != nil {
		h.logger.Error("decomposition usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	if res == nil {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundError("series too short for decomposition"))
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *InsightsEchoHandler) Tiers(c echo.Context) error {
	cfg, fitted := h.agg.TierConfig()
	if !fitted {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundError("tier boundaries not fitted yet"))
	}
	return xhttp.SuccessResponse(c, cfg)
}

func (h *InsightsEchoHandler) Events(c echo.Context) error {
	req := &models.EventsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	from, ok := util.ParseTime(req.From)
	if !ok {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError("invalid from timestamp"))
	}
	to, ok := util.ParseTime(req.To)
	if !ok {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError("invalid to timestamp"))
	}

	res, err := h.events.GetEvents(c.Request().Context(), usecase.GetEventsParams{
		Country: req.Country,
		From:    from,
		To:      to,
		Limit:   req.Limit,
	})
	if err != nil {
		h.logger.Error("events usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}
