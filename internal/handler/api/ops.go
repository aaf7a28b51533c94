package api

import (
	"strings"

	"github.com/labstack/echo/v4"

	"ChainPulse/internal/domain/repository"
	"ChainPulse/internal/usecase"
	"ChainPulse/pkg/config"
	xhttp "ChainPulse/pkg/http"
	"ChainPulse/pkg/logger"
)

// OpsHandler exposes the engine's observable state: health, fetcher
// stats, tracked predictions, and per-chain aggregates.
type OpsHandler struct {
	logger  *logger.Logger
	chains  []config.Chain
	source  repository.MarketSource
	store   repository.MarketStore
	tracker *usecase.PredictionTracker
}

func NewOpsHandler(cfg *config.Config, log *logger.Logger, source repository.MarketSource, store repository.MarketStore, tracker *usecase.PredictionTracker) *OpsHandler {
	return &OpsHandler{
		logger:  log,
		chains:  cfg.Chains,
		source:  source,
		store:   store,
		tracker: tracker,
	}
}

func (h *OpsHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", h.Health)

	g := e.Group("/api")
	g.GET("/stats", h.Stats)
	g.GET("/stats/:chain", h.ChainStats)
	g.GET("/predictions", h.Predictions)
}

// Health reports store reachability.
func (h *OpsHandler) Health(c echo.Context) error {
	if err := h.store.Health(c.Request().Context()); err != nil {
		h.logger.Error("health check failed", logger.Error(err))
		return xhttp.DataResponse(c, 503, map[string]string{"status": "unhealthy"})
	}
	return xhttp.SuccessResponse(c, map[string]string{"status": "ok"})
}

// Stats returns the fetcher's usage snapshot.
func (h *OpsHandler) Stats(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.source.Stats())
}

type chainStatsRequest struct {
	Chain string `param:"chain" validate:"required"`
	Hours int    `query:"hours" default:"24" validate:"min=1,max=168"`
}

// ChainStats returns price/volume aggregates for one tracked chain.
func (h *OpsHandler) ChainStats(c echo.Context) error {
	req := &chainStatsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	symbol := ""
	for _, chain := range h.chains {
		if strings.EqualFold(chain.Symbol, req.Chain) {
			symbol = chain.Symbol
			break
		}
	}
	if symbol == "" {
		return xhttp.NotFoundResponse(c, "unknown chain")
	}

	stats, err := h.store.ChainStats(c.Request().Context(), symbol, req.Hours)
	if err != nil {
		h.logger.Error("chain stats query failed",
			logger.String("chain", symbol), logger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	if stats == nil {
		return xhttp.NotFoundResponse(c, "no data in window")
	}
	return xhttp.SuccessResponse(c, stats)
}

// Predictions returns the tracked predictions with their outcomes.
func (h *OpsHandler) Predictions(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.tracker.Recent())
}
