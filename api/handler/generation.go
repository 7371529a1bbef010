package handler

import (
	"errors"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fleetgen/backend/domain"
	"github.com/fleetgen/backend/pkg/httpcontext"
	generationUC "github.com/fleetgen/backend/usecase/generation"
)

// ControlResult mirrors the soft-failure contract of the generation
// control surface: state violations come back as code 400 inside a
// successful response, not as transport errors.
type ControlResult struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type GenerationHandler struct {
	baseHandler
	engine *generationUC.Engine
}

func NewGenerationHandler(engine *generationUC.Engine, adapter *httpcontext.Adapter, logger *zap.Logger) *GenerationHandler {
	return &GenerationHandler{
		baseHandler: newBaseHandler(adapter, logger),
		engine:      engine,
	}
}

// @Summary Start vehicle generation
// @Tags generation
// @Router /api/v1/generation/start [post]
func (h *GenerationHandler) Start(ctx *fasthttp.RequestCtx) {
	if actor := h.actor(ctx); actor == "" {
		return
	}

	if err := h.engine.Start(); err != nil {
		if errors.Is(err, domain.ErrGenerationRunning) {
			h.respondSuccess(ctx, http.StatusOK, ControlResult{Code: 400, Message: "Generation is already running"})
			return
		}
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, ControlResult{Code: 200, Message: "Vehicle generation started"})
}

// @Summary Stop vehicle generation
// @Tags generation
// @Router /api/v1/generation/stop [post]
func (h *GenerationHandler) Stop(ctx *fasthttp.RequestCtx) {
	if actor := h.actor(ctx); actor == "" {
		return
	}

	if err := h.engine.Stop(); err != nil {
		if errors.Is(err, domain.ErrGenerationNotRunning) {
			h.respondSuccess(ctx, http.StatusOK, ControlResult{Code: 400, Message: "Generation is not running"})
			return
		}
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, ControlResult{Code: 200, Message: "Vehicle generation stopped"})
}

// @Summary Generation status
// @Tags generation
// @Router /api/v1/generation/status [get]
func (h *GenerationHandler) Status(ctx *fasthttp.RequestCtx) {
	h.respondSuccess(ctx, http.StatusOK, h.engine.GetStatus())
}
