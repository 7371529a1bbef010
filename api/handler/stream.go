package handler

import (
	"github.com/fasthttp/websocket"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fleetgen/backend/internal/services/bridge"
	"github.com/fleetgen/backend/pkg/httpcontext"
)

type StreamHandler struct {
	baseHandler
	bridge   *bridge.Bridge
	upgrader websocket.FastHTTPUpgrader
}

func NewStreamHandler(b *bridge.Bridge, adapter *httpcontext.Adapter, logger *zap.Logger) *StreamHandler {
	return &StreamHandler{
		baseHandler: newBaseHandler(adapter, logger),
		bridge:      b,
		upgrader: websocket.FastHTTPUpgrader{
			CheckOrigin: func(*fasthttp.RequestCtx) bool { return true },
		},
	}
}

// @Summary Real-time update stream
// @Tags stream
// @Router /ws [get]
func (h *StreamHandler) Subscribe(ctx *fasthttp.RequestCtx) {
	filter := string(ctx.QueryArgs().Peek("id"))
	if filter == "" {
		filter = bridge.FilterAny
	}

	if err := h.upgrader.Upgrade(ctx, func(conn *websocket.Conn) {
		h.bridge.Handle(conn, filter)
	}); err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
	}
}
