package handler

import (
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/tasktracker/api/transport"
	"github.com/fastygo/tasktracker/internal/infrastructure/monitor"
	"github.com/fastygo/tasktracker/pkg/httpcontext"
)

// HealthChecker is satisfied by *monitor.Monitor.
type HealthChecker interface {
	IsOnline() bool
	GetStatus() monitor.Status
}

type HealthHandler struct {
	baseHandler
	monitor HealthChecker
}

func NewHealthHandler(mon HealthChecker, adapter *httpcontext.Adapter, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		baseHandler: newBaseHandler(adapter, logger),
		monitor:     mon,
	}
}

// @Summary Health check
// @Tags health
// @Router /health [get]
func (h *HealthHandler) Check(ctx *fasthttp.RequestCtx) {
	status := h.monitor.GetStatus()
	payload := map[string]interface{}{
		"timestamp":  time.Now().UTC(),
		"last_check": status.LastCheck,
		"services":   status.Services,
	}

	if h.monitor.IsOnline() {
		h.respondSuccess(ctx, http.StatusOK, payload)
		return
	}
	payload["down"] = status.Down()
	h.respondJSON(ctx, http.StatusServiceUnavailable, transport.NewError("DEGRADED", "dependencies unhealthy").WithDetails(payload))
}
