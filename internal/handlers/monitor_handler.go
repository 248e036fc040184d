// internal/handlers/monitor_handler.go

package handlers

import (
	"github.com/gin-gonic/gin"

	"hotelac/internal/monitor"
)

// MonitorHandler 运行监控接口
type MonitorHandler struct {
	mon *monitor.Monitor
}

func NewMonitorHandler(m *monitor.Monitor) *MonitorHandler {
	return &MonitorHandler{mon: m}
}

// Status 当前监控快照
func (h *MonitorHandler) Status(c *gin.Context) {
	ok(c, h.mon.Status())
}
