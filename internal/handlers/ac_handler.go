// internal/handlers/ac_handler.go

package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"hotelac/internal/ac"
)

// ACHandler 空调面板接口
type ACHandler struct {
	svc *ac.Service
}

func NewACHandler(svc *ac.Service) *ACHandler {
	return &ACHandler{svc: svc}
}

// 开关机请求
type PowerRequest struct {
	RoomID string `json:"room_id" binding:"required"`
}

// 风速调节请求
type SpeedRequest struct {
	RoomID string `json:"room_id" binding:"required"`
	Speed  string `json:"speed" binding:"required"` // LOW/MID/HIGH
}

// 模式与目标温度请求
type TargetRequest struct {
	RoomID string   `json:"room_id" binding:"required"`
	Mode   string   `json:"mode" binding:"required"` // COOL/HEAT
	Target *float64 `json:"target" binding:"required"`
}

// acStatus 把控制类错误映射为 HTTP 状态码
func acStatus(err error) int {
	switch {
	case errors.Is(err, ac.ErrRoomNotFound):
		return http.StatusNotFound
	case errors.Is(err, ac.ErrNotOccupied):
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}

// PowerOn 开机
func (h *ACHandler) PowerOn(c *gin.Context) {
	var req PowerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request", err)
		return
	}
	if err := h.svc.PowerOn(req.RoomID); err != nil {
		fail(c, acStatus(err), "power on failed", err)
		return
	}
	r, _ := h.svc.Status(req.RoomID)
	ok(c, r)
}

// PowerOff 关机
func (h *ACHandler) PowerOff(c *gin.Context) {
	var req PowerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request", err)
		return
	}
	if err := h.svc.PowerOff(req.RoomID); err != nil {
		fail(c, acStatus(err), "power off failed", err)
		return
	}
	r, _ := h.svc.Status(req.RoomID)
	ok(c, gin.H{"fee": r.Fee, "total_fee": r.TotalFee})
}

// SetSpeed 调节风速
func (h *ACHandler) SetSpeed(c *gin.Context) {
	var req SpeedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request", err)
		return
	}
	if err := h.svc.SetFanSpeed(req.RoomID, req.Speed); err != nil {
		fail(c, acStatus(err), "set speed failed", err)
		return
	}
	r, _ := h.svc.Status(req.RoomID)
	ok(c, r)
}

// SetTarget 调节模式与目标温度
func (h *ACHandler) SetTarget(c *gin.Context) {
	var req TargetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request", err)
		return
	}
	if err := h.svc.SetTarget(req.RoomID, req.Mode, *req.Target); err != nil {
		fail(c, acStatus(err), "set target failed", err)
		return
	}
	r, _ := h.svc.Status(req.RoomID)
	ok(c, r)
}

// Status 单房间状态查询
func (h *ACHandler) Status(c *gin.Context) {
	r, err := h.svc.Status(c.Param("roomID"))
	if err != nil {
		fail(c, http.StatusNotFound, "room not found", err)
		return
	}
	ok(c, r)
}

// List 全部房间状态
func (h *ACHandler) List(c *gin.Context) {
	ok(c, h.svc.List())
}

// Queues 调度队列视图
func (h *ACHandler) Queues(c *gin.Context) {
	serving, waiting := h.svc.Queues()
	ok(c, gin.H{"serving": serving, "waiting": waiting})
}
