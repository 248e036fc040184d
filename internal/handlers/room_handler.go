// internal/handlers/room_handler.go

package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"hotelac/internal/billing"
	"hotelac/internal/db"
	"hotelac/internal/utils"
)

// RoomHandler 前台入住退房与账务接口
type RoomHandler struct {
	billing *billing.Service
}

func NewRoomHandler(b *billing.Service) *RoomHandler {
	return &RoomHandler{billing: b}
}

// 入住请求
type CheckInRequest struct {
	RoomID  string `json:"room_id" binding:"required"`
	GuestID string `json:"guest_id" binding:"required"`
}

// 退房请求
type CheckOutRequest struct {
	RoomID string `json:"room_id" binding:"required"`
}

func billingStatus(err error) int {
	switch {
	case errors.Is(err, billing.ErrRoomNotFound):
		return http.StatusNotFound
	case errors.Is(err, billing.ErrAlreadyOccupied), errors.Is(err, billing.ErrNotOccupied):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// CheckIn 办理入住
func (h *RoomHandler) CheckIn(c *gin.Context) {
	var req CheckInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request", err)
		return
	}
	if err := h.billing.CheckIn(req.RoomID, req.GuestID); err != nil {
		fail(c, billingStatus(err), "check-in failed", err)
		return
	}
	ok(c, nil)
}

// CheckOut 办理退房并返回账单与详单
func (h *RoomHandler) CheckOut(c *gin.Context) {
	var req CheckOutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request", err)
		return
	}
	res, err := h.billing.CheckOut(req.RoomID)
	if err != nil {
		fail(c, billingStatus(err), "check-out failed", err)
		return
	}
	ok(c, res)
}

// Details 查询房间详单
func (h *RoomHandler) Details(c *gin.Context) {
	details, err := h.billing.Details(c.Param("roomID"))
	if err != nil {
		fail(c, billingStatus(err), "query details failed", err)
		return
	}
	ok(c, details)
}

// Bills 查询房间历史账单
func (h *RoomHandler) Bills(c *gin.Context) {
	bills, err := h.billing.Bills(c.Param("roomID"))
	if err != nil {
		fail(c, billingStatus(err), "query bills failed", err)
		return
	}
	ok(c, bills)
}

// BillPDF 导出账单 PDF
func (h *RoomHandler) BillPDF(c *gin.Context) {
	bill, details, err := h.billing.BillWithDetails(c.Param("billNo"))
	if err != nil {
		if errors.Is(err, db.ErrBillNotFound) {
			fail(c, http.StatusNotFound, "bill not found", err)
			return
		}
		fail(c, http.StatusInternalServerError, "load bill failed", err)
		return
	}
	data, err := utils.BillPDF(bill, details)
	if err != nil {
		fail(c, http.StatusInternalServerError, "render bill failed", err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename=bill-"+bill.BillNo+".pdf")
	c.Data(http.StatusOK, "application/pdf", data)
}
