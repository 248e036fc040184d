// api/router.go

package api

import (
	"time"

	"github.com/gin-gonic/gin"

	"hotelac/internal/auth"
	"hotelac/internal/handlers"
	"hotelac/internal/logger"
	"hotelac/middleware"
)

// Handlers 路由依赖的全部接口实现
type Handlers struct {
	AC      *handlers.ACHandler
	Room    *handlers.RoomHandler
	Auth    *handlers.AuthHandler
	Monitor *handlers.MonitorHandler
	WS      *handlers.WSHandler
}

// SetupRouter 组装路由
func SetupRouter(h Handlers, authSvc *auth.Service) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Cors())

	// 请求日志
	router.Use(func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		c.Next()
		logger.Info("[%s] %s %s %v %d", c.Request.Method, path, c.ClientIP(), time.Since(start), c.Writer.Status())
	})

	router.POST("/auth/login", h.Auth.Login)

	// 顾客空调控制面板
	panel := router.Group("/panel")
	{
		panel.POST("/poweron", h.AC.PowerOn)
		panel.POST("/poweroff", h.AC.PowerOff)
		panel.POST("/changespeed", h.AC.SetSpeed)
		panel.POST("/changetarget", h.AC.SetTarget)
		panel.GET("/status/:roomID", h.AC.Status)
	}

	// 前台,需要登录
	reception := router.Group("/reception", middleware.Auth(authSvc))
	{
		reception.POST("/checkin", h.Room.CheckIn)
		reception.POST("/checkout", h.Room.CheckOut)
		reception.GET("/details/:roomID", h.Room.Details)
		reception.GET("/bills/:roomID", h.Room.Bills)
		reception.GET("/billpdf/:billNo", h.Room.BillPDF)
	}

	// 运行监控,需要登录
	mon := router.Group("/monitor", middleware.Auth(authSvc))
	{
		mon.GET("/status", h.Monitor.Status)
		mon.GET("/rooms", h.AC.List)
		mon.GET("/queues", h.AC.Queues)
	}

	// websocket 监控推送
	router.GET("/ws/monitor", h.WS.Stream)

	return router
}
