// server/server.go

package server

import (
	"context"
	"fmt"
	"net/http"

	"hotelac/internal/logger"
)

// Server HTTP 服务封装
type Server struct {
	srv *http.Server
}

func New(handler http.Handler, host string, port int) *Server {
	return &Server{
		srv: &http.Server{
			Addr:    fmt.Sprintf("%s:%d", host, port),
			Handler: handler,
		},
	}
}

// Start 阻塞运行直至关闭
func (s *Server) Start() error {
	logger.Info("HTTP 服务启动于 %s", s.srv.Addr)
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop 优雅关闭
func (s *Server) Stop(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
