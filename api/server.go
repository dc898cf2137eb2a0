package api

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"go.uber.org/fx"

	"github.com/tomthoros/dash/config"
	"github.com/tomthoros/dash/utils/log"
	"github.com/tomthoros/dash/verify"
)

// Server 是 HTTP API 服务
type Server struct {
	srv      *http.Server
	listener net.Listener
}

// NewServer 创建 HTTP API 服务
func NewServer(addr string, svc *verify.Service) *Server {
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           NewRouter(svc, log.NewAccessLogger(nil)),
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Start 开始监听并在后台处理请求
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return errors.Wrapf(err, "listen on %s", s.srv.Addr)
	}
	s.listener = ln
	logger.Infof("API 服务监听 %s", ln.Addr())

	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf("API 服务异常退出: %v", err)
		}
	}()
	return nil
}

// Addr 返回实际监听的地址，Start 之前为 nil
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Stop 优雅地关闭服务
func (s *Server) Stop(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

// NewFxServer 为 fx 应用创建 HTTP API 服务，随应用启动和停止
func NewFxServer(lc fx.Lifecycle, opts *config.Options, svc *verify.Service) *Server {
	s := NewServer(opts.GetListenAddr(), svc)
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return s.Start()
		},
		OnStop: func(ctx context.Context) error {
			logger.Infof("关闭 API 服务")
			return s.Stop(ctx)
		},
	})
	return s
}

// Module 提供 HTTP API 服务，并确保它随应用启动
var Module = fx.Module("api",
	fx.Provide(NewFxServer),
	fx.Invoke(func(*Server) {}),
)

func init() {
	gin.SetMode(gin.ReleaseMode)
}
