package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/zeebo/errs"
	"go.uber.org/zap"
)

var Error = errs.Class("http server")

type Config struct {
	Endpoint string `help:"访问地址" default:"http://localhost:8989"`
	Address  string `help:"监听地址" default:"127.0.0.1:8989"`
}

type Server struct {
	*gin.Engine
	httpSrv *http.Server
	logger  *zap.Logger
	config  Config
}

func NewServer(engine *gin.Engine, logger *zap.Logger, conf Config) *Server {
	s := &Server{
		Engine: engine,
		logger: logger,
		config: conf,
		httpSrv: &http.Server{
			Addr:              conf.Address,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
	s.httpSrv.Handler = s
	return s
}

// Start 阻塞直到服务关闭
func (s *Server) Start(ctx context.Context) error {
	s.logger.Sugar().Infof("http server start: %s; endpoint: %s", s.config.Address, s.config.Endpoint)
	if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return Error.Wrap(err)
	}
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	s.logger.Sugar().Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.httpSrv.Shutdown(ctx); err != nil {
		return Error.Wrap(err)
	}

	s.logger.Sugar().Info("Server exiting")
	return nil
}
