package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jobs/dcron/internal/api/middleware"
)

type Server struct {
	router *gin.Engine
}

func NewServer(
	taskAPI *TaskAPI,
	nodeAPI *NodeAPI,
	commonAPI *CommonAPI,
	logger *zap.Logger,
) *Server {
	s := &Server{}

	s.router = gin.New()
	s.router.Use(gin.Recovery())
	s.router.Use(middleware.RequestID())
	s.router.Use(middleware.ErrorHandlingMiddleware(logger, ErrBadRequest))
	s.router.Use(middleware.Cors())

	NewTaskAPIWrap(taskAPI).BindAll(s.router)
	NewNodeAPIWrap(nodeAPI).BindAll(s.router)
	NewCommonAPIWrap(commonAPI).BindAll(s.router)

	return s
}

func (s *Server) Router() *gin.Engine {
	return s.router
}

func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}
