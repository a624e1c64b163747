package api

import (
	"github.com/gin-gonic/gin"
	"github.com/validators/runner/internal/api/middleware"
	"go.uber.org/zap"
)

type Server struct {
	router *gin.Engine
}

func NewServer(
	executionAPI *ExecutionAPI,
	scriptAPI *ScriptAPI,
	commonAPI *CommonAPI,
	logger *zap.Logger,
) *Server {
	s := &Server{}

	s.router = gin.New()
	s.router.Use(gin.Recovery())
	s.router.Use(middleware.ErrorHandlingMiddleware(logger))
	s.router.Use(middleware.Cors())

	NewExecutionAPIWrap(executionAPI).BindAll(s.router)
	NewScriptAPIWrap(scriptAPI).BindAll(s.router)
	NewCommonAPIWrap(commonAPI).BindAll(s.router)

	return s
}

func (s *Server) Router() *gin.Engine {
	return s.router
}

func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}
