package server

import (
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ops-desk/mission-control/internal/delegate"
	"github.com/ops-desk/mission-control/internal/qa"
	"github.com/ops-desk/mission-control/internal/queue"
	"github.com/ops-desk/mission-control/internal/store"
	"github.com/ops-desk/mission-control/internal/tailoring"
)

// Deps are the constructed components the HTTP surface exposes. Everything
// is injected; the server owns no state of its own.
type Deps struct {
	Orchestrator *tailoring.Orchestrator
	Renderer     *tailoring.Renderer
	QA           *qa.Service
	Queue        *queue.Queue
	History      *store.HistoryRepo
	Tasks        *store.TaskRepo
	Runner       *delegate.Runner
	PublicDir    string
	Logger       *zap.Logger
}

// Server is the gin front of the tailoring pipeline.
type Server struct {
	engine *gin.Engine
	deps   Deps
	logger *zap.Logger
}

func New(deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(requestLogger(deps.Logger))
	engine.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://localhost:5173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	s := &Server{engine: engine, deps: deps, logger: deps.Logger}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.engine.GET("/healthcheck", s.healthcheck)

	if s.deps.PublicDir != "" {
		s.engine.Static("/cv", filepath.Join(s.deps.PublicDir, "cv"))
	}

	api := s.engine.Group("/api")
	{
		api.POST("/cv/generate", s.analyzeJob)
		api.POST("/cv/generate-full", s.generateFull)
		api.POST("/cv/pdf", s.renderCV)

		api.POST("/cv/qa", s.submitQA)
		api.GET("/cv/qa", s.getQA)
		api.PUT("/cv/qa", s.updateQA)

		api.POST("/cv/queue", s.submitQueue)
		api.GET("/cv/queue", s.listQueue)
		api.PATCH("/cv/queue", s.completeQueue)

		api.GET("/cv", s.listHistory)
		api.POST("/cv", s.createHistory)
		api.PATCH("/cv", s.updateHistory)
		api.DELETE("/cv", s.deleteHistory)

		api.GET("/runs/:id", s.runStatus)

		api.GET("/tasks", s.listTasks)
		api.POST("/tasks", s.createTask)
		api.PATCH("/tasks", s.updateTask)
		api.DELETE("/tasks", s.deleteTask)
	}
}

// Handler exposes the router for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run blocks serving HTTP on addr.
func (s *Server) Run(addr string) error {
	s.logger.Info("http server listening", zap.String("addr", addr))
	return s.engine.Run(addr)
}

func (s *Server) healthcheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func errorResponse(c *gin.Context, code int, err error) {
	c.JSON(code, gin.H{"error": err.Error()})
}
