// ruleflow/pkg/api/server.go

package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"rulehub/ruleflow/pkg/dsl"
	"rulehub/ruleflow/pkg/logging"
	"rulehub/ruleflow/pkg/model"
	"rulehub/ruleflow/pkg/runtime"
	"rulehub/ruleflow/pkg/store"
)

// Server is the inbound HTTP trigger surface. It is deliberately thin: the
// CRUD backend owns rule management; this exposes triggering, rule-DSL
// validation and read access to the audit trail.
type Server struct {
	engine *runtime.Engine
	store  store.Store
	router *gin.Engine
}

func NewServer(engine *runtime.Engine, st store.Store) *Server {
	gin.SetMode(gin.ReleaseMode)
	s := &Server{
		engine: engine,
		store:  st,
		router: gin.New(),
	}
	s.router.Use(gin.Recovery())

	s.router.GET("/health", s.handleHealth)

	v1 := s.router.Group("/api/v1")
	v1.POST("/trigger", s.handleTrigger)
	v1.POST("/rules/validate", s.handleValidate)
	v1.GET("/rules", s.handleListRules)
	v1.GET("/rules/:id/executions", s.handleListExecutions)
	v1.GET("/activity", s.handleListActivity)

	return s
}

func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) Run(port int) error {
	addr := fmt.Sprintf(":%d", port)
	logging.Logger.Info().Str("addr", addr).Msg("API server starting")
	return s.router.Run(addr)
}

func (s *Server) handleHealth(c *gin.Context) {
	if err := s.store.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// handleTrigger runs one batch for an inbound event and returns every
// execution record, including failed ones.
func (s *Server) handleTrigger(c *gin.Context) {
	var event model.TriggerEvent
	if err := c.ShouldBindJSON(&event); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if event.EventType == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "eventType is required"})
		return
	}

	ctx := c.Request.Context()
	rules, err := s.store.GetActiveRules(ctx, store.Filter{}, 0)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ectx, trigger := runtime.BuildContext(ctx, s.store, event)
	results := s.engine.ExecuteRules(ctx, rules, ectx, trigger)

	c.JSON(http.StatusOK, gin.H{
		"eventType": event.EventType,
		"rules":     len(results),
		"results":   results,
	})
}

type validateRequest struct {
	DSL string `json:"dsl"`
}

// handleValidate gives rule-authoring surfaces parse feedback without
// executing anything.
func (s *Server) handleValidate(c *gin.Context) {
	var req validateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	parsed, err := dsl.Parse(req.DSL)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"valid": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"valid":      true,
		"conditions": len(parsed.Conditions),
		"actions":    len(parsed.Actions),
	})
}

func (s *Server) handleListRules(c *gin.Context) {
	rules, err := s.store.GetActiveRules(c.Request.Context(), store.Filter{Tags: c.QueryArray("tag")}, 0)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"rules": rules})
}

func (s *Server) handleListExecutions(c *gin.Context) {
	records, err := s.store.ListExecutions(c.Request.Context(), c.Param("id"), 50)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"executions": records})
}

func (s *Server) handleListActivity(c *gin.Context) {
	entries, err := s.store.ListActivity(c.Request.Context(), 50)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"activity": entries})
}
