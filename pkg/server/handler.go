package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	Service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{Service: s}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.Any("/mcp", gin.WrapH(NewMCPHandler(h.Service)))
	if h.Service.Metrics != nil {
		r.GET("/metrics", gin.WrapH(h.Service.Metrics.Handler()))
	}
	api := r.Group("/api")
	{
		api.GET("/run-research", h.runResearch)
		api.GET("/health", h.health)
	}
}

func (h *Handler) runResearch(c *gin.Context) {
	topic, ok := c.GetQuery("topic")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing required query parameter: topic"})
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	c.Writer.WriteHeaderNow()

	ctx := c.Request.Context()
	for ev := range h.Service.Stream(ctx, topic) {
		if err := WriteEvent(c.Writer, ev); err != nil {
			h.Service.Logger.WarnContext(ctx, "Failed to write event", "error", err)
			return
		}
		c.Writer.Flush()
	}
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":     "ok",
		"search":     h.Service.Capabilities.Search,
		"generation": h.Service.Capabilities.Generation,
	})
}
