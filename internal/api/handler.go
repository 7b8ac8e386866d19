package api

import (
	"net/http"
	"strconv"
	"time"

	"storefront-client/internal/guard"
	"storefront-client/internal/service"
	"storefront-client/internal/state"
	"storefront-client/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler exposes the client state for inspection.
type Handler struct {
	app   *service.App
	guard *guard.Guard
	ready guard.Rehydration
}

// NewHandler creates a new HTTP handler
func NewHandler(app *service.App, g *guard.Guard, ready guard.Rehydration) *Handler {
	return &Handler{
		app:   app,
		guard: g,
		ready: ready,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/state", h.getState)
		v1.GET("/guard", h.getDecision)
		v1.POST("/resources/:container/:operation/reset", h.resetResource)
	}
}

func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck answers 503 until persisted state has been rehydrated.
func (h *Handler) readinessCheck(c *gin.Context) {
	if !h.ready.Rehydrated() {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "rehydrating",
			"time":   time.Now().Unix(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

type resourceView struct {
	Status state.Status `json:"status"`
	Error  string       `json:"error,omitempty"`
}

// getState lists every resource of every container.
func (h *Handler) getState(c *gin.Context) {
	containers := make(map[string]map[string]resourceView)
	for _, ct := range h.app.Containers() {
		tr := ct.Tracker()
		ops := make(map[string]resourceView)
		for _, op := range tr.Operations() {
			r := tr.Resource(op)
			view := resourceView{Status: r.Status}
			if r.Err != nil {
				view.Error = r.Err.Error()
			}
			ops[op] = view
		}
		containers[tr.Container()] = ops
	}

	resp := gin.H{
		"rehydrated": h.ready.Rehydrated(),
		"guard":      h.guard.State(),
		"containers": containers,
	}
	if u, ok := h.app.Auth.CurrentUser(); ok {
		resp["user"] = u
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) getDecision(c *gin.Context) {
	path := c.Query("path")
	if path == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "path query parameter is required",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"path":     path,
		"state":    h.guard.State(),
		"decision": h.guard.Decide(path),
	})
}

// resetResource returns one operation to idle, dropping any in-flight call.
func (h *Handler) resetResource(c *gin.Context) {
	ct, ok := h.app.Container(c.Param("container"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Container not found",
		})
		return
	}

	tr := ct.Tracker()
	op := c.Param("operation")
	if !hasOperation(tr, op) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Operation not found",
		})
		return
	}

	tr.Reset(op)
	c.JSON(http.StatusOK, gin.H{
		"container": tr.Container(),
		"operation": op,
		"status":    tr.Status(op),
	})
}

func hasOperation(tr *state.Tracker, op string) bool {
	for _, name := range tr.Operations() {
		if name == op {
			return true
		}
	}
	return false
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
