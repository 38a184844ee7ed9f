package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"tourplanner/internal/model"
	"tourplanner/internal/service"
)

// PlanHandler handles plan-related HTTP requests
type PlanHandler struct {
	planner *service.PlannerService
	timeout time.Duration
}

// NewPlanHandler creates a new plan handler. A zero timeout leaves the
// request context untouched.
func NewPlanHandler(planner *service.PlannerService, timeout time.Duration) *PlanHandler {
	return &PlanHandler{
		planner: planner,
		timeout: timeout,
	}
}

// Plan handles POST /api/v1/plan
func (h *PlanHandler) Plan(c *gin.Context) {
	query, ok := bindQuery(c)
	if !ok {
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	result, err := h.planner.Plan(ctx, query)
	if err != nil {
		status, msg := errorStatus(err)
		c.JSON(status, model.ErrorResponse{Error: msg})
		return
	}

	c.JSON(http.StatusOK, result)
}

// PlanStream handles POST /api/v1/plan/stream - SSE streaming plan
func (h *PlanHandler) PlanStream(c *gin.Context) {
	query, ok := bindQuery(c)
	if !ok {
		return
	}

	// Create flusher for SSE
	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: "streaming not supported"})
		return
	}

	// Set SSE headers
	c.Header("Content-Type", "text/event-stream; charset=utf-8")
	c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	ctx, cancel := h.requestContext(c)
	defer cancel()

	sendSSE(c, "start", map[string]any{"query": query})
	flusher.Flush()

	result, err := h.planner.PlanStream(ctx, query, func(event string, data any) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		sendSSE(c, event, data)
		flusher.Flush()
		return nil
	})

	if err != nil {
		status, msg := errorStatus(err)
		sendSSE(c, "error", map[string]any{"error": msg, "status": status})
		flusher.Flush()
		return
	}

	// Send final result
	sendSSE(c, "result", result)
	flusher.Flush()

	sendSSE(c, "done", nil)
	flusher.Flush()
}

// GetPlan handles GET /api/v1/plans/:id
func (h *PlanHandler) GetPlan(c *gin.Context) {
	store := h.planner.Store()
	if store == nil {
		c.JSON(http.StatusServiceUnavailable, model.ErrorResponse{Error: "plan history is disabled"})
		return
	}

	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "invalid plan ID"})
		return
	}

	plan, err := store.GetPlan(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: "failed to get plan: " + err.Error()})
		return
	}

	if plan == nil {
		c.JSON(http.StatusNotFound, model.ErrorResponse{Error: "plan not found"})
		return
	}

	c.JSON(http.StatusOK, plan)
}

func (h *PlanHandler) requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	if h.timeout <= 0 {
		return context.WithCancel(c.Request.Context())
	}
	return context.WithTimeout(c.Request.Context(), h.timeout)
}

// bindQuery reads the request body, writing a 400 on failure
func bindQuery(c *gin.Context) (string, bool) {
	var req model.PlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "invalid request: " + err.Error()})
		return "", false
	}

	query := strings.TrimSpace(req.Query)
	if query == "" {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "query must not be empty"})
		return "", false
	}
	return query, true
}

// errorStatus maps a fatal plan error to an HTTP status and message
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, model.ErrIntentParse):
		return http.StatusUnprocessableEntity, model.ErrIntentParse.Error()
	case errors.Is(err, model.ErrCityNotFound):
		return http.StatusNotFound, model.ErrCityNotFound.Error()
	default:
		return http.StatusInternalServerError, "plan failed: " + err.Error()
	}
}

// sendSSE sends a Server-Sent Event
func sendSSE(c *gin.Context, event string, data any) {
	if data == nil {
		fmt.Fprintf(c.Writer, "event: %s\ndata: {}\n\n", event)
		return
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		fmt.Fprintf(c.Writer, "event: error\ndata: {\"error\": \"JSON marshal failed\"}\n\n")
		return
	}
	fmt.Fprintf(c.Writer, "event: %s\ndata: %s\n\n", event, string(jsonData))
}
