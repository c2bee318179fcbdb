package analyses

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/thomthomthomas/SMART-CAREER-Singapore/internal/shared/server/middleware"
	"github.com/thomthomthomas/SMART-CAREER-Singapore/internal/shared/server/respond"
	"github.com/thomthomthomas/SMART-CAREER-Singapore/internal/shared/telemetry"
)

// Handler wires HTTP handlers to the analyses service.
type Handler struct {
	Svc         *Service
	PollLimiter *pollLimiter
}

// NewHandler constructs a Handler. A zero pollWindow selects the default.
func NewHandler(svc *Service, pollWindow time.Duration) *Handler {
	return &Handler{Svc: svc, PollLimiter: newPollLimiter(pollWindow, nil)}
}

// RegisterRoutes attaches analysis routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/start-analysis", h.startAnalysis)
	rg.GET("/analysis-status", h.getStatus)
	rg.GET("/analysis-result", h.getResult)
	rg.GET("/download-result", h.downloadResult)
}

type startRequest struct {
	Skills []string `json:"skills"`
}

func (h *Handler) startAnalysis(c *gin.Context) {
	var req startRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			respond.Error(c, http.StatusBadRequest, "validation_error", "invalid JSON body", nil)
			return
		}
	}

	ctx := WithRequestID(c.Request.Context(), middleware.RequestIDFromContext(c))
	run, err := h.Svc.Start(ctx, req.Skills)
	if err != nil {
		if errors.Is(err, ErrAlreadyRunning) {
			respond.Error(c, http.StatusConflict, ErrorCodeRunning, "Analysis is already running", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, ErrorCodeInternal, "failed to start analysis", nil)
		return
	}

	respond.JSON(c, http.StatusAccepted, gin.H{
		"status":  "started",
		"id":      run.ID,
		"message": fmt.Sprintf("Analysis started for: %s", strings.Join(run.Skills, ", ")),
	})
}

func (h *Handler) getStatus(c *gin.Context) {
	if !h.PollLimiter.Allow(c.ClientIP()) {
		c.Header("Retry-After", strconv.Itoa(h.PollLimiter.RetryAfterSeconds()))
		respond.Error(c, http.StatusTooManyRequests, "rate_limited", "Polling too frequently", nil)
		return
	}

	run, err := h.Svc.Current(c.Request.Context())
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, ErrorCodeInternal, "failed to fetch analysis status", nil)
		return
	}

	resp := gin.H{
		"status":   run.Status,
		"progress": run.Progress,
		"message":  run.Message,
	}
	if run.Error != "" {
		resp["error"] = run.Error
	}
	if run.ResultKey != "" {
		resp["resultKey"] = run.ResultKey
	}
	if !run.CreatedAt.IsZero() {
		resp["startedAt"] = run.CreatedAt
	}
	respond.OK(c, resp)
}

func (h *Handler) getResult(c *gin.Context) {
	run, data, err := h.Svc.Result(c.Request.Context())
	if err != nil {
		h.writeResultError(c, run, err)
		return
	}
	respond.OK(c, gin.H{
		"status":    StatusCompleted,
		"data":      data,
		"file_path": run.ResultKey,
	})
}

func (h *Handler) downloadResult(c *gin.Context) {
	run, body, err := h.Svc.OpenResult(c.Request.Context())
	if err != nil {
		h.writeResultError(c, run, err)
		return
	}
	defer body.Close()

	c.DataFromReader(http.StatusOK, -1, "application/json", body, map[string]string{
		"Content-Disposition": fmt.Sprintf(`attachment; filename="analysis-%s.json"`, run.ID),
	})
}

func (h *Handler) writeResultError(c *gin.Context, run Run, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, ErrorCodeNotFound, "No analysis has been run", nil)
	case errors.Is(err, ErrPending):
		respond.Error(c, http.StatusConflict, ErrorCodePending, "Analysis has not completed yet", []map[string]any{
			{"field": "progress", "issue": run.Progress},
		})
	case errors.Is(err, ErrFailed):
		respond.Error(c, http.StatusConflict, ErrorCodeFailed, "Analysis failed", []map[string]string{
			{"field": "error", "issue": run.Error},
		})
	case errors.Is(err, ErrNoArtifact):
		respond.Error(c, http.StatusNotFound, ErrorCodeNotFound, "Result file not found", nil)
	default:
		telemetry.Error("analysis.result_failed", map[string]any{"analysis_id": run.ID, "error": err})
		respond.Error(c, http.StatusInternalServerError, ErrorCodeInternal, "failed to fetch analysis result", nil)
	}
}
