package chat

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/thomthomthomas/SMART-CAREER-Singapore/internal/shared/server/respond"
	"github.com/thomthomthomas/SMART-CAREER-Singapore/internal/shared/telemetry"
)

// Handler serves the chat endpoint.
type Handler struct{}

func NewHandler() *Handler { return &Handler{} }

// RegisterRoutes attaches chat routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/chat", h.postChat)
}

type chatRequest struct {
	Message string `json:"message"`
}

func (h *Handler) postChat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid JSON body", nil)
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "message is required", []map[string]string{
			{"field": "message", "issue": "required"},
		})
		return
	}

	resp := Respond(req.Message)
	telemetry.Debug("chat.replied", map[string]any{"action": resp.Action, "skills": resp.Skills})
	respond.OK(c, resp)
}
