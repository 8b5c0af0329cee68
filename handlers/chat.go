package handlers

import (
	"context"
	"net/http"

	"bookly/middleware"
	"bookly/models"
	"bookly/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// TurnService answers one chat turn.
type TurnService interface {
	HandleTurn(ctx context.Context, clientID string, req models.ChatRequest) models.ChatResponse
}

type ChatHandler struct {
	Turns TurnService
}

func NewChatHandler(turns TurnService) *ChatHandler {
	return &ChatHandler{Turns: turns}
}

// HandleChat serves POST /api/chat.
func (h *ChatHandler) HandleChat(c *gin.Context) {
	var req models.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RequestLogger(c).Debug("Rejected chat request", zap.Error(err))
		utils.JSONError(c, http.StatusBadRequest, "Invalid request", "a non-empty 'message' field is required")
		return
	}

	resp := h.Turns.HandleTurn(c.Request.Context(), middleware.ClientIP(c), req)
	c.JSON(http.StatusOK, resp)
}
