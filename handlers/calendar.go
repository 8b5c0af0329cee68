package handlers

import (
	"net/http"
	"time"

	"bookly/services/calendar"
	"bookly/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// oauthStateRole marks the short-lived token used as the OAuth state parameter.
const oauthStateRole = "calendar-oauth"

type CalendarHandler struct {
	Auth *calendar.Authorizer
}

func NewCalendarHandler(auth *calendar.Authorizer) *CalendarHandler {
	return &CalendarHandler{Auth: auth}
}

// AuthURLHandler issues the owner's consent URL.
func (h *CalendarHandler) AuthURLHandler(c *gin.Context) {
	if !h.Auth.Configured() {
		utils.JSONError(c, http.StatusServiceUnavailable, "Calendar sync is not configured", "")
		return
	}
	state, err := utils.GenerateToken(c.GetString("adminID"), oauthStateRole, 10*time.Minute)
	if err != nil {
		utils.RequestLogger(c).Error("Failed to sign OAuth state", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Failed to create authorization URL", "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": h.Auth.AuthURL(state)})
}

// CallbackHandler completes the consent flow and stores the owner's token.
func (h *CalendarHandler) CallbackHandler(c *gin.Context) {
	if !h.Auth.Configured() {
		utils.JSONError(c, http.StatusServiceUnavailable, "Calendar sync is not configured", "")
		return
	}
	_, role, err := utils.ExtractRoleFromToken(c.Query("state"))
	if err != nil || role != oauthStateRole {
		utils.JSONError(c, http.StatusBadRequest, "Invalid OAuth state", "")
		return
	}
	code := c.Query("code")
	if code == "" {
		utils.JSONError(c, http.StatusBadRequest, "No authorization code provided", "")
		return
	}

	if err := h.Auth.Exchange(c.Request.Context(), code); err != nil {
		utils.RequestLogger(c).Error("Calendar token exchange failed", zap.Error(err))
		utils.JSONError(c, http.StatusBadGateway, "Failed to exchange authorization code", "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
