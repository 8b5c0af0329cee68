package handlers

import (
	"net/http"

	"bookly/utils"

	"github.com/gin-gonic/gin"
)

// HealthHandler reports liveness and the last dependency snapshot.
func HealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":       "ok",
		"message":      "Hi, I'm Bookly",
		"dependencies": utils.GetHealthStatus(),
	})
}
