package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/customeros/payrelay/config"
	"github.com/customeros/payrelay/internal/utils"
)

// HealthCheck reports liveness and which attribution credentials are
// configured. Flags only, never the credentials themselves.
func HealthCheck(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "ok",
			"timestamp":   utils.Now().Format(time.RFC3339),
			"environment": cfg.AppConfig.Environment,
			"tracking": gin.H{
				"meta":   cfg.MetaConfig.Configured(),
				"tiktok": cfg.TikTokConfig.Configured(),
			},
		})
	}
}
