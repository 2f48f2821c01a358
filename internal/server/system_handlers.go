package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/qulDev/GMB-GYM-Membership-API-sub001/internal/api"
)

// Pinger reports whether the database is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type EmailSender interface {
	Send(ctx context.Context, to, name, subject, body string) error
}

func Health(c *gin.Context) {
	c.JSON(http.StatusOK, api.HealthResponse{Status: "ok"})
}

func Ready(db Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, api.HealthResponse{Status: "database unavailable"})
			return
		}
		c.JSON(http.StatusOK, api.HealthResponse{Status: "ok"})
	}
}

func TestEmail(mailer EmailSender) gin.HandlerFunc {
	return func(c *gin.Context) {
		to := c.Query("email")
		if to == "" {
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "email parameter required"})
			return
		}

		if err := mailer.Send(c.Request.Context(), to, "Test User", "Test email", "Email delivery is working."); err != nil {
			api.RespondError(c, err)
			return
		}

		c.JSON(http.StatusOK, api.MessageResponse{Message: "Email queued successfully"})
	}
}

func Metrics() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
