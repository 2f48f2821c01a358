package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/qulDev/GMB-GYM-Membership-API-sub001/internal/apperror"
	"github.com/qulDev/GMB-GYM-Membership-API-sub001/internal/logger"
)

type ErrorResponse struct {
	Error string `json:"error" example:"something went wrong"`
	Kind  string `json:"kind,omitempty" example:"DAILY_LIMIT_REACHED"`
	Limit int    `json:"limit,omitempty" example:"2"`
}

type MessageResponse struct {
	Message string `json:"message" example:"ok"`
}

type HealthResponse struct {
	Status string `json:"status" example:"ok"`
}

// RespondError writes err as JSON. Classified errors use their own status
// and message; anything else is logged and answered with a generic 500.
func RespondError(c *gin.Context, err error) {
	if appErr, ok := apperror.As(err); ok {
		if appErr.Kind == apperror.KindInternal {
			logger.Error("request failed", "path", c.FullPath(), "error", err)
		}
		c.JSON(appErr.Status(), ErrorResponse{
			Error: appErr.Message,
			Kind:  string(appErr.Kind),
			Limit: appErr.Limit,
		})
		return
	}

	logger.Error("unhandled error", "path", c.FullPath(), "error", err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
}
