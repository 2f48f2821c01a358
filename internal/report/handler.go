package report

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/qulDev/GMB-GYM-Membership-API-sub001/internal/api"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Dashboard(c *gin.Context) {
	stats, err := h.service.GetDashboardStats(c.Request.Context())
	if err != nil {
		api.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *Handler) Revenue(c *gin.Context) {
	var q RangeQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	rep, err := h.service.GetRevenueReport(c.Request.Context(), q)
	if err != nil {
		api.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rep)
}

func (h *Handler) Attendance(c *gin.Context) {
	var q RangeQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	rep, err := h.service.GetAttendanceReport(c.Request.Context(), q)
	if err != nil {
		api.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rep)
}
