package checkin

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/qulDev/GMB-GYM-Membership-API-sub001/internal/api"
	"github.com/qulDev/GMB-GYM-Membership-API-sub001/internal/auth"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) CheckIn(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "unauthorized"})
		return
	}

	rec, err := h.service.CheckIn(c.Request.Context(), userID)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, rec)
}

func (h *Handler) CheckOut(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "unauthorized"})
		return
	}

	rec, err := h.service.CheckOut(c.Request.Context(), c.Param("checkInID"), userID)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, rec)
}

func (h *Handler) History(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "unauthorized"})
		return
	}

	var q HistoryQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	records, err := h.service.GetHistory(c.Request.Context(), userID, q.StartDate, q.EndDate)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, records)
}

func (h *Handler) Status(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "unauthorized"})
		return
	}

	status, err := h.service.GetCurrentStatus(c.Request.Context(), userID)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, status)
}
