package class

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/qulDev/GMB-GYM-Membership-API-sub001/internal/api"
	"github.com/qulDev/GMB-GYM-Membership-API-sub001/internal/auth"
	"github.com/qulDev/GMB-GYM-Membership-API-sub001/internal/validation"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) ListUpcoming(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid limit"})
			return
		}
		limit = n
	}

	classes, err := h.service.ListUpcoming(c.Request.Context(), limit)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, classes)
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}
	if errs := validation.ValidateStruct(req); errs != nil {
		validation.RespondWithErrors(c, errs)
		return
	}

	created, err := h.service.CreateClass(c.Request.Context(), req)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

func (h *Handler) Book(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "unauthorized"})
		return
	}

	b, err := h.service.BookClass(c.Request.Context(), userID, c.Param("classID"))
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, b)
}

func (h *Handler) Cancel(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "unauthorized"})
		return
	}

	if err := h.service.CancelBooking(c.Request.Context(), userID, c.Param("bookingID")); err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, CancelBookingResponse{Message: "Booking cancelled successfully"})
}

func (h *Handler) MyBookings(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "unauthorized"})
		return
	}

	bookings, err := h.service.ListMyBookings(c.Request.Context(), userID)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, bookings)
}
