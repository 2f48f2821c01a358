package subscription

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/qulDev/GMB-GYM-Membership-API-sub001/internal/auth"
	"github.com/qulDev/GMB-GYM-Membership-API-sub001/internal/logger"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) ListPlans(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.ListPlans())
}

func (h *Handler) Purchase(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req PurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.service.Purchase(c.Request.Context(), userID, req.PlanType)
	if err != nil {
		switch {
		case errors.Is(err, ErrUnknownPlan):
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown plan type"})
		case errors.Is(err, ErrActiveSubscriptionExists):
			c.JSON(http.StatusConflict, gin.H{"error": "an active subscription already exists"})
		default:
			logger.Errorf("Failed to create subscription for user %s: %v", userID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create subscription"})
		}
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *Handler) Current(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	sub, err := h.service.Current(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrNoActiveSubscription) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no active subscription"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load subscription"})
		return
	}

	c.JSON(http.StatusOK, sub)
}

func (h *Handler) Cancel(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	sub, err := h.service.Cancel(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrNoActiveSubscription) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no active subscription"})
			return
		}
		logger.Errorf("Failed to cancel subscription for user %s: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to cancel subscription"})
		return
	}

	c.JSON(http.StatusOK, sub)
}
