package dashboard

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

func (h *Handler) Me(c *gin.Context) {
	p, ok := auth.GetPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "unauthorized"})
		return
	}
	h.respond(c, p, p.UserID)
}

func (h *Handler) Member(c *gin.Context) {
	p, ok := auth.GetPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "unauthorized"})
		return
	}
	h.respond(c, p, c.Param("userID"))
}

func (h *Handler) respond(c *gin.Context, p auth.Principal, userID string) {
	d, err := h.service.GetMemberDashboard(c.Request.Context(), p, userID)
	if err != nil {
		api.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}
