package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/qulDev/GMB-GYM-Membership-API-sub001/internal/auth"
	"github.com/qulDev/GMB-GYM-Membership-API-sub001/internal/checkin"
	"github.com/qulDev/GMB-GYM-Membership-API-sub001/internal/class"
	"github.com/qulDev/GMB-GYM-Membership-API-sub001/internal/clock"
	"github.com/qulDev/GMB-GYM-Membership-API-sub001/internal/config"
	"github.com/qulDev/GMB-GYM-Membership-API-sub001/internal/dashboard"
	"github.com/qulDev/GMB-GYM-Membership-API-sub001/internal/report"
	"github.com/qulDev/GMB-GYM-Membership-API-sub001/internal/subscription"
	"github.com/qulDev/GMB-GYM-Membership-API-sub001/internal/user"
)

// Handlers groups the per-domain HTTP handlers the router mounts.
type Handlers struct {
	Users         *user.Handler
	Subscriptions *subscription.Handler
	CheckIns      *checkin.Handler
	Classes       *class.Handler
	Reports       *report.Handler
	Dashboard     *dashboard.Handler
}

type Server struct {
	router *gin.Engine
	http   *http.Server
}

func New(cfg *config.Config, h Handlers, db Pinger, mailer EmailSender) *Server {
	router := NewRouter(cfg, h, db, mailer)
	return &Server{
		router: router,
		http: &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// NewRouter wires middleware and every route onto a fresh engine.
func NewRouter(cfg *config.Config, h Handlers, db Pinger, mailer EmailSender) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestLoggingMiddleware(), MetricsMiddleware(), corsMiddleware())

	router.GET("/health", Health)
	router.GET("/ready", Ready(db))
	router.GET("/metrics", Metrics())

	authMiddleware := auth.AuthMiddleware(auth.NewTokens(cfg.JWTSecret, clock.New(cfg.Location)))
	limit := RateLimitMiddleware(cfg.RateLimitRPS, cfg.RateLimitBurst)

	public := router.Group("/auth")
	public.Use(limit)
	{
		public.POST("/register", h.Users.Register)
		public.POST("/login", h.Users.Login)
		public.POST("/refresh", h.Users.RefreshToken)
	}

	router.GET("/plans", h.Subscriptions.ListPlans)

	protected := router.Group("/")
	protected.Use(authMiddleware, limit)
	{
		protected.GET("/me", h.Users.GetMe)
		protected.GET("/dashboard", h.Dashboard.Me)

		protected.POST("/subscriptions", h.Subscriptions.Purchase)
		protected.GET("/subscriptions/current", h.Subscriptions.Current)
		protected.POST("/subscriptions/current/cancel", h.Subscriptions.Cancel)

		protected.POST("/checkins", h.CheckIns.CheckIn)
		protected.POST("/checkins/:checkInID/checkout", h.CheckIns.CheckOut)
		protected.GET("/checkins/history", h.CheckIns.History)
		protected.GET("/checkins/status", h.CheckIns.Status)

		protected.GET("/classes", h.Classes.ListUpcoming)
		protected.POST("/classes/:classID/book", h.Classes.Book)
		protected.GET("/bookings", h.Classes.MyBookings)
		protected.DELETE("/bookings/:bookingID", h.Classes.Cancel)
	}

	admin := router.Group("/admin")
	admin.Use(authMiddleware, auth.RequireRole(auth.RoleAdmin))
	{
		admin.GET("/reports/dashboard", h.Reports.Dashboard)
		admin.GET("/reports/revenue", h.Reports.Revenue)
		admin.GET("/reports/attendance", h.Reports.Attendance)
		admin.GET("/members/:userID/dashboard", h.Dashboard.Member)
		admin.POST("/classes", h.Classes.Create)
		admin.POST("/test-email", TestEmail(mailer))
	}

	return router
}

func (s *Server) Start() error {
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
