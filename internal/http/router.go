package api

import (
	"log"
	stdhttp "net/http"
	"time"

	intconfig "intercity/internal/config"
	h "intercity/internal/http/handlers"
	"intercity/internal/http/middleware"
	"intercity/internal/queue"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func NewRouter(env intconfig.Env) *gin.Engine {
	h.SetJWTSecret([]byte(env.JWTSecret))
	if env.AMQPURL != "" {
		h.SetNotifier(queue.Publisher{URL: env.AMQPURL})
	}

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(), gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     env.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Authorization", "Accept", "Origin"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	if err := r.SetTrustedProxies(nil); err != nil {
		log.Printf("warning: failed to set trusted proxies: %v", err)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"error":  "route not found",
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})

	authRequired := middleware.RequireAuth([]byte(env.JWTSecret))
	operatorOnly := middleware.RequireRole("operator", "admin")

	api := r.Group("/api")
	{
		api.GET("/health", h.Health)
		api.GET("/db-check", h.DBCheck)

		auth := api.Group("/auth")
		auth.POST("/login", h.Login)
		auth.POST("/register", h.Register)

		bookings := api.Group("/bookings", authRequired)
		bookings.POST("", h.CreateBooking)
		bookings.GET("/:id", h.GetBooking)
		bookings.POST("/:id/cancel", h.CancelBooking)
		bookings.GET("/:id/e-ticket", h.GetBookingETicket)
		bookings.POST("/:id/check-in", operatorOnly, h.CheckInBooking)

		schedules := api.Group("/schedules")
		schedules.GET("", h.ListSchedules)
		schedules.GET("/:id", h.GetSchedule)

		opSchedules := api.Group("/schedules", authRequired, operatorOnly)
		opSchedules.POST("", h.CreateSchedule)
		opSchedules.PUT("/:id", h.UpdateSchedule)
		opSchedules.PUT("/:id/status", h.TransitionScheduleStatus)
		opSchedules.DELETE("/:id", h.DeleteSchedule)
		opSchedules.GET("/:id/reconcile", h.ReconcileSchedule)
	}

	return r
}
