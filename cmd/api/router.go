package main

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	reviewHandler "tropharbour-backend/internal/domains/review/handler"
	tourHandler "tropharbour-backend/internal/domains/tour/handler"
	"tropharbour-backend/internal/domains/user/model"
	"tropharbour-backend/internal/shared/middleware"
	"tropharbour-backend/internal/shared/response"
	"tropharbour-backend/pkg/container"
)

const (
	jsonBodyLimit      = 10 << 10 // 10kb
	multipartBodyLimit = 20 << 20
)

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	// Global middlewares
	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
	)
	router.NoRoute(middleware.NoRoute())

	// The signature covers the raw body, so the webhook skips the JSON body
	// limit and the per-IP limiter.
	router.POST("/api/v1/bookings/webhook-checkout", c.BookingHandler.WebhookCheckout)

	limiter := middleware.NewRateLimiter(c.Config.RateLimit.Requests, c.Config.RateLimit.Window)
	api := router.Group("/api", limiter.Limit())

	v1 := api.Group("/v1", middleware.BodyLimit(jsonBodyLimit, multipartBodyLimit))
	{
		v1.GET("/health", healthCheckHandler(c))

		setupUserRoutes(v1, c)
		setupTourRoutes(v1, c)
		setupReviewRoutes(v1, c)
		setupBookingRoutes(v1, c)
	}

	return router
}

// ========================================
// USER ROUTES
// ========================================
func setupUserRoutes(v1 *gin.RouterGroup, c *container.Container) {
	protect := middleware.Protect(c.AuthService)

	users := v1.Group("/users")
	{
		users.POST("/signup", c.AuthHandler.Signup)
		users.POST("/login", c.AuthHandler.Login)
		users.GET("/logout", c.AuthHandler.Logout)
		users.POST("/forgotPassword", c.AuthHandler.ForgotPassword)
		users.PATCH("/resetPassword/:token", c.AuthHandler.ResetPassword)
	}

	me := users.Group("", protect)
	{
		me.PATCH("/updateMyPassword", c.AuthHandler.UpdatePassword)
		me.GET("/me", c.UserHandler.GetMe)
		me.PATCH("/updateMe", c.UserHandler.UpdateMe)
		me.DELETE("/deleteMe", c.UserHandler.DeleteMe)
	}

	admin := users.Group("", protect, middleware.RestrictTo(model.RoleAdmin))
	{
		admin.GET("", c.UserHandler.ListUsers)
		admin.POST("", c.UserHandler.CreateUser)
		admin.GET("/:id", c.UserHandler.GetUser)
		admin.PATCH("/:id", c.UserHandler.UpdateUser)
		admin.DELETE("/:id", c.UserHandler.DeleteUser)
	}
}

// ========================================
// TOUR ROUTES
// ========================================
func setupTourRoutes(v1 *gin.RouterGroup, c *container.Container) {
	protect := middleware.Protect(c.AuthService)
	staff := middleware.RestrictTo(model.RoleAdmin, model.RoleLeadGuide)
	h := c.TourHandler

	tours := v1.Group("/tours")
	{
		tours.GET("", h.GetAllTours)
		tours.GET("/top-5-cheapest", tourHandler.AliasTopCheapest(), h.GetAllTours)
		tours.GET("/tour-stats", h.GetTourStats)
		tours.GET("/monthly-plan/:year", protect,
			middleware.RestrictTo(model.RoleAdmin, model.RoleLeadGuide, model.RoleGuide), h.GetMonthlyPlan)
		tours.GET("/tours-within/:distance/center/:latlng/unit/:unit", h.GetToursWithin)
		tours.GET("/distances/:latlng/unit/:unit", h.GetDistances)

		tours.GET("/:id", h.GetTour)
		tours.POST("", protect, staff, h.CreateTour)
		tours.PATCH("/:id", protect, staff, h.UpdateTour)
		tours.DELETE("/:id", protect, staff, h.DeleteTour)
	}

	// Nested reviews: /tours/:id/reviews
	nested := tours.Group("/:id/reviews", protect, reviewHandler.NestedUnderTour("id"))
	{
		nested.GET("", c.ReviewHandler.GetAllReviews)
		nested.POST("", middleware.RestrictTo(model.RoleUser), c.ReviewHandler.CreateReview)
	}
}

// ========================================
// REVIEW ROUTES
// ========================================
func setupReviewRoutes(v1 *gin.RouterGroup, c *container.Container) {
	h := c.ReviewHandler

	reviews := v1.Group("/reviews", middleware.Protect(c.AuthService))
	{
		reviews.GET("", h.GetAllReviews)
		reviews.POST("", middleware.RestrictTo(model.RoleUser), h.CreateReview)
		reviews.GET("/:id", h.GetReview)
		reviews.PATCH("/:id", middleware.RestrictTo(model.RoleUser, model.RoleAdmin), h.UpdateReview)
		reviews.DELETE("/:id", middleware.RestrictTo(model.RoleUser, model.RoleAdmin), h.DeleteReview)
	}
}

// ========================================
// BOOKING ROUTES
// ========================================
func setupBookingRoutes(v1 *gin.RouterGroup, c *container.Container) {
	h := c.BookingHandler

	bookings := v1.Group("/bookings", middleware.Protect(c.AuthService))
	{
		bookings.GET("/checkout-session/:tourId", h.GetCheckoutSession)
		bookings.GET("/my", h.GetMyBookings)
		bookings.GET("/:id", h.GetBooking)
		bookings.GET("/:id/ticket", h.GetTicket)
	}

	staff := bookings.Group("", middleware.RestrictTo(model.RoleAdmin, model.RoleLeadGuide))
	{
		staff.GET("", h.GetAllBookings)
		staff.DELETE("/:id", h.DeleteBooking)
	}
}

// ========================================
// HEALTH
// ========================================
func healthCheckHandler(c *container.Container) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		checkCtx, cancel := context.WithTimeout(ctx.Request.Context(), 5*time.Second)
		defer cancel()

		services := c.HealthCheck(checkCtx)
		status := http.StatusOK
		for _, s := range services {
			if strings.HasPrefix(s, "DOWN") {
				status = http.StatusServiceUnavailable
				break
			}
		}

		response.Success(ctx, status, gin.H{
			"status":   http.StatusText(status),
			"version":  c.Config.App.Version,
			"services": services,
		})
	}
}

func splitComma(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
