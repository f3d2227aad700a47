package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterRoutes wires every route onto r. Shared by the standalone server
// and the serverless entrypoint so the two never drift.
func RegisterRoutes(r *gin.Engine, h *Handler) {
	r.Use(h.RequestLogger())

	// Admin interface - serve static files from embedded FS
	r.StaticFS("/static", h.GetStaticFS())

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Raid Ledger API",
			"version": "1.0.0",
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/admin", h.AdminInterface)
	r.POST("/admin/login", h.Login)

	// Admin Endpoints
	admin := r.Group("/admin")
	admin.Use(h.AuthMiddleware())
	{
		admin.POST("/keys", h.GenerateKey)
		admin.GET("/keys", h.ListKeys)
		admin.PUT("/keys/:id", h.UpdateKeyLimit)
		admin.DELETE("/keys/:id", h.RevokeKey)
		admin.GET("/usage/:id", h.GetUsage)
	}

	// Service Endpoints
	api := r.Group("/api")
	api.Use(h.APIKeyMiddleware())
	{
		api.POST("/autofill", h.AutoFillJSON)
		api.POST("/validate", h.ValidateInput)
		api.GET("/usage", h.GetMyUsage)

		api.POST("/events", h.CreateEvent)
		api.GET("/events", h.ListEvents)
		api.GET("/events/:id", h.GetRosterBoard)
		api.POST("/events/:id/signups", h.CreateSignup)
		api.DELETE("/events/:id/signups/:signupID", h.DeleteSignup)
		api.POST("/events/:id/roster/assign", h.AssignSeat)
		api.DELETE("/events/:id/roster/assign/:signupID", h.UnseatSignup)
		api.POST("/events/:id/roster/autofill", h.AutoFillRoster)
	}
}
