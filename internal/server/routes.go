package server

import "github.com/gin-gonic/gin"

func RegisterRoutes(r *gin.Engine, h *Handler) {
	api := r.Group("/api")

	// Health check
	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api.GET("/active", h.ActiveReconciliation)

	recon := api.Group("/reconciliations")
	recon.GET("", h.ListReconciliations)
	recon.GET("/:id", h.GetReconciliation)
	recon.DELETE("/:id", h.DeleteReconciliation)
	recon.PUT("/:id/title", h.UpdateTitle)
	recon.GET("/:id/status", h.GetStatus)
	recon.GET("/:id/view", h.Project)
	recon.GET("/:id/statistics", h.Statistics)
	recon.GET("/:id/export", h.Export)

	// Invoice-level routes
	recon.GET("/:id/invoices/:invoiceId/suggestions", h.Suggestions)
	recon.POST("/:id/invoices/:invoiceId/resolve", h.ResolveMultiple)

	// Match-level routes
	recon.POST("/:id/matches", h.CreateMatch)
	recon.PUT("/:id/matches/:matchId", h.UpdateMatch)
	recon.DELETE("/:id/matches/:matchId", h.DeleteMatch)
	recon.POST("/:id/matches/:matchId/validate", h.ValidateMatch)
	recon.POST("/:id/matches/:matchId/reject", h.RejectMatch)
}
