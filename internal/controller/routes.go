package controller

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the API surface. Everything but /health sits
// behind the bearer-token middleware.
func RegisterRoutes(r *gin.Engine, h *Handler, jwtSecret string) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	auth := r.Group("/")
	auth.Use(AuthMiddleware(jwtSecret))

	auth.GET("/classes", h.ListClasses)
	auth.POST("/classes", h.CreateClass)
	auth.GET("/classes/:id", h.GetClass)
	auth.POST("/classes/:id/approve", h.ApproveClass)
	auth.POST("/classes/:id/reject", h.RejectClass)
	auth.POST("/classes/:id/deactivate", h.DeactivateClass)
	auth.POST("/classes/:id/rights/bulk", h.BulkGrantRights)
	auth.DELETE("/classes/:id", h.DeleteClass)

	auth.POST("/rights/:userId/:classId", h.GrantRight)
	auth.DELETE("/rights/:userId/:classId", h.RevokeRight)
	auth.GET("/rights/:id/users", h.ListClassRights)
	auth.GET("/rights/:id/classes", h.ListUserClasses)

	auth.GET("/access-requests", h.ListAccessRequests)
	auth.POST("/access-requests", h.SubmitAccessRequest)
	auth.POST("/access-requests/:id/approve", h.ApproveAccessRequest)
	auth.POST("/access-requests/:id/deny", h.DenyAccessRequest)
}
