package school

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the public school endpoints. There is no auth.
func RegisterRoutes(r *gin.RouterGroup, h *Handler) {
	schools := r.Group("/schools")
	{
		schools.GET("", h.List)
		schools.POST("", h.Create)
	}
}
