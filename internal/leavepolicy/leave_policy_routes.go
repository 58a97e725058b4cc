package leavepolicy

import "github.com/gin-gonic/gin"

func RegisterRoutes(r *gin.RouterGroup, handler *Handler) {
	policies := r.Group("/leave-policies")
	{
		policies.POST("", handler.Create)
		policies.GET("", handler.GetAll)
		policies.GET("/:id", handler.GetByID)
		policies.DELETE("/:id", handler.Delete)
	}
}
