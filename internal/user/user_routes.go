package user

import "github.com/gin-gonic/gin"

func RegisterRoutes(r *gin.RouterGroup, handler *Handler) {
	users := r.Group("/users")
	{
		users.POST("", handler.Create)
		users.GET("", handler.GetAll)
		users.GET("/:id", handler.GetByID)
		users.DELETE("/:id", handler.Delete)
	}
}
