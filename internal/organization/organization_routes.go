package organization

import "github.com/gin-gonic/gin"

func RegisterRoutes(r *gin.RouterGroup, handler *Handler) {
	orgs := r.Group("/organizations")
	{
		orgs.POST("", handler.Create)
		orgs.GET("", handler.GetAll)
		orgs.GET("/:id", handler.GetByID)
		orgs.DELETE("/:id", handler.Delete)
	}
}
