package leave

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the leave request endpoints. createMiddleware runs
// in front of POST only, which is where idempotency keys are honoured.
func RegisterRoutes(r *gin.RouterGroup, handler *Handler, createMiddleware ...gin.HandlerFunc) {
	requests := r.Group("/leave-requests")
	{
		requests.POST("", append(createMiddleware, handler.Create)...)
		requests.GET("", handler.GetAll)
		requests.GET("/:id", handler.GetByID)
		requests.PUT("/:id", handler.Adjudicate)
	}
}
