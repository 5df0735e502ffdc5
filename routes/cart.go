package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/example/cart-checkout-service/config"
	"github.com/example/cart-checkout-service/controllers"
	"github.com/example/cart-checkout-service/middleware"
)

func RegisterCartRoutes(
	r *gin.Engine,
	service controllers.CartAPI,
	idem controllers.IdempotencyAPI,
	cfg config.Config,
) {
	controller := controllers.NewCartController(service, idem)

	api := r.Group("/cart")
	api.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	{
		api.GET("", controller.GetCart)
		api.POST("/items", controller.AddItem)
		api.PUT("/items/:product_id", controller.UpdateItem)
		api.DELETE("/items/:product_id", controller.DeleteItem)
		api.POST("/checkout", controller.Checkout)
	}
}
