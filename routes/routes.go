package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/plant-decor/KLTN-PlantDecor-Mobile/controllers"
)

// RegisterRoutes mounts the health check and the /bridge API.
func RegisterRoutes(r *gin.Engine, ctrl *controllers.BridgeController) {
	r.GET("/health", ctrl.Health)

	bridge := r.Group("/bridge")
	{
		// Session
		bridge.GET("/session", ctrl.Session)
		bridge.POST("/session/login", ctrl.Login)
		bridge.POST("/session/register", ctrl.Register)
		bridge.POST("/session/logout", ctrl.Logout)
		bridge.GET("/session/profile", ctrl.Profile)
		bridge.PUT("/session/profile", ctrl.UpdateProfile)

		// Catalog
		bridge.GET("/products", ctrl.Products)
		bridge.POST("/products/more", ctrl.MoreProducts)
		bridge.GET("/products/:id", ctrl.ProductByID)
		bridge.GET("/products/:id/reviews", ctrl.ProductReviews)
		bridge.GET("/search", ctrl.Search)
		bridge.GET("/categories", ctrl.Categories)
		bridge.PUT("/categories/selected", ctrl.SelectCategory)

		// Cart
		bridge.GET("/cart", ctrl.Cart)
		bridge.POST("/cart/add", ctrl.AddToCart)
		bridge.PUT("/cart/items/:product_id", ctrl.SetQuantity)
		bridge.POST("/cart/items/:product_id/increment", ctrl.IncrementItem)
		bridge.POST("/cart/items/:product_id/decrement", ctrl.DecrementItem)
		bridge.DELETE("/cart/remove/:product_id", ctrl.RemoveItem)
		bridge.DELETE("/cart/clear", ctrl.ClearCart)

		// AI design
		bridge.POST("/design", ctrl.GenerateDesign)
		bridge.GET("/design", ctrl.Designs)
		bridge.GET("/design/:id", ctrl.DesignByID)
	}
}
