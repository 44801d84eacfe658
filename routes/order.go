package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/shop-api/access"
	orderControllers "github.com/junaidrashid-git/shop-api/controllers/order"
	resourceControllers "github.com/junaidrashid-git/shop-api/controllers/resource"
	"github.com/junaidrashid-git/shop-api/middleware"
)

// SetupOrderRoutes registers order administration. Orders are only created by checkout,
// and order items are never written directly.
func SetupOrderRoutes(r *gin.Engine, s *Services) {
	orders := r.Group("/api/" + access.ResourceOrders)
	orders.Use(middleware.Authenticate(s.Auth), middleware.Authorize(s.Policies, access.ResourceOrders))
	{
		// websocket endpoint for real-time order updates
		orders.GET("/feed", s.Hub.OrderWebSocketHandler)

		resourceControllers.New(s.Resources.Orders, s.Paging).RegisterReads(orders)
		orders.POST("", resourceControllers.MethodNotAllowed)

		// Update order status (pending, completed, cancelled)
		orders.PUT("/:id", orderControllers.UpdateOrderStatusHandler(s.Orders))
		orders.PATCH("/:id", orderControllers.UpdateOrderStatusHandler(s.Orders))

		// Delete an order, restocking it while still pending
		orders.DELETE("/:id", orderControllers.DeleteOrderHandler(s.Orders))
	}

	items := r.Group("/api/" + access.ResourceOrderItems)
	items.Use(middleware.Authenticate(s.Auth), middleware.Authorize(s.Policies, access.ResourceOrderItems))
	resourceControllers.New(s.Resources.OrderItems, s.Paging).RegisterReadOnly(items)
}
