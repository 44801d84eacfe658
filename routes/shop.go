package routes

import (
	"github.com/gin-gonic/gin"
	cartControllers "github.com/junaidrashid-git/shop-api/controllers/cart"
	orderControllers "github.com/junaidrashid-git/shop-api/controllers/order"
	productcontroller "github.com/junaidrashid-git/shop-api/controllers/product"
	userControllers "github.com/junaidrashid-git/shop-api/controllers/user"
	"github.com/junaidrashid-git/shop-api/middleware"
)

// SetupShopRoutes registers the storefront. Every request carries a cart session.
func SetupShopRoutes(r *gin.Engine, s *Services) {
	shop := r.Group("/shop")
	shop.Use(middleware.Authenticate(s.Auth), middleware.CartSession(int(s.CartMaxAge.Seconds())))
	{
		// ──────────────── Browse Products ────────────────
		shop.GET("/products/:slug", productcontroller.GetProductBySlug(s.Catalog))                     // GET /shop/products/:slug
		shop.GET("/categories/:slug/products", productcontroller.GetCategoryProducts(s.Catalog, s.Paging)) // GET /shop/categories/:slug/products
		shop.POST("/products/:slug/reviews", middleware.RequireAuth,
			userControllers.CreateReview(s.Catalog, s.Customers, s.Resources.Reviews)) // POST /shop/products/:slug/reviews

		// ──────────────── Shopping Cart ────────────────
		cartGroup := shop.Group("/cart")
		{
			cartGroup.GET("", cartControllers.GetCart(s.Carts))                           // GET /shop/cart
			cartGroup.POST("/items", cartControllers.AddItem(s.Carts))                    // POST /shop/cart/items
			cartGroup.PUT("/items/:product_id", cartControllers.SetQuantity(s.Carts))     // PUT /shop/cart/items/:product_id
			cartGroup.DELETE("/items/:product_id", cartControllers.RemoveItem(s.Carts))   // DELETE /shop/cart/items/:product_id
			cartGroup.DELETE("", cartControllers.ClearCart(s.Carts))                      // DELETE /shop/cart
		}

		// ──────────────── Orders ────────────────
		shop.POST("/checkout", middleware.RequireAuth, orderControllers.PlaceOrderHandler(s.Checkout))              // POST /shop/checkout
		shop.GET("/orders", middleware.RequireAuth, orderControllers.GetMyOrdersHandler(s.Customers, s.Orders))    // GET /shop/orders
	}
}
