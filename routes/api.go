package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/shop-api/access"
	productcontroller "github.com/junaidrashid-git/shop-api/controllers/product"
	resourceControllers "github.com/junaidrashid-git/shop-api/controllers/resource"
	"github.com/junaidrashid-git/shop-api/middleware"
)

// SetupAPIRoutes registers the CRUD resources under /api. Every group is gated by its access policy.
func SetupAPIRoutes(r *gin.Engine, s *Services) {
	api := r.Group("/api")
	api.Use(middleware.Authenticate(s.Auth))

	gate := func(resource string) *gin.RouterGroup {
		g := api.Group("/" + resource)
		g.Use(middleware.Authorize(s.Policies, resource))
		return g
	}

	// ─────────── Catalog ───────────
	resourceControllers.New(s.Catalog.Categories, s.Paging).Register(gate(access.ResourceCategories))
	resourceControllers.New(s.Catalog.Manufacturers, s.Paging).Register(gate(access.ResourceManufacturers))

	products := api.Group("/" + access.ResourceProducts)
	{
		// spreadsheets are staff-only even where product reads are public
		products.GET("/export", middleware.RequireStaff, productcontroller.ExportProductsToExcel(s.Catalog))
		products.POST("/import", middleware.RequireStaff, productcontroller.ImportProductsFromExcel(s.Catalog))
	}
	resourceControllers.New(s.Catalog.Products, s.Paging).Register(gate(access.ResourceProducts))

	// ─────────── Customers & Reviews ───────────
	resourceControllers.New(s.Resources.Customers, s.Paging).Register(gate(access.ResourceCustomers))
	resourceControllers.New(s.Resources.Reviews, s.Paging).Register(gate(access.ResourceReviews))
}
