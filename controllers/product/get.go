package productcontroller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/shop-api/catalog"
	resourceControllers "github.com/junaidrashid-git/shop-api/controllers/resource"
	"github.com/junaidrashid-git/shop-api/controllers/respond"
)

// GET /shop/products/:slug
func GetProductBySlug(store *catalog.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		product, err := store.FindProductBySlug(c.Request.Context(), c.Param("slug"))
		if err != nil {
			respond.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, product)
	}
}

// GET /shop/categories/:slug/products
func GetCategoryProducts(store *catalog.Store, paging resourceControllers.Paging) gin.HandlerFunc {
	return func(c *gin.Context) {
		category, err := store.FindCategoryBySlug(c.Request.Context(), c.Param("slug"))
		if err != nil {
			respond.Error(c, err)
			return
		}
		page, pageSize, ok := resourceControllers.ParsePaging(c, paging)
		if !ok {
			return
		}
		filter := catalog.ProductFilter{Search: c.Query("search"), CategoryID: category.ID}
		result, err := store.ListProducts(c.Request.Context(), filter, page, pageSize)
		if err != nil {
			respond.Error(c, err)
			return
		}
		body := resourceControllers.PageBody(c, result)
		body["category"] = category
		c.JSON(http.StatusOK, body)
	}
}
