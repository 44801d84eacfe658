package userControllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/shop-api/auth"
	"github.com/junaidrashid-git/shop-api/catalog"
	"github.com/junaidrashid-git/shop-api/controllers/respond"
	"github.com/junaidrashid-git/shop-api/crud"
	"github.com/junaidrashid-git/shop-api/middleware"
	"github.com/junaidrashid-git/shop-api/models"
)

type ReviewInput struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// POST /shop/products/:slug/reviews
func CreateReview(store *catalog.Store, customers *auth.CustomerLookup, reviews *crud.Repository[models.Review]) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input ReviewInput
		if err := c.ShouldBindJSON(&input); err != nil {
			respond.Invalid(c, err)
			return
		}
		product, err := store.FindProductBySlug(c.Request.Context(), c.Param("slug"))
		if err != nil {
			respond.Error(c, err)
			return
		}
		customer, err := customers.ResolveCustomer(c.Request.Context(), middleware.Principal(c))
		if err != nil {
			respond.Error(c, err)
			return
		}
		review := &models.Review{
			ProductID:  product.ID,
			CustomerID: customer.ID,
			Rating:     input.Rating,
			Comment:    input.Comment,
		}
		if err := reviews.Create(c.Request.Context(), review); err != nil {
			respond.Error(c, err)
			return
		}
		c.JSON(http.StatusCreated, review)
	}
}
