package cartControllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/shop-api/apperr"
	"github.com/junaidrashid-git/shop-api/cart"
	"github.com/junaidrashid-git/shop-api/controllers/respond"
	"github.com/junaidrashid-git/shop-api/middleware"
)

type AddItemInput struct {
	ProductID uint `json:"product_id" binding:"required"`
}

type SetQuantityInput struct {
	Quantity *int `json:"quantity" binding:"required"`
}

// GET /shop/cart
func GetCart(svc *cart.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		renderCart(c, svc, http.StatusOK)
	}
}

// POST /shop/cart/items
func AddItem(svc *cart.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input AddItemInput
		if err := c.ShouldBindJSON(&input); err != nil {
			respond.Invalid(c, err)
			return
		}
		if _, err := svc.Add(c.Request.Context(), middleware.CartSessionID(c), input.ProductID); err != nil {
			respond.Error(c, err)
			return
		}
		renderCart(c, svc, http.StatusOK)
	}
}

// PUT /shop/cart/items/:product_id
func SetQuantity(svc *cart.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		productID, ok := productParam(c)
		if !ok {
			return
		}
		var input SetQuantityInput
		if err := c.ShouldBindJSON(&input); err != nil {
			respond.Invalid(c, err)
			return
		}
		if _, err := svc.SetQuantity(c.Request.Context(), middleware.CartSessionID(c), productID, *input.Quantity); err != nil {
			respond.Error(c, err)
			return
		}
		renderCart(c, svc, http.StatusOK)
	}
}

// DELETE /shop/cart/items/:product_id
func RemoveItem(svc *cart.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		productID, ok := productParam(c)
		if !ok {
			return
		}
		if _, err := svc.Remove(c.Request.Context(), middleware.CartSessionID(c), productID); err != nil {
			respond.Error(c, err)
			return
		}
		renderCart(c, svc, http.StatusOK)
	}
}

// DELETE /shop/cart
func ClearCart(svc *cart.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.Clear(c.Request.Context(), middleware.CartSessionID(c)); err != nil {
			respond.Error(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func renderCart(c *gin.Context, svc *cart.Service, status int) {
	view, err := svc.Materialize(c.Request.Context(), middleware.CartSessionID(c))
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(status, view)
}

func productParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("product_id"), 10, 64)
	if err != nil || id == 0 {
		respond.Error(c, apperr.ErrNotFound)
		return 0, false
	}
	return uint(id), true
}
