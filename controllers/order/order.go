package orderControllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/shop-api/auth"
	"github.com/junaidrashid-git/shop-api/checkout"
	resourceControllers "github.com/junaidrashid-git/shop-api/controllers/resource"
	"github.com/junaidrashid-git/shop-api/controllers/respond"
	"github.com/junaidrashid-git/shop-api/middleware"
	"github.com/junaidrashid-git/shop-api/models"
)

type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// POST /shop/checkout
func PlaceOrderHandler(orch *checkout.Orchestrator) gin.HandlerFunc {
	return func(c *gin.Context) {
		receipt, err := orch.Checkout(c.Request.Context(), middleware.Principal(c), middleware.CartSessionID(c))
		if err != nil {
			respond.Error(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{
			"message":  "Order placed successfully",
			"order_id": receipt.OrderID,
			"status":   receipt.Status,
			"total":    receipt.Total,
			"items":    receipt.Items,
		})
	}
}

// GET /shop/orders
func GetMyOrdersHandler(customers *auth.CustomerLookup, orders *checkout.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		customer, err := customers.ResolveCustomer(c.Request.Context(), middleware.Principal(c))
		if err != nil {
			respond.Error(c, err)
			return
		}
		list, err := orders.ForCustomer(c.Request.Context(), customer.ID)
		if err != nil {
			respond.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

// PUT/PATCH /api/orders/:id. Only the status of an order can change.
func UpdateOrderStatusHandler(orders *checkout.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := resourceControllers.ParseID(c, "id")
		if !ok {
			return
		}
		var req UpdateOrderStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respond.Invalid(c, err)
			return
		}
		order, err := orders.UpdateStatus(c.Request.Context(), id, models.OrderStatus(strings.ToLower(req.Status)))
		if err != nil {
			respond.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, order)
	}
}

// DELETE /api/orders/:id
func DeleteOrderHandler(orders *checkout.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := resourceControllers.ParseID(c, "id")
		if !ok {
			return
		}
		if err := orders.Delete(c.Request.Context(), id); err != nil {
			respond.Error(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
