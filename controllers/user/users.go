package userControllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/shop-api/apperr"
	"github.com/junaidrashid-git/shop-api/auth"
	"github.com/junaidrashid-git/shop-api/controllers/respond"
	"github.com/junaidrashid-git/shop-api/middleware"
	"github.com/pkg/errors"
)

type LoginInput struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// POST /api/auth/login
func Login(svc *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input LoginInput
		if err := c.ShouldBindJSON(&input); err != nil {
			respond.Invalid(c, err)
			return
		}
		session, err := svc.Login(c.Request.Context(), input.Username, input.Password)
		if err != nil {
			respond.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, session)
	}
}

// POST /api/auth/logout
func Logout(svc *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := middleware.Claims(c)
		if claims == nil {
			respond.Error(c, apperr.ErrUnauthorized)
			return
		}
		if err := svc.Logout(c.Request.Context(), claims); err != nil {
			respond.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
	}
}

// POST /api/auth/register
func Register(svc *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input auth.RegisterInput
		if err := c.ShouldBindJSON(&input); err != nil {
			respond.Invalid(c, err)
			return
		}
		account, customer, err := svc.Register(c.Request.Context(), input)
		if err != nil {
			respond.Error(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"account": account, "customer": customer})
	}
}

// GET /api/auth/me
func GetUser(svc *auth.Service, customers *auth.CustomerLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal := middleware.Principal(c)
		account, err := svc.Account(c.Request.Context(), principal.AccountID)
		if err != nil {
			respond.Error(c, err)
			return
		}
		body := gin.H{"account": account, "customer": nil}
		customer, err := customers.ResolveCustomer(c.Request.Context(), principal)
		switch {
		case err == nil:
			body["customer"] = customer
		case !errors.Is(err, apperr.ErrNoCustomerProfile):
			respond.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, body)
	}
}
