package routes

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/shop-api/access"
	"github.com/junaidrashid-git/shop-api/auth"
	"github.com/junaidrashid-git/shop-api/cart"
	"github.com/junaidrashid-git/shop-api/catalog"
	"github.com/junaidrashid-git/shop-api/checkout"
	orderControllers "github.com/junaidrashid-git/shop-api/controllers/order"
	resourceControllers "github.com/junaidrashid-git/shop-api/controllers/resource"
	"github.com/junaidrashid-git/shop-api/middleware"
	"github.com/junaidrashid-git/shop-api/resources"
	"github.com/sirupsen/logrus"
)

// Services is everything the routes hand to controllers.
type Services struct {
	Log         *logrus.Logger
	Policies    access.Policies
	Paging      resourceControllers.Paging
	CORSOrigins []string
	CartMaxAge  time.Duration
	UploadsDir  string

	Auth      *auth.Service
	Customers *auth.CustomerLookup
	Catalog   *catalog.Store
	Resources *resources.Set
	Carts     *cart.Service
	Checkout  *checkout.Orchestrator
	Orders    *checkout.OrderService
	Hub       *orderControllers.Hub
}

// NewEngine builds the gin engine with the shared middleware and every route.
func NewEngine(s *Services) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(s.Log))

	// CORS settings
	corsConfig := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.CartSessionHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.CartSessionHeader, middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(s.CORSOrigins) == 0 || (len(s.CORSOrigins) == 1 && s.CORSOrigins[0] == "*") {
		// credentials rule out a literal "*", so echo the caller's origin instead
		corsConfig.AllowOriginFunc = func(string) bool { return true }
	} else {
		corsConfig.AllowOrigins = s.CORSOrigins
	}
	r.Use(cors.New(corsConfig))

	if s.UploadsDir != "" {
		// Serve uploaded images
		r.Static("/uploads", s.UploadsDir)
	}

	SetupRoutes(r, s)
	return r
}

// SetupRoutes is the single entry-point that wires up the auth, API and shop route groups.
func SetupRoutes(r *gin.Engine, s *Services) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// 1️⃣ Auth routes
	SetupAuthRoutes(r, s)

	// 2️⃣ Resource API (access-controlled)
	SetupAPIRoutes(r, s)

	// 3️⃣ Orders, order items and the live order feed
	SetupOrderRoutes(r, s)

	// 4️⃣ Storefront: cart, checkout, product pages
	SetupShopRoutes(r, s)
}
