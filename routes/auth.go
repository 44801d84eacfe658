package routes

import (
	"github.com/gin-gonic/gin"
	userControllers "github.com/junaidrashid-git/shop-api/controllers/user"
	"github.com/junaidrashid-git/shop-api/middleware"
)

func SetupAuthRoutes(r *gin.Engine, s *Services) {
	authGroup := r.Group("/api/auth")
	authGroup.Use(middleware.Authenticate(s.Auth))
	{
		authGroup.POST("/login", userControllers.Login(s.Auth))                                        // POST /api/auth/login
		authGroup.POST("/register", userControllers.Register(s.Auth))                                  // POST /api/auth/register
		authGroup.POST("/logout", middleware.RequireAuth, userControllers.Logout(s.Auth))              // POST /api/auth/logout
		authGroup.GET("/me", middleware.RequireAuth, userControllers.GetUser(s.Auth, s.Customers))     // GET /api/auth/me
	}
}
