package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/shop-api/access"
	"github.com/junaidrashid-git/shop-api/apperr"
	"github.com/junaidrashid-git/shop-api/auth"
	"github.com/junaidrashid-git/shop-api/controllers/respond"
)

const (
	principalKey = "principal"
	claimsKey    = "claims"
)

// Authenticate resolves the bearer token, if any, into a principal. Requests without a
// token continue anonymously; requests with a bad token are rejected.
func Authenticate(svc *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.Next()
			return
		}
		principal, claims, err := svc.Authenticate(c.Request.Context(), token)
		if err != nil {
			respond.Error(c, err)
			return
		}
		c.Set(principalKey, principal)
		c.Set(claimsKey, claims)
		c.Next()
	}
}

// bearerToken reads "Authorization: Bearer <t>", its "Token <t>" alias, or ?token= for websocket clients.
func bearerToken(c *gin.Context) string {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	if header != "" {
		scheme, token, found := strings.Cut(header, " ")
		if found && (strings.EqualFold(scheme, "Bearer") || strings.EqualFold(scheme, "Token")) {
			return strings.TrimSpace(token)
		}
		return header
	}
	return c.Query("token")
}

// RequireAuth rejects anonymous requests.
func RequireAuth(c *gin.Context) {
	if Principal(c) == nil {
		respond.Error(c, apperr.ErrUnauthorized)
		return
	}
	c.Next()
}

// Authorize gates a resource route group with the access policy of resource.
func Authorize(policies access.Policies, resource string) gin.HandlerFunc {
	policy := policies.For(resource)
	return func(c *gin.Context) {
		if err := access.Authorize(Principal(c), c.Request.Method, policy); err != nil {
			respond.Error(c, err)
			return
		}
		c.Next()
	}
}

// Principal returns the authenticated principal, or nil.
func Principal(c *gin.Context) *auth.Principal {
	if v, ok := c.Get(principalKey); ok {
		if p, ok := v.(*auth.Principal); ok {
			return p
		}
	}
	return nil
}

func Claims(c *gin.Context) *auth.Claims {
	if v, ok := c.Get(claimsKey); ok {
		if claims, ok := v.(*auth.Claims); ok {
			return claims
		}
	}
	return nil
}

// RequireStaff gates a route like a resource with no public reads.
func RequireStaff(c *gin.Context) {
	if err := access.Authorize(Principal(c), c.Request.Method, access.Policy{}); err != nil {
		respond.Error(c, err)
		return
	}
	c.Next()
}
