package middleware

import (
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"

	"dealer-portal-api/models"
	"dealer-portal-api/services"
)

const currentUserKey = "currentUser"

// AuthMiddleware validates the JWT token and loads the session user.
func AuthMiddleware(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortWith(c, services.DecisionRedirectLogin, "")
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			abortWith(c, services.DecisionRedirectLogin, "")
			return
		}

		token, err := jwt.ParseWithClaims(tokenString, &services.Claims{}, func(token *jwt.Token) (interface{}, error) {
			return []byte(os.Getenv("JWT_SECRET")), nil
		})
		if err != nil || !token.Valid {
			abortWith(c, services.DecisionRedirectLogin, "")
			return
		}

		claims, ok := token.Claims.(*services.Claims)
		if !ok {
			abortWith(c, services.DecisionRedirectLogin, "")
			return
		}

		// Check the user still exists and is active
		var user models.User
		if err := db.Where("id = ? AND is_active = ?", claims.UserID, true).First(&user).Error; err != nil {
			abortWith(c, services.DecisionRedirectLogin, "")
			return
		}

		c.Set(currentUserKey, &user)
		c.Next()
	}
}

// CurrentUser returns the session user loaded by AuthMiddleware.
func CurrentUser(c *gin.Context) *models.User {
	v, ok := c.Get(currentUserKey)
	if !ok {
		return nil
	}
	user, _ := v.(*models.User)
	return user
}

// RequireRole restricts a route to the listed roles.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		decision := services.DecideAccess(services.GateInput{
			Authenticated: user != nil,
			User:          user,
			RequiredRoles: roles,
		})
		if decision != services.DecisionAllow {
			abortWith(c, decision, "")
			return
		}
		c.Next()
	}
}

// RequireModule restricts a route to an enabled feature module. The module
// check runs before any role check so a disabled module reads as not-found
// to everyone except the super admin.
func RequireModule(flags *services.FeatureFlagService, moduleKey string, roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		decision := services.DecideAccess(services.GateInput{
			Authenticated: user != nil,
			User:          user,
			ModuleKey:     moduleKey,
			ModuleEnabled: flags.GetFlag(moduleKey),
			RequiredRoles: roles,
		})
		if decision != services.DecisionAllow {
			abortWith(c, decision, moduleKey)
			return
		}
		c.Next()
	}
}

// abortWith maps a gate decision onto the HTTP surface.
func abortWith(c *gin.Context, decision services.GateDecision, moduleKey string) {
	switch decision {
	case services.DecisionRedirectLogin:
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":    "Authentication required",
			"redirect": "/login",
		})
	case services.DecisionRedirectNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case services.DecisionRedirectDashboard:
		c.JSON(http.StatusForbidden, gin.H{
			"error":    "Insufficient permissions",
			"redirect": "/dashboard",
		})
	case services.DecisionShowDisabled:
		c.JSON(http.StatusForbidden, gin.H{
			"error":          "Module is disabled",
			"module":         moduleKey,
			"management_url": "/admin/modules",
		})
	default:
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
	}
	c.Abort()
}
