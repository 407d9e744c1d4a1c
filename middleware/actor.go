package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/campus-requests-api/services"
)

const actorKey = "actor"

// ActorResolver looks up the portal actor for a JWT subject
type ActorResolver interface {
	ResolveActor(ctx context.Context, auth0ID string) (services.Actor, error)
}

// ResolveActor loads the caller's user record once per request and stores the actor
func ResolveActor(resolver ActorResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth0ID, err := GetUserID(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "UNAUTHORIZED",
					"message": "Could not extract user information",
				},
			})
			return
		}

		actor, err := resolver.ResolveActor(c.Request.Context(), auth0ID)
		if err != nil {
			if services.IsNotFound(err) {
				c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
					"success": false,
					"error": gin.H{
						"code":    services.CodeUserNotFound,
						"message": "User profile not found. Please create a profile first.",
					},
				})
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    services.CodeDatabase,
					"message": "Failed to load user",
				},
			})
			return
		}

		c.Set(actorKey, actor)
		c.Next()
	}
}

// GetActor returns the actor stored by ResolveActor
func GetActor(c *gin.Context) (services.Actor, bool) {
	v, ok := c.Get(actorKey)
	if !ok {
		return services.Actor{}, false
	}
	actor, ok := v.(services.Actor)
	return actor, ok
}

// SetActor stores an actor on the context (primarily for testing)
func SetActor(c *gin.Context, actor services.Actor) {
	c.Set(actorKey, actor)
}

// RequireCapability rejects callers whose role lacks the capability
func RequireCapability(capability services.Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := GetActor(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "UNAUTHORIZED",
					"message": "Could not extract user information",
				},
			})
			return
		}

		if err := services.Authorize(actor, capability); err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"error": gin.H{
					"code":    services.CodeForbidden,
					"message": "Insufficient permissions to access this resource",
				},
			})
			return
		}

		c.Next()
	}
}
