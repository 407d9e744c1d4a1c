package testutil

import (
	"net/http"
	"strings"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/campus-requests-api/middleware"
)

// MockValidatedClaims creates a mock ValidatedClaims for testing
func MockValidatedClaims(subject, issuer, role string, scopes []string) *validator.ValidatedClaims {
	return &validator.ValidatedClaims{
		RegisteredClaims: validator.RegisteredClaims{
			Issuer:  issuer,
			Subject: subject,
		},
		CustomClaims: &middleware.CustomClaims{
			Scope: strings.Join(scopes, " "),
			Role:  role,
		},
	}
}

// SetMockAuthContext sets up a mock authenticated context for testing
func SetMockAuthContext(c *gin.Context, userID, role, accessToken string) {
	c.Set("user_id", userID)
	c.Set("access_token", accessToken)
	c.Set("validated_claims", MockValidatedClaims(userID, "https://test.auth0.com/", role, nil))
}

// BearerSubjectAuth stands in for the JWT middleware. The bearer token is
// taken as the subject, so "Authorization: Bearer auth0|alice" authenticates
// as auth0|alice.
func BearerSubjectAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		subject := strings.TrimSpace(strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer "))
		if subject == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INVALID_TOKEN",
					"message": "Failed to validate JWT.",
				},
			})
			return
		}
		SetMockAuthContext(c, subject, "", subject)
		c.Next()
	}
}

