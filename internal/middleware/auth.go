package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"sportrent/internal/config"
	"sportrent/internal/models"
	"sportrent/internal/security"
)

const (
	// ContextClaims is the gin context key holding *security.AccessClaims.
	ContextClaims = "access_claims"
	// ContextUser holds the models.User loaded by RequireAdmin.
	ContextUser = "current_user"
)

// UserLoader is the slice of the user store the middleware needs.
type UserLoader interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (models.User, error)
}

// Auth enforces a Bearer token. A missing or malformed Authorization header is
// 403, a token that fails verification (bad signature, expiry) is 401. The
// decoded claims are attached to the context; the user record itself is not
// loaded here.
func Auth(cfg *config.AppConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Authorization token missing"})
			return
		}

		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

		claims, err := security.ParseToken(tokenStr, cfg.Security.JWTSecret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid token"})
			return
		}

		c.Set(ContextClaims, claims)
		c.Next()
	}
}

// RequireAdmin composes on top of Auth: it reloads the user behind the token
// and requires the admin role. 404 when the account no longer exists, 403 on
// a role mismatch.
func RequireAdmin(users UserLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := ClaimsFrom(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Authorization token missing"})
			return
		}

		userID, err := primitive.ObjectIDFromHex(claims.UserID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid token"})
			return
		}

		user, err := users.GetByID(c.Request.Context(), userID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": "User not found"})
			return
		}

		if user.Role != models.UserRoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Admin privileges required"})
			return
		}

		c.Set(ContextUser, user)
		c.Next()
	}
}

// ClaimsFrom pulls the decoded token claims out of the gin context.
func ClaimsFrom(c *gin.Context) (*security.AccessClaims, bool) {
	val, exists := c.Get(ContextClaims)
	if !exists {
		return nil, false
	}
	claims, ok := val.(*security.AccessClaims)
	return claims, ok
}

// CallerID returns the authenticated caller's ObjectID.
func CallerID(c *gin.Context) (primitive.ObjectID, bool) {
	claims, ok := ClaimsFrom(c)
	if !ok {
		return primitive.NilObjectID, false
	}
	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return primitive.NilObjectID, false
	}
	return id, true
}
