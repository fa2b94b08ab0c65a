package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"docchooser/internal/shared/auth"
	"docchooser/internal/shared/server/respond"
)

const (
	userIDKey     = "userId"
	userNameKey   = "userName"
	userGroupsKey = "userGroups"
)

// AuthConfig controls how identities are established.
type AuthConfig struct {
	Secret string
	Env    string
}

// Auth validates bearer JWTs and stores the admin identity in context.
// Outside production a trusted X-User-Id header is accepted as well.
func Auth(cfg AuthConfig) gin.HandlerFunc {
	allowHeaders := cfg.Env == "dev" || cfg.Env == "local"

	return func(c *gin.Context) {
		authHeader := strings.TrimSpace(c.GetHeader("Authorization"))

		if authHeader != "" {
			if !strings.HasPrefix(authHeader, "Bearer ") {
				respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
				return
			}

			token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer"))
			if token == "" {
				respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
				return
			}

			claims, err := auth.VerifyJWT(cfg.Secret, token)
			if err != nil {
				respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
				return
			}

			c.Set(userIDKey, claims.Subject)
			if claims.Name != "" {
				c.Set(userNameKey, claims.Name)
			}
			c.Set(userGroupsKey, claims.Groups)
			c.Next()
			return
		}

		userID := strings.TrimSpace(c.GetHeader("X-User-Id"))
		if !allowHeaders || userID == "" {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "Missing identity", nil)
			return
		}

		c.Set(userIDKey, userID)
		c.Set(userGroupsKey, splitGroups(c.GetHeader("X-User-Groups")))
		c.Next()
	}
}

// UserIDFromContext fetches the user ID set by the auth middleware.
func UserIDFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	val, _ := c.Get(userIDKey)
	if id, ok := val.(string); ok {
		return id
	}
	return ""
}

// UserNameFromContext fetches the display name set by the auth middleware.
func UserNameFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	val, _ := c.Get(userNameKey)
	if name, ok := val.(string); ok {
		return name
	}
	return ""
}

// GroupsFromContext fetches the group memberships set by the auth middleware.
func GroupsFromContext(c *gin.Context) []string {
	if c == nil {
		return nil
	}
	val, _ := c.Get(userGroupsKey)
	if groups, ok := val.([]string); ok {
		return groups
	}
	return nil
}

func splitGroups(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if g := strings.TrimSpace(part); g != "" {
			out = append(out, g)
		}
	}
	return out
}
