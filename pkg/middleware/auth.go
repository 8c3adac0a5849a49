package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"storefront/pkg/errors"
)

// Identity headers injected by the fronting identity layer. Login,
// registration and session verification live outside this service; by the
// time a request arrives here the identity layer has already resolved the
// session cookie into these headers.
const (
	UserIDHeader    = "X-User-ID"
	UserRoleHeader  = "X-User-Role"
	SessionIDHeader = "X-Session-ID"
)

// Context keys
const (
	UserIDKey    = "user_id"
	UserRoleKey  = "user_role"
	SessionIDKey = "session_id"
)

// Roles
const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

// SessionCookie is the fallback cart-session cookie for anonymous browsing
const SessionCookie = "cart_session"

// Identity extracts the authenticated user (if any) from the identity headers
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID := c.GetHeader(UserIDHeader); userID != "" {
			role := c.GetHeader(UserRoleHeader)
			if role != RoleAdmin {
				role = RoleCustomer
			}
			c.Set(UserIDKey, userID)
			c.Set(UserRoleKey, role)
		}
		c.Next()
	}
}

// Session guarantees every request carries a cart-session identifier.
// Authenticated users reuse their session header; anonymous visitors get a
// cookie so the cart survives across requests.
func Session() gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader(SessionIDHeader)
		if sessionID == "" {
			if cookie, err := c.Cookie(SessionCookie); err == nil && cookie != "" {
				sessionID = cookie
			}
		}
		if sessionID == "" {
			sessionID = uuid.New().String()
			c.SetCookie(SessionCookie, sessionID, 15*60, "/", "", false, true)
		}
		c.Set(SessionIDKey, sessionID)
		c.Next()
	}
}

// RequireAuth aborts the request when no authenticated user is present
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(UserIDKey) == "" {
			c.Error(errors.NewForbidden("authentication required"))
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAdmin aborts the request unless the caller has the admin role
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(UserIDKey) == "" {
			c.Error(errors.NewForbidden("authentication required"))
			c.Abort()
			return
		}
		if c.GetString(UserRoleKey) != RoleAdmin {
			c.Error(errors.NewForbidden("admin access required"))
			c.Abort()
			return
		}
		c.Next()
	}
}
