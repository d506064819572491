package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/josswuzhur/cloud-notes-app/config"
	"github.com/josswuzhur/cloud-notes-app/utils"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Presence is the slice of the session presence service the middleware
// consumes. services.SessionPresence satisfies it.
type Presence interface {
	Touch(ctx context.Context, userID string) error
	IsActive(ctx context.Context, userID string) (bool, error)
}

// IdentityMiddleware consumes tokens issued by the external identity
// provider: it verifies the HMAC signature, pulls the user id out of the
// claims, and scopes the request to it. Tokens arrive as a Bearer header or,
// for EventSource connections that cannot set headers, a token query
// parameter. With RequirePresence set, a valid token is additionally gated
// on a live presence record, so the identity provider can revoke sessions
// before their tokens expire; presence is refreshed on every request either
// way.
func IdentityMiddleware(cfg config.IdentityConfig, presence Presence) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			utils.Unauthorized(c, "Missing or invalid token")
			c.Abort()
			return
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(cfg.JWTSecret), nil
		})
		if err != nil || !token.Valid {
			utils.Unauthorized(c, "Invalid token")
			c.Abort()
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			utils.Unauthorized(c, "Invalid token claims")
			c.Abort()
			return
		}

		if cfg.Issuer != "" {
			if iss, _ := claims.GetIssuer(); iss != cfg.Issuer {
				utils.Unauthorized(c, "Invalid token issuer")
				c.Abort()
				return
			}
		}

		userID := subjectClaim(claims)
		if userID == "" {
			utils.Unauthorized(c, "Invalid user ID in token")
			c.Abort()
			return
		}

		c.Set("user_id", userID)

		if presence != nil {
			if cfg.RequirePresence {
				active, err := presence.IsActive(c.Request.Context(), userID)
				if err != nil {
					// A presence store outage must not lock everyone out.
					slog.Warn("presence check failed", "user_id", userID, "error", err)
				} else if !active {
					utils.Unauthorized(c, "Session is no longer active")
					c.Abort()
					return
				}
			}
			if err := presence.Touch(c.Request.Context(), userID); err != nil {
				slog.Warn("session presence refresh failed", "user_id", userID, "error", err)
			}
		}

		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return c.Query("token")
}

func subjectClaim(claims jwt.MapClaims) string {
	if uid, ok := claims["user_id"].(string); ok && uid != "" {
		return uid
	}
	if sub, _ := claims.GetSubject(); sub != "" {
		return sub
	}
	return ""
}
