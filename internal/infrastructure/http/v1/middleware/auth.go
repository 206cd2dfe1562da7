package middleware

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"officina/internal/core/actor"
	"officina/internal/core/apperror"
	"officina/internal/core/id"
)

// Claims is the access-token payload. Tokens are issued by the external auth
// service; this process only verifies the signature and maps claims to an
// actor.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Auth middleware validates JWT tokens and populates the actor context.
func Auth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, "missing authorization header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			abortUnauthorized(c, "invalid authorization header format")
			return
		}

		a, err := verifyToken(parts[1], secret)
		if err != nil {
			abortUnauthorized(c, "invalid token")
			return
		}

		ctx := actor.WithActor(c.Request.Context(), a)
		c.Request = c.Request.WithContext(ctx)

		c.Set("actor_id", a.ID.String())
		c.Set("actor_role", string(a.Role))

		c.Next()
	}
}

// verifyToken parses and validates the token, returning the resolved actor.
func verifyToken(tokenString, secret string) (actor.Actor, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return actor.Actor{}, fmt.Errorf("parse token: %w", err)
	}

	actorID, err := id.Parse(claims.Subject)
	if err != nil {
		return actor.Actor{}, fmt.Errorf("invalid subject claim: %w", err)
	}

	role, ok := actor.ParseRole(claims.Role)
	if !ok {
		return actor.Actor{}, fmt.Errorf("unknown role claim %q", claims.Role)
	}

	return actor.Actor{ID: actorID, Role: role}, nil
}

// RequireRole middleware checks if the actor has one of the required roles.
func RequireRole(roles ...actor.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		a, ok := actor.FromContext(c.Request.Context())
		if !ok {
			_ = c.Error(apperror.NewUnauthorized("authentication required"))
			c.Abort()
			return
		}

		for _, required := range roles {
			if a.Role == required {
				c.Next()
				return
			}
		}
		_ = c.Error(
			apperror.NewForbidden("insufficient permissions").
				WithDetail("required_roles", roles),
		)
		c.Abort()
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	_ = c.Error(apperror.NewUnauthorized(message))
	c.Abort()
}
