package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"mentorlink/backend/internal/apperr"
	"mentorlink/backend/internal/auth"
	"mentorlink/backend/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	ctxUserKey   = "user"
	ctxClaimsKey = "claims"
	ctxUserIDKey = "user_id"
)

// ErrMissingToken is returned when neither the Authorization header nor the
// token query parameter carries a token.
var ErrMissingToken = errors.New("missing bearer token")

// Authenticator resolves a bearer token. *auth.Service implements it.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, *auth.Claims, error)
}

// Auth rejects requests without a valid, unrevoked token and stores the
// resolved user in the gin context. Browsers cannot set headers on a
// websocket handshake, so ?token= is accepted as well.
func Auth(a Authenticator, log *logrus.Logger) gin.HandlerFunc {
	if a == nil {
		panic("authenticator cannot be nil for Auth middleware")
	}
	entry := loggerOrDefault(log).WithField("component", "auth_middleware")

	return func(c *gin.Context) {
		token, err := extractToken(c)
		if err != nil {
			entry.WithError(err).Debug("rejecting unauthenticated request")
			abortUnauthorized(c, "Authorization token is required")
			return
		}

		user, claims, err := a.Authenticate(c.Request.Context(), token)
		if err != nil {
			if !errors.Is(err, apperr.ErrAuthenticationRequired) {
				entry.WithError(err).Error("token check failed")
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error", "code": apperr.CodeInternal})
				return
			}
			entry.WithError(err).Warn("invalid token")
			abortUnauthorized(c, "Invalid or expired token")
			return
		}

		c.Set(ctxUserKey, user)
		c.Set(ctxClaimsKey, claims)
		c.Set(ctxUserIDKey, user.ID)
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg, "code": apperr.CodeAuthenticationRequired})
}

func extractToken(c *gin.Context) (string, error) {
	if header := c.GetHeader("Authorization"); header != "" {
		parts := strings.Fields(header)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return "", errors.New("malformed Authorization header")
		}
		return parts[1], nil
	}
	if token := c.Query("token"); token != "" {
		return token, nil
	}
	return "", ErrMissingToken
}

// CurrentUser returns the user stored by Auth, or nil.
func CurrentUser(c *gin.Context) *models.User {
	v, ok := c.Get(ctxUserKey)
	if !ok {
		return nil
	}
	user, _ := v.(*models.User)
	return user
}

func CurrentClaims(c *gin.Context) *auth.Claims {
	v, ok := c.Get(ctxClaimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*auth.Claims)
	return claims
}

func loggerOrDefault(log *logrus.Logger) *logrus.Logger {
	if log == nil {
		return logrus.StandardLogger()
	}
	return log
}
