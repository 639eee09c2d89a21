package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"fintrack/internal/models"
	"fintrack/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	tokenCookie = "token"

	userContextKey  = "User"
	tokenContextKey = "Token"
)

// AuthMiddleware guards protected routes. Order matters: the
// blacklist is consulted before the signature check, because
// revocation is the only way to kill a token before its expiry.
func (h *Handler) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		const op = "handler.AuthMiddleware"

		log := h.log.With(slog.String("op", op))

		token := extractToken(c)
		if token == "" {
			newErrorResponse(c, http.StatusUnauthorized, "access denied, token missing")

			return
		}

		revoked, err := h.blacklist.IsRevoked(c.Request.Context(), token)
		if err != nil {
			log.Error("blacklist lookup failed", slog.Any("error", err))

			newErrorResponse(c, http.StatusInternalServerError, "internal error")

			return
		}
		if revoked {
			clearTokenCookie(c)

			newErrorResponse(c, http.StatusUnauthorized, "token is revoked")

			return
		}

		claims, err := h.issuer.Verify(token)
		if err != nil {
			newErrorResponse(c, http.StatusUnauthorized, "invalid token")

			return
		}

		user, err := h.serviceLayer.GetUserByID(c.Request.Context(), claims.UserID)
		if errors.Is(err, service.ErrNotFound) {
			newErrorResponse(c, http.StatusUnauthorized, "invalid token - user not found")

			return
		}
		if err != nil {
			log.Error("failed to resolve token subject", slog.Any("error", err))

			newErrorResponse(c, http.StatusInternalServerError, "internal error")

			return
		}

		c.Set(userContextKey, user)
		c.Set(tokenContextKey, token)

		c.Next()
	}
}

// extractToken pulls the bearer token from the "token" cookie or,
// failing that, the Authorization header.
func extractToken(c *gin.Context) string {
	if cookie, err := c.Cookie(tokenCookie); err == nil && cookie != "" {
		return cookie
	}

	authHeader := c.GetHeader("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) == 2 && parts[0] == "Bearer" {
		return parts[1]
	}

	return ""
}

func currentUser(c *gin.Context) (models.User, bool) {
	value, ok := c.Get(userContextKey)
	if !ok {
		return models.User{}, false
	}

	user, ok := value.(models.User)
	return user, ok
}

func currentToken(c *gin.Context) string {
	value, ok := c.Get(tokenContextKey)
	if !ok {
		return ""
	}

	token, _ := value.(string)
	return token
}

// The cookie is issued for cross-site use by the SPA frontend:
// httpOnly, Secure, SameSite=None.
func setTokenCookie(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteNoneMode)
	c.SetCookie(tokenCookie, token, maxAge, "/", "", true, true)
}

func clearTokenCookie(c *gin.Context) {
	setTokenCookie(c, "", -1)
}
