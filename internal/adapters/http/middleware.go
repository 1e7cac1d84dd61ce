package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/imelnik/peerview/internal/auth"
)

const identityKey = "identity"

// RequireAuth verifies the bearer token and stashes the identity on the
// context. The token is read from the Authorization header, or from the
// "token" query parameter for the WebSocket endpoint (browsers cannot set
// headers on WS dials).
func RequireAuth(tokens *auth.Tokens) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "not authorized, no token provided or token malformed."})
			return
		}
		id, err := tokens.Verify(token)
		if err != nil {
			log.Warn().Err(err).Str("module", "adapters.http").Msg("token verification failed")
			if errors.Is(err, auth.ErrTokenExpired) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "token expired. please log in again."})
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "not authorized, token failed."})
			return
		}
		c.Set(identityKey, id)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return c.Query("token")
}

// CurrentIdentity returns the identity set by RequireAuth.
func CurrentIdentity(c *gin.Context) auth.Identity {
	id, _ := c.Get(identityKey)
	ident, _ := id.(auth.Identity)
	return ident
}
