package identity

import (
	"net/http"
	"strings"

	"github.com/beka-birhanu/vinom-maze/service/i"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// ContextPlayerID is the key used to store the player id in the Gin context.
	ContextPlayerID = "playerID"
	// ContextPlayerName is the key used to store the player name in the Gin context.
	ContextPlayerName = "playerName"
)

// Authoriz rejects requests without a valid token. The token is read from
// the Authorization header, or from the token query parameter for clients
// such as browsers opening a websocket, which cannot set headers.
func Authoriz(a i.Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		playerID, name, err := a.Authenticate(token)
		if err != nil {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		// Attach the player to the request context for further use.
		c.Set(ContextPlayerID, playerID)
		c.Set(ContextPlayerName, name)
		c.Next()
	}
}

// PlayerID returns the player attached by Authoriz.
func PlayerID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(ContextPlayerID)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		token := c.Query("token")
		return token, token != ""
	}

	// Split the "Bearer" prefix from the token.
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
