package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type SessionIdentity interface {
	Identity() (string, bool)
}

// RequireSession aborts with 401 unless a user is logged in. The username is
// made available to later handlers under "username".
func RequireSession(session SessionIdentity) gin.HandlerFunc {
	return func(c *gin.Context) {
		username, ok := session.Identity()

		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing authentication"})
			c.Abort()
			return
		}

		c.Set("username", username)
	}
}
