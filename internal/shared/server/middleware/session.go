package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const sessionIDKey = "sessionId"

// Session correlates a browser's upload -> scorecard -> essay sequence.
// Clients send X-Session-Id once issued; a missing or blank header gets a
// fresh opaque id. No server-side state is attached to the id itself.
func Session() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		id := c.GetHeader("X-Session-Id")
		if id == "" || uuid.Validate(id) != nil {
			id = uuid.NewString()
		}
		c.Set(sessionIDKey, id)
		c.Writer.Header().Set("X-Session-Id", id)
		c.Next()
	}
}

// SessionIDFromContext fetches the session ID stored by Session middleware.
func SessionIDFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	val, _ := c.Get(sessionIDKey)
	if id, ok := val.(string); ok {
		return id
	}
	return ""
}
