package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Recovery turns a panicking handler into a 500. The stack is only logged
// outside production.
func Recovery(log zerolog.Logger, production bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}

			event := log.Error().
				Interface("panic", r).
				Str("request_id", RequestIDFrom(c)).
				Str("path", c.Request.URL.Path)
			if !production {
				event = event.Bytes("stack", debug.Stack())
			}
			event.Msg("panic recovered")

			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error": "internal_server_error",
			})
		}()
		c.Next()
	}
}
