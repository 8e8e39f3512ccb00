package middleware

import (
	"crypto/subtle"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
)

// InternalAuth guards server-to-server endpoints (database webhooks, the
// send-notification endpoint) behind the shared secret header.
func InternalAuth() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		secret := os.Getenv("INTERNAL_API_KEY")

		if secret == "" {
			ctx.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "Internal API key is not configured"})
			return
		}

		provided := ctx.GetHeader("X-Internal-Api-Key")

		if subtle.ConstantTimeCompare([]byte(provided), []byte(secret)) != 1 {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid internal API key"})
			return
		}

		ctx.Next()
	}
}

// SessionOrInternal admits requests carrying either a valid user session or
// the internal API key. The automation executor uses the latter when calling
// back into the API.
func SessionOrInternal() gin.HandlerFunc {
	session := AuthMiddleware()

	return func(ctx *gin.Context) {
		if HasInternalKey(ctx) {
			ctx.Next()
			return
		}
		session(ctx)
	}
}

// HasInternalKey reports whether the request carries the valid internal
// secret, for endpoints that accept either a user session or an internal
// caller.
func HasInternalKey(ctx *gin.Context) bool {
	secret := os.Getenv("INTERNAL_API_KEY")
	if secret == "" {
		return false
	}

	provided := ctx.GetHeader("X-Internal-Api-Key")
	return subtle.ConstantTimeCompare([]byte(provided), []byte(secret)) == 1
}
