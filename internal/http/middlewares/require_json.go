package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// RequireJSON rejects mutating requests that do not declare a JSON body.
// Every write on the API takes JSON, so a missing or foreign Content-Type is
// a client bug worth failing loudly.
func RequireJSON() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		switch ctx.Request.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
			ct := ctx.GetHeader("Content-Type")

			// a charset suffix ("application/json; charset=utf-8") is fine
			if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
				ctx.AbortWithStatusJSON(http.StatusUnsupportedMediaType, gin.H{
					"error": gin.H{
						"code":    "unsupported_media_type",
						"message": "Content-Type must be application/json",
					},
				})
				return
			}
		}

		ctx.Next()
	}
}
