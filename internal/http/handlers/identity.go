package handlers

import (
	"github.com/Lauda128109319/food-alert/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

// requireOwner enforces the session contract on endpoints that name a user:
// a request without a token passes (the original client identifies itself by
// username alone), but a verified bearer identity must agree with the
// username being operated on. On a mismatch it writes a 403 and returns
// false.
func requireOwner(ctx *gin.Context, owner string) bool {
	name, ok := middlewares.UsernameFromContext(ctx)

	if !ok || name == owner {
		return true
	}

	RespondForbidden(ctx, "Session token does not match the requested username")
	return false
}
