package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/Lauda128109319/food-alert/internal/config"
	"github.com/Lauda128109319/food-alert/internal/domain/food"
	"github.com/gin-gonic/gin"
)

type RecipeSuggester interface {
	Suggest(ctx context.Context, apiKey string, items []food.Item) (string, error)
}

type RecipesHandler struct {
	foods   FoodsStore
	recipes RecipeSuggester
}

func NewRecipesHandler(foods FoodsStore, recipes RecipeSuggester) *RecipesHandler {
	return &RecipesHandler{foods: foods, recipes: recipes}
}

type RecipeRequest struct {
	Username string `json:"username" binding:"required"`
	APIKey   string `json:"apiKey" binding:"required"`
}

// POST /api/recipes loads the user's current items and asks the suggestion
// collaborator for three recipes. The collaborator's own error text passes
// through on failure so the user sees why their key was rejected.
func (h *RecipesHandler) Suggest(ctx *gin.Context) {
	var req RecipeRequest

	if !BindJSON(ctx, &req) {
		return
	}

	if !requireOwner(ctx, req.Username) {
		return
	}

	cctx, cancel := config.WithTimeout(35 * time.Second)

	defer cancel()

	items, err := h.foods.ListByOwner(cctx, req.Username)

	if err != nil {
		RespondInternal(ctx, "Could not load food items")
		return
	}

	if len(items) == 0 {
		RespondBadRequest(ctx, "No food items to suggest recipes for", nil)
		return
	}

	html, err := h.recipes.Suggest(cctx, req.APIKey, items)

	if err != nil {
		RespondBadGateway(ctx, "recipe_service_error", err.Error())
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"html": html})
}
