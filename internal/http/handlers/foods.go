package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/Lauda128109319/food-alert/internal/cache"
	"github.com/Lauda128109319/food-alert/internal/config"
	"github.com/Lauda128109319/food-alert/internal/domain/food"
	"github.com/Lauda128109319/food-alert/internal/http/middlewares"
	"github.com/Lauda128109319/food-alert/internal/repo/postgres"
	"github.com/gin-gonic/gin"
)

type FoodsStore interface {
	ListByOwner(ctx context.Context, owner string) ([]food.Item, error)
	Create(ctx context.Context, it food.Item) (food.Item, error)
	GetByID(ctx context.Context, id string) (food.Item, error)
	Update(ctx context.Context, id string, req food.UpdateItemRequest) (food.Item, error)
	Delete(ctx context.Context, id string) error
}

type FoodsHandler struct {
	foods FoodsStore
	views *cache.Cache
}

func NewFoodsHandler(foods FoodsStore, views *cache.Cache) *FoodsHandler {
	return &FoodsHandler{foods: foods, views: views}
}

func (h *FoodsHandler) invalidate(owner string) {
	if h.views != nil {
		h.views.InvalidateOwner(owner)
	}
}

// GET /api/foods?username=... lists the caller's items in insertion order.
func (h *FoodsHandler) List(ctx *gin.Context) {
	owner := ctx.Query("username")

	if owner == "" {
		RespondBadRequest(ctx, "username query parameter is required", nil)
		return
	}

	if !requireOwner(ctx, owner) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	items, err := h.foods.ListByOwner(cctx, owner)

	if err != nil {
		RespondInternal(ctx, "Could not load food items")
		return
	}

	if items == nil {
		items = []food.Item{}
	}

	ctx.JSON(http.StatusOK, items)
}

func (h *FoodsHandler) Create(ctx *gin.Context) {
	var req food.CreateItemRequest

	if !BindJSON(ctx, &req) {
		return
	}

	if !requireOwner(ctx, req.Username) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	it, err := h.foods.Create(cctx, food.NewFromCreateRequest(req))

	if err != nil {
		if errors.Is(err, postgres.ErrUnknownOwner) {
			RespondBadRequest(ctx, "Unknown user", nil)
			return
		}

		RespondInternal(ctx, "Could not save food item")
		return
	}

	h.invalidate(it.Owner)

	// 200 rather than 201, the add flow treats any other status as a failure
	ctx.JSON(http.StatusOK, it)
}

func (h *FoodsHandler) Update(ctx *gin.Context) {
	id := ctx.Param("id")

	var req food.UpdateItemRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	// the route only carries the id, so with a verified identity on the
	// request the owner has to be looked up before anything is mutated
	if _, authed := middlewares.UsernameFromContext(ctx); authed {
		cur, getErr := h.foods.GetByID(cctx, id)

		if getErr != nil && !errors.Is(getErr, food.ErrNotFound) {
			RespondInternal(ctx, "Could not update food item")
			return
		}

		if getErr == nil && !requireOwner(ctx, cur.Owner) {
			return
		}
	}

	it, err := h.foods.Update(cctx, id, req)

	if err != nil {
		if errors.Is(err, food.ErrNotFound) {
			RespondNotFound(ctx, "Food item not found")
			return
		}

		RespondInternal(ctx, "Could not update food item")
		return
	}

	h.invalidate(it.Owner)

	ctx.JSON(http.StatusOK, it)
}

// Delete answers 200 whether or not the item exists, matching the
// delete-then-confirm flow on the client where a double tap is harmless.
func (h *FoodsHandler) Delete(ctx *gin.Context) {
	id := ctx.Param("id")

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	// the item is looked up first only to know whose views to invalidate
	it, err := h.foods.GetByID(cctx, id)

	if err != nil && !errors.Is(err, food.ErrNotFound) {
		RespondInternal(ctx, "Could not delete food item")
		return
	}

	if it.Owner != "" && !requireOwner(ctx, it.Owner) {
		return
	}

	if err := h.foods.Delete(cctx, id); err != nil {
		RespondInternal(ctx, "Could not delete food item")
		return
	}

	if it.Owner != "" {
		h.invalidate(it.Owner)
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "deleted"})
}
