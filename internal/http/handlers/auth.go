package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/Lauda128109319/food-alert/internal/auth"
	"github.com/Lauda128109319/food-alert/internal/config"
	"github.com/Lauda128109319/food-alert/internal/domain/user"
	"github.com/Lauda128109319/food-alert/internal/repo/postgres"
	"github.com/Lauda128109319/food-alert/internal/security"
	"github.com/gin-gonic/gin"
)

type UserReader interface {
	GetByUsername(ctx context.Context, username string) (user.User, error)
}

type UserWriter interface {
	Create(ctx context.Context, username, passwordHash string) (user.User, error)
}

type AuthHandler struct {
	users      UserReader
	userWriter UserWriter
	jwt        *auth.Manager
}

func NewAuthHandler(users UserReader, userWriter UserWriter, jwtManager *auth.Manager) *AuthHandler {
	return &AuthHandler{
		users:      users,
		userWriter: userWriter,
		jwt:        jwtManager,
	}
}

type RegisterRequest struct {
	Username string `json:"username" binding:"required,max=64"`
	Password string `json:"password" binding:"required,min=4,max=128"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Register(ctx *gin.Context) {
	var req RegisterRequest

	if !BindJSON(ctx, &req) {
		return
	}

	// whitespace-only credentials count as empty input
	req.Username = strings.TrimSpace(req.Username)

	if req.Username == "" || strings.TrimSpace(req.Password) == "" {
		RespondBadRequest(ctx, "Username and password are required.", nil)
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	hash, err := security.HashPassword(req.Password)

	if err != nil {
		RespondInternal(ctx, "Could not create user")
		return
	}

	u, err := h.userWriter.Create(cctx, req.Username, hash)

	if err != nil {
		if errors.Is(err, postgres.ErrUsernameTaken) {
			RespondConflict(ctx, "username_taken", "That name is already in use.")
			return
		}

		RespondInternal(ctx, "Could not create user")
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"message": "registered",
		"user":    gin.H{"id": u.ID, "username": u.Username},
	})
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}
	// short timeout for DB lookup
	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	foundUser, err := h.users.GetByUsername(cctx, req.Username)
	if err != nil {
		// same message as a wrong password so usernames can't be enumerated
		RespondUnAuthorized(ctx, "invalid_credentials", "Username or password is incorrect.")
		return
	}

	err = security.CheckPassword(foundUser.PasswordHash, req.Password)

	if err != nil {
		RespondUnAuthorized(ctx, "invalid_credentials", "Username or password is incorrect.")
		return
	}

	token, err := h.jwt.GenerateSessionToken(foundUser.ID, foundUser.Username)

	if err != nil {
		RespondInternal(ctx, "Could not create session")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "ok",
		"user":    gin.H{"id": foundUser.ID, "username": foundUser.Username},
		"token":   token,
	})
}
