package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Lauda128109319/food-alert/internal/auth"
	"github.com/Lauda128109319/food-alert/internal/domain/user"
	"github.com/Lauda128109319/food-alert/internal/http/handlers"
	"github.com/Lauda128109319/food-alert/internal/repo/postgres"
	"github.com/Lauda128109319/food-alert/internal/security"
	"github.com/gin-gonic/gin"
)

// Make sure Gin does not spam the console during the test

func init() {
	gin.SetMode(gin.TestMode)
}

// Fake user store implementing both the reader and writer interfaces

type fakeUsersRepo struct {
	createFn func(ctx context.Context, username, passwordHash string) (user.User, error)
	getFn    func(ctx context.Context, username string) (user.User, error)
}

func (f *fakeUsersRepo) Create(ctx context.Context, username, passwordHash string) (user.User, error) {
	if f.createFn != nil {
		return f.createFn(ctx, username, passwordHash)
	}

	return user.User{}, nil
}

func (f *fakeUsersRepo) GetByUsername(ctx context.Context, username string) (user.User, error) {
	if f.getFn != nil {
		return f.getFn(ctx, username)
	}

	return user.User{}, nil
}

// small helper function which returns the gin engine to mount one handler per test

func setupRouter(method, path string, h gin.HandlerFunc) *gin.Engine {
	r := gin.New()

	r.Handle(method, path, h)

	return r
}

func testJWT() *auth.Manager {
	return auth.NewManager("test-secret", time.Hour)
}

func TestRegisterHandler(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		repoSetup      func(*fakeUsersRepo)
		wantStatusCode int
	}{
		{
			name: "success",
			body: `{"username": "alice", "password": "hunter22"}`,
			repoSetup: func(f *fakeUsersRepo) {
				f.createFn = func(ctx context.Context, username, passwordHash string) (user.User, error) {
					if passwordHash == "hunter22" {
						return user.User{}, errors.New("password stored in plain text")
					}

					return user.User{ID: "u-1", Username: username}, nil
				}
			},
			wantStatusCode: http.StatusCreated,
		},
		{
			name:           "missing_password",
			body:           `{"username": "alice"}`,
			repoSetup:      nil, // repo should not be called
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:           "whitespace_username",
			body:           `{"username": "   ", "password": "hunter22"}`,
			repoSetup:      nil,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "username_taken",
			body: `{"username": "alice", "password": "hunter22"}`,
			repoSetup: func(f *fakeUsersRepo) {
				f.createFn = func(ctx context.Context, username, passwordHash string) (user.User, error) {
					return user.User{}, postgres.ErrUsernameTaken
				}
			},
			wantStatusCode: http.StatusConflict,
		},
		{
			name: "repo_error",
			body: `{"username": "alice", "password": "hunter22"}`,
			repoSetup: func(f *fakeUsersRepo) {
				f.createFn = func(ctx context.Context, username, passwordHash string) (user.User, error) {
					return user.User{}, errors.New("db error")
				}
			},
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			fakeRepo := &fakeUsersRepo{}

			if tt.repoSetup != nil {
				tt.repoSetup(fakeRepo)
			}

			h := handlers.NewAuthHandler(fakeRepo, fakeRepo, testJWT())

			r := setupRouter(http.MethodPost, "/api/register", h.Register)

			req := httptest.NewRequest(http.MethodPost, "/api/register", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

func TestLoginHandler(t *testing.T) {
	hash, err := security.HashPassword("hunter22")

	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	knownUser := user.User{ID: "u-1", Username: "alice", PasswordHash: hash}

	tests := []struct {
		name           string
		body           string
		repoSetup      func(*fakeUsersRepo)
		wantStatusCode int
	}{
		{
			name: "success",
			body: `{"username": "alice", "password": "hunter22"}`,
			repoSetup: func(f *fakeUsersRepo) {
				f.getFn = func(ctx context.Context, username string) (user.User, error) {
					return knownUser, nil
				}
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name: "wrong_password",
			body: `{"username": "alice", "password": "nope"}`,
			repoSetup: func(f *fakeUsersRepo) {
				f.getFn = func(ctx context.Context, username string) (user.User, error) {
					return knownUser, nil
				}
			},
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name: "unknown_user",
			body: `{"username": "mallory", "password": "hunter22"}`,
			repoSetup: func(f *fakeUsersRepo) {
				f.getFn = func(ctx context.Context, username string) (user.User, error) {
					return user.User{}, user.ErrNotFound
				}
			},
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "missing_fields",
			body:           `{"username": "alice"}`,
			repoSetup:      nil,
			wantStatusCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			fakeRepo := &fakeUsersRepo{}

			if tt.repoSetup != nil {
				tt.repoSetup(fakeRepo)
			}

			h := handlers.NewAuthHandler(fakeRepo, fakeRepo, testJWT())

			r := setupRouter(http.MethodPost, "/api/login", h.Login)

			req := httptest.NewRequest(http.MethodPost, "/api/login", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}

			if tt.wantStatusCode == http.StatusOK {
				var resp struct {
					Token string `json:"token"`
					User  struct {
						ID       string `json:"id"`
						Username string `json:"username"`
					} `json:"user"`
				}

				if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
					t.Fatalf("unmarshal response: %v", err)
				}

				if resp.Token == "" {
					t.Fatalf("no session token in response")
				}

				if resp.User.Username != "alice" {
					t.Fatalf("user = %+v", resp.User)
				}
			}
		})
	}
}

// Failed logins must be indistinguishable whether the name or the password is
// wrong.
func TestLoginHandlerUniformFailureMessage(t *testing.T) {
	hash, err := security.HashPassword("hunter22")

	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	wrongPassword := &fakeUsersRepo{
		getFn: func(ctx context.Context, username string) (user.User, error) {
			return user.User{ID: "u-1", Username: "alice", PasswordHash: hash}, nil
		},
	}

	unknownUser := &fakeUsersRepo{
		getFn: func(ctx context.Context, username string) (user.User, error) {
			return user.User{}, user.ErrNotFound
		},
	}

	bodies := make([]string, 0, 2)

	for _, repo := range []*fakeUsersRepo{wrongPassword, unknownUser} {
		h := handlers.NewAuthHandler(repo, repo, testJWT())
		r := setupRouter(http.MethodPost, "/api/login", h.Login)

		req := httptest.NewRequest(http.MethodPost, "/api/login", bytes.NewBufferString(`{"username": "alice", "password": "nope"}`))
		req.Header.Set("Content-Type", "application/json")

		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Fatalf("got status %d, want 401", w.Code)
		}

		bodies = append(bodies, w.Body.String())
	}

	if bodies[0] != bodies[1] {
		t.Fatalf("failure responses differ:\n%s\n%s", bodies[0], bodies[1])
	}
}
