package http

import (
	"context"
	"log/slog"
	"time"

	"github.com/Lauda128109319/food-alert/internal/auth"
	"github.com/Lauda128109319/food-alert/internal/cache"
	"github.com/Lauda128109319/food-alert/internal/config"
	"github.com/Lauda128109319/food-alert/internal/http/handlers"
	"github.com/Lauda128109319/food-alert/internal/http/middlewares"
	"github.com/Lauda128109319/food-alert/internal/observability"
	"github.com/Lauda128109319/food-alert/internal/recipes"
	"github.com/Lauda128109319/food-alert/internal/repo/postgres"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

func NewRouter(cfg config.Config, log *slog.Logger, pool *pgxpool.Pool, prom *observability.Prom, promReg *prometheus.Registry) *gin.Engine {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// middleware

	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(log))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.AllowedOrigins))
	r.Use(middlewares.MaxBodyBytes(1 << 20))
	r.Use(otelgin.Middleware("food-alert-api"))

	if prom != nil {
		r.Use(prom.GinHandleMiddleware())
	}

	jwtManager := auth.NewManager(cfg.JWTSecret, time.Duration(cfg.SessionTTLMinutes)*time.Minute)

	authMw := middlewares.NewAuthMiddleware(jwtManager)
	r.Use(authMw.SessionIdentity())

	// health
	ping := func() error {
		if pool == nil {
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()

		return pool.Ping(ctx)
	}

	h := handlers.NewHealthHandler(ping)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)

	if promReg != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(promReg, promhttp.HandlerOpts{})))
	}

	// wire up repositories
	usersRepo := postgres.NewUsersRepo(pool, prom)
	foodsRepo := postgres.NewFoodsRepo(pool, prom)

	// snapshots stay cached only briefly so every mutation path can simply
	// invalidate and move on
	viewCache := cache.New(5 * time.Second)

	recipeClient := recipes.NewClient(cfg.GeminiBaseURL, cfg.GeminiModel)

	authHandler := handlers.NewAuthHandler(usersRepo, usersRepo, jwtManager)
	foodsHandler := handlers.NewFoodsHandler(foodsRepo, viewCache)
	viewsHandler := handlers.NewViewsHandler(foodsRepo, viewCache, time.Now)
	recipesHandler := handlers.NewRecipesHandler(foodsRepo, recipeClient)
	voiceHandler := handlers.NewVoiceHandler()

	// credential endpoints are limited per IP against brute force; the
	// recipe endpoint proxies an external model call and is limited per
	// user (falling back to IP when no session identity is attached)
	limiter := middlewares.NewRateLimiter(10, time.Minute)
	recipeLimiter := middlewares.NewRateLimiter(5, time.Minute)

	api := r.Group("/api")
	api.Use(middlewares.RequireJSON())

	api.POST("/register", limiter.RateLimiterMiddleware(middlewares.KeyByIP), authHandler.Register)
	api.POST("/login", limiter.RateLimiterMiddleware(middlewares.KeyByIP), authHandler.Login)

	api.GET("/foods", foodsHandler.List)
	api.POST("/foods", foodsHandler.Create)
	api.PUT("/foods/:id", foodsHandler.Update)
	api.DELETE("/foods/:id", foodsHandler.Delete)

	api.GET("/views", viewsHandler.Get)
	api.POST("/commands", viewsHandler.Apply)

	api.POST("/recipes", recipeLimiter.RateLimiterMiddleware(middlewares.KeyByUserOrIP), recipesHandler.Suggest)
	api.POST("/voice/parse", voiceHandler.Parse)

	return r
}
