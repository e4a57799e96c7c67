package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"github.com/cinelog/backend/internal/auth"
	"github.com/cinelog/backend/internal/cache"
	"github.com/cinelog/backend/internal/catalog"
	"github.com/cinelog/backend/internal/config"
	"github.com/cinelog/backend/internal/database"
	"github.com/cinelog/backend/internal/handlers"
	"github.com/cinelog/backend/internal/logger"
	"github.com/cinelog/backend/internal/metrics"
	"github.com/cinelog/backend/internal/middleware"
	"github.com/cinelog/backend/internal/recommend"
	"github.com/cinelog/backend/internal/telemetry"
	"github.com/cinelog/backend/internal/watchlist"
)

const serviceName = "cinelog-backend"

func main() {
	// .env is optional; the system environment is enough
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("configuration error: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := logger.Initialize(cfg.LogLevel, cfg.LogFile); err != nil {
		os.Stderr.WriteString("logger error: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer logger.Close()

	logger.InfoWithFields("starting server", zap.String("service", serviceName))

	metrics.Initialize()

	tp, err := telemetry.InitTracer(telemetry.Config{
		ServiceName:  serviceName,
		Environment:  cfg.Environment,
		OTLPEndpoint: cfg.OTLPEndpoint,
		Enabled:      cfg.TracingEnabled,
		SamplingRate: 1.0,
	})
	if err != nil {
		logger.FatalWithFields("failed to initialize tracing", err)
	}
	if tp != nil {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tp.Shutdown(ctx); err != nil {
				logger.Warn("tracer shutdown", zap.Error(err))
			}
		}()
	}

	if err := database.Initialize(); err != nil {
		logger.FatalWithFields("failed to initialize database", err)
	}
	defer database.Close()

	if err := database.Migrate(); err != nil {
		logger.FatalWithFields("failed to run migrations", err)
	}

	// Falls back to an in-process cache when redis is unreachable
	store := cache.NewStore(cfg.RedisHost, cfg.RedisPort, cfg.RedisPassword)

	catalogClient := catalog.NewClient(cfg.TMDBBaseURL, cfg.TMDBAPIKey)
	cachedCatalog := catalog.NewCachedClient(catalogClient, store, cfg.SearchCacheTTL)

	watchlistSvc := watchlist.NewService(database.DB)
	engine := recommend.NewEngine(catalogClient, database.DB, cfg.DiscoverRegion)
	authService := auth.NewService(cfg.JWTSecret)

	h := handlers.NewHandlers(cachedCatalog, watchlistSvc, engine)
	authHandlers := handlers.NewAuthHandlers(authService)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.GinLoggerMiddleware())
	r.Use(middleware.MetricsMiddleware())
	r.Use(otelgin.Middleware(serviceName))
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"*"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "X-Request-ID"}
	r.Use(cors.New(corsConfig))

	r.GET("/health", func(c *gin.Context) {
		status := "ok"
		code := http.StatusOK
		if err := database.Health(); err != nil {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{
			"status":    status,
			"timestamp": time.Now().UTC(),
			"service":   serviceName,
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", authHandlers.Register)
			authGroup.POST("/login", authHandlers.Login)
			authGroup.GET("/me", authService.Middleware(), authHandlers.Me)
		}

		// Catalog reads are public; the detail page picks up watchlist
		// state when a valid token is sent
		api.GET("/search", h.SearchMovies)
		api.GET("/search/suggest", h.SearchSuggest)
		api.GET("/movies/:id", authService.OptionalMiddleware(), h.GetMovieDetail)

		protected := api.Group("")
		protected.Use(authService.Middleware())
		{
			protected.GET("/watchlist", h.GetWatchlist)
			protected.POST("/watchlist/toggle", h.ToggleWatchlist)
			protected.POST("/watchlist/rating", h.SubmitRating)

			protected.GET("/recommendations", h.GetRecommendations)

			protected.GET("/profile/stats", h.GetProfileStats)
		}
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		logger.InfoWithFields("listening", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.FatalWithFields("server failed", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.InfoWithFields("shutting down")

	// Give outstanding requests 30 seconds to complete
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.FatalWithFields("forced shutdown", err)
	}

	logger.InfoWithFields("server exited")
}
