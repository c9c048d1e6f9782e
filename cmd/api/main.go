package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"real-estate-marketplace/internal/cache"
	"real-estate-marketplace/internal/catalog"
	"real-estate-marketplace/internal/config"
	"real-estate-marketplace/internal/handlers"
	"real-estate-marketplace/internal/history"
	"real-estate-marketplace/internal/logger"
	"real-estate-marketplace/internal/metrics"
	"real-estate-marketplace/internal/models"
	"real-estate-marketplace/internal/ratelimit"
	"real-estate-marketplace/internal/savedsearch"
	"real-estate-marketplace/internal/scheduler"
	"real-estate-marketplace/internal/search"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

var (
	appConfig    *config.Config
	appCatalog   *catalog.Catalog
	resultCache  *cache.ResultCache
	rateLimiter  *ratelimit.RateLimiter
	appScheduler *scheduler.Scheduler
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	// Load configuration
	configPath := getEnv("CONFIG_PATH", "config/config.yaml")
	var configErr error
	appConfig, configErr = config.LoadConfig(configPath)
	if configErr != nil {
		appConfig = config.DefaultConfig()
	}

	zapLogger := logger.New(
		getEnv("LOG_LEVEL", appConfig.Logging.Level),
		appConfig.Logging.Format,
	)
	defer zapLogger.Sync()
	log := logger.NewZapAdapter(zapLogger)

	if configErr != nil {
		log.Warn("Failed to load config, using defaults", logger.Fields{"path": configPath, "error": configErr.Error()})
	} else {
		log.Info("Loaded configuration", logger.Fields{"path": configPath})
	}

	loc := appConfig.Location()
	clock := func() time.Time { return time.Now().In(loc) }

	// Catalog and change history
	recorder := history.NewRecorder(clock)
	appCatalog = catalog.New(recorder, clock)
	if err := appCatalog.Load(loadSeed(log)); err != nil {
		zapLogger.Fatal("Failed to load catalog", zap.Error(err))
	}
	log.Info("Catalog loaded", logger.Fields{"properties": appCatalog.Len()})

	engine := search.NewEngine(
		search.WithSearchFields(searchFields(log)...),
		search.WithClock(clock),
	)
	store := savedsearch.NewStore(savedsearch.WithClock(clock))
	metrics.SavedSearches.Set(0)

	// Optional Redis result cache
	if appConfig.Cache.Enabled {
		redisCfg := appConfig.Cache.Redis
		redisCfg.Address = getEnv("REDIS_ADDR", redisCfg.Address)
		resultCache = cache.New(cache.NewRedisClient(redisCfg), appConfig.Cache.GetTTL())

		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := resultCache.Ping(ctx); err != nil {
			log.WithError(err).Warn("Redis unavailable, search cache disabled", logger.Fields{"address": redisCfg.Address})
			resultCache.Close()
			resultCache = nil
		} else {
			log.Info("Search cache enabled", logger.Fields{"address": redisCfg.Address, "ttl": appConfig.Cache.GetTTL().String()})
			defer resultCache.Close()
		}
		cancel()
	}

	// Initialize rate limiter
	rateLimiter = ratelimit.NewRateLimiter(
		appConfig.RateLimit.RequestsPerMinute,
		appConfig.RateLimit.RequestsPerHour,
		appConfig.RateLimit.Enabled,
	)
	log.Info("Rate limiter initialized", logger.Fields{
		"per_minute": appConfig.RateLimit.RequestsPerMinute,
		"per_hour":   appConfig.RateLimit.RequestsPerHour,
		"enabled":    appConfig.RateLimit.Enabled,
	})

	// Initialize and start alert scheduler
	appScheduler = scheduler.NewScheduler(appConfig.Alerts, loc, engine, store, appCatalog,
		scheduler.NewLogNotifier(log), log)
	if err := appScheduler.Start(); err != nil {
		log.WithError(err).Warn("Failed to start scheduler", nil)
	}
	defer appScheduler.Stop()

	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	properties := handlers.NewPropertyHandler(appCatalog, engine, recorder, resultCache, log)
	router := handlers.NewRouter(handlers.RouterConfig{
		Properties:     properties,
		SavedSearches:  handlers.NewSavedSearchHandler(store, properties, log),
		Admin:          handlers.NewAdminHandler(appCatalog, recorder, store, appScheduler, log),
		RateLimiter:    rateLimiter,
		Logger:         log,
		AllowedOrigins: appConfig.Server.AllowedOrigins,
		LogRequests:    appConfig.Logging.LogRequests,
	})

	port := getEnv("PORT", appConfig.Server.Port)
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("Server starting", logger.Fields{"port": port})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server", nil)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("Server forced to shutdown", nil)
	}
}

// loadSeed reads the configured seed file, falling back to the built-in listings
func loadSeed(log logger.Logger) []models.Property {
	path := getEnvOrConfig(appConfig.Catalog.SeedFile, "SEED_FILE", "")
	if path == "" {
		return catalog.DefaultSeed()
	}

	props, err := catalog.LoadSeedFile(path)
	if err != nil {
		log.WithError(err).Warn("Failed to load seed file, using built-in listings", logger.Fields{"path": path})
		return catalog.DefaultSeed()
	}
	log.Info("Loaded seed file", logger.Fields{"path": path, "count": len(props)})
	return props
}

func searchFields(log logger.Logger) []search.TextField {
	fields := make([]search.TextField, 0, len(appConfig.Search.SearchFields))
	for _, name := range appConfig.Search.SearchFields {
		f, ok := search.ParseTextField(name)
		if !ok {
			log.Warn("Ignoring unknown search field", logger.Fields{"field": name})
			continue
		}
		fields = append(fields, f)
	}
	return fields
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvOrConfig returns config value if set, otherwise falls back to environment variable, then default
func getEnvOrConfig(configValue, envKey, defaultValue string) string {
	if configValue != "" {
		return configValue
	}
	return getEnv(envKey, defaultValue)
}
