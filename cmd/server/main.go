package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kitchen_control/internal/config"
	"kitchen_control/internal/database"
	"kitchen_control/internal/repositories"
	"kitchen_control/internal/router"
	"kitchen_control/internal/session"
	"kitchen_control/pkg/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

func main() {
	// A missing .env is fine; real deployments use the environment.
	_ = godotenv.Load()

	cfg := config.LoadEnv()
	utils.InitLogger(cfg.Logger.Level, cfg.Logger.Pretty)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := newSessionStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("store", cfg.Session.Store).Msg("Failed to initialize session store")
	}
	defer closeStore()

	sessions := session.NewManager(store, session.SystemClock{}, session.ManagerConfig{
		Secret:      []byte(cfg.Session.Secret),
		IdleTimeout: cfg.Session.IdleTimeout,
	})
	defer sessions.Close()

	api := repositories.NewAPIClient(cfg.API.BaseURL, cfg.API.Timeout)

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(utils.GinLogger())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.Server.CORSAllowedOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", utils.RequestIDHeader}
	corsConfig.ExposeHeaders = []string{utils.RequestIDHeader, "Location"}
	corsConfig.AllowCredentials = true
	engine.Use(cors.New(corsConfig))

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	router.Setup(engine, router.Dependencies{Config: cfg, API: api, Sessions: sessions})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		utils.LogInfo("Server starting", map[string]interface{}{
			"port":          cfg.Server.Port,
			"api_base_url":  cfg.API.BaseURL,
			"session_store": cfg.Session.Store,
			"idle_timeout":  cfg.Session.IdleTimeout.String(),
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	<-ctx.Done()
	utils.LogInfo("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		utils.LogError(err, "Server forced to shutdown")
	}
}

// newSessionStore builds the configured session backend. The returned func
// releases its connections.
func newSessionStore(ctx context.Context, cfg *config.Config) (session.Store, func(), error) {
	switch cfg.Session.Store {
	case config.StorePostgres:
		db, err := database.ConnectPostgres(ctx, cfg.Postgres)
		if err != nil {
			return nil, nil, err
		}
		store := session.NewPostgresStore(db)
		if err := store.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		go sweepIdleSessions(ctx, store, cfg.Session.IdleTimeout)
		return store, func() { db.Close() }, nil

	case config.StoreRedis:
		client, err := database.ConnectRedis(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		return session.NewRedisStore(client, cfg.Session.IdleTimeout), func() { client.Close() }, nil

	default:
		if cfg.Session.Store != config.StoreMemory {
			utils.LogWarn(nil, "Unknown session store, using memory", map[string]interface{}{"store": cfg.Session.Store})
		}
		return session.NewMemoryStore(), func() {}, nil
	}
}

// sweepIdleSessions removes Postgres sessions whose timers died with a
// previous process.
func sweepIdleSessions(ctx context.Context, store *session.PostgresStore, idle time.Duration) {
	ticker := time.NewTicker(idle)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			n, err := store.PurgeIdle(ctx, now.Add(-idle))
			if err != nil {
				utils.LogError(err, "Session sweep failed")
				continue
			}
			if n > 0 {
				utils.LogDebug("Swept idle sessions", map[string]interface{}{"count": n})
			}
		}
	}
}
