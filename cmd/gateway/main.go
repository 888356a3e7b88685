package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"WeGap/global"
	"WeGap/logger"
	midsec "WeGap/middleware/security"
	"WeGap/module/user"
	"WeGap/service/chat"
	"WeGap/service/natsx"
	"WeGap/service/storage"
	"WeGap/tools/security"
)

func main() {
	configPath := flag.String("config", "", "path to yaml config file")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := global.Load(*configPath)
	if err != nil {
		logger.Errorf("load config: %v", err)
		return
	}
	logger.SetLevel(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := storage.Connect(ctx, cfg.Postgres.DSN)
	if err != nil {
		logger.Errorf("postgres: %v", err)
		return
	}
	defer pool.Close()
	store := storage.NewPgStore(pool)

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()
	presence := storage.NewPresence(rdb, cfg.PresenceTTL)

	jwtOpts := security.Options{Secret: []byte(cfg.JWTSecret), Alg: "HS256", TTL: cfg.TokenTTL}

	hub := chat.NewHub(
		chat.HubConfig{
			NodeID:          cfg.NodeID,
			MaxBodyBytes:    cfg.MaxBodyBytes,
			PersistTimeout:  cfg.PersistTimeout,
			ReplayOnConnect: cfg.ReplayOnConnect,
		},
		chat.NewRegistry(),
		chat.NewTracker(),
		chat.NewRouter(store, store),
		store,
		chat.NewFanout(4, 1024),
		security.NewTokenAuthenticator(jwtOpts),
	).WithPresence(presence)

	// Lifecycle events are optional; the gateway serves without NATS.
	if len(cfg.Nats.Servers) > 0 {
		nc, err := natsx.New(natsx.Config{Servers: cfg.Nats.Servers, Name: cfg.Nats.Name})
		if err != nil {
			logger.Warnf("nats: %v (lifecycle events disabled)", err)
		} else {
			defer nc.Close()
			hub.WithEvents(natsx.NewEmitter(nc, cfg.NodeID))
		}
	}

	ws := chat.NewWsServer(hub, chat.NewDefaultDispatcher(hub), cfg.IdleTimeout, cfg.SendQueueSize, cfg.MaxBodyBytes)
	users := user.NewHandler(store, jwtOpts)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.GET("/chat", ws.HandleWS)
	r.POST("/login", users.HandleLogin)
	r.POST("/check", midsec.BearerAuth(jwtOpts), users.HandleCheck)
	r.GET("/healthz", func(c *gin.Context) {
		if err := pool.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "postgres": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "connections": hub.Registry().Count()})
	})

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: r}
	go func() {
		logger.Infof("gateway %s listening on %s", cfg.NodeID, cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf("http server: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("http shutdown: %v", err)
	}
	hub.Shutdown(shutdownCtx)
	logger.Info("gateway stopped")
}
