package main

import (
	"bayroute/config"
	"bayroute/routes"
	"bayroute/services"
	"bayroute/storage"
	"bayroute/websocket"
	"bayroute/workers"
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	// Initialize configuration
	cfg := config.Load()

	// Set Gin mode
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize logger
	setupLogger(cfg)

	// Initialize Redis and the snapshot store
	redisClient := config.InitRedis(cfg)
	defer redisClient.Close()

	store := storage.NewRedisSnapshotStore(redisClient)
	if err := store.Ping(context.Background()); err != nil {
		logrus.Fatal("Failed to connect to Redis: ", err)
	}

	// Initialize WebSocket hub
	hub := websocket.NewHub()
	go hub.Run()

	// Initialize the buddy engine
	transport := cfg.InitTransport()
	locSource := services.NewSimulatedLocationSource(cfg.LocationSourceSeed)
	buddyService := services.NewBuddyService(store, transport, locSource, hub)
	buddyService.Initialize(context.Background())

	// Start the host-owned location sampler
	locationWorker := workers.StartLocationWorker(
		buddyService,
		locSource,
		time.Duration(cfg.LocationSampleSeconds)*time.Second,
	)
	defer locationWorker.Stop()

	// Setup routes
	router := routes.SetupRoutes(buddyService, hub, store, redisClient)

	// Create HTTP server
	server := &http.Server{
		Addr:           ":" + cfg.Port,
		Handler:        router,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   15 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	// Start server in goroutine
	go func() {
		logrus.Info("🚌 BayRoute Buddy Backend starting on port ", cfg.Port)
		logrus.Info("📱 WebSocket endpoint: /ws")
		logrus.Info("💖 Health Check: /health")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatal("Failed to start server: ", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("🛑 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logrus.Fatal("Server forced to shutdown: ", err)
	}

	logrus.Info("✅ Server shutdown complete")
}

func setupLogger(cfg *config.Config) {
	logrus.SetFormatter(&logrus.JSONFormatter{})

	if cfg.Environment == "development" {
		logrus.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
			ForceColors:   true,
		})
		logrus.SetLevel(logrus.DebugLevel)
	} else {
		logrus.SetLevel(logrus.InfoLevel)
	}
}
