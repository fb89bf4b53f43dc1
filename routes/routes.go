// routes/routes.go
package routes

import (
	"bayroute/controllers"
	"bayroute/middleware"
	"bayroute/models"
	"bayroute/services"
	"bayroute/storage"
	"bayroute/websocket"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
)

var startTime = time.Now()

// SetupRoutes wires the HTTP surface over the buddy engine.
func SetupRoutes(buddyService *services.BuddyService, hub *websocket.Hub, store *storage.RedisSnapshotStore, redisClient *redis.Client) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.CORS())

	// Health check
	router.GET("/health", func(c *gin.Context) {
		deps := map[string]string{"engine": "up"}
		status := "healthy"
		if err := store.Ping(c.Request.Context()); err != nil {
			deps["redis"] = "down"
			status = "degraded"
		} else {
			deps["redis"] = "up"
		}

		c.JSON(http.StatusOK, models.HealthResponse{
			Status:    status,
			Timestamp: time.Now(),
			Services:  deps,
			Version:   "1.0.0",
			Uptime:    time.Since(startTime).String(),
		})
	})

	// WebSocket event stream
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWS(hub, c.Writer, c.Request)
	})

	// API v1
	v1 := router.Group("/api/v1")

	buddyController := controllers.NewBuddyController(buddyService)
	SetupBuddyRoutes(v1, buddyController, redisClient)

	return router
}
