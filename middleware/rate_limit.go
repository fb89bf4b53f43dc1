package middleware

import (
	"bayroute/models"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Redis        *redis.Client
	Requests     int           // Number of requests allowed
	Window       time.Duration // Time window
	KeyPrefix    string        // Redis key prefix
	ErrorMessage string        // Custom error message
}

// RateLimit returns a sliding-window limiter keyed by client IP.
func RateLimit(config RateLimitConfig) gin.HandlerFunc {
	if config.KeyPrefix == "" {
		config.KeyPrefix = "rate_limit"
	}
	if config.ErrorMessage == "" {
		config.ErrorMessage = "Rate limit exceeded"
	}

	return func(c *gin.Context) {
		key := fmt.Sprintf("%s:%s", config.KeyPrefix, c.ClientIP())
		now := time.Now()
		windowStart := now.Add(-config.Window)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		pipe := config.Redis.Pipeline()
		pipe.ZRemRangeByScore(ctx, key, "0", fmt.Sprintf("%d", windowStart.UnixNano()))
		pipe.ZAdd(ctx, key, &redis.Z{
			Score:  float64(now.UnixNano()),
			Member: now.UnixNano(),
		})
		countCmd := pipe.ZCard(ctx, key)
		pipe.Expire(ctx, key, config.Window)

		if _, err := pipe.Exec(ctx); err != nil {
			// Fail open when the limiter backend is unreachable
			logrus.Warn("Rate limiter unavailable: ", err)
			c.Next()
			return
		}

		if countCmd.Val() > int64(config.Requests) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, models.APIResponse{
				Success: false,
				Message: config.ErrorMessage,
				Error: &models.APIError{
					Code:    "RATE_LIMIT_EXCEEDED",
					Message: config.ErrorMessage,
				},
				Timestamp: time.Now(),
			})
			return
		}

		c.Next()
	}
}

// LocationRateLimit bounds location ingestion to a burst above the 30s
// sampling cadence.
func LocationRateLimit(redisClient *redis.Client) gin.HandlerFunc {
	return RateLimit(RateLimitConfig{
		Redis:        redisClient,
		Requests:     30,
		Window:       time.Minute,
		KeyPrefix:    "rate_limit:location",
		ErrorMessage: "Too many location updates",
	})
}

// EmergencyRateLimit keeps repeated panic presses from flooding transports.
func EmergencyRateLimit(redisClient *redis.Client) gin.HandlerFunc {
	return RateLimit(RateLimitConfig{
		Redis:        redisClient,
		Requests:     5,
		Window:       time.Minute,
		KeyPrefix:    "rate_limit:emergency",
		ErrorMessage: "Too many emergency requests",
	})
}
