// routes/buddy.go
package routes

import (
	"bayroute/controllers"
	"bayroute/middleware"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
)

// SetupBuddyRoutes configures buddy mode related routes
func SetupBuddyRoutes(router *gin.RouterGroup, buddyController *controllers.BuddyController, redisClient *redis.Client) {
	buddy := router.Group("/buddy")

	// Engine state
	buddy.GET("/state", buddyController.GetState)
	buddy.DELETE("/state", buddyController.ClearAllData)

	// Trip lifecycle
	trip := buddy.Group("/trip")
	{
		trip.POST("/start", buddyController.StartTrip)
		trip.POST("/end", buddyController.EndTrip)
		trip.GET("/status", buddyController.GetTripStatus)
		trip.GET("/history", buddyController.GetTripHistory)
	}

	// Location pipeline
	location := buddy.Group("/location")
	{
		location.POST("/", middleware.LocationRateLimit(redisClient), buddyController.UpdateLocation)
		location.POST("/share", buddyController.ShareLocation)
		location.POST("/share-current", buddyController.ShareCurrentLocation)
		location.PUT("/sharing", buddyController.ToggleLiveLocationSharing)
		location.PUT("/arrival-check", buddyController.ToggleAutomaticArrivalCheck)
	}

	// Trusted contacts
	contacts := buddy.Group("/contacts")
	{
		contacts.GET("/", buddyController.GetTrustedContacts)
		contacts.POST("/", buddyController.AddTrustedContact)
		contacts.DELETE("/:contactId", buddyController.RemoveTrustedContact)
		contacts.PUT("/:contactId/preferences", buddyController.UpdateContactPreferences)
	}

	// Emergency alerts
	emergency := buddy.Group("/emergency")
	emergency.Use(middleware.EmergencyRateLimit(redisClient))
	{
		emergency.POST("/alert", buddyController.SendEmergencyAlert)
		emergency.GET("/alerts", buddyController.GetEmergencyAlerts)
		emergency.DELETE("/alerts", buddyController.ClearEmergencyAlerts)
	}
}
