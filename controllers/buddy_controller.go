package controllers

import (
	"bayroute/models"
	"bayroute/services"
	"bayroute/utils"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type BuddyController struct {
	buddyService *services.BuddyService
	validator    *utils.ValidationService
}

func NewBuddyController(buddyService *services.BuddyService) *BuddyController {
	return &BuddyController{
		buddyService: buddyService,
		validator:    utils.NewValidationService(),
	}
}

// =================== STATE ===================

// GetState returns the full engine state
func (bc *BuddyController) GetState(c *gin.Context) {
	state := bc.buddyService.GetState()
	utils.SuccessResponse(c, "Buddy state retrieved successfully", state)
}

// ClearAllData resets the engine state to defaults
func (bc *BuddyController) ClearAllData(c *gin.Context) {
	if err := bc.buddyService.ClearAllData(c.Request.Context()); err != nil {
		logrus.Errorf("Clear all data failed: %v", err)
		utils.ServiceErrorResponse(c, err)
		return
	}
	utils.SuccessResponse(c, "All buddy mode data cleared", nil)
}

// =================== TRIPS ===================

// StartTrip begins a new tracked trip
func (bc *BuddyController) StartTrip(c *gin.Context) {
	var req models.StartTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}

	if validationErrors := bc.validator.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	result, err := bc.buddyService.StartTrip(c.Request.Context(), req)
	if err != nil {
		logrus.Errorf("Start trip failed: %v", err)
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, fmt.Sprintf("Trip started to %s", result.Destination), result)
}

// EndTrip ends the active trip
func (bc *BuddyController) EndTrip(c *gin.Context) {
	result, err := bc.buddyService.EndTrip(c.Request.Context())
	if err != nil {
		logrus.Errorf("End trip failed: %v", err)
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Trip ended safely", result)
}

// GetTripStatus reports the current trip state
func (bc *BuddyController) GetTripStatus(c *gin.Context) {
	status := bc.buddyService.GetTripStatus()
	utils.SuccessResponse(c, "Trip status retrieved successfully", status)
}

// GetTripHistory lists archived trips
func (bc *BuddyController) GetTripHistory(c *gin.Context) {
	history := bc.buddyService.GetTripHistory(c.Request.Context())
	utils.SuccessResponse(c, "Trip history retrieved successfully", history)
}

// =================== LOCATION ===================

// UpdateLocation ingests a location sample from the host
func (bc *BuddyController) UpdateLocation(c *gin.Context) {
	var req models.UpdateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}

	if validationErrors := bc.validator.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	result, err := bc.buddyService.UpdateLocation(c.Request.Context(), req.Latitude, req.Longitude)
	if err != nil {
		logrus.Errorf("Update location failed: %v", err)
		utils.ServiceErrorResponse(c, err)
		return
	}

	message := "Location updated"
	if result.Arrived {
		message = "Arrival detected, trip ended"
	}
	utils.SuccessResponse(c, message, result)
}

// ShareLocation fans the current location out to all trusted contacts
func (bc *BuddyController) ShareLocation(c *gin.Context) {
	result, err := bc.buddyService.ShareLocationWithContacts(c.Request.Context())
	if err != nil {
		logrus.Errorf("Share location failed: %v", err)
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Location shared with trusted contacts", result)
}

// ShareCurrentLocation shares the current position, synthesizing one from
// the location source when none has been seen yet
func (bc *BuddyController) ShareCurrentLocation(c *gin.Context) {
	result, err := bc.buddyService.ShareCurrentLocation(c.Request.Context())
	if err != nil {
		logrus.Errorf("Share current location failed: %v", err)
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Location shared with trusted contacts", result)
}

// ToggleLiveLocationSharing flips the live sharing preference
func (bc *BuddyController) ToggleLiveLocationSharing(c *gin.Context) {
	var req models.ToggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}
	if validationErrors := bc.validator.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	result, err := bc.buddyService.ToggleLiveLocationSharing(c.Request.Context(), *req.Enabled)
	if err != nil {
		logrus.Errorf("Toggle live location sharing failed: %v", err)
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, result.Message, result)
}

// ToggleAutomaticArrivalCheck flips arrival detection
func (bc *BuddyController) ToggleAutomaticArrivalCheck(c *gin.Context) {
	var req models.ToggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}
	if validationErrors := bc.validator.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	result, err := bc.buddyService.ToggleAutomaticArrivalCheck(c.Request.Context(), *req.Enabled)
	if err != nil {
		logrus.Errorf("Toggle automatic arrival check failed: %v", err)
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, result.Message, result)
}

// =================== TRUSTED CONTACTS ===================

// GetTrustedContacts lists contacts in insertion order
func (bc *BuddyController) GetTrustedContacts(c *gin.Context) {
	contacts := bc.buddyService.GetTrustedContacts()
	utils.SuccessResponse(c, "Trusted contacts retrieved successfully", contacts)
}

// AddTrustedContact registers a new trusted contact
func (bc *BuddyController) AddTrustedContact(c *gin.Context) {
	var req models.AddContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}

	if validationErrors := bc.validator.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	contact, err := bc.buddyService.AddTrustedContact(c.Request.Context(), req)
	if err != nil {
		logrus.Errorf("Add trusted contact failed: %v", err)
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, fmt.Sprintf("%s added as trusted contact", contact.Name), contact)
}

// RemoveTrustedContact removes a contact by id
func (bc *BuddyController) RemoveTrustedContact(c *gin.Context) {
	contactID, err := strconv.ParseInt(c.Param("contactId"), 10, 64)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid contact id")
		return
	}

	name, err := bc.buddyService.RemoveTrustedContact(c.Request.Context(), contactID)
	if err != nil {
		logrus.Errorf("Remove trusted contact failed: %v", err)
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, fmt.Sprintf("%s removed from trusted contacts", name), nil)
}

// UpdateContactPreferences merges a partial preference change. Unknown
// preference keys are rejected.
func (bc *BuddyController) UpdateContactPreferences(c *gin.Context) {
	contactID, err := strconv.ParseInt(c.Param("contactId"), 10, 64)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid contact id")
		return
	}

	decoder := json.NewDecoder(c.Request.Body)
	decoder.DisallowUnknownFields()

	var update models.PreferenceUpdate
	if err := decoder.Decode(&update); err != nil {
		utils.BadRequestResponse(c, "Unknown or malformed preference field")
		return
	}

	contact, err := bc.buddyService.UpdateContactPreferences(c.Request.Context(), contactID, update)
	if err != nil {
		logrus.Errorf("Update contact preferences failed: %v", err)
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Notification preferences updated", contact)
}

// =================== EMERGENCY ===================

// SendEmergencyAlert records and fans out an emergency alert
func (bc *BuddyController) SendEmergencyAlert(c *gin.Context) {
	result, err := bc.buddyService.SendEmergencyAlert(c.Request.Context())
	if err != nil {
		logrus.Errorf("Send emergency alert failed: %v", err)
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Emergency alert sent to all trusted contacts", result)
}

// GetEmergencyAlerts lists the alert log
func (bc *BuddyController) GetEmergencyAlerts(c *gin.Context) {
	alerts := bc.buddyService.GetEmergencyAlerts()
	utils.SuccessResponse(c, "Emergency alerts retrieved successfully", alerts)
}

// ClearEmergencyAlerts empties the alert log
func (bc *BuddyController) ClearEmergencyAlerts(c *gin.Context) {
	if err := bc.buddyService.ClearEmergencyAlerts(c.Request.Context()); err != nil {
		logrus.Errorf("Clear emergency alerts failed: %v", err)
		utils.ServiceErrorResponse(c, err)
		return
	}
	utils.SuccessResponse(c, "Emergency alerts cleared", nil)
}
