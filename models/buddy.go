package models

import "time"

// Notification event types fanned out to trusted contacts.
const (
	NotificationTripStart      = "trip_start"
	NotificationTripEnd        = "trip_end"
	NotificationLocationUpdate = "location_update"
	NotificationEmergency      = "emergency"
)

// AlertTypeEmergency is the only alert type currently produced.
const AlertTypeEmergency = "emergency"

// LocationSample is a timestamped coordinate pair. Coordinates arrive from a
// trusted location source and are not range-checked here.
type LocationSample struct {
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Timestamp time.Time `json:"timestamp"`
}

// Coordinate is a bare lat/lon pair, used for trip destinations.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// NotificationPreferences controls which events a contact receives.
// Emergencies are delivered regardless of the Emergencies field.
type NotificationPreferences struct {
	TripStart       bool `json:"tripStart"`
	TripEnd         bool `json:"tripEnd"`
	Emergencies     bool `json:"emergencies"`
	LocationUpdates bool `json:"locationUpdates"`
}

// PreferenceUpdate is a partial preference change. Nil fields are left as-is.
type PreferenceUpdate struct {
	TripStart       *bool `json:"tripStart"`
	TripEnd         *bool `json:"tripEnd"`
	Emergencies     *bool `json:"emergencies"`
	LocationUpdates *bool `json:"locationUpdates"`
}

// Contact is a trusted contact eligible for notification fan-out.
type Contact struct {
	ID                      int64                   `json:"id"`
	Name                    string                  `json:"name"`
	Phone                   string                  `json:"phone"`
	Email                   string                  `json:"email"`
	AddedDate               time.Time               `json:"addedDate"`
	NotificationPreferences NotificationPreferences `json:"notificationPreferences"`
}

// EmergencyAlert is immutable once created.
type EmergencyAlert struct {
	ID          int64           `json:"id"`
	Timestamp   time.Time       `json:"timestamp"`
	Location    *LocationSample `json:"location"`
	Destination string          `json:"destination"`
	Type        string          `json:"type"`
}

// BuddyState is the whole engine state, persisted as one snapshot.
type BuddyState struct {
	TripActive            bool             `json:"tripActive"`
	TripStartTime         *time.Time       `json:"tripStartTime"`
	TripDestination       string           `json:"tripDestination"`
	TripDestinationCoords *Coordinate      `json:"tripDestinationCoords"`
	TripRoute             []LocationSample `json:"tripRoute"`
	LiveLocationSharing   bool             `json:"liveLocationSharing"`
	AutomaticArrivalCheck bool             `json:"automaticArrivalCheck"`
	TrustedContacts       []Contact        `json:"trustedContacts"`
	EmergencyAlerts       []EmergencyAlert `json:"emergencyAlerts"`
	CurrentLocation       *LocationSample  `json:"currentLocation"`
	NextContactID         int64            `json:"nextContactId"`
	NextAlertID           int64            `json:"nextAlertId"`
}

// DefaultBuddyState returns the state used before any snapshot exists and
// after ClearAllData.
func DefaultBuddyState() BuddyState {
	return BuddyState{
		TripRoute:       []LocationSample{},
		TrustedContacts: []Contact{},
		EmergencyAlerts: []EmergencyAlert{},
		NextContactID:   1,
		NextAlertID:     1,
	}
}

// Clone returns a deep copy so callers can never alias engine-held slices.
func (s BuddyState) Clone() BuddyState {
	out := s
	if s.TripStartTime != nil {
		t := *s.TripStartTime
		out.TripStartTime = &t
	}
	if s.TripDestinationCoords != nil {
		c := *s.TripDestinationCoords
		out.TripDestinationCoords = &c
	}
	if s.CurrentLocation != nil {
		l := *s.CurrentLocation
		out.CurrentLocation = &l
	}
	out.TripRoute = append([]LocationSample{}, s.TripRoute...)
	out.TrustedContacts = append([]Contact{}, s.TrustedContacts...)
	out.EmergencyAlerts = make([]EmergencyAlert, len(s.EmergencyAlerts))
	for i, a := range s.EmergencyAlerts {
		out.EmergencyAlerts[i] = a
		if a.Location != nil {
			l := *a.Location
			out.EmergencyAlerts[i].Location = &l
		}
	}
	return out
}

// TripRecord is the archive of one completed trip.
type TripRecord struct {
	Destination string           `json:"destination"`
	StartTime   time.Time        `json:"startTime"`
	EndTime     time.Time        `json:"endTime"`
	Duration    int              `json:"duration"` // whole minutes
	Route       []LocationSample `json:"route"`
	Arrived     bool             `json:"arrived"`
}

// TripStatus is the answer to a trip status query. ElapsedMinutes is
// recomputed at call time, never stored.
type TripStatus struct {
	Active           bool       `json:"active"`
	Message          string     `json:"message,omitempty"`
	Destination      string     `json:"destination,omitempty"`
	StartTime        *time.Time `json:"startTime,omitempty"`
	ElapsedMinutes   int        `json:"elapsedMinutes,omitempty"`
	ContactsNotified int        `json:"contactsNotified,omitempty"`
}

// DeliveryRecord is one fan-out delivery handed to the notification
// transport. Status is always "sent" until a delivery-receipt channel exists.
type DeliveryRecord struct {
	ContactID   int64       `json:"contactId"`
	ContactName string      `json:"contactName"`
	Phone       string      `json:"phone"`
	Message     string      `json:"message"`
	Type        string      `json:"type"`
	Data        interface{} `json:"data"`
	Timestamp   time.Time   `json:"timestamp"`
	Status      string      `json:"status"`
}

// FanoutResult aggregates one fan-out pass.
type FanoutResult struct {
	Sent          int              `json:"sent"`
	Notifications []DeliveryRecord `json:"notifications"`
}

// LocationPayload is the data carried by a location_update notification.
type LocationPayload struct {
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	Timestamp   time.Time `json:"timestamp"`
	Destination string    `json:"destination"`
}

// Operation results returned to the host.

type TripStartResult struct {
	Destination       string    `json:"destination"`
	StartTime         time.Time `json:"startTime"`
	NotificationsSent int       `json:"notificationsSent"`
}

type TripEndResult struct {
	TripData          TripRecord `json:"tripData"`
	NotificationsSent int        `json:"notificationsSent"`
}

type LocationUpdateResult struct {
	Location LocationSample `json:"location"`
	// Arrived is set when automatic arrival detection ended the trip.
	Arrived bool        `json:"arrived,omitempty"`
	Trip    *TripRecord `json:"trip,omitempty"`
}

type LocationShareResult struct {
	Location         LocationPayload `json:"location"`
	ContactsNotified int             `json:"contactsNotified"`
}

type EmergencyAlertResult struct {
	Alert            EmergencyAlert `json:"alert"`
	ContactsNotified int            `json:"contactsNotified"`
}

// Request bodies.

type StartTripRequest struct {
	Destination          string   `json:"destination" validate:"required"`
	DestinationLatitude  *float64 `json:"destinationLatitude" validate:"omitempty,latitude"`
	DestinationLongitude *float64 `json:"destinationLongitude" validate:"omitempty,longitude"`
}

type UpdateLocationRequest struct {
	Latitude  float64 `json:"latitude" validate:"latitude"`
	Longitude float64 `json:"longitude" validate:"longitude"`
}

type AddContactRequest struct {
	Name            string `json:"name" validate:"required"`
	Phone           string `json:"phone" validate:"required"`
	Email           string `json:"email" validate:"omitempty,email"`
	LocationUpdates bool   `json:"locationUpdates"`
}

type ToggleRequest struct {
	Enabled *bool `json:"enabled" validate:"required"`
}

type ToggleResult struct {
	Enabled bool   `json:"enabled"`
	Message string `json:"message"`
}
