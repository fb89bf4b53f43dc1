package services

import (
	"bayroute/interfaces"
	"bayroute/models"
	"bayroute/storage"
	"bayroute/utils"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// ArrivalRadiusMeters is the geo-radius used by automatic arrival detection
// when a trip carries destination coordinates.
const ArrivalRadiusMeters = 75.0

// BuddyService owns the buddy mode trip lifecycle, location pipeline,
// trusted-contact registry and emergency fan-out. All operations take the
// internal mutex, so each read-modify-persist is atomic with respect to
// later operations. One instance per process; tests construct their own.
type BuddyService struct {
	mu          sync.Mutex
	state       models.BuddyState
	store       storage.SnapshotStore
	transport   interfaces.NotificationTransport
	locSource   interfaces.LocationSource
	broadcaster interfaces.BuddyBroadcaster
}

func NewBuddyService(
	store storage.SnapshotStore,
	transport interfaces.NotificationTransport,
	locSource interfaces.LocationSource,
	broadcaster interfaces.BuddyBroadcaster,
) *BuddyService {
	return &BuddyService{
		state:       models.DefaultBuddyState(),
		store:       store,
		transport:   transport,
		locSource:   locSource,
		broadcaster: broadcaster,
	}
}

// =================== STATE STORE ===================

// Initialize loads the persisted snapshot. A missing or malformed snapshot
// leaves the defaults in place; Initialize never fails to the caller.
func (bs *BuddyService) Initialize(ctx context.Context) models.BuddyState {
	bs.mu.Lock()
	defer bs.mu.Unlock()

	raw, err := bs.store.Get(ctx, storage.BuddyDataKey)
	if err != nil {
		if err == storage.ErrKeyNotFound {
			logrus.Info("No stored buddy data found, using defaults")
		} else {
			logrus.Warnf("Failed to load buddy snapshot, using defaults: %v", err)
		}
		return bs.state.Clone()
	}

	var loaded models.BuddyState
	if err := json.Unmarshal([]byte(raw), &loaded); err != nil {
		logrus.Warnf("Corrupt buddy snapshot, using defaults: %v", err)
		return bs.state.Clone()
	}

	bs.state = normalizeState(loaded)
	return bs.state.Clone()
}

// normalizeState repairs snapshots written by older builds: nil slices and
// id counters that lag behind ids already in use.
func normalizeState(s models.BuddyState) models.BuddyState {
	if s.TripRoute == nil {
		s.TripRoute = []models.LocationSample{}
	}
	if s.TrustedContacts == nil {
		s.TrustedContacts = []models.Contact{}
	}
	if s.EmergencyAlerts == nil {
		s.EmergencyAlerts = []models.EmergencyAlert{}
	}
	if s.NextContactID < 1 {
		s.NextContactID = 1
	}
	if s.NextAlertID < 1 {
		s.NextAlertID = 1
	}
	for _, c := range s.TrustedContacts {
		if c.ID >= s.NextContactID {
			s.NextContactID = c.ID + 1
		}
	}
	for _, a := range s.EmergencyAlerts {
		if a.ID >= s.NextAlertID {
			s.NextAlertID = a.ID + 1
		}
	}
	return s
}

// persist writes the whole snapshot under the fixed key. A failure stands
// the in-memory mutation and is reported to the caller.
func (bs *BuddyService) persist(ctx context.Context) error {
	raw, err := json.Marshal(bs.state)
	if err != nil {
		logrus.Error("Failed to serialize buddy state: ", err)
		return utils.NewPersistenceError("save", err)
	}

	if err := bs.store.Set(ctx, storage.BuddyDataKey, string(raw)); err != nil {
		logrus.Error("Failed to save buddy state: ", err)
		return utils.NewPersistenceError("save", err)
	}
	return nil
}

// GetState returns a deep copy of the current state.
func (bs *BuddyService) GetState() models.BuddyState {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	return bs.state.Clone()
}

// =================== TRIP MANAGEMENT ===================

// StartTrip begins tracking a trip and notifies contacts who opted into
// trip-start events. Starting while a trip is active is rejected.
func (bs *BuddyService) StartTrip(ctx context.Context, req models.StartTripRequest) (*models.TripStartResult, error) {
	bs.mu.Lock()
	defer bs.mu.Unlock()

	destination := strings.TrimSpace(req.Destination)
	if destination == "" {
		return nil, utils.NewValidationError("Destination is required")
	}
	if bs.state.TripActive {
		return nil, utils.NewStateError("Trip already in progress")
	}

	now := time.Now().UTC()
	bs.state.TripActive = true
	bs.state.TripStartTime = &now
	bs.state.TripDestination = destination
	bs.state.TripRoute = []models.LocationSample{}
	bs.state.TripDestinationCoords = nil
	if req.DestinationLatitude != nil && req.DestinationLongitude != nil {
		bs.state.TripDestinationCoords = &models.Coordinate{
			Latitude:  *req.DestinationLatitude,
			Longitude: *req.DestinationLongitude,
		}
	}

	fanout := bs.notifyContacts(ctx,
		fmt.Sprintf("Trip started to %s", destination),
		models.NotificationTripStart,
		map[string]interface{}{"destination": destination},
		func(c models.Contact) bool { return c.NotificationPreferences.TripStart },
	)

	result := &models.TripStartResult{
		Destination:       destination,
		StartTime:         now,
		NotificationsSent: fanout.Sent,
	}

	if err := bs.persist(ctx); err != nil {
		return result, err
	}
	return result, nil
}

// EndTrip closes the active trip, archives it and notifies contacts who
// opted into trip-end events.
func (bs *BuddyService) EndTrip(ctx context.Context) (*models.TripEndResult, error) {
	bs.mu.Lock()
	defer bs.mu.Unlock()

	if !bs.state.TripActive {
		return nil, utils.NewStateError("No active trip to end")
	}
	return bs.endTripLocked(ctx, false)
}

func (bs *BuddyService) endTripLocked(ctx context.Context, arrived bool) (*models.TripEndResult, error) {
	now := time.Now().UTC()
	duration := int(now.Sub(*bs.state.TripStartTime) / time.Minute)

	fanout := bs.notifyContacts(ctx,
		fmt.Sprintf("Trip ended safely. Duration: %d minutes", duration),
		models.NotificationTripEnd,
		map[string]interface{}{"duration": duration},
		func(c models.Contact) bool { return c.NotificationPreferences.TripEnd },
	)

	tripData := models.TripRecord{
		Destination: bs.state.TripDestination,
		StartTime:   *bs.state.TripStartTime,
		EndTime:     now,
		Duration:    duration,
		Route:       append([]models.LocationSample{}, bs.state.TripRoute...),
		Arrived:     arrived,
	}

	bs.state.TripActive = false
	bs.state.TripStartTime = nil
	bs.state.TripDestination = ""
	bs.state.TripDestinationCoords = nil
	bs.state.TripRoute = []models.LocationSample{}

	bs.appendTripHistory(ctx, tripData)

	result := &models.TripEndResult{
		TripData:          tripData,
		NotificationsSent: fanout.Sent,
	}

	if err := bs.persist(ctx); err != nil {
		return result, err
	}
	return result, nil
}

// GetTripStatus reports the live trip state. Elapsed minutes are recomputed
// at call time.
func (bs *BuddyService) GetTripStatus() models.TripStatus {
	bs.mu.Lock()
	defer bs.mu.Unlock()

	if !bs.state.TripActive {
		return models.TripStatus{
			Active:  false,
			Message: "No active trip",
		}
	}

	start := *bs.state.TripStartTime
	return models.TripStatus{
		Active:           true,
		Destination:      bs.state.TripDestination,
		StartTime:        &start,
		ElapsedMinutes:   int(time.Since(start) / time.Minute),
		ContactsNotified: len(bs.state.TrustedContacts),
	}
}

// GetTripHistory returns archived trips, oldest first. Read failures yield
// an empty history.
func (bs *BuddyService) GetTripHistory(ctx context.Context) []models.TripRecord {
	raw, err := bs.store.Get(ctx, storage.TripHistoryKey)
	if err != nil {
		return []models.TripRecord{}
	}

	var history []models.TripRecord
	if err := json.Unmarshal([]byte(raw), &history); err != nil {
		logrus.Warnf("Corrupt trip history, returning empty: %v", err)
		return []models.TripRecord{}
	}
	return history
}

// appendTripHistory archives a completed trip under the history key.
// Failures are logged and never fail the trip end.
func (bs *BuddyService) appendTripHistory(ctx context.Context, record models.TripRecord) {
	history := []models.TripRecord{}
	if raw, err := bs.store.Get(ctx, storage.TripHistoryKey); err == nil {
		if err := json.Unmarshal([]byte(raw), &history); err != nil {
			logrus.Warnf("Corrupt trip history, starting fresh: %v", err)
			history = []models.TripRecord{}
		}
	}

	history = append(history, record)

	raw, err := json.Marshal(history)
	if err != nil {
		logrus.Error("Failed to serialize trip history: ", err)
		return
	}
	if err := bs.store.Set(ctx, storage.TripHistoryKey, string(raw)); err != nil {
		logrus.Error("Failed to save trip history: ", err)
	}
}

// =================== LOCATION PIPELINE ===================

// UpdateLocation ingests one location sample pushed by the host. During an
// active trip the sample extends the route; with live sharing on it also
// triggers a location fan-out. When automatic arrival detection is enabled
// and the sample lands within the arrival radius of the trip destination,
// the trip is ended in the same operation.
func (bs *BuddyService) UpdateLocation(ctx context.Context, latitude, longitude float64) (*models.LocationUpdateResult, error) {
	bs.mu.Lock()
	defer bs.mu.Unlock()

	sample := models.LocationSample{
		Latitude:  latitude,
		Longitude: longitude,
		Timestamp: time.Now().UTC(),
	}
	bs.state.CurrentLocation = &sample

	if bs.state.TripActive {
		bs.state.TripRoute = append(bs.state.TripRoute, sample)
	}

	if bs.state.TripActive && bs.state.LiveLocationSharing {
		if _, err := bs.shareLocationLocked(ctx); err != nil {
			logrus.Warn("Live location share failed: ", err)
		}
	}

	result := &models.LocationUpdateResult{Location: sample}

	if bs.state.TripActive && bs.state.AutomaticArrivalCheck && bs.state.TripDestinationCoords != nil {
		dest := bs.state.TripDestinationCoords
		if utils.IsWithinRadius(latitude, longitude, dest.Latitude, dest.Longitude, ArrivalRadiusMeters) {
			logrus.Infof("Arrival detected for trip to %s", bs.state.TripDestination)
			end, err := bs.endTripLocked(ctx, true)
			if end != nil {
				result.Arrived = true
				result.Trip = &end.TripData
			}
			return result, err
		}
	}

	if err := bs.persist(ctx); err != nil {
		return result, err
	}
	return result, nil
}

// ShareLocationWithContacts fans out the current location to every trusted
// contact.
func (bs *BuddyService) ShareLocationWithContacts(ctx context.Context) (*models.LocationShareResult, error) {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	return bs.shareLocationLocked(ctx)
}

func (bs *BuddyService) shareLocationLocked(ctx context.Context) (*models.LocationShareResult, error) {
	if bs.state.CurrentLocation == nil {
		return nil, utils.NewValidationError("No location available")
	}

	payload := models.LocationPayload{
		Latitude:    bs.state.CurrentLocation.Latitude,
		Longitude:   bs.state.CurrentLocation.Longitude,
		Timestamp:   bs.state.CurrentLocation.Timestamp,
		Destination: bs.state.TripDestination,
	}

	// Location updates go to every contact; the per-contact locationUpdates
	// preference is reserved for a future opt-out surface.
	fanout := bs.notifyContacts(ctx,
		fmt.Sprintf("Location update: %.4f, %.4f", payload.Latitude, payload.Longitude),
		models.NotificationLocationUpdate,
		payload,
		nil,
	)

	return &models.LocationShareResult{
		Location:         payload,
		ContactsNotified: fanout.Sent,
	}, nil
}

// ShareCurrentLocation is the emergency-surface share. When no sample has
// been seen yet, one is synthesized from the location source.
func (bs *BuddyService) ShareCurrentLocation(ctx context.Context) (*models.LocationShareResult, error) {
	bs.mu.Lock()
	defer bs.mu.Unlock()

	if bs.state.CurrentLocation == nil {
		latitude, longitude, err := bs.locSource.CurrentLocation(ctx)
		if err != nil {
			logrus.Error("Location source unavailable: ", err)
			return nil, utils.NewValidationError("No location available")
		}
		bs.state.CurrentLocation = &models.LocationSample{
			Latitude:  latitude,
			Longitude: longitude,
			Timestamp: time.Now().UTC(),
		}
	}

	result, err := bs.shareLocationLocked(ctx)
	if err != nil {
		return nil, err
	}

	if err := bs.persist(ctx); err != nil {
		return result, err
	}
	return result, nil
}

// ToggleLiveLocationSharing flips the sharing preference. It is independent
// of the trip state.
func (bs *BuddyService) ToggleLiveLocationSharing(ctx context.Context, enabled bool) (*models.ToggleResult, error) {
	bs.mu.Lock()
	defer bs.mu.Unlock()

	bs.state.LiveLocationSharing = enabled

	message := "Live location sharing disabled"
	if enabled {
		message = "Live location sharing enabled"
	}
	result := &models.ToggleResult{Enabled: enabled, Message: message}

	if err := bs.persist(ctx); err != nil {
		return result, err
	}
	return result, nil
}

// ToggleAutomaticArrivalCheck flips arrival detection. Detection only acts
// on trips that carry destination coordinates.
func (bs *BuddyService) ToggleAutomaticArrivalCheck(ctx context.Context, enabled bool) (*models.ToggleResult, error) {
	bs.mu.Lock()
	defer bs.mu.Unlock()

	bs.state.AutomaticArrivalCheck = enabled

	if enabled && bs.state.TripActive {
		logrus.Info("Arrival check armed for trip to: ", bs.state.TripDestination)
	}

	message := "Automatic arrival check disabled"
	if enabled {
		message = "Automatic arrival check enabled"
	}
	result := &models.ToggleResult{Enabled: enabled, Message: message}

	if err := bs.persist(ctx); err != nil {
		return result, err
	}
	return result, nil
}

// =================== TRUSTED CONTACTS ===================

// AddTrustedContact registers a contact with default notification
// preferences. Ids come from the persisted monotonic counter.
func (bs *BuddyService) AddTrustedContact(ctx context.Context, req models.AddContactRequest) (*models.Contact, error) {
	bs.mu.Lock()
	defer bs.mu.Unlock()

	name := strings.TrimSpace(req.Name)
	phone := strings.TrimSpace(req.Phone)
	if name == "" || phone == "" {
		return nil, utils.NewValidationError("Name and phone are required")
	}

	contact := models.Contact{
		ID:        bs.state.NextContactID,
		Name:      name,
		Phone:     phone,
		Email:     strings.TrimSpace(req.Email),
		AddedDate: time.Now().UTC(),
		NotificationPreferences: models.NotificationPreferences{
			TripStart:       true,
			TripEnd:         true,
			Emergencies:     true,
			LocationUpdates: req.LocationUpdates,
		},
	}

	bs.state.NextContactID++
	bs.state.TrustedContacts = append(bs.state.TrustedContacts, contact)

	if err := bs.persist(ctx); err != nil {
		return &contact, err
	}
	return &contact, nil
}

// RemoveTrustedContact removes a contact by id and returns its name.
func (bs *BuddyService) RemoveTrustedContact(ctx context.Context, contactID int64) (string, error) {
	bs.mu.Lock()
	defer bs.mu.Unlock()

	index := -1
	for i, c := range bs.state.TrustedContacts {
		if c.ID == contactID {
			index = i
			break
		}
	}
	if index < 0 {
		return "", utils.NewNotFoundError("Contact")
	}

	name := bs.state.TrustedContacts[index].Name
	bs.state.TrustedContacts = append(
		bs.state.TrustedContacts[:index],
		bs.state.TrustedContacts[index+1:]...,
	)

	if err := bs.persist(ctx); err != nil {
		return name, err
	}
	return name, nil
}

// UpdateContactPreferences merges a partial preference change into an
// existing contact.
func (bs *BuddyService) UpdateContactPreferences(ctx context.Context, contactID int64, update models.PreferenceUpdate) (*models.Contact, error) {
	bs.mu.Lock()
	defer bs.mu.Unlock()

	for i := range bs.state.TrustedContacts {
		if bs.state.TrustedContacts[i].ID != contactID {
			continue
		}

		prefs := &bs.state.TrustedContacts[i].NotificationPreferences
		if update.TripStart != nil {
			prefs.TripStart = *update.TripStart
		}
		if update.TripEnd != nil {
			prefs.TripEnd = *update.TripEnd
		}
		if update.Emergencies != nil {
			prefs.Emergencies = *update.Emergencies
		}
		if update.LocationUpdates != nil {
			prefs.LocationUpdates = *update.LocationUpdates
		}

		contact := bs.state.TrustedContacts[i]
		if err := bs.persist(ctx); err != nil {
			return &contact, err
		}
		return &contact, nil
	}

	return nil, utils.NewNotFoundError("Contact")
}

// GetTrustedContacts returns a defensive copy in insertion order.
func (bs *BuddyService) GetTrustedContacts() []models.Contact {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	return append([]models.Contact{}, bs.state.TrustedContacts...)
}

// =================== EMERGENCY & FAN-OUT ===================

// SendEmergencyAlert records an alert and fans it out to every contact.
// Emergencies are non-suppressible: per-contact preferences are ignored.
func (bs *BuddyService) SendEmergencyAlert(ctx context.Context) (*models.EmergencyAlertResult, error) {
	bs.mu.Lock()
	defer bs.mu.Unlock()

	alert := models.EmergencyAlert{
		ID:          bs.state.NextAlertID,
		Timestamp:   time.Now().UTC(),
		Destination: bs.state.TripDestination,
		Type:        models.AlertTypeEmergency,
	}
	if bs.state.CurrentLocation != nil {
		loc := *bs.state.CurrentLocation
		alert.Location = &loc
	}

	bs.state.NextAlertID++
	bs.state.EmergencyAlerts = append(bs.state.EmergencyAlerts, alert)

	fanout := bs.notifyContacts(ctx,
		"🚨 EMERGENCY ALERT - Immediate assistance needed!",
		models.NotificationEmergency,
		alert,
		nil,
	)

	result := &models.EmergencyAlertResult{
		Alert:            alert,
		ContactsNotified: fanout.Sent,
	}

	if err := bs.persist(ctx); err != nil {
		return result, err
	}
	return result, nil
}

// GetEmergencyAlerts returns a copy of the alert log, oldest first.
func (bs *BuddyService) GetEmergencyAlerts() []models.EmergencyAlert {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	return append([]models.EmergencyAlert{}, bs.state.EmergencyAlerts...)
}

// ClearEmergencyAlerts empties only the alert log.
func (bs *BuddyService) ClearEmergencyAlerts(ctx context.Context) error {
	bs.mu.Lock()
	defer bs.mu.Unlock()

	bs.state.EmergencyAlerts = []models.EmergencyAlert{}
	return bs.persist(ctx)
}

// notifyContacts builds one delivery record per matching contact and hands
// each to the transport, synchronously and in contact order. Individual
// transport failures are logged and do not abort the fan-out; the status
// field stays "sent" until a delivery-receipt channel exists.
func (bs *BuddyService) notifyContacts(
	ctx context.Context,
	message, eventType string,
	data interface{},
	filter func(models.Contact) bool,
) models.FanoutResult {
	notifications := []models.DeliveryRecord{}
	for _, contact := range bs.state.TrustedContacts {
		if filter != nil && !filter(contact) {
			continue
		}

		record := models.DeliveryRecord{
			ContactID:   contact.ID,
			ContactName: contact.Name,
			Phone:       contact.Phone,
			Message:     message,
			Type:        eventType,
			Data:        data,
			Timestamp:   time.Now().UTC(),
			Status:      "sent",
		}

		if err := bs.transport.Send(ctx, record); err != nil {
			logrus.Warnf("Failed to deliver %s notification to %s: %v", eventType, contact.Name, err)
		}
		notifications = append(notifications, record)
	}

	if bs.broadcaster != nil {
		bs.broadcaster.BroadcastBuddyEvent(eventType, data)
	}

	logrus.Debugf("Notifications sent to %d contacts for %s", len(notifications), eventType)

	return models.FanoutResult{
		Sent:          len(notifications),
		Notifications: notifications,
	}
}

// =================== RESET ===================

// ClearAllData resets the whole engine state to defaults. The trip history
// archive is kept.
func (bs *BuddyService) ClearAllData(ctx context.Context) error {
	bs.mu.Lock()
	defer bs.mu.Unlock()

	bs.state = models.DefaultBuddyState()
	return bs.persist(ctx)
}
