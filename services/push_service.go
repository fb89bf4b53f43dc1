package services

import (
	"bayroute/models"
	"context"
	"fmt"

	firebase "firebase.google.com/go"
	"firebase.google.com/go/messaging"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"
)

// PushTransport mirrors fan-out records to FCM topics so companion apps of
// trusted contacts receive a push alongside the SMS. One topic per event
// type, e.g. buddy-emergency.
type PushTransport struct {
	fcmClient *messaging.Client
}

func NewPushTransport(firebaseCredentials string) (*PushTransport, error) {
	opt := option.WithCredentialsFile(firebaseCredentials)
	app, err := firebase.NewApp(context.Background(), nil, opt)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firebase: %v", err)
	}

	fcmClient, err := app.Messaging(context.Background())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize FCM client: %v", err)
	}

	return &PushTransport{
		fcmClient: fcmClient,
	}, nil
}

func (pt *PushTransport) Send(ctx context.Context, record models.DeliveryRecord) error {
	message := &messaging.Message{
		Topic: "buddy-" + record.Type,
		Notification: &messaging.Notification{
			Title: pt.titleFor(record.Type),
			Body:  record.Message,
		},
		Data: map[string]string{
			"type":        record.Type,
			"contactId":   fmt.Sprintf("%d", record.ContactID),
			"contactName": record.ContactName,
		},
		Android: &messaging.AndroidConfig{
			Notification: &messaging.AndroidNotification{
				Sound: "default",
				Icon:  "ic_notification",
				Color: "#1C6DD0",
			},
		},
	}

	response, err := pt.fcmClient.Send(ctx, message)
	if err != nil {
		return fmt.Errorf("failed to send push: %w", err)
	}

	logrus.Debugf("Push sent for contact %d - ID: %s", record.ContactID, response)
	return nil
}

func (pt *PushTransport) titleFor(eventType string) string {
	switch eventType {
	case models.NotificationEmergency:
		return "🚨 Emergency Alert"
	case models.NotificationTripStart:
		return "Trip Started"
	case models.NotificationTripEnd:
		return "Trip Ended"
	case models.NotificationLocationUpdate:
		return "📍 Location Update"
	default:
		return "BayRoute"
	}
}
