package services

import (
	"bayroute/interfaces"
	"bayroute/models"
	"context"

	"github.com/sirupsen/logrus"
)

// LogTransport writes each delivery to the log instead of a real channel.
// It is the default transport when no SMS or push provider is configured.
type LogTransport struct{}

func NewLogTransport() *LogTransport {
	return &LogTransport{}
}

func (lt *LogTransport) Send(ctx context.Context, record models.DeliveryRecord) error {
	logrus.WithFields(logrus.Fields{
		"contactId":   record.ContactID,
		"contactName": record.ContactName,
		"phone":       record.Phone,
		"type":        record.Type,
	}).Info("Notification: ", record.Message)
	return nil
}

// MultiTransport delivers each record through every configured channel.
// A channel failure is logged and does not stop the remaining channels.
type MultiTransport struct {
	transports []interfaces.NotificationTransport
}

func NewMultiTransport(transports ...interfaces.NotificationTransport) *MultiTransport {
	return &MultiTransport{
		transports: transports,
	}
}

func (mt *MultiTransport) Send(ctx context.Context, record models.DeliveryRecord) error {
	var lastErr error
	for _, transport := range mt.transports {
		if err := transport.Send(ctx, record); err != nil {
			logrus.Warnf("Transport delivery failed for contact %d: %v", record.ContactID, err)
			lastErr = err
		}
	}
	return lastErr
}
