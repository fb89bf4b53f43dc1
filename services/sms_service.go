// services/sms_service.go
package services

import (
	"bayroute/models"
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// SMSTransport delivers fan-out records as SMS messages through Twilio.
type SMSTransport struct {
	client       *twilio.RestClient
	twilioNumber string
}

func NewSMSTransport(twilioAccountSID, twilioAuthToken, twilioPhoneNumber string) *SMSTransport {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: twilioAccountSID,
		Password: twilioAuthToken,
	})

	return &SMSTransport{
		client:       client,
		twilioNumber: twilioPhoneNumber,
	}
}

func (st *SMSTransport) Send(ctx context.Context, record models.DeliveryRecord) error {
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(record.Phone)
	params.SetFrom(st.twilioNumber)
	params.SetBody(st.formatSMSContent(record))

	resp, err := st.client.Api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("failed to send SMS: %w", err)
	}

	logrus.Infof("SMS sent to contact %d - SID: %s", record.ContactID, *resp.Sid)
	return nil
}

// formatSMSContent formats the delivery record for SMS
func (st *SMSTransport) formatSMSContent(record models.DeliveryRecord) string {
	content := record.Message

	// Truncate if too long (SMS limit is 160 characters for single message)
	if len(content) > 150 {
		content = content[:147] + "..."
	}

	// Add app signature
	content += " - BayRoute"

	return content
}
