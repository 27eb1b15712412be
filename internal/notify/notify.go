// Package notify delivers short customer notifications.
package notify

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// Message is one notification to one recipient.
type Message struct {
	To      string // phone number
	Email   string
	Subject string
	Body    string
}

// Notifier sends a message. Callers treat delivery as fire-and-forget.
type Notifier interface {
	Notify(ctx context.Context, msg Message) error
}

// LogNotifier writes messages to the log instead of delivering them.
type LogNotifier struct {
	Log logrus.FieldLogger
}

func (n LogNotifier) Notify(_ context.Context, msg Message) error {
	n.Log.WithFields(logrus.Fields{
		"to":      msg.To,
		"email":   msg.Email,
		"subject": msg.Subject,
	}).Info(msg.Body)
	return nil
}

type messageCreator interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

// SMSNotifier sends text messages through Twilio.
type SMSNotifier struct {
	api  messageCreator
	from string
	log  logrus.FieldLogger
}

func NewSMSNotifier(accountSID, authToken, from string, log logrus.FieldLogger) *SMSNotifier {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &SMSNotifier{api: client.Api, from: from, log: log}
}

var ErrNoRecipient = errors.New("notify: recipient has no phone number")

func (n *SMSNotifier) Notify(_ context.Context, msg Message) error {
	to := strings.TrimSpace(msg.To)
	if to == "" {
		return ErrNoRecipient
	}
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(n.from)
	params.SetBody(msg.Body)

	resp, err := n.api.CreateMessage(params)
	if err != nil {
		return err
	}
	if resp != nil && resp.Sid != nil {
		n.log.WithFields(logrus.Fields{"to": to, "sid": *resp.Sid}).Debug("sms sent")
	}
	return nil
}
