package services

import (
	"fmt"

	"github.com/resendlabs/resend-go"
	"github.com/sirupsen/logrus"
)

// EmailSender delivers a single message. Implementations must return an
// error on any delivery failure so callers can abort token persistence.
type EmailSender interface {
	Send(to, subject, html, text string) error
}

// ResendEmailSender delivers mail through the Resend API.
type ResendEmailSender struct {
	client *resend.Client
	from   string
	logger *logrus.Logger
}

// NewResendEmailSender constructs a ResendEmailSender.
func NewResendEmailSender(apiKey, from string, logger *logrus.Logger) *ResendEmailSender {
	return &ResendEmailSender{
		client: resend.NewClient(apiKey),
		from:   from,
		logger: logger,
	}
}

// Send delivers one email. No retries: a failure propagates to the caller.
func (s *ResendEmailSender) Send(to, subject, html, text string) error {
	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{to},
		Subject: subject,
		Html:    html,
		Text:    text,
	}

	sent, err := s.client.Emails.Send(params)
	if err != nil {
		s.logger.WithError(err).WithField("to", to).Error("email delivery failed")
		return fmt.Errorf("%w: %v", ErrEmailSend, err)
	}

	s.logger.WithFields(logrus.Fields{"to": to, "email_id": sent.Id}).Info("email sent")
	return nil
}
