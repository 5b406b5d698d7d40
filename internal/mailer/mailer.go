// Package mailer delivers broadcast email to game rosters.
package mailer

import (
	"go.uber.org/zap"

	"github.com/wneessen/go-mail"
)

// Sender delivers a single message to a single recipient.
type Sender interface {
	Send(to, subject, body string) error
}

// SMTPConfig holds the connection settings for the SMTP sender.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPSender sends mail through an SMTP relay using go-mail.
type SMTPSender struct {
	cfg SMTPConfig
}

// NewSMTPSender creates a Sender backed by the given SMTP relay.
func NewSMTPSender(cfg SMTPConfig) *SMTPSender {
	return &SMTPSender{cfg: cfg}
}

// Send delivers one message. Each call dials a fresh connection; broadcast
// volume is a handful of players per game, not a mailing list.
func (s *SMTPSender) Send(to, subject, body string) error {
	msg := mail.NewMsg()
	if err := msg.From(s.cfg.From); err != nil {
		return err
	}
	if err := msg.To(to); err != nil {
		return err
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	client, err := mail.NewClient(s.cfg.Host,
		mail.WithPort(s.cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(s.cfg.Username),
		mail.WithPassword(s.cfg.Password),
	)
	if err != nil {
		return err
	}
	return client.DialAndSend(msg)
}

// Broadcast attempts delivery to every recipient independently. A failed
// recipient is logged and skipped; the remaining recipients still get the
// message. Returns how many sends succeeded and how many failed.
func Broadcast(sender Sender, logger *zap.Logger, recipients []string, subject, body string) (sent, failed int) {
	for _, to := range recipients {
		if err := sender.Send(to, subject, body); err != nil {
			logger.Warn("broadcast delivery failed",
				zap.String("recipient", to),
				zap.Error(err),
			)
			failed++
			continue
		}
		sent++
	}
	return sent, failed
}
