package notify

import (
	"context"
	"errors"
	"fmt"

	"gopkg.in/gomail.v2"
)

// ErrNoRecipients is returned when a message has nobody to go to
var ErrNoRecipients = errors.New("no recipients")

// Message is a single email. HTML is optional and sent as an alternative
// part when set.
type Message struct {
	To      []string
	Subject string
	Text    string
	HTML    string
}

// Mailer delivers messages from a fixed sender address
type Mailer struct {
	from string
	send func(msgs ...*gomail.Message) error
}

// NewMailer creates a mailer that dials the SMTP server for every send
func NewMailer(host string, port int, user, password, from string) *Mailer {
	dialer := gomail.NewDialer(host, port, user, password)
	return &Mailer{from: from, send: dialer.DialAndSend}
}

// NewMailerWithSender creates a mailer on an existing gomail.Sender
func NewMailerWithSender(from string, sender gomail.Sender) *Mailer {
	return &Mailer{
		from: from,
		send: func(msgs ...*gomail.Message) error { return gomail.Send(sender, msgs...) },
	}
}

// Send delivers msg. The SMTP exchange is not cancellable; ctx is only
// checked before dialing.
func (m *Mailer) Send(ctx context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return ErrNoRecipients
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	gm := gomail.NewMessage()
	gm.SetHeader("From", m.from)
	gm.SetHeader("To", msg.To...)
	gm.SetHeader("Subject", msg.Subject)
	gm.SetBody("text/plain", msg.Text)
	if msg.HTML != "" {
		gm.AddAlternative("text/html", msg.HTML)
	}

	if err := m.send(gm); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
