package notification

import (
	"fmt"
	"log"
	"net/smtp"
)

// MailConfig carries the SMTP settings for outbound email.
type MailConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

func (c MailConfig) addr() string { return c.Host + ":" + c.Port }

func (c MailConfig) enabled() bool { return c.Host != "" && c.From != "" }

// Sender delivers user-facing notifications over email and the live
// websocket channel. Every delivery is best-effort: failures are logged
// and never surfaced to the caller.
type Sender struct {
	hub  *Hub
	mail MailConfig
}

func NewSender(hub *Hub, mail MailConfig) *Sender {
	return &Sender{hub: hub, mail: mail}
}

// Email sends a plain-text message to the recipient. A disabled or broken
// SMTP setup only produces a log line.
func (s *Sender) Email(recipient, subject, body string) {
	if !s.mail.enabled() {
		log.Printf("email disabled, skipping %q to %s", subject, recipient)
		return
	}

	msg := []byte(fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=\"UTF-8\"\r\n\r\n%s\r\n",
		s.mail.From, recipient, subject, body,
	))

	var auth smtp.Auth
	if s.mail.Username != "" {
		auth = smtp.PlainAuth("", s.mail.Username, s.mail.Password, s.mail.Host)
	}

	if err := smtp.SendMail(s.mail.addr(), auth, s.mail.From, []string{recipient}, msg); err != nil {
		log.Printf("email %q to %s failed: %v", subject, recipient, err)
	}
}

// Push emits a live event to the user's websocket connection, if any.
func (s *Sender) Push(userID int64, event string, payload map[string]any) {
	if s.hub == nil {
		return
	}
	delivered := s.hub.SendToUser(userID, map[string]any{
		"event": event,
		"data":  payload,
	})
	if !delivered {
		log.Printf("push %q to user %d skipped, not connected", event, userID)
	}
}
