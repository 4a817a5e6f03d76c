package services

import (
	"fmt"
	"sync"
	"time"

	"github.com/helpdesk-kit/support-desk-api/config"
	gomail "gopkg.in/gomail.v2"
)

// Mailer defines the interface for outbound email delivery
type Mailer interface {
	Send(to []string, subject, htmlBody string) error
}

// SMTPMailer delivers mail through an SMTP relay
type SMTPMailer struct {
	dialer  *gomail.Dialer
	from    string
	timeout time.Duration
}

// NewSMTPMailer creates a mailer from the SMTP configuration
func NewSMTPMailer(cfg *config.Config) *SMTPMailer {
	return &SMTPMailer{
		dialer:  gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword),
		from:    cfg.SMTPFrom,
		timeout: 10 * time.Second,
	}
}

// Send delivers one message to the given recipients. The dial-and-send is
// bounded by an explicit timeout so a hung relay can't pin a goroutine.
func (m *SMTPMailer) Send(to []string, subject, htmlBody string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to...)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	done := make(chan error, 1)
	go func() {
		done <- m.dialer.DialAndSend(msg)
	}()

	select {
	case err := <-done:
		return err
	case <-time.After(m.timeout):
		return fmt.Errorf("smtp send timed out after %s", m.timeout)
	}
}

// MockMailer is a mock implementation of Mailer for testing
type MockMailer struct {
	mu   sync.Mutex
	Sent []MockMail
	Err  error // returned by Send when set
}

// MockMail records one captured message
type MockMail struct {
	To      []string
	Subject string
	Body    string
}

// NewMockMailer creates a new mock mailer
func NewMockMailer() *MockMailer {
	return &MockMailer{}
}

// Send captures the message instead of delivering it
func (m *MockMailer) Send(to []string, subject, htmlBody string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Sent = append(m.Sent, MockMail{To: to, Subject: subject, Body: htmlBody})
	return nil
}

// Messages returns a copy of the captured messages
func (m *MockMailer) Messages() []MockMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MockMail, len(m.Sent))
	copy(out, m.Sent)
	return out
}
