// Package mailer delivers transactional email over SMTP, with a logging
// fallback for environments that have no SMTP relay configured.
package mailer

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net"
	"net/smtp"
	"net/textproto"
	"strconv"
	"strings"
	"time"

	"github.com/DevDeP100/Shalom.pt/internal/config"
	"github.com/DevDeP100/Shalom.pt/internal/observability"
)

// Message is one outbound email. Body is the plain-text rendering; HTMLBody,
// when set, is the rich rendering and Body becomes its fallback part.
type Message struct {
	To       string
	Subject  string
	Body     string
	HTMLBody string
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// ErrCleartextAuth is returned when the relay offers no STARTTLS but the
// mailer would have to send credentials.
var ErrCleartextAuth = errors.New("smtp relay offers no STARTTLS, refusing to send credentials in cleartext")

// SMTPMailer delivers mail over a STARTTLS connection. Certificate
// verification is on unless the config explicitly opts out, and that opt-out
// is rejected in production at config-validation time.
type SMTPMailer struct {
	host               string
	port               int
	username           string
	password           string
	from               string
	insecureSkipVerify bool
	logger             *slog.Logger
}

func NewSMTPMailer(cfg *config.Config, logger *slog.Logger) *SMTPMailer {
	return &SMTPMailer{
		host:               cfg.SMTPHost,
		port:               cfg.SMTPPort,
		username:           cfg.SMTPUsername,
		password:           cfg.SMTPPassword,
		from:               cfg.SMTPFrom,
		insecureSkipVerify: cfg.SMTPInsecureSkipVerify,
		logger:             logger,
	}
}

func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	addr := net.JoinHostPort(m.host, strconv.Itoa(m.port))

	dialer := &net.Dialer{Timeout: 10 * time.Second}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		observability.RecordMailerEvent(ctx, "error")
		return fmt.Errorf("dial smtp %s: %w", addr, err)
	}
	client, err := smtp.NewClient(conn, m.host)
	if err != nil {
		_ = conn.Close()
		observability.RecordMailerEvent(ctx, "error")
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer client.Close()

	tlsStarted := false
	if ok, _ := client.Extension("STARTTLS"); ok {
		tlsCfg := &tls.Config{
			ServerName:         m.host,
			InsecureSkipVerify: m.insecureSkipVerify,
		}
		if err := client.StartTLS(tlsCfg); err != nil {
			observability.RecordMailerEvent(ctx, "error")
			return fmt.Errorf("starttls: %w", err)
		}
		tlsStarted = true
	}

	if m.username != "" {
		// Credentials never go over a cleartext connection. The insecure
		// override exists for documented legacy relays only.
		if !tlsStarted && !m.insecureSkipVerify {
			observability.RecordMailerEvent(ctx, "error")
			return ErrCleartextAuth
		}
		auth := smtp.PlainAuth("", m.username, m.password, m.host)
		if err := client.Auth(auth); err != nil {
			observability.RecordMailerEvent(ctx, "error")
			return fmt.Errorf("smtp auth: %w", err)
		}
	}

	if err := client.Mail(m.from); err != nil {
		observability.RecordMailerEvent(ctx, "error")
		return fmt.Errorf("smtp mail from: %w", err)
	}
	if err := client.Rcpt(msg.To); err != nil {
		observability.RecordMailerEvent(ctx, "error")
		return fmt.Errorf("smtp rcpt to: %w", err)
	}
	w, err := client.Data()
	if err != nil {
		observability.RecordMailerEvent(ctx, "error")
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := w.Write(composeMessage(m.from, msg)); err != nil {
		_ = w.Close()
		observability.RecordMailerEvent(ctx, "error")
		return fmt.Errorf("smtp write body: %w", err)
	}
	if err := w.Close(); err != nil {
		observability.RecordMailerEvent(ctx, "error")
		return fmt.Errorf("smtp close body: %w", err)
	}
	if err := client.Quit(); err != nil {
		observability.RecordMailerEvent(ctx, "error")
		return fmt.Errorf("smtp quit: %w", err)
	}

	observability.RecordMailerEvent(ctx, "success")
	m.logger.InfoContext(ctx, "email delivered", "to", msg.To, "subject", msg.Subject)
	return nil
}

// composeMessage renders the RFC 5322 payload. Messages with an HTML body go
// out as multipart/alternative with the plain part first, so clients fall back
// to text.
func composeMessage(from string, msg Message) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")

	if msg.HTMLBody == "" {
		b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
		b.WriteString("\r\n")
		b.WriteString(msg.Body)
		return []byte(b.String())
	}

	mw := multipart.NewWriter(&b)
	fmt.Fprintf(&b, "Content-Type: multipart/alternative; boundary=%s\r\n", mw.Boundary())
	b.WriteString("\r\n")
	plain, _ := mw.CreatePart(textproto.MIMEHeader{
		"Content-Type": {"text/plain; charset=utf-8"},
	})
	_, _ = plain.Write([]byte(msg.Body))
	html, _ := mw.CreatePart(textproto.MIMEHeader{
		"Content-Type": {"text/html; charset=utf-8"},
	})
	_, _ = html.Write([]byte(msg.HTMLBody))
	_ = mw.Close()
	return []byte(b.String())
}

// LogMailer stands in for SMTP in development: the message is logged instead
// of delivered, so verification codes stay reachable without a relay.
type LogMailer struct {
	logger *slog.Logger
}

func NewLogMailer(logger *slog.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) Send(ctx context.Context, msg Message) error {
	m.logger.InfoContext(ctx, "email delivery skipped, no smtp relay configured",
		"to", msg.To,
		"subject", msg.Subject,
		"body", msg.Body,
	)
	observability.RecordMailerEvent(ctx, "skipped")
	return nil
}

// VerificationMessage renders the account verification email for a code.
func VerificationMessage(to, code string, expiresAt time.Time) Message {
	expiry := expiresAt.UTC().Format(time.RFC1123)
	body := fmt.Sprintf(
		"Welcome!\n\nYour verification code is: %s\n\nEnter it on the site to activate your account. The code expires at %s.\n\nIf you did not register, ignore this message.",
		code, expiry,
	)
	html := fmt.Sprintf(
		"<html><body><h2>Welcome!</h2><p>Your verification code is: <strong>%s</strong></p><p>Enter it on the site to activate your account. The code expires at %s.</p><p>If you did not register, ignore this message.</p></body></html>",
		code, expiry,
	)
	return Message{To: to, Subject: "Confirm your account", Body: body, HTMLBody: html}
}

// EnrollmentMessage renders the enrollment status email for an event.
func EnrollmentMessage(to, eventTitle, status string) Message {
	var subject, line string
	switch status {
	case "confirmed":
		subject = "Your enrollment is confirmed"
		line = fmt.Sprintf("Your enrollment in %q has been confirmed. See you there!", eventTitle)
	case "cancelled":
		subject = "Your enrollment was cancelled"
		line = fmt.Sprintf("Your enrollment in %q has been cancelled.", eventTitle)
	default:
		subject = "Your enrollment was received"
		line = fmt.Sprintf("We received your enrollment in %q. You will get another email once a seat is confirmed.", eventTitle)
	}
	return Message{
		To:       to,
		Subject:  subject,
		Body:     "Hello!\n\n" + line,
		HTMLBody: fmt.Sprintf("<html><body><p>Hello!</p><p>%s</p></body></html>", line),
	}
}
