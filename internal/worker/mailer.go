package worker

import (
	"context"
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"strconv"
	"strings"

	"mentorlink/backend/internal/config"

	"github.com/sirupsen/logrus"
)

// Mailer delivers one rendered email.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// SMTPMailer sends through a plain SMTP relay.
type SMTPMailer struct {
	cfg config.EmailConfig
}

func NewSMTPMailer(cfg config.EmailConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

func (m *SMTPMailer) Send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	addr := net.JoinHostPort(m.cfg.SMTPHost, strconv.Itoa(m.cfg.SMTPPort))

	var auth smtp.Auth
	if m.cfg.SMTPUsername != "" {
		auth = smtp.PlainAuth("", m.cfg.SMTPUsername, m.cfg.SMTPPassword, m.cfg.SMTPHost)
	}
	if err := smtp.SendMail(addr, auth, m.cfg.From, []string{to}, buildMessage(m.cfg.From, to, subject, body)); err != nil {
		return fmt.Errorf("smtp send to %s: %w", to, err)
	}
	return nil
}

var lineBreaks = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ")

// singleLine folds CR and LF into spaces so a value cannot start a new
// header.
func singleLine(s string) string {
	return lineBreaks.Replace(s)
}

func buildMessage(from, to, subject, body string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", singleLine(from))
	fmt.Fprintf(&b, "To: %s\r\n", singleLine(to))
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", singleLine(subject)))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
	b.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))
	return []byte(b.String())
}

// LogMailer only logs; used when EMAIL_ENABLED is false.
type LogMailer struct {
	log *logrus.Entry
}

func NewLogMailer(log *logrus.Logger) *LogMailer {
	return &LogMailer{log: log.WithField("component", "log_mailer")}
}

func (m *LogMailer) Send(_ context.Context, to, subject, _ string) error {
	m.log.WithFields(logrus.Fields{"to": to, "subject": subject}).Info("Email delivery disabled, message logged")
	return nil
}

// NewMailer picks the SMTP mailer when email is enabled.
func NewMailer(cfg config.EmailConfig, log *logrus.Logger) Mailer {
	if cfg.Enabled {
		return NewSMTPMailer(cfg)
	}
	return NewLogMailer(log)
}
