// Package email delivers notifications as HTML mail over SMTP.
package email

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net"
	"net/smtp"
	"strconv"
	"strings"

	"github.com/couchcryptid/storm-alert-service/internal/config"
	"github.com/couchcryptid/storm-alert-service/internal/domain"
)

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Sender implements pipeline.Notifier.
type Sender struct {
	cfg    config.SMTPConfig
	logger *slog.Logger
	send   sendFunc
}

// NewSender creates an SMTP sender. Port defaults to 587.
func NewSender(cfg config.SMTPConfig, logger *slog.Logger) *Sender {
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	return &Sender{cfg: cfg, logger: logger, send: smtp.SendMail}
}

// Name identifies the channel in logs and metrics.
func (s *Sender) Name() string { return "email" }

// Send delivers n to every configured recipient.
func (s *Sender) Send(ctx context.Context, n domain.Notification) error {
	if s.cfg.Host == "" || len(s.cfg.To) == 0 {
		return errors.New("missing smtp host or recipients")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
	var auth smtp.Auth
	if s.cfg.User != "" {
		auth = smtp.PlainAuth("", s.cfg.User, s.cfg.Password, s.cfg.Host)
	}

	if err := s.send(addr, auth, s.cfg.From, s.cfg.To, buildMessage(s.cfg.From, s.cfg.To, n)); err != nil {
		return fmt.Errorf("send %s email: %w", n.Kind, err)
	}
	s.logger.Info("email sent", "kind", n.Kind, "id", n.ID, "recipients", len(s.cfg.To))
	return nil
}

func buildMessage(from string, to []string, n domain.Notification) []byte {
	headers := [][2]string{
		{"From", from},
		{"To", strings.Join(to, ", ")},
		{"Subject", mime.QEncoding.Encode("utf-8", n.Subject)},
		{"Date", n.CreatedAt.Format("Mon, 02 Jan 2006 15:04:05 -0700")},
		{"Message-ID", "<" + n.ID + "@storm-alert>"},
		{"MIME-Version", "1.0"},
		{"Content-Type", `text/html; charset="utf-8"`},
	}

	var b strings.Builder
	for _, h := range headers {
		b.WriteString(h[0])
		b.WriteString(": ")
		b.WriteString(h[1])
		b.WriteString("\r\n")
	}
	b.WriteString("\r\n")
	b.WriteString(n.HTMLBody)
	b.WriteString("\r\n")
	return []byte(b.String())
}
