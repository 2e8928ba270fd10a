// Copyright 2025 The Tarifusta Authors
// Licensed under the EUPL-1.2

package mail

import (
	"context"
	"fmt"

	"github.com/tarifusta/tarifusta/internal/config"
	"github.com/wneessen/go-mail"
)

// SMTP sends OTP mail via SMTP using go-mail.
type SMTP struct {
	cfg *config.SMTPConfig
}

// NewSMTP creates an SMTP sender.
func NewSMTP(cfg *config.SMTPConfig) (*SMTP, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("SMTP host is required")
	}
	if cfg.From == "" {
		return nil, fmt.Errorf("SMTP from address is required")
	}
	return &SMTP{cfg: cfg}, nil
}

// SendLoginCode mails a login OTP.
func (s *SMTP) SendLoginCode(ctx context.Context, to, code string) error {
	body := fmt.Sprintf("Giriş kodunuz: %s\n\nKod 10 dakika boyunca geçerlidir.", code)
	return s.send(ctx, to, "Giriş Kodu", body)
}

// SendDeleteCode mails an account-deletion OTP.
func (s *SMTP) SendDeleteCode(ctx context.Context, to, code string) error {
	body := fmt.Sprintf("Hesap silme kodunuz: %s\n\nBu işlemi siz başlatmadıysanız bu e-postayı yok sayın.", code)
	return s.send(ctx, to, "Hesap Silme Kodu", body)
}

func (s *SMTP) send(ctx context.Context, to, subject, body string) error {
	msg := mail.NewMsg()

	if s.cfg.FromName != "" {
		if err := msg.FromFormat(s.cfg.FromName, s.cfg.From); err != nil {
			return fmt.Errorf("setting from address: %w", err)
		}
	} else {
		if err := msg.From(s.cfg.From); err != nil {
			return fmt.Errorf("setting from address: %w", err)
		}
	}

	if err := msg.To(to); err != nil {
		return fmt.Errorf("setting to address: %w", err)
	}

	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	opts := []mail.Option{
		mail.WithPort(s.cfg.Port),
	}

	if s.cfg.TLS {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
		// Use implicit TLS (SSL) for port 465, STARTTLS for others
		if s.cfg.Port == 465 {
			opts = append(opts, mail.WithSSL())
		}
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	}

	if s.cfg.Username != "" && s.cfg.Password != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.cfg.Username),
			mail.WithPassword(s.cfg.Password),
		)
	}

	client, err := mail.NewClient(s.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("creating mail client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("sending email: %w", err)
	}

	return nil
}
