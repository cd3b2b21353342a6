package notification

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"time"

	"github.com/wneessen/go-mail"
)

type SMTPConfig struct {
	Host     string
	Port     int
	TLS      bool
	Username string
	Password string
}

// EmailNotifier delivers messages over SMTP.
type EmailNotifier struct {
	config SMTPConfig
	client *mail.Client
}

func NewEmailNotifier(config SMTPConfig) (*EmailNotifier, error) {
	opts := []mail.Option{
		mail.WithPort(config.Port),
		mail.WithTimeout(30 * time.Second),
	}

	if config.Username != "" && config.Password != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthLogin),
			mail.WithUsername(config.Username),
			mail.WithPassword(config.Password),
		)
	}

	if config.TLS {
		opts = append(opts,
			mail.WithTLSConfig(&tls.Config{ServerName: config.Host, MinVersion: tls.VersionTLS12}),
			mail.WithTLSPolicy(mail.TLSMandatory),
		)
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	}

	client, err := mail.NewClient(config.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("create mail client: %w", err)
	}
	slog.Info("Mail client created", "host", config.Host, "port", config.Port, "tls", config.TLS)
	return &EmailNotifier{config: config, client: client}, nil
}

func (e *EmailNotifier) Deliver(ctx context.Context, m Message) error {
	msg, err := buildMessage(m)
	if err != nil {
		return err
	}
	if err := e.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	slog.Info("Email sent", "to", m.To, "subject", m.Subject)
	return nil
}

func buildMessage(m Message) (*mail.Msg, error) {
	if m.To == "" {
		return nil, fmt.Errorf("message requires a recipient")
	}
	msg := mail.NewMsg()
	if err := msg.From(m.From); err != nil {
		return nil, fmt.Errorf("set from address: %w", err)
	}
	if err := msg.To(m.To); err != nil {
		return nil, fmt.Errorf("set to address: %w", err)
	}
	msg.Subject(m.Subject)

	switch {
	case m.TextBody != "" && m.HTMLBody != "":
		msg.SetBodyString(mail.TypeTextPlain, m.TextBody)
		msg.AddAlternativeString(mail.TypeTextHTML, m.HTMLBody)
	case m.HTMLBody != "":
		msg.SetBodyString(mail.TypeTextHTML, m.HTMLBody)
	default:
		msg.SetBodyString(mail.TypeTextPlain, m.TextBody)
	}
	return msg, nil
}
