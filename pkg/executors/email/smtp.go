package email

import (
	"context"
	"fmt"

	mail "github.com/wneessen/go-mail"
)

// SMTPConfig holds the outbound mail server settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPMailer delivers messages over SMTP using go-mail.
type SMTPMailer struct {
	config SMTPConfig
}

func NewSMTPMailer(config SMTPConfig) *SMTPMailer {
	return &SMTPMailer{config: config}
}

func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	message := mail.NewMsg()

	if err := message.From(m.config.From); err != nil {
		return fmt.Errorf("invalid sender address %q: %w", m.config.From, err)
	}

	if err := message.To(msg.To...); err != nil {
		return fmt.Errorf("invalid recipient address: %w", err)
	}

	if len(msg.CC) > 0 {
		if err := message.Cc(msg.CC...); err != nil {
			return fmt.Errorf("invalid cc address: %w", err)
		}
	}

	message.Subject(msg.Subject)
	message.SetBodyString(mail.TypeTextPlain, msg.Body)

	opts := []mail.Option{mail.WithPort(m.config.Port)}
	if m.config.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(m.config.Username),
			mail.WithPassword(m.config.Password),
		)
	}

	client, err := mail.NewClient(m.config.Host, opts...)
	if err != nil {
		return fmt.Errorf("failed to create smtp client: %w", err)
	}

	return client.DialAndSendWithContext(ctx, message)
}
