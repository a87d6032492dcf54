// Package mail sends notification emails over SMTP
package mail

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/calculation/backend/internal/infrastructure/config"
	gomail "github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

// Attachment is a file sent with a message
type Attachment struct {
	Name        string
	ContentType string
	Data        []byte
}

// Message is an email with text and optional HTML alternative bodies
type Message struct {
	To          []string
	ReplyTo     string
	Subject     string
	Text        string
	HTML        string
	Attachments []Attachment
}

// Validate checks the message has recipients, a subject and a body
func (m *Message) Validate() error {
	if len(m.To) == 0 {
		return errors.New("message has no recipient")
	}
	if strings.TrimSpace(m.Subject) == "" {
		return errors.New("message has no subject")
	}
	if m.Text == "" && m.HTML == "" {
		return errors.New("message has no body")
	}
	return nil
}

// Mailer sends messages
type Mailer interface {
	Send(ctx context.Context, msg *Message) error
}

// NewMailer returns the SMTP mailer when mail is enabled, otherwise a mailer that only logs
func NewMailer(cfg config.MailConfig, logger *zap.Logger) (Mailer, error) {
	if !cfg.Enabled {
		logger.Info("Mail disabled, messages are logged only")
		return NewLogMailer(logger), nil
	}
	return NewSMTPMailer(cfg, logger)
}

// SMTPMailer sends messages with go-mail
type SMTPMailer struct {
	cfg    config.MailConfig
	client *gomail.Client
	logger *zap.Logger
}

// NewSMTPMailer creates an SMTP client from configuration. No connection is opened until Send.
func NewSMTPMailer(cfg config.MailConfig, logger *zap.Logger) (*SMTPMailer, error) {
	policy, err := tlsPolicy(cfg.TLSPolicy)
	if err != nil {
		return nil, err
	}
	opts := []gomail.Option{
		gomail.WithPort(cfg.Port),
		gomail.WithTLSPortPolicy(policy),
	}
	if cfg.Timeout > 0 {
		opts = append(opts, gomail.WithTimeout(cfg.Timeout))
	}
	if cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(cfg.Username),
			gomail.WithPassword(cfg.Password),
		)
	}
	client, err := gomail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create mail client: %w", err)
	}
	return &SMTPMailer{cfg: cfg, client: client, logger: logger}, nil
}

// Send delivers a message
func (m *SMTPMailer) Send(ctx context.Context, msg *Message) error {
	gm, err := buildMsg(m.cfg, msg)
	if err != nil {
		return err
	}
	if err := m.client.DialAndSendWithContext(ctx, gm); err != nil {
		return fmt.Errorf("failed to send mail: %w", err)
	}
	m.logger.Info("Mail sent", zap.Strings("to", msg.To), zap.String("subject", msg.Subject))
	return nil
}

// buildMsg converts a message to a go-mail message
func buildMsg(cfg config.MailConfig, msg *Message) (*gomail.Msg, error) {
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	gm := gomail.NewMsg()
	if err := gm.FromFormat(cfg.FromName, cfg.From); err != nil {
		return nil, fmt.Errorf("invalid sender: %w", err)
	}
	if err := gm.To(msg.To...); err != nil {
		return nil, fmt.Errorf("invalid recipient: %w", err)
	}
	if msg.ReplyTo != "" {
		if err := gm.ReplyTo(msg.ReplyTo); err != nil {
			return nil, fmt.Errorf("invalid reply-to: %w", err)
		}
	}
	gm.Subject(msg.Subject)
	switch {
	case msg.Text != "" && msg.HTML != "":
		gm.SetBodyString(gomail.TypeTextPlain, msg.Text)
		gm.AddAlternativeString(gomail.TypeTextHTML, msg.HTML)
	case msg.HTML != "":
		gm.SetBodyString(gomail.TypeTextHTML, msg.HTML)
	default:
		gm.SetBodyString(gomail.TypeTextPlain, msg.Text)
	}
	for _, a := range msg.Attachments {
		var opts []gomail.FileOption
		if a.ContentType != "" {
			opts = append(opts, gomail.WithFileContentType(gomail.ContentType(a.ContentType)))
		}
		if err := gm.AttachReader(a.Name, bytes.NewReader(a.Data), opts...); err != nil {
			return nil, fmt.Errorf("failed to attach %s: %w", a.Name, err)
		}
	}
	return gm, nil
}

func tlsPolicy(name string) (gomail.TLSPolicy, error) {
	switch strings.ToLower(name) {
	case "", "opportunistic":
		return gomail.TLSOpportunistic, nil
	case "mandatory":
		return gomail.TLSMandatory, nil
	case "none":
		return gomail.NoTLS, nil
	}
	return gomail.NoTLS, fmt.Errorf("unknown mail.tls_policy %q", name)
}

// LogMailer logs messages instead of sending them
type LogMailer struct {
	logger *zap.Logger
}

// NewLogMailer creates a mailer that only logs
func NewLogMailer(logger *zap.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

// Send logs the message
func (m *LogMailer) Send(_ context.Context, msg *Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	m.logger.Info("Mail not sent (mail disabled)",
		zap.Strings("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.Int("attachments", len(msg.Attachments)),
	)
	m.logger.Debug("Mail body", zap.String("text", msg.Text))
	return nil
}
