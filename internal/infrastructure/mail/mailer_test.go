package mail

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/calculation/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func mailConfig() config.MailConfig {
	return config.MailConfig{
		Enabled:   true,
		Host:      "smtp.example.com",
		Port:      587,
		From:      "noreply@example.com",
		FromName:  "Calculation",
		TLSPolicy: "mandatory",
		Timeout:   5 * time.Second,
	}
}

func TestMessage_Validate(t *testing.T) {
	tests := []struct {
		name string
		msg  Message
		ok   bool
	}{
		{"complete", Message{To: []string{"a@example.com"}, Subject: "s", Text: "t"}, true},
		{"html only", Message{To: []string{"a@example.com"}, Subject: "s", HTML: "<p>t</p>"}, true},
		{"no recipient", Message{Subject: "s", Text: "t"}, false},
		{"blank subject", Message{To: []string{"a@example.com"}, Subject: " ", Text: "t"}, false},
		{"no body", Message{To: []string{"a@example.com"}, Subject: "s"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.msg.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestNewMailer(t *testing.T) {
	t.Run("logs when disabled", func(t *testing.T) {
		m, err := NewMailer(config.MailConfig{}, zap.NewNop())
		require.NoError(t, err)
		assert.IsType(t, &LogMailer{}, m)
	})

	t.Run("uses smtp when enabled", func(t *testing.T) {
		m, err := NewMailer(mailConfig(), zap.NewNop())
		require.NoError(t, err)
		assert.IsType(t, &SMTPMailer{}, m)
	})

	t.Run("rejects an unknown tls policy", func(t *testing.T) {
		cfg := mailConfig()
		cfg.TLSPolicy = "sometimes"
		_, err := NewMailer(cfg, zap.NewNop())
		assert.ErrorContains(t, err, "tls_policy")
	})

	t.Run("requires a host", func(t *testing.T) {
		cfg := mailConfig()
		cfg.Host = ""
		_, err := NewSMTPMailer(cfg, zap.NewNop())
		assert.Error(t, err)
	})
}

func TestBuildMsg(t *testing.T) {
	msg := &Message{
		To:      []string{"admin@example.com"},
		ReplyTo: "user@example.com",
		Subject: "Question",
		Text:    "plain body",
		HTML:    "<p>html body</p>",
		Attachments: []Attachment{
			{Name: "notes.txt", ContentType: "text/plain", Data: []byte("attached")},
		},
	}

	gm, err := buildMsg(mailConfig(), msg)
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = gm.WriteTo(&buf)
	require.NoError(t, err)
	raw := buf.String()

	assert.Contains(t, raw, "Subject: Question")
	assert.Contains(t, raw, "To: <admin@example.com>")
	assert.Contains(t, raw, "Reply-To: <user@example.com>")
	assert.Contains(t, raw, `"Calculation" <noreply@example.com>`)
	assert.Contains(t, raw, "multipart/alternative")
	assert.Contains(t, raw, "plain body")
	assert.Contains(t, raw, "notes.txt")

	t.Run("rejects an invalid recipient", func(t *testing.T) {
		_, err := buildMsg(mailConfig(), &Message{To: []string{"not an address"}, Subject: "s", Text: "t"})
		assert.ErrorContains(t, err, "invalid recipient")
	})
}

func TestLogMailer_Send(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	m := NewLogMailer(zap.New(core))

	err := m.Send(context.Background(), &Message{To: []string{"a@example.com"}, Subject: "Hello", Text: "t"})
	require.NoError(t, err)
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "Hello", logs.All()[0].ContextMap()["subject"])

	assert.Error(t, m.Send(context.Background(), &Message{}))
}
