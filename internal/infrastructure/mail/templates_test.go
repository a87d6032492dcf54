package mail

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderer_Render(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	t.Run("comment escapes html", func(t *testing.T) {
		msg := &Message{}
		require.NoError(t, r.Render(msg, TemplateComment, CommentData{
			AppName: "Calculation", From: "john@example.com", FromName: "John", Subject: "Prices", Message: "<b>hi</b>",
		}))
		assert.Contains(t, msg.Text, "John (john@example.com) sent a message:")
		assert.Contains(t, msg.Text, "<b>hi</b>")
		assert.Contains(t, msg.HTML, "&lt;b&gt;hi&lt;/b&gt;")
		assert.Contains(t, msg.HTML, "<h2 style=\"border-bottom: 1px solid #ccc; padding-bottom: 6px;\">Calculation</h2>")
	})

	t.Run("reset password includes the link and expiry", func(t *testing.T) {
		msg := &Message{}
		require.NoError(t, r.Render(msg, TemplateResetPassword, ResetPasswordData{
			AppName: "Calculation", Username: "john", URL: "https://calc.example.com/reset?token=abc", ExpiresAt: "01.02.2024 10:00",
		}))
		assert.Contains(t, msg.Text, "https://calc.example.com/reset?token=abc")
		assert.Contains(t, msg.Text, "01.02.2024 10:00")
		assert.Contains(t, msg.HTML, `href="https://calc.example.com/reset?token=abc"`)
	})

	t.Run("welcome without url", func(t *testing.T) {
		msg := &Message{}
		require.NoError(t, r.Render(msg, TemplateWelcome, WelcomeData{AppName: "Calculation", Username: "john", Role: "ROLE_ADMIN"}))
		assert.Contains(t, msg.Text, "ROLE_ADMIN")
		assert.NotContains(t, msg.Text, "Sign in")
	})

	t.Run("below margin", func(t *testing.T) {
		msg := &Message{}
		require.NoError(t, r.Render(msg, TemplateBelowMargin, BelowMarginData{
			AppName: "Calculation", ID: "42", Customer: "ACME", Overall: "1'120.35", Margin: "105%", MinMargin: "110%",
		}))
		assert.Contains(t, msg.Text, "The calculation 42 is below the minimum margin.")
		assert.Contains(t, msg.HTML, "105%")
	})

	t.Run("unknown template", func(t *testing.T) {
		assert.Error(t, r.Render(&Message{}, "missing", nil))
	})
}
