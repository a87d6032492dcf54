package mail

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"
)

//go:embed templates/*
var templateFS embed.FS

// Template names
const (
	TemplateComment       = "comment"
	TemplateResetPassword = "reset_password"
	TemplateWelcome       = "welcome"
	TemplateBelowMargin   = "below_margin"
)

// CommentData fills the comment template
type CommentData struct {
	AppName  string
	From     string
	FromName string
	Subject  string
	Message  string
}

// ResetPasswordData fills the reset_password template
type ResetPasswordData struct {
	AppName   string
	Username  string
	URL       string
	ExpiresAt string
}

// WelcomeData fills the welcome template
type WelcomeData struct {
	AppName  string
	Username string
	Role     string
	URL      string
}

// BelowMarginData fills the below_margin template
type BelowMarginData struct {
	AppName     string
	ID          string
	Customer    string
	Description string
	Overall     string
	Margin      string
	MinMargin   string
	UpdatedBy   string
	URL         string
}

// Renderer renders the embedded text and HTML bodies of a notification
type Renderer struct {
	text *texttemplate.Template
	html *htmltemplate.Template
}

// NewRenderer parses the embedded templates
func NewRenderer() (*Renderer, error) {
	funcs := map[string]any{"upper": strings.ToUpper}
	text, err := texttemplate.New("text").Funcs(funcs).ParseFS(templateFS, "templates/*.txt")
	if err != nil {
		return nil, fmt.Errorf("failed to parse text mail templates: %w", err)
	}
	html, err := htmltemplate.New("html").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse html mail templates: %w", err)
	}
	return &Renderer{text: text, html: html}, nil
}

// Render fills the text and HTML bodies of msg from the named template
func (r *Renderer) Render(msg *Message, name string, data any) error {
	var text, html bytes.Buffer
	if err := r.text.ExecuteTemplate(&text, name+".txt", data); err != nil {
		return fmt.Errorf("failed to render %s text: %w", name, err)
	}
	if err := r.html.ExecuteTemplate(&html, name+".html", data); err != nil {
		return fmt.Errorf("failed to render %s html: %w", name, err)
	}
	msg.Text = strings.TrimSpace(text.String()) + "\n"
	msg.HTML = html.String()
	return nil
}
