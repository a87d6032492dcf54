// Package notification sends the application emails: contact messages,
// password resets, welcome messages and below-margin alerts.
package notification

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/calculation/backend/internal/domain/calculation"
	"github.com/calculation/backend/internal/domain/identity"
	"github.com/calculation/backend/internal/domain/printing"
	"github.com/calculation/backend/internal/domain/shared"
	"github.com/calculation/backend/internal/infrastructure/event"
	"github.com/calculation/backend/internal/infrastructure/mail"
	"github.com/calculation/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ErrNoRecipient is returned when no address can receive a message
var ErrNoRecipient = shared.NewDomainError("NO_RECIPIENT", "No recipient configured for this message")

// Config holds the values printed in the emails
type Config struct {
	AppName    string
	BaseURL    string
	AdminEmail string
}

// CommentRequest is a message sent through the contact form
type CommentRequest struct {
	Name        string            `json:"name" form:"name" binding:"max=100"`
	Email       string            `json:"email" form:"email" binding:"required,email"`
	Subject     string            `json:"subject" form:"subject" binding:"required,max=255"`
	Message     string            `json:"message" form:"message" binding:"required"`
	Attachments []mail.Attachment `json:"-" form:"-"`
}

// Service renders and sends the notification emails
type Service struct {
	mailer   mail.Mailer
	renderer *mail.Renderer
	userRepo identity.UserRepository
	cfg      Config
	metrics  *telemetry.Metrics
	logger   *zap.Logger
}

// NewService creates a new notification Service
func NewService(
	mailer mail.Mailer,
	renderer *mail.Renderer,
	userRepo identity.UserRepository,
	cfg Config,
	metrics *telemetry.Metrics,
	logger *zap.Logger,
) *Service {
	return &Service{
		mailer:   mailer,
		renderer: renderer,
		userRepo: userRepo,
		cfg:      cfg,
		metrics:  metrics,
		logger:   logger,
	}
}

// SendComment forwards a contact message to the administrator
func (s *Service) SendComment(ctx context.Context, req CommentRequest) error {
	if s.cfg.AdminEmail == "" {
		return ErrNoRecipient
	}
	msg := &mail.Message{
		To:          []string{s.cfg.AdminEmail},
		ReplyTo:     req.Email,
		Subject:     req.Subject,
		Attachments: req.Attachments,
	}
	return s.send(ctx, mail.TemplateComment, msg, mail.CommentData{
		AppName:  s.cfg.AppName,
		From:     req.Email,
		FromName: req.Name,
		Subject:  req.Subject,
		Message:  req.Message,
	})
}

// SendResetPassword sends the link to choose a new password
func (s *Service) SendResetPassword(ctx context.Context, user *identity.User) error {
	if user.ResetToken == "" || user.ResetExpiresAt == nil {
		return shared.NewDomainError("INVALID_RESET_TOKEN", "User has no pending password reset")
	}
	msg := &mail.Message{
		To:      []string{user.Email},
		Subject: s.cfg.AppName + " - Reset your password",
	}
	return s.send(ctx, mail.TemplateResetPassword, msg, mail.ResetPasswordData{
		AppName:   s.cfg.AppName,
		Username:  user.Username,
		URL:       s.link("/reset-password", url.Values{"token": {user.ResetToken}}),
		ExpiresAt: user.ResetExpiresAt.Format("02.01.2006 15:04"),
	})
}

// SendWelcome greets a newly registered user
func (s *Service) SendWelcome(ctx context.Context, user *identity.User) error {
	msg := &mail.Message{
		To:      []string{user.Email},
		Subject: "Welcome to " + s.cfg.AppName,
	}
	return s.send(ctx, mail.TemplateWelcome, msg, mail.WelcomeData{
		AppName:  s.cfg.AppName,
		Username: user.Username,
		Role:     string(user.Role),
		URL:      s.link("/login", nil),
	})
}

// BelowMarginHandler alerts the administrators when a saved calculation falls below the minimum margin
func (s *Service) BelowMarginHandler() shared.EventHandler {
	return event.NewHandlerFunc(s.handleTotalsChanged, calculation.EventTypeCalculationTotalsChanged)
}

func (s *Service) handleTotalsChanged(ctx context.Context, e shared.DomainEvent) error {
	changed, ok := e.(*calculation.CalculationTotalsChangedEvent)
	if !ok || !changed.BelowMargin {
		return nil
	}
	recipients, err := s.administrators(ctx)
	if err != nil {
		return err
	}
	if len(recipients) == 0 {
		s.logger.Warn("No recipient for the below margin alert",
			zap.String("calculation_id", changed.CalculationID.String()))
		return nil
	}

	msg := &mail.Message{
		To:      recipients,
		Subject: fmt.Sprintf("%s - Calculation below margin: %s", s.cfg.AppName, changed.Customer),
	}
	return s.send(ctx, mail.TemplateBelowMargin, msg, mail.BelowMarginData{
		AppName:     s.cfg.AppName,
		ID:          changed.CalculationID.String(),
		Customer:    changed.Customer,
		Description: changed.Description,
		Overall:     printing.FormatAmount(changed.OverallTotal),
		Margin:      percent(changed.OverallMargin),
		MinMargin:   percent(changed.MinMargin),
		UpdatedBy:   changed.UpdatedBy,
		URL:         s.link("/calculations/"+changed.CalculationID.String(), nil),
	})
}

// administrators returns the emails of the enabled administrators, or the configured admin address
func (s *Service) administrators(ctx context.Context) ([]string, error) {
	seen := make(map[string]struct{})
	var emails []string
	for _, role := range []identity.Role{identity.RoleAdmin, identity.RoleSuperAdmin} {
		users, err := s.userRepo.FindByRole(ctx, role)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
		for _, u := range users {
			key := strings.ToLower(u.Email)
			if _, ok := seen[key]; ok || u.Email == "" {
				continue
			}
			seen[key] = struct{}{}
			emails = append(emails, u.Email)
		}
	}
	if len(emails) == 0 && s.cfg.AdminEmail != "" {
		emails = append(emails, s.cfg.AdminEmail)
	}
	return emails, nil
}

func (s *Service) send(ctx context.Context, template string, msg *mail.Message, data any) error {
	if err := s.renderer.Render(msg, template, data); err != nil {
		return err
	}
	err := s.mailer.Send(ctx, msg)
	s.metrics.MailSent(ctx, template, err)
	if err != nil {
		s.logger.Error("Failed to send mail",
			zap.String("template", template),
			zap.Strings("to", msg.To),
			zap.Error(err),
		)
		return fmt.Errorf("failed to send %s mail: %w", template, err)
	}
	s.logger.Info("Mail sent", zap.String("template", template), zap.Strings("to", msg.To))
	return nil
}

func (s *Service) link(path string, query url.Values) string {
	link := strings.TrimRight(s.cfg.BaseURL, "/") + path
	if len(query) > 0 {
		link += "?" + query.Encode()
	}
	return link
}

func percent(d decimal.Decimal) string {
	return d.Mul(decimal.NewFromInt(100)).StringFixed(0) + "%"
}
