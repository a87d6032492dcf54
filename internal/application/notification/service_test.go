package notification

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/calculation/backend/internal/domain/calculation"
	"github.com/calculation/backend/internal/domain/identity"
	"github.com/calculation/backend/internal/infrastructure/mail"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	mock.Mock
	identity.UserRepository
}

func (m *MockUserRepository) FindByRole(ctx context.Context, role identity.Role) ([]identity.User, error) {
	args := m.Called(ctx, role)
	return args.Get(0).([]identity.User), args.Error(1)
}

type recordingMailer struct {
	sent []*mail.Message
	err  error
}

func (m *recordingMailer) Send(_ context.Context, msg *mail.Message) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func newService(t *testing.T, mailer mail.Mailer, users identity.UserRepository) *Service {
	t.Helper()
	renderer, err := mail.NewRenderer()
	require.NoError(t, err)
	return NewService(mailer, renderer, users, Config{
		AppName:    "Calculation",
		BaseURL:    "https://calc.example.com/",
		AdminEmail: "admin@example.com",
	}, nil, zap.NewNop())
}

func newUser(t *testing.T, username string, role identity.Role) *identity.User {
	t.Helper()
	user, err := identity.NewUser(username, username+"@example.com", "secret123", role)
	require.NoError(t, err)
	return user
}

func TestService_SendComment(t *testing.T) {
	ctx := context.Background()

	t.Run("sends the message to the administrator", func(t *testing.T) {
		mailer := &recordingMailer{}
		svc := newService(t, mailer, new(MockUserRepository))

		err := svc.SendComment(ctx, CommentRequest{
			Name:    "Anna",
			Email:   "anna@example.com",
			Subject: "Question",
			Message: "When is the quote ready?",
		})
		require.NoError(t, err)

		require.Len(t, mailer.sent, 1)
		msg := mailer.sent[0]
		assert.Equal(t, []string{"admin@example.com"}, msg.To)
		assert.Equal(t, "anna@example.com", msg.ReplyTo)
		assert.Contains(t, msg.Text, "When is the quote ready?")
		assert.NotEmpty(t, msg.HTML)
	})

	t.Run("wraps the mailer error", func(t *testing.T) {
		mailer := &recordingMailer{err: errors.New("smtp down")}
		svc := newService(t, mailer, new(MockUserRepository))

		err := svc.SendComment(ctx, CommentRequest{Email: "a@b.ch", Subject: "s", Message: "m"})
		assert.ErrorContains(t, err, "smtp down")
	})
}

func TestService_SendResetPassword(t *testing.T) {
	ctx := context.Background()

	t.Run("sends a link with the token", func(t *testing.T) {
		mailer := &recordingMailer{}
		user := newUser(t, "bob", identity.RoleUser)
		token, err := user.CreateResetToken(time.Hour)
		require.NoError(t, err)

		require.NoError(t, newService(t, mailer, new(MockUserRepository)).SendResetPassword(ctx, user))

		require.Len(t, mailer.sent, 1)
		assert.Equal(t, []string{"bob@example.com"}, mailer.sent[0].To)
		assert.Contains(t, mailer.sent[0].Text, "https://calc.example.com/reset-password?token="+token)
	})

	t.Run("requires a pending reset", func(t *testing.T) {
		mailer := &recordingMailer{}
		err := newService(t, mailer, new(MockUserRepository)).SendResetPassword(ctx, newUser(t, "bob", identity.RoleUser))

		assert.Error(t, err)
		assert.Empty(t, mailer.sent)
	})
}

func TestService_BelowMarginHandler(t *testing.T) {
	ctx := context.Background()

	event := func(below bool) *calculation.CalculationTotalsChangedEvent {
		return &calculation.CalculationTotalsChangedEvent{
			CalculationID: uuid.New(),
			Customer:      "Muster AG",
			Description:   "Kitchen",
			OverallTotal:  decimal.RequireFromString("1234.5"),
			OverallMargin: decimal.RequireFromString("1.05"),
			MinMargin:     decimal.RequireFromString("1.1"),
			BelowMargin:   below,
		}
	}

	t.Run("alerts the administrators", func(t *testing.T) {
		mailer := &recordingMailer{}
		users := new(MockUserRepository)
		users.On("FindByRole", ctx, identity.RoleAdmin).Return([]identity.User{*newUser(t, "carol", identity.RoleAdmin)}, nil)
		users.On("FindByRole", ctx, identity.RoleSuperAdmin).Return([]identity.User{}, nil)

		handler := newService(t, mailer, users).BelowMarginHandler()
		assert.Equal(t, []string{calculation.EventTypeCalculationTotalsChanged}, handler.EventTypes())
		require.NoError(t, handler.Handle(ctx, event(true)))

		require.Len(t, mailer.sent, 1)
		msg := mailer.sent[0]
		assert.Equal(t, []string{"carol@example.com"}, msg.To)
		assert.Contains(t, msg.Text, "1'234.50")
		assert.Contains(t, msg.Text, "105%")
	})

	t.Run("falls back to the configured address", func(t *testing.T) {
		mailer := &recordingMailer{}
		users := new(MockUserRepository)
		users.On("FindByRole", ctx, mock.Anything).Return([]identity.User{}, nil)

		require.NoError(t, newService(t, mailer, users).BelowMarginHandler().Handle(ctx, event(true)))

		require.Len(t, mailer.sent, 1)
		assert.Equal(t, []string{"admin@example.com"}, mailer.sent[0].To)
	})

	t.Run("ignores calculations above the margin", func(t *testing.T) {
		mailer := &recordingMailer{}
		users := new(MockUserRepository)

		require.NoError(t, newService(t, mailer, users).BelowMarginHandler().Handle(ctx, event(false)))

		assert.Empty(t, mailer.sent)
		users.AssertNotCalled(t, "FindByRole", mock.Anything, mock.Anything)
	})
}
