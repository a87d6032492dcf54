// Package captcha issues and verifies the textual login challenges.
package captcha

import (
	"context"
	"time"

	"github.com/calculation/backend/internal/domain/captcha"
	"github.com/calculation/backend/internal/domain/shared"
	"github.com/calculation/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultTTL is how long a challenge can be answered when no TTL is configured
const DefaultTTL = 3 * time.Minute

// Captcha errors
var (
	ErrMissing = shared.NewDomainError("CAPTCHA_REQUIRED", "The captcha must be answered")
	ErrExpired = shared.NewDomainError("CAPTCHA_EXPIRED", "The captcha has expired, please try again")
	ErrInvalid = shared.NewDomainError("INVALID_CAPTCHA", "The captcha answer is not correct")
)

// Store keeps the expected answers until they are checked
type Store interface {
	Set(ctx context.Context, id, answer string, ttl time.Duration) error
	Take(ctx context.Context, id string) (string, bool, error)
}

// ChallengeResponse is a question to display with the login form
type ChallengeResponse struct {
	ID        string    `json:"id"`
	Question  string    `json:"question"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Service issues and verifies challenges. Each challenge can be checked once.
type Service struct {
	builder *captcha.Builder
	store   Store
	ttl     time.Duration
	metrics *telemetry.Metrics
	logger  *zap.Logger
}

// NewService creates a new captcha Service
func NewService(builder *captcha.Builder, store Store, ttl time.Duration, metrics *telemetry.Metrics, logger *zap.Logger) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Service{
		builder: builder,
		store:   store,
		ttl:     ttl,
		metrics: metrics,
		logger:  logger,
	}
}

// Issue creates a new challenge and stores its answer
func (s *Service) Issue(ctx context.Context) (*ChallengeResponse, error) {
	challenge, err := s.builder.Build()
	if err != nil {
		return nil, err
	}
	id := uuid.NewString()
	if err := s.store.Set(ctx, id, captcha.NormalizeAnswer(challenge.Answer), s.ttl); err != nil {
		return nil, err
	}
	return &ChallengeResponse{
		ID:        id,
		Question:  challenge.Question,
		ExpiresAt: time.Now().Add(s.ttl),
	}, nil
}

// Verify checks the answer of a challenge. The challenge is consumed whatever the outcome.
func (s *Service) Verify(ctx context.Context, id, answer string) error {
	if id == "" {
		s.metrics.Captcha(ctx, false)
		return ErrMissing
	}
	expected, ok, err := s.store.Take(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		s.metrics.Captcha(ctx, false)
		return ErrExpired
	}
	if answer == "" {
		s.metrics.Captcha(ctx, false)
		return ErrMissing
	}
	if !captcha.Matches(expected, answer) {
		s.metrics.Captcha(ctx, false)
		s.logger.Debug("Invalid captcha answer", zap.String("captcha_id", id))
		return ErrInvalid
	}
	s.metrics.Captcha(ctx, true)
	return nil
}
