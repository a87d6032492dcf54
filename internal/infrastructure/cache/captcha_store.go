package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const captchaKeyPrefix = "calc:captcha:"

// RedisCaptchaStore keeps captcha answers in Redis with a TTL
type RedisCaptchaStore struct {
	client redis.UniversalClient
}

// NewRedisCaptchaStore creates a store on an existing client
func NewRedisCaptchaStore(client redis.UniversalClient) *RedisCaptchaStore {
	return &RedisCaptchaStore{client: client}
}

// Set stores the answer under id until ttl elapses
func (s *RedisCaptchaStore) Set(ctx context.Context, id, answer string, ttl time.Duration) error {
	if err := s.client.Set(ctx, captchaKeyPrefix+id, answer, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store captcha: %w", err)
	}
	return nil
}

// Take returns and deletes the answer stored under id
func (s *RedisCaptchaStore) Take(ctx context.Context, id string) (string, bool, error) {
	answer, err := s.client.GetDel(ctx, captchaKeyPrefix+id).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read captcha: %w", err)
	}
	return answer, true, nil
}

// Close is a no-op, the client is owned by the caller
func (s *RedisCaptchaStore) Close() error {
	return nil
}

type captchaEntry struct {
	answer    string
	expiresAt time.Time
}

// MemoryCaptchaStore keeps captcha answers in memory. A janitor goroutine
// removes expired answers until Close is called.
type MemoryCaptchaStore struct {
	mu        sync.Mutex
	entries   map[string]captchaEntry
	stop      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
	now       func() time.Time
}

// NewMemoryCaptchaStore creates a store sweeping expired entries every interval
func NewMemoryCaptchaStore(interval time.Duration) *MemoryCaptchaStore {
	if interval <= 0 {
		interval = time.Minute
	}
	s := &MemoryCaptchaStore{
		entries: make(map[string]captchaEntry),
		stop:    make(chan struct{}),
		now:     time.Now,
	}
	s.wg.Add(1)
	go s.janitor(interval)
	return s
}

// Set stores the answer under id until ttl elapses
func (s *MemoryCaptchaStore) Set(_ context.Context, id, answer string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[id] = captchaEntry{answer: answer, expiresAt: s.now().Add(ttl)}
	return nil
}

// Take returns and deletes the answer stored under id
func (s *MemoryCaptchaStore) Take(_ context.Context, id string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	if !ok {
		return "", false, nil
	}
	delete(s.entries, id)
	if !s.now().Before(e.expiresAt) {
		return "", false, nil
	}
	return e.answer, true, nil
}

// Len returns the number of stored answers, expired or not
func (s *MemoryCaptchaStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Close stops the janitor. Safe to call multiple times.
func (s *MemoryCaptchaStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.stop)
		s.wg.Wait()
	})
	return nil
}

func (s *MemoryCaptchaStore) janitor(interval time.Duration) {
	defer s.wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *MemoryCaptchaStore) sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for id, e := range s.entries {
		if !now.Before(e.expiresAt) {
			delete(s.entries, id)
		}
	}
}
