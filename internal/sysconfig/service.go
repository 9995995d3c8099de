package sysconfig

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/frahmantamala/personnel-records/internal"
	"github.com/frahmantamala/personnel-records/internal/auth"
)

const cacheTTL = 30 * time.Second

type Repository interface {
	Get(ctx context.Context) (*Config, error)
	Create(ctx context.Context, c *Config) error
	Update(ctx context.Context, c *Config) error
}

type Service struct {
	repo   Repository
	guard  auth.Authorizer
	logger *slog.Logger

	mu       sync.RWMutex
	cached   *Config
	cachedAt time.Time
}

func NewService(repo Repository, guard auth.Authorizer, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		guard:  guard,
		logger: logger,
	}
}

func (s *Service) Get(ctx context.Context, actor *auth.Actor) (*Config, error) {
	if err := s.guard.Authorize(ctx, actor, auth.CapabilityView); err != nil {
		return nil, err
	}
	c, err := s.repo.Get(ctx)
	if err != nil {
		if errors.Is(err, ErrNotConfigured) {
			return nil, internal.NewNotFoundError("system configuration", 1)
		}
		return nil, internal.NewInternalError("failed to load system configuration", err)
	}
	return c, nil
}

func (s *Service) Create(ctx context.Context, actor *auth.Actor, input Input) (*Config, error) {
	if err := s.guard.Authorize(ctx, actor, auth.CapabilityConfigureSystem); err != nil {
		return nil, err
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}

	c := Defaults()
	c.Apply(input)
	c.UpdatedBy = &actor.ID
	if err := s.repo.Create(ctx, c); err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			return nil, internal.NewConflictError("system configuration already exists", internal.ErrCodeSingletonExists)
		}
		s.logger.ErrorContext(ctx, "failed to create system configuration", "error", err)
		return nil, internal.NewInternalError("failed to create system configuration", err)
	}

	s.store(c)
	s.logger.InfoContext(ctx, "system configuration created", "actor_id", actor.ID)
	return c, nil
}

func (s *Service) Update(ctx context.Context, actor *auth.Actor, input Input) (*Config, error) {
	if err := s.guard.Authorize(ctx, actor, auth.CapabilityConfigureSystem); err != nil {
		return nil, err
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}

	c, err := s.repo.Get(ctx)
	if err != nil {
		if errors.Is(err, ErrNotConfigured) {
			return nil, internal.NewNotFoundError("system configuration", 1)
		}
		return nil, internal.NewInternalError("failed to load system configuration", err)
	}
	c.Apply(input)
	c.UpdatedBy = &actor.ID
	if err := s.repo.Update(ctx, c); err != nil {
		s.logger.ErrorContext(ctx, "failed to update system configuration", "error", err)
		return nil, internal.NewInternalError("failed to update system configuration", err)
	}

	s.store(c)
	s.logger.InfoContext(ctx, "system configuration updated",
		"actor_id", actor.ID,
		"maintenance", c.Maintenance,
		"session_timeout_minutes", c.SessionTimeoutMinutes)
	return c, nil
}

// SessionTimeout is the access token lifetime. The default applies while
// the configuration row is missing or unreadable.
func (s *Service) SessionTimeout(ctx context.Context) time.Duration {
	c := s.current(ctx)
	if c == nil || c.SessionTimeoutMinutes <= 0 {
		return DefaultSessionTimeoutMinutes * time.Minute
	}
	return c.SessionTimeout()
}

func (s *Service) UnderMaintenance(ctx context.Context) bool {
	c := s.current(ctx)
	return c != nil && c.Maintenance
}

func (s *Service) current(ctx context.Context) *Config {
	s.mu.RLock()
	if s.cached != nil && time.Since(s.cachedAt) < cacheTTL {
		c := s.cached
		s.mu.RUnlock()
		return c
	}
	s.mu.RUnlock()

	c, err := s.repo.Get(ctx)
	if err != nil {
		if !errors.Is(err, ErrNotConfigured) {
			s.logger.WarnContext(ctx, "failed to read system configuration", "error", err)
		}
		return nil
	}
	s.store(c)
	return c
}

func (s *Service) store(c *Config) {
	snapshot := *c
	s.mu.Lock()
	s.cached = &snapshot
	s.cachedAt = time.Now()
	s.mu.Unlock()
}
