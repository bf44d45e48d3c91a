package event

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// ErrInvalidInput indicates an invalid event entry.
var ErrInvalidInput = errors.New("invalid event input")

// Repository provides persistence operations for event entries.
type Repository interface {
	Log(ctx context.Context, tenantID string, entry *Entry) error
	List(ctx context.Context, tenantID string, opts ListOptions) ([]Entry, error)
}

// Service handles workflow event log operations.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService creates a new event service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Log records an event with the current timestamp if missing.
func (s *Service) Log(ctx context.Context, tenantID string, entry *Entry) error {
	if entry == nil {
		return ErrInvalidInput
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	if err := s.repo.Log(ctx, tenantID, entry); err != nil {
		return fmt.Errorf("logging event: %w", err)
	}
	return nil
}

// Recent lists event entries with filtering.
func (s *Service) Recent(ctx context.Context, tenantID string, opts ListOptions) ([]Entry, error) {
	return s.repo.List(ctx, tenantID, opts)
}
