package importer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	domain "github.com/mohammadpnp/household-import/internal/domain/household"
)

type ImportProgressService interface {
	Current(ctx context.Context, userID string) (domain.ImportProgress, error)
	Dismiss(ctx context.Context, userID string) error
	Cancel(ctx context.Context, userID string) error
}

type runCanceller interface {
	Cancel(userID string) error
}

type importProgressService struct {
	channel domain.ProgressChannel
	runner  runCanceller
}

func NewImportProgressService(channel domain.ProgressChannel, runner runCanceller) ImportProgressService {
	return &importProgressService{channel: channel, runner: runner}
}

// Current returns the latest snapshot so late subscribers can catch up.
func (s *importProgressService) Current(ctx context.Context, userID string) (domain.ImportProgress, error) {
	if strings.TrimSpace(userID) == "" {
		return domain.ImportProgress{}, ErrMissingUser
	}

	p, err := s.channel.Current(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrProgressNotFound) {
			return domain.ImportProgress{}, ErrProgressMissing
		}
		return domain.ImportProgress{}, fmt.Errorf("%w: %v", ErrGetProgress, err)
	}
	if p == nil {
		return domain.ImportProgress{}, ErrProgressMissing
	}
	return *p, nil
}

// Dismiss deletes the user's progress record. Completion alone never does.
func (s *importProgressService) Dismiss(ctx context.Context, userID string) error {
	if strings.TrimSpace(userID) == "" {
		return ErrMissingUser
	}
	if err := s.channel.Clear(ctx, userID); err != nil {
		return fmt.Errorf("%w: %v", ErrDismissProgress, err)
	}
	return nil
}

func (s *importProgressService) Cancel(ctx context.Context, userID string) error {
	if strings.TrimSpace(userID) == "" {
		return ErrMissingUser
	}
	return s.runner.Cancel(userID)
}
