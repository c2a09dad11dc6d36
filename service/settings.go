package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/teaminsight/reflection/domain"
)

// GetSettings returns the global reflection settings, ensuring defaults
// exist first.
func (s *Service) GetSettings(ctx context.Context) (*domain.Settings, error) {
	if err := s.resolver.EnsureDefaults(ctx); err != nil {
		return nil, err
	}
	settings, err := s.store.GetSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read settings: %w", err)
	}
	if settings == nil {
		settings = &domain.Settings{SelectedProfileKey: "default"}
	}
	return settings, nil
}

// UpdateSettings changes the selected profile and weekly instructions.
// Unknown profile keys are rejected without mutation. In-flight sessions
// keep their snapshot; the change applies to new sessions only.
func (s *Service) UpdateSettings(ctx context.Context, selectedProfileKey, weeklyInstructions string) error {
	if err := s.resolver.EnsureDefaults(ctx); err != nil {
		return err
	}

	key := strings.TrimSpace(selectedProfileKey)
	if key == "" {
		key = "default"
	}

	profile, err := s.store.GetProfile(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to read profile: %w", err)
	}
	if profile == nil {
		return fmt.Errorf("%w: %s", ErrUnknownProfile, key)
	}

	return s.store.UpdateSettings(ctx, &domain.Settings{
		SelectedProfileKey: key,
		WeeklyInstructions: strings.TrimSpace(weeklyInstructions),
	})
}

// ListProfiles returns all reflection profiles, ensuring the seeded
// defaults exist first.
func (s *Service) ListProfiles(ctx context.Context) ([]domain.Profile, error) {
	if err := s.resolver.EnsureDefaults(ctx); err != nil {
		return nil, err
	}
	return s.store.ListProfiles(ctx)
}
