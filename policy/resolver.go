// Package policy resolves the effective reflection profile and weekly
// instructions for new sessions.
package policy

import (
	"context"
	"fmt"
	"strings"

	"github.com/teaminsight/reflection/domain"
	"github.com/teaminsight/reflection/store"
)

// fallbackProfile is the hardcoded recovery profile used when even the
// seeded default is missing from the store.
var fallbackProfile = domain.Profile{
	Key:         "default",
	Title:       "Default",
	Description: "Fallback",
	GreenMin:    75,
	RedMax:      45,
}

// DefaultProfiles returns the profiles seeded on first use.
func DefaultProfiles() []domain.Profile {
	return []domain.Profile{
		{
			Key:         "default",
			Title:       "Default",
			Description: "Balanced: normal probing + normal color thresholds.",
			ControllerAddendum: "Sensitivity: normal. Push for concrete examples, " +
				"but keep the flow friendly and not aggressive.",
			EvaluatorAddendum: "Sensitivity: normal. Weigh both quality and risk in a balanced way.",
			GreenMin:          75,
			RedMax:            45,
		},
		{
			Key:         "strict",
			Title:       "Strict",
			Description: "More demanding: higher bar for green, more likely to mark yellow/red.",
			ControllerAddendum: "Sensitivity: strict. Do not accept vague answers. " +
				"Require names (feature/file/route/PR) and measurable details.",
			EvaluatorAddendum: "Sensitivity: strict. Penalize missing specifics, " +
				"unclear next actions, and repeated blockers.",
			GreenMin: 85,
			RedMax:   55,
		},
		{
			Key:         "risk_focus",
			Title:       "Risk Focus",
			Description: "Focus on blockers/risks: prioritizes mitigation and ownership.",
			ControllerAddendum: "Sensitivity: risk-focused. Ask early about blockers/risks " +
				"and require mitigation + owner + target date.",
			EvaluatorAddendum: "Sensitivity: risk-focused. If risks are high or mitigation " +
				"is weak, score should drop noticeably.",
			GreenMin: 78,
			RedMax:   48,
		},
	}
}

// Resolver resolves the currently effective policy. It is consumed once
// at session creation; the result is snapshotted onto the session.
type Resolver struct {
	store store.Store
}

// NewResolver creates a resolver over the given store.
func NewResolver(st store.Store) *Resolver {
	return &Resolver{store: st}
}

// EnsureDefaults seeds the default profiles and the settings singleton.
// It is idempotent and safe to call on every read.
func (r *Resolver) EnsureDefaults(ctx context.Context) error {
	for _, p := range DefaultProfiles() {
		profile := p
		if err := r.store.SeedProfile(ctx, &profile); err != nil {
			return fmt.Errorf("failed to seed profile %s: %w", p.Key, err)
		}
	}
	if err := r.store.EnsureSettings(ctx); err != nil {
		return fmt.Errorf("failed to ensure settings: %w", err)
	}
	return nil
}

// Effective returns the fully populated effective policy. A configured
// key that is missing or deleted falls back to the default profile; this
// is a recovery path, not an error.
func (r *Resolver) Effective(ctx context.Context) (domain.EffectivePolicy, error) {
	if err := r.EnsureDefaults(ctx); err != nil {
		return domain.EffectivePolicy{}, err
	}

	settings, err := r.store.GetSettings(ctx)
	if err != nil {
		return domain.EffectivePolicy{}, fmt.Errorf("failed to read settings: %w", err)
	}

	key := "default"
	weekly := ""
	if settings != nil {
		if k := strings.TrimSpace(settings.SelectedProfileKey); k != "" {
			key = k
		}
		weekly = strings.TrimSpace(settings.WeeklyInstructions)
	}

	profile, err := r.ResolveProfile(ctx, key)
	if err != nil {
		return domain.EffectivePolicy{}, err
	}

	return domain.EffectivePolicy{
		ProfileKey:         profile.Key,
		Profile:            profile,
		WeeklyInstructions: weekly,
	}, nil
}

// ResolveProfile loads a profile by key, falling back to the default
// profile and finally to the hardcoded recovery profile.
func (r *Resolver) ResolveProfile(ctx context.Context, key string) (domain.Profile, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		key = "default"
	}

	profile, err := r.store.GetProfile(ctx, key)
	if err != nil {
		return domain.Profile{}, fmt.Errorf("failed to read profile %s: %w", key, err)
	}
	if profile == nil && key != "default" {
		profile, err = r.store.GetProfile(ctx, "default")
		if err != nil {
			return domain.Profile{}, fmt.Errorf("failed to read default profile: %w", err)
		}
	}
	if profile == nil {
		return fallbackProfile, nil
	}
	return *profile, nil
}
