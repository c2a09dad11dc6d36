package policy_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teaminsight/reflection/domain"
	"github.com/teaminsight/reflection/policy"
	"github.com/teaminsight/reflection/tests/helpers"
)

func TestEnsureDefaults(t *testing.T) {
	s := helpers.NewTestSQLiteStore(t)
	r := policy.NewResolver(s)
	ctx := context.Background()

	require.NoError(t, r.EnsureDefaults(ctx))
	require.NoError(t, r.EnsureDefaults(ctx)) // idempotent

	profiles, err := s.ListProfiles(ctx)
	require.NoError(t, err)
	assert.Len(t, profiles, 3)

	keys := make(map[string]bool)
	for _, p := range profiles {
		keys[p.Key] = true
	}
	assert.True(t, keys["default"] && keys["strict"] && keys["risk_focus"])

	settings, err := s.GetSettings(ctx)
	require.NoError(t, err)
	require.NotNil(t, settings)
	assert.Equal(t, "default", settings.SelectedProfileKey)
}

func TestEffectiveDefault(t *testing.T) {
	s := helpers.NewTestSQLiteStore(t)
	r := policy.NewResolver(s)

	pol, err := r.Effective(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "default", pol.ProfileKey)
	assert.Equal(t, 75, pol.Profile.GreenMin)
	assert.Equal(t, 45, pol.Profile.RedMax)
	assert.Equal(t, "", pol.WeeklyInstructions)
}

func TestEffectiveFollowsSelectedProfile(t *testing.T) {
	s := helpers.NewTestSQLiteStore(t)
	r := policy.NewResolver(s)
	ctx := context.Background()

	require.NoError(t, r.EnsureDefaults(ctx))
	require.NoError(t, s.UpdateSettings(ctx, &domain.Settings{
		SelectedProfileKey: "strict",
		WeeklyInstructions: "  ask about the sprint demo  ",
	}))

	pol, err := r.Effective(ctx)
	require.NoError(t, err)
	assert.Equal(t, "strict", pol.ProfileKey)
	assert.Equal(t, 85, pol.Profile.GreenMin)
	assert.Equal(t, "ask about the sprint demo", pol.WeeklyInstructions)
}

func TestEffectiveUnknownKeyFallsBackToDefault(t *testing.T) {
	s := helpers.NewTestSQLiteStore(t)
	r := policy.NewResolver(s)
	ctx := context.Background()

	require.NoError(t, r.EnsureDefaults(ctx))
	require.NoError(t, s.UpdateSettings(ctx, &domain.Settings{SelectedProfileKey: "deleted_key"}))

	pol, err := r.Effective(ctx)
	require.NoError(t, err)
	assert.Equal(t, "default", pol.ProfileKey)
	assert.Equal(t, 75, pol.Profile.GreenMin)
}

func TestResolveProfile(t *testing.T) {
	s := helpers.NewTestSQLiteStore(t)
	r := policy.NewResolver(s)
	ctx := context.Background()

	require.NoError(t, r.EnsureDefaults(ctx))

	p, err := r.ResolveProfile(ctx, "risk_focus")
	require.NoError(t, err)
	assert.Equal(t, "risk_focus", p.Key)
	assert.Equal(t, 78, p.GreenMin)

	// Blank and unknown keys both resolve to default.
	p, err = r.ResolveProfile(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "default", p.Key)

	p, err = r.ResolveProfile(ctx, "gone")
	require.NoError(t, err)
	assert.Equal(t, "default", p.Key)
}

func TestResolveProfileHardcodedRecovery(t *testing.T) {
	// Empty store, no seeding: the hardcoded profile keeps confirm working.
	s := helpers.NewTestSQLiteStore(t)
	r := policy.NewResolver(s)

	p, err := r.ResolveProfile(context.Background(), "anything")
	require.NoError(t, err)
	assert.Equal(t, "default", p.Key)
	assert.Equal(t, 75, p.GreenMin)
	assert.Equal(t, 45, p.RedMax)
}
