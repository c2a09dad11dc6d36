// Package store defines the storage interface and implementations.
package store

import (
	"context"
	"time"

	"github.com/teaminsight/reflection/domain"
)

// Store defines the interface for data persistence.
type Store interface {
	// Session operations
	CreateSession(ctx context.Context, session *domain.ReflectionSession) error
	SaveSession(ctx context.Context, session *domain.ReflectionSession) error
	// FindActiveSession returns the team's in_progress or ready_to_submit
	// session, or nil when none exists.
	FindActiveSession(ctx context.Context, teamID string) (*domain.ReflectionSession, error)
	DeleteActiveSessions(ctx context.Context, teamID string) error
	// RecentSubmittedSummaries returns internal summaries of the team's
	// submitted sessions updated since the given time, newest first.
	RecentSubmittedSummaries(ctx context.Context, teamID string, since time.Time, limit int) ([]string, error)

	// Profile operations
	GetProfile(ctx context.Context, key string) (*domain.Profile, error)
	ListProfiles(ctx context.Context) ([]domain.Profile, error)
	// SeedProfile inserts the profile only if the key does not exist yet.
	SeedProfile(ctx context.Context, profile *domain.Profile) error

	// Settings singleton
	GetSettings(ctx context.Context) (*domain.Settings, error)
	EnsureSettings(ctx context.Context) error
	UpdateSettings(ctx context.Context, settings *domain.Settings) error

	// Team status propagation on confirm
	UpdateTeamReflection(ctx context.Context, teamID string, color domain.Color, score int, updatedAt time.Time) error

	// Lifecycle
	Close() error
}
