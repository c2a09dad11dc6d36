package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/teaminsight/reflection/domain"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// migrate runs database migrations.
func (s *SQLiteStore) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS reflection_sessions (
			session_id TEXT PRIMARY KEY,
			team_id TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'in_progress',
			current_index INTEGER NOT NULL DEFAULT 0,
			clarify_count INTEGER NOT NULL DEFAULT 0,
			messages TEXT NOT NULL DEFAULT '[]',
			answers TEXT NOT NULL DEFAULT '[]',
			running_summary TEXT NOT NULL DEFAULT '',
			profile_key TEXT NOT NULL DEFAULT 'default',
			weekly_instructions TEXT NOT NULL DEFAULT '',
			reflection_score INTEGER,
			reflection_color TEXT,
			reflection_reasons TEXT NOT NULL DEFAULT '[]',
			submitted_at DATETIME,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_team_status ON reflection_sessions(team_id, status)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_team_submitted ON reflection_sessions(team_id, submitted_at)`,
		`CREATE TABLE IF NOT EXISTS reflection_profiles (
			key TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			controller_addendum TEXT NOT NULL DEFAULT '',
			evaluator_addendum TEXT NOT NULL DEFAULT '',
			green_min INTEGER NOT NULL DEFAULT 75,
			red_max INTEGER NOT NULL DEFAULT 45,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS reflection_settings (
			singleton_key TEXT PRIMARY KEY,
			selected_profile_key TEXT NOT NULL DEFAULT 'default',
			weekly_instructions TEXT NOT NULL DEFAULT '',
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS teams (
			team_id TEXT PRIMARY KEY,
			status TEXT NOT NULL DEFAULT '',
			reflection_score INTEGER,
			reflection_updated_at DATETIME
		)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\n%s", err, m)
		}
	}

	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateSession creates a new reflection session.
func (s *SQLiteStore) CreateSession(ctx context.Context, session *domain.ReflectionSession) error {
	messages, answers, reasons, err := marshalSessionDocs(session)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO reflection_sessions
		 (session_id, team_id, status, current_index, clarify_count, messages, answers,
		  running_summary, profile_key, weekly_instructions, reflection_score, reflection_color,
		  reflection_reasons, submitted_at, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		session.SessionID, session.TeamID, session.Status, session.CurrentIndex, session.ClarifyCount,
		messages, answers, session.RunningSummary, session.ProfileKey, session.WeeklyInstructionsSnapshot,
		nullableInt(session.ReflectionScore), nullableColor(session.ReflectionColor), reasons,
		nullableTime(session.SubmittedAt), session.CreatedAt, session.UpdatedAt)
	return err
}

// SaveSession persists the full current state of an existing session.
func (s *SQLiteStore) SaveSession(ctx context.Context, session *domain.ReflectionSession) error {
	messages, answers, reasons, err := marshalSessionDocs(session)
	if err != nil {
		return err
	}
	session.UpdatedAt = time.Now()
	res, err := s.db.ExecContext(ctx,
		`UPDATE reflection_sessions SET
		 status = ?, current_index = ?, clarify_count = ?, messages = ?, answers = ?,
		 running_summary = ?, profile_key = ?, weekly_instructions = ?, reflection_score = ?,
		 reflection_color = ?, reflection_reasons = ?, submitted_at = ?, updated_at = ?
		 WHERE session_id = ?`,
		session.Status, session.CurrentIndex, session.ClarifyCount, messages, answers,
		session.RunningSummary, session.ProfileKey, session.WeeklyInstructionsSnapshot,
		nullableInt(session.ReflectionScore), nullableColor(session.ReflectionColor), reasons,
		nullableTime(session.SubmittedAt), session.UpdatedAt, session.SessionID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return fmt.Errorf("session %s not found", session.SessionID)
	}
	return err
}

// FindActiveSession returns the team's active session, or nil.
func (s *SQLiteStore) FindActiveSession(ctx context.Context, teamID string) (*domain.ReflectionSession, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT session_id, team_id, status, current_index, clarify_count, messages, answers,
		        running_summary, profile_key, weekly_instructions, reflection_score, reflection_color,
		        reflection_reasons, submitted_at, created_at, updated_at
		 FROM reflection_sessions
		 WHERE team_id = ? AND status IN (?, ?)
		 ORDER BY created_at DESC LIMIT 1`,
		teamID, domain.StatusInProgress, domain.StatusReadyToSubmit)
	return scanSession(row)
}

// DeleteActiveSessions deletes all active sessions for a team.
func (s *SQLiteStore) DeleteActiveSessions(ctx context.Context, teamID string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM reflection_sessions WHERE team_id = ? AND status IN (?, ?)`,
		teamID, domain.StatusInProgress, domain.StatusReadyToSubmit)
	return err
}

// RecentSubmittedSummaries returns summaries of recently submitted sessions.
func (s *SQLiteStore) RecentSubmittedSummaries(ctx context.Context, teamID string, since time.Time, limit int) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT running_summary FROM reflection_sessions
		 WHERE team_id = ? AND status = ? AND updated_at >= ? AND running_summary <> ''
		 ORDER BY updated_at DESC LIMIT ?`,
		teamID, domain.StatusSubmitted, since, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []string
	for rows.Next() {
		var summary string
		if err := rows.Scan(&summary); err != nil {
			return nil, err
		}
		summaries = append(summaries, summary)
	}
	return summaries, rows.Err()
}

// GetProfile retrieves a profile by key, or nil when missing.
func (s *SQLiteStore) GetProfile(ctx context.Context, key string) (*domain.Profile, error) {
	var p domain.Profile
	err := s.db.QueryRowContext(ctx,
		`SELECT key, title, description, controller_addendum, evaluator_addendum, green_min, red_max, created_at, updated_at
		 FROM reflection_profiles WHERE key = ?`, key).
		Scan(&p.Key, &p.Title, &p.Description, &p.ControllerAddendum, &p.EvaluatorAddendum,
			&p.GreenMin, &p.RedMax, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListProfiles lists all profiles.
func (s *SQLiteStore) ListProfiles(ctx context.Context) ([]domain.Profile, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT key, title, description, controller_addendum, evaluator_addendum, green_min, red_max, created_at, updated_at
		 FROM reflection_profiles ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []domain.Profile
	for rows.Next() {
		var p domain.Profile
		if err := rows.Scan(&p.Key, &p.Title, &p.Description, &p.ControllerAddendum, &p.EvaluatorAddendum,
			&p.GreenMin, &p.RedMax, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

// SeedProfile inserts a profile only when the key is absent.
func (s *SQLiteStore) SeedProfile(ctx context.Context, profile *domain.Profile) error {
	now := time.Now()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO reflection_profiles (key, title, description, controller_addendum, evaluator_addendum, green_min, red_max, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(key) DO NOTHING`,
		profile.Key, profile.Title, profile.Description, profile.ControllerAddendum, profile.EvaluatorAddendum,
		profile.GreenMin, profile.RedMax, now, now)
	return err
}

const settingsSingletonKey = "global"

// GetSettings retrieves the global settings singleton, or nil when missing.
func (s *SQLiteStore) GetSettings(ctx context.Context) (*domain.Settings, error) {
	var st domain.Settings
	err := s.db.QueryRowContext(ctx,
		`SELECT selected_profile_key, weekly_instructions, updated_at
		 FROM reflection_settings WHERE singleton_key = ?`, settingsSingletonKey).
		Scan(&st.SelectedProfileKey, &st.WeeklyInstructions, &st.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &st, nil
}

// EnsureSettings creates the settings singleton with defaults when absent.
func (s *SQLiteStore) EnsureSettings(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO reflection_settings (singleton_key, selected_profile_key, weekly_instructions, updated_at)
		 VALUES (?, 'default', '', ?)
		 ON CONFLICT(singleton_key) DO NOTHING`,
		settingsSingletonKey, time.Now())
	return err
}

// UpdateSettings overwrites the settings singleton.
func (s *SQLiteStore) UpdateSettings(ctx context.Context, settings *domain.Settings) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO reflection_settings (singleton_key, selected_profile_key, weekly_instructions, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(singleton_key) DO UPDATE SET
		   selected_profile_key = excluded.selected_profile_key,
		   weekly_instructions = excluded.weekly_instructions,
		   updated_at = excluded.updated_at`,
		settingsSingletonKey, settings.SelectedProfileKey, settings.WeeklyInstructions, time.Now())
	return err
}

// UpdateTeamReflection propagates the confirm result to the team record.
func (s *SQLiteStore) UpdateTeamReflection(ctx context.Context, teamID string, color domain.Color, score int, updatedAt time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO teams (team_id, status, reflection_score, reflection_updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(team_id) DO UPDATE SET
		   status = excluded.status,
		   reflection_score = excluded.reflection_score,
		   reflection_updated_at = excluded.reflection_updated_at`,
		teamID, color, score, updatedAt)
	return err
}

func marshalSessionDocs(session *domain.ReflectionSession) (messages, answers, reasons string, err error) {
	m, err := marshalDoc(session.Messages)
	if err != nil {
		return "", "", "", fmt.Errorf("failed to marshal messages: %w", err)
	}
	a, err := marshalDoc(session.Answers)
	if err != nil {
		return "", "", "", fmt.Errorf("failed to marshal answers: %w", err)
	}
	r, err := marshalDoc(session.ReflectionReasons)
	if err != nil {
		return "", "", "", fmt.Errorf("failed to marshal reasons: %w", err)
	}
	return m, a, r, nil
}

func marshalDoc(v interface{}) (string, error) {
	if v == nil {
		return "[]", nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	if string(b) == "null" {
		return "[]", nil
	}
	return string(b), nil
}

func scanSession(row *sql.Row) (*domain.ReflectionSession, error) {
	var sess domain.ReflectionSession
	var messages, answers, reasons string
	var score sql.NullInt64
	var color sql.NullString
	var submittedAt sql.NullTime

	err := row.Scan(&sess.SessionID, &sess.TeamID, &sess.Status, &sess.CurrentIndex, &sess.ClarifyCount,
		&messages, &answers, &sess.RunningSummary, &sess.ProfileKey, &sess.WeeklyInstructionsSnapshot,
		&score, &color, &reasons, &submittedAt, &sess.CreatedAt, &sess.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(messages), &sess.Messages); err != nil {
		return nil, fmt.Errorf("failed to unmarshal messages: %w", err)
	}
	if err := json.Unmarshal([]byte(answers), &sess.Answers); err != nil {
		return nil, fmt.Errorf("failed to unmarshal answers: %w", err)
	}
	if err := json.Unmarshal([]byte(reasons), &sess.ReflectionReasons); err != nil {
		return nil, fmt.Errorf("failed to unmarshal reasons: %w", err)
	}
	if score.Valid {
		v := int(score.Int64)
		sess.ReflectionScore = &v
	}
	if color.Valid {
		c := domain.Color(color.String)
		sess.ReflectionColor = &c
	}
	if submittedAt.Valid {
		t := submittedAt.Time
		sess.SubmittedAt = &t
	}
	return &sess, nil
}

func nullableInt(v *int) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func nullableColor(c *domain.Color) interface{} {
	if c == nil {
		return nil
	}
	return string(*c)
}

func nullableTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return *t
}
