package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/teaminsight/reflection/domain"
	"github.com/teaminsight/reflection/scoring"
)

const (
	recentSummaryWindow = 14 * 24 * time.Hour
	recentSummaryLimit  = 3
)

// closingMessage is the fixed wrap-up text appended when the controller
// judges the reflection complete. No further questions are asked.
const closingMessage = "That's everything I need for this week's reflection. " +
	"You can submit it now, or reset and start over using the buttons above."

// StartResult is the response of the start operation.
type StartResult struct {
	SessionID string               `json:"sessionId"`
	Status    domain.SessionStatus `json:"status"`
	Messages  []domain.ChatMessage `json:"messages"`
}

// TurnResult is the response of the turn operation.
type TurnResult struct {
	AssistantText string               `json:"assistantText"`
	ReadyToSubmit bool                 `json:"readyToSubmit"`
	Status        domain.SessionStatus `json:"status"`
}

// Start creates the team's session if none is active and generates the
// opening assistant message. Calling it again while messages exist is an
// idempotent resume and produces no new turn.
func (s *Service) Start(ctx context.Context, teamID string) (*StartResult, error) {
	unlock := s.lockTeam(teamID)
	defer unlock()

	sess, err := s.store.FindActiveSession(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to find session: %w", err)
	}

	effective, err := s.resolver.Effective(ctx)
	if err != nil {
		return nil, err
	}

	if sess == nil {
		now := time.Now()
		sess = &domain.ReflectionSession{
			SessionID:                  "sess_" + uuid.New().String(),
			TeamID:                     teamID,
			Status:                     domain.StatusInProgress,
			Messages:                   []domain.ChatMessage{},
			Answers:                    []domain.Answer{},
			ProfileKey:                 effective.ProfileKey,
			WeeklyInstructionsSnapshot: effective.WeeklyInstructions,
			CreatedAt:                  now,
			UpdatedAt:                  now,
		}
		if err := s.store.CreateSession(ctx, sess); err != nil {
			return nil, fmt.Errorf("failed to create session: %w", err)
		}
	}

	// Idempotent resume: never generate a duplicate opening message.
	if len(sess.Messages) > 0 {
		return &StartResult{SessionID: sess.SessionID, Status: sess.Status, Messages: sess.Messages}, nil
	}

	// Legacy sessions created before profiles existed get a one-time
	// snapshot repair with the currently effective policy.
	if strings.TrimSpace(sess.ProfileKey) == "" || sess.ProfileKey == "default" {
		sess.ProfileKey = effective.ProfileKey
	}
	if strings.TrimSpace(sess.WeeklyInstructionsSnapshot) == "" {
		sess.WeeklyInstructionsSnapshot = effective.WeeklyInstructions
	}

	pol, recent, err := s.sessionPolicy(ctx, sess, effective)
	if err != nil {
		return nil, err
	}

	res := s.controller.Step(ctx, sess, pol, recent)
	assistantText := s.gw.RunInterviewer(ctx, sess.Messages, res.NextIntent)

	applyControllerResult(sess, res)
	sess.Messages = append(sess.Messages, domain.ChatMessage{Role: domain.RoleModel, Text: assistantText})

	if err := s.store.SaveSession(ctx, sess); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	return &StartResult{SessionID: sess.SessionID, Status: sess.Status, Messages: sess.Messages}, nil
}

// Turn processes one user message. It requires an in_progress session:
// a ready_to_submit session rejects with ErrAwaitingConfirm and a missing
// one with ErrNoActiveSession.
func (s *Service) Turn(ctx context.Context, teamID, text string) (*TurnResult, error) {
	unlock := s.lockTeam(teamID)
	defer unlock()

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyText
	}

	sess, err := s.store.FindActiveSession(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to find session: %w", err)
	}
	if sess == nil {
		return nil, ErrNoActiveSession
	}
	if sess.Status == domain.StatusReadyToSubmit {
		return nil, ErrAwaitingConfirm
	}

	sess.Messages = append(sess.Messages, domain.ChatMessage{Role: domain.RoleUser, Text: text})
	sess.CurrentIndex++

	pol, recent, err := s.sessionPolicy(ctx, sess, domain.EffectivePolicy{})
	if err != nil {
		return nil, err
	}

	res := s.controller.Step(ctx, sess, pol, recent)
	applyControllerResult(sess, res)

	var assistantText string
	if res.ReadyToSubmit {
		sess.Status = domain.StatusReadyToSubmit
		assistantText = closingMessage
	} else {
		assistantText = s.gw.RunInterviewer(ctx, sess.Messages, res.NextIntent)
	}
	sess.Messages = append(sess.Messages, domain.ChatMessage{Role: domain.RoleModel, Text: assistantText})

	if err := s.store.SaveSession(ctx, sess); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	return &TurnResult{AssistantText: assistantText, ReadyToSubmit: res.ReadyToSubmit, Status: sess.Status}, nil
}

// Confirm finalizes a ready_to_submit session: final summary, evaluation
// against the frozen profile, score and color, team status propagation.
func (s *Service) Confirm(ctx context.Context, teamID string) (string, error) {
	unlock := s.lockTeam(teamID)
	defer unlock()

	sess, err := s.store.FindActiveSession(ctx, teamID)
	if err != nil {
		return "", fmt.Errorf("failed to find session: %w", err)
	}
	if sess == nil || sess.Status != domain.StatusReadyToSubmit {
		return "", ErrNothingToConfirm
	}

	profile, err := s.resolver.ResolveProfile(ctx, sess.ProfileKey)
	if err != nil {
		return "", err
	}

	summary, err := s.gw.RunFinalSummary(ctx, sess.Answers, sess.RunningSummary)
	if err != nil {
		return "", fmt.Errorf("failed to produce final summary: %w", err)
	}

	eval := s.gw.RunEvaluation(ctx, summary, sess.Answers, domain.EffectivePolicy{
		ProfileKey:         profile.Key,
		Profile:            profile,
		WeeklyInstructions: sess.WeeklyInstructionsSnapshot,
	}.EvaluatorPolicy())

	score := scoring.ComputeScore(eval)
	color := scoring.ScoreToColor(score, profile.GreenMin, profile.RedMax)
	now := time.Now()

	reasons := eval.Reasons
	if len(reasons) > 5 {
		reasons = reasons[:5]
	}

	sess.RunningSummary = summary
	sess.ReflectionScore = &score
	sess.ReflectionColor = &color
	sess.ReflectionReasons = reasons
	sess.Status = domain.StatusSubmitted
	sess.SubmittedAt = &now

	if err := s.store.SaveSession(ctx, sess); err != nil {
		return "", fmt.Errorf("failed to save session: %w", err)
	}
	if err := s.store.UpdateTeamReflection(ctx, teamID, color, score, now); err != nil {
		return "", fmt.Errorf("failed to update team status: %w", err)
	}

	return sess.SessionID, nil
}

// Reset deletes any active session for the team. It is a successful
// no-op when none exists.
func (s *Service) Reset(ctx context.Context, teamID string) error {
	unlock := s.lockTeam(teamID)
	defer unlock()

	if err := s.store.DeleteActiveSessions(ctx, teamID); err != nil {
		return fmt.Errorf("failed to delete sessions: %w", err)
	}
	return nil
}

// sessionPolicy builds the frozen policy for a session, lazily
// backfilling missing legacy snapshots, and loads the recent submitted
// summaries used as background context. The effective policy may be
// passed in when the caller already resolved it.
func (s *Service) sessionPolicy(ctx context.Context, sess *domain.ReflectionSession, effective domain.EffectivePolicy) (domain.EffectivePolicy, []string, error) {
	if strings.TrimSpace(sess.ProfileKey) == "" {
		if effective.ProfileKey == "" {
			var err error
			effective, err = s.resolver.Effective(ctx)
			if err != nil {
				return domain.EffectivePolicy{}, nil, err
			}
		}
		sess.ProfileKey = effective.ProfileKey
		sess.WeeklyInstructionsSnapshot = effective.WeeklyInstructions
	}

	profile, err := s.resolver.ResolveProfile(ctx, sess.ProfileKey)
	if err != nil {
		return domain.EffectivePolicy{}, nil, err
	}

	recent, err := s.store.RecentSubmittedSummaries(ctx, sess.TeamID, time.Now().Add(-recentSummaryWindow), recentSummaryLimit)
	if err != nil {
		return domain.EffectivePolicy{}, nil, fmt.Errorf("failed to load recent summaries: %w", err)
	}

	return domain.EffectivePolicy{
		ProfileKey:         profile.Key,
		Profile:            profile,
		WeeklyInstructions: sess.WeeklyInstructionsSnapshot,
	}, recent, nil
}

func applyControllerResult(sess *domain.ReflectionSession, res domain.ControllerResult) {
	sess.RunningSummary = res.RunningSummary
	sess.Answers = res.Answers
	sess.ClarifyCount = res.ClarifyCount
	sess.CurrentIndex = res.TurnCount
}
