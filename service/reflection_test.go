package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teaminsight/reflection/domain"
	"github.com/teaminsight/reflection/policy"
	"github.com/teaminsight/reflection/service"
	"github.com/teaminsight/reflection/tests/helpers"
)

// fakeGateway scripts the model boundary for black-box service tests.
type fakeGateway struct {
	controllerResult *domain.ControllerResult // nil: echo the fallback
	interviewerText  string
	finalSummary     string
	finalSummaryErr  error
	evaluation       domain.Evaluation
}

func (f *fakeGateway) RunController(_ context.Context, _ domain.ControllerInput, fallback domain.ControllerResult) domain.ControllerResult {
	if f.controllerResult == nil {
		return fallback
	}
	return *f.controllerResult
}

func (f *fakeGateway) RunInterviewer(_ context.Context, _ []domain.ChatMessage, _ domain.NextIntent) string {
	if f.interviewerText == "" {
		return "Tell me more about that."
	}
	return f.interviewerText
}

func (f *fakeGateway) RunFinalSummary(_ context.Context, _ []domain.Answer, _ string) (string, error) {
	return f.finalSummary, f.finalSummaryErr
}

func (f *fakeGateway) RunEvaluation(_ context.Context, _ string, _ []domain.Answer, _ domain.PolicyPayload) domain.Evaluation {
	return f.evaluation
}

func newService(t *testing.T, gw *fakeGateway) *service.Service {
	t.Helper()
	st := helpers.NewTestSQLiteStore(t)
	resolver := policy.NewResolver(st)
	require.NoError(t, resolver.EnsureDefaults(context.Background()))
	return service.New(st, gw, resolver, 16)
}

func fullAnswerSet() []domain.Answer {
	return []domain.Answer{
		{TopicID: domain.TopicAchievements, Prompt: "q", Answer: "We merged the payments integration PR and demoed it on Thursday"},
		{TopicID: domain.TopicWins, Prompt: "q", Answer: "Daily syncs kept the frontend and backend pair aligned on the API contract"},
		{TopicID: domain.TopicPainPoints, Prompt: "q", Answer: "The upload feature was rebuilt twice because the task description was unclear"},
		{TopicID: domain.TopicBlockers, Prompt: "q", Answer: "Waiting on the cloud credits approval blocked the staging deploy, a dependency blocker"},
		{TopicID: domain.TopicDecisions, Prompt: "q", Answer: "We chose SQLite over Postgres to simplify grading, trading off concurrent writes"},
		{TopicID: domain.TopicRisks, Prompt: "q", Answer: "The demo environment may break before Monday, so we will freeze deploys on Friday"},
		{TopicID: domain.TopicNextActions, Prompt: "q", Answer: "- Finish the login page | Dana | Tuesday\n- Write upload API tests | Omer | Wednesday\n- Deploy the staging build | Noa | Friday"},
	}
}

func readyResult() *domain.ControllerResult {
	return &domain.ControllerResult{
		RunningSummary: "the team covered all topics",
		Answers:        fullAnswerSet(),
		ReadyToSubmit:  true,
		NextIntent: domain.NextIntent{
			Kind:      domain.IntentWrapUp,
			Anchor:    "That covers everything.",
			Questions: []string{},
		},
	}
}

func TestStartCreatesSession(t *testing.T) {
	svc := newService(t, &fakeGateway{interviewerText: "Hi! What did you ship this week?"})
	ctx := context.Background()

	res, err := svc.Start(ctx, "team-1")
	require.NoError(t, err)

	assert.NotEmpty(t, res.SessionID)
	assert.Equal(t, domain.StatusInProgress, res.Status)
	require.Len(t, res.Messages, 1)
	assert.Equal(t, domain.RoleModel, res.Messages[0].Role)
	assert.Equal(t, "Hi! What did you ship this week?", res.Messages[0].Text)
}

func TestStartIsIdempotent(t *testing.T) {
	svc := newService(t, &fakeGateway{})
	ctx := context.Background()

	first, err := svc.Start(ctx, "team-1")
	require.NoError(t, err)

	second, err := svc.Start(ctx, "team-1")
	require.NoError(t, err)

	assert.Equal(t, first.SessionID, second.SessionID)
	// Resuming must not generate a second opening message.
	assert.Len(t, second.Messages, 1)
}

func TestStartIsolatedPerTeam(t *testing.T) {
	svc := newService(t, &fakeGateway{})
	ctx := context.Background()

	a, err := svc.Start(ctx, "team-a")
	require.NoError(t, err)
	b, err := svc.Start(ctx, "team-b")
	require.NoError(t, err)

	assert.NotEqual(t, a.SessionID, b.SessionID)
}

func TestTurnRequiresActiveSession(t *testing.T) {
	svc := newService(t, &fakeGateway{})

	_, err := svc.Turn(context.Background(), "team-1", "we shipped the login page this week")
	assert.ErrorIs(t, err, service.ErrNoActiveSession)
}

func TestTurnRejectsEmptyText(t *testing.T) {
	svc := newService(t, &fakeGateway{})
	ctx := context.Background()

	_, err := svc.Start(ctx, "team-1")
	require.NoError(t, err)

	_, err = svc.Turn(ctx, "team-1", "   \n ")
	assert.ErrorIs(t, err, service.ErrEmptyText)
}

func TestTurnContinuesConversation(t *testing.T) {
	svc := newService(t, &fakeGateway{interviewerText: "What helped the team this week?"})
	ctx := context.Background()

	_, err := svc.Start(ctx, "team-1")
	require.NoError(t, err)

	res, err := svc.Turn(ctx, "team-1", "we merged the payments integration and demoed it")
	require.NoError(t, err)

	assert.False(t, res.ReadyToSubmit)
	assert.Equal(t, domain.StatusInProgress, res.Status)
	assert.Equal(t, "What helped the team this week?", res.AssistantText)
}

func TestTurnTransitionsToReady(t *testing.T) {
	gw := &fakeGateway{}
	svc := newService(t, gw)
	ctx := context.Background()

	_, err := svc.Start(ctx, "team-1")
	require.NoError(t, err)

	gw.controllerResult = readyResult()
	res, err := svc.Turn(ctx, "team-1", "and those are our three actions for next week")
	require.NoError(t, err)

	assert.True(t, res.ReadyToSubmit)
	assert.Equal(t, domain.StatusReadyToSubmit, res.Status)
	// The closing message is fixed text, not a model call.
	assert.Contains(t, res.AssistantText, "submit")

	// Further turns are rejected until confirm or reset.
	_, err = svc.Turn(ctx, "team-1", "one more thing")
	assert.ErrorIs(t, err, service.ErrAwaitingConfirm)
}

func TestConfirmRequiresReadySession(t *testing.T) {
	svc := newService(t, &fakeGateway{})
	ctx := context.Background()

	_, err := svc.Confirm(ctx, "team-1")
	assert.ErrorIs(t, err, service.ErrNothingToConfirm)

	// An in_progress session is not confirmable either.
	_, err = svc.Start(ctx, "team-1")
	require.NoError(t, err)
	_, err = svc.Confirm(ctx, "team-1")
	assert.ErrorIs(t, err, service.ErrNothingToConfirm)
}

func TestConfirmSubmitsSession(t *testing.T) {
	gw := &fakeGateway{
		finalSummary: "The team shipped the login page and froze deploys before the demo.",
		evaluation: domain.Evaluation{
			Quality: 8, Risk: 3, Compliance: 6,
			Reasons: []string{"clear deliverables", "owners named"},
		},
	}
	svc := newService(t, gw)
	ctx := context.Background()

	startRes, err := svc.Start(ctx, "team-1")
	require.NoError(t, err)

	gw.controllerResult = readyResult()
	_, err = svc.Turn(ctx, "team-1", "and those are our three actions for next week")
	require.NoError(t, err)

	sessionID, err := svc.Confirm(ctx, "team-1")
	require.NoError(t, err)
	assert.Equal(t, startRes.SessionID, sessionID)

	// The session is no longer active and cannot be confirmed twice.
	_, err = svc.Confirm(ctx, "team-1")
	assert.ErrorIs(t, err, service.ErrNothingToConfirm)

	// A new start opens a fresh session.
	next, err := svc.Start(ctx, "team-1")
	require.NoError(t, err)
	assert.NotEqual(t, sessionID, next.SessionID)
}

func TestConfirmSurfacesSummaryFailure(t *testing.T) {
	gw := &fakeGateway{finalSummaryErr: errors.New("upstream down")}
	svc := newService(t, gw)
	ctx := context.Background()

	_, err := svc.Start(ctx, "team-1")
	require.NoError(t, err)

	gw.controllerResult = readyResult()
	_, err = svc.Turn(ctx, "team-1", "and those are our three actions for next week")
	require.NoError(t, err)

	_, err = svc.Confirm(ctx, "team-1")
	require.Error(t, err)

	// The session stays ready so confirm can be retried.
	gw.finalSummaryErr = nil
	gw.finalSummary = "recovered summary"
	_, err = svc.Confirm(ctx, "team-1")
	require.NoError(t, err)
}

func TestReset(t *testing.T) {
	svc := newService(t, &fakeGateway{})
	ctx := context.Background()

	// Reset with nothing active is a successful no-op.
	require.NoError(t, svc.Reset(ctx, "team-1"))

	_, err := svc.Start(ctx, "team-1")
	require.NoError(t, err)
	require.NoError(t, svc.Reset(ctx, "team-1"))

	_, err = svc.Turn(ctx, "team-1", "we shipped the login page this week")
	assert.ErrorIs(t, err, service.ErrNoActiveSession)
}

func TestSettings(t *testing.T) {
	svc := newService(t, &fakeGateway{})
	ctx := context.Background()

	settings, err := svc.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, "default", settings.SelectedProfileKey)

	require.NoError(t, svc.UpdateSettings(ctx, "strict", "ask about the sprint demo"))
	settings, err = svc.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, "strict", settings.SelectedProfileKey)
	assert.Equal(t, "ask about the sprint demo", settings.WeeklyInstructions)

	err = svc.UpdateSettings(ctx, "no_such_profile", "")
	assert.ErrorIs(t, err, service.ErrUnknownProfile)

	profiles, err := svc.ListProfiles(ctx)
	require.NoError(t, err)
	assert.Len(t, profiles, 3)
}

func TestSettingsChangeDoesNotAffectActiveSession(t *testing.T) {
	gw := &fakeGateway{
		finalSummary: "summary",
		evaluation:   domain.Evaluation{Quality: 5, Risk: 5, Compliance: 5, Reasons: []string{"r"}},
	}
	svc := newService(t, gw)
	ctx := context.Background()

	_, err := svc.Start(ctx, "team-1")
	require.NoError(t, err)

	// Switching profiles mid-session leaves the frozen snapshot in place.
	require.NoError(t, svc.UpdateSettings(ctx, "strict", ""))

	gw.controllerResult = readyResult()
	_, err = svc.Turn(ctx, "team-1", "and those are our three actions for next week")
	require.NoError(t, err)

	_, err = svc.Confirm(ctx, "team-1")
	require.NoError(t, err)
}
