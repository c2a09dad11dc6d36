package reflection

import (
	"context"
	"testing"

	"github.com/teaminsight/reflection/domain"
)

// scriptedGateway returns a fixed controller result, or the fallback
// when told to fail.
type scriptedGateway struct {
	result      domain.ControllerResult
	useFallback bool
	gotInput    domain.ControllerInput
}

func (g *scriptedGateway) RunController(_ context.Context, input domain.ControllerInput, fallback domain.ControllerResult) domain.ControllerResult {
	g.gotInput = input
	if g.useFallback {
		return fallback
	}
	return g.result
}

func newSession(messages []domain.ChatMessage, answers []domain.Answer) *domain.ReflectionSession {
	return &domain.ReflectionSession{
		SessionID: "sess_test",
		TeamID:    "team-1",
		Status:    domain.StatusInProgress,
		Messages:  messages,
		Answers:   answers,
	}
}

func testPolicy() domain.EffectivePolicy {
	return domain.EffectivePolicy{
		ProfileKey: "default",
		Profile:    domain.Profile{Key: "default", Title: "Default", GreenMin: 75, RedMax: 45},
	}
}

func TestStepDowngradesUnearnedReadiness(t *testing.T) {
	gw := &scriptedGateway{
		result: domain.ControllerResult{
			ReadyToSubmit: true,
			NextIntent: domain.NextIntent{
				Kind:      domain.IntentWrapUp,
				Questions: []string{},
			},
		},
	}
	c := NewController(gw, 16)

	sess := newSession(nil, nil) // nothing covered
	res := c.Step(context.Background(), sess, testPolicy(), nil)

	if res.ReadyToSubmit {
		t.Fatalf("readiness must not be granted with incomplete coverage")
	}
	if res.NextIntent.Kind == domain.IntentWrapUp {
		t.Fatalf("wrap_up intent must be replaced when readiness is downgraded")
	}
	if len(res.NextIntent.Questions) == 0 {
		t.Fatalf("downgraded intent must carry a question")
	}
}

func TestStepGrantsReadinessWithFullCoverage(t *testing.T) {
	answers := completeAnswerSet()
	gw := &scriptedGateway{
		result: domain.ControllerResult{
			Answers:       answers,
			ReadyToSubmit: true,
			NextIntent: domain.NextIntent{
				Kind:      domain.IntentWrapUp,
				Anchor:    "all done",
				Questions: []string{},
			},
		},
	}
	c := NewController(gw, 16)

	sess := newSession(nil, answers)
	res := c.Step(context.Background(), sess, testPolicy(), nil)

	if !res.ReadyToSubmit {
		t.Fatalf("expected readiness with full coverage")
	}
	if res.NextIntent.Kind != domain.IntentWrapUp {
		t.Fatalf("expected wrap_up intent, got %s", res.NextIntent.Kind)
	}
	if len(res.NextIntent.Questions) != 0 {
		t.Fatalf("wrap_up must carry no questions")
	}
}

func TestStepEscalatesOnEvasion(t *testing.T) {
	messages := []domain.ChatMessage{
		{Role: domain.RoleModel, Text: "What did you ship?"},
		{Role: domain.RoleUser, Text: "it was good"},
		{Role: domain.RoleModel, Text: "Can you be more specific?"},
		{Role: domain.RoleUser, Text: "fine"},
	}
	gw := &scriptedGateway{
		result: domain.ControllerResult{
			ReadyToSubmit: false,
			NextIntent: domain.NextIntent{
				Kind:      domain.IntentAdvanceTopic,
				TopicID:   domain.TopicAchievements,
				Questions: []string{"What did you ship?", "Anything else?"},
			},
		},
	}
	c := NewController(gw, 16)

	sess := newSession(messages, nil)
	sess.ClarifyCount = 1
	res := c.Step(context.Background(), sess, testPolicy(), nil)

	if res.NextIntent.Kind != domain.IntentClarifyCurrent {
		t.Fatalf("expected escalation to clarify_current, got %s", res.NextIntent.Kind)
	}
	if res.NextIntent.StyleNote != forcedChoiceNote {
		t.Fatalf("expected forced-choice style note, got %q", res.NextIntent.StyleNote)
	}
	if len(res.NextIntent.Questions) != 1 {
		t.Fatalf("escalation must compress to a single question, got %d", len(res.NextIntent.Questions))
	}
	if res.ClarifyCount != 2 {
		t.Fatalf("expected clarify count bump to 2, got %d", res.ClarifyCount)
	}
}

func TestStepNoEscalationAfterConcreteAnswer(t *testing.T) {
	messages := []domain.ChatMessage{
		{Role: domain.RoleModel, Text: "What did you ship?"},
		{Role: domain.RoleUser, Text: "it was good"},
		{Role: domain.RoleModel, Text: "Can you be more specific?"},
		{Role: domain.RoleUser, Text: "We merged the payments integration PR and demoed it on Thursday"},
	}
	gw := &scriptedGateway{
		result: domain.ControllerResult{
			NextIntent: domain.NextIntent{
				Kind:      domain.IntentAdvanceTopic,
				TopicID:   domain.TopicWins,
				Questions: []string{"What helped?"},
			},
		},
	}
	c := NewController(gw, 16)

	res := c.Step(context.Background(), newSession(messages, nil), testPolicy(), nil)

	if res.NextIntent.Kind != domain.IntentAdvanceTopic {
		t.Fatalf("no escalation expected after a concrete answer, got %s", res.NextIntent.Kind)
	}
}

func TestStepCompressesNearTurnBudget(t *testing.T) {
	gw := &scriptedGateway{
		result: domain.ControllerResult{
			NextIntent: domain.NextIntent{
				Kind:      domain.IntentAdvanceTopic,
				TopicID:   domain.TopicRisks,
				Questions: []string{"Any risks?"},
			},
			TurnCount: 14,
		},
	}
	c := NewController(gw, 16)

	sess := newSession(nil, nil)
	sess.CurrentIndex = 14
	res := c.Step(context.Background(), sess, testPolicy(), nil)

	if res.NextIntent.StyleNote == "" {
		t.Fatalf("expected a compression style note near the turn budget")
	}
}

func TestStepFallbackAsksFirstUncoveredTopic(t *testing.T) {
	gw := &scriptedGateway{useFallback: true}
	c := NewController(gw, 16)

	answers := []domain.Answer{
		{TopicID: domain.TopicAchievements, Prompt: "q", Answer: "We merged the payments integration PR and demoed it on Thursday"},
	}
	res := c.Step(context.Background(), newSession(nil, answers), testPolicy(), nil)

	if res.ReadyToSubmit {
		t.Fatalf("fallback must not be ready")
	}
	if res.NextIntent.TopicID != domain.TopicWins {
		t.Fatalf("fallback should target the first uncovered topic, got %s", res.NextIntent.TopicID)
	}
	if len(res.NextIntent.Questions) != 1 {
		t.Fatalf("fallback should ask exactly one question")
	}
}

func TestStepForwardsStateToModel(t *testing.T) {
	gw := &scriptedGateway{useFallback: true}
	c := NewController(gw, 16)

	sess := newSession([]domain.ChatMessage{{Role: domain.RoleUser, Text: "hello there"}}, nil)
	sess.CurrentIndex = 3
	sess.ClarifyCount = 1
	sess.RunningSummary = "so far so good"
	c.Step(context.Background(), sess, testPolicy(), []string{"last week"})

	in := gw.gotInput
	if in.TurnCount != 3 || in.ClarifyCount != 1 || in.MaxTurns != 16 {
		t.Fatalf("unexpected counters in controller input: %+v", in)
	}
	if in.RunningSummary != "so far so good" {
		t.Fatalf("running summary not forwarded")
	}
	if len(in.RecentSummaries) != 1 || in.RecentSummaries[0] != "last week" {
		t.Fatalf("recent summaries not forwarded: %v", in.RecentSummaries)
	}
	if len(in.Topics) != 7 {
		t.Fatalf("expected 7 topics in controller input, got %d", len(in.Topics))
	}
}

func TestMergeAnswersPriorAuthoritative(t *testing.T) {
	prior := []domain.Answer{
		{TopicID: domain.TopicAchievements, Prompt: "p1", Answer: "old achievements answer"},
		{TopicID: domain.TopicWins, Prompt: "p2", Answer: "old wins answer"},
	}
	next := []domain.Answer{
		{TopicID: domain.TopicWins, Prompt: "p2", Answer: "updated wins answer"},
		{TopicID: domain.TopicRisks, Prompt: "p3", Answer: "new risks answer"},
	}

	merged := MergeAnswers(prior, next)

	if len(merged) != 3 {
		t.Fatalf("expected 3 merged answers, got %d", len(merged))
	}
	if merged[0].Answer != "old achievements answer" {
		t.Fatalf("omitted topic must keep its prior answer")
	}
	if merged[1].Answer != "updated wins answer" {
		t.Fatalf("re-mentioned topic must take the new answer")
	}
	if merged[2].TopicID != domain.TopicRisks {
		t.Fatalf("new topic must be appended")
	}
}

func TestMergeAnswersIgnoresEmptyEntries(t *testing.T) {
	prior := []domain.Answer{{TopicID: domain.TopicWins, Prompt: "p", Answer: "kept"}}
	next := []domain.Answer{{TopicID: "", Answer: "x"}, {TopicID: domain.TopicWins, Answer: ""}}

	merged := MergeAnswers(prior, next)
	if len(merged) != 1 || merged[0].Answer != "kept" {
		t.Fatalf("empty entries must not modify state: %+v", merged)
	}
}
