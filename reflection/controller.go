package reflection

import (
	"context"
	"fmt"
	"log"

	"github.com/teaminsight/reflection/domain"
)

// turnsBeforeCompression is how many turns before the budget runs out the
// controller starts compressing remaining topics.
const turnsBeforeCompression = 3

const forcedChoiceNote = "forced choice: offer 2-3 concrete options to pick from, then ask for one concrete example"

// ControllerGateway is the model call the controller depends on.
type ControllerGateway interface {
	RunController(ctx context.Context, input domain.ControllerInput, fallback domain.ControllerResult) domain.ControllerResult
}

// Controller decides per turn whether to clarify, advance topic or wrap
// up. The model proposes; the controller is the sole authority on
// readiness and on the anti-evasion escalation.
type Controller struct {
	gw       ControllerGateway
	maxTurns int
}

// NewController creates a controller with a fixed maximum turn budget.
func NewController(gw ControllerGateway, maxTurns int) *Controller {
	return &Controller{gw: gw, maxTurns: maxTurns}
}

// Step runs one controller turn over the session state and returns the
// decision for the next interviewer message. The session itself is not
// mutated.
func (c *Controller) Step(ctx context.Context, sess *domain.ReflectionSession, pol domain.EffectivePolicy, recentSummaries []string) domain.ControllerResult {
	input := domain.ControllerInput{
		Messages:        sess.Messages,
		Answers:         sess.Answers,
		RunningSummary:  sess.RunningSummary,
		ClarifyCount:    sess.ClarifyCount,
		TurnCount:       sess.CurrentIndex,
		MaxTurns:        c.maxTurns,
		RecentSummaries: recentSummaries,
		Topics:          domain.Topics(),
		Policy:          pol.ControllerPolicy(),
	}

	fallback := c.fallbackResult(sess)
	res := c.gw.RunController(ctx, input, fallback)

	res.Answers = MergeAnswers(sess.Answers, res.Answers)

	// Readiness is granted only when every topic meets its bar,
	// regardless of what the model claims.
	if res.ReadyToSubmit && !CoverageComplete(res.Answers) {
		log.Printf("WARN: controller claimed readiness with incomplete coverage, downgrading")
		res.ReadyToSubmit = false
		if res.NextIntent.Kind == domain.IntentWrapUp {
			res.NextIntent = fallback.NextIntent
		}
	}

	if res.ReadyToSubmit {
		res.NextIntent = domain.NextIntent{
			Kind:      domain.IntentWrapUp,
			Anchor:    res.NextIntent.Anchor,
			Questions: []string{},
		}
	} else {
		if c.evasionDetected(sess.Messages) && res.NextIntent.Kind != domain.IntentClarifyCurrent {
			res.NextIntent.Kind = domain.IntentClarifyCurrent
			res.NextIntent.StyleNote = forcedChoiceNote
			if len(res.NextIntent.Questions) > 1 {
				res.NextIntent.Questions = res.NextIntent.Questions[:1]
			}
			if res.ClarifyCount <= sess.ClarifyCount {
				res.ClarifyCount = sess.ClarifyCount + 1
			}
		}
		if c.maxTurns-sess.CurrentIndex <= turnsBeforeCompression {
			res.NextIntent.StyleNote = appendNote(res.NextIntent.StyleNote,
				"compress: combine remaining topics, move toward wrap-up")
		}
	}

	// Counters never move backwards.
	if res.TurnCount < sess.CurrentIndex {
		res.TurnCount = sess.CurrentIndex
	}
	if res.ClarifyCount < sess.ClarifyCount {
		res.ClarifyCount = sess.ClarifyCount
	}

	return res
}

// fallbackResult is the deterministic result used when the model output
// is malformed or the backend is unreachable: carry state forward and ask
// about the first topic that is not yet covered.
func (c *Controller) fallbackResult(sess *domain.ReflectionSession) domain.ControllerResult {
	res := domain.ControllerResult{
		RunningSummary: sess.RunningSummary,
		Answers:        sess.Answers,
		ReadyToSubmit:  false,
		ClarifyCount:   sess.ClarifyCount,
		TurnCount:      sess.CurrentIndex,
	}

	topic, hasAnswer := firstUncoveredTopic(sess.Answers)
	if topic == nil {
		// Every topic already meets its bar.
		res.ReadyToSubmit = true
		res.NextIntent = domain.NextIntent{
			Kind:      domain.IntentWrapUp,
			Anchor:    "Sounds like we covered everything for this week.",
			Questions: []string{},
		}
		return res
	}

	kind := domain.IntentAdvanceTopic
	if hasAnswer {
		kind = domain.IntentClarifyCurrent
	}
	res.NextIntent = domain.NextIntent{
		Kind:      kind,
		TopicID:   topic.ID,
		Anchor:    fmt.Sprintf("Let's talk about %s.", lowerFirst(topic.Title)),
		StyleNote: "short open question",
		Questions: []string{openingQuestions[topic.ID]},
	}
	return res
}

// evasionDetected reports whether the two most recent user answers both
// added no concrete information.
func (c *Controller) evasionDetected(messages []domain.ChatMessage) bool {
	var lastTwo []string
	for i := len(messages) - 1; i >= 0 && len(lastTwo) < 2; i-- {
		if messages[i].Role == domain.RoleUser {
			lastTwo = append(lastTwo, messages[i].Text)
		}
	}
	if len(lastTwo) < 2 {
		return false
	}
	return Insufficient(lastTwo[0]) && Insufficient(lastTwo[1])
}

// MergeAnswers folds a controller response into the prior answer list.
// Prior answers are authoritative: a response entry overwrites its topic
// or appends a new one, and omission never retracts a recorded answer.
func MergeAnswers(prior, next []domain.Answer) []domain.Answer {
	merged := make([]domain.Answer, len(prior))
	copy(merged, prior)

	index := make(map[string]int, len(merged))
	for i, a := range merged {
		index[a.TopicID] = i
	}

	seen := 0
	for _, a := range next {
		if a.TopicID == "" || a.Answer == "" {
			continue
		}
		if i, ok := index[a.TopicID]; ok {
			merged[i] = a
			seen++
		} else {
			index[a.TopicID] = len(merged)
			merged = append(merged, a)
		}
	}

	if dropped := len(prior) - seen; dropped > 0 && len(next) > 0 {
		log.Printf("WARN: controller response dropped %d previously recorded answers, keeping prior state", dropped)
	}
	return merged
}

func firstUncoveredTopic(answers []domain.Answer) (topic *domain.Topic, hasAnswer bool) {
	byTopic := make(map[string]string, len(answers))
	for _, a := range answers {
		byTopic[a.TopicID] = a.Answer
	}
	for _, t := range domain.Topics() {
		answer, ok := byTopic[t.ID]
		if !ok || !TopicCovered(t.ID, answer) {
			found := t
			return &found, ok
		}
	}
	return nil, false
}

var openingQuestions = map[string]string{
	domain.TopicAchievements: "What is the most significant deliverable you completed this week?",
	domain.TopicWins:         "What is one thing that clearly helped the team succeed this week?",
	domain.TopicPainPoints:   "What is one concrete thing that did not work well this week?",
	domain.TopicBlockers:     "What blocked your progress, and what kind of blocker was it?",
	domain.TopicDecisions:    "What important decision did the team make, and why?",
	domain.TopicRisks:        "What could go wrong next week, and how would you mitigate it?",
	domain.TopicNextActions:  "What are the 3 concrete actions for next week, with an owner and a target for each?",
}

func appendNote(existing, note string) string {
	if existing == "" {
		return note
	}
	return existing + "; " + note
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	if r[0] >= 'A' && r[0] <= 'Z' {
		r[0] = r[0] - 'A' + 'a'
	}
	return string(r)
}
