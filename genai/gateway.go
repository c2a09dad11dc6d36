package genai

import (
	"context"
	"encoding/json"
	"log"
	"math"
	"strings"

	"github.com/kaptinlin/jsonrepair"

	"github.com/teaminsight/reflection/domain"
)

// genericContinuation replaces empty or failed interviewer output so the
// conversation never stalls on a bad model response.
const genericContinuation = "Got it. Can you share a bit more detail?"

const neutralEvalReason = "Could not analyze the reflection reliably; a neutral default classification was applied."

// Generator is the single-operation boundary to the generative backend.
type Generator interface {
	Generate(ctx context.Context, systemPrompt, payload string) (string, error)
}

// Gateway exposes the four reflection prompt operations. The backend is
// untrusted for structure: every consumer of its output is a validating
// parser with a deterministic fallback.
type Gateway struct {
	gen Generator
}

// NewGateway creates a gateway over the given generator.
func NewGateway(gen Generator) *Gateway {
	return &Gateway{gen: gen}
}

// RunController runs one controller turn. Transport failures and
// malformed output both resolve to the supplied fallback.
func (g *Gateway) RunController(ctx context.Context, input domain.ControllerInput, fallback domain.ControllerResult) domain.ControllerResult {
	payload, err := json.Marshal(input)
	if err != nil {
		log.Printf("WARN: failed to marshal controller input: %v", err)
		return fallback
	}

	raw, err := g.gen.Generate(ctx, controllerPrompt, string(payload))
	if err != nil {
		log.Printf("WARN: controller call failed, using fallback: %v", err)
		return fallback
	}

	return ParseControllerResult(raw, fallback)
}

// RunInterviewer produces the user-facing message for the next intent.
func (g *Gateway) RunInterviewer(ctx context.Context, messages []domain.ChatMessage, intent domain.NextIntent) string {
	payload, err := json.Marshal(map[string]interface{}{
		"messages":   messages,
		"nextIntent": intent,
	})
	if err != nil {
		log.Printf("WARN: failed to marshal interviewer input: %v", err)
		return genericContinuation
	}

	raw, err := g.gen.Generate(ctx, interviewerPrompt, string(payload))
	if err != nil {
		log.Printf("WARN: interviewer call failed, using generic continuation: %v", err)
		return genericContinuation
	}

	text := strings.TrimSpace(raw)
	if text == "" {
		return genericContinuation
	}
	return text
}

// RunFinalSummary produces the internal final write-up used for scoring.
// There is no meaningful fallback for it, so backend failures propagate.
func (g *Gateway) RunFinalSummary(ctx context.Context, answers []domain.Answer, runningSummary string) (string, error) {
	payload, err := json.Marshal(map[string]interface{}{
		"answers":        answers,
		"runningSummary": runningSummary,
	})
	if err != nil {
		return "", err
	}

	raw, err := g.gen.Generate(ctx, finalSummaryPrompt, string(payload))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(raw), nil
}

// RunEvaluation scores the completed reflection. Any failure resolves to
// the fixed neutral evaluation.
func (g *Gateway) RunEvaluation(ctx context.Context, summary string, answers []domain.Answer, policy domain.PolicyPayload) domain.Evaluation {
	payload, err := json.Marshal(map[string]interface{}{
		"summary": summary,
		"answers": answers,
		"policy":  policy,
	})
	if err != nil {
		log.Printf("WARN: failed to marshal evaluation input: %v", err)
		return neutralEvaluation()
	}

	raw, err := g.gen.Generate(ctx, evaluationPrompt, string(payload))
	if err != nil {
		log.Printf("WARN: evaluation call failed, using neutral fallback: %v", err)
		return neutralEvaluation()
	}

	return ParseEvaluation(raw)
}

func neutralEvaluation() domain.Evaluation {
	return domain.Evaluation{
		Quality:    5,
		Risk:       5,
		Compliance: 5,
		Reasons:    []string{neutralEvalReason},
	}
}

// controllerPayload is the loose shape of the controller response; every
// field is revalidated before use.
type controllerPayload struct {
	RunningSummary interface{}    `json:"runningSummary"`
	Answers        []domain.Answer `json:"answers"`
	TurnCount      interface{}    `json:"turnCount"`
	ClarifyCount   interface{}    `json:"clarifyCount"`
	ReadyToSubmit  interface{}    `json:"readyToSubmit"`
	NextIntent     *struct {
		Kind      string        `json:"kind"`
		TopicID   interface{}   `json:"topicId"`
		Anchor    interface{}   `json:"anchor"`
		StyleNote interface{}   `json:"styleNote"`
		Questions []interface{} `json:"questions"`
	} `json:"nextIntent"`
}

// ParseControllerResult validates raw controller output against the
// ControllerResult schema. Structural failures return the supplied
// fallback unchanged:
//   - unparseable JSON or missing nextIntent
//   - unknown intent kind or non-boolean readyToSubmit
//   - empty questions with any kind other than a ready wrap_up
//   - non-empty questions on a wrap_up
func ParseControllerResult(raw string, fallback domain.ControllerResult) domain.ControllerResult {
	cleaned := stripCodeFences(raw)

	var p controllerPayload
	if err := json.Unmarshal([]byte(cleaned), &p); err != nil {
		repaired, repairErr := jsonrepair.JSONRepair(cleaned)
		if repairErr != nil {
			return fallback
		}
		if err := json.Unmarshal([]byte(repaired), &p); err != nil {
			return fallback
		}
	}

	if p.NextIntent == nil {
		return fallback
	}

	kind := domain.IntentKind(p.NextIntent.Kind)
	if !kind.Valid() {
		return fallback
	}

	ready, ok := p.ReadyToSubmit.(bool)
	if !ok {
		return fallback
	}

	questions := make([]string, 0, 2)
	for _, q := range p.NextIntent.Questions {
		s, ok := q.(string)
		if !ok {
			continue
		}
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		questions = append(questions, s)
		if len(questions) == 2 {
			break
		}
	}

	// Empty questions are legal only for a ready wrap_up; a wrap_up must
	// not carry questions.
	if kind == domain.IntentWrapUp {
		if !ready || len(questions) != 0 {
			return fallback
		}
	} else if len(questions) == 0 {
		return fallback
	}

	result := domain.ControllerResult{
		RunningSummary: stringOr(p.RunningSummary, fallback.RunningSummary),
		Answers:        fallback.Answers,
		ReadyToSubmit:  ready,
		ClarifyCount:   intOr(p.ClarifyCount, fallback.ClarifyCount),
		TurnCount:      intOr(p.TurnCount, fallback.TurnCount),
		NextIntent: domain.NextIntent{
			Kind:      kind,
			TopicID:   stringOr(p.NextIntent.TopicID, ""),
			Anchor:    stringOr(p.NextIntent.Anchor, fallback.NextIntent.Anchor),
			StyleNote: stringOr(p.NextIntent.StyleNote, ""),
			Questions: questions,
		},
	}
	if p.Answers != nil {
		result.Answers = p.Answers
	}
	return result
}

type evaluationPayload struct {
	Quality    interface{}   `json:"quality"`
	Risk       interface{}   `json:"risk"`
	Compliance interface{}   `json:"compliance"`
	Reasons    []interface{} `json:"reasons"`
}

// ParseEvaluation validates raw evaluator output. Numeric fields are
// clamped to [0,10]; parse failure yields the fixed neutral evaluation.
func ParseEvaluation(raw string) domain.Evaluation {
	cleaned := stripCodeFences(raw)

	var p evaluationPayload
	if err := json.Unmarshal([]byte(cleaned), &p); err != nil {
		repaired, repairErr := jsonrepair.JSONRepair(cleaned)
		if repairErr != nil {
			return neutralEvaluation()
		}
		if err := json.Unmarshal([]byte(repaired), &p); err != nil {
			return neutralEvaluation()
		}
	}

	reasons := make([]string, 0, 5)
	for _, r := range p.Reasons {
		s, ok := r.(string)
		if !ok {
			continue
		}
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		reasons = append(reasons, s)
		if len(reasons) == 5 {
			break
		}
	}
	if len(reasons) == 0 {
		reasons = []string{"No detailed reasons were produced; a basic analysis was applied."}
	}

	return domain.Evaluation{
		Quality:    clamp0to10(p.Quality),
		Risk:       clamp0to10(p.Risk),
		Compliance: clamp0to10(p.Compliance),
		Reasons:    reasons,
	}
}

func clamp0to10(v interface{}) float64 {
	n, ok := v.(float64)
	if !ok || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0
	}
	return math.Max(0, math.Min(10, n))
}

func stringOr(v interface{}, def string) string {
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	return def
}

func intOr(v interface{}, def int) int {
	if n, ok := v.(float64); ok && !math.IsNaN(n) && !math.IsInf(n, 0) {
		return int(n)
	}
	return def
}

// stripCodeFences removes a surrounding markdown code fence, which some
// models emit despite the JSON-only instruction.
func stripCodeFences(s string) string {
	t := strings.TrimSpace(s)
	if !strings.HasPrefix(t, "```") {
		return t
	}
	t = strings.TrimPrefix(t, "```")
	if idx := strings.Index(t, "\n"); idx >= 0 {
		t = t[idx+1:]
	} else {
		// Opening fence with no body
		t = strings.TrimLeft(t, "json")
	}
	t = strings.TrimSuffix(strings.TrimSpace(t), "```")
	return strings.TrimSpace(t)
}
