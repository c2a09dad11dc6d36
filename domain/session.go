package domain

import "time"

// ChatMessage is a single message in the reflection conversation.
type ChatMessage struct {
	Role string `json:"role"` // user, model
	Text string `json:"text"`
}

// Answer is the most current extracted answer for one topic.
type Answer struct {
	TopicID string `json:"topicId"`
	Prompt  string `json:"prompt"`
	Answer  string `json:"answer"`
}

// ReflectionSession is one attempt by a team to complete a weekly reflection.
// Messages are append-only and chronological. RunningSummary is internal
// state and is never shown to the team.
type ReflectionSession struct {
	SessionID string        `json:"session_id"`
	TeamID    string        `json:"team_id"`
	Status    SessionStatus `json:"status"`

	CurrentIndex int `json:"current_index"` // user turns processed
	ClarifyCount int `json:"clarify_count"`

	Messages []ChatMessage `json:"messages"`
	Answers  []Answer      `json:"answers"`

	RunningSummary string `json:"running_summary,omitempty"`

	// Policy snapshot, frozen at session creation.
	ProfileKey                 string `json:"profile_key"`
	WeeklyInstructionsSnapshot string `json:"weekly_instructions_snapshot,omitempty"`

	// Evaluation result, populated at confirm time only.
	ReflectionScore   *int       `json:"reflection_score,omitempty"`
	ReflectionColor   *Color     `json:"reflection_color,omitempty"`
	ReflectionReasons []string   `json:"reflection_reasons,omitempty"`
	SubmittedAt       *time.Time `json:"submitted_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AnswerFor returns the recorded answer for a topic, or nil.
func (s *ReflectionSession) AnswerFor(topicID string) *Answer {
	for i := range s.Answers {
		if s.Answers[i].TopicID == topicID {
			return &s.Answers[i]
		}
	}
	return nil
}
