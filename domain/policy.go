package domain

import "time"

// Profile is a named scoring/behavior configuration for reflections.
// A session snapshots the selected profile key at creation time; later
// edits never affect in-flight sessions.
type Profile struct {
	Key                string    `json:"key"`
	Title              string    `json:"title"`
	Description        string    `json:"description"`
	ControllerAddendum string    `json:"controllerAddendum"`
	EvaluatorAddendum  string    `json:"evaluatorAddendum"`
	GreenMin           int       `json:"greenMin"`
	RedMax             int       `json:"redMax"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// Settings is the global singleton reflection configuration edited by
// lecturers and read for new sessions only.
type Settings struct {
	SelectedProfileKey string    `json:"selectedProfileKey"`
	WeeklyInstructions string    `json:"weeklyInstructions"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// EffectivePolicy is the fully resolved policy for a session.
type EffectivePolicy struct {
	ProfileKey         string
	Profile            Profile
	WeeklyInstructions string
}

// ProfilePayload is the profile subset forwarded to the model.
type ProfilePayload struct {
	Key                string `json:"key"`
	Title              string `json:"title,omitempty"`
	ControllerAddendum string `json:"controllerAddendum,omitempty"`
	EvaluatorAddendum  string `json:"evaluatorAddendum,omitempty"`
}

// PolicyPayload is the policy object included in model prompts.
type PolicyPayload struct {
	Profile            ProfilePayload `json:"profile"`
	WeeklyInstructions string         `json:"weeklyInstructions"`
}

// ControllerPolicy builds the policy payload for the controller prompt.
func (p EffectivePolicy) ControllerPolicy() PolicyPayload {
	return PolicyPayload{
		Profile: ProfilePayload{
			Key:                p.Profile.Key,
			Title:              p.Profile.Title,
			ControllerAddendum: p.Profile.ControllerAddendum,
		},
		WeeklyInstructions: p.WeeklyInstructions,
	}
}

// EvaluatorPolicy builds the policy payload for the evaluation prompt.
func (p EffectivePolicy) EvaluatorPolicy() PolicyPayload {
	return PolicyPayload{
		Profile: ProfilePayload{
			Key:               p.Profile.Key,
			EvaluatorAddendum: p.Profile.EvaluatorAddendum,
		},
		WeeklyInstructions: p.WeeklyInstructions,
	}
}
