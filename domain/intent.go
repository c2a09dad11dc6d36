package domain

// NextIntent is the controller's instruction to the interviewer about
// what to ask next and how to phrase it.
type NextIntent struct {
	Kind      IntentKind `json:"kind"`
	TopicID   string     `json:"topicId,omitempty"`
	Anchor    string     `json:"anchor"`
	StyleNote string     `json:"styleNote,omitempty"`
	Questions []string   `json:"questions"` // length 0..2; empty only for wrap_up
}

// ControllerInput is the full conversation state sent to the controller
// prompt each turn.
type ControllerInput struct {
	Messages        []ChatMessage `json:"messages"`
	Answers         []Answer      `json:"answers"`
	RunningSummary  string        `json:"runningSummary"`
	ClarifyCount    int           `json:"clarifyCount"`
	TurnCount       int           `json:"turnCount"`
	MaxTurns        int           `json:"maxTurns"`
	RecentSummaries []string      `json:"recentSummaries"`
	Topics          []Topic       `json:"topics"`
	Policy          PolicyPayload `json:"policy"`
}

// ControllerResult is the controller's decision for one turn.
type ControllerResult struct {
	RunningSummary string     `json:"runningSummary"`
	Answers        []Answer   `json:"answers"`
	NextIntent     NextIntent `json:"nextIntent"`
	ReadyToSubmit  bool       `json:"readyToSubmit"`
	ClarifyCount   int        `json:"clarifyCount"`
	TurnCount      int        `json:"turnCount"`
}

// Evaluation is the evaluator's verdict on a completed reflection.
// All numeric fields are clamped to [0,10]; for Risk, higher is worse.
type Evaluation struct {
	Quality    float64  `json:"quality"`
	Risk       float64  `json:"risk"`
	Compliance float64  `json:"compliance"`
	Reasons    []string `json:"reasons"` // up to 5 short bullets
}
