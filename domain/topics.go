package domain

// Topic is one of the seven fixed reflection dimensions.
type Topic struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Guidance string `json:"guidance"`
}

// Topic ids, in interview order.
const (
	TopicAchievements = "achievements"
	TopicWins         = "wins"
	TopicPainPoints   = "pain_points"
	TopicBlockers     = "blockers"
	TopicDecisions    = "decisions"
	TopicRisks        = "risks"
	TopicNextActions  = "next_actions"
)

var topics = []Topic{
	{
		ID:       TopicAchievements,
		Title:    "Achievements and deliverables",
		Guidance: "Concrete deliverables: feature/PR/demo/fix/deploy. Include what was built and evidence.",
	},
	{
		ID:       TopicWins,
		Title:    "What worked well",
		Guidance: "What helped you succeed? Practices, communication, planning. Give one concrete example.",
	},
	{
		ID:       TopicPainPoints,
		Title:    "What did not work",
		Guidance: "What went poorly? Misalignment, rework, unclear tasks, bugs. Give one concrete example.",
	},
	{
		ID:       TopicBlockers,
		Title:    "Blockers",
		Guidance: "What blocked progress? Technical, dependencies, communication, time. Include type and impact.",
	},
	{
		ID:       TopicDecisions,
		Title:    "Key decisions",
		Guidance: "Key decision made and why. One decision is enough if concrete.",
	},
	{
		ID:       TopicRisks,
		Title:    "Risks for next week",
		Guidance: "What might fail next week? Add one mitigation idea.",
	},
	{
		ID:       TopicNextActions,
		Title:    "Actions for next week",
		Guidance: "Exactly 3 concrete actions: what + owner + target (date/week).",
	},
}

// Topics returns the seven fixed reflection topics in interview order.
func Topics() []Topic {
	out := make([]Topic, len(topics))
	copy(out, topics)
	return out
}
