// Package reflection implements the turn-based conversation controller
// for weekly team reflections.
package reflection

import (
	"strings"

	"github.com/teaminsight/reflection/domain"
)

const (
	minAnswerWords = 6
	minAnswerChars = 30

	// next_actions must list exactly three action items.
	requiredActionItems = 3
	minActionItemWords  = 3
	minActionItemChars  = 15
)

// genericAnswers is the fixed denylist of filler phrases. Matching is
// against the whole normalized answer, so a specific answer that merely
// contains a filler word is not penalized. Hebrew entries are kept from
// the original deployment alongside English equivalents.
var genericAnswers = []string{
	"it was good",
	"it was fine",
	"we made progress",
	"all good",
	"fine",
	"good",
	"ok",
	"okay",
	"i don't know",
	"i dont know",
	"dont know",
	"idk",
	"not sure",
	"nothing",
	"nothing special",
	"the usual",
	"same as always",
	"same as usual",
	"היה טוב",
	"התקדמנו",
	"סבבה",
	"לא יודע",
	"אין",
	"כזה",
	"רגיל",
}

// IsShort reports whether an answer is too short to be sufficient:
// fewer than 6 words or fewer than 30 characters.
func IsShort(s string) bool {
	trimmed := strings.TrimSpace(s)
	words := len(strings.Fields(trimmed))
	chars := len([]rune(trimmed))
	return words < minAnswerWords || chars < minAnswerChars
}

// IsGeneric reports whether the whole answer matches a filler phrase.
func IsGeneric(s string) bool {
	normalized := normalizeAnswer(s)
	if normalized == "" {
		return true
	}
	for _, g := range genericAnswers {
		if normalized == g {
			return true
		}
	}
	return false
}

// Insufficient reports whether an answer fails the anti-evasion bar.
func Insufficient(s string) bool {
	return IsShort(s) || IsGeneric(s)
}

// TopicCovered reports whether an answer meets the sufficiency bar for
// the given topic. Most topics require one concrete, specific instance;
// next_actions requires exactly three items, each naming an action, an
// owner and a target timeframe.
func TopicCovered(topicID, answer string) bool {
	if topicID == domain.TopicNextActions {
		items := SplitActionItems(answer)
		if len(items) != requiredActionItems {
			return false
		}
		for _, item := range items {
			if len(strings.Fields(item)) < minActionItemWords ||
				len([]rune(item)) < minActionItemChars ||
				IsGeneric(item) {
				return false
			}
		}
		return true
	}
	return !Insufficient(answer)
}

// CoverageComplete reports whether every one of the seven topics has a
// recorded answer meeting its sufficiency bar.
func CoverageComplete(answers []domain.Answer) bool {
	byTopic := make(map[string]string, len(answers))
	for _, a := range answers {
		byTopic[a.TopicID] = a.Answer
	}
	for _, topic := range domain.Topics() {
		answer, ok := byTopic[topic.ID]
		if !ok || !TopicCovered(topic.ID, answer) {
			return false
		}
	}
	return true
}

// SplitActionItems splits a next_actions answer into individual items.
// Items are newline-separated (bullets and numbering stripped); a
// single-line answer is split on semicolons.
func SplitActionItems(s string) []string {
	lines := strings.Split(s, "\n")
	if len(lines) == 1 {
		lines = strings.Split(s, ";")
	}

	items := make([]string, 0, len(lines))
	for _, line := range lines {
		item := strings.TrimSpace(line)
		item = strings.TrimLeft(item, "-*•")
		item = trimOrdinal(item)
		item = strings.TrimSpace(item)
		if item != "" {
			items = append(items, item)
		}
	}
	return items
}

// trimOrdinal strips a leading "1." or "1)" list marker.
func trimOrdinal(s string) string {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i > 0 && i < len(s) && (s[i] == '.' || s[i] == ')') {
		return s[i+1:]
	}
	return s
}

func normalizeAnswer(s string) string {
	normalized := strings.ToLower(strings.TrimSpace(s))
	normalized = strings.Trim(normalized, ".!?…")
	return strings.Join(strings.Fields(normalized), " ")
}
