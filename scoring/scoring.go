// Package scoring converts evaluator output into a 0-100 score and a
// tri-color classification. The formula and thresholds are a fixed
// contract shared with the lecturer dashboard.
package scoring

import (
	"math"

	"github.com/teaminsight/reflection/domain"
)

// ComputeScore maps an evaluation to a 0-100 score:
// round(clamp(0,100, (quality*0.45 + (10-risk)*0.40 + compliance*0.15) * 10)).
func ComputeScore(e domain.Evaluation) int {
	raw := (e.Quality*0.45 + (10-e.Risk)*0.40 + e.Compliance*0.15) * 10
	clamped := math.Max(0, math.Min(100, raw))
	return int(math.Round(clamped))
}

// ScoreToColor classifies a score against profile thresholds:
// score >= greenMin is green, score <= redMax is red, otherwise yellow.
func ScoreToColor(score, greenMin, redMax int) domain.Color {
	if score >= greenMin {
		return domain.ColorGreen
	}
	if score <= redMax {
		return domain.ColorRed
	}
	return domain.ColorYellow
}
