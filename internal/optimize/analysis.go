package optimize

import (
	"github.com/tbessen/geoscan/internal/agents"
	"github.com/tbessen/geoscan/internal/ranking"
)

// Analysis compares one iteration's aggregate mention totals against
// the immediately preceding iteration (or the pre-optimization
// baseline for the first iteration).
type Analysis struct {
	CurrentTotalMentions   int     `json:"currentTotalMentions"`
	CurrentTargetMentions  int     `json:"currentTargetMentions"`
	PreviousTotalMentions  int     `json:"previousTotalMentions"`
	PreviousTargetMentions int     `json:"previousTargetMentions"`
	TotalMentionsChange    int     `json:"totalMentionsChange"`
	TargetMentionsChange   int     `json:"targetMentionsChange"`
	HitRateChange          float64 `json:"hitRateChange"`
	IsImproving            bool    `json:"isImproving"`
	CurrentHitRate         float64 `json:"currentHitRate"`
	PreviousHitRate        float64 `json:"previousHitRate"`
}

// analyze computes the iteration delta. The hit-rate delta is defined
// as 0 when there is no previous batch to compare against.
func analyze(current, previous []agents.Response, targetDomain string) Analysis {
	a := Analysis{
		CurrentTotalMentions:   ranking.TotalMentions(current),
		CurrentTargetMentions:  ranking.TargetMentions(current, targetDomain),
		PreviousTotalMentions:  ranking.TotalMentions(previous),
		PreviousTargetMentions: ranking.TargetMentions(previous, targetDomain),
	}

	a.TotalMentionsChange = a.CurrentTotalMentions - a.PreviousTotalMentions
	a.TargetMentionsChange = a.CurrentTargetMentions - a.PreviousTargetMentions
	a.IsImproving = a.TargetMentionsChange > 0

	if a.CurrentTotalMentions > 0 {
		a.CurrentHitRate = float64(a.CurrentTargetMentions) / float64(a.CurrentTotalMentions) * 100
	}
	if a.PreviousTotalMentions > 0 {
		a.PreviousHitRate = float64(a.PreviousTargetMentions) / float64(a.PreviousTotalMentions) * 100
		a.HitRateChange = a.CurrentHitRate - a.PreviousHitRate
	}

	return a
}
