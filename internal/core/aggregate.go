package core

import (
	"math"
)

// Aggregate combines per-source findings into one verdict. The overall score
// is the rounded unweighted mean; with no findings the result carries the
// NoEvidence marker instead of a genuine low-risk verdict.
func Aggregate(findings []RiskFinding) AggregateRisk {
	present := make(map[Source]bool, len(findings))
	kept := make([]RiskFinding, 0, len(findings))
	for _, f := range findings {
		kept = append(kept, f)
		present[f.Source] = true
	}

	var missing []Source
	for _, s := range AllSources {
		if !present[s] {
			missing = append(missing, s)
		}
	}

	if len(kept) == 0 {
		return AggregateRisk{
			OverallScore:   0,
			OverallLevel:   LevelLow,
			NoEvidence:     true,
			Findings:       kept,
			MissingSources: missing,
		}
	}

	total := 0
	for _, f := range kept {
		total += clampScore(f.Score)
	}
	score := int(math.Round(float64(total) / float64(len(kept))))

	return AggregateRisk{
		OverallScore:   score,
		OverallLevel:   LevelForScore(score),
		Findings:       kept,
		MissingSources: missing,
	}
}

func clampScore(score int) int {
	switch {
	case score < 0:
		return 0
	case score > 100:
		return 100
	default:
		return score
	}
}
