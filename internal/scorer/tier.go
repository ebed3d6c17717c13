package scorer

// Score thresholds. Downstream UI coloring and forced-intervention gating
// depend on these exact values.
const (
	MaxScore = 100

	// ClearMax is the highest score still classified clear. Moderate
	// phrases are only evaluated while the running score is below it.
	ClearMax = 20

	// CloudedMax is the highest score still classified clouded. High-risk
	// phrases are only evaluated while the running score is below it, and
	// intervention is required above it.
	CloudedMax = 50
)

// Tier is the discrete bucket derived from a WBC score.
type Tier string

const (
	TierClear    Tier = "clear"
	TierClouded  Tier = "clouded"
	TierCritical Tier = "critical"
)

// TierFor maps a score to its tier.
func TierFor(score int) Tier {
	switch {
	case score > CloudedMax:
		return TierCritical
	case score > ClearMax:
		return TierClouded
	default:
		return TierClear
	}
}

// RequiresIntervention reports whether a score crosses the high threshold.
func RequiresIntervention(score int) bool {
	return score > CloudedMax
}

func clamp(score int) int {
	if score < 0 {
		return 0
	}
	if score > MaxScore {
		return MaxScore
	}
	return score
}
