package leaderboard

// BadgeTier is the presentational class of a leaderboard position.
type BadgeTier string

// Badge tiers.
const (
	BadgeGold    BadgeTier = "gold"
	BadgeSilver  BadgeTier = "silver"
	BadgeBronze  BadgeTier = "bronze"
	BadgeDefault BadgeTier = "default"
)

// Badge returns the tier for a final position.
func Badge(position int) BadgeTier {
	switch position {
	case 1:
		return BadgeGold
	case 2:
		return BadgeSilver
	case 3:
		return BadgeBronze
	default:
		return BadgeDefault
	}
}

// ScoreClass classifies a single race score for display.
type ScoreClass string

// Score classes.
const (
	ScoreNone     ScoreClass = "none"
	ScoreStandard ScoreClass = "standard"
	ScoreTop      ScoreClass = "top-score"
)
