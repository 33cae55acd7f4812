package services

// Point values awarded by CalculatePoints.
const (
	PointsExactScore     = 5
	PointsGoalDifference = 3
	PointsCorrectWinner  = 1
	PointsMiss           = 0
)

const (
	MinScore = 0
	MaxScore = 50
)

// Outcome is the winner class of a scoreline.
type Outcome int

const (
	OutcomeDraw Outcome = iota
	OutcomeHomeWin
	OutcomeAwayWin
)

// MatchOutcome classifies a scoreline by the sign of its goal difference.
func MatchOutcome(home, away int) Outcome {
	switch diff := home - away; {
	case diff > 0:
		return OutcomeHomeWin
	case diff < 0:
		return OutcomeAwayWin
	default:
		return OutcomeDraw
	}
}

// CalculatePoints scores a predicted scoreline against the actual one.
//
//   - exact score: 5
//   - correct winner and same goal difference: 3 (any drawn prediction of a drawn match lands here)
//   - correct winner only: 1
//   - otherwise: 0
func CalculatePoints(predictedHome, predictedAway, actualHome, actualAway int) int {
	if predictedHome == actualHome && predictedAway == actualAway {
		return PointsExactScore
	}

	predictedDiff := predictedHome - predictedAway
	actualDiff := actualHome - actualAway
	sameWinner := MatchOutcome(predictedHome, predictedAway) == MatchOutcome(actualHome, actualAway)

	if sameWinner && abs(predictedDiff) == abs(actualDiff) {
		return PointsGoalDifference
	}
	if sameWinner {
		return PointsCorrectWinner
	}
	return PointsMiss
}

// IsValidScore reports whether n is an acceptable goal count.
func IsValidScore(n int) bool {
	return n >= MinScore && n <= MaxScore
}

func validateScores(home, away int) error {
	if !IsValidScore(home) || !IsValidScore(away) {
		return ErrInvalidScore
	}
	return nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
