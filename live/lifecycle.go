package live

import "github.com/yerassyl04/rhythm-duel/models"

// Outcome is what the lifecycle decision looks at after a resolved turn.
type Outcome struct {
	HealthA        int
	HealthB        int
	SongsRemaining int
}

// NextStatus maps a resolved turn to the next match status. The decision
// order is fixed: double elimination before single elimination, and
// elimination before the songs-remaining check, so eliminating a side on the
// last song is a win rather than a tiebreaker.
func NextStatus(o Outcome) models.MatchStatus {
	switch {
	case o.HealthA <= 0 && o.HealthB <= 0:
		return models.StatusDrawPending
	case o.HealthB <= 0:
		return models.StatusSideAWins
	case o.HealthA <= 0:
		return models.StatusSideBWins
	case o.SongsRemaining > 0:
		return models.StatusRoundFinished
	default:
		return models.StatusTiebreakerPending
	}
}

// WinnerFor returns the side recorded as winner for a terminal status, or
// nil when the status carries no winner.
func WinnerFor(status models.MatchStatus) *models.Side {
	switch status {
	case models.StatusSideAWins:
		s := models.SideA
		return &s
	case models.StatusSideBWins:
		s := models.SideB
		return &s
	}
	return nil
}

// Terminal reports whether status is a win state an archive may follow.
func Terminal(status models.MatchStatus) bool {
	return status == models.StatusSideAWins || status == models.StatusSideBWins
}
