package live

import "errors"

// Failures an actor operation can return. All of them mean the mutation was
// rejected before any state change.
var (
	ErrAlreadyInitialized = errors.New("match already initialized")
	ErrInvalidSchedule    = errors.New("schedule must carry both rosters and at least one song")
	ErrNotInitialized     = errors.New("match not initialized")
	ErrInvalidState       = errors.New("operation not valid for the current match status")
	ErrInvalidSide        = errors.New("side must be A or B")
	ErrInvalidSong        = errors.New("invalid tiebreaker song")
)
