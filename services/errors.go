package services

import "errors"

// Shared sentinel errors, mapped to HTTP statuses in the handlers package.
// Match lifecycle failures (invalid state, not initialized, invalid side and
// so on) live in the live package next to the actor that raises them.
var (
	ErrNotFound = errors.New("requested resource not found")

	ErrValidationFailed     = errors.New("validation failed")
	ErrTeamNameRequired     = errors.New("team name is required")
	ErrSongTitleRequired    = errors.New("song title is required")
	ErrScheduleIncomplete   = errors.New("schedule requires two sides and a song list")
	ErrRosterImportBadLine  = errors.New("roster import line is malformed")
	ErrUnknownProfession    = errors.New("unknown profession")
	ErrUploaderNotConfigured = errors.New("media storage is not configured")

	ErrTeamNameConflict   = errors.New("team name is already in use")
	ErrScheduleConflict   = errors.New("a schedule for this match already exists")
	ErrStaffEmailConflict = errors.New("email address is already in use")

	ErrAuthInvalidCredentials = errors.New("invalid email or password")
	ErrPasswordTooShort       = errors.New("password is too short")
	ErrUnknownRole            = errors.New("unknown staff role")
)
