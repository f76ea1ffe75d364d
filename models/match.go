package models

type Side string

const (
	SideA Side = "A"
	SideB Side = "B"
)

type MatchStatus string

const (
	StatusAwaitingScores    MatchStatus = "awaiting_scores"
	StatusRoundFinished     MatchStatus = "round_finished"
	StatusSideAWins         MatchStatus = "side_a_wins"
	StatusSideBWins         MatchStatus = "side_b_wins"
	StatusDrawPending       MatchStatus = "draw_pending_resolution"
	StatusTiebreakerPending MatchStatus = "tiebreaker_pending_song"
	StatusArchived          MatchStatus = "archived"
)

// SideState is one team's half of the live match state.
type SideState struct {
	TeamID            int        `json:"team_id"`
	TeamName          string     `json:"team_name"`
	Health            int        `json:"health"`
	MirrorAvailable   bool       `json:"mirror_available"`
	Roster            []Player   `json:"roster"`
	CurrentPlayerID   int        `json:"current_player_id"`
	CurrentPlayerName string     `json:"current_player_name"`
	CurrentProfession Profession `json:"current_profession"`
}

// MatchState is the full authoritative state of one live match. It is owned
// by a single actor and handed out only as committed snapshots.
type MatchState struct {
	MatchID     string         `json:"match_id"`
	RoundLabel  string         `json:"round_label"`
	SideA       SideState      `json:"side_a"`
	SideB       SideState      `json:"side_b"`
	SongIndex   int            `json:"song_index"` // number of resolved songs; index of the next one
	Songs       []ScheduleSong `json:"songs"`
	CurrentSong *ScheduleSong  `json:"current_song,omitempty"`
	Status      MatchStatus    `json:"status"`
	Winner      *Side          `json:"winner,omitempty"`
	LastRound   *RoundSummary  `json:"last_round,omitempty"`
}

// RoundSideSummary itemizes what one side did and suffered in a resolved turn.
type RoundSideSummary struct {
	PlayerID        int        `json:"player_id"`
	PlayerName      string     `json:"player_name"`
	Profession      Profession `json:"profession"`
	Score           string     `json:"score"`
	Digits          [4]int     `json:"digits"`
	BaseDamage      int        `json:"base_damage"`
	Bonus           int        `json:"bonus"`
	Heal            int        `json:"heal"`
	Negation        int        `json:"negation"`
	MirrorTriggered bool       `json:"mirror_triggered"`
	MirrorExtra     int        `json:"mirror_extra"`
	DamageDealt     int        `json:"damage_dealt"`
	DamageTaken     int        `json:"damage_taken"`
	HealthBefore    int        `json:"health_before"`
	HealthAfter     int        `json:"health_after"`
	NetChange       int        `json:"net_change"`
}

// RoundSummary is the immutable record of one resolved turn, including the
// ordered human-readable log of every step applied.
type RoundSummary struct {
	Song  ScheduleSong     `json:"song"`
	SideA RoundSideSummary `json:"side_a"`
	SideB RoundSideSummary `json:"side_b"`
	Log   []string         `json:"log"`
}
