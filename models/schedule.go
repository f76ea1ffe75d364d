package models

// ScheduleSide is one team's half of a match schedule. Roster order is the
// order players take songs in.
type ScheduleSide struct {
	TeamID   int      `json:"team_id"`
	TeamName string   `json:"team_name"`
	Roster   []Player `json:"roster"`
}

// ScheduleSong is one entry of the pre-agreed song list.
type ScheduleSong struct {
	SongID     int    `json:"song_id"`
	Title      string `json:"title"`
	Difficulty string `json:"difficulty"`
	PickedBy   Side   `json:"picked_by,omitempty"`
	PickerID   *int   `json:"picker_id,omitempty"`
}

// MatchSchedule is the one-time payload that seeds a live match: identities,
// ordered rosters and the pre-agreed song list.
type MatchSchedule struct {
	MatchID    string         `json:"match_id"`
	RoundLabel string         `json:"round_label"`
	SideA      ScheduleSide   `json:"side_a"`
	SideB      ScheduleSide   `json:"side_b"`
	Songs      []ScheduleSong `json:"songs"`
}
