package models

import "time"

type Profession string

const (
	ProfessionAttacker  Profession = "attacker"
	ProfessionDefender  Profession = "defender"
	ProfessionSupporter Profession = "supporter"
	ProfessionNone      Profession = "none"
)

// ValidProfession reports whether p is one of the four known roles.
func ValidProfession(p Profession) bool {
	switch p {
	case ProfessionAttacker, ProfessionDefender, ProfessionSupporter, ProfessionNone:
		return true
	}
	return false
}

type Team struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	LogoKey   *string   `json:"-"`
	LogoURL   *string   `json:"logo_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type Player struct {
	ID          int        `json:"id"`
	TeamID      int        `json:"team_id"`
	Name        string     `json:"name"`
	Profession  Profession `json:"profession"`
	RosterOrder int        `json:"roster_order"`
}
