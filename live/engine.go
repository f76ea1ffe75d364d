package live

import (
	"fmt"
	"strings"

	"github.com/yerassyl04/rhythm-duel/models"
)

const (
	// InitialHealth is the health each side starts a match with.
	InitialHealth = 100
	// ReviveHealth is the value health is reset to when a mirror triggers.
	ReviveHealth = 20
)

// Rand is the randomness source used for defender negation. Injected so that
// turn resolution is reproducible in tests.
type Rand interface {
	Intn(n int) int
}

// SideInput is one side's state going into a turn.
type SideInput struct {
	Health          int
	MirrorAvailable bool
	Profession      models.Profession
	Score           string
}

// Adjustments are optional staff overrides for the computed effect values of
// one side. A nil field keeps the computed value.
type Adjustments struct {
	Bonus    *int `json:"bonus,omitempty"`
	Heal     *int `json:"heal,omitempty"`
	Negation *int `json:"negation,omitempty"`
}

// SideResult is one side's half of a resolved turn.
type SideResult struct {
	Digits          [4]int
	BaseDamage      int
	Bonus           int
	Heal            int
	Negation        int
	DamageDealt     int
	DamageTaken     int
	MirrorTriggered bool
	MirrorExtra     int
	HealthAfter     int
	NetChange       int
}

// TurnResult is the full outcome of one resolved turn, with the ordered step
// log for audit and display.
type TurnResult struct {
	A   SideResult
	B   SideResult
	Log []string
}

// Engine resolves turns. It is stateless apart from its randomness source;
// given the same inputs and the same source it always produces the same result.
type Engine struct {
	rng Rand
}

func NewEngine(rng Rand) *Engine {
	return &Engine{rng: rng}
}

// extractDigits returns the four digits immediately following the decimal
// point, padded with zeros. A score with no decimal point yields all zeros
// and ok=false; the caller logs it instead of rejecting the score.
func extractDigits(score string) (digits [4]int, ok bool) {
	i := strings.IndexByte(score, '.')
	if i < 0 {
		return digits, false
	}
	frac := score[i+1:]
	for j := 0; j < 4 && j < len(frac); j++ {
		c := frac[j]
		if c < '0' || c > '9' {
			break
		}
		digits[j] = int(c - '0')
	}
	return digits, true
}

func maxDigit(digits [4]int) int {
	max := 0
	for _, d := range digits {
		if d > max {
			max = d
		}
	}
	return max
}

func sumDigits(digits [4]int) int {
	sum := 0
	for _, d := range digits {
		sum += d
	}
	return sum
}

// Resolve runs the full turn-resolution algorithm for both sides.
func (e *Engine) Resolve(a, b SideInput, adjA, adjB *Adjustments) TurnResult {
	var log []string
	logf := func(format string, args ...interface{}) {
		log = append(log, fmt.Sprintf(format, args...))
	}

	var ra, rb SideResult

	// Steps 1-2: damage digits and base damage.
	var okA, okB bool
	ra.Digits, okA = extractDigits(a.Score)
	rb.Digits, okB = extractDigits(b.Score)
	if !okA {
		logf("side A: score %q has no decimal point, digits treated as zero", a.Score)
	}
	if !okB {
		logf("side B: score %q has no decimal point, digits treated as zero", b.Score)
	}
	ra.BaseDamage = sumDigits(ra.Digits)
	rb.BaseDamage = sumDigits(rb.Digits)
	logf("side A: score %s -> digits %v, base damage %d", a.Score, ra.Digits, ra.BaseDamage)
	logf("side B: score %s -> digits %v, base damage %d", b.Score, rb.Digits, rb.BaseDamage)

	// Step 3: attacker bonus.
	if a.Profession == models.ProfessionAttacker {
		ra.Bonus = maxDigit(ra.Digits)
		logf("side A: attacker bonus +%d", ra.Bonus)
	}
	if b.Profession == models.ProfessionAttacker {
		rb.Bonus = maxDigit(rb.Digits)
		logf("side B: attacker bonus +%d", rb.Bonus)
	}
	if adjA != nil && adjA.Bonus != nil {
		ra.Bonus = *adjA.Bonus
		logf("side A: bonus overridden to %d", ra.Bonus)
	}
	if adjB != nil && adjB.Bonus != nil {
		rb.Bonus = *adjB.Bonus
		logf("side B: bonus overridden to %d", rb.Bonus)
	}

	// Step 4: supporter banks a self-heal, applied after mirrors.
	if a.Profession == models.ProfessionSupporter {
		ra.Heal = maxDigit(ra.Digits)
		logf("side A: supporter banks heal %d", ra.Heal)
	}
	if b.Profession == models.ProfessionSupporter {
		rb.Heal = maxDigit(rb.Digits)
		logf("side B: supporter banks heal %d", rb.Heal)
	}
	if adjA != nil && adjA.Heal != nil {
		ra.Heal = *adjA.Heal
		logf("side A: heal overridden to %d", ra.Heal)
	}
	if adjB != nil && adjB.Heal != nil {
		rb.Heal = *adjB.Heal
		logf("side B: heal overridden to %d", rb.Heal)
	}

	// Step 5: damage dealt before negation.
	ra.DamageDealt = ra.BaseDamage + ra.Bonus
	rb.DamageDealt = rb.BaseDamage + rb.Bonus

	// Step 6: defender negation, one random non-zero source from the opponent.
	if a.Profession == models.ProfessionDefender {
		ra.Negation = e.pickNegation(rb.Digits, rb.Bonus)
		logf("side A: defender negates %d of side B's damage", ra.Negation)
	}
	if b.Profession == models.ProfessionDefender {
		rb.Negation = e.pickNegation(ra.Digits, ra.Bonus)
		logf("side B: defender negates %d of side A's damage", rb.Negation)
	}
	if adjA != nil && adjA.Negation != nil {
		ra.Negation = *adjA.Negation
		logf("side A: negation overridden to %d", ra.Negation)
	}
	if adjB != nil && adjB.Negation != nil {
		rb.Negation = *adjB.Negation
		logf("side B: negation overridden to %d", rb.Negation)
	}

	// Step 7: damage taken.
	ra.DamageTaken = rb.DamageDealt - ra.Negation
	if ra.DamageTaken < 0 {
		ra.DamageTaken = 0
	}
	rb.DamageTaken = ra.DamageDealt - rb.Negation
	if rb.DamageTaken < 0 {
		rb.DamageTaken = 0
	}

	// Step 8: apply damage. Health may go negative until mirrors resolve.
	healthA := a.Health - ra.DamageTaken
	healthB := b.Health - rb.DamageTaken
	logf("side A: takes %d damage (%d -> %d)", ra.DamageTaken, a.Health, healthA)
	logf("side B: takes %d damage (%d -> %d)", rb.DamageTaken, b.Health, healthB)

	// Step 9: mirror checks, side A first so side B observes A's result.
	healthA = e.checkMirror("A", "B", a, &ra, healthA, logf)
	healthB = e.checkMirror("B", "A", b, &rb, healthB, logf)

	// Step 10: mirror-inflicted extra damage, same fixed order.
	if rb.MirrorExtra > 0 {
		healthA -= rb.MirrorExtra
		logf("side A: takes %d extra damage from side B's mirror (-> %d)", rb.MirrorExtra, healthA)
	}
	if ra.MirrorExtra > 0 {
		healthB -= ra.MirrorExtra
		logf("side B: takes %d extra damage from side A's mirror (-> %d)", ra.MirrorExtra, healthB)
	}

	// Step 11: healing.
	if ra.Heal > 0 {
		healthA += ra.Heal
		logf("side A: heals %d (-> %d)", ra.Heal, healthA)
	}
	if rb.Heal > 0 {
		healthB += rb.Heal
		logf("side B: heals %d (-> %d)", rb.Heal, healthB)
	}

	// Step 12: net change.
	ra.HealthAfter = healthA
	ra.NetChange = healthA - a.Health
	rb.HealthAfter = healthB
	rb.NetChange = healthB - b.Health

	return TurnResult{A: ra, B: rb, Log: log}
}

// pickNegation draws uniformly from the opponent's non-zero damage sources:
// the four digits plus the attacker bonus when present.
func (e *Engine) pickNegation(oppDigits [4]int, oppBonus int) int {
	var sources []int
	for _, d := range oppDigits {
		if d > 0 {
			sources = append(sources, d)
		}
	}
	if oppBonus > 0 {
		sources = append(sources, oppBonus)
	}
	if len(sources) == 0 {
		return 0
	}
	return sources[e.rng.Intn(len(sources))]
}

func (e *Engine) checkMirror(name, opp string, in SideInput, r *SideResult, health int, logf func(string, ...interface{})) int {
	if health > 0 || !in.MirrorAvailable {
		return health
	}
	r.MirrorTriggered = true
	overflow := -health
	switch in.Profession {
	case models.ProfessionAttacker:
		r.MirrorExtra = maxDigit(r.Digits)
		logf("side %s: mirror triggered (overflow %d), attacker deals %d extra to side %s", name, overflow, r.MirrorExtra, opp)
	case models.ProfessionDefender:
		r.MirrorExtra = overflow
		logf("side %s: mirror triggered, defender reflects overflow %d to side %s", name, overflow, opp)
	case models.ProfessionSupporter:
		r.Heal *= 2
		logf("side %s: mirror triggered (overflow %d), supporter heal doubled to %d", name, overflow, r.Heal)
	default:
		logf("side %s: mirror triggered (overflow %d)", name, overflow)
	}
	logf("side %s: health reset to %d", name, ReviveHealth)
	return ReviveHealth
}
