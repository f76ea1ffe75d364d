package live

import (
	"context"
	"log/slog"
	"sync"

	"github.com/yerassyl04/rhythm-duel/models"
)

// Broadcaster pushes a committed snapshot to every live viewer of a match.
// Delivery is best effort; failures never reach the mutating caller.
type Broadcaster interface {
	BroadcastSnapshot(matchID string, snapshot *models.MatchState)
}

// Sink persists committed state. Writes are asynchronous relative to the
// in-memory commit; a failed write is logged, never rolled back.
type Sink interface {
	SaveSnapshot(ctx context.Context, state *models.MatchState, round *models.RoundSummary) error
}

// Actor is the single authoritative owner of one match's state. All
// mutations are serialized behind its mutex; reads return the last committed
// snapshot and never observe an intermediate.
type Actor struct {
	matchID string
	engine  *Engine
	hub     Broadcaster
	sink    Sink
	logger  *slog.Logger

	mu     sync.RWMutex
	state  *models.MatchState
	frozen bool
}

func NewActor(matchID string, engine *Engine, hub Broadcaster, sink Sink, logger *slog.Logger) *Actor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Actor{matchID: matchID, engine: engine, hub: hub, sink: sink, logger: logger}
}

// Initialize seeds the actor from a schedule payload.
func (a *Actor) Initialize(sched models.MatchSchedule) (*models.MatchState, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state != nil {
		return nil, ErrAlreadyInitialized
	}
	if len(sched.SideA.Roster) == 0 || len(sched.SideB.Roster) == 0 || len(sched.Songs) == 0 {
		return nil, ErrInvalidSchedule
	}

	songs := make([]models.ScheduleSong, len(sched.Songs))
	copy(songs, sched.Songs)

	st := &models.MatchState{
		MatchID:    a.matchID,
		RoundLabel: sched.RoundLabel,
		SideA:      newSideState(sched.SideA),
		SideB:      newSideState(sched.SideB),
		Songs:      songs,
		Status:     models.StatusAwaitingScores,
	}
	st.CurrentSong = &st.Songs[0]
	setCurrentPlayers(st)

	a.state = st
	return a.commit(nil), nil
}

// SubmitTurn resolves one turn from two score percentages. Valid only while
// awaiting scores.
func (a *Actor) SubmitTurn(scoreA, scoreB string, adjA, adjB *Adjustments) (*models.MatchState, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state == nil {
		return nil, ErrNotInitialized
	}
	if a.state.Status != models.StatusAwaitingScores {
		return nil, ErrInvalidState
	}

	st := a.state
	inA := SideInput{Health: st.SideA.Health, MirrorAvailable: st.SideA.MirrorAvailable, Profession: st.SideA.CurrentProfession, Score: scoreA}
	inB := SideInput{Health: st.SideB.Health, MirrorAvailable: st.SideB.MirrorAvailable, Profession: st.SideB.CurrentProfession, Score: scoreB}

	res := a.engine.Resolve(inA, inB, adjA, adjB)

	round := buildRoundSummary(st, scoreA, scoreB, res)

	st.SideA.Health = res.A.HealthAfter
	st.SideB.Health = res.B.HealthAfter
	if res.A.MirrorTriggered {
		st.SideA.MirrorAvailable = false
	}
	if res.B.MirrorTriggered {
		st.SideB.MirrorAvailable = false
	}
	st.SongIndex++
	st.LastRound = round

	st.Status = NextStatus(Outcome{
		HealthA:        st.SideA.Health,
		HealthB:        st.SideB.Health,
		SongsRemaining: len(st.Songs) - st.SongIndex,
	})
	st.Winner = WinnerFor(st.Status)

	return a.commit(round), nil
}

// AdvanceToNextSong moves the active song pointer and player assignment
// forward after a finished round.
func (a *Actor) AdvanceToNextSong() (*models.MatchState, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state == nil {
		return nil, ErrNotInitialized
	}
	st := a.state
	if st.Status != models.StatusRoundFinished || st.Winner != nil || st.SongIndex >= len(st.Songs) {
		return nil, ErrInvalidState
	}

	st.CurrentSong = &st.Songs[st.SongIndex]
	setCurrentPlayers(st)
	st.Status = models.StatusAwaitingScores

	return a.commit(nil), nil
}

// ResolveDraw records the staff-picked winner of a double elimination.
func (a *Actor) ResolveDraw(winner models.Side) (*models.MatchState, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state == nil {
		return nil, ErrNotInitialized
	}
	if a.state.Status != models.StatusDrawPending {
		return nil, ErrInvalidState
	}
	if winner != models.SideA && winner != models.SideB {
		return nil, ErrInvalidSide
	}

	st := a.state
	w := winner
	st.Winner = &w
	if winner == models.SideA {
		st.Status = models.StatusSideAWins
	} else {
		st.Status = models.StatusSideBWins
	}

	return a.commit(nil), nil
}

// SelectTiebreakerSong appends the extra song and reopens scoring.
func (a *Actor) SelectTiebreakerSong(song models.ScheduleSong) (*models.MatchState, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state == nil {
		return nil, ErrNotInitialized
	}
	st := a.state
	if st.Status != models.StatusTiebreakerPending {
		return nil, ErrInvalidState
	}
	if song.SongID <= 0 || song.Title == "" {
		return nil, ErrInvalidSong
	}

	st.Songs = append(st.Songs, song)
	st.CurrentSong = &st.Songs[len(st.Songs)-1]
	setCurrentPlayers(st)
	st.Status = models.StatusAwaitingScores

	return a.commit(nil), nil
}

// Archive freezes a decided match. Idempotent: a second call returns the
// same frozen snapshot instead of erroring.
func (a *Actor) Archive() (*models.MatchState, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state == nil {
		return nil, ErrNotInitialized
	}
	if a.frozen {
		return cloneState(a.state), nil
	}
	if !Terminal(a.state.Status) {
		return nil, ErrInvalidState
	}

	a.state.Status = models.StatusArchived
	a.frozen = true

	return a.commit(nil), nil
}

// State returns the last committed snapshot.
func (a *Actor) State() (*models.MatchState, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.state == nil {
		return nil, ErrNotInitialized
	}
	return cloneState(a.state), nil
}

// commit hands the newly committed snapshot to the broadcaster and kicks off
// the best-effort persistence write. Called with the write lock held.
func (a *Actor) commit(round *models.RoundSummary) *models.MatchState {
	snapshot := cloneState(a.state)
	if a.hub != nil {
		a.hub.BroadcastSnapshot(a.matchID, snapshot)
	}
	if a.sink != nil {
		persisted := cloneState(a.state)
		go func() {
			if err := a.sink.SaveSnapshot(context.Background(), persisted, round); err != nil {
				a.logger.Error("match state persistence failed",
					slog.String("match_id", a.matchID), slog.Any("error", err))
			}
		}()
	}
	return snapshot
}

func newSideState(side models.ScheduleSide) models.SideState {
	roster := make([]models.Player, len(side.Roster))
	copy(roster, side.Roster)
	return models.SideState{
		TeamID:          side.TeamID,
		TeamName:        side.TeamName,
		Health:          InitialHealth,
		MirrorAvailable: true,
		Roster:          roster,
	}
}

// setCurrentPlayers rotates each side's roster by the number of resolved
// songs and denormalizes the display fields of the player now up.
func setCurrentPlayers(st *models.MatchState) {
	for _, side := range []*models.SideState{&st.SideA, &st.SideB} {
		p := side.Roster[st.SongIndex%len(side.Roster)]
		side.CurrentPlayerID = p.ID
		side.CurrentPlayerName = p.Name
		side.CurrentProfession = p.Profession
	}
}

func buildRoundSummary(st *models.MatchState, scoreA, scoreB string, res TurnResult) *models.RoundSummary {
	song := models.ScheduleSong{}
	if st.CurrentSong != nil {
		song = *st.CurrentSong
	}
	return &models.RoundSummary{
		Song:  song,
		SideA: sideSummary(st.SideA, scoreA, res.A),
		SideB: sideSummary(st.SideB, scoreB, res.B),
		Log:   res.Log,
	}
}

func sideSummary(side models.SideState, score string, r SideResult) models.RoundSideSummary {
	return models.RoundSideSummary{
		PlayerID:        side.CurrentPlayerID,
		PlayerName:      side.CurrentPlayerName,
		Profession:      side.CurrentProfession,
		Score:           score,
		Digits:          r.Digits,
		BaseDamage:      r.BaseDamage,
		Bonus:           r.Bonus,
		Heal:            r.Heal,
		Negation:        r.Negation,
		MirrorTriggered: r.MirrorTriggered,
		MirrorExtra:     r.MirrorExtra,
		DamageDealt:     r.DamageDealt,
		DamageTaken:     r.DamageTaken,
		HealthBefore:    side.Health,
		HealthAfter:     r.HealthAfter,
		NetChange:       r.NetChange,
	}
}

// cloneState deep-copies the mutable parts of the state so a handed-out
// snapshot can never observe a later mutation. Round summaries are immutable
// once built and are shared.
func cloneState(st *models.MatchState) *models.MatchState {
	c := *st
	c.Songs = make([]models.ScheduleSong, len(st.Songs))
	copy(c.Songs, st.Songs)
	if st.CurrentSong != nil {
		song := *st.CurrentSong
		c.CurrentSong = &song
	}
	c.SideA.Roster = append([]models.Player(nil), st.SideA.Roster...)
	c.SideB.Roster = append([]models.Player(nil), st.SideB.Roster...)
	if st.Winner != nil {
		w := *st.Winner
		c.Winner = &w
	}
	return &c
}
