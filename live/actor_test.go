package live

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/yerassyl04/rhythm-duel/models"
)

type countingBroadcaster struct {
	mu    sync.Mutex
	count int
}

func (b *countingBroadcaster) BroadcastSnapshot(matchID string, snapshot *models.MatchState) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.count++
}

func (b *countingBroadcaster) Count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.count
}

type channelSink struct {
	saved chan *models.MatchState
	err   error
}

func (s *channelSink) SaveSnapshot(ctx context.Context, state *models.MatchState, round *models.RoundSummary) error {
	if s.saved != nil {
		s.saved <- state
	}
	return s.err
}

func testSchedule(songCount int) models.MatchSchedule {
	songs := make([]models.ScheduleSong, songCount)
	for i := range songs {
		songs[i] = models.ScheduleSong{SongID: i + 1, Title: "Track", Difficulty: "EX"}
	}
	return models.MatchSchedule{
		MatchID:    "m1",
		RoundLabel: "Semifinal 1",
		SideA: models.ScheduleSide{
			TeamID:   1,
			TeamName: "Alpha",
			Roster: []models.Player{
				{ID: 11, TeamID: 1, Name: "Aoi", Profession: models.ProfessionNone, RosterOrder: 0},
				{ID: 12, TeamID: 1, Name: "Mei", Profession: models.ProfessionNone, RosterOrder: 1},
			},
		},
		SideB: models.ScheduleSide{
			TeamID:   2,
			TeamName: "Beta",
			Roster: []models.Player{
				{ID: 21, TeamID: 2, Name: "Rin", Profession: models.ProfessionNone, RosterOrder: 0},
			},
		},
		Songs: songs,
	}
}

func newTestActor(hub Broadcaster, sink Sink) *Actor {
	return NewActor("m1", NewEngine(zeroRand{}), hub, sink, nil)
}

func TestActorInitialize(t *testing.T) {
	assert := assert.New(t)
	hub := &countingBroadcaster{}
	actor := newTestActor(hub, nil)

	state, err := actor.Initialize(testSchedule(2))
	assert.NoError(err)
	assert.Equal(models.StatusAwaitingScores, state.Status)
	assert.Equal(InitialHealth, state.SideA.Health)
	assert.Equal(InitialHealth, state.SideB.Health)
	assert.True(state.SideA.MirrorAvailable)
	assert.True(state.SideB.MirrorAvailable)
	assert.Equal(0, state.SongIndex)
	if assert.NotNil(state.CurrentSong) {
		assert.Equal(1, state.CurrentSong.SongID)
	}
	assert.Equal(11, state.SideA.CurrentPlayerID)
	assert.Equal("Aoi", state.SideA.CurrentPlayerName)
	assert.Equal(21, state.SideB.CurrentPlayerID)
	assert.Nil(state.Winner)
	assert.Nil(state.LastRound)
	assert.Equal(1, hub.Count())
}

func TestActorInitializeTwice(t *testing.T) {
	assert := assert.New(t)
	hub := &countingBroadcaster{}
	actor := newTestActor(hub, nil)

	_, err := actor.Initialize(testSchedule(1))
	assert.NoError(err)

	_, err = actor.Initialize(testSchedule(1))
	assert.ErrorIs(err, ErrAlreadyInitialized)
	assert.Equal(1, hub.Count(), "rejected call must not broadcast")
}

func TestActorInitializeInvalidSchedule(t *testing.T) {
	assert := assert.New(t)
	actor := newTestActor(nil, nil)

	empty := testSchedule(0)
	_, err := actor.Initialize(empty)
	assert.ErrorIs(err, ErrInvalidSchedule)

	noRoster := testSchedule(2)
	noRoster.SideB.Roster = nil
	_, err = actor.Initialize(noRoster)
	assert.ErrorIs(err, ErrInvalidSchedule)
}

func TestActorNotInitialized(t *testing.T) {
	assert := assert.New(t)
	actor := newTestActor(nil, nil)

	_, err := actor.State()
	assert.ErrorIs(err, ErrNotInitialized)
	_, err = actor.SubmitTurn("100.0000", "100.0000", nil, nil)
	assert.ErrorIs(err, ErrNotInitialized)
	_, err = actor.Archive()
	assert.ErrorIs(err, ErrNotInitialized)
}

func TestActorSubmitAndAdvance(t *testing.T) {
	assert := assert.New(t)
	hub := &countingBroadcaster{}
	actor := newTestActor(hub, nil)

	_, err := actor.Initialize(testSchedule(2))
	assert.NoError(err)

	state, err := actor.SubmitTurn("100.5000", "100.3000", nil, nil)
	assert.NoError(err)
	assert.Equal(models.StatusRoundFinished, state.Status)
	assert.Equal(1, state.SongIndex)
	assert.Equal(InitialHealth-3, state.SideA.Health)
	assert.Equal(InitialHealth-5, state.SideB.Health)
	if assert.NotNil(state.LastRound) {
		assert.Equal(InitialHealth, state.LastRound.SideB.HealthBefore)
		assert.Equal(InitialHealth-5, state.LastRound.SideB.HealthAfter)
		assert.Equal("Aoi", state.LastRound.SideA.PlayerName)
		assert.NotEmpty(state.LastRound.Log)
	}

	// Scores are only accepted while awaiting them.
	_, err = actor.SubmitTurn("100.0000", "100.0000", nil, nil)
	assert.ErrorIs(err, ErrInvalidState)

	state, err = actor.AdvanceToNextSong()
	assert.NoError(err)
	assert.Equal(models.StatusAwaitingScores, state.Status)
	if assert.NotNil(state.CurrentSong) {
		assert.Equal(2, state.CurrentSong.SongID)
	}
	// Two-player roster rotates, single-player roster repeats.
	assert.Equal(12, state.SideA.CurrentPlayerID)
	assert.Equal(21, state.SideB.CurrentPlayerID)

	// Advancing again without a resolved round is a state conflict.
	_, err = actor.AdvanceToNextSong()
	assert.ErrorIs(err, ErrInvalidState)

	// init + submit + advance, one broadcast each.
	assert.Equal(3, hub.Count())
}

// Plays A "99.9999" (36 damage) against a passive B through tiebreakers
// until B's mirror is spent and B is eliminated.
func TestActorWinThroughTiebreakers(t *testing.T) {
	assert := assert.New(t)
	actor := newTestActor(nil, nil)

	_, err := actor.Initialize(testSchedule(1))
	assert.NoError(err)

	state, err := actor.SubmitTurn("99.9999", "100.0000", nil, nil)
	assert.NoError(err)
	assert.Equal(models.StatusTiebreakerPending, state.Status)
	assert.Equal(InitialHealth-36, state.SideB.Health)

	// Wrong-state guards around the tiebreaker pick.
	_, err = actor.AdvanceToNextSong()
	assert.ErrorIs(err, ErrInvalidState)
	_, err = actor.SelectTiebreakerSong(models.ScheduleSong{})
	assert.ErrorIs(err, ErrInvalidSong)

	tb := models.ScheduleSong{SongID: 99, Title: "Encore", Difficulty: "EX+"}
	state, err = actor.SelectTiebreakerSong(tb)
	assert.NoError(err)
	assert.Equal(models.StatusAwaitingScores, state.Status)
	if assert.NotNil(state.CurrentSong) {
		assert.Equal(99, state.CurrentSong.SongID)
	}
	assert.Len(state.Songs, 2)

	state, err = actor.SubmitTurn("99.9999", "100.0000", nil, nil)
	assert.NoError(err)
	assert.Equal(28, state.SideB.Health)
	assert.Equal(models.StatusTiebreakerPending, state.Status)

	_, err = actor.SelectTiebreakerSong(tb)
	assert.NoError(err)

	// 28 - 36 goes below zero: the mirror consumes and revives B.
	state, err = actor.SubmitTurn("99.9999", "100.0000", nil, nil)
	assert.NoError(err)
	assert.Equal(ReviveHealth, state.SideB.Health)
	assert.False(state.SideB.MirrorAvailable)
	assert.True(state.LastRound.SideB.MirrorTriggered)
	assert.Equal(models.StatusTiebreakerPending, state.Status)

	_, err = actor.SelectTiebreakerSong(tb)
	assert.NoError(err)

	// No mirror left: elimination ends the match even though the song list
	// is exhausted again.
	state, err = actor.SubmitTurn("99.9999", "100.0000", nil, nil)
	assert.NoError(err)
	assert.Equal(models.StatusSideAWins, state.Status)
	assert.False(state.SideB.MirrorAvailable)
	if assert.NotNil(state.Winner) {
		assert.Equal(models.SideA, *state.Winner)
	}

	// Terminal: no further scoring.
	_, err = actor.SubmitTurn("99.9999", "100.0000", nil, nil)
	assert.ErrorIs(err, ErrInvalidState)
}

func TestActorDrawAndResolve(t *testing.T) {
	assert := assert.New(t)
	actor := newTestActor(nil, nil)

	_, err := actor.Initialize(testSchedule(1))
	assert.NoError(err)

	// Symmetric heavy hits: both sides fall together.
	tb := models.ScheduleSong{SongID: 99, Title: "Encore", Difficulty: "EX+"}
	var state *models.MatchState
	for {
		state, err = actor.SubmitTurn("99.9999", "99.9999", nil, nil)
		assert.NoError(err)
		if state.Status != models.StatusTiebreakerPending {
			break
		}
		_, err = actor.SelectTiebreakerSong(tb)
		assert.NoError(err)
	}

	assert.Equal(models.StatusDrawPending, state.Status)
	assert.Equal(state.SideA.Health, state.SideB.Health)
	assert.False(state.SideA.MirrorAvailable)
	assert.False(state.SideB.MirrorAvailable)
	assert.Nil(state.Winner)

	// Archive is not allowed until the draw is adjudicated.
	_, err = actor.Archive()
	assert.ErrorIs(err, ErrInvalidState)

	_, err = actor.ResolveDraw(models.Side("C"))
	assert.ErrorIs(err, ErrInvalidSide)

	state, err = actor.ResolveDraw(models.SideB)
	assert.NoError(err)
	assert.Equal(models.StatusSideBWins, state.Status)
	if assert.NotNil(state.Winner) {
		assert.Equal(models.SideB, *state.Winner)
	}

	_, err = actor.ResolveDraw(models.SideA)
	assert.ErrorIs(err, ErrInvalidState)
}

func TestActorArchiveIdempotent(t *testing.T) {
	assert := assert.New(t)
	hub := &countingBroadcaster{}
	actor := newTestActor(hub, nil)

	_, err := actor.Initialize(testSchedule(1))
	assert.NoError(err)

	// Not archivable while live.
	_, err = actor.Archive()
	assert.ErrorIs(err, ErrInvalidState)

	// Drive to a win: B passive, repeat until eliminated.
	tb := models.ScheduleSong{SongID: 99, Title: "Encore", Difficulty: "EX+"}
	var state *models.MatchState
	for {
		state, err = actor.SubmitTurn("99.9999", "100.0000", nil, nil)
		assert.NoError(err)
		if state.Status == models.StatusSideAWins {
			break
		}
		_, err = actor.SelectTiebreakerSong(tb)
		assert.NoError(err)
	}

	broadcastsBefore := hub.Count()

	first, err := actor.Archive()
	assert.NoError(err)
	assert.Equal(models.StatusArchived, first.Status)
	assert.Equal(broadcastsBefore+1, hub.Count())

	second, err := actor.Archive()
	assert.NoError(err)
	assert.Equal(first, second)
	// The repeated call returns the frozen snapshot without re-broadcasting.
	assert.Equal(broadcastsBefore+1, hub.Count())

	_, err = actor.SubmitTurn("100.0000", "100.0000", nil, nil)
	assert.ErrorIs(err, ErrInvalidState)
}

func TestActorPersistsAsync(t *testing.T) {
	assert := assert.New(t)
	sink := &channelSink{saved: make(chan *models.MatchState, 4)}
	actor := newTestActor(nil, sink)

	_, err := actor.Initialize(testSchedule(1))
	assert.NoError(err)

	select {
	case state := <-sink.saved:
		assert.Equal("m1", state.MatchID)
		assert.Equal(models.StatusAwaitingScores, state.Status)
	case <-time.After(2 * time.Second):
		t.Fatal("snapshot was never persisted")
	}
}

func TestActorPersistenceFailureDoesNotFailMutation(t *testing.T) {
	assert := assert.New(t)
	sink := &channelSink{err: errors.New("database down")}
	actor := newTestActor(nil, sink)

	state, err := actor.Initialize(testSchedule(1))
	assert.NoError(err)
	assert.Equal(models.StatusAwaitingScores, state.Status)

	state, err = actor.SubmitTurn("100.5000", "100.3000", nil, nil)
	assert.NoError(err)
	assert.Equal(models.StatusRoundFinished, state.Status)
}

func TestActorSnapshotIsolation(t *testing.T) {
	assert := assert.New(t)
	actor := newTestActor(nil, nil)

	snapshot, err := actor.Initialize(testSchedule(2))
	assert.NoError(err)

	// Mutating a handed-out snapshot must not leak into the actor.
	snapshot.SideA.Health = -999
	snapshot.Songs[0].Title = "tampered"
	snapshot.SideA.Roster[0].Name = "tampered"

	current, err := actor.State()
	assert.NoError(err)
	assert.Equal(InitialHealth, current.SideA.Health)
	assert.Equal("Track", current.Songs[0].Title)
	assert.Equal("Aoi", current.SideA.Roster[0].Name)
}
