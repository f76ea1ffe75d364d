package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yerassyl04/rhythm-duel/live"
	"github.com/yerassyl04/rhythm-duel/models"
	"github.com/yerassyl04/rhythm-duel/repositories"
)

type firstPick struct{}

func (firstPick) Intn(n int) int { return 0 }

type fakeScheduleRepo struct {
	schedules map[string]models.MatchSchedule
}

func (f *fakeScheduleRepo) Create(ctx context.Context, s *models.MatchSchedule) error {
	f.schedules[s.MatchID] = *s
	return nil
}

func (f *fakeScheduleRepo) GetByMatchID(ctx context.Context, matchID string) (*models.MatchSchedule, error) {
	s, ok := f.schedules[matchID]
	if !ok {
		return nil, repositories.ErrScheduleNotFound
	}
	return &s, nil
}

func (f *fakeScheduleRepo) List(ctx context.Context) ([]models.MatchSchedule, error) {
	return nil, nil
}

func (f *fakeScheduleRepo) Delete(ctx context.Context, matchID string) error {
	delete(f.schedules, matchID)
	return nil
}

type fakeSongRepo struct {
	songs map[int]models.Song
}

func (f *fakeSongRepo) Create(ctx context.Context, song *models.Song) error {
	f.songs[song.ID] = *song
	return nil
}

func (f *fakeSongRepo) GetByID(ctx context.Context, id int) (*models.Song, error) {
	s, ok := f.songs[id]
	if !ok {
		return nil, repositories.ErrSongNotFound
	}
	return &s, nil
}

func (f *fakeSongRepo) List(ctx context.Context) ([]models.Song, error) { return nil, nil }

func (f *fakeSongRepo) UpdateJacketKey(ctx context.Context, id int, key *string) error {
	s, ok := f.songs[id]
	if !ok {
		return repositories.ErrSongNotFound
	}
	s.JacketKey = key
	f.songs[id] = s
	return nil
}

func (f *fakeSongRepo) Delete(ctx context.Context, id int) error { return nil }

type fakeHistoryRepo struct {
	mu       sync.Mutex
	failSave bool
	states   map[string]*models.MatchState
	rounds   map[string][]models.RoundSummary
}

func newFakeHistoryRepo() *fakeHistoryRepo {
	return &fakeHistoryRepo{
		states: make(map[string]*models.MatchState),
		rounds: make(map[string][]models.RoundSummary),
	}
}

func (f *fakeHistoryRepo) SaveState(ctx context.Context, state *models.MatchState) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSave {
		return errors.New("database down")
	}
	f.states[state.MatchID] = state
	return nil
}

func (f *fakeHistoryRepo) AppendRound(ctx context.Context, matchID string, round *models.RoundSummary) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rounds[matchID] = append(f.rounds[matchID], *round)
	return nil
}

func (f *fakeHistoryRepo) GetState(ctx context.Context, matchID string) (*models.MatchState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.states[matchID]
	if !ok {
		return nil, repositories.ErrMatchStateNotFound
	}
	return s, nil
}

func (f *fakeHistoryRepo) ListRounds(ctx context.Context, matchID string) ([]models.RoundSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.RoundSummary(nil), f.rounds[matchID]...), nil
}

func (f *fakeHistoryRepo) roundCount(matchID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rounds[matchID])
}

func (f *fakeHistoryRepo) hasState(matchID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.states[matchID]
	return ok
}

func seededSchedule() models.MatchSchedule {
	return models.MatchSchedule{
		MatchID:    "m1",
		RoundLabel: "Final",
		SideA: models.ScheduleSide{
			TeamID:   1,
			TeamName: "Alpha",
			Roster:   []models.Player{{ID: 11, TeamID: 1, Name: "Aoi", Profession: models.ProfessionNone}},
		},
		SideB: models.ScheduleSide{
			TeamID:   2,
			TeamName: "Beta",
			Roster:   []models.Player{{ID: 21, TeamID: 2, Name: "Rin", Profession: models.ProfessionNone}},
		},
		Songs: []models.ScheduleSong{
			{SongID: 1, Title: "Opener", Difficulty: "EX"},
			{SongID: 2, Title: "Closer", Difficulty: "EX"},
		},
	}
}

func newTestMatchService(hist *fakeHistoryRepo) MatchService {
	scheduleRepo := &fakeScheduleRepo{schedules: map[string]models.MatchSchedule{"m1": seededSchedule()}}
	songRepo := &fakeSongRepo{songs: map[int]models.Song{
		1: {ID: 1, Title: "Opener", Difficulty: "EX"},
		2: {ID: 2, Title: "Closer", Difficulty: "EX"},
		7: {ID: 7, Title: "Encore", Difficulty: "EX+"},
	}}
	var histRepo repositories.HistoryRepository
	if hist != nil {
		histRepo = hist
	}
	return NewMatchService(scheduleRepo, songRepo, histRepo, nil, nil, func() live.Rand { return firstPick{} })
}

func TestMatchServiceInitialize(t *testing.T) {
	assert := assert.New(t)
	svc := newTestMatchService(nil)
	ctx := context.Background()

	state, err := svc.Initialize(ctx, "m1")
	assert.NoError(err)
	assert.Equal(models.StatusAwaitingScores, state.Status)
	assert.Equal("Final", state.RoundLabel)
	assert.Len(state.Songs, 2)

	_, err = svc.Initialize(ctx, "m1")
	assert.ErrorIs(err, live.ErrAlreadyInitialized)

	_, err = svc.Initialize(ctx, "no-such-match")
	assert.ErrorIs(err, ErrNotFound)
}

func TestMatchServiceGuards(t *testing.T) {
	assert := assert.New(t)
	svc := newTestMatchService(nil)
	ctx := context.Background()

	_, err := svc.GetState(ctx, "m1")
	assert.ErrorIs(err, live.ErrNotInitialized)

	_, err = svc.SubmitTurn(ctx, "m1", TurnRequest{ScoreA: "100.0000", ScoreB: "100.0000"})
	assert.ErrorIs(err, live.ErrNotInitialized)

	_, err = svc.AdvanceToNextSong(ctx, "m1")
	assert.ErrorIs(err, live.ErrNotInitialized)

	_, err = svc.ResolveDraw(ctx, "m1", models.SideA)
	assert.ErrorIs(err, live.ErrNotInitialized)

	_, err = svc.Archive(ctx, "m1")
	assert.ErrorIs(err, live.ErrNotInitialized)

	_, err = svc.Initialize(ctx, "m1")
	assert.NoError(err)

	_, err = svc.SubmitTurn(ctx, "m1", TurnRequest{ScoreA: "", ScoreB: "100.0000"})
	assert.ErrorIs(err, ErrValidationFailed)
}

func TestMatchServiceFullFlow(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	svc := newTestMatchService(nil)
	ctx := context.Background()

	_, err := svc.Initialize(ctx, "m1")
	require.NoError(err)

	// Song 1: A lands 36 damage, B scores clean.
	state, err := svc.SubmitTurn(ctx, "m1", TurnRequest{ScoreA: "99.9999", ScoreB: "100.0000"})
	require.NoError(err)
	assert.Equal(models.StatusRoundFinished, state.Status)
	assert.Equal(64, state.SideB.Health)

	state, err = svc.AdvanceToNextSong(ctx, "m1")
	require.NoError(err)
	assert.Equal(models.StatusAwaitingScores, state.Status)
	assert.Equal(2, state.CurrentSong.SongID)

	// Song 2 exhausts the list with both sides alive.
	state, err = svc.SubmitTurn(ctx, "m1", TurnRequest{ScoreA: "99.9999", ScoreB: "100.0000"})
	require.NoError(err)
	assert.Equal(models.StatusTiebreakerPending, state.Status)
	assert.Equal(28, state.SideB.Health)

	_, err = svc.SelectTiebreakerSong(ctx, "m1", 404, "")
	assert.ErrorIs(err, live.ErrInvalidSong)

	state, err = svc.SelectTiebreakerSong(ctx, "m1", 7, "")
	require.NoError(err)
	assert.Equal("Encore", state.CurrentSong.Title)
	assert.Equal("EX+", state.CurrentSong.Difficulty)

	// Tiebreaker 1: B falls below zero and the mirror revives.
	state, err = svc.SubmitTurn(ctx, "m1", TurnRequest{ScoreA: "99.9999", ScoreB: "100.0000"})
	require.NoError(err)
	assert.Equal(live.ReviveHealth, state.SideB.Health)
	assert.False(state.SideB.MirrorAvailable)
	assert.Equal(models.StatusTiebreakerPending, state.Status)

	state, err = svc.SelectTiebreakerSong(ctx, "m1", 7, "MASTER")
	require.NoError(err)
	assert.Equal("MASTER", state.CurrentSong.Difficulty)

	// Tiebreaker 2: no mirror left, B is eliminated.
	state, err = svc.SubmitTurn(ctx, "m1", TurnRequest{ScoreA: "99.9999", ScoreB: "100.0000"})
	require.NoError(err)
	assert.Equal(models.StatusSideAWins, state.Status)
	if assert.NotNil(state.Winner) {
		assert.Equal(models.SideA, *state.Winner)
	}

	first, err := svc.Archive(ctx, "m1")
	require.NoError(err)
	assert.Equal(models.StatusArchived, first.Status)

	second, err := svc.Archive(ctx, "m1")
	require.NoError(err)
	assert.Equal(first, second)
}

func TestMatchServiceAdjustmentsReachTheEngine(t *testing.T) {
	assert := assert.New(t)
	svc := newTestMatchService(nil)
	ctx := context.Background()

	_, err := svc.Initialize(ctx, "m1")
	assert.NoError(err)

	bonus := 3
	state, err := svc.SubmitTurn(ctx, "m1", TurnRequest{
		ScoreA:      "100.2000",
		ScoreB:      "100.0000",
		Adjustments: &SideAdjustments{SideA: &live.Adjustments{Bonus: &bonus}},
	})
	assert.NoError(err)
	if assert.NotNil(state.LastRound) {
		assert.Equal(3, state.LastRound.SideA.Bonus)
		assert.Equal(5, state.LastRound.SideA.DamageDealt)
	}
	assert.Equal(95, state.SideB.Health)
}

func TestMatchServicePersistsHistory(t *testing.T) {
	require := require.New(t)
	hist := newFakeHistoryRepo()
	svc := newTestMatchService(hist)
	ctx := context.Background()

	_, err := svc.Initialize(ctx, "m1")
	require.NoError(err)
	_, err = svc.SubmitTurn(ctx, "m1", TurnRequest{ScoreA: "100.1000", ScoreB: "100.2000"})
	require.NoError(err)

	// Persistence is asynchronous relative to the commit.
	require.Eventually(func() bool {
		return hist.hasState("m1") && hist.roundCount("m1") == 1
	}, 2*time.Second, 10*time.Millisecond)

	rounds, err := hist.ListRounds(ctx, "m1")
	require.NoError(err)
	require.Len(rounds, 1)
	require.Equal("100.1000", rounds[0].SideA.Score)
}

func TestMatchServiceHistory(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	hist := newFakeHistoryRepo()
	svc := newTestMatchService(hist)
	ctx := context.Background()

	_, err := svc.History(ctx, "m1")
	assert.ErrorIs(err, ErrNotFound, "nothing persisted yet")

	_, err = svc.Initialize(ctx, "m1")
	require.NoError(err)
	_, err = svc.SubmitTurn(ctx, "m1", TurnRequest{ScoreA: "100.1000", ScoreB: "100.2000"})
	require.NoError(err)

	require.Eventually(func() bool {
		return hist.hasState("m1") && hist.roundCount("m1") == 1
	}, 2*time.Second, 10*time.Millisecond)

	history, err := svc.History(ctx, "m1")
	require.NoError(err)
	assert.Equal("m1", history.State.MatchID)
	require.Len(history.Rounds, 1)
	assert.Equal("100.1000", history.Rounds[0].SideA.Score)
}

func TestMatchServiceHistoryWithoutStore(t *testing.T) {
	svc := newTestMatchService(nil)

	_, err := svc.History(context.Background(), "m1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMatchServicePersistenceFailureDoesNotFailTurn(t *testing.T) {
	assert := assert.New(t)
	hist := newFakeHistoryRepo()
	hist.failSave = true
	svc := newTestMatchService(hist)
	ctx := context.Background()

	_, err := svc.Initialize(ctx, "m1")
	assert.NoError(err)

	state, err := svc.SubmitTurn(ctx, "m1", TurnRequest{ScoreA: "100.1000", ScoreB: "100.2000"})
	assert.NoError(err)
	assert.Equal(models.StatusRoundFinished, state.Status)
}
