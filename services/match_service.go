package services

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"time"

	"github.com/yerassyl04/rhythm-duel/live"
	"github.com/yerassyl04/rhythm-duel/models"
	"github.com/yerassyl04/rhythm-duel/repositories"
)

// TurnRequest is one staff turn submission: both raw score percentages plus
// optional per-side overrides for the computed effect values.
type TurnRequest struct {
	ScoreA      string           `json:"score_a"`
	ScoreB      string           `json:"score_b"`
	Adjustments *SideAdjustments `json:"adjustments,omitempty"`
}

type SideAdjustments struct {
	SideA *live.Adjustments `json:"side_a,omitempty"`
	SideB *live.Adjustments `json:"side_b,omitempty"`
}

type MatchService interface {
	Initialize(ctx context.Context, matchID string) (*models.MatchState, error)
	GetState(ctx context.Context, matchID string) (*models.MatchState, error)
	SubmitTurn(ctx context.Context, matchID string, req TurnRequest) (*models.MatchState, error)
	AdvanceToNextSong(ctx context.Context, matchID string) (*models.MatchState, error)
	ResolveDraw(ctx context.Context, matchID string, winner models.Side) (*models.MatchState, error)
	SelectTiebreakerSong(ctx context.Context, matchID string, songID int, difficulty string) (*models.MatchState, error)
	Archive(ctx context.Context, matchID string) (*models.MatchState, error)
	History(ctx context.Context, matchID string) (*MatchHistory, error)
}

// MatchHistory is the persisted view of a match: the last committed snapshot
// and every resolved round in order.
type MatchHistory struct {
	State  *models.MatchState    `json:"state"`
	Rounds []models.RoundSummary `json:"rounds"`
}

type matchService struct {
	registry     *live.Registry
	scheduleRepo repositories.ScheduleRepository
	songRepo     repositories.SongRepository
	historyRepo  repositories.HistoryRepository
	logger       *slog.Logger
}

// NewMatchService wires the actor registry: every actor shares the hub and
// the history sink, and gets its own time-seeded randomness source. newRand
// may be nil outside tests.
func NewMatchService(
	scheduleRepo repositories.ScheduleRepository,
	songRepo repositories.SongRepository,
	historyRepo repositories.HistoryRepository,
	hub live.Broadcaster,
	logger *slog.Logger,
	newRand func() live.Rand,
) MatchService {
	if logger == nil {
		logger = slog.Default()
	}
	if newRand == nil {
		newRand = func() live.Rand {
			return rand.New(rand.NewSource(time.Now().UnixNano()))
		}
	}
	var sink live.Sink
	if historyRepo != nil {
		sink = &historySink{repo: historyRepo}
	}
	svc := &matchService{
		scheduleRepo: scheduleRepo,
		songRepo:     songRepo,
		historyRepo:  historyRepo,
		logger:       logger,
	}
	svc.registry = live.NewRegistry(func(matchID string) *live.Actor {
		return live.NewActor(matchID, live.NewEngine(newRand()), hub, sink, logger)
	})
	return svc
}

// Initialize seeds the actor for matchID from the schedule store. The actor
// itself rejects a second initialization.
func (s *matchService) Initialize(ctx context.Context, matchID string) (*models.MatchState, error) {
	schedule, err := s.scheduleRepo.GetByMatchID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrScheduleNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	actor := s.registry.GetOrCreate(matchID)
	state, err := actor.Initialize(*schedule)
	if err != nil {
		return nil, err
	}
	s.logger.Info("match initialized",
		slog.String("match_id", matchID),
		slog.String("round", state.RoundLabel),
		slog.Int("songs", len(state.Songs)))
	return state, nil
}

func (s *matchService) GetState(ctx context.Context, matchID string) (*models.MatchState, error) {
	actor, ok := s.registry.Get(matchID)
	if !ok {
		return nil, live.ErrNotInitialized
	}
	return actor.State()
}

func (s *matchService) SubmitTurn(ctx context.Context, matchID string, req TurnRequest) (*models.MatchState, error) {
	if req.ScoreA == "" || req.ScoreB == "" {
		return nil, ErrValidationFailed
	}
	actor, ok := s.registry.Get(matchID)
	if !ok {
		return nil, live.ErrNotInitialized
	}

	var adjA, adjB *live.Adjustments
	if req.Adjustments != nil {
		adjA, adjB = req.Adjustments.SideA, req.Adjustments.SideB
	}
	state, err := actor.SubmitTurn(req.ScoreA, req.ScoreB, adjA, adjB)
	if err != nil {
		return nil, err
	}
	s.logger.Info("turn resolved",
		slog.String("match_id", matchID),
		slog.Int("song_index", state.SongIndex),
		slog.String("status", string(state.Status)))
	return state, nil
}

func (s *matchService) AdvanceToNextSong(ctx context.Context, matchID string) (*models.MatchState, error) {
	actor, ok := s.registry.Get(matchID)
	if !ok {
		return nil, live.ErrNotInitialized
	}
	return actor.AdvanceToNextSong()
}

func (s *matchService) ResolveDraw(ctx context.Context, matchID string, winner models.Side) (*models.MatchState, error) {
	actor, ok := s.registry.Get(matchID)
	if !ok {
		return nil, live.ErrNotInitialized
	}
	return actor.ResolveDraw(winner)
}

// SelectTiebreakerSong resolves the song against the song store before
// handing it to the actor.
func (s *matchService) SelectTiebreakerSong(ctx context.Context, matchID string, songID int, difficulty string) (*models.MatchState, error) {
	actor, ok := s.registry.Get(matchID)
	if !ok {
		return nil, live.ErrNotInitialized
	}

	song, err := s.songRepo.GetByID(ctx, songID)
	if err != nil {
		if errors.Is(err, repositories.ErrSongNotFound) {
			return nil, live.ErrInvalidSong
		}
		return nil, err
	}
	if difficulty == "" {
		difficulty = song.Difficulty
	}

	return actor.SelectTiebreakerSong(models.ScheduleSong{
		SongID:     song.ID,
		Title:      song.Title,
		Difficulty: difficulty,
	})
}

// Archive freezes the match. The actor stays registered so repeated archive
// calls keep returning the same frozen snapshot.
func (s *matchService) Archive(ctx context.Context, matchID string) (*models.MatchState, error) {
	actor, ok := s.registry.Get(matchID)
	if !ok {
		return nil, live.ErrNotInitialized
	}
	state, err := actor.Archive()
	if err != nil {
		return nil, err
	}
	s.logger.Info("match archived", slog.String("match_id", matchID))
	return state, nil
}

// History reads the persisted snapshot and round summaries. It serves
// archived matches whose actor is long gone, so it never touches the registry.
func (s *matchService) History(ctx context.Context, matchID string) (*MatchHistory, error) {
	if s.historyRepo == nil {
		return nil, ErrNotFound
	}
	state, err := s.historyRepo.GetState(ctx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchStateNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	rounds, err := s.historyRepo.ListRounds(ctx, matchID)
	if err != nil {
		return nil, err
	}
	return &MatchHistory{State: state, Rounds: rounds}, nil
}

// historySink adapts the history repository to the actor's persistence hook.
type historySink struct {
	repo repositories.HistoryRepository
}

func (h *historySink) SaveSnapshot(ctx context.Context, state *models.MatchState, round *models.RoundSummary) error {
	if err := h.repo.SaveState(ctx, state); err != nil {
		return err
	}
	if round != nil {
		return h.repo.AppendRound(ctx, state.MatchID, round)
	}
	return nil
}
