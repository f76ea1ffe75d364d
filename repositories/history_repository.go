package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/yerassyl04/rhythm-duel/models"
)

var ErrMatchStateNotFound = errors.New("match state not found")

// HistoryRepository is the durable side of a live match: the latest
// committed snapshot per match and the append-only round summaries.
type HistoryRepository interface {
	SaveState(ctx context.Context, state *models.MatchState) error
	AppendRound(ctx context.Context, matchID string, round *models.RoundSummary) error
	GetState(ctx context.Context, matchID string) (*models.MatchState, error)
	ListRounds(ctx context.Context, matchID string) ([]models.RoundSummary, error)
}

type postgresHistoryRepository struct {
	db *sql.DB
}

func NewPostgresHistoryRepository(db *sql.DB) HistoryRepository {
	return &postgresHistoryRepository{db: db}
}

func (r *postgresHistoryRepository) SaveState(ctx context.Context, state *models.MatchState) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to serialize match state %s: %w", state.MatchID, err)
	}

	query := `
		INSERT INTO match_states (match_id, status, payload, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (match_id) DO UPDATE
		SET status = EXCLUDED.status, payload = EXCLUDED.payload, updated_at = now()`

	if _, err := r.db.ExecContext(ctx, query, state.MatchID, state.Status, payload); err != nil {
		return fmt.Errorf("failed to save match state %s: %w", state.MatchID, err)
	}
	return nil
}

func (r *postgresHistoryRepository) AppendRound(ctx context.Context, matchID string, round *models.RoundSummary) error {
	payload, err := json.Marshal(round)
	if err != nil {
		return fmt.Errorf("failed to serialize round summary for %s: %w", matchID, err)
	}

	query := `
		INSERT INTO match_rounds (match_id, payload, created_at)
		VALUES ($1, $2, now())`

	if _, err := r.db.ExecContext(ctx, query, matchID, payload); err != nil {
		return fmt.Errorf("failed to append round for %s: %w", matchID, err)
	}
	return nil
}

func (r *postgresHistoryRepository) GetState(ctx context.Context, matchID string) (*models.MatchState, error) {
	query := `SELECT payload FROM match_states WHERE match_id = $1`

	var payload []byte
	err := r.db.QueryRowContext(ctx, query, matchID).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchStateNotFound
		}
		return nil, err
	}

	var state models.MatchState
	if err := json.Unmarshal(payload, &state); err != nil {
		return nil, fmt.Errorf("failed to deserialize match state %s: %w", matchID, err)
	}
	return &state, nil
}

func (r *postgresHistoryRepository) ListRounds(ctx context.Context, matchID string) ([]models.RoundSummary, error) {
	query := `SELECT payload FROM match_rounds WHERE match_id = $1 ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, matchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rounds []models.RoundSummary
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var round models.RoundSummary
		if err := json.Unmarshal(payload, &round); err != nil {
			return nil, fmt.Errorf("failed to deserialize round for %s: %w", matchID, err)
		}
		rounds = append(rounds, round)
	}
	return rounds, rows.Err()
}
