package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/yerassyl04/rhythm-duel/models"
)

var (
	ErrScheduleNotFound = errors.New("match schedule not found")
	ErrScheduleConflict = errors.New("match schedule already exists")
)

type ScheduleRepository interface {
	Create(ctx context.Context, schedule *models.MatchSchedule) error
	GetByMatchID(ctx context.Context, matchID string) (*models.MatchSchedule, error)
	List(ctx context.Context) ([]models.MatchSchedule, error)
	Delete(ctx context.Context, matchID string) error
}

// Schedules are stored as one row per match with the rosters and song list
// as a JSON document; the payload is read back whole to seed an actor, never
// queried field by field.
type postgresScheduleRepository struct {
	db *sql.DB
}

func NewPostgresScheduleRepository(db *sql.DB) ScheduleRepository {
	return &postgresScheduleRepository{db: db}
}

func (r *postgresScheduleRepository) Create(ctx context.Context, schedule *models.MatchSchedule) error {
	payload, err := json.Marshal(schedule)
	if err != nil {
		return fmt.Errorf("failed to serialize schedule %s: %w", schedule.MatchID, err)
	}

	query := `
		INSERT INTO match_schedules (match_id, round_label, payload)
		VALUES ($1, $2, $3)
		ON CONFLICT (match_id) DO NOTHING`

	result, err := r.db.ExecContext(ctx, query, schedule.MatchID, schedule.RoundLabel, payload)
	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if rowsAffected == 0 {
		return ErrScheduleConflict
	}
	return nil
}

func (r *postgresScheduleRepository) GetByMatchID(ctx context.Context, matchID string) (*models.MatchSchedule, error) {
	query := `SELECT payload FROM match_schedules WHERE match_id = $1`

	var payload []byte
	err := r.db.QueryRowContext(ctx, query, matchID).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrScheduleNotFound
		}
		return nil, err
	}

	var schedule models.MatchSchedule
	if err := json.Unmarshal(payload, &schedule); err != nil {
		return nil, fmt.Errorf("failed to deserialize schedule %s: %w", matchID, err)
	}
	return &schedule, nil
}

func (r *postgresScheduleRepository) List(ctx context.Context) ([]models.MatchSchedule, error) {
	query := `SELECT payload FROM match_schedules ORDER BY round_label, match_id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var schedules []models.MatchSchedule
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var schedule models.MatchSchedule
		if err := json.Unmarshal(payload, &schedule); err != nil {
			return nil, fmt.Errorf("failed to deserialize schedule row: %w", err)
		}
		schedules = append(schedules, schedule)
	}
	return schedules, rows.Err()
}

func (r *postgresScheduleRepository) Delete(ctx context.Context, matchID string) error {
	query := `DELETE FROM match_schedules WHERE match_id = $1`

	result, err := r.db.ExecContext(ctx, query, matchID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrScheduleNotFound)
}
