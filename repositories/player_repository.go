package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/yerassyl04/rhythm-duel/models"
)

var (
	ErrPlayerNotFound    = errors.New("player not found")
	ErrPlayerTeamInvalid = errors.New("player references an unknown team")
)

type PlayerRepository interface {
	Create(ctx context.Context, player *models.Player) error
	CreateBatch(ctx context.Context, players []models.Player) ([]models.Player, error)
	GetByID(ctx context.Context, id int) (*models.Player, error)
	ListByTeam(ctx context.Context, teamID int) ([]models.Player, error)
	Delete(ctx context.Context, id int) error
}

type postgresPlayerRepository struct {
	db *sql.DB
}

func NewPostgresPlayerRepository(db *sql.DB) PlayerRepository {
	return &postgresPlayerRepository{db: db}
}

func (r *postgresPlayerRepository) Create(ctx context.Context, player *models.Player) error {
	query := `
		INSERT INTO players (team_id, name, profession, roster_order)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	err := r.db.QueryRowContext(ctx, query,
		player.TeamID, player.Name, player.Profession, player.RosterOrder,
	).Scan(&player.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			return ErrPlayerTeamInvalid
		}
		return err
	}
	return nil
}

// CreateBatch inserts a whole imported roster in one transaction so a bad
// line never leaves a partial roster behind.
func (r *postgresPlayerRepository) CreateBatch(ctx context.Context, players []models.Player) ([]models.Player, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin roster import transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO players (team_id, name, profession, roster_order)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	created := make([]models.Player, 0, len(players))
	for _, player := range players {
		err := tx.QueryRowContext(ctx, query,
			player.TeamID, player.Name, player.Profession, player.RosterOrder,
		).Scan(&player.ID)
		if err != nil {
			var pqErr *pq.Error
			if errors.As(err, &pqErr) && pqErr.Code == "23503" {
				return nil, ErrPlayerTeamInvalid
			}
			return nil, err
		}
		created = append(created, player)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit roster import: %w", err)
	}
	return created, nil
}

func (r *postgresPlayerRepository) GetByID(ctx context.Context, id int) (*models.Player, error) {
	query := `SELECT id, team_id, name, profession, roster_order FROM players WHERE id = $1`

	var player models.Player
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&player.ID, &player.TeamID, &player.Name, &player.Profession, &player.RosterOrder)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, err
	}
	return &player, nil
}

func (r *postgresPlayerRepository) ListByTeam(ctx context.Context, teamID int) ([]models.Player, error) {
	query := `
		SELECT id, team_id, name, profession, roster_order
		FROM players
		WHERE team_id = $1
		ORDER BY roster_order, id`

	rows, err := r.db.QueryContext(ctx, query, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var players []models.Player
	for rows.Next() {
		var player models.Player
		if err := rows.Scan(&player.ID, &player.TeamID, &player.Name, &player.Profession, &player.RosterOrder); err != nil {
			return nil, err
		}
		players = append(players, player)
	}
	return players, rows.Err()
}

func (r *postgresPlayerRepository) Delete(ctx context.Context, id int) error {
	query := `DELETE FROM players WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}
