package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/yerassyl04/rhythm-duel/models"
)

var ErrSongNotFound = errors.New("song not found")

type SongRepository interface {
	Create(ctx context.Context, song *models.Song) error
	GetByID(ctx context.Context, id int) (*models.Song, error)
	List(ctx context.Context) ([]models.Song, error)
	UpdateJacketKey(ctx context.Context, id int, key *string) error
	Delete(ctx context.Context, id int) error
}

type postgresSongRepository struct {
	db *sql.DB
}

func NewPostgresSongRepository(db *sql.DB) SongRepository {
	return &postgresSongRepository{db: db}
}

func (r *postgresSongRepository) Create(ctx context.Context, song *models.Song) error {
	query := `
		INSERT INTO songs (title, difficulty, jacket_key)
		VALUES ($1, $2, $3)
		RETURNING id`

	return r.db.QueryRowContext(ctx, query, song.Title, song.Difficulty, song.JacketKey).
		Scan(&song.ID)
}

func (r *postgresSongRepository) GetByID(ctx context.Context, id int) (*models.Song, error) {
	query := `SELECT id, title, difficulty, jacket_key FROM songs WHERE id = $1`

	var song models.Song
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&song.ID, &song.Title, &song.Difficulty, &song.JacketKey)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSongNotFound
		}
		return nil, err
	}
	return &song, nil
}

func (r *postgresSongRepository) List(ctx context.Context) ([]models.Song, error) {
	query := `SELECT id, title, difficulty, jacket_key FROM songs ORDER BY title`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var songs []models.Song
	for rows.Next() {
		var song models.Song
		if err := rows.Scan(&song.ID, &song.Title, &song.Difficulty, &song.JacketKey); err != nil {
			return nil, err
		}
		songs = append(songs, song)
	}
	return songs, rows.Err()
}

func (r *postgresSongRepository) UpdateJacketKey(ctx context.Context, id int, key *string) error {
	query := `UPDATE songs SET jacket_key = $1 WHERE id = $2`

	result, err := r.db.ExecContext(ctx, query, key, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrSongNotFound)
}

func (r *postgresSongRepository) Delete(ctx context.Context, id int) error {
	query := `DELETE FROM songs WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrSongNotFound)
}
