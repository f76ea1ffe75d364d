package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/yerassyl04/rhythm-duel/models"
	"github.com/yerassyl04/rhythm-duel/repositories"
	"github.com/yerassyl04/rhythm-duel/storage"
)

type SongService interface {
	Create(ctx context.Context, title, difficulty string) (*models.Song, error)
	GetByID(ctx context.Context, id int) (*models.Song, error)
	List(ctx context.Context) ([]models.Song, error)
	Delete(ctx context.Context, id int) error
	UploadJacket(ctx context.Context, id int, contentType string, reader io.Reader) (*models.Song, error)
	RemoveJacket(ctx context.Context, id int) (*models.Song, error)
}

type songService struct {
	songRepo repositories.SongRepository
	uploader storage.FileUploader
}

func NewSongService(songRepo repositories.SongRepository, uploader storage.FileUploader) SongService {
	return &songService{songRepo: songRepo, uploader: uploader}
}

func (s *songService) Create(ctx context.Context, title, difficulty string) (*models.Song, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrSongTitleRequired
	}

	song := &models.Song{Title: title, Difficulty: strings.TrimSpace(difficulty)}
	if err := s.songRepo.Create(ctx, song); err != nil {
		return nil, err
	}
	return song, nil
}

func (s *songService) GetByID(ctx context.Context, id int) (*models.Song, error) {
	song, err := s.songRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrSongNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	s.fillJacketURL(song)
	return song, nil
}

func (s *songService) List(ctx context.Context) ([]models.Song, error) {
	songs, err := s.songRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range songs {
		s.fillJacketURL(&songs[i])
	}
	return songs, nil
}

func (s *songService) Delete(ctx context.Context, id int) error {
	if err := s.songRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrSongNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (s *songService) UploadJacket(ctx context.Context, id int, contentType string, reader io.Reader) (*models.Song, error) {
	if s.uploader == nil {
		return nil, ErrUploaderNotConfigured
	}
	if _, err := s.songRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrSongNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	key := fmt.Sprintf("songs/%d/jacket", id)
	if _, err := s.uploader.Upload(ctx, key, contentType, reader); err != nil {
		return nil, fmt.Errorf("failed to upload song jacket: %w", err)
	}
	if err := s.songRepo.UpdateJacketKey(ctx, id, &key); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}

// RemoveJacket deletes the stored object and clears the key. A song without a
// jacket is not an error; the call is a no-op then.
func (s *songService) RemoveJacket(ctx context.Context, id int) (*models.Song, error) {
	if s.uploader == nil {
		return nil, ErrUploaderNotConfigured
	}
	song, err := s.songRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrSongNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if song.JacketKey == nil {
		return song, nil
	}

	if err := s.uploader.Delete(ctx, *song.JacketKey); err != nil {
		return nil, fmt.Errorf("failed to delete song jacket: %w", err)
	}
	if err := s.songRepo.UpdateJacketKey(ctx, id, nil); err != nil {
		return nil, err
	}
	song.JacketKey = nil
	song.JacketURL = nil
	return song, nil
}

func (s *songService) fillJacketURL(song *models.Song) {
	if s.uploader != nil && song.JacketKey != nil {
		url := s.uploader.GetPublicURL(*song.JacketKey)
		song.JacketURL = &url
	}
}
