package services

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/yerassyl04/rhythm-duel/models"
	"github.com/yerassyl04/rhythm-duel/repositories"
	"github.com/yerassyl04/rhythm-duel/storage"
)

type TeamService interface {
	Create(ctx context.Context, name string) (*models.Team, error)
	GetByID(ctx context.Context, id int) (*models.Team, error)
	List(ctx context.Context) ([]models.Team, error)
	Rename(ctx context.Context, id int, name string) (*models.Team, error)
	Delete(ctx context.Context, id int) error
	UploadLogo(ctx context.Context, id int, contentType string, reader io.Reader) (*models.Team, error)
	RemoveLogo(ctx context.Context, id int) (*models.Team, error)
	ImportRoster(ctx context.Context, teamID int, reader io.Reader) ([]models.Player, error)
	ListRoster(ctx context.Context, teamID int) ([]models.Player, error)
}

type teamService struct {
	teamRepo   repositories.TeamRepository
	playerRepo repositories.PlayerRepository
	uploader   storage.FileUploader
}

func NewTeamService(teamRepo repositories.TeamRepository, playerRepo repositories.PlayerRepository, uploader storage.FileUploader) TeamService {
	return &teamService{teamRepo: teamRepo, playerRepo: playerRepo, uploader: uploader}
}

func (s *teamService) Create(ctx context.Context, name string) (*models.Team, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrTeamNameRequired
	}

	team := &models.Team{Name: name}
	if err := s.teamRepo.Create(ctx, team); err != nil {
		if errors.Is(err, repositories.ErrTeamNameConflict) {
			return nil, ErrTeamNameConflict
		}
		return nil, err
	}
	return team, nil
}

func (s *teamService) GetByID(ctx context.Context, id int) (*models.Team, error) {
	team, err := s.teamRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	s.fillLogoURL(team)
	return team, nil
}

func (s *teamService) List(ctx context.Context) ([]models.Team, error) {
	teams, err := s.teamRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range teams {
		s.fillLogoURL(&teams[i])
	}
	return teams, nil
}

func (s *teamService) Rename(ctx context.Context, id int, name string) (*models.Team, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrTeamNameRequired
	}

	team, err := s.teamRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	team.Name = name
	if err := s.teamRepo.Update(ctx, team); err != nil {
		switch {
		case errors.Is(err, repositories.ErrTeamNameConflict):
			return nil, ErrTeamNameConflict
		case errors.Is(err, repositories.ErrTeamNotFound):
			return nil, ErrNotFound
		}
		return nil, err
	}
	s.fillLogoURL(team)
	return team, nil
}

func (s *teamService) Delete(ctx context.Context, id int) error {
	if err := s.teamRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (s *teamService) UploadLogo(ctx context.Context, id int, contentType string, reader io.Reader) (*models.Team, error) {
	if s.uploader == nil {
		return nil, ErrUploaderNotConfigured
	}
	if _, err := s.teamRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	key := fmt.Sprintf("teams/%d/logo", id)
	if _, err := s.uploader.Upload(ctx, key, contentType, reader); err != nil {
		return nil, fmt.Errorf("failed to upload team logo: %w", err)
	}
	if err := s.teamRepo.UpdateLogoKey(ctx, id, &key); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}

// RemoveLogo deletes the stored object and clears the key. A team without a
// logo is not an error; the call is a no-op then.
func (s *teamService) RemoveLogo(ctx context.Context, id int) (*models.Team, error) {
	if s.uploader == nil {
		return nil, ErrUploaderNotConfigured
	}
	team, err := s.teamRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if team.LogoKey == nil {
		return team, nil
	}

	if err := s.uploader.Delete(ctx, *team.LogoKey); err != nil {
		return nil, fmt.Errorf("failed to delete team logo: %w", err)
	}
	if err := s.teamRepo.UpdateLogoKey(ctx, id, nil); err != nil {
		return nil, err
	}
	team.LogoKey = nil
	team.LogoURL = nil
	return team, nil
}

// ImportRoster reads a CSV of "name,profession" lines and replaces nothing:
// imported players are appended after the team's current roster order.
func (s *teamService) ImportRoster(ctx context.Context, teamID int, reader io.Reader) ([]models.Player, error) {
	existing, err := s.playerRepo.ListByTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}
	order := len(existing)

	r := csv.NewReader(reader)
	r.FieldsPerRecord = -1

	var players []models.Player
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrRosterImportBadLine, err)
		}
		if len(record) < 2 {
			return nil, fmt.Errorf("%w: expected name,profession", ErrRosterImportBadLine)
		}
		name := strings.TrimSpace(record[0])
		profession := models.Profession(strings.ToLower(strings.TrimSpace(record[1])))
		if name == "" {
			return nil, fmt.Errorf("%w: empty player name", ErrRosterImportBadLine)
		}
		if !models.ValidProfession(profession) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownProfession, profession)
		}
		players = append(players, models.Player{
			TeamID:      teamID,
			Name:        name,
			Profession:  profession,
			RosterOrder: order,
		})
		order++
	}
	if len(players) == 0 {
		return nil, fmt.Errorf("%w: no player lines", ErrRosterImportBadLine)
	}

	created, err := s.playerRepo.CreateBatch(ctx, players)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerTeamInvalid) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return created, nil
}

func (s *teamService) ListRoster(ctx context.Context, teamID int) ([]models.Player, error) {
	return s.playerRepo.ListByTeam(ctx, teamID)
}

func (s *teamService) fillLogoURL(team *models.Team) {
	if s.uploader != nil && team.LogoKey != nil {
		url := s.uploader.GetPublicURL(*team.LogoKey)
		team.LogoURL = &url
	}
}
