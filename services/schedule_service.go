package services

import (
	"context"
	"errors"

	"github.com/yerassyl04/rhythm-duel/models"
	"github.com/yerassyl04/rhythm-duel/repositories"
)

type ScheduleService interface {
	Create(ctx context.Context, schedule *models.MatchSchedule) (*models.MatchSchedule, error)
	GetByMatchID(ctx context.Context, matchID string) (*models.MatchSchedule, error)
	List(ctx context.Context) ([]models.MatchSchedule, error)
	Delete(ctx context.Context, matchID string) error
}

type scheduleService struct {
	scheduleRepo repositories.ScheduleRepository
	teamRepo     repositories.TeamRepository
	playerRepo   repositories.PlayerRepository
}

func NewScheduleService(
	scheduleRepo repositories.ScheduleRepository,
	teamRepo repositories.TeamRepository,
	playerRepo repositories.PlayerRepository,
) ScheduleService {
	return &scheduleService{scheduleRepo: scheduleRepo, teamRepo: teamRepo, playerRepo: playerRepo}
}

// Create validates a schedule against the team store and fills in the
// denormalized side data (team names, ordered rosters) from it.
func (s *scheduleService) Create(ctx context.Context, schedule *models.MatchSchedule) (*models.MatchSchedule, error) {
	if schedule.MatchID == "" || len(schedule.Songs) == 0 ||
		schedule.SideA.TeamID == 0 || schedule.SideB.TeamID == 0 {
		return nil, ErrScheduleIncomplete
	}

	for _, side := range []*models.ScheduleSide{&schedule.SideA, &schedule.SideB} {
		team, err := s.teamRepo.GetByID(ctx, side.TeamID)
		if err != nil {
			if errors.Is(err, repositories.ErrTeamNotFound) {
				return nil, ErrNotFound
			}
			return nil, err
		}
		side.TeamName = team.Name

		if len(side.Roster) == 0 {
			roster, err := s.playerRepo.ListByTeam(ctx, side.TeamID)
			if err != nil {
				return nil, err
			}
			side.Roster = roster
		}
		if len(side.Roster) == 0 {
			return nil, ErrScheduleIncomplete
		}
	}

	if err := s.scheduleRepo.Create(ctx, schedule); err != nil {
		if errors.Is(err, repositories.ErrScheduleConflict) {
			return nil, ErrScheduleConflict
		}
		return nil, err
	}
	return schedule, nil
}

func (s *scheduleService) GetByMatchID(ctx context.Context, matchID string) (*models.MatchSchedule, error) {
	schedule, err := s.scheduleRepo.GetByMatchID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrScheduleNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return schedule, nil
}

func (s *scheduleService) List(ctx context.Context) ([]models.MatchSchedule, error) {
	return s.scheduleRepo.List(ctx)
}

func (s *scheduleService) Delete(ctx context.Context, matchID string) error {
	if err := s.scheduleRepo.Delete(ctx, matchID); err != nil {
		if errors.Is(err, repositories.ErrScheduleNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}
