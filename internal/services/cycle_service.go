package services

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"fluxo/internal/cycle"
	apperrors "fluxo/internal/errors"
	"fluxo/internal/models"
)

// cycleService manages custom accounting-period overrides.
type cycleService struct {
	db *gorm.DB
}

// NewCycleService creates a new CycleServicer.
func NewCycleService(db *gorm.DB) CycleServicer {
	return &cycleService{db: db}
}

// UpsertCycle stores or replaces the override for one period key. Budget
// instances are anchored on period starts, so changing a period's boundaries
// invalidates projected budget instances; they are dropped and regenerate on
// the next generation run against the new calendar.
func (s *cycleService) UpsertCycle(key string, startDate, endDate time.Time) (*models.CyclePeriod, error) {
	if _, _, err := cycle.ParseKey(key); err != nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidPeriod, err.Error())
	}
	start := cycle.DateOnly(startDate)
	end := cycle.DateOnly(endDate)
	if end.Before(start) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidCycle, "cycle end date precedes start date")
	}

	period := &models.CyclePeriod{Key: key, StartDate: start, EndDate: end}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"start_date", "end_date", "updated_at"}),
		}).Create(period).Error; err != nil {
			return err
		}

		return tx.
			Where("status = ? AND rule_id IN (?)",
				models.InstanceStatusProjected,
				tx.Model(&models.ForecastRule{}).Select("id").Where("type = ?", models.RuleTypeBudget),
			).
			Delete(&models.ForecastInstance{}).Error
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return period, nil
}

// GetCycles returns all cycle overrides ordered by key.
func (s *cycleService) GetCycles() ([]models.CyclePeriod, error) {
	var cycles []models.CyclePeriod
	if err := s.db.Order("key").Find(&cycles).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return cycles, nil
}

// Calendar builds a calendar carrying the current overrides.
func (s *cycleService) Calendar() (*cycle.Calendar, error) {
	cycles, err := s.GetCycles()
	if err != nil {
		return nil, err
	}
	return cycle.NewCalendar(cycles), nil
}
