package services

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"gorm.io/gorm"

	"fluxo/internal/cycle"
	apperrors "fluxo/internal/errors"
	"fluxo/internal/logger"
	"fluxo/internal/models"
)

const (
	// generationLookbackDays widens the existence preload so budget
	// instances anchored before the nominal window start (a period's custom
	// start can precede it) are still recognized as already generated.
	generationLookbackDays = 45

	// settlementTolerance absorbs rounding differences when comparing a
	// transaction against an instance during reconciliation.
	settlementTolerance = 0.05

	insertBatchSize = 100
)

// forecastService implements instance generation and reconciliation.
type forecastService struct {
	db           *gorm.DB
	cycleService CycleServicer

	// genMu serializes generation runs. The existence-check-then-insert
	// idempotency contract is not transactional; concurrent runs could both
	// pass the check and produce duplicate (rule_id, date) pairs.
	genMu sync.Mutex
}

// NewForecastService creates a new ForecastServicer.
func NewForecastService(db *gorm.DB, cycleService CycleServicer) ForecastServicer {
	return &forecastService{db: db, cycleService: cycleService}
}

// GenerateInstances materializes forecast instances for every active rule
// within [start, start+horizonMonths]. The operation is idempotent and safe
// to call on every page load: dates that already carry an instance for the
// rule are skipped, existing rows are never updated or deleted, and one
// malformed rule does not abort generation for the rest.
func (s *forecastService) GenerateInstances(start time.Time, horizonMonths int) error {
	if horizonMonths <= 0 {
		return apperrors.ErrInvalidHorizon
	}

	s.genMu.Lock()
	defer s.genMu.Unlock()

	windowStart := cycle.DateOnly(start)
	windowEnd := cycle.AddMonthsClamped(windowStart, horizonMonths)

	cal, err := s.cycleService.Calendar()
	if err != nil {
		return err
	}

	var rules []models.ForecastRule
	if err := s.db.Where("is_active = ?", true).Find(&rules).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	existing, err := s.loadExistingPairs(windowStart.AddDate(0, 0, -generationLookbackDays), windowEnd)
	if err != nil {
		return err
	}

	var inserts []models.ForecastInstance
	for i := range rules {
		rule := &rules[i]

		sched, err := newSchedule(rule)
		if err != nil {
			logger.Get().Warnw("skipping malformed forecast rule",
				"rule_id", rule.ID,
				"rule_name", rule.Name,
				"error", err.Error(),
			)
			continue
		}

		for _, d := range sched.dates(windowStart, windowEnd, cal) {
			key := instancePairKey(rule.ID, d)
			if existing[key] {
				continue
			}
			existing[key] = true
			inserts = append(inserts, models.ForecastInstance{
				RuleID: rule.ID,
				Date:   d,
				Amount: rule.Amount,
				Status: models.InstanceStatusProjected,
			})
		}
	}

	if len(inserts) == 0 {
		return nil
	}
	if err := s.db.CreateInBatches(inserts, insertBatchSize).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	logger.Get().Infow("forecast instances generated",
		"count", len(inserts),
		"window_start", windowStart.Format("2006-01-02"),
		"window_end", windowEnd.Format("2006-01-02"),
	)
	return nil
}

// loadExistingPairs performs the single batched existence check for the
// candidate date range, keyed by (rule_id, date).
func (s *forecastService) loadExistingPairs(from, to time.Time) (map[string]bool, error) {
	var rows []models.ForecastInstance
	err := s.db.Select("rule_id", "date").
		Where("date BETWEEN ? AND ?", from, to).
		Find(&rows).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	pairs := make(map[string]bool, len(rows))
	for i := range rows {
		pairs[instancePairKey(rows[i].RuleID, rows[i].Date)] = true
	}
	return pairs, nil
}

func instancePairKey(ruleID string, date time.Time) string {
	return fmt.Sprintf("%s|%s", ruleID, cycle.DateOnly(date).Format("2006-01-02"))
}

// LinkTransaction reconciles a real transaction against a projected
// instance. A transaction within tolerance of the instance's effective
// amount realizes it outright; a smaller transaction realizes the instance
// at the transaction's amount and leaves a sibling projected instance
// carrying the remainder on the same rule and date.
func (s *forecastService) LinkTransaction(transactionID, instanceID string) error {
	var transaction models.Transaction
	if err := s.db.First(&transaction, "id = ?", transactionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrTransactionNotFound
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	instance, err := s.GetInstanceByID(instanceID)
	if err != nil {
		return err
	}
	if instance.Status != models.InstanceStatusProjected {
		return apperrors.ErrInstanceNotProjected
	}

	txAmount := transaction.LedgerAmount()
	instAmount := instance.Amount
	partial := math.Abs(txAmount) < math.Abs(instAmount)-settlementTolerance

	return s.db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"status":         models.InstanceStatusRealized,
			"transaction_id": transaction.ID,
			"amount":         txAmount,
		}
		if err := tx.Model(instance).Updates(updates).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		if !partial {
			return nil
		}

		// The unpaid remainder stays pending as a sibling instance sharing
		// the (rule_id, date) pair; aggregation sums siblings.
		remainder := models.ForecastInstance{
			RuleID: instance.RuleID,
			Date:   instance.Date,
			Amount: instAmount - txAmount,
			Status: models.InstanceStatusProjected,
			Note:   fmt.Sprintf("Remainder after partial settlement by transaction %s", transaction.ID),
		}
		if err := tx.Create(&remainder).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}

// SetInstanceAmount overrides a projected instance's amount for scenario
// editing. Realized instances reflect what actually happened and cannot be
// overridden.
func (s *forecastService) SetInstanceAmount(instanceID string, amount float64) error {
	instance, err := s.GetInstanceByID(instanceID)
	if err != nil {
		return err
	}
	if instance.Status != models.InstanceStatusProjected {
		return apperrors.ErrInstanceNotProjected
	}

	if err := s.db.Model(instance).Update("amount", amount).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// SetInstanceStatus sets an instance's status directly (manual realize or
// skip). Skipped instances are excluded from both actual and projected
// totals.
func (s *forecastService) SetInstanceStatus(instanceID string, status models.InstanceStatus) error {
	switch status {
	case models.InstanceStatusProjected, models.InstanceStatusRealized, models.InstanceStatusSkipped:
	default:
		return apperrors.ErrInvalidStatus
	}

	instance, err := s.GetInstanceByID(instanceID)
	if err != nil {
		return err
	}

	if err := s.db.Model(instance).Update("status", status).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// GetInstanceByID returns a forecast instance by ID.
func (s *forecastService) GetInstanceByID(instanceID string) (*models.ForecastInstance, error) {
	var instance models.ForecastInstance
	if err := s.db.First(&instance, "id = ?", instanceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInstanceNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &instance, nil
}
