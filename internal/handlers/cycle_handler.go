package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "fluxo/internal/errors"
	"fluxo/internal/services"
)

// CycleHandler handles accounting-period override requests.
type CycleHandler struct {
	cycleService services.CycleServicer
	auditService services.AuditServicer
}

// NewCycleHandler creates a new CycleHandler.
func NewCycleHandler(cycleService services.CycleServicer, auditService services.AuditServicer) *CycleHandler {
	return &CycleHandler{cycleService: cycleService, auditService: auditService}
}

// UpsertCycleRequest represents the request payload for overriding a cycle
type UpsertCycleRequest struct {
	Key       string `json:"key" binding:"required,period_key"`
	StartDate string `json:"start_date" binding:"required"`
	EndDate   string `json:"end_date" binding:"required"`
}

// UpsertCycle stores or replaces a period override
// @Summary     Override an accounting period
// @Description Set custom start and end dates for one accounting period. Projected budget instances are regenerated against the new boundaries.
// @Tags        cycles
// @Accept      json
// @Produce     json
// @Param       request body UpsertCycleRequest true "Cycle override"
// @Success     200 {object} models.CyclePeriod "Cycle stored"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /cycles [put]
func (h *CycleHandler) UpsertCycle(c *gin.Context) {
	var req UpsertCycleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	startDate, err := parseFlexibleTime(req.StartDate)
	if err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid start_date format, use RFC3339 or YYYY-MM-DD"))
		return
	}
	endDate, err := parseFlexibleTime(req.EndDate)
	if err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid end_date format, use RFC3339 or YYYY-MM-DD"))
		return
	}

	period, err := h.cycleService.UpsertCycle(req.Key, startDate, endDate)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log("UPSERT_CYCLE", "cycle_period", period.Key, c.ClientIP(),
		map[string]interface{}{"start_date": req.StartDate, "end_date": req.EndDate})

	c.JSON(http.StatusOK, gin.H{"cycle": period})
}

// GetCycles returns all period overrides
// @Summary     List accounting period overrides
// @Description Get all custom accounting period boundaries ordered by key
// @Tags        cycles
// @Produce     json
// @Success     200 {array} models.CyclePeriod "Cycles"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /cycles [get]
func (h *CycleHandler) GetCycles(c *gin.Context) {
	cycles, err := h.cycleService.GetCycles()
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"cycles": cycles})
}
