package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "fluxo/internal/errors"
	"fluxo/internal/models"
	"fluxo/internal/pagination"
	"fluxo/internal/services"
)

// RuleHandler handles forecast rule requests.
type RuleHandler struct {
	ruleService  services.RuleServicer
	auditService services.AuditServicer
}

// NewRuleHandler creates a new RuleHandler.
func NewRuleHandler(ruleService services.RuleServicer, auditService services.AuditServicer) *RuleHandler {
	return &RuleHandler{ruleService: ruleService, auditService: auditService}
}

// CreateRuleRequest represents the request payload for creating a forecast rule
type CreateRuleRequest struct {
	Name              string          `json:"name" binding:"required,max=200"`
	Type              models.RuleType `json:"type" binding:"required,rule_type"`
	Amount            float64         `json:"amount" binding:"required"`
	Currency          string          `json:"currency" binding:"omitempty,iso4217"`
	AccountID         string          `json:"account_id" binding:"omitempty,uuid"`
	Category          string          `json:"category" binding:"max=100"`
	StartDate         string          `json:"start_date" binding:"required"`
	EndDate           *string         `json:"end_date"`
	Frequency         string          `json:"frequency" binding:"omitempty,frequency"`
	DayOfMonth        int             `json:"day_of_month" binding:"omitempty,min=1,max=31"`
	InstallmentsCount *int            `json:"installments_count" binding:"omitempty,min=1"`
}

// CreateRule handles the creation of a forecast rule
// @Summary     Create a forecast rule
// @Description Create a recurring, one-off, installment, or budget rule. Budget rules replace any existing active budget for the same category.
// @Tags        rules
// @Accept      json
// @Produce     json
// @Param       request body CreateRuleRequest true "Rule details"
// @Success     201 {object} models.ForecastRule "Rule created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /rules [post]
func (h *RuleHandler) CreateRule(c *gin.Context) {
	var req CreateRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	startDate, err := parseFlexibleTime(req.StartDate)
	if err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid start_date format, use RFC3339 or YYYY-MM-DD"))
		return
	}

	var endDate *time.Time
	if req.EndDate != nil && *req.EndDate != "" {
		parsed, parseErr := parseFlexibleTime(*req.EndDate)
		if parseErr != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid end_date format, use RFC3339 or YYYY-MM-DD"))
			return
		}
		endDate = &parsed
	}

	rule, err := h.ruleService.CreateRule(services.RuleInput{
		Name:              req.Name,
		Type:              req.Type,
		Amount:            req.Amount,
		Currency:          req.Currency,
		AccountID:         req.AccountID,
		Category:          req.Category,
		StartDate:         startDate,
		EndDate:           endDate,
		Frequency:         req.Frequency,
		DayOfMonth:        req.DayOfMonth,
		InstallmentsCount: req.InstallmentsCount,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log("CREATE_RULE", "forecast_rule", rule.ID, c.ClientIP(),
		map[string]interface{}{"type": req.Type, "amount": req.Amount, "category": req.Category})

	c.JSON(http.StatusCreated, gin.H{"rule": rule})
}

// GetRules returns a paginated rule list
// @Summary     List forecast rules
// @Description Get forecast rules with optional type and active filters
// @Tags        rules
// @Produce     json
// @Param       page query int false "Page number"
// @Param       page_size query int false "Page size"
// @Param       is_active query bool false "Filter by active state"
// @Param       type query string false "Filter by rule type"
// @Success     200 {object} pagination.PageResponse[models.ForecastRule] "Rules"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /rules [get]
func (h *RuleHandler) GetRules(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	var isActive *bool
	if v := c.Query("is_active"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid is_active, must be true or false"))
			return
		}
		isActive = &parsed
	}

	var ruleType *models.RuleType
	if v := c.Query("type"); v != "" {
		rt := models.RuleType(v)
		switch rt {
		case models.RuleTypeRecurring, models.RuleTypeOneOff, models.RuleTypeInstallment, models.RuleTypeBudget:
			ruleType = &rt
		default:
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid type, must be recurring, one_off, installment, or budget"))
			return
		}
	}

	result, err := h.ruleService.GetRules(page, isActive, ruleType)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetRule returns a single rule
// @Summary     Get forecast rule
// @Description Get a forecast rule by ID
// @Tags        rules
// @Produce     json
// @Param       id path string true "Rule ID"
// @Success     200 {object} models.ForecastRule "Rule"
// @Failure     400 {object} ErrorResponse "Invalid rule ID"
// @Failure     404 {object} ErrorResponse "Rule not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /rules/{id} [get]
func (h *RuleHandler) GetRule(c *gin.Context) {
	ruleID, err := parsePathUUID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	rule, err := h.ruleService.GetRuleByID(ruleID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"rule": rule})
}

// DeactivateRule deactivates a rule
// @Summary     Deactivate forecast rule
// @Description Deactivate a rule and remove its still-projected instances
// @Tags        rules
// @Produce     json
// @Param       id path string true "Rule ID"
// @Success     200 {object} MessageResponse "Rule deactivated"
// @Failure     400 {object} ErrorResponse "Invalid rule ID"
// @Failure     404 {object} ErrorResponse "Rule not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /rules/{id} [delete]
func (h *RuleHandler) DeactivateRule(c *gin.Context) {
	ruleID, err := parsePathUUID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.ruleService.DeactivateRule(ruleID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log("DEACTIVATE_RULE", "forecast_rule", ruleID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Rule deactivated successfully"})
}
