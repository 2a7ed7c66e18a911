package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "fluxo/internal/errors"
	"fluxo/internal/models"
	"fluxo/internal/services"
)

// ForecastHandler handles instance generation, reconciliation, and reporting
// requests.
type ForecastHandler struct {
	forecastService services.ForecastServicer
	reportService   services.ReportServicer
	auditService    services.AuditServicer
	horizonMonths   int
}

// NewForecastHandler creates a new ForecastHandler.
func NewForecastHandler(forecastService services.ForecastServicer, reportService services.ReportServicer, auditService services.AuditServicer, horizonMonths int) *ForecastHandler {
	return &ForecastHandler{
		forecastService: forecastService,
		reportService:   reportService,
		auditService:    auditService,
		horizonMonths:   horizonMonths,
	}
}

// GenerateInstances materializes forecast instances over the horizon
// @Summary     Generate forecast instances
// @Description Expand all active rules into forecast instances over the configured horizon. Idempotent.
// @Tags        forecast
// @Produce     json
// @Param       horizon_months query int false "Override horizon in months"
// @Success     200 {object} MessageResponse "Generation complete"
// @Failure     400 {object} ErrorResponse "Invalid horizon"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /forecast/generate [post]
func (h *ForecastHandler) GenerateInstances(c *gin.Context) {
	horizon := h.horizonMonths
	if v := c.Query("horizon_months"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid horizon_months"))
			return
		}
		horizon = parsed
	}

	if err := h.forecastService.GenerateInstances(time.Now(), horizon); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Forecast instances generated"})
}

// GetYearReport builds the cash-flow timeline for a year
// @Summary     Year report
// @Description Build the per-period cash-flow timeline with category details and unmatched transactions
// @Tags        forecast
// @Produce     json
// @Param       year query int false "Year (defaults to current)"
// @Success     200 {object} services.YearReport "Report"
// @Failure     400 {object} ErrorResponse "Invalid year"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /forecast/report [get]
func (h *ForecastHandler) GetYearReport(c *gin.Context) {
	year := time.Now().Year()
	if v := c.Query("year"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1970 || parsed > 9999 {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid year"))
			return
		}
		year = parsed
	}

	report, err := h.reportService.BuildYearReport(year)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// GetCycleSummary aggregates the current accounting period
// @Summary     Current cycle summary
// @Description Income, expenses, net, and top spending categories for the accounting period containing today
// @Tags        forecast
// @Produce     json
// @Success     200 {object} services.CycleSummary "Summary"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /forecast/summary [get]
func (h *ForecastHandler) GetCycleSummary(c *gin.Context) {
	summary, err := h.reportService.CycleSummary(time.Now())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// LinkTransactionRequest represents the request payload for reconciling an
// instance against a transaction.
type LinkTransactionRequest struct {
	TransactionID string `json:"transaction_id" binding:"required,uuid"`
}

// LinkTransaction reconciles a transaction against a projected instance
// @Summary     Link transaction to instance
// @Description Realize a projected instance with a real transaction; partial settlements leave a projected remainder
// @Tags        forecast
// @Accept      json
// @Produce     json
// @Param       id path string true "Instance ID"
// @Param       request body LinkTransactionRequest true "Transaction to link"
// @Success     200 {object} MessageResponse "Instance reconciled"
// @Failure     400 {object} ErrorResponse "Invalid input or instance not projected"
// @Failure     404 {object} ErrorResponse "Instance or transaction not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /forecast/instances/{id}/link [post]
func (h *ForecastHandler) LinkTransaction(c *gin.Context) {
	instanceID, err := parsePathUUID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req LinkTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	if err := h.forecastService.LinkTransaction(req.TransactionID, instanceID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log("LINK_TRANSACTION", "forecast_instance", instanceID, c.ClientIP(),
		map[string]interface{}{"transaction_id": req.TransactionID})

	c.JSON(http.StatusOK, gin.H{"message": "Instance reconciled"})
}

// SetInstanceAmountRequest represents the request payload for overriding an
// instance amount.
type SetInstanceAmountRequest struct {
	Amount float64 `json:"amount" binding:"required"`
}

// SetInstanceAmount overrides a projected instance's amount
// @Summary     Override instance amount
// @Description Set a new amount on a projected instance for scenario editing
// @Tags        forecast
// @Accept      json
// @Produce     json
// @Param       id path string true "Instance ID"
// @Param       request body SetInstanceAmountRequest true "New amount"
// @Success     200 {object} MessageResponse "Amount updated"
// @Failure     400 {object} ErrorResponse "Invalid input or instance not projected"
// @Failure     404 {object} ErrorResponse "Instance not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /forecast/instances/{id}/amount [put]
func (h *ForecastHandler) SetInstanceAmount(c *gin.Context) {
	instanceID, err := parsePathUUID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req SetInstanceAmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	if err := h.forecastService.SetInstanceAmount(instanceID, req.Amount); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log("SET_INSTANCE_AMOUNT", "forecast_instance", instanceID, c.ClientIP(),
		map[string]interface{}{"amount": req.Amount})

	c.JSON(http.StatusOK, gin.H{"message": "Instance amount updated"})
}

// SetInstanceStatusRequest represents the request payload for setting an
// instance status.
type SetInstanceStatusRequest struct {
	Status models.InstanceStatus `json:"status" binding:"required,instance_status"`
}

// SetInstanceStatus sets an instance's status directly
// @Summary     Set instance status
// @Description Manually realize, skip, or re-project a forecast instance
// @Tags        forecast
// @Accept      json
// @Produce     json
// @Param       id path string true "Instance ID"
// @Param       request body SetInstanceStatusRequest true "New status"
// @Success     200 {object} MessageResponse "Status updated"
// @Failure     400 {object} ErrorResponse "Invalid status"
// @Failure     404 {object} ErrorResponse "Instance not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /forecast/instances/{id}/status [put]
func (h *ForecastHandler) SetInstanceStatus(c *gin.Context) {
	instanceID, err := parsePathUUID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req SetInstanceStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	if err := h.forecastService.SetInstanceStatus(instanceID, req.Status); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log("SET_INSTANCE_STATUS", "forecast_instance", instanceID, c.ClientIP(),
		map[string]interface{}{"status": req.Status})

	c.JSON(http.StatusOK, gin.H{"message": "Instance status updated"})
}
