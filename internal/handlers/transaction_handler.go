package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "fluxo/internal/errors"
	"fluxo/internal/pagination"
	"fluxo/internal/services"
	"fluxo/internal/uuid"
)

// TransactionHandler handles transaction-related requests.
type TransactionHandler struct {
	transactionService services.TransactionServicer
	ruleService        services.RuleServicer
	auditService       services.AuditServicer
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(transactionService services.TransactionServicer, ruleService services.RuleServicer, auditService services.AuditServicer) *TransactionHandler {
	return &TransactionHandler{
		transactionService: transactionService,
		ruleService:        ruleService,
		auditService:       auditService,
	}
}

// CreateTransactionRequest represents the request payload for creating a transaction
type CreateTransactionRequest struct {
	AccountID   string  `json:"account_id" binding:"required,uuid"`
	Amount      float64 `json:"amount" binding:"required"`
	Description string  `json:"description" binding:"max=500"`
	Category    string  `json:"category" binding:"max=100"`
	Date        string  `json:"date" binding:"required"`
}

// CreateTransaction handles the creation of a manual transaction
// @Summary     Create a transaction
// @Description Record a manual transaction on an account
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Param       request body CreateTransactionRequest true "Transaction details"
// @Success     201 {object} models.Transaction "Transaction created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Account not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions [post]
func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	date, err := parseFlexibleTime(req.Date)
	if err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid date format, use RFC3339 or YYYY-MM-DD"))
		return
	}

	transaction, err := h.transactionService.CreateManualTransaction(req.AccountID, req.Description, req.Category, req.Amount, date)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log("CREATE_TRANSACTION", "transaction", transaction.ID, c.ClientIP(),
		map[string]interface{}{"amount": req.Amount, "account_id": req.AccountID})

	c.JSON(http.StatusCreated, gin.H{"transaction": transaction})
}

// UpdateTransactionRequest represents the request payload for updating a transaction
type UpdateTransactionRequest struct {
	Amount      float64 `json:"amount" binding:"required"`
	Description string  `json:"description" binding:"max=500"`
	Category    string  `json:"category" binding:"max=100"`
	Date        string  `json:"date" binding:"required"`
}

// UpdateTransaction handles editing a transaction
// @Summary     Update transaction
// @Description Update a transaction's date, amount, description, and category
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Param       id path string true "Transaction ID"
// @Param       request body UpdateTransactionRequest true "Updated fields"
// @Success     200 {object} models.Transaction "Transaction updated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/{id} [put]
func (h *TransactionHandler) UpdateTransaction(c *gin.Context) {
	transactionID, err := parsePathUUID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	date, err := parseFlexibleTime(req.Date)
	if err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid date format, use RFC3339 or YYYY-MM-DD"))
		return
	}

	transaction, err := h.transactionService.UpdateTransaction(transactionID, date, req.Description, req.Category, req.Amount)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log("UPDATE_TRANSACTION", "transaction", transaction.ID, c.ClientIP(),
		map[string]interface{}{"amount": req.Amount})

	c.JSON(http.StatusOK, gin.H{"transaction": transaction})
}

// BulkCategoryRequest represents the request payload for bulk category assignment
type BulkCategoryRequest struct {
	TransactionIDs []string `json:"transaction_ids" binding:"required,min=1,dive,uuid"`
	Category       string   `json:"category" binding:"required,max=100"`
}

// BulkAssignCategory assigns a category to a batch of transactions
// @Summary     Bulk assign category
// @Description Assign the same category to multiple transactions at once
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Param       request body BulkCategoryRequest true "Transaction IDs and category"
// @Success     200 {object} MessageResponse "Category assigned"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/bulk-category [post]
func (h *TransactionHandler) BulkAssignCategory(c *gin.Context) {
	var req BulkCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	if err := h.transactionService.BulkAssignCategory(req.TransactionIDs, req.Category); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log("BULK_ASSIGN_CATEGORY", "transaction", "", c.ClientIP(),
		map[string]interface{}{"category": req.Category, "count": len(req.TransactionIDs)})

	c.JSON(http.StatusOK, gin.H{"message": "Category assigned successfully"})
}

// ApplyPlanRequest represents the request payload for deriving a forecast
// rule from a transaction.
type ApplyPlanRequest struct {
	Kind        services.PlanKind `json:"kind" binding:"required"`
	MonthsAhead int               `json:"months_ahead" binding:"omitempty,min=1,max=36"`
}

// ApplyPlan derives a forecast rule from an existing transaction
// @Summary     Apply a transaction plan
// @Description Derive a forecast rule from a transaction (pay in 30 days or repeat monthly)
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Param       id path string true "Transaction ID"
// @Param       request body ApplyPlanRequest true "Plan details"
// @Success     201 {object} models.ForecastRule "Derived rule"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/{id}/plan [post]
func (h *TransactionHandler) ApplyPlan(c *gin.Context) {
	transactionID, err := parsePathUUID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req ApplyPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	rule, err := h.ruleService.ApplyTransactionPlan(transactionID, services.TransactionPlan{
		Kind:        req.Kind,
		MonthsAhead: req.MonthsAhead,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log("APPLY_TRANSACTION_PLAN", "forecast_rule", rule.ID, c.ClientIP(),
		map[string]interface{}{"kind": req.Kind, "transaction_id": transactionID})

	c.JSON(http.StatusCreated, gin.H{"rule": rule})
}

// GetTransactions returns a paginated transaction list
// @Summary     List transactions
// @Description Get transactions with optional date, category, account, and amount filters
// @Tags        transactions
// @Produce     json
// @Param       page query int false "Page number"
// @Param       page_size query int false "Page size"
// @Param       from_date query string false "Start date (RFC3339 or YYYY-MM-DD)"
// @Param       to_date query string false "End date (RFC3339 or YYYY-MM-DD)"
// @Param       category query string false "Category filter"
// @Param       account_id query string false "Account filter"
// @Param       min_amount query number false "Minimum amount"
// @Param       max_amount query number false "Maximum amount"
// @Success     200 {object} pagination.PageResponse[models.Transaction] "Transactions"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions [get]
func (h *TransactionHandler) GetTransactions(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	filter, err := parseTransactionFilter(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.transactionService.GetTransactions(page, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func parseTransactionFilter(c *gin.Context) (services.TransactionFilter, error) {
	var filter services.TransactionFilter

	if v := c.Query("from_date"); v != "" {
		t, err := parseFlexibleTime(v)
		if err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid from_date format, use RFC3339 or YYYY-MM-DD")
		}
		filter.FromDate = &t
	}

	if v := c.Query("to_date"); v != "" {
		t, err := parseFlexibleTime(v)
		if err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid to_date format, use RFC3339 or YYYY-MM-DD")
		}
		filter.ToDate = &t
	}

	if v := c.Query("category"); v != "" {
		filter.Category = &v
	}

	if v := c.Query("account_id"); v != "" {
		if !uuid.IsValid(v) {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid account_id")
		}
		filter.AccountID = &v
	}

	if v := c.Query("min_amount"); v != "" {
		amount, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid min_amount")
		}
		filter.MinAmount = &amount
	}

	if v := c.Query("max_amount"); v != "" {
		amount, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid max_amount")
		}
		filter.MaxAmount = &amount
	}

	return filter, nil
}

// GetTransaction returns a single transaction
// @Summary     Get transaction
// @Description Get a transaction by ID
// @Tags        transactions
// @Produce     json
// @Param       id path string true "Transaction ID"
// @Success     200 {object} models.Transaction "Transaction"
// @Failure     400 {object} ErrorResponse "Invalid transaction ID"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/{id} [get]
func (h *TransactionHandler) GetTransaction(c *gin.Context) {
	transactionID, err := parsePathUUID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	transaction, err := h.transactionService.GetTransactionByID(transactionID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": transaction})
}

// DeleteTransaction removes a transaction
// @Summary     Delete transaction
// @Description Delete a transaction by ID; linked forecast instances revert to projected
// @Tags        transactions
// @Produce     json
// @Param       id path string true "Transaction ID"
// @Success     200 {object} MessageResponse "Transaction deleted"
// @Failure     400 {object} ErrorResponse "Invalid transaction ID"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/{id} [delete]
func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
	transactionID, err := parsePathUUID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.transactionService.DeleteTransaction(transactionID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log("DELETE_TRANSACTION", "transaction", transactionID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Transaction deleted successfully"})
}
