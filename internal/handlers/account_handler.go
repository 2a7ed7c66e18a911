package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "fluxo/internal/errors"
	"fluxo/internal/models"
	"fluxo/internal/services"
)

// AccountHandler handles account-related requests.
type AccountHandler struct {
	accountService services.AccountServicer
	auditService   services.AuditServicer
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accountService services.AccountServicer, auditService services.AuditServicer) *AccountHandler {
	return &AccountHandler{accountService: accountService, auditService: auditService}
}

// CreateAccountRequest represents the request payload for creating an account
type CreateAccountRequest struct {
	Name           string               `json:"name" binding:"required,max=100"`
	Currency       string               `json:"currency" binding:"omitempty,iso4217"`
	Nature         models.AccountNature `json:"nature" binding:"required,account_nature"`
	InitialBalance float64              `json:"initial_balance"`
}

// CreateAccount handles the creation of a new account
// @Summary     Create an account
// @Description Create a new asset or liability account
// @Tags        accounts
// @Accept      json
// @Produce     json
// @Param       request body CreateAccountRequest true "Account details"
// @Success     201 {object} models.Account "Account created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /accounts [post]
func (h *AccountHandler) CreateAccount(c *gin.Context) {
	var req CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	account, err := h.accountService.CreateAccount(req.Name, req.Currency, req.Nature, req.InitialBalance)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log("CREATE_ACCOUNT", "account", account.ID, c.ClientIP(),
		map[string]interface{}{"name": req.Name, "nature": req.Nature})

	c.JSON(http.StatusCreated, gin.H{"account": account})
}

// GetAccounts returns all accounts with current balances
// @Summary     List accounts
// @Description Get all accounts with their computed current balances
// @Tags        accounts
// @Produce     json
// @Success     200 {array} services.AccountBalance "Accounts"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /accounts [get]
func (h *AccountHandler) GetAccounts(c *gin.Context) {
	accounts, err := h.accountService.GetAccounts()
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"accounts": accounts})
}

// GetAccount returns a single account
// @Summary     Get account
// @Description Get an account by ID
// @Tags        accounts
// @Produce     json
// @Param       id path string true "Account ID"
// @Success     200 {object} models.Account "Account"
// @Failure     400 {object} ErrorResponse "Invalid account ID"
// @Failure     404 {object} ErrorResponse "Account not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /accounts/{id} [get]
func (h *AccountHandler) GetAccount(c *gin.Context) {
	accountID, err := parsePathUUID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	account, err := h.accountService.GetAccountByID(accountID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"account": account})
}
