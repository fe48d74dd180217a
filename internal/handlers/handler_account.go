package handlers

import (
	"log/slog"
	"net/http"

	"github.com/SscSPs/koperasi_backend/internal/core/domain"
	portssvc "github.com/SscSPs/koperasi_backend/internal/core/ports/services"
	"github.com/SscSPs/koperasi_backend/internal/dto"
	"github.com/SscSPs/koperasi_backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// accountHandler handles HTTP requests related to member accounts.
type accountHandler struct {
	accountService portssvc.AccountSvcFacade
}

// newAccountHandler creates a new accountHandler.
func newAccountHandler(as portssvc.AccountSvcFacade) *accountHandler {
	return &accountHandler{
		accountService: as,
	}
}

// registerAccountRoutes registers routes related to accounts.
func registerAccountRoutes(rg *gin.RouterGroup, accountService portssvc.AccountSvcFacade) {
	h := newAccountHandler(accountService)

	accounts := rg.Group("/accounts")
	{
		accounts.POST("", h.openAccount)
		accounts.GET("/my", h.listMyAccounts)
		accounts.GET("/:accountID/transactions", h.listTransactions)
	}
}

// openAccount godoc
// @Summary Open an account for a member
// @Description Opens a savings or loan account. Only DIVISI_SIMPAN_PINJAM may call this.
// @Tags accounts
// @Accept  json
// @Produce  json
// @Param   account body dto.OpenAccountRequest true "Account details"
// @Success 201 {object} dto.MutationResponse{data=dto.AccountResponse}
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /accounts [post]
func (h *accountHandler) openAccount(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req dto.OpenAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err, "OpenAccount")
		return
	}

	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	logger.Info("Received request to open account", slog.String("owner_id", req.OwnerID), slog.String("account_type", string(req.AccountType)))

	acc, err := h.accountService.OpenAccount(c.Request.Context(), req, actor)
	if err != nil {
		respondError(c, err, "OpenAccount")
		return
	}

	logger.Info("Account opened successfully", slog.String("account_id", acc.AccountID))
	c.JSON(http.StatusCreated, dto.MutationResponse{Message: "Rekening berhasil dibuka", Data: dto.ToAccountResponse(acc)})
}

// listMyAccounts godoc
// @Summary List my accounts
// @Description Lists every account owned by the caller.
// @Tags accounts
// @Produce  json
// @Success 200 {object} dto.ListAccountsResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /accounts/my [get]
func (h *accountHandler) listMyAccounts(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	accounts, err := h.accountService.ListMyAccounts(c.Request.Context(), actor.UserID)
	if err != nil {
		respondError(c, err, "ListMyAccounts")
		return
	}
	c.JSON(http.StatusOK, dto.ToListAccountsResponse(accounts))
}

// listTransactions godoc
// @Summary List an account's transactions
// @Description Pages through the account ledger, newest first. Allowed for the owner and DIVISI_SIMPAN_PINJAM.
// @Tags accounts
// @Produce  json
// @Param   accountID path string true "Account ID"
// @Param   limit query int false "Page size" default(20)
// @Param   nextToken query string false "Token from the previous page"
// @Success 200 {object} dto.ListTransactionsResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /accounts/{accountID}/transactions [get]
func (h *accountHandler) listTransactions(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	accountID, ok := pathID(c, "accountID", domain.ErrAccountNotFound, "ListAccountTransactions")
	if !ok {
		return
	}
	var params dto.ListParams
	if err := c.ShouldBindQuery(&params); err != nil {
		badRequest(c, err, "ListAccountTransactions")
		return
	}

	txns, next, err := h.accountService.ListAccountTransactions(c.Request.Context(), accountID, actor, params)
	if err != nil {
		respondError(c, err, "ListAccountTransactions")
		return
	}
	c.JSON(http.StatusOK, dto.ToListTransactionsResponse(txns, next))
}
