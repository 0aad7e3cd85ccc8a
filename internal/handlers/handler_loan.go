package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sharedsaver/shared_saver_app/internal/core/domain"
	portssvc "github.com/sharedsaver/shared_saver_app/internal/core/ports/services"
	"github.com/sharedsaver/shared_saver_app/internal/dto"
)

// loanHandler handles HTTP requests related to loans.
type loanHandler struct {
	loanService portssvc.LoanSvcFacade
}

// newLoanHandler creates a new loanHandler.
func newLoanHandler(ls portssvc.LoanSvcFacade) *loanHandler {
	return &loanHandler{loanService: ls}
}

// registerLoanRoutes registers routes related to loans.
func registerLoanRoutes(rg *gin.RouterGroup, loanService portssvc.LoanSvcFacade) {
	h := newLoanHandler(loanService)

	loans := rg.Group("/loans")
	{
		loans.POST("", h.requestLoan)
		loans.GET("", h.listMyLoans)
		loans.GET("/:id", h.getLoan)
		loans.GET("/:id/summary", h.getLoanSummary)
		loans.POST("/:id/approve", h.approveLoan)
		loans.POST("/:id/disburse", h.disburseLoan)
		loans.POST("/:id/payments", h.makePayment)
		loans.POST("/:id/cancel", h.cancelLoan)
		loans.POST("/:id/default", h.markDefaulted)
		loans.POST("/mark-overdue", h.markOverdueLoans)
	}

	accounts := rg.Group("/accounts/:id")
	{
		accounts.GET("/loans", h.listAccountLoans)
	}
}

// requestLoan godoc
// @Summary Request a loan
// @Description Creates a pending loan request against a shared account
// @Tags loans
// @Accept  json
// @Produce  json
// @Param   loan body dto.RequestLoanRequest true "Loan details"
// @Success 201 {object} dto.LoanResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse "Account cannot fund the loan"
// @Security BearerAuth
// @Router /loans [post]
func (h *loanHandler) requestLoan(c *gin.Context) {
	var req dto.RequestLoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	loan, err := h.loanService.RequestLoan(c.Request.Context(), req, userID)
	if err != nil {
		respondServiceError(c, err, "Failed to request loan")
		return
	}
	c.JSON(http.StatusCreated, dto.ToLoanResponse(loan))
}

// listMyLoans godoc
// @Summary List the caller's loans
// @Tags loans
// @Produce  json
// @Success 200 {array} dto.LoanResponse
// @Failure 401 {object} ErrorResponse
// @Security BearerAuth
// @Router /loans [get]
func (h *loanHandler) listMyLoans(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	loans, err := h.loanService.ListLoansByBorrower(c.Request.Context(), userID, userID)
	if err != nil {
		respondServiceError(c, err, "Failed to list loans")
		return
	}
	c.JSON(http.StatusOK, dto.ToLoanResponses(loans))
}

// getLoan godoc
// @Summary Get a loan by ID
// @Tags loans
// @Produce  json
// @Param   id path string true "Loan ID"
// @Success 200 {object} dto.LoanResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /loans/{id} [get]
func (h *loanHandler) getLoan(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	loan, err := h.loanService.GetLoanByID(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondServiceError(c, err, "Failed to retrieve loan")
		return
	}
	c.JSON(http.StatusOK, dto.ToLoanResponse(loan))
}

// getLoanSummary godoc
// @Summary Get the display summary of a loan
// @Description Includes the borrower's display name and repayment progress
// @Tags loans
// @Produce  json
// @Param   id path string true "Loan ID"
// @Success 200 {object} dto.LoanSummaryResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /loans/{id}/summary [get]
func (h *loanHandler) getLoanSummary(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	summary, err := h.loanService.GetLoanSummary(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondServiceError(c, err, "Failed to retrieve loan summary")
		return
	}
	c.JSON(http.StatusOK, summary)
}

// approveLoan godoc
// @Summary Approve a pending loan
// @Description Approvers need manage permission and cannot approve their own loans
// @Tags loans
// @Accept  json
// @Produce  json
// @Param   id path string true "Loan ID"
// @Param   approval body dto.ApproveLoanRequest true "Approval notes"
// @Success 200 {object} dto.LoanResponse
// @Failure 400 {object} ErrorResponse "Loan is not pending"
// @Failure 403 {object} ErrorResponse
// @Security BearerAuth
// @Router /loans/{id}/approve [post]
func (h *loanHandler) approveLoan(c *gin.Context) {
	var req dto.ApproveLoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	loan, err := h.loanService.ApproveLoan(c.Request.Context(), c.Param("id"), req, userID)
	if err != nil {
		respondServiceError(c, err, "Failed to approve loan")
		return
	}
	c.JSON(http.StatusOK, dto.ToLoanResponse(loan))
}

// disburseLoan godoc
// @Summary Disburse an approved loan
// @Description Debits the account and posts the disbursement entry atomically
// @Tags loans
// @Produce  json
// @Param   id path string true "Loan ID"
// @Success 200 {object} dto.LoanResponse
// @Failure 400 {object} ErrorResponse "Loan is not approved"
// @Failure 403 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse "Account cannot fund the loan"
// @Security BearerAuth
// @Router /loans/{id}/disburse [post]
func (h *loanHandler) disburseLoan(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	loan, err := h.loanService.DisburseLoan(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondServiceError(c, err, "Failed to disburse loan")
		return
	}
	c.JSON(http.StatusOK, dto.ToLoanResponse(loan))
}

// makePayment godoc
// @Summary Make a loan payment
// @Description Credits the account and posts the repayment entry atomically; clearing the balance settles the loan
// @Tags loans
// @Accept  json
// @Produce  json
// @Param   id path string true "Loan ID"
// @Param   payment body dto.LoanPaymentRequest true "Payment details"
// @Success 200 {object} dto.LoanResponse
// @Failure 400 {object} ErrorResponse "Overpayment or loan not accepting payments"
// @Failure 403 {object} ErrorResponse
// @Security BearerAuth
// @Router /loans/{id}/payments [post]
func (h *loanHandler) makePayment(c *gin.Context) {
	var req dto.LoanPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	loan, err := h.loanService.MakePayment(c.Request.Context(), c.Param("id"), req, userID)
	if err != nil {
		respondServiceError(c, err, "Failed to apply payment")
		return
	}
	c.JSON(http.StatusOK, dto.ToLoanResponse(loan))
}

// cancelLoan godoc
// @Summary Cancel a pending or approved loan
// @Tags loans
// @Produce  json
// @Param   id path string true "Loan ID"
// @Success 200 {object} dto.LoanResponse
// @Failure 400 {object} ErrorResponse "Loan can no longer be cancelled"
// @Failure 403 {object} ErrorResponse
// @Security BearerAuth
// @Router /loans/{id}/cancel [post]
func (h *loanHandler) cancelLoan(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	loan, err := h.loanService.CancelLoan(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondServiceError(c, err, "Failed to cancel loan")
		return
	}
	c.JSON(http.StatusOK, dto.ToLoanResponse(loan))
}

// markDefaulted godoc
// @Summary Mark an overdue loan as defaulted
// @Tags loans
// @Produce  json
// @Param   id path string true "Loan ID"
// @Success 200 {object} dto.LoanResponse
// @Failure 400 {object} ErrorResponse "Loan is not overdue"
// @Failure 403 {object} ErrorResponse
// @Security BearerAuth
// @Router /loans/{id}/default [post]
func (h *loanHandler) markDefaulted(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	loan, err := h.loanService.MarkDefaulted(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondServiceError(c, err, "Failed to mark loan as defaulted")
		return
	}
	c.JSON(http.StatusOK, dto.ToLoanResponse(loan))
}

// markOverdueLoans godoc
// @Summary Flag active loans past their due date as overdue
// @Description Maintenance sweep, intended for a scheduler
// @Tags loans
// @Produce  json
// @Success 200 {object} map[string]int
// @Security BearerAuth
// @Router /loans/mark-overdue [post]
func (h *loanHandler) markOverdueLoans(c *gin.Context) {
	if _, ok := requireUserID(c); !ok {
		return
	}

	marked, err := h.loanService.MarkOverdueLoans(c.Request.Context(), time.Now())
	if err != nil {
		respondServiceError(c, err, "Failed to mark overdue loans")
		return
	}
	c.JSON(http.StatusOK, gin.H{"marked": marked})
}

// listAccountLoans godoc
// @Summary List loans of an account
// @Tags loans
// @Produce  json
// @Param   id path string true "Account ID"
// @Param   status query string false "Filter by loan status"
// @Success 200 {array} dto.LoanResponse
// @Failure 403 {object} ErrorResponse
// @Security BearerAuth
// @Router /accounts/{id}/loans [get]
func (h *loanHandler) listAccountLoans(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var status *domain.LoanStatus
	if raw := c.Query("status"); raw != "" {
		s := domain.LoanStatus(raw)
		status = &s
	}

	loans, err := h.loanService.ListLoansByAccount(c.Request.Context(), c.Param("id"), userID, status)
	if err != nil {
		respondServiceError(c, err, "Failed to list loans")
		return
	}
	c.JSON(http.StatusOK, dto.ToLoanResponses(loans))
}
