package domain_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/sharedsaver/shared_saver_app/internal/core/domain"
)

func TestLoanStatus_CanTransition(t *testing.T) {
	tests := []struct {
		name string
		from domain.LoanStatus
		to   domain.LoanStatus
		want bool
	}{
		{"pending to approved", domain.LoanPending, domain.LoanApproved, true},
		{"pending to cancelled", domain.LoanPending, domain.LoanCancelled, true},
		{"pending straight to active", domain.LoanPending, domain.LoanActive, false},
		{"approved to active", domain.LoanApproved, domain.LoanActive, true},
		{"approved to cancelled", domain.LoanApproved, domain.LoanCancelled, true},
		{"approved back to pending", domain.LoanApproved, domain.LoanPending, false},
		{"active to repaid", domain.LoanActive, domain.LoanRepaid, true},
		{"active to overdue", domain.LoanActive, domain.LoanOverdue, true},
		{"active to cancelled", domain.LoanActive, domain.LoanCancelled, false},
		{"overdue to repaid", domain.LoanOverdue, domain.LoanRepaid, true},
		{"overdue to defaulted", domain.LoanOverdue, domain.LoanDefaulted, true},
		{"overdue back to active", domain.LoanOverdue, domain.LoanActive, false},
		{"repaid is terminal", domain.LoanRepaid, domain.LoanActive, false},
		{"defaulted is terminal", domain.LoanDefaulted, domain.LoanRepaid, false},
		{"cancelled is terminal", domain.LoanCancelled, domain.LoanApproved, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransition(tt.to))
		})
	}
}

func TestLoanStatus_IsTerminal(t *testing.T) {
	assert.False(t, domain.LoanPending.IsTerminal())
	assert.False(t, domain.LoanApproved.IsTerminal())
	assert.False(t, domain.LoanActive.IsTerminal())
	assert.False(t, domain.LoanOverdue.IsTerminal())
	assert.True(t, domain.LoanRepaid.IsTerminal())
	assert.True(t, domain.LoanDefaulted.IsTerminal())
	assert.True(t, domain.LoanCancelled.IsTerminal())
}

func TestLoanStatus_AcceptsPayment(t *testing.T) {
	assert.True(t, domain.LoanActive.AcceptsPayment())
	assert.True(t, domain.LoanOverdue.AcceptsPayment())
	assert.False(t, domain.LoanPending.AcceptsPayment())
	assert.False(t, domain.LoanApproved.AcceptsPayment())
	assert.False(t, domain.LoanRepaid.AcceptsPayment())
	assert.False(t, domain.LoanDefaulted.AcceptsPayment())
	assert.False(t, domain.LoanCancelled.AcceptsPayment())
}

func TestDueDateFrom(t *testing.T) {
	disbursed := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

	// 12 months at fixed 30-day periods is 360 days, not a calendar year
	assert.Equal(t, disbursed.AddDate(0, 0, 360), domain.DueDateFrom(disbursed, 12))
	assert.Equal(t, disbursed.AddDate(0, 0, 30), domain.DueDateFrom(disbursed, 1))
	assert.Equal(t, disbursed.AddDate(0, 0, 180), domain.DueDateFrom(disbursed, 6))
}

func TestMonthlyPaymentFor(t *testing.T) {
	tests := []struct {
		name   string
		amount string
		term   int
		want   string
	}{
		{"even division", "1200.00", 12, "100"},
		{"rounds to 2 places", "1000.00", 3, "333.33"},
		{"single installment", "500.00", 1, "500"},
		{"zero term", "500.00", 0, "0"},
		{"negative term", "500.00", -3, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amount := decimal.RequireFromString(tt.amount)
			got := domain.MonthlyPaymentFor(amount, tt.term)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "got %s", got)
		})
	}
}
