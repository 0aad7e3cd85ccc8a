package domain_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/sharedsaver/shared_saver_app/internal/core/domain"
)

func TestSharedAccount_IsActive(t *testing.T) {
	a := domain.SharedAccount{Status: domain.AccountActive}
	assert.True(t, a.IsActive())

	a.Status = domain.AccountInactive
	assert.False(t, a.IsActive())

	a.Status = domain.AccountSuspended
	assert.False(t, a.IsActive())
}

func TestSharedAccount_CanBorrow(t *testing.T) {
	cap := decimal.NewFromInt(300)

	tests := []struct {
		name      string
		account   domain.SharedAccount
		amount    decimal.Decimal
		available decimal.Decimal
		want      bool
	}{
		{
			name:      "within available balance",
			account:   domain.SharedAccount{AllowLoans: true},
			amount:    decimal.NewFromInt(500),
			available: decimal.NewFromInt(1000),
			want:      true,
		},
		{
			name:      "exactly the available balance",
			account:   domain.SharedAccount{AllowLoans: true},
			amount:    decimal.NewFromInt(1000),
			available: decimal.NewFromInt(1000),
			want:      true,
		},
		{
			name:      "exceeds available balance",
			account:   domain.SharedAccount{AllowLoans: true},
			amount:    decimal.NewFromInt(1001),
			available: decimal.NewFromInt(1000),
			want:      false,
		},
		{
			name:      "loans disabled",
			account:   domain.SharedAccount{AllowLoans: false},
			amount:    decimal.NewFromInt(10),
			available: decimal.NewFromInt(1000),
			want:      false,
		},
		{
			name:      "over the per-loan cap",
			account:   domain.SharedAccount{AllowLoans: true, MaxLoanAmount: &cap},
			amount:    decimal.NewFromInt(301),
			available: decimal.NewFromInt(1000),
			want:      false,
		},
		{
			name:      "at the per-loan cap",
			account:   domain.SharedAccount{AllowLoans: true, MaxLoanAmount: &cap},
			amount:    decimal.NewFromInt(300),
			available: decimal.NewFromInt(1000),
			want:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.account.CanBorrow(tt.amount, tt.available))
		})
	}
}
