package mapping

import (
	"github.com/sharedsaver/shared_saver_app/internal/core/domain"
	"github.com/sharedsaver/shared_saver_app/internal/models"
)

// ToModelLoan converts a domain Loan to a model Loan
func ToModelLoan(d domain.Loan) models.Loan {
	return models.Loan{
		LoanID:           d.LoanID,
		AccountID:        d.AccountID,
		BorrowerID:       d.BorrowerID,
		Amount:           d.Amount,
		Purpose:          d.Purpose,
		Status:           string(d.Status),
		TermMonths:       d.TermMonths,
		MonthlyPayment:   d.MonthlyPayment,
		RequestedAt:      d.RequestedAt,
		ApprovedAt:       d.ApprovedAt,
		DisbursedAt:      d.DisbursedAt,
		DueDate:          d.DueDate,
		RepaidAt:         d.RepaidAt,
		AmountPaid:       d.AmountPaid,
		RemainingBalance: d.RemainingBalance,
		ApprovedBy:       d.ApprovedBy,
		ApprovalNotes:    d.ApprovalNotes,
		ReferenceNumber:  d.ReferenceNumber,
		Notes:            d.Notes,
		AuditFields:      ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainLoan converts a model Loan to a domain Loan
func ToDomainLoan(m models.Loan) domain.Loan {
	return domain.Loan{
		LoanID:           m.LoanID,
		AccountID:        m.AccountID,
		BorrowerID:       m.BorrowerID,
		Amount:           m.Amount,
		Purpose:          m.Purpose,
		Status:           domain.LoanStatus(m.Status),
		TermMonths:       m.TermMonths,
		MonthlyPayment:   m.MonthlyPayment,
		RequestedAt:      m.RequestedAt,
		ApprovedAt:       m.ApprovedAt,
		DisbursedAt:      m.DisbursedAt,
		DueDate:          m.DueDate,
		RepaidAt:         m.RepaidAt,
		AmountPaid:       m.AmountPaid,
		RemainingBalance: m.RemainingBalance,
		ApprovedBy:       m.ApprovedBy,
		ApprovalNotes:    m.ApprovalNotes,
		ReferenceNumber:  m.ReferenceNumber,
		Notes:            m.Notes,
		AuditFields:      ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainLoanSlice converts a slice of model Loans to a slice of domain Loans
func ToDomainLoanSlice(ms []models.Loan) []domain.Loan {
	ds := make([]domain.Loan, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainLoan(m)
	}
	return ds
}
