package mapping

import (
	"github.com/sharedsaver/shared_saver_app/internal/core/domain"
	"github.com/sharedsaver/shared_saver_app/internal/models"
)

// ToModelTransaction converts a domain Transaction to a model Transaction
func ToModelTransaction(d domain.Transaction) models.Transaction {
	return models.Transaction{
		TransactionID:   d.TransactionID,
		AccountID:       d.AccountID,
		TransactionType: string(d.TransactionType),
		Amount:          d.Amount,
		Description:     d.Description,
		Status:          string(d.Status),
		InitiatedBy:     d.InitiatedBy,
		RecipientID:     d.RecipientID,
		RelatedLoanID:   d.RelatedLoan,
		BalanceBefore:   d.BalanceBefore,
		BalanceAfter:    d.BalanceAfter,
		ReferenceNumber: d.ReferenceNumber,
		Notes:           d.Notes,
		ProcessedAt:     d.ProcessedAt,
		AuditFields:     ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainTransaction converts a model Transaction to a domain Transaction
func ToDomainTransaction(m models.Transaction) domain.Transaction {
	return domain.Transaction{
		TransactionID:   m.TransactionID,
		AccountID:       m.AccountID,
		TransactionType: domain.TransactionType(m.TransactionType),
		Amount:          m.Amount,
		Description:     m.Description,
		Status:          domain.TransactionStatus(m.Status),
		InitiatedBy:     m.InitiatedBy,
		RecipientID:     m.RecipientID,
		RelatedLoan:     m.RelatedLoanID,
		BalanceBefore:   m.BalanceBefore,
		BalanceAfter:    m.BalanceAfter,
		ReferenceNumber: m.ReferenceNumber,
		Notes:           m.Notes,
		ProcessedAt:     m.ProcessedAt,
		AuditFields:     ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainTransactionSlice converts a slice of model Transactions to a slice of domain Transactions
func ToDomainTransactionSlice(ms []models.Transaction) []domain.Transaction {
	ds := make([]domain.Transaction, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainTransaction(m)
	}
	return ds
}
