package mapping

import (
	"github.com/sharedsaver/shared_saver_app/internal/core/domain"
	"github.com/sharedsaver/shared_saver_app/internal/models"
)

// ToModelAccount converts a domain SharedAccount to a model SharedAccount
func ToModelAccount(d domain.SharedAccount) models.SharedAccount {
	return models.SharedAccount{
		AccountID:       d.AccountID,
		Name:            d.Name,
		Description:     d.Description,
		AccountType:     string(d.AccountType),
		Status:          string(d.Status),
		Balance:         d.Balance,
		TargetAmount:    d.TargetAmount,
		CreatedByUserID: d.CreatedBy,
		AllowLoans:      d.AllowLoans,
		MaxLoanAmount:   d.MaxLoanAmount,
		MinContribution: d.MinContribution,
		AuditFields:     ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainAccount converts a model SharedAccount to a domain SharedAccount
func ToDomainAccount(m models.SharedAccount) domain.SharedAccount {
	return domain.SharedAccount{
		AccountID:       m.AccountID,
		Name:            m.Name,
		Description:     m.Description,
		AccountType:     domain.AccountType(m.AccountType),
		Status:          domain.AccountStatus(m.Status),
		Balance:         m.Balance,
		TargetAmount:    m.TargetAmount,
		CreatedBy:       m.CreatedByUserID,
		AllowLoans:      m.AllowLoans,
		MaxLoanAmount:   m.MaxLoanAmount,
		MinContribution: m.MinContribution,
		AuditFields:     ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelMembership converts a domain AccountMembership to a model AccountMembership
func ToModelMembership(d domain.AccountMembership) models.AccountMembership {
	return models.AccountMembership{
		AccountID:     d.AccountID,
		UserID:        d.UserID,
		Role:          string(d.Role),
		CanContribute: d.Permissions.CanContribute,
		CanBorrow:     d.Permissions.CanBorrow,
		CanInvite:     d.Permissions.CanInvite,
		CanManage:     d.Permissions.CanManage,
		JoinedAt:      d.JoinedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}

// ToDomainMembership converts a model AccountMembership to a domain AccountMembership
func ToDomainMembership(m models.AccountMembership) domain.AccountMembership {
	return domain.AccountMembership{
		AccountID: m.AccountID,
		UserID:    m.UserID,
		Role:      domain.MembershipRole(m.Role),
		Permissions: domain.PermissionSet{
			CanContribute: m.CanContribute,
			CanBorrow:     m.CanBorrow,
			CanInvite:     m.CanInvite,
			CanManage:     m.CanManage,
		},
		JoinedAt:  m.JoinedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// ToDomainMembershipSlice converts a slice of model memberships to domain memberships
func ToDomainMembershipSlice(ms []models.AccountMembership) []domain.AccountMembership {
	ds := make([]domain.AccountMembership, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainMembership(m)
	}
	return ds
}
