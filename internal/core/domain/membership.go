package domain

import "time"

// MembershipRole defines the possible roles a user can have within a shared account.
type MembershipRole string

const (
	RoleOwner  MembershipRole = "owner"
	RoleAdmin  MembershipRole = "admin"
	RoleMember MembershipRole = "member"
	RoleViewer MembershipRole = "viewer"
)

// PermissionSet holds the four membership permission flags. They are a pure
// function of the role, recomputed on every save, never settable independently.
type PermissionSet struct {
	CanContribute bool `json:"canContribute"`
	CanBorrow     bool `json:"canBorrow"`
	CanInvite     bool `json:"canInvite"`
	CanManage     bool `json:"canManage"`
}

// PermissionsForRole derives the permission flags for a role.
func PermissionsForRole(role MembershipRole) PermissionSet {
	switch role {
	case RoleOwner, RoleAdmin:
		return PermissionSet{CanContribute: true, CanBorrow: true, CanInvite: true, CanManage: true}
	case RoleMember:
		return PermissionSet{CanContribute: true, CanBorrow: true}
	default: // viewer and anything unknown get no permissions
		return PermissionSet{}
	}
}

// AccountMembership is the join entity between a user and a shared account.
// The (account, user) pair is unique.
type AccountMembership struct {
	AccountID   string         `json:"accountID"`
	UserID      string         `json:"userID"`
	Role        MembershipRole `json:"role"`
	Permissions PermissionSet  `json:"permissions"`
	JoinedAt    time.Time      `json:"joinedAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

// SetRole assigns the role and rederives the permission flags.
func (m *AccountMembership) SetRole(role MembershipRole) {
	m.Role = role
	m.Permissions = PermissionsForRole(role)
}
