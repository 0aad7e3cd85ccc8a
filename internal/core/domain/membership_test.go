package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sharedsaver/shared_saver_app/internal/core/domain"
)

func TestPermissionsForRole(t *testing.T) {
	tests := []struct {
		name string
		role domain.MembershipRole
		want domain.PermissionSet
	}{
		{
			name: "owner gets everything",
			role: domain.RoleOwner,
			want: domain.PermissionSet{CanContribute: true, CanBorrow: true, CanInvite: true, CanManage: true},
		},
		{
			name: "admin gets everything",
			role: domain.RoleAdmin,
			want: domain.PermissionSet{CanContribute: true, CanBorrow: true, CanInvite: true, CanManage: true},
		},
		{
			name: "member can contribute and borrow only",
			role: domain.RoleMember,
			want: domain.PermissionSet{CanContribute: true, CanBorrow: true},
		},
		{
			name: "viewer gets nothing",
			role: domain.RoleViewer,
			want: domain.PermissionSet{},
		},
		{
			name: "unknown role gets nothing",
			role: domain.MembershipRole("auditor"),
			want: domain.PermissionSet{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.PermissionsForRole(tt.role))
		})
	}
}

func TestAccountMembership_SetRole(t *testing.T) {
	m := domain.AccountMembership{Role: domain.RoleMember, Permissions: domain.PermissionsForRole(domain.RoleMember)}

	m.SetRole(domain.RoleAdmin)
	assert.Equal(t, domain.RoleAdmin, m.Role)
	assert.True(t, m.Permissions.CanManage)
	assert.True(t, m.Permissions.CanInvite)

	// Demotion rederives the flags, it never leaves stale grants behind
	m.SetRole(domain.RoleViewer)
	assert.Equal(t, domain.RoleViewer, m.Role)
	assert.Equal(t, domain.PermissionSet{}, m.Permissions)
}
