package rbac_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Magneteek/SmileLAB-sub002/internal/domain"
	"github.com/Magneteek/SmileLAB-sub002/internal/domain/rbac"
)

func TestAdminHoldsEverything(t *testing.T) {
	for _, cap := range []rbac.Capability{
		rbac.CapOrderManage,
		rbac.CapProductionTransition,
		rbac.CapQCSubmit,
		rbac.CapInventoryReceive,
		rbac.CapInventoryConsume,
		rbac.CapInventoryCorrect,
		rbac.CapBillingManage,
		rbac.CapBillingFinalize,
		rbac.CapCatalogManage,
		rbac.CapAuditRead,
	} {
		assert.True(t, rbac.Allowed(rbac.RoleAdmin, cap), "admin must hold %s", cap)
	}
}

func TestRoleSeparation(t *testing.T) {
	assert.True(t, rbac.Allowed(rbac.RoleQC, rbac.CapQCSubmit))
	assert.False(t, rbac.Allowed(rbac.RoleTechnician, rbac.CapQCSubmit),
		"the technician who made the piece cannot approve it")

	assert.True(t, rbac.Allowed(rbac.RoleTechnician, rbac.CapInventoryConsume))
	assert.False(t, rbac.Allowed(rbac.RoleOffice, rbac.CapInventoryConsume))

	assert.True(t, rbac.Allowed(rbac.RoleOffice, rbac.CapBillingFinalize))
	assert.False(t, rbac.Allowed(rbac.RoleQC, rbac.CapBillingFinalize))
}

func TestLotCorrectionIsAdminOnly(t *testing.T) {
	assert.True(t, rbac.Allowed(rbac.RoleAdmin, rbac.CapInventoryCorrect))
	for _, role := range []string{rbac.RoleOffice, rbac.RoleTechnician, rbac.RoleQC} {
		assert.False(t, rbac.Allowed(role, rbac.CapInventoryCorrect),
			"%s must not correct lot records", role)
	}
}

func TestUnknownRoleHoldsNothing(t *testing.T) {
	assert.False(t, rbac.KnownRole("SUPERUSER"))
	assert.False(t, rbac.Allowed("SUPERUSER", rbac.CapAuditRead))
	assert.False(t, rbac.Allowed("", rbac.CapOrderManage))
}

func TestRequire(t *testing.T) {
	require.NoError(t, rbac.Require(rbac.RoleQC, rbac.CapQCSubmit))

	err := rbac.Require(rbac.RoleTechnician, rbac.CapBillingManage)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}
