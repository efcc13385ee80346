// Package rbac maps the closed set of roles to capability sets through a
// static table. The identity provider supplies (userID, role); this package
// only answers whether a role may perform an operation.
package rbac

import (
	"fmt"

	"github.com/Magneteek/SmileLAB-sub002/internal/domain"
)

// Roles. The set is closed: tokens carrying anything else are rejected at the
// middleware.
const (
	RoleAdmin      = "ADMIN"
	RoleTechnician = "TECHNICIAN"
	RoleQC         = "QC"
	RoleOffice     = "OFFICE"
)

// Capability names one guarded operation group.
type Capability string

const (
	CapOrderManage          Capability = "order:manage"
	CapProductionTransition Capability = "production:transition"
	CapProductionVoid       Capability = "production:void"
	CapQCSubmit             Capability = "qc:submit"
	CapInventoryReceive     Capability = "inventory:receive"
	CapInventoryConsume     Capability = "inventory:consume"
	CapInventoryCorrect     Capability = "inventory:correct"
	CapBillingManage        Capability = "billing:manage"
	CapBillingFinalize      Capability = "billing:finalize"
	CapCatalogManage        Capability = "catalog:manage"
	CapAuditRead            Capability = "audit:read"
)

// grants is the full policy. Admin gets everything; the other roles map to
// how the lab actually splits work: office staff run orders and billing,
// technicians produce and consume stock, QC inspects.
var grants = map[string]map[Capability]bool{
	RoleAdmin: {
		CapOrderManage:          true,
		CapProductionTransition: true,
		CapProductionVoid:       true,
		CapQCSubmit:             true,
		CapInventoryReceive:     true,
		CapInventoryConsume:     true,
		CapInventoryCorrect:     true,
		CapBillingManage:        true,
		CapBillingFinalize:      true,
		CapCatalogManage:        true,
		CapAuditRead:            true,
	},
	RoleOffice: {
		CapOrderManage:      true,
		CapInventoryReceive: true,
		CapBillingManage:    true,
		CapBillingFinalize:  true,
		CapCatalogManage:    true,
		CapAuditRead:        true,
	},
	RoleTechnician: {
		CapProductionTransition: true,
		CapInventoryConsume:     true,
	},
	RoleQC: {
		CapQCSubmit:  true,
		CapAuditRead: true,
	},
}

// KnownRole reports whether the role is part of the closed set.
func KnownRole(role string) bool {
	_, ok := grants[role]
	return ok
}

// Allowed reports whether the role holds the capability. Unknown roles hold
// nothing.
func Allowed(role string, cap Capability) bool {
	return grants[role][cap]
}

// Require returns ErrForbidden when the role lacks the capability.
func Require(role string, cap Capability) error {
	if !Allowed(role, cap) {
		return fmt.Errorf("%w: role %s lacks %s", domain.ErrForbidden, role, cap)
	}
	return nil
}
