// Package workflow holds the status state machines for orders and work
// sheets. All legal transitions live in the tables below; every status write
// in the application layer goes through Validate so an illegal edge can never
// reach the database.
package workflow

import (
	"fmt"

	"github.com/Magneteek/SmileLAB-sub002/internal/domain"
	"github.com/Magneteek/SmileLAB-sub002/internal/domain/entity"
)

// worksheetTransitions is the legal edge set for work sheets. VOIDED is
// reachable from every non-terminal state (admin override). DELIVERED back to
// QC_APPROVED is the compensating edge used when an invoice is cancelled; it
// is not part of the normal forward flow.
var worksheetTransitions = map[string][]string{
	entity.WorkSheetStatusDraft:        {entity.WorkSheetStatusInProduction, entity.WorkSheetStatusVoided},
	entity.WorkSheetStatusInProduction: {entity.WorkSheetStatusQCPending, entity.WorkSheetStatusVoided},
	entity.WorkSheetStatusQCPending:    {entity.WorkSheetStatusQCApproved, entity.WorkSheetStatusQCRejected, entity.WorkSheetStatusVoided},
	entity.WorkSheetStatusQCApproved:   {entity.WorkSheetStatusDelivered, entity.WorkSheetStatusVoided},
	entity.WorkSheetStatusQCRejected:   {entity.WorkSheetStatusInProduction, entity.WorkSheetStatusVoided},
	entity.WorkSheetStatusDelivered:    {entity.WorkSheetStatusQCApproved},
	entity.WorkSheetStatusVoided:       {},
}

// orderTransitions mirrors the sheet flow at order granularity. Orders have no
// rejected state: a QC rejection sends the order back to IN_PRODUCTION.
// INVOICED back to QC_APPROVED is the compensating edge for invoice
// cancellation.
var orderTransitions = map[string][]string{
	entity.OrderStatusPending:      {entity.OrderStatusInProduction, entity.OrderStatusCancelled},
	entity.OrderStatusInProduction: {entity.OrderStatusQCPending, entity.OrderStatusCancelled},
	entity.OrderStatusQCPending:    {entity.OrderStatusQCApproved, entity.OrderStatusInProduction, entity.OrderStatusCancelled},
	entity.OrderStatusQCApproved:   {entity.OrderStatusInvoiced, entity.OrderStatusDelivered, entity.OrderStatusCancelled},
	entity.OrderStatusInvoiced:     {entity.OrderStatusDelivered, entity.OrderStatusQCApproved},
	entity.OrderStatusDelivered:    {},
	entity.OrderStatusCancelled:    {},
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// CanTransitionWorkSheet reports whether from/to is a legal work sheet edge.
func CanTransitionWorkSheet(from, to string) bool {
	return contains(worksheetTransitions[from], to)
}

// CanTransitionOrder reports whether from/to is a legal order edge.
func CanTransitionOrder(from, to string) bool {
	return contains(orderTransitions[from], to)
}

// ValidateWorkSheet returns ErrInvalidTransition wrapped with both statuses
// when the edge is not legal for work sheets.
func ValidateWorkSheet(from, to string) error {
	if !CanTransitionWorkSheet(from, to) {
		return fmt.Errorf("%w: worksheet cannot move from %s to %s", domain.ErrInvalidTransition, from, to)
	}
	return nil
}

// ValidateOrder returns ErrInvalidTransition wrapped with both statuses when
// the edge is not legal for orders.
func ValidateOrder(from, to string) error {
	if !CanTransitionOrder(from, to) {
		return fmt.Errorf("%w: order cannot move from %s to %s", domain.ErrInvalidTransition, from, to)
	}
	return nil
}

// WorkSheetTerminal reports whether a sheet status has no outgoing edges.
func WorkSheetTerminal(status string) bool {
	return len(worksheetTransitions[status]) == 0
}

// OrderTerminal reports whether an order status has no outgoing edges.
func OrderTerminal(status string) bool {
	return len(orderTransitions[status]) == 0
}
