package authz

import (
	"fmt"

	"github.com/hermes-renovation/hermes/internal/platform/httpx"
)

// Service order statuses.
const (
	OrderPending    = "PENDING"
	OrderContacted  = "CONTACTED"
	OrderInProgress = "IN_PROGRESS"
	OrderCompleted  = "COMPLETED"
	OrderCancelled  = "CANCELLED"
)

// Booking statuses.
const (
	BookingPending   = "PENDING"
	BookingConfirmed = "CONFIRMED"
	BookingCompleted = "COMPLETED"
	BookingCancelled = "CANCELLED"
)

// Invoice statuses.
const (
	InvoicePending   = "PENDING"
	InvoicePaid      = "PAID"
	InvoiceOverdue   = "OVERDUE"
	InvoiceCancelled = "CANCELLED"
)

var statusSets = map[Kind]map[string]bool{
	KindServiceOrder: {
		OrderPending:    true,
		OrderContacted:  true,
		OrderInProgress: true,
		OrderCompleted:  true,
		OrderCancelled:  true,
	},
	KindBooking: {
		BookingPending:   true,
		BookingConfirmed: true,
		BookingCompleted: true,
		BookingCancelled: true,
	},
	KindInvoice: {
		InvoicePending:   true,
		InvoicePaid:      true,
		InvoiceOverdue:   true,
		InvoiceCancelled: true,
	},
}

// ValidateStatus checks set membership of value against kind's status
// enumeration. Any member may transition to any other member, including
// itself; no adjacency rules are enforced.
func ValidateStatus(kind Kind, value string) error {
	set, ok := statusSets[kind]
	if !ok {
		return fmt.Errorf("%w: kind %s has no status field", httpx.ErrValidation, kind)
	}
	if !set[value] {
		return fmt.Errorf("%w: invalid status %q for %s", httpx.ErrValidation, value, kind)
	}
	return nil
}
