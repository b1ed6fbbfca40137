package authz

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hermes-renovation/hermes/internal/platform/httpx"
)

func TestOrderStatusMembers(t *testing.T) {
	for _, s := range []string{"PENDING", "CONTACTED", "IN_PROGRESS", "COMPLETED", "CANCELLED"} {
		assert.NoError(t, ValidateStatus(KindServiceOrder, s), s)
	}
	err := ValidateStatus(KindServiceOrder, "DELETED")
	assert.Error(t, err)
	assert.True(t, errors.Is(err, httpx.ErrValidation))
}

func TestBookingStatusMembers(t *testing.T) {
	for _, s := range []string{"PENDING", "CONFIRMED", "COMPLETED", "CANCELLED"} {
		assert.NoError(t, ValidateStatus(KindBooking, s), s)
	}
	assert.Error(t, ValidateStatus(KindBooking, "CONTACTED"))
}

func TestInvoiceStatusMembers(t *testing.T) {
	for _, s := range []string{"PENDING", "PAID", "OVERDUE", "CANCELLED"} {
		assert.NoError(t, ValidateStatus(KindInvoice, s), s)
	}
	assert.Error(t, ValidateStatus(KindInvoice, "IN_PROGRESS"))
	assert.Error(t, ValidateStatus(KindInvoice, "paid"))
}

func TestStatuslessKindRejected(t *testing.T) {
	err := ValidateStatus(KindBlogPost, "PENDING")
	assert.True(t, errors.Is(err, httpx.ErrValidation))
}

func TestSelfTransitionPermitted(t *testing.T) {
	// Membership is the only rule; COMPLETED -> COMPLETED and
	// COMPLETED -> PENDING are both fine.
	assert.NoError(t, ValidateStatus(KindServiceOrder, OrderCompleted))
	assert.NoError(t, ValidateStatus(KindServiceOrder, OrderPending))
}
