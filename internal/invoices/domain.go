package invoices

import "time"

// Invoice bills a service order. Ownership is transitive: the invoice
// belongs to whoever owns the linked order.
type Invoice struct {
	ID             int64
	OrderID        int64
	OrderOwnerID   int64
	InvoiceNumber  string
	Amount         string
	TaxAmount      string
	DiscountAmount string
	FinalAmount    string
	Status         string
	DueDate        time.Time
	PaidDate       *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time

	// Joined order facts used on the rendered document.
	CustomerName string
	ServiceTitle string
}

// Fields renders the invoice as a flat record for view projection.
func (i *Invoice) Fields() map[string]any {
	var paid any
	if i.PaidDate != nil {
		paid = i.PaidDate
	}
	return map[string]any{
		"id":              i.ID,
		"order_id":        i.OrderID,
		"invoice_number":  i.InvoiceNumber,
		"amount":          i.Amount,
		"tax_amount":      i.TaxAmount,
		"discount_amount": i.DiscountAmount,
		"final_amount":    i.FinalAmount,
		"status":          i.Status,
		"due_date":        i.DueDate.Format("2006-01-02"),
		"paid_date":       paid,
		"created_at":      i.CreatedAt,
		"updated_at":      i.UpdatedAt,
	}
}

// ListFilter narrows invoice listings.
type ListFilter struct {
	Status  string
	Page    int
	PerPage int
}
