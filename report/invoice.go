package report

import (
	"bytes"
	"context"
	"html/template"
	"time"
)

// InvoiceDocument carries the facts printed on an invoice PDF.
type InvoiceDocument struct {
	InvoiceNumber  string
	CustomerName   string
	ServiceTitle   string
	Amount         string
	TaxAmount      string
	DiscountAmount string
	FinalAmount    string
	Status         string
	DueDate        time.Time
	IssuedAt       time.Time
}

var invoiceTmpl = template.Must(template.New("invoice").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>
  body { font-family: Helvetica, Arial, sans-serif; margin: 48px; color: #1f2430; }
  h1 { font-size: 22px; margin-bottom: 0; }
  .muted { color: #6b7280; font-size: 12px; }
  table { width: 100%; border-collapse: collapse; margin-top: 32px; }
  td, th { padding: 8px 4px; border-bottom: 1px solid #e5e7eb; text-align: left; font-size: 13px; }
  .total td { font-weight: bold; border-bottom: none; }
  .status { text-transform: uppercase; letter-spacing: 1px; font-size: 11px; }
</style>
</head>
<body>
  <h1>Invoice {{.InvoiceNumber}}</h1>
  <p class="muted">Issued {{.IssuedAt.Format "2006-01-02"}} &middot; Due {{.DueDate.Format "2006-01-02"}} &middot; <span class="status">{{.Status}}</span></p>
  <p>Billed to: {{.CustomerName}}</p>
  <table>
    <tr><th>Description</th><th>Amount</th></tr>
    <tr><td>{{.ServiceTitle}}</td><td>{{.Amount}}</td></tr>
    <tr><td>Tax</td><td>{{.TaxAmount}}</td></tr>
    <tr><td>Discount</td><td>-{{.DiscountAmount}}</td></tr>
    <tr class="total"><td>Total due</td><td>{{.FinalAmount}}</td></tr>
  </table>
</body>
</html>`))

// InvoiceRenderer turns invoice documents into PDF bytes via Gotenberg.
type InvoiceRenderer struct {
	client *Client
}

// NewInvoiceRenderer constructs a renderer on top of a Gotenberg client.
func NewInvoiceRenderer(client *Client) *InvoiceRenderer {
	return &InvoiceRenderer{client: client}
}

// Render produces the PDF for one invoice.
func (r *InvoiceRenderer) Render(ctx context.Context, doc InvoiceDocument) ([]byte, error) {
	var buf bytes.Buffer
	if err := invoiceTmpl.Execute(&buf, doc); err != nil {
		return nil, err
	}
	return r.client.RenderHTML(ctx, buf.String())
}
