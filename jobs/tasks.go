package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeSendEmail is the task type for sending transactional emails.
	TaskTypeSendEmail = "mail:send"
	// TaskTypeOrderStatusEmail notifies a customer that their order moved.
	TaskTypeOrderStatusEmail = "orders:status_email"
	// TaskTypeInvoiceOverdueScan flips past-due pending invoices to OVERDUE.
	TaskTypeInvoiceOverdueScan = "invoices:overdue_scan"
)

// SendEmailPayload describes the information required to send an email.
type SendEmailPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// NewSendEmailTask constructs an Asynq task.
func NewSendEmailTask(payload SendEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeSendEmail, data), nil
}

// HandleSendEmailTask processes TaskTypeSendEmail tasks. Delivery is a
// log line; an SMTP relay slots in behind the same task type.
func HandleSendEmailTask(logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload SendEmailPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		logger.Info("send email",
			slog.String("to", payload.To),
			slog.String("subject", payload.Subject))
		return nil
	}
}

// OrderStatusEmailPayload carries an order status notification.
type OrderStatusEmailPayload struct {
	Email   string `json:"email"`
	OrderID int64  `json:"order_id"`
	Status  string `json:"status"`
}

// NewOrderStatusEmailTask constructs the notification task.
func NewOrderStatusEmailTask(payload OrderStatusEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeOrderStatusEmail, data), nil
}

// HandleOrderStatusEmailTask renders and "sends" the status email.
func HandleOrderStatusEmailTask(logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload OrderStatusEmailPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		if payload.Email == "" {
			// Guest orders carry no address to notify.
			return nil
		}
		logger.Info("send order status email",
			slog.String("to", payload.Email),
			slog.Int64("order_id", payload.OrderID),
			slog.String("status", payload.Status),
			slog.String("subject", fmt.Sprintf("Order #%d is now %s", payload.OrderID, payload.Status)))
		return nil
	}
}
