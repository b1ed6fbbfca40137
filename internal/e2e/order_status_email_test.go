package e2e

import (
	"context"
	"log/slog"
	"testing"

	"github.com/hermes-renovation/hermes/jobs"
)

func TestOrderStatusEmailTaskRoundTrip(t *testing.T) {
	logger := slog.Default()
	handle := jobs.HandleOrderStatusEmailTask(logger)

	task, err := jobs.NewOrderStatusEmailTask(jobs.OrderStatusEmailPayload{
		Email:   "customer@example.com",
		OrderID: 42,
		Status:  "IN_PROGRESS",
	})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	if task.Type() != jobs.TaskTypeOrderStatusEmail {
		t.Fatalf("unexpected task type %s", task.Type())
	}
	if err := handle(context.Background(), task); err != nil {
		t.Fatalf("handle task: %v", err)
	}
}

func TestOrderStatusEmailSkipsGuestOrders(t *testing.T) {
	handle := jobs.HandleOrderStatusEmailTask(slog.Default())

	// Guest orders carry no email address; the handler drops the task
	// without retrying.
	task, err := jobs.NewOrderStatusEmailTask(jobs.OrderStatusEmailPayload{
		OrderID: 43,
		Status:  "COMPLETED",
	})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	if err := handle(context.Background(), task); err != nil {
		t.Fatalf("expected guest order to be skipped, got %v", err)
	}
}
