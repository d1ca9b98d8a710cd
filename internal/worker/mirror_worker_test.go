package worker

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"gastos/internal/amqp"
	"gastos/internal/core"
)

type fakeAppender struct {
	rows     []core.Expense
	failWith error
}

func (f *fakeAppender) Append(_ context.Context, e core.Expense) error {
	if f.failWith != nil {
		return f.failWith
	}
	f.rows = append(f.rows, e)
	return nil
}

func createdEvent() *amqp.LedgerEvent {
	return amqp.NewExpenseCreatedEvent(core.Expense{
		ID:            3,
		Category:      "Food",
		Description:   "groceries",
		PaymentMethod: "cash",
		Amount:        decimal.RequireFromString("9.99"),
		Date:          core.NewDate(2024, 1, 1),
	}, 1)
}

func TestHandleCreatedAppendsRow(t *testing.T) {
	mirror := &fakeAppender{}
	w := NewMirrorWorker(nil, mirror)

	if err := w.handle(context.Background(), createdEvent()); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(mirror.rows) != 1 || mirror.rows[0].ID != 3 {
		t.Fatalf("expected one mirrored row, got %+v", mirror.rows)
	}
}

func TestHandleCreatedPropagatesMirrorFailure(t *testing.T) {
	boom := errors.New("sheet unavailable")
	w := NewMirrorWorker(nil, &fakeAppender{failWith: boom})

	// The error must surface so the delivery is requeued.
	if err := w.handle(context.Background(), createdEvent()); !errors.Is(err, boom) {
		t.Fatalf("expected mirror error, got %v", err)
	}
}

func TestHandleSkipsNonCreateEvents(t *testing.T) {
	mirror := &fakeAppender{}
	w := NewMirrorWorker(nil, mirror)
	ctx := context.Background()

	events := []*amqp.LedgerEvent{
		amqp.NewExpenseDeletedEvent(1, 2),
		amqp.NewCategoryRenamedEvent("Food", "Groceries", 2, 3),
		{Kind: "unknown_kind"},
		{Kind: amqp.EventExpenseCreated}, // created without a record
	}
	for _, ev := range events {
		if err := w.handle(ctx, ev); err != nil {
			t.Fatalf("event %q should be skipped cleanly, got %v", ev.Kind, err)
		}
	}
	if len(mirror.rows) != 0 {
		t.Fatalf("nothing should be mirrored, got %+v", mirror.rows)
	}
}
