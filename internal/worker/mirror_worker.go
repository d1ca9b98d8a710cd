// Package worker consumes ledger events and keeps the spreadsheet mirror up
// to date. Only created expenses are mirrored: the sheet is an append-only
// journal, deletes and renames are recorded locally only.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"gastos/internal/amqp"
	"gastos/internal/core"
)

// Appender writes one expense row to the mirror.
type Appender interface {
	Append(ctx context.Context, e core.Expense) error
}

type MirrorWorker struct {
	events *amqp.Client
	mirror Appender
}

func NewMirrorWorker(events *amqp.Client, mirror Appender) *MirrorWorker {
	return &MirrorWorker{
		events: events,
		mirror: mirror,
	}
}

// Run consumes ledger events until ctx is cancelled.
func (w *MirrorWorker) Run(ctx context.Context) error {
	return w.events.ConsumeLedgerEvents(ctx, func(event *amqp.LedgerEvent) error {
		return w.handle(ctx, event)
	})
}

func (w *MirrorWorker) handle(ctx context.Context, event *amqp.LedgerEvent) error {
	switch event.Kind {
	case amqp.EventExpenseCreated:
		if event.Expense == nil {
			// Malformed producer; requeueing would loop forever.
			slog.WarnContext(ctx, "Created event without record, skipping", "id", event.ID)
			return nil
		}
		if err := w.mirror.Append(ctx, *event.Expense); err != nil {
			return fmt.Errorf("mirror expense %d: %w", event.ID, err)
		}
		return nil

	case amqp.EventExpenseDeleted, amqp.EventCategoryRenamed:
		slog.DebugContext(ctx, "Event not mirrored (append-only sheet)",
			"kind", event.Kind,
			"id", event.ID)
		return nil

	default:
		slog.WarnContext(ctx, "Unknown ledger event kind, skipping", "kind", event.Kind)
		return nil
	}
}
