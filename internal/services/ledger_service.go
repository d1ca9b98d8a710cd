// Package services orchestrates ledger operations: validate, persist,
// advance the ledger version, then announce the mutation. The core stays
// stateless between calls; the version counter is the only in-process state
// and exists so cache holders downstream can key on it.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	"gastos/internal/amqp"
	"gastos/internal/core"
)

// Store is the ledger persistence surface the service depends on.
type Store interface {
	CreateExpense(ctx context.Context, e core.Expense) (int64, error)
	ListExpenses(ctx context.Context) ([]core.Expense, error)
	ListCategories(ctx context.Context) ([]string, error)
	RenameCategory(ctx context.Context, oldName, newName string) (int64, error)
	DeleteExpense(ctx context.Context, id int64) (bool, error)
}

// LedgerService coordinates the store and the optional event broker.
type LedgerService struct {
	store   Store
	events  *amqp.Client
	version atomic.Int64
}

func NewLedgerService(store Store, events *amqp.Client) *LedgerService {
	return &LedgerService{
		store:  store,
		events: events,
	}
}

// Version returns the current ledger version. It increases by one on every
// successful mutation, so any cached view keyed by an older value is stale.
func (s *LedgerService) Version() int64 {
	return s.version.Load()
}

// CreateExpense validates and persists a normalized expense, returning its
// assigned id. Validation happens before any store call: a rejected record
// is never half-written.
func (s *LedgerService) CreateExpense(ctx context.Context, e core.Expense) (int64, error) {
	if err := e.Validate(); err != nil {
		return 0, err
	}

	id, err := s.store.CreateExpense(ctx, e)
	if err != nil {
		return 0, fmt.Errorf("save expense: %w", err)
	}

	e.ID = id
	version := s.version.Add(1)
	s.publish(ctx, amqp.NewExpenseCreatedEvent(e, version))

	return id, nil
}

// ListExpenses returns the full ledger, most recent first.
func (s *LedgerService) ListExpenses(ctx context.Context) ([]core.Expense, error) {
	return s.store.ListExpenses(ctx)
}

// Overview derives the full report from the current ledger snapshot.
func (s *LedgerService) Overview(ctx context.Context, topCategories int) (core.Overview, error) {
	expenses, err := s.store.ListExpenses(ctx)
	if err != nil {
		return core.Overview{}, fmt.Errorf("load snapshot: %w", err)
	}
	return core.BuildOverview(expenses, topCategories), nil
}

// SuggestedCategories merges the default seed set with every category
// observed in the ledger.
func (s *LedgerService) SuggestedCategories(ctx context.Context) ([]string, error) {
	observed, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("observed categories: %w", err)
	}
	return core.SuggestedCategories(observed), nil
}

// RenameCategory renames a category across the ledger. Renaming to the same
// name is skipped here rather than in the store: the store cannot tell a
// no-op from a legitimate same-name update.
func (s *LedgerService) RenameCategory(ctx context.Context, oldName, newName string) (int64, error) {
	oldName = strings.TrimSpace(oldName)
	newName = strings.TrimSpace(newName)

	if newName == "" {
		slog.WarnContext(ctx, "Category rename rejected: empty new name", "old", oldName)
		return 0, nil
	}
	if oldName == newName {
		slog.WarnContext(ctx, "Category rename skipped: name unchanged", "name", oldName)
		return 0, nil
	}

	affected, err := s.store.RenameCategory(ctx, oldName, newName)
	if err != nil {
		return 0, fmt.Errorf("rename category: %w", err)
	}
	if affected > 0 {
		version := s.version.Add(1)
		s.publish(ctx, amqp.NewCategoryRenamedEvent(oldName, newName, affected, version))
	}

	return affected, nil
}

// DeleteExpense removes one record by id and reports whether it existed.
func (s *LedgerService) DeleteExpense(ctx context.Context, id int64) (bool, error) {
	found, err := s.store.DeleteExpense(ctx, id)
	if err != nil {
		return false, fmt.Errorf("delete expense: %w", err)
	}
	if found {
		version := s.version.Add(1)
		s.publish(ctx, amqp.NewExpenseDeletedEvent(id, version))
	}

	return found, nil
}

// publish announces a mutation best-effort. The record is already persisted;
// a broker problem must not fail the operation.
func (s *LedgerService) publish(ctx context.Context, event *amqp.LedgerEvent) {
	if s.events == nil {
		slog.DebugContext(ctx, "Event broker not configured, skipping publish", "kind", event.Kind)
		return
	}
	if err := s.events.PublishLedgerEvent(ctx, event); err != nil {
		slog.ErrorContext(ctx, "Failed to publish ledger event",
			"kind", event.Kind,
			"id", event.ID,
			"error", err)
	}
}
