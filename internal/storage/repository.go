// Package storage persists the expense ledger in SQLite and keeps its schema
// in the expected shape: a legacy-adoption pass driven by column inspection,
// followed by versioned migrations embedded in the binary.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"gastos/internal/core"
)

type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository opens (creating if needed) the ledger database and
// ensures its schema. A schema that cannot be brought to the expected shape
// is fatal: the repository is not returned and no ledger operation can run
// against the malformed store.
func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// Adopt legacy column layouts before the versioned migrations run.
	if err := upgradeLegacySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("upgrade legacy schema: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// CreateExpense inserts a new record and returns its assigned id.
func (r *SQLiteRepository) CreateExpense(ctx context.Context, e core.Expense) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO expenses (category, description, payment_method, amount_canonical, date)
		 VALUES (?, ?, ?, ?, ?)`,
		e.Category, e.Description, e.PaymentMethod, e.Amount.InexactFloat64(), e.Date.String(),
	)
	if err != nil {
		return 0, fmt.Errorf("create expense: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("expense id: %w", err)
	}

	slog.InfoContext(ctx, "Expense saved",
		"id", id,
		"category", e.Category,
		"description", e.Description,
		"amount", e.Amount,
		"date", e.Date.String())

	return id, nil
}

// ListExpenses returns the full ledger ordered by date descending; records
// sharing a date come most-recently-inserted first. An empty ledger yields
// an empty slice, not an error.
func (r *SQLiteRepository) ListExpenses(ctx context.Context) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, category, description, payment_method, amount_canonical, date
		 FROM expenses
		 ORDER BY date DESC, id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	expenses := []core.Expense{}
	for rows.Next() {
		var (
			e      core.Expense
			amount float64
			day    time.Time
		)
		// The DATE-typed column comes back from the driver as time.Time.
		if err := rows.Scan(&e.ID, &e.Category, &e.Description, &e.PaymentMethod, &amount, &day); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		e.Amount = decimal.NewFromFloat(amount)
		e.Date = core.DateOf(day)
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}

	return expenses, nil
}

// ListCategories returns the distinct categories present in the ledger.
func (r *SQLiteRepository) ListCategories(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT category FROM expenses ORDER BY category`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	return categories, nil
}

// RenameCategory updates every record whose category exactly equals old.
// An empty new name (after trimming) is a warned no-op that affects zero
// records; the single UPDATE makes the rename all-or-nothing.
func (r *SQLiteRepository) RenameCategory(ctx context.Context, oldName, newName string) (int64, error) {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		slog.WarnContext(ctx, "Category rename skipped: empty new name", "old", oldName)
		return 0, nil
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE expenses SET category = ? WHERE category = ?`, newName, oldName)
	if err != nil {
		return 0, fmt.Errorf("rename category: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rename category affected rows: %w", err)
	}

	slog.InfoContext(ctx, "Category renamed", "old", oldName, "new", newName, "affected", affected)
	return affected, nil
}

// DeleteExpense removes the record with the given id and reports whether it
// existed.
func (r *SQLiteRepository) DeleteExpense(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete expense: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete expense affected rows: %w", err)
	}
	if affected == 0 {
		slog.InfoContext(ctx, "Delete found no expense", "id", id)
		return false, nil
	}

	slog.InfoContext(ctx, "Expense deleted", "id", id)
	return true, nil
}
