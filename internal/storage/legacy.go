package storage

import (
	"database/sql"
	"fmt"
	"log/slog"

	"gastos/internal/core"
)

// Column name used by stores created before amounts were normalized at entry.
const legacyAmountColumn = "amount"

// upgradeLegacySchema adopts an expenses table created by an older version
// of the tracker. It inspects the actual column set and only issues an ALTER
// for a shape it recognizes, so re-running it is always a no-op. Runs before
// the versioned migrations: an adopted table then satisfies the baseline's
// CREATE TABLE IF NOT EXISTS.
func upgradeLegacySchema(db *sql.DB) error {
	exists, err := tableExists(db, "expenses")
	if err != nil {
		return fmt.Errorf("inspect schema: %w", err)
	}
	if !exists {
		// Fresh store, nothing to adopt.
		return nil
	}

	columns, err := tableColumns(db, "expenses")
	if err != nil {
		return fmt.Errorf("inspect expenses columns: %w", err)
	}

	if columns[legacyAmountColumn] && !columns["amount_canonical"] {
		if _, err := db.Exec(`ALTER TABLE expenses RENAME COLUMN amount TO amount_canonical`); err != nil {
			return fmt.Errorf("rename legacy amount column: %w", err)
		}
		slog.Info("Adopted legacy amount column", "from", legacyAmountColumn, "to", "amount_canonical")
	}

	if !columns["category"] {
		stmt := fmt.Sprintf(`ALTER TABLE expenses ADD COLUMN category TEXT NOT NULL DEFAULT '%s'`, core.DefaultCategory)
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("add category column: %w", err)
		}
		slog.Info("Added missing category column", "default", core.DefaultCategory)
	}

	return nil
}

func tableExists(db *sql.DB, name string) (bool, error) {
	var n string
	err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, name).Scan(&n)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func tableColumns(db *sql.DB, table string) (map[string]bool, error) {
	rows, err := db.Query(fmt.Sprintf(`PRAGMA table_info(%s)`, table))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns := make(map[string]bool)
	for rows.Next() {
		var (
			cid          int
			name, ctype  string
			notNull, pk  int
			defaultValue sql.NullString
		)
		if err := rows.Scan(&cid, &name, &ctype, &notNull, &defaultValue, &pk); err != nil {
			return nil, err
		}
		columns[name] = true
	}
	return columns, rows.Err()
}
