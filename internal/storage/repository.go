package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"ricevute/internal/core"

	_ "modernc.org/sqlite"
)

const dateLayout = "2006-01-02"

// SQLiteRepository persists expense records in the local database. The
// database file doubles as the artifact mirrored to the remote store.
type SQLiteRepository struct {
	db   *sql.DB
	path string
}

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

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db, path: dbPath}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Path returns the database file location, used by the remote mirror.
func (r *SQLiteRepository) Path() string {
	return r.path
}

// InsertExpense stores a validated expense and returns its row id.
func (r *SQLiteRepository) InsertExpense(ctx context.Context, e core.Expense) (int64, error) {
	if err := e.Validate(); err != nil {
		return 0, fmt.Errorf("validation failed: %w", err)
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO expenses (year, date, category, description, amount_cents)
		 VALUES (?, ?, ?, ?, ?)`,
		e.Year, e.Date.Format(dateLayout), e.Category, e.Description, e.Amount.Cents)
	if err != nil {
		return 0, fmt.Errorf("insert expense: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}

	slog.InfoContext(ctx, "Expense saved",
		"id", id,
		"year", e.Year,
		"category", e.Category,
		"amount_cents", e.Amount.Cents)

	return id, nil
}

// ListExpenses returns all expenses for a year ordered by date.
func (r *SQLiteRepository) ListExpenses(ctx context.Context, year int) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT year, date, category, description, amount_cents
		 FROM expenses WHERE year = ? ORDER BY date, id`, year)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var out []core.Expense
	for rows.Next() {
		var (
			e       core.Expense
			dateStr string
		)
		if err := rows.Scan(&e.Year, &dateStr, &e.Category, &e.Description, &e.Amount.Cents); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		t, err := time.Parse(dateLayout, dateStr)
		if err != nil {
			return nil, fmt.Errorf("parse stored date %q: %w", dateStr, err)
		}
		e.Date = core.Date{Time: t}
		out = append(out, e)
	}
	return out, rows.Err()
}

// CategoryTotals returns cents spent per category for a year.
func (r *SQLiteRepository) CategoryTotals(ctx context.Context, year int) (map[string]int64, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT category, SUM(amount_cents) FROM expenses WHERE year = ? GROUP BY category`, year)
	if err != nil {
		return nil, fmt.Errorf("category totals: %w", err)
	}
	defer rows.Close()

	totals := map[string]int64{}
	for rows.Next() {
		var (
			category string
			cents    int64
		)
		if err := rows.Scan(&category, &cents); err != nil {
			return nil, fmt.Errorf("scan total: %w", err)
		}
		totals[category] = cents
	}
	return totals, rows.Err()
}
