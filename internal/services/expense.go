package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"ricevute/internal/core"
	"ricevute/internal/remote"
	"ricevute/internal/storage"
)

// ExpenseService records expenses locally and mirrors the database to the
// remote tree after each mutation. The local write is the source of truth;
// the mirror push is best-effort.
type ExpenseService struct {
	repo         *storage.SQLiteRepository
	rules        map[string]core.DeductionRule
	tree         *remote.Tree // nil disables database mirroring
	remoteDBName string
}

func NewExpenseService(repo *storage.SQLiteRepository, rules map[string]core.DeductionRule, tree *remote.Tree, remoteDBName string) *ExpenseService {
	return &ExpenseService{
		repo:         repo,
		rules:        rules,
		tree:         tree,
		remoteDBName: remoteDBName,
	}
}

func (s *ExpenseService) AddExpense(ctx context.Context, expense core.Expense) (int64, error) {
	id, err := s.repo.InsertExpense(ctx, expense)
	if err != nil {
		return 0, fmt.Errorf("insert expense: %w", err)
	}
	s.mirrorDatabase(ctx)
	return id, nil
}

func (s *ExpenseService) ListExpenses(ctx context.Context, year int) ([]core.Expense, error) {
	return s.repo.ListExpenses(ctx, year)
}

func (s *ExpenseService) YearSummary(ctx context.Context, year int) (core.YearSummary, error) {
	totals, err := s.repo.CategoryTotals(ctx, year)
	if err != nil {
		return core.YearSummary{}, fmt.Errorf("category totals: %w", err)
	}
	return core.BuildYearSummary(year, totals, s.rules), nil
}

// mirrorDatabase pushes the on-disk database file to the remote tree.
// SQLite keeps the file consistent between statements, so reading it after
// a committed insert is safe for a single-writer process.
func (s *ExpenseService) mirrorDatabase(ctx context.Context) {
	if s.tree == nil {
		return
	}
	data, err := os.ReadFile(s.repo.Path())
	if err != nil {
		slog.WarnContext(ctx, "Failed to read database for mirroring", "error", err)
		return
	}
	if err := s.tree.PushDatabase(ctx, s.remoteDBName, data); err != nil {
		slog.WarnContext(ctx, "Failed to mirror database to remote", "error", err)
	}
}
