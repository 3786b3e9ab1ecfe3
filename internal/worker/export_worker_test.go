package worker

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expensesheet/internal/amqp"
	"expensesheet/internal/core"
	"expensesheet/internal/export"
	"expensesheet/internal/storage"
)

type fakeAppender struct {
	rows []export.Row
	err  error
}

func (f *fakeAppender) AppendRow(_ context.Context, row export.Row) error {
	if f.err != nil {
		return f.err
	}
	f.rows = append(f.rows, row)
	return nil
}

func newWorkerFixture(t *testing.T) (*ExportWorker, *storage.SQLiteRepository, *fakeAppender) {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	appender := &fakeAppender{}
	return NewExportWorker(repo, appender, 10), repo, appender
}

func seedTransaction(t *testing.T, repo *storage.SQLiteRepository) core.Transaction {
	t.Helper()
	ctx := context.Background()
	user, err := repo.CreateUser(ctx, "alice", "alice@example.com", "hash")
	require.NoError(t, err)
	cat, err := repo.CreateCategoryType(ctx, "Food", core.KindExpense)
	require.NoError(t, err)
	tx, err := repo.CreateTransaction(ctx, core.Transaction{
		CategoryID:  cat.ID,
		UserID:      user.ID,
		Date:        core.NewDate(2026, 8, 10),
		Description: "groceries",
		Amount:      core.Money{Cents: 4250},
	})
	require.NoError(t, err)
	return tx
}

func TestHandleExportMessage(t *testing.T) {
	w, repo, appender := newWorkerFixture(t)
	tx := seedTransaction(t, repo)
	ctx := context.Background()

	err := w.HandleExportMessage(ctx, amqp.NewTransactionExportMessage(tx.ID))
	require.NoError(t, err)

	require.Len(t, appender.rows, 1)
	row := appender.rows[0]
	assert.Equal(t, "2026-08-10", row.Date)
	assert.Equal(t, "groceries", row.Description)
	assert.InDelta(t, 42.50, row.AmountEuros, 0.001)
	assert.Equal(t, "Food", row.CategoryName)
	assert.Equal(t, "expense", row.Kind)
	assert.Equal(t, "alice", row.Username)

	pending, err := repo.PendingExportTransactions(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestHandleExportMessageMissingTransaction(t *testing.T) {
	w, _, appender := newWorkerFixture(t)

	// A message for a deleted row is dropped, not requeued forever.
	err := w.HandleExportMessage(context.Background(), amqp.NewTransactionExportMessage(9999))
	require.NoError(t, err)
	assert.Empty(t, appender.rows)
}

func TestHandleExportMessageAppendFailure(t *testing.T) {
	w, repo, appender := newWorkerFixture(t)
	tx := seedTransaction(t, repo)
	appender.err = errors.New("sheet unavailable")

	err := w.HandleExportMessage(context.Background(), amqp.NewTransactionExportMessage(tx.ID))
	require.Error(t, err)

	// Still pending so the sweep retries it.
	pending, err := repo.PendingExportTransactions(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, tx.ID, pending[0].ID)
}

func TestStartupSweep(t *testing.T) {
	w, repo, appender := newWorkerFixture(t)
	ctx := context.Background()

	user, err := repo.CreateUser(ctx, "alice", "alice@example.com", "hash")
	require.NoError(t, err)
	cat, err := repo.CreateCategoryType(ctx, "Food", core.KindExpense)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, err := repo.CreateTransaction(ctx, core.Transaction{
			CategoryID:  cat.ID,
			UserID:      user.ID,
			Date:        core.NewDate(2026, 8, 10+i),
			Description: "pending",
			Amount:      core.Money{Cents: 100},
		})
		require.NoError(t, err)
	}

	require.NoError(t, w.StartupSweep(ctx))

	assert.Len(t, appender.rows, 3)
	pending, err := repo.PendingExportTransactions(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)

	// A second sweep finds nothing new.
	require.NoError(t, w.StartupSweep(ctx))
	assert.Len(t, appender.rows, 3)
}
