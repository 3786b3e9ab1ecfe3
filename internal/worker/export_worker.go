// Package worker moves stored transactions into the spreadsheet export.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"expensesheet/internal/amqp"
	"expensesheet/internal/export"
	"expensesheet/internal/storage"
)

// ExportWorker appends transactions to the spreadsheet and marks them
// exported.
type ExportWorker struct {
	storage   *storage.SQLiteRepository
	appender  export.RowAppender
	batchSize int
}

func NewExportWorker(storage *storage.SQLiteRepository, appender export.RowAppender, batchSize int) *ExportWorker {
	return &ExportWorker{
		storage:   storage,
		appender:  appender,
		batchSize: batchSize,
	}
}

// HandleExportMessage processes a single export message from AMQP.
func (w *ExportWorker) HandleExportMessage(ctx context.Context, msg *amqp.TransactionExportMessage) error {
	slog.InfoContext(ctx, "Processing export message", "transaction_id", msg.ID)
	return w.exportTransaction(ctx, msg.ID)
}

// ProcessPendingTransactions exports any transactions the AMQP path missed.
func (w *ExportWorker) ProcessPendingTransactions(ctx context.Context) error {
	pending, err := w.storage.PendingExportTransactions(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("get pending transactions: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending transactions", "count", len(pending))

	for _, p := range pending {
		if err := w.exportTransaction(ctx, p.ID); err != nil {
			slog.ErrorContext(ctx, "Failed to export transaction", "transaction_id", p.ID, "error", err)
			continue
		}
	}
	return nil
}

// StartupSweep drains the pending backlog at worker startup, recovering from
// missed messages or worker downtime. Uses a larger batch than the periodic
// sweep.
func (w *ExportWorker) StartupSweep(ctx context.Context) error {
	pending, err := w.storage.PendingExportTransactions(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("get pending transactions for startup sweep: %w", err)
	}
	if len(pending) == 0 {
		slog.InfoContext(ctx, "No pending transactions found on startup")
		return nil
	}

	slog.InfoContext(ctx, "Found pending transactions on startup", "count", len(pending))

	exported := 0
	failed := 0
	for _, p := range pending {
		if err := w.exportTransaction(ctx, p.ID); err != nil {
			slog.ErrorContext(ctx, "Failed to export transaction during startup sweep",
				"transaction_id", p.ID, "error", err)
			failed++
			continue
		}
		exported++
	}

	slog.InfoContext(ctx, "Startup sweep completed",
		"total", len(pending),
		"exported", exported,
		"errors", failed)
	return nil
}

func (w *ExportWorker) exportTransaction(ctx context.Context, id int64) error {
	row, err := w.storage.TransactionByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			// The row is gone; nothing to export, drop the message.
			slog.WarnContext(ctx, "Transaction no longer exists, skipping export", "transaction_id", id)
			return nil
		}
		return fmt.Errorf("get transaction from storage: %w", err)
	}

	user, err := w.storage.UserByID(ctx, row.Transaction.UserID)
	if err != nil {
		return fmt.Errorf("get transaction owner: %w", err)
	}

	sheetRow := export.Row{
		Date:         row.Transaction.Date.ISO(),
		Description:  row.Transaction.Description,
		AmountEuros:  float64(row.Transaction.Amount.Cents) / 100.0,
		CategoryName: row.CategoryName,
		Kind:         string(row.Kind),
		Username:     user.Username,
	}

	if err := w.appender.AppendRow(ctx, sheetRow); err != nil {
		return fmt.Errorf("append to sheet: %w", err)
	}

	if err := w.storage.MarkExported(ctx, id); err != nil {
		// The append succeeded; log and let the next sweep retry the flag.
		slog.ErrorContext(ctx, "Failed to mark as exported", "transaction_id", id, "error", err)
		return nil
	}

	slog.InfoContext(ctx, "Transaction exported",
		"transaction_id", id,
		"description", row.Transaction.Description,
		"amount_cents", row.Transaction.Amount.Cents)
	return nil
}
