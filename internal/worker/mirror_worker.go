package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"financas/internal/amqp"
	"financas/internal/core"
	"financas/internal/sheets"
	"financas/internal/storage"
)

// BackfillSource is what Backfill reads from.
type BackfillSource interface {
	storage.TransactionReader
	storage.UserLister
}

// MirrorWorker copies ledger events into spreadsheet rows.
type MirrorWorker struct {
	mirror sheets.LedgerMirror
	loc    *time.Location
}

// NewMirrorWorker formats row dates in loc (UTC when nil).
func NewMirrorWorker(mirror sheets.LedgerMirror, loc *time.Location) *MirrorWorker {
	if loc == nil {
		loc = time.UTC
	}
	return &MirrorWorker{mirror: mirror, loc: loc}
}

// HandleEvent is an amqp.Handler. A returned error requeues the event.
func (w *MirrorWorker) HandleEvent(ctx context.Context, ev amqp.LedgerEvent) error {
	slog.InfoContext(ctx, "Processing ledger event",
		"event_type", ev.Type,
		"owner_id", ev.OwnerID)

	switch ev.Type {
	case amqp.TransactionCreated:
		row, err := w.transactionRow(ev)
		if err != nil {
			return err
		}
		ref, err := w.mirror.AppendTransaction(ctx, row)
		if err != nil {
			return fmt.Errorf("mirror transaction: %w", err)
		}
		slog.InfoContext(ctx, "Transaction mirrored",
			"owner_id", ev.OwnerID,
			"id", row.Transaction.ID,
			"ref", ref)

	case amqp.TransactionsDeleted:
		if ev.Count == 0 {
			slog.DebugContext(ctx, "Skipping empty deletion", "owner_id", ev.OwnerID, "policy", ev.Policy)
			return nil
		}
		ref, err := w.mirror.AppendDeletion(ctx, w.deletionRow(ev))
		if err != nil {
			return fmt.Errorf("mirror deletion: %w", err)
		}
		slog.InfoContext(ctx, "Deletion mirrored",
			"owner_id", ev.OwnerID,
			"policy", ev.Policy,
			"deleted", ev.Count,
			"ref", ref)

	default:
		slog.WarnContext(ctx, "Ignoring unknown ledger event", "event_type", ev.Type)
	}
	return nil
}

func (w *MirrorWorker) transactionRow(ev amqp.LedgerEvent) (sheets.TransactionRow, error) {
	if ev.Transaction == nil {
		return sheets.TransactionRow{}, fmt.Errorf("%s event without transaction", ev.Type)
	}
	t := ev.Transaction.ToCore(ev.OwnerID)
	at := t.CreatedAt
	if at.IsZero() {
		at = ev.Timestamp
	}
	return sheets.TransactionRow{
		At:          at.In(w.loc),
		OwnerID:     ev.OwnerID,
		OwnerName:   ev.OwnerName,
		Transaction: t,
	}, nil
}

func (w *MirrorWorker) deletionRow(ev amqp.LedgerEvent) sheets.DeletionRow {
	return sheets.DeletionRow{
		At:      ev.Timestamp.In(w.loc),
		OwnerID: ev.OwnerID,
		Policy:  ev.Policy,
		Count:   ev.Count,
	}
}

// Backfill appends every stored transaction in r, oldest first. It is the
// recovery path when events were lost before the worker ran.
func (w *MirrorWorker) Backfill(ctx context.Context, src BackfillSource, r core.Range) (int, error) {
	users, err := src.ListUsers(ctx)
	if err != nil {
		return 0, fmt.Errorf("list users: %w", err)
	}
	names := make(map[int64]string, len(users))
	for _, u := range users {
		names[u.ID] = u.Name
	}

	txs, err := src.List(ctx, storage.Filter{Range: r})
	if err != nil {
		return 0, fmt.Errorf("list transactions: %w", err)
	}

	slog.InfoContext(ctx, "Backfilling spreadsheet", "count", len(txs))

	n := 0
	for i := len(txs) - 1; i >= 0; i-- {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		t := txs[i]
		row := sheets.TransactionRow{
			At:          t.CreatedAt.In(w.loc),
			OwnerID:     t.OwnerID,
			OwnerName:   names[t.OwnerID],
			Transaction: t,
		}
		if _, err := w.mirror.AppendTransaction(ctx, row); err != nil {
			return n, fmt.Errorf("mirror transaction %s: %w", t.ID, err)
		}
		n++
	}

	slog.InfoContext(ctx, "Backfill completed", "mirrored", n)
	return n, nil
}
