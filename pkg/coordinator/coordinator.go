// Package coordinator orchestrates ledger mutations: the remote transaction
// write, the local attachment bind, and the post-mutation refresh that keeps
// the cached view consistent with server state.
package coordinator

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cashbook-app/cashbook/pkg/ledger"
)

// LedgerAPI is the slice of the transaction service client the coordinator
// depends on.
type LedgerAPI interface {
	CreateTransaction(nt ledger.NewTransaction) (ledger.Transaction, error)
	UpdateTransaction(tx ledger.Transaction) (ledger.Transaction, error)
	DeleteTransaction(id int64) error
	ListTransactions(userID int64) ([]ledger.Transaction, error)
	GetUser(id int64) (ledger.User, error)
}

// AttachmentBinder is the slice of the attachment store the coordinator
// depends on.
type AttachmentBinder interface {
	Put(txID int64, ref string) error
	Get(txID int64) (ref string, ok bool, err error)
	Delete(txID int64) error
}

// SnapshotSaver persists the refreshed dashboard view. Optional.
type SnapshotSaver interface {
	Save(userID int64, balance decimal.Decimal, txns []ledger.Transaction) error
}

// Coordinator sequences one user-initiated mutation at a time: it awaits the
// transaction write before touching the attachment store, so no parallel
// speculative writes exist for the same transaction identifier.
type Coordinator struct {
	ledger      LedgerAPI
	attachments AttachmentBinder
	snapshots   SnapshotSaver
}

// New creates a Coordinator. snapshots may be nil when no local cache is
// configured.
func New(api LedgerAPI, attachments AttachmentBinder, snapshots SnapshotSaver) *Coordinator {
	return &Coordinator{
		ledger:      api,
		attachments: attachments,
		snapshots:   snapshots,
	}
}

// RecordResult is the outcome of a successful Record call. BindWarning is
// non-nil when the transaction was written but the attachment bind failed;
// the ledger entry stands and the photo is simply absent.
type RecordResult struct {
	Transaction ledger.Transaction
	BindWarning error
}

// Record writes a new transaction and, if an artifact was captured, binds it
// under the server-assigned identifier.
//
// The transaction write is the commit point. A create failure aborts the
// whole operation before any bind is attempted; a bind failure after a
// successful create degrades to a warning and never rolls the entry back.
func (c *Coordinator) Record(userID int64, kind ledger.Kind, amount decimal.Decimal, notes, artifactRef string) (*RecordResult, error) {
	if notes == "" {
		notes = fmt.Sprintf("%s - %s", kind.Label(), time.Now().Format("2006-01-02 15:04:05"))
	}

	created, err := c.ledger.CreateTransaction(ledger.NewTransaction{
		UserID: userID,
		Kind:   kind,
		Amount: amount,
		Notes:  notes,
	})
	if err != nil {
		return nil, err
	}

	result := &RecordResult{Transaction: created}

	if artifactRef != "" {
		if err := c.attachments.Put(created.ID, artifactRef); err != nil {
			slog.Warn("transaction saved but attachment bind failed",
				"transaction_id", created.ID, "error", err)
			result.BindWarning = fmt.Errorf("attachment bind failed: %w", err)
		}
	}

	return result, nil
}

// Edit replaces a transaction's amount and notes. The cash direction is
// re-derived from the existing record's kind and never flips. Attachment
// bindings are untouched.
func (c *Coordinator) Edit(existing ledger.Transaction, newAmount decimal.Decimal, newNotes string) (*ledger.Transaction, error) {
	updated := existing
	updated.Notes = newNotes
	if existing.Type == ledger.KindCashIn {
		updated.CashIn = newAmount
		updated.CashOut = decimal.Zero
	} else {
		updated.CashOut = newAmount
		updated.CashIn = decimal.Zero
	}

	saved, err := c.ledger.UpdateTransaction(updated)
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

// Delete removes a transaction from the ledger and, best-effort, its local
// attachment binding. The remote delete is authoritative: a failure to drop
// the local binding is logged and does not fail the operation.
func (c *Coordinator) Delete(txID int64) error {
	if err := c.ledger.DeleteTransaction(txID); err != nil {
		return err
	}

	if err := c.attachments.Delete(txID); err != nil {
		slog.Warn("transaction deleted but attachment cleanup failed",
			"transaction_id", txID, "error", err)
	}

	return nil
}

// Snapshot is a freshly fetched dashboard view with hydrated attachments.
type Snapshot struct {
	Balance      decimal.Decimal
	Transactions []ledger.Transaction
	Attachments  map[int64]string
	RefreshedAt  time.Time
}

// Refresh re-queries the server for the balance and transaction list,
// persists the result to the local cache, and hydrates attachments.
// Callers must not assume any in-memory balance is fresh until it returns.
func (c *Coordinator) Refresh(userID int64) (*Snapshot, error) {
	user, err := c.ledger.GetUser(userID)
	if err != nil {
		return nil, err
	}

	txns, err := c.ledger.ListTransactions(userID)
	if err != nil {
		return nil, err
	}

	if c.snapshots != nil {
		if err := c.snapshots.Save(userID, user.Balance, txns); err != nil {
			slog.Warn("failed to persist dashboard snapshot", "user_id", userID, "error", err)
		}
	}

	return &Snapshot{
		Balance:      user.Balance,
		Transactions: txns,
		Attachments:  c.HydrateAttachments(txns),
		RefreshedAt:  time.Now(),
	}, nil
}

// HydrateAttachments resolves each transaction's artifact reference,
// producing a sparse map. A read failure for one key is logged and skipped:
// it means "status unknown", not "no artifact", and must not poison the rest
// of the list.
func (c *Coordinator) HydrateAttachments(txns []ledger.Transaction) map[int64]string {
	refs := make(map[int64]string)
	for _, tx := range txns {
		ref, ok, err := c.attachments.Get(tx.ID)
		if err != nil {
			slog.Warn("failed to read attachment", "transaction_id", tx.ID, "error", err)
			continue
		}
		if ok {
			refs[tx.ID] = ref
		}
	}
	return refs
}
