// Package repository owns the in-memory transaction collection and
// serializes every mutation to the key-value store before exposing the
// new state.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

// StorageKey is the single logical key the whole collection lives under,
// as a JSON-serialized array of records.
const StorageKey = "finance_transactions"

// ErrCorruptData marks stored data that did not decode to a transaction
// array. Load fails soft: the caller gets an empty collection plus this
// error, and the store is left untouched.
var ErrCorruptData = errors.New("corrupt stored data")

// Repository is the single source of truth for the transaction
// collection. All mutations go through it; the presentation layer only
// ever sees snapshots.
type Repository struct {
	mu     sync.Mutex
	kv     storage.KV
	txs    []core.Transaction
	lastID int64

	now func() time.Time
}

func New(kv storage.KV) *Repository {
	return &Repository{kv: kv, now: time.Now}
}

// Load reads the persisted collection into memory. An absent key yields
// an empty collection. Decode failures yield an empty collection and
// ErrCorruptData; records that decode but fail validation are skipped.
func (r *Repository) Load(ctx context.Context) ([]core.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, ok, err := r.kv.Get(ctx, StorageKey)
	if err != nil {
		r.txs = nil
		return nil, fmt.Errorf("read transactions: %w", err)
	}
	if !ok {
		r.txs = nil
		return nil, nil
	}

	var decoded []core.Transaction
	if err := json.Unmarshal(data, &decoded); err != nil {
		slog.WarnContext(ctx, "Stored transactions failed to decode", "error", err, "bytes", len(data))
		r.txs = nil
		return nil, fmt.Errorf("%w: %v", ErrCorruptData, err)
	}

	txs := make([]core.Transaction, 0, len(decoded))
	for _, tx := range decoded {
		if err := tx.Validate(); err != nil {
			slog.WarnContext(ctx, "Skipping malformed stored record", "id", tx.ID, "error", err)
			continue
		}
		txs = append(txs, tx)
	}
	r.txs = txs
	return r.snapshotLocked(), nil
}

// Add assigns a fresh id and creation timestamp, prepends the record and
// persists the full collection. On persist failure the in-memory
// collection reverts to its prior state.
func (r *Repository) Add(ctx context.Context, draft core.Draft) (core.Transaction, error) {
	if err := draft.Validate(); err != nil {
		return core.Transaction{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	tx := core.Transaction{
		ID:          r.nextID(),
		Type:        draft.Type,
		Amount:      draft.Amount,
		Description: draft.Description,
		Date:        draft.Date,
		CreatedAt:   r.now().UTC().Format(time.RFC3339),
	}

	prior := r.txs
	r.txs = append([]core.Transaction{tx}, r.txs...)
	if err := r.persist(ctx); err != nil {
		r.txs = prior
		return core.Transaction{}, err
	}

	slog.InfoContext(ctx, "Transaction saved",
		"id", tx.ID,
		"type", tx.Type,
		"amount", tx.Amount,
		"date", tx.Date)
	return tx, nil
}

// Update merges patch into the record matching id. An absent id is a
// no-op, not an error; fields the patch omits are preserved.
func (r *Repository) Update(ctx context.Context, id string, patch core.Patch) error {
	if err := patch.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	idx := -1
	for i, tx := range r.txs {
		if tx.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}

	prior := r.txs
	updated := append([]core.Transaction(nil), r.txs...)
	updated[idx] = patch.ApplyTo(updated[idx])
	r.txs = updated
	if err := r.persist(ctx); err != nil {
		r.txs = prior
		return err
	}

	slog.InfoContext(ctx, "Transaction updated", "id", id)
	return nil
}

// Delete removes the record matching id; absent ids are a no-op.
func (r *Repository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	remaining := make([]core.Transaction, 0, len(r.txs))
	for _, tx := range r.txs {
		if tx.ID != id {
			remaining = append(remaining, tx)
		}
	}
	if len(remaining) == len(r.txs) {
		return nil
	}

	prior := r.txs
	r.txs = remaining
	if err := r.persist(ctx); err != nil {
		r.txs = prior
		return err
	}

	slog.InfoContext(ctx, "Transaction deleted", "id", id)
	return nil
}

// Snapshot returns a copy of the current in-memory collection.
func (r *Repository) Snapshot() []core.Transaction {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked()
}

func (r *Repository) snapshotLocked() []core.Transaction {
	out := make([]core.Transaction, len(r.txs))
	copy(out, r.txs)
	return out
}

// persist rewrites the whole collection. Collections stay small
// (personal finance, thousands of records at most), so a full rewrite
// per mutation is fine.
func (r *Repository) persist(ctx context.Context) error {
	data, err := json.Marshal(r.txs)
	if err != nil {
		return fmt.Errorf("encode transactions: %w", err)
	}
	if err := r.kv.Set(ctx, StorageKey, data); err != nil {
		return fmt.Errorf("persist transactions: %w", err)
	}
	return nil
}

// nextID derives an id from the creation timestamp, with a monotonic
// guard so rapid successive adds in the same millisecond still get
// distinct ids.
func (r *Repository) nextID() string {
	ms := r.now().UnixMilli()
	if ms <= r.lastID {
		ms = r.lastID + 1
	}
	r.lastID = ms
	return strconv.FormatInt(ms, 10)
}
