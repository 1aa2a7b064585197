package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/wareledger/wareledger/internal/app/domain/account"
	"github.com/wareledger/wareledger/internal/app/domain/audit"
	"github.com/wareledger/wareledger/internal/app/domain/inventory"
	"github.com/wareledger/wareledger/internal/app/domain/pricing"
	"github.com/wareledger/wareledger/internal/app/storage"
)

// Store is an in-memory implementation of the storage interfaces. It is safe
// for concurrent use and is primarily intended for tests and local development.
// It mirrors what the database routines do: joined names on receipts, cascade
// on object delete, quantities recomputed by RefreshStorageStats.
type Store struct {
	mu       sync.RWMutex
	atomicMu sync.Mutex
	st       *state
	now      func() time.Time
}

var _ storage.InventoryStore = (*Store)(nil)
var _ storage.UserStore = (*Store)(nil)
var _ storage.PricingStore = (*Store)(nil)
var _ storage.AuditStore = (*Store)(nil)
var _ storage.Pinger = (*Store)(nil)

// errReferenced mimics a foreign key violation.
var errReferenced = errors.New("record is still referenced")

type document struct {
	number   string
	date     inventory.Date
	sellerID *int64
	billID   *int64
	file     []byte
	filename string
}

type receiptRow struct {
	inventory.NewReceipt
	id        int64
	createdAt time.Time
}

type writeOffRow struct {
	inventory.WriteOffInput
	createdAt time.Time
}

type userRow struct {
	account.User
	digest string
}

type state struct {
	nextID    int64
	objects   map[int64]inventory.Object
	sellers   map[int64]inventory.Seller
	themes    map[int64]inventory.Theme
	documents map[inventory.FileKind]map[int64]document
	receipts  map[int64]receiptRow
	writeOffs map[int64]writeOffRow
	users     map[int64]userRow
	prices    map[int64]pricing.Pricing
	logs      []audit.Entry
}

func newState() *state {
	return &state{
		nextID:  1,
		objects: make(map[int64]inventory.Object),
		sellers: make(map[int64]inventory.Seller),
		themes:  make(map[int64]inventory.Theme),
		documents: map[inventory.FileKind]map[int64]document{
			inventory.FileBill:         {},
			inventory.FileInvoice:      {},
			inventory.FileEntryControl: {},
		},
		receipts:  make(map[int64]receiptRow),
		writeOffs: make(map[int64]writeOffRow),
		users:     make(map[int64]userRow),
		prices:    make(map[int64]pricing.Pricing),
	}
}

// clone copies the maps. Rows are replaced, never mutated, so values can be
// shared.
func (st *state) clone() *state {
	out := &state{
		nextID:    st.nextID,
		objects:   copyMap(st.objects),
		sellers:   copyMap(st.sellers),
		themes:    copyMap(st.themes),
		documents: make(map[inventory.FileKind]map[int64]document, len(st.documents)),
		receipts:  copyMap(st.receipts),
		writeOffs: copyMap(st.writeOffs),
		users:     copyMap(st.users),
		prices:    copyMap(st.prices),
		logs:      append([]audit.Entry(nil), st.logs...),
	}
	for kind, docs := range st.documents {
		out.documents[kind] = copyMap(docs)
	}
	return out
}

func copyMap[K comparable, V any](in map[K]V) map[K]V {
	out := make(map[K]V, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// New creates an empty store.
func New() *Store {
	return &Store{st: newState(), now: func() time.Time { return time.Now().UTC() }}
}

func (s *Store) nextIDLocked() int64 {
	id := s.st.nextID
	s.st.nextID++
	return id
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

// Atomic runs fn and restores the previous contents if it fails. Atomic calls
// are serialised against each other.
func (s *Store) Atomic(_ context.Context, fn func(storage.InventoryStore) error) error {
	s.atomicMu.Lock()
	defer s.atomicMu.Unlock()

	s.mu.RLock()
	snapshot := s.st.clone()
	s.mu.RUnlock()

	if err := fn(s); err != nil {
		s.mu.Lock()
		s.st = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

func sortedValues[V any](m map[int64]V) []V {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	out := make([]V, 0, len(keys))
	for _, k := range keys {
		out = append(out, m[k])
	}
	return out
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func int64Ptr(v int64) *int64 { return &v }

func timePtr(t time.Time) *time.Time { return &t }
