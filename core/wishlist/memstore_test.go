package wishlist

import (
	"context"
	"io"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/irsalhamdi/storefront/core/owner"
	"github.com/irsalhamdi/storefront/core/product"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// memStore is an in-memory Storer whose transactions hold the store mutex
// and restore a snapshot on failure.
type memStore struct {
	mu    *sync.Mutex
	state *memState
	inTx  bool
}

type memState struct {
	wishlists map[string]Wishlist
	items     map[string][]Item

	failAddItem error
}

func newMemStore() *memStore {
	return &memStore{
		mu: &sync.Mutex{},
		state: &memState{
			wishlists: make(map[string]Wishlist),
			items:     make(map[string][]Item),
		},
	}
}

// memCatalog prices every product from a fixed table.
type memCatalog map[string]decimal.Decimal

func (m memCatalog) QueryByIDs(ctx context.Context, ids []string) ([]product.Product, error) {
	var ps []product.Product
	for _, id := range ids {
		if price, ok := m[id]; ok {
			ps = append(ps, product.Product{ID: id, Name: id, Price: price})
		}
	}
	sort.Slice(ps, func(i, j int) bool { return ps[i].Name < ps[j].Name })
	return ps, nil
}

func newTestCore(t *testing.T, catalog memCatalog) (*Core, *memStore) {
	t.Helper()

	log := logrus.New()
	log.SetOutput(io.Discard)

	ms := newMemStore()
	c := NewCore(log, ms, catalog)

	clock := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	c.now = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		clock = clock.Add(time.Second)
		return clock
	}

	return c, ms
}

func (m *memStore) lock() func() {
	if m.inTx {
		return func() {}
	}
	m.mu.Lock()
	return m.mu.Unlock
}

func (m *memStore) WithinTran(ctx context.Context, fn func(s Storer) error) error {
	if m.inTx {
		return fn(m)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	snap := m.state.clone()
	if err := fn(&memStore{mu: m.mu, state: m.state, inTx: true}); err != nil {
		m.state.wishlists, m.state.items = snap.wishlists, snap.items
		return err
	}
	return nil
}

func (m *memStore) Create(ctx context.Context, w Wishlist) error {
	defer m.lock()()

	for _, existing := range m.state.wishlists {
		if existing.Owner == w.Owner {
			return ErrConflict
		}
	}
	m.state.wishlists[w.ID] = w
	return nil
}

func (m *memStore) QueryByOwner(ctx context.Context, o owner.Owner) (Wishlist, error) {
	defer m.lock()()

	for _, w := range m.state.wishlists {
		if w.Owner == o {
			return w, nil
		}
	}
	return Wishlist{}, ErrNotFound
}

func (m *memStore) Lock(ctx context.Context, wishlistID string) (Wishlist, error) {
	defer m.lock()()

	w, ok := m.state.wishlists[wishlistID]
	if !ok {
		return Wishlist{}, ErrNotFound
	}
	return w, nil
}

func (m *memStore) Touch(ctx context.Context, wishlistID string, now time.Time) error {
	defer m.lock()()

	w, ok := m.state.wishlists[wishlistID]
	if !ok {
		return ErrNotFound
	}
	w.UpdatedAt = now
	m.state.wishlists[wishlistID] = w
	return nil
}

func (m *memStore) Delete(ctx context.Context, wishlistID string) error {
	defer m.lock()()

	if _, ok := m.state.wishlists[wishlistID]; !ok {
		return ErrNotFound
	}
	delete(m.state.wishlists, wishlistID)
	delete(m.state.items, wishlistID)
	return nil
}

func (m *memStore) QueryItems(ctx context.Context, wishlistID string) ([]Item, error) {
	defer m.lock()()

	return append([]Item(nil), m.state.items[wishlistID]...), nil
}

func (m *memStore) AddItem(ctx context.Context, it Item) (bool, error) {
	defer m.lock()()

	if m.state.failAddItem != nil {
		return false, m.state.failAddItem
	}
	for _, existing := range m.state.items[it.WishlistID] {
		if existing.ProductID == it.ProductID {
			return false, nil
		}
	}
	m.state.items[it.WishlistID] = append(m.state.items[it.WishlistID], it)
	return true, nil
}

func (m *memStore) DeleteItem(ctx context.Context, wishlistID string, productID string) error {
	defer m.lock()()

	items := m.state.items[wishlistID]
	for i := range items {
		if items[i].ProductID == productID {
			m.state.items[wishlistID] = append(items[:i:i], items[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (m *memStore) DeleteItems(ctx context.Context, wishlistID string) error {
	defer m.lock()()

	delete(m.state.items, wishlistID)
	return nil
}

func (m *memStore) count(o owner.Owner) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int
	for _, w := range m.state.wishlists {
		if w.Owner == o {
			n++
		}
	}
	return n
}

func (m *memStore) setFailAddItem(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.failAddItem = err
}

func (s *memState) clone() *memState {
	c := &memState{
		wishlists: make(map[string]Wishlist, len(s.wishlists)),
		items:     make(map[string][]Item, len(s.items)),
	}
	for k, v := range s.wishlists {
		c.wishlists[k] = v
	}
	for k, v := range s.items {
		c.items[k] = append([]Item(nil), v...)
	}
	return c
}
