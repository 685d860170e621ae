package cart

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/irsalhamdi/storefront/core/owner"
	"github.com/sirupsen/logrus"
)

// memStore is an in-memory Storer. A transaction holds the store mutex for
// its whole duration and restores a snapshot when it fails.
type memStore struct {
	mu    *sync.Mutex
	state *memState
	inTx  bool
}

type memState struct {
	carts map[string]Cart
	order []string
	items map[string][]Item

	conflicts      int
	failCreateItem error
}

func newMemStore() *memStore {
	return &memStore{
		mu: &sync.Mutex{},
		state: &memState{
			carts: make(map[string]Cart),
			items: make(map[string][]Item),
		},
	}
}

func newTestCore(t *testing.T) (*Core, *memStore) {
	t.Helper()

	log := logrus.New()
	log.SetOutput(io.Discard)

	ms := newMemStore()
	c := NewCore(log, ms)

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
		m.state.carts, m.state.order, m.state.items = snap.carts, snap.order, snap.items
		return err
	}
	return nil
}

func (m *memStore) Create(ctx context.Context, c Cart) error {
	defer m.lock()()

	for _, existing := range m.state.carts {
		if existing.Active && existing.Owner == c.Owner {
			m.state.conflicts++
			return ErrConflict
		}
	}
	m.state.carts[c.ID] = c
	m.state.order = append(m.state.order, c.ID)
	return nil
}

func (m *memStore) QueryByOwner(ctx context.Context, o owner.Owner) (Cart, error) {
	defer m.lock()()

	for _, id := range m.state.order {
		c := m.state.carts[id]
		if c.Active && c.Owner == o {
			return c, nil
		}
	}
	return Cart{}, ErrNotFound
}

func (m *memStore) Lock(ctx context.Context, cartID string) (Cart, error) {
	defer m.lock()()

	c, ok := m.state.carts[cartID]
	if !ok || !c.Active {
		return Cart{}, ErrNotFound
	}
	return c, nil
}

func (m *memStore) Touch(ctx context.Context, cartID string, now time.Time) error {
	defer m.lock()()

	c, ok := m.state.carts[cartID]
	if !ok {
		return ErrNotFound
	}
	c.UpdatedAt = now
	m.state.carts[cartID] = c
	return nil
}

func (m *memStore) Retire(ctx context.Context, cartID string, now time.Time) error {
	defer m.lock()()

	c, ok := m.state.carts[cartID]
	if !ok || !c.Active {
		return ErrNotFound
	}
	c.Active = false
	c.RetiredAt = &now
	c.UpdatedAt = now
	m.state.carts[cartID] = c
	return nil
}

func (m *memStore) QueryItems(ctx context.Context, cartID string) ([]Item, error) {
	defer m.lock()()

	items := make([]Item, len(m.state.items[cartID]))
	copy(items, m.state.items[cartID])
	return items, nil
}

func (m *memStore) QueryItem(ctx context.Context, cartID string, productID string) (Item, error) {
	defer m.lock()()

	for _, it := range m.state.items[cartID] {
		if it.ProductID == productID {
			return it, nil
		}
	}
	return Item{}, ErrNotFound
}

func (m *memStore) CreateItem(ctx context.Context, it Item) error {
	defer m.lock()()

	if m.state.failCreateItem != nil {
		return m.state.failCreateItem
	}
	for _, existing := range m.state.items[it.CartID] {
		if existing.ProductID == it.ProductID {
			return ErrConflict
		}
	}
	m.state.items[it.CartID] = append(m.state.items[it.CartID], it)
	return nil
}

func (m *memStore) UpdateItem(ctx context.Context, it Item) error {
	defer m.lock()()

	items := m.state.items[it.CartID]
	for i := range items {
		if items[i].ProductID == it.ProductID {
			items[i].Quantity = it.Quantity
			items[i].UpdatedAt = it.UpdatedAt
			return nil
		}
	}
	return ErrNotFound
}

func (m *memStore) DeleteItem(ctx context.Context, cartID string, productID string) error {
	defer m.lock()()

	items := m.state.items[cartID]
	for i := range items {
		if items[i].ProductID == productID {
			m.state.items[cartID] = append(items[:i:i], items[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (m *memStore) DeleteItems(ctx context.Context, cartID string) error {
	defer m.lock()()

	delete(m.state.items, cartID)
	return nil
}

func (m *memStore) activeCarts(o owner.Owner) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int
	for _, c := range m.state.carts {
		if c.Active && c.Owner == o {
			n++
		}
	}
	return n
}

func (m *memStore) setFailCreateItem(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.failCreateItem = err
}

func (s *memState) clone() *memState {
	c := &memState{
		carts: make(map[string]Cart, len(s.carts)),
		order: append([]string(nil), s.order...),
		items: make(map[string][]Item, len(s.items)),
	}
	for k, v := range s.carts {
		c.carts[k] = v
	}
	for k, v := range s.items {
		c.items[k] = append([]Item(nil), v...)
	}
	return c
}
