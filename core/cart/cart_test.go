package cart

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/irsalhamdi/storefront/core/owner"
	"github.com/irsalhamdi/storefront/core/product"
	"github.com/shopspring/decimal"
)

func prod(id, price string) product.Product {
	return product.Product{ID: id, Name: "product " + id, Price: decimal.RequireFromString(price)}
}

func quantities(t *testing.T, h *Handle) map[string]int {
	t.Helper()

	items, err := h.Items(context.Background())
	if err != nil {
		t.Fatalf("listing items: %v", err)
	}
	q := make(map[string]int, len(items))
	for _, it := range items {
		q[it.ProductID] = it.Quantity
	}
	return q
}

func TestTotalPriceIsExact(t *testing.T) {
	items := []Item{
		{ProductID: "a", Quantity: 3, Price: decimal.RequireFromString("19.99")},
		{ProductID: "b", Quantity: 1, Price: decimal.RequireFromString("5.00")},
	}

	got := TotalPrice(items)
	if !got.Equal(decimal.RequireFromString("64.97")) || got.StringFixed(2) != "64.97" {
		t.Fatalf("expected 64.97, got %s", got)
	}
	if n := TotalQuantity(items); n != 4 {
		t.Fatalf("expected 4 units, got %d", n)
	}
}

func TestTotalPriceManyLines(t *testing.T) {
	items := make([]Item, 1000)
	for i := range items {
		items[i] = Item{ProductID: string(rune(i)), Quantity: 1, Price: decimal.RequireFromString("0.10")}
	}

	if got := TotalPrice(items); !got.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("expected 100, got %s", got)
	}
}

func TestHandleTotals(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCore(t)

	h, err := c.Resolve(ctx, owner.Session("tok"))
	if err != nil {
		t.Fatal(err)
	}

	if empty, err := h.IsEmpty(ctx); err != nil || !empty {
		t.Fatalf("new cart should be empty: %v %v", empty, err)
	}

	if _, err := h.Add(ctx, prod("a", "19.99"), 3); err != nil {
		t.Fatal(err)
	}
	if _, err := h.Add(ctx, prod("b", "5.00"), 1); err != nil {
		t.Fatal(err)
	}

	total, err := h.TotalPrice(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if total.StringFixed(2) != "64.97" {
		t.Fatalf("expected 64.97, got %s", total)
	}

	qty, err := h.TotalQuantity(ctx)
	if err != nil || qty != 4 {
		t.Fatalf("expected 4 units, got %d %v", qty, err)
	}

	n, err := h.Count(ctx)
	if err != nil || n != 2 {
		t.Fatalf("expected 2 lines, got %d %v", n, err)
	}

	sum, err := h.Summary(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if sum.ItemsCount != 2 || sum.TotalQuantity != 4 || !sum.TotalPrice.Equal(total) {
		t.Fatalf("unexpected summary %+v", sum)
	}
	if sum.Items[0].ProductID != "a" || sum.Items[1].ProductID != "b" {
		t.Fatalf("items should keep insertion order, got %+v", sum.Items)
	}
}

func TestAddKeepsPriceSnapshot(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCore(t)

	h, err := c.Resolve(ctx, owner.User("u1"))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := h.Add(ctx, prod("a", "10.00"), 1); err != nil {
		t.Fatal(err)
	}

	it, err := h.Add(ctx, prod("a", "12.50"), 2)
	if err != nil {
		t.Fatal(err)
	}

	if it.Quantity != 3 {
		t.Fatalf("expected quantity 3, got %d", it.Quantity)
	}
	if !it.Price.Equal(decimal.RequireFromString("10.00")) {
		t.Fatalf("price snapshot changed to %s", it.Price)
	}
}

func TestAddRejectsInvalidQuantity(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCore(t)

	h, err := c.Resolve(ctx, owner.Session("tok"))
	if err != nil {
		t.Fatal(err)
	}

	for _, q := range []int{0, -1, MaxQuantity + 1} {
		if _, err := h.Add(ctx, prod("a", "1.00"), q); !errors.Is(err, ErrInvalidQuantity) {
			t.Fatalf("quantity %d: expected ErrInvalidQuantity, got %v", q, err)
		}
	}

	if _, err := h.Add(ctx, prod("a", "1.00"), 99); err != nil {
		t.Fatal(err)
	}
	if _, err := h.Add(ctx, prod("a", "1.00"), 2); !errors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("expected increment past the limit to fail, got %v", err)
	}
	if got := quantities(t, h)["a"]; got != 99 {
		t.Fatalf("failed add must not change the line, got %d", got)
	}
}

func TestAddThenUpdateToZeroEmptiesCart(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCore(t)

	h, err := c.Resolve(ctx, owner.Session("tok"))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := h.Add(ctx, prod("a", "3.00"), 4); err != nil {
		t.Fatal(err)
	}
	if err := h.UpdateQuantity(ctx, "a", 0); err != nil {
		t.Fatal(err)
	}

	empty, err := h.IsEmpty(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !empty {
		t.Fatal("cart should be empty")
	}
}

func TestUpdateQuantity(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCore(t)

	h, err := c.Resolve(ctx, owner.Session("tok"))
	if err != nil {
		t.Fatal(err)
	}

	if err := h.UpdateQuantity(ctx, "missing", 3); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if _, err := h.Add(ctx, prod("a", "3.00"), 1); err != nil {
		t.Fatal(err)
	}
	if err := h.UpdateQuantity(ctx, "a", 7); err != nil {
		t.Fatal(err)
	}
	if err := h.UpdateQuantity(ctx, "a", MaxQuantity+1); !errors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("expected ErrInvalidQuantity, got %v", err)
	}

	if diff := cmp.Diff(map[string]int{"a": 7}, quantities(t, h)); diff != "" {
		t.Fatalf("unexpected quantities (-want +got):\n%s", diff)
	}
}

func TestRemoveAndDecrement(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCore(t)

	h, err := c.Resolve(ctx, owner.Session("tok"))
	if err != nil {
		t.Fatal(err)
	}

	if err := h.Remove(ctx, "missing"); err != nil {
		t.Fatalf("removing a missing product should be a no-op, got %v", err)
	}
	if err := h.Decrement(ctx, "missing", 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if _, err := h.Add(ctx, prod("a", "3.00"), 2); err != nil {
		t.Fatal(err)
	}
	if _, err := h.Add(ctx, prod("b", "4.00"), 1); err != nil {
		t.Fatal(err)
	}

	if err := h.Decrement(ctx, "a", 1); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(map[string]int{"a": 1, "b": 1}, quantities(t, h)); diff != "" {
		t.Fatalf("after decrement (-want +got):\n%s", diff)
	}

	if err := h.Decrement(ctx, "a", 1); err != nil {
		t.Fatal(err)
	}
	if err := h.Remove(ctx, "b"); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(map[string]int{}, quantities(t, h)); diff != "" {
		t.Fatalf("after removals (-want +got):\n%s", diff)
	}
}

func TestClearKeepsCart(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCore(t)

	h, err := c.Resolve(ctx, owner.User("u1"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := h.Add(ctx, prod("a", "3.00"), 2); err != nil {
		t.Fatal(err)
	}
	if err := h.Clear(ctx); err != nil {
		t.Fatal(err)
	}

	again, err := c.Resolve(ctx, owner.User("u1"))
	if err != nil {
		t.Fatal(err)
	}
	if again.ID() != h.ID() {
		t.Fatalf("clear must keep the cart, got %s then %s", h.ID(), again.ID())
	}
	if empty, _ := again.IsEmpty(ctx); !empty {
		t.Fatal("cart should be empty after clear")
	}
}

func TestRandomSequenceKeepsTotalQuantity(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCore(t)

	h, err := c.Resolve(ctx, owner.Session("tok"))
	if err != nil {
		t.Fatal(err)
	}

	rnd := rand.New(rand.NewSource(7))
	ids := []string{"a", "b", "c", "d"}
	model := make(map[string]int)

	for i := 0; i < 500; i++ {
		id := ids[rnd.Intn(len(ids))]

		switch rnd.Intn(4) {
		case 0, 1:
			q := rnd.Intn(10) + 1
			_, err := h.Add(ctx, prod(id, "1.25"), q)
			if model[id]+q > MaxQuantity {
				if !errors.Is(err, ErrInvalidQuantity) {
					t.Fatalf("step %d: expected ErrInvalidQuantity, got %v", i, err)
				}
				break
			}
			if err != nil {
				t.Fatalf("step %d: add: %v", i, err)
			}
			model[id] += q
		case 2:
			if err := h.Remove(ctx, id); err != nil {
				t.Fatalf("step %d: remove: %v", i, err)
			}
			delete(model, id)
		case 3:
			q := rnd.Intn(6)
			err := h.UpdateQuantity(ctx, id, q)
			switch {
			case q == 0:
				delete(model, id)
			case model[id] == 0:
				if !errors.Is(err, ErrNotFound) {
					t.Fatalf("step %d: expected ErrNotFound, got %v", i, err)
				}
				continue
			default:
				model[id] = q
			}
			if err != nil {
				t.Fatalf("step %d: update: %v", i, err)
			}
		}

		var want int
		for _, q := range model {
			want += q
		}
		got, err := h.TotalQuantity(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if got != want || got < 0 {
			t.Fatalf("step %d: expected total quantity %d, got %d", i, want, got)
		}
	}
}

func TestResolveReturnsSameCart(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCore(t)

	first, err := c.Resolve(ctx, owner.Session("tok"))
	if err != nil {
		t.Fatal(err)
	}
	second, err := c.Resolve(ctx, owner.Session("tok"))
	if err != nil {
		t.Fatal(err)
	}
	if first.ID() != second.ID() {
		t.Fatalf("expected the same cart, got %s and %s", first.ID(), second.ID())
	}

	other, err := c.Resolve(ctx, owner.User("tok"))
	if err != nil {
		t.Fatal(err)
	}
	if other.ID() == first.ID() {
		t.Fatal("a user and a session must never share a cart")
	}

	if _, err := c.Resolve(ctx, owner.Owner{}); !errors.Is(err, ErrInvalidOwner) {
		t.Fatalf("expected ErrInvalidOwner, got %v", err)
	}
}

func TestLookupDoesNotCreate(t *testing.T) {
	ctx := context.Background()
	c, ms := newTestCore(t)

	if _, err := c.Lookup(ctx, owner.Session("tok")); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if n := ms.activeCarts(owner.Session("tok")); n != 0 {
		t.Fatalf("lookup created %d carts", n)
	}
}

func TestConcurrentResolveCreatesOneCart(t *testing.T) {
	ctx := context.Background()
	c, ms := newTestCore(t)

	const workers = 32
	o := owner.Session("brand-new-visitor")

	var (
		wg    sync.WaitGroup
		start = make(chan struct{})
		ids   = make(chan string, workers)
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			h, err := c.Resolve(ctx, o)
			if err != nil {
				t.Errorf("resolve: %v", err)
				return
			}
			ids <- h.ID()
		}()
	}
	close(start)
	wg.Wait()
	close(ids)

	var first string
	for id := range ids {
		if first == "" {
			first = id
		}
		if id != first {
			t.Fatalf("concurrent resolves returned different carts: %s and %s", first, id)
		}
	}
	if n := ms.activeCarts(o); n != 1 {
		t.Fatalf("expected exactly one cart, got %d", n)
	}
}

func TestOperationsOnRetiredCartFail(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCore(t)

	h, err := c.Resolve(ctx, owner.Session("tok"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := h.Add(ctx, prod("a", "1.00"), 1); err != nil {
		t.Fatal(err)
	}

	if err := c.Merge(ctx, "u1", "tok"); err != nil {
		t.Fatal(err)
	}

	if _, err := h.Add(ctx, prod("b", "1.00"), 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on a retired cart, got %v", err)
	}
}
