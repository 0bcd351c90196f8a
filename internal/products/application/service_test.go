package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wyfcoding/ecommerce/internal/products/domain"
)

type fakeRepo struct {
	mu       sync.Mutex
	products map[string]*domain.Product
	ledger   map[[2]int64]bool
	gets     int
}

func newFakeRepo(products ...*domain.Product) *fakeRepo {
	r := &fakeRepo{products: map[string]*domain.Product{}, ledger: map[[2]int64]bool{}}
	for _, p := range products {
		r.products[p.ID] = p
	}
	return r
}

func (r *fakeRepo) Get(_ context.Context, id string) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gets++
	p, ok := r.products[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrProductNotFound, id)
	}
	cp := *p
	return &cp, nil
}

func (r *fakeRepo) List(context.Context) ([]*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.Product, 0, len(r.products))
	for _, p := range r.products {
		out = append(out, p)
	}
	return out, nil
}

func (r *fakeRepo) Create(_ context.Context, p *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[p.ID]; ok {
		return fmt.Errorf("%w: %s", domain.ErrProductAlreadyExists, p.ID)
	}
	r.products[p.ID] = p
	return nil
}

func (r *fakeRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.products, id)
	return nil
}

func (r *fakeRepo) DecrementStock(_ context.Context, d domain.StockDecrement) (*domain.DecrementResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := [2]int64{d.OrderID, int64(d.LineIndex)}
	if r.ledger[key] {
		return &domain.DecrementResult{Outcome: domain.DecrementDuplicate}, nil
	}
	r.ledger[key] = true
	p, ok := r.products[d.ProductID]
	if !ok {
		return &domain.DecrementResult{Outcome: domain.DecrementProductMissing}, nil
	}
	res := &domain.DecrementResult{Outcome: domain.DecrementApplied, Before: p.InStock}
	p.InStock -= d.Quantity
	if p.InStock < 0 {
		res.Shortfall = -p.InStock
		p.InStock = 0
	}
	res.After = p.InStock
	return res, nil
}

type fakeOrders struct {
	ids []int64
	err error
}

func (f *fakeOrders) ListOrderIDsByProductID(context.Context, string) ([]int64, error) {
	return f.ids, f.err
}

type fakeCache struct {
	items       map[string]*domain.Product
	invalidated []string
}

func (c *fakeCache) Get(_ context.Context, id string) (*domain.Product, error) {
	return c.items[id], nil
}

func (c *fakeCache) Set(_ context.Context, p *domain.Product) error {
	c.items[p.ID] = p
	return nil
}

func (c *fakeCache) Invalidate(_ context.Context, id string) error {
	delete(c.items, id)
	c.invalidated = append(c.invalidated, id)
	return nil
}

func boat() *domain.Product {
	return &domain.Product{ID: "p1", Title: "Boat", MaximumSpeed: 5, InStock: 10, PassengerCapacity: 4}
}

func orderEvent(id int64, lines ...domain.OrderLine) *domain.OrderCreatedEvent {
	return &domain.OrderCreatedEvent{Order: domain.OrderSnapshot{ID: id, OrderDetails: lines}}
}

func TestDelete_RejectsProductInUse(t *testing.T) {
	repo := newFakeRepo(boat())
	svc := NewProductService(repo, &fakeOrders{ids: []int64{1}}, nil)

	err := svc.Delete(context.Background(), "p1")
	require.ErrorIs(t, err, domain.ErrProductInUse)
	assert.Contains(t, err.Error(), "p1")
	assert.Contains(t, repo.products, "p1")
}

func TestDelete_Unreferenced(t *testing.T) {
	repo := newFakeRepo(boat())
	cache := &fakeCache{items: map[string]*domain.Product{}}
	svc := NewProductService(repo, &fakeOrders{}, cache)

	require.NoError(t, svc.Delete(context.Background(), "p1"))
	assert.NotContains(t, repo.products, "p1")
	assert.Equal(t, []string{"p1"}, cache.invalidated)
}

func TestDelete_NotFoundSkipsOrdersCall(t *testing.T) {
	orders := &fakeOrders{err: errors.New("must not be called")}
	svc := NewProductService(newFakeRepo(), orders, nil)

	err := svc.Delete(context.Background(), "ghost")
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestDelete_PropagatesRemoteFailure(t *testing.T) {
	remote := errors.New("connection refused")
	svc := NewProductService(newFakeRepo(boat()), &fakeOrders{err: remote}, nil)

	err := svc.Delete(context.Background(), "p1")
	require.ErrorIs(t, err, remote)
	assert.NotErrorIs(t, err, domain.ErrProductInUse)
}

func TestCreate_Validation(t *testing.T) {
	tests := []struct {
		name    string
		product *domain.Product
		wantErr error
	}{
		{"valid", boat(), nil},
		{"missing id", &domain.Product{Title: "Boat"}, domain.ErrInvalidProduct},
		{"missing title", &domain.Product{ID: "p2"}, domain.ErrInvalidProduct},
		{"negative stock", &domain.Product{ID: "p3", Title: "Raft", InStock: -1}, domain.ErrInvalidProduct},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewProductService(newFakeRepo(), &fakeOrders{}, nil)
			id, err := svc.Create(context.Background(), tt.product)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.product.ID, id)
		})
	}
}

func TestCreate_Duplicate(t *testing.T) {
	svc := NewProductService(newFakeRepo(boat()), &fakeOrders{}, nil)
	_, err := svc.Create(context.Background(), boat())
	assert.ErrorIs(t, err, domain.ErrProductAlreadyExists)
}

func TestGet_UsesCache(t *testing.T) {
	repo := newFakeRepo(boat())
	cache := &fakeCache{items: map[string]*domain.Product{}}
	svc := NewProductService(repo, &fakeOrders{}, cache)

	for range 3 {
		p, err := svc.Get(context.Background(), "p1")
		require.NoError(t, err)
		assert.Equal(t, "Boat", p.Title)
	}
	assert.Equal(t, 1, repo.gets)
}

func TestApplyOrderCreated_Idempotent(t *testing.T) {
	repo := newFakeRepo(boat())
	svc := NewProductService(repo, &fakeOrders{}, nil)
	event := orderEvent(42, domain.OrderLine{ProductID: "p1", Quantity: 2})

	_, err := svc.ApplyOrderCreated(context.Background(), event)
	require.NoError(t, err)
	results, err := svc.ApplyOrderCreated(context.Background(), event)
	require.NoError(t, err)

	assert.Equal(t, domain.DecrementDuplicate, results[0].Outcome)
	assert.Equal(t, 8, repo.products["p1"].InStock)
}

func TestApplyOrderCreated_FloorAndMissingProduct(t *testing.T) {
	repo := newFakeRepo(boat())
	svc := NewProductService(repo, &fakeOrders{}, nil)

	results, err := svc.ApplyOrderCreated(context.Background(),
		orderEvent(7,
			domain.OrderLine{ProductID: "p1", Quantity: 15},
			domain.OrderLine{ProductID: "gone", Quantity: 1}))
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, domain.DecrementApplied, results[0].Outcome)
	assert.Equal(t, 5, results[0].Shortfall)
	assert.Equal(t, 0, repo.products["p1"].InStock)
	assert.Equal(t, domain.DecrementProductMissing, results[1].Outcome)
}
