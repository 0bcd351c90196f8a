package application

import (
	"context"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wyfcoding/ecommerce/internal/gateway/domain"
)

type stubProducts struct {
	domain.ProductsClient
	ids []string
	err error
}

func (s *stubProducts) List(context.Context) ([]*domain.Product, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make([]*domain.Product, 0, len(s.ids))
	for _, id := range s.ids {
		out = append(out, &domain.Product{ID: id})
	}
	return out, nil
}

type stubOrders struct {
	created [][]domain.LineItem
	order   *domain.Order
}

func (s *stubOrders) GetOrder(_ context.Context, id int64) (*domain.Order, error) {
	if s.order == nil || s.order.ID != id {
		return nil, fmt.Errorf("%w: %d", domain.ErrOrderNotFound, id)
	}
	return s.order, nil
}

func (s *stubOrders) CreateOrder(_ context.Context, lines []domain.LineItem) (int64, error) {
	s.created = append(s.created, lines)
	return int64(len(s.created)), nil
}

func (s *stubOrders) ListOrders(context.Context) ([]*domain.Order, error) { return nil, nil }

func line(id string, qty int) domain.LineItem {
	return domain.LineItem{ProductID: id, Price: decimal.RequireFromString("9.99"), Quantity: qty}
}

func TestCreateOrder_AllProductsKnown(t *testing.T) {
	orders := &stubOrders{}
	c := NewOrderCoordinator(&stubProducts{ids: []string{"p1", "p2"}}, orders)

	id, err := c.CreateOrder(context.Background(), []domain.LineItem{line("p1", 2), line("p2", 1)})
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)
	require.Len(t, orders.created, 1)
	assert.Len(t, orders.created[0], 2)
}

func TestCreateOrder_UnknownProductCreatesNothing(t *testing.T) {
	orders := &stubOrders{}
	c := NewOrderCoordinator(&stubProducts{ids: []string{"p1"}}, orders)

	_, err := c.CreateOrder(context.Background(), []domain.LineItem{line("p1", 1), line("ghost", 1), line("ghost2", 1)})
	require.ErrorIs(t, err, domain.ErrProductNotFound)
	assert.Contains(t, err.Error(), "ghost")
	assert.NotContains(t, err.Error(), "ghost2")
	assert.Empty(t, orders.created)
}

func TestCreateOrder_ProductsUnavailable(t *testing.T) {
	orders := &stubOrders{}
	c := NewOrderCoordinator(&stubProducts{err: fmt.Errorf("%w: unavailable", domain.ErrUpstream)}, orders)

	_, err := c.CreateOrder(context.Background(), []domain.LineItem{line("p1", 1)})
	assert.ErrorIs(t, err, domain.ErrUpstream)
	assert.Empty(t, orders.created)
}

func TestOrderEnricher_AttachesImageToEveryLine(t *testing.T) {
	orders := &stubOrders{order: &domain.Order{ID: 3, OrderDetails: []*domain.OrderDetail{
		{ProductID: "p1"}, {ProductID: "p2"},
	}}}
	e := NewOrderEnricher(orders, "http://cdn.example.com/images/")

	o, err := e.GetOrder(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, "http://cdn.example.com/images/p1.jpg", o.OrderDetails[0].Image)
	assert.Equal(t, "http://cdn.example.com/images/p2.jpg", o.OrderDetails[1].Image)

	_, err = e.GetOrder(context.Background(), 4)
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
}
