package grpc

import (
	"context"
	"fmt"
	"net"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	v1 "github.com/wyfcoding/ecommerce/go-api/orders/v1"
	"github.com/wyfcoding/ecommerce/internal/orders/application"
	"github.com/wyfcoding/ecommerce/internal/orders/domain"
	"github.com/wyfcoding/ecommerce/pkg/grpcclient"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

type memRepo struct {
	orders []*domain.Order
}

func (r *memRepo) Get(_ context.Context, id int64) (*domain.Order, error) {
	for _, o := range r.orders {
		if o.ID == id {
			return o, nil
		}
	}
	return nil, fmt.Errorf("%w: %d", domain.ErrOrderNotFound, id)
}

func (r *memRepo) List(context.Context) ([]*domain.Order, error) { return r.orders, nil }

func (r *memRepo) ListByProductID(_ context.Context, productID string) ([]*domain.Order, error) {
	var out []*domain.Order
	for _, o := range r.orders {
		for _, d := range o.OrderDetails {
			if d.ProductID == productID {
				out = append(out, o)
				break
			}
		}
	}
	return out, nil
}

func (r *memRepo) Create(_ context.Context, o *domain.Order, inTx func(tx any) error) error {
	o.ID = int64(len(r.orders) + 1)
	if err := inTx(nil); err != nil {
		return err
	}
	r.orders = append(r.orders, o)
	return nil
}

type noopPublisher struct{}

func (noopPublisher) PublishInTx(context.Context, any, string, string, any) error { return nil }

func newTestClient(t *testing.T) v1.OrdersServiceClient {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	s := grpc.NewServer()
	repo := &memRepo{}
	NewServer(s, application.NewOrderCommandService(repo, noopPublisher{}, nil), application.NewOrderQueryService(repo))
	go s.Serve(lis)
	t.Cleanup(s.Stop)

	conn, err := grpcclient.NewClient(grpcclient.ClientConfig{Target: "passthrough:///bufnet"},
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}))
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return v1.NewOrdersServiceClient(conn)
}

func TestOrdersService_RoundTrip(t *testing.T) {
	ctx := context.Background()
	cli := newTestClient(t)

	created, err := cli.CreateOrder(ctx, &v1.CreateOrderRequest{OrderDetails: []*v1.OrderDetail{
		{ProductID: "p1", Price: decimal.RequireFromString("9.99"), Quantity: 2},
	}})
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.ID)

	got, err := cli.GetOrder(ctx, &v1.GetOrderRequest{ID: created.ID})
	require.NoError(t, err)
	require.Len(t, got.Order.OrderDetails, 1)
	assert.True(t, decimal.RequireFromString("9.99").Equal(got.Order.OrderDetails[0].Price))

	byProduct, err := cli.ListOrdersByProductID(ctx, &v1.ListOrdersByProductIDRequest{ProductID: "p1"})
	require.NoError(t, err)
	assert.Len(t, byProduct.Orders, 1)

	none, err := cli.ListOrdersByProductID(ctx, &v1.ListOrdersByProductIDRequest{ProductID: "p2"})
	require.NoError(t, err)
	assert.Empty(t, none.Orders)
}

func TestOrdersService_ErrorCodes(t *testing.T) {
	ctx := context.Background()
	cli := newTestClient(t)

	_, err := cli.GetOrder(ctx, &v1.GetOrderRequest{ID: 404})
	assert.Equal(t, codes.NotFound, status.Code(err))

	_, err = cli.CreateOrder(ctx, &v1.CreateOrderRequest{})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = cli.ListOrdersByProductID(ctx, &v1.ListOrdersByProductIDRequest{})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}
