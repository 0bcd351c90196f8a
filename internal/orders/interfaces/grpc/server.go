package grpc

import (
	"context"
	"errors"

	v1 "github.com/wyfcoding/ecommerce/go-api/orders/v1"
	"github.com/wyfcoding/ecommerce/internal/orders/application"
	"github.com/wyfcoding/ecommerce/internal/orders/domain"
	"github.com/wyfcoding/ecommerce/pkg/logger"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Server 订单服务 gRPC 实现
type Server struct {
	v1.UnimplementedOrdersServiceServer
	cmd   *application.OrderCommandService
	query *application.OrderQueryService
}

// NewServer 创建并注册到 s
func NewServer(s grpc.ServiceRegistrar, cmd *application.OrderCommandService, query *application.OrderQueryService) *Server {
	srv := &Server{cmd: cmd, query: query}
	v1.RegisterOrdersServiceServer(s, srv)
	return srv
}

// GetOrder 查询订单
func (s *Server) GetOrder(ctx context.Context, req *v1.GetOrderRequest) (*v1.GetOrderResponse, error) {
	o, err := s.query.GetOrder(ctx, req.ID)
	if err != nil {
		return nil, toStatus(ctx, err)
	}
	return &v1.GetOrderResponse{Order: toProto(o)}, nil
}

// CreateOrder 创建订单并写入 outbox
func (s *Server) CreateOrder(ctx context.Context, req *v1.CreateOrderRequest) (*v1.CreateOrderResponse, error) {
	cmd := application.CreateOrderCommand{Lines: make([]application.OrderLineInput, 0, len(req.OrderDetails))}
	for _, d := range req.OrderDetails {
		if d == nil {
			return nil, status.Error(codes.InvalidArgument, "order detail must not be null")
		}
		cmd.Lines = append(cmd.Lines, application.OrderLineInput{ProductID: d.ProductID, Price: d.Price, Quantity: d.Quantity})
	}

	id, err := s.cmd.CreateOrder(ctx, cmd)
	if err != nil {
		return nil, toStatus(ctx, err)
	}
	return &v1.CreateOrderResponse{ID: id}, nil
}

// ListOrders 列出全部订单
func (s *Server) ListOrders(ctx context.Context, _ *v1.ListOrdersRequest) (*v1.ListOrdersResponse, error) {
	orders, err := s.query.ListOrders(ctx)
	if err != nil {
		return nil, toStatus(ctx, err)
	}
	return &v1.ListOrdersResponse{Orders: toProtoList(orders)}, nil
}

// ListOrdersByProductID 查询引用该商品的订单，商品删除前调用
func (s *Server) ListOrdersByProductID(ctx context.Context, req *v1.ListOrdersByProductIDRequest) (*v1.ListOrdersByProductIDResponse, error) {
	if req.ProductID == "" {
		return nil, status.Error(codes.InvalidArgument, "product_id is required")
	}
	orders, err := s.query.ListOrdersByProductID(ctx, req.ProductID)
	if err != nil {
		return nil, toStatus(ctx, err)
	}
	return &v1.ListOrdersByProductIDResponse{Orders: toProtoList(orders)}, nil
}

func toProto(o *domain.Order) *v1.Order {
	out := &v1.Order{
		ID:           o.ID,
		CreatedAt:    o.CreatedAt,
		UpdatedAt:    o.UpdatedAt,
		OrderDetails: make([]*v1.OrderDetail, 0, len(o.OrderDetails)),
	}
	for _, d := range o.OrderDetails {
		out.OrderDetails = append(out.OrderDetails, &v1.OrderDetail{
			ID:        d.ID,
			ProductID: d.ProductID,
			Price:     d.Price,
			Quantity:  d.Quantity,
		})
	}
	return out
}

func toProtoList(orders []*domain.Order) []*v1.Order {
	out := make([]*v1.Order, 0, len(orders))
	for _, o := range orders {
		out = append(out, toProto(o))
	}
	return out
}

func toStatus(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrOrderNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, domain.ErrInvalidOrder):
		return status.Error(codes.InvalidArgument, err.Error())
	default:
		logger.Error(ctx, "orders rpc failed", "error", err)
		return status.Error(codes.Internal, err.Error())
	}
}
