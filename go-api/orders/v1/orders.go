// Package v1 订单服务 RPC 契约，JSON 编码
package v1

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const ServiceName = "orders.OrdersService"

const (
	OrdersService_GetOrder_FullMethodName              = "/orders.OrdersService/GetOrder"
	OrdersService_CreateOrder_FullMethodName           = "/orders.OrdersService/CreateOrder"
	OrdersService_ListOrders_FullMethodName            = "/orders.OrdersService/ListOrders"
	OrdersService_ListOrdersByProductID_FullMethodName = "/orders.OrdersService/ListOrdersByProductID"
)

// OrderDetail 订单明细
type OrderDetail struct {
	ID        int64           `json:"id,omitempty"`
	ProductID string          `json:"product_id"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

// Order 订单及明细
type Order struct {
	ID           int64          `json:"id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	OrderDetails []*OrderDetail `json:"order_details"`
}

type GetOrderRequest struct {
	ID int64 `json:"id"`
}

type GetOrderResponse struct {
	Order *Order `json:"order"`
}

type CreateOrderRequest struct {
	OrderDetails []*OrderDetail `json:"order_details"`
}

type CreateOrderResponse struct {
	ID int64 `json:"id"`
}

type ListOrdersRequest struct{}

type ListOrdersResponse struct {
	Orders []*Order `json:"orders"`
}

type ListOrdersByProductIDRequest struct {
	ProductID string `json:"product_id"`
}

type ListOrdersByProductIDResponse struct {
	Orders []*Order `json:"orders"`
}

// OrdersServiceServer 服务端接口
type OrdersServiceServer interface {
	GetOrder(context.Context, *GetOrderRequest) (*GetOrderResponse, error)
	CreateOrder(context.Context, *CreateOrderRequest) (*CreateOrderResponse, error)
	ListOrders(context.Context, *ListOrdersRequest) (*ListOrdersResponse, error)
	ListOrdersByProductID(context.Context, *ListOrdersByProductIDRequest) (*ListOrdersByProductIDResponse, error)
}

type UnimplementedOrdersServiceServer struct{}

func (UnimplementedOrdersServiceServer) GetOrder(context.Context, *GetOrderRequest) (*GetOrderResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetOrder not implemented")
}
func (UnimplementedOrdersServiceServer) CreateOrder(context.Context, *CreateOrderRequest) (*CreateOrderResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method CreateOrder not implemented")
}
func (UnimplementedOrdersServiceServer) ListOrders(context.Context, *ListOrdersRequest) (*ListOrdersResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListOrders not implemented")
}
func (UnimplementedOrdersServiceServer) ListOrdersByProductID(context.Context, *ListOrdersByProductIDRequest) (*ListOrdersByProductIDResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListOrdersByProductID not implemented")
}

// RegisterOrdersServiceServer 注册订单服务实现
func RegisterOrdersServiceServer(s grpc.ServiceRegistrar, srv OrdersServiceServer) {
	s.RegisterService(&OrdersService_ServiceDesc, srv)
}

func _OrdersService_GetOrder_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(GetOrderRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(OrdersServiceServer).GetOrder(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: OrdersService_GetOrder_FullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(OrdersServiceServer).GetOrder(ctx, req.(*GetOrderRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _OrdersService_CreateOrder_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(CreateOrderRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(OrdersServiceServer).CreateOrder(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: OrdersService_CreateOrder_FullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(OrdersServiceServer).CreateOrder(ctx, req.(*CreateOrderRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _OrdersService_ListOrders_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(ListOrdersRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(OrdersServiceServer).ListOrders(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: OrdersService_ListOrders_FullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(OrdersServiceServer).ListOrders(ctx, req.(*ListOrdersRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _OrdersService_ListOrdersByProductID_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(ListOrdersByProductIDRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(OrdersServiceServer).ListOrdersByProductID(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: OrdersService_ListOrdersByProductID_FullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(OrdersServiceServer).ListOrdersByProductID(ctx, req.(*ListOrdersByProductIDRequest))
	}
	return interceptor(ctx, in, info, handler)
}

var OrdersService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*OrdersServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetOrder", Handler: _OrdersService_GetOrder_Handler},
		{MethodName: "CreateOrder", Handler: _OrdersService_CreateOrder_Handler},
		{MethodName: "ListOrders", Handler: _OrdersService_ListOrders_Handler},
		{MethodName: "ListOrdersByProductID", Handler: _OrdersService_ListOrdersByProductID_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "orders/v1/orders.go",
}

type OrdersServiceClient interface {
	GetOrder(ctx context.Context, in *GetOrderRequest, opts ...grpc.CallOption) (*GetOrderResponse, error)
	CreateOrder(ctx context.Context, in *CreateOrderRequest, opts ...grpc.CallOption) (*CreateOrderResponse, error)
	ListOrders(ctx context.Context, in *ListOrdersRequest, opts ...grpc.CallOption) (*ListOrdersResponse, error)
	ListOrdersByProductID(ctx context.Context, in *ListOrdersByProductIDRequest, opts ...grpc.CallOption) (*ListOrdersByProductIDResponse, error)
}

type ordersServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewOrdersServiceClient 创建订单服务客户端
func NewOrdersServiceClient(cc grpc.ClientConnInterface) OrdersServiceClient {
	return &ordersServiceClient{cc}
}

func (c *ordersServiceClient) GetOrder(ctx context.Context, in *GetOrderRequest, opts ...grpc.CallOption) (*GetOrderResponse, error) {
	out := new(GetOrderResponse)
	if err := c.cc.Invoke(ctx, OrdersService_GetOrder_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ordersServiceClient) CreateOrder(ctx context.Context, in *CreateOrderRequest, opts ...grpc.CallOption) (*CreateOrderResponse, error) {
	out := new(CreateOrderResponse)
	if err := c.cc.Invoke(ctx, OrdersService_CreateOrder_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ordersServiceClient) ListOrders(ctx context.Context, in *ListOrdersRequest, opts ...grpc.CallOption) (*ListOrdersResponse, error) {
	out := new(ListOrdersResponse)
	if err := c.cc.Invoke(ctx, OrdersService_ListOrders_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ordersServiceClient) ListOrdersByProductID(ctx context.Context, in *ListOrdersByProductIDRequest, opts ...grpc.CallOption) (*ListOrdersByProductIDResponse, error) {
	out := new(ListOrdersByProductIDResponse)
	if err := c.cc.Invoke(ctx, OrdersService_ListOrdersByProductID_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
