package grpc

import (
	"context"
	"errors"

	v1 "github.com/wyfcoding/ecommerce/go-api/products/v1"
	"github.com/wyfcoding/ecommerce/internal/products/application"
	"github.com/wyfcoding/ecommerce/internal/products/domain"
	"github.com/wyfcoding/ecommerce/pkg/logger"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Server 商品服务 gRPC 实现
type Server struct {
	v1.UnimplementedProductsServiceServer
	app *application.ProductService
}

// NewServer 创建并注册到 s
func NewServer(s grpc.ServiceRegistrar, app *application.ProductService) *Server {
	srv := &Server{app: app}
	v1.RegisterProductsServiceServer(s, srv)
	return srv
}

// Get 查询商品
func (s *Server) Get(ctx context.Context, req *v1.GetRequest) (*v1.GetResponse, error) {
	p, err := s.app.Get(ctx, req.ID)
	if err != nil {
		return nil, toStatus(ctx, err)
	}
	return &v1.GetResponse{Product: toProto(p)}, nil
}

// List 列出商品
func (s *Server) List(ctx context.Context, _ *v1.ListRequest) (*v1.ListResponse, error) {
	products, err := s.app.List(ctx)
	if err != nil {
		return nil, toStatus(ctx, err)
	}
	items := make([]*v1.Product, 0, len(products))
	for _, p := range products {
		items = append(items, toProto(p))
	}
	return &v1.ListResponse{Products: items}, nil
}

// Create 创建商品
func (s *Server) Create(ctx context.Context, req *v1.CreateRequest) (*v1.CreateResponse, error) {
	if req.Product == nil {
		return nil, status.Error(codes.InvalidArgument, "product is required")
	}
	id, err := s.app.Create(ctx, &domain.Product{
		ID:                req.Product.ID,
		Title:             req.Product.Title,
		MaximumSpeed:      req.Product.MaximumSpeed,
		InStock:           req.Product.InStock,
		PassengerCapacity: req.Product.PassengerCapacity,
	})
	if err != nil {
		return nil, toStatus(ctx, err)
	}
	return &v1.CreateResponse{ID: id}, nil
}

// Delete 删除未被订单引用的商品
func (s *Server) Delete(ctx context.Context, req *v1.DeleteRequest) (*v1.DeleteResponse, error) {
	if err := s.app.Delete(ctx, req.ID); err != nil {
		return nil, toStatus(ctx, err)
	}
	return &v1.DeleteResponse{}, nil
}

func toProto(p *domain.Product) *v1.Product {
	return &v1.Product{
		ID:                p.ID,
		Title:             p.Title,
		MaximumSpeed:      p.MaximumSpeed,
		InStock:           p.InStock,
		PassengerCapacity: p.PassengerCapacity,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}

// toStatus 领域错误映射为 gRPC 状态码，其余一律 Internal
func toStatus(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrProductNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, domain.ErrProductAlreadyExists):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, domain.ErrProductInUse):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, domain.ErrInvalidProduct):
		return status.Error(codes.InvalidArgument, err.Error())
	default:
		logger.Error(ctx, "products rpc failed", "error", err)
		return status.Error(codes.Internal, err.Error())
	}
}
