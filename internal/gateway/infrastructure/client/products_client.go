package client

import (
	"context"

	productsv1 "github.com/wyfcoding/ecommerce/go-api/products/v1"
	"github.com/wyfcoding/ecommerce/internal/gateway/domain"
)

type productsClient struct {
	cli productsv1.ProductsServiceClient
}

// NewProductsClient 基于商品服务 gRPC 客户端创建网关适配器
func NewProductsClient(cli productsv1.ProductsServiceClient) domain.ProductsClient {
	return &productsClient{cli: cli}
}

// Get 查询单个商品
func (c *productsClient) Get(ctx context.Context, id string) (*domain.Product, error) {
	resp, err := c.cli.Get(ctx, &productsv1.GetRequest{ID: id})
	if err != nil {
		return nil, fromStatus(err, domain.ErrProductNotFound)
	}
	return fromProduct(resp.Product), nil
}

// List 列出全部商品，下单前用于校验商品是否存在
func (c *productsClient) List(ctx context.Context) ([]*domain.Product, error) {
	resp, err := c.cli.List(ctx, &productsv1.ListRequest{})
	if err != nil {
		return nil, fromStatus(err, domain.ErrProductNotFound)
	}
	out := make([]*domain.Product, 0, len(resp.Products))
	for _, p := range resp.Products {
		out = append(out, fromProduct(p))
	}
	return out, nil
}

// Create 创建商品，返回商品 ID
func (c *productsClient) Create(ctx context.Context, p *domain.Product) (string, error) {
	resp, err := c.cli.Create(ctx, &productsv1.CreateRequest{Product: &productsv1.Product{
		ID:                p.ID,
		Title:             p.Title,
		MaximumSpeed:      p.MaximumSpeed,
		InStock:           p.InStock,
		PassengerCapacity: p.PassengerCapacity,
	}})
	if err != nil {
		return "", fromStatus(err, domain.ErrProductNotFound)
	}
	return resp.ID, nil
}

// Delete 删除商品，被订单引用时返回 ErrProductInUse
func (c *productsClient) Delete(ctx context.Context, id string) error {
	if _, err := c.cli.Delete(ctx, &productsv1.DeleteRequest{ID: id}); err != nil {
		return fromStatus(err, domain.ErrProductNotFound)
	}
	return nil
}

func fromProduct(p *productsv1.Product) *domain.Product {
	if p == nil {
		return nil
	}
	return &domain.Product{
		ID:                p.ID,
		Title:             p.Title,
		MaximumSpeed:      p.MaximumSpeed,
		InStock:           p.InStock,
		PassengerCapacity: p.PassengerCapacity,
	}
}
