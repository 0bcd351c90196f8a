package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wyfcoding/ecommerce/internal/gateway/application"
	"github.com/wyfcoding/ecommerce/internal/gateway/domain"
)

type fakeProducts struct {
	items     map[string]*domain.Product
	inUse     map[string]bool
	deleteErr error
	calls     int
}

func (f *fakeProducts) Get(_ context.Context, id string) (*domain.Product, error) {
	f.calls++
	p, ok := f.items[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrProductNotFound, id)
	}
	return p, nil
}

func (f *fakeProducts) List(context.Context) ([]*domain.Product, error) {
	f.calls++
	out := make([]*domain.Product, 0, len(f.items))
	for _, p := range f.items {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeProducts) Create(_ context.Context, p *domain.Product) (string, error) {
	f.calls++
	if _, ok := f.items[p.ID]; ok {
		return "", fmt.Errorf("%w: %s", domain.ErrProductAlreadyExists, p.ID)
	}
	f.items[p.ID] = p
	return p.ID, nil
}

func (f *fakeProducts) Delete(_ context.Context, id string) error {
	f.calls++
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.items[id]; !ok {
		return fmt.Errorf("%w: %s", domain.ErrProductNotFound, id)
	}
	if f.inUse[id] {
		return fmt.Errorf("%w: %s", domain.ErrProductInUse, id)
	}
	delete(f.items, id)
	return nil
}

type fakeOrders struct {
	orders []*domain.Order
}

func (f *fakeOrders) GetOrder(_ context.Context, id int64) (*domain.Order, error) {
	for _, o := range f.orders {
		if o.ID == id {
			return o, nil
		}
	}
	return nil, fmt.Errorf("%w: %d", domain.ErrOrderNotFound, id)
}

func (f *fakeOrders) CreateOrder(_ context.Context, lines []domain.LineItem) (int64, error) {
	o := &domain.Order{ID: int64(len(f.orders) + 1)}
	for _, l := range lines {
		o.OrderDetails = append(o.OrderDetails, &domain.OrderDetail{ProductID: l.ProductID, Price: l.Price, Quantity: l.Quantity})
	}
	f.orders = append(f.orders, o)
	return o.ID, nil
}

func (f *fakeOrders) ListOrders(context.Context) ([]*domain.Order, error) { return f.orders, nil }

func setupRouter(products *fakeProducts, orders *fakeOrders) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(application.NewGatewayService(products, orders, "http://img.test/airship")).RegisterRoutes(r)
	return r
}

func newFixtures() (*fakeProducts, *fakeOrders) {
	return &fakeProducts{
		items: map[string]*domain.Product{
			"p1": {ID: "p1", Title: "Boat", MaximumSpeed: 5, InStock: 10, PassengerCapacity: 4},
		},
		inUse: map[string]bool{},
	}, &fakeOrders{}
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Error
}

func TestGetProduct(t *testing.T) {
	r := setupRouter(newFixtures())

	w := do(r, http.MethodGet, "/products/p1", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":"p1","title":"Boat","maximum_speed":5,"in_stock":10,"passenger_capacity":4}`, w.Body.String())

	w = do(r, http.MethodGet, "/products/ghost", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, CodeProductNotFound, errorCode(t, w))
}

func TestCreateProduct(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantCode int
		wantErr  string
	}{
		{"created", `{"id":"p2","title":"Raft","maximum_speed":2,"in_stock":0,"passenger_capacity":1}`, http.StatusOK, ""},
		{"duplicate", `{"id":"p1","title":"Boat","maximum_speed":5,"in_stock":10,"passenger_capacity":4}`, http.StatusConflict, CodeProductAlreadyExists},
		{"missing in_stock", `{"id":"p3","title":"Raft","maximum_speed":2,"passenger_capacity":1}`, http.StatusBadRequest, CodeValidation},
		{"negative speed", `{"id":"p3","title":"Raft","maximum_speed":-1,"in_stock":1,"passenger_capacity":1}`, http.StatusBadRequest, CodeValidation},
		{"wrong type", `{"id":"p3","title":"Raft","maximum_speed":"fast","in_stock":1,"passenger_capacity":1}`, http.StatusBadRequest, CodeValidation},
		{"malformed", `{"id":`, http.StatusBadRequest, CodeBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := setupRouter(newFixtures())
			w := do(r, http.MethodPost, "/products", tt.body)
			assert.Equal(t, tt.wantCode, w.Code)
			if tt.wantErr != "" {
				assert.Equal(t, tt.wantErr, errorCode(t, w))
				return
			}
			assert.JSONEq(t, `{"id":"p2"}`, w.Body.String())
		})
	}
}

func TestDeleteProduct(t *testing.T) {
	products, orders := newFixtures()
	products.inUse["p1"] = true
	r := setupRouter(products, orders)

	w := do(r, http.MethodDelete, "/products/p1", "")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, CodeProductInUse, errorCode(t, w))

	delete(products.inUse, "p1")
	w = do(r, http.MethodDelete, "/products/p1", "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(r, http.MethodDelete, "/products/p1", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteProduct_UpstreamFailure(t *testing.T) {
	products, orders := newFixtures()
	products.deleteErr = fmt.Errorf("%w: Internal: orders unavailable", domain.ErrUpstream)
	r := setupRouter(products, orders)

	w := do(r, http.MethodDelete, "/products/p1", "")
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, CodeUpstream, errorCode(t, w))

	products.deleteErr = errors.New("connection reset")
	w = do(r, http.MethodDelete, "/products/p1", "")
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestCreateOrder(t *testing.T) {
	products, orders := newFixtures()
	r := setupRouter(products, orders)

	w := do(r, http.MethodPost, "/orders", `{"order_details":[{"product_id":"p1","price":"9.99","quantity":2}]}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":1}`, w.Body.String())
	require.Len(t, orders.orders, 1)
	assert.Equal(t, "9.99", orders.orders[0].OrderDetails[0].Price.String())

	// 数字形式的价格同样接受
	w = do(r, http.MethodPost, "/orders", `{"order_details":[{"product_id":"p1","price":5,"quantity":1}]}`)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCreateOrder_UnknownProduct(t *testing.T) {
	products, orders := newFixtures()
	r := setupRouter(products, orders)

	w := do(r, http.MethodPost, "/orders", `{"order_details":[{"product_id":"ghost","price":"9.99","quantity":2}]}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, CodeProductNotFound, errorCode(t, w))
	assert.Contains(t, w.Body.String(), "ghost")
	assert.Empty(t, orders.orders)
}

func TestCreateOrder_RejectedBeforeRemoteCalls(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"malformed", `{"order_details":[`, CodeBadRequest},
		{"empty body", ``, CodeBadRequest},
		{"missing details", `{}`, CodeValidation},
		{"empty details", `{"order_details":[]}`, CodeValidation},
		{"missing product", `{"order_details":[{"price":"1.00","quantity":1}]}`, CodeValidation},
		{"zero quantity", `{"order_details":[{"product_id":"p1","price":"1.00","quantity":0}]}`, CodeValidation},
		{"missing price", `{"order_details":[{"product_id":"p1","quantity":1}]}`, CodeValidation},
		{"negative price", `{"order_details":[{"product_id":"p1","price":"-1","quantity":1}]}`, CodeValidation},
		{"price not decimal", `{"order_details":[{"product_id":"p1","price":"cheap","quantity":1}]}`, CodeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			products, orders := newFixtures()
			r := setupRouter(products, orders)

			w := do(r, http.MethodPost, "/orders", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.wantErr, errorCode(t, w))
			assert.Zero(t, products.calls)
			assert.Empty(t, orders.orders)
		})
	}
}

func TestGetOrder_Enriched(t *testing.T) {
	products, orders := newFixtures()
	r := setupRouter(products, orders)
	do(r, http.MethodPost, "/orders", `{"order_details":[{"product_id":"p1","price":"9.99","quantity":2}]}`)

	w := do(r, http.MethodGet, "/orders/1", "")
	require.Equal(t, http.StatusOK, w.Code)
	var got domain.Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got.OrderDetails, 1)
	assert.Equal(t, "http://img.test/airship/p1.jpg", got.OrderDetails[0].Image)

	w = do(r, http.MethodGet, "/orders/99", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, CodeOrderNotFound, errorCode(t, w))

	w = do(r, http.MethodGet, "/orders/abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListOrders(t *testing.T) {
	products, orders := newFixtures()
	r := setupRouter(products, orders)

	w := do(r, http.MethodGet, "/orders", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}
