// Package metrics 提供 Prometheus 指标集合与暴露端点
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/wyfcoding/ecommerce/pkg/logger"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

const namespace = "shop"

// Metrics 指标集合
type Metrics struct {
	// HTTP 请求计数（method, route, status）
	HTTPRequestsTotal *prometheus.CounterVec
	// HTTP 请求耗时
	HTTPRequestDuration *prometheus.HistogramVec
	// gRPC 请求计数（method, code）
	GRPCRequestsTotal *prometheus.CounterVec
	// gRPC 请求耗时
	GRPCRequestDuration *prometheus.HistogramVec

	// 业务指标
	OrdersCreated          prometheus.Counter
	OutboxRelayed          prometheus.Counter
	StockDecrements        prometheus.Counter
	StockDuplicatesSkipped prometheus.Counter
	EventsFailed           *prometheus.CounterVec
}

// New 创建指标实例并注册到 reg
func New(serviceName string, reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: serviceName,
			Name: "http_requests_total", Help: "Total HTTP requests",
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: serviceName,
			Name: "http_request_duration_seconds", Help: "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		GRPCRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: serviceName,
			Name: "grpc_requests_total", Help: "Total gRPC requests",
		}, []string{"method", "code"}),
		GRPCRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: serviceName,
			Name: "grpc_request_duration_seconds", Help: "gRPC request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"}),
		OrdersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: serviceName,
			Name: "orders_created_total", Help: "Total orders created",
		}),
		OutboxRelayed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: serviceName,
			Name: "outbox_relayed_total", Help: "Outbox messages published to the broker",
		}),
		StockDecrements: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: serviceName,
			Name: "stock_decrements_total", Help: "Stock decrements applied",
		}),
		StockDuplicatesSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: serviceName,
			Name: "stock_duplicates_skipped_total", Help: "Redelivered stock decrements ignored",
		}),
		EventsFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: serviceName,
			Name: "events_failed_total", Help: "Events whose handler returned an error",
		}, []string{"topic"}),
	}

	collectors := []prometheus.Collector{
		m.HTTPRequestsTotal, m.HTTPRequestDuration,
		m.GRPCRequestsTotal, m.GRPCRequestDuration,
		m.OrdersCreated, m.OutboxRelayed,
		m.StockDecrements, m.StockDuplicatesSkipped, m.EventsFailed,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			var already prometheus.AlreadyRegisteredError
			if errors.As(err, &already) {
				continue
			}
			return nil, fmt.Errorf("register metric: %w", err)
		}
	}
	return m, nil
}

// GinMiddleware 记录 HTTP 请求指标，route 使用 gin 的路由模板避免高基数
func (m *Metrics) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.HTTPRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.HTTPRequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// UnaryServerInterceptor 记录 gRPC 请求指标
func (m *Metrics) UnaryServerInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		m.GRPCRequestsTotal.WithLabelValues(info.FullMethod, status.Code(err).String()).Inc()
		m.GRPCRequestDuration.WithLabelValues(info.FullMethod).Observe(time.Since(start).Seconds())
		return resp, err
	}
}

// NewServer 创建暴露 Prometheus 指标的 HTTP 服务器
func NewServer(port int, path string, gatherer prometheus.Gatherer) *http.Server {
	if path == "" {
		path = "/metrics"
	}
	mux := http.NewServeMux()
	mux.Handle(path, promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	addr := fmt.Sprintf(":%d", port)
	logger.Info(context.Background(), "Prometheus endpoint configured", "addr", addr, "path", path)
	return &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
}
