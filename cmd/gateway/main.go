// Gateway 主程序
// 功能：对外 HTTP 接口，转发到商品与订单服务并聚合结果
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	ordersv1 "github.com/wyfcoding/ecommerce/go-api/orders/v1"
	productsv1 "github.com/wyfcoding/ecommerce/go-api/products/v1"
	"github.com/wyfcoding/ecommerce/internal/gateway/application"
	"github.com/wyfcoding/ecommerce/internal/gateway/infrastructure/client"
	httphandler "github.com/wyfcoding/ecommerce/internal/gateway/interfaces/http"
	"github.com/wyfcoding/ecommerce/pkg/cache"
	"github.com/wyfcoding/ecommerce/pkg/config"
	"github.com/wyfcoding/ecommerce/pkg/grpcclient"
	"github.com/wyfcoding/ecommerce/pkg/logger"
	"github.com/wyfcoding/ecommerce/pkg/metrics"
	"github.com/wyfcoding/ecommerce/pkg/middleware"
	"github.com/wyfcoding/ecommerce/pkg/ratelimit"
	"github.com/wyfcoding/ecommerce/pkg/trace"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"golang.org/x/sync/errgroup"
)

func main() {
	configPath := flag.String("config", "configs/gateway/config.toml", "path to config file")
	flag.Parse()

	// 1. 加载配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	if err := logger.Init(logger.Config{
		Level:      cfg.Logger.Level,
		Format:     cfg.Logger.Format,
		Output:     cfg.Logger.Output,
		FilePath:   cfg.Logger.FilePath,
		MaxSize:    cfg.Logger.MaxSize,
		MaxBackups: cfg.Logger.MaxBackups,
		MaxAge:     cfg.Logger.MaxAge,
		Compress:   cfg.Logger.Compress,
		WithCaller: cfg.Logger.WithCaller,
		Service:    cfg.ServiceName,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info(rootCtx, "Starting Gateway",
		"version", cfg.Version,
		"environment", cfg.Environment,
		"image_root", cfg.Gateway.ProductImageRoot,
	)

	// 3. 初始化追踪
	if cfg.Tracing.Enabled {
		shutdown, err := trace.InitTracer(rootCtx, cfg.ServiceName, cfg.Version, cfg.Tracing.CollectorEndpoint, cfg.Tracing.SamplingRate)
		if err != nil {
			logger.Error(rootCtx, "Failed to initialize tracer", "error", err)
		} else {
			defer func() {
				if err := shutdown(context.Background()); err != nil {
					logger.Error(context.Background(), "Failed to shutdown tracer", "error", err)
				}
			}()
		}
	}

	// 4. 初始化限流器（需要 Redis）
	var rateLimiter ratelimit.RateLimiter
	if cfg.Redis.Enabled {
		redisCache, err := cache.New(rootCtx, cache.Config{
			Host:         cfg.Redis.Host,
			Port:         cfg.Redis.Port,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			MaxPoolSize:  cfg.Redis.MaxPoolSize,
			ConnTimeout:  cfg.Redis.ConnTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		})
		if err != nil {
			logger.Fatal(rootCtx, "Failed to initialize Redis", "error", err)
		}
		defer redisCache.Close()
		rateLimiter = ratelimit.NewRedisRateLimiter(redisCache.Client())
	} else if cfg.RateLimit.Enabled {
		logger.Warn(rootCtx, "Rate limit enabled but Redis disabled, rate limiting skipped")
	}

	// 5. 下游服务客户端
	productsConn, err := grpcclient.NewClient(grpcclient.ClientConfig{
		Target:            cfg.Clients.Products.Target,
		RequestTimeout:    cfg.Clients.Products.CallTimeout(),
		KeepaliveInterval: 30 * time.Second,
	})
	if err != nil {
		logger.Fatal(rootCtx, "Failed to create products client", "error", err)
	}
	defer productsConn.Close()

	ordersConn, err := grpcclient.NewClient(grpcclient.ClientConfig{
		Target:            cfg.Clients.Orders.Target,
		RequestTimeout:    cfg.Clients.Orders.CallTimeout(),
		KeepaliveInterval: 30 * time.Second,
	})
	if err != nil {
		logger.Fatal(rootCtx, "Failed to create orders client", "error", err)
	}
	defer ordersConn.Close()

	// 6. 指标
	m, err := metrics.New(cfg.ServiceName, prometheus.DefaultRegisterer)
	if err != nil {
		logger.Fatal(rootCtx, "Failed to register metrics", "error", err)
	}

	// 7. 应用服务与 HTTP 服务器
	gatewaySvc := application.NewGatewayService(
		client.NewProductsClient(productsv1.NewProductsServiceClient(productsConn)),
		client.NewOrdersClient(ordersv1.NewOrdersServiceClient(ordersConn)),
		cfg.Gateway.ProductImageRoot,
	)
	httpServer := createHTTPServer(cfg, gatewaySvc, rateLimiter, m)

	// 8. 启动
	g, ctx := errgroup.WithContext(rootCtx)

	g.Go(func() error {
		logger.Info(ctx, "Starting HTTP server", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	var metricsServer *http.Server
	if cfg.Metrics.Enabled {
		metricsServer = metrics.NewServer(cfg.Metrics.Port, cfg.Metrics.Path, prometheus.DefaultGatherer)
		g.Go(func() error {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
	}

	// 9. 优雅关停
	g.Go(func() error {
		<-ctx.Done()
		logger.Info(context.Background(), "Shutting down Gateway")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error(shutdownCtx, "HTTP server shutdown error", "error", err)
		}
		if metricsServer != nil {
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				logger.Error(shutdownCtx, "Metrics server shutdown error", "error", err)
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error(context.Background(), "Gateway exited with error", "error", err)
	}
	logger.Info(context.Background(), "Gateway stopped")
}

// createHTTPServer 创建 HTTP 服务器
func createHTTPServer(cfg *config.Config, svc *application.GatewayService, limiter ratelimit.RateLimiter, m *metrics.Metrics) *http.Server {
	if cfg.Environment == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(otelgin.Middleware(cfg.ServiceName))
	router.Use(middleware.GinLoggingMiddleware())
	router.Use(middleware.GinRecoveryMiddleware())
	router.Use(middleware.GinCORSMiddleware())
	router.Use(m.GinMiddleware())
	router.Use(middleware.RateLimitMiddleware(limiter, cfg.RateLimit))

	httphandler.NewHandler(svc).RegisterRoutes(router)

	// 健康检查
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"service":   cfg.ServiceName,
			"timestamp": time.Now().Unix(),
		})
	})

	return &http.Server{
		Addr:         cfg.HTTP.Addr(),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeout) * time.Second,
	}
}
