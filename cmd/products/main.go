// ProductsService 主程序
// 功能：商品增删查，消费订单创建事件扣减库存
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	ordersv1 "github.com/wyfcoding/ecommerce/go-api/orders/v1"
	"github.com/wyfcoding/ecommerce/internal/products/application"
	"github.com/wyfcoding/ecommerce/internal/products/domain"
	productcache "github.com/wyfcoding/ecommerce/internal/products/infrastructure/cache"
	"github.com/wyfcoding/ecommerce/internal/products/infrastructure/client"
	"github.com/wyfcoding/ecommerce/internal/products/infrastructure/persistence/postgres"
	"github.com/wyfcoding/ecommerce/internal/products/interfaces/events"
	grpchandler "github.com/wyfcoding/ecommerce/internal/products/interfaces/grpc"
	"github.com/wyfcoding/ecommerce/pkg/cache"
	"github.com/wyfcoding/ecommerce/pkg/config"
	"github.com/wyfcoding/ecommerce/pkg/db"
	"github.com/wyfcoding/ecommerce/pkg/grpcclient"
	"github.com/wyfcoding/ecommerce/pkg/logger"
	"github.com/wyfcoding/ecommerce/pkg/metrics"
	"github.com/wyfcoding/ecommerce/pkg/middleware"
	"github.com/wyfcoding/ecommerce/pkg/mq"
	"github.com/wyfcoding/ecommerce/pkg/trace"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

func main() {
	configPath := flag.String("config", "configs/products/config.toml", "path to config file")
	flag.Parse()

	// 1. 加载配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.ValidateDatabase(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid config: %v\n", err)
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

	logger.Info(rootCtx, "Starting ProductsService",
		"version", cfg.Version,
		"environment", cfg.Environment,
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

	// 4. 初始化数据库
	database, err := db.Init(rootCtx, db.Config{
		Driver:             cfg.Database.Driver,
		DSN:                cfg.Database.DSN,
		MaxOpenConns:       cfg.Database.MaxOpenConns,
		MaxIdleConns:       cfg.Database.MaxIdleConns,
		ConnMaxLifetime:    cfg.Database.ConnMaxLifetime,
		LogEnabled:         cfg.Database.LogEnabled,
		SlowQueryThreshold: cfg.Database.SlowQueryThreshold,
	})
	if err != nil {
		logger.Fatal(rootCtx, "Failed to initialize database", "error", err)
	}
	defer database.Close()

	if cfg.Database.AutoMigrate {
		if err := postgres.AutoMigrate(database.DB); err != nil {
			logger.Fatal(rootCtx, "Failed to migrate products schema", "error", err)
		}
	}

	// 5. 初始化 Redis 缓存（可选）
	var productCache domain.ProductCache
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
		productCache = productcache.NewProductCache(redisCache, time.Duration(cfg.Cache.ProductTTL)*time.Second)
	}

	// 6. 订单服务客户端
	ordersConn, err := grpcclient.NewClient(grpcclient.ClientConfig{
		Target:            cfg.Clients.Orders.Target,
		RequestTimeout:    cfg.Clients.Orders.CallTimeout(),
		KeepaliveInterval: 30 * time.Second,
	})
	if err != nil {
		logger.Fatal(rootCtx, "Failed to create orders client", "error", err)
	}
	defer ordersConn.Close()

	// 7. 消息中间件
	broker, err := mq.Open(rootCtx, cfg.Broker)
	if err != nil {
		logger.Fatal(rootCtx, "Failed to initialize broker", "kind", cfg.Broker.Kind, "error", err)
	}
	defer broker.Close()

	// 8. 指标
	m, err := metrics.New(cfg.ServiceName, prometheus.DefaultRegisterer)
	if err != nil {
		logger.Fatal(rootCtx, "Failed to register metrics", "error", err)
	}

	// 9. 仓储、应用服务与事件处理
	productSvc := application.NewProductService(
		postgres.NewProductRepository(database.DB),
		client.NewOrdersClient(ordersv1.NewOrdersServiceClient(ordersConn)),
		productCache,
	)
	stockHandler := events.NewOrderCreatedHandler(productSvc, m)

	// 10. gRPC 服务器
	grpcServer := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(
			middleware.GRPCLoggingInterceptor(),
			middleware.GRPCRecoveryInterceptor(),
			m.UnaryServerInterceptor(),
		),
		grpc.MaxConcurrentStreams(uint32(cfg.GRPC.MaxConcurrentStreams)),
	)
	grpchandler.NewServer(grpcServer, productSvc)
	healthSrv := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthSrv)
	reflection.Register(grpcServer)

	// 11. 启动
	g, ctx := errgroup.WithContext(rootCtx)

	g.Go(func() error {
		lis, err := net.Listen("tcp", cfg.GRPC.Addr())
		if err != nil {
			return err
		}
		logger.Info(ctx, "Starting gRPC server", "addr", cfg.GRPC.Addr())
		return grpcServer.Serve(lis)
	})

	g.Go(func() error {
		return stockHandler.Subscribe(ctx, broker, cfg.Broker.GroupID, cfg.Broker.Workers)
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

	// 12. 优雅关停
	g.Go(func() error {
		<-ctx.Done()
		logger.Info(context.Background(), "Shutting down ProductsService")
		healthSrv.Shutdown()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if metricsServer != nil {
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				logger.Error(shutdownCtx, "Metrics server shutdown error", "error", err)
			}
		}
		grpcServer.GracefulStop()
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error(context.Background(), "ProductsService exited with error", "error", err)
	}
	logger.Info(context.Background(), "ProductsService stopped")
}
