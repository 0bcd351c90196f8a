// OrdersService 主程序
// 功能：订单的创建与查询，订单创建事件经 outbox 投递到消息中间件
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
	"github.com/wyfcoding/ecommerce/internal/orders/application"
	"github.com/wyfcoding/ecommerce/internal/orders/infrastructure/messaging"
	"github.com/wyfcoding/ecommerce/internal/orders/infrastructure/persistence/postgres"
	grpchandler "github.com/wyfcoding/ecommerce/internal/orders/interfaces/grpc"
	"github.com/wyfcoding/ecommerce/pkg/config"
	"github.com/wyfcoding/ecommerce/pkg/db"
	"github.com/wyfcoding/ecommerce/pkg/logger"
	"github.com/wyfcoding/ecommerce/pkg/metrics"
	"github.com/wyfcoding/ecommerce/pkg/middleware"
	"github.com/wyfcoding/ecommerce/pkg/mq"
	_ "github.com/wyfcoding/ecommerce/pkg/rpc"
	"github.com/wyfcoding/ecommerce/pkg/trace"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

func main() {
	configPath := flag.String("config", "configs/orders/config.toml", "path to config file")
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

	logger.Info(rootCtx, "Starting OrdersService",
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
			logger.Fatal(rootCtx, "Failed to migrate orders schema", "error", err)
		}
		if err := messaging.AutoMigrate(database.DB); err != nil {
			logger.Fatal(rootCtx, "Failed to migrate outbox schema", "error", err)
		}
	}

	// 5. 初始化消息中间件
	broker, err := mq.Open(rootCtx, cfg.Broker)
	if err != nil {
		logger.Fatal(rootCtx, "Failed to initialize broker", "kind", cfg.Broker.Kind, "error", err)
	}
	defer broker.Close()

	// 6. 初始化指标
	m, err := metrics.New(cfg.ServiceName, prometheus.DefaultRegisterer)
	if err != nil {
		logger.Fatal(rootCtx, "Failed to register metrics", "error", err)
	}

	// 7. 仓储与应用服务
	orderRepo := postgres.NewOrderRepository(database.DB)
	commandSvc := application.NewOrderCommandService(orderRepo, messaging.NewOutboxPublisher(), m)
	querySvc := application.NewOrderQueryService(orderRepo)
	relay := messaging.NewRelay(database.DB, broker,
		time.Duration(cfg.Outbox.Interval)*time.Millisecond, cfg.Outbox.BatchSize, m)

	// 8. gRPC 服务器
	grpcServer := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(
			middleware.GRPCLoggingInterceptor(),
			middleware.GRPCRecoveryInterceptor(),
			m.UnaryServerInterceptor(),
		),
		grpc.MaxConcurrentStreams(uint32(cfg.GRPC.MaxConcurrentStreams)),
	)
	grpchandler.NewServer(grpcServer, commandSvc, querySvc)
	healthSrv := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthSrv)
	reflection.Register(grpcServer)

	// 9. 启动
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
		return relay.Run(ctx)
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

	// 10. 优雅关停
	g.Go(func() error {
		<-ctx.Done()
		logger.Info(context.Background(), "Shutting down OrdersService")
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
		logger.Error(context.Background(), "OrdersService exited with error", "error", err)
	}
	logger.Info(context.Background(), "OrdersService stopped")
}
