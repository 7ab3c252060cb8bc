package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/opentracing/opentracing-go"

	"github.com/mistamayor/berrymart-v1/internal/common/config"
	"github.com/mistamayor/berrymart-v1/internal/common/database"
	"github.com/mistamayor/berrymart-v1/internal/common/logger"
	"github.com/mistamayor/berrymart-v1/internal/common/server"
	"github.com/mistamayor/berrymart-v1/internal/common/tracing"
	"github.com/mistamayor/berrymart-v1/internal/customer"
	"github.com/mistamayor/berrymart-v1/internal/order"
	"github.com/mistamayor/berrymart-v1/internal/product"
	"github.com/mistamayor/berrymart-v1/internal/seed"
	"github.com/mistamayor/berrymart-v1/internal/session"
	"github.com/mistamayor/berrymart-v1/internal/user"
	"github.com/mistamayor/berrymart-v1/internal/vehicle"
)

type bootstrapFlags struct {
	configPath  string
	consulHost  string
	consulPort  int
	consulKVKey string
}

func main() {
	var f bootstrapFlags
	flag.StringVar(&f.configPath, "config", "configs/berrymart.json", "配置文件路径")
	flag.StringVar(&f.consulHost, "consul-host", "localhost", "Consul 地址（配合 -consul-kv-key）")
	flag.IntVar(&f.consulPort, "consul-port", 8500, "Consul 端口（配合 -consul-kv-key）")
	flag.StringVar(&f.consulKVKey, "consul-kv-key", "", "从 Consul KV 读取 JSON 配置的 key，设置后优先于 -config")
	flag.Parse()

	if err := run(f); err != nil {
		fmt.Fprintf(os.Stderr, "berrymart: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(f bootstrapFlags) (*config.Config, error) {
	if f.consulKVKey != "" {
		return config.LoadConfigFromConsulKV(f.consulHost, f.consulPort, f.consulKVKey)
	}
	return config.LoadConfig(f.configPath)
}

func run(f bootstrapFlags) error {
	cfg, err := loadConfig(f)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.NewLogger(cfg.Log.Driver, cfg.Log.Level, cfg.Log.Format, cfg.Log.Output, cfg.Log.Path)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	// 链路追踪初始化失败不阻塞启动
	tracer, closer, err := tracing.InitTracer(cfg.Server.Name, cfg.Jaeger.Endpoint, cfg.Jaeger.Sampler)
	if err != nil {
		log.Warnf("failed to init tracer: %v", err)
	} else {
		opentracing.SetGlobalTracer(tracer)
		defer closer.Close()
	}

	db, err := database.Open(cfg.Database)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}

	if err := db.AutoMigrate(
		&user.User{},
		&customer.Customer{}, &customer.Address{},
		&product.Product{},
		&vehicle.Vehicle{},
		&order.Order{}, &order.OrderItem{},
	); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	if cfg.Seed.Demo {
		if err := seed.RunDemo(context.Background(), db, log); err != nil {
			return fmt.Errorf("seed demo data: %w", err)
		}
	}

	v := validatorv10.New()

	customerRepo := customer.NewRepo(db)
	productRepo := product.NewRepo(db)
	vehicleRepo := vehicle.NewRepo(db)
	userRepo := user.NewRepo(db)

	userSvc := user.NewService(userRepo)
	vehicleSvc := vehicle.NewService(vehicleRepo, userRepo)
	orderSvc := order.NewService(order.NewRepo(db), customerRepo, productRepo, vehicleRepo)

	customerHandler := customer.NewHandler(customerRepo, v)
	productHandler := product.NewHandler(productRepo, v)
	vehicleHandler := vehicle.NewHandler(vehicleSvc, v)
	userHandler := user.NewHandler(userSvc, v)
	orderHandler := order.NewHandler(orderSvc, v)
	sessionHandler := session.NewHandler(userSvc, cfg.Auth, v)

	return server.RunHTTPServer(cfg, log, func(r *mux.Router) error {
		sessionHandler.RegisterRoutes(r)
		customerHandler.RegisterRoutes(r)
		productHandler.RegisterRoutes(r)
		vehicleHandler.RegisterRoutes(r)
		userHandler.RegisterRoutes(r)
		orderHandler.RegisterRoutes(r)
		return nil
	})
}
