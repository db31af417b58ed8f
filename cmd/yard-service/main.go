package main

import (
	"context"
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/YardLink/YardLink/internal/common/auth"
	"github.com/YardLink/YardLink/internal/common/config"
	"github.com/YardLink/YardLink/internal/common/db"
	"github.com/YardLink/YardLink/internal/common/logger"
	"github.com/YardLink/YardLink/internal/common/middleware"
	"github.com/YardLink/YardLink/internal/common/server"
	"github.com/YardLink/YardLink/internal/common/tracing"
	"github.com/YardLink/YardLink/internal/truck"
	"google.golang.org/grpc"
)

var (
	configPath  = flag.String("config", "configs/yard-service.json", "配置文件路径")
	consulKey   = flag.String("consul-config", "", "从 Consul KV 读取配置的 key（优先于 -config）")
	mintSubject = flag.String("mint-token", "", "为指定用户签发面板 token 后退出（开发用）")
	mintRoles   = flag.String("mint-roles", "gate", "签发 token 的角色列表，逗号分隔")
)

func main() {
	flag.Parse()

	// 加载配置
	var cfg *config.Config
	var err error
	if *consulKey != "" {
		cfg, err = config.LoadConfigFromConsulKV("localhost", 8500, *consulKey)
	} else {
		cfg, err = config.LoadConfig(*configPath)
	}
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	// 开发辅助：签发一个面板 token 并退出
	if *mintSubject != "" {
		token, exp, err := auth.GenerateAccessToken(cfg.Auth, *mintSubject, strings.Split(*mintRoles, ","), 24*time.Hour)
		if err != nil {
			panic(fmt.Sprintf("failed to mint token: %v", err))
		}
		fmt.Printf("token (expires %s):\n%s\n", exp.Format(time.RFC3339), token)
		return
	}

	// 初始化日志
	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, cfg.Log.Output, cfg.Log.Path)
	if err != nil {
		panic(fmt.Sprintf("failed to init logger: %v", err))
	}

	// 初始化链路追踪
	tracer, closer, err := tracing.InitTracer(
		cfg.Server.Name,
		cfg.Jaeger.Endpoint,
		cfg.Jaeger.Sampler,
	)
	if err != nil {
		log.Warnf("failed to init tracer: %v", err)
	} else {
		defer closer.Close()
	}
	_ = tracer

	ctx := context.Background()

	// 持久化协作方：mysql / mongo 二选一，外面统一套一层熔断
	var persist truck.Persistence
	switch cfg.Database.Driver {
	case "mongo":
		client, err := db.NewMongo(ctx, cfg.Database.MongoURI)
		if err != nil {
			log.Fatalf("failed to init mongo: %v", err)
		}
		defer func() { _ = client.Disconnect(ctx) }()
		persist = truck.NewMongoRepo(client, cfg.Database.Database)
	default:
		gormDB, err := db.NewMySQL(
			cfg.Database.Host,
			cfg.Database.Port,
			cfg.Database.User,
			cfg.Database.Password,
			cfg.Database.Database,
			cfg.Database.MaxIdle,
			cfg.Database.MaxOpen,
		)
		if err != nil {
			log.Fatalf("failed to init mysql: %v", err)
		}
		if err := gormDB.AutoMigrate(&truck.Truck{}); err != nil {
			log.Fatalf("failed to migrate mysql schema: %v", err)
		}
		persist = truck.NewRepo(gormDB)
	}
	persist = truck.NewGuardedPersistence(
		persist,
		middleware.NewCircuitBreaker("truck-persistence", 5, 30*time.Second),
	)

	// 权威内存集合：启动时从持久化方加载全量
	store := truck.NewStore()
	loaded, err := persist.Load(ctx)
	if err != nil {
		log.Fatalf("failed to load trucks: %v", err)
	}
	store.ReplaceAll(loaded)
	log.Infof("loaded %d trucks from %s", store.Len(), cfg.Database.Driver)

	// 空库 + 开启种子时写入演示数据
	if store.Len() == 0 && cfg.Yard.Seed {
		for _, t := range truck.SeedTrucks(time.Now()) {
			store.Insert(t)
			if err := persist.Save(ctx, &t); err != nil {
				log.Warnf("failed to persist seed truck %s: %v", t.ID, err)
			}
		}
		log.Infof("seeded %d demo trucks", store.Len())
	}

	broker := truck.NewBroker(store)
	svc := truck.NewService(store, persist, broker, log)
	if cfg.Yard.DelayThresholdMinutes > 0 {
		svc.DelayThreshold = time.Duration(cfg.Yard.DelayThresholdMinutes) * time.Minute
	}
	if cfg.Yard.DockCount > 0 {
		svc.DockCount = cfg.Yard.DockCount
	}

	// 运维观察订阅：每次变更后输出场内概况（等同一块只读大屏）
	opsSub := broker.Subscribe("", func(trucks []truck.Truck) {
		delayed := len(truck.ComputeDelayed(trucks, time.Now(), svc.DelayThreshold))
		log.WithFields(map[string]interface{}{
			"trucks":  len(trucks),
			"delayed": delayed,
		}).Info("yard snapshot updated")
	})
	defer opsSub.Cancel()

	// 业务 proto 规划走 grpc-gateway（参见 cmd/api-gateway）；当前仅暴露
	// health/reflection，领域 API 由上层以库方式调用 svc。
	if err := server.RunGRPCServer(cfg, log, func(s *grpc.Server) error {
		return nil
	}); err != nil {
		log.Fatalf("yard-service exited with error: %v", err)
	}
}
