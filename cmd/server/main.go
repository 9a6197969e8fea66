package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/qingwen/novel_go_server/config"
	"github.com/qingwen/novel_go_server/internal/api"
	"github.com/qingwen/novel_go_server/internal/api/handler"
	"github.com/qingwen/novel_go_server/internal/database"
	"github.com/qingwen/novel_go_server/internal/pkg/cooldown"
	"github.com/qingwen/novel_go_server/internal/pkg/notify"
	"github.com/qingwen/novel_go_server/internal/pkg/ws"
	"github.com/qingwen/novel_go_server/internal/repository"
	"github.com/qingwen/novel_go_server/internal/service"
)

func main() {
	// 加载配置
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 初始化数据库
	db, err := database.NewMySQL(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect database: %v", err)
	}
	log.Println("Database connected")

	// 初始化 Redis
	rdb, err := database.NewRedis(&cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to connect redis: %v", err)
	}
	log.Println("Redis connected")

	// 冷却窗口，多实例共享 Redis
	window := time.Duration(cfg.Comment.CooldownSeconds) * time.Second
	if window <= 0 {
		window = 10 * time.Second
	}
	guard := cooldown.NewGuard(cooldown.NewRedisStore(rdb, window), window)

	// WebSocket Hub 与回复提醒
	wsHub := ws.NewHub()
	notifier := notify.NewPublisher(rdb)
	subscriber := notify.NewSubscriber(rdb, wsHub)
	go func() {
		if err := subscriber.Run(context.Background()); err != nil {
			log.Printf("Notify subscriber stopped: %v", err)
		}
	}()

	// 初始化 Repository
	userRepo := repository.NewUserRepository(db)
	novelRepo := repository.NewNovelRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	voteRepo := repository.NewVoteRepository(db)

	// 初始化 Service
	authService := service.NewAuthService(userRepo, cfg)
	commentService := service.NewCommentService(commentRepo, voteRepo, userRepo, novelRepo, guard, notifier, cfg)

	// 初始化 Handler
	authHandler := handler.NewAuthHandler(authService)
	commentHandler := handler.NewCommentHandler(commentService, cfg)
	websocketHandler := handler.NewWebSocketHandler(wsHub, cfg.JWT.Secret)

	// 初始化 Router
	router := api.NewRouter(authHandler, commentHandler, websocketHandler, cfg)
	engine := router.Setup()

	// 启动服务器
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Printf("Server starting on %s", addr)
	if err := engine.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
