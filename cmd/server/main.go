package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pu-ac-cn/appware-backend/internal/config"
	"github.com/pu-ac-cn/appware-backend/internal/database"
	"github.com/pu-ac-cn/appware-backend/internal/handler"
	"github.com/pu-ac-cn/appware-backend/internal/middleware"
	"github.com/pu-ac-cn/appware-backend/internal/model"
	"github.com/pu-ac-cn/appware-backend/internal/redis"
	"github.com/pu-ac-cn/appware-backend/internal/repository"
	"github.com/pu-ac-cn/appware-backend/internal/service"
	"github.com/pu-ac-cn/appware-backend/pkg/response"
)

func main() {
	// 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}
	if cfg.JWT.Secret == "" {
		log.Fatal("缺少 JWT 共享密钥，请通过配置文件或环境变量提供 jwt.secret")
	}

	// 初始化数据库连接
	if err := database.Init(&cfg.Database); err != nil {
		log.Fatalf("初始化数据库失败: %v", err)
	}
	defer database.Close()
	log.Println("数据库连接成功")

	// 初始化 Redis 连接
	if err := redis.Init(&cfg.Redis); err != nil {
		log.Fatalf("初始化 Redis 失败: %v", err)
	}
	defer redis.Close()
	log.Println("Redis 连接成功")

	// 自动迁移数据库表
	if err := database.AutoMigrate(&model.AppWare{}); err != nil {
		log.Fatalf("数据库迁移失败: %v", err)
	}
	log.Println("数据库迁移完成")

	// 初始化 Repository 和 Service
	wareRepo := repository.NewAppWareRepository(database.GetDB())
	wareService := service.NewAppWareService(wareRepo, redis.GetClient(), cfg.AppWare.PopularCacheTTL)
	tokenService := service.NewTokenService(&service.TokenServiceConfig{
		Secret: cfg.JWT.Secret,
		Issuer: cfg.JWT.Issuer,
		Expiry: cfg.JWT.AccessExpiry,
	})

	// 初始化 Handler
	wareHandler := handler.NewAppWareHandler(wareService)

	// 设置 Gin 模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 创建路由
	router := gin.New()

	// 全局中间件
	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	router.Use(middleware.CORS())

	// 健康检查
	router.GET("/health", func(c *gin.Context) {
		// 检查数据库连接
		dbStatus := "ok"
		if err := database.Ping(); err != nil {
			dbStatus = "error"
		}

		// 检查 Redis 连接
		redisStatus := "ok"
		redisClient := redis.GetClient()
		if redisClient == nil {
			redisStatus = "error"
		} else if err := redisClient.Ping(c.Request.Context()).Err(); err != nil {
			redisStatus = "error"
		}

		response.Success(c, gin.H{
			"status":   "ok",
			"time":     time.Now().Format(time.RFC3339),
			"database": dbStatus,
			"redis":    redisStatus,
		})
	})

	// API 路由组
	api := router.Group("/api/v1")
	{
		api.GET("/ping", func(c *gin.Context) {
			response.Success(c, "pong")
		})

		// 应用仓库路由（全部需要认证）
		wares := api.Group("/appwares")
		wares.Use(middleware.JWTAuth(tokenService))
		{
			// 静态路径必须注册在 :id 之前
			wares.GET("/my", wareHandler.ListMyAppWares)
			wares.GET("/popular", wareHandler.ListPopularAppWares)
			wares.GET("/admin/all", middleware.RequireSuperuser(), wareHandler.ListAllAppWares)
			wares.GET("", wareHandler.ListAppWares)
			wares.GET("/:id", wareHandler.GetAppWare)
			wares.POST("", wareHandler.CreateAppWare)
			wares.PUT("/:id", wareHandler.UpdateAppWare)
			wares.DELETE("/:id", wareHandler.DeleteAppWare)
		}
	}

	// 创建 HTTP 服务器
	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// 启动服务器
	go func() {
		log.Printf("服务启动，监听地址: %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("服务启动失败: %v", err)
		}
	}()

	// 等待中断信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("正在关闭服务...")

	// 优雅关闭，等待 5 秒
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("服务关闭失败: %v", err)
	}

	log.Println("服务已关闭")
}
