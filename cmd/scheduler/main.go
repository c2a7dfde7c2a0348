package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/jobs/dcron/internal/ids"
	"github.com/jobs/dcron/pkg/config"
	"github.com/jobs/dcron/pkg/logger"
)

func main() {
	// 解析命令行参数
	var configPath string
	flag.StringVar(&configPath, "config", "configs/config.yaml", "path to config file")
	flag.Parse()

	// 加载配置
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 创建日志器
	zapLogger, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer zapLogger.Sync()

	ids.Init(uint16(cfg.Node.WorkerID))

	zapLogger.Info("Starting dcron node",
		zap.String("node_id", cfg.Node.ID),
		zap.String("strategy", cfg.Node.Strategy))

	app, err := InitializeApp(zapLogger, cfg)
	if err != nil {
		zapLogger.Fatal("Failed to initialize app", zap.Error(err))
	}

	startCtx, cancelStart := context.WithTimeout(context.Background(), 30*time.Second)
	err = app.Start(startCtx)
	cancelStart()
	if err != nil {
		zapLogger.Fatal("Failed to start scheduler", zap.Error(err))
	}

	// 启动HTTP服务器
	httpServer := &http.Server{
		Addr:           fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:        app.Server.Router(),
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	go func() {
		zapLogger.Info("Starting API server",
			zap.Int("port", cfg.Server.Port))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("Failed to start API server", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	zapLogger.Info("Shutting down...")

	// 优雅关闭HTTP服务器
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		zapLogger.Error("Failed to shutdown API server", zap.Error(err))
	}

	// 停止调度器
	if err := app.Stop(ctx); err != nil {
		zapLogger.Error("Failed to stop scheduler", zap.Error(err))
	}

	zapLogger.Info("Shutdown complete")
}
