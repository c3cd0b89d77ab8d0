package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/taoyao-code/serial-sim/internal/app/bootstrap"
	cfgpkg "github.com/taoyao-code/serial-sim/internal/config"
	"github.com/taoyao-code/serial-sim/internal/logging"
)

func main() {
	// 1) 加载配置
	cfg, err := cfgpkg.Load("")
	if err != nil {
		panic(err)
	}

	// 2) 初始化日志
	logger, err := logging.InitLogger(cfg.Logging)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)
	log := zap.L()

	// 3) 信号处理：SIGINT/SIGTERM 提前结束模拟
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := bootstrap.Run(ctx, cfg, log, os.Stdout); err != nil {
		log.Error("simulation failed", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
}
