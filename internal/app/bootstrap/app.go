package bootstrap

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/taoyao-code/serial-sim/internal/app"
	cfgpkg "github.com/taoyao-code/serial-sim/internal/config"
	"github.com/taoyao-code/serial-sim/internal/device"
	"github.com/taoyao-code/serial-sim/internal/link"
	"github.com/taoyao-code/serial-sim/internal/metrics"
	"github.com/taoyao-code/serial-sim/internal/simulation"
)

// Run 统一启动流程：构造链路与端点 -> 预发 PID -> 运行固定时长 -> 停止并输出报告
// ctx 结束（收到信号）时提前停止
func Run(ctx context.Context, cfg *cfgpkg.Config, log *zap.Logger, out io.Writer) error {
	log.Info("starting serial link simulation",
		zap.String("app", cfg.App.Name),
		zap.Duration("duration", cfg.Simulation.Duration))

	// ========== 阶段1: 基础组件 ==========
	reg, m := app.NewMetrics()
	seeds := app.NewSeeds(cfg.Simulation.Seed)
	log.Info("random seeds", zap.Int64("controller", seeds.Controller), zap.Int64("peripheral", seeds.Peripheral))

	// ========== 阶段2: 链路与端点 ==========
	ch := link.NewChannel(m)
	tr := app.NewTransport(cfg.Noise, ch, device.NewRand(seeds.Noise), log, m)
	a, b := app.NewDevices(cfg, tr, seeds, log, m)
	runner := simulation.NewRunner(a, b, log)

	// ========== 阶段3: 观测 HTTP（可选）==========
	if cfg.HTTP.Enable {
		stop := startHTTP(cfg, metrics.Handler(reg), ch, runner, log)
		defer stop()
	}

	// ========== 阶段4: 预发 PID ==========
	// B 的循环尚未启动，指令在 A->B 队列中等待
	if p := cfg.Simulation.Priming; p.Enable {
		if err := a.SendPid(p.Kp, p.Ki, p.Kd); err != nil {
			return fmt.Errorf("priming pid: %w", err)
		}
	}

	// ========== 阶段5: 运行 ==========
	runner.RunFor(ctx, cfg.Simulation.Duration)

	report := simulation.NewReport(runner, ch, a, b)
	if out != nil {
		if err := report.WriteYAML(out); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
	}
	log.Info("simulation finished",
		zap.String("run_id", runner.RunID()),
		zap.Uint64("a_to_b_sent", report.Link.AtoB.Sent),
		zap.Uint64("b_to_a_sent", report.Link.BtoA.Sent))
	return nil
}

// startHTTP 启动探针/指标服务，返回关闭函数
func startHTTP(cfg *cfgpkg.Config, metricsHandler http.Handler, ch *link.Channel, runner *simulation.Runner, log *zap.Logger) func() {
	httpSrv := app.NewHTTPServer(cfg, metricsHandler, runner.Running)
	agg := app.NewHealthAggregator(ch, runner, cfg.Health.BacklogThreshold)
	httpSrv.Register(func(r *gin.Engine) {
		app.RegisterHealthRoutes(r, agg)
	})

	go func() {
		if err := httpSrv.Start(); err != nil {
			log.Error("http server error", zap.Error(err))
		}
	}()
	log.Info("http server started", zap.String("addr", cfg.HTTP.Addr))

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpSrv.Shutdown(ctx)
		log.Info("http server stopped")
	}
}
