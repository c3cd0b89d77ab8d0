package health

import (
	"context"
	"time"
)

// RunningSource 报告模拟是否在运行
type RunningSource interface {
	Running() bool
}

// RunnerChecker 模拟未运行即不健康
type RunnerChecker struct {
	src RunningSource
}

func NewRunnerChecker(src RunningSource) *RunnerChecker { return &RunnerChecker{src: src} }

func (c *RunnerChecker) Name() string { return "simulation" }

func (c *RunnerChecker) Check(_ context.Context) CheckResult {
	start := time.Now()
	if !c.src.Running() {
		return CheckResult{Status: StatusUnhealthy, Message: "simulation not running", Latency: time.Since(start)}
	}
	return CheckResult{Status: StatusHealthy, Message: "ok", Latency: time.Since(start)}
}
