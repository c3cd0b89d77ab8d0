package health

import (
	"context"
	"fmt"
	"time"

	"github.com/taoyao-code/serial-sim/internal/link"
)

// StatsSource 提供链路统计
type StatsSource interface {
	Stats() link.Stats
}

// LinkChecker 按队列积压判断链路状态：超过阈值降级，超过4倍阈值不健康
type LinkChecker struct {
	src       StatsSource
	threshold int
}

func NewLinkChecker(src StatsSource, threshold int) *LinkChecker {
	if threshold <= 0 {
		threshold = 1000
	}
	return &LinkChecker{src: src, threshold: threshold}
}

func (c *LinkChecker) Name() string { return "link" }

func (c *LinkChecker) Check(_ context.Context) CheckResult {
	start := time.Now()
	st := c.src.Stats()
	depth := max(st.AtoB.Depth, st.BtoA.Depth)

	status, message := StatusHealthy, "ok"
	switch {
	case depth > 4*c.threshold:
		status, message = StatusUnhealthy, "link backlog exhausted"
	case depth > c.threshold:
		status, message = StatusDegraded, "link backlog growing"
	}
	return CheckResult{
		Status:  status,
		Message: message,
		Details: map[string]any{
			"a_to_b_depth": st.AtoB.Depth,
			"b_to_a_depth": st.BtoA.Depth,
			"a_to_b_sent":  st.AtoB.Sent,
			"b_to_a_sent":  st.BtoA.Sent,
			"threshold":    c.threshold,
			"utilization":  fmt.Sprintf("%.1f%%", float64(depth)/float64(c.threshold)*100),
		},
		Latency: time.Since(start),
	}
}
