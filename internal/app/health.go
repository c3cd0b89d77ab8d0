package app

import (
	"github.com/gin-gonic/gin"

	"github.com/taoyao-code/serial-sim/internal/health"
)

// NewHealthAggregator 链路积压与运行状态两个检查器
func NewHealthAggregator(stats health.StatsSource, running health.RunningSource, backlogThreshold int) *health.Aggregator {
	return health.NewAggregator(
		health.NewLinkChecker(stats, backlogThreshold),
		health.NewRunnerChecker(running),
	)
}

// RegisterHealthRoutes 注册健康检查HTTP路由
func RegisterHealthRoutes(r *gin.Engine, aggregator *health.Aggregator) {
	health.RegisterHTTPRoutes(r, aggregator)
}
