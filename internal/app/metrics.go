package app

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/taoyao-code/serial-sim/internal/metrics"
)

// NewMetrics 初始化注册表与链路指标
func NewMetrics() (*prometheus.Registry, *metrics.SimMetrics) {
	reg := metrics.NewRegistry()
	m := metrics.NewSimMetrics(reg)
	return reg, m
}
