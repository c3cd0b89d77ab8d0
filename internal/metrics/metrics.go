package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRegistry 创建自定义 Prometheus Registry，并注册常用采集器
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Handler 返回 Prometheus 指标 HTTP 处理器
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}

// SimMetrics 链路与端点指标
type SimMetrics struct {
	LinkSent        *prometheus.CounterVec // labels: direction
	LinkReceived    *prometheus.CounterVec // labels: direction
	LinkQueueDepth  *prometheus.GaugeVec   // labels: direction
	LinkCorrupted   *prometheus.CounterVec // labels: direction
	FrameDecode     *prometheus.CounterVec // labels: endpoint, result=ok|too_short|bad_header|...
	FrameRoute      *prometheus.CounterVec // labels: endpoint, cmd
	FrameUnknown    *prometheus.CounterVec // labels: endpoint
	CommandsSkipped prometheus.Counter     // 限速丢弃的随机指令
}

// NewSimMetrics 注册并返回链路指标
func NewSimMetrics(reg prometheus.Registerer) *SimMetrics {
	m := &SimMetrics{
		LinkSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "link_sent_total",
			Help: "Messages enqueued on the serial link.",
		}, []string{"direction"}),
		LinkReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "link_received_total",
			Help: "Messages dequeued from the serial link.",
		}, []string{"direction"}),
		LinkQueueDepth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "link_queue_depth",
			Help: "Messages waiting in a link direction.",
		}, []string{"direction"}),
		LinkCorrupted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "link_corrupted_total",
			Help: "Messages corrupted by injected line noise.",
		}, []string{"direction"}),
		FrameDecode: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "frame_decode_total",
			Help: "Frame decode attempts by endpoint and result.",
		}, []string{"endpoint", "result"}),
		FrameRoute: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "frame_route_total",
			Help: "Routed frames by endpoint and command.",
		}, []string{"endpoint", "cmd"}),
		FrameUnknown: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "frame_unknown_total",
			Help: "Well-formed frames with an unrecognized command id.",
		}, []string{"endpoint"}),
		CommandsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "controller_commands_skipped_total",
			Help: "Random commands skipped by the controller rate limiter.",
		}),
	}
	reg.MustRegister(m.LinkSent, m.LinkReceived, m.LinkQueueDepth, m.LinkCorrupted,
		m.FrameDecode, m.FrameRoute, m.FrameUnknown, m.CommandsSkipped)
	return m
}
