package link

import (
	"sync"

	"go.uber.org/zap"

	"github.com/taoyao-code/serial-sim/internal/metrics"
)

// Rand 噪声注入使用的随机源（*rand.Rand 满足该接口）
type Rand interface {
	Float64() float64
	Intn(n int) int
}

// NoisyTransport 在发送侧按概率破坏消息（翻转一位或截断尾部），模拟线路干扰
// probability<=0 时完全透传
type NoisyTransport struct {
	Transport

	probability float64
	mu          sync.Mutex
	rnd         Rand
	log         *zap.Logger
	metrics     *metrics.SimMetrics
}

// NewNoisyTransport 包装 inner；log 与 m 可为 nil
func NewNoisyTransport(inner Transport, probability float64, rnd Rand, log *zap.Logger, m *metrics.SimMetrics) *NoisyTransport {
	if log == nil {
		log = zap.NewNop()
	}
	return &NoisyTransport{
		Transport:   inner,
		probability: probability,
		rnd:         rnd,
		log:         log,
		metrics:     m,
	}
}

func (n *NoisyTransport) Send(dir Direction, msg []byte) {
	if n.probability <= 0 || len(msg) == 0 {
		n.Transport.Send(dir, msg)
		return
	}
	n.mu.Lock()
	hit := n.rnd.Float64() < n.probability
	var out []byte
	if hit {
		out = n.corrupt(msg)
	}
	n.mu.Unlock()

	if !hit {
		n.Transport.Send(dir, msg)
		return
	}
	n.log.Debug("line noise injected",
		zap.Stringer("direction", dir),
		zap.Int("orig_len", len(msg)),
		zap.Int("len", len(out)))
	if n.metrics != nil {
		n.metrics.LinkCorrupted.WithLabelValues(dir.String()).Inc()
	}
	n.Transport.Send(dir, out)
}

// corrupt 调用方持有 n.mu
func (n *NoisyTransport) corrupt(msg []byte) []byte {
	out := make([]byte, len(msg))
	copy(out, msg)
	if n.rnd.Intn(2) == 0 {
		bit := n.rnd.Intn(len(out) * 8)
		out[bit/8] ^= 1 << (bit % 8)
		return out
	}
	cut := 1 + n.rnd.Intn(len(out))
	return out[:len(out)-cut]
}
