package app

import (
	"go.uber.org/zap"

	cfgpkg "github.com/taoyao-code/serial-sim/internal/config"
	"github.com/taoyao-code/serial-sim/internal/link"
	"github.com/taoyao-code/serial-sim/internal/metrics"
)

// NewTransport 噪声概率为 0 时直接返回链路本身
func NewTransport(cfg cfgpkg.NoiseConfig, ch *link.Channel, rnd link.Rand, log *zap.Logger, m *metrics.SimMetrics) link.Transport {
	if cfg.Probability <= 0 {
		return ch
	}
	log.Info("line noise enabled", zap.Float64("probability", cfg.Probability))
	return link.NewNoisyTransport(ch, cfg.Probability, rnd, log.With(zap.String("component", "noise")), m)
}
