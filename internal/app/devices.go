package app

import (
	"time"

	"go.uber.org/zap"

	cfgpkg "github.com/taoyao-code/serial-sim/internal/config"
	"github.com/taoyao-code/serial-sim/internal/device"
	"github.com/taoyao-code/serial-sim/internal/link"
	"github.com/taoyao-code/serial-sim/internal/metrics"
)

// Seeds 各随机源的种子，互相错开避免序列相关
type Seeds struct {
	Controller int64
	Peripheral int64
	Noise      int64
}

// NewSeeds seed 为 0 时按当前时间取种
func NewSeeds(seed int64) Seeds {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return Seeds{Controller: seed, Peripheral: seed + 1, Noise: seed + 2}
}

// NewDevices 构造端点 A（主机）与端点 B（设备）
func NewDevices(cfg *cfgpkg.Config, tr link.Transport, seeds Seeds, log *zap.Logger, m *metrics.SimMetrics) (*device.Controller, *device.Peripheral) {
	a := device.NewController(tr, cfg.Controller, device.NewRand(seeds.Controller), log, m)
	b := device.NewPeripheral(tr, cfg.Peripheral, device.NewRand(seeds.Peripheral), log, m)
	return a, b
}
