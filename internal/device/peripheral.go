package device

import (
	"context"
	"sync"

	"go.uber.org/zap"

	cfgpkg "github.com/taoyao-code/serial-sim/internal/config"
	"github.com/taoyao-code/serial-sim/internal/link"
	"github.com/taoyao-code/serial-sim/internal/metrics"
	"github.com/taoyao-code/serial-sim/internal/protocol/serial"
)

// 模拟状态取值范围（闭区间）
const (
	BatteryMin     = 0
	BatteryMax     = 99
	TemperatureMin = 20
	TemperatureMax = 49
)

// PeripheralSnapshot 设备侧当前生效的参数
type PeripheralSnapshot struct {
	Pwm      *uint16          `json:"pwm,omitempty" yaml:"pwm,omitempty"`
	Pid      *serial.PidGains `json:"pid,omitempty" yaml:"pid,omitempty"`
	Counters Counters         `json:"counters" yaml:"counters"`
}

// Peripheral 端点 B：执行 PWM/PID 设置并回 ACK，响应状态查询
type Peripheral struct {
	*endpoint

	mu  sync.Mutex
	rnd Rand
	pwm *uint16
	pid *serial.PidGains
}

// NewPeripheral 在 A->B 上接收、B->A 上应答；log 与 m 可为 nil
func NewPeripheral(tr link.Transport, cfg cfgpkg.PeripheralConfig, rnd Rand, log *zap.Logger, m *metrics.SimMetrics) *Peripheral {
	p := &Peripheral{
		endpoint: newEndpoint("peripheral", tr, link.AtoB, link.BtoA, cfg.WaitTimeout, cfg.Idle, log, m),
		rnd:      rnd,
	}
	p.table.Register(serial.CmdSetPwm, p.onSetPwm)
	p.table.Register(serial.CmdSetPid, p.onSetPid)
	p.table.Register(serial.CmdRequestStatus, p.onRequestStatus)
	return p
}

// Run 等待并排空 A->B -> 空闲休眠，直到 ctx 结束
func (p *Peripheral) Run(ctx context.Context) {
	p.log.Info("peripheral loop started")
	defer p.log.Info("peripheral loop stopped")
	for ctx.Err() == nil {
		p.Poll(ctx)
		if !sleep(ctx, p.idle) {
			return
		}
	}
}

// Poll 等待一次并排空 A->B，返回处理条数
func (p *Peripheral) Poll(ctx context.Context) int { return p.poll(ctx) }

func (p *Peripheral) onSetPwm(pkt *serial.Packet) error {
	v, err := serial.DecodePwm(pkt.Payload)
	if err != nil {
		return err
	}
	p.mu.Lock()
	p.pwm = &v
	p.mu.Unlock()
	p.log.Info("applying pwm", zap.Uint16("value", v))
	return p.send(serial.RspAckPwm, serial.EncodePwm(v))
}

// onSetPid ACK 原样回送 12 字节参数
func (p *Peripheral) onSetPid(pkt *serial.Packet) error {
	g, err := serial.DecodePid(pkt.Payload)
	if err != nil {
		return err
	}
	p.mu.Lock()
	p.pid = &g
	p.mu.Unlock()
	p.log.Info("applying pid",
		zap.Float32("kp", g.Kp), zap.Float32("ki", g.Ki), zap.Float32("kd", g.Kd))
	return p.send(serial.RspAckPid, pkt.Payload)
}

func (p *Peripheral) onRequestStatus(_ *serial.Packet) error {
	p.mu.Lock()
	s := serial.Status{
		Battery:     uint8(BatteryMin + p.rnd.Intn(BatteryMax-BatteryMin+1)),
		Temperature: uint8(TemperatureMin + p.rnd.Intn(TemperatureMax-TemperatureMin+1)),
	}
	p.mu.Unlock()
	p.log.Info("reporting status",
		zap.Uint8("battery", s.Battery), zap.Uint8("temperature", s.Temperature))
	return p.send(serial.RspStatus, serial.EncodeStatus(s))
}

// Snapshot 返回副本，可在循环运行时调用
func (p *Peripheral) Snapshot() PeripheralSnapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	snap := PeripheralSnapshot{Counters: p.counters()}
	if p.pwm != nil {
		v := *p.pwm
		snap.Pwm = &v
	}
	if p.pid != nil {
		g := *p.pid
		snap.Pid = &g
	}
	return snap
}
