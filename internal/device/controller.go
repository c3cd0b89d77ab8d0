package device

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	cfgpkg "github.com/taoyao-code/serial-sim/internal/config"
	"github.com/taoyao-code/serial-sim/internal/link"
	"github.com/taoyao-code/serial-sim/internal/metrics"
	"github.com/taoyao-code/serial-sim/internal/protocol/serial"
)

// ControllerSnapshot 主机侧最近一次收到的应答
type ControllerSnapshot struct {
	LastPwmAck *uint16          `json:"last_pwm_ack,omitempty" yaml:"last_pwm_ack,omitempty"`
	LastPidAck *serial.PidGains `json:"last_pid_ack,omitempty" yaml:"last_pid_ack,omitempty"`
	LastStatus *serial.Status   `json:"last_status,omitempty" yaml:"last_status,omitempty"`
	Skipped    uint64           `json:"skipped" yaml:"skipped"`
	Counters   Counters         `json:"counters" yaml:"counters"`
}

// Controller 端点 A：随机下发 PWM/状态查询指令，并处理设备应答
type Controller struct {
	*endpoint

	rnd     Rand
	limiter *rate.Limiter
	pwmMax  int

	mu      sync.Mutex
	pwmAck  *uint16
	pidAck  *serial.PidGains
	status  *serial.Status
	skipped uint64
}

// NewController 在 A->B 上发送、B->A 上接收；log 与 m 可为 nil
func NewController(tr link.Transport, cfg cfgpkg.ControllerConfig, rnd Rand, log *zap.Logger, m *metrics.SimMetrics) *Controller {
	c := &Controller{
		endpoint: newEndpoint("controller", tr, link.BtoA, link.AtoB, cfg.WaitTimeout, cfg.Idle, log, m),
		rnd:      rnd,
		limiter:  rate.NewLimiter(rate.Limit(cfg.CommandRate), cfg.CommandBurst),
		pwmMax:   cfg.PwmMax,
	}
	c.table.Register(serial.RspAckPwm, c.onAckPwm)
	c.table.Register(serial.RspAckPid, c.onAckPid)
	c.table.Register(serial.RspStatus, c.onStatus)
	return c
}

// Run 发指令 -> 等待并排空应答 -> 空闲休眠，直到 ctx 结束
func (c *Controller) Run(ctx context.Context) {
	c.log.Info("controller loop started")
	defer c.log.Info("controller loop stopped")
	for ctx.Err() == nil {
		if err := c.SendRandomCommand(); err != nil {
			c.log.Error("send command failed", zap.Error(err))
		}
		c.Poll(ctx)
		if !sleep(ctx, c.idle) {
			return
		}
	}
}

// Poll 等待一次并排空 B->A，返回处理条数
func (c *Controller) Poll(ctx context.Context) int { return c.poll(ctx) }

// SendRandomCommand 一半概率下发随机 PWM，其余为状态查询；被限速时跳过
func (c *Controller) SendRandomCommand() error {
	if !c.limiter.Allow() {
		c.mu.Lock()
		c.skipped++
		c.mu.Unlock()
		if c.metrics != nil {
			c.metrics.CommandsSkipped.Inc()
		}
		return nil
	}
	if c.rnd.Intn(2) == 0 {
		return c.SendPwm(uint16(c.rnd.Intn(c.pwmMax + 1)))
	}
	return c.RequestStatus()
}

func (c *Controller) SendPwm(value uint16) error {
	if err := c.send(serial.CmdSetPwm, serial.EncodePwm(value)); err != nil {
		return err
	}
	c.log.Info("sent pwm command", zap.Uint16("value", value))
	return nil
}

func (c *Controller) SendPid(kp, ki, kd float32) error {
	if err := c.send(serial.CmdSetPid, serial.EncodePid(serial.PidGains{Kp: kp, Ki: ki, Kd: kd})); err != nil {
		return err
	}
	c.log.Info("sent pid command",
		zap.Float32("kp", kp), zap.Float32("ki", ki), zap.Float32("kd", kd))
	return nil
}

func (c *Controller) RequestStatus() error {
	if err := c.send(serial.CmdRequestStatus, nil); err != nil {
		return err
	}
	c.log.Info("requested status")
	return nil
}

func (c *Controller) onAckPwm(p *serial.Packet) error {
	v, err := serial.DecodePwm(p.Payload)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.pwmAck = &v
	c.mu.Unlock()
	c.log.Info("received pwm ack", zap.Uint16("pwm", v))
	return nil
}

func (c *Controller) onAckPid(p *serial.Packet) error {
	g, err := serial.DecodePid(p.Payload)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.pidAck = &g
	c.mu.Unlock()
	c.log.Info("received pid ack",
		zap.Float32("kp", g.Kp), zap.Float32("ki", g.Ki), zap.Float32("kd", g.Kd))
	return nil
}

func (c *Controller) onStatus(p *serial.Packet) error {
	s, err := serial.DecodeStatus(p.Payload)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.status = &s
	c.mu.Unlock()
	c.log.Info("received status",
		zap.Uint8("battery", s.Battery), zap.Uint8("temperature", s.Temperature))
	return nil
}

// Snapshot 返回副本，可在循环运行时调用
func (c *Controller) Snapshot() ControllerSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	snap := ControllerSnapshot{Skipped: c.skipped, Counters: c.counters()}
	if c.pwmAck != nil {
		v := *c.pwmAck
		snap.LastPwmAck = &v
	}
	if c.pidAck != nil {
		g := *c.pidAck
		snap.LastPidAck = &g
	}
	if c.status != nil {
		s := *c.status
		snap.LastStatus = &s
	}
	return snap
}
