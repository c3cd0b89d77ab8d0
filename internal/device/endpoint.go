package device

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/taoyao-code/serial-sim/internal/link"
	"github.com/taoyao-code/serial-sim/internal/metrics"
	"github.com/taoyao-code/serial-sim/internal/protocol/serial"
)

// Rand 端点使用的随机源，测试可注入确定序列
type Rand interface {
	Intn(n int) int
}

// NewRand seed 为 0 时按当前时间取种
func NewRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// Counters 端点收发计数
type Counters struct {
	Sent         uint64 `json:"sent" yaml:"sent"`
	Received     uint64 `json:"received" yaml:"received"`
	DecodeErrors uint64 `json:"decode_errors" yaml:"decode_errors"`
	Unknown      uint64 `json:"unknown" yaml:"unknown"`
	BadPayload   uint64 `json:"bad_payload" yaml:"bad_payload"`
}

// endpoint 两个端点共用的收发骨架：编码发送、等待+排空、解码路由
type endpoint struct {
	name     string
	tr       link.Transport
	inbound  link.Direction
	outbound link.Direction
	wait     time.Duration
	idle     time.Duration
	table    *serial.Table
	log      *zap.Logger
	metrics  *metrics.SimMetrics

	sent         atomic.Uint64
	received     atomic.Uint64
	decodeErrors atomic.Uint64
	unknown      atomic.Uint64
	badPayload   atomic.Uint64
}

func newEndpoint(name string, tr link.Transport, inbound, outbound link.Direction, wait, idle time.Duration, log *zap.Logger, m *metrics.SimMetrics) *endpoint {
	if log == nil {
		log = zap.NewNop()
	}
	return &endpoint{
		name:     name,
		tr:       tr,
		inbound:  inbound,
		outbound: outbound,
		wait:     wait,
		idle:     idle,
		table:    serial.NewTable(),
		log:      log.With(zap.String("endpoint", name)),
		metrics:  m,
	}
}

// send 编码失败时不写链路
func (e *endpoint) send(cmd byte, payload []byte) error {
	frame, err := serial.Encode(cmd, payload)
	if err != nil {
		return fmt.Errorf("encode %s: %w", serial.CommandName(cmd), err)
	}
	e.tr.Send(e.outbound, frame)
	e.sent.Add(1)
	return nil
}

// poll 一次有界等待后排空队列，返回处理的消息数
func (e *endpoint) poll(ctx context.Context) int {
	wctx, cancel := context.WithTimeout(ctx, e.wait)
	msg, err := e.tr.Receive(wctx, e.inbound)
	cancel()
	if err != nil {
		return 0
	}
	e.handle(msg)
	n := 1
	for {
		msg, ok := e.tr.TryReceive(e.inbound)
		if !ok {
			return n
		}
		e.handle(msg)
		n++
	}
}

// handle 单条消息的任何失败都只丢弃该消息，不影响循环
func (e *endpoint) handle(raw []byte) {
	e.received.Add(1)
	p, err := serial.Decode(raw)
	if e.metrics != nil {
		e.metrics.FrameDecode.WithLabelValues(e.name, serial.DecodeErrorReason(err)).Inc()
	}
	if err != nil {
		e.decodeErrors.Add(1)
		e.log.Warn("failed to parse frame",
			zap.String("reason", serial.DecodeErrorReason(err)),
			zap.Int("len", len(raw)),
			zap.Error(err))
		return
	}

	err = e.table.Route(p)
	switch {
	case err == nil:
		if e.metrics != nil {
			e.metrics.FrameRoute.WithLabelValues(e.name, serial.CommandName(p.Cmd)).Inc()
		}
	case errors.Is(err, serial.ErrUnknownCommand):
		e.unknown.Add(1)
		if e.metrics != nil {
			e.metrics.FrameUnknown.WithLabelValues(e.name).Inc()
		}
		e.log.Warn("unknown command id", zap.String("cmd", fmt.Sprintf("0x%02X", p.Cmd)))
	default:
		e.badPayload.Add(1)
		e.log.Warn("invalid payload",
			zap.String("cmd", serial.CommandName(p.Cmd)),
			zap.Error(err))
	}
}

func (e *endpoint) counters() Counters {
	return Counters{
		Sent:         e.sent.Load(),
		Received:     e.received.Load(),
		DecodeErrors: e.decodeErrors.Load(),
		Unknown:      e.unknown.Load(),
		BadPayload:   e.badPayload.Load(),
	}
}

// sleep ctx 结束时返回 false
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
