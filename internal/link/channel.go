package link

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/golang-collections/collections/queue"

	"github.com/taoyao-code/serial-sim/internal/metrics"
)

// ErrInvalidDirection 方向不是 AtoB/BtoA
var ErrInvalidDirection = errors.New("invalid direction")

// lane 单方向队列：独立互斥锁 + 容量为1的唤醒信号
type lane struct {
	mu       sync.Mutex
	q        *queue.Queue
	signal   chan struct{}
	sent     atomic.Uint64
	received atomic.Uint64
}

func newLane() *lane {
	return &lane{q: queue.New(), signal: make(chan struct{}, 1)}
}

func (l *lane) notify() {
	select {
	case l.signal <- struct{}{}:
	default:
	}
}

func (l *lane) push(msg []byte) int {
	l.mu.Lock()
	l.q.Enqueue(msg)
	depth := l.q.Len()
	l.mu.Unlock()
	l.sent.Add(1)
	l.notify()
	return depth
}

func (l *lane) pop() ([]byte, int, bool) {
	l.mu.Lock()
	if l.q.Len() == 0 {
		l.mu.Unlock()
		return nil, 0, false
	}
	msg := l.q.Dequeue().([]byte)
	depth := l.q.Len()
	l.mu.Unlock()
	l.received.Add(1)
	// 队列仍非空时把信号传给下一个等待者，避免多消费者时丢唤醒
	if depth > 0 {
		l.notify()
	}
	return msg, depth, true
}

func (l *lane) len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.q.Len()
}

// Channel 进程内模拟的全双工串口链路
// 两个方向互不共享状态，没有全局锁；队列无上限（不做背压）
type Channel struct {
	lanes   [2]*lane
	metrics *metrics.SimMetrics
}

// NewChannel 创建链路，m 可为 nil
func NewChannel(m *metrics.SimMetrics) *Channel {
	return &Channel{lanes: [2]*lane{newLane(), newLane()}, metrics: m}
}

func (c *Channel) lane(dir Direction) *lane {
	if !dir.Valid() {
		return nil
	}
	return c.lanes[dir]
}

func (c *Channel) Send(dir Direction, msg []byte) {
	l := c.lane(dir)
	if l == nil {
		return
	}
	cp := make([]byte, len(msg))
	copy(cp, msg)
	depth := l.push(cp)
	if c.metrics != nil {
		c.metrics.LinkSent.WithLabelValues(dir.String()).Inc()
		c.metrics.LinkQueueDepth.WithLabelValues(dir.String()).Set(float64(depth))
	}
}

func (c *Channel) TryReceive(dir Direction) ([]byte, bool) {
	l := c.lane(dir)
	if l == nil {
		return nil, false
	}
	msg, depth, ok := l.pop()
	if ok {
		c.observeReceive(dir, depth)
	}
	return msg, ok
}

// WaitReceive timeout<=0 时等同 TryReceive；超时返回时已入队的消息仍会被取走
func (c *Channel) WaitReceive(dir Direction, timeout time.Duration) ([]byte, bool) {
	if timeout <= 0 {
		return c.TryReceive(dir)
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	msg, err := c.Receive(ctx, dir)
	return msg, err == nil
}

func (c *Channel) Receive(ctx context.Context, dir Direction) ([]byte, error) {
	l := c.lane(dir)
	if l == nil {
		return nil, ErrInvalidDirection
	}
	for {
		if msg, ok := c.TryReceive(dir); ok {
			return msg, nil
		}
		select {
		case <-l.signal:
		case <-ctx.Done():
			// 截止前已入队但信号与超时同时到达的消息
			if msg, ok := c.TryReceive(dir); ok {
				return msg, nil
			}
			return nil, ctx.Err()
		}
	}
}

func (c *Channel) observeReceive(dir Direction, depth int) {
	if c.metrics == nil {
		return
	}
	c.metrics.LinkReceived.WithLabelValues(dir.String()).Inc()
	c.metrics.LinkQueueDepth.WithLabelValues(dir.String()).Set(float64(depth))
}

// Len 当前排队消息数
func (c *Channel) Len(dir Direction) int {
	l := c.lane(dir)
	if l == nil {
		return 0
	}
	return l.len()
}

// DirectionStats 单方向统计
type DirectionStats struct {
	Sent     uint64 `json:"sent" yaml:"sent"`
	Received uint64 `json:"received" yaml:"received"`
	Depth    int    `json:"depth" yaml:"depth"`
}

// Stats 双向统计快照
type Stats struct {
	AtoB DirectionStats `json:"a_to_b" yaml:"a_to_b"`
	BtoA DirectionStats `json:"b_to_a" yaml:"b_to_a"`
}

func (c *Channel) Stats() Stats {
	snap := func(l *lane) DirectionStats {
		return DirectionStats{Sent: l.sent.Load(), Received: l.received.Load(), Depth: l.len()}
	}
	return Stats{AtoB: snap(c.lanes[AtoB]), BtoA: snap(c.lanes[BtoA])}
}
