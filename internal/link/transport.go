package link

import (
	"context"
	"time"
)

// Direction 单向通道：A->B 或 B->A
type Direction uint8

const (
	AtoB Direction = iota
	BtoA
)

func (d Direction) String() string {
	switch d {
	case AtoB:
		return "a->b"
	case BtoA:
		return "b->a"
	default:
		return "invalid"
	}
}

// Valid 是否为两个已定义方向之一
func (d Direction) Valid() bool { return d == AtoB || d == BtoA }

// Transport 双工字节消息通道
// 每个方向独立保持 FIFO；Send 永不阻塞；并发收发安全
type Transport interface {
	// Send 追加到该方向队尾，唤醒一个等待者
	Send(dir Direction, msg []byte)
	// TryReceive 非阻塞取队头，队列为空返回 false
	TryReceive(dir Direction) ([]byte, bool)
	// WaitReceive 阻塞直到有消息或超时
	WaitReceive(dir Direction, timeout time.Duration) ([]byte, bool)
	// Receive 阻塞直到有消息或 ctx 结束
	Receive(ctx context.Context, dir Direction) ([]byte, error)
}
