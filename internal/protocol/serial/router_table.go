package serial

import (
	"errors"
	"fmt"
	"sync"
)

// ErrUnknownCommand 帧结构合法但 cmd 未注册处理器
var ErrUnknownCommand = errors.New("unknown command")

// Handler 处理器函数类型
type Handler func(p *Packet) error

// Table 路由表（cmd -> handler）
type Table struct {
	mu       sync.RWMutex
	handlers map[byte]Handler
}

func NewTable() *Table { return &Table{handlers: make(map[byte]Handler)} }

func (t *Table) Register(cmd byte, h Handler) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.handlers[cmd] = h
}

// Route 分发到已注册的处理器；未注册时返回 ErrUnknownCommand
func (t *Table) Route(p *Packet) error {
	t.mu.RLock()
	h := t.handlers[p.Cmd]
	t.mu.RUnlock()
	if h == nil {
		return fmt.Errorf("%w: 0x%02X", ErrUnknownCommand, p.Cmd)
	}
	return h(p)
}
