package simulation

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Endpoint 可在独立 goroutine 中运行直到 ctx 结束的端点
type Endpoint interface {
	Run(ctx context.Context)
}

// Runner 以两个并行 goroutine 运行端点 A/B，Stop 协作式取消并等待双方退出
type Runner struct {
	a, b  Endpoint
	runID string
	log   *zap.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started time.Time
	elapsed time.Duration
}

// NewRunner log 可为 nil
func NewRunner(a, b Endpoint, log *zap.Logger) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	id := uuid.NewString()
	return &Runner{a: a, b: b, runID: id, log: log.With(zap.String("run_id", id))}
}

func (r *Runner) RunID() string { return r.runID }

// Running 是否已启动且尚未 Stop
func (r *Runner) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cancel != nil
}

// Start 重复调用无副作用
func (r *Runner) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		return
	}
	runCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.started = time.Now()

	r.wg.Add(2)
	go func() {
		defer r.wg.Done()
		r.a.Run(runCtx)
	}()
	go func() {
		defer r.wg.Done()
		r.b.Run(runCtx)
	}()
	r.log.Info("simulation started")
}

// Stop 未启动时直接返回
func (r *Runner) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel == nil {
		return
	}
	r.cancel()
	r.wg.Wait()
	r.cancel = nil
	r.elapsed += time.Since(r.started)
	r.log.Info("simulation stopped", zap.Duration("elapsed", r.elapsed))
}

// RunFor 启动（如未启动）并运行 d，或直到 ctx 结束，然后停止
func (r *Runner) RunFor(ctx context.Context, d time.Duration) {
	r.Start(ctx)
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
		r.log.Info("simulation interrupted", zap.Error(ctx.Err()))
	}
	r.Stop()
}

// Elapsed 累计运行时长（不含当前仍在运行的一段）
func (r *Runner) Elapsed() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.elapsed
}
