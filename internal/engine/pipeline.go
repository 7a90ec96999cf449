package engine

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
)

// PoolResult pairs a job's submission index with its outcome.
type PoolResult[T any] struct {
	Index int
	Value T
	Err   error
}

// RunPool executes jobs on a bounded pool of workers and streams results
// in completion order. The channel closes after the last result. Each job
// is isolated: a panic is converted to an error result and never aborts
// sibling work or the pool.
func RunPool[T any](ctx context.Context, workers int, jobs []func(context.Context) (T, error)) <-chan PoolResult[T] {
	if workers <= 0 {
		workers = 4
	}
	if workers > len(jobs) {
		workers = len(jobs)
	}

	indices := make(chan int)
	out := make(chan PoolResult[T], len(jobs))

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range indices {
				out <- runJob(ctx, idx, jobs[idx])
			}
		}()
	}

	go func() {
		defer close(indices)
		for i := range jobs {
			select {
			case indices <- i:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(out)
	}()

	return out
}

// runJob invokes one job with panic isolation.
func runJob[T any](ctx context.Context, idx int, fn func(context.Context) (T, error)) (res PoolResult[T]) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("pool job panic",
				slog.Int("job", idx),
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())))
			res = PoolResult[T]{Index: idx, Err: fmt.Errorf("job panic: %v", r)}
		}
	}()
	v, err := fn(ctx)
	return PoolResult[T]{Index: idx, Value: v, Err: err}
}

// Progress serializes per-item progress output from concurrent workers.
// Workers send events; a single consumer goroutine logs them in arrival
// order, so parallel runs never interleave half-written lines.
type Progress struct {
	ch   chan progressEvent
	done chan struct{}
}

type progressEvent struct {
	level slog.Level
	msg   string
	attrs []slog.Attr
}

// NewProgress starts the consumer goroutine. Callers must Close.
func NewProgress() *Progress {
	p := &Progress{
		ch:   make(chan progressEvent, 64),
		done: make(chan struct{}),
	}
	go p.consume()
	return p
}

func (p *Progress) consume() {
	for ev := range p.ch {
		slog.LogAttrs(context.Background(), ev.level, ev.msg, ev.attrs...)
	}
	close(p.done)
}

func (p *Progress) Info(msg string, attrs ...slog.Attr) {
	p.ch <- progressEvent{level: slog.LevelInfo, msg: msg, attrs: attrs}
}

func (p *Progress) Warn(msg string, attrs ...slog.Attr) {
	p.ch <- progressEvent{level: slog.LevelWarn, msg: msg, attrs: attrs}
}

// Close flushes queued events and stops the consumer.
func (p *Progress) Close() {
	close(p.ch)
	<-p.done
}
