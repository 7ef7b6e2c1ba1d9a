package plot

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// RenderLock bounds the number of figures rendered at the same time.
type RenderLock struct {
	sem *semaphore.Weighted
}

// NewRenderLock returns a lock admitting n concurrent renders; n below 1
// is treated as 1.
func NewRenderLock(n int) *RenderLock {
	if n < 1 {
		n = 1
	}
	return &RenderLock{sem: semaphore.NewWeighted(int64(n))}
}

// Do runs fn once a render slot is free.
func (l *RenderLock) Do(ctx context.Context, fn func() ([]byte, error)) ([]byte, error) {
	if err := l.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer l.sem.Release(1)
	return fn()
}
