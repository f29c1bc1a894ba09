package ratelimit

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

/*
會有突刺問題
視窗交界處最多可通過 2 倍 Capacity
*/
type window struct {
	count     atomic.Int32
	startedAt time.Time
}

type FixedWindow struct {
	Config
	mu      sync.Mutex
	windows map[string]*window
	now     func() time.Time
}

var _ Limiter = (*FixedWindow)(nil)

func NewFixedWindow(cfg Config) *FixedWindow {
	return &FixedWindow{
		Config:  cfg.normalize(),
		windows: map[string]*window{},
		now:     time.Now,
	}
}

func (f *FixedWindow) Allow(ctx context.Context, key string) (bool, error) {
	current := f.now()

	f.mu.Lock()
	w, ok := f.windows[key]
	if !ok || current.Sub(w.startedAt) >= f.Window {
		w = &window{startedAt: current}
		f.windows[key] = w
	}
	f.mu.Unlock()

	for {
		count := w.count.Load()
		if count+1 > int32(f.Capacity) {
			return false, nil
		}
		if w.count.CompareAndSwap(count, count+1) {
			return true, nil
		}
	}
}

// Sweep 清掉已過期的視窗
func (f *FixedWindow) Sweep() {
	current := f.now()
	f.mu.Lock()
	defer f.mu.Unlock()
	for k, w := range f.windows {
		if current.Sub(w.startedAt) >= f.Window {
			delete(f.windows, k)
		}
	}
}
