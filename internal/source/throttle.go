package source

import (
	"context"
	"sync"
	"time"
)

// Throttle общий на все источники.
// Запросы идут строго по одному, следующий стартует не раньше чем через delay после окончания предыдущего.
type Throttle struct {
	delay time.Duration
	turn  chan struct{}

	mu   sync.Mutex
	last time.Time
}

func NewThrottle(delay time.Duration) *Throttle {
	return &Throttle{
		delay: delay,
		turn:  make(chan struct{}, 1),
	}
}

// Do ждет своей очереди и выполняет fn. Ожидание прерывается контекстом.
func (t *Throttle) Do(ctx context.Context, fn func() error) error {
	select {
	case t.turn <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-t.turn }()

	if wait := t.delay - time.Since(t.lastCall()); wait > 0 {
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	defer t.finish()

	return fn()
}

func (t *Throttle) lastCall() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.last
}

func (t *Throttle) finish() {
	t.mu.Lock()
	t.last = time.Now()
	t.mu.Unlock()
}
