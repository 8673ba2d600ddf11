package timer

import (
	"sync"
	"time"
)

// Clock supplies the current time and periodic callbacks.
type Clock interface {
	Now() time.Time
	// Every calls fn once per d until the returned Ticker is stopped.
	Every(d time.Duration, fn func()) Ticker
}

// Ticker is a cancellable handle for a periodic callback.
type Ticker interface {
	Stop()
}

// System returns a Clock backed by the time package.
func System() Clock { return systemClock{} }

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) Every(d time.Duration, fn func()) Ticker {
	t := &systemTicker{
		ticker: time.NewTicker(d),
		done:   make(chan struct{}),
	}
	go t.loop(fn)
	return t
}

type systemTicker struct {
	ticker *time.Ticker
	done   chan struct{}
	once   sync.Once
}

func (t *systemTicker) loop(fn func()) {
	for {
		select {
		case <-t.done:
			return
		case <-t.ticker.C:
			fn()
		}
	}
}

// Stop does not wait for an in-flight callback to return, so it is safe to
// call while holding a lock that the callback also takes.
func (t *systemTicker) Stop() {
	t.once.Do(func() {
		t.ticker.Stop()
		close(t.done)
	})
}
