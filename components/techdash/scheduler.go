package techdash

import (
	"context"
	"sync"
	"time"
)

// DefaultRefreshInterval is the period between automatic refresh cycles.
const DefaultRefreshInterval = 60 * time.Second

// Ticker is the subset of time.Ticker the refresh loop needs.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// TickerFactory builds a ticker for the given period.
type TickerFactory func(d time.Duration) Ticker

type realTicker struct {
	t *time.Ticker
}

func (r realTicker) C() <-chan time.Time { return r.t.C }
func (r realTicker) Stop()               { r.t.Stop() }

// NewRealTicker wraps time.NewTicker.
func NewRealTicker(d time.Duration) Ticker {
	return realTicker{t: time.NewTicker(d)}
}

// RefreshHandle controls a running refresh loop. Stop is safe to call many
// times; the loop and its ticker are released exactly once.
type RefreshHandle struct {
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

func newRefreshHandle(cancel context.CancelFunc) *RefreshHandle {
	return &RefreshHandle{cancel: cancel, done: make(chan struct{})}
}

// Stop cancels the loop and waits for it to exit.
func (h *RefreshHandle) Stop() {
	if h == nil {
		return
	}
	h.once.Do(func() {
		h.cancel()
		<-h.done
	})
}

// Done is closed once the loop has exited.
func (h *RefreshHandle) Done() <-chan struct{} {
	return h.done
}
