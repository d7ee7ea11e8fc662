package trace

import (
	"context"
	"strconv"
	"time"
)

// Heartbeat emits a driver-scope point every interval until stopped. A build
// that hangs shows up in the trace as heartbeats after the last span end.
type Heartbeat struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// StartHeartbeat starts emitting to t. status, when non-nil, supplies the
// detail of each event; otherwise the detail is the beat number. The
// heartbeat also stops when ctx is done. It returns nil when t is disabled or
// interval is not positive; Stop on nil is a no-op.
func StartHeartbeat(ctx context.Context, t Tracer, interval time.Duration, status func() string) *Heartbeat {
	if t == nil || !t.Enabled() || interval <= 0 {
		return nil
	}
	ctx, cancel := context.WithCancel(ctx)
	h := &Heartbeat{cancel: cancel, done: make(chan struct{})}
	go h.run(ctx, t, interval, status)
	return h
}

func (h *Heartbeat) run(ctx context.Context, t Tracer, interval time.Duration, status func() string) {
	defer close(h.done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for beat := 1; ; beat++ {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			detail := "#" + strconv.Itoa(beat)
			if status != nil {
				detail = status()
			}
			t.Emit(&Event{
				Time:   now,
				Seq:    NextSeq(),
				Kind:   KindHeartbeat,
				Scope:  ScopeDriver,
				Name:   "heartbeat",
				Detail: detail,
			})
		}
	}
}

// Stop ends the heartbeat and waits for its goroutine. It is safe to call
// more than once.
func (h *Heartbeat) Stop() {
	if h == nil {
		return
	}
	h.cancel()
	<-h.done
}
