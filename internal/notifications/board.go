package notifications

import (
	"context"
	"sync"
	"time"

	"github.com/geocoder89/storefront/internal/pubsub"
)

// State is what a toast view renders.
type State struct {
	Visible bool
	Notice  Notice
}

// Board holds the currently shown notice and hides it once its duration has
// passed. Subscribers are called on every change, outside the lock.
type Board struct {
	mu    sync.Mutex
	state State
	timer *time.Timer
	seq   uint64
	subs  pubsub.List[State]
}

func NewBoard() *Board {
	return &Board{}
}

// Notify shows n; it satisfies Notifier.
func (b *Board) Notify(_ context.Context, n Notice) error {
	b.Show(n.Message, n.Kind, n.Duration)
	return nil
}

func (b *Board) Show(message string, kind Kind, duration time.Duration) {
	if kind == "" {
		kind = KindSuccess
	}
	if duration <= 0 {
		duration = DefaultDuration
	}

	b.mu.Lock()
	if b.timer != nil {
		b.timer.Stop()
	}
	b.seq++
	seq := b.seq
	b.state = State{Visible: true, Notice: Notice{Message: message, Kind: kind, Duration: duration}}
	b.timer = time.AfterFunc(duration, func() { b.expire(seq) })
	st := b.state
	b.mu.Unlock()

	b.subs.Publish(st)
}

func (b *Board) Hide() {
	b.mu.Lock()
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	b.state.Visible = false
	st := b.state
	b.mu.Unlock()

	b.subs.Publish(st)
}

func (b *Board) Current() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Subscribe registers fn for every change, called in subscription order.
func (b *Board) Subscribe(fn func(State)) (unsubscribe func()) {
	return b.subs.Subscribe(fn)
}

// expire hides the notice only if no newer one replaced it meanwhile.
func (b *Board) expire(seq uint64) {
	b.mu.Lock()
	if seq != b.seq || !b.state.Visible {
		b.mu.Unlock()
		return
	}
	b.state.Visible = false
	b.timer = nil
	st := b.state
	b.mu.Unlock()

	b.subs.Publish(st)
}
