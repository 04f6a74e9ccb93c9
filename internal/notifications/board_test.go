package notifications

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestBoardShowAndAutoHide(t *testing.T) {
	b := NewBoard()

	var mu sync.Mutex
	var seen []State
	unsub := b.Subscribe(func(s State) {
		mu.Lock()
		seen = append(seen, s)
		mu.Unlock()
	})
	defer unsub()

	b.Show("Order placed successfully!", KindSuccess, 20*time.Millisecond)

	if st := b.Current(); !st.Visible || st.Notice.Message != "Order placed successfully!" {
		t.Fatalf("expected visible notice, got %+v", st)
	}

	deadline := time.Now().Add(time.Second)
	for b.Current().Visible {
		if time.Now().After(deadline) {
			t.Fatalf("notice was not hidden after its duration")
		}
		time.Sleep(5 * time.Millisecond)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(seen) != 2 || !seen[0].Visible || seen[1].Visible {
		t.Fatalf("expected show then hide events, got %+v", seen)
	}
}

func TestBoardNewerNoticeSurvivesOlderTimer(t *testing.T) {
	b := NewBoard()

	b.Show("first", KindInfo, 10*time.Millisecond)
	b.Show("second", KindError, time.Hour)

	time.Sleep(40 * time.Millisecond)

	st := b.Current()
	if !st.Visible || st.Notice.Message != "second" {
		t.Fatalf("second notice should still be visible, got %+v", st)
	}
	b.Hide()
	if b.Current().Visible {
		t.Fatalf("Hide should clear visibility")
	}
}

func TestBoardDefaultsAndNotifier(t *testing.T) {
	b := NewBoard()

	var n Notifier = b
	if err := n.Notify(context.Background(), Notice{Message: "saved"}); err != nil {
		t.Fatalf("Notify error: %v", err)
	}

	st := b.Current()
	if st.Notice.Kind != KindSuccess || st.Notice.Duration != DefaultDuration {
		t.Fatalf("expected defaults applied, got %+v", st.Notice)
	}
	b.Hide()
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	b := NewBoard()
	calls := 0
	unsub := b.Subscribe(func(State) { calls++ })
	unsub()

	b.Show("x", KindInfo, time.Hour)
	b.Hide()

	if calls != 0 {
		t.Fatalf("expected no calls after unsubscribe, got %d", calls)
	}
}

type failingNotifier struct{ err error }

func (f failingNotifier) Notify(context.Context, Notice) error { return f.err }

func TestMultiDeliversToAll(t *testing.T) {
	b := NewBoard()
	boom := errors.New("boom")

	err := Multi(b, nil, failingNotifier{err: boom}).Notify(context.Background(), Notice{Message: "hi", Duration: time.Hour})
	if !errors.Is(err, boom) {
		t.Fatalf("expected joined error, got %v", err)
	}
	if st := b.Current(); !st.Visible || st.Notice.Message != "hi" {
		t.Fatalf("board did not receive notice: %+v", st)
	}
	b.Hide()
}

func TestBoardSubscribersRunInSubscriptionOrder(t *testing.T) {
	b := NewBoard()
	var order []int
	for i := 0; i < 10; i++ {
		unsub := b.Subscribe(func(State) { order = append(order, i) })
		defer unsub()
	}

	b.Show("x", KindInfo, time.Hour)
	b.Hide()

	if len(order) != 20 {
		t.Fatalf("got %d calls, want 20", len(order))
	}
	for i, v := range order {
		if v != i%10 {
			t.Fatalf("subscribers ran out of order: %v", order)
		}
	}
}
