package eventbus

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestAsyncBusDeliversEvents(t *testing.T) {
	ab := NewAsync(2)
	defer ab.Stop()

	var delivered atomic.Int32
	if err := ab.Subscribe(TopicToast, func(msg string) {
		if msg == "登录成功" {
			delivered.Add(1)
		}
	}); err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}

	for i := 0; i < 5; i++ {
		ab.Publish(TopicToast, "登录成功")
	}

	deadline := time.After(2 * time.Second)
	for delivered.Load() < 5 {
		select {
		case <-deadline:
			t.Fatalf("expected 5 deliveries, got %d", delivered.Load())
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestAsyncBusSurvivesPanickingSubscriber(t *testing.T) {
	ab := NewAsync(1)
	defer ab.Stop()

	var delivered atomic.Int32
	if err := ab.Subscribe(TopicSessionExpired, func() {
		panic("subscriber bug")
	}); err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}
	if err := ab.Subscribe(TopicToast, func(msg string) {
		delivered.Add(1)
	}); err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}

	ab.Publish(TopicSessionExpired)
	ab.Publish(TopicToast, "still alive")

	deadline := time.After(2 * time.Second)
	for delivered.Load() < 1 {
		select {
		case <-deadline:
			t.Fatal("worker did not survive a panicking subscriber")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestAsyncBusStopIsIdempotent(t *testing.T) {
	ab := NewAsync(1)
	ab.Stop()
	ab.Stop()
}

func TestSyncBusPublishOrder(t *testing.T) {
	bus := New()

	var got []string
	if err := bus.Subscribe(TopicToast, func(msg string) {
		got = append(got, msg)
	}); err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}

	bus.Publish(TopicToast, "第一条")
	bus.Publish(TopicToast, "第二条")

	if len(got) != 2 || got[0] != "第一条" || got[1] != "第二条" {
		t.Fatalf("unexpected delivery order: %v", got)
	}
}
