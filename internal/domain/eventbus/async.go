package eventbus

import (
	"sync"

	evbus "github.com/asaskevich/EventBus"
)

// AsyncBus decouples publishers from slow subscribers (UI surfaces writing
// to a terminal or disk) through a bounded worker pool. A full queue drops
// the event rather than blocking the session core.
type AsyncBus struct {
	bus      evbus.Bus
	workChan chan asyncEvent
	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

type asyncEvent struct {
	topic string
	args  []interface{}
}

// NewAsync 创建异步事件总线
func NewAsync(workers int) *AsyncBus {
	if workers <= 0 {
		workers = 4
	}

	ab := &AsyncBus{
		bus:      evbus.New(),
		workChan: make(chan asyncEvent, 256),
		stopChan: make(chan struct{}),
	}

	for i := 0; i < workers; i++ {
		ab.wg.Add(1)
		go ab.worker()
	}
	return ab
}

func (ab *AsyncBus) worker() {
	defer ab.wg.Done()

	for {
		select {
		case <-ab.stopChan:
			return
		case event := <-ab.workChan:
			func() {
				defer func() {
					// 订阅者panic不应拖垮worker
					_ = recover()
				}()
				ab.bus.Publish(event.topic, event.args...)
			}()
		}
	}
}

// Publish enqueues an event; drops it when the queue is full.
func (ab *AsyncBus) Publish(topic string, args ...interface{}) {
	select {
	case ab.workChan <- asyncEvent{topic: topic, args: args}:
	default:
	}
}

func (ab *AsyncBus) Subscribe(topic string, fn interface{}) error {
	return ab.bus.Subscribe(topic, fn)
}

func (ab *AsyncBus) Unsubscribe(topic string, fn interface{}) error {
	return ab.bus.Unsubscribe(topic, fn)
}

// Stop drains the workers and shuts the bus down.
func (ab *AsyncBus) Stop() {
	ab.stopOnce.Do(func() {
		close(ab.stopChan)
	})
	ab.wg.Wait()
}
