// Package notify forwards core change events to an external webhook.
package notify

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/herdsync/internal/events"
	"github.com/mamadbah2/herdsync/pkg/clients/webhook"
)

const (
	defaultQueueSize = 64
	sendTimeout      = 15 * time.Second
)

// Forwarder posts bus events to a webhook from a background goroutine. Publishing
// never blocks: when the queue is full the event is dropped with a warning.
type Forwarder struct {
	client webhook.Client
	logger *zap.Logger
	queue  chan events.Event

	startOnce sync.Once
	stopOnce  sync.Once
	done      chan struct{}
	wg        sync.WaitGroup
}

// NewForwarder constructs a forwarder with a bounded queue.
func NewForwarder(client webhook.Client, queueSize int, logger *zap.Logger) *Forwarder {
	if logger == nil {
		logger = zap.NewNop()
	}
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	return &Forwarder{
		client: client,
		logger: logger,
		queue:  make(chan events.Event, queueSize),
		done:   make(chan struct{}),
	}
}

// Subscribe registers the forwarder on every core topic.
func (f *Forwarder) Subscribe(bus *events.Bus) func() {
	return bus.Subscribe(f.Enqueue, events.DataReset, events.RecordUpdated)
}

// Enqueue hands the event to the delivery goroutine.
func (f *Forwarder) Enqueue(evt events.Event) {
	select {
	case <-f.done:
		return
	default:
	}

	select {
	case f.queue <- evt:
	default:
		f.logger.Warn("webhook queue full, dropping event", zap.String("topic", string(evt.Topic)), zap.String("day", evt.Day))
	}
}

// Start launches the delivery goroutine.
func (f *Forwarder) Start() {
	f.startOnce.Do(func() {
		f.wg.Add(1)
		go f.run()
	})
}

// Stop delivers what is already queued and waits for the goroutine to exit.
func (f *Forwarder) Stop() {
	f.stopOnce.Do(func() {
		close(f.done)
	})
	f.wg.Wait()
}

func (f *Forwarder) run() {
	defer f.wg.Done()
	for {
		select {
		case evt := <-f.queue:
			f.send(evt)
		case <-f.done:
			for {
				select {
				case evt := <-f.queue:
					f.send(evt)
				default:
					return
				}
			}
		}
	}
}

func (f *Forwarder) send(evt events.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	if err := f.client.Post(ctx, webhook.Payload{Kind: string(evt.Topic), Data: evt}); err != nil {
		f.logger.Error("failed to forward event", zap.String("topic", string(evt.Topic)), zap.Error(err))
		return
	}
	f.logger.Debug("event forwarded", zap.String("topic", string(evt.Topic)))
}
