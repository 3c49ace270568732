package worker

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/loan-service/internal/events"
	"github.com/spec-kit/loan-service/internal/service"
)

var (
	// ErrQueueFull is returned by Publish when the backlog is at capacity.
	ErrQueueFull = errors.New("event queue full")
	// ErrStopped is returned by Publish once Stop has been called.
	ErrStopped = errors.New("event queue stopped")
)

// AsyncDispatcher hands published events to background workers so request
// handlers never wait on subscribers. Subscriptions go to the wrapped dispatcher;
// events of a type nobody subscribed to are discarded without queueing.
type AsyncDispatcher struct {
	inner   events.Dispatcher
	queue   chan events.Event
	workers int
	logger  *zap.Logger

	mu         sync.RWMutex
	stopped    bool
	subscribed map[events.EventType]struct{}
	startOnce sync.Once
	wg        sync.WaitGroup
}

// NewAsyncDispatcher wraps inner with a queue of queueSize events drained by workers goroutines.
func NewAsyncDispatcher(inner events.Dispatcher, queueSize, workers int, logger *zap.Logger) *AsyncDispatcher {
	if queueSize <= 0 {
		queueSize = 64
	}
	if workers <= 0 {
		workers = 1
	}
	return &AsyncDispatcher{
		inner:      inner,
		queue:      make(chan events.Event, queueSize),
		workers:    workers,
		logger:     logger,
		subscribed: make(map[events.EventType]struct{}),
	}
}

// Publish enqueues the event without blocking.
func (d *AsyncDispatcher) Publish(_ context.Context, event events.Event) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.stopped {
		return ErrStopped
	}
	if _, ok := d.subscribed[event.Type]; !ok {
		return nil
	}
	select {
	case d.queue <- event:
		return nil
	default:
		d.logger.Warn("dropping event; queue full",
			zap.String("event_type", string(event.Type)),
			zap.Int64("loan_application_id", event.LoanApplicationID),
		)
		return ErrQueueFull
	}
}

// Subscribe registers a handler on the wrapped dispatcher.
func (d *AsyncDispatcher) Subscribe(eventType events.EventType, handler events.EventHandler) {
	d.mu.Lock()
	d.subscribed[eventType] = struct{}{}
	d.mu.Unlock()
	d.inner.Subscribe(eventType, handler)
}

// Start launches the workers. Calling it more than once has no effect.
func (d *AsyncDispatcher) Start() {
	d.startOnce.Do(func() {
		for i := 0; i < d.workers; i++ {
			d.wg.Add(1)
			go d.run()
		}
	})
}

// Stop closes the queue and waits for queued events to drain or ctx to end.
func (d *AsyncDispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	if !d.stopped {
		d.stopped = true
		close(d.queue)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *AsyncDispatcher) run() {
	defer d.wg.Done()
	for event := range d.queue {
		if err := d.inner.Publish(context.Background(), event); err != nil {
			d.logger.Warn("event handler failed",
				zap.String("event_type", string(event.Type)),
				zap.Int64("loan_application_id", event.LoanApplicationID),
				zap.Error(err),
			)
		}
	}
}

// StartNotificationWorker registers notification handlers and starts the
// workers that run them.
func StartNotificationWorker(dispatcher *AsyncDispatcher, notificationService *service.NotificationService) {
	if notificationService != nil {
		notificationService.RegisterHandlers()
	}
	if dispatcher != nil {
		dispatcher.Start()
	}
}
