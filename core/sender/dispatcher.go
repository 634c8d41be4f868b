// Package sender provides an asynchronous dispatch queue for outbound
// messages so webhook handlers never block on the gateway HTTP call.
package sender

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/m3rciful/iptvbot/core/logger"
)

// SendFunc delivers one outgoing message to the gateway.
type SendFunc func(ctx context.Context, phone, text string) error

// Outgoing is a single queued message.
type Outgoing struct {
	Phone string
	Text  string
}

// Options tunes the dispatcher. Zero values select sane defaults.
type Options struct {
	QueueSize  int
	Workers    int
	MaxRetries int
	// RetryBackoff is the pause before each retry attempt.
	RetryBackoff time.Duration
	// MaxDuration bounds one delivery attempt including retries.
	MaxDuration time.Duration
}

func (o Options) withDefaults() Options {
	if o.QueueSize <= 0 {
		o.QueueSize = 256
	}
	if o.Workers <= 0 {
		o.Workers = 2
	}
	if o.MaxRetries < 0 {
		o.MaxRetries = 0
	}
	if o.RetryBackoff <= 0 {
		o.RetryBackoff = 2 * time.Second
	}
	if o.MaxDuration <= 0 {
		o.MaxDuration = 45 * time.Second
	}
	return o
}

// ErrQueueFull is returned by Enqueue when the queue has no free slot.
var ErrQueueFull = errors.New("sender: queue full")

// ErrClosed is returned by Enqueue after Close.
var ErrClosed = errors.New("sender: dispatcher closed")

// Dispatcher fans queued messages out to a fixed worker pool.
type Dispatcher struct {
	opts   Options
	send   SendFunc
	queue  chan Outgoing
	wg     sync.WaitGroup
	closed atomic.Bool

	sent   atomic.Int64
	failed atomic.Int64
}

// New creates the dispatcher and starts its workers.
func New(ctx context.Context, send SendFunc, opts Options) *Dispatcher {
	d := &Dispatcher{
		opts:  opts.withDefaults(),
		send:  send,
		queue: make(chan Outgoing, opts.withDefaults().QueueSize),
	}
	for i := 0; i < d.opts.Workers; i++ {
		d.wg.Add(1)
		go d.worker(ctx, i)
	}
	return d
}

// Enqueue queues a message for delivery without blocking.
func (d *Dispatcher) Enqueue(msg Outgoing) error {
	if d.closed.Load() {
		return ErrClosed
	}
	select {
	case d.queue <- msg:
		return nil
	default:
		return ErrQueueFull
	}
}

// Close stops accepting new messages and waits for queued ones to drain.
func (d *Dispatcher) Close() {
	if d.closed.Swap(true) {
		return
	}
	close(d.queue)
	d.wg.Wait()
}

// SentCount reports successfully delivered messages.
func (d *Dispatcher) SentCount() int64 { return d.sent.Load() }

// ErrorCount reports messages dropped after exhausting retries.
func (d *Dispatcher) ErrorCount() int64 { return d.failed.Load() }

func (d *Dispatcher) worker(ctx context.Context, id int) {
	defer d.wg.Done()
	for msg := range d.queue {
		d.deliver(ctx, id, msg)
	}
}

func (d *Dispatcher) deliver(ctx context.Context, worker int, msg Outgoing) {
	attemptCtx, cancel := context.WithTimeout(ctx, d.opts.MaxDuration)
	defer cancel()

	start := time.Now()
	var err error
	for attempt := 0; attempt <= d.opts.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-attemptCtx.Done():
				err = attemptCtx.Err()
			case <-time.After(d.opts.RetryBackoff):
			}
			if attemptCtx.Err() != nil {
				break
			}
		}
		if err = d.send(attemptCtx, msg.Phone, msg.Text); err == nil {
			d.sent.Add(1)
			logger.Debug(attemptCtx, "sender", "delivered",
				slog.String("phone", msg.Phone),
				slog.Int("attempt", attempt+1),
				slog.Float64("duration_ms", logger.RoundMS(time.Since(start))),
			)
			return
		}
		if attemptCtx.Err() != nil {
			break
		}
	}

	d.failed.Add(1)
	logger.Error(attemptCtx, "sender", "delivery_failed",
		slog.String("phone", msg.Phone),
		slog.Int("worker", worker),
		slog.Int("attempts", d.opts.MaxRetries+1),
		logger.Err(err),
	)
}
