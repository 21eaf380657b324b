package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Sender delivers a text message to one recipient on one channel.
type Sender interface {
	Name() string
	Send(ctx context.Context, recipient, text string) error
}

// Channel pairs a sender with the recipients it should reach.
type Channel struct {
	Sender     Sender
	Recipients []string
}

// Dispatcher turns ledger events into chat messages. Delivery problems are
// logged and never reach the caller.
type Dispatcher struct {
	channels []Channel
	timeout  time.Duration
	log      *zap.Logger
}

func NewDispatcher(log *zap.Logger, timeout time.Duration, channels ...Channel) *Dispatcher {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Dispatcher{channels: channels, timeout: timeout, log: log}
}

func (d *Dispatcher) Publish(ctx context.Context, e Event) {
	text := FormatEvent(e)
	if text == "" {
		return
	}
	d.Broadcast(ctx, text)
}

// Broadcast sends text to every recipient of every channel and returns how
// many deliveries succeeded.
func (d *Dispatcher) Broadcast(ctx context.Context, text string) int {
	// the mutation has already committed, so a client hanging up must not
	// cut the notifications short
	ctx = context.WithoutCancel(ctx)

	delivered := 0
	for _, ch := range d.channels {
		for _, recipient := range ch.Recipients {
			if err := d.deliver(ctx, ch.Sender, recipient, text); err != nil {
				d.log.Warn("notification delivery failed",
					zap.String("channel", ch.Sender.Name()),
					zap.String("recipient", recipient),
					zap.Error(err),
				)
				continue
			}
			delivered++
		}
	}
	return delivered
}

func (d *Dispatcher) deliver(ctx context.Context, s Sender, recipient, text string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("sender panicked: %v", r)
		}
	}()
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	return s.Send(ctx, recipient, text)
}

// callWithContext runs call and returns early once ctx ends. A call that
// outlives ctx finishes in the background, bounded by its client timeout.
func callWithContext(ctx context.Context, call func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	done := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- fmt.Errorf("sender panicked: %v", r)
			}
		}()
		done <- call()
	}()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
