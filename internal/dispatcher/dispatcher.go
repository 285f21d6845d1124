// Package dispatcher delivers staff alerts round-robin over the healthy
// webhook providers, retrying on another provider when one fails.
package dispatcher

import (
	"context"
	"errors"
	"sync/atomic"
)

var (
	ErrNoHealthy = errors.New("no healthy providers")
	ErrNoAcquire = errors.New("provider not acquired")
)

type Dispatcher struct {
	providers         []Provider
	roundRobinCounter atomic.Uint64
	maxAttempts       int
}

func NewDispatcher(provs []Provider, maxAttempts int) *Dispatcher {
	if maxAttempts < 1 {
		maxAttempts = 2
	}

	return &Dispatcher{providers: provs, maxAttempts: maxAttempts}
}

func (d *Dispatcher) selectProvider() (Provider, error) {
	healthy := make([]Provider, 0, len(d.providers))
	for _, p := range d.providers {
		if p.Ready() {
			healthy = append(healthy, p)
		}
	}

	if len(healthy) == 0 {
		return nil, ErrNoHealthy
	}

	x := d.roundRobinCounter.Add(1)
	idx := int((x - 1) % uint64(len(healthy)))

	return healthy[idx], nil
}

func (d *Dispatcher) tryOnce(ctx context.Context, a Alert) error {
	p, err := d.selectProvider()
	if err != nil {
		return err
	}

	if !p.Acquire() {
		return ErrNoAcquire
	}

	return p.Send(ctx, a)
}

// Send delivers a to one provider, trying up to maxAttempts times.
func (d *Dispatcher) Send(ctx context.Context, a Alert) error {
	var last error
	for i := 0; i < d.maxAttempts; i++ {
		err := d.tryOnce(ctx, a)
		if err == nil {
			return nil
		}
		last = err
		if errors.Is(err, ErrNoHealthy) || ctx.Err() != nil {
			break
		}
	}

	return last
}
