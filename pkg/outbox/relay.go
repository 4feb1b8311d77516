package outbox

import (
	"context"
	"log/slog"
	"time"
)

type RelayOptions struct {
	BatchSize int
	Interval  time.Duration
	Lease     time.Duration
}

type Relay struct {
	log       *slog.Logger
	store     Store
	dispatch  *Dispatcher
	relayID   string
	batchSize int
	interval  time.Duration
	lease     time.Duration
}

func NewRelay(log *slog.Logger, store Store, dispatch *Dispatcher, relayID string, opts RelayOptions) *Relay {
	r := &Relay{
		log:       log,
		store:     store,
		dispatch:  dispatch,
		relayID:   relayID,
		batchSize: opts.BatchSize,
		interval:  opts.Interval,
		lease:     opts.Lease,
	}
	if r.batchSize <= 0 {
		r.batchSize = 100
	}
	if r.interval <= 0 {
		r.interval = 500 * time.Millisecond
	}
	if r.lease <= 0 {
		r.lease = 30 * time.Second
	}
	return r
}

// Run polls until ctx is cancelled. Delivery is at least once: an event
// whose MarkSent fails is re-sent after its lease expires.
func (r *Relay) Run(ctx context.Context) error {
	t := time.NewTicker(r.interval)
	defer t.Stop()

	r.log.Info("relay started", "relay_id", r.relayID, "interval", r.interval.String())
	for {
		select {
		case <-ctx.Done():
			r.log.Info("relay stopping", "relay_id", r.relayID)
			return nil
		case <-t.C:
			if _, err := r.RunOnce(ctx); err != nil && ctx.Err() == nil {
				r.log.Error("relay batch error", "relay_id", r.relayID, "error", err)
			}
		}
	}
}

// RunOnce claims one batch and returns how many events were delivered.
// Once an event fails, later events of the same aggregate in the batch are
// released unsent so they cannot overtake it. An event parked as failed no
// longer holds its aggregate back.
func (r *Relay) RunOnce(ctx context.Context) (int, error) {
	events, err := r.store.LockBatch(ctx, r.relayID, r.batchSize, r.lease)
	if err != nil {
		return 0, err
	}
	if len(events) == 0 {
		return 0, nil
	}

	sent := make([]uint64, 0, len(events))
	blocked := map[string]struct{}{}
	var held []uint64
	for _, e := range events {
		key := e.AggregateType + ":" + e.AggregateID
		if _, ok := blocked[key]; ok {
			held = append(held, e.ID)
			continue
		}
		if err := r.dispatch.Dispatch(ctx, e); err != nil {
			blocked[key] = struct{}{}
			if mErr := r.store.MarkFailed(ctx, e.ID, err.Error()); mErr != nil {
				r.log.Error("relay mark failed error", "event_id", e.ID, "error", mErr)
			}
			continue
		}
		sent = append(sent, e.ID)
	}

	if len(held) > 0 {
		if err := r.store.Release(ctx, held); err != nil {
			r.log.Error("relay release error", "event_ids", held, "error", err)
		}
	}
	if len(sent) > 0 {
		if err := r.store.MarkSent(ctx, sent); err != nil {
			return 0, err
		}
	}
	return len(sent), nil
}
