package notify

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

type Dispatcher struct {
	pub   Publisher
	log   zerolog.Logger
	queue chan Event

	closeOnce sync.Once
	done      chan struct{}
}

func NewDispatcher(pub Publisher, log zerolog.Logger, size int) *Dispatcher {
	if size <= 0 {
		size = 100
	}
	d := &Dispatcher{
		pub:   pub,
		log:   log.With().Str("component", "notify").Logger(),
		queue: make(chan Event, size),
		done:  make(chan struct{}),
	}

	go d.worker()
	return d
}

func (d *Dispatcher) worker() {
	defer close(d.done)

	for ev := range d.queue {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := d.pub.Publish(ctx, ev); err != nil {
			d.log.Warn().Err(err).
				Str("type", ev.Type).
				Str("appointment_id", ev.AppointmentID.String()).
				Msg("notification publish failed")
		}
		cancel()
	}
}

// Notify enfileira sem bloquear; com a fila cheia o evento é descartado.
func (d *Dispatcher) Notify(ev Event) {
	if d == nil || ev.Type == "" {
		return
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}
	select {
	case d.queue <- ev:
	default:
		d.log.Warn().Str("type", ev.Type).Msg("notify queue full, dropping event")
	}
}

func (d *Dispatcher) Close() {
	if d == nil {
		return
	}
	d.closeOnce.Do(func() { close(d.queue) })
	<-d.done
}
