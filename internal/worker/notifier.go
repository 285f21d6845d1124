package worker

import (
	"context"
	"errors"
	"time"

	"github.com/urocare/clinic/internal/dispatcher"
	"github.com/urocare/clinic/internal/i18n"
	"github.com/urocare/clinic/internal/kafka"
	"github.com/urocare/clinic/internal/logger"
	"github.com/urocare/clinic/internal/metrics"
	"go.uber.org/zap"
)

// Source yields intake event messages and acknowledges them.
type Source interface {
	Fetch(ctx context.Context) (kafka.Message, error)
	Commit(ctx context.Context, m kafka.Message) error
}

// Sender delivers one alert.
type Sender interface {
	Send(ctx context.Context, a dispatcher.Alert) error
}

// Deduper remembers which events were already alerted. First reports
// whether id was seen for the first time.
type Deduper interface {
	First(ctx context.Context, id string) (bool, error)
}

// Notifier:
// - fetches intake events from Kafka,
// - turns each into a staff alert,
// - delivers it through the dispatcher and commits.
type Notifier struct {
	Source Source
	Send   Sender
	Dedup  Deduper // optional
	Lang   i18n.Lang

	Workers    int
	FetchPause time.Duration
}

func NewNotifier(src Source, send Sender, dedup Deduper, lang i18n.Lang) *Notifier {
	return &Notifier{
		Source:     src,
		Send:       send,
		Dedup:      dedup,
		Lang:       lang,
		Workers:    4,
		FetchPause: 200 * time.Millisecond,
	}
}

// Run starts the worker and blocks until ctx is cancelled.
func (w *Notifier) Run(ctx context.Context) error {
	if w.Source == nil || w.Send == nil {
		return errors.New("notifier: missing source or sender")
	}
	if w.Workers <= 0 {
		w.Workers = 4
	}
	if w.FetchPause <= 0 {
		w.FetchPause = 200 * time.Millisecond
	}

	msgCh := make(chan kafka.Message, w.Workers*2)

	go func() {
		defer close(msgCh)
		for {
			m, err := w.Source.Fetch(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				logger.Log.Warn("kafka fetch failed", zap.Error(err))
				select {
				case <-ctx.Done():
					return
				case <-time.After(w.FetchPause):
				}
				continue
			}
			select {
			case msgCh <- m:
			case <-ctx.Done():
				return
			}
		}
	}()

	done := make(chan struct{}, w.Workers)
	for i := 0; i < w.Workers; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			for m := range msgCh {
				w.processOne(ctx, m)
			}
		}()
	}

	for i := 0; i < w.Workers; i++ {
		<-done
	}
	return nil
}

func (w *Notifier) processOne(ctx context.Context, m kafka.Message) {
	ev, err := kafka.DecodeEvent(m)
	if err != nil {
		// poison message: commit and skip
		logger.Log.Warn("bad intake event", zap.Error(err), zap.Int64("offset", m.Offset))
		metrics.AlertsTotal.WithLabelValues("unknown", "invalid").Inc()
		w.commit(ctx, m)
		return
	}

	if w.Dedup != nil {
		first, err := w.Dedup.First(ctx, ev.ID)
		if err != nil {
			logger.Log.Warn("alert dedup check failed", zap.String("event_id", ev.ID), zap.Error(err))
		} else if !first {
			metrics.AlertsTotal.WithLabelValues(ev.Table.String(), "duplicate").Inc()
			w.commit(ctx, m)
			return
		}
	}

	a := dispatcher.FromEvent(ev, w.Lang)
	if err := w.Send.Send(ctx, a); err != nil {
		metrics.AlertsTotal.WithLabelValues(ev.Table.String(), "failed").Inc()
		logger.Log.Error("staff alert not delivered",
			zap.String("event_id", ev.ID),
			zap.String("table", ev.Table.String()),
			zap.Error(err),
		)
	} else {
		metrics.AlertsTotal.WithLabelValues(ev.Table.String(), "sent").Inc()
		logger.Log.Info("staff alert sent", zap.String("event_id", ev.ID), zap.String("kind", a.Kind))
	}

	// at-most-once per event: a failed alert is logged, not redelivered
	w.commit(ctx, m)
}

func (w *Notifier) commit(ctx context.Context, m kafka.Message) {
	if err := w.Source.Commit(ctx, m); err != nil {
		logger.Log.Warn("kafka commit failed", zap.Error(err))
	}
}
