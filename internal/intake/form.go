// Package intake implements the public booking/contact form: local
// validation followed by a single create request to the record store.
package intake

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/urocare/clinic/internal/i18n"
	"github.com/urocare/clinic/internal/logger"
	"github.com/urocare/clinic/internal/metrics"
	"github.com/urocare/clinic/internal/model"
	"github.com/urocare/clinic/internal/notice"
	"github.com/urocare/clinic/internal/util"
	"go.uber.org/zap"
)

var (
	ErrSubmitInFlight = errors.New("submission already in flight")
	ErrSubmission     = errors.New("submission failed")
	ErrUnknownField   = errors.New("unknown form field")
)

// SubmissionError wraps a record store failure. The form keeps its fields.
type SubmissionError struct {
	Err error
}

func (e *SubmissionError) Error() string { return fmt.Sprintf("submission failed: %v", e.Err) }

func (e *SubmissionError) Unwrap() error { return e.Err }

func (e *SubmissionError) Is(target error) bool { return target == ErrSubmission }

// Inserter is the part of the record store the form needs.
type Inserter interface {
	Insert(ctx context.Context, table model.Table, sub model.NewSubmission) error
}

// EventPublisher announces stored submissions to downstream consumers.
type EventPublisher interface {
	Publish(ctx context.Context, ev model.IntakeEvent) error
}

type Option func(*Form)

func WithLanguage(lang i18n.Lang) Option {
	return func(f *Form) { f.lang = lang }
}

func WithPublisher(p EventPublisher) Option {
	return func(f *Form) { f.events = p }
}

// Form holds the state of one visitor's form: current field values,
// per-field errors and the in-flight flag.
type Form struct {
	table  model.Table
	store  Inserter
	notify notice.Notifier
	events EventPublisher
	lang   i18n.Lang

	mu         sync.Mutex
	fields     Fields
	errs       FieldErrors
	submitting bool
}

func NewForm(table model.Table, store Inserter, notifier notice.Notifier, opts ...Option) *Form {
	f := &Form{
		table:  table,
		store:  store,
		notify: notifier,
		lang:   i18n.EN,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Set updates one field and clears any error shown for it.
func (f *Form) Set(field, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch field {
	case FieldFullName:
		f.fields.FullName = value
	case FieldMobile:
		f.fields.Mobile = value
	case FieldAddress:
		f.fields.Address = value
	case FieldMessage:
		f.fields.Message = value
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	delete(f.errs, field)
	return nil
}

// SetAll replaces every field value, as when a whole form body arrives at once.
func (f *Form) SetAll(v Fields) {
	f.mu.Lock()
	f.fields = v
	f.errs = nil
	f.mu.Unlock()
}

func (f *Form) Fields() Fields {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fields
}

func (f *Form) Errors() FieldErrors {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(FieldErrors, len(f.errs))
	for k, v := range f.errs {
		out[k] = v
	}
	return out
}

func (f *Form) Submitting() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.submitting
}

// Submit validates and, when valid, issues exactly one insert. It returns
// *ValidationError, ErrSubmitInFlight or *SubmissionError on failure.
func (f *Form) Submit(ctx context.Context) error {
	f.mu.Lock()
	if f.submitting {
		f.mu.Unlock()
		metrics.IntakeTotal.WithLabelValues(f.table.String(), "duplicate").Inc()
		return ErrSubmitInFlight
	}

	f.errs = nil
	if errs := Validate(f.fields); errs != nil {
		f.errs = errs
		f.mu.Unlock()
		metrics.IntakeTotal.WithLabelValues(f.table.String(), "invalid").Inc()
		return &ValidationError{Fields: errs}
	}

	sub := toSubmission(f.fields)
	f.submitting = true
	f.mu.Unlock()

	err := f.store.Insert(ctx, f.table, sub)

	f.mu.Lock()
	f.submitting = false
	if err == nil {
		f.fields = Fields{}
	}
	f.mu.Unlock()

	if err != nil {
		metrics.IntakeTotal.WithLabelValues(f.table.String(), "failed").Inc()
		logger.Log.Error("intake insert failed", zap.String("table", f.table.String()), zap.Error(err))
		f.notify.Notify(notice.Notice{
			Level:       notice.Error,
			Title:       i18n.T(f.lang, i18n.SubmitErrorTitle),
			Description: i18n.T(f.lang, i18n.SubmitErrorBody),
		})
		return &SubmissionError{Err: err}
	}

	metrics.IntakeTotal.WithLabelValues(f.table.String(), "accepted").Inc()
	f.notify.Notify(notice.Notice{
		Level:       notice.Success,
		Title:       i18n.T(f.lang, i18n.SubmitSuccessTitle),
		Description: i18n.T(f.lang, i18n.SubmitSuccessBody),
	})
	f.publish(ctx, sub)
	return nil
}

func (f *Form) publish(ctx context.Context, sub model.NewSubmission) {
	if f.events == nil {
		return
	}
	ev := model.IntakeEvent{ID: util.New(), Table: f.table, Submission: sub, At: time.Now().UTC()}
	if err := f.events.Publish(ctx, ev); err != nil {
		logger.Log.Warn("intake event publish failed", zap.String("event_id", ev.ID), zap.Error(err))
	}
}

// toSubmission trims the input and sends an empty message as null.
func toSubmission(v Fields) model.NewSubmission {
	v = v.Trimmed()
	sub := model.NewSubmission{
		FullName: v.FullName,
		Mobile:   v.Mobile,
		Address:  v.Address,
	}
	if v.Message != "" {
		msg := v.Message
		sub.Message = &msg
	}
	return sub
}
