package intake

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urocare/clinic/internal/i18n"
	"github.com/urocare/clinic/internal/model"
	"github.com/urocare/clinic/internal/notice"
)

// ---------------------------------------------------------------------------
// fakes
// ---------------------------------------------------------------------------

type fakeInserter struct {
	mu       sync.Mutex
	insertFn func(ctx context.Context, table model.Table, sub model.NewSubmission) error
	calls    []model.NewSubmission
	tables   []model.Table
}

func (f *fakeInserter) Insert(ctx context.Context, table model.Table, sub model.NewSubmission) error {
	f.mu.Lock()
	f.calls = append(f.calls, sub)
	f.tables = append(f.tables, table)
	fn := f.insertFn
	f.mu.Unlock()
	if fn != nil {
		return fn(ctx, table, sub)
	}
	return nil
}

func (f *fakeInserter) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakePublisher struct {
	events []model.IntakeEvent
	err    error
}

func (p *fakePublisher) Publish(ctx context.Context, ev model.IntakeEvent) error {
	p.events = append(p.events, ev)
	return p.err
}

func validFields() Fields {
	return Fields{FullName: "Al", Mobile: "12345678", Address: "Riyadh", Message: ""}
}

// ---------------------------------------------------------------------------
// Submit
// ---------------------------------------------------------------------------

func TestForm_Submit_ValidSendsOneInsertWithNullMessage(t *testing.T) {
	store := &fakeInserter{}
	var notes notice.Buffer
	f := NewForm(model.TableBookings, store, &notes)
	f.SetAll(validFields())

	require.NoError(t, f.Submit(context.Background()))

	require.Equal(t, 1, store.count())
	assert.Equal(t, model.TableBookings, store.tables[0])
	sub := store.calls[0]
	assert.Equal(t, "Al", sub.FullName)
	assert.Equal(t, "12345678", sub.Mobile)
	assert.Nil(t, sub.Message)

	assert.Equal(t, Fields{}, f.Fields(), "form is cleared after a 2xx")
	got := notes.Drain()
	require.Len(t, got, 1)
	assert.Equal(t, notice.Success, got[0].Level)
	assert.Equal(t, "Message Sent!", got[0].Title)
}

func TestForm_Submit_ShortNameBlocksInsert(t *testing.T) {
	store := &fakeInserter{}
	var notes notice.Buffer
	f := NewForm(model.TableBookings, store, &notes)
	in := validFields()
	in.FullName = "A"
	f.SetAll(in)

	err := f.Submit(context.Background())

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "Name must be at least 2 characters", verr.Fields[FieldFullName])
	assert.Equal(t, FieldErrors{FieldFullName: "Name must be at least 2 characters"}, f.Errors())
	assert.Zero(t, store.count())
	assert.Equal(t, in, f.Fields(), "fields are kept")
	assert.Empty(t, notes.Drain())
}

func TestForm_Submit_LongNameBlocksInsert(t *testing.T) {
	store := &fakeInserter{}
	f := NewForm(model.TableBookings, store, &notice.Buffer{})
	in := validFields()
	in.FullName = strings.Repeat("a", 101)
	f.SetAll(in)

	err := f.Submit(context.Background())
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "String must contain at most 100 character(s)", f.Errors()[FieldFullName])
	assert.Zero(t, store.count())
}

func TestForm_Submit_StoreFailureKeepsFields(t *testing.T) {
	boom := errors.New("503")
	store := &fakeInserter{insertFn: func(ctx context.Context, table model.Table, sub model.NewSubmission) error {
		return boom
	}}
	var notes notice.Buffer
	f := NewForm(model.TableBookings, store, &notes, WithLanguage(i18n.AR))
	f.SetAll(validFields())

	err := f.Submit(context.Background())
	assert.ErrorIs(t, err, ErrSubmission)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, validFields(), f.Fields())
	assert.False(t, f.Submitting())

	got := notes.Drain()
	require.Len(t, got, 1)
	assert.Equal(t, notice.Error, got[0].Level)
	assert.Equal(t, "خطأ", got[0].Title)
}

func TestForm_Submit_RejectsWhileInFlight(t *testing.T) {
	release := make(chan struct{})
	store := &fakeInserter{insertFn: func(ctx context.Context, table model.Table, sub model.NewSubmission) error {
		<-release
		return nil
	}}
	f := NewForm(model.TableBookings, store, &notice.Buffer{})
	f.SetAll(validFields())

	done := make(chan error, 1)
	go func() { done <- f.Submit(context.Background()) }()

	require.Eventually(t, f.Submitting, time.Second, 5*time.Millisecond)
	assert.ErrorIs(t, f.Submit(context.Background()), ErrSubmitInFlight)

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, 1, store.count())
	assert.False(t, f.Submitting())
}

func TestForm_Submit_TrimsAndKeepsMessage(t *testing.T) {
	store := &fakeInserter{}
	f := NewForm(model.TableMessages, store, &notice.Buffer{})
	f.SetAll(Fields{FullName: "  Sara  ", Mobile: " 0501234567 ", Address: " Jeddah ", Message: " Need a follow-up "})

	require.NoError(t, f.Submit(context.Background()))
	sub := store.calls[0]
	assert.Equal(t, model.TableMessages, store.tables[0])
	assert.Equal(t, "Sara", sub.FullName)
	assert.Equal(t, "0501234567", sub.Mobile)
	require.NotNil(t, sub.Message)
	assert.Equal(t, "Need a follow-up", *sub.Message)
}

func TestForm_Submit_PublishesEventAfterSuccess(t *testing.T) {
	pub := &fakePublisher{err: errors.New("broker down")}
	f := NewForm(model.TableBookings, &fakeInserter{}, &notice.Buffer{}, WithPublisher(pub))
	f.SetAll(validFields())

	require.NoError(t, f.Submit(context.Background()), "publish failures are not surfaced")
	require.Len(t, pub.events, 1)
	assert.Equal(t, model.TableBookings, pub.events[0].Table)
	assert.NotEmpty(t, pub.events[0].ID)
}

func TestForm_Submit_NoEventOnFailure(t *testing.T) {
	pub := &fakePublisher{}
	store := &fakeInserter{insertFn: func(ctx context.Context, table model.Table, sub model.NewSubmission) error {
		return errors.New("down")
	}}
	f := NewForm(model.TableBookings, store, &notice.Buffer{}, WithPublisher(pub))
	f.SetAll(validFields())

	assert.Error(t, f.Submit(context.Background()))
	assert.Empty(t, pub.events)
}

// ---------------------------------------------------------------------------
// Set
// ---------------------------------------------------------------------------

func TestForm_Set_ClearsFieldError(t *testing.T) {
	f := NewForm(model.TableBookings, &fakeInserter{}, &notice.Buffer{})
	_ = f.Submit(context.Background())
	require.Contains(t, f.Errors(), FieldFullName)
	require.Contains(t, f.Errors(), FieldMobile)

	require.NoError(t, f.Set(FieldFullName, "Omar"))
	assert.NotContains(t, f.Errors(), FieldFullName)
	assert.Contains(t, f.Errors(), FieldMobile)
	assert.Equal(t, "Omar", f.Fields().FullName)

	assert.ErrorIs(t, f.Set("email", "x"), ErrUnknownField)
}
