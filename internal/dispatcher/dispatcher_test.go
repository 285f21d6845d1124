package dispatcher

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urocare/clinic/internal/i18n"
	"github.com/urocare/clinic/internal/model"
)

type stubProvider struct {
	name  string
	ready bool
	err   error
	sent  []Alert
}

func (p *stubProvider) Name() string  { return p.name }
func (p *stubProvider) Ready() bool   { return p.ready }
func (p *stubProvider) Acquire() bool { return p.ready }
func (p *stubProvider) Send(ctx context.Context, a Alert) error {
	p.sent = append(p.sent, a)
	return p.err
}

func TestDispatcher_FailsOverToNextProvider(t *testing.T) {
	bad := &stubProvider{name: "bad", ready: true, err: errors.New("down")}
	good := &stubProvider{name: "good", ready: true}
	d := NewDispatcher([]Provider{bad, good}, 2)

	require.NoError(t, d.Send(context.Background(), Alert{EventID: "e1"}))
	assert.Len(t, bad.sent, 1)
	assert.Len(t, good.sent, 1)
}

func TestDispatcher_SkipsUnhealthy(t *testing.T) {
	off := &stubProvider{name: "off"}
	on := &stubProvider{name: "on", ready: true}
	d := NewDispatcher([]Provider{off, on}, 1)

	for i := 0; i < 3; i++ {
		require.NoError(t, d.Send(context.Background(), Alert{}))
	}
	assert.Empty(t, off.sent)
	assert.Len(t, on.sent, 3)
}

func TestDispatcher_NoHealthy(t *testing.T) {
	d := NewDispatcher([]Provider{&stubProvider{}}, 3)
	assert.ErrorIs(t, d.Send(context.Background(), Alert{}), ErrNoHealthy)
}

func TestWebhookProvider_PostsJSONAndTripsBreaker(t *testing.T) {
	var got Alert
	var status atomic.Int32
	status.Store(http.StatusOK)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer hook-secret", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(int(status.Load()))
	}))
	defer srv.Close()

	p := NewWebhookProvider("staff", srv.URL, "hook-secret", 1000, 1, 60000)
	require.NoError(t, p.Send(context.Background(), Alert{EventID: "e1", Kind: "booking"}))
	assert.Equal(t, "e1", got.EventID)

	status.Store(http.StatusBadGateway)
	assert.Error(t, p.Send(context.Background(), Alert{EventID: "e2"}))
	assert.False(t, p.Ready())
}

func TestFromEvent(t *testing.T) {
	msg := "follow-up"
	ev := model.IntakeEvent{
		ID:         "e1",
		Table:      model.TableBookings,
		Submission: model.NewSubmission{FullName: "Sara", Mobile: "0501234567", Address: "Jeddah", Message: &msg},
		At:         time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}

	a := FromEvent(ev, i18n.EN)
	assert.Equal(t, "booking", a.Kind)
	assert.Equal(t, "New booking request", a.Title)
	assert.Equal(t, "follow-up", a.Message)

	ev.Table = model.TableMessages
	ev.Submission.Message = nil
	a = FromEvent(ev, i18n.AR)
	assert.Equal(t, "message", a.Kind)
	assert.Equal(t, "رسالة تواصل جديدة", a.Title)
	assert.Empty(t, a.Message)
}
