package recordstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/urocare/clinic/internal/breaker"
	"github.com/urocare/clinic/internal/logger"
	"github.com/urocare/clinic/internal/metrics"
	"github.com/urocare/clinic/internal/model"
	"go.uber.org/zap"
)

// RESTStore uses the PostgREST table endpoints under {baseURL}/rest/v1.
type RESTStore struct {
	baseURL string
	apiKey  string
	client  *http.Client
	br      *breaker.Breaker
}

var _ Store = (*RESTStore)(nil)

func NewRESTStore(baseURL, apiKey string, timeoutMs, failThreshold, openForMs int) *RESTStore {
	if timeoutMs <= 0 {
		timeoutMs = 5000
	}

	if failThreshold <= 0 {
		failThreshold = 5
	}

	if openForMs <= 0 {
		openForMs = 10000
	}

	return &RESTStore{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: time.Duration(timeoutMs) * time.Millisecond},
		br:      breaker.New(failThreshold, time.Duration(openForMs)*time.Millisecond),
	}
}

// Insert issues POST /{table} with Prefer: return=minimal.
func (s *RESTStore) Insert(ctx context.Context, table model.Table, sub model.NewSubmission) error {
	return s.do(ctx, call{
		table:  table,
		op:     "insert",
		method: http.MethodPost,
		body:   sub,
	})
}

func (s *RESTStore) ListBookings(ctx context.Context, token string) ([]model.BookingRequest, error) {
	var rows []model.BookingRequest
	if err := s.do(ctx, call{
		table:  model.TableBookings,
		op:     "list",
		method: http.MethodGet,
		token:  token,
		query:  newestFirst(),
		out:    &rows,
	}); err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *RESTStore) ListMessages(ctx context.Context, token string) ([]model.ContactMessage, error) {
	var rows []model.ContactMessage
	if err := s.do(ctx, call{
		table:  model.TableMessages,
		op:     "list",
		method: http.MethodGet,
		token:  token,
		query:  newestFirst(),
		out:    &rows,
	}); err != nil {
		return nil, err
	}
	return rows, nil
}

// Update issues PATCH /{table}?id=eq.<id> with the partial body.
func (s *RESTStore) Update(ctx context.Context, token string, table model.Table, id string, u Update) error {
	if u.Status == nil && u.IsRead == nil {
		return ErrEmptyUpdate
	}
	return s.do(ctx, call{
		table:  table,
		op:     "patch",
		method: http.MethodPatch,
		token:  token,
		query:  byID(id),
		body:   u,
	})
}

func (s *RESTStore) Delete(ctx context.Context, token string, table model.Table, id string) error {
	return s.do(ctx, call{
		table:  table,
		op:     "delete",
		method: http.MethodDelete,
		token:  token,
		query:  byID(id),
	})
}

func newestFirst() url.Values {
	return url.Values{"select": {"*"}, "order": {"created_at.desc"}}
}

func byID(id string) url.Values {
	return url.Values{"id": {"eq." + id}}
}

type call struct {
	table  model.Table
	op     string
	method string
	token  string
	query  url.Values
	body   any
	out    any
}

func (s *RESTStore) do(ctx context.Context, c call) error {
	req, err := s.newRequest(ctx, c)
	if err != nil {
		return &RemoteError{Table: c.table, Op: c.op, Err: err}
	}

	if !s.br.TryAcquire() {
		metrics.RecordStoreRequests.WithLabelValues(c.table.String(), c.op, "breaker_open").Inc()
		return &RemoteError{Table: c.table, Op: c.op, Err: ErrBreakerOpen}
	}

	if err := s.send(req, c); err != nil {
		metrics.RecordStoreRequests.WithLabelValues(c.table.String(), c.op, "error").Inc()
		logger.Log.Warn("record store call failed",
			zap.String("table", c.table.String()),
			zap.String("op", c.op),
			zap.Error(err),
		)
		return err
	}

	metrics.RecordStoreRequests.WithLabelValues(c.table.String(), c.op, "ok").Inc()
	return nil
}

func (s *RESTStore) newRequest(ctx context.Context, c call) (*http.Request, error) {
	u := s.baseURL + "/rest/v1/" + c.table.String()
	if len(c.query) > 0 {
		u += "?" + c.query.Encode()
	}

	var body io.Reader
	if c.body != nil {
		b, err := json.Marshal(c.body)
		if err != nil {
			return nil, fmt.Errorf("marshal body: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, c.method, u, body)
	if err != nil {
		return nil, err
	}

	bearer := c.token
	if bearer == "" {
		bearer = s.apiKey
	}
	req.Header.Set("apikey", s.apiKey)
	req.Header.Set("Authorization", "Bearer "+bearer)
	if c.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.method != http.MethodGet {
		req.Header.Set("Prefer", "return=minimal")
	}
	return req, nil
}

func (s *RESTStore) send(req *http.Request, c call) error {
	res, err := s.client.Do(req)
	if err != nil {
		s.br.OnFailure()
		return &RemoteError{Table: c.table, Op: c.op, Err: err}
	}

	defer res.Body.Close()

	// 4xx means the service answered; only 5xx counts against the breaker.
	if res.StatusCode >= 500 {
		s.br.OnFailure()
	} else {
		s.br.OnSuccess()
	}

	if res.StatusCode/100 != 2 {
		_, _ = io.Copy(io.Discard, res.Body)
		return &RemoteError{Table: c.table, Op: c.op, Status: res.StatusCode}
	}

	if c.out == nil {
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(c.out); err != nil {
		return &RemoteError{Table: c.table, Op: c.op, Err: fmt.Errorf("decode: %w", err)}
	}
	return nil
}
