package dispatcher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/urocare/clinic/internal/breaker"
)

// Provider delivers staff alerts to one destination.
type Provider interface {
	Name() string
	Ready() bool
	Acquire() bool
	Send(ctx context.Context, a Alert) error
}

// WebhookProvider posts alerts as JSON to a fixed URL.
type WebhookProvider struct {
	name   string
	url    string
	token  string
	client *http.Client
	br     *breaker.Breaker
}

func NewWebhookProvider(name, url, token string, timeoutMs, failThreshold, openForMs int) *WebhookProvider {
	if timeoutMs <= 0 {
		timeoutMs = 3000
	}

	if failThreshold <= 0 {
		failThreshold = 3
	}

	if openForMs <= 0 {
		openForMs = 15000
	}

	return &WebhookProvider{
		name:   name,
		url:    url,
		token:  token,
		client: &http.Client{Timeout: time.Duration(timeoutMs) * time.Millisecond},
		br:     breaker.New(failThreshold, time.Duration(openForMs)*time.Millisecond),
	}
}

func (p *WebhookProvider) Name() string  { return p.name }
func (p *WebhookProvider) Ready() bool   { return p.br.Ready() }
func (p *WebhookProvider) Acquire() bool { return p.br.TryAcquire() }

func (p *WebhookProvider) Send(ctx context.Context, a Alert) error {
	if err := p.post(ctx, a); err != nil {
		p.br.OnFailure()
		return err
	}

	p.br.OnSuccess()

	return nil
}

func (p *WebhookProvider) post(ctx context.Context, a Alert) error {
	b, err := json.Marshal(a)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(b))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")
	if p.token != "" {
		req.Header.Set("Authorization", "Bearer "+p.token)
	}

	res, err := p.client.Do(req)
	if err != nil {
		return err
	}

	defer res.Body.Close()

	if res.StatusCode/100 != 2 {
		return fmt.Errorf("provider=%s status=%d", p.name, res.StatusCode)
	}

	return nil
}
