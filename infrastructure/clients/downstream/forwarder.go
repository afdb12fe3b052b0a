// Package downstream delivers classified webhook events to the internal
// backend over an API-key-guarded POST.
package downstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"instagram-relay/domain/model"
	"instagram-relay/domain/repository"
)

type Forwarder struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewForwarder(baseURL, apiKey string, httpClient *http.Client) repository.IForwarder {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Forwarder{baseURL: baseURL, apiKey: apiKey, http: httpClient}
}

// Forward posts one event to the backend's events endpoint. A non-2xx
// response is an error; the caller decides whether to log or drop it.
func (f *Forwarder) Forward(ctx context.Context, event *model.WebhookEvent) error {
	if f.baseURL == "" {
		return fmt.Errorf("downstream base URL not configured")
	}
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.baseURL+"/internal/instagram/events", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", f.apiKey)

	resp, err := f.http.Do(req)
	if err != nil {
		return fmt.Errorf("forward event: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("downstream returned %d: %s", resp.StatusCode, snippet)
	}
	return nil
}
