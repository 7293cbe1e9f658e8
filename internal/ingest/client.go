// Package ingest wraps the external ingestion service. The core only
// owns the contract for invoking it: POST the stored file's path, read a
// status string back. The ingestion algorithm itself is not ours.
package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"docvault/internal/config"
)

// StatusProcessed is the only response value the coordinator acts on.
// Anything else is treated as "not yet processed".
const StatusProcessed = "processed"

// Client invokes the ingestion service for a stored document.
type Client interface {
	// Ingest submits the document's file path and returns the service's
	// reported status. A transport or protocol error means the outcome is
	// unknown; the caller must not change document state from it.
	Ingest(ctx context.Context, documentPath string) (string, error)
}

type ingestRequest struct {
	DocumentPath string `json:"document_path"`
}

type ingestResponse struct {
	Status string `json:"status"`
}

// HTTPClient is the production Client backed by net/http with an
// otel-instrumented transport.
type HTTPClient struct {
	url    string
	client *http.Client
}

// NewHTTPClient builds a client for the configured ingestion endpoint.
func NewHTTPClient(cfg config.IngestConfig) (*HTTPClient, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("ingest url is required")
	}
	timeout := time.Duration(cfg.TimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPClient{
		url: cfg.URL,
		client: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}, nil
}

var _ Client = (*HTTPClient)(nil)

// Ingest POSTs {"document_path": …} and decodes the status field.
func (c *HTTPClient) Ingest(ctx context.Context, documentPath string) (string, error) {
	body, err := json.Marshal(ingestRequest{DocumentPath: documentPath})
	if err != nil {
		return "", fmt.Errorf("encode ingest request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build ingest request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("call ingestion service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("ingestion service returned status %d", resp.StatusCode)
	}

	var out ingestResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode ingest response: %w", err)
	}
	return out.Status, nil
}
