// Package docgen bridges the generator ports to the external document
// renderer over HTTP. The renderer lays out the PDF, writes it to the
// artifact store itself and answers with the object key; this side never
// touches the bytes.
package docgen

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Magneteek/SmileLAB-sub002/internal/application/billing"
	"github.com/Magneteek/SmileLAB-sub002/internal/application/production"
)

var _ production.AnnexGenerator = (*Client)(nil)
var _ billing.InvoicePDFGenerator = (*Client)(nil)

// Client calls the renderer service. The timeout is generous because a
// render involves layout plus an upload to the artifact store.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient builds the bridge for the renderer at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// renderResponse is the renderer's answer: the object key of the stored PDF.
type renderResponse struct {
	Key string `json:"key"`
}

// RenderAnnex renders the MDR conformity statement for a work sheet.
func (c *Client) RenderAnnex(ctx context.Context, data production.AnnexData) (string, error) {
	return c.render(ctx, "/render/annex", data)
}

// RenderInvoice renders an invoice PDF.
func (c *Client) RenderInvoice(ctx context.Context, data billing.InvoicePDFData) (string, error) {
	return c.render(ctx, "/render/invoice", data)
}

// render posts the payload as JSON. The renderer takes the exported field
// names of the port structs as keys.
func (c *Client) render(ctx context.Context, path string, payload any) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("docgen: serialize payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("docgen: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("docgen: timeout or cancellation: %w", ctx.Err())
		}
		return "", fmt.Errorf("docgen: http call failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // max 1 MB
	if err != nil {
		return "", fmt.Errorf("docgen: read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("docgen: renderer answered %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var out renderResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("docgen: parse response: %w", err)
	}
	if out.Key == "" {
		return "", errors.New("docgen: renderer answered without an object key")
	}
	return out.Key, nil
}
