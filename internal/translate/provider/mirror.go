package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
)

// Mirror is a LibreTranslate-compatible endpoint.
type Mirror struct {
	url    string
	client *http.Client
}

type mirrorRequest struct {
	Q      string `json:"q"`
	Source string `json:"source"`
	Target string `json:"target"`
	Format string `json:"format"`
}

// NewMirror creates a mirror client for url. A nil client uses http.DefaultClient.
func NewMirror(url string, client *http.Client) *Mirror {
	if client == nil {
		client = http.DefaultClient
	}
	return &Mirror{url: url, client: client}
}

func (m *Mirror) Name() string { return m.url }

// Translate posts the request and decodes any known payload shape.
func (m *Mirror) Translate(ctx context.Context, req Request) (string, error) {
	payload, err := json.Marshal(mirrorRequest{
		Q:      req.Text,
		Source: req.Source,
		Target: req.Target,
		Format: "text",
	})
	if err != nil {
		return "", &Error{Provider: m.url, Message: "encode request", Cause: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, m.url, bytes.NewReader(payload))
	if err != nil {
		return "", &Error{Provider: m.url, Message: "build request", Cause: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := m.client.Do(httpReq)
	if err != nil {
		return "", &Error{Provider: m.url, Message: "request failed", Cause: err}
	}
	defer resp.Body.Close()

	body, err := readResponse(m.url, resp)
	if err != nil {
		return "", err
	}

	parsed, ok := ParseMirror(body)
	if !ok {
		return "", &Error{Provider: m.url, StatusCode: resp.StatusCode, Message: snippet(body), Cause: ErrUnrecognizedPayload}
	}
	return parsed.Text(), nil
}

var _ Provider = (*Mirror)(nil)
