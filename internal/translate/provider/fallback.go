package provider

import (
	"context"
	"net/http"
	"net/url"
)

// DefaultFallbackURL is the unauthenticated Google endpoint used as a last resort.
const DefaultFallbackURL = "https://translate.googleapis.com/translate_a/single"

// Fallback queries an endpoint taking sl/tl/q query parameters and answering
// with nested sentence arrays.
type Fallback struct {
	baseURL string
	client  *http.Client
}

// NewFallback creates the fallback client. An empty baseURL uses DefaultFallbackURL.
func NewFallback(baseURL string, client *http.Client) *Fallback {
	if baseURL == "" {
		baseURL = DefaultFallbackURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &Fallback{baseURL: baseURL, client: client}
}

func (f *Fallback) Name() string { return f.baseURL }

// Translate issues one GET and concatenates the translated sentence segments.
func (f *Fallback) Translate(ctx context.Context, req Request) (string, error) {
	u, err := url.Parse(f.baseURL)
	if err != nil {
		return "", &Error{Provider: f.baseURL, Message: "parse url", Cause: err}
	}
	q := u.Query()
	q.Set("client", "gtx")
	q.Set("sl", req.Source)
	q.Set("tl", req.Target)
	q.Set("dt", "t")
	q.Set("q", req.Text)
	u.RawQuery = q.Encode()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", &Error{Provider: f.baseURL, Message: "build request", Cause: err}
	}

	resp, err := f.client.Do(httpReq)
	if err != nil {
		return "", &Error{Provider: f.baseURL, Message: "request failed", Cause: err}
	}
	defer resp.Body.Close()

	body, err := readResponse(f.baseURL, resp)
	if err != nil {
		return "", err
	}

	parsed, ok := ParseFallback(body)
	if !ok {
		return "", &Error{Provider: f.baseURL, StatusCode: resp.StatusCode, Message: snippet(body), Cause: ErrUnrecognizedPayload}
	}
	return parsed.Text(), nil
}

var _ Provider = (*Fallback)(nil)
