package provider

import (
	"io"
	"mime"
	"net/http"
	"strings"
)

const (
	maxResponseBytes = 1 << 20
	snippetLen       = 200
)

func isHTML(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.Contains(strings.ToLower(contentType), "text/html")
	}
	return mediaType == "text/html" || mediaType == "application/xhtml+xml"
}

// readResponse rejects HTML pages and error statuses, then returns the body.
func readResponse(name string, resp *http.Response) ([]byte, error) {
	if isHTML(resp.Header.Get("Content-Type")) {
		return nil, &Error{Provider: name, StatusCode: resp.StatusCode, Message: "rejected response", Cause: ErrHTMLResponse}
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, &Error{Provider: name, StatusCode: resp.StatusCode, Message: "unexpected status"}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &Error{Provider: name, StatusCode: resp.StatusCode, Message: "read body", Cause: err}
	}
	return body, nil
}

func snippet(body []byte) string {
	s := string(body)
	if len(s) > snippetLen {
		s = s[:snippetLen]
	}
	return s
}
