// Package provider talks to external machine-translation endpoints.
package provider

import (
	"context"
	"errors"
	"fmt"
)

// Request is a single text to translate between two normalized language codes.
type Request struct {
	Text   string
	Source string
	Target string
}

// Provider translates one text or returns an error. Implementations never retry.
type Provider interface {
	Name() string
	Translate(ctx context.Context, req Request) (string, error)
}

var (
	// ErrHTMLResponse marks an endpoint that answered with a web page instead of an API payload.
	ErrHTMLResponse = errors.New("html page instead of api response")
	// ErrUnrecognizedPayload marks a body that matched none of the known shapes.
	ErrUnrecognizedPayload = errors.New("unrecognized payload shape")
)

// Error describes a failed provider call.
type Error struct {
	Provider   string
	StatusCode int
	Message    string
	Cause      error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("provider %s: %s", e.Provider, e.Message)
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Cause
}
