package core

import "errors"

// Error codes for rejected events. Rejections are logged server-side only.
const (
	ErrCodeBadRequest    = "bad_request"
	ErrCodeNotJoined     = "not_joined"
	ErrCodeUnknownEvent  = "unknown_event"
	ErrCodeRateLimited   = "rate_limited"
	ErrCodePersistFailed = "persist_failed"
	ErrCodeShuttingDown  = "shutting_down"
)

var (
	// ErrClientClosed is returned by Client.Next after Close.
	ErrClientClosed = errors.New("client closed")
)

// CoreError wraps a code and human-readable message.
type CoreError struct {
	Code    string
	Message string
	Err     error
}

func (e *CoreError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *CoreError) Unwrap() error {
	return e.Err
}

func coreError(code, msg string) *CoreError {
	return &CoreError{Code: code, Message: msg}
}

// ErrorCode extracts the code of a CoreError, or "" for other errors.
func ErrorCode(err error) string {
	var ce *CoreError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return ""
}
