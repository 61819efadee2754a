// Package cache stores translated strings keyed by a text and language-pair fingerprint.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Cache is the storage used by the translation service.
// Implementations must be safe for concurrent use and must never return an
// entry older than their time-to-live.
type Cache interface {
	// Get returns the cached translation and true on a live hit.
	Get(ctx context.Context, key string) (string, bool)

	// Set stores a translation stamped with the current time.
	Set(ctx context.Context, key, value string) error
}

// Key fingerprints a translation request. Language codes are expected to be
// normalized by the caller; surrounding whitespace of text is ignored.
func Key(text, source, target string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(text) + "|" + source + "|" + target))
	return hex.EncodeToString(sum[:])
}
