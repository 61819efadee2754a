package translate

import (
	"net/http"

	"github.com/vovakirdan/polychat-server/internal/translate/provider"
)

// HTTPProviders builds mirror clients for urls and, when enabled, the fallback client.
func HTTPProviders(urls []string, fallbackEnabled bool, fallbackURL string, client *http.Client) ([]provider.Provider, provider.Provider) {
	mirrors := make([]provider.Provider, 0, len(urls))
	for _, u := range urls {
		if u == "" {
			continue
		}
		mirrors = append(mirrors, provider.NewMirror(u, client))
	}

	var fallback provider.Provider
	if fallbackEnabled {
		fallback = provider.NewFallback(fallbackURL, client)
	}
	return mirrors, fallback
}
