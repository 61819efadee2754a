package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestFallbackTranslate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		if q.Get("client") != "gtx" || q.Get("sl") != "en" || q.Get("tl") != "fr" || q.Get("dt") != "t" || q.Get("q") != "good morning & bye" {
			t.Errorf("unexpected query %v", q)
		}
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_, _ = w.Write([]byte(`[[["bonjour et au revoir","good morning & bye",null,null,1]],null,"en"]`))
	}))
	defer srv.Close()

	f := NewFallback(srv.URL, srv.Client())
	text, err := f.Translate(context.Background(), Request{Text: "good morning & bye", Source: "en", Target: "fr"})
	if err != nil {
		t.Fatalf("translate: %v", err)
	}
	if text != "bonjour et au revoir" {
		t.Fatalf("unexpected text %q", text)
	}
}

func TestFallbackDefaultURL(t *testing.T) {
	if f := NewFallback("", nil); f.Name() != DefaultFallbackURL {
		t.Fatalf("expected default url, got %s", f.Name())
	}
}

func TestFallbackFailureStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	if _, err := NewFallback(srv.URL, srv.Client()).Translate(context.Background(), Request{Text: "hi", Source: "en", Target: "fr"}); err == nil {
		t.Fatal("expected error")
	}
}
