package provider

import (
	"strings"

	"github.com/tidwall/gjson"
)

// Payload is the closed set of response shapes translation endpoints are known
// to produce. Only types in this package implement it.
type Payload interface {
	// Text returns the translated string carried by the payload.
	Text() string
	// Shape names the matched format for logging.
	Shape() string

	payload()
}

// DirectField is {"translatedText": "..."}.
type DirectField struct{ TranslatedText string }

// PlainText is a bare string body, either JSON-encoded or raw.
type PlainText struct{ Value string }

// ObjectArray is [{"translatedText": "..."}, ...].
type ObjectArray struct{ TranslatedText string }

// NestedArray is [[["segment", "source", ...], ...], ...].
type NestedArray struct{ Segments []string }

// WrappedResult is {"result": {"translatedText": "..."}}.
type WrappedResult struct{ TranslatedText string }

func (p DirectField) Text() string   { return p.TranslatedText }
func (p PlainText) Text() string     { return p.Value }
func (p ObjectArray) Text() string   { return p.TranslatedText }
func (p NestedArray) Text() string   { return strings.Join(p.Segments, "") }
func (p WrappedResult) Text() string { return p.TranslatedText }

func (DirectField) Shape() string   { return "direct_field" }
func (PlainText) Shape() string     { return "plain_text" }
func (ObjectArray) Shape() string   { return "object_array" }
func (NestedArray) Shape() string   { return "nested_array" }
func (WrappedResult) Shape() string { return "wrapped_result" }

func (DirectField) payload()   {}
func (PlainText) payload()     {}
func (ObjectArray) payload()   {}
func (NestedArray) payload()   {}
func (WrappedResult) payload() {}

type matcher func(body []byte) (Payload, bool)

// Order matters: the first matching shape wins.
var (
	mirrorMatchers   = []matcher{matchDirectField, matchPlainText, matchObjectArray, matchNestedArray, matchWrappedResult}
	fallbackMatchers = []matcher{matchNestedArray, matchPlainText}
)

// ParseMirror decodes a mirror response body.
func ParseMirror(body []byte) (Payload, bool) {
	return parse(body, mirrorMatchers)
}

// ParseFallback decodes a fallback endpoint response body.
func ParseFallback(body []byte) (Payload, bool) {
	return parse(body, fallbackMatchers)
}

func parse(body []byte, matchers []matcher) (Payload, bool) {
	for _, m := range matchers {
		if p, ok := m(body); ok {
			return p, true
		}
	}
	return nil, false
}

func nonEmptyString(r gjson.Result) (string, bool) {
	if r.Type != gjson.String || strings.TrimSpace(r.Str) == "" {
		return "", false
	}
	return r.Str, true
}

func jsonRoot(body []byte) (gjson.Result, bool) {
	if !gjson.ValidBytes(body) {
		return gjson.Result{}, false
	}
	return gjson.ParseBytes(body), true
}

func matchDirectField(body []byte) (Payload, bool) {
	root, ok := jsonRoot(body)
	if !ok || !root.IsObject() {
		return nil, false
	}
	text, ok := nonEmptyString(root.Get("translatedText"))
	if !ok {
		return nil, false
	}
	return DirectField{TranslatedText: text}, true
}

func matchPlainText(body []byte) (Payload, bool) {
	if root, ok := jsonRoot(body); ok {
		text, ok := nonEmptyString(root)
		if !ok {
			return nil, false
		}
		return PlainText{Value: text}, true
	}

	raw := strings.TrimSpace(string(body))
	if raw == "" {
		return nil, false
	}
	// broken JSON or markup is not a translation
	switch raw[0] {
	case '{', '[', '<':
		return nil, false
	}
	return PlainText{Value: raw}, true
}

func matchObjectArray(body []byte) (Payload, bool) {
	root, ok := jsonRoot(body)
	if !ok || !root.IsArray() {
		return nil, false
	}
	text, ok := nonEmptyString(root.Get("0.translatedText"))
	if !ok {
		return nil, false
	}
	return ObjectArray{TranslatedText: text}, true
}

func matchNestedArray(body []byte) (Payload, bool) {
	root, ok := jsonRoot(body)
	if !ok || !root.IsArray() {
		return nil, false
	}
	sentences := root.Get("0")
	if !sentences.IsArray() {
		return nil, false
	}

	var segments []string
	for _, sentence := range sentences.Array() {
		if !sentence.IsArray() {
			continue
		}
		if seg := sentence.Get("0"); seg.Type == gjson.String {
			segments = append(segments, seg.Str)
		}
	}

	p := NestedArray{Segments: segments}
	if strings.TrimSpace(p.Text()) == "" {
		return nil, false
	}
	return p, true
}

func matchWrappedResult(body []byte) (Payload, bool) {
	root, ok := jsonRoot(body)
	if !ok || !root.IsObject() {
		return nil, false
	}
	text, ok := nonEmptyString(root.Get("result.translatedText"))
	if !ok {
		return nil, false
	}
	return WrappedResult{TranslatedText: text}, true
}
