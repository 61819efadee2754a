package lang

import "testing"

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"EN":     "en",
		"  Hi ":  "hi",
		"zh-TW":  "zh-tw",
		"":       "",
		"  ":     "",
		"fr":     "fr",
		"AUTO":   "auto",
		"pt-BR ": "pt-br",
	}
	for in, want := range cases {
		if got := Normalize(in); got != want {
			t.Errorf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestResolveFallsBack(t *testing.T) {
	if got := Resolve("", "EN"); got != "en" {
		t.Fatalf("expected fallback en, got %q", got)
	}
	if got := Resolve(" HI", "en"); got != "hi" {
		t.Fatalf("expected hi, got %q", got)
	}
}

func TestValid(t *testing.T) {
	for _, code := range []string{"en", "hi", "fr", "zh-TW", "pt-BR"} {
		if !Valid(code) {
			t.Errorf("expected %q to be valid", code)
		}
	}
	for _, code := range []string{"", "not a language", "e", "!!"} {
		if Valid(code) {
			t.Errorf("expected %q to be invalid", code)
		}
	}
}
