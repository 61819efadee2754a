// Package lang normalizes the language codes carried by users and messages.
package lang

import (
	"strings"

	"golang.org/x/text/language"
)

// Auto is the source language used when the sender's language is unknown.
const Auto = "auto"

// Default is the base language used when nothing better is known.
const Default = "en"

// Normalize lowercases and trims a language code.
func Normalize(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}

// Resolve normalizes code, falling back to the normalized fallback when code is empty.
func Resolve(code, fallback string) string {
	if n := Normalize(code); n != "" {
		return n
	}
	return Normalize(fallback)
}

// Valid reports whether code is a well-formed, known BCP 47 tag.
func Valid(code string) bool {
	code = strings.TrimSpace(code)
	if code == "" {
		return false
	}
	_, err := language.Parse(code)
	return err == nil
}
