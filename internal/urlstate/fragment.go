// Package urlstate maps editor state to the shareable URL fragment and back.
//
// Two fragment shapes exist and never coexist: the preferences marker
// "#!prefs" and the text marker "#!text=<percent-encoded input>". The text
// marker carries at most DefaultLimit characters of the input; the editor
// itself keeps the full text.
package urlstate

import (
	"net/url"
	"strings"
	"unicode/utf8"
)

const (
	// PrefsMarker is written while the preferences panel is open.
	PrefsMarker = "#!prefs"

	// DefaultLimit bounds the number of characters encoded into the URL.
	DefaultLimit = 512

	hashbang  = "#!"
	textParam = "text"
)

// Kind tells which fragment shape was parsed.
type Kind int

const (
	KindEmpty Kind = iota
	KindPrefs
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindPrefs:
		return "prefs"
	case KindText:
		return "text"
	default:
		return "empty"
	}
}

// Fragment is a decoded URL fragment.
type Fragment struct {
	Kind Kind
	Text string
}

// Parse decodes a raw fragment. The leading '#' is optional. Anything that
// is neither the preferences marker nor a decodable text parameter parses as
// KindEmpty.
func Parse(raw string) Fragment {
	if raw == "" {
		return Fragment{}
	}
	if !strings.HasPrefix(raw, "#") {
		raw = "#" + raw
	}
	if raw == PrefsMarker {
		return Fragment{Kind: KindPrefs}
	}
	if !strings.HasPrefix(raw, hashbang) {
		return Fragment{}
	}

	for _, pair := range strings.Split(raw[len(hashbang):], "&") {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key != textParam {
			continue
		}
		text, err := url.PathUnescape(value)
		if err != nil {
			return Fragment{}
		}
		return Fragment{Kind: KindText, Text: text}
	}
	return Fragment{}
}

// TextParam returns the decoded text parameter of raw, or "" if absent.
func TextParam(raw string) string {
	f := Parse(raw)
	if f.Kind != KindText {
		return ""
	}
	return f.Text
}

// EncodeText builds the text marker for input, truncated to limit
// characters. A non-positive limit means DefaultLimit.
func EncodeText(input string, limit int) string {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return hashbang + textParam + "=" + Escape(Truncate(input, limit))
}

// Truncate returns at most limit characters of s.
func Truncate(s string, limit int) string {
	if limit < 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	n := 0
	for i := range s {
		if n == limit {
			return s[:i]
		}
		n++
	}
	return s
}

// Escape percent-encodes s with the same unreserved set browsers use for
// URI components, so links produced here and in the page agree.
func Escape(s string) string {
	const upperhex = "0123456789ABCDEF"

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperhex[c>>4])
		b.WriteByte(upperhex[c&15])
	}
	return b.String()
}

func isUnreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	switch c {
	case '-', '_', '.', '!', '~', '*', '\'', '(', ')':
		return true
	}
	return false
}
