package typograf

import (
	"regexp"
	"strings"
	"unicode"
)

const maxPasses = 4

var (
	reRepeatSpace      = regexp.MustCompile(`[ \t]{2,}`)
	reSpaceBeforePunct = regexp.MustCompile(`[ \t]+([,;:!?])`)
	reAfterPunct       = regexp.MustCompile(`([,;:])(\p{L})`)
	reHellip           = regexp.MustCompile(`\.{3}`)
	reCopy             = regexp.MustCompile(`(?i)\((?:c|с)\)`)
	reReg              = regexp.MustCompile(`(?i)\(r\)`)
	reTrade            = regexp.MustCompile(`(?i)\(tm\)`)
	reTimes            = regexp.MustCompile(`(\d)[ \t]?[xх][ \t]?(\d)`)
	reDash             = regexp.MustCompile(`(\S)[ \t]+(?:--?|–|—)[ \t]+`)
	reShortWord        = regexp.MustCompile(`(^|[\s\p{P}\x{00a0}])(\p{L}{1,2})[ \t]+`)
	reWord             = regexp.MustCompile(`\p{L}+`)
)

func builtinRules() []Rule {
	return []Rule{
		{Name: "common/space/trimLeft", apply: func(s string, _ locale) string {
			return strings.TrimLeftFunc(s, unicode.IsSpace)
		}},
		{Name: "common/space/trimRight", apply: func(s string, _ locale) string {
			return strings.TrimRightFunc(s, unicode.IsSpace)
		}},
		{Name: "common/space/delRepeatSpace", apply: delRepeatSpace},
		{Name: "common/space/delBeforePunctuation", apply: func(s string, _ locale) string {
			return reSpaceBeforePunct.ReplaceAllString(s, "$1")
		}},
		{Name: "common/space/afterPunctuation", apply: func(s string, _ locale) string {
			return reAfterPunct.ReplaceAllString(s, "$1 $2")
		}},
		{Name: "common/punctuation/hellip", apply: func(s string, _ locale) string {
			return reHellip.ReplaceAllString(s, "…")
		}},
		{Name: "common/symbols/cf", apply: func(s string, _ locale) string {
			s = reCopy.ReplaceAllString(s, "©")
			s = reReg.ReplaceAllString(s, "®")
			return reTrade.ReplaceAllString(s, "™")
		}},
		{Name: "common/number/times", apply: func(s string, _ locale) string {
			return reTimes.ReplaceAllString(s, "$1×$2")
		}},
		{Name: "common/punctuation/quote", apply: replaceQuotes},
		{Name: "common/dash/main", apply: func(s string, loc locale) string {
			return reDash.ReplaceAllString(s, "${1}"+loc.dash)
		}},
		{Name: "common/nbsp/afterShortWord", apply: func(s string, _ locale) string {
			return untilStable(s, func(s string) string {
				return reShortWord.ReplaceAllString(s, "${1}${2}\u00a0")
			})
		}},
		{Name: "common/other/repeatWord", Off: true, apply: delRepeatWord},
	}
}

func untilStable(s string, step func(string) string) string {
	for i := 0; i < maxPasses; i++ {
		next := step(s)
		if next == s {
			return next
		}
		s = next
	}
	return s
}

// delRepeatSpace collapses runs of spaces between words. Indentation at the
// start of a line is left alone.
func delRepeatSpace(s string, _ locale) string {
	idx := reRepeatSpace.FindAllStringIndex(s, -1)
	if len(idx) == 0 {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	last := 0
	for _, m := range idx {
		start, end := m[0], m[1]
		if start == 0 || s[start-1] == '\n' || end == len(s) || s[end] == '\n' {
			continue
		}
		b.WriteString(s[last:start])
		b.WriteByte(' ')
		last = end
	}
	b.WriteString(s[last:])
	return b.String()
}

func replaceQuotes(s string, loc locale) string {
	if !strings.ContainsRune(s, '"') {
		return s
	}

	var b strings.Builder
	b.Grow(len(s) + 8)

	depth := 0
	prev := rune(-1)
	prevOpened := false
	for _, r := range s {
		if r != '"' {
			b.WriteRune(r)
			prev = r
			continue
		}

		if opensQuote(prev, prevOpened) {
			depth++
			if depth == 1 {
				b.WriteString(loc.outerOpen)
			} else {
				b.WriteString(loc.innerOpen)
			}
			prevOpened = true
		} else {
			if depth > 1 {
				b.WriteString(loc.innerClose)
			} else {
				b.WriteString(loc.outerClose)
			}
			if depth > 0 {
				depth--
			}
			prevOpened = false
		}
		prev = r
	}
	return b.String()
}

func opensQuote(prev rune, prevOpened bool) bool {
	switch {
	case prev == -1, unicode.IsSpace(prev):
		return true
	case prev == '"':
		return prevOpened
	}
	return strings.ContainsRune("([{«„‘“‚-—–", prev)
}

func delRepeatWord(s string, _ locale) string {
	idx := reWord.FindAllStringIndex(s, -1)
	if len(idx) < 2 {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	last := 0
	for i := 1; i < len(idx); i++ {
		prev, cur := idx[i-1], idx[i]
		gap := s[prev[1]:cur[0]]
		if gap == "" || strings.Trim(gap, " \t\u00a0") != "" {
			continue
		}
		if !strings.EqualFold(s[prev[0]:prev[1]], s[cur[0]:cur[1]]) {
			continue
		}
		// Drop the gap and the repeated word.
		b.WriteString(s[last:prev[1]])
		last = cur[1]
	}
	b.WriteString(s[last:])
	return b.String()
}
