package typograf

import (
	"regexp"
	"strconv"
	"strings"
)

var entityNames = map[rune]string{
	'\u00a0': "nbsp",
	'\u2009': "thinsp",
	'\u00ad': "shy",
	'\u2014': "mdash",
	'\u2013': "ndash",
	'\u2212': "minus",
	'\u00ab': "laquo",
	'\u00bb': "raquo",
	'\u2039': "lsaquo",
	'\u203a': "rsaquo",
	'\u201e': "bdquo",
	'\u201a': "sbquo",
	'\u201c': "ldquo",
	'\u201d': "rdquo",
	'\u2018': "lsquo",
	'\u2019': "rsquo",
	'\u2026': "hellip",
	'\u00a9': "copy",
	'\u00ae': "reg",
	'\u2122': "trade",
	'\u00d7': "times",
	'\u00a7': "sect",
	'\u00b0': "deg",
}

var entityRunes = func() map[string]rune {
	m := make(map[string]rune, len(entityNames))
	for r, name := range entityNames {
		m[name] = r
	}
	return m
}()

var reEntity = regexp.MustCompile(`&(#[0-9]{2,6}|#[xX][0-9a-fA-F]{2,5}|[a-zA-Z]{2,8});`)

func invisible(r rune) bool {
	return r == '\u00a0' || r == '\u2009' || r == '\u00ad'
}

// decodeEntities turns entities for characters the engine knows back into
// UTF-8 so rules see plain text. Other entities are left untouched.
func decodeEntities(s string) string {
	if !strings.ContainsRune(s, '&') {
		return s
	}
	return reEntity.ReplaceAllStringFunc(s, func(m string) string {
		body := m[1 : len(m)-1]
		if body[0] != '#' {
			if r, ok := entityRunes[body]; ok {
				return string(r)
			}
			return m
		}

		var (
			n   uint64
			err error
		)
		if body[1] == 'x' || body[1] == 'X' {
			n, err = strconv.ParseUint(body[2:], 16, 32)
		} else {
			n, err = strconv.ParseUint(body[1:], 10, 32)
		}
		if err != nil {
			return m
		}
		if _, ok := entityNames[rune(n)]; ok {
			return string(rune(n))
		}
		return m
	})
}

func encodeEntities(s string, mode EntityMode) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		name, known := entityNames[r]
		switch {
		case !known:
			b.WriteRune(r)
		case mode == EntityDigit:
			b.WriteString("&#")
			b.WriteString(strconv.Itoa(int(r)))
			b.WriteByte(';')
		case mode == EntityName, invisible(r):
			b.WriteByte('&')
			b.WriteString(name)
			b.WriteByte(';')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
