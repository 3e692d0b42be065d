package render

import (
	"html"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// Diff marks up the characters that differ between before and after with
// <del> and <ins>. Unchanged runs are escaped and passed through.
func Diff(before, after string) string {
	a, b := splitChars(before), splitChars(after)

	// Junk heuristics are meant for lines; on characters they would hide
	// every space and letter that appears often.
	m := difflib.NewMatcherWithJunk(a, b, false, nil)

	var sb strings.Builder
	sb.Grow(len(after) + 32)
	for _, op := range m.GetOpCodes() {
		switch op.Tag {
		case 'e':
			sb.WriteString(escapeChars(a[op.I1:op.I2]))
		case 'd':
			writeSpan(&sb, "del", a[op.I1:op.I2])
		case 'i':
			writeSpan(&sb, "ins", b[op.J1:op.J2])
		case 'r':
			writeSpan(&sb, "del", a[op.I1:op.I2])
			writeSpan(&sb, "ins", b[op.J1:op.J2])
		}
	}
	return sb.String()
}

func splitChars(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}

func escapeChars(chars []string) string {
	return html.EscapeString(strings.Join(chars, ""))
}

func writeSpan(sb *strings.Builder, tag string, chars []string) {
	sb.WriteString("<")
	sb.WriteString(tag)
	sb.WriteString(` class="diff__`)
	sb.WriteString(tag)
	sb.WriteString(`">`)
	sb.WriteString(strings.ReplaceAll(escapeChars(chars), "\u00a0", `<span class="diff__nbsp">&nbsp;</span>`))
	sb.WriteString("</")
	sb.WriteString(tag)
	sb.WriteString(">")
}
