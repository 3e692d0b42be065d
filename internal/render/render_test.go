package render

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiff(t *testing.T) {
	tests := []struct {
		name          string
		before, after string
		want          string
	}{
		{name: "equal", before: "abc", after: "abc", want: "abc"},
		{name: "insert", before: "abc", after: "abcd", want: `abc<ins class="diff__ins">d</ins>`},
		{name: "delete", before: "  hello", after: "hello", want: `<del class="diff__del">  </del>hello`},
		{
			name:   "replace",
			before: `"hi"`,
			after:  "«hi»",
			want:   `<del class="diff__del">&#34;</del><ins class="diff__ins">«</ins>hi<del class="diff__del">&#34;</del><ins class="diff__ins">»</ins>`,
		},
		{
			name:   "nbsp is visible",
			before: "a b",
			after:  "a\u00a0b",
			want:   `a<del class="diff__del"> </del><ins class="diff__ins"><span class="diff__nbsp">&nbsp;</span></ins>b`,
		},
		{name: "escapes", before: "<b>", after: "<b>", want: "&lt;b&gt;"},
		{name: "empty", before: "", after: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Diff(tt.before, tt.after))
		})
	}
}

func TestDiffLongTextKeepsCommonCharacters(t *testing.T) {
	before := strings.Repeat("word ", 100)
	after := before + "!"
	assert.Equal(t, before+`<ins class="diff__ins">!</ins>`, Diff(before, after))
}

func TestMarkupEscapesAndHighlights(t *testing.T) {
	m := NewMarkup()

	out := m.Render("a&nbsp;b <b>bold</b>")
	assert.NotContains(t, out, "<b>")
	assert.Contains(t, out, "&amp;nbsp;")
	assert.Contains(t, out, "&lt;")
	assert.Contains(t, out, `class="`)

	assert.Equal(t, "", m.Render(""))
	assert.NotEmpty(t, m.CSS())
}

func TestDocsRenderEmbedded(t *testing.T) {
	d := NewDocs("")

	out, err := d.Render("en")
	require.NoError(t, err)
	assert.Contains(t, out, `<h1 id="typograf">Typograf</h1>`)
	assert.Contains(t, out, "<table>")
	assert.Contains(t, out, `target="_blank"`)

	ru, err := d.Render("ru")
	require.NoError(t, err)
	assert.Contains(t, ru, "Типограф")

	fallback, err := d.Render("xx")
	require.NoError(t, err)
	assert.Equal(t, out, fallback)
}

func TestDocsOverrideIsSanitized(t *testing.T) {
	dir := t.TempDir()
	src := "# Custom\n\n<script>alert(1)</script>\n\n[link](https://example.com)\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "about.en.md"), []byte(src), 0o600))

	out, err := NewDocs(dir).Render("en")
	require.NoError(t, err)
	assert.Contains(t, out, "Custom")
	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, `href="https://example.com"`)
}

func TestRenderShell(t *testing.T) {
	page, err := RenderShell(PageData{
		Lang:     "ru",
		Mobile:   true,
		Messages: map[string]string{"prefs": "</script><b>"},
		Locales:  []string{"ru", "en-US"},
	})
	require.NoError(t, err)

	assert.Contains(t, page, `<html lang="ru">`)
	assert.Contains(t, page, `class="page page_is-mobile"`)
	assert.Contains(t, page, `<option value="en-US">en-US</option>`)
	assert.NotContains(t, page, "</script><b>")
	assert.NotContains(t, page, "{{")
}

func TestIsMobileUserAgent(t *testing.T) {
	assert.True(t, IsMobileUserAgent("Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X)"))
	assert.True(t, IsMobileUserAgent("Mozilla/5.0 (Linux; Android 14) Mobile"))
	assert.False(t, IsMobileUserAgent("Mozilla/5.0 (X11; Linux x86_64) Firefox/130.0"))
}
