package render

import (
	"bytes"
	"html"
	"strings"

	"github.com/alecthomas/chroma"
	chromahtml "github.com/alecthomas/chroma/formatters/html"
	"github.com/alecthomas/chroma/lexers"
	"github.com/alecthomas/chroma/styles"
)

const markupStyle = "github"

// Markup shows transformed text as highlighted HTML source, so entities and
// tags stand out from the surrounding text.
type Markup struct {
	lexer     chroma.Lexer
	formatter *chromahtml.Formatter
	style     *chroma.Style
}

func NewMarkup() *Markup {
	lexer := lexers.Get("html")
	if lexer == nil {
		lexer = lexers.Fallback
	}

	style := styles.Get(markupStyle)
	if style == nil {
		style = styles.Fallback
	}

	return &Markup{
		lexer: chroma.Coalesce(lexer),
		formatter: chromahtml.New(
			chromahtml.WithClasses(true),
			chromahtml.PreventSurroundingPre(true),
		),
		style: style,
	}
}

// Render returns an escaped, highlighted HTML fragment for text. If the
// highlighter fails the text is only escaped.
func (m *Markup) Render(text string) string {
	if text == "" {
		return ""
	}

	it, err := m.lexer.Tokenise(nil, text)
	if err != nil {
		return html.EscapeString(text)
	}

	var buf bytes.Buffer
	if err := m.formatter.Format(&buf, m.style, it); err != nil {
		return html.EscapeString(text)
	}
	return buf.String()
}

// CSS returns the stylesheet for the classes Render emits.
func (m *Markup) CSS() string {
	var sb strings.Builder
	if err := m.formatter.WriteCSS(&sb, m.style); err != nil {
		return ""
	}
	return sb.String()
}
