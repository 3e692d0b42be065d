// Package render turns transformation results into the markup shown by the
// page: highlighted HTML source, character diffs, and the about document.
package render

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	chromahtml "github.com/alecthomas/chroma/formatters/html"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	alertcallouts "github.com/zmtcreative/gm-alert-callouts"
)

//go:embed docs/*.md
var docFiles embed.FS

const docFallbackLang = "en"

// Docs renders the about document. Files in dir override the embedded ones
// and are sanitized, since they are not part of the binary.
type Docs struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
	dir    string
}

// NewDocs returns a docs renderer reading overrides from dir, if set.
func NewDocs(dir string) *Docs {
	md := goldmark.New(
		goldmark.WithExtensions(
			alertcallouts.AlertCallouts,
			extension.GFM,
			extension.Table,
			extension.Strikethrough,
			extension.Linkify,
			highlighting.NewHighlighting(
				highlighting.WithFormatOptions(
					chromahtml.WithClasses(true),
				),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)

	policy := bluemonday.UGCPolicy()
	policy.AllowAttrs("class").Globally()
	policy.AllowAttrs("id").OnElements("h1", "h2", "h3", "h4", "h5", "h6")
	policy.AllowAttrs("target").Matching(regexp.MustCompile(`^_blank$`)).OnElements("a")

	return &Docs{md: md, policy: policy, dir: dir}
}

// Render returns the about document for lang as an HTML fragment.
func (d *Docs) Render(lang string) (string, error) {
	source, err := d.source(lang)
	if err != nil {
		return "", err
	}
	return d.Convert(source)
}

// Convert renders markdown source to a sanitized HTML fragment.
func (d *Docs) Convert(source []byte) (string, error) {
	doc := d.md.Parser().Parse(text.NewReader(source))
	decorateAST(doc)

	var buf bytes.Buffer
	if err := d.md.Renderer().Render(&buf, source, doc); err != nil {
		return "", err
	}
	return d.policy.Sanitize(buf.String()), nil
}

func (d *Docs) source(lang string) ([]byte, error) {
	names := []string{"about." + lang + ".md", "about." + docFallbackLang + ".md"}

	if d.dir != "" {
		for _, name := range names {
			data, err := os.ReadFile(filepath.Join(d.dir, name))
			if err == nil {
				return data, nil
			}
			if !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("read docs: %w", err)
			}
		}
	}

	for _, name := range names {
		data, err := docFiles.ReadFile("docs/" + name)
		if err == nil {
			return data, nil
		}
	}
	return nil, fmt.Errorf("no about document for %q", lang)
}

// decorateAST opens absolute links in a new tab so the editor state is not
// lost by following them.
func decorateAST(doc ast.Node) {
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch link := n.(type) {
		case *ast.Link:
			lower := strings.ToLower(strings.TrimSpace(string(link.Destination)))
			if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
				link.SetAttributeString("target", []byte("_blank"))
			}
		case *ast.AutoLink:
			if link.AutoLinkType == ast.AutoLinkURL {
				link.SetAttributeString("target", []byte("_blank"))
			}
		}
		return ast.WalkContinue, nil
	})
}
