package render

import (
	_ "embed"
	"encoding/json"
	"html"
	"strings"
)

//go:embed page.html
var pageTemplate string

// PageData fills the page shell.
type PageData struct {
	Lang      string
	Mobile    bool
	Messages  map[string]string
	Locales   []string
	MarkupCSS string
}

// RenderShell returns the editor page. Results are delivered later over the
// websocket, so the shell carries no text.
func RenderShell(d PageData) (string, error) {
	messages, err := json.Marshal(d.Messages)
	if err != nil {
		return "", err
	}

	bodyClass := "page"
	if d.Mobile {
		bodyClass += " page_is-mobile"
	}

	var options strings.Builder
	for _, l := range d.Locales {
		v := html.EscapeString(l)
		options.WriteString(`<option value="` + v + `">` + v + `</option>`)
	}

	r := strings.NewReplacer(
		"{{LANG}}", html.EscapeString(d.Lang),
		"{{BODY_CLASS}}", bodyClass,
		"{{MESSAGES}}", string(messages),
		"{{LOCALE_OPTIONS}}", options.String(),
		"{{MARKUP_CSS}}", d.MarkupCSS,
	)
	return r.Replace(pageTemplate), nil
}

// IsMobileUserAgent reports whether ua looks like a phone or tablet
// browser. The layout is chosen once per page load.
func IsMobileUserAgent(ua string) bool {
	for _, marker := range []string{"Mobi", "Android", "iPhone", "iPad", "iPod", "Opera Mini"} {
		if strings.Contains(ua, marker) {
			return true
		}
	}
	return false
}
