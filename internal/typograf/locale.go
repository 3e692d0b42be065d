package typograf

import (
	"golang.org/x/text/language"
)

// DefaultLocale is used when a locale is empty or unsupported.
const DefaultLocale = "en-US"

type locale struct {
	name string

	outerOpen, outerClose string
	innerOpen, innerClose string

	// dash replaces " - " between words.
	dash string
}

var locales = map[string]locale{
	"en-US": {name: "en-US", outerOpen: "“", outerClose: "”", innerOpen: "‘", innerClose: "’", dash: "—"},
	"en-GB": {name: "en-GB", outerOpen: "‘", outerClose: "’", innerOpen: "“", innerClose: "”", dash: " – "},
	"ru":    {name: "ru", outerOpen: "«", outerClose: "»", innerOpen: "„", innerClose: "“", dash: "\u00a0— "},
	"uk":    {name: "uk", outerOpen: "«", outerClose: "»", innerOpen: "„", innerClose: "“", dash: "\u00a0— "},
	"be":    {name: "be", outerOpen: "«", outerClose: "»", innerOpen: "„", innerClose: "“", dash: "\u00a0— "},
	"de":    {name: "de", outerOpen: "„", outerClose: "“", innerOpen: "‚", innerClose: "‘", dash: "\u00a0– "},
	"fr":    {name: "fr", outerOpen: "«\u00a0", outerClose: "\u00a0»", innerOpen: "‹\u00a0", innerClose: "\u00a0›", dash: "\u00a0— "},
}

// Locales returns the supported locale names.
func Locales() []string {
	return []string{"en-US", "en-GB", "ru", "uk", "be", "de", "fr"}
}

// PrepareLocale maps a BCP 47 tag such as "ru-RU" or "en" onto a supported
// locale name, falling back to DefaultLocale.
func PrepareLocale(tag string) string {
	if tag == "" {
		return DefaultLocale
	}
	if _, ok := locales[tag]; ok {
		return tag
	}

	t, err := language.Parse(tag)
	if err != nil {
		return DefaultLocale
	}

	base, _ := t.Base()
	if base.String() == "en" {
		if region, conf := t.Region(); conf == language.Exact && region.String() == "GB" {
			return "en-GB"
		}
		return DefaultLocale
	}
	if _, ok := locales[base.String()]; ok {
		return base.String()
	}
	return DefaultLocale
}

func lookupLocale(name string) locale {
	if l, ok := locales[name]; ok {
		return l
	}
	return locales[DefaultLocale]
}
