// Package i18n looks up interface strings by key.
package i18n

import (
	"embed"
	"fmt"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Fallback is consulted when a key is missing from the requested language.
const Fallback = "en"

//go:embed locales/*.yaml
var localeFiles embed.FS

// Catalog maps language -> key -> message. It is read-only after Load.
type Catalog struct {
	messages map[string]map[string]string
}

// Load parses the embedded catalogs.
func Load() (*Catalog, error) {
	entries, err := localeFiles.ReadDir("locales")
	if err != nil {
		return nil, err
	}

	c := &Catalog{messages: make(map[string]map[string]string, len(entries))}
	for _, e := range entries {
		name := e.Name()
		data, err := localeFiles.ReadFile(path.Join("locales", name))
		if err != nil {
			return nil, err
		}

		var msgs map[string]string
		if err := yaml.Unmarshal(data, &msgs); err != nil {
			return nil, fmt.Errorf("parse catalog %s: %w", name, err)
		}
		c.messages[strings.TrimSuffix(name, path.Ext(name))] = msgs
	}

	if _, ok := c.messages[Fallback]; !ok {
		return nil, fmt.Errorf("missing %s catalog", Fallback)
	}
	return c, nil
}

// MustLoad is Load for program start-up.
func MustLoad() *Catalog {
	c, err := Load()
	if err != nil {
		panic(err)
	}
	return c
}

// Languages lists the available languages, sorted.
func (c *Catalog) Languages() []string {
	out := make([]string, 0, len(c.messages))
	for lang := range c.messages {
		out = append(out, lang)
	}
	sort.Strings(out)
	return out
}

// Translate returns the message for key in lang, then in Fallback, then the
// key itself.
func (c *Catalog) Translate(lang, key string) string {
	if msg, ok := c.messages[lang][key]; ok {
		return msg
	}
	if msg, ok := c.messages[Fallback][key]; ok {
		return msg
	}
	return key
}

// Messages returns every key for lang with fallbacks applied, for handing
// to the page.
func (c *Catalog) Messages(lang string) map[string]string {
	out := make(map[string]string, len(c.messages[Fallback]))
	for k := range c.messages[Fallback] {
		out[k] = c.Translate(lang, k)
	}
	return out
}
