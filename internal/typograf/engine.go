// Package typograf is a small typographic text transformer: it fixes
// spacing, punctuation, quotes and dashes according to a locale, then
// optionally rewrites special characters as HTML entities.
package typograf

import (
	"path"
	"strings"
)

// EntityMode selects how special characters appear in the output.
type EntityMode string

const (
	// EntityDefault emits UTF-8 except for invisible characters, which are
	// written as named entities.
	EntityDefault EntityMode = "default"
	// EntityName writes every known special character as a named entity.
	EntityName EntityMode = "name"
	// EntityDigit writes every known special character as a numeric entity.
	EntityDigit EntityMode = "digit"
)

// ParseEntityMode returns the mode named s, or EntityDefault.
func ParseEntityMode(s string) EntityMode {
	switch EntityMode(s) {
	case EntityName, EntityDigit:
		return EntityMode(s)
	default:
		return EntityDefault
	}
}

// Options configures one Execute call.
type Options struct {
	Locale     string
	HTMLEntity EntityMode

	// EnableRules and DisableRules hold rule names or path.Match patterns
	// such as "common/nbsp/*". Disable wins over Enable.
	EnableRules  []string
	DisableRules []string
}

// Rule is one text transformation step.
type Rule struct {
	Name string
	// Off marks rules that only run when enabled explicitly.
	Off   bool
	apply func(text string, loc locale) string
}

// Engine applies the registered rules in order. It is safe for concurrent
// use; Execute does not mutate the engine.
type Engine struct {
	rules []Rule
}

// New returns an engine with the built-in rule set.
func New() *Engine {
	return &Engine{rules: builtinRules()}
}

// Rules lists the registered rule names in execution order.
func (e *Engine) Rules() []Rule {
	out := make([]Rule, len(e.rules))
	copy(out, e.rules)
	return out
}

// Execute transforms text. It is a pure function of text and opts.
func (e *Engine) Execute(text string, opts Options) string {
	loc := lookupLocale(PrepareLocale(opts.Locale))

	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = decodeEntities(text)

	for _, r := range e.rules {
		if !ruleEnabled(r, opts) {
			continue
		}
		text = r.apply(text, loc)
	}

	return encodeEntities(text, opts.HTMLEntity)
}

func ruleEnabled(r Rule, opts Options) bool {
	if matchAny(opts.DisableRules, r.Name) {
		return false
	}
	if r.Off {
		return matchAny(opts.EnableRules, r.Name)
	}
	return true
}

func matchAny(patterns []string, name string) bool {
	for _, p := range patterns {
		if p == name || p == "*" {
			return true
		}
		if ok, err := path.Match(p, name); err == nil && ok {
			return true
		}
	}
	return false
}
