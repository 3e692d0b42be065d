// Package prefs holds the user's transformation preferences: locale, HTML
// entity mode, rule toggles and the interface language.
package prefs

import (
	"slices"

	"typograf-live/internal/typograf"
)

// Prefs is a value type; the store hands out copies.
type Prefs struct {
	Locale string `yaml:"locale" json:"locale"`
	Mode   string `yaml:"mode" json:"mode"`
	LangUI string `yaml:"lang_ui" json:"langUI"`
	Rules  Rules  `yaml:"rules" json:"rules"`
}

// Rules lists rule names or patterns toggled away from their defaults.
type Rules struct {
	Enabled  []string `yaml:"enabled,omitempty" json:"enabled"`
	Disabled []string `yaml:"disabled,omitempty" json:"disabled"`
}

// Default returns the preferences used before anything is saved.
func Default() Prefs {
	return Prefs{
		Locale: "ru",
		Mode:   string(typograf.EntityDefault),
		LangUI: "en",
	}
}

// Options converts p to engine options.
func (p Prefs) Options() typograf.Options {
	return typograf.Options{
		Locale:       typograf.PrepareLocale(p.Locale),
		HTMLEntity:   typograf.ParseEntityMode(p.Mode),
		EnableRules:  slices.Clone(p.Rules.Enabled),
		DisableRules: slices.Clone(p.Rules.Disabled),
	}
}

// Equal reports whether p and o hold the same settings.
func (p Prefs) Equal(o Prefs) bool {
	return p.Locale == o.Locale &&
		p.Mode == o.Mode &&
		p.LangUI == o.LangUI &&
		slices.Equal(p.Rules.Enabled, o.Rules.Enabled) &&
		slices.Equal(p.Rules.Disabled, o.Rules.Disabled)
}

// AffectsOutput reports whether moving from p to o changes what the engine
// produces. A UI language switch alone does not.
func (p Prefs) AffectsOutput(o Prefs) bool {
	a, b := p, o
	a.LangUI, b.LangUI = "", ""
	return !a.Equal(b)
}

func (p Prefs) clone() Prefs {
	p.Rules.Enabled = slices.Clone(p.Rules.Enabled)
	p.Rules.Disabled = slices.Clone(p.Rules.Disabled)
	return p
}

func (p Prefs) normalized(defaults Prefs) Prefs {
	if p.Locale == "" {
		p.Locale = defaults.Locale
	}
	p.Mode = string(typograf.ParseEntityMode(p.Mode))
	if p.LangUI == "" {
		p.LangUI = defaults.LangUI
	}
	return p
}
