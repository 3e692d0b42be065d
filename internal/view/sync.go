// Package view keeps the visible result region in step with the latest
// snapshot. Only the active region is ever rendered.
package view

import (
	"typograf-live/internal/state"
)

// Mode is one of the mutually exclusive result representations.
type Mode int

const (
	Text Mode = iota
	Markup
	Diff
)

// Modes lists every mode in display order.
var Modes = []Mode{Text, Markup, Diff}

// String returns the wire name of m.
func (m Mode) String() string {
	switch m {
	case Markup:
		return "html"
	case Diff:
		return "diff"
	default:
		return "text"
	}
}

// ParseMode accepts the wire names "text", "html" and "diff".
func ParseMode(s string) (Mode, bool) {
	switch s {
	case "text":
		return Text, true
	case "html":
		return Markup, true
	case "diff":
		return Diff, true
	}
	return Text, false
}

// Surface is the output area. ShowView replaces the content of a region and
// makes it visible; ClearView empties and hides it.
type Surface interface {
	ShowView(mode Mode, content string)
	ClearView(mode Mode)
}

// Renderers produce region content. Both are assumed to be expensive.
type Renderers struct {
	Markup func(text string) string
	Diff   func(before, after string) string
}

type memo struct {
	rev uint64
	ok  bool
}

// Synchronizer is not safe for concurrent use; it belongs to a controller's
// run loop.
type Synchronizer struct {
	surface   Surface
	renderers Renderers
	active    Mode
	rendered  [3]memo
}

// New returns a synchronizer showing mode.
func New(surface Surface, renderers Renderers, mode Mode) *Synchronizer {
	return &Synchronizer{surface: surface, renderers: renderers, active: mode}
}

// Active returns the visible mode.
func (s *Synchronizer) Active() Mode {
	return s.active
}

// Sync renders the active region for snap unless it already shows it.
// It reports whether anything was rendered.
func (s *Synchronizer) Sync(snap state.Snapshot) bool {
	m := s.rendered[s.active]
	if m.ok && m.rev == snap.Rev {
		return false
	}
	s.render(snap)
	return true
}

// Refresh renders the active region for snap unconditionally.
func (s *Synchronizer) Refresh(snap state.Snapshot) {
	s.render(snap)
}

// Switch clears the other regions, makes mode active and renders it from
// snap. No transformation runs.
func (s *Synchronizer) Switch(mode Mode, snap state.Snapshot) {
	for _, m := range Modes {
		s.rendered[m] = memo{}
		if m != mode {
			s.surface.ClearView(m)
		}
	}
	s.active = mode
	s.render(snap)
}

func (s *Synchronizer) render(snap state.Snapshot) {
	var content string
	switch s.active {
	case Markup:
		content = s.renderers.Markup(snap.Output)
	case Diff:
		content = s.renderers.Diff(snap.Input, snap.Output)
	default:
		content = snap.Output
	}
	s.surface.ShowView(s.active, content)
	s.rendered[s.active] = memo{rev: snap.Rev, ok: true}
}
