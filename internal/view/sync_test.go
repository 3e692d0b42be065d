package view

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"typograf-live/internal/state"
)

type call struct {
	op      string
	mode    Mode
	content string
}

type fakeSurface struct {
	calls []call
}

func (f *fakeSurface) ShowView(mode Mode, content string) {
	f.calls = append(f.calls, call{op: "show", mode: mode, content: content})
}

func (f *fakeSurface) ClearView(mode Mode) {
	f.calls = append(f.calls, call{op: "clear", mode: mode})
}

type countingRenderers struct {
	markup [][]string
	diff   [][]string
}

func (c *countingRenderers) renderers() Renderers {
	return Renderers{
		Markup: func(text string) string {
			c.markup = append(c.markup, []string{text})
			return "<m>" + text + "</m>"
		},
		Diff: func(before, after string) string {
			c.diff = append(c.diff, []string{before, after})
			return "<d>" + before + "|" + after + "</d>"
		},
	}
}

func TestSyncRendersOnlyActiveView(t *testing.T) {
	surface := &fakeSurface{}
	rec := &countingRenderers{}
	s := New(surface, rec.renderers(), Text)

	assert.True(t, s.Sync(state.Snapshot{Input: "abc", Output: "abcd", Rev: 1}))
	assert.Equal(t, []call{{op: "show", mode: Text, content: "abcd"}}, surface.calls)
	assert.Empty(t, rec.markup)
	assert.Empty(t, rec.diff)
}

func TestSyncSkipsAlreadyRenderedSnapshot(t *testing.T) {
	surface := &fakeSurface{}
	rec := &countingRenderers{}
	s := New(surface, rec.renderers(), Markup)

	snap := state.Snapshot{Input: "a", Output: "b", Rev: 7}
	assert.True(t, s.Sync(snap))
	assert.False(t, s.Sync(snap))
	assert.Len(t, rec.markup, 1)

	assert.True(t, s.Sync(state.Snapshot{Input: "a", Output: "c", Rev: 8}))
	assert.Len(t, rec.markup, 2)
}

func TestSwitchToDiffUsesExistingSnapshot(t *testing.T) {
	surface := &fakeSurface{}
	rec := &countingRenderers{}
	s := New(surface, rec.renderers(), Text)

	snap := state.Snapshot{Input: "abc", Output: "abcd", Rev: 1}
	s.Sync(snap)
	surface.calls = nil

	s.Switch(Diff, snap)

	assert.Equal(t, Diff, s.Active())
	assert.Equal(t, [][]string{{"abc", "abcd"}}, rec.diff)
	assert.Empty(t, rec.markup, "markup renderer must not run while hidden")
	assert.Equal(t, []call{
		{op: "clear", mode: Text},
		{op: "clear", mode: Markup},
		{op: "show", mode: Diff, content: "<d>abc|abcd</d>"},
	}, surface.calls)
}

func TestSwitchForgetsHiddenRegions(t *testing.T) {
	surface := &fakeSurface{}
	rec := &countingRenderers{}
	s := New(surface, rec.renderers(), Markup)

	snap := state.Snapshot{Input: "x", Output: "y", Rev: 3}
	s.Sync(snap)
	s.Switch(Text, snap)
	s.Switch(Markup, snap)

	// The markup region was cleared in between, so it is rendered again.
	assert.Len(t, rec.markup, 2)
}

func TestRefreshAlwaysRenders(t *testing.T) {
	surface := &fakeSurface{}
	s := New(surface, (&countingRenderers{}).renderers(), Text)

	snap := state.Snapshot{Output: "z", Rev: 1}
	s.Sync(snap)
	s.Refresh(snap)
	assert.Len(t, surface.calls, 2)
}

func TestParseMode(t *testing.T) {
	for _, m := range Modes {
		got, ok := ParseMode(m.String())
		assert.True(t, ok)
		assert.Equal(t, m, got)
	}
	_, ok := ParseMode("pdf")
	assert.False(t, ok)
}
