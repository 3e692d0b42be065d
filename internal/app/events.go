package app

import (
	"typograf-live/internal/prefs"
	"typograf-live/internal/view"
)

// EventKind names a reactive surface of the page.
type EventKind string

const (
	// EventInput reports the raw value of the input surface.
	EventInput EventKind = "input"
	// EventViewSwitch selects a result view.
	EventViewSwitch EventKind = "view"
	// EventPrefsEdit submits preferences edited in the panel.
	EventPrefsEdit EventKind = "prefs"
	// EventPrefsChanged is raised by the preferences store.
	EventPrefsChanged EventKind = "prefs_changed"
	// EventTogglePrefs opens or closes the preferences panel.
	EventTogglePrefs EventKind = "toggle_prefs"
	EventClear       EventKind = "clear"
	EventCopy        EventKind = "copy"
	// EventCopyResult reports a copy made by a ClipboardSurface.
	EventCopyResult EventKind = "copy_result"
	EventSave       EventKind = "save"
	// EventExecute is the explicit run action of the mobile layout.
	EventExecute EventKind = "execute"
	// EventNavigate reports the fragment after back/forward navigation.
	EventNavigate EventKind = "navigate"

	eventRecompute EventKind = "recompute"
	eventResume    EventKind = "resume"
)

// Event is a named page event with its payload. Only the fields relevant to
// Kind are set.
type Event struct {
	Kind     EventKind
	Text     string
	Mode     view.Mode
	Prefs    prefs.Prefs
	Fragment string
	// Failed is set on EventCopyResult when the copy did not happen.
	Failed bool

	done chan struct{}
}

// Env describes the page the controller serves. It is read once at start.
type Env struct {
	Mobile   bool
	Fragment string
}
