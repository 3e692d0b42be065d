package urlstate

// maxPending bounds the writes remembered while their echoes are in flight.
// A write whose echo never arrives falls off the end.
const maxPending = 32

// Tracker remembers the fragments a session wrote so that the browser's
// echoes of those writes are not mistaken for user navigation. Echoes can
// arrive after later writes, so every write stays pending until its own echo
// (or a newer one) is observed. Current holds exactly one fragment, which
// keeps the two markers mutually exclusive.
type Tracker struct {
	limit   int
	current string
	prefs   bool
	pending []string
}

// NewTracker returns a tracker that encodes at most limit characters.
func NewTracker(limit int) *Tracker {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Tracker{limit: limit}
}

// Current returns the fragment the session believes is in the address bar.
func (t *Tracker) Current() string {
	return t.current
}

// PrefsOpen reports whether the preferences marker is active.
func (t *Tracker) PrefsOpen() bool {
	return t.prefs
}

// SyncText records the text marker for input and returns it. While the
// preferences marker is active nothing is written and ok is false.
func (t *Tracker) SyncText(input string) (fragment string, ok bool) {
	if t.prefs {
		return "", false
	}
	return t.write(EncodeText(input, t.limit)), true
}

// EnterPrefs switches to the preferences marker and returns it.
func (t *Tracker) EnterPrefs() string {
	t.prefs = true
	return t.write(PrefsMarker)
}

// LeavePrefs drops the preferences marker and returns the empty fragment.
func (t *Tracker) LeavePrefs() string {
	t.prefs = false
	return t.write("")
}

// write makes frag current. Rewriting the fragment already in the address
// bar produces no echo, so it is not remembered.
func (t *Tracker) write(frag string) string {
	if frag == t.current {
		return frag
	}
	t.current = frag
	t.pending = append(t.pending, frag)
	if n := len(t.pending); n > maxPending {
		t.pending = append(t.pending[:0], t.pending[n-maxPending:]...)
	}
	return frag
}

// Observe handles a fragment reported by the browser. It returns ok=false if
// raw is the echo of one of the tracker's own writes.
func (t *Tracker) Observe(raw string) (Fragment, bool) {
	if raw == "#" {
		raw = ""
	}

	// Echoes arrive in write order; older writes without an echo are stale.
	for i, p := range t.pending {
		if p == raw {
			t.pending = append(t.pending[:0], t.pending[i+1:]...)
			return Fragment{}, false
		}
	}
	if raw == t.current {
		return Fragment{}, false
	}

	t.pending = t.pending[:0]
	t.current = raw
	f := Parse(raw)
	t.prefs = f.Kind == KindPrefs
	return f, true
}
