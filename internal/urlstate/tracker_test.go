package urlstate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrackerTextSync(t *testing.T) {
	tr := NewTracker(0)

	frag, ok := tr.SyncText("a b")
	assert.True(t, ok)
	assert.Equal(t, "#!text=a%20b", frag)
	assert.Equal(t, frag, tr.Current())
}

func TestTrackerPrefsSuppressesTextSync(t *testing.T) {
	tr := NewTracker(DefaultLimit)
	tr.SyncText("before")

	assert.Equal(t, PrefsMarker, tr.EnterPrefs())
	assert.True(t, tr.PrefsOpen())

	_, ok := tr.SyncText("typed while prefs open")
	assert.False(t, ok)
	assert.Equal(t, PrefsMarker, tr.Current())

	assert.Equal(t, "", tr.LeavePrefs())
	assert.False(t, tr.PrefsOpen())

	frag, ok := tr.SyncText("after")
	assert.True(t, ok)
	assert.Equal(t, "#!text=after", frag)
}

func TestTrackerNeverHoldsBothMarkers(t *testing.T) {
	tr := NewTracker(DefaultLimit)
	steps := []func(){
		func() { tr.SyncText("x") },
		func() { tr.EnterPrefs() },
		func() { tr.SyncText("y") },
		func() { tr.LeavePrefs() },
		func() { tr.SyncText("z") },
		func() { tr.Observe(PrefsMarker) },
		func() { tr.Observe("#!text=q") },
	}
	for _, step := range steps {
		step()
		f := Parse(tr.Current())
		if tr.PrefsOpen() {
			assert.Equal(t, KindPrefs, f.Kind)
		} else {
			assert.NotEqual(t, KindPrefs, f.Kind)
		}
	}
}

func TestTrackerObserveIgnoresEcho(t *testing.T) {
	tr := NewTracker(DefaultLimit)
	frag, _ := tr.SyncText("mine")

	_, ok := tr.Observe(frag)
	assert.False(t, ok)

	f, ok := tr.Observe("#!text=theirs")
	assert.True(t, ok)
	assert.Equal(t, Fragment{Kind: KindText, Text: "theirs"}, f)

	f, ok = tr.Observe(PrefsMarker)
	assert.True(t, ok)
	assert.Equal(t, KindPrefs, f.Kind)
	assert.True(t, tr.PrefsOpen())

	tr.LeavePrefs()
	_, ok = tr.Observe("#")
	assert.False(t, ok)
}

func TestTrackerIgnoresLateEchoes(t *testing.T) {
	tr := NewTracker(DefaultLimit)
	a, _ := tr.SyncText("a")
	ab, _ := tr.SyncText("ab")
	abc, _ := tr.SyncText("abc")

	_, ok := tr.Observe(a)
	assert.False(t, ok, "echo of an earlier write")
	_, ok = tr.Observe(abc)
	assert.False(t, ok, "echo of the latest write")
	assert.Equal(t, abc, tr.Current())

	// The echo of ab was overtaken, so ab is now real navigation.
	f, ok := tr.Observe(ab)
	assert.True(t, ok)
	assert.Equal(t, Fragment{Kind: KindText, Text: "ab"}, f)
	assert.Equal(t, ab, tr.Current())
}

func TestTrackerRepeatedEchoOfCurrent(t *testing.T) {
	tr := NewTracker(DefaultLimit)
	tr.SyncText("a")
	ab, _ := tr.SyncText("ab")

	// Both hashchange events report the hash as it is when they fire.
	_, ok := tr.Observe(ab)
	assert.False(t, ok)
	_, ok = tr.Observe(ab)
	assert.False(t, ok)
}

func TestTrackerPendingIsBounded(t *testing.T) {
	tr := NewTracker(DefaultLimit)
	first, _ := tr.SyncText("0")
	for i := 1; i <= maxPending; i++ {
		tr.SyncText(string(rune('a' + i%26)) + string(rune('0'+i%10)))
	}
	assert.Len(t, tr.pending, maxPending)

	_, ok := tr.Observe(first)
	assert.True(t, ok, "dropped writes are treated as navigation")
}

func TestTrackerNavigationForgetsPending(t *testing.T) {
	tr := NewTracker(DefaultLimit)
	a, _ := tr.SyncText("a")
	tr.SyncText("ab")

	_, ok := tr.Observe("#!text=elsewhere")
	assert.True(t, ok)

	_, ok = tr.Observe(a)
	assert.True(t, ok, "pending writes are dropped after real navigation")
}
