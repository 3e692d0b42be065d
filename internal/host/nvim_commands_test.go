package host

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"typograf-live/internal/app"
	"typograf-live/internal/i18n"
	"typograf-live/internal/prefs"
	"typograf-live/internal/typograf"
)

type stubClipboard struct {
	text string
	err  error
}

func (s *stubClipboard) WriteAll(text string) error {
	if s.err != nil {
		return s.err
	}
	s.text = text
	return nil
}

func newCommands(t *testing.T, clip app.Clipboard) *Commands {
	t.Helper()
	svc := app.NewService(app.Deps{
		Engine:    typograf.New(),
		Prefs:     prefs.NewStore("", prefs.Default(), nil),
		Catalog:   i18n.MustLoad(),
		Clipboard: clip,
	})
	c := NewCommands(svc, nil, nil)
	t.Cleanup(c.Stop)
	return c
}

func TestTransformReturnsResult(t *testing.T) {
	c := newCommands(t, nil)

	out, notices, err := c.Transform(`"привет"`)
	require.NoError(t, err)
	assert.Equal(t, "«привет»", out)
	assert.Empty(t, notices)

	out, _, err = c.Transform("(c) 2024")
	require.NoError(t, err)
	assert.Equal(t, "© 2024", out)
}

func TestCopyUsesLastResult(t *testing.T) {
	clip := &stubClipboard{}
	c := newCommands(t, clip)

	_, _, err := c.Transform("Wait...")
	require.NoError(t, err)
	notices, err := c.run(app.Event{Kind: app.EventCopy})
	require.NoError(t, err)

	assert.Equal(t, "Wait…", clip.text)
	require.Len(t, notices, 1)
	assert.Equal(t, "Copied to clipboard", notices[0])
}

func TestCopyFailureIsReported(t *testing.T) {
	c := newCommands(t, &stubClipboard{err: errors.New("no display")})

	notices, err := c.run(app.Event{Kind: app.EventCopy})
	require.NoError(t, err)
	assert.Equal(t, []string{"error: Copying is not supported here"}, notices)
}

func TestTransformAfterControllerStopped(t *testing.T) {
	c := newCommands(t, nil)
	_, _, err := c.Transform("Wait...")
	require.NoError(t, err)

	// Stop the controller behind the command's back.
	c.cancel()
	<-c.ctrl.Done()

	out, _, err := c.Transform("(c) 2024")
	require.ErrorIs(t, err, errStopped)
	assert.Empty(t, out, "the previous result is not handed out again")

	out, _, err = c.Transform("(c) 2024")
	require.NoError(t, err)
	assert.Equal(t, "© 2024", out)
}

func TestSplitLines(t *testing.T) {
	assert.Equal(t, [][]byte{[]byte("a"), []byte(""), []byte("b")}, splitLines("a\n\nb"))
}
