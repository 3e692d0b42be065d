// Package host exposes the transformer to Neovim as a remote plugin.
package host

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/neovim/go-client/nvim"
	"github.com/neovim/go-client/nvim/plugin"

	"typograf-live/internal/app"
	"typograf-live/internal/contracts"
	"typograf-live/internal/prefs"
	"typograf-live/internal/view"
)

const echoPrefix = "[typograf]"

var errStopped = errors.New("typograf controller stopped")

// WebEditor is the browser front-end the plugin can start on demand.
type WebEditor interface {
	Start() error
	URL() string
}

// Commands is a state container for Neovim command handlers. It drives one
// controller in the discrete-execute layout: the buffer is the input
// surface and every run writes the result back into it.
type Commands struct {
	service *app.Service
	web     WebEditor
	logger  *slog.Logger

	mu      sync.Mutex
	ctrl    *app.Controller
	cancel  context.CancelFunc
	surface *bufferSurface
}

func NewCommands(service *app.Service, web WebEditor, logger *slog.Logger) *Commands {
	if logger == nil {
		logger = slog.Default()
	}
	return &Commands{service: service, web: web, logger: logger}
}

// Register registers Neovim command handlers.
func Register(p *plugin.Plugin, c *Commands) error {
	p.Handle("poll", func() (string, error) {
		return "ok", nil
	})

	p.HandleCommand(&plugin.CommandOptions{
		Name: "TypografExecute",
	}, c.TypografExecute)

	p.HandleCommand(&plugin.CommandOptions{
		Name: "TypografCopy",
	}, c.TypografCopy)

	p.HandleCommand(&plugin.CommandOptions{
		Name: "TypografOpen",
	}, c.TypografOpen)

	return nil
}

// TypografExecute transforms the current buffer in place.
func (c *Commands) TypografExecute(v *nvim.Nvim) error {
	buf, err := v.CurrentBuffer()
	if err != nil {
		return err
	}

	lines, err := v.BufferLines(buf, 0, -1, true)
	if err != nil {
		return err
	}

	out, notices, err := c.Transform(string(bytes.Join(lines, []byte("\n"))))
	if err != nil {
		return err
	}
	if err := v.SetBufferLines(buf, 0, -1, true, splitLines(out)); err != nil {
		return err
	}
	return echo(v, notices)
}

// TypografCopy copies the last result to the system clipboard.
func (c *Commands) TypografCopy(v *nvim.Nvim) error {
	notices, err := c.run(app.Event{Kind: app.EventCopy})
	if err != nil {
		return err
	}
	return echo(v, notices)
}

// TypografOpen starts the web editor and prints its address.
func (c *Commands) TypografOpen(v *nvim.Nvim) error {
	if c.web == nil {
		return v.Command(fmt.Sprintf(`echom "%s web editor disabled"`, echoPrefix))
	}
	if err := c.web.Start(); err != nil {
		return err
	}
	return v.Command(fmt.Sprintf(`echom "%s editor: %s"`, echoPrefix, c.web.URL()))
}

// Transform runs text through the controller and returns the result with
// any notifications raised on the way.
func (c *Commands) Transform(text string) (string, []string, error) {
	notices, err := c.run(app.Event{Kind: app.EventExecute, Text: text})
	if err != nil {
		return "", nil, err
	}
	return c.surface.value(), notices, nil
}

// Stop shuts down the controller.
func (c *Commands) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ctrl == nil {
		return
	}
	c.cancel()
	<-c.ctrl.Done()
	c.ctrl = nil
}

func (c *Commands) run(ev app.Event) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ctrl == nil {
		ctx, cancel := context.WithCancel(context.Background())
		c.surface = &bufferSurface{}
		c.ctrl = c.service.NewController(c.surface, app.Env{Mobile: true})
		c.cancel = cancel
		go func(ctrl *app.Controller) {
			_ = ctrl.Run(ctx)
		}(c.ctrl)
	}

	if !c.ctrl.Do(ev) {
		// Start afresh on the next command.
		c.cancel()
		c.ctrl = nil
		return nil, fmt.Errorf("%w: %s not handled", errStopped, ev.Kind)
	}
	return c.surface.drain(), nil
}

func splitLines(text string) [][]byte {
	parts := strings.Split(text, "\n")
	lines := make([][]byte, len(parts))
	for i, p := range parts {
		lines[i] = []byte(p)
	}
	return lines
}

func echo(v *nvim.Nvim, notices []string) error {
	for _, n := range notices {
		msg := strings.ReplaceAll(n, `"`, `\"`)
		if err := v.Command(fmt.Sprintf(`echom "%s %s"`, echoPrefix, msg)); err != nil {
			return err
		}
	}
	return nil
}

// bufferSurface records what the controller shows. Handlers read it back
// after each event and apply it to Neovim on their own goroutine.
type bufferSurface struct {
	mu      sync.Mutex
	input   string
	notices []string
}

func (b *bufferSurface) SetInput(text string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.input = text
}

func (b *bufferSurface) Notify(text string, kind contracts.NoticeKind, _ bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if kind == contracts.NoticeError {
		text = "error: " + text
	}
	b.notices = append(b.notices, text)
}

func (b *bufferSurface) value() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.input
}

func (b *bufferSurface) drain() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.notices
	b.notices = nil
	return out
}

// The buffer has no result regions, fragment or panel.
func (b *bufferSurface) ShowView(view.Mode, string) {}
func (b *bufferSurface) ClearView(view.Mode) {}
func (b *bufferSurface) FocusInput() {}
func (b *bufferSurface) SetFragment(string) {}
func (b *bufferSurface) SetClearVisible(bool) {}
func (b *bufferSurface) SetPanel(bool, prefs.Prefs) {}
func (b *bufferSurface) SetMessages(string, map[string]string) {}
