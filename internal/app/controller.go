// Package app wires the live editor: it keeps the input, the transformation
// result, the visible view and the URL fragment consistent while the user
// types.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"typograf-live/internal/contracts"
	"typograf-live/internal/prefs"
	"typograf-live/internal/schedule"
	"typograf-live/internal/state"
	"typograf-live/internal/urlstate"
	"typograf-live/internal/view"
)

const eventQueueSize = 64

var errNoClipboard = errors.New("clipboard unavailable")

// Controller owns one page session. All state below is touched only by the
// goroutine running Run; other goroutines talk to it through Post and Do.
type Controller struct {
	deps    Deps
	surface Surface
	env     Env
	logger  *slog.Logger

	store    *state.Store
	views    *view.Synchronizer
	fragment *urlstate.Tracker
	debounce *schedule.Debouncer

	input     string
	lastRaw   string
	seenRaw   bool
	panelOpen bool
	prefs     prefs.Prefs

	handlers map[EventKind]func(Event)
	events   chan Event
	done     chan struct{}
}

func newController(deps Deps, surface Surface, env Env) *Controller {
	c := &Controller{
		deps:     deps,
		surface:  surface,
		env:      env,
		logger:   deps.Logger,
		store:    state.NewStore(""),
		views:    view.New(surface, deps.Renderers, view.Text),
		fragment: urlstate.NewTracker(deps.FragmentLimit),
		events:   make(chan Event, eventQueueSize),
		done:     make(chan struct{}),
	}
	c.debounce = schedule.NewDebouncer(deps.Debounce, func() {
		c.Post(Event{Kind: eventRecompute})
	})

	c.handlers = map[EventKind]func(Event){
		EventInput:        c.onInput,
		EventViewSwitch:   c.onViewSwitch,
		EventPrefsEdit:    c.onPrefsEdit,
		EventPrefsChanged: c.onPrefsChanged,
		EventTogglePrefs:  c.onTogglePrefs,
		EventClear:        c.onClear,
		EventCopy:         c.onCopy,
		EventCopyResult:   c.onCopyResult,
		EventSave:         c.onSave,
		EventExecute:      c.onExecute,
		EventNavigate:     c.onNavigate,
		eventRecompute:    func(Event) { c.recompute() },
		eventResume:       c.onResume,
	}
	return c
}

// Run performs start-up, including one immediate computation, and then
// handles events until ctx is done.
func (c *Controller) Run(ctx context.Context) error {
	unsubscribe := c.deps.Prefs.Subscribe(func(p prefs.Prefs) {
		ev := Event{Kind: EventPrefsChanged, Prefs: p}
		// The store may call back from this very loop.
		select {
		case c.events <- ev:
		default:
			go c.Post(ev)
		}
	})
	defer unsubscribe()
	defer c.debounce.Stop()
	defer close(c.done)

	c.start()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-c.events:
			c.dispatch(ev)
		}
	}
}

// Post queues ev. It reports false once the controller has stopped.
func (c *Controller) Post(ev Event) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.events <- ev:
		return true
	case <-c.done:
		return false
	}
}

// Do queues ev and waits until it has been handled.
func (c *Controller) Do(ev Event) bool {
	ev.done = make(chan struct{})
	if !c.Post(ev) {
		return false
	}
	select {
	case <-ev.done:
		return true
	case <-c.done:
		return false
	}
}

// Snapshot returns the last computed input/output pair. Safe from any
// goroutine.
func (c *Controller) Snapshot() state.Snapshot {
	return c.store.Get()
}

// Done is closed when Run returns.
func (c *Controller) Done() <-chan struct{} {
	return c.done
}

func (c *Controller) dispatch(ev Event) {
	if h, ok := c.handlers[ev.Kind]; ok {
		h(ev)
	} else {
		c.logger.Debug("unhandled event", "kind", ev.Kind)
	}
	if ev.done != nil {
		close(ev.done)
	}
}

// later queues ev behind whatever is being handled now.
func (c *Controller) later(ev Event) {
	go c.Post(ev)
}

func (c *Controller) start() {
	c.prefs = c.deps.Prefs.Get()

	if c.env.Fragment != "" {
		c.fragment.Observe(c.env.Fragment)
	}
	if urlstate.Parse(c.env.Fragment).Kind == urlstate.KindPrefs {
		c.later(Event{Kind: EventTogglePrefs})
	}

	if !c.env.Mobile {
		c.setValue(urlstate.TextParam(c.env.Fragment))
	}

	c.surface.SetMessages(c.prefs.LangUI, c.messages(c.prefs.LangUI))
	c.recomputeNow()
}

// recompute runs the engine on the current input and repaints. The
// snapshot is only replaced when the pair actually changed.
func (c *Controller) recompute() {
	input := c.input
	output := c.deps.Engine.Execute(input, c.deps.Prefs.Get().Options())

	snap := c.store.Get()
	if snap.Rev == 0 || snap.Input != input || snap.Output != output {
		snap = c.store.Set(input, output)
	}

	if c.env.Mobile {
		c.input = output
		c.surface.SetInput(output)
		return
	}
	c.views.Sync(snap)
}

// recomputeNow supersedes any pending debounced recompute.
func (c *Controller) recomputeNow() {
	c.debounce.Cancel()
	c.recompute()
}

func (c *Controller) setValue(text string) {
	c.input = text
	// The next raw value is processed even if it equals text.
	c.seenRaw = false
	c.surface.SetInput(text)
	c.updateValue(text)
}

func (c *Controller) updateValue(text string) {
	if !c.env.Mobile {
		if frag, ok := c.fragment.SyncText(text); ok {
			c.surface.SetFragment(frag)
		}
	}
	c.surface.SetClearVisible(text != "")
}

func (c *Controller) onInput(ev Event) {
	if c.env.Mobile {
		c.input = ev.Text
		return
	}
	if c.seenRaw && ev.Text == c.lastRaw {
		return
	}
	c.seenRaw, c.lastRaw = true, ev.Text
	c.input = ev.Text

	c.updateValue(ev.Text)
	c.debounce.Trigger()
}

func (c *Controller) onViewSwitch(ev Event) {
	if c.env.Mobile {
		return
	}
	c.views.Switch(ev.Mode, c.store.Get())
}

func (c *Controller) onPrefsEdit(ev Event) {
	err := c.deps.Prefs.Replace(ev.Prefs)
	if err == nil {
		return
	}

	c.logger.Warn("save prefs", "error", err)
	c.surface.Notify(c.t("notSavedPrefs"), contracts.NoticeError, true)
	if c.panelOpen {
		// Put the form back to what is actually in effect.
		c.surface.SetPanel(true, c.deps.Prefs.Get())
	}
}

func (c *Controller) onPrefsChanged(ev Event) {
	prev := c.prefs
	c.prefs = ev.Prefs

	if prev.LangUI != ev.Prefs.LangUI {
		c.surface.SetMessages(ev.Prefs.LangUI, c.messages(ev.Prefs.LangUI))
	}
	if c.panelOpen {
		c.surface.SetPanel(true, ev.Prefs)
	}
	if prev.AffectsOutput(ev.Prefs) {
		c.recomputeNow()
	}
}

func (c *Controller) onTogglePrefs(Event) {
	if c.panelOpen {
		c.panelOpen = false
		c.surface.SetFragment(c.fragment.LeavePrefs())
		c.surface.SetPanel(false, c.prefs)
		c.later(Event{Kind: eventResume})
		return
	}

	c.panelOpen = true
	c.surface.SetFragment(c.fragment.EnterPrefs())
	c.surface.SetPanel(true, c.deps.Prefs.Get())
}

// onResume repaints after the panel closes. The snapshot is reused.
func (c *Controller) onResume(Event) {
	if c.panelOpen || c.env.Mobile {
		return
	}
	c.views.Sync(c.store.Get())
}

func (c *Controller) onClear(Event) {
	c.setValue("")
	c.surface.FocusInput()
	c.recomputeNow()
}

func (c *Controller) onCopy(Event) {
	if !c.env.Mobile {
		c.views.Switch(view.Text, c.store.Get())
	}

	text := c.store.Get().Output
	if cs, ok := c.surface.(ClipboardSurface); ok {
		cs.CopyText(text)
		return
	}

	err := c.copyText(text)
	if err != nil {
		c.logger.Debug("copy failed", "error", err)
	}
	c.notifyCopied(err == nil)
}

// onCopyResult reports the outcome of a copy made by the client.
func (c *Controller) onCopyResult(ev Event) {
	c.notifyCopied(!ev.Failed)
}

func (c *Controller) notifyCopied(ok bool) {
	if !ok {
		c.surface.Notify(c.t("notSupportCopy"), contracts.NoticeError, true)
		return
	}
	c.surface.Notify(c.t("copied"), contracts.NoticeOK, true)
}

func (c *Controller) copyText(text string) (err error) {
	if c.deps.Clipboard == nil {
		return errNoClipboard
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("clipboard: %v", r)
		}
	}()
	return c.deps.Clipboard.WriteAll(text)
}

func (c *Controller) onSave(Event) {
	fallback := c.t("notSupportSave")
	if c.deps.Saver == nil {
		c.surface.Notify(fallback, contracts.NoticeError, true)
		return
	}
	c.deps.Saver.Save(c.store.Get().Output, fallback, c.surface)
}

func (c *Controller) onExecute(ev Event) {
	if c.env.Mobile {
		c.input = ev.Text
	}
	c.recomputeNow()
}

func (c *Controller) onNavigate(ev Event) {
	f, ok := c.fragment.Observe(ev.Fragment)
	if !ok {
		return
	}

	if f.Kind == urlstate.KindPrefs {
		if !c.panelOpen {
			c.panelOpen = true
			c.surface.SetPanel(true, c.deps.Prefs.Get())
		}
		return
	}

	if c.panelOpen {
		c.panelOpen = false
		c.surface.SetPanel(false, c.prefs)
		c.later(Event{Kind: eventResume})
	}

	if c.env.Mobile || f.Kind != urlstate.KindText {
		return
	}
	if f.Text == urlstate.Truncate(c.input, c.deps.FragmentLimit) {
		return
	}

	c.input = f.Text
	c.seenRaw = false
	c.surface.SetInput(f.Text)
	c.surface.SetClearVisible(f.Text != "")
	c.recomputeNow()
}

func (c *Controller) t(key string) string {
	if c.deps.Catalog == nil {
		return key
	}
	return c.deps.Catalog.Translate(c.prefs.LangUI, key)
}

func (c *Controller) messages(lang string) map[string]string {
	if c.deps.Catalog == nil {
		return nil
	}
	return c.deps.Catalog.Messages(lang)
}
