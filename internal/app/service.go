package app

import (
	"log/slog"
	"time"

	"typograf-live/internal/contracts"
	"typograf-live/internal/filesave"
	"typograf-live/internal/i18n"
	"typograf-live/internal/prefs"
	"typograf-live/internal/typograf"
	"typograf-live/internal/urlstate"
	"typograf-live/internal/view"
)

// Transformer is the text transformation engine.
type Transformer interface {
	Execute(text string, opts typograf.Options) string
}

// Clipboard is the platform clipboard.
type Clipboard interface {
	WriteAll(text string) error
}

// Saver stores the rendered result and reports the outcome through n.
type Saver interface {
	Save(text, fallback string, n filesave.Notifier)
}

// Surface is everything a controller drives in the page: the input area,
// the result regions, the URL fragment, the preferences panel and the
// notification area.
type Surface interface {
	view.Surface
	SetInput(text string)
	FocusInput()
	SetFragment(fragment string)
	SetClearVisible(visible bool)
	SetPanel(open bool, p prefs.Prefs)
	SetMessages(lang string, messages map[string]string)
	Notify(text string, kind contracts.NoticeKind, autoDismiss bool)
}

// ClipboardSurface is a Surface that copies on the client side. The outcome
// must come back as an EventCopyResult; Deps.Clipboard is not used.
type ClipboardSurface interface {
	Surface
	CopyText(text string)
}

// Deps are the collaborators shared by every session.
type Deps struct {
	Engine    Transformer
	Prefs     *prefs.Store
	Catalog   *i18n.Catalog
	Renderers view.Renderers
	Clipboard Clipboard
	Saver     Saver

	Debounce      time.Duration
	FragmentLimit int
	Logger        *slog.Logger
}

// Service coordinates the shared collaborators and builds one Controller
// per page session.
type Service struct {
	deps Deps
}

func NewService(deps Deps) *Service {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.FragmentLimit <= 0 {
		deps.FragmentLimit = urlstate.DefaultLimit
	}
	return &Service{deps: deps}
}

// Options returns engine options from the current preferences.
func (s *Service) Options() typograf.Options {
	return s.deps.Prefs.Get().Options()
}

// Engine returns the shared engine.
func (s *Service) Engine() Transformer {
	return s.deps.Engine
}

// NewController returns a controller bound to surface. Run must be called
// to start it.
func (s *Service) NewController(surface Surface, env Env) *Controller {
	return newController(s.deps, surface, env)
}
