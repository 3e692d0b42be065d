package main

import (
	"errors"
	"io"
	"log/slog"

	"github.com/atotto/clipboard"

	"typograf-live/internal/app"
	"typograf-live/internal/config"
	"typograf-live/internal/filesave"
	"typograf-live/internal/i18n"
	"typograf-live/internal/logging"
	"typograf-live/internal/prefs"
	"typograf-live/internal/protocol"
	"typograf-live/internal/render"
	httpserver "typograf-live/internal/transport/http"
	"typograf-live/internal/typograf"
	"typograf-live/internal/view"
)

var errClipboardUnsupported = errors.New("clipboard not supported on this system")

// systemClipboard is the platform clipboard.
type systemClipboard struct{}

func (systemClipboard) WriteAll(text string) error {
	if clipboard.Unsupported {
		return errClipboardUnsupported
	}
	return clipboard.WriteAll(text)
}

// application holds everything the subcommands share.
type application struct {
	cfg     *config.Config
	logger  *slog.Logger
	engine  *typograf.Engine
	prefs   *prefs.Store
	service *app.Service
	web     *httpserver.Server
}

func newApp(configPath string, logOut io.Writer) (*application, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	logger := logging.New(logOut, cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(logger)

	store := prefs.NewStore(cfg.Prefs.Path, prefs.Prefs{
		Locale: cfg.Prefs.Locale,
		Mode:   cfg.Prefs.Mode,
		LangUI: cfg.Prefs.LangUI,
	}, logger)
	if err := store.Load(); err != nil {
		logger.Warn("load prefs, using defaults", "path", cfg.Prefs.Path, "error", err)
	}

	catalog, err := i18n.Load()
	if err != nil {
		return nil, err
	}

	engine := typograf.New()
	markup := render.NewMarkup()

	service := app.NewService(app.Deps{
		Engine:  engine,
		Prefs:   store,
		Catalog: catalog,
		Renderers: view.Renderers{
			Markup: markup.Render,
			Diff:   render.Diff,
		},
		Clipboard:     systemClipboard{},
		Saver:         filesave.New(cfg.Save.Dir, logger),
		Debounce:      cfg.Debounce(),
		FragmentLimit: cfg.Editor.FragmentLimit,
		Logger:        logger,
	})

	web := httpserver.New(httpserver.Options{
		Addr:      cfg.Server.Addr,
		Service:   service,
		Protocol:  protocol.NewHandler(engine, service.Options, logger),
		Prefs:     store,
		Catalog:   catalog,
		Docs:      render.NewDocs(cfg.Docs.Dir),
		Locales:   typograf.Locales(),
		MarkupCSS: markup.CSS(),
		Logger:    logger,
	})

	return &application{
		cfg:     cfg,
		logger:  logger,
		engine:  engine,
		prefs:   store,
		service: service,
		web:     web,
	}, nil
}
