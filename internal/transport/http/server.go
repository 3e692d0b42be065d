// Package httpserver serves the editor page and carries all traffic between
// the page and its session controller.
package httpserver

import (
	"context"
	"errors"
	"html"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"typograf-live/internal/app"
	"typograf-live/internal/i18n"
	"typograf-live/internal/prefs"
	"typograf-live/internal/protocol"
	"typograf-live/internal/render"
)

const shutdownTimeout = 2 * time.Second

// Options are the collaborators a Server needs.
type Options struct {
	Addr      string
	Service   *app.Service
	Protocol  *protocol.Handler
	Prefs     *prefs.Store
	Catalog   *i18n.Catalog
	Docs      *render.Docs
	Locales   []string
	MarkupCSS string
	Logger    *slog.Logger
}

// Server coordinates HTTP serving and one controller per page connection.
type Server struct {
	opts     Options
	logger   *slog.Logger
	router   chi.Router
	upgrader websocket.Upgrader

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	server   *http.Server
	listener net.Listener
	sessions map[string]*session
	wg       sync.WaitGroup
}

// New builds the router. Nothing listens until Start.
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		opts:     opts,
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
		sessions: make(map[string]*session),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleIndex)
	r.Get("/ws", s.handleWS)
	r.Get("/embed", s.handleEmbed)
	r.Get("/about", s.handleAbout)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	s.router = r
	return s
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start listens on the configured address and serves in the background.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.server != nil {
		return nil
	}

	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return err
	}
	s.listener = ln
	s.server = &http.Server{Handler: s.router, ReadHeaderTimeout: 10 * time.Second}

	go func(srv *http.Server) {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("http server stopped", "error", err)
		}
	}(s.server)

	s.logger.Info("listening", "url", s.urlLocked())
	return nil
}

// URL returns the browser URL of the editor.
func (s *Server) URL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.urlLocked()
}

func (s *Server) urlLocked() string {
	if s.listener != nil {
		return "http://" + s.listener.Addr().String()
	}
	return "http://" + s.opts.Addr
}

// Sessions returns the number of connected pages.
func (s *Server) Sessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Stop shuts down the HTTP server, closes every page connection and waits
// for their controllers to finish.
func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	s.mu.Lock()
	srv := s.server
	s.server = nil
	s.listener = nil
	s.mu.Unlock()

	var err error
	if srv != nil {
		err = srv.Shutdown(ctx)
	}

	// Hijacked connections are not closed by Shutdown.
	s.cancel()
	s.mu.Lock()
	for _, sess := range s.sessions {
		sess.close()
	}
	s.mu.Unlock()

	s.wg.Wait()
	return err
}

// handleIndex serves the page shell in the layout matching the client.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	p := s.opts.Prefs.Get()
	shell, err := render.RenderShell(render.PageData{
		Lang:      p.LangUI,
		Mobile:    render.IsMobileUserAgent(r.UserAgent()),
		Messages:  s.opts.Catalog.Messages(p.LangUI),
		Locales:   s.opts.Locales,
		MarkupCSS: s.opts.MarkupCSS,
	})
	if err != nil {
		s.logger.Error("render page", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(shell))
}

// handleAbout serves the about document in the requested or preferred
// interface language.
func (s *Server) handleAbout(w http.ResponseWriter, r *http.Request) {
	lang := r.URL.Query().Get("lang")
	if lang == "" {
		lang = s.opts.Prefs.Get().LangUI
	}

	body, err := s.opts.Docs.Render(lang)
	if err != nil {
		s.logger.Error("render about", "lang", lang, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(`<!doctype html><html lang="` + html.EscapeString(lang) +
		`"><head><meta charset="utf-8"><style>` + s.opts.MarkupCSS +
		`</style></head><body class="about">` + body + `</body></html>`))
}

// handleWS upgrades the connection and runs a controller for it until the
// page goes away.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	q := r.URL.Query()
	env := app.Env{
		Mobile:   q.Get("mobile") == "1",
		Fragment: q.Get("fragment"),
	}

	id := uuid.NewString()
	logger := s.logger.With("session", id)
	sess := newSession(id, conn, logger)
	ctrl := s.opts.Service.NewController(sess, env)

	if !s.register(sess) {
		sess.close()
		return
	}
	defer s.unregister(sess)

	ctx, cancel := context.WithCancel(s.ctx)
	defer cancel()

	go sess.writeLoop()
	go func() {
		_ = ctrl.Run(ctx)
	}()
	logger.Debug("page connected", "mobile", env.Mobile)

	// Block here until the connection closes or errors out.
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			break
		}
		sess.route(raw, ctrl, s.opts.Protocol)
	}

	cancel()
	sess.close()
	<-ctrl.Done()
	logger.Debug("page disconnected")
}

// handleEmbed accepts command protocol payloads directly. Each connection
// is one source context; replies go back on the same connection.
func (s *Server) handleEmbed(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	sess := newSession(uuid.NewString(), conn, s.logger)
	if !s.register(sess) {
		sess.close()
		return
	}
	defer s.unregister(sess)
	defer sess.close()

	src := embedSource{conn: conn}
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}
		s.opts.Protocol.Handle(src, raw)
	}
}

func (s *Server) register(sess *session) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ctx.Err() != nil {
		return false
	}
	s.sessions[sess.id] = sess
	s.wg.Add(1)
	return true
}

func (s *Server) unregister(sess *session) {
	s.mu.Lock()
	delete(s.sessions, sess.id)
	s.mu.Unlock()
	s.wg.Done()
}

// embedSource replies on the embed connection. Only the reading goroutine
// writes to it.
type embedSource struct {
	conn *websocket.Conn
}

func (e embedSource) PostMessage(payload []byte) error {
	return e.conn.WriteMessage(websocket.TextMessage, payload)
}
