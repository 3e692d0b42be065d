package httpserver

import (
	"encoding/json"
	"errors"
	"log/slog"
	"sync"

	"github.com/gorilla/websocket"

	"typograf-live/internal/app"
	"typograf-live/internal/contracts"
	"typograf-live/internal/prefs"
	"typograf-live/internal/protocol"
	"typograf-live/internal/view"
)

const outboundQueueSize = 64

var errSessionClosed = errors.New("session closed")

// simpleEvents maps payload-free page messages to controller events.
var simpleEvents = map[string]app.EventKind{
	contracts.MessageTypeTogglePrefs: app.EventTogglePrefs,
	contracts.MessageTypeClear:       app.EventClear,
	contracts.MessageTypeCopy:        app.EventCopy,
	contracts.MessageTypeSave:        app.EventSave,
}

var _ app.ClipboardSurface = (*session)(nil)

// session is one page connection. It implements app.Surface by queueing
// JSON messages for a single writer goroutine.
type session struct {
	id     string
	conn   *websocket.Conn
	logger *slog.Logger

	out    chan any
	closed chan struct{}
	once   sync.Once
}

func newSession(id string, conn *websocket.Conn, logger *slog.Logger) *session {
	return &session{
		id:     id,
		conn:   conn,
		logger: logger,
		out:    make(chan any, outboundQueueSize),
		closed: make(chan struct{}),
	}
}

// writeLoop owns all writes to conn.
func (s *session) writeLoop() {
	for {
		select {
		case v := <-s.out:
			if !writeJSON(s.conn, v) {
				s.close()
				return
			}
		case <-s.closed:
			return
		}
	}
}

func (s *session) close() {
	s.once.Do(func() {
		close(s.closed)
		_ = s.conn.Close()
	})
}

func (s *session) send(v any) bool {
	select {
	case <-s.closed:
		return false
	default:
	}
	select {
	case s.out <- v:
		return true
	case <-s.closed:
		return false
	}
}

func (s *session) ShowView(mode view.Mode, content string) {
	s.send(contracts.ViewMessage{Type: contracts.MessageTypeView, Mode: mode.String(), Content: content})
}

func (s *session) ClearView(mode view.Mode) {
	s.send(contracts.ViewMessage{Type: contracts.MessageTypeViewClear, Mode: mode.String()})
}

func (s *session) SetInput(text string) {
	s.send(contracts.TextMessage{Type: contracts.MessageTypeInput, Text: text})
}

func (s *session) FocusInput() {
	s.send(contracts.FocusMessage{Type: contracts.MessageTypeFocus})
}

func (s *session) SetFragment(fragment string) {
	s.send(contracts.FragmentMessage{Type: contracts.MessageTypeFragment, Fragment: fragment})
}

func (s *session) SetClearVisible(visible bool) {
	s.send(contracts.ClearControlMessage{Type: contracts.MessageTypeClearControl, Visible: visible})
}

func (s *session) SetPanel(open bool, p prefs.Prefs) {
	msg := contracts.PanelMessage{Type: contracts.MessageTypePanel, Open: open}
	if open {
		raw, err := json.Marshal(p)
		if err != nil {
			s.logger.Error("encode prefs", "error", err)
		}
		msg.Prefs = raw
	}
	s.send(msg)
}

func (s *session) SetMessages(lang string, messages map[string]string) {
	s.send(contracts.MessagesMessage{Type: contracts.MessageTypeMessages, Lang: lang, Messages: messages})
}

func (s *session) Notify(text string, kind contracts.NoticeKind, autoDismiss bool) {
	s.send(contracts.NotifyMessage{Type: contracts.MessageTypeNotify, Text: text, Kind: kind, AutoDismiss: autoDismiss})
}

// CopyText lets the page copy into the user's own clipboard. The page answers
// with a copy_result message.
func (s *session) CopyText(text string) {
	s.send(contracts.CopyTextMessage{Type: contracts.MessageTypeCopyText, Text: text})
}

// relaySource routes a command protocol reply back to the browsing context
// the page received the request from.
type relaySource struct {
	s  *session
	id int64
}

func (r relaySource) PostMessage(payload []byte) error {
	ok := r.s.send(contracts.RelayMessage{Type: contracts.MessageTypeRelay, ID: r.id, Data: string(payload)})
	if !ok {
		return errSessionClosed
	}
	return nil
}

// route turns one page message into a controller event.
func (s *session) route(raw []byte, ctrl *app.Controller, handler *protocol.Handler) {
	var envelope contracts.IncomingMessage
	if err := json.Unmarshal(raw, &envelope); err != nil {
		s.logger.Debug("malformed page message", "error", err)
		return
	}

	if kind, ok := simpleEvents[envelope.Type]; ok {
		ctrl.Post(app.Event{Kind: kind})
		return
	}

	switch envelope.Type {
	case contracts.MessageTypeInput, contracts.MessageTypeExecute:
		var msg contracts.TextMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			return
		}
		kind := app.EventInput
		if envelope.Type == contracts.MessageTypeExecute {
			kind = app.EventExecute
		}
		ctrl.Post(app.Event{Kind: kind, Text: msg.Text})

	case contracts.MessageTypeViewSwitch:
		var msg contracts.ViewMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			return
		}
		mode, ok := view.ParseMode(msg.Mode)
		if !ok {
			s.logger.Debug("unknown view mode", "mode", msg.Mode)
			return
		}
		ctrl.Post(app.Event{Kind: app.EventViewSwitch, Mode: mode})

	case contracts.MessageTypePrefs:
		var msg contracts.PrefsMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			return
		}
		var p prefs.Prefs
		if err := json.Unmarshal(msg.Prefs, &p); err != nil {
			s.logger.Debug("malformed prefs", "error", err)
			return
		}
		ctrl.Post(app.Event{Kind: app.EventPrefsEdit, Prefs: p})

	case contracts.MessageTypeNavigate:
		var msg contracts.FragmentMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			return
		}
		ctrl.Post(app.Event{Kind: app.EventNavigate, Fragment: msg.Fragment})

	case contracts.MessageTypeRelay:
		var msg contracts.RelayMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			return
		}
		if !handler.Handle(relaySource{s: s, id: msg.ID}, []byte(msg.Data)) {
			// Release the id so the page drops its reference to the sender.
			s.send(contracts.RelayMessage{Type: contracts.MessageTypeRelay, ID: msg.ID})
		}

	case contracts.MessageTypeCopyResult:
		var msg contracts.CopyResultMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			return
		}
		ctrl.Post(app.Event{Kind: app.EventCopyResult, Failed: !msg.OK})
	}
}

// writeJSON writes a JSON message and reports whether the connection is usable.
func writeJSON(conn *websocket.Conn, v any) bool {
	if err := conn.WriteJSON(v); err != nil {
		_ = conn.Close()
		return false
	}
	return true
}
