// Package protocol answers transformation requests sent by other browsing
// contexts over a shared postMessage-style channel.
//
// Request:  {"service":"typograf","command":"execute","text":"..."}
// Response: {"service":"typograf","command":"return","text":"..."}
//
// Anything else on the channel may belong to another protocol and is
// ignored without a reply. Requests carry no correlation id; a caller can
// only match a response to the context it asked.
package protocol

import (
	"encoding/json"
	"log/slog"

	"typograf-live/internal/typograf"
)

const (
	ServiceName    = "typograf"
	CommandExecute = "execute"
	CommandReturn  = "return"
)

// Message is the wire shape shared by requests and responses.
type Message struct {
	Service string `json:"service"`
	Command string `json:"command"`
	Text    string `json:"text"`
}

// Result is the outcome of Parse: either Request or Rejected.
type Result interface {
	isResult()
}

// Request is an accepted execute command.
type Request struct {
	Text string
}

// Rejected explains why a payload was ignored. It never reaches the peer.
type Rejected struct {
	Reason string
}

func (Request) isResult()  {}
func (Rejected) isResult() {}

type wireRequest struct {
	Service string  `json:"service"`
	Command string  `json:"command"`
	Text    *string `json:"text"`
}

// Parse narrows an arbitrary payload to a Request. It never panics.
func Parse(raw []byte) Result {
	var req wireRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return Rejected{Reason: "malformed payload"}
	}
	if req.Service != ServiceName {
		return Rejected{Reason: "foreign service"}
	}
	if req.Command != CommandExecute {
		return Rejected{Reason: "unknown command"}
	}
	if req.Text == nil {
		return Rejected{Reason: "missing text"}
	}
	return Request{Text: *req.Text}
}

// Source is the context a request came from. Replies go only there.
type Source interface {
	PostMessage(payload []byte) error
}

// Transformer is the engine the handler runs requests through.
type Transformer interface {
	Execute(text string, opts typograf.Options) string
}

// Handler is stateless between messages and may be shared by any number of
// sources concurrently.
type Handler struct {
	engine  Transformer
	options func() typograf.Options
	logger  *slog.Logger
}

// NewHandler returns a handler that reads options on every request, so a
// preference change applies to the very next message.
func NewHandler(engine Transformer, options func() typograf.Options, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{engine: engine, options: options, logger: logger}
}

// Handle processes one inbound payload from src and reports whether a
// response was sent.
func (h *Handler) Handle(src Source, raw []byte) (replied bool) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error("protocol handler panic", "panic", r)
			replied = false
		}
	}()

	switch res := Parse(raw).(type) {
	case Request:
		return h.reply(src, res)
	case Rejected:
		h.logger.Debug("protocol message ignored", "reason", res.Reason)
	}
	return false
}

func (h *Handler) reply(src Source, req Request) bool {
	out := Message{
		Service: ServiceName,
		Command: CommandReturn,
		Text:    h.engine.Execute(req.Text, h.options()),
	}

	payload, err := json.Marshal(out)
	if err != nil {
		h.logger.Error("encode protocol response", "error", err)
		return false
	}

	if err := src.PostMessage(payload); err != nil {
		h.logger.Debug("protocol response not delivered", "error", err)
		return false
	}
	return true
}
