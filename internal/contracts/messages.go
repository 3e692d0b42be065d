package contracts

import "encoding/json"

// Messages sent from the server to the page.
const (
	// MessageTypeInput replaces the content of the input surface.
	MessageTypeInput = "input"
	// MessageTypeFocus focuses the input surface.
	MessageTypeFocus = "focus"
	// MessageTypeFragment asks the page to set its URL fragment.
	MessageTypeFragment = "fragment"
	// MessageTypeClearControl toggles the clear button.
	MessageTypeClearControl = "clear_control"
	// MessageTypeView fills a result region and shows it.
	MessageTypeView = "view"
	// MessageTypeViewClear empties a result region and hides it.
	MessageTypeViewClear = "view_clear"
	// MessageTypePanel opens or closes the preferences panel.
	MessageTypePanel = "panel"
	// MessageTypeMessages swaps the interface strings.
	MessageTypeMessages = "messages"
	// MessageTypeNotify shows a transient notification.
	MessageTypeNotify = "notify"
	// MessageTypeRelay carries a command protocol payload to or from
	// another browsing context the page talks to.
	MessageTypeRelay = "relay"
	// MessageTypeCopyText asks the page to put text on its clipboard.
	MessageTypeCopyText = "copy_text"
)

// Messages sent from the page to the server.
const (
	MessageTypeViewSwitch  = "view"
	MessageTypePrefs       = "prefs"
	MessageTypeTogglePrefs = "toggle_prefs"
	MessageTypeClear       = "clear"
	MessageTypeCopy        = "copy"
	MessageTypeSave        = "save"
	MessageTypeExecute     = "execute"
	MessageTypeNavigate    = "navigate"
	MessageTypeCopyResult  = "copy_result"
)

// NoticeKind selects the notification style.
type NoticeKind string

const (
	NoticeOK    NoticeKind = "ok"
	NoticeError NoticeKind = "error"
)

// IncomingMessage is the minimal envelope used to route page messages.
type IncomingMessage struct {
	Type string `json:"type"`
}

// TextMessage carries text in either direction (input, execute).
type TextMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// FocusMessage has no payload.
type FocusMessage struct {
	Type string `json:"type"`
}

// FragmentMessage carries a URL fragment in either direction.
type FragmentMessage struct {
	Type     string `json:"type"`
	Fragment string `json:"fragment"`
}

// ClearControlMessage shows or hides the clear button.
type ClearControlMessage struct {
	Type    string `json:"type"`
	Visible bool   `json:"visible"`
}

// ViewMessage carries region content. Mode is "text", "html" or "diff".
// Content is plain text for "text" and an HTML fragment otherwise.
type ViewMessage struct {
	Type    string `json:"type"`
	Mode    string `json:"mode"`
	Content string `json:"content,omitempty"`
}

// PanelMessage opens or closes the preferences panel. Prefs is the
// prefs.Prefs value encoded as JSON.
type PanelMessage struct {
	Type  string          `json:"type"`
	Open  bool            `json:"open"`
	Prefs json.RawMessage `json:"prefs,omitempty"`
}

// PrefsMessage submits edited preferences from the page.
type PrefsMessage struct {
	Type  string          `json:"type"`
	Prefs json.RawMessage `json:"prefs"`
}

// MessagesMessage carries the interface strings for Lang.
type MessagesMessage struct {
	Type     string            `json:"type"`
	Lang     string            `json:"lang"`
	Messages map[string]string `json:"messages"`
}

// NotifyMessage shows a notification.
type NotifyMessage struct {
	Type        string     `json:"type"`
	Text        string     `json:"text"`
	Kind        NoticeKind `json:"kind"`
	AutoDismiss bool       `json:"autoDismiss"`
}

// RelayMessage wraps a raw command protocol payload. ID is assigned by the
// page so it can hand the reply to the right context. A reply without Data
// only releases the id; the page posts nothing.
type RelayMessage struct {
	Type string `json:"type"`
	ID   int64  `json:"id"`
	Data string `json:"data,omitempty"`
}

// CopyTextMessage carries the text the page should copy.
type CopyTextMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// CopyResultMessage reports whether the page managed to copy.
type CopyResultMessage struct {
	Type string `json:"type"`
	OK   bool   `json:"ok"`
}
