package httpserver

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"typograf-live/internal/app"
	"typograf-live/internal/contracts"
	"typograf-live/internal/i18n"
	"typograf-live/internal/prefs"
	"typograf-live/internal/protocol"
	"typograf-live/internal/render"
	"typograf-live/internal/typograf"
	"typograf-live/internal/view"
)

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()

	engine := typograf.New()
	store := prefs.NewStore("", prefs.Default(), nil)
	markup := render.NewMarkup()
	svc := app.NewService(app.Deps{
		Engine:  engine,
		Prefs:   store,
		Catalog: i18n.MustLoad(),
		Renderers: view.Renderers{
			Markup: markup.Render,
			Diff:   render.Diff,
		},
		Debounce: 20 * time.Millisecond,
	})

	srv := New(Options{
		Service:   svc,
		Protocol:  protocol.NewHandler(engine, svc.Options, nil),
		Prefs:     store,
		Catalog:   i18n.MustLoad(),
		Docs:      render.NewDocs(""),
		Locales:   typograf.Locales(),
		MarkupCSS: markup.CSS(),
	})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		_ = srv.Stop()
		ts.Close()
	})
	return srv, ts
}

func dial(t *testing.T, ts *httptest.Server, path string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + path
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

// readUntil reads page messages until match accepts one.
func readUntil(t *testing.T, conn *websocket.Conn, match func(raw []byte, typ string) bool) []byte {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	for {
		_, raw, err := conn.ReadMessage()
		require.NoError(t, err)

		var envelope contracts.IncomingMessage
		require.NoError(t, json.Unmarshal(raw, &envelope))
		if match(raw, envelope.Type) {
			return raw
		}
	}
}

func viewWith(mode, content string) func([]byte, string) bool {
	return func(raw []byte, typ string) bool {
		if typ != contracts.MessageTypeView {
			return false
		}
		var msg contracts.ViewMessage
		_ = json.Unmarshal(raw, &msg)
		return msg.Mode == mode && msg.Content == content
	}
}

func get(t *testing.T, ts *httptest.Server, path, ua string) (int, string) {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, ts.URL+path, nil)
	require.NoError(t, err)
	if ua != "" {
		req.Header.Set("User-Agent", ua)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestIndexPicksLayoutFromUserAgent(t *testing.T) {
	_, ts := newTestServer(t)

	code, body := get(t, ts, "/", "Mozilla/5.0 (X11; Linux x86_64)")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, `<html lang="en">`)
	assert.Contains(t, body, `<body class="page">`)

	_, body = get(t, ts, "/", "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) Mobile")
	assert.Contains(t, body, `<body class="page page_is-mobile">`)
}

func TestHealthAndAbout(t *testing.T) {
	_, ts := newTestServer(t)

	code, body := get(t, ts, "/healthz", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body)

	code, body = get(t, ts, "/about?lang=ru", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, `<html lang="ru">`)
	assert.Contains(t, body, "<h1")
}

func TestSessionRestoresFragmentAndTransformsInput(t *testing.T) {
	_, ts := newTestServer(t)
	conn := dial(t, ts, "/ws?fragment=%23!text%3DWait...")

	readUntil(t, conn, func(raw []byte, typ string) bool {
		if typ != contracts.MessageTypeInput {
			return false
		}
		var msg contracts.TextMessage
		_ = json.Unmarshal(raw, &msg)
		return msg.Text == "Wait..."
	})
	readUntil(t, conn, viewWith("text", "Wait…"))

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "input", "text": "(c) 2024"}))
	readUntil(t, conn, func(raw []byte, typ string) bool {
		if typ != contracts.MessageTypeFragment {
			return false
		}
		var msg contracts.FragmentMessage
		_ = json.Unmarshal(raw, &msg)
		return msg.Fragment == "#!text=(c)%202024"
	})
	readUntil(t, conn, viewWith("text", "© 2024"))

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "view", "mode": "diff"}))
	raw := readUntil(t, conn, func(_ []byte, typ string) bool { return typ == contracts.MessageTypeView })
	var msg contracts.ViewMessage
	require.NoError(t, json.Unmarshal(raw, &msg))
	assert.Equal(t, "diff", msg.Mode)
	assert.Contains(t, msg.Content, "diff__ins")
}

func TestRelayAnswersCommandProtocol(t *testing.T) {
	_, ts := newTestServer(t)
	conn := dial(t, ts, "/ws")

	payload := `{"service":"typograf","command":"execute","text":"Wait..."}`
	require.NoError(t, conn.WriteJSON(contracts.RelayMessage{Type: "relay", ID: 7, Data: payload}))
	require.NoError(t, conn.WriteJSON(contracts.RelayMessage{Type: "relay", ID: 8, Data: `{"service":"other"}`}))

	raw := readUntil(t, conn, func(_ []byte, typ string) bool { return typ == contracts.MessageTypeRelay })
	var relay contracts.RelayMessage
	require.NoError(t, json.Unmarshal(raw, &relay))
	assert.Equal(t, int64(7), relay.ID)

	var reply protocol.Message
	require.NoError(t, json.Unmarshal([]byte(relay.Data), &reply))
	assert.Equal(t, protocol.Message{Service: "typograf", Command: "return", Text: "Wait…"}, reply)

	// The foreign payload gets an empty reply that only releases its id.
	raw = readUntil(t, conn, func(_ []byte, typ string) bool { return typ == contracts.MessageTypeRelay })
	var ack contracts.RelayMessage
	require.NoError(t, json.Unmarshal(raw, &ack))
	assert.Equal(t, contracts.RelayMessage{Type: "relay", ID: 8}, ack)
	assert.NotContains(t, string(raw), `"data"`)
}

func TestCopyRunsInThePage(t *testing.T) {
	_, ts := newTestServer(t)
	conn := dial(t, ts, "/ws?fragment=%23!text%3D3x4")
	readUntil(t, conn, viewWith("text", "3×4"))

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "copy"}))
	raw := readUntil(t, conn, func(_ []byte, typ string) bool { return typ == contracts.MessageTypeCopyText })
	var copyMsg contracts.CopyTextMessage
	require.NoError(t, json.Unmarshal(raw, &copyMsg))
	assert.Equal(t, "3×4", copyMsg.Text)

	require.NoError(t, conn.WriteJSON(contracts.CopyResultMessage{Type: "copy_result", OK: false}))
	raw = readUntil(t, conn, func(_ []byte, typ string) bool { return typ == contracts.MessageTypeNotify })
	var n contracts.NotifyMessage
	require.NoError(t, json.Unmarshal(raw, &n))
	assert.Equal(t, contracts.NoticeError, n.Kind)
	assert.Equal(t, "Copying is not supported here", n.Text)
}

func TestEmbedRepliesOnSameConnection(t *testing.T) {
	_, ts := newTestServer(t)
	conn := dial(t, ts, "/embed")

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	require.NoError(t, conn.WriteMessage(websocket.TextMessage,
		[]byte(`{"service":"typograf","command":"execute","text":"3x4"}`)))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)

	var reply protocol.Message
	require.NoError(t, json.Unmarshal(raw, &reply))
	assert.Equal(t, "return", reply.Command)
	assert.Equal(t, "3×4", reply.Text)
}

func TestStopClosesPageConnections(t *testing.T) {
	srv, ts := newTestServer(t)
	conn := dial(t, ts, "/ws")
	readUntil(t, conn, func(_ []byte, typ string) bool { return typ == contracts.MessageTypeView })
	require.Equal(t, 1, srv.Sessions())

	require.NoError(t, srv.Stop())
	assert.Equal(t, 0, srv.Sessions())

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}
