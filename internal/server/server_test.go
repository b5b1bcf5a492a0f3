// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

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
	"go.uber.org/zap"

	"github.com/emadadel4/Eterminal/internal/commands"
	"github.com/emadadel4/Eterminal/internal/render"
	"github.com/emadadel4/Eterminal/internal/storage"
)

func newTestServer(t *testing.T, opts Options) (*Server, *httptest.Server) {
	t.Helper()
	if opts.Records == nil {
		opts.Records = storage.NewRecords(storage.NewMemoryKV(),
			map[string]string{"yt": "https://www.youtube.com/"}, nil)
	}
	if opts.Version == "" {
		opts.Version = "test"
	}
	s := New(opts)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })

	var hello HelloMessage
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	require.NoError(t, conn.ReadJSON(&hello))
	require.Equal(t, "hello", hello.Type)
	require.NotEmpty(t, hello.Session)
	return conn
}

func sendKey(t *testing.T, conn *websocket.Conn, key, value string) UpdateMessage {
	t.Helper()
	require.NoError(t, conn.WriteJSON(ClientMessage{Type: "key", Key: key, Value: value}))
	var update UpdateMessage
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	require.NoError(t, conn.ReadJSON(&update))
	require.Equal(t, "update", update.Type)
	return update
}

// =============================================================================
// HTTP
// =============================================================================

func TestIndex(t *testing.T) {
	_, ts := newTestServer(t, Options{})

	resp, err := http.Get(ts.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	assert.Contains(t, string(body), `id="input"`)
	assert.Contains(t, string(body), "/static/term.js")
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	assert.NotEmpty(t, resp.Header.Get("Content-Security-Policy"))
}

func TestStaticAssets(t *testing.T) {
	_, ts := newTestServer(t, Options{})

	for _, name := range []string{"term.js", "term.css"} {
		resp, err := http.Get(ts.URL + "/static/" + name)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode, name)
	}

	resp, err := http.Get(ts.URL + "/nope")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestStylesheet_CoversLineClasses(t *testing.T) {
	_, ts := newTestServer(t, Options{})

	resp, err := http.Get(ts.URL + "/static/term.css")
	require.NoError(t, err)
	defer resp.Body.Close()
	css, _ := io.ReadAll(resp.Body)

	csp := resp.Header.Get("Content-Security-Policy")
	require.NotContains(t, csp, "unsafe-inline")

	lines := []render.Line{
		render.NewLine("boom", commands.SeverityError, 1),
		render.NewLine("careful", commands.SeverityWarning, 1.5),
		render.NewLine("fyi", commands.SeverityInfo, 1),
		render.NewLine("plain", commands.SeverityDefault, 0),
	}
	for _, line := range lines {
		html := line.HTML()
		assert.NotContains(t, html, "style=", "inline styles are blocked by the CSP")

		start := strings.Index(html, `class="`) + len(`class="`)
		end := strings.Index(html[start:], `"`)
		for _, class := range strings.Fields(html[start : start+end]) {
			if class == "line" {
				continue
			}
			assert.Contains(t, string(css), "."+class, "term.css has no rule for %s", class)
		}
	}
	assert.Regexp(t, `\.line\.level-error\s*\{\s*color:\s*red`, string(css))
	assert.Regexp(t, `\.line\.level-warning\s*\{\s*color:\s*orange`, string(css))
}

func TestHealth(t *testing.T) {
	_, ts := newTestServer(t, Options{Version: "1.2.3"})
	dial(t, ts)

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	var health HealthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, "1.2.3", health.Version)
	assert.Equal(t, int64(1), health.Sessions)
}

// =============================================================================
// WEBSOCKET
// =============================================================================

func TestWebSocket_Submit(t *testing.T) {
	_, ts := newTestServer(t, Options{})
	conn := dial(t, ts)

	update := sendKey(t, conn, "Enter", "print hello <b>world</b>")
	assert.Equal(t, "", update.Input)
	require.Len(t, update.Ops, 1)
	assert.Equal(t, "append", update.Ops[0].Op)
	assert.Contains(t, update.Ops[0].HTML, "hello &lt;b&gt;world&lt;/b&gt;")
}

func TestWebSocket_EchoesSequence(t *testing.T) {
	_, ts := newTestServer(t, Options{})
	conn := dial(t, ts)

	for _, seq := range []uint64{1, 2, 7} {
		require.NoError(t, conn.WriteJSON(ClientMessage{Type: "key", Key: "Tab", Value: "he", Seq: seq}))
		var update UpdateMessage
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
		require.NoError(t, conn.ReadJSON(&update))
		assert.Equal(t, seq, update.Seq)
		assert.Equal(t, "help ", update.Input)
	}
}

func TestStaticScript_GuardsInputBySequence(t *testing.T) {
	_, ts := newTestServer(t, Options{})

	resp, err := http.Get(ts.URL + "/static/term.js")
	require.NoError(t, err)
	defer resp.Body.Close()
	js, _ := io.ReadAll(resp.Body)

	assert.Contains(t, string(js), "seq: seq")
	assert.Contains(t, string(js), "msg.seq === seq")
}

func TestWebSocket_UnknownCommand(t *testing.T) {
	_, ts := newTestServer(t, Options{})
	conn := dial(t, ts)

	update := sendKey(t, conn, "Enter", "unknownxyz")
	require.Len(t, update.Ops, 1)
	assert.Contains(t, update.Ops[0].HTML, "Unknown command")
	assert.Contains(t, update.Ops[0].HTML, "level-error")
	assert.Contains(t, update.Ops[0].HTML, "<h5>")
}

func TestWebSocket_OpenAndClear(t *testing.T) {
	_, ts := newTestServer(t, Options{})
	conn := dial(t, ts)

	update := sendKey(t, conn, "Enter", "open yt")
	require.Len(t, update.Ops, 2)
	assert.Equal(t, Op{Op: "open", URL: "https://www.youtube.com/"}, update.Ops[0])
	assert.Equal(t, "append", update.Ops[1].Op)

	update = sendKey(t, conn, "Enter", "clear")
	assert.Equal(t, []Op{{Op: "clear"}}, update.Ops)
}

func TestWebSocket_HistoryAndCompletion(t *testing.T) {
	_, ts := newTestServer(t, Options{})
	conn := dial(t, ts)

	sendKey(t, conn, "Enter", "print one")
	sendKey(t, conn, "Enter", "print two")

	assert.Equal(t, "print two", sendKey(t, conn, "ArrowUp", "").Input)
	assert.Equal(t, "print one", sendKey(t, conn, "ArrowUp", "print two").Input)
	assert.Equal(t, "print two", sendKey(t, conn, "ArrowDown", "print one").Input)
	assert.Equal(t, "", sendKey(t, conn, "ArrowDown", "print two").Input)

	assert.Equal(t, "mycommands ", sendKey(t, conn, "Tab", "my").Input)

	update := sendKey(t, conn, "Tab", "c")
	assert.Equal(t, "c", update.Input)
	require.Len(t, update.Ops, 1)
	assert.Contains(t, update.Ops[0].HTML, "Possible commands: clear, cls")
}

func TestWebSocket_SharedStore(t *testing.T) {
	_, ts := newTestServer(t, Options{})

	first := dial(t, ts)
	sendKey(t, first, "Enter", "newurl go https://go.dev")

	second := dial(t, ts)
	update := sendKey(t, second, "Enter", "open go")
	require.NotEmpty(t, update.Ops)
	assert.Equal(t, "https://go.dev", update.Ops[0].URL)
}

func TestWebSocket_RateLimit(t *testing.T) {
	_, ts := newTestServer(t, Options{KeysPerSecond: 0.001, KeyBurst: 1})
	conn := dial(t, ts)

	sendKey(t, conn, "Enter", "print ok")
	update := sendKey(t, conn, "Enter", "print dropped")
	require.Len(t, update.Ops, 1)
	assert.Contains(t, update.Ops[0].HTML, MsgSlowDown)
	assert.Contains(t, update.Ops[0].HTML, "level-warning")
	assert.Equal(t, "print dropped", update.Input, "the typed input is kept")
}

func TestWebSocket_RejectsForeignOrigin(t *testing.T) {
	_, ts := newTestServer(t, Options{})
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"

	header := http.Header{"Origin": []string{"http://evil.example"}}
	_, resp, err := websocket.DefaultDialer.Dial(url, header)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestWebSocket_AllowedOrigin(t *testing.T) {
	_, ts := newTestServer(t, Options{AllowedOrigins: []string{"http://start.example"}})
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"

	header := http.Header{"Origin": []string{"http://start.example"}}
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	conn.Close()
}

func TestWebSocket_IgnoresBadFrames(t *testing.T) {
	_, ts := newTestServer(t, Options{})
	conn := dial(t, ts)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	require.NoError(t, conn.WriteJSON(map[string]string{"type": "other"}))

	update := sendKey(t, conn, "Enter", "print still alive")
	require.Len(t, update.Ops, 1)
	assert.Contains(t, update.Ops[0].HTML, "still alive")
}

// =============================================================================
// MIDDLEWARE
// =============================================================================

func TestChain_Order(t *testing.T) {
	var order []string
	mark := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}
	h := Chain(mark("a"), mark("b"))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		order = append(order, "handler")
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, []string{"a", "b", "handler"}, order)
}

func TestRecoveryMiddleware(t *testing.T) {
	h := RecoveryMiddleware(nopLogger())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	require.NotPanics(t, func() {
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRateLimitMiddleware(t *testing.T) {
	limiter := NewIPRateLimiter(0.001, 2, time.Minute)
	h := RateLimitMiddleware(limiter, nopLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	codes := make([]int, 3)
	for i := range codes {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.0.2.1:1234"
		h.ServeHTTP(rec, req)
		codes[i] = rec.Code
	}
	assert.Equal(t, []int{http.StatusNoContent, http.StatusNoContent, http.StatusTooManyRequests}, codes)

	other := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.2:1234"
	h.ServeHTTP(other, req)
	assert.Equal(t, http.StatusNoContent, other.Code, "limits are per IP")
	assert.Equal(t, 2, limiter.Len())
}

func TestClientIP_IgnoresForwardedHeaders(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "198.51.100.7:5555"
	req.Header.Set("X-Forwarded-For", "10.0.0.1")
	assert.Equal(t, "198.51.100.7", ClientIP(req))
}

func nopLogger() *zap.Logger { return zap.NewNop() }
