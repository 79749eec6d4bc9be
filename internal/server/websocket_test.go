package server

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/btengine/internal/config"
	"github.com/zeusync/btengine/internal/core/bt"
	"github.com/zeusync/btengine/internal/core/runner"
	"github.com/zeusync/btengine/internal/core/world"
)

func walkIn() bt.Task {
	return bt.NewSequence(
		&bt.MoveTo{Mover: world.Knight, Where: world.Entrance},
		&bt.MoveTo{Mover: world.Knight, Where: world.Hallway},
	)
}

func newTestServer(t *testing.T, cfg config.ServerConfig, scenario world.Snapshot) (*Server, string) {
	t.Helper()
	s := NewServer(cfg, runner.New(nil), walkIn(), scenario, nil)
	ts := httptest.NewServer(s.routes())
	t.Cleanup(ts.Close)
	return s, ts.URL
}

func dial(t *testing.T, base, query string) *websocket.Conn {
	t.Helper()
	u := "ws" + strings.TrimPrefix(base, "http") + "/ws" + query
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestWebSocketEvaluates(t *testing.T) {
	_, base := newTestServer(t, config.ServerConfig{}, world.Castle().Snapshot())
	conn := dial(t, base, "")

	require.NoError(t, conn.WriteJSON(Request{Debug: true}))
	var resp Response
	require.NoError(t, conn.ReadJSON(&resp))
	require.Empty(t, resp.Error)
	require.NotNil(t, resp.Report)
	assert.True(t, resp.Report.Result)
	assert.Equal(t, "Hallway", resp.Report.After.Characters["Knight"])
	assert.NotEmpty(t, resp.Report.Trace)
	first := resp.Report.SessionID

	// every request starts over from the scenario
	require.NoError(t, conn.WriteJSON(Request{Debug: false}))
	resp = Response{}
	require.NoError(t, conn.ReadJSON(&resp))
	require.NotNil(t, resp.Report)
	assert.True(t, resp.Report.Result)
	assert.Empty(t, resp.Report.Trace)
	assert.Equal(t, "Outside", resp.Report.Before.Characters["Knight"])
	assert.NotEqual(t, first, resp.Report.SessionID)
}

func TestWebSocketReportsEvaluationErrors(t *testing.T) {
	_, base := newTestServer(t, config.ServerConfig{}, world.Snapshot{})
	conn := dial(t, base, "")

	require.NoError(t, conn.WriteJSON(Request{}))
	var resp Response
	require.NoError(t, conn.ReadJSON(&resp))
	assert.Nil(t, resp.Report)
	assert.Contains(t, resp.Error, "precondition")
}

func TestWebSocketRejectsMalformedRequest(t *testing.T) {
	_, base := newTestServer(t, config.ServerConfig{}, world.Castle().Snapshot())
	conn := dial(t, base, "")

	for _, msg := range []string{"not json", `{"debug":"yes"}`, `{"verbose":true}`} {
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(msg)))
		var resp Response
		require.NoError(t, conn.ReadJSON(&resp), msg)
		assert.Nil(t, resp.Report, msg)
		assert.Contains(t, resp.Error, ErrInvalidMessage.Error(), msg)
	}

	// the connection stays usable
	require.NoError(t, conn.WriteJSON(Request{}))
	var resp Response
	require.NoError(t, conn.ReadJSON(&resp))
	require.NotNil(t, resp.Report)
	assert.True(t, resp.Report.Result)
}

func TestDecodeRequest(t *testing.T) {
	req, err := decodeRequest([]byte(`{"debug":true}`))
	require.NoError(t, err)
	assert.True(t, req.Debug)

	req, err = decodeRequest(nil)
	require.NoError(t, err)
	assert.False(t, req.Debug)

	_, err = decodeRequest([]byte("{"))
	assert.ErrorIs(t, err, ErrInvalidMessage)
}

func TestWebSocketToken(t *testing.T) {
	_, base := newTestServer(t, config.ServerConfig{Token: "supersecrettoken"}, world.Castle().Snapshot())
	u := "ws" + strings.TrimPrefix(base, "http") + "/ws"

	_, resp, err := websocket.DefaultDialer.Dial(u, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	_, _, err = websocket.DefaultDialer.Dial(u+"?token=invalid", nil)
	assert.Error(t, err)

	conn, _, err := websocket.DefaultDialer.Dial(u, http.Header{"Authorization": {"Bearer supersecrettoken"}})
	require.NoError(t, err)
	_ = conn.Close()

	dial(t, base, "?token=supersecrettoken")
}

func TestHealthAndTree(t *testing.T) {
	_, base := newTestServer(t, config.ServerConfig{}, world.Castle().Snapshot())

	res, err := http.Get(base + "/healthz")
	require.NoError(t, err)
	body, _ := io.ReadAll(res.Body)
	_ = res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "ok\n", string(body))

	res, err = http.Get(base + "/tree")
	require.NoError(t, err)
	defer func() { _ = res.Body.Close() }()
	doc, err := bt.LoadJSON(res.Body)
	require.NoError(t, err)
	root, err := doc.Build()
	require.NoError(t, err)
	assert.Equal(t, bt.Format(walkIn()), bt.Format(root))
}

func TestStartStop(t *testing.T) {
	cfg := config.ServerConfig{Host: "127.0.0.1", Port: 0, WriteTimeout: time.Second}
	s := NewServer(cfg, runner.New(nil), walkIn(), world.Castle().Snapshot(), nil)

	require.NoError(t, s.Start(context.Background()))
	assert.ErrorIs(t, s.Start(context.Background()), ErrServerAlreadyRunning)

	base := "http://" + s.Addr().String()
	conn := dial(t, base, "")
	require.NoError(t, conn.WriteJSON(Request{}))
	var resp Response
	require.NoError(t, conn.ReadJSON(&resp))
	assert.Equal(t, 1, s.ClientCount())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))

	_, _, err := conn.ReadMessage()
	assert.Error(t, err, "open connections are closed on stop")

	assert.ErrorIs(t, s.Stop(ctx), ErrServerNotRunning)
	assert.ErrorIs(t, s.Start(context.Background()), ErrServerClosed)
}
