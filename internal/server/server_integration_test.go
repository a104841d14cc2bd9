package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/store"
)

func newTestServer(t *testing.T) (*httptest.Server, *app.App, *Server) {
	t.Helper()

	st, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	_, err = st.Mudras().Seed(gesture.DefaultCatalog().Entries())
	require.NoError(t, err)

	a := app.New(app.Config{Store: st, Enabled: true})
	srv := New(Config{Store: st, App: a})
	ts := httptest.NewServer(srv)
	t.Cleanup(func() {
		srv.Close()
		ts.Close()
	})
	return ts, a, srv
}

func postFrame(t *testing.T, ts *httptest.Server, frame detector.Frame) *http.Response {
	t.Helper()
	body, err := json.Marshal(frame)
	require.NoError(t, err)
	resp, err := ts.Client().Post(ts.URL+"/api/frames", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	return resp
}

func TestAPI_FrameWorkflow(t *testing.T) {
	ts, a, _ := newTestServer(t)
	client := ts.Client()

	// 1. Push a frame
	resp := postFrame(t, ts, detector.Frame{Width: 640, Height: 480, Hands: []detector.Hand{detector.FistLandmarks()}})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result app.Result
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	resp.Body.Close()
	require.Len(t, result.Hands, 1)
	assert.Equal(t, gesture.Mushti, result.Hands[0].Label)

	// 2. Latest mudra reflects it
	resp, err := client.Get(ts.URL + "/api/mudra")
	require.NoError(t, err)
	var current struct {
		Mudra       string           `json:"mudra"`
		Description string           `json:"description"`
		ResultID    string           `json:"result_id"`
		Hands       []app.HandResult `json:"hands"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&current))
	resp.Body.Close()

	assert.Equal(t, "Mushti", current.Mudra)
	assert.Equal(t, result.ID, current.ResultID)
	assert.Equal(t, gesture.DefaultCatalog().Description(gesture.Mushti), current.Description)

	// 3. Disable detection; frames are refused
	req, _ := http.NewRequest(http.MethodPut, ts.URL+"/api/settings", strings.NewReader(`{"enabled": false}`))
	resp, err = client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.False(t, a.IsEnabled())

	resp = postFrame(t, ts, detector.Frame{})
	resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestAPI_CatalogWorkflow(t *testing.T) {
	ts, a, _ := newTestServer(t)
	client := ts.Client()

	// 1. List seeded entries
	resp, err := client.Get(ts.URL + "/api/mudras")
	require.NoError(t, err)
	var listed struct {
		Mudras []struct {
			Label       string `json:"label"`
			Description string `json:"description"`
		} `json:"mudras"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&listed))
	resp.Body.Close()
	assert.Len(t, listed.Mudras, 18)

	// 2. Edit a description; results pick it up
	req, _ := http.NewRequest(http.MethodPut, ts.URL+"/api/mudras/Soochi", strings.NewReader(`{"description": "Needle, edited"}`))
	resp, err = client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	hr := a.Recognize(detector.SoochiLandmarks(), 640, 480)
	assert.Equal(t, "Needle, edited", hr.Description)

	// 3. Delete it; lookups fall back
	req, _ = http.NewRequest(http.MethodDelete, ts.URL+"/api/mudras/Soochi", nil)
	resp, err = client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, err = client.Get(ts.URL + "/api/mudras/Soochi")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	hr = a.Recognize(detector.SoochiLandmarks(), 640, 480)
	assert.Equal(t, gesture.NoDescription, hr.Description)
}

func TestAPI_WebSocketBroadcast(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ts, _, srv := newTestServer(t)
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/ws"

	listener, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer listener.Close()

	pusher, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer pusher.Close()

	require.Eventually(t, func() bool { return srv.Hub().ClientCount() == 2 },
		5*time.Second, 10*time.Millisecond)

	// Frames pushed over HTTP reach the listener.
	resp := postFrame(t, ts, detector.Frame{Width: 640, Height: 480, Hands: []detector.Hand{detector.ShikaramLandmarks()}})
	resp.Body.Close()

	listener.SetReadDeadline(time.Now().Add(5 * time.Second))
	var got app.Result
	require.NoError(t, listener.ReadJSON(&got))
	require.Len(t, got.Hands, 1)
	assert.Equal(t, gesture.Shikaram, got.Hands[0].Label)

	// Frames pushed over the socket are broadcast to everyone.
	frame := detector.Frame{Width: 640, Height: 480, Hands: []detector.Hand{detector.OpenPalmLandmarks()}}
	require.NoError(t, pusher.WriteJSON(frame))

	require.NoError(t, listener.ReadJSON(&got))
	require.Len(t, got.Hands, 1)
	assert.Equal(t, gesture.Ardhachandra, got.Hands[0].Label)

	// Malformed input is answered on the sender's socket only.
	require.NoError(t, pusher.WriteMessage(websocket.TextMessage, []byte("{")))
	pusher.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		var msg map[string]interface{}
		require.NoError(t, pusher.ReadJSON(&msg))
		if e, ok := msg["error"]; ok {
			assert.Contains(t, e, "invalid frame")
			break
		}
	}
}
