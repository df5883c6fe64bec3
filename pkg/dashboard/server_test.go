package dashboard

import (
	"context"
	"encoding/json"
	"io"
	"math"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lumitemp/pkg/logger"
	"lumitemp/pkg/model"
	"lumitemp/pkg/render"
	"lumitemp/pkg/storage"
)

func newTestServer(t *testing.T, acc storage.Accumulator) (*Server, *httptest.Server) {
	t.Helper()
	s, err := NewServer(Config{Labels: render.LabelsFor("en")}, acc, logger.Discard("dashboard"))
	require.NoError(t, err)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		s.hub.Close()
		ts.Close()
	})
	return s, ts
}

func sampleBatches() storage.Batches {
	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return storage.Batches{
		Luminosity: model.Samples{
			{Time: start, Value: 100},
			{Time: start.Add(10 * time.Second), Value: 200},
		},
		Temperature: model.Samples{{Time: start.Add(5 * time.Second), Value: 20}},
	}
}

func get(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func TestServer_EmptyState(t *testing.T) {
	_, ts := newTestServer(t, storage.NewMemoryAccumulator())

	tests := []struct {
		name   string
		path   string
		status int
		body   string
	}{
		{"test.snapshot.no.content", "/api/snapshot", http.StatusNoContent, ""},
		{"test.figure.placeholder", "/api/figure", http.StatusOK, `{}`},
		{"test.healthz", "/healthz", http.StatusOK, `{"status":"ok"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := get(t, ts.URL+tt.path)
			assert.Equal(t, tt.status, resp.StatusCode)
			if tt.body == "" {
				assert.Empty(t, body)
				return
			}
			assert.JSONEq(t, tt.body, string(body))
		})
	}
}

func TestServer_WithData(t *testing.T) {
	acc := storage.NewMemoryAccumulator()
	acc.Append(sampleBatches())
	_, ts := newTestServer(t, acc)

	resp, body := get(t, ts.URL+"/api/snapshot")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var snap struct {
		Timestamps []time.Time `json:"timestamps"`
		Series     map[string]struct {
			Count int     `json:"count"`
			Mean  float64 `json:"mean"`
		} `json:"series"`
	}
	require.NoError(t, json.Unmarshal(body, &snap))
	assert.Len(t, snap.Timestamps, 3)
	assert.Equal(t, 2, snap.Series["luminosity"].Count)
	assert.Equal(t, 150.0, snap.Series["luminosity"].Mean)
	assert.Equal(t, 0, snap.Series["humidity"].Count)
	assert.Equal(t, 0.0, snap.Series["humidity"].Mean)
	assert.Equal(t, 20.0, snap.Series["temperature"].Mean)

	resp, body = get(t, ts.URL+"/api/figure")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var fig render.Figure
	require.NoError(t, json.Unmarshal(body, &fig))
	assert.Len(t, fig.Data, 4)
	require.NotNil(t, fig.Layout)
	assert.Equal(t, "Luminosity, Humidity and Temperature Over Time", fig.Layout.Title.Text)
}

func TestServer_Index(t *testing.T) {
	_, ts := newTestServer(t, storage.NewMemoryAccumulator())

	resp, body := get(t, ts.URL+"/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.HasPrefix(resp.Header.Get("Content-Type"), "text/html"))
	page := string(body)
	assert.Contains(t, page, "<h1>LumiTemp Data Viewer</h1>")
	assert.Contains(t, page, plotlyURL)
	assert.Contains(t, page, "/api/figure")
	assert.Contains(t, page, "/ws")
}

func TestServer_Metrics(t *testing.T) {
	_, ts := newTestServer(t, storage.NewMemoryAccumulator())

	get(t, ts.URL+"/healthz")
	resp, body := get(t, ts.URL+"/metrics")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `lumitemp_http_requests_total{method="GET",path="/healthz",status="200"}`)
}

func TestServer_MethodNotAllowed(t *testing.T) {
	_, ts := newTestServer(t, storage.NewMemoryAccumulator())

	resp, err := http.Post(ts.URL+"/api/figure", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestServer_WebSocket(t *testing.T) {
	acc := storage.NewMemoryAccumulator()
	s, ts := newTestServer(t, acc)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var fig render.Figure
	require.NoError(t, conn.ReadJSON(&fig))
	assert.True(t, fig.Empty())
	assert.Equal(t, 1, s.hub.Len())

	acc.Append(sampleBatches())
	s.Refresh()

	fig = render.Figure{}
	require.NoError(t, conn.ReadJSON(&fig))
	assert.Len(t, fig.Data, 4)
	assert.Equal(t, "Luminosity", fig.Data[0].Name)

	require.NoError(t, conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
	assert.Eventually(t, func() bool { return s.hub.Len() == 0 }, 5*time.Second, 20*time.Millisecond)
}

func TestServer_Run(t *testing.T) {
	s, err := NewServer(Config{Addr: "127.0.0.1:0"}, storage.NewMemoryAccumulator(), logger.Discard("dashboard"))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestServer_RunListenError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	s, err := NewServer(Config{Addr: ln.Addr().String()}, storage.NewMemoryAccumulator(), logger.Discard("dashboard"))
	require.NoError(t, err)
	assert.Error(t, s.Run(context.Background()))
}

func TestNewServer_RequiresAccumulator(t *testing.T) {
	_, err := NewServer(Config{}, nil, logger.Discard("dashboard"))
	assert.Error(t, err)
}

func TestWriteJSON(t *testing.T) {
	tests := []struct {
		name     string
		value    any
		status   int
		wantBody string
	}{
		{"test.encodable", map[string]float64{"mean": 1.5}, http.StatusOK, `{"mean":1.5}`},
		{"test.nan.is.server.error", map[string]float64{"mean": math.NaN()}, http.StatusInternalServerError, ""},
		{"test.inf.is.server.error", []float64{math.Inf(1)}, http.StatusInternalServerError, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeJSON(rec, http.StatusOK, tt.value)
			assert.Equal(t, tt.status, rec.Code)
			if tt.wantBody != "" {
				assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
				assert.JSONEq(t, tt.wantBody, rec.Body.String())
				return
			}
			assert.Contains(t, rec.Body.String(), "unsupported value")
		})
	}
}
