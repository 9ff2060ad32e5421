package server

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/teranos/graphscope/am"
	"github.com/teranos/graphscope/dashboard"
	"github.com/teranos/graphscope/graph"
	"github.com/teranos/graphscope/metrics"
	"github.com/teranos/graphscope/pipeline"
	"github.com/teranos/graphscope/table"
)

const testNodes = `id,Country,City,Country_type,degree
1,Kenya,Nairobi,LMIC,3
2,France,Paris,HIC,5
3,Peru,Lima,LMIC,7
4,Chile,Santiago,LMIC,9
`

const testEdges = `from,to,year-factor,edgetype,edge_sc,weight
1,2,2005,LMHC,N,1
2,3,2010,LMHC,N,4
3,3,2012,LMLM,Y,2
1,3,2020,LMLM,N,3
`

// wireMessage decodes any server message
type wireMessage struct {
	Type     string             `json:"type"`
	Message  string             `json:"message"`
	Category string             `json:"category"`
	Controls dashboard.Controls `json:"controls"`
	Features graph.Features     `json:"features"`
	Options  graph.Options      `json:"options"`
	BaseYear int                `json:"base_year"`
	Data     struct {
		Graph struct {
			Nodes []map[string]any `json:"nodes"`
			Edges []map[string]any `json:"edges"`
		} `json:"graph"`
		Stats   graph.Stats      `json:"stats"`
		Notices []map[string]any `json:"notices"`
	} `json:"data"`
}

func testServerConfig() am.ServerConfig {
	cfg := am.DefaultConfig().Server
	cfg.MaxClients = 4
	return cfg
}

func newTestServer(t *testing.T, cfg am.ServerConfig) (*Server, *httptest.Server) {
	t.Helper()

	edges, err := table.ReadCSV(strings.NewReader(testEdges))
	require.NoError(t, err)
	nodes, err := table.ReadCSV(strings.NewReader(testNodes))
	require.NoError(t, err)

	log := zaptest.NewLogger(t).Sugar()
	ds, err := graph.NewBuilder(graph.DefaultBuildOptions(), log).Build(edges, nodes)
	require.NoError(t, err)

	reg := metrics.NewRegistry()
	pipe := pipeline.New(ds, pipeline.DefaultConfig(), reg, log)
	srv := New(pipe, Options{Config: cfg, Metrics: reg, Logger: log})

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Stop(ctx)
		ts.Close()
	})
	return srv, ts
}

func wsURL(ts *httptest.Server) string {
	return "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(wsURL(ts), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func read(t *testing.T, conn *websocket.Conn) wireMessage {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg wireMessage
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

// connect dials and consumes the init message and the first render
func connect(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	conn := dial(t, ts)
	require.Equal(t, MsgInit, read(t, conn).Type)
	require.Equal(t, MsgGraph, read(t, conn).Type)
	return conn
}

func sendControls(t *testing.T, conn *websocket.Conn, c dashboard.Controls, trigger string) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(ClientMessage{Type: MsgControls, Controls: &c, Trigger: trigger}))
}

func TestWebSocket_InitAndFirstRender(t *testing.T) {
	_, ts := newTestServer(t, testServerConfig())
	conn := dial(t, ts)

	init := read(t, conn)
	assert.Equal(t, MsgInit, init.Type)
	assert.Equal(t, dashboard.DefaultControls(pipeline.DefaultConfig()), init.Controls)
	assert.Equal(t, graph.NoneOption, init.Features.NodeCategorical[0])
	assert.Contains(t, init.Features.NodeCategorical, "Country")
	assert.Equal(t, "600px", init.Options["height"])
	assert.Equal(t, 2002, init.BaseYear)

	first := read(t, conn)
	assert.Equal(t, MsgGraph, first.Type)
	assert.Len(t, first.Data.Graph.Nodes, 4)
	assert.Len(t, first.Data.Graph.Edges, 4)
	assert.Equal(t, 0, first.Data.Stats.HiddenNodes)
	assert.Empty(t, first.Data.Notices)
}

func TestWebSocket_Search(t *testing.T) {
	_, ts := newTestServer(t, testServerConfig())
	conn := connect(t, ts)

	c := dashboard.DefaultControls(pipeline.DefaultConfig())
	c.Search = "Kenya"
	sendControls(t, conn, c, dashboard.ControlSearch)

	msg := read(t, conn)
	require.Equal(t, MsgGraph, msg.Type)
	// Chile has no edge touching Kenya
	assert.Equal(t, 1, msg.Data.Stats.HiddenNodes)
	for _, n := range msg.Data.Graph.Nodes {
		assert.Equal(t, n["id"] == "4", n["hidden"] == true, "node %v", n["id"])
	}
}

func TestWebSocket_FilterNotice(t *testing.T) {
	_, ts := newTestServer(t, testServerConfig())
	conn := connect(t, ts)

	c := dashboard.DefaultControls(pipeline.DefaultConfig())
	c.NodeFilter = "Country =="
	sendControls(t, conn, c, dashboard.ControlNodeFilter)

	msg := read(t, conn)
	require.Equal(t, MsgGraph, msg.Type)
	assert.Len(t, msg.Data.Graph.Nodes, 4, "a failed stage falls back to the full set")
	require.Len(t, msg.Data.Notices, 1)
	assert.Equal(t, "filter", msg.Data.Notices[0]["category"])
}

func TestWebSocket_Rejections(t *testing.T) {
	_, ts := newTestServer(t, testServerConfig())
	conn := connect(t, ts)

	tests := []struct {
		name string
		send func()
	}{
		{"invalid controls", func() {
			c := dashboard.DefaultControls(pipeline.DefaultConfig())
			c.EdgeTypes = []string{"BOGUS"}
			sendControls(t, conn, c, dashboard.ControlEdgeTypes)
		}},
		{"unknown trigger", func() {
			sendControls(t, conn, dashboard.DefaultControls(pipeline.DefaultConfig()), "bogus")
		}},
		{"missing controls", func() {
			require.NoError(t, conn.WriteJSON(map[string]string{"type": MsgControls}))
		}},
		{"unknown type", func() {
			require.NoError(t, conn.WriteJSON(map[string]string{"type": "query"}))
		}},
		{"malformed json", func() {
			require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.send()
			msg := read(t, conn)
			assert.Equal(t, MsgError, msg.Type)
			assert.NotEmpty(t, msg.Message)
			assert.Equal(t, "websocket", msg.Category)
		})
	}

	// The session survives rejected messages
	sendControls(t, conn, dashboard.DefaultControls(pipeline.DefaultConfig()), "")
	assert.Equal(t, MsgGraph, read(t, conn).Type)
}

func TestWebSocket_RateLimit(t *testing.T) {
	cfg := testServerConfig()
	cfg.MessageRate = 0.001
	cfg.MessageBurst = 1
	_, ts := newTestServer(t, cfg)
	conn := connect(t, ts)

	c := dashboard.DefaultControls(pipeline.DefaultConfig())
	sendControls(t, conn, c, "")
	assert.Equal(t, MsgGraph, read(t, conn).Type)

	sendControls(t, conn, c, "")
	msg := read(t, conn)
	assert.Equal(t, MsgError, msg.Type)
	assert.Contains(t, msg.Message, "Too many updates")
}

func TestWebSocket_MaxClients(t *testing.T) {
	cfg := testServerConfig()
	cfg.MaxClients = 1
	srv, ts := newTestServer(t, cfg)

	connect(t, ts)
	require.Eventually(t, func() bool { return srv.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	_, resp, err := websocket.DefaultDialer.Dial(wsURL(ts), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestWebSocket_SessionsAreIndependent(t *testing.T) {
	_, ts := newTestServer(t, testServerConfig())
	a := connect(t, ts)
	b := connect(t, ts)

	c := dashboard.DefaultControls(pipeline.DefaultConfig())
	c.OmitSelfLoops = true
	sendControls(t, a, c, dashboard.ControlOmitSelfLoops)
	assert.Len(t, read(t, a).Data.Graph.Edges, 3)

	sendControls(t, b, dashboard.DefaultControls(pipeline.DefaultConfig()), dashboard.ControlSearch)
	assert.Len(t, read(t, b).Data.Graph.Edges, 4)
}

func TestCheckOrigin(t *testing.T) {
	_, ts := newTestServer(t, testServerConfig())

	header := http.Header{"Origin": []string{"http://evil.example"}}
	_, resp, err := websocket.DefaultDialer.Dial(wsURL(ts), header)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	header = http.Header{"Origin": []string{"http://localhost:3000"}}
	conn, _, err := websocket.DefaultDialer.Dial(wsURL(ts), header)
	require.NoError(t, err)
	conn.Close()
}

func TestHTTPEndpoints(t *testing.T) {
	_, ts := newTestServer(t, testServerConfig())

	get := func(path string) (int, string) {
		resp, err := http.Get(ts.URL + path)
		require.NoError(t, err)
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		return resp.StatusCode, string(body)
	}

	status, body := get("/health")
	assert.Equal(t, http.StatusOK, status)
	var health map[string]any
	require.NoError(t, json.Unmarshal([]byte(body), &health))
	assert.Equal(t, "running", health["status"])
	assert.EqualValues(t, 4, health["nodes"])

	status, body = get("/api/features")
	assert.Equal(t, http.StatusOK, status)
	var features graph.Features
	require.NoError(t, json.Unmarshal([]byte(body), &features))
	assert.Equal(t, []string{graph.NoneOption, "degree"}, features.NodeNumerical)

	status, body = get("/api/options")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, `"height":"600px"`)

	status, body = get("/")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "vis-network")

	status, _ = get("/nope")
	assert.Equal(t, http.StatusNotFound, status)

	status, body = get("/metrics")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "graphscope_dataset_nodes 4")
	assert.Contains(t, body, `graphscope_http_requests_total{path="/health",status="200"} 1`)

	resp, err := http.Post(ts.URL+"/api/features", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestReload_BroadcastsOptions(t *testing.T) {
	srv, ts := newTestServer(t, testServerConfig())
	conn := connect(t, ts)

	path := filepath.Join(t.TempDir(), "vis.yaml")
	require.NoError(t, os.WriteFile(path, []byte("height: 900px\n"), 0o644))

	cfg := am.DefaultConfig()
	cfg.Data.OptionsFile = path
	cfg.Server.MaxClients = 7
	cfg.Log.Verbosity = 1
	require.NoError(t, srv.Reload(cfg))

	msg := read(t, conn)
	assert.Equal(t, MsgOptions, msg.Type)
	assert.Equal(t, "900px", msg.Options["height"])
	assert.Equal(t, "900px", srv.Options()["height"])
	assert.EqualValues(t, 7, srv.maxClients.Load())

	cfg.Data.OptionsFile = filepath.Join(t.TempDir(), "missing.yaml")
	assert.Error(t, srv.Reload(cfg))
	assert.Equal(t, "900px", srv.Options()["height"], "a failed reload keeps the previous options")
}

func TestStop_ClosesSessions(t *testing.T) {
	srv, ts := newTestServer(t, testServerConfig())
	conn := connect(t, ts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, srv.Stop(ctx))
	assert.Equal(t, ServerStateStopped, srv.getState())

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, _, err := conn.ReadMessage()
	require.Error(t, err)
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), "got %v", err)

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	_, resp, err = websocket.DefaultDialer.Dial(wsURL(ts), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}
