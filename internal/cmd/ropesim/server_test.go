package ropesim

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/coder/websocket"

	"github.com/Ko-stant/rope-follow/internal/protocol"
)

type rawPatch struct {
	Sequence uint64          `json:"seq"`
	RunID    uint64          `json:"runId"`
	Type     string          `json:"type"`
	Payload  json.RawMessage `json:"payload"`
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	s := NewServer(Config{ShortLength: 2, LongLength: 10}, log.New(io.Discard, "", 0))
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return srv
}

func dialStream(t *testing.T, ctx context.Context, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http")+"/stream", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "") })
	return conn
}

func sendRun(t *testing.T, ctx context.Context, conn *websocket.Conn, req protocol.RequestRun) {
	t.Helper()
	payload, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	data, err := json.Marshal(protocol.IntentEnvelope{Type: protocol.IntentRequestRun, Payload: payload})
	if err != nil {
		t.Fatalf("marshal intent: %v", err)
	}
	if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
		t.Fatalf("write: %v", err)
	}
}

// readUntilDone collects patches up to and including the terminal one.
func readUntilDone(t *testing.T, ctx context.Context, conn *websocket.Conn) []rawPatch {
	t.Helper()
	var patches []rawPatch
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		var p rawPatch
		if err := json.Unmarshal(data, &p); err != nil {
			t.Fatalf("decode patch: %v", err)
		}
		patches = append(patches, p)
		if p.Type == protocol.PatchRunCompleted || p.Type == protocol.PatchRunFailed {
			return patches
		}
	}
}

func TestServer_RunStreamsStepsThenCompletes(t *testing.T) {
	srv := newTestServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn := dialStream(t, ctx, srv)

	sendRun(t, ctx, conn, protocol.RequestRun{
		Script:     "R 4\nU 4\nL 3\nD 1\nR 4\nD 1\nL 5\nR 2",
		RopeLength: 2,
		Steps:      true,
	})
	patches := readUntilDone(t, ctx, conn)

	if len(patches) != 25 {
		t.Fatalf("expected 24 steps plus completion, got %d patches", len(patches))
	}
	for i := 1; i < len(patches); i++ {
		if patches[i].Sequence <= patches[i-1].Sequence {
			t.Fatalf("sequence not increasing at %d", i)
		}
	}

	var step protocol.RopeStepped
	if err := json.Unmarshal(patches[0].Payload, &step); err != nil {
		t.Fatalf("decode step: %v", err)
	}
	if step.Step != 1 || step.Direction != "Right" || len(step.Segments) != 2 {
		t.Fatalf("unexpected first step %+v", step)
	}

	var done protocol.RunCompleted
	if err := json.Unmarshal(patches[24].Payload, &done); err != nil {
		t.Fatalf("decode completion: %v", err)
	}
	if done.Summary.Visited != 13 || done.Summary.Steps != 24 {
		t.Fatalf("expected 13 positions over 24 steps, got %+v", done.Summary)
	}
}

func TestServer_DefaultLengthWithoutSteps(t *testing.T) {
	srv := newTestServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn := dialStream(t, ctx, srv)

	sendRun(t, ctx, conn, protocol.RequestRun{Script: "R 5\nU 8\nL 8\nD 3\nR 17\nD 10\nL 25\nU 20"})
	patches := readUntilDone(t, ctx, conn)

	if len(patches) != 1 || patches[0].Type != protocol.PatchRunCompleted {
		t.Fatalf("expected a single completion, got %+v", patches)
	}
	var done protocol.RunCompleted
	if err := json.Unmarshal(patches[0].Payload, &done); err != nil {
		t.Fatalf("decode completion: %v", err)
	}
	if done.Summary.RopeLength != 10 || done.Summary.Visited != 36 {
		t.Fatalf("expected 36 positions on the default rope, got %+v", done.Summary)
	}
}

func TestServer_MalformedScriptFails(t *testing.T) {
	srv := newTestServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn := dialStream(t, ctx, srv)

	sendRun(t, ctx, conn, protocol.RequestRun{Script: "R 4\nX 3", RopeLength: 2})
	patches := readUntilDone(t, ctx, conn)

	last := patches[len(patches)-1]
	if last.Type != protocol.PatchRunFailed {
		t.Fatalf("expected RunFailed, got %s", last.Type)
	}
	var failed protocol.RunFailed
	if err := json.Unmarshal(last.Payload, &failed); err != nil {
		t.Fatalf("decode failure: %v", err)
	}
	if failed.Code != "INVALID_DIRECTION" || failed.Line != 2 {
		t.Fatalf("expected invalid direction on line 2, got %+v", failed)
	}
}

func TestServer_RejectsBadLengthAndIntent(t *testing.T) {
	srv := newTestServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn := dialStream(t, ctx, srv)

	sendRun(t, ctx, conn, protocol.RequestRun{Script: "R 1", RopeLength: -3})
	if p := readUntilDone(t, ctx, conn); p[0].Type != protocol.PatchRunFailed {
		t.Fatalf("expected RunFailed for negative length, got %s", p[0].Type)
	}

	if err := conn.Write(ctx, websocket.MessageText, []byte(`{"type":"RequestMove"}`)); err != nil {
		t.Fatalf("write: %v", err)
	}
	if p := readUntilDone(t, ctx, conn); p[0].Type != protocol.PatchRunFailed {
		t.Fatalf("expected RunFailed for unknown intent, got %s", p[0].Type)
	}
}

func TestServer_CompletionBroadcastAndIndex(t *testing.T) {
	srv := newTestServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	watcher := dialStream(t, ctx, srv)
	runner := dialStream(t, ctx, srv)

	// Let the watcher register before the run completes.
	deadline := time.Now().Add(2 * time.Second)
	for !strings.Contains(getIndex(t, srv), "Subscribers: 2.") {
		if time.Now().After(deadline) {
			t.Fatal("subscribers never registered")
		}
		time.Sleep(10 * time.Millisecond)
	}

	sendRun(t, ctx, runner, protocol.RequestRun{Script: "R 4\nU 4", RopeLength: 2})
	readUntilDone(t, ctx, runner)
	seen := readUntilDone(t, ctx, watcher)
	if seen[0].Type != protocol.PatchRunCompleted {
		t.Fatalf("expected watcher to see completion, got %s", seen[0].Type)
	}

	if page := getIndex(t, srv); !strings.Contains(page, "<td>2</td><td>8</td><td>7</td>") {
		t.Fatalf("expected run in index page, got %s", page)
	}
}

func getIndex(t *testing.T, srv *httptest.Server) string {
	t.Helper()
	resp, err := http.Get(srv.URL + "/")
	if err != nil {
		t.Fatalf("get index: %v", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read index: %v", err)
	}
	return string(body)
}

func TestServer_ProfilingIsOptIn(t *testing.T) {
	plain := httptest.NewServer(NewServer(Config{LongLength: 10}, log.New(io.Discard, "", 0)).Handler())
	defer plain.Close()
	profiled := httptest.NewServer(NewServer(Config{LongLength: 10, Profiling: true}, log.New(io.Discard, "", 0)).Handler())
	defer profiled.Close()

	resp, err := http.Get(plain.URL + "/debug/pprof/")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 without profiling, got %d", resp.StatusCode)
	}

	resp, err = http.Get(profiled.URL + "/debug/pprof/")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 with profiling, got %d", resp.StatusCode)
	}
}

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestServer_DisconnectStopsStreamingRun(t *testing.T) {
	logs := &lockedBuffer{}
	srv := httptest.NewServer(NewServer(Config{LongLength: 10}, log.New(logs, "", 0)).Handler())
	defer srv.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http")+"/stream", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	sendRun(t, ctx, conn, protocol.RequestRun{
		Script:     strings.Repeat("R 255\nL 255\n", 20),
		RopeLength: 100,
		Steps:      true,
	})
	if _, _, err := conn.Read(ctx); err != nil {
		t.Fatalf("read first step: %v", err)
	}
	conn.CloseNow()

	deadline := time.Now().Add(3 * time.Second)
	for !strings.Contains(logs.String(), "run 1:") {
		if time.Now().After(deadline) {
			t.Fatal("run never stopped after the client went away")
		}
		time.Sleep(10 * time.Millisecond)
	}
	time.Sleep(100 * time.Millisecond)

	if n := strings.Count(logs.String(), "write RopeStepped"); n > 1 {
		t.Fatalf("expected the run to stop at the first failed write, got %d failures:\n%s", n, logs.String())
	}
	if page := getIndex(t, srv); !strings.Contains(page, "No runs yet.") {
		t.Fatalf("aborted run should not be recorded, got %s", page)
	}
}
