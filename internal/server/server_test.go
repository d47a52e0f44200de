package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/lawnchairsociety/dungeongen/internal/catalog"
	"github.com/lawnchairsociety/dungeongen/internal/config"
)

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Areas = []config.AreaConfig{
		{Generator: "grow", Count: 3, MinSize: 3, MaxSize: 5},
		{Generator: "chamber", MinSize: 4, MaxSize: 6},
		{Generator: "grow_separated", Count: 3, MinSize: 2, MaxSize: 4, Tunneler: "weighted"},
	}
	cfg.Server.MaxRows = 3
	return cfg
}

func startServer(t *testing.T, cfg *config.Config) (*Server, *httptest.Server) {
	t.Helper()
	s := NewServer(cfg, nil)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", url, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func roundTrip(t *testing.T, conn *websocket.Conn, req any) Response {
	t.Helper()
	conn.SetDeadline(time.Now().Add(10 * time.Second))
	if err := conn.WriteJSON(req); err != nil {
		t.Fatalf("write request: %v", err)
	}
	var resp Response
	if err := conn.ReadJSON(&resp); err != nil {
		t.Fatalf("read response: %v", err)
	}
	return resp
}

func TestPreviewOverWebSocket(t *testing.T) {
	_, ts := startServer(t, testConfig())
	conn := dial(t, ts)

	resp := roundTrip(t, conn, Request{Seed: "ancient crypt", Rows: 2})

	if resp.Error != "" {
		t.Fatalf("preview error: %s", resp.Error)
	}
	if resp.Seed != "ancient crypt" {
		t.Errorf("Seed = %q, want %q", resp.Seed, "ancient crypt")
	}
	if len(resp.Rows) != resp.Height {
		t.Errorf("got %d rows, want height %d", len(resp.Rows), resp.Height)
	}
	for i, row := range resp.Rows {
		if len(row) != resp.Width {
			t.Fatalf("row %d has width %d, want %d", i, len(row), resp.Width)
		}
		if strings.Trim(row, ".#") != "" {
			t.Fatalf("row %d has unexpected characters: %q", i, row)
		}
	}
	if resp.Stats == nil || resp.Stats.Areas != 3 {
		t.Errorf("Stats = %+v, want 3 areas", resp.Stats)
	}
}

func TestPreviewIsDeterministic(t *testing.T) {
	_, ts := startServer(t, testConfig())
	conn := dial(t, ts)

	first := roundTrip(t, conn, Request{Seed: "42"})
	second := roundTrip(t, conn, Request{Seed: "42"})

	if first.Error != "" || second.Error != "" {
		t.Fatalf("preview errors: %q, %q", first.Error, second.Error)
	}
	if first.SeedValue != 42 {
		t.Errorf("SeedValue = %d, want 42", first.SeedValue)
	}
	if strings.Join(first.Rows, "\n") != strings.Join(second.Rows, "\n") {
		t.Error("same seed produced different maps")
	}
}

func TestPreviewErrorsKeepConnection(t *testing.T) {
	_, ts := startServer(t, testConfig())
	conn := dial(t, ts)

	resp := roundTrip(t, conn, Request{Seed: "1", Rows: 9})
	if !strings.Contains(resp.Error, "too many rows") {
		t.Errorf("Error = %q, want too many rows", resp.Error)
	}

	conn.SetDeadline(time.Now().Add(10 * time.Second))
	if err := conn.WriteMessage(websocket.TextMessage, []byte("{not json")); err != nil {
		t.Fatalf("write: %v", err)
	}
	var bad Response
	if err := conn.ReadJSON(&bad); err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.HasPrefix(bad.Error, "invalid request") {
		t.Errorf("Error = %q, want invalid request", bad.Error)
	}

	ok := roundTrip(t, conn, Request{Seed: "1", Rows: 1})
	if ok.Error != "" || len(ok.Rows) == 0 {
		t.Errorf("connection unusable after errors: %+v", ok)
	}
}

func TestPreviewDirect(t *testing.T) {
	s := NewServer(testConfig(), nil)

	resp, err := s.Preview(context.Background(), Request{})
	if err != nil {
		t.Fatalf("Preview error: %v", err)
	}
	if resp.Seed == "" {
		t.Error("empty request should get a time based seed")
	}

	if _, err := s.Preview(context.Background(), Request{Rows: 4}); !errors.Is(err, ErrTooManyRows) {
		t.Errorf("Preview error = %v, want ErrTooManyRows", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.Preview(ctx, Request{Seed: "3"}); !errors.Is(err, context.Canceled) {
		t.Errorf("Preview error = %v, want context.Canceled", err)
	}
}

func TestConnectionLimit(t *testing.T) {
	cfg := testConfig()
	cfg.Server.MaxTotal = 1
	s, ts := startServer(t, cfg)

	dial(t, ts)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatal("second connection should be rejected")
	}
	if resp == nil || resp.StatusCode != http.StatusTooManyRequests {
		t.Errorf("rejection response = %v, want 429", resp)
	}

	if total := s.ConnLimiter().Stats().Open; total != 1 {
		t.Errorf("open connections = %d, want 1", total)
	}
}

func TestOriginRejected(t *testing.T) {
	cfg := testConfig()
	cfg.Server.AllowedOrigins = []string{"https://maps.example"}
	s, ts := startServer(t, cfg)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	header := http.Header{"Origin": []string{"https://evil.example"}}
	_, resp, err := websocket.DefaultDialer.Dial(url, header)
	if err == nil {
		t.Fatal("connection from a foreign origin should fail")
	}
	if resp == nil || resp.StatusCode != http.StatusForbidden {
		t.Errorf("rejection response = %v, want 403", resp)
	}

	// The slot is released after the 403 has been written.
	deadline := time.Now().Add(2 * time.Second)
	for {
		total := s.ConnLimiter().Stats().Open
		if total == 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("slot leaked after rejected upgrade: %d open", total)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestRunsEndpoint(t *testing.T) {
	c, err := catalog.OpenSQLite(filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatalf("open catalog: %v", err)
	}
	defer c.Close()

	s, ts := startServer(t, testConfig())
	s.SetCatalog(c)

	conn := dial(t, ts)
	preview := roundTrip(t, conn, Request{Seed: "cellar", Rows: 1})
	if preview.RunID == 0 {
		t.Fatalf("preview was not recorded: %+v", preview.Error)
	}

	res, err := http.Get(ts.URL + "/runs?seed=cellar")
	if err != nil {
		t.Fatalf("GET /runs: %v", err)
	}
	defer res.Body.Close()

	var runs []catalog.Run
	if err := json.NewDecoder(res.Body).Decode(&runs); err != nil {
		t.Fatalf("decode runs: %v", err)
	}
	if len(runs) != 1 || runs[0].ID != preview.RunID || runs[0].Rows != 1 {
		t.Errorf("runs = %+v, want the recorded preview", runs)
	}

	bad, err := http.Get(ts.URL + "/runs?limit=x")
	if err != nil {
		t.Fatalf("GET /runs: %v", err)
	}
	bad.Body.Close()
	if bad.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", bad.StatusCode)
	}
}

func TestRunsWithoutCatalog(t *testing.T) {
	_, ts := startServer(t, testConfig())

	res, err := http.Get(ts.URL + "/runs")
	if err != nil {
		t.Fatalf("GET /runs: %v", err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", res.StatusCode)
	}
}

func TestServeStopsOnCancel(t *testing.T) {
	s := NewServer(testConfig(), nil)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	res, err := http.Get("http://" + ln.Addr().String() + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Errorf("healthz status = %d, want 200", res.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve returned %v, want nil", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("Serve did not stop after cancel")
	}
}

func TestPreviewRateLimited(t *testing.T) {
	cfg := testConfig()
	cfg.Server.RateLimit = config.RateLimitConfig{
		MaxRequests:    1,
		WindowSeconds:  60,
		LockoutSeconds: 30,
	}
	_, ts := startServer(t, cfg)
	conn := dial(t, ts)

	if resp := roundTrip(t, conn, Request{Seed: "1"}); resp.Error != "" {
		t.Fatalf("first preview error: %s", resp.Error)
	}

	resp := roundTrip(t, conn, Request{Seed: "2"})
	if !strings.HasPrefix(resp.Error, "rate limited") {
		t.Fatalf("second preview error = %q, want rate limited", resp.Error)
	}
	if len(resp.Rows) != 0 {
		t.Error("rate limited response carries a map")
	}

	// The connection stays usable and still locked.
	resp = roundTrip(t, conn, Request{Seed: "3"})
	if !strings.HasPrefix(resp.Error, "rate limited") {
		t.Errorf("third preview error = %q, want rate limited", resp.Error)
	}
}
