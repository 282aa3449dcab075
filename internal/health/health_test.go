package health

import (
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// baseURL rewrites the wildcard listen address into something dialable.
func baseURL(t *testing.T, addr string) string {
	t.Helper()
	_, port, err := net.SplitHostPort(addr)
	if err != nil {
		t.Fatalf("unexpected addr %q: %v", addr, err)
	}
	return "http://127.0.0.1:" + port
}

func TestServerHealthz(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv := NewServer(0, testLogger())
	if err := srv.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	resp, err := http.Get(baseURL(t, srv.Addr()) + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	body, _ := io.ReadAll(resp.Body)
	if string(body) != "ok" {
		t.Errorf("body = %q, want %q", body, "ok")
	}
}

func TestServerUnknownPathIs404(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv := NewServer(0, testLogger())
	if err := srv.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	resp, err := http.Get(baseURL(t, srv.Addr()) + "/nope")
	if err != nil {
		t.Fatalf("GET /nope error = %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusNotFound)
	}
}

func TestServerPortConflictFailsSynchronously(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	first := NewServer(0, testLogger())
	if err := first.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	_, portStr, err := net.SplitHostPort(first.Addr())
	if err != nil {
		t.Fatalf("unexpected addr %q: %v", first.Addr(), err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		t.Fatalf("unexpected addr %q", first.Addr())
	}

	second := NewServer(port, testLogger())
	if err := second.Start(ctx); err == nil {
		t.Error("Start() on an occupied port succeeded, want bind error")
	}
}

func TestServerShutsDownOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	srv := NewServer(0, testLogger())
	if err := srv.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	url := baseURL(t, srv.Addr()) + "/healthz"

	cancel()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := http.Get(url)
		if err != nil {
			return // listener closed
		}
		resp.Body.Close()
		time.Sleep(20 * time.Millisecond)
	}
	t.Error("server still answering after context cancellation")
}