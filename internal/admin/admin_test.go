// internal/admin/admin_test.go
package admin

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/tamzrod/discord-status/internal/host"
	"github.com/tamzrod/discord-status/internal/scheduler"
	"github.com/tamzrod/discord-status/internal/status"
	"github.com/tamzrod/discord-status/internal/writer"
)

var now = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

type fakeHealth struct {
	h   host.Health
	err error
}

func (f fakeHealth) Health(context.Context) (host.Health, error) { return f.h, f.err }

type fakeState scheduler.State

func (f fakeState) State() scheduler.State { return scheduler.State(f) }

type fakeOutcomes writer.Outcome

func (f fakeOutcomes) Last() writer.Outcome { return writer.Outcome(f) }

type fakeIdentity struct {
	id      string
	created time.Time
}

func (f fakeIdentity) MessageID() string    { return f.id }
func (f fakeIdentity) CreatedAt() time.Time { return f.created }

func newTestServer(h HealthSource, st scheduler.State, o writer.Outcome, id IdentitySource) *Server {
	s := New(h, fakeState(st), fakeOutcomes(o), id, slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.now = func() time.Time { return now }
	return s
}

func get(t *testing.T, s *Server, path string) (*http.Response, map[string]any) {
	t.Helper()
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	var out map[string]any
	if resp.Header.Get("Content-Type") == "application/json" {
		if err := json.Unmarshal(body, &out); err != nil {
			t.Fatalf("decode %s: %v", body, err)
		}
	}
	return resp, out
}

func TestHealthz_Running(t *testing.T) {
	s := newTestServer(fakeHealth{}, scheduler.Running, writer.Outcome{}, fakeIdentity{})

	resp, body := get(t, s, "/healthz")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status: got %d", resp.StatusCode)
	}
	if body["ok"] != true || body["scheduler"] != "running" {
		t.Fatalf("body: %v", body)
	}
}

func TestHealthz_NotRunning(t *testing.T) {
	s := newTestServer(fakeHealth{}, scheduler.Stopped, writer.Outcome{}, fakeIdentity{})

	resp, body := get(t, s, "/healthz")
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("status: got %d", resp.StatusCode)
	}
	if body["scheduler"] != "stopped" {
		t.Fatalf("body: %v", body)
	}
}

func TestStatus(t *testing.T) {
	h := host.Health{
		Observed:  true,
		Reachable: true,
		LastPoll:  now.Add(-5 * time.Second),
		UpSince:   now.Add(-2 * time.Hour),
		StartedAt: now.Add(-3 * time.Hour),
	}
	o := writer.Outcome{
		Status:    status.Online,
		Action:    writer.Edited,
		MessageID: "42",
		At:        now.Add(-time.Minute),
	}
	id := fakeIdentity{id: "42", created: now.Add(-48 * time.Hour)}

	s := newTestServer(fakeHealth{h: h}, scheduler.Running, o, id)

	resp, body := get(t, s, "/status")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status: got %d", resp.StatusCode)
	}

	server := body["server"].(map[string]any)
	if server["reachable"] != true || server["up_since"] != "2 hours ago" {
		t.Fatalf("server: %v", server)
	}

	report := body["report"].(map[string]any)
	if report["message_id"] != "42" || report["saved"] != "2 days ago" {
		t.Fatalf("report: %v", report)
	}

	last := body["last_publish"].(map[string]any)
	if last["status"] != "online" || last["action"] != "edited" || last["at"] != "1 minute ago" {
		t.Fatalf("last_publish: %v", last)
	}
}

func TestStatus_NoPublishYet(t *testing.T) {
	o := writer.Outcome{}
	s := newTestServer(fakeHealth{}, scheduler.Connecting, o, fakeIdentity{})

	_, body := get(t, s, "/status")
	if _, ok := body["last_publish"]; ok {
		t.Fatalf("unexpected last_publish: %v", body)
	}
	if body["scheduler"] != "connecting" {
		t.Fatalf("scheduler: %v", body["scheduler"])
	}
}

func TestStatus_PublishError(t *testing.T) {
	o := writer.Outcome{Status: status.Offline, Err: errors.New("missing access"), At: now}
	s := newTestServer(fakeHealth{}, scheduler.Running, o, fakeIdentity{})

	_, body := get(t, s, "/status")
	last := body["last_publish"].(map[string]any)
	if last["error"] != "missing access" || last["action"] != "skipped" {
		t.Fatalf("last_publish: %v", last)
	}
}

func TestStatus_AuthorityStopped(t *testing.T) {
	s := newTestServer(fakeHealth{err: host.ErrStopped}, scheduler.Running, writer.Outcome{}, fakeIdentity{})

	resp, _ := get(t, s, "/status")
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("status: got %d", resp.StatusCode)
	}
}

func TestServe_StopsOnCancel(t *testing.T) {
	s := newTestServer(fakeHealth{}, scheduler.Running, writer.Outcome{}, fakeIdentity{})

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- s.Serve(ctx, "127.0.0.1:0") }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("serve: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("Serve did not return")
	}
}
