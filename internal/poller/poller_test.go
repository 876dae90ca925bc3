// internal/poller/poller_test.go
package poller

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

type fakeClient struct {
	ping  Ping
	fail  atomic.Bool
	calls atomic.Int32
}

func (f *fakeClient) Ping(ctx context.Context) (Ping, error) {
	f.calls.Add(1)
	if _, ok := ctx.Deadline(); !ok {
		return Ping{}, errors.New("ping without deadline")
	}
	if f.fail.Load() {
		return Ping{}, errors.New("connection refused")
	}
	return f.ping, nil
}

func bufLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func testConfig() Config {
	return Config{Interval: 10 * time.Millisecond, Timeout: time.Second}
}

func TestNew_RejectsBadConfig(t *testing.T) {
	if _, err := New(testConfig(), nil, nil); err == nil {
		t.Fatalf("expected error for nil client")
	}
	if _, err := New(Config{Timeout: time.Second}, &fakeClient{}, nil); err == nil {
		t.Fatalf("expected error for zero interval")
	}
	if _, err := New(Config{Interval: time.Second}, &fakeClient{}, nil); err == nil {
		t.Fatalf("expected error for zero timeout")
	}
}

func TestPollOnce_Success(t *testing.T) {
	fc := &fakeClient{ping: Ping{Version: "1.20.4-R0.1-SNAPSHOT", OnlinePlayers: 4, MaxPlayers: 20}}
	wl := func() (bool, error) { return true, nil }

	p, err := New(testConfig(), fc, wl)
	if err != nil {
		t.Fatalf("New() err=%v", err)
	}

	res := p.PollOnce(context.Background())
	if res.Err != nil {
		t.Fatalf("PollOnce err=%v", res.Err)
	}
	if res.Version != "1.20.4" {
		t.Fatalf("version: got %q", res.Version)
	}
	if res.OnlinePlayers != 4 || res.MaxPlayers != 20 {
		t.Fatalf("players: got %d/%d", res.OnlinePlayers, res.MaxPlayers)
	}
	if !res.Whitelist {
		t.Fatalf("expected whitelist on")
	}
	if res.At.IsZero() {
		t.Fatalf("expected timestamp")
	}
}

func TestPollOnce_Failure(t *testing.T) {
	fc := &fakeClient{}
	fc.fail.Store(true)
	p, err := New(testConfig(), fc, nil)
	if err != nil {
		t.Fatalf("New() err=%v", err)
	}

	res := p.PollOnce(context.Background())
	if res.Err == nil {
		t.Fatalf("expected error")
	}
	if res.Version != "" || res.MaxPlayers != 0 {
		t.Fatalf("expected empty values on failure, got %+v", res)
	}
}

func TestPollOnce_WhitelistErrorReadsOff(t *testing.T) {
	fc := &fakeClient{ping: Ping{Version: "1.21", MaxPlayers: 10}}
	wlErr := errors.New("open server.properties: no such file")
	wl := func() (bool, error) { return true, wlErr }

	var logs bytes.Buffer
	p, _ := New(testConfig(), fc, wl, WithLogger(bufLogger(&logs)))

	res := p.PollOnce(context.Background())
	if res.Err != nil {
		t.Fatalf("whitelist failure must not fail the poll: %v", res.Err)
	}
	if res.Whitelist {
		t.Fatalf("expected whitelist off")
	}
	if !strings.Contains(logs.String(), "whitelist unreadable") ||
		!strings.Contains(logs.String(), "no such file") {
		t.Fatalf("whitelist failure not logged: %q", logs.String())
	}

	// The same failure is not repeated every cycle.
	p.PollOnce(context.Background())
	if n := strings.Count(logs.String(), "whitelist unreadable"); n != 1 {
		t.Fatalf("expected one warning, got %d: %q", n, logs.String())
	}
}

func TestPollOnce_LogsOutageAndRecovery(t *testing.T) {
	fc := &fakeClient{ping: Ping{Version: "1.21"}}
	fc.fail.Store(true)

	var logs bytes.Buffer
	p, _ := New(testConfig(), fc, nil, WithLogger(bufLogger(&logs)))

	for i := 0; i < 3; i++ {
		p.PollOnce(context.Background())
	}
	out := logs.String()
	if n := strings.Count(out, "game server not answering"); n != 1 {
		t.Fatalf("expected one outage warning, got %d: %q", n, out)
	}
	if !strings.Contains(out, "level=WARN") || !strings.Contains(out, "connection refused") {
		t.Fatalf("outage warning missing cause: %q", out)
	}

	fc.fail.Store(false)
	p.PollOnce(context.Background())
	if !strings.Contains(logs.String(), "game server answering again") {
		t.Fatalf("recovery not logged: %q", logs.String())
	}

	// A second outage is reported again.
	fc.fail.Store(true)
	p.PollOnce(context.Background())
	if n := strings.Count(logs.String(), "game server not answering"); n != 2 {
		t.Fatalf("expected second outage warning, got %d", n)
	}
}

func TestPollOnce_ClampsNegativeCounts(t *testing.T) {
	fc := &fakeClient{ping: Ping{OnlinePlayers: -1, MaxPlayers: -5}}
	p, _ := New(testConfig(), fc, nil)

	res := p.PollOnce(context.Background())
	if res.OnlinePlayers != 0 || res.MaxPlayers != 0 {
		t.Fatalf("expected clamped counts, got %d/%d", res.OnlinePlayers, res.MaxPlayers)
	}
}

func TestShortVersion(t *testing.T) {
	cases := map[string]string{
		"1.20.4-R0.1-SNAPSHOT": "1.20.4",
		"1.21":                 "1.21",
		" 1.19.2 ":             "1.19.2",
		"":                     "",
		"-pre":                 "",
	}
	for in, want := range cases {
		if got := ShortVersion(in); got != want {
			t.Fatalf("ShortVersion(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRun_EmitsImmediatelyAndStops(t *testing.T) {
	fc := &fakeClient{ping: Ping{Version: "1.21"}}
	p, _ := New(Config{Interval: time.Hour, Timeout: time.Second}, fc, nil)

	ctx, cancel := context.WithCancel(context.Background())
	out := make(chan PollResult)
	done := make(chan struct{})
	go func() {
		p.Run(ctx, out)
		close(done)
	}()

	select {
	case res := <-out:
		if res.Version != "1.21" {
			t.Fatalf("version: got %q", res.Version)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("no immediate poll")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("Run did not return after cancel")
	}
}

func TestRun_DoesNotBlockOnCancelledConsumer(t *testing.T) {
	p, _ := New(testConfig(), &fakeClient{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		p.Run(ctx, make(chan PollResult))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("Run blocked with no reader")
	}
}
