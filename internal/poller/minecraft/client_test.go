// internal/poller/minecraft/client_test.go
package minecraft

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestDecodeStatus(t *testing.T) {
	raw := []byte(`{
		"version": {"name": "Paper 1.20.4", "protocol": 765},
		"players": {"max": 20, "online": 3, "sample": [{"name": "alex", "id": "x"}]},
		"description": {"text": "hello"}
	}`)

	st, err := DecodeStatus(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if st.Version != "Paper 1.20.4" {
		t.Fatalf("version: got %q", st.Version)
	}
	if st.OnlinePlayers != 3 || st.MaxPlayers != 20 {
		t.Fatalf("players: got %d/%d", st.OnlinePlayers, st.MaxPlayers)
	}
}

func TestDecodeStatus_StringDescription(t *testing.T) {
	raw := []byte(`{"version":{"name":"1.8.9"},"players":{"max":1,"online":0},"description":"motd"}`)

	st, err := DecodeStatus(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if st.Version != "1.8.9" {
		t.Fatalf("version: got %q", st.Version)
	}
}

func TestDecodeStatus_Garbage(t *testing.T) {
	if _, err := DecodeStatus([]byte("not json")); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestPing_NoAddress(t *testing.T) {
	if _, err := New(Config{}).Ping(context.Background()); err == nil {
		t.Fatalf("expected error for empty address")
	}
}

func TestReadWhitelist(t *testing.T) {
	dir := t.TempDir()

	on := filepath.Join(dir, "on.properties")
	if err := os.WriteFile(on, []byte("#Minecraft server properties\nmotd=hi\nwhite-list=true\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	off := filepath.Join(dir, "off.properties")
	if err := os.WriteFile(off, []byte("white-list=false\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	unset := filepath.Join(dir, "unset.properties")
	if err := os.WriteFile(unset, []byte("motd=hi\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cases := []struct {
		path string
		want bool
	}{
		{on, true},
		{off, false},
		{unset, false},
	}
	for _, c := range cases {
		got, err := ReadWhitelist(c.path)
		if err != nil {
			t.Fatalf("%s: %v", c.path, err)
		}
		if got != c.want {
			t.Fatalf("%s: got %v want %v", c.path, got, c.want)
		}
	}
}

func TestReadWhitelist_MissingFile(t *testing.T) {
	if _, err := ReadWhitelist(filepath.Join(t.TempDir(), "server.properties")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
