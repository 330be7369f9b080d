package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"lifetrace/pkg/sims/life"
)

func TestDefault(t *testing.T) {
	c := Default()
	if got, want := c.Settings(), life.DefaultSettings(25, 25); got != want {
		t.Fatalf("Settings() = %+v, want %+v", got, want)
	}
	if c.Autoplay.Interval != 275*time.Millisecond {
		t.Fatalf("autoplay interval = %v, want 275ms", c.Autoplay.Interval)
	}
	if c.Engine.CacheWindow != life.CacheWindow {
		t.Fatalf("cache window = %d, want %d", c.Engine.CacheWindow, life.CacheWindow)
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("defaults do not validate: %v", err)
	}
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "life.yaml")
	data := "board:\n  width: 40\n  toroidal: false\nautoplay:\n  interval: 50ms\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Board.Width != 40 || c.Board.Height != 25 || c.Board.Toroidal {
		t.Fatalf("board = %+v", c.Board)
	}
	if c.Autoplay.Interval != 50*time.Millisecond {
		t.Fatalf("interval = %v", c.Autoplay.Interval)
	}
	if c.Rules.NeededNeighbors != 3 {
		t.Fatalf("rules lost their defaults: %+v", c.Rules)
	}
}

func TestLoadRejectsInvalidRules(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("rules:\n  max_neighbors: 9\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); !errors.Is(err, life.ErrInvalidSettings) {
		t.Fatalf("Load error = %v, want ErrInvalidSettings", err)
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("Load of a missing file succeeded")
	}
}

func TestFromMap(t *testing.T) {
	c, err := FromMap(Default(), map[string]string{
		"w": "8", "h": "6", "toroidal": "false", "needed": "2", "interval": "1s", "cache_window": "10",
	})
	if err != nil {
		t.Fatalf("FromMap: %v", err)
	}
	want := life.Settings{MinNeighbors: 2, MaxNeighbors: 3, NeededNeighbors: 2, Width: 8, Height: 6}
	if c.Settings() != want {
		t.Fatalf("Settings() = %+v, want %+v", c.Settings(), want)
	}
	if c.Autoplay.Interval != time.Second || c.Engine.CacheWindow != 10 {
		t.Fatalf("autoplay/engine = %+v / %+v", c.Autoplay, c.Engine)
	}
}

func TestFromMapErrors(t *testing.T) {
	base := Default()
	for _, kv := range []map[string]string{
		{"colour": "red"},
		{"w": "wide"},
		{"min": "0"},
		{"interval": "-1s"},
	} {
		c, err := FromMap(base, kv)
		if err == nil {
			t.Fatalf("FromMap(%v) succeeded", kv)
		}
		if c != base {
			t.Fatalf("FromMap(%v) returned a modified config on error", kv)
		}
	}
}

func TestStorePath(t *testing.T) {
	c := Default()
	c.Store.Path = "/tmp/x.db"
	if p, err := c.StorePath(); err != nil || p != "/tmp/x.db" {
		t.Fatalf("StorePath() = %q, %v", p, err)
	}
}

func TestParsePairs(t *testing.T) {
	kv, err := ParsePairs(" width=40, min = 1 ,,")
	if err != nil {
		t.Fatalf("ParsePairs: %v", err)
	}
	if len(kv) != 2 || kv["width"] != "40" || kv["min"] != "1" {
		t.Fatalf("ParsePairs = %v", kv)
	}
	if kv, err := ParsePairs(""); err != nil || len(kv) != 0 {
		t.Fatalf("ParsePairs(\"\") = %v, %v", kv, err)
	}
	for _, bad := range []string{"width", "=3", "a=1,b"} {
		if _, err := ParsePairs(bad); err == nil {
			t.Errorf("ParsePairs(%q) succeeded", bad)
		}
	}
}
