package store

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"lifetrace/pkg/sims/life"
)

func TestWriteAndReadBoard(t *testing.T) {
	sim, err := life.New(life.DefaultSettings(8, 8))
	if err != nil {
		t.Fatalf("life.New: %v", err)
	}
	sim.Toggle(1, 2)
	sim.Toggle(2, 2)
	sim.Toggle(3, 2)
	sim.Step()

	path := filepath.Join(t.TempDir(), "boards", "blinker.gol")
	size, err := WriteBoard(path, sim)
	if err != nil {
		t.Fatalf("WriteBoard: %v", err)
	}
	fi, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if fi.Size() != size {
		t.Fatalf("reported size %d, file has %d", size, fi.Size())
	}

	got, err := ReadBoard(path)
	if err != nil {
		t.Fatalf("ReadBoard: %v", err)
	}
	if got.CurrentStep() != 1 || !got.Cells().Equal(sim.Cells()) || got.Edits() != 3 {
		t.Fatalf("read back step %d, %d alive, %d edits", got.CurrentStep(), got.Population(), got.Edits())
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("directory holds %d entries, want only the save", len(entries))
	}
}

func TestReadBoardErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := ReadBoard(filepath.Join(dir, "missing.gol")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("missing file: err = %v", err)
	}

	bad := filepath.Join(dir, "bad.gol")
	if err := os.WriteFile(bad, []byte("g22 not gzip"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadBoard(bad); !errors.Is(err, life.ErrMalformedSettings) {
		t.Fatalf("corrupt file: err = %v, want ErrMalformedSettings", err)
	}
}

func TestRecordFile(t *testing.T) {
	sim, err := life.New(life.DefaultSettings(4, 4))
	if err != nil {
		t.Fatalf("life.New: %v", err)
	}
	dir := t.TempDir()
	db := filepath.Join(dir, "saves.db")
	if err := RecordFile(context.Background(), db, filepath.Join(dir, "b.gol"), sim, 42); err != nil {
		t.Fatalf("RecordFile: %v", err)
	}

	idx, err := OpenSQLite(db)
	if err != nil {
		t.Fatal(err)
	}
	defer idx.Close()
	e, ok, err := idx.Lookup(context.Background(), filepath.Join(dir, "b.gol"))
	if err != nil || !ok {
		t.Fatalf("Lookup = %v, %v", ok, err)
	}
	if e.Bytes != 42 || e.Rule != "B3/S23" {
		t.Fatalf("entry = %+v", e)
	}
}

func TestReadBoardDetectsText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "glider.gol")
	if err := os.WriteFile(path, []byte(".o...\n..o..\nooo..\n.....\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	sim, err := ReadBoard(path, life.WithCacheWindow(0))
	if err != nil {
		t.Fatalf("ReadBoard: %v", err)
	}
	if sim.Width() != 5 || sim.Height() != 4 || sim.Population() != 5 || sim.CurrentStep() != 0 {
		t.Fatalf("text board read as %dx%d, %d alive at step %d", sim.Width(), sim.Height(), sim.Population(), sim.CurrentStep())
	}
	if !sim.Alive(1, 0) || !sim.Alive(2, 2) || sim.Alive(0, 0) {
		t.Fatalf("text board cells misplaced: %v", sim.Cells())
	}

	empty := filepath.Join(t.TempDir(), "empty.gol")
	if err := os.WriteFile(empty, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadBoard(empty); !errors.Is(err, life.ErrEmptyText) {
		t.Fatalf("empty file: err = %v, want ErrEmptyText", err)
	}
}

func TestWriteBoardAsText(t *testing.T) {
	sim, err := life.New(life.DefaultSettings(4, 3))
	if err != nil {
		t.Fatalf("life.New: %v", err)
	}
	sim.Toggle(0, 0)
	sim.Toggle(3, 2)

	path := TextPath(filepath.Join(t.TempDir(), "board.gol"))
	if filepath.Ext(path) != ".txt" {
		t.Fatalf("TextPath = %s", path)
	}
	if _, err := WriteBoardAs(path, sim, Text); err != nil {
		t.Fatalf("WriteBoardAs: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if want := "o...\n....\n...o\n"; string(raw) != want {
		t.Fatalf("text save = %q, want %q", raw, want)
	}

	got, err := ReadBoard(path)
	if err != nil {
		t.Fatalf("ReadBoard: %v", err)
	}
	if !got.Cells().Equal(sim.Cells()) {
		t.Fatalf("text save reads back differently")
	}
}

func TestSniff(t *testing.T) {
	cases := []struct {
		in   string
		want Format
	}{
		{"g22\x1f\x8b", Binary},
		{"g2", Text},
		{"", Text},
		{"oo.\n", Text},
	}
	for _, tc := range cases {
		br := bufio.NewReader(strings.NewReader(tc.in))
		if got := Sniff(br); got != tc.want {
			t.Errorf("Sniff(%q) = %s, want %s", tc.in, got, tc.want)
		}
		if rest, _ := io.ReadAll(br); string(rest) != tc.in {
			t.Errorf("Sniff(%q) consumed input, left %q", tc.in, rest)
		}
	}
}
