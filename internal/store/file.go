package store

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"lifetrace/pkg/sims/life"
)

// Format selects the on-disk encoding of a board.
type Format int

const (
	// Binary is the signed, compressed save with settings and history.
	Binary Format = iota
	// Text is the glyph board without rules or history.
	Text
)

func (f Format) String() string {
	if f == Text {
		return "text"
	}
	return "binary"
}

// Sniff reports the format of the board buffered in br without consuming
// any input. Anything that does not open with the binary signature is
// treated as text.
func Sniff(br *bufio.Reader) Format {
	head, _ := br.Peek(len(life.Signature))
	if bytes.Equal(head, life.Signature) {
		return Binary
	}
	return Text
}

// ReadBoard decodes the board at path, binary or text.
func ReadBoard(path string, opts ...life.Option) (*life.Simulation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening board: %w", err)
	}
	defer f.Close()

	br := bufio.NewReader(f)
	var sim *life.Simulation
	switch Sniff(br) {
	case Binary:
		sim, err = life.DecodeBinary(br, opts...)
	default:
		sim, err = life.DecodeText(br, opts...)
	}
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return sim, nil
}

// WriteBoard saves sim to path in the binary format and returns the size
// of the written file.
func WriteBoard(path string, sim *life.Simulation) (int64, error) {
	return WriteBoardAs(path, sim, Binary)
}

// WriteBoardAs saves sim to path in the given format through a temporary
// file in the same directory, so a failed write never replaces a good save.
func WriteBoardAs(path string, sim *life.Simulation, format Format) (int64, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("creating %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".gol-*")
	if err != nil {
		return 0, fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if format == Text {
		err = sim.EncodeText(tmp)
	} else {
		err = sim.EncodeBinary(tmp)
	}
	if err != nil {
		tmp.Close()
		return 0, fmt.Errorf("saving %s: %w", path, err)
	}
	fi, err := tmp.Stat()
	if err != nil {
		tmp.Close()
		return 0, fmt.Errorf("saving %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return 0, fmt.Errorf("saving %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return 0, fmt.Errorf("saving %s: %w", path, err)
	}
	return fi.Size(), nil
}

// TextPath returns the path a text copy of the board at path is saved to:
// the same name with a .txt extension.
func TextPath(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ".txt"
}

// RecordFile opens the index at dbPath and records the save of sim at path,
// stored as an absolute path.
func RecordFile(ctx context.Context, dbPath, path string, sim *life.Simulation, size int64) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	idx, err := OpenSQLite(dbPath)
	if err != nil {
		return err
	}
	defer idx.Close()
	return idx.Record(ctx, EntryFor(abs, sim, size, time.Now()))
}
