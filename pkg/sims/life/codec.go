package life

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
)

// Signature prefixes every binary save.
var Signature = []byte("g22")

// EncodeBinary writes the full simulation state: settings, step counter,
// live cells and toggle history. The replay cache is not saved.
func (s *Simulation) EncodeBinary(w io.Writer) error {
	if _, err := w.Write(Signature); err != nil {
		return fmt.Errorf("write signature: %w", err)
	}

	zw := gzip.NewWriter(w)
	bw := bufio.NewWriterSize(zw, 64*1024)
	enc := gob.NewEncoder(bw)

	if err := enc.Encode(s.settings); err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	var step [8]byte
	binary.BigEndian.PutUint64(step[:], s.step)
	if _, err := bw.Write(step[:]); err != nil {
		return fmt.Errorf("encode step count: %w", err)
	}
	if err := enc.Encode(s.cells); err != nil {
		return fmt.Errorf("encode cells: %w", err)
	}
	if err := enc.Encode(s.history.clone()); err != nil {
		return fmt.Errorf("encode history: %w", err)
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flush save: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("close save: %w", err)
	}
	return nil
}

// DecodeBinary reads a simulation written by EncodeBinary. A missing or
// wrong signature yields ErrInvalidSignature; a damaged section yields the
// matching ErrMalformed* error. Failures of r itself are returned wrapped
// and never match those sentinels.
func DecodeBinary(r io.Reader, opts ...Option) (*Simulation, error) {
	src := &sourceReader{r: r}

	sig := make([]byte, len(Signature))
	if _, err := io.ReadFull(src, sig); err != nil {
		if src.err != nil {
			return nil, fmt.Errorf("read save: %w", src.err)
		}
		return nil, ErrInvalidSignature
	}
	if !bytes.Equal(sig, Signature) {
		return nil, ErrInvalidSignature
	}

	fail := func(stage, err error) error {
		if src.err != nil {
			return fmt.Errorf("read save: %w", src.err)
		}
		return fmt.Errorf("%w: %v", stage, err)
	}

	zr, err := gzip.NewReader(src)
	if err != nil {
		return nil, fail(ErrMalformedSettings, err)
	}
	defer zr.Close()
	br := bufio.NewReader(zr)
	// br is an io.ByteReader, so the gob decoder reads exactly one message
	// at a time and the raw step counter can be read between them.
	dec := gob.NewDecoder(br)

	var settings Settings
	if err := dec.Decode(&settings); err != nil {
		return nil, fail(ErrMalformedSettings, err)
	}
	if err := settings.Validate(); err != nil {
		return nil, fail(ErrMalformedSettings, err)
	}

	var step [8]byte
	if _, err := io.ReadFull(br, step[:]); err != nil {
		return nil, fail(ErrMalformedStepCount, err)
	}

	var cells Grid
	if err := dec.Decode(&cells); err != nil {
		return nil, fail(ErrMalformedCells, err)
	}
	for idx := range cells {
		if idx < 0 || idx >= settings.Cells() {
			return nil, fail(ErrMalformedCells, fmt.Errorf("cell %d outside %dx%d board", idx, settings.Width, settings.Height))
		}
	}

	var logged map[uint64][]Toggle
	if err := dec.Decode(&logged); err != nil {
		return nil, fail(ErrMalformedHistory, err)
	}
	history, err := historyFromMap(logged, settings)
	if err != nil {
		return nil, fail(ErrMalformedHistory, err)
	}
	// Reading to the end verifies the gzip trailer.
	if _, err := io.Copy(io.Discard, br); err != nil {
		return nil, fail(ErrMalformedHistory, err)
	}

	sim, err := New(settings, opts...)
	if err != nil {
		return nil, fail(ErrMalformedSettings, err)
	}
	if cells == nil {
		cells = make(Grid)
	}
	sim.step = binary.BigEndian.Uint64(step[:])
	sim.cells = cells
	sim.history = history
	return sim, nil
}

// historyFromMap checks that every decoded toggle targets a board cell.
// Steps past the saved step count are kept; they are edits left behind by
// a jump to an earlier step.
func historyFromMap(logged map[uint64][]Toggle, settings Settings) (History, error) {
	h := make(History, len(logged))
	for step, toggles := range logged {
		for _, t := range toggles {
			if t.Index < 0 || t.Index >= settings.Cells() {
				return nil, fmt.Errorf("toggle at step %d targets cell %d outside board", step, t.Index)
			}
		}
		if len(toggles) > 0 {
			h[step] = toggles
		}
	}
	return h, nil
}

// sourceReader remembers the first failure of the underlying reader so it
// can be told apart from a truncated or corrupt save.
type sourceReader struct {
	r   io.Reader
	err error
}

func (s *sourceReader) Read(p []byte) (int, error) {
	n, err := s.r.Read(p)
	if err != nil && !errors.Is(err, io.EOF) && s.err == nil {
		s.err = err
	}
	return n, err
}
