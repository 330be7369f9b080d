package life

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
)

// Glyphs used by the text format.
const (
	AliveGlyph = 'o'
	DeadGlyph  = '.'
)

// EncodeText writes the board as rows of glyphs, one line per row. Settings,
// step and history are not part of the text format.
func (s *Simulation) EncodeText(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for y := 0; y < s.settings.Height; y++ {
		for x := 0; x < s.settings.Width; x++ {
			glyph := byte(DeadGlyph)
			if _, ok := s.cells[s.settings.Index(x, y)]; ok {
				glyph = AliveGlyph
			}
			if err := bw.WriteByte(glyph); err != nil {
				return fmt.Errorf("write row %d: %w", y, err)
			}
		}
		if err := bw.WriteByte('\n'); err != nil {
			return fmt.Errorf("write row %d: %w", y, err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flush text: %w", err)
	}
	return nil
}

// DecodeText builds a fresh simulation at step 0 from a text board. The
// width comes from the first row and the height from the number of rows;
// the rules are always DefaultSettings. Blank lines are skipped, short rows
// are padded with dead cells and long rows are cut to the width.
func DecodeText(r io.Reader, opts ...Option) (*Simulation, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<24)
	sc.Split(scanRows)

	var (
		width int
		rows  [][]rune
	)
	for sc.Scan() {
		line := []rune(sc.Text())
		if len(line) == 0 {
			continue
		}
		if width == 0 {
			width = len(line)
		}
		rows = append(rows, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read text: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrEmptyText
	}

	sim, err := New(DefaultSettings(width, len(rows)), opts...)
	if err != nil {
		return nil, err
	}
	for y, row := range rows {
		for x, glyph := range row {
			if x >= width {
				break
			}
			if glyph == AliveGlyph {
				sim.cells[sim.settings.Index(x, y)] = 0
			}
		}
	}
	return sim, nil
}

// scanRows splits on "\n", "\r\n" or a lone "\r".
func scanRows(data []byte, atEOF bool) (int, []byte, error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		if data[i] == '\n' {
			return i + 1, data[:i], nil
		}
		if i+1 < len(data) {
			if data[i+1] == '\n' {
				return i + 2, data[:i], nil
			}
			return i + 1, data[:i], nil
		}
		if atEOF {
			return i + 1, data[:i], nil
		}
		return 0, nil, nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}
