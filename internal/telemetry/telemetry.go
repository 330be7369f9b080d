// Package telemetry records per-generation statistics of a run and writes
// them as CSV.
package telemetry

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/stat"

	"lifetrace/pkg/sims/life"
)

// Row is one generation of a run.
type Row struct {
	Step       uint64  `csv:"step"`
	Population int     `csv:"population"`
	Births     int     `csv:"births"`
	Deaths     int     `csv:"deaths"`
	MeanAge    float64 `csv:"mean_age"`
}

// Recorder accumulates rows as a simulation advances.
type Recorder struct {
	rows []Row
	prev life.Grid
}

// Observe appends a row describing the current board of sim. Births and
// deaths are counted against the previously observed board.
func (r *Recorder) Observe(sim *life.Simulation) {
	cur := sim.Cells()
	row := Row{Step: sim.CurrentStep(), Population: len(cur)}

	var ages float64
	for idx, age := range cur {
		ages += float64(age)
		if _, ok := r.prev[idx]; !ok && r.prev != nil {
			row.Births++
		}
	}
	for idx := range r.prev {
		if _, ok := cur[idx]; !ok {
			row.Deaths++
		}
	}
	if len(cur) > 0 {
		row.MeanAge = ages / float64(len(cur))
	}

	r.rows = append(r.rows, row)
	r.prev = cur
}

// Rows returns the recorded rows.
func (r *Recorder) Rows() []Row { return r.rows }

// WriteCSV writes rows with a header line.
func WriteCSV(w io.Writer, rows []Row) error {
	if err := gocsv.Marshal(&rows, w); err != nil {
		return fmt.Errorf("writing telemetry: %w", err)
	}
	return nil
}

// ReadCSV parses rows written by WriteCSV.
func ReadCSV(r io.Reader) ([]Row, error) {
	var rows []Row
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, fmt.Errorf("reading telemetry: %w", err)
	}
	return rows, nil
}

// WriteFile writes rows to dir/name, creating dir when needed, and returns
// the file path.
func WriteFile(dir, name string, rows []Row) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", name, err)
	}
	if err := WriteCSV(f, rows); err != nil {
		f.Close()
		return "", err
	}
	return path, f.Close()
}

// Summary condenses a run.
type Summary struct {
	Steps          int
	MeanPopulation float64
	StdPopulation  float64
	Peak           int
	PeakStep       uint64
	Final          int
}

// Summarize computes population statistics over rows.
func Summarize(rows []Row) Summary {
	if len(rows) == 0 {
		return Summary{}
	}
	pop := make([]float64, len(rows))
	s := Summary{Steps: len(rows), Final: rows[len(rows)-1].Population}
	for i, row := range rows {
		pop[i] = float64(row.Population)
		if row.Population > s.Peak {
			s.Peak = row.Population
			s.PeakStep = row.Step
		}
	}
	s.MeanPopulation, s.StdPopulation = stat.MeanStdDev(pop, nil)
	if len(rows) == 1 {
		s.StdPopulation = 0
	}
	return s
}
