package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"lifetrace/internal/telemetry"
	"lifetrace/pkg/sims/life"
)

type harness struct {
	t     *testing.T
	dir   string
	board string
	store string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	dir := t.TempDir()
	return &harness{
		t:     t,
		dir:   dir,
		board: filepath.Join(dir, "board.gol"),
		store: filepath.Join(dir, "saves.db"),
	}
}

// run executes the CLI against the harness board and returns stdout.
func (h *harness) run(stdin string, args ...string) (string, error) {
	h.t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--file", h.board, "--set", "store=" + h.store}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func (h *harness) mustRun(args ...string) string {
	h.t.Helper()
	out, err := h.run("", args...)
	if err != nil {
		h.t.Fatalf("life %s: %v", strings.Join(args, " "), err)
	}
	return out
}

func (h *harness) load() *life.Simulation {
	h.t.Helper()
	f, err := os.Open(h.board)
	if err != nil {
		h.t.Fatalf("open board: %v", err)
	}
	defer f.Close()
	sim, err := life.DecodeBinary(f)
	if err != nil {
		h.t.Fatalf("decode board: %v", err)
	}
	return sim
}

func (h *harness) blinker() {
	h.t.Helper()
	h.mustRun("new", "--width", "5", "--height", "5")
	h.mustRun("toggle", "1,2", "2,2", "3,2")
}

const (
	horizontal = ".....\n.....\n.ooo.\n.....\n.....\n"
	vertical   = ".....\n..o..\n..o..\n..o..\n.....\n"
)

func TestBlinkerThroughCommands(t *testing.T) {
	h := newHarness(t)
	h.blinker()

	if out := h.mustRun("show"); out != "step 0\n"+horizontal {
		t.Fatalf("show at step 0:\n%s", out)
	}
	h.mustRun("step")
	if out := h.mustRun("show"); out != "step 1\n"+vertical {
		t.Fatalf("show at step 1:\n%s", out)
	}

	h.mustRun("step", "-n", "3")
	if got := h.load().CurrentStep(); got != 4 {
		t.Fatalf("step = %d, want 4", got)
	}
	h.mustRun("goto", "1")
	if out := h.mustRun("show"); out != "step 1\n"+vertical {
		t.Fatalf("show after goto 1:\n%s", out)
	}
	h.mustRun("back")
	if out := h.mustRun("show"); out != "step 0\n"+horizontal {
		t.Fatalf("show after back:\n%s", out)
	}
}

func TestShowAtDoesNotMoveBoard(t *testing.T) {
	h := newHarness(t)
	h.blinker()

	if out := h.mustRun("show", "--at", "3"); out != "step 3\n"+vertical {
		t.Fatalf("show --at 3:\n%s", out)
	}
	if got := h.load().CurrentStep(); got != 0 {
		t.Fatalf("saved step = %d, want 0", got)
	}
}

func TestShowAges(t *testing.T) {
	h := newHarness(t)
	h.blinker()
	h.mustRun("step", "-n", "2")

	// The centre cell survives every generation; the ends are reborn.
	want := "step 2\n.....\n.....\n.020.\n.....\n.....\n"
	if out := h.mustRun("show", "--ages"); out != want {
		t.Fatalf("show --ages:\n%s\nwant:\n%s", out, want)
	}
}

func TestGotoRejectsNegativeStep(t *testing.T) {
	h := newHarness(t)
	h.blinker()
	if _, err := h.run("", "goto", "--", "-1"); err == nil {
		t.Fatal("goto -1 succeeded")
	}
}

func TestNewRefusesToOverwrite(t *testing.T) {
	h := newHarness(t)
	h.mustRun("new")
	if _, err := h.run("", "new"); err == nil {
		t.Fatal("second new succeeded without --force")
	}
	h.mustRun("new", "--force", "--bounded", "--width", "7")
	s := h.load().Settings()
	if s.Toroidal || s.Width != 7 {
		t.Fatalf("settings = %+v, want bounded width 7", s)
	}
}

func TestNewWithDensityIsRecorded(t *testing.T) {
	h := newHarness(t)
	h.mustRun("new", "--density", "0.5", "--seed", "7")
	sim := h.load()
	if sim.Population() == 0 {
		t.Fatal("seeded board is empty")
	}
	if got := len(sim.History(0)); got != sim.Population() {
		t.Fatalf("history at 0 has %d toggles, want %d", got, sim.Population())
	}
}

func TestNewRejectsInvalidRules(t *testing.T) {
	h := newHarness(t)
	_, err := h.run("", "new", "--set", "min=4,max=2")
	if err == nil {
		t.Fatal("new accepted min > max")
	}
	if !errors.Is(err, life.ErrInvalidSettings) {
		t.Fatalf("err = %v, want ErrInvalidSettings", err)
	}
}

func TestClearCommand(t *testing.T) {
	h := newHarness(t)
	h.blinker()
	h.mustRun("step", "-n", "2")
	h.mustRun("clear")
	sim := h.load()
	if sim.CurrentStep() != 0 || sim.Population() != 0 || sim.Edits() != 0 {
		t.Fatalf("after clear: step %d, %d alive, %d edits", sim.CurrentStep(), sim.Population(), sim.Edits())
	}
}

func TestImportExport(t *testing.T) {
	h := newHarness(t)
	text := ".o.\r\n.o.\r\n.o.\r\n"
	if _, err := h.run(text, "import", "-"); err != nil {
		t.Fatalf("import: %v", err)
	}
	sim := h.load()
	if sim.Width() != 3 || sim.Height() != 3 || sim.Population() != 3 {
		t.Fatalf("imported %dx%d with %d alive", sim.Width(), sim.Height(), sim.Population())
	}

	out := filepath.Join(h.dir, "out.txt")
	h.mustRun("export", out)
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if got := string(data); got != ".o.\n.o.\n.o.\n" {
		t.Fatalf("exported %q", got)
	}
}

func TestImportEmptyText(t *testing.T) {
	h := newHarness(t)
	_, err := h.run("\n\n", "import", "-")
	if !errors.Is(err, life.ErrEmptyText) {
		t.Fatalf("err = %v, want ErrEmptyText", err)
	}
}

func TestLoadReportsCorruptBoard(t *testing.T) {
	h := newHarness(t)
	if err := os.WriteFile(h.board, []byte("g22 not gzip"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := h.run("", "step")
	if !errors.Is(err, life.ErrMalformedSettings) {
		t.Fatalf("err = %v, want ErrMalformedSettings", err)
	}
}

func TestLoadAcceptsTextBoard(t *testing.T) {
	h := newHarness(t)
	if err := os.WriteFile(h.board, []byte(horizontal), 0o644); err != nil {
		t.Fatal(err)
	}
	if out := h.mustRun("step"); !strings.Contains(out, "step 1, 3 alive") {
		t.Fatalf("step output = %q", out)
	}
	sim := h.load()
	var buf bytes.Buffer
	if err := sim.EncodeText(&buf); err != nil {
		t.Fatal(err)
	}
	if buf.String() != vertical {
		t.Fatalf("board after step:\n%s", buf.String())
	}
}

func TestRunWritesTelemetry(t *testing.T) {
	h := newHarness(t)
	h.blinker()
	csvPath := filepath.Join(h.dir, "run", "blinker.csv")
	out := h.mustRun("run", "-n", "4", "--csv", csvPath)
	if !strings.Contains(out, "mean population 3.00") {
		t.Fatalf("summary missing:\n%s", out)
	}

	f, err := os.Open(csvPath)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := telemetry.ReadCSV(f)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 5 {
		t.Fatalf("got %d rows, want 5", len(rows))
	}
	if rows[1].Births != 2 || rows[1].Deaths != 2 {
		t.Fatalf("row 1 = %+v, want 2 births and 2 deaths", rows[1])
	}
	if got := h.load().CurrentStep(); got != 4 {
		t.Fatalf("saved step = %d, want 4", got)
	}
}

func TestRunDryRunKeepsBoard(t *testing.T) {
	h := newHarness(t)
	h.blinker()
	h.mustRun("run", "-n", "3", "--dry-run")
	if got := h.load().CurrentStep(); got != 0 {
		t.Fatalf("saved step = %d, want 0", got)
	}
}

func TestPlayStopsAfterSteps(t *testing.T) {
	h := newHarness(t)
	h.blinker()
	out := h.mustRun("play", "-n", "2", "--interval", "1ms")
	if got := strings.Count(out, "alive\n"); got != 3 {
		t.Fatalf("printed %d frames, want 3:\n%s", got, out)
	}
	if got := h.load().CurrentStep(); got != 2 {
		t.Fatalf("saved step = %d, want 2", got)
	}
}

func TestPlayReverseStopsAtZero(t *testing.T) {
	h := newHarness(t)
	h.blinker()
	h.mustRun("step", "-n", "3")
	h.mustRun("play", "--reverse", "--interval", "1ms")
	sim := h.load()
	if sim.CurrentStep() != 0 {
		t.Fatalf("saved step = %d, want 0", sim.CurrentStep())
	}
	if sim.Population() != 3 || !sim.Alive(1, 2) {
		t.Fatal("reverse playback lost the step 0 board")
	}
}

func TestSweepRanksRules(t *testing.T) {
	h := newHarness(t)
	csvPath := filepath.Join(h.dir, "sweep.csv")
	out := h.mustRun("sweep", "--set", "w=12,h=12", "--min", "2", "--max", "2-3", "--needed", "3",
		"--steps", "10", "--workers", "2", "--csv", csvPath)
	if !strings.Contains(out, "Sweeping 2 rule sets on 12x12") {
		t.Fatalf("header missing:\n%s", out)
	}

	data, err := os.ReadFile(csvPath)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("csv has %d lines, want header + 2:\n%s", len(lines), data)
	}
	if !strings.HasPrefix(lines[0], "rule,min,max,needed") {
		t.Fatalf("csv header = %q", lines[0])
	}
}

func TestSweepIsDeterministic(t *testing.T) {
	base := life.DefaultSettings(16, 16)
	sets := []ruleSet{{min: 2, max: 3, needed: 3}, {min: 1, max: 5, needed: 3}}
	a := runSweep(base, sets, 20, 2, 0.3, 99)
	b := runSweep(base, sets, 20, 1, 0.3, 99)
	less := sweepOrders["mean"]
	for _, r := range [][]sweepResult{a, b} {
		if less(r[1], r[0]) {
			r[0], r[1] = r[1], r[0]
		}
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("result %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestSavesIndex(t *testing.T) {
	h := newHarness(t)
	h.blinker()

	out := h.mustRun("saves")
	abs, _ := filepath.Abs(h.board)
	if !strings.Contains(out, abs) || !strings.Contains(out, "B3/S23") {
		t.Fatalf("saves listing missing board:\n%s", out)
	}

	if err := os.Remove(h.board); err != nil {
		t.Fatal(err)
	}
	out = h.mustRun("saves", "prune")
	if !strings.Contains(out, "1 entry pruned") {
		t.Fatalf("prune output:\n%s", out)
	}
	if out := h.mustRun("saves"); !strings.Contains(out, "No saves recorded.") {
		t.Fatalf("saves after prune:\n%s", out)
	}
}

func TestSavesForget(t *testing.T) {
	h := newHarness(t)
	h.mustRun("new")
	out := h.mustRun("saves", "forget", h.board)
	if !strings.Contains(out, "forgot") {
		t.Fatalf("forget output:\n%s", out)
	}
	out = h.mustRun("saves", "forget", h.board)
	if !strings.Contains(out, "not in index") {
		t.Fatalf("second forget output:\n%s", out)
	}
}

func TestNoIndexSkipsRecording(t *testing.T) {
	h := newHarness(t)
	h.mustRun("new", "--no-index")
	if out := h.mustRun("saves"); !strings.Contains(out, "No saves recorded.") {
		t.Fatalf("saves listing:\n%s", out)
	}
}

func TestInfo(t *testing.T) {
	h := newHarness(t)
	h.blinker()
	out := h.mustRun("info")
	for _, want := range []string{"Size 5x5", "Rule B3/S23", "Alive 3", "Edited at: 0", "of 25 cells", "Index: recorded", "at step 0"} {
		if !strings.Contains(out, want) {
			t.Errorf("info missing %q:\n%s", want, out)
		}
	}

	h.mustRun("saves", "forget", h.board)
	if out := h.mustRun("info"); !strings.Contains(out, "Index: not recorded") {
		t.Fatalf("info after forget:\n%s", out)
	}
	if out := h.mustRun("info", "--no-index"); strings.Contains(out, "Index:") {
		t.Fatalf("info --no-index mentions the index:\n%s", out)
	}
}

func TestParsePoints(t *testing.T) {
	got, err := parsePoints([]string{"1,2", " -3 , 4"})
	if err != nil {
		t.Fatal(err)
	}
	if got[0] != [2]int{1, 2} || got[1] != [2]int{-3, 4} {
		t.Fatalf("points = %v", got)
	}
	for _, bad := range []string{"1", "a,2", "1,b"} {
		if _, err := parsePoints([]string{bad}); !errors.Is(err, errBadPoint) {
			t.Errorf("parsePoints(%q) err = %v", bad, err)
		}
	}
}

func TestParseRange(t *testing.T) {
	tests := []struct {
		in     string
		lo, hi int
		ok     bool
	}{
		{"3", 3, 3, true},
		{"1-4", 1, 4, true},
		{"4-1", 0, 0, false},
		{"x", 0, 0, false},
		{"1-", 0, 0, false},
	}
	for _, tt := range tests {
		lo, hi, err := parseRange(tt.in)
		if (err == nil) != tt.ok || lo != tt.lo || hi != tt.hi {
			t.Errorf("parseRange(%q) = %d, %d, %v", tt.in, lo, hi, err)
		}
	}
}

func TestAgeGlyph(t *testing.T) {
	tests := map[uint8]byte{0: '.', 1: '0', 10: '9', 11: '+', 255: '+'}
	for v, want := range tests {
		if got := ageGlyph(v); got != want {
			t.Errorf("ageGlyph(%d) = %q, want %q", v, got, want)
		}
	}
}
