package life

import (
	"slices"
	"testing"
)

func TestNeighborsBoundedCorner(t *testing.T) {
	s := Settings{MinNeighbors: 2, MaxNeighbors: 3, NeededNeighbors: 3, Width: 5, Height: 4}
	got := Neighbors(s.Index(0, 0), s)
	slices.Sort(got)
	want := []int{s.Index(1, 0), s.Index(0, 1), s.Index(1, 1)}
	slices.Sort(want)
	if !slices.Equal(got, want) {
		t.Fatalf("corner neighbours = %v, want %v", got, want)
	}

	edge := Neighbors(s.Index(4, 2), s)
	if len(edge) != 5 {
		t.Fatalf("edge cell has %d neighbours, want 5", len(edge))
	}
}

func TestNeighborsToroidalWrap(t *testing.T) {
	s := DefaultSettings(5, 4)
	got := Neighbors(s.Index(0, 0), s)
	if len(got) != 8 {
		t.Fatalf("toroidal corner has %d neighbours, want 8", len(got))
	}
	for _, want := range []int{s.Index(4, 3), s.Index(4, 0), s.Index(0, 3), s.Index(1, 1)} {
		if !slices.Contains(got, want) {
			t.Fatalf("neighbours %v missing wrapped index %d", got, want)
		}
	}
}

func TestStepEmptyGridIsFixedPoint(t *testing.T) {
	next := Step(Grid{}, DefaultSettings(8, 8))
	if len(next) != 0 {
		t.Fatalf("empty grid stepped to %d cells", len(next))
	}
}

func TestStepLeavesInputUntouched(t *testing.T) {
	s := DefaultSettings(10, 10)
	g := Grid{s.Index(3, 3): 0, s.Index(3, 4): 0, s.Index(3, 5): 0}
	before := g.Clone()
	Step(g, s)
	if !g.Equal(before) {
		t.Fatalf("Step mutated its input: %v -> %v", before, g)
	}
}

func TestStepAgesSurvivors(t *testing.T) {
	s := DefaultSettings(10, 10)
	block := Grid{s.Index(1, 1): 0, s.Index(2, 1): 0, s.Index(1, 2): 0, s.Index(2, 2): 0}

	g := block
	for i := 1; i <= 3; i++ {
		g = Step(g, s)
		if len(g) != 4 {
			t.Fatalf("block has %d cells after %d steps", len(g), i)
		}
		for idx, age := range g {
			if age != uint32(i) {
				t.Fatalf("cell %d age %d after %d steps", idx, age, i)
			}
		}
	}
}

func TestStepBirthsStartAtZero(t *testing.T) {
	s := DefaultSettings(10, 10)
	g := Grid{s.Index(3, 3): 7, s.Index(3, 4): 7, s.Index(3, 5): 7}
	next := Step(g, s)
	if age := next[s.Index(3, 4)]; age != 8 {
		t.Fatalf("surviving centre age = %d, want 8", age)
	}
	for _, idx := range []int{s.Index(2, 4), s.Index(4, 4)} {
		age, ok := next[idx]
		if !ok || age != 0 {
			t.Fatalf("born cell %d = (%d, %v), want (0, true)", idx, age, ok)
		}
	}
}

func TestStepCustomRules(t *testing.T) {
	// B1/S1..8: every neighbour of a lone cell is born and the cell itself dies.
	s := Settings{MinNeighbors: 1, MaxNeighbors: 8, NeededNeighbors: 1, Width: 7, Height: 7}
	next := Step(Grid{s.Index(3, 3): 0}, s)
	if _, ok := next[s.Index(3, 3)]; ok {
		t.Fatalf("isolated cell survived with no neighbours")
	}
	if len(next) != 8 {
		t.Fatalf("got %d births, want 8", len(next))
	}
}
