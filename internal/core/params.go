package core

import (
	"fmt"
	"strings"

	"lifetrace/pkg/sims/life"
)

// Parameter describes a single value shown to the user.
type Parameter struct {
	Key   string
	Label string
	Value string
}

// ParameterGroup clusters related parameters for presentation purposes.
type ParameterGroup struct {
	Name   string
	Params []Parameter
}

// ParameterSnapshot captures the settings and timeline of a simulation.
type ParameterSnapshot struct {
	Groups []ParameterGroup
}

// Describe captures the parameters of sim for display.
func Describe(sim *life.Simulation) ParameterSnapshot {
	s := sim.Settings()
	topology := "Non-Toroidal"
	if s.Toroidal {
		topology = "Toroidal"
	}
	return ParameterSnapshot{Groups: []ParameterGroup{
		{Name: "Board", Params: []Parameter{
			{Key: "size", Label: "Size", Value: fmt.Sprintf("%dx%d", s.Width, s.Height)},
			{Key: "topology", Label: "Edges", Value: topology},
		}},
		{Name: "Rules", Params: []Parameter{
			{Key: "survive", Label: "Stay alive", Value: fmt.Sprintf("%d-%d", s.MinNeighbors, s.MaxNeighbors)},
			{Key: "birth", Label: "Become alive", Value: fmt.Sprint(s.NeededNeighbors)},
			{Key: "rule", Label: "Rule", Value: s.Rule()},
		}},
		{Name: "Timeline", Params: []Parameter{
			{Key: "step", Label: "Step", Value: fmt.Sprint(sim.CurrentStep())},
			{Key: "population", Label: "Alive", Value: fmt.Sprint(sim.Population())},
			{Key: "edits", Label: "Edits", Value: fmt.Sprint(sim.Edits())},
			{Key: "cached", Label: "Cached steps", Value: fmt.Sprint(sim.CachedSteps())},
		}},
	}}
}

// Lookup returns the value stored under key.
func (p ParameterSnapshot) Lookup(key string) (string, bool) {
	for _, g := range p.Groups {
		for _, param := range g.Params {
			if param.Key == key {
				return param.Value, true
			}
		}
	}
	return "", false
}

// Lines renders one line per group, e.g. "Rules: Stay alive 2-3, Become alive 3".
func (p ParameterSnapshot) Lines() []string {
	lines := make([]string, 0, len(p.Groups))
	for _, g := range p.Groups {
		parts := make([]string, 0, len(g.Params))
		for _, param := range g.Params {
			parts = append(parts, param.Label+" "+param.Value)
		}
		lines = append(lines, g.Name+": "+strings.Join(parts, ", "))
	}
	return lines
}
