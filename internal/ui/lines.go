// Package ui draws the viewer's heads-up display and overlays.
package ui

import (
	"fmt"
	"time"

	"lifetrace/internal/core"
	"lifetrace/internal/session"
)

// HelpLine lists the viewer key bindings.
const HelpLine = "click toggle  space play  left/right step  R reverse  C clear  S save  T text  +/- speed  G grid"

// StatusLines renders the HUD text: the autoplay state followed by one
// line per parameter group of snap.
func StatusLines(snap core.ParameterSnapshot, st session.Status) []string {
	mode := "paused"
	if st.Playing {
		mode = "playing"
		if st.Reverse {
			mode = "rewinding"
		}
	} else if st.Reverse {
		mode = "paused (reverse)"
	}
	lines := []string{fmt.Sprintf("Step %d  %s  %s/gen", st.Step, mode, st.Interval.Round(time.Millisecond))}
	return append(lines, snap.Lines()...)
}
