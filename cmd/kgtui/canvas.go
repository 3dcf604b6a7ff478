package main

import (
	"math"
	"strings"

	"kgms-backend/pkg/explorer"
)

// renderCanvas draws the view as text. Edges are dotted lines, nodes are
// bullets followed by their label; the selected node is bracketed.
func renderCanvas(view *explorer.GraphView, width, height int, selected string) string {
	if width <= 0 || height <= 0 {
		return ""
	}
	grid := make([][]rune, height)
	for y := range grid {
		grid[y] = []rune(strings.Repeat(" ", width))
	}

	pos := explorer.Layout(view, float64(width-1), float64(height-1), 60)
	cell := func(id string) (int, int) {
		p := pos[id]
		return int(math.Round(p.X)), int(math.Round(p.Y))
	}

	for _, e := range view.Edges {
		x0, y0 := cell(e.From)
		x1, y1 := cell(e.To)
		steps := max(abs(x1-x0), abs(y1-y0))
		for i := 1; i < steps; i++ {
			x := x0 + (x1-x0)*i/steps
			y := y0 + (y1-y0)*i/steps
			grid[y][x] = '·'
		}
	}

	for _, n := range view.Nodes {
		x, y := cell(n.ID)
		label := "● " + n.Label
		if n.ID == selected {
			label = "◉ [" + n.Label + "]"
		}
		for i, r := range []rune(label) {
			if x+i >= width {
				break
			}
			grid[y][x+i] = r
		}
	}

	lines := make([]string, height)
	for y, row := range grid {
		lines[y] = strings.TrimRight(string(row), " ")
	}
	return strings.Join(lines, "\n")
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
