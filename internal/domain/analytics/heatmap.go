package analytics

import "github.com/okian/volley/internal/domain/model"

// Heatmap counts player positions at stroke peaks on a square grid.
// Grid is indexed [row][col] with rows following y.
type Heatmap struct {
	Size     int
	Grid     [][]int
	Total    int
	Coverage float64 // fraction of cells visited at least once
}

// BuildHeatmap bins event positions. Events without a position are skipped.
func BuildHeatmap(timeline []model.StrokeEvent, size int) Heatmap {
	if size <= 0 {
		size = defaultGridSize
	}
	h := Heatmap{Size: size, Grid: make([][]int, size)}
	for i := range h.Grid {
		h.Grid[i] = make([]int, size)
	}

	visited := 0
	for _, e := range timeline {
		if e.Position == (model.Point{}) {
			continue
		}
		col := cell(e.Position.X, size)
		row := cell(e.Position.Y, size)
		if h.Grid[row][col] == 0 {
			visited++
		}
		h.Grid[row][col]++
		h.Total++
	}
	h.Coverage = float64(visited) / float64(size*size)
	return h
}

func cell(v float64, size int) int {
	i := int(v * float64(size-1))
	return max(0, min(size-1, i))
}
