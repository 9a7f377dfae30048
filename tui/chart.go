package tui

import (
	"fmt"
	"strings"

	"github.com/jrsteele09/go-github-dashboard/stats"
)

var levels = []rune{' ', '▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Chart renders a daily series as a block chart of at most width columns and
// height rows, with the y maximum on the left and the first and last day
// labels underneath.
func Chart(buckets []stats.DayBucket, width, height int) string {
	if len(buckets) == 0 {
		return "no data"
	}
	if height < 1 {
		height = 1
	}

	maxCount := stats.Max(buckets)
	axis := len(fmt.Sprint(maxCount))
	columns := sample(buckets, width-axis-1)

	var b strings.Builder
	for row := height - 1; row >= 0; row-- {
		label := ""
		if row == height-1 {
			label = fmt.Sprint(maxCount)
		} else if row == 0 {
			label = "0"
		}
		b.WriteString(fmt.Sprintf("%*s│", axis, label))

		for _, c := range columns {
			b.WriteRune(cell(c.Count, maxCount, height, row))
		}
		b.WriteString("\n")
	}

	first := columns[0].Label
	last := columns[len(columns)-1].Label
	gap := len(columns) - len(first) - len(last)
	if gap < 1 {
		gap = 1
	}
	b.WriteString(strings.Repeat(" ", axis+1) + first + strings.Repeat(" ", gap) + last)
	return b.String()
}

// cell picks the block for one row of one column. Values scale to height*8 steps.
func cell(count, maxCount, height, row int) rune {
	if maxCount == 0 {
		return levels[0]
	}
	steps := count * height * 8 / maxCount
	fill := steps - row*8
	switch {
	case fill >= 8:
		return levels[8]
	case fill <= 0:
		return levels[0]
	default:
		return levels[fill]
	}
}

// sample keeps at most width buckets, evenly spaced, always including the last.
func sample(buckets []stats.DayBucket, width int) []stats.DayBucket {
	if width < 2 || len(buckets) <= width {
		return buckets
	}
	out := make([]stats.DayBucket, 0, width)
	for i := 0; i < width-1; i++ {
		out = append(out, buckets[i*len(buckets)/width])
	}
	return append(out, buckets[len(buckets)-1])
}
