package stats

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// maxCellWidth bounds free-text columns such as player lists and score lines.
const maxCellWidth = 32

const ellipsis = "…"

type column struct {
	title string
	right bool
	clip  bool
}

func leftCol(title string) column  { return column{title: title} }
func rightCol(title string) column { return column{title: title, right: true} }
func textCol(title string) column  { return column{title: title, clip: true} }

// formatTable lays rows out under cols, two spaces apart. Cells are measured
// in terminal cells; text columns are cut at maxCellWidth. Cells past the
// last column are dropped.
func formatTable(cols []column, rows [][]string) []string {
	if len(cols) == 0 {
		return nil
	}
	widths := make([]int, len(cols))
	for i, c := range cols {
		widths[i] = displayWidth(c.title)
	}
	cells := make([][]string, len(rows))
	for r, row := range rows {
		cells[r] = make([]string, len(cols))
		for i := range cols {
			if i < len(row) {
				cells[r][i] = row[i]
				if cols[i].clip {
					cells[r][i] = clipCell(row[i])
				}
			}
			if w := displayWidth(cells[r][i]); w > widths[i] {
				widths[i] = w
			}
		}
	}

	titles := make([]string, len(cols))
	for i, c := range cols {
		titles[i] = c.title
	}
	lines := make([]string, 0, len(rows)+1)
	lines = append(lines, joinCells(titles, cols, widths))
	for _, row := range cells {
		lines = append(lines, joinCells(row, cols, widths))
	}
	return lines
}

func joinCells(cells []string, cols []column, widths []int) string {
	var b strings.Builder
	for i, cell := range cells {
		if i > 0 {
			b.WriteString("  ")
		}
		pad := strings.Repeat(" ", widths[i]-displayWidth(cell))
		if cols[i].right {
			b.WriteString(pad + cell)
		} else {
			b.WriteString(cell + pad)
		}
	}
	return strings.TrimRight(b.String(), " ")
}

func clipCell(value string) string {
	if displayWidth(value) <= maxCellWidth {
		return value
	}
	return runewidth.Truncate(value, maxCellWidth, ellipsis)
}

// displayWidth counts terminal cells; CJK and emoji names take two.
func displayWidth(value string) int {
	return runewidth.StringWidth(value)
}
