package stats

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/term"

	"github.com/verte-zerg/meeple/internal/model"
)

const (
	monthLayout         = "2006-01"
	minChartWidth       = 10
	chartSeparator      = " │ "
	barChar             = "█"
	barColor            = "\x1b[36m"
	colorReset          = "\x1b[0m"
	terminalWidthBackup = 80
	maxActivityMonths   = 240
)

// MonthlyActivity counts sessions per calendar month, oldest first. Months
// without sessions between the first and last one are included with zero plays,
// unless the range spans more than maxActivityMonths.
// Sessions with unparseable dates are ignored.
func MonthlyActivity(sessions []model.Session) []model.MonthActivity {
	counts := make(map[string]int)
	var first, last time.Time
	for _, s := range sessions {
		day := s.Day()
		if day.IsZero() {
			continue
		}
		month := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, time.UTC)
		counts[month.Format(monthLayout)]++
		if first.IsZero() || month.Before(first) {
			first = month
		}
		if month.After(last) {
			last = month
		}
	}
	if first.IsZero() {
		return nil
	}
	var out []model.MonthActivity
	span := (last.Year()-first.Year())*12 + int(last.Month()-first.Month()) + 1
	if span > maxActivityMonths {
		for _, key := range sortedKeys(counts) {
			out = append(out, model.MonthActivity{Month: key, Plays: counts[key]})
		}
		return out
	}
	for m := first; !m.After(last); m = m.AddDate(0, 1, 0) {
		key := m.Format(monthLayout)
		out = append(out, model.MonthActivity{Month: key, Plays: counts[key]})
	}
	return out
}

// RenderActivity prints a horizontal bar chart of plays per month sized to
// totalWidth. A non-positive width uses the terminal width.
func RenderActivity(w io.Writer, activity []model.MonthActivity, totalWidth int, forceColor bool) error {
	if len(activity) == 0 {
		_, err := fmt.Fprintln(w, "No data: no dated sessions recorded.")
		return err
	}
	if totalWidth <= 0 {
		totalWidth = terminalWidth()
	}
	maxPlays := 0
	for _, a := range activity {
		if a.Plays > maxPlays {
			maxPlays = a.Plays
		}
	}
	countWidth := len(fmt.Sprintf("%d", maxPlays))
	barWidth := ChartWidthFor(totalWidth, countWidth)
	useColor := shouldUseColor(w, forceColor)

	if _, err := fmt.Fprintln(w, "Sessions per month"); err != nil {
		return err
	}
	for _, a := range activity {
		n := 0
		if maxPlays > 0 {
			n = int(math.Round(float64(a.Plays) / float64(maxPlays) * float64(barWidth)))
		}
		if a.Plays > 0 && n == 0 {
			n = 1
		}
		bar := strings.Repeat(barChar, n)
		if useColor && n > 0 {
			bar = barColor + bar + colorReset
		}
		pad := strings.Repeat(" ", barWidth-n)
		if _, err := fmt.Fprintf(w, "%s%s%s%s %*d\n", a.Month, chartSeparator, bar, pad, countWidth, a.Plays); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// ChartWidthFor computes the bar width that fits within totalWidth next to
// the month label and a count column countWidth wide.
func ChartWidthFor(totalWidth, countWidth int) int {
	if totalWidth <= 0 {
		return minChartWidth
	}
	labelWidth := len(monthLayout) + utf8.RuneCountInString(chartSeparator)
	width := totalWidth - labelWidth - countWidth - 1
	if width < minChartWidth {
		width = minChartWidth
	}
	return width
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

func shouldUseColor(w io.Writer, force bool) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if force {
		return true
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}
