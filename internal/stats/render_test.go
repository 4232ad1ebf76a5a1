package stats

import (
	"bytes"
	"strings"
	"testing"

	"github.com/verte-zerg/meeple/internal/model"
)

func TestMonthlyActivityFillsGaps(t *testing.T) {
	list := []model.Session{
		win("Chess", "2024-01-05", "Ann", "Ann"),
		win("Chess", "2024-03-20", "Ann", "Ann"),
		win("Chess", "2024-03-21T10:00:00Z", "Ann", "Ann"),
		win("Chess", "someday", "Ann", "Ann"),
	}
	got := MonthlyActivity(list)
	want := []model.MonthActivity{{Month: "2024-01", Plays: 1}, {Month: "2024-02", Plays: 0}, {Month: "2024-03", Plays: 2}}
	if len(got) != len(want) {
		t.Fatalf("expected %d months, got %+v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("month %d: expected %+v, got %+v", i, want[i], got[i])
		}
	}
	if MonthlyActivity(nil) != nil {
		t.Fatalf("expected no activity for no sessions")
	}
}

func TestMonthlyActivitySkipsEmptyMonthsOverLongRanges(t *testing.T) {
	list := []model.Session{
		win("Chess", "0024-01-05", "Ann", "Ann"),
		win("Chess", "2024-03-20", "Ann", "Ann"),
		win("Chess", "2024-03-21", "Ann", "Ann"),
	}
	got := MonthlyActivity(list)
	want := []model.MonthActivity{{Month: "0024-01", Plays: 1}, {Month: "2024-03", Plays: 2}}
	if len(got) != len(want) {
		t.Fatalf("expected %d months, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("month %d: expected %+v, got %+v", i, want[i], got[i])
		}
	}
}

func TestRenderActivityScalesBars(t *testing.T) {
	var buf bytes.Buffer
	activity := []model.MonthActivity{{Month: "2024-01", Plays: 4}, {Month: "2024-02", Plays: 1}, {Month: "2024-03", Plays: 0}}
	if err := RenderActivity(&buf, activity, 40, false); err != nil {
		t.Fatalf("render: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected title and 3 rows, got %q", buf.String())
	}
	barWidth := ChartWidthFor(40, 1)
	if got := strings.Count(lines[1], barChar); got != barWidth {
		t.Fatalf("expected full bar of %d, got %d", barWidth, got)
	}
	if got := strings.Count(lines[2], barChar); got < 1 || got >= barWidth {
		t.Fatalf("expected short bar, got %d", got)
	}
	if strings.Contains(lines[3], barChar) {
		t.Fatalf("expected empty bar for zero plays: %q", lines[3])
	}
	if strings.Contains(buf.String(), "\x1b[") {
		t.Fatalf("expected no color when writing to a buffer")
	}
}

func TestChartWidthFor(t *testing.T) {
	if got := ChartWidthFor(80, 2); got != 80-len(monthLayout)-3-2-1 {
		t.Fatalf("unexpected chart width %d", got)
	}
	if got := ChartWidthFor(0, 2); got != minChartWidth {
		t.Fatalf("expected min width, got %d", got)
	}
	if got := ChartWidthFor(12, 2); got != minChartWidth {
		t.Fatalf("expected min width for narrow terminals, got %d", got)
	}
}

func TestRenderersDegradeToNoData(t *testing.T) {
	var buf bytes.Buffer
	checks := []func() error{
		func() error { return RenderRanking(&buf, nil) },
		func() error { return RenderGames(&buf, nil) },
		func() error { return RenderGameStats(&buf, "Azul", model.GameStats{}, 3) },
		func() error { return RenderSummary(&buf, model.Summary{}) },
		func() error { return RenderPlayer(&buf, model.PlayerStats{PlayerName: "Ann"}) },
		func() error { return RenderActivity(&buf, nil, 80, false) },
	}
	for i, check := range checks {
		buf.Reset()
		if err := check(); err != nil {
			t.Fatalf("renderer %d: %v", i, err)
		}
		if !strings.HasPrefix(buf.String(), "No data") {
			t.Fatalf("renderer %d: expected no-data message, got %q", i, buf.String())
		}
	}
}

func TestRenderRankingAndSessions(t *testing.T) {
	agg := New(sampleSessions(), players("Ann", "Bob", "Cid"), nil)
	var buf bytes.Buffer
	if err := RenderRanking(&buf, Ranking(agg.AllPlayerStats())); err != nil {
		t.Fatalf("render ranking: %v", err)
	}
	lines := strings.Split(buf.String(), "\n")
	if !strings.HasPrefix(lines[2], "1  Ann") {
		t.Fatalf("expected Ann ranked first, got %q", lines[2])
	}

	buf.Reset()
	team := model.Session{
		ID:          "7",
		Game:        "Decrypto",
		Date:        "2024-04-01",
		Players:     []string{"Ann", "Bob"},
		IsTeamGame:  true,
		Teams:       []model.Team{{ID: "t1", Name: "Red", Players: []string{"Ann"}}, {ID: "t2", Name: "Blue", Players: []string{"Bob"}}},
		TotalScores: map[string]int{"t1": 1, "t2": 3},
		Winner:      "t2",
	}
	if err := RenderSessions(&buf, []model.Session{team}); err != nil {
		t.Fatalf("render sessions: %v", err)
	}
	if !strings.Contains(buf.String(), "Blue 3, Red 1") || !strings.Contains(buf.String(), "Blue") {
		t.Fatalf("expected team names in listing, got %q", buf.String())
	}
}
