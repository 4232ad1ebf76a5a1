// Package statsui provides the Bubble Tea stats dashboard.
package statsui

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/meeple/internal/model"
	"github.com/verte-zerg/meeple/internal/stats"
)

const (
	tabRanking = iota
	tabGames
	tabSummary
	tabActivity
)

const defaultLeaderboardSize = 10

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	cardStyle   = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
)

// Config tunes the dashboard.
type Config struct {
	LeaderboardSize int
}

// Model implements the Bubble Tea stats dashboard.
type Model struct {
	agg *stats.Aggregator
	cfg Config

	report stats.Report
	errMsg string

	tabs         []string
	activeTab    int
	viewports    []viewport.Model
	rankTable    table.Model
	selectedGame string

	width  int
	height int

	lookupMode  bool
	lookupInput textinput.Model
}

// NewModel constructs a dashboard over the aggregator.
func NewModel(agg *stats.Aggregator, cfg Config) *Model {
	if cfg.LeaderboardSize <= 0 {
		cfg.LeaderboardSize = defaultLeaderboardSize
	}
	m := &Model{
		agg:  agg,
		cfg:  cfg,
		tabs: []string{"Ranking", "Games", "Summary", "Activity"},
	}
	m.lookupInput = newLookupInput()
	m.rankTable = table.New(
		table.WithColumns(rankColumns()),
		table.WithHeight(1),
	)
	m.rankTable.SetStyles(rankTableStyles())
	m.rankTable.Focus()
	m.viewports = make([]viewport.Model, len(m.tabs))
	for i := range m.viewports {
		m.viewports[i] = viewport.New(0, 0)
	}
	m.refreshReport()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		m.renderTabContents()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.lookupMode {
			return m.updateLookup(msg)
		}
		switch msg.String() {
		case "q":
			return m, tea.Quit
		case "left", "h":
			m.moveTab(-1)
			return m, tea.ClearScreen
		case "right", "l":
			m.moveTab(1)
			return m, tea.ClearScreen
		case "r":
			m.refreshReport()
			return m, nil
		case "/":
			if m.activeTab == tabGames {
				return m.startLookup()
			}
			return m, nil
		case "esc":
			if m.selectedGame != "" {
				m.selectedGame = ""
				m.renderTabContents()
			}
			return m, nil
		case "g", "home":
			if m.activeTab == tabRanking {
				m.rankTable.GotoTop()
			} else {
				m.viewports[m.activeTab].GotoTop()
			}
			return m, nil
		case "G", "end":
			if m.activeTab == tabRanking {
				m.rankTable.GotoBottom()
			} else {
				m.viewports[m.activeTab].GotoBottom()
			}
			return m, nil
		default:
			var cmd tea.Cmd
			if m.activeTab == tabRanking {
				m.rankTable, cmd = m.rankTable.Update(msg)
				return m, cmd
			}
			m.viewports[m.activeTab], cmd = m.viewports[m.activeTab].Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBody(bodyHeight), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

// SelectedGame returns the game shown on the Games tab, if any.
func (m *Model) SelectedGame() string {
	return m.selectedGame
}

func newLookupInput() textinput.Model {
	input := textinput.New()
	input.Prompt = "Game: "
	input.Placeholder = "name or part of it"
	input.CharLimit = 0
	input.Cursor.SetMode(cursor.CursorBlink)
	return input
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	tabsHeight := lipgloss.Height(activeNavStyle.Render("X"))
	if tabsHeight < 1 {
		tabsHeight = 1
	}
	headerHeight = tabsHeight + 1
	footerHeight = 1
	if m.errMsg != "" || m.lookupMode {
		footerHeight++
	}
	bodyHeight = m.height - headerHeight - footerHeight
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, bodyHeight, _ := m.layoutHeights()
	for i := range m.viewports {
		m.viewports[i].Width = m.width
		m.viewports[i].Height = bodyHeight
	}
	m.rankTable.SetWidth(m.width)
	m.rankTable.SetHeight(maxInt(1, bodyHeight-1))
	promptWidth := lipgloss.Width(m.lookupInput.Prompt)
	m.lookupInput.Width = maxInt(10, m.width-promptWidth-2)
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	if count == 0 {
		return
	}
	next := m.activeTab + delta
	if next < 0 {
		next = count - 1
	}
	if next >= count {
		next = 0
	}
	m.activeTab = next
	if m.activeTab == tabRanking {
		m.rankTable.Focus()
	} else {
		m.rankTable.Blur()
	}
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderHeader() string {
	tabs := padLines(m.renderTabs(), m.width)
	sum := m.report.Summary
	line := fmt.Sprintf("Players: %d  Games: %d  Sessions: %d", sum.Players, len(m.report.Games), m.sessionCount())
	if m.selectedGame != "" {
		line += "  Game: " + m.selectedGame
	}
	return tabs + "\n" + headerStyle.Render(truncateLine(line, m.width))
}

func (m *Model) renderHelp() string {
	help := "Nav: left/right  Scroll: up/down/pgup/pgdn  Refresh: r  Quit: q"
	if m.activeTab == tabGames {
		help = "Nav: left/right  Scroll: up/down/pgup/pgdn  Find game: /  Back: esc  Refresh: r  Quit: q"
	}
	return headerStyle.Render(help)
}

func (m *Model) renderFooter() string {
	if m.lookupMode {
		return m.lookupInput.View() + "\n" + headerStyle.Render("enter: show  esc: cancel")
	}
	if m.errMsg != "" {
		return m.renderHelp() + "\n" + errorStyle.Render(m.errMsg)
	}
	return m.renderHelp()
}

func (m *Model) renderBody(height int) string {
	if m.activeTab == tabRanking {
		if len(m.rankTable.Rows()) == 0 {
			return fitLines("No players yet.", m.width, height)
		}
		return fitLines(tableMutedStyle.Render(m.rankTable.View()), m.width, height)
	}
	return fitLines(m.viewports[m.activeTab].View(), m.width, height)
}

func (m *Model) sessionCount() int {
	count := 0
	for _, gs := range m.report.Games {
		count += gs.TotalPlays
	}
	return count
}

func (m *Model) refreshReport() {
	if m.agg == nil {
		m.errMsg = "no statistics source"
		return
	}
	m.errMsg = ""
	m.report = stats.BuildReport(m.agg)
	m.rankTable.SetRows(rankRows(m.report.Ranking))
	m.renderTabContents()
}

func (m *Model) renderTabContents() {
	if len(m.viewports) == 0 {
		return
	}
	width := m.width
	if width <= 0 {
		width = 80
	}
	m.viewports[tabGames].SetContent(m.renderGames())
	m.viewports[tabSummary].SetContent(renderSummary(m.report.Summary, width))
	m.viewports[tabActivity].SetContent(renderActivity(m.report.Activity, width))
}

func (m *Model) renderGames() string {
	var buf bytes.Buffer
	var err error
	if m.selectedGame != "" {
		err = stats.RenderGameStats(&buf, m.selectedGame, m.report.Games[m.selectedGame], m.cfg.LeaderboardSize)
	} else {
		err = stats.RenderGames(&buf, m.report.Games)
	}
	if err != nil {
		return fmt.Sprintf("Failed to render games: %v", err)
	}
	return strings.TrimRight(buf.String(), "\n")
}

func renderSummary(sum model.Summary, width int) string {
	if !sum.HasData {
		return "No data yet: record a session first."
	}
	cards := []string{
		metricCard("Players", strconv.Itoa(sum.Players)),
		metricCard("Games played", strconv.Itoa(sum.TotalGames)),
		metricCard("Play time", fmt.Sprintf("%dh", sum.TotalHours)),
		metricCard("Avg win rate", fmt.Sprintf("%d%%", sum.AverageWinRate)),
	}
	records := []string{
		metricCard("Most wins", achievementLabel(sum.MostWins, "")),
		metricCard("Best win rate", achievementLabel(sum.BestWinRate, "%")),
		metricCard("Most active", achievementLabel(sum.MostActive, " games")),
	}
	return joinCards(cards, width) + "\n" + joinCards(records, width)
}

// joinCards lays cards out horizontally, wrapping rows at width.
func joinCards(cards []string, width int) string {
	var rows []string
	var row []string
	rowWidth := 0
	for _, card := range cards {
		w := lipgloss.Width(card)
		if len(row) > 0 && rowWidth+w > width {
			rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
			row = nil
			rowWidth = 0
		}
		row = append(row, card)
		rowWidth += w
	}
	if len(row) > 0 {
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
	}
	return strings.Join(rows, "\n")
}

func metricCard(label, value string) string {
	content := fmt.Sprintf("%s\n%s", cardTitleStyle.Render(label), cardValueStyle.Render(value))
	return cardStyle.Render(content)
}

func achievementLabel(a *model.Achievement, unit string) string {
	if a == nil {
		return "-"
	}
	return fmt.Sprintf("%s (%d%s)", a.PlayerName, a.Value, unit)
}

func renderActivity(activity []model.MonthActivity, width int) string {
	var buf bytes.Buffer
	if err := stats.RenderActivity(&buf, activity, width, true); err != nil {
		return fmt.Sprintf("Failed to render activity: %v", err)
	}
	return strings.TrimRight(buf.String(), "\n")
}

func rankColumns() []table.Column {
	return []table.Column{
		{Title: "#", Width: 3},
		{Title: "Player", Width: 16},
		{Title: "Games", Width: 6},
		{Title: "Wins", Width: 5},
		{Title: "Win %", Width: 6},
		{Title: "Streak", Width: 7},
		{Title: "Favorite", Width: 20},
	}
}

func rankRows(ranking []model.PlayerStats) []table.Row {
	rows := make([]table.Row, 0, len(ranking))
	for i, p := range ranking {
		favorite := "-"
		if p.FavoriteGame != nil {
			favorite = p.FavoriteGame.Game
		}
		rows = append(rows, table.Row{
			strconv.Itoa(i + 1),
			p.PlayerName,
			strconv.Itoa(p.TotalGames),
			strconv.Itoa(p.Wins),
			fmt.Sprintf("%d%%", p.WinRate),
			strconv.Itoa(p.Streaks.CurrentWinStreak),
			favorite,
		})
	}
	return rows
}

func rankTableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

func (m *Model) startLookup() (tea.Model, tea.Cmd) {
	m.lookupMode = true
	m.lookupInput.SetValue("")
	m.updateLayout()
	return m, m.lookupInput.Focus()
}

func (m *Model) updateLookup(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.lookupMode = false
		m.lookupInput.Blur()
		m.updateLayout()
		return m, nil
	case tea.KeyEnter:
		m.lookupMode = false
		m.lookupInput.Blur()
		m.applyLookup(m.lookupInput.Value())
		m.updateLayout()
		return m, nil
	}
	var cmd tea.Cmd
	m.lookupInput, cmd = m.lookupInput.Update(msg)
	return m, cmd
}

func (m *Model) applyLookup(query string) {
	query = strings.TrimSpace(query)
	if query == "" {
		m.selectedGame = ""
		m.errMsg = ""
		m.renderTabContents()
		return
	}
	name, _, ok := m.agg.GameStats(query)
	if !ok {
		m.errMsg = fmt.Sprintf("no game matches %q", query)
		return
	}
	m.errMsg = ""
	m.selectedGame = name
	m.renderTabContents()
	m.viewports[tabGames].GotoTop()
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func padLines(s string, width int) string {
	if width <= 0 || s == "" {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	return strings.Join(lines, "\n")
}

func padLine(line string, width int) string {
	lineWidth := lipgloss.Width(line)
	if lineWidth < width {
		return line + strings.Repeat(" ", width-lineWidth)
	}
	return line
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

func truncateLine(s string, width int) string {
	if width <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}
