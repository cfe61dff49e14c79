package stattop

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/labstack/gommon/log"
)

type dashboardModel struct {
	poller    *Poller
	screen    *Screen
	exportDir string
	message   string
	width     int
	height    int
	ready     bool
}

type tickMsg time.Time

// fetchMsg carries the result of one fetch back into the update loop
type fetchMsg struct {
	stats Stats
	err   error
}

type exportMsg struct {
	paths []string
	err   error
}

// tickCmd schedules the next poll. It is only issued once the previous fetch has
// been applied, so fetches never overlap.
func tickCmd() tea.Cmd {
	return tea.Tick(PollDuration(), func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchCmd(source Source) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), FetchTimeout())
		defer cancel()
		stats, err := source.Fetch(ctx)
		return fetchMsg{stats: stats, err: err}
	}
}

func exportCmd(history History, dir string, at time.Time) tea.Cmd {
	return func() tea.Msg {
		paths, err := ExportCharts(history, dir, at)
		return exportMsg{paths: paths, err: err}
	}
}

// newDashboard builds the screen and the poller behind it. A screen without one of
// the chart elements is a configuration error.
func newDashboard(source Source, exportDir string) (*dashboardModel, error) {
	screen := NewScreen()
	poller, err := NewPoller(source, screen, screen)
	if err != nil {
		return nil, fmt.Errorf("initialising dashboard: %w", err)
	}
	return &dashboardModel{
		poller:    poller,
		screen:    screen,
		exportDir: exportDir,
	}, nil
}

func (m dashboardModel) Init() tea.Cmd {
	return fetchCmd(m.poller.Source())
}

func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "e":
			m.message = "Exporting charts..."
			return m, exportCmd(m.poller.History(), m.exportDir, time.Now())
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

	case tickMsg:
		return m, fetchCmd(m.poller.Source())

	case fetchMsg:
		if msg.err != nil {
			m.poller.Fail(msg.err)
		} else {
			m.poller.Apply(msg.stats)
		}
		return m, tickCmd()

	case exportMsg:
		if msg.err != nil {
			log.Errorf("Chart export failed: %v", msg.err)
			m.message = "Export failed: " + msg.err.Error()
		} else {
			log.Infof("Exported charts to %s", strings.Join(msg.paths, ", "))
			m.message = "Exported " + strings.Join(msg.paths, ", ")
		}
	}

	return m, nil
}

func (m dashboardModel) View() string {
	if !m.ready {
		return "Initializing..."
	}

	// status bar takes the last line
	grid := NewGrid(m.width, m.height-1).
		AddRow(4,
			m.chartCell("CPU", CPU_CHART, COLOR_CPU, CPU_VALUE),
			m.chartCell("Memory", MEM_CHART, COLOR_MEMORY, MEM_VALUE),
			m.chartCell("Disk", DISK_CHART, COLOR_DISK, DISK_VALUE),
		).
		AddRow(3,
			m.chartCell("CPU History", CPU_HISTORY_CHART, COLOR_CPU, ""),
			m.chartCell("Memory History", MEM_HISTORY_CHART, COLOR_MEMORY, ""),
		).
		AddRow(3, m.networkPane)

	return lipgloss.JoinVertical(lipgloss.Left, grid.Render(), m.statusBar())
}

// chartCell renders chart id in a titled pane, with the text of valueID as its footer
func (m dashboardModel) chartCell(title, id, color, valueID string) Cell {
	return func(width, height int) Pane {
		pane := NewPane(title, width, height).SetAccent(color)
		if valueID != "" {
			pane = pane.SetFooter(m.screen.Text(valueID))
		}
		w, h := pane.ContentSize()
		return pane.SetContent(m.screen.RenderChart(id, w, h))
	}
}

// networkPane shows the upload/download chart with a speed and totals table beside it
func (m dashboardModel) networkPane(width, height int) Pane {
	pane := NewPane("Network", width, height).SetAccent(COLOR_UPLOAD)
	w, h := pane.ContentSize()

	labels, colors := m.screen.Legend(NETWORK_CHART)
	values := map[string][2]string{
		"Upload":   {m.screen.Text(SENT_VALUE), m.screen.Text(SENT_TOTAL)},
		"Download": {m.screen.Text(RECV_VALUE), m.screen.Text(RECV_TOTAL)},
	}

	rows := NewSummaryTable().MaxHeight(h)
	for i, label := range labels {
		v := values[label]
		rows.AddSeries(label, colors[i], v[0], v[1])
	}
	summary := rows.String()

	chartWidth := max(0, w-lipgloss.Width(summary)-1)
	chart := m.screen.RenderChart(NETWORK_CHART, chartWidth, h)
	return pane.SetContent(lipgloss.JoinHorizontal(lipgloss.Top, chart, " ", summary))
}

func (m dashboardModel) statusBar() string {
	indicator := lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render("●")
	if m.screen.HasClass(SERVER_STATUS, STATUS_ONLINE_CLASS) {
		indicator = lipgloss.NewStyle().Foreground(lipgloss.Color("46")).Render("●")
	}

	status := fmt.Sprintf(" %s %s  %s  Last update: %s",
		indicator,
		m.poller.Status(),
		m.poller.Source().Name(),
		orDash(m.screen.Text(LAST_UPDATE)),
	)
	if m.message != "" {
		status += "  " + m.message
	}

	help := "e=Export  q=Quit "
	gap := max(1, m.width-lipgloss.Width(status)-lipgloss.Width(help))

	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		Background(lipgloss.Color("235")).
		Width(m.width).
		Render(status + strings.Repeat(" ", gap) + help)
}

func orDash(s string) string {
	if s == "" {
		return "--"
	}
	return s
}

// Dashboard runs the terminal dashboard until the user quits
func Dashboard(source Source, exportDir string) error {
	m, err := newDashboard(source, exportDir)
	if err != nil {
		return err
	}

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running dashboard: %w", err)
	}
	return nil
}
