package main

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/vela-phys/vela2d"
)

var flagWatchFPS int

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Step a scenario live and render body state in the terminal",
	Args:  cobra.NoArgs,
	Run:   runWatch,
}

func init() {
	watchCmd.Flags().IntVar(&flagWatchFPS, "fps", 30, "Simulation ticks per second")
}

func runWatch(cmd *cobra.Command, args []string) {
	_, world, bodies, err := loadWorld()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	names := make([]string, 0, len(bodies))
	for name := range bodies {
		names = append(names, name)
	}
	sort.Strings(names)

	m := newWatchModel(world, bodies, names, flagWatchFPS)

	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// tickMsg drives one simulation step per Bubble Tea tick.
type tickMsg time.Time

func tickCmd(fps int) tea.Cmd {
	interval := time.Second / time.Duration(fps)
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

type watchKeyMap struct {
	Pause key.Binding
	Reset key.Binding
	Quit  key.Binding
}

func defaultWatchKeyMap() watchKeyMap {
	return watchKeyMap{
		Pause: key.NewBinding(key.WithKeys(" ", "p"), key.WithHelp("space/p", "pause")),
		Reset: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reset")),
		Quit:  key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k watchKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Pause, k.Reset, k.Quit}
}

func (k watchKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Pause, k.Reset, k.Quit}}
}

type watchModel struct {
	world  *vela2d.World
	bodies map[string]*vela2d.Body
	names  []string

	fps    int
	dt     float64
	paused bool
	step   int

	table table.Model
	help  help.Model
	keys  watchKeyMap

	width, height int
	quitting      bool
}

func newWatchModel(world *vela2d.World, bodies map[string]*vela2d.Body, names []string, fps int) watchModel {
	h := help.New()
	h.ShowAll = false

	m := watchModel{
		world:  world,
		bodies: bodies,
		names:  names,
		fps:    fps,
		dt:     1.0 / float64(fps),
		keys:   defaultWatchKeyMap(),
		help:   h,
		width:  80,
		height: 24,
	}
	m.table = m.buildTable()
	return m
}

func (m *watchModel) buildTable() table.Model {
	columns := []table.Column{
		{Title: "Body", Width: 12},
		{Title: "X", Width: 10},
		{Title: "Y", Width: 10},
		{Title: "Angle", Width: 10},
		{Title: "Awake", Width: 7},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithHeight(len(m.names)+1),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.Foreground(lipgloss.Color("229"))
	t.SetStyles(s)

	m.updateRows(&t)
	return t
}

func (m *watchModel) updateRows(t *table.Model) {
	rows := make([]table.Row, len(m.names))
	for i, name := range m.names {
		b := m.bodies[name]
		pos := b.GetPosition()
		rows[i] = table.Row{
			name,
			fmt.Sprintf("%.3f", pos.X),
			fmt.Sprintf("%.3f", pos.Y),
			fmt.Sprintf("%.3f", b.GetAngle()),
			fmt.Sprintf("%v", b.IsAwake()),
		}
	}
	t.SetRows(rows)
}

func (m watchModel) Init() tea.Cmd {
	return tickCmd(m.fps)
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Pause):
			m.paused = !m.paused
			return m, nil
		case key.Matches(msg, m.keys.Reset):
			m.step = 0
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tickMsg:
		if !m.paused {
			cfg := m.world.Config()
			m.world.Step(m.dt, cfg.VelocityIterations, cfg.PositionIterations)
			m.step++
			m.updateRows(&m.table)
		}
		return m, tickCmd(m.fps)
	}

	return m, nil
}

func (m watchModel) View() string {
	if m.quitting {
		return ""
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("229")).
		MarginBottom(1)

	statusStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	tableStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	status := fmt.Sprintf("step %d  bodies=%d  contacts=%d  joints=%d",
		m.step, m.world.BodyCount(), m.world.ContactCount(), m.world.JointCount())
	if m.paused {
		status += "  [paused]"
	}

	view := titleStyle.Render(fmt.Sprintf("vela2d watch — %s", m.world.ID)) + "\n"
	view += tableStyle.Render(m.table.View()) + "\n"
	view += statusStyle.Render(status) + "\n"
	view += m.help.View(m.keys)
	return view
}
