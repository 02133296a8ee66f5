package ui

import (
	"context"
	"log/slog"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Dicklesworthstone/battnet/internal/config"
	"github.com/Dicklesworthstone/battnet/internal/overlay"
	"github.com/Dicklesworthstone/battnet/internal/scheduler"
	"github.com/Dicklesworthstone/battnet/internal/series"
)

// Sparkline canvas: 0% sits on GraphHeight, 100% on GraphMargin.
const (
	GraphHeight = 20.0
	GraphMargin = 5.0

	taskTooltip = "tooltip"

	glyphExpanded  = "˄"
	glyphCollapsed = "˅"
	placeholder    = "…"
)

// GraphGeometry maps the sparkline onto one point per inner column.
func GraphGeometry(cfg config.Config) overlay.Geometry {
	return overlay.Geometry{Width: float64(innerWidth(cfg) - 1), Height: GraphHeight, Margin: GraphMargin}
}

func innerWidth(cfg config.Config) int { return cfg.Width - 2 }

type tooltipKind int

const (
	tooltipNone tooltipKind = iota
	tooltipBattery
	tooltipNetwork
)

// Model is the terminal surface for the overlay.
type Model struct {
	cfg       config.Config
	ov        *overlay.Overlay
	sched     *scheduler.Scheduler
	logger    *slog.Logger
	ctx       context.Context
	ctxCancel context.CancelFunc
	alive     bool

	width  int
	height int

	batteryText  string
	batteryColor lipgloss.Color
	speedText    string
	graph        string
	hidden       bool

	tooltip     tooltipKind
	tooltipText string

	menu menu
}

// New attaches a Model to ov and registers the refresh tasks.
func New(cfg config.Config, ov *overlay.Overlay, logger *slog.Logger) (*Model, error) {
	ctx, cancel := context.WithCancel(context.Background())
	m := &Model{
		cfg:         cfg,
		ov:          ov,
		logger:      logger.With("component", "ui"),
		ctx:         ctx,
		ctxCancel:   cancel,
		alive:       true,
		batteryText: placeholder,
		menu:        newMenu(),
	}
	m.sched = scheduler.New(m.Alive)
	ov.Attach(m)
	if err := ov.Register(ctx, m.sched); err != nil {
		cancel()
		return nil, err
	}
	if cfg.Tooltips {
		err := m.sched.Register(scheduler.Task{
			Name:     taskTooltip,
			Interval: cfg.TooltipInterval,
			Run:      func(time.Time) { m.refreshTooltip() },
		})
		if err != nil {
			cancel()
			return nil, err
		}
	}
	return m, nil
}

// Alive is false once the overlay has been torn down.
func (m *Model) Alive() bool { return m.alive }

// Surface implementation.

func (m *Model) PaintBattery(text string, color lipgloss.Color) {
	m.batteryText, m.batteryColor = text, color
}

func (m *Model) PaintSpeed(text string) { m.speedText = text }

func (m *Model) PaintGraph(pts []series.Point) {
	m.graph = series.Sparkline(pts, innerWidth(m.cfg), GraphHeight, GraphMargin)
}

func (m *Model) SetHidden(hidden bool) { m.hidden = hidden }

func (m *Model) Init() tea.Cmd {
	m.ov.Prime(m.ctx)
	return m.sched.Start()
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case scheduler.TickMsg:
		return m, m.sched.Handle(msg)
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	case tea.KeyMsg:
		return m, m.handleKey(msg)
	case tea.MouseMsg:
		return m, m.handleMouse(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	key := msg.String()
	if key == "ctrl+c" || key == "q" {
		return m.quit()
	}
	if m.menu.open {
		switch key {
		case "up", "k":
			m.menu.move(-1)
		case "down", "j":
			m.menu.move(1)
		case "enter":
			return m.choose(m.menu.selected())
		case "esc", "m":
			m.menu.open = false
		}
		return nil
	}
	switch key {
	case " ", "c":
		m.ov.ToggleCollapsed()
	case "t":
		m.ov.ToggleTheme()
	case "m":
		m.menu.show()
	case "i":
		if m.cfg.Tooltips {
			m.setTooltip((m.tooltip + 1) % 3)
		}
	}
	return nil
}

func (m *Model) handleMouse(msg tea.MouseMsg) tea.Cmd {
	r := m.regionAt(msg.X, msg.Y)
	switch msg.Type {
	case tea.MouseLeft:
		if m.menu.open {
			if r.kind == regionMenu {
				return m.choose(r.item)
			}
			m.menu.open = false
			return nil
		}
		if r.kind == regionToggle {
			m.ov.ToggleCollapsed()
		}
	case tea.MouseRight:
		if r.kind != regionNone {
			m.menu.show()
		}
	case tea.MouseMotion:
		if !m.cfg.Tooltips {
			return nil
		}
		switch r.kind {
		case regionBattery:
			m.setTooltip(tooltipBattery)
		case regionSpeed:
			m.setTooltip(tooltipNetwork)
		case regionTooltip:
		default:
			m.setTooltip(tooltipNone)
		}
	}
	return nil
}

func (m *Model) choose(item menuItem) tea.Cmd {
	m.menu.open = false
	switch item {
	case itemToggleTheme:
		m.ov.ToggleTheme()
	case itemExit:
		return m.quit()
	}
	return nil
}

func (m *Model) setTooltip(kind tooltipKind) {
	if kind == m.tooltip {
		return
	}
	m.tooltip = kind
	m.refreshTooltip()
}

func (m *Model) refreshTooltip() {
	switch m.tooltip {
	case tooltipBattery:
		m.tooltipText = m.ov.BatteryTooltip()
	case tooltipNetwork:
		m.tooltipText = m.ov.NetworkTooltip(m.ctx)
	default:
		m.tooltipText = ""
	}
}

func (m *Model) quit() tea.Cmd {
	m.alive = false
	m.sched.Stop()
	m.ctxCancel()
	m.logger.Info("overlay closed")
	return tea.Quit
}

func (m *Model) View() string {
	if m.hidden || !m.alive {
		return ""
	}
	block := m.renderBox()
	if panel, kind := m.panel(); kind != regionNone {
		block = lipgloss.JoinVertical(lipgloss.Right, block, panel)
	}
	if m.width <= 0 {
		return block
	}
	return lipgloss.PlaceHorizontal(m.width, lipgloss.Right, block)
}

func (m *Model) renderBox() string {
	th := m.ov.Theme()
	inner := innerWidth(m.cfg)
	box := lipgloss.NewStyle().
		Background(th.Background).
		Foreground(th.Text).
		Width(m.cfg.Width).
		Padding(0, 1)
	toggle := lipgloss.NewStyle().
		Background(th.ToggleBackground).
		Foreground(th.ToggleText)

	if m.ov.Display().Collapsed {
		return box.Render(toggle.Render(glyphCollapsed))
	}

	l := m.layout()
	battery := lipgloss.NewStyle().Bold(true).Background(th.Background).Foreground(m.batteryColor).Render(m.batteryText)
	speed := lipgloss.NewStyle().Bold(true).Background(th.SpeedBackground).Foreground(th.Text).Render(m.speedText)
	gap := lipgloss.NewStyle().Background(th.Background).Render(strings.Repeat(" ", l.gap))
	rows := []string{toggle.Render(glyphExpanded) + gap1(th.Background) + battery + gap + speed}

	if m.cfg.CPUGraph {
		graph := m.graph
		if graph == "" {
			graph = strings.Repeat(" ", inner)
		}
		rows = append(rows, lipgloss.NewStyle().Background(th.Background).Foreground(th.Graph).Render(graph))
	}
	return box.Render(strings.Join(rows, "\n"))
}

func gap1(bg lipgloss.Color) string {
	return lipgloss.NewStyle().Background(bg).Render(" ")
}

func (m *Model) renderTooltip() string {
	th := m.ov.Theme()
	return lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(th.TooltipText).
		Background(th.TooltipBackground).
		Foreground(th.TooltipText).
		Padding(0, 1).
		Render(m.tooltipText)
}

func (m *Model) renderMenu() string {
	th := m.ov.Theme()
	normal := lipgloss.NewStyle().Foreground(th.TooltipText).Background(th.TooltipBackground)
	active := normal.Reverse(true)
	lines := make([]string, len(m.menu.items))
	for i, it := range m.menu.items {
		style := normal
		if i == m.menu.index {
			style = active
		}
		lines[i] = style.Render(" " + it.String() + " ")
	}
	return lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(th.TooltipText).
		Render(strings.Join(lines, "\n"))
}

// Run starts the Bubble Tea program and stops it when ctx is canceled.
func Run(ctx context.Context, m *Model) error {
	prog := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion())
	go func() {
		<-ctx.Done()
		prog.Quit()
	}()
	_, err := prog.Run()
	m.alive = false
	m.sched.Stop()
	m.ctxCancel()
	return err
}
