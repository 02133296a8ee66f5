package ui

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dicklesworthstone/battnet/internal/config"
	"github.com/Dicklesworthstone/battnet/internal/model"
	"github.com/Dicklesworthstone/battnet/internal/overlay"
	"github.com/Dicklesworthstone/battnet/internal/sampler"
	"github.com/Dicklesworthstone/battnet/internal/scheduler"
)

type fixedBattery struct{ state model.BatteryState }

func (b fixedBattery) Battery(context.Context) (model.BatteryState, error) { return b.state, nil }

type fixedCounters struct{ snap model.NetworkCounterSnapshot }

func (c fixedCounters) Counters(context.Context) (model.NetworkCounterSnapshot, error) {
	return c.snap, nil
}

type fixedCPU struct{}

func (fixedCPU) Times(context.Context) (cpu.TimesStat, error) {
	return cpu.TimesStat{User: 10, Idle: 90}, nil
}

type noWindows struct{}

func (noWindows) Windows(context.Context) ([]sampler.TopWindow, sampler.Screen, error) {
	return nil, sampler.Screen{}, sampler.ErrNoWindows
}

func newTestModel(t *testing.T, mutate func(*config.Config)) *Model {
	t.Helper()
	cfg := config.Default()
	if mutate != nil {
		mutate(&cfg)
	}
	require.NoError(t, cfg.Validate())

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	smp := sampler.New(sampler.Options{
		Battery:  fixedBattery{state: model.BatteryState{Percent: 55, Available: true}},
		Counters: fixedCounters{snap: model.NetworkCounterSnapshot{BytesSent: 2048, PacketsSent: 4}},
		CPU:      fixedCPU{},
		Windows:  noWindows{},
		Logger:   logger,
	})
	ov := overlay.New(overlay.Options{
		Sampler: smp,
		Logger:  logger,
		Graph:   GraphGeometry(cfg),
		Samples: cfg.Samples,
		Intervals: overlay.Intervals{
			Battery: cfg.BatteryInterval,
			Network: cfg.NetworkInterval,
			CPU:     cfg.CPUInterval,
		},
		DarkTheme: cfg.DarkTheme(),
	})
	m, err := New(cfg, ov, logger)
	require.NoError(t, err)
	require.NotNil(t, m.Init())
	return m
}

func tick(m *Model, task string) tea.Cmd {
	_, cmd := m.Update(scheduler.TickMsg{Task: task, At: time.Now()})
	return cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestNewRegistersTasks(t *testing.T) {
	m := newTestModel(t, nil)
	assert.Equal(t,
		[]string{overlay.TaskBattery, overlay.TaskNetwork, overlay.TaskCPU, taskTooltip},
		m.sched.Tasks())

	m = newTestModel(t, func(c *config.Config) { c.Tooltips = false })
	assert.NotContains(t, m.sched.Tasks(), taskTooltip)
}

func TestViewShowsPaintedValues(t *testing.T) {
	m := newTestModel(t, nil)
	assert.Contains(t, m.View(), "0.0K▼")
	assert.Contains(t, m.View(), placeholder)

	require.NotNil(t, tick(m, overlay.TaskBattery))
	view := m.View()
	assert.Contains(t, view, "55%")
	assert.Contains(t, view, glyphExpanded)
	assert.Equal(t, uint64(1), m.sched.Runs(overlay.TaskBattery))
}

func TestGraphRow(t *testing.T) {
	m := newTestModel(t, nil)
	tick(m, overlay.TaskCPU)
	assert.Empty(t, m.graph, "a single sample draws nothing")
	tick(m, overlay.TaskCPU)
	tick(m, overlay.TaskCPU)
	assert.NotEmpty(t, m.graph)
	assert.Equal(t, 2, m.boxHeight())

	m = newTestModel(t, func(c *config.Config) { c.CPUGraph = false })
	assert.Equal(t, 1, m.boxHeight())
}

func TestKeysToggleDisplay(t *testing.T) {
	m := newTestModel(t, nil)
	tick(m, overlay.TaskBattery)

	m.Update(tea.KeyMsg{Type: tea.KeySpace})
	assert.True(t, m.ov.Display().Collapsed)
	view := m.View()
	assert.Contains(t, view, glyphCollapsed)
	assert.NotContains(t, view, "55%")

	m.Update(runes("c"))
	assert.False(t, m.ov.Display().Collapsed)

	m.Update(runes("t"))
	assert.False(t, m.ov.Display().DarkTheme)
	assert.Equal(t, "light", m.ov.Theme().Name)
}

func TestMenu(t *testing.T) {
	m := newTestModel(t, nil)

	m.Update(runes("m"))
	require.True(t, m.menu.open)
	assert.Contains(t, m.View(), "Toggle Theme")
	assert.Contains(t, m.View(), "Exit")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.False(t, m.menu.open)
	assert.False(t, m.ov.Display().DarkTheme)

	m.Update(runes("m"))
	m.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, itemExit, m.menu.selected(), "selection wraps")
	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.menu.open)
}

func TestExitStopsRearming(t *testing.T) {
	m := newTestModel(t, nil)
	require.NotNil(t, tick(m, overlay.TaskNetwork))

	m.Update(runes("m"))
	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())

	assert.False(t, m.Alive())
	assert.Nil(t, tick(m, overlay.TaskNetwork), "no tick re-arms after teardown")
	assert.Equal(t, uint64(1), m.sched.Runs(overlay.TaskNetwork))
	assert.Empty(t, m.View())
}

func TestQuitKey(t *testing.T) {
	m := newTestModel(t, nil)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.ErrorIs(t, m.ctx.Err(), context.Canceled)
}

func TestHiddenRendersNothing(t *testing.T) {
	m := newTestModel(t, nil)
	m.SetHidden(true)
	assert.Empty(t, m.View())
	assert.Equal(t, regionNone, m.regionAt(0, 0).kind)
	m.SetHidden(false)
	assert.NotEmpty(t, m.View())
}

func TestMouse(t *testing.T) {
	m := newTestModel(t, nil)
	tick(m, overlay.TaskBattery)
	m.Update(tea.WindowSizeMsg{Width: 40, Height: 10})

	// box starts at column 18, content one cell further in
	toggleX := 40 - m.cfg.Width + 1
	batteryX := toggleX + 2
	assert.Equal(t, regionToggle, m.regionAt(toggleX, 0).kind)
	assert.Equal(t, regionBattery, m.regionAt(batteryX, 0).kind)
	assert.Equal(t, regionNone, m.regionAt(0, 0).kind)

	m.Update(tea.MouseMsg{X: batteryX, Y: 0, Type: tea.MouseMotion})
	assert.Equal(t, tooltipBattery, m.tooltip)
	assert.Equal(t, "Battery: 55% (Discharging)\nCPU Usage: 0.0%", m.tooltipText)
	assert.Contains(t, m.View(), "Discharging")

	speedX := 40 - 2 // last content column holds the direction glyph
	m.Update(tea.MouseMsg{X: speedX, Y: 0, Type: tea.MouseMotion})
	assert.Equal(t, tooltipNetwork, m.tooltip)
	assert.Contains(t, m.tooltipText, "Up: 2.0 KiB")

	m.Update(tea.MouseMsg{X: 0, Y: 0, Type: tea.MouseMotion})
	assert.Equal(t, tooltipNone, m.tooltip)
	assert.Empty(t, m.tooltipText)

	m.Update(tea.MouseMsg{X: toggleX, Y: 0, Type: tea.MouseLeft})
	assert.True(t, m.ov.Display().Collapsed)

	m.Update(tea.MouseMsg{X: toggleX, Y: 0, Type: tea.MouseRight})
	require.True(t, m.menu.open)
	// border row, then "Toggle Theme", then "Exit"
	exit := m.regionAt(39, m.boxHeight()+2)
	assert.Equal(t, regionMenu, exit.kind)
	assert.Equal(t, itemExit, exit.item)
}

func TestTooltipKeyCycles(t *testing.T) {
	m := newTestModel(t, nil)
	tick(m, overlay.TaskBattery)

	m.Update(runes("i"))
	assert.Equal(t, tooltipBattery, m.tooltip)
	m.Update(runes("i"))
	assert.Equal(t, tooltipNetwork, m.tooltip)
	m.Update(runes("i"))
	assert.Equal(t, tooltipNone, m.tooltip)

	m = newTestModel(t, func(c *config.Config) { c.Tooltips = false })
	m.Update(runes("i"))
	assert.Equal(t, tooltipNone, m.tooltip)
}
