// Package overlay is the refresh loop behind the widget: each tick samples
// the OS, formats the result and repaints the surface only when the
// painted value changes.
package overlay

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/Dicklesworthstone/battnet/internal/format"
	"github.com/Dicklesworthstone/battnet/internal/metrics"
	"github.com/Dicklesworthstone/battnet/internal/model"
	"github.com/Dicklesworthstone/battnet/internal/sampler"
	"github.com/Dicklesworthstone/battnet/internal/scheduler"
	"github.com/Dicklesworthstone/battnet/internal/series"
	"github.com/Dicklesworthstone/battnet/internal/theme"
)

// Task names, also used as metric labels.
const (
	TaskBattery    = "battery"
	TaskNetwork    = "network"
	TaskCPU        = "cpu"
	TaskFullscreen = "fullscreen"
)

// Surface is whatever draws the widget.
type Surface interface {
	PaintBattery(text string, color lipgloss.Color)
	PaintSpeed(text string)
	PaintGraph(points []series.Point)
	SetHidden(hidden bool)
}

// Geometry is the canvas the sparkline points are mapped onto.
type Geometry struct {
	Width, Height, Margin float64
}

// Intervals per task. A zero interval leaves the task unregistered.
type Intervals struct {
	Battery    time.Duration
	Network    time.Duration
	CPU        time.Duration
	Fullscreen time.Duration
}

// Options configures an Overlay.
type Options struct {
	Sampler   *sampler.Sampler
	Surface   Surface
	Recorder  *metrics.Recorder
	Logger    *slog.Logger
	Graph     Geometry
	Intervals Intervals
	Samples   int
	DarkTheme bool
}

// Overlay holds everything the refresh loop mutates. Only the event loop
// goroutine touches it.
type Overlay struct {
	sampler  *sampler.Sampler
	surface  Surface
	recorder *metrics.Recorder
	logger   *slog.Logger
	graph    Geometry
	every    Intervals

	cpu     *series.Window
	display model.DisplayState

	battery      model.BatteryState
	batteryText  string
	batteryColor lipgloss.Color
	speedText    string
	hidden       bool
}

func New(opts Options) *Overlay {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	samples := opts.Samples
	if samples <= 0 {
		samples = series.DefaultCapacity
	}
	return &Overlay{
		sampler:   opts.Sampler,
		surface:   opts.Surface,
		recorder:  opts.Recorder,
		logger:    logger.With("component", "overlay"),
		graph:     opts.Graph,
		every:     opts.Intervals,
		cpu:       series.NewWindow(samples),
		display:   model.DisplayState{DarkTheme: opts.DarkTheme},
		speedText: format.InitialSpeed(),
	}
}

// Attach swaps the surface. The UI model needs the overlay before it can
// hand itself over.
func (o *Overlay) Attach(s Surface) { o.surface = s }

// Prime takes the network baseline and paints the initial speed text.
func (o *Overlay) Prime(ctx context.Context) {
	if err := o.sampler.Prime(ctx); err != nil {
		o.sampleError(TaskNetwork, err)
	}
	o.surface.PaintSpeed(o.speedText)
}

// Register adds every enabled tick to s.
func (o *Overlay) Register(ctx context.Context, s *scheduler.Scheduler) error {
	tasks := []scheduler.Task{
		{Name: TaskBattery, Interval: o.every.Battery, Run: func(now time.Time) { o.TickBattery(ctx, now) }},
		{Name: TaskNetwork, Interval: o.every.Network, Run: func(now time.Time) { o.TickNetwork(ctx, now) }},
		{Name: TaskCPU, Interval: o.every.CPU, Run: func(now time.Time) { o.TickCPU(ctx, now) }},
		{Name: TaskFullscreen, Interval: o.every.Fullscreen, Run: func(now time.Time) { o.TickFullscreen(ctx, now) }},
	}
	for _, t := range tasks {
		if t.Interval <= 0 {
			continue
		}
		if err := s.Register(t); err != nil {
			return err
		}
	}
	return nil
}

// TickBattery samples the battery and repaints the label on change. A
// failed read keeps whatever is on screen.
func (o *Overlay) TickBattery(ctx context.Context, _ time.Time) {
	o.recorder.Tick(TaskBattery)
	state, err := o.sampler.ReadBattery(ctx)
	if err != nil {
		o.sampleError(TaskBattery, err)
		return
	}
	o.battery = state
	o.recorder.ObserveBattery(state)
	o.paintBattery()
}

// TickNetwork recomputes throughput. The elapsed guard and read errors
// leave the previous string in place.
func (o *Overlay) TickNetwork(ctx context.Context, _ time.Time) {
	o.recorder.Tick(TaskNetwork)
	t, ok, err := o.sampler.Throughput(ctx)
	if err != nil {
		o.sampleError(TaskNetwork, err)
		return
	}
	if !ok {
		return
	}
	o.recorder.ObserveThroughput(t)
	text := format.Speed(t)
	if text == o.speedText {
		return
	}
	o.speedText = text
	o.surface.PaintSpeed(text)
	o.recorder.Repaint("speed")
}

// TickCPU pushes a sample and always redraws the sparkline, since the line
// depends on the whole window. Collapsed overlays get an empty line.
func (o *Overlay) TickCPU(ctx context.Context, _ time.Time) {
	o.recorder.Tick(TaskCPU)
	pct, err := o.sampler.ReadCPU(ctx)
	if err != nil {
		o.sampleError(TaskCPU, err)
	} else {
		o.cpu.Push(pct)
		o.recorder.ObserveCPU(pct)
	}
	o.surface.PaintGraph(o.GraphPoints())
	o.recorder.Repaint("graph")
}

// TickFullscreen hides the overlay while a fullscreen window is up.
func (o *Overlay) TickFullscreen(ctx context.Context, _ time.Time) {
	o.recorder.Tick(TaskFullscreen)
	hidden := o.sampler.FullscreenActive(ctx)
	if hidden == o.hidden {
		return
	}
	o.hidden = hidden
	o.logger.Debug("fullscreen state changed", "hidden", hidden)
	o.surface.SetHidden(hidden)
	o.recorder.Repaint("visibility")
}

// ToggleCollapsed flips between the expanded and collapsed layouts.
func (o *Overlay) ToggleCollapsed() {
	o.display.Collapsed = !o.display.Collapsed
	o.surface.PaintGraph(o.GraphPoints())
}

// ToggleTheme switches color tables; the battery color depends on it.
func (o *Overlay) ToggleTheme() {
	o.display.DarkTheme = !o.display.DarkTheme
	if o.batteryText != "" {
		o.paintBattery()
	}
}

// GraphPoints is empty while collapsed or before two samples exist.
func (o *Overlay) GraphPoints() []series.Point {
	if o.display.Collapsed {
		return nil
	}
	return o.cpu.RenderPoints(o.graph.Width, o.graph.Height, o.graph.Margin)
}

func (o *Overlay) Display() model.DisplayState { return o.display }
func (o *Overlay) Theme() theme.Theme          { return theme.For(o.display.DarkTheme) }
func (o *Overlay) Battery() model.BatteryState { return o.battery }
func (o *Overlay) SpeedText() string           { return o.speedText }
func (o *Overlay) Hidden() bool                { return o.hidden }
func (o *Overlay) CPUSamples() []float64       { return o.cpu.Samples() }

// BatteryTooltip describes the battery and the newest CPU sample.
func (o *Overlay) BatteryTooltip() string {
	pct, _ := o.cpu.Last()
	return format.BatteryTooltip(o.battery, pct)
}

// NetworkTooltip reads fresh counter totals.
func (o *Overlay) NetworkTooltip(ctx context.Context) string {
	snap, err := o.sampler.ReadNetworkCounters(ctx)
	if err != nil {
		o.sampleError(TaskNetwork, err)
		return format.NetworkUnavailable
	}
	return format.NetworkTooltip(snap)
}

func (o *Overlay) paintBattery() {
	text := format.BatteryText(o.battery)
	color := format.BatteryColor(o.battery, o.Theme())
	if text == o.batteryText && color == o.batteryColor {
		return
	}
	o.batteryText, o.batteryColor = text, color
	o.surface.PaintBattery(text, color)
	o.recorder.Repaint("battery")
}

func (o *Overlay) sampleError(source string, err error) {
	o.logger.Debug("sample failed", "source", source, "error", err)
	o.recorder.SampleError(source)
}
