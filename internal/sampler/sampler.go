package sampler

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/Dicklesworthstone/battnet/internal/model"
)

const (
	// MinElapsed suppresses rate spikes from back-to-back reads.
	MinElapsed = 100 * time.Millisecond
	// DefaultBatteryTTL bounds how often the battery driver is queried.
	DefaultBatteryTTL = 2 * time.Second
	// DefaultWindowTTL bounds how often windows are enumerated.
	DefaultWindowTTL = time.Second
)

// Options wires OS sources into a Sampler. Nil sources fall back to the
// real OS readers.
type Options struct {
	Battery  BatteryReader
	Counters CounterReader
	CPU      CPUReader
	Windows  WindowLister
	Clock    Clock
	Logger   *slog.Logger

	// BatteryCacheTTL of zero disables battery caching.
	BatteryCacheTTL time.Duration
	WindowCacheTTL  time.Duration
}

// Sampler owns the previous counters needed to turn cumulative OS values
// into rates. It is used from a single goroutine and is not locked.
type Sampler struct {
	battery  BatteryReader
	counters CounterReader
	cpu      CPUReader
	windows  WindowLister
	clock    Clock
	logger   *slog.Logger

	prevNet   model.NetworkCounterSnapshot
	havePrev  bool
	prevTotal float64
	prevIdle  float64

	batteryTTL     time.Duration
	cachedBattery  model.BatteryState
	batteryFetched time.Time

	windowTTL     time.Duration
	cachedWindows []TopWindow
	cachedScreen  Screen
	windowsErr    error
	windowsAt     time.Time
}

func New(opts Options) *Sampler {
	s := &Sampler{
		battery:    opts.Battery,
		counters:   opts.Counters,
		cpu:        opts.CPU,
		windows:    opts.Windows,
		clock:      opts.Clock,
		logger:     opts.Logger,
		batteryTTL: opts.BatteryCacheTTL,
		windowTTL:  opts.WindowCacheTTL,
	}
	if s.battery == nil {
		s.battery = OSBattery{}
	}
	if s.counters == nil {
		s.counters = OSCounters{}
	}
	if s.cpu == nil {
		s.cpu = OSCPU{}
	}
	if s.windows == nil {
		s.windows = WMCtrl{}
	}
	if s.clock == nil {
		s.clock = systemClock{}
	}
	if s.logger == nil {
		s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s.logger = s.logger.With("component", "sampler")
	return s
}

// ReadBattery returns the battery state, reusing a cached read for up to
// the configured TTL. Failed reads are never cached.
func (s *Sampler) ReadBattery(ctx context.Context) (model.BatteryState, error) {
	now := s.clock.Now()
	if s.batteryTTL > 0 && !s.batteryFetched.IsZero() && now.Sub(s.batteryFetched) <= s.batteryTTL {
		return s.cachedBattery, nil
	}
	state, err := s.battery.Battery(ctx)
	if err != nil {
		return model.BatteryState{}, err
	}
	s.cachedBattery, s.batteryFetched = state, now
	return state, nil
}

// ReadNetworkCounters returns a timestamped counter snapshot.
func (s *Sampler) ReadNetworkCounters(ctx context.Context) (model.NetworkCounterSnapshot, error) {
	snap, err := s.counters.Counters(ctx)
	if err != nil {
		return model.NetworkCounterSnapshot{}, err
	}
	snap.Timestamp = s.clock.Now()
	return snap, nil
}

// Prime records the baseline snapshot for the first throughput delta.
func (s *Sampler) Prime(ctx context.Context) error {
	snap, err := s.ReadNetworkCounters(ctx)
	if err != nil {
		return err
	}
	s.prevNet, s.havePrev = snap, true
	return nil
}

// Throughput reads counters and returns the rate since the previous
// accepted read. ok is false when there is no baseline yet or when the
// reads are closer than MinElapsed; in that case the baseline is kept.
func (s *Sampler) Throughput(ctx context.Context) (t model.Throughput, ok bool, err error) {
	curr, err := s.ReadNetworkCounters(ctx)
	if err != nil {
		return model.Throughput{}, false, err
	}
	if !s.havePrev {
		s.prevNet, s.havePrev = curr, true
		return model.Throughput{}, false, nil
	}
	t, ok = ComputeThroughput(s.prevNet, curr)
	if !ok {
		return model.Throughput{}, false, nil
	}
	s.prevNet = curr
	return t, true, nil
}

// Baseline is the snapshot the next delta will be computed against.
func (s *Sampler) Baseline() (model.NetworkCounterSnapshot, bool) {
	return s.prevNet, s.havePrev
}

// ComputeThroughput turns two snapshots into kilobits per second. A
// counter that went backwards (driver reset) yields zero for that
// direction.
func ComputeThroughput(prev, curr model.NetworkCounterSnapshot) (model.Throughput, bool) {
	elapsed := curr.Timestamp.Sub(prev.Timestamp)
	if elapsed < MinElapsed {
		return model.Throughput{}, false
	}
	secs := elapsed.Seconds()
	return model.Throughput{
		UploadKbps:   kbps(prev.BytesSent, curr.BytesSent, secs),
		DownloadKbps: kbps(prev.BytesRecv, curr.BytesRecv, secs),
	}, true
}

func kbps(prev, curr uint64, secs float64) float64 {
	if curr <= prev {
		return 0
	}
	return float64(curr-prev) * 8 / 1024 / secs
}

// ReadCPU returns all-core utilization from the delta of CPU times since
// the previous call. The first call only primes and returns 0.
func (s *Sampler) ReadCPU(ctx context.Context) (float64, error) {
	cur, err := s.cpu.Times(ctx)
	if err != nil {
		return 0, err
	}
	curTotal := cur.Total()
	curIdle := cur.Idle + cur.Iowait
	var total float64
	if s.prevTotal > 0 {
		dt := curTotal - s.prevTotal
		di := curIdle - s.prevIdle
		if dt > 0 {
			total = 100 * (1 - di/dt)
		}
	}
	s.prevTotal, s.prevIdle = curTotal, curIdle
	switch {
	case total < 0:
		total = 0
	case total > 100:
		total = 100
	}
	return total, nil
}

// FullscreenActive reports whether a maximized window covers the screen.
// Enumeration failures fail open: the overlay stays visible.
func (s *Sampler) FullscreenActive(ctx context.Context) bool {
	now := s.clock.Now()
	if s.windowsAt.IsZero() || now.Sub(s.windowsAt) > s.windowTTL {
		s.cachedWindows, s.cachedScreen, s.windowsErr = s.windows.Windows(ctx)
		s.windowsAt = now
		if s.windowsErr != nil {
			s.logger.Debug("window enumeration failed", "error", s.windowsErr)
		}
	}
	if s.windowsErr != nil || s.cachedScreen.Width <= 0 || s.cachedScreen.Height <= 0 {
		return false
	}
	for _, w := range s.cachedWindows {
		if w.Maximized && w.Width >= s.cachedScreen.Width && w.Height >= s.cachedScreen.Height {
			return true
		}
	}
	return false
}
