package sampler

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/distatus/battery"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/net"

	"github.com/Dicklesworthstone/battnet/internal/model"
)

// BatteryReader reports charge and AC state. Machines without a battery
// return model.Unavailable() and a nil error.
type BatteryReader interface {
	Battery(ctx context.Context) (model.BatteryState, error)
}

// CounterReader returns cumulative interface counters; the timestamp is
// stamped by the Sampler.
type CounterReader interface {
	Counters(ctx context.Context) (model.NetworkCounterSnapshot, error)
}

// CPUReader returns aggregate CPU times across all cores.
type CPUReader interface {
	Times(ctx context.Context) (cpu.TimesStat, error)
}

// Clock is swapped out in tests.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// OSBattery reads the first battery that reports a full-charge capacity.
type OSBattery struct{}

func (OSBattery) Battery(context.Context) (model.BatteryState, error) {
	bats, err := battery.GetAll()
	for _, b := range bats {
		if b == nil || b.Full <= 0 {
			continue
		}
		return model.BatteryState{
			Percent:   percentOf(b.Current, b.Full),
			Charging:  pluggedIn(b.State.String()),
			Available: true,
		}, nil
	}
	if err != nil {
		return model.BatteryState{}, fmt.Errorf("read battery: %w", err)
	}
	return model.Unavailable(), nil
}

func percentOf(current, full float64) int {
	p := math.Round(current / full * 100)
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	}
	return int(p)
}

// pluggedIn maps the driver state to "on AC". Full and idle batteries sit
// on a charger.
func pluggedIn(state string) bool {
	switch strings.ToLower(state) {
	case "charging", "full", "idle":
		return true
	}
	return false
}

// OSCounters reads the "all interfaces" aggregate from gopsutil.
type OSCounters struct{}

func (OSCounters) Counters(ctx context.Context) (model.NetworkCounterSnapshot, error) {
	stats, err := net.IOCountersWithContext(ctx, false)
	if err != nil {
		return model.NetworkCounterSnapshot{}, fmt.Errorf("read net counters: %w", err)
	}
	if len(stats) == 0 {
		return model.NetworkCounterSnapshot{}, fmt.Errorf("read net counters: no interfaces")
	}
	s := stats[0]
	return model.NetworkCounterSnapshot{
		BytesSent:   s.BytesSent,
		BytesRecv:   s.BytesRecv,
		PacketsSent: s.PacketsSent,
		PacketsRecv: s.PacketsRecv,
	}, nil
}

// OSCPU reads aggregate CPU times from gopsutil.
type OSCPU struct{}

func (OSCPU) Times(ctx context.Context) (cpu.TimesStat, error) {
	times, err := cpu.TimesWithContext(ctx, false)
	if err != nil {
		return cpu.TimesStat{}, fmt.Errorf("read cpu times: %w", err)
	}
	if len(times) == 0 {
		return cpu.TimesStat{}, fmt.Errorf("read cpu times: empty")
	}
	return times[0], nil
}
