package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dicklesworthstone/battnet/internal/model"
	"github.com/Dicklesworthstone/battnet/internal/sampler"
)

type stubBattery struct {
	state model.BatteryState
	err   error
}

func (b stubBattery) Battery(context.Context) (model.BatteryState, error) { return b.state, b.err }

// growingCounters adds a fixed amount of received bytes per read.
type growingCounters struct {
	recv uint64
	err  error
}

func (c *growingCounters) Counters(context.Context) (model.NetworkCounterSnapshot, error) {
	if c.err != nil {
		return model.NetworkCounterSnapshot{}, c.err
	}
	c.recv += 64 * 1024
	return model.NetworkCounterSnapshot{BytesRecv: c.recv, PacketsRecv: 10}, nil
}

// busyCPU alternates idle and busy time so the second read is 50%.
type busyCPU struct{ n float64 }

func (c *busyCPU) Times(context.Context) (cpu.TimesStat, error) {
	c.n++
	return cpu.TimesStat{User: 100 * c.n, Idle: 100 * c.n}, nil
}

func TestTakeSnapshot(t *testing.T) {
	smp := sampler.New(sampler.Options{
		Battery:  stubBattery{state: model.BatteryState{Percent: 15, Available: true}},
		Counters: &growingCounters{},
		CPU:      &busyCPU{},
	})
	r, err := takeSnapshot(context.Background(), smp, 0)
	require.NoError(t, err)

	assert.Equal(t, 15, r.Battery.Percent)
	assert.InDelta(t, 50.0, r.CPUPercent, 0.001)
	assert.Greater(t, r.Network.DownloadKbps, 0.0)
	assert.Contains(t, r.Network.Text, "▼")
	assert.Equal(t, uint64(128*1024), r.Counters.BytesRecv)
}

func TestTakeSnapshotDegrades(t *testing.T) {
	smp := sampler.New(sampler.Options{
		Battery:  stubBattery{err: errors.New("no acpi")},
		Counters: &growingCounters{err: errors.New("no netlink")},
		CPU:      &busyCPU{},
	})
	r, err := takeSnapshot(context.Background(), smp, 0)
	require.NoError(t, err)
	assert.False(t, r.Battery.Available)
	assert.Equal(t, "N/A", r.Network.Text)
	assert.Zero(t, r.Counters.BytesRecv)
}

func TestTakeSnapshotCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	smp := sampler.New(sampler.Options{
		Battery:  stubBattery{},
		Counters: &growingCounters{},
		CPU:      &busyCPU{},
	})
	_, err := takeSnapshot(ctx, smp, time.Minute)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestOutput(t *testing.T) {
	color.NoColor = true
	r := model.NewReading(time.Unix(0, 0).UTC(),
		model.BatteryState{Percent: 80, Available: true},
		model.Throughput{DownloadKbps: 12.34}, "12.3K▼", 7.5,
		model.NetworkCounterSnapshot{BytesSent: 1024, BytesRecv: 2048})

	var out bytes.Buffer
	cmd := cobra.Command{}
	cmd.SetOut(&out)

	logReadingCmd(cmd, r)
	text := out.String()
	assert.Contains(t, text, "80%")
	assert.Contains(t, text, "12.3K▼")
	assert.Contains(t, text, "7.5%")
	assert.Contains(t, text, "1.0 KiB up, 2.0 KiB down")

	out.Reset()
	require.NoError(t, logJSONCmd(cmd, r))
	var decoded model.Reading
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(out.Bytes()), &decoded))
	assert.Equal(t, r.Network, decoded.Network)
	assert.Equal(t, r.Counters, decoded.Counters)
}

func TestBatteryColorPolicy(t *testing.T) {
	tests := []struct {
		name  string
		state model.BatteryState
		want  *color.Color
	}{
		{"unavailable", model.Unavailable(), color.New(color.FgHiBlack)},
		{"charging low", model.BatteryState{Percent: 5, Charging: true, Available: true}, color.New(color.FgGreen)},
		{"low", model.BatteryState{Percent: 20, Available: true}, color.New(color.FgRed)},
		{"full", model.BatteryState{Percent: 100, Available: true}, color.New(color.FgGreen)},
		{"normal", model.BatteryState{Percent: 64, Available: true}, color.New(color.Reset)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.True(t, batteryColor(tc.state).Equals(tc.want))
		})
	}
}
