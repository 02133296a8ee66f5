package format

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Dicklesworthstone/battnet/internal/model"
	"github.com/Dicklesworthstone/battnet/internal/theme"
)

func TestRate(t *testing.T) {
	tests := []struct {
		kbps float64
		want string
	}{
		{0, "0.0K"},
		{12.34, "12.3K"},
		{999.9, "999.9K"},
		{1000.0, "1.0M"},
		{1549.0, "1.5M"},
		{25000, "25.0M"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, Rate(tc.kbps), "kbps=%v", tc.kbps)
	}
}

func TestSelectDirection(t *testing.T) {
	tests := []struct {
		name     string
		up, down float64
		want     model.ThroughputSample
	}{
		{"upload larger", 10, 5, model.ThroughputSample{Kbps: 10, Direction: model.Upload}},
		{"download larger", 5, 10, model.ThroughputSample{Kbps: 10, Direction: model.Download}},
		{"tie favors download", 500, 500, model.ThroughputSample{Kbps: 500, Direction: model.Download}},
		{"both idle", 0, 0, model.ThroughputSample{Kbps: 0, Direction: model.Download}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, SelectDirection(tc.up, tc.down))
		})
	}
}

func TestSpeed(t *testing.T) {
	assert.Equal(t, "500.0K▼", Speed(model.Throughput{UploadKbps: 500, DownloadKbps: 500}))
	assert.Equal(t, "2.0M▲", Speed(model.Throughput{UploadKbps: 2000, DownloadKbps: 3}))
	assert.Equal(t, "0.0K▼", InitialSpeed())
}

func TestBatteryColor(t *testing.T) {
	for _, th := range []theme.Theme{theme.Dark, theme.Light} {
		tests := []struct {
			name  string
			state model.BatteryState
			want  string
		}{
			{"unavailable is neutral", model.Unavailable(), string(th.Neutral)},
			{"charging beats low warning", model.BatteryState{Percent: 15, Charging: true, Available: true}, string(th.Charging)},
			{"low warning inclusive", model.BatteryState{Percent: 20, Available: true}, string(th.Warning)},
			{"just above warning", model.BatteryState{Percent: 21, Available: true}, string(th.Text)},
			{"full unplugged", model.BatteryState{Percent: 100, Available: true}, string(th.Charging)},
			{"ninety nine", model.BatteryState{Percent: 99, Available: true}, string(th.Text)},
		}
		for _, tc := range tests {
			t.Run(th.Name+"/"+tc.name, func(t *testing.T) {
				assert.Equal(t, tc.want, string(BatteryColor(tc.state, th)))
			})
		}
	}
}

func TestBatteryText(t *testing.T) {
	assert.Equal(t, "N/A", BatteryText(model.Unavailable()))
	assert.Equal(t, "42%", BatteryText(model.BatteryState{Percent: 42, Available: true}))
}

func TestTooltips(t *testing.T) {
	assert.Equal(t, "Battery: N/A\nCPU Usage: 3.5%", BatteryTooltip(model.Unavailable(), 3.5))
	assert.Equal(t, "Battery: 80% (Charging)\nCPU Usage: 0.0%",
		BatteryTooltip(model.BatteryState{Percent: 80, Charging: true, Available: true}, 0))

	got := NetworkTooltip(model.NetworkCounterSnapshot{
		BytesSent:   2048,
		BytesRecv:   5 * 1024 * 1024,
		PacketsSent: 1234,
		PacketsRecv: 7,
	})
	assert.Equal(t, "Up: 2.0 KiB\nDw: 5.0 MiB\nPac S: 1,234\nPac R: 7", got)
}
