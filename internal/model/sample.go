package model

import "time"

// Direction tells which way a throughput sample flows.
type Direction int

const (
	Download Direction = iota
	Upload
)

// Glyph is the arrow drawn next to a rate.
func (d Direction) Glyph() string {
	if d == Upload {
		return "▲"
	}
	return "▼"
}

func (d Direction) String() string {
	if d == Upload {
		return "upload"
	}
	return "download"
}

// NetworkCounterSnapshot holds cumulative interface counters since boot.
type NetworkCounterSnapshot struct {
	BytesSent   uint64
	BytesRecv   uint64
	PacketsSent uint64
	PacketsRecv uint64
	Timestamp   time.Time
}

// Throughput is the per-direction rate in kilobits per second.
type Throughput struct {
	UploadKbps   float64
	DownloadKbps float64
}

// ThroughputSample is a single rate picked for display.
type ThroughputSample struct {
	Kbps      float64
	Direction Direction
}

// BatteryState is meaningful only when Available is true.
type BatteryState struct {
	Percent   int
	Charging  bool
	Available bool
}

// Unavailable marks a machine without battery hardware.
func Unavailable() BatteryState { return BatteryState{} }

// DisplayState is toggled by the user, never by the sampling loop.
type DisplayState struct {
	Collapsed bool
	DarkTheme bool
}

// Reading is the one-shot aggregate used by the snapshot command.
type Reading struct {
	Timestamp  time.Time      `json:"timestamp"`
	Battery    BatteryReading `json:"battery"`
	Network    NetworkReading `json:"network"`
	CPUPercent float64        `json:"cpu_percent"`
	Counters   CounterTotals  `json:"counters"`
}

// BatteryReading is the JSON shape of a BatteryState.
type BatteryReading struct {
	Available bool `json:"available"`
	Percent   int  `json:"percent,omitempty"`
	Charging  bool `json:"charging"`
}

// NetworkReading is the JSON shape of a Throughput.
type NetworkReading struct {
	UploadKbps   float64 `json:"upload_kbps"`
	DownloadKbps float64 `json:"download_kbps"`
	Text         string  `json:"text"`
}

// CounterTotals mirrors the raw cumulative counters.
type CounterTotals struct {
	BytesSent   uint64 `json:"bytes_sent"`
	BytesRecv   uint64 `json:"bytes_recv"`
	PacketsSent uint64 `json:"packets_sent"`
	PacketsRecv uint64 `json:"packets_recv"`
}

// NewReading assembles a Reading from its parts.
func NewReading(now time.Time, b BatteryState, t Throughput, speed string, cpu float64, snap NetworkCounterSnapshot) Reading {
	return Reading{
		Timestamp: now,
		Battery: BatteryReading{
			Available: b.Available,
			Percent:   b.Percent,
			Charging:  b.Charging,
		},
		Network: NetworkReading{
			UploadKbps:   t.UploadKbps,
			DownloadKbps: t.DownloadKbps,
			Text:         speed,
		},
		CPUPercent: cpu,
		Counters: CounterTotals{
			BytesSent:   snap.BytesSent,
			BytesRecv:   snap.BytesRecv,
			PacketsSent: snap.PacketsSent,
			PacketsRecv: snap.PacketsRecv,
		},
	}
}
