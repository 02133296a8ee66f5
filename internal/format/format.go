// Package format turns raw sampler values into the strings and colors the
// overlay paints. Everything here is pure.
package format

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/Dicklesworthstone/battnet/internal/model"
	"github.com/Dicklesworthstone/battnet/internal/theme"
)

const (
	// MegaThreshold is where kilobits are promoted to megabits.
	MegaThreshold = 1000.0
	// LowBattery is the inclusive warning threshold.
	LowBattery = 20
	// FullBattery is painted with the charging color even when unplugged.
	FullBattery = 100

	// Unavailable stands in for a value that cannot be read.
	Unavailable = "N/A"
)

// Rate renders kbps with exactly one decimal and a K or M suffix.
func Rate(kbps float64) string {
	if kbps >= MegaThreshold {
		return fmt.Sprintf("%.1fM", kbps/MegaThreshold)
	}
	return fmt.Sprintf("%.1fK", kbps)
}

// SelectDirection keeps only the larger direction. Ties go to download.
func SelectDirection(uploadKbps, downloadKbps float64) model.ThroughputSample {
	if uploadKbps > downloadKbps {
		return model.ThroughputSample{Kbps: uploadKbps, Direction: model.Upload}
	}
	return model.ThroughputSample{Kbps: downloadKbps, Direction: model.Download}
}

// Speed is the text shown in the speed slot, e.g. "12.3K▼".
func Speed(t model.Throughput) string {
	sel := SelectDirection(t.UploadKbps, t.DownloadKbps)
	return Rate(sel.Kbps) + sel.Direction.Glyph()
}

// InitialSpeed is painted before the first delta exists.
func InitialSpeed() string {
	return Speed(model.Throughput{})
}

// BatteryText is "N/A" or "87%".
func BatteryText(b model.BatteryState) string {
	if !b.Available {
		return Unavailable
	}
	return fmt.Sprintf("%d%%", b.Percent)
}

// BatteryColor picks the label color. Check order matters: charging wins
// over the low warning, and a full battery counts as charging.
func BatteryColor(b model.BatteryState, t theme.Theme) lipgloss.Color {
	switch {
	case !b.Available:
		return t.Neutral
	case b.Charging:
		return t.Charging
	case b.Percent <= LowBattery:
		return t.Warning
	case b.Percent == FullBattery:
		return t.Charging
	default:
		return t.Text
	}
}

// BatteryTooltip is the hover text for the battery label.
func BatteryTooltip(b model.BatteryState, cpuPercent float64) string {
	batt := "Battery: N/A"
	if b.Available {
		status := "Discharging"
		if b.Charging {
			status = "Charging"
		}
		batt = fmt.Sprintf("Battery: %d%% (%s)", b.Percent, status)
	}
	return fmt.Sprintf("%s\nCPU Usage: %.1f%%", batt, cpuPercent)
}

// NetworkTooltip is the hover text for the speed slot.
func NetworkTooltip(s model.NetworkCounterSnapshot) string {
	return fmt.Sprintf("Up: %s\nDw: %s\nPac S: %s\nPac R: %s",
		humanize.IBytes(s.BytesSent),
		humanize.IBytes(s.BytesRecv),
		humanize.Comma(int64(s.PacketsSent)),
		humanize.Comma(int64(s.PacketsRecv)))
}

// NetworkUnavailable replaces the network tooltip when counters fail.
const NetworkUnavailable = "Network information unavailable"
