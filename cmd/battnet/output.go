package main

import (
	"encoding/json"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	prettyjson "github.com/hokaccha/go-prettyjson"
	"github.com/spf13/cobra"

	"github.com/Dicklesworthstone/battnet/internal/format"
	"github.com/Dicklesworthstone/battnet/internal/model"
)

func logJSONCmd(cmd cobra.Command, v any) error {
	m, err := json.Marshal(v)
	if err != nil {
		return err
	}
	pj, err := prettyjson.Format(m)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s\n", pj)
	return nil
}

func logErrorCmd(cmd cobra.Command, err error) {
	boldRed := color.New(color.FgRed, color.Bold)
	boldRed.Fprint(cmd.ErrOrStderr(), "error: ")
	fmt.Fprintf(cmd.ErrOrStderr(), "%s\n", color.RedString(err.Error()))
}

func logReadingCmd(cmd cobra.Command, r model.Reading) {
	out := cmd.OutOrStdout()
	label := color.New(color.Bold)
	b := model.BatteryState{Percent: r.Battery.Percent, Charging: r.Battery.Charging, Available: r.Battery.Available}

	label.Fprint(out, "battery  ")
	batteryColor(b).Fprintln(out, format.BatteryText(b))
	label.Fprint(out, "network  ")
	fmt.Fprintln(out, r.Network.Text)
	label.Fprint(out, "cpu      ")
	fmt.Fprintf(out, "%.1f%%\n", r.CPUPercent)
	label.Fprint(out, "totals   ")
	fmt.Fprintln(out, color.HiBlackString("%s up, %s down",
		humanize.IBytes(r.Counters.BytesSent), humanize.IBytes(r.Counters.BytesRecv)))
}

// batteryColor follows the overlay's label policy in terminal colors.
func batteryColor(b model.BatteryState) *color.Color {
	switch {
	case !b.Available:
		return color.New(color.FgHiBlack)
	case b.Charging, b.Percent == format.FullBattery:
		return color.New(color.FgGreen)
	case b.Percent <= format.LowBattery:
		return color.New(color.FgRed)
	default:
		return color.New(color.Reset)
	}
}
