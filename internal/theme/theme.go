package theme

import "github.com/charmbracelet/lipgloss"

// Theme is a color table for the overlay.
type Theme struct {
	Name              string
	Background        lipgloss.Color
	Text              lipgloss.Color
	Graph             lipgloss.Color
	Warning           lipgloss.Color
	Charging          lipgloss.Color
	Neutral           lipgloss.Color
	SpeedBackground   lipgloss.Color
	TooltipBackground lipgloss.Color
	TooltipText       lipgloss.Color
	ToggleBackground  lipgloss.Color
	ToggleText        lipgloss.Color
}

var (
	Dark = Theme{
		Name:              "dark",
		Background:        lipgloss.Color("#000000"),
		Text:              lipgloss.Color("#FFFFFF"),
		Graph:             lipgloss.Color("#00FFFF"),
		Warning:           lipgloss.Color("#FF5555"),
		Charging:          lipgloss.Color("#55FF55"),
		Neutral:           lipgloss.Color("#808080"),
		SpeedBackground:   lipgloss.Color("#000000"),
		TooltipBackground: lipgloss.Color("#333333"),
		TooltipText:       lipgloss.Color("#FFFFFF"),
		ToggleBackground:  lipgloss.Color("#4D4D4D"), // gray30
		ToggleText:        lipgloss.Color("#B3B3B3"), // gray70
	}

	Light = Theme{
		Name:              "light",
		Background:        lipgloss.Color("#F0F0F0"),
		Text:              lipgloss.Color("#000000"),
		Graph:             lipgloss.Color("#FF00FF"),
		Warning:           lipgloss.Color("#FF0000"),
		Charging:          lipgloss.Color("#00AA00"),
		Neutral:           lipgloss.Color("#808080"),
		SpeedBackground:   lipgloss.Color("#DDDDDD"),
		TooltipBackground: lipgloss.Color("#FFFFFF"),
		TooltipText:       lipgloss.Color("#000000"),
		ToggleBackground:  lipgloss.Color("#B3B3B3"),
		ToggleText:        lipgloss.Color("#4D4D4D"),
	}
)

// For returns the dark or light table.
func For(dark bool) Theme {
	if dark {
		return Dark
	}
	return Light
}

// ByName resolves "dark" or "light".
func ByName(name string) (Theme, bool) {
	switch name {
	case Dark.Name:
		return Dark, true
	case Light.Name:
		return Light, true
	}
	return Theme{}, false
}
