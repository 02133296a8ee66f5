package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type menuItem int

const (
	itemToggleTheme menuItem = iota
	itemExit
)

func (i menuItem) String() string {
	switch i {
	case itemToggleTheme:
		return "Toggle Theme"
	case itemExit:
		return "Exit"
	default:
		return "?"
	}
}

type menu struct {
	items []menuItem
	index int
	open  bool
}

func newMenu() menu {
	return menu{items: []menuItem{itemToggleTheme, itemExit}}
}

func (m *menu) show() {
	m.open = true
	m.index = 0
}

func (m *menu) move(delta int) {
	n := len(m.items)
	m.index = ((m.index+delta)%n + n) % n
}

func (m *menu) selected() menuItem { return m.items[m.index] }

type regionKind int

const (
	regionNone regionKind = iota
	regionBox
	regionToggle
	regionBattery
	regionSpeed
	regionTooltip
	regionMenu
)

type region struct {
	kind regionKind
	item menuItem
}

// layout is the column arrangement of the expanded main row.
type layout struct {
	batteryWidth int
	speedWidth   int
	gap          int
}

func (m *Model) layout() layout {
	l := layout{
		batteryWidth: lipgloss.Width(m.batteryText),
		speedWidth:   lipgloss.Width(m.speedText),
	}
	// toggle glyph plus its trailing space
	l.gap = innerWidth(m.cfg) - 2 - l.batteryWidth - l.speedWidth
	if l.gap < 1 {
		l.gap = 1
	}
	return l
}

func (m *Model) boxHeight() int {
	if !m.ov.Display().Collapsed && m.cfg.CPUGraph {
		return 2
	}
	return 1
}

// panel is the menu or tooltip drawn under the box, if any.
func (m *Model) panel() (string, regionKind) {
	switch {
	case m.menu.open:
		return m.renderMenu(), regionMenu
	case m.tooltip != tooltipNone && m.tooltipText != "":
		return m.renderTooltip(), regionTooltip
	default:
		return "", regionNone
	}
}

// regionAt maps a terminal cell to the element drawn there.
func (m *Model) regionAt(x, y int) region {
	if m.hidden {
		return region{}
	}
	panel, panelKind := m.panel()
	panelWidth := lipgloss.Width(panel)

	total := m.width
	if total <= 0 {
		total = max(m.cfg.Width, panelWidth)
	}
	boxLeft := total - m.cfg.Width
	boxHeight := m.boxHeight()

	if y >= 0 && y < boxHeight && x >= boxLeft && x < boxLeft+m.cfg.Width {
		return m.boxRegion(x-boxLeft-1, y)
	}

	if panelKind == regionNone || y < boxHeight {
		return region{}
	}
	panelLeft := total - panelWidth
	panelHeight := len(strings.Split(panel, "\n"))
	if x < panelLeft || x >= total || y >= boxHeight+panelHeight {
		return region{}
	}
	if panelKind == regionTooltip {
		return region{kind: regionTooltip}
	}
	// one row of border above the first item
	idx := y - boxHeight - 1
	if idx < 0 || idx >= len(m.menu.items) {
		return region{kind: regionBox}
	}
	return region{kind: regionMenu, item: m.menu.items[idx]}
}

func (m *Model) boxRegion(col, row int) region {
	if row != 0 {
		return region{kind: regionBox}
	}
	if col == 0 {
		return region{kind: regionToggle}
	}
	if m.ov.Display().Collapsed {
		return region{kind: regionBox}
	}
	l := m.layout()
	batteryStart := 2
	speedStart := batteryStart + l.batteryWidth + l.gap
	switch {
	case col >= batteryStart && col < batteryStart+l.batteryWidth:
		return region{kind: regionBattery}
	case col >= speedStart && col < speedStart+l.speedWidth:
		return region{kind: regionSpeed}
	default:
		return region{kind: regionBox}
	}
}
