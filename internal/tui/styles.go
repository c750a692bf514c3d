package tui

import (
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type shimmerTickMsg time.Time

func shimmerTickCmd() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(t time.Time) tea.Msg {
		return shimmerTickMsg(t)
	})
}

// logoColors runs from tarnished bronze to polished gold.
var logoColors = []lipgloss.Color{"#5a4418", "#7d5f1f", "#a88127", "#d1a533", "#f5c542", "#fff0b8"}

// glintPeriod is how many frames one glint takes to cross the logo and rest.
const glintPeriod = 40

// renderShimmerLogo renders "M O N E T A" with a glint sweeping left to right,
// like light across a coin.
func renderShimmerLogo(frame int) string {
	const text = "MONETA"
	pos := float64(frame%glintPeriod)/4 - 2 // letter index of the glint's centre

	letters := make([]string, 0, len(text))
	for i, r := range text {
		d := math.Abs(float64(i) - pos)
		shade := 2 // resting shade
		switch {
		case d < 0.5:
			shade = 5
		case d < 1.5:
			shade = 4
		case d < 2.5:
			shade = 3
		}
		letters = append(letters, lipgloss.NewStyle().
			Bold(true).
			Foreground(logoColors[shade]).
			Render(string(r)))
	}
	return strings.Join(letters, "  ")
}

// Palette. Warm inks on a dark ledger background.
const (
	colorText      = lipgloss.Color("#e6e1d3")
	colorBody      = lipgloss.Color("#c9c3b3")
	colorMuted     = lipgloss.Color("#8a8476")
	colorFaint     = lipgloss.Color("#5c574c")
	colorGhost     = lipgloss.Color("#3b372f")
	colorGold      = lipgloss.Color("#f5c542")
	colorAmber     = lipgloss.Color("#d9a441")
	colorGreen     = lipgloss.Color("#6fcf7f")
	colorRed       = lipgloss.Color("#e57373")
	colorErr       = lipgloss.Color("#c0504d")
	colorRowShade  = lipgloss.Color("#26231d")
	colorBarEmpty  = lipgloss.Color("#2e2a22")
)

var (
	dimStyle      = lipgloss.NewStyle().Foreground(colorMuted)
	selectedStyle = lipgloss.NewStyle().Foreground(colorText).Bold(true)
	normalStyle   = lipgloss.NewStyle().Foreground(colorBody)
	metaStyle     = lipgloss.NewStyle().Foreground(colorFaint)
	accentStyle   = lipgloss.NewStyle().Foreground(colorGold)

	helpKeyStyle   = lipgloss.NewStyle().Foreground(colorMuted)
	helpLabelStyle = lipgloss.NewStyle().Foreground(colorFaint)

	incomeStyle  = lipgloss.NewStyle().Foreground(colorGreen)
	expenseStyle = lipgloss.NewStyle().Foreground(colorRed)

	errorStyle  = lipgloss.NewStyle().Foreground(colorErr)
	noticeStyle = lipgloss.NewStyle().Foreground(colorAmber).Italic(true)

	sectionHeaderStyle    = lipgloss.NewStyle().Foreground(colorFaint).Bold(true)
	inputPromptStyle      = lipgloss.NewStyle().Foreground(colorGold).Bold(true)
	inputPlaceholderStyle = lipgloss.NewStyle().Foreground(colorGhost)
	selectedRowBg         = lipgloss.NewStyle().Background(colorRowShade)

	barFillColor  = colorGold
	barDoneColor  = colorGreen
	barEmptyColor = colorBarEmpty
)

// typeStyle colors a transaction type name.
func typeStyle(name string) lipgloss.Style {
	switch name {
	case "income":
		return incomeStyle
	case "expense":
		return expenseStyle
	default:
		return dimStyle
	}
}

// progressBar renders a width-cell bar filled to percent (0-100+).
func progressBar(percent float64, width int) string {
	if width < 4 {
		width = 4
	}
	filled := int(math.Round(percent / 100 * float64(width)))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	color := barFillColor
	if percent >= 100 {
		color = barDoneColor
	}
	return lipgloss.NewStyle().Foreground(color).Render(strings.Repeat("█", filled)) +
		lipgloss.NewStyle().Foreground(barEmptyColor).Render(strings.Repeat("█", width-filled))
}

// helpEntry renders a single "key label" pair for help bars.
func helpEntry(key, label string) string {
	return helpKeyStyle.Render(key) + " " + helpLabelStyle.Render(label)
}

func helpBar(entries ...[2]string) string {
	parts := make([]string, len(entries))
	for i, e := range entries {
		parts[i] = helpEntry(e[0], e[1])
	}
	return " " + strings.Join(parts, "  ")
}
