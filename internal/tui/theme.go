package tui

import "github.com/charmbracelet/lipgloss"

// ============================================================
// Color Palette
// ============================================================
//
// All colors are defined here. No ad-hoc color literals anywhere.

var (
	// Base
	colorBgPanel   = lipgloss.Color("#161b22")
	colorBgSurface = lipgloss.Color("#1c2128")

	// Text
	colorText      = lipgloss.Color("#e6edf3")
	colorTextDim   = lipgloss.Color("#8b949e")
	colorTextMuted = lipgloss.Color("#484f58")

	// Accents
	colorBlue   = lipgloss.Color("#58a6ff")
	colorGreen  = lipgloss.Color("#3fb950")
	colorRed    = lipgloss.Color("#f85149")
	colorYellow = lipgloss.Color("#d29922")
	colorPurple = lipgloss.Color("#bc8cff")
	colorCyan   = lipgloss.Color("#76e3ea")

	// Structural
	colorDivider   = lipgloss.Color("#30363d")
	colorHighlight = lipgloss.Color("#1f6feb")
)

// ============================================================
// Component Styles
// ============================================================

// Header bar
var (
	headerBarStyle = lipgloss.NewStyle().
			Background(colorBgSurface).
			Foreground(colorText).
			Padding(0, 1)

	headerBrandStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorBlue)

	headerSepStyle = lipgloss.NewStyle().
			Foreground(colorTextMuted)

	headerMetaStyle = lipgloss.NewStyle().
			Foreground(colorTextDim)
)

// Panel chrome
var (
	panelStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.Border{
			Top:    "─",
			Bottom: "",
			Left:   "",
			Right:  "",
		}).
		BorderForeground(colorDivider)

	panelActiveStyle = lipgloss.NewStyle().
				Padding(0, 1).
				Border(lipgloss.Border{
			Top:    "─",
			Bottom: "",
			Left:   "",
			Right:  "",
		}).
		BorderForeground(colorBlue)

	panelTitleStyle = lipgloss.NewStyle().
			Foreground(colorBlue).
			Bold(true)

	panelTitleDimStyle = lipgloss.NewStyle().
				Foreground(colorTextMuted).
				Bold(true)
)

// Component tree
var (
	nodeNormalStyle = lipgloss.NewStyle().
			Foreground(colorText)

	nodeSelectedStyle = lipgloss.NewStyle().
				Background(colorHighlight).
				Foreground(colorText).
				Bold(true)

	nodeLayoutStyle = lipgloss.NewStyle().
			Foreground(colorCyan)

	nodeBasicStyle = lipgloss.NewStyle().
			Foreground(colorGreen)

	nodeAdvancedStyle = lipgloss.NewStyle().
				Foreground(colorPurple)

	nodeUnknownStyle = lipgloss.NewStyle().
				Foreground(colorRed)

	treeBranchStyle = lipgloss.NewStyle().
			Foreground(colorDivider)

	treeIDStyle = lipgloss.NewStyle().
			Foreground(colorTextMuted)
)

// Detail pane
var (
	detailLabelStyle = lipgloss.NewStyle().
				Foreground(colorBlue)

	detailValueStyle = lipgloss.NewStyle().
				Foreground(colorText)

	detailSectionStyle = lipgloss.NewStyle().
				Foreground(colorDivider)

	barEmptyStyle = lipgloss.NewStyle().
			Foreground(colorTextMuted)
)

// Overrides diff
var (
	diffAddStyle = lipgloss.NewStyle().
			Foreground(colorGreen)

	diffDelStyle = lipgloss.NewStyle().
			Foreground(colorRed)

	diffModStyle = lipgloss.NewStyle().
			Foreground(colorYellow)

	diffContextStyle = lipgloss.NewStyle().
				Foreground(colorTextMuted)

	diffHeaderStyle = lipgloss.NewStyle().
			Foreground(colorBlue).
			Bold(true)
)

// Footer / status bar
var (
	statusStyle = lipgloss.NewStyle().
			Foreground(colorText).
			Background(colorBgSurface).
			Padding(0, 1)

	statusAccentStyle = lipgloss.NewStyle().
				Foreground(colorBlue).
				Background(colorBgSurface).
				Bold(true).
				Padding(0, 1)

	hintKeyStyle = lipgloss.NewStyle().
			Foreground(colorText).
			Bold(true)

	hintDescStyle = lipgloss.NewStyle().
			Foreground(colorTextMuted)
)

// Project list
var (
	projectItemStyle = lipgloss.NewStyle().
			Foreground(colorText).
			Padding(0, 1)

	projectSelectedStyle = lipgloss.NewStyle().
				Background(colorHighlight).
				Foreground(colorText).
				Bold(true).
				Padding(0, 1)

	dimStyle = lipgloss.NewStyle().
			Foreground(colorTextDim)

	emptyStateStyle = lipgloss.NewStyle().
			Foreground(colorTextMuted).
			Padding(2, 4)
)

// Overlays
var (
	overlayStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBlue).
			Background(colorBgPanel).
			Padding(0, 1)

	paletteCategoryStyle = lipgloss.NewStyle().
				Foreground(colorTextDim).
				Italic(true)

	dirtyStyle = lipgloss.NewStyle().
			Foreground(colorYellow).
			Bold(true)

	previewStyle = lipgloss.NewStyle().
			Foreground(colorText).
			Padding(1, 2)
)
