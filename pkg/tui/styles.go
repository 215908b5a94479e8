package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// Minimal color palette
var (
	DimColor     = lipgloss.Color("#6c6c6c")
	TextColor    = lipgloss.Color("#e0e0e0")
	AccentColor  = lipgloss.Color("#7aa2f7")
	ErrorColor   = lipgloss.Color("#f7768e")
	SuccessColor = lipgloss.Color("#9ece6a")
	WarnColor    = lipgloss.Color("#e0af68")
	InputAreaBg  = lipgloss.Color("#1f2335")
	SelectedBg   = lipgloss.Color("#292e42")
)

// pulseColors go from dim to bright; the sending indicator walks through them.
var pulseColors = []lipgloss.Color{"#3b4261", "#4e5a8a", "#6278b3", "#7aa2f7", "#a9c1ff"}

// Request line
var (
	MethodStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1).
			Foreground(lipgloss.Color("#1a1b26")).
			Background(AccentColor)

	InputAreaStyle = lipgloss.NewStyle().
			Background(InputAreaBg).
			Padding(0, 1)

	NameStyle = lipgloss.NewStyle().
			Foreground(DimColor)
)

// Sidebar
var (
	SidebarStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, true, false, false).
			BorderForeground(DimColor).
			PaddingRight(1)

	SidebarTitleStyle = lipgloss.NewStyle().
				Foreground(AccentColor).
				Bold(true)

	SidebarItemStyle = lipgloss.NewStyle().
				Foreground(TextColor)

	SidebarSelectedStyle = lipgloss.NewStyle().
				Foreground(TextColor).
				Background(SelectedBg).
				Bold(true)

	SidebarMethodStyle = lipgloss.NewStyle().
				Foreground(DimColor).
				Width(7)
)

// Response
var (
	StatusOKStyle = lipgloss.NewStyle().
			Foreground(SuccessColor).
			Bold(true)

	StatusWarnStyle = lipgloss.NewStyle().
			Foreground(WarnColor).
			Bold(true)

	StatusErrorStyle = lipgloss.NewStyle().
				Foreground(ErrorColor).
				Bold(true)

	MetaStyle = lipgloss.NewStyle().
			Foreground(DimColor)

	HeaderKeyStyle = lipgloss.NewStyle().
			Foreground(AccentColor)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ErrorColor)

	NoticeStyle = lipgloss.NewStyle().
			Foreground(SuccessColor)

	HelpStyle = lipgloss.NewStyle().
			Foreground(DimColor)
)

// Footer
var (
	FooterStyle = lipgloss.NewStyle().
			Foreground(DimColor)

	FooterAppNameStyle = lipgloss.NewStyle().
				Foreground(AccentColor).
				Bold(true).
				PaddingRight(1)

	ShortcutKeyStyle = lipgloss.NewStyle().
				Foreground(TextColor)

	ShortcutDescStyle = lipgloss.NewStyle().
				Foreground(DimColor)
)
