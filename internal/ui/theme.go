package ui

import "github.com/charmbracelet/lipgloss"

// Some predefined colors

var (
	ColorRed         = lipgloss.Color("1")
	ColorWhite       = lipgloss.Color("7")
	ColorBrightBlue  = lipgloss.Color("33")
	ColorLightGray   = lipgloss.Color("243")
	ColorGray        = lipgloss.Color("238")
	ColorMutedPurple = lipgloss.Color("92")
	ColorOrange      = lipgloss.Color("214")
)

type Theme struct {
	ListSnapshotTextStyle     lipgloss.Style // revision kind "snapshot"
	ListPatchTextStyle        lipgloss.Style // revision kind "patch"
	ListRevisionTextStyle     lipgloss.Style
	ListCurrentArrowTextStyle lipgloss.Style

	BorderActiveContainerStyle lipgloss.Style
	BorderIdleContainerStyle   lipgloss.Style

	MutedTextStyle   lipgloss.Style
	ErrorTextStyle   lipgloss.Style
	PrimaryTextStyle lipgloss.Style

	BreadcrumbBarStyle lipgloss.Style
}

var DarkTheme = Theme{
	ListSnapshotTextStyle: lipgloss.NewStyle().
		Foreground(ColorOrange).
		Bold(true),
	ListPatchTextStyle: lipgloss.NewStyle().
		Foreground(ColorGray).
		Italic(true),
	ListRevisionTextStyle: lipgloss.NewStyle().
		Foreground(ColorMutedPurple),
	ListCurrentArrowTextStyle: lipgloss.NewStyle().
		Foreground(ColorBrightBlue),

	BorderActiveContainerStyle: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBrightBlue),
	BorderIdleContainerStyle: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorGray),

	MutedTextStyle: lipgloss.NewStyle().
		Foreground(ColorLightGray),
	ErrorTextStyle: lipgloss.NewStyle().
		Foreground(ColorRed).
		Bold(true),
	PrimaryTextStyle: lipgloss.NewStyle().
		Foreground(ColorBrightBlue),

	BreadcrumbBarStyle: lipgloss.NewStyle().
		Padding(0, 1).
		Background(ColorBrightBlue).
		Foreground(ColorWhite),
}

// PlainTheme keeps the borders but drops every color.
var PlainTheme = Theme{
	BorderActiveContainerStyle: lipgloss.NewStyle().Border(lipgloss.RoundedBorder()),
	BorderIdleContainerStyle:   lipgloss.NewStyle().Border(lipgloss.RoundedBorder()),
}
