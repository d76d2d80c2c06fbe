package console

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/temirov/replayrig/internal/session"
)

// Catppuccin Mocha
const (
	colorRed      lipgloss.Color = "#f38ba8"
	colorPeach    lipgloss.Color = "#fab387"
	colorGreen    lipgloss.Color = "#a6e3a1"
	colorBlue     lipgloss.Color = "#89b4fa"
	colorLavender lipgloss.Color = "#b4befe"
	colorText     lipgloss.Color = "#cdd6f4"
	colorOverlay0 lipgloss.Color = "#6c7086"
	colorSurface1 lipgloss.Color = "#45475a"
	colorBase     lipgloss.Color = "#1e1e2e"
)

const (
	colorBrand   = colorLavender
	colorSuccess = colorGreen
	colorError   = colorRed
	colorWarning = colorPeach
	colorMuted   = colorOverlay0
)

var (
	titleStyle       = lipgloss.NewStyle().Bold(true).Foreground(colorBrand)
	badgeStyle       = lipgloss.NewStyle().Bold(true).Padding(0, 1).Foreground(colorBase)
	keyStyle         = lipgloss.NewStyle().Bold(true).Foreground(colorText).Background(colorSurface1).Padding(0, 1)
	legendLabelStyle = lipgloss.NewStyle().Foreground(colorMuted)
	meterFilledStyle = lipgloss.NewStyle().Foreground(colorWarning)
	meterEmptyStyle  = lipgloss.NewStyle().Foreground(colorSurface1)
	journalStyle     = lipgloss.NewStyle().Foreground(colorText).BorderStyle(lipgloss.NormalBorder()).BorderForeground(colorSurface1).Padding(0, 1)
	crashStyle       = lipgloss.NewStyle().Bold(true).Foreground(colorError)
	statusStyle      = lipgloss.NewStyle().Italic(true).Foreground(colorMuted)
)

var stateBadgeColors = map[session.State]lipgloss.Color{
	session.StateTitle: colorBlue,
	session.StatePlay:  colorSuccess,
	session.StateCrash: colorError,
}

func stateBadge(state session.State) string {
	badgeColor, known := stateBadgeColors[state]
	if !known {
		badgeColor = colorMuted
	}
	return badgeStyle.Background(badgeColor).Render(state.String())
}
