package player

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

type styles struct {
	driver lipgloss.Style
	patch  lipgloss.Style
	event  lipgloss.Style
	err    lipgloss.Style
}

// ANSI colours used
// 1	Red
// 2	Green
// 5	Magenta
// 6	Cyan
// 7	White
//
// a session writing to something other than a terminal uses unstyled output
func newStyles(styled bool) styles {
	if !styled {
		return styles{
			driver: lipgloss.NewStyle(),
			patch:  lipgloss.NewStyle(),
			event:  lipgloss.NewStyle(),
			err:    lipgloss.NewStyle(),
		}
	}
	return styles{
		driver: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.ANSIColor(6)),
		patch:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.ANSIColor(5)),
		event:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.ANSIColor(7)).Background(lipgloss.ANSIColor(2)),
		err:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.ANSIColor(7)).Background(lipgloss.ANSIColor(1)),
	}
}

// Diagnostic returns the line printed for an error that ends the program.
func Diagnostic(err error, styled bool) string {
	return newStyles(styled).err.Render(fmt.Sprintf("*** %s", err))
}
