package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Row is one line of a summary box
type Row struct {
	Label string
	Value int
	// Failure rows are highlighted when Value is non-zero
	Failure bool
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	failureStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	boxStyle     = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1)
)

// RenderSummary renders rows as an aligned, boxed table under title
func RenderSummary(title string, rows []Row) string {
	width := 0
	for _, r := range rows {
		if len(r.Label) > width {
			width = len(r.Label)
		}
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(title))
	for _, r := range rows {
		b.WriteString("\n")
		b.WriteString(labelStyle.Render(fmt.Sprintf("%-*s", width, r.Label)))
		b.WriteString("  ")
		value := fmt.Sprintf("%d", r.Value)
		switch {
		case r.Failure && r.Value > 0:
			value = failureStyle.Render(value)
		case r.Failure:
			value = okStyle.Render(value)
		}
		b.WriteString(value)
	}
	return boxStyle.Render(b.String())
}
