package cli

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/dukerupert/kidscoin/internal/model"
)

// styles renders for one writer; a writer that is not a terminal gets
// plain text.
type styles struct {
	Title   lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Coins   lipgloss.Style
}

func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		Title:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("#20B9B4")),
		Muted:   r.NewStyle().Foreground(lipgloss.Color("#6C7A89")),
		Success: r.NewStyle().Foreground(lipgloss.Color("#2ECC71")),
		Warning: r.NewStyle().Foreground(lipgloss.Color("#F4D03F")),
		Error:   r.NewStyle().Foreground(lipgloss.Color("#E74C3C")),
		Coins:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("#F5B041")),
	}
}

func (s styles) assignmentStatus(st model.AssignmentStatus) string {
	switch st {
	case model.AssignmentCompleted:
		return s.Warning.Render(st.Label())
	case model.AssignmentApproved:
		return s.Success.Render(st.Label())
	case model.AssignmentRejected:
		return s.Error.Render(st.Label())
	}
	return st.Label()
}

func (s styles) redemptionStatus(st model.RedemptionStatus) string {
	switch st {
	case model.RedemptionPending:
		return s.Warning.Render(string(st))
	case model.RedemptionApproved:
		return s.Success.Render(string(st))
	case model.RedemptionRejected:
		return s.Error.Render(string(st))
	}
	return string(st)
}

func (s styles) table(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(s.Muted).
		Headers(headers...)
}
