package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rewired-gh/putcall/internal/models"
)

var (
	itemStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#3B82F6")).
		Padding(0, 1)

	labelStyle = lipgloss.NewStyle().Bold(true)

	bullishStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#10B981")).
		Bold(true)

	bearishStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#EF4444")).
		Bold(true)

	mutedStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#6B7280"))

	alertStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#EF4444")).
		Bold(true)
)

// renderRows formats the history for the terminal, newest first.
func renderRows(rows []models.Row) string {
	if len(rows) == 0 {
		return mutedStyle.Render("No entries yet.") + "\n"
	}
	var b strings.Builder
	for _, r := range rows {
		b.WriteString(itemStyle.Render(rowText(r)))
		b.WriteString("\n")
	}
	return b.String()
}

func rowText(r models.Row) string {
	diff := fmt.Sprintf("%d", r.Difference)
	if r.DifferenceChange != "" {
		diff += " (" + r.DifferenceChange + ")"
	}

	signal := r.Signal
	switch models.Signal(r.Signal) {
	case models.SignalBullish:
		signal = bullishStyle.Render(signal)
	case models.SignalBearish:
		signal = bearishStyle.Render(signal)
	}

	lines := []string{
		labelStyle.Render(fmt.Sprintf("%d. Time:", r.Number)) + " " + r.Time,
		labelStyle.Render("Put:") + fmt.Sprintf(" %d, ", r.Put) + labelStyle.Render("Call:") + fmt.Sprintf(" %d (Difference: %s)", r.Call, diff),
		labelStyle.Render("Put Change:") + " " + r.PutChange,
		labelStyle.Render("Call Change:") + " " + r.CallChange,
		labelStyle.Render("Signal:") + " " + signal,
		labelStyle.Render("Weakness:") + " " + r.Weakness,
		labelStyle.Render("Trading Signal:") + " " + r.TradeSignal,
	}
	return strings.Join(lines, "\n")
}
