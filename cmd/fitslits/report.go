package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/pthm-cable/slits/optics"
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(18)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
)

// plotWidth is the column count of the terminal plot.
const plotWidth = 80

// Report renders the fitted geometry and a plot of observed against
// expected counts.
func Report(res FitResult, obs Observation, expected []float64) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Slit fit"))
	b.WriteString("\n")

	rows := [][2]string{
		{"particles", fmt.Sprintf("%d", res.Particles)},
		{"bins", fmt.Sprintf("%d", len(obs.Centers))},
		{"slit width", optics.FormatLength(res.Params.SlitWidth)},
		{"slit separation", optics.FormatLength(res.Params.SlitSeparation)},
		{"wavelength", optics.FormatLength(res.Params.Wavelength)},
		{"screen distance", optics.FormatLength(res.Params.ScreenDistance)},
		{"nll", fmt.Sprintf("%.2f (grid %.2f)", res.NLL, res.GridNLL)},
		{"evaluations", fmt.Sprintf("%d", res.Evals)},
	}
	if res.Status != "" {
		rows = append(rows, [2]string{"status", res.Status})
	}
	for _, r := range rows {
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render(r[0]), valueStyle.Render(r[1])))
		b.WriteString("\n")
	}

	if len(obs.Counts) > 1 && len(expected) == len(obs.Counts) {
		chart := asciigraph.PlotMany([][]float64{obs.Counts, expected},
			asciigraph.Height(12),
			asciigraph.Width(plotWidth),
			asciigraph.SeriesColors(asciigraph.Default, asciigraph.Green),
			asciigraph.Caption("observed (default) / fitted (green) counts per bin"),
		)
		b.WriteString(graphStyle.Render(chart))
		b.WriteString("\n")
	}
	return b.String()
}
