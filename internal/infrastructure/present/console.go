// Package present renders finished runs for the operator.
package present

import (
	"context"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rotisserie/eris"

	"TweetSentiment/internal/domain"
	"TweetSentiment/internal/ports"
	"TweetSentiment/internal/report"
)

const (
	maxCellWidth = 40
	barWidth     = 30
)

// ConsoleOptions tune the console report.
type ConsoleOptions struct {
	SampleRows int
}

// Console writes a styled report to a terminal or any writer.
type Console struct {
	out    io.Writer
	opts   ConsoleOptions
	styles consoleStyles
}

var _ ports.Presenter = (*Console)(nil)

type consoleStyles struct {
	title   lipgloss.Style
	label   lipgloss.Style
	muted   lipgloss.Style
	warning lipgloss.Style
	header  lipgloss.Style
	cell    lipgloss.Style
	bars    map[domain.Label]lipgloss.Style
	bar     lipgloss.Style
}

func newConsoleStyles(r *lipgloss.Renderer) consoleStyles {
	return consoleStyles{
		title:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("#2196F3")),
		label:   r.NewStyle().Bold(true),
		muted:   r.NewStyle().Foreground(lipgloss.Color("#8a8f98")),
		warning: r.NewStyle().Foreground(lipgloss.Color("#FFC107")),
		header:  r.NewStyle().Bold(true).Padding(0, 1),
		cell:    r.NewStyle().Padding(0, 1),
		bars: map[domain.Label]lipgloss.Style{
			domain.LabelPositive: r.NewStyle().Foreground(lipgloss.Color("#8BC34A")),
			domain.LabelNeutral:  r.NewStyle().Foreground(lipgloss.Color("#8a8f98")),
			domain.LabelNegative: r.NewStyle().Foreground(lipgloss.Color("#e53935")),
		},
		bar: r.NewStyle().Foreground(lipgloss.Color("#4db6ac")),
	}
}

// NewConsole builds a presenter writing to out; SampleRows defaults to 10.
func NewConsole(out io.Writer, opts ConsoleOptions) *Console {
	if opts.SampleRows <= 0 {
		opts.SampleRows = 10
	}
	return &Console{
		out:    out,
		opts:   opts,
		styles: newConsoleStyles(lipgloss.NewRenderer(out)),
	}
}

// Present writes the report.
func (c *Console) Present(_ context.Context, p report.Presentation) error {
	var sb strings.Builder

	sb.WriteString(c.styles.title.Render("Sentiment analysis"))
	if p.Keyword != "" {
		sb.WriteString(c.styles.muted.Render(fmt.Sprintf(" for %q", p.Keyword)))
	}
	sb.WriteString("\n")
	if p.RunID != "" {
		sb.WriteString(c.styles.muted.Render("run " + p.RunID))
		sb.WriteString("\n")
	}
	sb.WriteString(c.stageLine(p))

	for _, w := range p.Warnings {
		sb.WriteString(c.styles.warning.Render("! " + w))
		sb.WriteString("\n")
	}
	sb.WriteString("\n")

	rows := 0
	if p.Table != nil {
		rows = p.Table.Len()
	}
	sb.WriteString(c.styles.label.Render("Total rows in sentiment file:"))
	sb.WriteString(fmt.Sprintf(" %d\n\n", rows))

	if rows > 0 {
		sb.WriteString(c.styles.label.Render(fmt.Sprintf("Sample (first %d rows)", min(rows, c.opts.SampleRows))))
		sb.WriteString("\n")
		sb.WriteString(c.sample(p))
		sb.WriteString("\n")
	}

	sb.WriteString(c.distribution(p))
	sb.WriteString(c.terms(p))

	if _, err := io.WriteString(c.out, sb.String()); err != nil {
		return eris.Wrap(err, "write console report")
	}
	return nil
}

func (c *Console) stageLine(p report.Presentation) string {
	names := func(stages []domain.Stage) string {
		if len(stages) == 0 {
			return "none"
		}
		parts := make([]string, len(stages))
		for i, s := range stages {
			parts[i] = string(s)
		}
		return strings.Join(parts, ", ")
	}
	return c.styles.muted.Render(fmt.Sprintf("executed: %s | skipped: %s", names(p.Executed), names(p.Skipped))) + "\n"
}

func (c *Console) sample(p report.Presentation) string {
	head := p.Table.Head(c.opts.SampleRows)
	columns := head.Columns()

	cells := make([][]string, head.Len())
	widths := make([]int, len(columns))
	for i, col := range columns {
		widths[i] = lipgloss.Width(col)
	}
	for r := 0; r < head.Len(); r++ {
		row := head.Row(r)
		for i := range row {
			row[i] = truncate(row[i], maxCellWidth)
			if w := lipgloss.Width(row[i]); w > widths[i] {
				widths[i] = w
			}
		}
		cells[r] = row
	}

	var sb strings.Builder
	sep := c.styles.muted.Render("|")
	for i, col := range columns {
		sb.WriteString(c.styles.header.Width(widths[i] + 2).Render(col))
		if i < len(columns)-1 {
			sb.WriteString(sep)
		}
	}
	sb.WriteString("\n")

	total := len(columns) - 1
	for _, w := range widths {
		total += w + 2
	}
	sb.WriteString(c.styles.muted.Render(strings.Repeat("-", total)))
	sb.WriteString("\n")

	for _, row := range cells {
		for i, cell := range row {
			sb.WriteString(c.styles.cell.Width(widths[i] + 2).Render(cell))
			if i < len(row)-1 {
				sb.WriteString(sep)
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func (c *Console) distribution(p report.Presentation) string {
	if !p.Resolution.Resolved() {
		return c.styles.warning.Render("Could not find or infer sentiment labels. Showing raw data only.") + "\n\n"
	}

	var sb strings.Builder
	sb.WriteString(c.styles.label.Render("Sentiment distribution"))
	sb.WriteString(c.styles.muted.Render(fmt.Sprintf(" (strategy %s, column %s)", p.Resolution.Strategy, p.Resolution.Column)))
	sb.WriteString("\n")

	width := 0
	for _, s := range p.Distribution {
		if w := lipgloss.Width(string(s.Label)); w > width {
			width = w
		}
	}
	for _, s := range p.Distribution {
		style, ok := c.styles.bars[s.Label]
		if !ok {
			style = c.styles.bar
		}
		filled := int(math.Round(s.Percent / 100 * barWidth))
		sb.WriteString(fmt.Sprintf("%-*s ", width, s.Label))
		sb.WriteString(style.Render(strings.Repeat("█", filled)))
		sb.WriteString(strings.Repeat(" ", barWidth-filled))
		sb.WriteString(fmt.Sprintf(" %5.1f%% (%d)\n", s.Percent, s.Count))
	}
	sb.WriteString("\n")
	return sb.String()
}

func (c *Console) terms(p report.Presentation) string {
	if len(p.TopTerms) == 0 {
		return ""
	}
	parts := make([]string, len(p.TopTerms))
	for i, t := range p.TopTerms {
		parts[i] = fmt.Sprintf("%s (%d)", t.Word, t.Count)
	}
	return c.styles.label.Render("Top terms") + "\n" + strings.Join(parts, ", ") + "\n"
}

func truncate(s string, width int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width-1]) + "…"
}
