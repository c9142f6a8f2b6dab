package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/hpungsan/captrack/internal/capacity"
	"github.com/hpungsan/captrack/internal/ops"
)

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Bold(true)

	timeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Width(7)

	scoreStyle = lipgloss.NewStyle().
			Width(6).
			Align(lipgloss.Right)

	journalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			PaddingLeft(2)

	emptyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)

	typeStyles = map[capacity.Type]lipgloss.Style{
		capacity.TypeNormal:   lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Width(3),
		capacity.TypeIncrease: lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Width(3),
		capacity.TypeDrop:     lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Width(3),
	}
)

// renderLog formats check-ins as a styled table, one row per check-in.
func renderLog(entries []capacity.CheckIn, loc *time.Location) string {
	if len(entries) == 0 {
		return emptyStyle.Render("No check-ins today.") + "\n"
	}
	if loc == nil {
		loc = time.Local
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("%-7s%-3s%6s%6s%6s%6s", "TIME", "", "OVR", "E", "A", "P")))
	b.WriteString("\n")
	for _, c := range entries {
		style, ok := typeStyles[c.Type]
		if !ok {
			style = typeStyles[capacity.TypeNormal]
		}
		b.WriteString(timeStyle.Render(time.UnixMilli(c.Timestamp).In(loc).Format(ops.ClockFormat)))
		b.WriteString(style.Render(c.Type.Icon()))
		b.WriteString(scoreStyle.Render(fmt.Sprintf("%.1f", c.OverallCapacity)))
		b.WriteString(scoreStyle.Render(fmt.Sprint(c.Capacity.Energy)))
		b.WriteString(scoreStyle.Render(fmt.Sprint(c.Capacity.Attention)))
		b.WriteString(scoreStyle.Render(fmt.Sprint(c.Capacity.Physical)))
		if c.Journal != "" {
			b.WriteString(journalStyle.Render(firstLine(c.Journal)))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + " …"
	}
	return s
}
