package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/gookit/color"
)

// Styles holds the lipgloss styles used to draw the panel.
type Styles struct {
	Mine    lipgloss.Style
	Yours   lipgloss.Style
	Caption lipgloss.Style
	Empty   lipgloss.Style
}

// DefaultStyles mirrors the mine/yours bubble look of the web page.
func DefaultStyles() Styles {
	return Styles{
		Mine: lipgloss.NewStyle().
			Foreground(lipgloss.Color("231")).
			Background(lipgloss.Color("33")).
			Padding(0, 1),
		Yours: lipgloss.NewStyle().
			Foreground(lipgloss.Color("16")).
			Background(lipgloss.Color("252")).
			Padding(0, 1),
		Caption: lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		Empty:   lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Italic(true),
	}
}

// Panel draws units top to bottom. Mine bubbles sit on the right edge of width,
// everyone else's on the left with the caption underneath. Width <= 0 disables alignment.
func (s Styles) Panel(units []Unit, width int) string {
	if len(units) == 0 {
		return s.Empty.Render("no messages")
	}

	blocks := make([]string, 0, len(units))
	for _, u := range units {
		blocks = append(blocks, s.unit(u, width))
	}
	return strings.Join(blocks, "\n")
}

func (s Styles) unit(u Unit, width int) string {
	limit := bubbleWidth(width)
	if u.Mine {
		bubble := wrap(s.Mine, u.Text, limit).Render(u.Text)
		if width <= 0 {
			return bubble
		}
		return lipgloss.PlaceHorizontal(width, lipgloss.Right, bubble)
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		wrap(s.Yours, u.Text, limit).Render(u.Text),
		wrap(s.Caption, u.Caption, width).Render(u.Caption),
	)
}

// bubbleWidth is the widest a bubble may grow inside a panel of width cells.
func bubbleWidth(width int) int {
	if width <= 0 {
		return 0
	}
	if w := width * 3 / 4; w >= 8 {
		return w
	}
	return width
}

// wrap fixes the style width to limit when text would not fit, so lipgloss word-wraps it.
// Short text keeps its natural width.
func wrap(style lipgloss.Style, text string, limit int) lipgloss.Style {
	if limit <= 0 || lipgloss.Width(style.Render(text)) <= limit {
		return style
	}
	return style.Width(limit)
}

// Plain renders units for a plain terminal, one or two lines per unit.
// With colored false the output carries no escape codes.
func Plain(units []Unit, colored bool) []string {
	paint := func(c color.Color, s string) string {
		if !colored {
			return s
		}
		return c.Render(s)
	}

	lines := make([]string, 0, len(units)*2)
	for _, u := range units {
		if u.Mine {
			lines = append(lines, paint(color.FgCyan, "> "+u.Text))
			continue
		}
		lines = append(lines, u.Text)
		lines = append(lines, paint(color.FgDarkGray, "  "+u.Caption))
	}
	return lines
}
