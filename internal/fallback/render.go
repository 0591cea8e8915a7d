package fallback

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"
	"github.com/charmbracelet/lipgloss"
)

var (
	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 1)
	titleStyle   = lipgloss.NewStyle().Bold(true).Align(lipgloss.Center)
	messageStyle = lipgloss.NewStyle().Align(lipgloss.Center).Padding(1, 0)
	buttonStyle  = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			Align(lipgloss.Center)
	indexStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// RenderText draws the dialog for a terminal of the given column width. Each
// button is prefixed with the index a click on it reports.
func RenderText(d Dialog, width int) string {
	if width < 20 {
		width = 20
	}
	inner := width - 4

	title := titleStyle.Width(inner).Render(d.Title)
	message := messageStyle.Width(inner).Render(d.Message)

	var buttons []string
	if n := len(d.Buttons); n > 0 {
		bw := inner/n - 2
		if bw < 4 {
			bw = 4
		}
		for i, b := range d.Buttons {
			label := indexStyle.Render(fmt.Sprintf("[%d] ", i)) + b
			buttons = append(buttons, buttonStyle.Width(bw).Render(label))
		}
	}
	row := lipgloss.JoinHorizontal(lipgloss.Top, buttons...)

	return boxStyle.Width(width - 2).Render(
		lipgloss.JoinVertical(lipgloss.Center, title, message, row),
	)
}

// Component renders the dialog as absolutely positioned HTML using the
// computed layout. Buttons call the bound JS function clickFn with their
// index.
func Component(d Dialog, clickFn string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var sb strings.Builder
		box := d.Layout.Box
		fmt.Fprintf(&sb,
			`<div class="nk-popup" style="position:absolute;left:%.0fpx;top:%.0fpx;width:%.0fpx;height:%.0fpx">`,
			box.X, box.Y, box.Width, box.Height)

		tb := d.Layout.TitleBar
		fmt.Fprintf(&sb,
			`<div class="nk-popup-title" style="height:%.0fpx">%s</div>`,
			tb.Height, templ.EscapeString(d.Title))
		fmt.Fprintf(&sb, `<div class="nk-popup-message">%s</div>`,
			strings.ReplaceAll(templ.EscapeString(d.Message), "\n", "<br>"))

		for i, b := range d.Buttons {
			if i >= len(d.Layout.Buttons) {
				break
			}
			r := d.Layout.Buttons[i]
			fmt.Fprintf(&sb,
				`<button class="nk-popup-button" style="position:absolute;left:%.0fpx;top:%.0fpx;width:%.0fpx;height:%.0fpx" onclick="%s(%d)">%s</button>`,
				r.X-box.X, r.Y-box.Y, r.Width, r.Height,
				templ.EscapeString(clickFn), i, templ.EscapeString(b))
		}
		sb.WriteString(`</div>`)

		_, err := io.WriteString(w, sb.String())
		return err
	})
}
