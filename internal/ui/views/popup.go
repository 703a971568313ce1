package views

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// PopupRenderer handles popup/modal rendering
type PopupRenderer struct {
	styles *Styles
}

// NewPopupRenderer creates a new popup renderer
func NewPopupRenderer(styles *Styles) *PopupRenderer {
	return &PopupRenderer{
		styles: styles,
	}
}

// RenderPopupOverlay draws popup over mainContent with its top-left corner at
// x, y. The covered page is greyed out so the popup stands apart; the popup
// keeps its own colors.
func (pr *PopupRenderer) RenderPopupOverlay(mainContent, popup string, x, y, height int) string {
	base := strings.Split(mainContent, "\n")
	for len(base) < height {
		base = append(base, "")
	}
	for i, line := range base {
		base[i] = ansi.Strip(line)
	}

	gray := pr.styles.Backdrop
	popLines := strings.Split(popup, "\n")
	out := make([]string, len(base))
	for i, line := range base {
		row := i - y
		if row < 0 || row >= len(popLines) {
			out[i] = gray.Render(line)
			continue
		}
		p := popLines[row]
		left := ansi.Truncate(line, x, "")
		if w := ansi.StringWidth(left); w < x {
			left += strings.Repeat(" ", x-w)
		}
		right := ansi.TruncateLeft(line, x+ansi.StringWidth(p), "")
		out[i] = gray.Render(left) + p + gray.Render(right)
	}
	return strings.Join(out, "\n")
}
