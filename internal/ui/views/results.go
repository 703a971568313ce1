package views

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"storesearch/internal/clock"
	"storesearch/internal/fragment"
	"storesearch/internal/search"
)

// scrollStepMsg advances a smooth scroll by one line.
type scrollStepMsg struct {
	seq uint64
}

// ResultsPane renders the results subtree into a viewport and scrolls it.
// It implements search.Scroller.
type ResultsPane struct {
	vp     viewport.Model
	styles *Styles
	tick   clock.TickFunc

	lineOf []int // item index -> line
	itemAt []int // line -> item index, -1 for titles and messages

	target int
	seq    uint64
}

var _ search.Scroller = (*ResultsPane)(nil)

// NewResultsPane creates an empty pane.
func NewResultsPane(styles *Styles, tick clock.TickFunc) *ResultsPane {
	if tick == nil {
		tick = clock.Real
	}
	vp := viewport.New(0, 0)
	return &ResultsPane{vp: vp, styles: styles, tick: tick}
}

// SetSize sizes the viewport.
func (p *ResultsPane) SetSize(width, height int) {
	p.vp.Width = width
	p.vp.Height = height
}

// Height is the visible line count.
func (p *ResultsPane) Height() int { return p.vp.Height }

// YOffset is the first visible line.
func (p *ResultsPane) YOffset() int { return p.vp.YOffset }

// Lines is the total line count.
func (p *ResultsPane) Lines() int { return len(p.itemAt) }

// SetDocument re-renders the pane from the live results subtree.
func (p *ResultsPane) SetDocument(doc *fragment.Document) {
	var lines []string
	p.lineOf = p.lineOf[:0]
	p.itemAt = p.itemAt[:0]

	add := func(s string, item int) {
		lines = append(lines, s)
		p.itemAt = append(p.itemAt, item)
	}

	sections := doc.Sections()
	if len(sections) == 0 {
		msg := doc.Message()
		if msg == "" {
			msg = "No results"
		}
		add(p.styles.Message.Render(msg), -1)
	}
	for _, sec := range sections {
		if sec.Title != "" {
			add(p.styles.SectionTitle.Render(strings.ToUpper(sec.Title)), -1)
		}
		for k, item := range sec.Items {
			idx := sec.Indexes[k]
			for len(p.lineOf) <= idx {
				p.lineOf = append(p.lineOf, -1)
			}
			p.lineOf[idx] = len(lines)

			style := p.styles.Item
			marker := "  "
			switch {
			case item.Selected:
				style = p.styles.ItemSelected
				marker = "› "
			case item.Active:
				style = p.styles.ItemActive
			case item.Action != "":
				style = p.styles.Action
			}
			add(marker+style.Render(item.Title), idx)
		}
	}

	p.vp.SetContent(strings.Join(lines, "\n"))
}

// LineOf is the line rendering item i, or -1.
func (p *ResultsPane) LineOf(i int) int {
	if i < 0 || i >= len(p.lineOf) {
		return -1
	}
	return p.lineOf[i]
}

// ItemAt maps a visible row to an item index, or -1.
func (p *ResultsPane) ItemAt(row int) int {
	if row < 0 || row >= p.vp.Height {
		return -1
	}
	line := p.vp.YOffset + row
	if line >= len(p.itemAt) {
		return -1
	}
	return p.itemAt[line]
}

// ScrollIntoView brings item i into view. Smooth scrolling moves one line per frame.
func (p *ResultsPane) ScrollIntoView(i int, smooth bool) tea.Cmd {
	line := p.LineOf(i)
	if line < 0 || p.vp.Height <= 0 {
		return nil
	}

	target := p.vp.YOffset
	switch {
	case line < p.vp.YOffset:
		target = line
		// keep the group title with its first item
		if line > 0 && p.itemAt[line-1] < 0 {
			target = line - 1
		}
	case line >= p.vp.YOffset+p.vp.Height:
		target = line - p.vp.Height + 1
	}

	p.seq++
	if target == p.vp.YOffset {
		return nil
	}
	if !smooth {
		p.vp.SetYOffset(target)
		return nil
	}
	p.target = target
	return p.step(p.seq)
}

// ScrollToTop jumps to the first line and cancels any running animation.
func (p *ResultsPane) ScrollToTop() {
	p.seq++
	p.vp.GotoTop()
}

// Update advances smooth scrolling and forwards mouse wheel events. handled
// reports whether msg belonged to the pane.
func (p *ResultsPane) Update(msg tea.Msg) (cmd tea.Cmd, handled bool) {
	switch msg := msg.(type) {
	case scrollStepMsg:
		if msg.seq != p.seq {
			return nil, true
		}
		off := p.vp.YOffset
		switch {
		case off < p.target:
			p.vp.SetYOffset(off + 1)
		case off > p.target:
			p.vp.SetYOffset(off - 1)
		}
		if p.vp.YOffset == p.target || p.vp.YOffset == off {
			return nil, true
		}
		return p.step(msg.seq), true

	case tea.MouseMsg:
		if msg.Button == tea.MouseButtonWheelUp || msg.Button == tea.MouseButtonWheelDown {
			p.seq++
			p.vp, cmd = p.vp.Update(msg)
			return cmd, true
		}
	}
	return nil, false
}

func (p *ResultsPane) step(seq uint64) tea.Cmd {
	return p.tick(search.FrameDelay, func(time.Time) tea.Msg {
		return scrollStepMsg{seq: seq}
	})
}

// View renders the visible lines.
func (p *ResultsPane) View() string {
	return p.vp.View()
}
