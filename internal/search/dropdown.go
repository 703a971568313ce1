package search

import (
	"strconv"

	tea "github.com/charmbracelet/bubbletea"

	"storesearch/internal/eventbus"
)

// IsOpen is the dropdown state.
func (c *Controller) IsOpen() bool { return c.open }

// Open shows the dropdown.
func (c *Controller) Open() { c.setOpen(true) }

// Close hides the dropdown.
func (c *Controller) Close() { c.setOpen(false) }

func (c *Controller) setOpen(open bool) {
	if c.open == open {
		return
	}
	c.open = open
	c.reflect()
	c.publish(eventbus.DropdownToggledEvent{SessionID: c.sessionID, Open: open})
}

// reflect writes every derived attribute from controller state. Nothing else
// sets these attributes.
func (c *Controller) reflect() {
	expanded := strconv.FormatBool(c.open)
	c.doc.SetRootAttr(AttrExpanded, expanded)
	c.inputAttrs[AttrExpanded] = expanded
	c.inputAttrs[AttrInteractionMode] = string(c.mode)
}

// Focus gives the input focus and opens the dropdown. The first focus also
// loads the empty state.
func (c *Controller) Focus() tea.Cmd {
	if c.torn {
		return nil
	}
	c.focused = true
	cmds := []tea.Cmd{c.input.Focus()}
	c.placeholder.Pause()
	c.Open()
	if !c.rendered && c.rawTerm == "" {
		cmds = append(cmds, c.ResetSearch())
	}
	return tea.Batch(cmds...)
}

// Blur removes focus from the input. The dropdown stays as it is.
func (c *Controller) Blur() tea.Cmd {
	c.focused = false
	c.input.Blur()
	if c.torn {
		return nil
	}
	return c.updatePlaceholder()
}

// ClickOutside handles a pointer press outside the search subtree. It only
// closes the dropdown when the input is not focused.
func (c *Controller) ClickOutside() {
	if !c.focused {
		c.Close()
	}
}

// FocusOut handles focus leaving the input. Focus moving to another element
// of the subtree keeps the dropdown open.
func (c *Controller) FocusOut(insideSubtree bool) tea.Cmd {
	if insideSubtree {
		return nil
	}
	cmd := c.Blur()
	c.Close()
	return cmd
}
