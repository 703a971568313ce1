// Package overlay holds the header drawer that contains the search box.
package overlay

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rohanthewiz/logger"
)

// OpenedMsg is sent after the drawer opens.
type OpenedMsg struct{}

// ClosedMsg is sent after the drawer closes.
type ClosedMsg struct{}

// Drawer is the overlay surface the search box lives in.
type Drawer struct {
	open bool
}

// New returns a closed drawer.
func New() *Drawer {
	return &Drawer{}
}

// IsOpen reports whether the drawer is showing.
func (d *Drawer) IsOpen() bool { return d.open }

// Toggle flips the drawer and returns the matching notification.
func (d *Drawer) Toggle() tea.Cmd {
	if d.open {
		return d.Close()
	}
	return d.Open()
}

// Open shows the drawer. Opening an open drawer does nothing.
func (d *Drawer) Open() tea.Cmd {
	if d.open {
		return nil
	}
	d.open = true
	logger.Debug("Drawer opened")
	return func() tea.Msg { return OpenedMsg{} }
}

// Close hides the drawer. Closing a closed drawer does nothing.
func (d *Drawer) Close() tea.Cmd {
	if !d.open {
		return nil
	}
	d.open = false
	logger.Debug("Drawer closed")
	return func() tea.Msg { return ClosedMsg{} }
}
