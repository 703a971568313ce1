package views

import (
	"github.com/charmbracelet/lipgloss"
)

// Styles contains all the style definitions for the UI
type Styles struct {
	Header        lipgloss.Style
	Page          lipgloss.Style
	Dim           lipgloss.Style
	Backdrop      lipgloss.Style
	Drawer        lipgloss.Style
	Prompt        lipgloss.Style
	Clear         lipgloss.Style
	Divider       lipgloss.Style
	SectionTitle  lipgloss.Style
	Item          lipgloss.Style
	ItemActive    lipgloss.Style
	ItemSelected  lipgloss.Style
	Action        lipgloss.Style
	Message       lipgloss.Style
	Status        lipgloss.Style
	StatusError   lipgloss.Style
	StatusSuccess lipgloss.Style
	Help          lipgloss.Style
}

// NewStyles creates a new Styles instance with default values
func NewStyles() *Styles {
	return &Styles{
		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("99")),
		Page: lipgloss.NewStyle().Padding(1, 2),
		Dim:  lipgloss.NewStyle().Faint(true),
		// greyed page behind the drawer
		Backdrop: lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		Drawer: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 1),
		Prompt:        lipgloss.NewStyle().Foreground(lipgloss.Color("99")),
		Clear:         lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		Divider:       lipgloss.NewStyle().Foreground(lipgloss.Color("238")),
		SectionTitle:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		Item:          lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		ItemActive:    lipgloss.NewStyle().Foreground(lipgloss.Color("226")),
		ItemSelected:  lipgloss.NewStyle().Foreground(lipgloss.Color("226")).Background(lipgloss.Color("238")).Bold(true),
		Action:        lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Italic(true),
		Message:       lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true),
		Status:        lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		StatusError:   lipgloss.NewStyle().Foreground(lipgloss.Color("203")), // red
		StatusSuccess: lipgloss.NewStyle().Foreground(lipgloss.Color("78")),  // green
		Help:          lipgloss.NewStyle().Faint(true),
	}
}
