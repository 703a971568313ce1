package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/noborus/ov/oviewer"
	"github.com/rohanthewiz/serr"

	"storesearch/internal/search"
)

// HelpRenderer handles help content rendering
type HelpRenderer struct {
	search search.KeyMap
	app    appKeyMap
}

// NewHelpRenderer creates a new help renderer
func NewHelpRenderer(searchKeys search.KeyMap, appKeys appKeyMap) *HelpRenderer {
	return &HelpRenderer{search: searchKeys, app: appKeys}
}

// RenderHelpContentPlain generates help content with colors for pager
func (r *HelpRenderer) RenderHelpContentPlain() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("99")).
		MarginBottom(1)

	sectionStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("39")).
		MarginTop(1)

	keyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("220"))

	descStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("252"))

	var help strings.Builder

	help.WriteString(titleStyle.Render("Storesearch Help"))
	help.WriteString("\n")

	writeSection := func(title string, bindings []key.Binding) {
		help.WriteString(sectionStyle.Render(title))
		help.WriteString("\n")
		for _, b := range bindings {
			h := b.Help()
			help.WriteString(fmt.Sprintf("  %s %s\n", keyStyle.Render(fmt.Sprintf("%-12s", h.Key)), descStyle.Render(h.Desc)))
		}
		help.WriteString("\n")
	}

	writeSection("Search box", []key.Binding{r.search.Next, r.search.Prev, r.search.Submit, r.search.Escape, r.search.Cursor})
	writeSection("Mouse", []key.Binding{
		key.NewBinding(key.WithKeys("hover"), key.WithHelp("hover", "highlight a result")),
		key.NewBinding(key.WithKeys("click"), key.WithHelp("click", "open a result, or close the dropdown outside it")),
	})
	writeSection("Other", []key.Binding{r.app.Focus, r.app.Drawer, r.app.Help, r.app.Quit})

	hint := lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("241"))
	help.WriteString(hint.Render("  Enter with no selection opens the full search page for the typed term."))

	return help.String()
}

// HelpOps handles help operations
type HelpOps struct {
	program *tea.Program // reference to Bubble Tea program for terminal management
}

// NewHelpOps creates a new help operations instance
func NewHelpOps(program *tea.Program) *HelpOps {
	return &HelpOps{
		program: program,
	}
}

// ShowHelpInPager shows help content using ov pager
func (h *HelpOps) ShowHelpInPager(helpContent string) error {
	if h.program == nil {
		return serr.New("program not set")
	}

	// Release terminal control to run ov
	if err := h.program.ReleaseTerminal(); err != nil {
		return err
	}

	defer func() {
		// let ov finish with the terminal first
		time.Sleep(100 * time.Millisecond)
		_ = h.program.RestoreTerminal()
	}()

	root, err := oviewer.NewRoot(strings.NewReader(helpContent))
	if err != nil {
		return serr.Wrap(err, "failed to start help pager")
	}

	// Configure ov to not write on exit (to avoid messing with our screen)
	config := oviewer.NewConfig()
	config.IsWriteOnExit = false
	config.IsWriteOriginal = false
	root.SetConfig(config)

	return root.Run()
}
