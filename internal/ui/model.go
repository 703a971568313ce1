package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rohanthewiz/logger"

	"storesearch/internal/config"
	"storesearch/internal/domain"
	"storesearch/internal/eventbus"
	"storesearch/internal/search"
	"storesearch/internal/ui/overlay"
	"storesearch/internal/ui/views"
)

// Drawer placement on screen.
const (
	drawerX        = 2
	drawerY        = 1
	maxDrawerWidth = 80
	maxResultRows  = 14
)

type appKeyMap struct {
	Focus  key.Binding
	Drawer key.Binding
	Help   key.Binding
	Quit   key.Binding
}

func defaultAppKeys() appKeyMap {
	return appKeyMap{
		Focus: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		Drawer: key.NewBinding(
			key.WithKeys("ctrl+k"),
			key.WithHelp("ctrl+k", "toggle search drawer"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

func (k appKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Focus, k.Drawer, k.Help, k.Quit}
}

func (k appKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

// Options wires the model to its collaborators.
type Options struct {
	Bus       eventbus.EventBus
	Config    *config.Config
	ConfigSvc config.ConfigService
	Search    search.Options
	Title     string
}

// Model is the storefront header with its search drawer.
type Model struct {
	bus       eventbus.EventBus
	config    *config.Config
	configSvc config.ConfigService
	title     string

	width  int
	height int
	help   help.Model
	keys   appKeyMap

	inPagerMode bool // tracks if we're currently in pager mode
	program     *tea.Program
	helpOps     *HelpOps

	styles  *views.Styles
	popup   *views.PopupRenderer
	drawer  *overlay.Drawer
	results *views.ResultsPane
	search  *search.Controller
	next    search.Navigator

	status    string
	statusErr bool
	lastVisit string
	summary   string
}

// New creates the model and its search controller. The controller scrolls
// through the model's results pane and navigates through the model so the
// status bar can follow.
func New(opts Options) (*Model, error) {
	styles := views.NewStyles()
	m := &Model{
		bus:       opts.Bus,
		config:    opts.Config,
		configSvc: opts.ConfigSvc,
		title:     opts.Title,
		help:      help.New(),
		keys:      defaultAppKeys(),
		styles:    styles,
		popup:     views.NewPopupRenderer(styles),
		drawer:    overlay.New(),
		results:   views.NewResultsPane(styles, opts.Search.Tick),
		next:      opts.Search.Navigator,
		helpOps:   NewHelpOps(nil),
	}
	if m.title == "" {
		m.title = "storesearch"
	}

	so := opts.Search
	so.Scroller = m.results
	so.Navigator = m
	if so.Bus == nil {
		so.Bus = opts.Bus
	}
	c, err := search.New(so)
	if err != nil {
		return nil, err
	}
	m.search = c
	m.results.SetDocument(c.Document())
	return m, nil
}

// SetProgram sets the program reference for terminal management
func (m *Model) SetProgram(p *tea.Program) {
	m.program = p
	m.helpOps = NewHelpOps(p)
}

// Search exposes the controller.
func (m *Model) Search() *search.Controller { return m.search }

// Drawer exposes the search drawer.
func (m *Model) Drawer() *overlay.Drawer { return m.drawer }

// Results exposes the results pane.
func (m *Model) Results() *views.ResultsPane { return m.results }

// Status is the status bar text and whether it reports an error.
func (m *Model) Status() (string, bool) { return m.status, m.statusErr }

// Teardown stops the controller's timers and in-flight work.
func (m *Model) Teardown() {
	m.search.Teardown()
}

// Navigate records the visit for the status bar, then forwards to the
// configured navigator.
func (m *Model) Navigate(target string, reason domain.NavigationReason) error {
	if m.next != nil {
		if err := m.next.Navigate(target, reason); err != nil {
			return err
		}
	}
	m.lastVisit = target
	m.status = fmt.Sprintf("Opened %s (%s)", target, reason)
	m.statusErr = false
	return nil
}

// Init returns an initial command
func (m *Model) Init() tea.Cmd {
	return m.search.Init()
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.layout()
		return m, nil

	case tea.KeyMsg:
		return m, m.handleKey(msg)

	case tea.MouseMsg:
		return m, m.handleMouse(msg)

	case tea.BlurMsg:
		// the terminal lost focus, which is focus leaving the subtree
		return m, m.apply(m.search.FocusOut(false), nil)

	case overlay.OpenedMsg:
		return m, m.apply(m.search.Focus(), nil)

	case overlay.ClosedMsg:
		reset := m.search.ResetSearch()
		m.search.Close()
		blur := m.search.Blur()
		return m, m.apply(tea.Batch(reset, blur), nil)

	case EventMsg:
		return m, m.handleEvent(msg.Event)

	case helpPagerMsg:
		if msg.err != nil {
			logger.LogErr(msg.err, "help pager failed")
		}
		return m, nil

	case pauseRenderingMsg:
		m.inPagerMode = true
		return m, nil

	case resumeRenderingMsg:
		m.inPagerMode = false
		return m, nil
	}

	if cmd, ok := m.results.Update(msg); ok {
		return m, cmd
	}
	return m, m.apply(m.search.Update(msg))
}

// apply records a controller error and refreshes the results pane.
func (m *Model) apply(cmd tea.Cmd, err error) tea.Cmd {
	if err != nil {
		logger.LogErr(err, "search failed")
		m.status = err.Error()
		m.statusErr = true
	}
	m.results.SetDocument(m.search.Document())
	return cmd
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "ctrl+c":
		return tea.Quit
	case "ctrl+k":
		return m.drawer.Toggle()
	}

	if m.search.Focused() {
		return m.apply(m.search.Update(msg))
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit
	case key.Matches(msg, m.keys.Help):
		return m.fetchHelpPager(NewHelpRenderer(m.search.Keys(), m.keys).RenderHelpContentPlain())
	case key.Matches(msg, m.keys.Focus):
		if !m.drawer.IsOpen() {
			return m.drawer.Open()
		}
		return m.apply(m.search.Focus(), nil)
	case msg.Type == tea.KeyEsc:
		return m.drawer.Close()
	}
	return nil
}

// resultsTop is the screen row of the first results line.
func (m *Model) resultsTop() int {
	// border, input row, divider
	return drawerY + 3
}

// drawerBounds is the drawer box in screen cells.
func (m *Model) drawerBounds() (w, h int) {
	w = m.width - 2*drawerX
	if w > maxDrawerWidth {
		w = maxDrawerWidth
	}
	h = 4 // border, input, divider, border
	if m.search.IsOpen() {
		h += m.results.Height()
	}
	return w, h
}

// hit locates a screen cell relative to the drawer.
func (m *Model) hit(x, y int) (inside bool, item int) {
	if !m.drawer.IsOpen() {
		return false, -1
	}
	w, h := m.drawerBounds()
	if x < drawerX || x >= drawerX+w || y < drawerY || y >= drawerY+h {
		return false, -1
	}
	if !m.search.IsOpen() {
		return true, -1
	}
	return true, m.results.ItemAt(y - m.resultsTop())
}

func (m *Model) handleMouse(msg tea.MouseMsg) tea.Cmd {
	inside, item := m.hit(msg.X, msg.Y)

	switch {
	case msg.Button == tea.MouseButtonWheelUp || msg.Button == tea.MouseButtonWheelDown:
		if item >= 0 || inside {
			cmd, _ := m.results.Update(msg)
			return cmd
		}
		return nil

	case msg.Action == tea.MouseActionMotion:
		if item >= 0 {
			m.search.Hover(item)
			m.results.SetDocument(m.search.Document())
		}
		return nil

	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		if item >= 0 {
			return m.apply(m.search.Click(item))
		}
		if inside {
			return m.apply(m.search.Focus(), nil)
		}
		if msg.Y == 0 && !m.drawer.IsOpen() {
			return m.drawer.Open()
		}
		// the page area: focus leaves the subtree, then the click lands outside
		cmd := m.search.FocusOut(false)
		m.search.ClickOutside()
		return m.apply(cmd, nil)
	}
	return nil
}

func (m *Model) handleEvent(event eventbus.DomainEvent) tea.Cmd {
	switch e := event.(type) {
	case eventbus.ConfigChangedEvent:
		return m.reloadConfig(e.Path)
	case eventbus.ResultsRenderedEvent:
		if e.SessionID == m.search.SessionID() {
			m.summary = fmt.Sprintf("%d results for %q", e.Items, e.Term)
		}
	case eventbus.SearchResetEvent:
		if e.SessionID == m.search.SessionID() {
			m.summary = ""
		}
	}
	return nil
}

// reloadConfig picks up placeholder changes from a rewritten config file.
func (m *Model) reloadConfig(path string) tea.Cmd {
	if m.configSvc == nil {
		return nil
	}
	cfg, err := m.configSvc.Load()
	if err != nil {
		logger.LogErr(err, "failed to reload config", "path", path)
		m.status = "config reload failed: " + err.Error()
		m.statusErr = true
		return nil
	}
	m.config = cfg
	logger.Info("Config reloaded", "path", path)
	return tea.Batch(
		m.search.ConfigurePlaceholder(cfg.Placeholder.Prefix, cfg.Placeholder.Categories),
		m.search.SetReducedMotion(cfg.Placeholder.ReducedMotion),
	)
}

// fetchHelpPager returns a command that shows help using ov pager
func (m *Model) fetchHelpPager(helpContent string) tea.Cmd {
	if m.program == nil {
		logger.Info("Help pager unavailable without a running program")
		return nil
	}
	return func() tea.Msg {
		m.program.Send(pauseRenderingMsg{})
		err := m.helpOps.ShowHelpInPager(helpContent)
		m.program.Send(resumeRenderingMsg{})
		return helpPagerMsg{err: err}
	}
}

// layout sizes the input and results pane from the window.
func (m *Model) layout() {
	w, _ := m.drawerBounds()
	inner := w - 4 // border and padding
	if inner < 10 {
		inner = 10
	}
	// prompt and clear affordance
	m.search.SetWidth(inner - 5)

	rows := m.height - drawerY - 4 - 3
	if rows > maxResultRows {
		rows = maxResultRows
	}
	if rows < 1 {
		rows = 1
	}
	m.results.SetSize(inner, rows)
}

// View renders the page, the drawer over it and the status bar.
func (m *Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}
	if m.inPagerMode {
		return ""
	}

	pageHeight := m.height - 2
	if pageHeight < 1 {
		pageHeight = 1
	}
	page := m.renderPage(pageHeight)
	if m.drawer.IsOpen() {
		page = m.popup.RenderPopupOverlay(page, m.renderDrawer(), drawerX, drawerY, pageHeight)
	}
	return page + "\n" + m.renderStatus() + "\n" + m.renderHelp()
}

func (m *Model) renderPage(height int) string {
	hint := m.search.Placeholder().Text()
	if t := m.search.Term(); t != "" {
		hint = t
	}
	header := m.styles.Header.Render(m.title) + "  " + m.styles.Dim.Render("⌕ "+hint)

	var body string
	if m.lastVisit != "" {
		body = "Last visited: " + m.lastVisit
	} else {
		body = "Press / to search the storefront."
	}

	lines := []string{header}
	lines = append(lines, strings.Split(m.styles.Page.Render(body), "\n")...)
	for len(lines) < height {
		lines = append(lines, "")
	}
	return strings.Join(lines[:height], "\n")
}

func (m *Model) renderDrawer() string {
	w, _ := m.drawerBounds()
	inner := w - 4

	input := m.styles.Prompt.Render("⌕ ") + m.search.InputView()
	if m.search.ClearVisible() {
		input += m.styles.Clear.Render(" ✕")
	}
	lines := []string{
		lipgloss.NewStyle().Width(inner).MaxWidth(inner).Render(input),
		m.styles.Divider.Render(strings.Repeat("─", inner)),
	}
	if m.search.IsOpen() {
		lines = append(lines, m.results.View())
	}
	return m.styles.Drawer.Render(strings.Join(lines, "\n"))
}

func (m *Model) renderStatus() string {
	if m.status == "" {
		return m.styles.Status.Render(m.summary)
	}
	if m.statusErr {
		return m.styles.StatusError.Render(m.status)
	}
	return m.styles.StatusSuccess.Render(m.status)
}

func (m *Model) renderHelp() string {
	if m.search.Focused() {
		return m.help.ShortHelpView(m.search.Keys().ShortHelp())
	}
	return m.help.ShortHelpView(m.keys.ShortHelp())
}
