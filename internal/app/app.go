package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/vidyasagar/tabnav/internal/browser"
	"github.com/vidyasagar/tabnav/internal/tabhistory"
	"github.com/vidyasagar/tabnav/internal/theme"
	"github.com/vidyasagar/tabnav/internal/ui"
)

// Mode represents the current input mode.
type Mode int

const (
	ModeNormal  Mode = iota
	ModeInsert       // URL bar focused
	ModeHistory      // tab history panel focused
)

// Options configures a Model.
type Options struct {
	Session   *browser.Session
	Tracker   *tabhistory.Tracker
	Logger    *slog.Logger
	Homepage  string   // loaded into the first tab when StartURLs is empty
	StartURLs []string // one tab per URL, the first in the initial tab
}

// Model is the top-level bubbletea model for tabnav.
//
// Tab changes made by the session are read one at a time by a single
// event pump command and handed to the tracker before the next one is
// read, so the tracker sees them in order.
type Model struct {
	// UI components
	tabBar       ui.TabBar
	urlBar       ui.URLBar
	statusBar    ui.StatusBar
	viewport     ui.PageViewport
	historyPanel ui.HistoryPanel

	session *browser.Session
	tracker *tabhistory.Tracker
	log     *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	loads  map[tabhistory.TabID]context.CancelFunc

	keys      KeyMap
	mode      Mode
	width     int
	height    int
	ready     bool
	showHelp  bool
	startURLs []string
}

// restoredMsg is sent once the saved tab history has been restored.
type restoredMsg struct{}

// tabEventMsg is sent after a session event has been handed to the tracker.
type tabEventMsg struct {
	ev browser.Event
}

// navigatedMsg is sent when a back or forward command finishes.
type navigatedMsg struct {
	command string
	err     error
}

// pageLoadedMsg is sent when a page load finishes.
type pageLoadedMsg struct {
	tabID tabhistory.TabID
	url   string
	err   error
}

// New creates a new tabnav Model.
func New(opts Options) Model {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	session := opts.Session
	if session == nil {
		session = browser.NewSession(nil, 0)
	}
	tracker := opts.Tracker
	if tracker == nil {
		tracker = tabhistory.New(session, nil, tabhistory.WithLogger(log))
	}
	startURLs := opts.StartURLs
	if len(startURLs) == 0 && opts.Homepage != "" {
		startURLs = []string{opts.Homepage}
	}

	ctx, cancel := context.WithCancel(context.Background())
	return Model{
		tabBar:       ui.NewTabBar(),
		urlBar:       ui.NewURLBar(),
		statusBar:    ui.NewStatusBar(),
		viewport:     ui.NewPageViewport(),
		historyPanel: ui.NewHistoryPanel(),
		session:      session,
		tracker:      tracker,
		log:          log,
		ctx:          ctx,
		cancel:       cancel,
		loads:        make(map[tabhistory.TabID]context.CancelFunc),
		keys:         DefaultKeyMap(),
		mode:         ModeNormal,
		startURLs:    startURLs,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	tracker, ctx := m.tracker, m.ctx
	return func() tea.Msg {
		tracker.Restore(ctx)
		return restoredMsg{}
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.layout()
		m.sync()
		return m, nil

	case restoredMsg:
		return m.handleRestored()

	case tabEventMsg:
		if msg.ev.Kind == browser.EventRemoved {
			m.forgetTab(msg.ev.TabID)
		}
		m.sync()
		return m, m.waitForEvent()

	case navigatedMsg:
		if msg.err != nil {
			m.log.Warn("history command failed", "command", msg.command, "err", msg.err)
			m.statusBar.SetError(msg.err.Error())
		}
		m.sync()
		return m, nil

	case pageLoadedMsg:
		return m.handlePageLoaded(msg)

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}

	cmd := m.viewport.Update(msg)
	m.statusBar.SetScrollInfo(m.viewport.ScrollInfo())
	return m, cmd
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "\n  Loading tabnav..."
	}

	// Layout:
	// [tab bar]
	// [url bar]
	// [history panel | viewport]
	// [status bar]
	sections := []string{m.tabBar.View(), m.urlBar.View()}

	if m.historyPanel.IsVisible() {
		t := theme.Current
		dividerStyle := lipgloss.NewStyle().
			Foreground(t.Border).
			Background(t.Background)
		divider := dividerStyle.Render(strings.TrimSuffix(strings.Repeat("│\n", m.bodyHeight()), "\n"))
		sections = append(sections, lipgloss.JoinHorizontal(lipgloss.Top,
			m.historyPanel.View(),
			divider,
			m.viewport.View(),
		))
	} else {
		sections = append(sections, m.viewport.View())
	}

	sections = append(sections, m.statusBar.View())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// bodyHeight is the height left for the page once the bars are drawn.
func (m *Model) bodyHeight() int {
	const tabBarHeight, urlBarHeight, statusBarHeight = 1, 3, 1
	h := m.height - tabBarHeight - urlBarHeight - statusBarHeight
	if h < 1 {
		h = 1
	}
	return h
}

// layout recalculates dimensions for all components.
func (m *Model) layout() {
	m.tabBar.SetWidth(m.width)
	m.urlBar.SetWidth(m.width)
	m.statusBar.SetWidth(m.width)

	height := m.bodyHeight()
	width := m.width
	if m.historyPanel.IsVisible() {
		panelWidth := m.width * 30 / 100
		if panelWidth < 24 {
			panelWidth = 24
		}
		m.historyPanel.SetSize(panelWidth, height)
		width = m.width - panelWidth - 1 // divider
	}
	m.viewport.SetSize(width, height)
	m.session.SetWidth(width)
}

func (m Model) handleRestored() (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{m.waitForEvent()}
	for i, u := range m.startURLs {
		var id tabhistory.TabID
		if i == 0 {
			info, err := m.session.ActiveTab(m.ctx)
			if err != nil {
				m.log.Warn("no active tab for start URL", "err", err)
				continue
			}
			id = info.ID
		} else {
			id = m.session.OpenTab()
		}
		cmds = append(cmds, m.load(id, browser.NormalizeURL(u)))
	}
	m.sync()
	return m, tea.Batch(cmds...)
}

// waitForEvent reads the next session event and hands it to the tracker.
// Update re-arms it after every event.
func (m Model) waitForEvent() tea.Cmd {
	session, ctx := m.session, m.ctx
	return func() tea.Msg {
		ev, err := session.NextEvent(ctx)
		if err != nil {
			return nil
		}
		m.dispatch(ev)
		return tabEventMsg{ev: ev}
	}
}

// dispatch routes one session event to the tracker.
func (m Model) dispatch(ev browser.Event) {
	m.log.Debug("tab event", "kind", ev.Kind.String(), "tab", ev.TabID, "status", ev.Status)
	switch ev.Kind {
	case browser.EventActivated:
		m.tracker.OnActivated(m.ctx, ev.TabID)
	case browser.EventUpdated:
		m.tracker.OnUpdated(m.ctx, ev.TabID, ev.Status, ev.Active)
	case browser.EventRemoved:
		m.tracker.OnRemoved(m.ctx, ev.TabID)
	}
}

// command runs a tab history command off the update loop.
func (m Model) command(name string) tea.Cmd {
	tracker, ctx := m.tracker, m.ctx
	return func() tea.Msg {
		return navigatedMsg{command: name, err: tracker.Command(ctx, name)}
	}
}

// load fetches url into tab id, cancelling any load already running there.
func (m Model) load(id tabhistory.TabID, url string) tea.Cmd {
	if cancel, ok := m.loads[id]; ok {
		cancel()
	}
	ctx, cancel := context.WithCancel(m.ctx)
	m.loads[id] = cancel

	session := m.session
	return func() tea.Msg {
		err := session.Load(ctx, id, url)
		return pageLoadedMsg{tabID: id, url: url, err: err}
	}
}

func (m Model) handlePageLoaded(msg pageLoadedMsg) (tea.Model, tea.Cmd) {
	switch {
	case errors.Is(msg.err, context.Canceled):
		return m, nil
	case msg.err != nil:
		m.log.Warn("page load failed", "tab", msg.tabID, "url", msg.url, "err", msg.err)
		if info, err := m.session.ActiveTab(m.ctx); err == nil && info.ID == msg.tabID {
			m.statusBar.SetError(fmt.Sprintf("Error: %s", msg.err))
		}
	default:
		m.log.Info("page loaded", "tab", msg.tabID, "url", msg.url)
	}
	m.sync()
	return m, nil
}

func (m *Model) forgetTab(id tabhistory.TabID) {
	if cancel, ok := m.loads[id]; ok {
		cancel()
		delete(m.loads, id)
	}
	m.viewport.Forget(viewportKey(id))
}

// quit stops background commands and exits.
func (m Model) quit() (tea.Model, tea.Cmd) {
	m.cancel()
	return m, tea.Quit
}

// handleKeyMsg processes key events based on current mode.
func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m.quit()
	}

	switch m.mode {
	case ModeInsert:
		return m.handleInsertMode(msg)
	case ModeHistory:
		return m.handleHistoryMode(msg)
	default:
		return m.handleNormalMode(msg)
	}
}

// handleNormalMode processes keys in normal (browsing) mode.
func (m Model) handleNormalMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.statusBar.ClearMessage()

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()

	case key.Matches(msg, m.keys.NavigateBack):
		m.showHelp = false
		return m, m.command(tabhistory.CommandBack)

	case key.Matches(msg, m.keys.NavigateForward):
		m.showHelp = false
		return m, m.command(tabhistory.CommandForward)

	case key.Matches(msg, m.keys.HistoryToggle):
		m.toggleHistory()
		return m, nil

	case key.Matches(msg, m.keys.OpenURL):
		m.mode = ModeInsert
		m.statusBar.SetMode(ui.ModeInsert)
		return m, m.urlBar.Focus()

	case key.Matches(msg, m.keys.Reload):
		info, err := m.session.ActiveTab(m.ctx)
		if err != nil || info.URL == "" {
			return m, nil
		}
		return m, m.load(info.ID, info.URL)

	case key.Matches(msg, m.keys.NewTab):
		m.showHelp = false
		m.session.OpenTab()

	case key.Matches(msg, m.keys.NewWindow):
		m.showHelp = false
		m.session.NewWindow()

	case key.Matches(msg, m.keys.CloseTab):
		info, err := m.session.ActiveTab(m.ctx)
		if err != nil {
			return m, nil
		}
		if err := m.session.CloseTab(info.ID); errors.Is(err, browser.ErrLastTab) {
			return m.quit()
		} else if err != nil {
			m.statusBar.SetError(err.Error())
		}

	case key.Matches(msg, m.keys.NextTab):
		m.showHelp = false
		m.session.NextTab()

	case key.Matches(msg, m.keys.PrevTab):
		m.showHelp = false
		m.session.PrevTab()

	case key.Matches(msg, m.keys.CycleWindow):
		m.showHelp = false
		m.session.CycleWindow()

	case key.Matches(msg, m.keys.CycleTheme):
		m.cycleTheme()

	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp

	case key.Matches(msg, m.keys.ScrollDown):
		m.viewport.LineDown(1)
	case key.Matches(msg, m.keys.ScrollUp):
		m.viewport.LineUp(1)
	case key.Matches(msg, m.keys.HalfPageDown):
		m.viewport.HalfPageDown()
	case key.Matches(msg, m.keys.HalfPageUp):
		m.viewport.HalfPageUp()
	case key.Matches(msg, m.keys.GotoTop):
		m.viewport.GotoTop()
	case key.Matches(msg, m.keys.GotoBottom):
		m.viewport.GotoBottom()

	default:
		return m, nil
	}

	m.sync()
	return m, nil
}

// handleInsertMode processes keys while the URL bar is focused.
func (m Model) handleInsertMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		input := m.urlBar.Submit()
		m.mode = ModeNormal
		m.statusBar.SetMode(ui.ModeNormal)
		target := browser.NormalizeURL(input)
		if target == "" {
			return m, nil
		}
		info, err := m.session.ActiveTab(m.ctx)
		if err != nil {
			m.statusBar.SetError(err.Error())
			return m, nil
		}
		m.showHelp = false
		return m, m.load(info.ID, target)

	case "esc":
		m.urlBar.Blur()
		m.mode = ModeNormal
		m.statusBar.SetMode(ui.ModeNormal)
		return m, nil
	}
	return m, m.urlBar.Update(msg)
}

// handleHistoryMode processes keys while the tab history panel is focused.
func (m Model) handleHistoryMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.String() == "esc", key.Matches(msg, m.keys.HistoryToggle):
		m.toggleHistory()
		return m, nil

	case key.Matches(msg, m.keys.ScrollDown):
		m.historyPanel.CursorDown()
		return m, nil

	case key.Matches(msg, m.keys.ScrollUp):
		m.historyPanel.CursorUp()
		return m, nil

	case key.Matches(msg, m.keys.NavigateBack):
		return m, m.command(tabhistory.CommandBack)

	case key.Matches(msg, m.keys.NavigateForward):
		return m, m.command(tabhistory.CommandForward)

	case msg.String() == "enter":
		row, ok := m.historyPanel.Selected()
		if !ok {
			return m, nil
		}
		if !row.Live {
			m.statusBar.SetError(fmt.Sprintf("Tab %d has been closed", row.ID))
			return m, nil
		}
		if err := m.session.SelectTab(row.ID); err != nil {
			m.statusBar.SetError(err.Error())
			return m, nil
		}
		m.toggleHistory()
		return m, nil
	}
	return m, nil
}

func (m *Model) toggleHistory() {
	if m.historyPanel.IsVisible() {
		m.historyPanel.Hide()
		m.mode = ModeNormal
		m.statusBar.SetMode(ui.ModeNormal)
	} else {
		st := m.tracker.State()
		m.historyPanel.SetRows(m.historyRows(st), st.Cursor)
		m.historyPanel.Show()
		m.mode = ModeHistory
		m.statusBar.SetMode(ui.ModeHistory)
	}
	m.layout()
	m.sync()
}

func (m *Model) cycleTheme() {
	names := theme.List()
	next := names[0]
	for i, name := range names {
		if name == theme.Current.Name {
			next = names[(i+1)%len(names)]
			break
		}
	}
	theme.Set(next)
	m.statusBar.SetMessage("Theme: " + next)
}

// historyRows resolves the tab history against the session.
func (m *Model) historyRows(st tabhistory.State) []ui.HistoryRow {
	rows := make([]ui.HistoryRow, 0, len(st.Entries))
	for _, id := range st.Entries {
		row := ui.HistoryRow{ID: id}
		if tab, ok := m.session.Lookup(id); ok {
			row.Title, row.URL, row.Live = tab.Title, tab.URL, true
		}
		rows = append(rows, row)
	}
	return rows
}

func viewportKey(id tabhistory.TabID) string {
	return strconv.Itoa(int(id))
}

// sync copies session and tracker state into the UI components.
func (m *Model) sync() {
	v := m.session.Snapshot()
	m.tabBar.SetView(v)

	if tab, ok := v.ActiveTab(); ok {
		m.urlBar.SetCurrent(tab.URL)
		m.statusBar.SetTitle(tab.Title)
		m.statusBar.SetLoading(tab.Status == tabhistory.StatusLoading)
		switch {
		case m.showHelp:
			m.viewport.Show("help", m.helpContent())
		case tab.Err != nil:
			m.viewport.Show(viewportKey(tab.ID), errorContent(tab.URL, tab.Err))
		case tab.Page != nil:
			m.viewport.Show(viewportKey(tab.ID), tab.Page.Content)
		default:
			m.viewport.Show(viewportKey(tab.ID), "")
		}
	}

	st := m.tracker.State()
	m.statusBar.SetHistory(ui.HistoryInfo{
		Cursor:     st.Cursor,
		Len:        len(st.Entries),
		CanBack:    m.tracker.CanGoBack(),
		CanForward: m.tracker.CanGoForward(),
	})
	m.statusBar.SetScrollInfo(m.viewport.ScrollInfo())
	if m.historyPanel.IsVisible() {
		m.historyPanel.SetRows(m.historyRows(st), st.Cursor)
	}
}

func errorContent(url string, err error) string {
	errStyle := lipgloss.NewStyle().
		Foreground(theme.Current.Error).
		Bold(true).
		Padding(2, 4)
	detailStyle := lipgloss.NewStyle().
		Foreground(theme.Current.TextDim).
		Padding(0, 4)
	return errStyle.Render("Failed to load page") + "\n\n" +
		detailStyle.Render(fmt.Sprintf("URL: %s\nError: %s", url, err))
}

// helpContent renders the keybinding reference.
func (m *Model) helpContent() string {
	t := theme.Current

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(t.Primary)
	sectionStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(t.Accent)
	keyStyle := lipgloss.NewStyle().
		Foreground(t.Secondary).
		Width(16)
	descStyle := lipgloss.NewStyle().
		Foreground(t.Text)

	var sb strings.Builder
	sb.WriteString(titleStyle.Render("tabnav Keybindings"))
	sb.WriteString("\n\n")
	for _, section := range m.keys.helpSections() {
		sb.WriteString(sectionStyle.Render(section.name))
		sb.WriteString("\n\n")
		for _, b := range section.bindings {
			h := b.Help()
			sb.WriteString(keyStyle.Render(h.Key))
			sb.WriteString(descStyle.Render(h.Desc))
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
