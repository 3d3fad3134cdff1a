package tui

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dev-Pau/evidens/internal/bus"
	"github.com/dev-Pau/evidens/internal/domain"
	"github.com/dev-Pau/evidens/internal/optimistic"
	"github.com/dev-Pau/evidens/internal/reconcile"
	"github.com/dev-Pau/evidens/internal/screen"
	"github.com/dev-Pau/evidens/internal/tui/components"
	"github.com/dev-Pau/evidens/internal/tui/styles"
)

// ApplicationState represents the current state of the application
type ApplicationState int

const (
	StateBrowsing ApplicationState = iota
	StateHelp
	StateConfirmHide
)

// Layout proportions
const (
	ListColumnPercent = 55 // Feed list when the detail panel is shown
	MinColumnWidth    = 20

	// Tab bar above, footer below
	ChromeHeight = 2
)

// Input modal purposes
const (
	purposeComment = iota + 1
	purposeRevision
	purposeDiagnosis
	purposeSearch
)

// Fixed tab ids
const (
	homeTab      = "home"
	searchTab    = "search"
	profileTab   = "profile"
	bookmarksTab = "bookmarks"
)

// Settings carries the sync tuning from config
type Settings struct {
	PageSize          int
	PrefetchThreshold int
	RequestTimeout    time.Duration
	DefaultTab        string
}

func (s Settings) withDefaults() Settings {
	if s.PageSize <= 0 {
		s.PageSize = 20
	}
	if s.PrefetchThreshold < 0 {
		s.PrefetchThreshold = 0
	}
	if s.RequestTimeout <= 0 {
		s.RequestTimeout = 15 * time.Second
	}
	return s
}

// Model is the main Bubble Tea model for the application
type Model struct {
	// Application state
	State ApplicationState
	Ready bool

	// Sync core
	Bus      *bus.Bus
	Service  domain.ContentService
	Identity domain.Identity
	Screens  *screen.Registry

	tabs   []*tab
	active int

	// UI Components
	Inspector     components.Inspector
	InputModal    components.InputModal
	ShowInspector bool

	// Dimensions
	Width  int
	Height int

	// UI state
	StatusMsg    string
	StatusIsErr  bool
	SpinnerFrame int

	settings    Settings
	ctx         context.Context
	reloads     *reloadQueue
	lastComment map[string]string // content id -> comment posted this session
	confirmID   string            // content awaiting hide confirmation
	logger      *slog.Logger
}

// NewModel creates the application model with its four top-level screens
// open and subscribed to b. ctx bounds every remote call.
func NewModel(
	ctx context.Context,
	b *bus.Bus,
	svc domain.ContentService,
	ident domain.Identity,
	settings Settings,
	logger *slog.Logger,
) Model {
	if logger == nil {
		logger = slog.Default()
	}
	m := Model{
		State:         StateBrowsing,
		Bus:           b,
		Service:       svc,
		Identity:      ident,
		Screens:       screen.NewRegistry(),
		Inspector:     components.NewInspector(),
		InputModal:    components.NewInputModal(),
		ShowInspector: true,
		settings:      settings.withDefaults(),
		ctx:           ctx,
		reloads:       &reloadQueue{},
		lastComment:   make(map[string]string),
		logger:        logger,
	}

	limit := m.settings.PageSize
	m.openTab(domain.Filter{Feed: domain.FeedHome, Limit: limit}, homeTab, "Home", true)
	m.openTab(domain.Filter{Feed: domain.FeedSearch, Limit: limit}, searchTab, "Search", true)
	m.openTab(domain.Filter{Feed: domain.FeedProfile, UserID: m.currentUserID(), Limit: limit}, profileTab, "My cases", true)
	m.openTab(domain.Filter{Feed: domain.FeedBookmarks, Limit: limit}, bookmarksTab, "Bookmarks", true)

	m.setActive(max(m.tabIndex(m.settings.DefaultTab), 0))
	return m
}

// Init starts the first page of every top-level screen
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{TickCmd(100 * time.Millisecond)}
	for _, t := range m.tabs {
		cmds = append(cmds, m.loadFirst(t))
	}
	return tea.Batch(cmds...)
}

// Update handles all messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Ready = true
		m.updateLayout()
		return m, nil

	case tea.KeyMsg:
		m, cmd = m.handleKeyMsg(msg)

	case TickMsg:
		m.SpinnerFrame++
		for _, t := range m.tabs {
			t.list.SetSpinnerFrame(m.SpinnerFrame)
		}
		return m, TickCmd(100 * time.Millisecond)

	case PageLoadedMsg:
		cmd = m.handlePageLoaded(msg)

	case ActionDoneMsg:
		cmd = m.handleActionDone(msg)

	case ClearStatusMsg:
		m.StatusMsg = ""
		m.StatusIsErr = false
		return m, nil

	case ErrMsg:
		cmd = m.showError(msg)
	}

	return m, tea.Batch(cmd, m.drainReloads())
}

func (m *Model) handlePageLoaded(msg PageLoadedMsg) tea.Cmd {
	merge, err := msg.Pager.Merge(msg.Result)
	t := m.tabForPager(msg)
	if err != nil {
		if domain.IsSteadyState(err) {
			return nil
		}
		if t != nil {
			t.sync()
		}
		return m.showError(err)
	}
	if t == nil {
		return nil
	}

	if merge.First {
		t.list.Reset(t.screen.Cache.Items())
	}
	t.sync()
	m.logger.Debug("page merged", "screen", t.screen.ID, "first", merge.First, "added", merge.Added, "exhausted", merge.Exhausted)

	m.updateInspector()
	return m.prefetch(t)
}

func (m *Model) handleActionDone(msg ActionDoneMsg) tea.Cmd {
	res, err := msg.Mutator.Complete(msg.Outcome)
	t := m.tabForMutator(msg.Mutator)
	if err != nil {
		if domain.IsSteadyState(err) {
			return nil
		}
		if t != nil {
			t.apply(res.Delta)
			m.updateInspector()
		}
		return m.showError(err)
	}

	if t != nil {
		t.sync()
	}
	switch res.Action.Kind {
	case optimistic.ActComment:
		if res.Comment != nil {
			m.lastComment[res.Action.ContentID] = res.Comment.ID
		}
	case optimistic.ActDeleteComment:
		delete(m.lastComment, res.Action.ContentID)
	case optimistic.ActHide:
		// reload once the server has hidden it so the row can't come back
		if t != nil && t.screen.Cache.Len() == 0 {
			m.reloads.add(t.screen.ID)
		}
	}
	m.updateInspector()
	if text := confirmation(res.Action.Kind); text != "" {
		return m.setStatus(text, false)
	}
	return nil
}

// openTab opens a screen for filter and adds its tab
func (m *Model) openTab(filter domain.Filter, id, title string, fixed bool) *tab {
	t := &tab{list: components.NewFeedList(title), title: title, fixed: fixed}
	reloads := m.reloads
	t.screen = screen.Open(m.Bus, m.Service, filter, screen.Options{
		ID:     id,
		Parent: m.ctx,
		Logger: m.logger,
		OnDelta: func(s *screen.Screen, _ bus.Envelope, d reconcile.Delta) {
			t.apply(d)
			if d.Kind == reconcile.DeltaReload {
				reloads.add(s.ID)
			}
		},
	})
	m.Screens.Add(t.screen)
	m.tabs = append(m.tabs, t)
	m.updateLayout()
	return t
}

// closeTab closes a detail tab; top-level tabs stay open
func (m *Model) closeTab(i int) bool {
	if i < 0 || i >= len(m.tabs) || m.tabs[i].fixed {
		return false
	}
	m.Screens.Close(m.tabs[i].screen.ID)
	m.tabs = slices.Delete(m.tabs, i, i+1)
	m.setActive(min(i, len(m.tabs)-1))
	return true
}

// CloseAll tears every screen down
func (m *Model) CloseAll() {
	m.Screens.CloseAll()
}

func (m *Model) setActive(i int) {
	if i < 0 || i >= len(m.tabs) {
		return
	}
	if m.active < len(m.tabs) {
		m.tabs[m.active].list.SetFocused(false)
	}
	m.active = i
	m.tabs[i].list.SetFocused(true)
	m.updateInspector()
}

func (m Model) activeTab() *tab {
	if m.active >= len(m.tabs) {
		return nil
	}
	return m.tabs[m.active]
}

func (m Model) tabIndex(id string) int {
	for i, t := range m.tabs {
		if t.screen.ID == id {
			return i
		}
	}
	return -1
}

func (m Model) tabForPager(msg PageLoadedMsg) *tab {
	for _, t := range m.tabs {
		if t.screen.Pager == msg.Pager {
			return t
		}
	}
	return nil
}

func (m Model) tabForMutator(mu *optimistic.Mutator) *tab {
	for _, t := range m.tabs {
		if t.screen.Mutator == mu {
			return t
		}
	}
	return nil
}

// loadFirst (re)loads t from the top
func (m *Model) loadFirst(t *tab) tea.Cmd {
	if !t.searchable() {
		return nil
	}
	req, ok := t.screen.Pager.FirstPage()
	if !ok {
		return nil
	}
	t.list.SetLoading(true)
	return FetchPageCmd(t.screen, req, m.settings.RequestTimeout)
}

// prefetch asks for the next page once the cursor nears the end
func (m *Model) prefetch(t *tab) tea.Cmd {
	if t.list.IsFiltering() {
		return nil
	}
	if !t.screen.Pager.NearEnd(t.list.SelectedIndex(), m.settings.PrefetchThreshold) {
		return nil
	}
	req, ok := t.screen.Pager.NextPage()
	if !ok {
		return nil
	}
	t.list.SetLoading(true)
	return FetchPageCmd(t.screen, req, m.settings.RequestTimeout)
}

func (m *Model) drainReloads() tea.Cmd {
	var cmds []tea.Cmd
	for _, id := range m.reloads.drain() {
		if i := m.tabIndex(id); i >= 0 {
			cmds = append(cmds, m.loadFirst(m.tabs[i]))
		}
	}
	return tea.Batch(cmds...)
}

// act applies the local half of a and starts its remote half
func (m *Model) act(a optimistic.Action) tea.Cmd {
	t := m.activeTab()
	if t == nil {
		return nil
	}
	p, err := t.screen.Mutator.Begin(a)
	if err != nil {
		return m.beginFailed(err)
	}
	t.apply(p.Delta)
	m.updateInspector()
	return RunActionCmd(m.ctx, t.screen, p, m.settings.RequestTimeout)
}

func (m *Model) beginFailed(err error) tea.Cmd {
	switch {
	case domain.IsSteadyState(err):
		return nil
	case errors.Is(err, domain.ErrActionPending):
		return m.setStatus("Still saving, hang on", false)
	case errors.Is(err, optimistic.ErrEmptyText):
		return m.setStatus("Nothing to send", true)
	default:
		return m.showError(err)
	}
}

func (m Model) currentUserID() string {
	if m.Identity == nil {
		return ""
	}
	return m.Identity.CurrentUserID()
}

func (m Model) owns(item *domain.ContentItem) bool {
	id := m.currentUserID()
	return item != nil && id != "" && item.AuthorID == id
}

func (m *Model) showError(err error) tea.Cmd {
	var ne *domain.NetworkError
	if errors.As(err, &ne) {
		m.logger.Warn("remote call failed", "title", ne.Title, "error", ne.Err)
		return m.setStatus(ne.Title+": "+ne.Message, true)
	}
	m.logger.Error("unexpected error", "error", err)
	return m.setStatus(err.Error(), true)
}

func (m *Model) setStatus(text string, isErr bool) tea.Cmd {
	m.StatusMsg = text
	m.StatusIsErr = isErr
	delay := 2 * time.Second
	if isErr {
		delay = 4 * time.Second
	}
	return ClearStatusCmd(delay)
}

func (m *Model) updateInspector() {
	t := m.activeTab()
	if t == nil {
		return
	}
	item := t.list.Selected()
	m.Inspector.SetItem(item, m.owns(item))
}

// updateLayout updates component sizes based on window size
func (m *Model) updateLayout() {
	if m.Width == 0 || m.Height == 0 {
		return
	}
	contentHeight := m.Height - ChromeHeight

	listWidth := m.Width
	if m.ShowInspector {
		listWidth = max(m.Width*ListColumnPercent/100, MinColumnWidth)
		m.Inspector.SetSize(m.Width-listWidth, contentHeight)
	}
	for _, t := range m.tabs {
		t.list.SetSize(listWidth, contentHeight)
	}
}

// confirmation is the status line shown once a change is saved
func confirmation(k optimistic.ActionKind) string {
	switch k {
	case optimistic.ActComment:
		return "Comment posted"
	case optimistic.ActDeleteComment:
		return "Comment deleted"
	case optimistic.ActRevision:
		return "Revision added"
	case optimistic.ActSolve:
		return styles.SolvedChar + " Marked as solved"
	case optimistic.ActHide:
		return "Hidden from others"
	case optimistic.ActUnhide:
		return "Visible again"
	default:
		return ""
	}
}
