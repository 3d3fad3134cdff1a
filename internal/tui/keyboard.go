package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/dev-Pau/evidens/internal/domain"
	"github.com/dev-Pau/evidens/internal/optimistic"
	"github.com/dev-Pau/evidens/internal/tui/styles"
)

// handleKeyMsg handles keyboard input
func (m Model) handleKeyMsg(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch m.State {
	case StateHelp:
		m.State = StateBrowsing
		return m, nil

	case StateConfirmHide:
		switch {
		case key.Matches(msg, Keys.Confirm):
			m.State = StateBrowsing
			id := m.confirmID
			m.confirmID = ""
			return m, m.act(optimistic.Hide(id))
		case key.Matches(msg, Keys.Deny):
			m.State = StateBrowsing
			m.confirmID = ""
		}
		return m, nil
	}

	if m.InputModal.IsVisible() {
		return m.handleInputModal(msg)
	}

	t := m.activeTab()
	if t == nil {
		return m, nil
	}

	// Filter typing owns the keyboard
	if t.list.IsFilterTyping() {
		cmd := t.list.Update(msg)
		m.updateInspector()
		return m, cmd
	}

	switch {
	case key.Matches(msg, Keys.Quit):
		m.CloseAll()
		return m, tea.Quit

	case key.Matches(msg, Keys.Help):
		m.State = StateHelp
		return m, nil

	case key.Matches(msg, Keys.Escape):
		if t.list.IsFiltering() {
			t.list.ClearFilter()
			m.updateInspector()
		}
		return m, nil

	case key.Matches(msg, Keys.Filter):
		t.list.ToggleFilter()
		return m, nil

	case key.Matches(msg, Keys.Search):
		m.InputModal.Show("Search cases and posts", "symptom, diagnosis, author...", purposeSearch)
		return m, nil

	case key.Matches(msg, Keys.Refresh):
		return m, m.loadFirst(t)

	case key.Matches(msg, Keys.ToggleInspector):
		m.ShowInspector = !m.ShowInspector
		m.updateLayout()
		return m, nil

	case key.Matches(msg, Keys.NextTab):
		return m, m.switchTab((m.active + 1) % len(m.tabs))

	case key.Matches(msg, Keys.PrevTab):
		return m, m.switchTab((m.active - 1 + len(m.tabs)) % len(m.tabs))

	case key.Matches(msg, Keys.Tab1):
		return m, m.switchTab(m.tabIndex(homeTab))
	case key.Matches(msg, Keys.Tab2):
		return m, m.switchTab(m.tabIndex(searchTab))
	case key.Matches(msg, Keys.Tab3):
		return m, m.switchTab(m.tabIndex(profileTab))
	case key.Matches(msg, Keys.Tab4):
		return m, m.switchTab(m.tabIndex(bookmarksTab))

	case key.Matches(msg, Keys.Open):
		return m, m.openCase(t.list.Selected())

	case key.Matches(msg, Keys.Close):
		m.closeTab(m.active)
		return m, nil
	}

	if item := t.list.Selected(); item != nil {
		if cmd, handled := m.handleActionKey(msg, item); handled {
			return m, cmd
		}
	}

	// Navigation within the list
	cmd := t.list.Update(msg)
	m.updateInspector()
	return m, tea.Batch(cmd, m.prefetch(t))
}

// handleActionKey maps action keys onto the selected item
func (m *Model) handleActionKey(msg tea.KeyMsg, item *domain.ContentItem) (tea.Cmd, bool) {
	switch {
	case key.Matches(msg, Keys.Like):
		return m.act(optimistic.ToggleLike(item.ID)), true

	case key.Matches(msg, Keys.Bookmark):
		return m.act(optimistic.ToggleBookmark(item.ID)), true

	case key.Matches(msg, Keys.Comment):
		m.InputModal.Show("Comment", "Add to the discussion", purposeComment)
		return nil, true

	case key.Matches(msg, Keys.DeleteComment):
		commentID, ok := m.lastComment[item.ID]
		if !ok {
			return m.setStatus("No comment of yours to delete here", false), true
		}
		return m.act(optimistic.DeleteComment(item.ID, commentID)), true

	case key.Matches(msg, Keys.Follow):
		if m.owns(item) {
			return m.setStatus("That's you", false), true
		}
		return m.act(optimistic.ToggleFollow(item.ID)), true

	case key.Matches(msg, Keys.Revise):
		if cmd, ok := m.requireAuthorCase(item); !ok {
			return cmd, true
		}
		m.InputModal.Show("Add revision", "What changed?", purposeRevision)
		return nil, true

	case key.Matches(msg, Keys.Solve):
		if cmd, ok := m.requireAuthorCase(item); !ok {
			return cmd, true
		}
		m.InputModal.Show("Mark as solved", "Diagnosis (optional)", purposeDiagnosis)
		return nil, true

	case key.Matches(msg, Keys.Hide):
		if !m.owns(item) {
			return m.setStatus("Only the author can hide this", true), true
		}
		m.confirmID = item.ID
		m.State = StateConfirmHide
		return nil, true

	case key.Matches(msg, Keys.Unhide):
		if !m.owns(item) {
			return m.setStatus("Only the author can unhide this", true), true
		}
		return m.act(optimistic.Unhide(item.ID)), true
	}
	return nil, false
}

func (m *Model) requireAuthorCase(item *domain.ContentItem) (tea.Cmd, bool) {
	if item.Kind != domain.KindCase {
		return m.setStatus(optimistic.ErrNotACase.Error(), true), false
	}
	if !m.owns(item) {
		return m.setStatus("Only the author can change this case", true), false
	}
	return nil, true
}

// handleInputModal routes keys to the modal and dispatches on submit
func (m Model) handleInputModal(msg tea.KeyMsg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	var submitted bool
	m.InputModal, cmd, submitted = m.InputModal.Update(msg)
	if !submitted {
		return m, cmd
	}

	text := strings.TrimSpace(m.InputModal.Value())
	purpose := m.InputModal.Purpose()
	m.InputModal.Hide()

	if purpose == purposeSearch {
		return m, m.search(text)
	}

	t := m.activeTab()
	if t == nil {
		return m, nil
	}
	item := t.list.Selected()
	if item == nil {
		return m, nil
	}
	switch purpose {
	case purposeComment:
		return m, m.act(optimistic.AddComment(item.ID, text))
	case purposeRevision:
		return m, m.act(optimistic.AddRevision(item.ID, text))
	case purposeDiagnosis:
		return m, m.act(optimistic.MarkSolved(item.ID, text))
	}
	return m, nil
}

// search points the search tab at query and loads it
func (m *Model) search(query string) tea.Cmd {
	i := m.tabIndex(searchTab)
	if i < 0 {
		return nil
	}
	t := m.tabs[i]
	f := t.screen.Pager.Filter()
	f.Query = query
	t.screen.Pager.SetFilter(f)

	t.list.ClearFilter()
	t.list.Reset(nil)
	if query == "" {
		t.list.SetTitle(t.title)
	} else {
		t.list.SetTitle(t.title + ": " + query)
	}
	m.setActive(i)
	return m.loadFirst(t)
}

// switchTab activates tab i and loads it if it never has been
func (m *Model) switchTab(i int) tea.Cmd {
	if i < 0 || i >= len(m.tabs) {
		return nil
	}
	m.setActive(i)
	t := m.tabs[i]
	if !t.screen.Cache.Loaded() && !t.screen.Pager.Loading() {
		return m.loadFirst(t)
	}
	return nil
}

// openCase opens (or returns to) the detail tab of a case
func (m *Model) openCase(item *domain.ContentItem) tea.Cmd {
	if item == nil {
		return nil
	}
	if item.Kind != domain.KindCase {
		return m.setStatus("Only cases have a detail view", false)
	}
	id := "case:" + item.ID
	if i := m.tabIndex(id); i >= 0 {
		return m.switchTab(i)
	}

	filter := domain.Filter{Feed: domain.FeedCaseDetail, CaseID: item.ID, Limit: m.settings.PageSize}
	t := m.openTab(filter, id, styles.Truncate(item.DisplayTitle(), 24), false)
	m.setActive(len(m.tabs) - 1)
	return m.loadFirst(t)
}
