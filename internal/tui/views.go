package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dev-Pau/evidens/internal/domain"
	"github.com/dev-Pau/evidens/internal/tui/styles"
)

// Spinner frames for the footer
var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// RenderSpinner renders a spinner frame
func RenderSpinner(frame int) string {
	return styles.SpinnerStyle.Render(spinnerFrames[frame%len(spinnerFrames)])
}

// View renders the application
func (m Model) View() string {
	if !m.Ready {
		return "Loading..."
	}

	switch m.State {
	case StateHelp:
		return m.renderHelp()
	case StateConfirmHide:
		return m.renderHideConfirmation()
	}

	t := m.activeTab()
	if t == nil {
		return ""
	}

	content := t.list.View()
	if m.ShowInspector {
		content = lipgloss.JoinHorizontal(lipgloss.Top, content, m.Inspector.View())
	}

	view := lipgloss.JoinVertical(
		lipgloss.Left,
		m.renderTabBar(),
		content,
		m.renderFooter(),
	)

	if m.InputModal.IsVisible() {
		view = lipgloss.Place(m.Width, m.Height,
			lipgloss.Center, lipgloss.Center,
			m.InputModal.View())
	}

	return view
}

// renderTabBar renders the numbered top-level tabs then any open cases
func (m Model) renderTabBar() string {
	parts := make([]string, 0, len(m.tabs))
	for i, t := range m.tabs {
		label := t.title
		if t.fixed {
			label = fmt.Sprintf("%d %s", i+1, t.title)
		}
		if t.screen.Mutator.InFlight() > 0 {
			label += " " + spinnerFrames[m.SpinnerFrame%len(spinnerFrames)]
		}
		style := styles.InactiveTabStyle
		if i == m.active {
			style = styles.ActiveTabStyle
		}
		parts = append(parts, style.Render(label))
	}
	bar := lipgloss.JoinHorizontal(lipgloss.Top, parts...)
	if lipgloss.Width(bar) > m.Width {
		bar = lipgloss.NewStyle().MaxWidth(m.Width).Render(bar)
	}
	return bar
}

// renderFooter renders a single-line minimal footer
func (m Model) renderFooter() string {
	var left string
	t := m.activeTab()
	switch {
	case m.StatusMsg != "":
		if m.StatusIsErr {
			left = styles.ErrorStyle.Render(m.StatusMsg)
		} else {
			left = styles.DimStyle.Render(m.StatusMsg)
		}
	case t != nil && t.screen.Pager.Loading():
		left = RenderSpinner(m.SpinnerFrame) + " " + styles.DimStyle.Render("Loading...")
	case t != nil && t.screen.Cache.Loaded():
		left = styles.DimStyle.Render(fmt.Sprintf("%d items", t.screen.Cache.Len()))
	}

	// Center: hints for the selected item
	var center string
	if t != nil {
		if item := t.list.Selected(); item != nil {
			hints := []string{
				styles.AccentStyle.Render("l") + styles.DimStyle.Render(" like"),
				styles.AccentStyle.Render("c") + styles.DimStyle.Render(" comment"),
			}
			if !t.fixed {
				hints = append(hints, styles.AccentStyle.Render("x")+styles.DimStyle.Render(" close"))
			} else if item.Kind == domain.KindCase {
				hints = append(hints, styles.AccentStyle.Render("enter")+styles.DimStyle.Render(" open"))
			}
			center = strings.Join(hints, "  ")
		}
	}

	right := styles.AccentStyle.Render("?") + styles.DimStyle.Render(" help")

	leftWidth := lipgloss.Width(left)
	centerWidth := lipgloss.Width(center)
	rightWidth := lipgloss.Width(right)

	if leftWidth+centerWidth+rightWidth >= m.Width {
		gap := max(m.Width-leftWidth-rightWidth, 0)
		return left + strings.Repeat(" ", gap) + right
	}

	available := m.Width - leftWidth - rightWidth
	leftPad := (available - centerWidth) / 2
	rightPad := available - centerWidth - leftPad

	return left + strings.Repeat(" ", leftPad) + center + strings.Repeat(" ", rightPad) + right
}

// renderHelp renders the help screen
func (m Model) renderHelp() string {
	help := `
NAVIGATION                      ACTIONS
  j/k        Up/down               l      Like / unlike
  g/G        First/last item       b      Bookmark
  Ctrl+u/d   Scroll half page      c      Comment
  Tab/S-Tab  Next/previous tab     D      Delete my last comment
  1-4        Jump to tab           a      Follow author
  Enter      Open case             e      Add revision (own cases)
  x          Close case            s      Mark solved (own cases)
                                   h/H    Hide / unhide (own)
SEARCH & VIEW                   OTHER
  /          Filter list           r      Refresh
  S          Search                q      Quit
  i          Toggle detail         ?      This help
  Esc        Clear filter

Press any key to return...
`

	return lipgloss.Place(m.Width, m.Height,
		lipgloss.Center, lipgloss.Center,
		styles.ModalStyle.Render(help))
}

// renderHideConfirmation renders the hide confirmation modal
func (m Model) renderHideConfirmation() string {
	modal := `
              Hide this?

  Other users will no longer see it.
  You can unhide it from My cases.

        [Y] Yes      [N] No
`

	return lipgloss.Place(m.Width, m.Height,
		lipgloss.Center, lipgloss.Center,
		styles.ModalStyle.Render(modal))
}
