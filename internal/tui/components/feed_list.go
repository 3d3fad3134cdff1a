package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/dev-Pau/evidens/internal/domain"
	"github.com/dev-Pau/evidens/internal/tui/styles"
)

// Spinner frames for loading animation
var feedListSpinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Layout constants for feed lists
const (
	// Border adds 1 char on each side (left+right for width, top+bottom for height)
	BorderWidth  = 2
	BorderHeight = 2

	// Scroll indicators ("↑ more" and "↓ more") each take 1 line
	ScrollIndicatorLines = 2
)

// FeedList is a scrollable view over one screen's cached items.
// It never owns the items; the app re-syncs it from the cache after every
// delta with SetItems.
type FeedList struct {
	items []*domain.ContentItem

	// Selection
	cursor     int
	offset     int
	maxVisible int

	// Dimensions
	width   int
	height  int
	focused bool

	title string

	loading      bool
	exhausted    bool
	spinnerFrame int

	// Filter state
	filterActive bool
	filterInput  textinput.Model
	filterQuery  string
	filteredIdx  []int // indices into items
}

// NewFeedList creates an empty feed list with the given title
func NewFeedList(title string) *FeedList {
	ti := textinput.New()
	ti.Placeholder = "type to filter..."
	ti.Prompt = "/ "
	ti.PromptStyle = styles.FilterPromptStyle
	ti.TextStyle = styles.FilterStyle

	return &FeedList{
		title:       title,
		filterInput: ti,
	}
}

// Update handles navigation and filter typing
func (l *FeedList) Update(msg tea.Msg) tea.Cmd {
	if !l.focused {
		return nil
	}

	keyMsg, isKey := msg.(tea.KeyMsg)

	// Typing into the filter
	if l.filterActive && l.filterInput.Focused() {
		if isKey {
			switch {
			case key.Matches(keyMsg, FeedListKeys.Escape):
				l.clearFilter()
				return nil
			case key.Matches(keyMsg, FeedListKeys.Enter):
				l.filterInput.Blur()
				return nil
			case keyMsg.String() == "backspace" && l.filterInput.Value() == "":
				l.clearFilter()
				return nil
			}
		}
		var cmd tea.Cmd
		l.filterInput, cmd = l.filterInput.Update(msg)
		l.applyFilter()
		return cmd
	}

	if !isKey {
		return nil
	}

	// Filter accepted, navigating its results
	if l.filterActive {
		switch {
		case key.Matches(keyMsg, FeedListKeys.Escape):
			l.clearFilter()
			return nil
		case key.Matches(keyMsg, FeedListKeys.Filter):
			l.filterInput.Focus()
			return nil
		}
	}

	count := l.Len()
	if count == 0 {
		return nil
	}

	switch {
	case key.Matches(keyMsg, FeedListKeys.Down):
		if l.cursor < count-1 {
			l.cursor++
		}
	case key.Matches(keyMsg, FeedListKeys.Up):
		if l.cursor > 0 {
			l.cursor--
		}
	case key.Matches(keyMsg, FeedListKeys.Home):
		l.cursor = 0
		l.offset = 0
	case key.Matches(keyMsg, FeedListKeys.End):
		l.cursor = count - 1
	case key.Matches(keyMsg, FeedListKeys.HalfDown):
		l.cursor = min(l.cursor+max(l.maxVisible/2, 1), count-1)
	case key.Matches(keyMsg, FeedListKeys.HalfUp):
		l.cursor = max(l.cursor-max(l.maxVisible/2, 1), 0)
	}
	l.ensureVisible()
	return nil
}

// View renders the list inside its border
func (l *FeedList) View() string {
	style := styles.InactiveBorder
	if l.focused {
		style = styles.ActiveBorder
	}

	frameW, frameH := style.GetFrameSize()
	return style.
		Width(l.width - frameW).
		Height(l.height - frameH).
		Render(l.renderContent())
}

// SetSize sets the rendered size including the border
func (l *FeedList) SetSize(width, height int) {
	l.width = width
	l.height = height
	l.recalcMaxVisible()
	l.ensureVisible()
}

func (l *FeedList) SetFocused(focused bool) { l.focused = focused }
func (l *FeedList) IsFocused() bool         { return l.focused }

func (l *FeedList) Title() string         { return l.title }
func (l *FeedList) SetTitle(title string) { l.title = title }

// SetItems re-syncs from the cache, keeping the cursor on the same row
// index (clamped) and re-running an active filter.
func (l *FeedList) SetItems(items []*domain.ContentItem) {
	l.loading = false
	l.items = items
	if l.filterQuery != "" {
		cursor := l.cursor
		l.applyFilter()
		l.cursor = cursor
	}
	l.clampCursor()
}

// Reset replaces the items and moves the cursor to the top
func (l *FeedList) Reset(items []*domain.ContentItem) {
	l.cursor = 0
	l.offset = 0
	l.SetItems(items)
}

// RowRemoved keeps the cursor on the same item when a row above it
// disappears. i is the raw cache index that was removed.
func (l *FeedList) RowRemoved(i int) {
	if l.filteredIdx != nil {
		return
	}
	if i < l.cursor {
		l.cursor--
	}
	l.clampCursor()
}

// SetExhausted marks that no further pages exist
func (l *FeedList) SetExhausted(exhausted bool) { l.exhausted = exhausted }

func (l *FeedList) SetLoading(loading bool) { l.loading = loading }
func (l *FeedList) IsLoading() bool         { return l.loading }

// SetSpinnerFrame updates the spinner animation frame
func (l *FeedList) SetSpinnerFrame(frame int) { l.spinnerFrame = frame }

// Len returns the number of visible rows
func (l *FeedList) Len() int {
	if l.filteredIdx != nil {
		return len(l.filteredIdx)
	}
	return len(l.items)
}

// Cursor returns the visible row under the cursor
func (l *FeedList) Cursor() int { return l.cursor }

// Selected returns the item under the cursor, nil when empty
func (l *FeedList) Selected() *domain.ContentItem {
	i := l.SelectedIndex()
	if i < 0 {
		return nil
	}
	return l.items[i]
}

// SelectedIndex returns the raw cache index under the cursor, -1 when empty
func (l *FeedList) SelectedIndex() int {
	if l.Len() == 0 || l.cursor >= l.Len() {
		return -1
	}
	return l.mapIndex(l.cursor)
}

// ToggleFilter activates the filter input
func (l *FeedList) ToggleFilter() {
	l.filterActive = true
	l.filterInput.Focus()
	l.recalcMaxVisible()
}

// IsFiltering returns true if filter mode is active
func (l *FeedList) IsFiltering() bool { return l.filterActive }

// IsFilterTyping returns true if filter is active AND input is focused
func (l *FeedList) IsFilterTyping() bool {
	return l.filterActive && l.filterInput.Focused()
}

// ClearFilter deactivates the filter and shows all items
func (l *FeedList) ClearFilter() { l.clearFilter() }

func (l *FeedList) recalcMaxVisible() {
	// title line + scroll indicators inside the border
	interiorHeight := l.height - BorderHeight
	l.maxVisible = interiorHeight - ScrollIndicatorLines - 1
	if l.filterActive {
		l.maxVisible--
	}
	if l.maxVisible < 1 {
		l.maxVisible = 1
	}
}

func (l *FeedList) ensureVisible() {
	if l.maxVisible <= 0 {
		return
	}
	if l.cursor < l.offset {
		l.offset = l.cursor
	}
	if l.cursor >= l.offset+l.maxVisible {
		l.offset = l.cursor - l.maxVisible + 1
	}
}

func (l *FeedList) clampCursor() {
	count := l.Len()
	if l.cursor >= count {
		l.cursor = count - 1
	}
	if l.cursor < 0 {
		l.cursor = 0
	}
	if l.offset > l.cursor {
		l.offset = l.cursor
	}
	l.ensureVisible()
}

func (l *FeedList) clearFilter() {
	l.filterActive = false
	l.filterQuery = ""
	l.filteredIdx = nil
	l.filterInput.SetValue("")
	l.filterInput.Blur()
	l.recalcMaxVisible()
	l.clampCursor()
}

func (l *FeedList) applyFilter() {
	query := l.filterInput.Value()
	l.filterQuery = query

	if query == "" {
		l.filteredIdx = nil
		return
	}

	haystack := make([]string, len(l.items))
	for i, item := range l.items {
		haystack[i] = strings.ToLower(item.DisplayTitle() + " " + item.Author)
	}

	matches := fuzzy.Find(strings.ToLower(query), haystack)
	l.filteredIdx = make([]int, len(matches))
	for i, match := range matches {
		l.filteredIdx[i] = match.Index
	}

	l.cursor = 0
	l.offset = 0
}

func (l *FeedList) mapIndex(i int) int {
	if l.filteredIdx != nil && i < len(l.filteredIdx) {
		return l.filteredIdx[i]
	}
	return i
}

// Rendering

func (l *FeedList) renderContent() string {
	itemWidth := l.width - BorderWidth
	if itemWidth < 10 {
		itemWidth = 10
	}

	titleLine := styles.AccentStyle.Render(styles.Truncate(l.title, itemWidth))

	count := l.Len()
	if count == 0 {
		msg := "Nothing here yet"
		switch {
		case l.loading:
			msg = l.spinner() + " Loading..."
		case l.filterActive && l.filterQuery != "":
			msg = "No matches"
		}
		content := titleLine + "\n \n" + styles.DimStyle.Render(msg) + "\n "
		if l.filterActive {
			content += "\n" + l.renderFilterBar(itemWidth)
		}
		return content
	}

	end := min(l.offset+l.maxVisible, count)
	lines := make([]string, 0, end-l.offset)
	for i := l.offset; i < end; i++ {
		lines = append(lines, renderFeedRow(l.items[l.mapIndex(i)], i == l.cursor, itemWidth))
	}

	// header and footer always take a line so the layout doesn't shift
	header := " "
	if l.offset > 0 {
		header = styles.DimStyle.Render("↑ more")
	}
	footer := " "
	switch {
	case end < count:
		footer = styles.DimStyle.Render("↓ more")
	case l.loading:
		footer = styles.DimStyle.Render(l.spinner() + " Loading more...")
	case l.exhausted && l.filteredIdx == nil:
		footer = styles.DimStyle.Render("· end ·")
	}

	content := titleLine + "\n" + header + "\n" + strings.Join(lines, "\n") + "\n" + footer
	if l.filterActive {
		content += "\n" + l.renderFilterBar(itemWidth)
	}
	return content
}

func (l *FeedList) spinner() string {
	return feedListSpinnerFrames[l.spinnerFrame%len(feedListSpinnerFrames)]
}

func (l *FeedList) renderFilterBar(width int) string {
	l.filterInput.Width = width - 4
	return l.filterInput.View()
}

// renderFeedRow renders "♥ 12 ✎3 ★ Title · Author" with state colors
func renderFeedRow(item *domain.ContentItem, selected bool, width int) string {
	likeChar, likeFg := styles.UnlikedChar, styles.DimGray
	if item.DidLike {
		likeChar, likeFg = styles.LikedChar, styles.Red
	}
	counts := fmt.Sprintf(" %-3d ", item.LikeCount)
	comments := fmt.Sprintf("✉%-3d", item.CommentCount)

	var marks strings.Builder
	markFg := styles.Amber
	if item.DidBookmark {
		marks.WriteString(styles.BookmarkedChar)
	}
	if item.Solved == domain.Solved {
		marks.WriteString(styles.SolvedChar)
		markFg = styles.Green
	} else if item.Revision != domain.RevisionNone {
		marks.WriteString(styles.RevisedChar)
	}
	if item.Visibility == domain.Hidden {
		marks.WriteString(styles.HiddenChar)
		markFg = styles.DimGray
	}
	markText := fmt.Sprintf(" %-3s", marks.String())

	author := item.Author
	if item.AuthorFollowed {
		author = styles.FollowingChar + author
	}
	prefixWidth := lipgloss.Width(likeChar + counts + comments + markText)
	available := width - prefixWidth - 2
	if available < 5 {
		available = 5
	}
	titleWidth := available - lipgloss.Width(author) - 3
	if titleWidth < 5 {
		titleWidth = available
		author = ""
	}
	title := styles.Truncate(item.DisplayTitle(), titleWidth)

	dimFg := styles.DimGray
	parts := []styles.RowPart{
		{Text: likeChar, Foreground: &likeFg},
		{Text: counts, Foreground: nil},
		{Text: comments, Foreground: &dimFg},
		{Text: markText, Foreground: &markFg},
		{Text: title, Foreground: nil},
	}
	if author != "" {
		parts = append(parts, styles.RowPart{Text: " · " + author, Foreground: &dimFg})
	}
	return styles.RenderListRow(parts, selected, width)
}
