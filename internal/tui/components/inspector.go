package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dev-Pau/evidens/internal/domain"
	"github.com/dev-Pau/evidens/internal/tui/styles"
)

// Layout constants for inspector
const (
	InspectorBorderHeight     = 2
	InspectorScrollIndicators = 2
)

// inspectorContent holds the three-zone layout content
type inspectorContent struct {
	header string // fixed top
	body   string // scrollable middle
	footer string // fixed bottom
}

// Inspector displays the selected item in full
type Inspector struct {
	item       *domain.ContentItem
	own        bool // item authored by the signed-in user
	width      int
	height     int
	offset     int
	maxVisible int
}

// NewInspector creates a new inspector component
func NewInspector() Inspector {
	return Inspector{}
}

// SetItem sets the item to display. own enables the author-only hints.
func (i *Inspector) SetItem(item *domain.ContentItem, own bool) {
	if item != i.item {
		i.offset = 0
	}
	i.item = item
	i.own = own
}

// SetSize updates the component dimensions
func (i *Inspector) SetSize(width, height int) {
	i.width = width
	i.height = height
	// title line and blank line under it
	i.maxVisible = height - InspectorBorderHeight - InspectorScrollIndicators - 2
	if i.maxVisible < 1 {
		i.maxVisible = 1
	}
}

// HasItem returns true if there is an item to display
func (i Inspector) HasItem() bool {
	return i.item != nil
}

// View renders the component
func (i Inspector) View() string {
	style := styles.InactiveBorder

	// border plus one char of margin
	contentWidth := i.width - 3
	if contentWidth < 10 {
		contentWidth = 10
	}
	content := i.render(contentWidth)

	titleLine := styles.AccentStyle.Render(styles.Truncate("Detail", contentWidth))

	headerLines := splitLines(content.header)
	footerLines := splitLines(content.footer)
	bodyLines := splitLines(content.body)

	availableForBody := i.maxVisible - len(headerLines) - len(footerLines)
	if availableForBody < 1 {
		availableForBody = 1
	}

	totalBodyLines := len(bodyLines)
	offset := min(i.offset, max(totalBodyLines-availableForBody, 0))
	end := min(offset+availableForBody, totalBodyLines)
	visibleBody := bodyLines[offset:end]

	up := " "
	if offset > 0 {
		up = styles.DimStyle.Render("↑ more")
	}
	down := " "
	if end < totalBodyLines {
		down = styles.DimStyle.Render("↓ more")
	}

	parts := []string{titleLine, ""}
	if content.header != "" {
		parts = append(parts, headerLines...)
	}
	parts = append(parts, up)
	parts = append(parts, visibleBody...)
	for j := len(visibleBody); j < availableForBody; j++ {
		parts = append(parts, "")
	}
	parts = append(parts, down)
	if content.footer != "" {
		parts = append(parts, footerLines...)
	}

	frameW, frameH := style.GetFrameSize()
	return style.
		Width(i.width - frameW).
		Height(i.height - frameH).
		Render(strings.Join(parts, "\n"))
}

func (i Inspector) render(width int) inspectorContent {
	if i.item == nil {
		return inspectorContent{body: styles.DimStyle.Render("Nothing selected")}
	}
	return inspectorContent{
		header: renderItemHeader(i.item, width),
		body:   renderItemBody(i.item, width),
		footer: renderItemFooter(i.item, i.own),
	}
}

func renderItemHeader(item *domain.ContentItem, width int) string {
	var b strings.Builder

	b.WriteString(styles.TitleStyle.Render(styles.Truncate(item.DisplayTitle(), width)))
	b.WriteString("\n")

	author := item.Author
	if item.AuthorFollowed {
		author += " (following)"
	}
	b.WriteString(styles.SubtitleStyle.Render(styles.Truncate(author, width)))
	b.WriteString("\n")

	meta := []string{item.Kind.String()}
	if !item.CreatedAt.IsZero() {
		meta = append(meta, item.CreatedAt.Format("2006-01-02"))
	}
	if item.Visibility == domain.Hidden {
		meta = append(meta, "hidden")
	}
	b.WriteString(styles.DimStyle.Render(strings.Join(meta, " · ")))
	b.WriteString("\n")

	likeStyle := styles.DimStyle
	likeChar := styles.UnlikedChar
	if item.DidLike {
		likeStyle = lipgloss.NewStyle().Foreground(styles.Red)
		likeChar = styles.LikedChar
	}
	status := []string{
		likeStyle.Render(fmt.Sprintf("%s %d", likeChar, item.LikeCount)),
		styles.DimStyle.Render(fmt.Sprintf("✉ %d", item.CommentCount)),
	}
	if item.DidBookmark {
		status = append(status, lipgloss.NewStyle().Foreground(styles.Amber).Render(styles.BookmarkedChar+" saved"))
	}
	b.WriteString(strings.Join(status, "  "))
	return b.String()
}

func renderItemBody(item *domain.ContentItem, width int) string {
	var b strings.Builder
	b.WriteString(styles.SubtitleStyle.Render(wordWrap(item.Body, width)))

	if item.Kind == domain.KindCase {
		b.WriteString("\n\n")
		switch {
		case item.Solved == domain.Solved && item.Diagnosis != "":
			b.WriteString(styles.SuccessStyle.Render(styles.SolvedChar + " Solved"))
			b.WriteString("\n")
			b.WriteString(styles.SubtitleStyle.Render(wordWrap("Diagnosis: "+item.Diagnosis, width)))
		case item.Solved == domain.Solved:
			b.WriteString(styles.SuccessStyle.Render(styles.SolvedChar + " Solved"))
		case item.Revision == domain.RevisionUpdated:
			b.WriteString(styles.AccentStyle.Render(styles.RevisedChar + " Revised"))
		default:
			b.WriteString(styles.DimStyle.Render("Open case"))
		}
	}
	return b.String()
}

func renderItemFooter(item *domain.ContentItem, own bool) string {
	hints := []string{"l: Like", "b: Save", "c: Comment", "a: Follow"}
	if own {
		if item.Kind == domain.KindCase {
			hints = append(hints, "e: Revise", "s: Solve")
		}
		if item.Visibility == domain.Hidden {
			hints = append(hints, "H: Unhide")
		} else {
			hints = append(hints, "h: Hide")
		}
	}
	return styles.DimStyle.Render(strings.Join(hints, "  "))
}

// splitLines splits a string into lines, returning empty slice for empty string
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

// wordWrap wraps text to the specified width
func wordWrap(text string, width int) string {
	if width <= 0 {
		return text
	}

	var result strings.Builder
	words := strings.Fields(text)
	lineLen := 0

	for i, word := range words {
		wordLen := lipgloss.Width(word)

		if lineLen+wordLen+1 > width && lineLen > 0 {
			result.WriteString("\n")
			lineLen = 0
		}

		if i > 0 && lineLen > 0 {
			result.WriteString(" ")
			lineLen++
		}

		result.WriteString(word)
		lineLen += wordLen
	}

	return result.String()
}
