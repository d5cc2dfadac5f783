// Package list provides the navigable card result list of the editor.
package list

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/custodia-labs/cardfill/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/cardfill/internal/core/domain"
)

// CardList shows one query's results in rank order with a cursor.
type CardList struct {
	cards    []domain.CardDocument
	current  string
	selected int
	styles   *styles.Styles
	width    int
	height   int
}

// NewCardList creates an empty list.
func NewCardList(s *styles.Styles) *CardList {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &CardList{styles: s, width: 80, height: 10}
}

// SetCards replaces the list. The cursor starts on current when it is
// listed, else on the first card.
func (l *CardList) SetCards(cards []domain.CardDocument, current string) {
	l.cards = cards
	l.current = current
	l.selected = 0
	for i := range cards {
		if cards[i].Identifier == current {
			l.selected = i
			break
		}
	}
}

// Cards returns the listed cards.
func (l *CardList) Cards() []domain.CardDocument {
	return l.cards
}

// Selected returns the cursor index.
func (l *CardList) Selected() int {
	return l.selected
}

// SelectedCard returns the card under the cursor, or nil if the list is empty.
func (l *CardList) SelectedCard() *domain.CardDocument {
	if l.selected < 0 || l.selected >= len(l.cards) {
		return nil
	}
	return &l.cards[l.selected]
}

// MoveUp moves the cursor up.
func (l *CardList) MoveUp() {
	if l.selected > 0 {
		l.selected--
	}
}

// MoveDown moves the cursor down.
func (l *CardList) MoveDown() {
	if l.selected < len(l.cards)-1 {
		l.selected++
	}
}

// SetDimensions sets the space the list may draw in.
func (l *CardList) SetDimensions(width, height int) {
	l.width = width
	l.height = height
}

// Count returns the number of cards.
func (l *CardList) Count() int {
	return len(l.cards)
}

// View renders the visible window of the list around the cursor.
func (l *CardList) View() string {
	if len(l.cards) == 0 {
		return l.styles.Muted.Render("No results")
	}

	lines := make([]string, 0, l.height)
	lines = append(lines, l.styles.Subtitle.Render(fmt.Sprintf("Results (%d)", len(l.cards))), "")

	visible := l.height - 2
	if visible < 1 {
		visible = 1
	}
	start := 0
	if l.selected >= visible {
		start = l.selected - visible + 1
	}
	end := start + visible
	if end > len(l.cards) {
		end = len(l.cards)
	}
	for i := start; i < end; i++ {
		lines = append(lines, l.renderCard(i))
	}
	return strings.Join(lines, "\n")
}

func (l *CardList) renderCard(i int) string {
	card := &l.cards[i]

	marker := "  "
	if card.Identifier == l.current {
		marker = "* "
	}
	name := card.Name
	if name == "" {
		name = card.Identifier
	}
	maxName := l.width - 40
	if maxName < 10 {
		maxName = 10
	}
	if r := []rune(name); len(r) > maxName {
		name = string(r[:maxName-3]) + "..."
	}

	details := card.SourceName
	if card.DPI > 0 {
		details += fmt.Sprintf("  %d dpi", card.DPI)
	}
	if card.Size > 0 {
		details += "  " + humanize.Bytes(uint64(card.Size))
	}

	row := fmt.Sprintf("%s%-*s  ", marker, maxName, name)
	if i == l.selected {
		return l.styles.Selected.Render(row + details)
	}
	return l.styles.Normal.Render(row) + l.styles.Muted.Render(details)
}
