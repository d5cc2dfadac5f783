package cli

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/custodia-labs/cardfill/internal/core/domain"
)

// maxLineQuantity caps a single line so a typo cannot produce a huge project.
const maxLineQuantity = 1000

var quantityPrefix = regexp.MustCompile(`^(\d+)\s*[xX]?\s+(.*)$`)

// parseLines reads a card list, one line per entry:
//
//	[qty[x]] front [| back]
//
// A face prefixed "b:" is a cardback query and "t:" a token query; anything
// else is a card. Blank lines and lines starting with "#" or "//" are skipped.
func parseLines(r io.Reader) ([]domain.ProcessedLine, error) {
	var lines []domain.ProcessedLine
	scanner := bufio.NewScanner(r)
	n := 0
	for scanner.Scan() {
		n++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") || strings.HasPrefix(text, "//") {
			continue
		}
		line, err := parseLine(text)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", n, err)
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read card list: %w", err)
	}
	return lines, nil
}

func parseLine(text string) (domain.ProcessedLine, error) {
	line := domain.ProcessedLine{Quantity: 1}
	if m := quantityPrefix.FindStringSubmatch(text); m != nil {
		qty, err := strconv.Atoi(m[1])
		if err != nil || qty > maxLineQuantity {
			return line, fmt.Errorf("%w: quantity %q out of range", domain.ErrValidation, m[1])
		}
		line.Quantity = qty
		text = m[2]
	}

	front, back, _ := strings.Cut(text, "|")
	line.Front = parseFace(front)
	line.Back = parseFace(back)
	return line, nil
}

// parseFace returns nil for an empty face.
func parseFace(text string) *domain.SearchQuery {
	text = strings.TrimSpace(text)
	q := domain.SearchQuery{CardType: domain.CardTypeCard}
	if len(text) >= 2 && text[1] == ':' {
		switch text[0] {
		case 'b', 'B':
			q.CardType = domain.CardTypeCardback
			text = strings.TrimSpace(text[2:])
		case 't', 'T':
			q.CardType = domain.CardTypeToken
			text = strings.TrimSpace(text[2:])
		}
	}
	if text == "" {
		return nil
	}
	q.Query = text
	return &q
}
