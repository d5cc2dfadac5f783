package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode"
)

// CardType is the closed set of image kinds a query can target.
type CardType string

// Available card types.
const (
	// CardTypeCard is a card face.
	CardTypeCard CardType = "CARD"

	// CardTypeCardback is a shared or per-slot card back.
	CardTypeCardback CardType = "CARDBACK"

	// CardTypeToken is a token face.
	CardTypeToken CardType = "TOKEN"
)

// IsValid returns true if the card type is recognised.
func (t CardType) IsValid() bool {
	switch t {
	case CardTypeCard, CardTypeCardback, CardTypeToken:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (t CardType) String() string {
	return string(t)
}

// AllCardTypes returns every card type in canonical order.
func AllCardTypes() []CardType {
	return []CardType{CardTypeCard, CardTypeCardback, CardTypeToken}
}

// ParseCardType converts user input into a CardType.
// Matching is case-insensitive; unknown values fail with ErrValidation.
func ParseCardType(s string) (CardType, error) {
	t := CardType(strings.ToUpper(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", fmt.Errorf("%w: unknown card type %q", ErrValidation, s)
	}
	return t, nil
}

// CardDocument is an immutable descriptor of one matched card image.
// It is produced by the search backend and never mutated locally.
type CardDocument struct {
	// Identifier is the globally unique image identifier.
	Identifier string `json:"identifier"`

	// CardType is the kind of image.
	CardType CardType `json:"card_type"`

	// Name is the display name of the card.
	Name string `json:"name"`

	// Priority is the source-internal ranking; lower ranks first.
	Priority int `json:"priority"`

	// Source is the primary key of the owning source.
	Source string `json:"source"`

	// SourceName is the display name of the owning source.
	SourceName string `json:"source_name"`

	// SourceType is the kind of the owning source.
	SourceType SourceType `json:"source_type"`

	// DPI is the image resolution.
	DPI int `json:"dpi"`

	// Size is the file size in bytes.
	Size int64 `json:"size"`

	// Extension is the image file extension (e.g. "png").
	Extension string `json:"extension"`

	// Language is the card's language code (e.g. "EN").
	Language string `json:"language"`

	// Tags are free-form labels attached by the source.
	Tags []string `json:"tags,omitempty"`

	// DateCreated is when the image was added to its source.
	DateCreated time.Time `json:"date_created"`

	// DateModified is when the image was last changed.
	DateModified time.Time `json:"date_modified"`

	// DownloadLink is the full resolution download URL.
	DownloadLink string `json:"download_link"`

	// SmallThumbnailURL is the small preview URL.
	SmallThumbnailURL string `json:"small_thumbnail_url"`

	// MediumThumbnailURL is the medium preview URL.
	MediumThumbnailURL string `json:"medium_thumbnail_url"`
}

// SizeMB returns the file size in megabytes.
func (d *CardDocument) SizeMB() float64 {
	return float64(d.Size) / (1 << 20)
}

// HasTag reports whether the document carries tag, ignoring case.
func (d *CardDocument) HasTag(tag string) bool {
	for _, t := range d.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// SearchableName folds a card name or query into the form names are matched
// on: lower case, punctuation dropped, runs of whitespace collapsed.
func SearchableName(s string) string {
	var b strings.Builder
	space := false
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			b.WriteRune(r)
		case unicode.IsSpace(r) || r == '-' || r == '_':
			space = true
		}
	}
	return b.String()
}
