package parser

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/aluiziolira/go-bestsellers/models"
)

var months = map[string]string{
	"January":   "01",
	"February":  "02",
	"March":     "03",
	"April":     "04",
	"May":       "05",
	"June":      "06",
	"July":      "07",
	"August":    "08",
	"September": "09",
	"October":   "10",
	"November":  "11",
	"December":  "12",
}

// NormalizeDate turns a year and a "Month D" string into yyyy_mm_dd.
// It reports false when the month is unknown or the input is malformed.
func NormalizeDate(year, monthDay string) (string, bool) {
	year = strings.TrimSpace(year)
	parts := strings.Fields(monthDay)
	if year == "" || len(parts) != 2 {
		return "", false
	}
	month, ok := months[parts[0]]
	if !ok {
		return "", false
	}
	day := parts[1]
	if len(day) == 1 {
		day = "0" + day
	}
	return year + "_" + month + "_" + day, true
}

// ParseWeeks converts the weeks-on-list text into a count. Only the first
// token is read; the "New" marker counts as zero.
func ParseWeeks(text string) (int, error) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return 0, fmt.Errorf("%w: empty weeks-on-list text", ErrMarkup)
	}
	if fields[0] == NewEntryMarker {
		return 0, nil
	}
	weeks, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, fmt.Errorf("%w: weeks-on-list %q: %v", ErrMarkup, fields[0], err)
	}
	return weeks, nil
}

// StripAuthor removes the fixed-length label in front of the author name.
func StripAuthor(author string) string {
	author = strings.TrimSpace(author)
	if utf8.RuneCountInString(author) <= AuthorPrefixLen {
		return ""
	}
	return string([]rune(author)[AuthorPrefixLen:])
}

// ParsePrice removes the one-character currency symbol and parses the rest.
func ParsePrice(text string) models.Optional[float64] {
	text = strings.TrimSpace(text)
	if text == "" {
		return models.None[float64]()
	}
	_, size := utf8.DecodeRuneInString(text)
	return parseFloat(text[size:])
}

// ParseRating reads the first comma-delimited token of a rating caption.
func ParseRating(text string) models.Optional[float64] {
	token, _, _ := strings.Cut(strings.TrimSpace(text), ",")
	return parseFloat(token)
}

func parseFloat(text string) models.Optional[float64] {
	v, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil {
		return models.None[float64]()
	}
	return models.Some(v)
}

func parseInt(text string) models.Optional[int64] {
	v, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
	if err != nil {
		return models.None[int64]()
	}
	return models.Some(v)
}

// ValidateListing ensures a listing can be stored in the non-null columns.
func ValidateListing(b *models.BookListing) error {
	if b == nil {
		return fmt.Errorf("listing is nil")
	}
	if strings.TrimSpace(b.Title) == "" {
		return fmt.Errorf("listing missing title")
	}
	if strings.TrimSpace(b.Category) == "" {
		return fmt.Errorf("listing missing category for %s", b.Title)
	}
	if strings.TrimSpace(b.Author) == "" {
		return fmt.Errorf("listing missing author for %s", b.Title)
	}
	if strings.TrimSpace(b.Publisher) == "" {
		return fmt.Errorf("listing missing publisher for %s", b.Title)
	}
	if strings.TrimSpace(b.RetailerURL) == "" {
		return fmt.Errorf("listing missing retailer url for %s", b.Title)
	}
	if b.Rank < 1 {
		return fmt.Errorf("listing %s has invalid rank %d", b.Title, b.Rank)
	}
	if b.WeeksOnList < 0 {
		return fmt.Errorf("listing %s has negative weeks on list", b.Title)
	}
	return nil
}
