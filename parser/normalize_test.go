package parser

import (
	"testing"

	"github.com/aluiziolira/go-bestsellers/models"
)

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		name     string
		year     string
		monthDay string
		expected string
		ok       bool
	}{
		{name: "single digit day", year: "2023", monthDay: "March 7", expected: "2023_03_07", ok: true},
		{name: "two digit day", year: "2023", monthDay: "November 21", expected: "2023_11_21", ok: true},
		{name: "january", year: "2021", monthDay: "January 1", expected: "2021_01_01", ok: true},
		{name: "december", year: "2022", monthDay: "December 31", expected: "2022_12_31", ok: true},
		{name: "surrounding whitespace", year: " 2020 ", monthDay: "  May 5 ", expected: "2020_05_05", ok: true},
		{name: "unknown month", year: "2023", monthDay: "Smarch 3", ok: false},
		{name: "lowercase month", year: "2023", monthDay: "march 3", ok: false},
		{name: "missing day", year: "2023", monthDay: "March", ok: false},
		{name: "missing year", year: "", monthDay: "March 3", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NormalizeDate(tt.year, tt.monthDay)
			if ok != tt.ok || got != tt.expected {
				t.Errorf("NormalizeDate(%q, %q) = %q, %v, want %q, %v", tt.year, tt.monthDay, got, ok, tt.expected, tt.ok)
			}
		})
	}
}

func TestNormalizeDateAllMonths(t *testing.T) {
	names := []string{"January", "February", "March", "April", "May", "June",
		"July", "August", "September", "October", "November", "December"}
	want := []string{"01", "02", "03", "04", "05", "06", "07", "08", "09", "10", "11", "12"}
	for i, name := range names {
		got, ok := NormalizeDate("1999", name+" 9")
		if !ok || got != "1999_"+want[i]+"_09" {
			t.Errorf("NormalizeDate(%q) = %q, %v", name, got, ok)
		}
	}
}

func TestParseWeeks(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected int
		wantErr  bool
	}{
		{name: "new entry", input: "New this week", expected: 0},
		{name: "numeric", input: "12 weeks on the list", expected: 12},
		{name: "bare number", input: "3", expected: 3},
		{name: "lowercase new", input: "new this week", wantErr: true},
		{name: "empty", input: "   ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseWeeks(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseWeeks(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.expected {
				t.Errorf("ParseWeeks(%q) = %d, want %d", tt.input, got, tt.expected)
			}
		})
	}
}

func TestStripAuthor(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{input: "by Colleen Hoover", expected: "Colleen Hoover"},
		{input: "  by James Patterson and Mike Lupica ", expected: "James Patterson and Mike Lupica"},
		{input: "by ", expected: ""},
		{input: "", expected: ""},
	}

	for _, tt := range tests {
		if got := StripAuthor(tt.input); got != tt.expected {
			t.Errorf("StripAuthor(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected models.Optional[float64]
	}{
		{name: "dollar", input: "$14.99", expected: models.Some(14.99)},
		{name: "pound", input: " £9.50 ", expected: models.Some(9.50)},
		{name: "free text", input: "Free", expected: models.None[float64]()},
		{name: "empty", input: "", expected: models.None[float64]()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParsePrice(tt.input); got != tt.expected {
				t.Errorf("ParsePrice(%q) = %+v, want %+v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestParseRating(t *testing.T) {
	tests := []struct {
		input    string
		expected models.Optional[float64]
	}{
		{input: "4.5, 1.2K Ratings", expected: models.Some(4.5)},
		{input: "4", expected: models.Some(4.0)},
		{input: "No Ratings", expected: models.None[float64]()},
	}

	for _, tt := range tests {
		if got := ParseRating(tt.input); got != tt.expected {
			t.Errorf("ParseRating(%q) = %+v, want %+v", tt.input, got, tt.expected)
		}
	}
}

func TestValidateListing(t *testing.T) {
	valid := func() *models.BookListing {
		return &models.BookListing{
			Title:       "Fourth Wing",
			Category:    "hardcover-fiction",
			Author:      "Rebecca Yarros",
			Publisher:   "Red Tower",
			Rank:        1,
			WeeksOnList: 0,
			RetailerURL: "https://books.example.test/1",
		}
	}

	tests := []struct {
		name    string
		mutate  func(*models.BookListing)
		wantErr bool
	}{
		{name: "valid listing", mutate: func(*models.BookListing) {}},
		{name: "empty description allowed", mutate: func(b *models.BookListing) { b.Description = "" }},
		{name: "missing title", mutate: func(b *models.BookListing) { b.Title = " " }, wantErr: true},
		{name: "missing author", mutate: func(b *models.BookListing) { b.Author = "" }, wantErr: true},
		{name: "missing publisher", mutate: func(b *models.BookListing) { b.Publisher = "" }, wantErr: true},
		{name: "missing category", mutate: func(b *models.BookListing) { b.Category = "" }, wantErr: true},
		{name: "missing retailer url", mutate: func(b *models.BookListing) { b.RetailerURL = "" }, wantErr: true},
		{name: "zero rank", mutate: func(b *models.BookListing) { b.Rank = 0 }, wantErr: true},
		{name: "negative weeks", mutate: func(b *models.BookListing) { b.WeeksOnList = -1 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := valid()
			tt.mutate(b)
			err := ValidateListing(b)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateListing() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}

	if err := ValidateListing(nil); err == nil {
		t.Errorf("ValidateListing(nil) should fail")
	}
}
