// Package parser extracts typed records from best-seller and retailer pages.
package parser

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/aluiziolira/go-bestsellers/models"
)

// ErrMarkup reports that a page does not have the structure the parser expects.
var ErrMarkup = errors.New("unexpected page markup")

// Parse builds a queryable document from a raw response body.
func Parse(body string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return doc, nil
}

// Origin returns the scheme and host of rawURL.
func Origin(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("url %q has no origin", rawURL)
	}
	return u.Scheme + "://" + u.Host, nil
}

// ParseCategories extracts the category lists from the homepage in document
// order. A repeated name keeps its first position and takes the later URL.
func ParseCategories(doc *goquery.Document, origin string) ([]models.Category, error) {
	container := doc.Find(CategoryListSelector).First()
	if container.Length() == 0 {
		return nil, fmt.Errorf("%w: category list container not found", ErrMarkup)
	}
	items := container.Find(CategoryItemSelector)
	if items.Length() == 0 {
		return nil, fmt.Errorf("%w: no category entries", ErrMarkup)
	}

	var (
		categories []models.Category
		position   = make(map[string]int)
		parseErr   error
	)
	items.EachWithBreak(func(i int, item *goquery.Selection) bool {
		name, ok := item.Find(CategoryHeadSelector).First().Attr("id")
		if !ok || strings.TrimSpace(name) == "" {
			parseErr = fmt.Errorf("%w: category %d has no id", ErrMarkup, i+1)
			return false
		}
		href, ok := item.Find(CategoryLinkSelector).First().Attr("href")
		if !ok || strings.TrimSpace(href) == "" {
			parseErr = fmt.Errorf("%w: category %q has no link", ErrMarkup, name)
			return false
		}
		link := absolute(origin, strings.TrimSpace(href))

		if idx, seen := position[name]; seen {
			categories[idx].URL = link
			return true
		}
		position[name] = len(categories)
		categories = append(categories, models.Category{Name: name, URL: link})
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}
	return categories, nil
}

// ParseListings extracts the ranked books of one category page. Rank is the
// 1-based position of the entry in the document.
func ParseListings(doc *goquery.Document, category string) ([]models.BookListing, error) {
	list := doc.Find(BookListSelector).First()
	if list.Length() == 0 {
		return nil, fmt.Errorf("%w: book list not found for %s", ErrMarkup, category)
	}
	items := list.Find(BookItemSelector)
	if items.Length() == 0 {
		return nil, fmt.Errorf("%w: no book entries for %s", ErrMarkup, category)
	}

	listings := make([]models.BookListing, 0, items.Length())
	var parseErr error
	items.EachWithBreak(func(i int, item *goquery.Selection) bool {
		listing, err := parseListing(item, category, i+1)
		if err != nil {
			parseErr = err
			return false
		}
		listings = append(listings, listing)
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}
	return listings, nil
}

func parseListing(item *goquery.Selection, category string, rank int) (models.BookListing, error) {
	var missing []string
	text := func(selector string) string {
		node := item.Find(selector).First()
		if node.Length() == 0 {
			missing = append(missing, selector)
			return ""
		}
		return strings.TrimSpace(node.Text())
	}

	title := text(BookTitleSelector)
	author := text(BookAuthorSelector)
	publisher := text(BookPublisherSelector)
	description := text(BookDescSelector)
	weeksText := text(BookWeeksSelector)

	retailers := item.Find(RetailerItemsSelector)
	href, ok := retailers.Eq(RetailerLinkPosition).Find("a").First().Attr("href")
	if !ok {
		missing = append(missing, RetailerItemsSelector)
	}

	if len(missing) > 0 {
		return models.BookListing{}, fmt.Errorf("%w: %s entry %d missing %s",
			ErrMarkup, category, rank, strings.Join(missing, ", "))
	}

	weeks, err := ParseWeeks(weeksText)
	if err != nil {
		return models.BookListing{}, fmt.Errorf("%s entry %d: %w", category, rank, err)
	}

	return models.BookListing{
		Title:       title,
		Category:    category,
		Author:      StripAuthor(author),
		Publisher:   publisher,
		Rank:        rank,
		WeeksOnList: weeks,
		Description: description,
		RetailerURL: strings.TrimSpace(href),
	}, nil
}

func absolute(origin, href string) string {
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	return origin + href
}
