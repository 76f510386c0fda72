// Package fixtures renders small best-seller and retailer pages for tests.
package fixtures

import (
	"fmt"
	"html"
	"strings"
)

// Book describes one entry of a listing page fixture.
type Book struct {
	Title       string
	Author      string
	Publisher   string
	Description string
	Weeks       string
	RetailerURL string
}

// Retailer describes a retailer page fixture. Empty fields are omitted.
type Retailer struct {
	Title    string
	Rating   string
	Price    string
	Badges   []Badge
	NoBadges bool
}

// Badge is one infobar figure.
type Badge struct {
	Value   string
	Caption string
}

// Homepage renders the category index. Each pair is name, relative path.
func Homepage(categories ...[2]string) string {
	var b strings.Builder
	b.WriteString(`<html><body><div itemtype="http://schema.org/ItemList">`)
	for _, c := range categories {
		fmt.Fprintf(&b, `<div class="css-v2kl5d"><h2 id="%s"><a href="%s">%s</a></h2></div>`,
			html.EscapeString(c[0]), html.EscapeString(c[1]), html.EscapeString(c[0]))
	}
	b.WriteString(`</div></body></html>`)
	return b.String()
}

// ListingPage renders a category listing page.
func ListingPage(books ...Book) string {
	var b strings.Builder
	b.WriteString(`<html><body><ol itemtype="http://schema.org/ItemList">`)
	for _, book := range books {
		b.WriteString(`<li class="css-13y32ub"><div>`)
		fmt.Fprintf(&b, `<p class="css-1o26r9v">%s</p>`, html.EscapeString(book.Weeks))
		fmt.Fprintf(&b, `<h3 itemprop="name">%s</h3>`, html.EscapeString(book.Title))
		fmt.Fprintf(&b, `<p itemprop="author">by %s</p>`, html.EscapeString(book.Author))
		fmt.Fprintf(&b, `<p itemprop="publisher">%s</p>`, html.EscapeString(book.Publisher))
		fmt.Fprintf(&b, `<p itemprop="description">%s</p>`, html.EscapeString(book.Description))
		b.WriteString(`<ul class="css-6mwynb">`)
		b.WriteString(`<li><a href="https://www.amazon.com/dp/1">Amazon</a></li>`)
		fmt.Fprintf(&b, `<li><a href="%s">Apple Books</a></li>`, html.EscapeString(book.RetailerURL))
		b.WriteString(`<li><a href="https://www.barnesandnoble.com/w/1">Barnes and Noble</a></li>`)
		b.WriteString(`</ul></div></li>`)
	}
	b.WriteString(`</ol></body></html>`)
	return b.String()
}

// RetailerPage renders a storefront page.
func RetailerPage(r Retailer) string {
	var b strings.Builder
	b.WriteString(`<html><body>`)
	if r.Title != "" {
		fmt.Fprintf(&b, `<h1 class="product-header__title book-header__title">%s</h1>`, html.EscapeString(r.Title))
	}
	if r.Rating != "" {
		fmt.Fprintf(&b, `<figcaption class="we-rating-count star-rating__count">%s</figcaption>`, html.EscapeString(r.Rating))
	}
	if r.Price != "" {
		fmt.Fprintf(&b, `<ul><li class="inline-list__item inline-list__item--slashed"><span>%s</span></li></ul>`, html.EscapeString(r.Price))
	}
	if !r.NoBadges {
		b.WriteString(`<section class="l-content-width l-row l-row--peek section section--book-infobar ember-view">`)
		for _, badge := range r.Badges {
			fmt.Fprintf(&b, `<figure><div class="book-badge__value">%s</div><div class="book-badge__caption">%s</div></figure>`,
				html.EscapeString(badge.Value), html.EscapeString(badge.Caption))
		}
		b.WriteString(`</section>`)
	}
	b.WriteString(`</body></html>`)
	return b.String()
}

// FullBadges returns a complete seven-figure infobar.
func FullBadges(genre, year, monthDay, language, pages, seller, size string) []Badge {
	return []Badge{
		{Value: "", Caption: genre},
		{Value: year, Caption: monthDay},
		{Value: "EN", Caption: language},
		{Value: pages, Caption: "Pages"},
		{Value: "4+", Caption: "Years Old"},
		{Value: "Seller", Caption: seller},
		{Value: size, Caption: "MB"},
	}
}

// SeedPath is the homepage path served by Site.
const SeedPath = "/books/best-sellers/"

// Site renders a whole fake site keyed by absolute URL: a homepage under
// origin with the given number of categories, each listing booksPer books
// whose retailer pages live on retailer.test. Books are numbered from 1
// across categories; book N costs $N.99 and has N*100 pages.
func Site(origin string, categories, booksPer int) map[string]string {
	pages := make(map[string]string)

	var heads [][2]string
	id := 0
	for c := 0; c < categories; c++ {
		name := fmt.Sprintf("category-%c", 'a'+c)
		path := SeedPath + name + "/"
		heads = append(heads, [2]string{name, path})

		var books []Book
		for b := 1; b <= booksPer; b++ {
			id++
			retailer := fmt.Sprintf("http://retailer.test/book/%d", id)
			title := fmt.Sprintf("Book %d", id)
			books = append(books, Book{
				Title:       title,
				Author:      fmt.Sprintf("Author %d", id),
				Publisher:   "Publisher",
				Description: "Description",
				Weeks:       fmt.Sprintf("%d weeks on the list", b),
				RetailerURL: retailer,
			})
			pages[retailer] = RetailerPage(Retailer{
				Title:  title,
				Rating: "4.5, 100 Ratings",
				Price:  fmt.Sprintf("$%d.99", id),
				Badges: FullBadges("Fiction", "2023", "March 7", "English", fmt.Sprint(id*100), "Seller", "1.5"),
			})
		}
		pages[origin+path] = ListingPage(books...)
	}
	pages[origin+SeedPath] = Homepage(heads...)
	return pages
}
