// Package models defines data structures for the scraper.
package models

import "time"

// Category is one best-seller list discovered on the homepage.
type Category struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// BookListing is one ranked entry of a category listing page.
type BookListing struct {
	Key         string `csv:"key" json:"key"`
	Title       string `csv:"title" json:"title"`
	Category    string `csv:"category" json:"category"`
	Author      string `csv:"author" json:"author"`
	Publisher   string `csv:"publisher" json:"publisher"`
	Rank        int    `csv:"rank" json:"rank"`
	WeeksOnList int    `csv:"weeks_on_list" json:"weeks_on_list"`
	Description string `csv:"description" json:"description"`
	RetailerURL string `csv:"retailer_url" json:"retailer_url"`
}

// RetailerRecord holds the storefront metadata of a single book.
// Key is the BookListing.Key the record was produced from.
type RetailerRecord struct {
	Key         string            `csv:"key" json:"key"`
	Title       Optional[string]  `csv:"retailer_title" json:"title"`
	Rating      Optional[float64] `csv:"rating" json:"rating"`
	Price       Optional[float64] `csv:"price" json:"price"`
	Genre       Optional[string]  `csv:"genre" json:"genre"`
	ReleaseDate Optional[string]  `csv:"released_date" json:"released_date"`
	Language    Optional[string]  `csv:"language" json:"language"`
	Length      Optional[int64]   `csv:"length" json:"length"`
	Seller      Optional[string]  `csv:"seller" json:"seller"`
	Size        Optional[float64] `csv:"size" json:"size"`
}

// Book joins a listing with its retailer record.
type Book struct {
	Listing  BookListing    `json:"listing"`
	Retailer RetailerRecord `json:"retailer"`
}

// ResultRow is one row returned by the query service.
type ResultRow struct {
	Title     Optional[string]
	Genre     Optional[string]
	Author    string
	SortValue Optional[float64]
	Seller    Optional[string]
}

// ScrapeResult holds the overall result of a scraping run.
type ScrapeResult struct {
	Categories   []Category
	Listings     []BookListing
	Records      []RetailerRecord
	StartTime    time.Time
	EndTime      time.Time
	RequestCount int
	CacheHits    int
	ErrorsByType map[string]int
}

// Books pairs listings with their records by key.
func (r *ScrapeResult) Books() []Book {
	byKey := make(map[string]RetailerRecord, len(r.Records))
	for _, rec := range r.Records {
		byKey[rec.Key] = rec
	}
	out := make([]Book, 0, len(r.Listings))
	for _, l := range r.Listings {
		out = append(out, Book{Listing: l, Retailer: byKey[l.Key]})
	}
	return out
}
