package parser

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/aluiziolira/go-bestsellers/models"
)

// ParseRetailer extracts storefront metadata. Every field is read on its
// own; a missing node or unparsable value leaves that field absent.
func ParseRetailer(doc *goquery.Document) models.RetailerRecord {
	rec := models.RetailerRecord{
		Title: optionalText(doc.Find(RetailerTitleSelector)),
	}
	if caption, ok := optionalText(doc.Find(RetailerRatingSelector)).Get(); ok {
		rec.Rating = ParseRating(caption)
	}
	if price, ok := optionalText(doc.Find(RetailerPriceSelector)).Get(); ok {
		rec.Price = ParsePrice(price)
	}

	infobar := doc.Find(RetailerInfobarSelector).First()
	if infobar.Length() == 0 {
		return rec
	}
	figures := infobar.Find("figure")
	badge := func(pos int, selector string) models.Optional[string] {
		if pos >= figures.Length() {
			return models.None[string]()
		}
		return optionalText(figures.Eq(pos).Find(selector))
	}

	rec.Genre = badge(badgeGenre, BadgeCaptionSelector)
	rec.Language = badge(badgeLanguage, BadgeCaptionSelector)
	rec.Seller = badge(badgeSeller, BadgeCaptionSelector)

	year, okYear := badge(badgeReleased, BadgeValueSelector).Get()
	monthDay, okDay := badge(badgeReleased, BadgeCaptionSelector).Get()
	if okYear && okDay {
		if date, ok := NormalizeDate(year, monthDay); ok {
			rec.ReleaseDate = models.Some(date)
		}
	}
	if length, ok := badge(badgeLength, BadgeValueSelector).Get(); ok {
		rec.Length = parseInt(length)
	}
	if size, ok := badge(badgeSize, BadgeValueSelector).Get(); ok {
		rec.Size = parseFloat(size)
	}
	return rec
}

func optionalText(sel *goquery.Selection) models.Optional[string] {
	node := sel.First()
	if node.Length() == 0 {
		return models.None[string]()
	}
	return models.Some(strings.TrimSpace(node.Text()))
}
