package parser

// Listing site selectors.
const (
	CategoryListSelector  = `div[itemtype="http://schema.org/ItemList"]`
	CategoryItemSelector  = "div.css-v2kl5d"
	CategoryHeadSelector  = "h2"
	CategoryLinkSelector  = "h2 a"
	BookListSelector      = `ol[itemtype="http://schema.org/ItemList"]`
	BookItemSelector      = "li.css-13y32ub"
	BookTitleSelector     = `h3[itemprop="name"]`
	BookAuthorSelector    = `p[itemprop="author"]`
	BookPublisherSelector = `p[itemprop="publisher"]`
	BookDescSelector      = `p[itemprop="description"]`
	BookWeeksSelector     = "p.css-1o26r9v"
	RetailerItemsSelector = "ul.css-6mwynb li"
)

// Retailer storefront selectors.
const (
	RetailerTitleSelector   = "h1.product-header__title.book-header__title"
	RetailerRatingSelector  = "figcaption.we-rating-count.star-rating__count"
	RetailerPriceSelector   = "li.inline-list__item.inline-list__item--slashed span"
	RetailerInfobarSelector = "section.section--book-infobar"
	BadgeCaptionSelector    = "div.book-badge__caption"
	BadgeValueSelector      = "div.book-badge__value"
)

// RetailerLinkPosition is the index of the storefront link within the
// fixed list of retailers under each book.
const RetailerLinkPosition = 1

// Badge positions within the retailer infobar. Position 4 is not used.
const (
	badgeGenre    = 0
	badgeReleased = 1
	badgeLanguage = 2
	badgeLength   = 3
	badgeSeller   = 5
	badgeSize     = 6
)

// AuthorPrefixLen is the length of the "by " label in front of author names.
const AuthorPrefixLen = 3

// NewEntryMarker is the weeks-on-list token used for first-week entries.
const NewEntryMarker = "New"
