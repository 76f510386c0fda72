package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aluiziolira/go-bestsellers/models"
)

// AllCategories disables the category filter.
const AllCategories = "All"

// ResultLimit caps the number of rows a query returns.
const ResultLimit = 10

// DefaultSort is used when the requested sort field is not recognised.
const DefaultSort = "Length"

// ErrInvalidDirection is returned for a sort direction other than ASC or DESC.
var ErrInvalidDirection = errors.New("invalid sort direction")

// sortColumns maps the accepted sort fields to their qualified columns.
var sortColumns = map[string]string{
	"Rank":   "B.Rank",
	"Rating": "A.Rating",
	"Price":  "A.Price",
	"Length": "A.Length",
}

// SortFields lists the accepted sort fields in display order.
var SortFields = []string{"Rank", "Rating", "Price", "Length"}

// Query describes a dashboard request.
type Query struct {
	Category  string
	Sort      string
	Direction string
}

// ResolveSort returns the sort field that will actually be applied.
func ResolveSort(field string) string {
	if _, ok := sortColumns[field]; ok {
		return field
	}
	return DefaultSort
}

// ParseDirection normalises a sort direction. Empty means ascending.
func ParseDirection(dir string) (string, error) {
	switch d := strings.ToUpper(strings.TrimSpace(dir)); d {
	case "":
		return "ASC", nil
	case "ASC", "DESC":
		return d, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidDirection, dir)
	}
}

// buildQuery renders the SQL and its arguments. Only allow-listed values
// are interpolated; the category and limit are bound.
func buildQuery(q Query) (string, []any, error) {
	dir, err := ParseDirection(q.Direction)
	if err != nil {
		return "", nil, err
	}
	column := sortColumns[ResolveSort(q.Sort)]

	var sb strings.Builder
	sb.WriteString(`SELECT A.Title, A.Genre, B.Author, ` + column + `, A.Seller
		FROM Apple_book A
		INNER JOIN Best_seller B ON A.Book_key = B.Book_key`)

	var args []any
	if q.Category != "" && q.Category != AllCategories {
		sb.WriteString(` WHERE B.Category = ?`)
		args = append(args, q.Category)
	}
	fmt.Fprintf(&sb, ` ORDER BY %s %s, B.Id ASC LIMIT ?`, column, dir)
	args = append(args, ResultLimit)
	return sb.String(), args, nil
}

// Query returns up to ResultLimit rows for the requested category, ordered
// by the requested field.
func (s *Store) Query(ctx context.Context, q Query) ([]models.ResultRow, error) {
	stmt, args, err := buildQuery(q)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query books: %w", err)
	}
	defer rows.Close()

	results := []models.ResultRow{}
	for rows.Next() {
		var r models.ResultRow
		if err := rows.Scan(&r.Title, &r.Genre, &r.Author, &r.SortValue, &r.Seller); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return results, nil
}
