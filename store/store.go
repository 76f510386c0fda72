// Package store persists scraped books in SQLite and answers dashboard queries.
package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aluiziolira/go-bestsellers/models"
	"github.com/aluiziolira/go-bestsellers/parser"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// ErrMisaligned is returned when listings and records do not pair up 1:1.
var ErrMisaligned = errors.New("listings and retailer records are not aligned")

// Store provides SQLite-backed persistence.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the SQLite database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite allows a single writer; the one connection also keeps the
	// pragmas below for the life of the Store.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", pragma, err)
		}
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Rebuild drops and recreates both tables and inserts every listing and
// its retailer record in order, all in one transaction.
func (s *Store) Rebuild(ctx context.Context, listings []models.BookListing, records []models.RetailerRecord) error {
	if err := checkAligned(listings, records); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("recreate tables: %w", err)
	}

	if err := insertListings(ctx, tx, listings); err != nil {
		return err
	}
	if err := insertRecords(ctx, tx, records); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	slog.Info("tables rebuilt", slog.Int("books", len(listings)))
	return nil
}

func checkAligned(listings []models.BookListing, records []models.RetailerRecord) error {
	if len(listings) != len(records) {
		return fmt.Errorf("%w: %d listings, %d records", ErrMisaligned, len(listings), len(records))
	}
	for i := range listings {
		if listings[i].Key == "" || listings[i].Key != records[i].Key {
			return fmt.Errorf("%w: row %d has listing key %q and record key %q",
				ErrMisaligned, i+1, listings[i].Key, records[i].Key)
		}
		if err := parser.ValidateListing(&listings[i]); err != nil {
			return fmt.Errorf("row %d: %w", i+1, err)
		}
	}
	return nil
}

func insertListings(ctx context.Context, tx *sql.Tx, listings []models.BookListing) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO Best_seller
			(Book_key, Title, Category, Author, Publisher, Rank, Weeks_on_the_list, Description, Apple_url)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare listing insert: %w", err)
	}
	defer stmt.Close()

	for _, l := range listings {
		_, err := stmt.ExecContext(ctx,
			l.Key, l.Title, l.Category, l.Author, l.Publisher,
			l.Rank, l.WeeksOnList, l.Description, l.RetailerURL,
		)
		if err != nil {
			return fmt.Errorf("insert listing %q: %w", l.Title, err)
		}
	}
	return nil
}

func insertRecords(ctx context.Context, tx *sql.Tx, records []models.RetailerRecord) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO Apple_book
			(Book_key, Title, Rating, Price, Genre, Released_date, Language, Length, Seller, Size)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare record insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		_, err := stmt.ExecContext(ctx,
			r.Key, r.Title, r.Rating, r.Price, r.Genre,
			r.ReleaseDate, r.Language, r.Length, r.Seller, r.Size,
		)
		if err != nil {
			return fmt.Errorf("insert record %q: %w", r.Key, err)
		}
	}
	return nil
}

// Counts returns the row counts of Best_seller and Apple_book.
func (s *Store) Counts(ctx context.Context) (listings, records int, err error) {
	row := s.db.QueryRowContext(ctx, `SELECT (SELECT COUNT(*) FROM Best_seller), (SELECT COUNT(*) FROM Apple_book)`)
	if err := row.Scan(&listings, &records); err != nil {
		return 0, 0, fmt.Errorf("count rows: %w", err)
	}
	return listings, records, nil
}

// Categories returns the distinct categories in first-seen order.
func (s *Store) Categories(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT Category FROM Best_seller GROUP BY Category ORDER BY MIN(Id)`)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	var categories []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return categories, nil
}

// Listings returns every stored listing in insertion order.
func (s *Store) Listings(ctx context.Context) ([]models.BookListing, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT Book_key, Title, Category, Author, Publisher, Rank, Weeks_on_the_list, Description, Apple_url
		FROM Best_seller ORDER BY Id`)
	if err != nil {
		return nil, fmt.Errorf("query listings: %w", err)
	}
	defer rows.Close()

	var listings []models.BookListing
	for rows.Next() {
		var l models.BookListing
		if err := rows.Scan(&l.Key, &l.Title, &l.Category, &l.Author, &l.Publisher,
			&l.Rank, &l.WeeksOnList, &l.Description, &l.RetailerURL); err != nil {
			return nil, fmt.Errorf("scan listing: %w", err)
		}
		listings = append(listings, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return listings, nil
}

// Records returns every stored retailer record in insertion order.
func (s *Store) Records(ctx context.Context) ([]models.RetailerRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT Book_key, Title, Rating, Price, Genre, Released_date, Language, Length, Seller, Size
		FROM Apple_book ORDER BY Id`)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var records []models.RetailerRecord
	for rows.Next() {
		var r models.RetailerRecord
		if err := rows.Scan(&r.Key, &r.Title, &r.Rating, &r.Price, &r.Genre,
			&r.ReleaseDate, &r.Language, &r.Length, &r.Seller, &r.Size); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return records, nil
}
