package pipeline

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aluiziolira/go-bestsellers/models"
)

func testBook() models.Book {
	return models.Book{
		Listing: models.BookListing{
			Key:         "k1",
			Title:       "Test Book",
			Category:    "hardcover-fiction",
			Author:      "Jane Doe",
			Publisher:   "Knopf",
			Rank:        1,
			WeeksOnList: 3,
			Description: "A story, with a comma.",
			RetailerURL: "http://retailer.test/book/1",
		},
		Retailer: models.RetailerRecord{
			Key:    "k1",
			Title:  models.Some("Test Book"),
			Rating: models.Some(4.5),
			Price:  models.Some(14.99),
			Length: models.Some(int64(320)),
		},
	}
}

func TestCSVWriterWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "books.csv")

	writer, err := NewCSVWriter(path)
	if err != nil {
		t.Fatalf("create csv writer: %v", err)
	}
	if err := writer.Write([]models.Book{testBook()}); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close csv: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open csv: %v", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("records=%d, want 2", len(records))
	}
	if records[0][0] != "key" || records[0][3] != "title" {
		t.Fatalf("unexpected header: %v", records[0])
	}

	row := make(map[string]string, len(csvHeader))
	for i, col := range csvHeader {
		row[col] = records[1][i]
	}
	if row["description"] != "A story, with a comma." {
		t.Fatalf("description = %q", row["description"])
	}
	if row["price"] != "14.99" || row["length"] != "320" {
		t.Fatalf("price=%q length=%q", row["price"], row["length"])
	}
	if row["genre"] != "" || row["seller"] != "" {
		t.Fatalf("absent fields should be empty, got genre=%q seller=%q", row["genre"], row["seller"])
	}
}

func TestJSONWriterWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "books.jsonl")

	writer, err := NewJSONWriter(path)
	if err != nil {
		t.Fatalf("create json writer: %v", err)
	}
	if err := writer.Write([]models.Book{testBook(), testBook()}); err != nil {
		t.Fatalf("write json: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close json: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open json: %v", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	count := 0
	for scanner.Scan() {
		if !strings.Contains(scanner.Text(), `"genre":null`) {
			t.Fatalf("absent field not encoded as null: %s", scanner.Text())
		}
		var decoded models.Book
		if err := json.Unmarshal(scanner.Bytes(), &decoded); err != nil {
			t.Fatalf("invalid json line: %v", err)
		}
		if decoded.Retailer.Price != models.Some(14.99) || decoded.Retailer.Genre.Valid {
			t.Fatalf("decoded retailer = %+v", decoded.Retailer)
		}
		count++
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("scan json: %v", err)
	}
	if count != 2 {
		t.Fatalf("json lines=%d, want 2", count)
	}
}

func TestDualWriterWrite(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "books.csv")

	writer, err := NewWriter("dual", csvPath)
	if err != nil {
		t.Fatalf("create dual writer: %v", err)
	}
	if err := writer.Write([]models.Book{testBook()}); err != nil {
		t.Fatalf("write dual: %v", err)
	}
	if err := writer.Validate(); err != nil {
		t.Fatalf("validate dual: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close dual: %v", err)
	}

	if info, err := os.Stat(csvPath); err != nil || info.Size() == 0 {
		t.Fatalf("csv file missing or empty")
	}
	if info, err := os.Stat(filepath.Join(dir, "books.json")); err != nil || info.Size() == 0 {
		t.Fatalf("json file missing or empty")
	}
}

func TestNewWriterUnsupportedFormat(t *testing.T) {
	if _, err := NewWriter("xml", filepath.Join(t.TempDir(), "books.xml")); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}
