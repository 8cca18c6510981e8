package handlers

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/gocarina/gocsv"

	"warrantytracker/internal/models"
)

func sampleProduct() models.Product {
	return models.Product{
		Name:               "Washing Machine",
		CategoryName:       "Appliance",
		PurchaseDate:       time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		WarrantyExpiryDate: time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
		PurchasePrice:      499.99,
		Seller:             "ACME Appliances",
		SerialNumber:       "WM-1234",
	}
}

func TestBuildProductExportRows(t *testing.T) {
	rows := buildProductExportRows([]models.Product{sampleProduct()})
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}

	row := rows[0]
	if row.PurchaseDate != "01/15/2024" || row.WarrantyExpiry != "01/15/2026" {
		t.Fatalf("unexpected date formatting: %+v", row)
	}
	if row.PurchasePrice != "499.99" {
		t.Fatalf("expected price 499.99, got %q", row.PurchasePrice)
	}
}

func TestBuildProductExportRowsPlaceholders(t *testing.T) {
	product := sampleProduct()
	product.PurchasePrice = 0
	product.Seller = ""
	product.SerialNumber = ""

	row := buildProductExportRows([]models.Product{product})[0]
	if row.PurchasePrice != "N/A" || row.Seller != "N/A" || row.SerialNumber != "N/A" {
		t.Fatalf("expected N/A placeholders for missing optionals, got %+v", row)
	}
}

func TestCSVExportEmptySetIsHeaderOnly(t *testing.T) {
	rows := buildProductExportRows(nil)

	var buf bytes.Buffer
	if err := gocsv.Marshal(&rows, &buf); err != nil {
		t.Fatalf("csv marshal failed: %v", err)
	}

	output := strings.TrimRight(buf.String(), "\r\n")
	if strings.Count(output, "\n") != 0 {
		t.Fatalf("expected a single header line for an empty export, got %q", output)
	}
	for _, column := range exportColumns {
		if !strings.Contains(output, column) {
			t.Fatalf("expected header to contain %q, got %q", column, output)
		}
	}
}

func TestCSVExportRowContent(t *testing.T) {
	rows := buildProductExportRows([]models.Product{sampleProduct()})

	var buf bytes.Buffer
	if err := gocsv.Marshal(&rows, &buf); err != nil {
		t.Fatalf("csv marshal failed: %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "Washing Machine") || !strings.Contains(output, "WM-1234") {
		t.Fatalf("expected record content in csv, got %q", output)
	}
}

func TestRenderProductsPDFEmptySet(t *testing.T) {
	buf, err := renderProductsPDF(nil, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("pdf render failed: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF")) {
		t.Fatal("expected a well-formed PDF for an empty record set")
	}
}

func TestRenderProductsPDFWithRecords(t *testing.T) {
	buf, err := renderProductsPDF([]models.Product{sampleProduct()}, time.Now())
	if err != nil {
		t.Fatalf("pdf render failed: %v", err)
	}
	if buf.Len() == 0 {
		t.Fatal("expected non-empty PDF output")
	}
}
