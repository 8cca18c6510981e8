package handlers

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/360EntSecGroup-Skylar/excelize"
	"github.com/gin-gonic/gin"
	"github.com/gocarina/gocsv"
	"github.com/jung-kurt/gofpdf"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"warrantytracker/internal/models"
)

const exportDateLayout = "01/02/2006"

// productExportRow is the fixed column set shared by the CSV and XLSX
// exports.
type productExportRow struct {
	Name           string `csv:"Name"`
	Category       string `csv:"Category"`
	PurchaseDate   string `csv:"Purchase Date"`
	WarrantyExpiry string `csv:"Warranty Expiry"`
	PurchasePrice  string `csv:"Purchase Price"`
	Seller         string `csv:"Seller"`
	SerialNumber   string `csv:"Serial Number"`
}

var exportColumns = []string{"Name", "Category", "Purchase Date", "Warranty Expiry", "Purchase Price", "Seller", "Serial Number"}

func orPlaceholder(value string) string {
	if value == "" {
		return "N/A"
	}
	return value
}

func buildProductExportRows(products []models.Product) []productExportRow {
	rows := make([]productExportRow, 0, len(products))
	for _, p := range products {
		price := "N/A"
		if p.PurchasePrice > 0 {
			price = strconv.FormatFloat(p.PurchasePrice, 'f', 2, 64)
		}
		rows = append(rows, productExportRow{
			Name:           p.Name,
			Category:       orPlaceholder(p.CategoryName),
			PurchaseDate:   p.PurchaseDate.Format(exportDateLayout),
			WarrantyExpiry: p.WarrantyExpiryDate.Format(exportDateLayout),
			PurchasePrice:  price,
			Seller:         orPlaceholder(p.Seller),
			SerialNumber:   orPlaceholder(p.SerialNumber),
		})
	}
	return rows
}

// fetchAllOwnerProducts loads the owner's complete record set. Exports
// bypass pagination so a report always covers everything.
func fetchAllOwnerProducts(ctx context.Context, db *mongo.Database, ownerID primitive.ObjectID) ([]models.Product, error) {
	opts := options.Find().SetSort(parseSortOption("", sortableProductFields))
	cursor, err := db.Collection("products").Find(ctx, bson.M{"user": ownerID}, opts)
	if err != nil {
		return nil, err
	}

	products := make([]models.Product, 0)
	if err := cursor.All(ctx, &products); err != nil {
		return nil, err
	}
	if err := attachProductMeta(ctx, db, products, time.Now()); err != nil {
		return nil, err
	}
	return products, nil
}

/*
GET /api/products/export/csv
*/
func ExportProductsCSV(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/products/export/csv"
		defer handlePanic(c, route)

		ctx, cancel := queryContext(c)
		defer cancel()

		products, err := fetchAllOwnerProducts(ctx, db, requestUserID(c))
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "Failed to generate CSV")
			return
		}

		rows := buildProductExportRows(products)

		var buf bytes.Buffer
		if err := gocsv.Marshal(&rows, &buf); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "Failed to generate CSV")
			return
		}

		c.Header("Content-Disposition", `attachment; filename="products_export.csv"`)
		c.Data(http.StatusOK, "text/csv", buf.Bytes())
	}
}

/*
GET /api/products/export/xlsx
*/
func ExportProductsXLSX(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/products/export/xlsx"
		defer handlePanic(c, route)

		ctx, cancel := queryContext(c)
		defer cancel()

		products, err := fetchAllOwnerProducts(ctx, db, requestUserID(c))
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "Failed to generate XLSX")
			return
		}

		file := excelize.NewFile()
		const sheet = "Sheet1"

		for col, title := range exportColumns {
			file.SetCellValue(sheet, excelize.ToAlphaString(col)+"1", title)
		}
		if style, err := file.NewStyle(`{"font":{"bold":true}}`); err == nil {
			file.SetCellStyle(sheet, "A1", excelize.ToAlphaString(len(exportColumns)-1)+"1", style)
		}

		for i, row := range buildProductExportRows(products) {
			cells := []string{row.Name, row.Category, row.PurchaseDate, row.WarrantyExpiry, row.PurchasePrice, row.Seller, row.SerialNumber}
			for col, value := range cells {
				file.SetCellValue(sheet, fmt.Sprintf("%s%d", excelize.ToAlphaString(col), i+2), value)
			}
		}

		var buf bytes.Buffer
		if err := file.Write(&buf); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "Failed to generate XLSX")
			return
		}

		c.Header("Content-Disposition", `attachment; filename="products_export.xlsx"`)
		c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
	}
}

// renderProductsPDF writes the printable inventory report. An empty record
// set still yields a valid document with a placeholder message.
func renderProductsPDF(products []models.Product, generatedAt time.Time) (*bytes.Buffer, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 20)
	pdf.CellFormat(0, 12, "Warranty Tracker Inventory Report", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 12)
	pdf.CellFormat(0, 8, "Generated on: "+generatedAt.Format(exportDateLayout), "", 1, "C", false, 0, "")
	pdf.Ln(10)

	if len(products) == 0 {
		pdf.SetFont("Helvetica", "", 14)
		pdf.CellFormat(0, 10, "No products found in inventory.", "", 1, "C", false, 0, "")
	}

	for _, p := range products {
		pdf.SetFont("Helvetica", "B", 14)
		pdf.SetTextColor(79, 70, 229)
		pdf.CellFormat(0, 8, p.Name, "", 1, "L", false, 0, "")

		pdf.SetFont("Helvetica", "", 10)
		pdf.SetTextColor(0, 0, 0)
		pdf.CellFormat(0, 6, "Category: "+orPlaceholder(p.CategoryName), "", 1, "L", false, 0, "")
		pdf.CellFormat(0, 6, "Purchase Date: "+p.PurchaseDate.Format(exportDateLayout), "", 1, "L", false, 0, "")
		pdf.CellFormat(0, 6, "Warranty Expiry: "+p.WarrantyExpiryDate.Format(exportDateLayout), "", 1, "L", false, 0, "")
		if p.PurchasePrice > 0 {
			pdf.CellFormat(0, 6, fmt.Sprintf("Price: $%.2f", p.PurchasePrice), "", 1, "L", false, 0, "")
		}
		if p.SerialNumber != "" {
			pdf.CellFormat(0, 6, "Serial Number: "+p.SerialNumber, "", 1, "L", false, 0, "")
		}
		pdf.Ln(4)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return &buf, nil
}

/*
GET /api/products/export/pdf
*/
func ExportProductsPDF(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/products/export/pdf"
		defer handlePanic(c, route)

		ctx, cancel := queryContext(c)
		defer cancel()

		products, err := fetchAllOwnerProducts(ctx, db, requestUserID(c))
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "Failed to generate PDF document")
			return
		}

		buf, err := renderProductsPDF(products, time.Now())
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "Failed to generate PDF document")
			return
		}

		filename := fmt.Sprintf("products_export_%d.pdf", time.Now().UnixMilli())
		c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
		c.Data(http.StatusOK, "application/pdf", buf.Bytes())
	}
}
