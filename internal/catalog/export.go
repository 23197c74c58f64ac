package catalog

import (
	"fmt"
	"github.com/tealeg/xlsx"
	"io"
	"strconv"
	"time"
)

var exportHeaders = []string{
	"ID", "Name", "Category", "Price", "Stock", "Status", "Description", "Image", "CreatedAt", "UpdatedAt",
}

// WriteProductsXLSX renders products as a single-sheet workbook.
func WriteProductsXLSX(w io.Writer, products []Product) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Products")
	if err != nil {
		return fmt.Errorf("add sheet: %w", err)
	}

	header := sheet.AddRow()
	for _, h := range exportHeaders {
		header.AddCell().SetString(h)
	}

	for _, p := range products {
		row := sheet.AddRow()
		row.AddCell().SetString(strconv.FormatInt(p.ID, 10))
		row.AddCell().SetString(p.Name)
		category := ""
		if p.CategoryName != nil {
			category = *p.CategoryName
		}
		row.AddCell().SetString(category)
		row.AddCell().SetString(p.Price.StringFixed(2))
		row.AddCell().SetInt(p.Stock)
		row.AddCell().SetString(string(p.Status))
		row.AddCell().SetString(p.Description)
		row.AddCell().SetString(p.Image)
		row.AddCell().SetString(p.CreatedAt.UTC().Format(time.DateTime))
		row.AddCell().SetString(p.UpdatedAt.UTC().Format(time.DateTime))
	}

	return file.Write(w)
}
