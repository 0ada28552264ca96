// Package export writes the directory to spreadsheet form for offline
// review by the chamber.
package export

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/moodytx/directory/internal/model"
)

var businessHeader = []string{
	"Name", "Category", "Address", "Phone", "Website", "Rating", "Place ID",
}

var categoryHeader = []string{
	"Order", "Name", "Description", "Businesses",
}

// WriteXLSX writes one workbook with a Businesses sheet and a Categories
// sheet to path.
func WriteXLSX(path string, categories []model.Category, businesses []model.Business) error {
	f := xlsx.NewFile()

	names := make(map[string]string, len(categories))
	counts := make(map[string]int, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}
	for _, b := range businesses {
		counts[b.CategoryID]++
	}

	bs, err := f.AddSheet("Businesses")
	if err != nil {
		return eris.Wrap(err, "export: add businesses sheet")
	}
	writeRow(bs, businessHeader...)
	for _, b := range businesses {
		row := bs.AddRow()
		row.AddCell().Value = b.Name
		row.AddCell().Value = names[b.CategoryID]
		row.AddCell().Value = b.Address
		row.AddCell().Value = b.PhoneNumber
		row.AddCell().Value = b.Website
		row.AddCell().SetFloatWithFormat(b.Rating, "0.0")
		row.AddCell().Value = b.PlaceID
	}

	cs, err := f.AddSheet("Categories")
	if err != nil {
		return eris.Wrap(err, "export: add categories sheet")
	}
	writeRow(cs, categoryHeader...)
	for _, c := range categories {
		row := cs.AddRow()
		row.AddCell().SetInt(c.Order)
		row.AddCell().Value = c.Name
		row.AddCell().Value = c.Description
		row.AddCell().SetInt(counts[c.ID])
	}

	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "export: save %s", path)
	}
	return nil
}

func writeRow(sheet *xlsx.Sheet, cells ...string) {
	row := sheet.AddRow()
	for _, c := range cells {
		cell := row.AddCell()
		cell.Value = strings.TrimSpace(c)
	}
}
