package ui

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/sandeepkv93/invotrac/internal/catalog"
	"github.com/sandeepkv93/invotrac/internal/domain"
)

const emptyTableText = "No products found."

var columnTitles = map[catalog.SortKey]string{
	catalog.KeyID:          "ID",
	catalog.KeyName:        "Name",
	catalog.KeyDescription: "Description",
	catalog.KeyPrice:       "Price",
	catalog.KeyQuantity:    "Quantity",
}

// Headers returns the column titles with a direction marker on the active
// sort column.
func Headers(state catalog.SortState) []string {
	out := make([]string, 0, len(catalog.Keys))
	for _, k := range catalog.Keys {
		title := columnTitles[k]
		if k == state.Key {
			if state.Direction == catalog.Desc {
				title += " ↓"
			} else {
				title += " ↑"
			}
		}
		out = append(out, title)
	}
	return out
}

// Cells renders one product the way the table shows it.
func Cells(p domain.Product) []string {
	return []string{
		strconv.FormatInt(p.ID, 10),
		p.Name,
		p.Description,
		p.Price.Format2(),
		p.Quantity.String(),
	}
}

// ProductTable renders rows in the given order. selected marks one row with a
// cursor; pass -1 for none. An empty row set gets a placeholder line under
// the headers.
func ProductTable(rows []domain.Product, state catalog.SortState, selected int) string {
	headers := append([]string{" "}, Headers(state)...)
	data := make([][]string, 0, len(rows))
	for i, p := range rows {
		marker := " "
		if i == selected {
			marker = "›"
		}
		data = append(data, append([]string{marker}, Cells(p)...))
	}
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(mutedStyle).
		Headers(headers...).
		Rows(data...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	if len(rows) == 0 {
		return t.Render() + "\n" + mutedStyle.Render(emptyTableText)
	}
	return t.Render()
}
