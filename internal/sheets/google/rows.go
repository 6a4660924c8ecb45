package google

import (
	"fmt"
	"strings"

	"fincontrol/internal/core"
)

var header = []any{"ID", "Data", "Tipo", "Categoria", "Subcategoria", "Descrição", "Valor"}

// rowValues lays a transaction out as columns A..G.
func rowValues(t core.Transaction) []any {
	return []any{
		t.ID,
		t.Date.String(),
		string(t.Type),
		t.Category,
		t.Subcategory,
		t.Description,
		core.FormatBRL(t.Amount),
	}
}

// findRow returns the 1-based sheet row holding id in column A, or -1.
// Row 1 is the header and never matches.
func findRow(values [][]any, id string) int {
	for i, row := range values {
		if i == 0 || len(row) == 0 {
			continue
		}
		if strings.TrimSpace(fmt.Sprint(row[0])) == id {
			return i + 1
		}
	}
	return -1
}

func rowRange(sheet string, row int) string {
	return fmt.Sprintf("%s!A%d:G%d", sheet, row, row)
}
