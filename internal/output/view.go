package output

import (
	"github.com/klytics/sheetkit/internal/table"
)

// ViewDoc is the machine form of a view.
type ViewDoc struct {
	Columns []table.ViewColumn `json:"columns"`
	Rows    []ViewDocRow       `json:"rows"`
	Shown   int                `json:"shown"`
	Total   int                `json:"total"`
}

// ViewDocRow is one displayed row. Index is the dataset row it came from.
type ViewDocRow struct {
	Index  int                    `json:"index"`
	Values map[string]table.Value `json:"values"`
	Colors map[string]string      `json:"colors,omitempty"`
}

// ViewJSON converts v to its JSON document. Values are keyed by column name;
// hidden columns are left out.
func ViewJSON(v *table.ViewTable) ViewDoc {
	doc := ViewDoc{
		Columns: v.Columns,
		Rows:    make([]ViewDocRow, len(v.Rows)),
		Shown:   len(v.Rows),
		Total:   v.Total,
	}
	if doc.Columns == nil {
		doc.Columns = []table.ViewColumn{}
	}
	for i, r := range v.Rows {
		row := ViewDocRow{Index: r.Index, Values: make(map[string]table.Value, len(r.Cells))}
		for j, c := range r.Cells {
			name := v.Columns[j].Name
			row.Values[name] = c.Value
			if c.Background != nil {
				if row.Colors == nil {
					row.Colors = map[string]string{}
				}
				row.Colors[name] = c.Background.Hex()
			}
		}
		doc.Rows[i] = row
	}
	return doc
}
