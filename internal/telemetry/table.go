package telemetry

// Table is the raw frame data, one row per record in document order.
type Table struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// BuildTable lays out every field of every record unmodified. Columns follow
// the order in which each key first appears across the records.
func BuildTable(records []Record) Table {
	var (
		columns []string
		seen    = make(map[string]bool)
	)
	for _, record := range records {
		for _, key := range record.Keys() {
			if !seen[key] {
				seen[key] = true
				columns = append(columns, key)
			}
		}
	}
	if columns == nil {
		columns = []string{}
	}

	rows := make([][]string, 0, len(records))
	for _, record := range records {
		row := make([]string, len(columns))
		for i, column := range columns {
			if raw, ok := record.Get(column); ok {
				row[i] = scalarText(raw)
			}
		}
		rows = append(rows, row)
	}

	return Table{Columns: columns, Rows: rows}
}
