package summary

import "strings"

// DefaultColumns names the comma-separated fields of a detail, in order.
var DefaultColumns = []string{"data_no", "port", "name", "location", "duration", "start", "end"}

// Field is one named detail value.
type Field struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Columns splits detail on commas and names the values by position.
// Values beyond the named columns are dropped.
func Columns(detail string, names []string) []Field {
	if strings.TrimSpace(detail) == "" {
		return nil
	}

	parts := strings.Split(detail, ",")
	n := min(len(parts), len(names))
	fields := make([]Field, n)
	for i := 0; i < n; i++ {
		fields[i] = Field{Name: names[i], Value: strings.TrimSpace(parts[i])}
	}
	return fields
}

// Table lays entries out as a header and rows. The header is time and
// category followed by the detail columns that occur in any entry, in
// names order; missing values are empty.
func Table(entries []LogEntry, names []string) (header []string, rows [][]string) {
	parsed := make([]map[string]string, len(entries))
	present := make(map[string]bool)
	for i, e := range entries {
		m := make(map[string]string)
		for _, f := range Columns(e.Detail, names) {
			m[f.Name] = f.Value
			present[f.Name] = true
		}
		parsed[i] = m
	}

	header = []string{"time", "category"}
	for _, name := range names {
		if present[name] {
			header = append(header, name)
		}
	}

	rows = make([][]string, len(entries))
	for i, e := range entries {
		row := []string{e.RawTime, e.Category}
		for _, name := range header[2:] {
			row = append(row, parsed[i][name])
		}
		rows[i] = row
	}
	return header, rows
}
