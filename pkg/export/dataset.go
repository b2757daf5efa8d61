package export

// Dataset defines tabular export content. Totals is an optional trailing
// summary row keyed by header; Numeric marks right-aligned columns.
type Dataset struct {
	Headers []string
	Rows    []map[string]string
	Totals  map[string]string
	Numeric map[string]bool
}

func (d Dataset) record(row map[string]string) []string {
	record := make([]string, len(d.Headers))
	for i, header := range d.Headers {
		record[i] = row[header]
	}
	return record
}
