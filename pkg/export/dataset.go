package export

// Dataset defines tabular export content. Rows are keyed by header.
type Dataset struct {
	Headers []string
	Rows    []map[string]string
}

// Record returns row i laid out in header order.
func (d Dataset) Record(i int) []string {
	record := make([]string, len(d.Headers))
	for j, header := range d.Headers {
		record[j] = d.Rows[i][header]
	}
	return record
}

// columnWidths returns the widest value per column in runes, headers included.
func (d Dataset) columnWidths() []int {
	widths := make([]int, len(d.Headers))
	for j, header := range d.Headers {
		widths[j] = len([]rune(header))
	}
	for i := range d.Rows {
		for j, value := range d.Record(i) {
			if n := len([]rune(value)); n > widths[j] {
				widths[j] = n
			}
		}
	}
	return widths
}
