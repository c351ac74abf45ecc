package excel

// Table is the raw content of one sheet or CSV file. Header is nil when the
// first row was not recognised as a header.
type Table struct {
	Source string
	Header []string
	Rows   []Row
}

// Row is one non-blank data row with its 1-based line (or sheet row) number.
type Row struct {
	Line  int
	Cells []string
}

// Cell returns the trimmed cell at i, or "" past the end of the row.
func (r Row) Cell(i int) string {
	if i < 0 || i >= len(r.Cells) {
		return ""
	}
	return r.Cells[i]
}
