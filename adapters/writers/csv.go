package writers

import (
	"encoding/csv"
	"io"

	"negmdf/domain/screening"
)

func init() { Register("csv", "csv", WriteCSV) }

// WriteCSV writes each compound as a marker row holding its name, the
// header row and its matches. A failed compound gets an error row instead.
func WriteCSV(w io.Writer, result *screening.Result) error {
	cw := csv.NewWriter(w)
	for _, o := range result.Outcomes {
		if err := cw.WriteAll(outcomeRows(o)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
