package writers

import (
	"strconv"

	"negmdf/domain/ion"
	"negmdf/domain/screening"
)

// Header is the column header written before each compound's matches.
var Header = []string{"id", "rt", "mz", "Integer", "decimal"}

// ErrorLabel starts the row written in place of matches for a failed compound.
const ErrorLabel = "error"

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func ionRow(o ion.Observation) []string {
	return []string{
		o.ID,
		formatFloat(o.RetentionTime),
		formatFloat(o.ObservedMass),
		strconv.Itoa(o.NominalMass),
		formatFloat(o.MassDefect),
	}
}

// outcomeRows lays out one compound block shared by the tabular formats.
func outcomeRows(o screening.Outcome) [][]string {
	rows := [][]string{{o.Compound.Name}}
	if o.Err != nil {
		return append(rows, []string{ErrorLabel, o.Err.Error()})
	}
	rows = append(rows, Header)
	for _, m := range o.Matches {
		rows = append(rows, ionRow(m.Observation))
	}
	return rows
}
