package writers

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"negmdf/domain/screening"
)

func init() { Register("xlsx", "xlsx", WriteXLSX) }

const (
	maxSheetName = 31
	defaultSheet = "Sheet1"
)

var sheetNameReplacer = strings.NewReplacer(
	":", "_", "\\", "_", "/", "_", "?", "_", "*", "_", "[", "_", "]", "_",
)

// WriteXLSX writes a workbook with one sheet per compound, laid out like
// the csv format.
func WriteXLSX(w io.Writer, result *screening.Result) error {
	f := excelize.NewFile()
	defer f.Close()

	used := make(map[string]bool, len(result.Outcomes))
	for i, o := range result.Outcomes {
		sheet := uniqueSheetName(o.Compound.Name, used)
		if i == 0 {
			if err := f.SetSheetName(defaultSheet, sheet); err != nil {
				return fmt.Errorf("failed to name sheet %q: %w", sheet, err)
			}
		} else if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("failed to add sheet %q: %w", sheet, err)
		}
		if err := writeSheet(f, sheet, o); err != nil {
			return err
		}
	}

	_, err := f.WriteTo(w)
	return err
}

func writeSheet(f *excelize.File, sheet string, o screening.Outcome) error {
	rows := [][]interface{}{{o.Compound.Name}}
	if o.Err != nil {
		rows = append(rows, []interface{}{ErrorLabel, o.Err.Error()})
	} else {
		header := make([]interface{}, len(Header))
		for i, h := range Header {
			header[i] = h
		}
		rows = append(rows, header)
		for _, m := range o.Matches {
			rows = append(rows, []interface{}{m.ID, m.RetentionTime, m.ObservedMass, m.NominalMass, m.MassDefect})
		}
	}
	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &rows[i]); err != nil {
			return fmt.Errorf("failed to write sheet %q row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

// uniqueSheetName makes name a legal sheet name not yet in used (compared
// case-insensitively, as Excel does) and records it.
func uniqueSheetName(name string, used map[string]bool) string {
	base := strings.Trim(sheetNameReplacer.Replace(strings.TrimSpace(name)), "'")
	if base == "" {
		base = "compound"
	}
	candidate := truncateRunes(base, maxSheetName)
	for n := 2; used[strings.ToLower(candidate)]; n++ {
		suffix := fmt.Sprintf(" (%d)", n)
		candidate = truncateRunes(base, maxSheetName-len(suffix)) + suffix
	}
	used[strings.ToLower(candidate)] = true
	return candidate
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
