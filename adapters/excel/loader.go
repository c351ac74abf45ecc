package excel

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"negmdf/domain/compound"
	"negmdf/domain/ion"
	"negmdf/internal"
	"negmdf/internal/errors"
)

// Header keys recognised in the first cell of each file type.
const (
	WindowHeaderKey  = "compound"
	IonListHeaderKey = "id"
)

// Loader reads NegMDF windows and ion lists from CSV or XLSX files.
type Loader struct {
	logger *internal.Logger
}

// NewLoader creates a loader; a nil logger discards output.
func NewLoader(logger *internal.Logger) *Loader {
	if logger == nil {
		logger = internal.Discard
	}
	return &Loader{logger: logger}
}

// LoadWindow reads compound definitions from a window file:
// compound, parity, base mass, then (max count, unit mass defect) pairs until
// the first empty count cell.
func (l *Loader) LoadWindow(ctx context.Context, path string) ([]compound.Definition, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	table, err := NewDataReader(path, l.logger).ReadTable(WindowHeaderKey)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read window %s", path)
	}
	compounds, err := ParseWindow(table)
	if err != nil {
		return nil, err
	}
	l.logger.With("Loader").Info("%s: %d compounds", path, len(compounds))
	return compounds, nil
}

// LoadIonList reads an ion list file: id, rt, mz, Integer, decimal.
func (l *Loader) LoadIonList(ctx context.Context, path string) (ion.Batch, error) {
	if err := ctx.Err(); err != nil {
		return ion.Batch{}, err
	}
	table, err := NewDataReader(path, l.logger).ReadTable(IonListHeaderKey)
	if err != nil {
		return ion.Batch{}, errors.Wrapf(err, "failed to read ion list %s", path)
	}
	batch, err := ParseIonList(table)
	if err != nil {
		return ion.Batch{}, err
	}
	l.logger.With("Loader").Info("%s: %d ions", path, batch.Len())
	return batch, nil
}

// ParseWindow converts window rows into validated compound definitions.
func ParseWindow(table *Table) ([]compound.Definition, error) {
	compounds := make([]compound.Definition, 0, len(table.Rows))
	for _, row := range table.Rows {
		def, err := parseWindowRow(row)
		if err != nil {
			return nil, errors.Wrapf(err, "%s line %d", table.Source, row.Line)
		}
		if err := def.Validate(); err != nil {
			return nil, errors.Wrapf(err, "%s line %d", table.Source, row.Line)
		}
		compounds = append(compounds, def)
	}
	return compounds, nil
}

func parseWindowRow(row Row) (compound.Definition, error) {
	if len(row.Cells) < 3 {
		return compound.Definition{}, errors.InvalidInput(fmt.Sprintf("expected at least 3 columns, got %d", len(row.Cells)))
	}
	parity, err := parseInt("parity", row.Cell(1))
	if err != nil {
		return compound.Definition{}, err
	}
	baseMass, err := parseFloat("base mass", row.Cell(2))
	if err != nil {
		return compound.Definition{}, err
	}

	def := compound.Definition{
		Name:     row.Cell(0),
		BaseMass: baseMass,
		Parity:   compound.Parity(parity),
	}
	for i := 3; i < len(row.Cells) && row.Cell(i) != ""; i += 2 {
		count, err := parseInt(fmt.Sprintf("feature %d count", len(def.Features)+1), row.Cell(i))
		if err != nil {
			return compound.Definition{}, err
		}
		defect, err := parseFloat(fmt.Sprintf("feature %d mass defect", len(def.Features)+1), row.Cell(i+1))
		if err != nil {
			return compound.Definition{}, err
		}
		def.Features = append(def.Features, compound.Feature{MaxCount: count, UnitMassDefect: defect})
	}
	return def, nil
}

// ParseIonList converts ion rows into observations.
func ParseIonList(table *Table) (ion.Batch, error) {
	batch := ion.Batch{Source: table.Source, Observations: make([]ion.Observation, 0, len(table.Rows))}
	for _, row := range table.Rows {
		o, err := parseIonRow(row)
		if err == nil {
			err = o.Validate()
		}
		if err != nil {
			return ion.Batch{}, errors.Wrapf(err, "%s line %d", table.Source, row.Line)
		}
		batch.Observations = append(batch.Observations, o)
	}
	return batch, nil
}

func parseIonRow(row Row) (ion.Observation, error) {
	if len(row.Cells) < 5 {
		return ion.Observation{}, errors.InvalidInput(fmt.Sprintf("expected 5 columns, got %d", len(row.Cells)))
	}
	rt, err := parseFloat("rt", row.Cell(1))
	if err != nil {
		return ion.Observation{}, err
	}
	mz, err := parseFloat("mz", row.Cell(2))
	if err != nil {
		return ion.Observation{}, err
	}
	nominal, err := parseInt("Integer", row.Cell(3))
	if err != nil {
		return ion.Observation{}, err
	}
	defect, err := parseFloat("decimal", row.Cell(4))
	if err != nil {
		return ion.Observation{}, err
	}
	return ion.Observation{
		ID:            row.Cell(0),
		RetentionTime: rt,
		ObservedMass:  mz,
		NominalMass:   nominal,
		MassDefect:    defect,
	}, nil
}

func parseFloat(field, value string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0, errors.InvalidInput(fmt.Sprintf("%s: %q is not a number", field, value))
	}
	return v, nil
}

// parseInt accepts integral floats ("412.0") as spreadsheets often store them.
func parseInt(field, value string) (int, error) {
	value = strings.TrimSpace(value)
	if v, err := strconv.Atoi(value); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, errors.InvalidInput(fmt.Sprintf("%s: %q is not an integer", field, value))
	}
	return int(f), nil
}
