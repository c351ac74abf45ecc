package writers

import (
	"bufio"
	"encoding/json"
	"io"

	"negmdf/domain/compound"
	"negmdf/domain/screening"
)

func init() { Register("jsonl", "jsonl", WriteJSONL) }

// OutcomeRecord is the JSON shape of one compound outcome.
type OutcomeRecord struct {
	Source       string            `json:"source,omitempty"`
	Compound     string            `json:"compound"`
	Parity       compound.Parity   `json:"parity"`
	BaseMass     float64           `json:"base_mass"`
	Status       screening.Status  `json:"status"`
	Error        string            `json:"error,omitempty"`
	HullVertices int               `json:"hull_vertices,omitempty"`
	Matches      []screening.Match `json:"matches"`
	Summary      screening.Summary `json:"summary"`
}

// NewOutcomeRecord flattens an outcome for JSON output.
func NewOutcomeRecord(source string, o screening.Outcome) OutcomeRecord {
	matches := o.Matches
	if matches == nil {
		matches = []screening.Match{}
	}
	return OutcomeRecord{
		Source:       source,
		Compound:     o.Compound.Name,
		Parity:       o.Compound.Parity,
		BaseMass:     o.Compound.BaseMass,
		Status:       o.Status(),
		Error:        o.ErrorMessage(),
		HullVertices: o.Vertices,
		Matches:      matches,
		Summary:      o.Summary,
	}
}

// WriteJSONL writes one JSON object per compound outcome.
func WriteJSONL(w io.Writer, result *screening.Result) error {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	for _, o := range result.Outcomes {
		if err := enc.Encode(NewOutcomeRecord(result.Source, o)); err != nil {
			return err
		}
	}
	return bw.Flush()
}
