package screening

import (
	"github.com/montanaflynn/stats"

	"negmdf/domain/geometry"
)

// Range describes one numeric column of a match list.
type Range struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Mean float64 `json:"mean"`
}

// Summary describes a compound's match list. Ranges are nil when there are no matches.
type Summary struct {
	Matches          int      `json:"matches"`
	Inside           int      `json:"inside"`
	Boundary         int      `json:"boundary"`
	NearEdge         int      `json:"near_edge"`
	RetentionTime    *Range   `json:"retention_time,omitempty"`
	ObservedMass     *Range   `json:"observed_mass,omitempty"`
	MedianMassDefect *float64 `json:"median_mass_defect,omitempty"`
}

// Summarize computes placement counts and column statistics for matches.
func Summarize(matches []Match) Summary {
	s := Summary{Matches: len(matches)}
	if len(matches) == 0 {
		return s
	}

	rt := make(stats.Float64Data, len(matches))
	mz := make(stats.Float64Data, len(matches))
	md := make(stats.Float64Data, len(matches))
	for i, m := range matches {
		switch m.Placement {
		case geometry.Inside:
			s.Inside++
		case geometry.OnBoundary:
			s.Boundary++
		case geometry.NearEdge:
			s.NearEdge++
		}
		rt[i] = m.RetentionTime
		mz[i] = m.ObservedMass
		md[i] = m.MassDefect
	}

	s.RetentionTime = describe(rt)
	s.ObservedMass = describe(mz)
	if median, err := stats.Median(md); err == nil {
		s.MedianMassDefect = &median
	}
	return s
}

func describe(data stats.Float64Data) *Range {
	min, err := data.Min()
	if err != nil {
		return nil
	}
	max, err := data.Max()
	if err != nil {
		return nil
	}
	mean, err := data.Mean()
	if err != nil {
		return nil
	}
	return &Range{Min: min, Max: max, Mean: mean}
}
