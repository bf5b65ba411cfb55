// Package stats implements the streaming aggregation core: parsing
// name;value records, maintaining per-key min/max/sum/count aggregates,
// and rendering the sorted fixed-precision report.
package stats

// StationStats is the running aggregate for one key. The zero value is an
// empty aggregate; Add seeds it on the first measurement.
type StationStats struct {
	Min   float64
	Max   float64
	Sum   float64
	Count int64
}

// NewStationStats seeds an aggregate with its first measurement.
func NewStationStats(v float64) *StationStats {
	return &StationStats{
		Min:   v,
		Max:   v,
		Sum:   v,
		Count: 1,
	}
}

// Add folds one measurement into the aggregate.
func (s *StationStats) Add(v float64) {
	if s.Count != 0 {
		if v < s.Min {
			s.Min = v
		}
		if v > s.Max {
			s.Max = v
		}
		s.Sum += v
		s.Count++
		return
	}

	s.Min = v
	s.Max = v
	s.Sum = v
	s.Count++
}

// Merge combines another aggregate into s. The combination is commutative
// and associative, so partial aggregates may be merged in any order.
func (s *StationStats) Merge(o *StationStats) {
	if o.Count == 0 {
		return
	}
	if s.Count == 0 {
		*s = *o
		return
	}

	if o.Min < s.Min {
		s.Min = o.Min
	}
	if o.Max > s.Max {
		s.Max = o.Max
	}
	s.Sum += o.Sum
	s.Count += o.Count
}

// Mean returns Sum/Count. Only meaningful when Count > 0.
func (s *StationStats) Mean() float64 {
	return s.Sum / float64(s.Count)
}
