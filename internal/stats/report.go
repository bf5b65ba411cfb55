package stats

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"

	"golang.org/x/exp/maps"
)

// ReportEntry is one line of the final output: a key and its
// "<min>/<mean>/<max>" summary.
type ReportEntry struct {
	Key     string
	Summary string
}

// Report is the finalized output, sorted ascending by key.
type Report []ReportEntry

// Finalize renders a table into its sorted report. Keys are ordered by
// plain byte comparison, which is codepoint order for UTF-8 text. Entries
// with a zero count are skipped rather than divided.
func Finalize(t *Table) Report {
	keys := maps.Keys(t.m)
	sort.Strings(keys)

	rep := make(Report, 0, len(keys))
	for _, k := range keys {
		s := t.m[k]
		if s.Count == 0 {
			continue
		}
		rep = append(rep, ReportEntry{
			Key:     k,
			Summary: formatTenth(s.Min) + "/" + formatTenth(s.Mean()) + "/" + formatTenth(s.Max),
		})
	}
	return rep
}

// WriteTo writes the report as "<key>: <summary>" lines.
func (r Report) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for _, e := range r {
		n, err := fmt.Fprintf(w, "%s: %s\n", e.Key, e.Summary)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// Beyond this, an int64 of tenths can no longer represent the value
// exactly.
const maxExactTenths = float64(1 << 53)

// formatTenth renders v with exactly one fractional digit. The rounding
// rule is half away from zero on the tenths value (math.Round of v*10),
// so 0.25 -> "0.3" and -0.25 -> "-0.3". Values rounding to zero never
// carry a sign. Magnitudes past the int64 tenths range fall back to
// strconv.
func formatTenth(v float64) string {
	scaled := math.Round(v * 10)
	if math.IsNaN(scaled) || scaled > maxExactTenths || scaled < -maxExactTenths {
		return strconv.FormatFloat(v, 'f', 1, 64)
	}

	n := int64(scaled)
	u, d := n/10, n%10
	if n < 0 {
		return fmt.Sprintf("-%d.%d", -u, -d)
	}
	return fmt.Sprintf("%d.%d", u, d)
}
