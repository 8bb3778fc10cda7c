package tide

import "time"

// Synthetic builds a regular semidiurnal table with a high water at first
// and the given number of full cycles after it. One extra cycle is added
// before first so that phase lookups at first are in range.
func Synthetic(first time.Time, cycles int, ebb, flood time.Duration, high, low float64) *Table {
	period := ebb + flood
	recs := make([]Record, 0, 2*(cycles+2))
	for k := -1; k <= cycles; k++ {
		hw := first.Add(time.Duration(k) * period).UTC()
		recs = append(recs,
			Record{Time: hw, Level: high},
			Record{Time: hw.Add(ebb), Level: low},
		)
	}
	return &Table{records: recs}
}
