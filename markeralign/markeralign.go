// Package markeralign implements the marker-array aligner (component I,
// §4.5): it re-indexes a text-position-keyed marker-position store by
// BWT row index, walking the full suffix array once.
package markeralign

import (
	"fmt"

	"github.com/TimothyStiles/pfbwt/marker"
	"github.com/TimothyStiles/pfbwt/markerwriter"
	"github.com/TimothyStiles/pfbwt/rlewindow"
)

// Align walks sa in order; at step i with value s = sa[i], it looks up
// the marker vector active at text position s in store, and emits runs
// of consecutive BWT indices sharing an equal marker vector, in the same
// format markerwriter produces (first/last index in place of
// start/end).
func Align(sa []uint64, store *rlewindow.Array) ([]markerwriter.Run, error) {
	var runs []markerwriter.Run
	var curVals []marker.Marker
	var curStart uint64
	haveRun := false

	flush := func(lastIdx uint64) {
		if haveRun {
			runs = append(runs, markerwriter.Run{Start: curStart, End: lastIdx, Markers: curVals})
		}
		haveRun = false
	}

	for i, s := range sa {
		vals, err := store.At(int(s))
		if err != nil {
			return nil, fmt.Errorf("markeralign: lookup at text position %d: %w", s, err)
		}
		if len(vals) == 0 {
			flush(uint64(i - 1))
			continue
		}
		if haveRun && marker.Equal(vals, curVals) {
			continue
		}
		flush(uint64(i - 1))
		curStart = uint64(i)
		curVals = vals
		haveRun = true
	}
	flush(uint64(len(sa) - 1))
	return runs, nil
}
