// Package markermerge implements the merger of marker-position streams
// (§4.6): multiple per-sample/per-haplotype streams, each over its own
// text coordinate space, are concatenated into a single stream over the
// concatenated text, with keys rebiased to account for sequence length,
// window overlap, and indel drift accumulated during scanning.
package markermerge

import (
	"fmt"

	"github.com/TimothyStiles/pfbwt/markerwriter"
)

// Stream is one input marker-position stream plus the bookkeeping needed
// to compute its bias: its contig length (before any indel adjustment)
// and the net indel length observed while it was scanned (positive for
// net insertions, negative for net deletions), per §4.6's bias formula.
type Stream struct {
	Runs        []markerwriter.Run
	ContigLen   uint64
	IndelDelta  int64
}

// Merge concatenates streams in input order, rebiasing each stream's run
// keys by bias_k = sum_{j<k}(L_j + w + IndelDelta_j), so net insertions
// widen the gap to the next stream's keys and net deletions narrow it.
// Marker values themselves are never rewritten: the packed seqid already
// disambiguates them across streams.
func Merge(streams []Stream, w int) ([]markerwriter.Run, error) {
	var out []markerwriter.Run
	bias := int64(0)
	for k, s := range streams {
		for _, r := range s.Runs {
			start := int64(r.Start) + bias
			end := int64(r.End) + bias
			if start < 0 || end < 0 {
				return nil, fmt.Errorf("markermerge: stream %d bias %d produced negative key (start=%d end=%d)", k, bias, start, end)
			}
			out = append(out, markerwriter.Run{
				Start:   uint64(start),
				End:     uint64(end),
				Markers: r.Markers,
			})
		}
		bias += int64(s.ContigLen) + int64(w) + s.IndelDelta
	}
	return out, nil
}
