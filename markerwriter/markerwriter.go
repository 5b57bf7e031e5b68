// Package markerwriter implements the marker-position writer (component G,
// §4.3): a sliding-window state machine that turns a stream of per-variant
// events into run-length-encoded blocks of packed markers, grounded on
// marker_index.hpp's MarkerWindow/MarkerIndexWriter.
package markerwriter

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/TimothyStiles/pfbwt/marker"
)

type pendingMarker struct {
	textpos uint64
	packed  marker.Marker
}

// Run is one flushed block: for every position in [Start, End], the set
// of markers in play equals Markers.
type Run struct {
	Start   uint64
	End     uint64
	Markers []marker.Marker
}

// Writer implements the IDLE/ACCUMULATING state machine described in
// §4.3. It consumes update() calls in increasing textpos order for a
// single contig at a time and emits Runs to Out in increasing Start order.
type Writer struct {
	w   uint64
	out io.Writer

	window       []pendingMarker // sliding deque of markers still in range
	pos          uint64          // next anchor position to process
	havePos      bool
	lastVals     []marker.Marker // marker vector at the previous anchor
	runStart     uint64
	runHasValues bool
	curSeqID     int32 // -1 until the first marker of a contig is seen
}

// New returns a Writer with window width w, emitting binary blocks to out.
func New(w int, out io.Writer) *Writer {
	return &Writer{w: uint64(w), out: out, curSeqID: -1}
}

// Update consumes one variant event: a marker at textpos (packed already),
// or, if hasMarker is false, simply advances the writer's notion of the
// current position (an event with no genotype call at this site).
func (wr *Writer) Update(textpos uint64, seqid int32, hasMarker bool, packed marker.Marker) (err error) {
	defer recoverToError("Update", &err)
	return wr.update(textpos, seqid, hasMarker, packed)
}

func (wr *Writer) update(textpos uint64, seqid int32, hasMarker bool, packed marker.Marker) error {
	if hasMarker {
		if wr.curSeqID != -1 && wr.curSeqID != seqid {
			return fmt.Errorf("markerwriter: update received seqid %d without an intervening finish (current %d)", seqid, wr.curSeqID)
		}
		wr.curSeqID = seqid
		wr.window = append(wr.window, pendingMarker{textpos: textpos, packed: packed})
	}

	if !wr.havePos {
		wr.pos = firstAnchor(wr.window, textpos, wr.w)
		wr.havePos = true
	}

	// Drop markers from the front of the window that can no longer be
	// seen by any window containing the new marker, advancing anchors as
	// we go so runs are emitted in order.
	for len(wr.window) > 0 && wr.window[0].textpos+wr.w <= textpos {
		if err := wr.processRun(); err != nil {
			return err
		}
	}
	return nil
}

// firstAnchor picks the first anchor position to evaluate once the window
// has at least one marker: the earliest position p whose window [p, p+w)
// still reaches the first queued marker, i.e. p == textpos - w + 1 (clamped
// to 0), matching marker_index.hpp's update: `pos = win_.front().textpos -
// w_ + 1`.
func firstAnchor(window []pendingMarker, textpos, w uint64) uint64 {
	if len(window) == 0 {
		return textpos
	}
	t := window[0].textpos
	if t+1 < w {
		return 0
	}
	return t - w + 1
}

// processRun walks forward from wr.pos, emitting or extending the current
// run for each anchor position whose window still touches the window
// front, matching the canonical boundary condition `pos + w > textpos`
// (equivalently `pos <= textpos < pos + w`), resolving the Open Question
// named in the design notes.
func (wr *Writer) processRun() error {
	for len(wr.window) > 0 && wr.pos+wr.w > wr.window[0].textpos {
		vals := wr.collectWindowValues()
		if err := wr.observe(wr.pos, vals); err != nil {
			return err
		}
		wr.pos++
		for len(wr.window) > 0 && wr.pos > wr.window[0].textpos {
			wr.window = wr.window[1:]
		}
		if len(wr.window) == 0 {
			break
		}
	}
	return nil
}

// collectWindowValues returns the deduplicated, ordered set of markers
// whose textpos falls in [wr.pos, wr.pos+w), i.e. satisfies
// pos + w > textpos (equivalently pos <= textpos < pos+w).
func (wr *Writer) collectWindowValues() []marker.Marker {
	var vals []marker.Marker
	seen := make(map[marker.Marker]bool)
	for _, m := range wr.window {
		if wr.pos+wr.w > m.textpos && !seen[m.packed] {
			seen[m.packed] = true
			vals = append(vals, m.packed)
		}
	}
	return vals
}

// observe folds one anchor's marker vector into the in-progress run,
// flushing it first if the vector changed.
func (wr *Writer) observe(pos uint64, vals []marker.Marker) error {
	if wr.runHasValues && !marker.Equal(vals, wr.lastVals) {
		if err := wr.flushRun(pos - 1); err != nil {
			return err
		}
	}
	if len(vals) == 0 {
		wr.runHasValues = false
		return nil
	}
	if !wr.runHasValues {
		wr.runStart = pos
		wr.runHasValues = true
		wr.lastVals = append([]marker.Marker(nil), vals...)
	}
	return nil
}

func (wr *Writer) flushRun(end uint64) error {
	if !wr.runHasValues {
		return nil
	}
	if err := writeRun(wr.out, wr.runStart, end, wr.lastVals); err != nil {
		return err
	}
	wr.runHasValues = false
	return nil
}

// FinishSequence flushes any remaining queue and in-progress run, and
// resets the writer for a new contig.
func (wr *Writer) FinishSequence() (err error) {
	defer recoverToError("FinishSequence", &err)
	return wr.finishSequence()
}

// recoverToError turns a panic raised by a corrupt internal invariant into
// an error, mirroring bwtRecovery in search/bwt/bwt.go.
func recoverToError(operation string, err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("markerwriter: %s: internal error: %v", operation, r)
	}
}

func (wr *Writer) finishSequence() error {
	for len(wr.window) > 0 {
		vals := wr.collectWindowValues()
		if err := wr.observe(wr.pos, vals); err != nil {
			return err
		}
		wr.pos++
		for len(wr.window) > 0 && wr.pos > wr.window[0].textpos {
			wr.window = wr.window[1:]
		}
	}
	if wr.runHasValues {
		if err := wr.flushRun(wr.pos - 1); err != nil {
			return err
		}
	}
	wr.window = nil
	wr.pos = 0
	wr.havePos = false
	wr.lastVals = nil
	wr.runHasValues = false
	wr.curSeqID = -1
	return nil
}

// WriteRuns serializes a slice of already-computed Runs to w in the same
// binary block format Writer itself emits. Used by the marker-array
// aligner (§4.5) and the marker-position merger (§4.6), which both
// produce Runs directly rather than driving the IDLE/ACCUMULATING state
// machine.
func WriteRuns(w io.Writer, runs []Run) error {
	for _, r := range runs {
		if err := writeRun(w, r.Start, r.End, r.Markers); err != nil {
			return err
		}
	}
	return nil
}

func writeRun(w io.Writer, start, end uint64, vals []marker.Marker) error {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, start)
	if _, err := w.Write(buf); err != nil {
		return err
	}
	binary.LittleEndian.PutUint64(buf, end)
	if _, err := w.Write(buf); err != nil {
		return err
	}
	for _, v := range vals {
		binary.LittleEndian.PutUint64(buf, uint64(v))
		if _, err := w.Write(buf); err != nil {
			return err
		}
	}
	binary.LittleEndian.PutUint64(buf, uint64(marker.Delim))
	_, err := w.Write(buf)
	return err
}

// ReadRuns decodes the binary block stream written by Writer (§4.3's
// on-disk format) into a slice of Runs, for tests and tooling.
func ReadRuns(r io.Reader) ([]Run, error) {
	var runs []Run
	buf := make([]byte, 8)
	for {
		if _, err := io.ReadFull(r, buf); err != nil {
			if err == io.EOF {
				return runs, nil
			}
			return runs, err
		}
		start := binary.LittleEndian.Uint64(buf)
		if _, err := io.ReadFull(r, buf); err != nil {
			return runs, fmt.Errorf("markerwriter: truncated run (missing end): %w", err)
		}
		end := binary.LittleEndian.Uint64(buf)
		var vals []marker.Marker
		for {
			if _, err := io.ReadFull(r, buf); err != nil {
				return runs, fmt.Errorf("markerwriter: truncated run (missing delimiter): %w", err)
			}
			v := binary.LittleEndian.Uint64(buf)
			if marker.Marker(v) == marker.Delim {
				break
			}
			vals = append(vals, marker.Marker(v))
		}
		runs = append(runs, Run{Start: start, End: end, Markers: vals})
	}
}
