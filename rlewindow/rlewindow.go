// Package rlewindow implements the run-length-encoded marker-position
// window array (component H, §4.4): two parallel bitmaps, a run-offset
// table and a flat value array, grounded on rle_window_array.hpp.
package rlewindow

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/TimothyStiles/pfbwt/bitvector"
	"github.com/TimothyStiles/pfbwt/marker"
	"github.com/TimothyStiles/pfbwt/markerwriter"
)

// Array is the read-only, queryable form of a run-length-encoded marker
// stream: for each position in [0, N), HasEntry reports whether any
// marker is present, and At returns the marker vector active at that
// position without materializing the expanded, position-indexed array.
type Array struct {
	n int

	// runStart marks, over [0,N), the positions at which a new run begins.
	runStart bitvector.BitVector
	// hasEntry marks positions that belong to a non-empty run (as opposed
	// to a gap with no markers at all).
	hasEntry bitvector.BitVector

	// values holds the marker vector for every run, in run order, each run
	// followed by a Delim so At can decode in place once it has located
	// the run's starting offset.
	values []marker.Marker
	// runOffset[k] is the index into values at which the k-th run's
	// vector begins.
	runOffset []int
	rsa       bitvector.RSA
}

// Build constructs an Array of length n from a sequence of non-overlapping,
// position-ordered runs (as produced by markerwriter.Writer / ReadRuns).
func Build(n int, runs []markerwriter.Run) (*Array, error) {
	runStartBV := bitvector.New(n)
	hasEntryBV := bitvector.New(n)

	a := &Array{n: n}
	last := -1
	for _, r := range runs {
		if int(r.Start) <= last {
			return nil, fmt.Errorf("rlewindow: run starting at %d overlaps previous run ending at %d", r.Start, last)
		}
		if int(r.End) >= n || int(r.Start) > int(r.End) {
			return nil, fmt.Errorf("rlewindow: run [%d,%d] out of range for length %d", r.Start, r.End, n)
		}
		runStartBV.Set(int(r.Start), true)
		a.runOffset = append(a.runOffset, len(a.values))
		for pos := r.Start; pos <= r.End; pos++ {
			hasEntryBV.Set(int(pos), true)
		}
		a.values = append(a.values, r.Markers...)
		a.values = append(a.values, marker.Delim)
		last = int(r.End)
	}

	a.runStart = runStartBV
	a.hasEntry = hasEntryBV
	a.rsa = bitvector.NewRSA(runStartBV)
	return a, nil
}

// Len returns the array's logical length.
func (a *Array) Len() int { return a.n }

// HasEntry reports whether pos falls within some run.
func (a *Array) HasEntry(pos int) bool {
	if pos < 0 || pos >= a.n {
		return false
	}
	return a.hasEntry.Get(pos)
}

// At returns the marker vector active at pos, or nil if pos has no entry.
func (a *Array) At(pos int) ([]marker.Marker, error) {
	if !a.HasEntry(pos) {
		return nil, nil
	}
	runIdx := a.rsa.Rank(true, pos+1) - 1
	if runIdx < 0 || runIdx >= len(a.runOffset) {
		return nil, fmt.Errorf("rlewindow: position %d resolved to invalid run %d", pos, runIdx)
	}
	off := a.runOffset[runIdx]
	var out []marker.Marker
	for i := off; a.values[i] != marker.Delim; i++ {
		out = append(out, a.values[i])
	}
	return out, nil
}

// AtRange returns the marker vectors active at each position in
// [start, end), in order, with nil entries for positions without a run.
func (a *Array) AtRange(start, end int) ([][]marker.Marker, error) {
	if start < 0 || end > a.n || start > end {
		return nil, fmt.Errorf("rlewindow: range [%d,%d) out of bounds for length %d", start, end, a.n)
	}
	out := make([][]marker.Marker, 0, end-start)
	for pos := start; pos < end; pos++ {
		vals, err := a.At(pos)
		if err != nil {
			return nil, err
		}
		out = append(out, vals)
	}
	return out, nil
}

// Serialize writes the internal binary form of Array described in §4.4
// ("an internal binary form suitable for zero-copy reload... serializes
// each bitmap... and the flat value array in sequence"): the two bitmaps'
// packed words, the run-offset index, and the flat value stream. The
// select/rank structure (RSA) is rebuilt on load rather than persisted.
func (a *Array) Serialize(w io.Writer) error {
	bw := bufWriter{w: w}
	bw.writeU64(uint64(a.n))
	bw.writeBitmap(a.runStart)
	bw.writeBitmap(a.hasEntry)
	bw.writeU64(uint64(len(a.runOffset)))
	for _, off := range a.runOffset {
		bw.writeU64(uint64(off))
	}
	bw.writeU64(uint64(len(a.values)))
	for _, v := range a.values {
		bw.writeU64(uint64(v))
	}
	return bw.err
}

// Deserialize reconstructs an Array from the form written by Serialize.
func Deserialize(r io.Reader) (*Array, error) {
	br := bufReader{r: r}
	n := int(br.readU64())
	runStart := br.readBitmap(n)
	hasEntry := br.readBitmap(n)
	numOffsets := int(br.readU64())
	offsets := make([]int, numOffsets)
	for i := range offsets {
		offsets[i] = int(br.readU64())
	}
	numVals := int(br.readU64())
	vals := make([]marker.Marker, numVals)
	for i := range vals {
		vals[i] = marker.Marker(br.readU64())
	}
	if br.err != nil {
		return nil, fmt.Errorf("rlewindow: deserialize: %w", br.err)
	}
	return &Array{
		n:         n,
		runStart:  runStart,
		hasEntry:  hasEntry,
		values:    vals,
		runOffset: offsets,
		rsa:       bitvector.NewRSA(runStart),
	}, nil
}

type bufWriter struct {
	w   io.Writer
	err error
}

func (b *bufWriter) writeU64(v uint64) {
	if b.err != nil {
		return
	}
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	_, b.err = b.w.Write(buf[:])
}

func (b *bufWriter) writeBitmap(bv bitvector.BitVector) {
	b.writeU64(uint64(bv.Len()))
	words := bv.Words()
	b.writeU64(uint64(len(words)))
	for _, word := range words {
		b.writeU64(word)
	}
}

type bufReader struct {
	r   io.Reader
	err error
}

func (b *bufReader) readU64() uint64 {
	if b.err != nil {
		return 0
	}
	var buf [8]byte
	if _, err := io.ReadFull(b.r, buf[:]); err != nil {
		b.err = err
		return 0
	}
	return binary.LittleEndian.Uint64(buf[:])
}

func (b *bufReader) readBitmap(wantLen int) bitvector.BitVector {
	n := int(b.readU64())
	numWords := int(b.readU64())
	words := make([]uint64, numWords)
	for i := range words {
		words[i] = b.readU64()
	}
	if b.err == nil && n != wantLen {
		b.err = fmt.Errorf("rlewindow: bitmap length %d does not match array length %d", n, wantLen)
	}
	return bitvector.FromWords(words, n)
}
