// Package pfbwt implements the prefix-free BWT builder (component E,
// §4.2): given a finalized dictionary and the BWT-of-parse artifacts
// (bwlast/ilist/bwsai), it reconstructs the BWT of the original text
// without ever materializing that text, using an LCP-based walk of the
// dictionary's own suffix array. Grounded on pfbwt.hpp/pfbwtf.hpp.
package pfbwt

import (
	"fmt"

	"golang.org/x/exp/slices"

	"github.com/TimothyStiles/pfbwt/bitvector"
	"github.com/TimothyStiles/pfbwt/dictionary"
	"github.com/TimothyStiles/pfbwt/saca"
)

// SAEntry is one suffix-array sample, used for run-start/run-end samples
// in RLSA output.
type SAEntry struct {
	Idx uint64
	SA  uint64
}

// Input bundles the dictionary and BWT-of-parse artifacts the builder
// consumes (the outputs of parser.Parser.Finalize and BWTOfParse).
type Input struct {
	Dict    *dictionary.Dict
	BWLast  []byte
	IList   []uint64
	BWSai   []uint64 // optional, required if WantSA or WantRLSA
	WantSA  bool
	WantRLSA bool
}

// Result is the builder's output: the reconstructed BWT, optionally the
// full suffix array or run-start/run-end samples, and diagnostic counts.
type Result struct {
	BWT       []byte
	SA        []uint64 // nil unless WantSA
	RunStarts []SAEntry
	RunEnds   []SAEntry
	EasyCount int
	HardCount int
}

type tuple struct {
	c    byte
	j    uint64
	word int
}

// Build runs the LCP-based BWT reconstruction described in §4.2.
func Build(in Input) (res *Result, err error) {
	defer recoverToError("Build", &err)
	return build(in)
}

// recoverToError turns a panic raised by a corrupt internal invariant
// (an out-of-range gsa/ilist index, a malformed dictionary) into an error,
// mirroring bwtRecovery in search/bwt/bwt.go.
func recoverToError(operation string, err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("pfbwt: %s: internal error: %v", operation, r)
	}
}

func build(in Input) (*Result, error) {
	if in.Dict == nil || in.Dict.Len() == 0 {
		return nil, fmt.Errorf("pfbwt: empty dictionary")
	}
	if (in.WantSA || in.WantRLSA) && len(in.BWSai) == 0 {
		return nil, fmt.Errorf("pfbwt: full SA or RLSA requested but bwsai not provided")
	}

	text, phraseEnd := in.Dict.Concat()
	gsa, glcp := saca.ComputeBytes(text)

	dictIdx := bitvector.New(len(phraseEnd))
	for i, b := range phraseEnd {
		if b {
			dictIdx.Set(i, true)
		}
	}
	rsa := bitvector.NewRSA(dictIdx)

	offsets := make([]int, len(in.Dict.Occ)+1)
	for i, o := range in.Dict.Occ {
		offsets[i+1] = offsets[i] + int(o)
	}
	ilistRange := func(rank int) (int, int) {
		return offsets[rank-1], offsets[rank]
	}

	locate := func(s int) (wordIdx int, suflen int, ok bool) {
		if s < 0 || s >= len(text) {
			return 0, 0, false
		}
		if dictIdx.Get(s) {
			return 0, 0, false // suffix starts at a sentinel byte itself
		}
		wordIdx = rsa.Rank(true, s)
		end, has := rsa.Select(true, wordIdx+1)
		if !has {
			return 0, 0, false
		}
		return wordIdx, end - s, true
	}

	res := &Result{}
	if in.WantSA {
		res.SA = make([]uint64, 0, len(in.IList))
	}

	var outIdx uint64
	var prevChar byte
	var prevSA uint64
	haveRun := false

	emit := func(c byte, sa uint64, haveSA bool) {
		res.BWT = append(res.BWT, c)
		if in.WantSA && haveSA {
			res.SA = append(res.SA, sa)
		} else if in.WantSA {
			res.SA = append(res.SA, 0)
		}
		if in.WantRLSA {
			if !haveRun || c != prevChar {
				if haveRun {
					res.RunEnds = append(res.RunEnds, SAEntry{Idx: outIdx - 1, SA: prevSA})
				}
				res.RunStarts = append(res.RunStarts, SAEntry{Idx: outIdx, SA: sa})
				haveRun = true
			}
		}
		prevChar = c
		prevSA = sa
		outIdx++
	}

	emitFullPhrase := func(wordIdx, suflen int) error {
		rank := wordIdx + 1
		start, end := ilistRange(rank)
		for _, j := range in.IList[start:end] {
			if int(j) >= len(in.BWLast) {
				return fmt.Errorf("pfbwt: ilist entry %d out of range", j)
			}
			var sa uint64
			haveSA := false
			if (in.WantSA || in.WantRLSA) && wordIdx > 0 {
				sa = in.BWSai[j] - uint64(suflen)
				haveSA = true
			}
			emit(in.BWLast[j], sa, haveSA)
		}
		res.EasyCount++
		return nil
	}

	emitGroup := func(members []tuple, suflen int) error {
		allEqual := true
		for _, m := range members[1:] {
			if m.c != members[0].c {
				allEqual = false
				break
			}
		}
		byWord := make(map[int]bool)
		for _, m := range members {
			byWord[m.word] = true
		}
		if (allEqual && !in.WantSA) || len(byWord) == 1 {
			// easy case: every occurrence of every sharing phrase emits the
			// shared preceding character, in dictionary-word order.
			words := make([]int, 0, len(byWord))
			for w := range byWord {
				words = append(words, w)
			}
			slices.Sort(words)
			for _, w := range words {
				rank := w + 1
				start, end := ilistRange(rank)
				for _, j := range in.IList[start:end] {
					var sa uint64
					haveSA := false
					if (in.WantSA || in.WantRLSA) && w > 0 {
						sa = in.BWSai[j] - uint64(suflen)
						haveSA = true
					}
					emit(members[0].c, sa, haveSA)
				}
			}
			res.EasyCount++
			return nil
		}

		// hard case: sort all (c, j, word) tuples by j, the parse-BWT
		// order, which induces correct text order for the tied tails.
		all := make([]tuple, 0, len(members))
		for _, m := range members {
			rank := m.word + 1
			start, end := ilistRange(rank)
			for _, j := range in.IList[start:end] {
				all = append(all, tuple{c: m.c, j: j, word: m.word})
			}
		}
		slices.SortFunc(all, func(a, b tuple) bool { return a.j < b.j })
		for _, t := range all {
			var sa uint64
			haveSA := false
			if (in.WantSA || in.WantRLSA) && t.word > 0 {
				sa = in.BWSai[t.j] - uint64(suflen)
				haveSA = true
			}
			emit(t.c, sa, haveSA)
		}
		res.HardCount++
		return nil
	}

	i := 0
	n := len(gsa)
	for i < n {
		s := int(gsa[i])
		wordIdx, suflen, ok := locate(s)
		if !ok {
			i++
			continue
		}
		if suflen <= 0 {
			return nil, fmt.Errorf("pfbwt: non-positive suflen at gsa[%d]=%d", i, s)
		}
		phraseLen := len(in.Dict.Phrases[wordIdx])
		if suflen == phraseLen {
			if err := emitFullPhrase(wordIdx, suflen); err != nil {
				return nil, err
			}
			i++
			continue
		}
		if suflen > phraseLen {
			return nil, fmt.Errorf("pfbwt: suflen %d exceeds phrase length %d for word %d", suflen, phraseLen, wordIdx)
		}

		// shared-suffix case: gather the contiguous run of gsa rows whose
		// suffix shares this same suflen-length tail.
		j := i + 1
		for j < n && int(glcp[j]) >= suflen {
			j++
		}
		members := make([]tuple, 0, j-i)
		for k := i; k < j; k++ {
			sk := int(gsa[k])
			wk, suflenK, okK := locate(sk)
			if !okK {
				continue
			}
			if suflenK != suflen {
				return nil, fmt.Errorf("pfbwt: inconsistent suflen within shared-suffix group (%d vs %d)", suflenK, suflen)
			}
			var ck byte
			if sk > 0 {
				ck = text[sk-1]
			}
			members = append(members, tuple{c: ck, word: wk})
		}
		if len(members) == 0 {
			i = j
			continue
		}
		if err := emitGroup(members, suflen); err != nil {
			return nil, err
		}
		i = j
	}

	if in.WantRLSA && haveRun {
		res.RunEnds = append(res.RunEnds, SAEntry{Idx: outIdx - 1, SA: prevSA})
	}

	return res, nil
}
