// Package saca computes a generalized suffix array and LCP array over an
// integer-alphabet text. It plays the role the specification assigns to the
// external gSACA-K routine (§1: "treated as an opaque subroutine with
// documented signature") and is also reused, over the alphabet of
// dictionary ranks, to compute the BWT of the parse itself.
//
// The construction is prefix-doubling (Manber-Myers) with a final
// Kasai pass for the LCP array: O(n log n) rather than the linear-time
// SA-IS family the dsnet-compress/bzip2/internal/sais package in the
// retrieval pack demonstrates for byte alphabets. Prefix-doubling
// generalizes directly to the larger, non-byte alphabet of dictionary
// ranks (needed for the parse's own suffix array) without a second
// bespoke implementation, and its correctness is straightforward to
// reason about without running the code. See DESIGN.md for the
// grounding and the tradeoff.
package saca

import "sort"

// Compute returns the suffix array and LCP array of text. text must not
// contain the sentinel value used internally (callers append their own
// sentinel smaller than every other symbol, matching the dictionary's
// EndOfDict / rank-0 convention).
func Compute(text []int32) (sa []int32, lcp []int32) {
	n := len(text)
	sa = make([]int32, n)
	if n == 0 {
		return sa, nil
	}
	rank := make([]int32, n)
	tmp := make([]int32, n)
	for i := 0; i < n; i++ {
		sa[i] = int32(i)
		rank[i] = text[i]
	}

	less := func(k int32) func(a, b int32) bool {
		return func(a, b int32) bool {
			if rank[a] != rank[b] {
				return rank[a] < rank[b]
			}
			ra, rb := int32(-1), int32(-1)
			if int(a+k) < n {
				ra = rank[a+k]
			}
			if int(b+k) < n {
				rb = rank[b+k]
			}
			return ra < rb
		}
	}

	for k := int32(1); ; k *= 2 {
		cmp := less(k)
		sort.Slice(sa, func(i, j int) bool { return cmp(sa[i], sa[j]) })

		tmp[sa[0]] = 0
		for i := 1; i < n; i++ {
			tmp[sa[i]] = tmp[sa[i-1]]
			if cmp(sa[i-1], sa[i]) {
				tmp[sa[i]]++
			}
		}
		copy(rank, tmp)

		if int(rank[sa[n-1]]) == n-1 {
			break
		}
		if int(k) >= n {
			break
		}
	}

	lcp = kasai(text, sa, rank)
	return sa, lcp
}

// kasai computes the LCP array in linear time given the text, its suffix
// array, and the inverse suffix array (rank).
func kasai(text []int32, sa, rank []int32) []int32 {
	n := len(text)
	lcp := make([]int32, n)
	if n == 0 {
		return lcp
	}
	h := int32(0)
	for i := 0; i < n; i++ {
		if rank[i] > 0 {
			j := int(sa[rank[i]-1])
			for int(i)+int(h) < n && j+int(h) < n && text[int(i)+int(h)] == text[j+int(h)] {
				h++
			}
			lcp[rank[i]] = h
			if h > 0 {
				h--
			}
		} else {
			h = 0
		}
	}
	return lcp
}

// ComputeBytes is a convenience wrapper for byte-alphabet text (the
// dictionary's concatenated phrase bytes).
func ComputeBytes(text []byte) (sa []int32, lcp []int32) {
	t := make([]int32, len(text))
	for i, b := range text {
		t[i] = int32(b)
	}
	return Compute(t)
}
