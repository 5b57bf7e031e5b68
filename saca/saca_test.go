package saca

import (
	"sort"
	"testing"
)

func TestComputeBytesBanana(t *testing.T) {
	// "banana$" — the classic suffix array example, with '$' as the
	// lowest-valued sentinel.
	text := []byte("banana$")
	sa, lcp := ComputeBytes(text)
	wantSA := []int32{6, 5, 3, 1, 0, 4, 2}
	if len(sa) != len(wantSA) {
		t.Fatalf("len(sa) = %d, want %d", len(sa), len(wantSA))
	}
	for i := range wantSA {
		if sa[i] != wantSA[i] {
			t.Errorf("sa[%d] = %d, want %d (suffix %q)", i, sa[i], wantSA[i], text[sa[i]:])
		}
	}
	if len(lcp) != len(text) {
		t.Fatalf("len(lcp) = %d, want %d", len(lcp), len(text))
	}
	if lcp[0] != 0 {
		t.Errorf("lcp[0] = %d, want 0", lcp[0])
	}
}

func TestComputeSuffixArrayIsASortPermutation(t *testing.T) {
	text := []int32{3, 1, 4, 1, 5, 9, 2, 6, 0}
	sa, _ := Compute(text)
	if len(sa) != len(text) {
		t.Fatalf("len(sa) = %d, want %d", len(sa), len(text))
	}
	seen := make(map[int32]bool)
	for _, idx := range sa {
		seen[idx] = true
	}
	if len(seen) != len(text) {
		t.Fatalf("sa is not a permutation of [0,%d): saw %d distinct indices", len(text), len(seen))
	}
	for i := 1; i < len(sa); i++ {
		if !suffixLess(text, sa[i-1], sa[i]) && !suffixEqual(text, sa[i-1], sa[i]) {
			t.Errorf("suffix at sa[%d]=%d is not <= suffix at sa[%d]=%d", i-1, sa[i-1], i, sa[i])
		}
	}
}

func TestComputeEmptyText(t *testing.T) {
	sa, lcp := Compute(nil)
	if len(sa) != 0 {
		t.Errorf("sa = %v, want empty", sa)
	}
	if lcp != nil {
		t.Errorf("lcp = %v, want nil", lcp)
	}
}

func TestComputeSingleSymbol(t *testing.T) {
	sa, lcp := Compute([]int32{5})
	if len(sa) != 1 || sa[0] != 0 {
		t.Errorf("sa = %v, want [0]", sa)
	}
	if len(lcp) != 1 || lcp[0] != 0 {
		t.Errorf("lcp = %v, want [0]", lcp)
	}
}

func suffixLess(text []int32, a, b int32) bool {
	for int(a) < len(text) && int(b) < len(text) {
		if text[a] != text[b] {
			return text[a] < text[b]
		}
		a++
		b++
	}
	return int(a) == len(text) && int(b) != len(text)
}

func suffixEqual(text []int32, a, b int32) bool {
	return a == b
}

func TestSortedOrderMatchesStdlibOnBytes(t *testing.T) {
	text := []byte("mississippi$")
	sa, _ := ComputeBytes(text)
	suffixes := make([]string, len(text))
	for i := range text {
		suffixes[i] = string(text[i:])
	}
	sortedSuffixes := append([]string(nil), suffixes...)
	sort.Strings(sortedSuffixes)

	for i, idx := range sa {
		if string(text[idx:]) != sortedSuffixes[i] {
			t.Errorf("sa[%d] gives suffix %q, want %q", i, text[idx:], sortedSuffixes[i])
		}
	}
}
