package dictionary

import "testing"

func TestSortPhrasesOrdersAndRanks(t *testing.T) {
	freq := map[string]uint64{
		"banana": 2,
		"apple":  1,
		"cherry": 3,
	}
	d := SortPhrases(freq)
	if d.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", d.Len())
	}
	want := []string{"apple", "banana", "cherry"}
	for i, w := range want {
		if string(d.Phrases[i]) != w {
			t.Errorf("Phrases[%d] = %q, want %q", i, d.Phrases[i], w)
		}
	}
	if d.Occ[0] != 1 || d.Occ[1] != 2 || d.Occ[2] != 3 {
		t.Errorf("Occ = %v, want [1 2 3]", d.Occ)
	}
}

func TestRankIsOneBasedSortPosition(t *testing.T) {
	d := SortPhrases(map[string]uint64{"a": 1, "b": 1, "c": 1})
	for i, p := range d.Phrases {
		if got := d.Rank(p); got != i+1 {
			t.Errorf("Rank(%q) = %d, want %d", p, got, i+1)
		}
	}
	if got := d.Rank([]byte("missing")); got != 0 {
		t.Errorf("Rank(missing) = %d, want 0", got)
	}
}

func TestConcatSeparatesAndTerminates(t *testing.T) {
	d := SortPhrases(map[string]uint64{"ab": 1, "cd": 1})
	text, phraseEnd := d.Concat()
	if len(text) != len(phraseEnd) {
		t.Fatalf("text/phraseEnd length mismatch: %d vs %d", len(text), len(phraseEnd))
	}
	if text[len(text)-1] != EndOfDict {
		t.Errorf("last byte = %x, want EndOfDict", text[len(text)-1])
	}
	if !phraseEnd[len(phraseEnd)-1] {
		t.Error("last phraseEnd bit should be set (EndOfDict)")
	}
	// "ab" EndOfWord "cd" EndOfWord EndOfDict
	want := []byte{'a', 'b', EndOfWord, 'c', 'd', EndOfWord, EndOfDict}
	if string(text) != string(want) {
		t.Errorf("Concat() text = %v, want %v", text, want)
	}
}

func TestFromFileRoundTrip(t *testing.T) {
	d := SortPhrases(map[string]uint64{"phraseone": 1, "phrasetwo": 1, "z": 1})
	encoded := d.ToFile()
	phrases := FromFile(encoded)
	if len(phrases) != len(d.Phrases) {
		t.Fatalf("FromFile returned %d phrases, want %d", len(phrases), len(d.Phrases))
	}
	for i := range phrases {
		if string(phrases[i]) != string(d.Phrases[i]) {
			t.Errorf("phrase %d = %q, want %q", i, phrases[i], d.Phrases[i])
		}
	}
}

func TestSentinelValuesAreDistinctAndBelowAlphabet(t *testing.T) {
	if EndOfDict != 0x00 {
		t.Errorf("EndOfDict = %#x, want 0x00", EndOfDict)
	}
	if EndOfWord != 0x01 {
		t.Errorf("EndOfWord = %#x, want 0x01", EndOfWord)
	}
	if EndOfDict == EndOfWord || EndOfDict == Dollar || EndOfWord == Dollar {
		t.Error("sentinel bytes must be pairwise distinct")
	}
}
