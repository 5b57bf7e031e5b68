// Package dictionary defines the shared phrase/dictionary types used by the
// prefix-free parser and the prefix-free BWT builder, along with the two
// reserved sentinel bytes that the text alphabet must exclude.
package dictionary

import "sort"

const (
	// EndOfWord delimits phrases within a serialized dictionary.
	EndOfWord byte = 0x01
	// EndOfDict terminates a serialized dictionary.
	EndOfDict byte = 0x00
	// Dollar is the sentinel prepended/appended around the virtual text.
	// It must differ from EndOfDict: the last dictionary phrase carries
	// trailing Dollar bytes as ordinary content, and EndOfDict must remain
	// unambiguous as the dictionary-file terminator. 0x02 matches the
	// convention used by the family of bigbwt-style PFP tools this system
	// descends from.
	Dollar byte = 0x02
)

// Phrase is a single dictionary entry prior to sorting: its byte content
// and its occurrence count in the parse being built.
type Phrase struct {
	Bytes []byte
	Occ   uint64
}

// Dict is the finalized, sorted dictionary: phrases in bytewise
// lexicographic order, 1-based rank == index+1.
type Dict struct {
	Phrases [][]byte
	Occ     []uint64
}

// Len is the number of distinct phrases.
func (d *Dict) Len() int { return len(d.Phrases) }

// Rank returns the 1-based rank of phrase p, or 0 if absent.
func (d *Dict) Rank(p []byte) int {
	i := sort.Search(len(d.Phrases), func(i int) bool {
		return string(d.Phrases[i]) >= string(p)
	})
	if i < len(d.Phrases) && string(d.Phrases[i]) == string(p) {
		return i + 1
	}
	return 0
}

// SortPhrases builds a finalized, sorted Dict from an occurrence map keyed
// by phrase content.
func SortPhrases(freq map[string]uint64) *Dict {
	phrases := make([]string, 0, len(freq))
	for p := range freq {
		phrases = append(phrases, p)
	}
	sort.Strings(phrases)
	d := &Dict{
		Phrases: make([][]byte, len(phrases)),
		Occ:     make([]uint64, len(phrases)),
	}
	for i, p := range phrases {
		d.Phrases[i] = []byte(p)
		d.Occ[i] = freq[p]
	}
	return d
}

// Concat serializes the dictionary into the gSACA-K input format: each
// phrase followed by EndOfWord, then a final EndOfDict, and returns a bit mask
// (as a []bool) marking every EndOfWord/EndOfDict offset — the raw material
// for the dict_idx bit vector the pfbwt builder needs.
func (d *Dict) Concat() (text []byte, phraseEnd []bool) {
	total := 1 // EndOfDict
	for _, p := range d.Phrases {
		total += len(p) + 1 // + EndOfWord
	}
	text = make([]byte, 0, total)
	phraseEnd = make([]bool, 0, total)
	for _, p := range d.Phrases {
		text = append(text, p...)
		text = append(text, EndOfWord)
		for range p {
			phraseEnd = append(phraseEnd, false)
		}
		phraseEnd = append(phraseEnd, true)
	}
	text = append(text, EndOfDict)
	phraseEnd = append(phraseEnd, true)
	return text, phraseEnd
}

// ToFile serializes phrases, each followed by EndOfWord, then a final
// EndOfDict, matching P.dict on disk (§6).
func (d *Dict) ToFile() []byte {
	out, _ := d.Concat()
	return out
}

// FromFile parses a serialized dictionary of the P.dict form.
func FromFile(b []byte) [][]byte {
	var phrases [][]byte
	var cur []byte
	for _, c := range b {
		switch c {
		case EndOfDict:
			if len(cur) > 0 {
				phrases = append(phrases, cur)
			}
			return phrases
		case EndOfWord:
			phrases = append(phrases, cur)
			cur = nil
		default:
			cur = append(cur, c)
		}
	}
	return phrases
}
