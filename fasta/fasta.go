// Package fasta provides the external-collaborator FASTA sequence iterator
// named in §2 row F: a stream of (name, bases) records. Adapted from the
// bufio.Scanner-based parser this module's ambient stack already uses
// elsewhere for line-oriented bioinformatics formats.
package fasta

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
)

// Record is one FASTA entry: a header name and its base sequence.
type Record struct {
	Name  string
	Bases string
}

// Parser streams Records from a FASTA-formatted reader.
type Parser struct {
	buff    bytes.Buffer
	header  string
	start   bool
	scanner *bufio.Scanner
	line    int
	more    bool
}

// NewParser wraps r for sequential FASTA record reading.
func NewParser(r io.Reader) *Parser {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)
	return &Parser{
		start:   true,
		more:    true,
		scanner: s,
	}
}

// Lines returns the number of lines consumed so far.
func (p *Parser) Lines() int { return p.line }

// HasNext reports whether Next can still produce a record.
func (p *Parser) HasNext() bool { return p.more }

func (p *Parser) newRecord() Record {
	r := Record{Name: p.header, Bases: p.buff.String()}
	p.buff.Reset()
	return r
}

// Next returns the next record, or an error if the input is malformed.
func (p *Parser) Next() (Record, error) {
	for p.scanner.Scan() {
		line := p.scanner.Bytes()
		p.line++
		switch {
		case len(line) == 0:
			continue
		case line[0] == ';':
			continue
		case line[0] != '>' && p.start:
			rec := p.newRecord()
			return rec, fmt.Errorf("fasta: missing sequence header before line %d", p.line)
		case line[0] != '>':
			p.buff.Write(line)
		case line[0] == '>' && !p.start:
			rec := p.newRecord()
			p.header = string(line[1:])
			return rec, nil
		case line[0] == '>' && p.start:
			p.header = string(line[1:])
			p.start = false
		}
	}
	p.more = false
	rec := p.newRecord()
	return rec, p.scanner.Err()
}

// ParseAll reads every record from r.
func ParseAll(r io.Reader) ([]Record, error) {
	var out []Record
	p := NewParser(r)
	for p.HasNext() {
		rec, err := p.Next()
		if err != nil {
			return out, err
		}
		if rec.Name == "" && rec.Bases == "" {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}
