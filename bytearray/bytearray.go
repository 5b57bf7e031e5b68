// Package bytearray provides a uniform view over a fixed-word-size sequence
// backed either by heap memory or by a memory-mapped file, matching the
// "polymorphism over storage" design note: a single interface with
// heap-backed and file-backed variants, the latter guaranteeing flush-on-close.
package bytearray

import (
	"encoding/binary"
	"fmt"
	"os"

	"github.com/edsrzf/mmap-go"
)

// Array is a word-sized storage abstraction: stable indexed get/set, a
// length, and a guaranteed flush on Close for writable file-backed
// variants. The pfbwt builder and the bitvector package hold their data in
// plain slices and do not use it.
type Array interface {
	Len() int
	Get(i int) uint64
	Set(i int, v uint64) // panics on read-only arrays
	Close() error
}

// Heap is an in-memory, word-sized Array.
type Heap struct {
	data []uint64
}

// NewHeap allocates a zeroed heap-backed array of n words.
func NewHeap(n int) *Heap {
	return &Heap{data: make([]uint64, n)}
}

// NewHeapFrom wraps an existing slice without copying.
func NewHeapFrom(data []uint64) *Heap {
	return &Heap{data: data}
}

func (h *Heap) Len() int { return len(h.data) }

func (h *Heap) Get(i int) uint64 { return h.data[i] }

func (h *Heap) Set(i int, v uint64) { h.data[i] = v }

func (h *Heap) Close() error { return nil }

// Mapped is a memory-mapped, word-sized Array, for artifacts too large to
// hold in heap memory. The build command's external-memory flag does not
// select it.
type Mapped struct {
	file     *os.File
	mapping  mmap.MMap
	wordSize int
	n        int
	readOnly bool
}

// OpenMapped memory-maps an existing file of n words of wordSize bytes
// each (4 or 8), for read-only access.
func OpenMapped(path string, wordSize, n int) (*Mapped, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("bytearray: open %s: %w", path, err)
	}
	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("bytearray: mmap %s: %w", path, err)
	}
	if len(m) < n*wordSize {
		m.Unmap()
		f.Close()
		return nil, fmt.Errorf("bytearray: %s too short for %d words of size %d", path, n, wordSize)
	}
	return &Mapped{file: f, mapping: m, wordSize: wordSize, n: n, readOnly: true}, nil
}

// CreateMapped creates (or truncates) a file of n words of wordSize bytes
// and memory-maps it read-write, for writable external-memory arrays.
func CreateMapped(path string, wordSize, n int) (*Mapped, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("bytearray: create %s: %w", path, err)
	}
	if err := f.Truncate(int64(n * wordSize)); err != nil {
		f.Close()
		return nil, fmt.Errorf("bytearray: truncate %s: %w", path, err)
	}
	m, err := mmap.Map(f, mmap.RDWR, 0)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("bytearray: mmap %s: %w", path, err)
	}
	return &Mapped{file: f, mapping: m, wordSize: wordSize, n: n}, nil
}

func (m *Mapped) Len() int { return m.n }

func (m *Mapped) Get(i int) uint64 {
	off := i * m.wordSize
	switch m.wordSize {
	case 4:
		return uint64(binary.LittleEndian.Uint32(m.mapping[off : off+4]))
	case 8:
		return binary.LittleEndian.Uint64(m.mapping[off : off+8])
	default:
		panic(fmt.Sprintf("bytearray: unsupported word size %d", m.wordSize))
	}
}

func (m *Mapped) Set(i int, v uint64) {
	if m.readOnly {
		panic("bytearray: Set on read-only mapped array")
	}
	off := i * m.wordSize
	switch m.wordSize {
	case 4:
		binary.LittleEndian.PutUint32(m.mapping[off:off+4], uint32(v))
	case 8:
		binary.LittleEndian.PutUint64(m.mapping[off:off+8], v)
	default:
		panic(fmt.Sprintf("bytearray: unsupported word size %d", m.wordSize))
	}
}

// Close flushes buffered writes to the backing file (if writable) and
// releases the mapping, guaranteeing durability before release as required
// by the resource-scoping design note.
func (m *Mapped) Close() error {
	if !m.readOnly {
		if err := m.mapping.Flush(); err != nil {
			return fmt.Errorf("bytearray: flush: %w", err)
		}
	}
	if err := m.mapping.Unmap(); err != nil {
		return fmt.Errorf("bytearray: unmap: %w", err)
	}
	return m.file.Close()
}
