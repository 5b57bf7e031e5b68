package bytearray

import (
	"path/filepath"
	"testing"
)

func TestHeapGetSet(t *testing.T) {
	h := NewHeap(4)
	if h.Len() != 4 {
		t.Fatalf("Len() = %d, want 4", h.Len())
	}
	h.Set(2, 99)
	if got := h.Get(2); got != 99 {
		t.Errorf("Get(2) = %d, want 99", got)
	}
	if got := h.Get(0); got != 0 {
		t.Errorf("Get(0) = %d, want 0", got)
	}
	if err := h.Close(); err != nil {
		t.Errorf("Close() = %v, want nil", err)
	}
}

func TestNewHeapFromWrapsWithoutCopy(t *testing.T) {
	data := []uint64{1, 2, 3}
	h := NewHeapFrom(data)
	h.Set(0, 42)
	if data[0] != 42 {
		t.Error("NewHeapFrom should wrap the slice, not copy it")
	}
}

func TestMappedRoundTrip8Byte(t *testing.T) {
	path := filepath.Join(t.TempDir(), "arr.bin")
	const n = 5
	w, err := CreateMapped(path, 8, n)
	if err != nil {
		t.Fatalf("CreateMapped: %v", err)
	}
	for i := 0; i < n; i++ {
		w.Set(i, uint64(i*1000))
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	r, err := OpenMapped(path, 8, n)
	if err != nil {
		t.Fatalf("OpenMapped: %v", err)
	}
	defer r.Close()
	for i := 0; i < n; i++ {
		if got := r.Get(i); got != uint64(i*1000) {
			t.Errorf("Get(%d) = %d, want %d", i, got, i*1000)
		}
	}
}

func TestMappedRoundTrip4Byte(t *testing.T) {
	path := filepath.Join(t.TempDir(), "arr32.bin")
	const n = 3
	w, err := CreateMapped(path, 4, n)
	if err != nil {
		t.Fatalf("CreateMapped: %v", err)
	}
	w.Set(0, 1)
	w.Set(1, 0xFFFFFFFF)
	w.Set(2, 7)
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	r, err := OpenMapped(path, 4, n)
	if err != nil {
		t.Fatalf("OpenMapped: %v", err)
	}
	defer r.Close()
	if got := r.Get(1); got != 0xFFFFFFFF {
		t.Errorf("Get(1) = %d, want 0xFFFFFFFF", got)
	}
}

func TestMappedSetOnReadOnlyPanics(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ro.bin")
	w, err := CreateMapped(path, 8, 1)
	if err != nil {
		t.Fatalf("CreateMapped: %v", err)
	}
	w.Set(0, 5)
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	r, err := OpenMapped(path, 8, 1)
	if err != nil {
		t.Fatalf("OpenMapped: %v", err)
	}
	defer r.Close()

	defer func() {
		if recover() == nil {
			t.Error("Set on read-only mapped array did not panic")
		}
	}()
	r.Set(0, 1)
}

func TestOpenMappedRejectsShortFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "short.bin")
	w, err := CreateMapped(path, 8, 1)
	if err != nil {
		t.Fatalf("CreateMapped: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := OpenMapped(path, 8, 5); err == nil {
		t.Error("OpenMapped should reject a file too short for the requested word count")
	}
}
