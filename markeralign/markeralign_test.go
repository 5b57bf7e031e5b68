package markeralign

import (
	"testing"

	"github.com/TimothyStiles/pfbwt/marker"
	"github.com/TimothyStiles/pfbwt/markerwriter"
	"github.com/TimothyStiles/pfbwt/rlewindow"
)

func TestAlignGroupsConsecutiveEqualVectorsByBWTIndex(t *testing.T) {
	m := marker.New(7, 1, 0)
	store, err := rlewindow.Build(5, []markerwriter.Run{
		{Start: 1, End: 3, Markers: []marker.Marker{m}},
	})
	if err != nil {
		t.Fatalf("rlewindow.Build: %v", err)
	}

	sa := []uint64{4, 2, 0, 3, 1}
	runs, err := Align(sa, store)
	if err != nil {
		t.Fatalf("Align: %v", err)
	}

	want := []markerwriter.Run{
		{Start: 1, End: 1, Markers: []marker.Marker{m}},
		{Start: 3, End: 4, Markers: []marker.Marker{m}},
	}
	if len(runs) != len(want) {
		t.Fatalf("got %d runs, want %d: %+v", len(runs), len(want), runs)
	}
	for i := range want {
		if runs[i].Start != want[i].Start || runs[i].End != want[i].End {
			t.Errorf("run %d: got [%d,%d], want [%d,%d]", i, runs[i].Start, runs[i].End, want[i].Start, want[i].End)
		}
		if !marker.Equal(runs[i].Markers, want[i].Markers) {
			t.Errorf("run %d: got markers %v, want %v", i, runs[i].Markers, want[i].Markers)
		}
	}
}

func TestAlignAllEmptyProducesNoRuns(t *testing.T) {
	store, err := rlewindow.Build(3, nil)
	if err != nil {
		t.Fatalf("rlewindow.Build: %v", err)
	}
	runs, err := Align([]uint64{0, 1, 2}, store)
	if err != nil {
		t.Fatalf("Align: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("runs = %+v, want empty", runs)
	}
}
