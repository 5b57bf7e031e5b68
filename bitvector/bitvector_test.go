package bitvector

import "testing"

func TestSetGet(t *testing.T) {
	bv := New(10)
	bv.Set(0, true)
	bv.Set(9, true)
	bv.Set(4, true)

	for i := 0; i < 10; i++ {
		want := i == 0 || i == 9 || i == 4
		if got := bv.Get(i); got != want {
			t.Errorf("Get(%d) = %v, want %v", i, got, want)
		}
	}
}

func TestGetPanicsOutOfBounds(t *testing.T) {
	bv := New(4)
	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic on out-of-bounds Get")
		}
	}()
	bv.Get(4)
}

func buildFromString(s string) BitVector {
	bv := New(len(s))
	for i, c := range s {
		bv.Set(i, c == '1')
	}
	return bv
}

func TestRankOnes(t *testing.T) {
	bv := buildFromString("1011010001011101")
	rsa := NewRSA(bv)

	cases := []struct {
		i    int
		want int
	}{
		{0, 0},
		{1, 1},
		{2, 1},
		{3, 2},
		{4, 3},
		{16, 9},
	}
	for _, c := range cases {
		if got := rsa.Rank(true, c.i); got != c.want {
			t.Errorf("Rank(true, %d) = %d, want %d", c.i, got, c.want)
		}
	}
}

func TestRankZeros(t *testing.T) {
	bv := buildFromString("1011010001011101")
	rsa := NewRSA(bv)
	for i := 0; i <= bv.Len(); i++ {
		ones := rsa.Rank(true, i)
		zeros := rsa.Rank(false, i)
		if ones+zeros != i {
			t.Errorf("Rank(true,%d)+Rank(false,%d) = %d, want %d", i, i, ones+zeros, i)
		}
	}
}

func TestSelectRoundTrip(t *testing.T) {
	bv := buildFromString("1011010001011101")
	rsa := NewRSA(bv)

	onesSeen := 0
	for i := 0; i < bv.Len(); i++ {
		if bv.Get(i) {
			onesSeen++
			pos, ok := rsa.Select(true, onesSeen)
			if !ok {
				t.Fatalf("Select(true, %d) not found", onesSeen)
			}
			if pos != i {
				t.Errorf("Select(true, %d) = %d, want %d", onesSeen, pos, i)
			}
		}
	}
}

func TestAccessMatchesGet(t *testing.T) {
	bv := buildFromString("110010")
	rsa := NewRSA(bv)
	for i := 0; i < bv.Len(); i++ {
		if rsa.Access(i) != bv.Get(i) {
			t.Errorf("Access(%d) != Get(%d)", i, i)
		}
	}
}

func TestRankOverLargeVector(t *testing.T) {
	n := 1000
	bv := New(n)
	for i := 0; i < n; i++ {
		bv.Set(i, i%7 == 0)
	}
	rsa := NewRSA(bv)
	want := 0
	for i := 0; i <= n; i++ {
		if got := rsa.Rank(true, i); got != want {
			t.Fatalf("Rank(true, %d) = %d, want %d", i, got, want)
		}
		if i < n && i%7 == 0 {
			want++
		}
	}
}
