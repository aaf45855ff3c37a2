package bitpack

import "testing"

func TestGetSetRoundTrip(t *testing.T) {
	for _, bpp := range []uint{1, 2, 4, 8} {
		bpp := bpp
		t.Run(string(rune('0'+bpp)), func(t *testing.T) {
			n := 1000
			a := New(n, bpp)
			max := uint32(1)<<bpp - 1
			for i := 0; i < n; i++ {
				v := uint32(i) & max
				a.Set(i, v)
			}
			for i := 0; i < n; i++ {
				want := uint32(i) & max
				if got := a.Get(i); got != want {
					t.Fatalf("bpp=%d index=%d: got %d want %d", bpp, i, got, want)
				}
			}
		})
	}
}

func TestStraddlesWordBoundary(t *testing.T) {
	// bpp=5 doesn't divide 64 evenly, so several entries straddle a
	// 64-bit word boundary.
	b := New(20, 5)
	for i := 0; i < 20; i++ {
		b.Set(i, uint32(i+1)&0x1F)
	}
	for i := 0; i < 20; i++ {
		want := uint32(i+1) & 0x1F
		if got := b.Get(i); got != want {
			t.Fatalf("straddle index=%d: got %d want %d", i, got, want)
		}
	}
}

func TestResetDiscardsContents(t *testing.T) {
	a := New(10, 8)
	a.Set(0, 200)
	a.Reset(10, 8)
	if got := a.Get(0); got != 0 {
		t.Fatalf("expected zeroed array after reset, got %d", got)
	}
}

func TestInvalidBppPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for bpp=0")
		}
	}()
	New(4, 0)
}

func TestOutOfRangeIndexPanics(t *testing.T) {
	a := New(4, 8)
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for out-of-range index")
		}
	}()
	a.Get(4)
}
