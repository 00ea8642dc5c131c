package rng

import "testing"

// Known sequence from state 0, verified against the documented generator
// constants.
var forwardFromZero = []uint32{
	0x00006073,
	0xE97E7B6A,
	0x52713895,
	0x31B0DDE4,
	0x8E425287,
	0xE2CCA5EE,
}

func TestNextKnownSequence(t *testing.T) {
	s := uint32(0)
	for i, want := range forwardFromZero {
		s = Standard.Next(s)
		if s != want {
			t.Fatalf("step %d: got %08X, want %08X", i, s, want)
		}
	}
}

func TestPrevInvertsNext(t *testing.T) {
	seeds := []uint32{0, 1, 0x12345678, 0xDEADBEEF, 0xFFFFFFFF, 0x80000000}
	for _, s := range seeds {
		if got := Standard.Prev(Standard.Next(s)); got != s {
			t.Errorf("Prev(Next(%08X)) = %08X, want identity", s, got)
		}
		if got := Standard.Next(Standard.Prev(s)); got != s {
			t.Errorf("Next(Prev(%08X)) = %08X, want identity", s, got)
		}
	}
}

func TestAdvanceReverse(t *testing.T) {
	const start = uint32(0xDEADBEEF)
	const n = 17
	forward := Standard.Advance(start, n)
	if got := Standard.Reverse(forward, n); got != start {
		t.Fatalf("Reverse(Advance(s, %d), %d) = %08X, want %08X", n, n, got, start)
	}

	// Advance must agree with repeated Next.
	s := start
	for i := 0; i < n; i++ {
		s = Standard.Next(s)
	}
	if s != forward {
		t.Fatalf("Advance = %08X, stepped = %08X", forward, s)
	}
}

func TestTop16(t *testing.T) {
	if got := Top16(0xABCD1234); got != 0xABCD {
		t.Fatalf("Top16(ABCD1234) = %04X, want ABCD", got)
	}
	if got := Top16(0x0000FFFF); got != 0 {
		t.Fatalf("Top16(0000FFFF) = %04X, want 0", got)
	}
}
