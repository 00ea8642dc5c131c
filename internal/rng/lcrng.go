// Package rng implements the 32-bit linear congruential generator used by
// the handheld console games whose encounters this engine reconstructs.
// The generator is invertible: Prev undoes Next exactly, which is what makes
// walking a recorded creature's state history backward possible.
package rng

// Forward and reverse LCG parameters. The reverse multiplier is the modular
// inverse of the forward multiplier over 2^32.
const (
	multNext = 0x41C64E6D
	addNext  = 0x6073
	multPrev = 0xEEB9EB65
	addPrev  = 0x0A3561A1
)

// LCRNG is a stateless stepper over 32-bit generator states. A nil *LCRNG is
// used by callers as the "nothing to search" signal, so the methods are
// deliberately kept on the pointer type.
type LCRNG struct {
	mult, add   uint32
	rmult, radd uint32
}

// Standard is the generator shared by every supported generation era.
var Standard = &LCRNG{
	mult: multNext, add: addNext,
	rmult: multPrev, radd: addPrev,
}

// Next advances the state by one step.
func (r *LCRNG) Next(s uint32) uint32 {
	return s*r.mult + r.add
}

// Prev rewinds the state by one step.
func (r *LCRNG) Prev(s uint32) uint32 {
	return s*r.rmult + r.radd
}

// Advance steps the state forward n times.
func (r *LCRNG) Advance(s uint32, n int) uint32 {
	for i := 0; i < n; i++ {
		s = r.Next(s)
	}
	return s
}

// Reverse steps the state backward n times.
func (r *LCRNG) Reverse(s uint32, n int) uint32 {
	for i := 0; i < n; i++ {
		s = r.Prev(s)
	}
	return s
}

// Top16 is the observable output of a state: its upper 16 bits.
func Top16(s uint32) uint32 {
	return s >> 16
}
