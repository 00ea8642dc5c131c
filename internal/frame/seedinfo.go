package frame

import (
	"iter"

	"github.com/solleo1989/framefinder/internal/pidiv"
)

// SeedsUntilNature walks the generator backward from the derivation's origin
// seed, yielding every state that could precede the recorded creature. Each
// backward pair of outputs is reassembled into a candidate PID; once a PID of
// the target nature is passed the walk stops, which bounds every downstream
// sequence. States reached through a Cute-Charm gender lock are flagged so
// the nature filter can tell them apart from plain candidates.
func SeedsUntilNature(g *Generator, p pidiv.Result, e pidiv.Entity) iter.Seq[SeedInfo] {
	return func(yield func(SeedInfo) bool) {
		r := g.rng
		reversed := p.Type.IsReversedPID()
		charm3 := false

		seed := p.OriginSeed
		if !yield(SeedInfo{Seed: seed}) {
			return
		}

		s1 := seed
		s2 := r.Prev(s1)
		for {
			a := s2 >> 16
			b := s1 >> 16

			pid := b<<16 | a
			if reversed {
				pid = a<<16 | b
			}

			if pid%25 == g.nature {
				if g.frameType == TypeMethodH && charmGenderLocked(pid, e.GenderRatio) {
					// A gender-locked match is only reachable under Cute
					// Charm; keep walking but flag the states behind it.
					charm3 = true
				} else {
					// A plain same-nature PID ends the reverse walk.
					return
				}
			}

			s1 = r.Prev(s2)
			s2 = r.Prev(s1)
			if !yield(SeedInfo{Seed: s1, Charm3: charm3}) {
				return
			}
		}
	}
}

// charmGenderLocked reports whether the candidate PID's gender byte falls
// under the species threshold, i.e. the PID only matches if Cute Charm forced
// the gender. Fixed-gender and genderless species cannot be locked.
func charmGenderLocked(pid uint32, ratio uint8) bool {
	switch ratio {
	case 0, 254, 255:
		return false
	}
	return uint8(pid&0xFF) < ratio
}
