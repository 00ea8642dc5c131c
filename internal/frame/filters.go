package frame

import "iter"

// filterNatureSync keeps the seeds that are genuine nature-determination or
// Synchronize-lead points and positions a frame one step before the nature
// roll. One input seed can yield up to three frames: the failed-Synchronize
// variant, the Synchronize variant, and the plain (or Cute-Charm-unrolled)
// variant, in that order.
func (g *Generator) filterNatureSync(seeds iter.Seq[SeedInfo]) iter.Seq[Frame] {
	return func(yield func(Frame) bool) {
		for info := range seeds {
			s := info.Seed
			rand := s >> 16

			sync := g.allowLeads && !info.Charm3 && g.ops.syncBit(rand) == 0
			reg := g.ops.nature(rand) == g.nature
			if !sync && !reg {
				continue
			}

			prev := g.rng.Prev(s)
			if g.allowLeads && reg {
				// A failed Synchronize proc consumes one extra call before
				// falling through to the regular nature roll.
				if g.ops.syncFailed(prev) {
					if !yield(g.frame(g.rng.Prev(prev), LeadSynchronizeFail)) {
						return
					}
				}
			}
			if sync {
				if !yield(g.frame(prev, LeadSynchronize)) {
					return
				}
			}
			if reg {
				lead := LeadNone
				if info.Charm3 {
					lead = LeadCuteCharm
				}
				if !yield(g.frame(prev, lead)) {
					return
				}
			}
		}
	}
}

// filterCuteCharm keeps the seeds whose nature matches and whose predecessor
// passes the Cute-Charm proc test. A failed proc is indistinguishable from
// the unmodified frame, so it is dropped here rather than emitted as a fail
// variant; the plain frame for that position comes out of the other filter.
func (g *Generator) filterCuteCharm(seeds iter.Seq[SeedInfo]) iter.Seq[Frame] {
	return func(yield func(Frame) bool) {
		for info := range seeds {
			s := info.Seed
			if g.ops.nature(s>>16) != g.nature {
				continue
			}

			prev := g.rng.Prev(s)
			if !g.ops.charmProc(prev >> 16) {
				continue
			}

			if !yield(g.frame(prev, LeadCuteCharm)) {
				return
			}
		}
	}
}
