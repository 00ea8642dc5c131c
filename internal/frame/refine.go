package frame

import "iter"

// refineFrames3 finalizes candidates for the three-call era. Input frames sit
// at the level-calculation step; the slot value lives one step further back.
// Frames that carry no lead requirement are queued and expanded into the
// lead-variant hypotheses after all base frames have been emitted.
func (g *Generator) refineFrames3(frames iter.Seq[Frame]) iter.Seq[Frame] {
	return func(yield func(Frame) bool) {
		var queued []Frame
		for f := range frames {
			prev := g.rng.Prev(f.Seed)
			if !yield(g.frameESV(prev, f.Lead, prev>>16)) {
				return
			}
			if f.Lead != LeadNone || !g.allowLeads {
				continue
			}
			queued = append(queued, f)
		}
		for _, f := range queued {
			if !g.leadVariants3(f, yield) {
				return
			}
		}
	}
}

// leadVariants3 emits the alternative hypotheses for one queued frame. Each
// lead inserts its proc call at a different point of the fixed slot/level/
// nature sequence, so the slot value is re-derived per hypothesis.
func (g *Generator) leadVariants3(f Frame, yield func(Frame) bool) bool {
	prev0 := f.Seed
	prev1 := g.rng.Prev(prev0)
	prev2 := g.rng.Prev(prev1)
	p0 := prev0 >> 16
	p1 := prev1 >> 16
	p2 := prev2 >> 16

	// Pressure, Hustle and Vital Spirit force the slot's maximum level. The
	// call pattern is the same whether the proc lands or not, so both
	// outcomes reuse the same position.
	if p0&1 == 1 {
		if !yield(g.frameESV(prev2, LeadPressureHustleSpirit, p2)) {
			return false
		}
		// Intimidate and Keen Eye are observationally identical to a landed
		// max-level proc.
		if !yield(g.frameESV(prev2, LeadIntimidateKeenEye, p2)) {
			return false
		}
	} else {
		if !yield(g.frameESV(prev2, LeadPressureHustleSpiritFail, p2)) {
			return false
		}
	}

	lead := LeadCuteCharmFail
	if p1%3 != 0 {
		lead = LeadCuteCharm
	}
	if !yield(g.frameESV(prev2, lead, p2)) {
		return false
	}

	// Static and Magnet Pull force the species pool; a failed proc is
	// indistinguishable from the default frame and is never emitted.
	if p2&1 == 0 {
		if !yield(g.frameESV(prev2, LeadStaticMagnet, p1)) {
			return false
		}
	}
	return true
}

// refineFrames4 finalizes candidates for the two-call era. Input frames sit
// directly on the slot roll. Intimidate/Keen Eye and Pressure/Hustle/Vital
// Spirit do not change the call count in this era, so both are always offered
// for queued frames; Static/Magnet Pull additionally requires its proc bit.
func (g *Generator) refineFrames4(frames iter.Seq[Frame]) iter.Seq[Frame] {
	return func(yield func(Frame) bool) {
		var queued []Frame
		for f := range frames {
			if !yield(g.frameESV(f.Seed, f.Lead, f.Seed>>16)) {
				return
			}
			if f.Lead != LeadNone || !g.allowLeads {
				continue
			}
			queued = append(queued, f)
		}
		for _, f := range queued {
			prev := g.rng.Prev(f.Seed)
			p16 := prev >> 16
			if !yield(g.frameESV(prev, LeadIntimidateKeenEye, p16)) {
				return
			}
			if !yield(g.frameESV(prev, LeadPressureHustleSpirit, p16)) {
				return
			}
			if !g.ops.forceSlot(p16) {
				continue
			}
			// The forced slot still reads the original roll.
			if !yield(g.frameESV(prev, LeadStaticMagnet, f.Seed>>16)) {
				return
			}
		}
	}
}
