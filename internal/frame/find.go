package frame

import (
	"iter"

	"github.com/solleo1989/framefinder/internal/pidiv"
)

// Find enumerates every candidate generator position consistent with the
// classified derivation and the creature record. The sequence is lazy, finite
// and deterministic: identical inputs produce identical frames in identical
// order, and stopping early stops all upstream work. An unclassifiable input
// yields an empty sequence rather than an error.
func Find(p pidiv.Result, e pidiv.Entity) iter.Seq[Frame] {
	if p.RNG == nil {
		return emptySeq
	}
	g := NewGenerator(p, e)
	if g.frameType == TypeNone {
		return emptySeq
	}

	seeds := SeedsUntilNature(g, p, e)

	var frames iter.Seq[Frame]
	if p.Type.IsCuteCharm() {
		frames = g.filterCuteCharm(seeds)
	} else {
		frames = g.filterNatureSync(seeds)
	}

	if g.frameType == TypeMethodH {
		return g.refineFrames3(frames)
	}
	return g.refineFrames4(frames)
}

func emptySeq(func(Frame) bool) {}
