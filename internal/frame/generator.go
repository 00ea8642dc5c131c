package frame

import (
	"github.com/solleo1989/framefinder/internal/pidiv"
	"github.com/solleo1989/framefinder/internal/rng"
)

// eraOps groups the formulas that differ between the division-based
// games and the modulo/bit-based ones. A Generator picks one table at
// construction instead of re-testing the era at every call site.
type eraOps struct {
	nature     func(rand uint32) uint32
	syncBit    func(rand uint32) uint32
	syncFailed func(prev uint32) bool
	charmProc  func(proc uint32) bool
	forceSlot  func(rand uint32) bool
}

var divideOps = eraOps{
	nature:     func(rand uint32) uint32 { return rand / 0xA3E },
	syncBit:    func(rand uint32) uint32 { return rand >> 15 },
	syncFailed: func(prev uint32) bool { return prev>>31 == 0 },
	charmProc:  func(proc uint32) bool { return proc/0x5556 != 0 },
	forceSlot:  func(rand uint32) bool { return rand>>15 == 1 },
}

var moduloOps = eraOps{
	nature:     func(rand uint32) uint32 { return rand % 25 },
	syncBit:    func(rand uint32) uint32 { return rand & 1 },
	syncFailed: func(prev uint32) bool { return (prev>>16)&1 == 0 },
	charmProc:  func(proc uint32) bool { return proc%3 != 0 },
	forceSlot:  func(rand uint32) bool { return rand&1 == 1 },
}

// Generator holds the per-search constants derived once from the derivation
// result and creature record. It is owned by a single Find call.
type Generator struct {
	rng        *rng.LCRNG
	frameType  Type
	nature     uint32
	allowLeads bool
	dpPt       bool
	ops        eraOps
}

// NewGenerator classifies the search. A Type of TypeNone means no documented
// algorithm covers the derivation and the caller must bail out.
func NewGenerator(p pidiv.Result, e pidiv.Entity) *Generator {
	g := &Generator{
		rng:    p.RNG,
		nature: e.Nature(),
	}

	switch p.Type {
	case pidiv.Method1, pidiv.Method2, pidiv.Method4, pidiv.MethodH,
		pidiv.MethodBACD, pidiv.MethodBACDReversed:
		g.frameType = TypeMethodH
		// Only Emerald has lead abilities that act on wild generation, and
		// egg-origin derivations are never influenced by a lead.
		g.allowLeads = e.Version == pidiv.Emerald && !p.Type.EggOrigin()
	case pidiv.MethodJ:
		g.frameType = TypeMethodJK
		g.dpPt = true
		g.allowLeads = true
	case pidiv.MethodK:
		g.frameType = TypeMethodJK
		g.allowLeads = true
	case pidiv.MethodCuteCharm:
		g.frameType = TypeMethodJK
		g.dpPt = e.Version.DivideBased()
		g.allowLeads = true
	default:
		g.frameType = TypeNone
	}

	if g.dpPt {
		g.ops = divideOps
	} else {
		g.ops = moduloOps
	}
	return g
}

// Type reports the call pattern the generator classified the search as.
func (g *Generator) Type() Type { return g.frameType }

// Nature reports the target nature index.
func (g *Generator) Nature() uint32 { return g.nature }

func (g *Generator) frame(seed uint32, lead Lead) Frame {
	return Frame{Seed: seed, Lead: lead}
}

func (g *Generator) frameESV(seed uint32, lead Lead, esv uint32) Frame {
	return Frame{Seed: seed, Lead: lead, ESV: uint16(esv)}
}
