// Package pidiv carries the inputs of a frame search: the classification of
// how a creature's PID was derived, the generator state that derivation was
// anchored to, and the creature-side facts the search needs. Classification
// itself happens upstream; this package only describes its result.
package pidiv

import (
	"fmt"
	"strings"

	"github.com/solleo1989/framefinder/internal/rng"
)

// Method identifies the PID-derivation family a creature was matched to.
type Method uint8

const (
	MethodNone Method = iota
	Method1
	Method2
	Method4
	MethodH
	MethodJ
	MethodK
	MethodCuteCharm
	MethodBACD
	MethodBACDReversed
)

var methodNames = map[Method]string{
	MethodNone:         "none",
	Method1:            "method1",
	Method2:            "method2",
	Method4:            "method4",
	MethodH:            "methodh",
	MethodJ:            "methodj",
	MethodK:            "methodk",
	MethodCuteCharm:    "cutecharm",
	MethodBACD:         "bacd",
	MethodBACDReversed: "bacd_r",
}

func (m Method) String() string {
	if name, ok := methodNames[m]; ok {
		return name
	}
	return "none"
}

// ParseMethod resolves a method name as accepted by the API and store layers.
func ParseMethod(s string) (Method, error) {
	needle := strings.ToLower(strings.TrimSpace(s))
	for m, name := range methodNames {
		if name == needle {
			return m, nil
		}
	}
	return MethodNone, fmt.Errorf("unknown method %q", s)
}

// IsCuteCharm reports whether the derivation is the Cute-Charm-specific one,
// which routes through its own candidate filter.
func (m Method) IsCuteCharm() bool {
	return m == MethodCuteCharm
}

// IsReversedPID reports whether the derivation builds the PID halves in
// swapped order, which matters when reconstructing candidate PIDs from
// consecutive generator outputs.
func (m Method) IsReversedPID() bool {
	return m == MethodBACDReversed
}

// EggOrigin reports derivations produced by egg events, where no lead
// condition can influence generation.
func (m Method) EggOrigin() bool {
	return m == MethodBACD || m == MethodBACDReversed
}

// Version is the game cartridge a creature originates from. It selects the
// generation-era call pattern and which arithmetic family applies.
type Version uint8

const (
	VersionUnknown Version = iota
	Ruby
	Sapphire
	Emerald
	FireRed
	LeafGreen
	Diamond
	Pearl
	Platinum
	HeartGold
	SoulSilver
)

var versionNames = map[Version]string{
	Ruby:       "ruby",
	Sapphire:   "sapphire",
	Emerald:    "emerald",
	FireRed:    "firered",
	LeafGreen:  "leafgreen",
	Diamond:    "diamond",
	Pearl:      "pearl",
	Platinum:   "platinum",
	HeartGold:  "heartgold",
	SoulSilver: "soulsilver",
}

func (v Version) String() string {
	if name, ok := versionNames[v]; ok {
		return name
	}
	return "unknown"
}

// ParseVersion resolves a version name as accepted by the API and store layers.
func ParseVersion(s string) (Version, error) {
	needle := strings.ToLower(strings.TrimSpace(s))
	for v, name := range versionNames {
		if name == needle {
			return v, nil
		}
	}
	return VersionUnknown, fmt.Errorf("unknown version %q", s)
}

// DivideBased reports whether the version uses the division-form nature and
// proc arithmetic rather than the modulo/bit form.
func (v Version) DivideBased() bool {
	switch v {
	case Diamond, Pearl, Platinum:
		return true
	default:
		return false
	}
}

// Result is the outcome of upstream PID-derivation classification. A nil RNG
// means no generator could be associated and there is nothing to search.
type Result struct {
	Type       Method
	OriginSeed uint32
	RNG        *rng.LCRNG
}

// Entity is the creature-side view of a search: the recorded PID plus the
// species facts the search consults.
type Entity struct {
	PID         uint32
	Version     Version
	GenderRatio uint8 // species gender threshold byte; 0, 254 and 255 are fixed/genderless
}

// Nature derives the target nature index (0-24) from the PID.
func (e Entity) Nature() uint32 {
	return e.PID % 25
}
