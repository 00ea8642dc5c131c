// Package frame reconstructs the generator call positions that could have
// produced a creature's recorded random attributes. Given a classified PID
// derivation and the creature record, Find enumerates every prior generator
// state consistent with the known generation algorithms, each annotated with
// the lead condition that would have to be active for it to be the true
// generation point.
package frame

import "fmt"

// Lead is the in-game condition a candidate frame depends on. A lead ability
// or held item inserts extra generator calls before the nature roll, so each
// tag implies a fixed offset from the nature-determination state.
type Lead uint8

const (
	LeadNone Lead = iota
	LeadSynchronize
	LeadSynchronizeFail
	LeadCuteCharm
	LeadCuteCharmFail
	LeadPressureHustleSpirit
	LeadPressureHustleSpiritFail
	LeadIntimidateKeenEye
	LeadStaticMagnet
)

var leadNames = [...]string{
	LeadNone:                     "none",
	LeadSynchronize:              "synchronize",
	LeadSynchronizeFail:          "synchronize_fail",
	LeadCuteCharm:                "cute_charm",
	LeadCuteCharmFail:            "cute_charm_fail",
	LeadPressureHustleSpirit:     "pressure_hustle_spirit",
	LeadPressureHustleSpiritFail: "pressure_hustle_spirit_fail",
	LeadIntimidateKeenEye:        "intimidate_keen_eye",
	LeadStaticMagnet:             "static_magnet",
}

func (l Lead) String() string {
	if int(l) < len(leadNames) {
		return leadNames[l]
	}
	return "none"
}

// ParseLead resolves a lead name as used by scan allow-lists and the store.
func ParseLead(s string) (Lead, error) {
	for i, name := range leadNames {
		if name == s {
			return Lead(i), nil
		}
	}
	return LeadNone, fmt.Errorf("unknown lead %q", s)
}

// Type is the generation-era call pattern a search runs under.
type Type uint8

const (
	// TypeNone means no known algorithm applies; the search yields nothing.
	TypeNone Type = iota
	// TypeMethodH is the three-call era: slot roll, level roll, nature roll.
	TypeMethodH
	// TypeMethodJK is the two-call era: slot roll, then nature roll.
	TypeMethodJK
)

// Frame is one candidate generator position. ESV is zero until a refiner
// back-fills it; after that a Frame is never mutated.
type Frame struct {
	Seed uint32 `json:"seed"`
	ESV  uint16 `json:"esv"`
	Lead Lead   `json:"-"`
}

// SeedInfo is one candidate state from the backward walk, plus whether it was
// reached through a Cute-Charm gender-locked unrolling.
type SeedInfo struct {
	Seed   uint32
	Charm3 bool
}
