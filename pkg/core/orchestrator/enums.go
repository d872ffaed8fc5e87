package orchestrator

import (
	"github.com/jihwankim/rfc/pkg/accumulate"
	"github.com/jihwankim/rfc/pkg/damage"
	"github.com/jihwankim/rfc/pkg/residue"
)

// ResidualMethod selects the residual finalization policy of spec.md
// §4.5. Stable integer values reproduced verbatim from spec.md §6,
// including the legacy _IGNORE/_NO_FINALIZE aliases (see DESIGN.md).
type ResidualMethod int

const (
	ResidualNone           ResidualMethod = 0
	ResidualIgnore         ResidualMethod = 1 // legacy alias of ResidualNone
	ResidualNoFinalize     ResidualMethod = 2 // legacy alias of ResidualNone
	ResidualDiscard        ResidualMethod = 3
	ResidualHalfCycles     ResidualMethod = 4
	ResidualFullCycles     ResidualMethod = 5
	ResidualClormannSeeger ResidualMethod = 6
	ResidualRepeated       ResidualMethod = 7
	ResidualDIN45667       ResidualMethod = 8
)

// toResidue maps the stable public enum onto the internal residue.Policy.
func (m ResidualMethod) toResidue() residue.Policy {
	switch m {
	case ResidualDiscard:
		return residue.Discard
	case ResidualHalfCycles:
		return residue.HalfCycles
	case ResidualFullCycles:
		return residue.FullCycles
	case ResidualClormannSeeger:
		return residue.ClormannSeeger
	case ResidualRepeated:
		return residue.Repeated
	case ResidualDIN45667:
		return residue.DIN45667
	case ResidualNone, ResidualIgnore, ResidualNoFinalize:
		return residue.None
	default:
		return residue.None
	}
}

// SDMethod selects the damage-spreading policy of spec.md §4.7. Stable
// integer values reproduced verbatim from spec.md §6.
type SDMethod int

const (
	SDNone             SDMethod = -1
	SDHalf23           SDMethod = 0
	SDRampAmplitude23  SDMethod = 1
	SDRampDamage23     SDMethod = 2
	SDRampAmplitude24  SDMethod = 3
	SDRampDamage24     SDMethod = 4
	SDFullP2           SDMethod = 5
	SDFullP3           SDMethod = 6
	SDTransient23      SDMethod = 7
	SDTransient23c     SDMethod = 8
)

func (m SDMethod) toDamage() damage.SpreadMethod {
	switch m {
	case SDHalf23:
		return damage.HalfCycles23
	case SDRampAmplitude23:
		return damage.RampAmplitude23
	case SDRampDamage23:
		return damage.RampDamage23
	case SDRampAmplitude24:
		return damage.RampAmplitude24
	case SDRampDamage24:
		return damage.RampDamage24
	case SDFullP2:
		return damage.FullP2
	case SDFullP3:
		return damage.FullP3
	case SDTransient23:
		return damage.Transient23
	case SDTransient23c:
		return damage.Transient23c
	default:
		return damage.SpreadNone
	}
}

// LCMethod selects the level-crossing slope policy of spec.md §4.8.
// Stable integer values reproduced verbatim from spec.md §6 — note the
// gap at 2.
type LCMethod int

const (
	SlopesUp   LCMethod = 0
	SlopesDown LCMethod = 1
	SlopesAll  LCMethod = 3
)

func (m LCMethod) toAccumulate() accumulate.LCMethod {
	switch m {
	case SlopesDown:
		return accumulate.SlopesDown
	case SlopesAll:
		return accumulate.SlopesAll
	default:
		return accumulate.SlopesUp
	}
}
