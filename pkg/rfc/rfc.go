// Package rfc is the public facade of the rainflow counting engine:
// spec.md §6's primary entry point `rfc(data, opts) -> Result` and
// secondary entry point `damage_from_rp(rp, wl, method) -> f64`. It is a
// thin wrapper over pkg/core/orchestrator — a conventional Go facade
// package, not something grounded on a specific teacher file.
package rfc

import (
	"github.com/jihwankim/rfc/pkg/core/orchestrator"
	"github.com/jihwankim/rfc/pkg/damage"
)

// Re-exported types and stable enums, so callers only need to import
// pkg/rfc.
type (
	Options        = orchestrator.Options
	Result         = orchestrator.Result
	TPResult       = orchestrator.TPResult
	Curve          = orchestrator.Curve
	ResidualMethod = orchestrator.ResidualMethod
	SDMethod       = orchestrator.SDMethod
	LCMethod       = orchestrator.LCMethod
)

const (
	ResidualNone           = orchestrator.ResidualNone
	ResidualIgnore         = orchestrator.ResidualIgnore
	ResidualNoFinalize     = orchestrator.ResidualNoFinalize
	ResidualDiscard        = orchestrator.ResidualDiscard
	ResidualHalfCycles     = orchestrator.ResidualHalfCycles
	ResidualFullCycles     = orchestrator.ResidualFullCycles
	ResidualClormannSeeger = orchestrator.ResidualClormannSeeger
	ResidualRepeated       = orchestrator.ResidualRepeated
	ResidualDIN45667       = orchestrator.ResidualDIN45667

	SDNone            = orchestrator.SDNone
	SDHalf23          = orchestrator.SDHalf23
	SDRampAmplitude23 = orchestrator.SDRampAmplitude23
	SDRampDamage23    = orchestrator.SDRampDamage23
	SDRampAmplitude24 = orchestrator.SDRampAmplitude24
	SDRampDamage24    = orchestrator.SDRampDamage24
	SDFullP2          = orchestrator.SDFullP2
	SDFullP3          = orchestrator.SDFullP3
	SDTransient23     = orchestrator.SDTransient23
	SDTransient23c    = orchestrator.SDTransient23c

	SlopesUp   = orchestrator.SlopesUp
	SlopesDown = orchestrator.SlopesDown
	SlopesAll  = orchestrator.SlopesAll
)

// RPDamageCalcMethod selects the Miner's-rule variant DamageFromRP uses.
// Stable integer values reproduced from spec.md §6.
type RPDamageCalcMethod = damage.Method

const (
	RPDefault         = damage.Default
	RPMinerElementar  = damage.MinerElementar
	RPMinerModified   = damage.MinerModified
	RPMinerConsistent = damage.MinerConsistent
)

// RangePair is one entry of a range-pair histogram: amplitude and count.
type RangePair = damage.RangePair

// DefaultOptions derives spec.md §6's documented defaults from data:
// class_count=100, class_width/class_offset/hysteresis from the sample
// extrema, residual_method=REPEATED, spread_damage=TRANSIENT_23c,
// lc_method=SLOPES_UP, wl={1e3,1e7,5,5}.
func DefaultOptions(data []float64) Options {
	return orchestrator.DefaultOptions(data)
}

// Rfc is the primary entry point: given a sampled load history and
// counting options, it returns the assembled result bundle (rfm, rp, lc,
// tp, res, dh, damage). Empty input is not an error (spec.md §7); every
// other failure is a *rfcerr.Error tagged InvalidConfig, NonFinite,
// OutOfRange, or Internal.
func Rfc(data []float64, opts Options) (*Result, error) {
	return orchestrator.Run(data, opts)
}

// DamageFromRP is the secondary entry point: a pure post-processing
// function computing total Miner's-rule damage from an already-produced
// range-pair histogram and curve, independent of any counting run.
func DamageFromRP(rp []RangePair, curve Curve, method RPDamageCalcMethod) (float64, error) {
	return damage.DamageFromRP(rp, curve, method)
}
