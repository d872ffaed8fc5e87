// Package damage implements the S-N (Wöhler) curve, Miner's-rule damage
// accumulation, and the damage_from_rp post-processing utility of
// spec.md §4.6.
package damage

import (
	"math"

	"github.com/jihwankim/rfc/pkg/rfcerr"
)

// Curve is the S-N (Wöhler) curve of spec.md §3: a two-slope relation
// between stress range S and cycles-to-failure N(S), with a knee at SD.
type Curve struct {
	SD float64 // knee stress
	ND float64 // cycles-to-failure at the knee
	K  float64 // high-cycle branch slope (S >= SD)
	K2 float64 // low-cycle branch slope (S < SD); <= 0 means no second slope
}

// Validate checks the fields a well-formed curve requires.
func (c Curve) Validate() error {
	if c.SD <= 0 {
		return rfcerr.Config("wl.sd", "must be > 0, got %g", c.SD)
	}
	if c.ND <= 0 {
		return rfcerr.Config("wl.nd", "must be > 0, got %g", c.ND)
	}
	if c.K <= 0 {
		return rfcerr.Config("wl.k", "must be > 0, got %g", c.K)
	}
	return nil
}

// DefaultCurve is spec.md §6's documented default {1e3, 1e7, 5, 5}.
func DefaultCurve() Curve {
	return Curve{SD: 1e3, ND: 1e7, K: 5, K2: 5}
}

// Endurance computes N(S), the cycles-to-failure at stress range S, using
// slope K above SD and slope K2 below it; if K2 <= 0 the curve is
// infinite-life below SD. This is the curve "as configured" — the
// behavior §4.6 describes directly, and what RPDamageCalcMethod DEFAULT
// uses.
func (c Curve) Endurance(s float64) float64 {
	if s <= 0 {
		return math.Inf(1)
	}
	if s >= c.SD {
		return c.ND * math.Pow(s/c.SD, -c.K)
	}
	if c.K2 > 0 {
		return c.ND * math.Pow(s/c.SD, -c.K2)
	}
	return math.Inf(1)
}

// enduranceElementar ignores SD entirely and applies slope K across the
// whole range: RPDamageCalcMethod MINER_ELEMENTAR.
func (c Curve) enduranceElementar(s float64) float64 {
	if s <= 0 {
		return math.Inf(1)
	}
	return c.ND * math.Pow(s/c.SD, -c.K)
}

// enduranceModified applies slope K above SD and K2 below, falling back
// to the conventional Miner-modified slope (2K-1) when K2 isn't
// configured: RPDamageCalcMethod MINER_MODIFIED.
func (c Curve) enduranceModified(s float64) float64 {
	k2 := c.K2
	if k2 <= 0 {
		k2 = 2*c.K - 1
	}
	if s <= 0 {
		return math.Inf(1)
	}
	if s >= c.SD {
		return c.ND * math.Pow(s/c.SD, -c.K)
	}
	return c.ND * math.Pow(s/c.SD, -k2)
}

// consistentCurve shifts the knee to the highest occurring stress range
// maxS, rescaling ND so the shifted and unshifted curves agree at maxS
// (see DESIGN.md's MINER_CONSISTENT decision): RPDamageCalcMethod
// MINER_CONSISTENT.
func (c Curve) consistentCurve(maxS float64) Curve {
	if maxS <= c.SD {
		return c
	}
	shifted := c
	shifted.SD = maxS
	shifted.ND = c.ND * math.Pow(maxS/c.SD, -c.K)
	return shifted
}
