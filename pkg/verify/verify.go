// Package verify checks a completed counting run against the eight
// conformance properties of spec.md §8 (P1 TP alternation through P8
// empty-input). Grounded on _examples/jhkimqd-chaos-utils
// pkg/injection/verification/verify.go's Verifier/VerificationResult
// shape (there: a post-hoc check that a container's network namespace
// carries no leftover chaos artifacts; here: a post-hoc check that a
// result bundle carries no internal inconsistency) combined with
// pkg/monitoring/detector/failure_detector.go's CriterionResult
// (Passed/Message/Evaluations) for per-property reporting.
package verify

import (
	"fmt"
	"math"

	"github.com/jihwankim/rfc/pkg/rfc"
)

// CriterionResult is the outcome of checking one property.
type CriterionResult struct {
	Name    string
	Passed  bool
	Message string
}

// Report is the full outcome of verifying one Result against its input
// and options, one CriterionResult per property.
type Report struct {
	Criteria []CriterionResult
	Clean    bool
}

// AllPassed reports whether every checked property held.
func (r *Report) AllPassed() bool { return r.Clean }

// GetSummary renders a short human-readable pass/fail line per property,
// grounded on failure_detector.go's GetSummary.
func (r *Report) GetSummary() string {
	out := ""
	for _, c := range r.Criteria {
		status := "PASS"
		if !c.Passed {
			status = "FAIL"
		}
		out += fmt.Sprintf("[%s] %s: %s\n", status, c.Name, c.Message)
	}
	return out
}

// Verifier runs the P1-P8 conformance checks against a Result.
type Verifier struct {
	tolerance float64
}

// New builds a Verifier using spec.md §8's 1e-10 relative tolerance for
// floating-point coherence checks.
func New() *Verifier {
	return &Verifier{tolerance: 1e-10}
}

// Verify checks every property that applies given the run's options
// (residual_method affects which of P3/P5 are meaningful) and returns a
// Report with one CriterionResult per property.
func (v *Verifier) Verify(data []float64, opts rfc.Options, result *rfc.Result) *Report {
	report := &Report{Clean: true}
	add := func(res CriterionResult) {
		report.Criteria = append(report.Criteria, res)
		if !res.Passed {
			report.Clean = false
		}
	}

	if len(data) == 0 {
		add(v.checkEmpty(result))
		return report
	}

	add(v.checkAlternation(result))
	add(v.checkHysteresis(result, opts.Hysteresis))
	add(v.checkCountConservation(result, opts.ResidualMethod))
	add(v.checkRPCoherence(result))
	if opts.ResidualMethod != rfc.ResidualNone && opts.ResidualMethod != rfc.ResidualIgnore && opts.ResidualMethod != rfc.ResidualNoFinalize {
		add(v.checkDamageCoherence(result))
	}
	add(v.checkDHLength(result, data))
	if opts.SpreadDamage != rfc.SDNone {
		add(v.checkDHSum(result))
	}

	return report
}

// checkEmpty is P8: empty input yields an all-zero bundle.
func (v *Verifier) checkEmpty(result *rfc.Result) CriterionResult {
	sum := 0.0
	for _, row := range result.RFM {
		for _, c := range row {
			sum += c
		}
	}
	ok := sum == 0 && len(result.Res) == 0 && len(result.DH) == 0 && result.Damage == 0
	msg := "empty input yields zero RFM, empty res, empty dh, zero damage"
	if !ok {
		msg = "empty input produced a nonzero bundle"
	}
	return CriterionResult{Name: "P8_empty", Passed: ok, Message: msg}
}

// checkAlternation is P1: consecutive TPs must alternate direction.
func (v *Verifier) checkAlternation(result *rfc.Result) CriterionResult {
	tp := result.TP
	for k := 2; k < len(tp); k++ {
		prevSign := sign(tp[k-1].Value - tp[k-2].Value)
		curSign := sign(tp[k].Value - tp[k-1].Value)
		if prevSign != 0 && curSign != -prevSign {
			return CriterionResult{Name: "P1_alternation", Passed: false,
				Message: fmt.Sprintf("turning points %d and %d do not alternate direction", k-1, k)}
		}
	}
	return CriterionResult{Name: "P1_alternation", Passed: true, Message: "every turning point alternates direction"}
}

// checkHysteresis is P2: consecutive TPs must differ by more than H.
func (v *Verifier) checkHysteresis(result *rfc.Result, h float64) CriterionResult {
	tp := result.TP
	for k := 1; k < len(tp); k++ {
		if math.Abs(tp[k].Value-tp[k-1].Value) <= h {
			return CriterionResult{Name: "P2_hysteresis", Passed: false,
				Message: fmt.Sprintf("turning points %d and %d are within the hysteresis margin", k-1, k)}
		}
	}
	return CriterionResult{Name: "P2_hysteresis", Passed: true, Message: "every turning point pair exceeds the hysteresis margin"}
}

// checkCountConservation is P3: under NONE (and its _IGNORE/_NO_FINALIZE
// aliases), RFM.sum() must not exceed floor(|TP|/2). For the finalizing
// policies no count is compared and the property is reported as passed.
func (v *Verifier) checkCountConservation(result *rfc.Result, method rfc.ResidualMethod) CriterionResult {
	sum := 0.0
	for _, row := range result.RFM {
		for _, c := range row {
			sum += c
		}
	}
	if method == rfc.ResidualNone || method == rfc.ResidualIgnore || method == rfc.ResidualNoFinalize {
		maxAllowed := math.Floor(float64(len(result.TP)) / 2)
		ok := sum <= maxAllowed+v.tolerance
		msg := "RFM.sum() within floor(|TP|/2) under the no-finalization policy"
		if !ok {
			msg = "RFM.sum() exceeds floor(|TP|/2) under the no-finalization policy"
		}
		return CriterionResult{Name: "P3_count_conservation", Passed: ok, Message: msg}
	}
	return CriterionResult{Name: "P3_count_conservation", Passed: true, Message: "finalized residual policy, count split across full/half cycles by construction"}
}

// checkRPCoherence is P4: RP[d].count equals the sum of RFM[i,j] with
// |i-j| = d.
func (v *Verifier) checkRPCoherence(result *rfc.Result) CriterionResult {
	byDelta := map[uint32]float64{}
	n := len(result.RFM)
	for i := 0; i < n; i++ {
		for j := 0; j < len(result.RFM[i]); j++ {
			d := i - j
			if d < 0 {
				d = -d
			}
			byDelta[uint32(d)] += result.RFM[i][j]
		}
	}
	for _, cell := range result.RP {
		expect := byDelta[cell.ClassDelta]
		if math.Abs(expect-cell.Count) > v.tolerance*math.Max(1, math.Abs(expect)) {
			return CriterionResult{Name: "P4_rp_rfm_coherence", Passed: false,
				Message: fmt.Sprintf("RP[%d].count=%.6g does not match RFM diagonal sum %.6g", cell.ClassDelta, cell.Count, expect)}
		}
	}
	return CriterionResult{Name: "P4_rp_rfm_coherence", Passed: true, Message: "range-pair histogram matches RFM sums by class distance"}
}

// checkDamageCoherence is P5: sum(tp[:].damage) equals total damage
// within 1e-10 relative, when the residual is finalized.
func (v *Verifier) checkDamageCoherence(result *rfc.Result) CriterionResult {
	sum := 0.0
	for _, p := range result.TP {
		sum += p.Damage
	}
	ok := withinRelative(sum, result.Damage, v.tolerance)
	msg := "sum of per-TP damage matches total damage"
	if !ok {
		msg = fmt.Sprintf("sum of per-TP damage %.6g does not match total damage %.6g", sum, result.Damage)
	}
	return CriterionResult{Name: "P5_damage_coherence", Passed: ok, Message: msg}
}

// checkDHLength is P6: len(dh) == len(input), always.
func (v *Verifier) checkDHLength(result *rfc.Result, data []float64) CriterionResult {
	ok := len(result.DH) == len(data)
	msg := "damage history length matches input length"
	if !ok {
		msg = fmt.Sprintf("damage history length %d does not match input length %d", len(result.DH), len(data))
	}
	return CriterionResult{Name: "P6_dh_length", Passed: ok, Message: msg}
}

// checkDHSum is P7: sum(dh) equals the run's total damage (closed plus
// finalized cycles), within 1e-10 relative, for any spreading policy
// other than NONE.
func (v *Verifier) checkDHSum(result *rfc.Result) CriterionResult {
	sum := 0.0
	for _, d := range result.DH {
		sum += d
	}
	ok := withinRelative(sum, result.Damage, v.tolerance)
	msg := "sum of damage history matches total damage"
	if !ok {
		msg = fmt.Sprintf("sum of damage history %.6g does not match total damage %.6g", sum, result.Damage)
	}
	return CriterionResult{Name: "P7_dh_sum", Passed: ok, Message: msg}
}

func withinRelative(a, b, tol float64) bool {
	if a == b {
		return true
	}
	denom := math.Max(math.Abs(a), math.Abs(b))
	if denom == 0 {
		return true
	}
	return math.Abs(a-b)/denom <= tol
}

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
