// Package pricing implements the ROT/RUT pricing engine for service requests,
// quotes, and invoices. All functions are pure and deterministic: identical
// inputs always produce identical outputs, and amounts are whole Swedish
// kronor rounded at computation time (no öre are ever produced).
package pricing

import (
	"math"

	"github.com/hemverk/order-api/internal/domain"
)

// Line is a priced input line: the base service or a selected addon
type Line struct {
	Description string
	UnitPrice   int64
	Quantity    int
	// RotEligible/RutEligible mark the line as counting toward the deduction
	// base when the matching regime is requested. Eligibility is per line:
	// an ineligible addon stays out of the base even when the primary service
	// qualifies, and vice versa.
	RotEligible bool
	RutEligible bool
}

// Total returns the line total in whole SEK
func (l Line) Total() int64 {
	return l.UnitPrice * int64(l.Quantity)
}

// Input is the complete input to a pricing computation
type Input struct {
	BasePrice       int64
	BaseRotEligible bool
	BaseRutEligible bool
	Addons          []Line
	// DiscountPercent in [0,100], applied after the deduction.
	DiscountPercent float64
	// RotRut selects the deduction regime; nil means no deduction.
	RotRut *domain.RotRutType
	// LaborShare in [0,1] is the fraction of each eligible line that counts
	// as labor. Only labor is ROT/RUT-deductible.
	LaborShare float64
}

// Breakdown is the result of a pricing computation
type Breakdown struct {
	SubtotalWork     int64
	SubtotalMaterial int64
	Deduction        int64
	DiscountAmount   int64
	Total            int64
	// Warnings flags computation anomalies that should never occur with valid
	// domain inputs, e.g. a clamped negative total.
	Warnings []string
}

// WarnNegativeClamped is reported when a computed total fell below zero and
// was clamped. With valid domain inputs this is unreachable; its presence is
// a defect signal, not an acceptable state.
const WarnNegativeClamped = "total_clamped_to_zero"

// DeductionPolicy supplies the deduction rate per regime. The statutory annual
// per-customer ceiling is tracked by the surrounding accounting process, not
// by this engine, so the policy only answers for the rate.
type DeductionPolicy interface {
	Rate(t domain.RotRutType) float64
}

// StatutoryPolicy applies the current Swedish rates: 30% for ROT labor,
// 50% for RUT labor.
type StatutoryPolicy struct{}

// Rate returns the deduction rate for the regime
func (StatutoryPolicy) Rate(t domain.RotRutType) float64 {
	switch t {
	case domain.RotRutTypeROT:
		return 0.30
	case domain.RotRutTypeRUT:
		return 0.50
	}
	return 0
}

// Engine computes price breakdowns. The zero value is not usable; construct
// with NewEngine.
type Engine struct {
	policy DeductionPolicy
}

// NewEngine creates an engine with the given deduction policy.
// Pass nil to use the statutory rates.
func NewEngine(policy DeductionPolicy) *Engine {
	if policy == nil {
		policy = StatutoryPolicy{}
	}
	return &Engine{policy: policy}
}

// Compute calculates the full price breakdown for a request or quote.
//
//	rawTotal   = basePrice + Σ(addon.unitPrice × addon.quantity)
//	deduction  = round(Σ(eligible line totals) × laborShare × rate)
//	discount   = round((rawTotal − deduction) × discountPercent/100)
//	total      = rawTotal − deduction − discount
//
// The computation is total: it either returns a complete breakdown or fails
// with a ValidationError, never a partial result.
func (e *Engine) Compute(in Input) (Breakdown, error) {
	if err := validate(in); err != nil {
		return Breakdown{}, err
	}

	rawTotal := in.BasePrice
	eligibleBase := int64(0)
	if eligible(in.RotRut, in.BaseRotEligible, in.BaseRutEligible) {
		eligibleBase += in.BasePrice
	}
	for _, a := range in.Addons {
		rawTotal += a.Total()
		if eligible(in.RotRut, a.RotEligible, a.RutEligible) {
			eligibleBase += a.Total()
		}
	}

	var deduction int64
	if in.RotRut != nil {
		rate := e.policy.Rate(*in.RotRut)
		deduction = roundSEK(float64(eligibleBase) * in.LaborShare * rate)
	}

	discount := roundSEK(float64(rawTotal-deduction) * in.DiscountPercent / 100)

	b := Breakdown{
		SubtotalWork:   roundSEK(float64(rawTotal) * in.LaborShare),
		Deduction:      deduction,
		DiscountAmount: discount,
		Total:          rawTotal - deduction - discount,
	}
	b.SubtotalMaterial = rawTotal - b.SubtotalWork

	if b.Total < 0 {
		b.Total = 0
		b.Warnings = append(b.Warnings, WarnNegativeClamped)
	}

	return b, nil
}

// LaborDeduction computes the deduction for an explicit labor amount, used
// when invoicing from job-logged actuals where labor and material are already
// separated.
func (e *Engine) LaborDeduction(laborSEK int64, t *domain.RotRutType) int64 {
	if t == nil || laborSEK <= 0 {
		return 0
	}
	return roundSEK(float64(laborSEK) * e.policy.Rate(*t))
}

func validate(in Input) error {
	if in.BasePrice < 0 {
		return domain.NewValidationError("basePrice", "must not be negative")
	}
	if in.LaborShare < 0 || in.LaborShare > 1 {
		return domain.NewValidationError("laborShare", "must be within [0,1]")
	}
	if in.DiscountPercent < 0 || in.DiscountPercent > 100 {
		return domain.NewValidationError("discountPercent", "must be within [0,100]")
	}
	if in.RotRut != nil && !in.RotRut.IsValid() {
		return domain.NewValidationError("rotRutType", "must be ROT or RUT")
	}
	for _, a := range in.Addons {
		if a.UnitPrice < 0 {
			return domain.NewValidationError("addons", "unit price must not be negative")
		}
		if a.Quantity < 1 {
			return domain.NewValidationError("addons", "quantity must be at least 1")
		}
	}
	return nil
}

func eligible(t *domain.RotRutType, rot, rut bool) bool {
	if t == nil {
		return false
	}
	switch *t {
	case domain.RotRutTypeROT:
		return rot
	case domain.RotRutTypeRUT:
		return rut
	}
	return false
}

// roundSEK rounds to the nearest whole krona, half away from zero
func roundSEK(v float64) int64 {
	return int64(math.Round(v))
}
