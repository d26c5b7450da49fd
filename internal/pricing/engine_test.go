package pricing

import (
	"testing"

	"github.com/hemverk/order-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rotRut(t domain.RotRutType) *domain.RotRutType {
	return &t
}

func TestCompute_NoDeduction(t *testing.T) {
	engine := NewEngine(nil)

	b, err := engine.Compute(Input{
		BasePrice:  1000,
		LaborShare: 1.0,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(1000), b.SubtotalWork)
	assert.Equal(t, int64(0), b.SubtotalMaterial)
	assert.Equal(t, int64(0), b.Deduction)
	assert.Equal(t, int64(1000), b.Total)
	assert.Empty(t, b.Warnings)
}

func TestCompute_RotFullLaborShare(t *testing.T) {
	engine := NewEngine(nil)

	// 1000 SEK all labor, ROT 30%: deduction 300, customer pays 700
	b, err := engine.Compute(Input{
		BasePrice:       1000,
		BaseRotEligible: true,
		RotRut:          rotRut(domain.RotRutTypeROT),
		LaborShare:      1.0,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(300), b.Deduction)
	assert.Equal(t, int64(700), b.Total)
}

func TestCompute_RutFullLaborShare(t *testing.T) {
	engine := NewEngine(nil)

	// RUT is 50% of labor
	b, err := engine.Compute(Input{
		BasePrice:       1000,
		BaseRutEligible: true,
		RotRut:          rotRut(domain.RotRutTypeRUT),
		LaborShare:      1.0,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(500), b.Deduction)
	assert.Equal(t, int64(500), b.Total)
}

func TestCompute_PartialLaborShare(t *testing.T) {
	engine := NewEngine(nil)

	// 10000 SEK with 60% labor: eligible base 10000 × 0.6 × 0.3 = 1800
	b, err := engine.Compute(Input{
		BasePrice:       10000,
		BaseRotEligible: true,
		RotRut:          rotRut(domain.RotRutTypeROT),
		LaborShare:      0.6,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(6000), b.SubtotalWork)
	assert.Equal(t, int64(4000), b.SubtotalMaterial)
	assert.Equal(t, int64(1800), b.Deduction)
	assert.Equal(t, int64(8200), b.Total)
}

func TestCompute_IneligibleBaseStaysOutOfDeduction(t *testing.T) {
	engine := NewEngine(nil)

	// RUT requested but the base is only ROT-eligible
	b, err := engine.Compute(Input{
		BasePrice:       1000,
		BaseRotEligible: true,
		RotRut:          rotRut(domain.RotRutTypeRUT),
		LaborShare:      1.0,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(0), b.Deduction)
	assert.Equal(t, int64(1000), b.Total)
}

func TestCompute_AddonEligibilityIsPerLine(t *testing.T) {
	engine := NewEngine(nil)

	b, err := engine.Compute(Input{
		BasePrice:       2000,
		BaseRotEligible: true,
		Addons: []Line{
			{Description: "Extra rum", UnitPrice: 500, Quantity: 2, RotEligible: true},
			{Description: "Materialpaket", UnitPrice: 400, Quantity: 1},
		},
		RotRut:     rotRut(domain.RotRutTypeROT),
		LaborShare: 1.0,
	})
	require.NoError(t, err)

	// raw 2000 + 1000 + 400 = 3400; eligible base 3000 → deduction 900
	assert.Equal(t, int64(900), b.Deduction)
	assert.Equal(t, int64(2500), b.Total)
}

func TestCompute_DiscountAppliedAfterDeduction(t *testing.T) {
	engine := NewEngine(nil)

	b, err := engine.Compute(Input{
		BasePrice:       1000,
		BaseRotEligible: true,
		RotRut:          rotRut(domain.RotRutTypeROT),
		LaborShare:      1.0,
		DiscountPercent: 10,
	})
	require.NoError(t, err)

	// (1000 − 300) × 10% = 70
	assert.Equal(t, int64(300), b.Deduction)
	assert.Equal(t, int64(70), b.DiscountAmount)
	assert.Equal(t, int64(630), b.Total)
}

func TestCompute_RoundsHalfAwayFromZero(t *testing.T) {
	engine := NewEngine(nil)

	// 835 × 0.5 × 0.3 = 125.25 → 125; then 835 × 0.3 = 250.5 → 251 at share 1.0
	b, err := engine.Compute(Input{
		BasePrice:       835,
		BaseRotEligible: true,
		RotRut:          rotRut(domain.RotRutTypeROT),
		LaborShare:      0.5,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(125), b.Deduction)

	b, err = engine.Compute(Input{
		BasePrice:       835,
		BaseRotEligible: true,
		RotRut:          rotRut(domain.RotRutTypeROT),
		LaborShare:      1.0,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(251), b.Deduction)
	assert.Equal(t, int64(584), b.Total)
}

func TestCompute_Deterministic(t *testing.T) {
	engine := NewEngine(nil)

	in := Input{
		BasePrice:       4750,
		BaseRotEligible: true,
		Addons: []Line{
			{Description: "Tillval", UnitPrice: 325, Quantity: 3, RotEligible: true},
		},
		RotRut:          rotRut(domain.RotRutTypeROT),
		LaborShare:      0.7,
		DiscountPercent: 5,
	}

	first, err := engine.Compute(in)
	require.NoError(t, err)
	for i := 0; i < 50; i++ {
		again, err := engine.Compute(in)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestCompute_DeductionNeverExceedsEligibleLabor(t *testing.T) {
	engine := NewEngine(nil)

	for _, share := range []float64{0, 0.25, 0.5, 0.837, 1.0} {
		b, err := engine.Compute(Input{
			BasePrice:       12345,
			BaseRotEligible: true,
			RotRut:          rotRut(domain.RotRutTypeROT),
			LaborShare:      share,
		})
		require.NoError(t, err)
		assert.GreaterOrEqual(t, b.Deduction, int64(0))
		assert.LessOrEqual(t, b.Deduction, b.SubtotalWork+1, "share %v", share)
		assert.GreaterOrEqual(t, b.Total, int64(0))
	}
}

func TestCompute_DeductionGrowsWithLaborShare(t *testing.T) {
	engine := NewEngine(nil)

	// A larger labor share can never shrink the deduction, all else equal.
	prev := int64(-1)
	for _, share := range []float64{0, 0.1, 0.25, 0.33, 0.5, 0.66, 0.75, 0.9, 1.0} {
		b, err := engine.Compute(Input{
			BasePrice:       12345,
			BaseRotEligible: true,
			Addons: []Line{
				{Description: "Tillval", UnitPrice: 789, Quantity: 3, RotEligible: true},
			},
			RotRut:     rotRut(domain.RotRutTypeROT),
			LaborShare: share,
		})
		require.NoError(t, err)
		assert.GreaterOrEqual(t, b.Deduction, prev, "share %v", share)
		prev = b.Deduction
	}
}

func TestCompute_ValidationErrors(t *testing.T) {
	engine := NewEngine(nil)

	cases := []struct {
		name string
		in   Input
	}{
		{"negative base price", Input{BasePrice: -1, LaborShare: 1}},
		{"labor share above one", Input{BasePrice: 100, LaborShare: 1.5}},
		{"negative labor share", Input{BasePrice: 100, LaborShare: -0.1}},
		{"discount above hundred", Input{BasePrice: 100, LaborShare: 1, DiscountPercent: 101}},
		{"negative discount", Input{BasePrice: 100, LaborShare: 1, DiscountPercent: -1}},
		{"negative addon price", Input{BasePrice: 100, LaborShare: 1, Addons: []Line{{UnitPrice: -5, Quantity: 1}}}},
		{"zero addon quantity", Input{BasePrice: 100, LaborShare: 1, Addons: []Line{{UnitPrice: 5, Quantity: 0}}}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := engine.Compute(tc.in)
			require.Error(t, err)
			var verr *domain.ValidationError
			assert.ErrorAs(t, err, &verr)
		})
	}
}

func TestCompute_FreeJobClampsAtZero(t *testing.T) {
	engine := NewEngine(nil)

	b, err := engine.Compute(Input{LaborShare: 1.0})
	require.NoError(t, err)
	assert.Equal(t, int64(0), b.Total)
	assert.Empty(t, b.Warnings)
}

func TestLaborDeduction(t *testing.T) {
	engine := NewEngine(nil)

	assert.Equal(t, int64(0), engine.LaborDeduction(1000, nil))
	assert.Equal(t, int64(0), engine.LaborDeduction(0, rotRut(domain.RotRutTypeROT)))
	assert.Equal(t, int64(0), engine.LaborDeduction(-50, rotRut(domain.RotRutTypeROT)))
	assert.Equal(t, int64(300), engine.LaborDeduction(1000, rotRut(domain.RotRutTypeROT)))
	assert.Equal(t, int64(500), engine.LaborDeduction(1000, rotRut(domain.RotRutTypeRUT)))
	// 1267 × 0.3 = 380.1 → 380
	assert.Equal(t, int64(380), engine.LaborDeduction(1267, rotRut(domain.RotRutTypeROT)))
}

type flatPolicy struct{ rate float64 }

func (p flatPolicy) Rate(domain.RotRutType) float64 { return p.rate }

func TestCompute_CustomPolicy(t *testing.T) {
	engine := NewEngine(flatPolicy{rate: 0.1})

	b, err := engine.Compute(Input{
		BasePrice:       1000,
		BaseRotEligible: true,
		RotRut:          rotRut(domain.RotRutTypeROT),
		LaborShare:      1.0,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(100), b.Deduction)
}
