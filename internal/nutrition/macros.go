package nutrition

import "math"

const (
	kcalPerGramProtein = 4.0
	kcalPerGramFat     = 9.0
	kcalPerGramCarb    = 4.0

	// fatPerKg is the fixed fat allowance in grams per kg of body weight.
	fatPerKg = 0.8
	// defaultProteinPerKg applies when the body state is unspecified.
	defaultProteinPerKg = 2.0
)

// proteinPerKg is indexed by body state. Skinny-fat visitors get the most
// protein (recomposition); overweight visitors the least per kg, since their
// weight carries more fat mass.
var proteinPerKg = map[BodyState]float64{
	StateLean:            2.0,
	StateLeanModerateFat: 2.2,
	StateSkinnyFat:       2.4,
	StateOverweight:      1.8,
}

// MacroPolicy names the allocation policy recorded alongside results.
const MacroPolicy = "fixed-fat-protein-by-state"

// AllocateMacros splits calories into protein, fat and carbs: fat is fixed
// at 0.8 g/kg, protein follows the body-state table and carbs take the
// residual. When protein and fat alone would overshoot the target, fat and
// then protein are cut back so the three never exceed calories.
func AllocateMacros(m UserMetrics, calories int) MacroBreakdown {
	kcal := math.Max(float64(calories), 0)
	perKg, ok := proteinPerKg[m.CurrentState]
	if !ok {
		perKg = defaultProteinPerKg
	}

	protein := m.WeightKg * perKg
	fat := m.WeightKg * fatPerKg

	residual := kcal - protein*kcalPerGramProtein - fat*kcalPerGramFat
	if residual >= 0 {
		return MacroBreakdown{
			ProteinGrams: protein,
			FatGrams:     fat,
			CarbGrams:    residual / kcalPerGramCarb,
		}
	}

	// No room for carbs.
	if protein*kcalPerGramProtein > kcal {
		protein = kcal / kcalPerGramProtein
	}
	fat = math.Max(0, (kcal-protein*kcalPerGramProtein)/kcalPerGramFat)
	return MacroBreakdown{ProteinGrams: protein, FatGrams: fat, CarbGrams: 0}
}
