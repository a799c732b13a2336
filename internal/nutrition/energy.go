package nutrition

import "math"

// minBMR is the lowest BMR the estimator will report, whatever the inputs.
const minBMR = 1000.0

// stateMultipliers scale BMR by self-reported body composition.
var stateMultipliers = map[BodyState]float64{
	StateLean:            1.03,
	StateLeanModerateFat: 0.98,
	StateSkinnyFat:       0.95,
	StateOverweight:      0.90,
}

var biotypeMultipliers = map[Biotype]float64{
	Ectomorph: 1.05,
	Mesomorph: 1.00,
	Endomorph: 0.95,
}

// lookup returns table[key], or the neutral 1.0 for keys outside the table.
func lookup[K comparable](table map[K]float64, key K) float64 {
	if v, ok := table[key]; ok {
		return v
	}
	return 1.0
}

// BMR computes basal metabolic rate via Mifflin-St Jeor, clamped to minBMR.
func BMR(m UserMetrics) float64 {
	bmr := 10*m.WeightKg + 6.25*m.HeightCm - 5*float64(m.Age)
	if m.Sex == Female {
		bmr -= 161
	} else {
		bmr += 5
	}
	return math.Max(bmr, minBMR)
}

// Estimate computes the full energy estimate for m, including the goal
// adjustment. The activity factor is used as given: Normalize guarantees it
// is one of ActivityMultipliers.
func Estimate(m UserMetrics) EnergyEstimate {
	bmr := BMR(m)
	adjusted := bmr * lookup(stateMultipliers, m.CurrentState)
	tdee := adjusted * m.ActivityFactor
	finalTDEE := tdee * lookup(biotypeMultipliers, m.Biotype)

	return EnergyEstimate{
		BMR:           bmr,
		AdjustedBMR:   adjusted,
		TDEE:          tdee,
		FinalTDEE:     finalTDEE,
		FinalCalories: AdjustForGoal(finalTDEE, m.Goal, m.Sex),
	}
}
