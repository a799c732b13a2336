// Package nutrition computes daily energy needs and macronutrient targets
// from a visitor's body metrics. Every function here is pure: the same
// UserMetrics always yields the same EnergyEstimate and MacroBreakdown.
package nutrition

type Sex string

const (
	Male   Sex = "male"
	Female Sex = "female"
)

type Biotype string

const (
	Ectomorph Biotype = "ecto"
	Mesomorph Biotype = "meso"
	Endomorph Biotype = "endo"
)

type Goal string

const (
	MildCut        Goal = "mild-cut"
	AggressiveCut  Goal = "aggressive-cut"
	Maintain       Goal = "maintain"
	LeanGain       Goal = "lean-gain"
	AggressiveGain Goal = "aggressive-gain"
)

// BodyState describes how the visitor rates their current composition.
// StateUnspecified is the neutral baseline used when the field is absent or
// unrecognised.
type BodyState string

const (
	StateUnspecified     BodyState = ""
	StateLean            BodyState = "lean"
	StateLeanModerateFat BodyState = "lean-moderate-fat"
	StateSkinnyFat       BodyState = "skinny-fat"
	StateOverweight      BodyState = "overweight"
)

// UserMetrics is the normalized calculator input. Age, weight and height are
// always > 0 when produced by Normalize.
type UserMetrics struct {
	Sex            Sex       `json:"sex"`
	Biotype        Biotype   `json:"biotype"`
	Age            int       `json:"age"`
	WeightKg       float64   `json:"weight_kg"`
	HeightCm       float64   `json:"height_cm"`
	ActivityFactor float64   `json:"activity_factor"`
	Goal           Goal      `json:"goal"`
	CurrentState   BodyState `json:"current_state"`
}

// EnergyEstimate is derived from UserMetrics and never mutated afterwards.
type EnergyEstimate struct {
	BMR           float64 `json:"bmr"`
	AdjustedBMR   float64 `json:"adjusted_bmr"`
	TDEE          float64 `json:"tdee"`
	FinalTDEE     float64 `json:"final_tdee"`
	FinalCalories int     `json:"final_calories"`
}

// MacroBreakdown holds daily gram targets. Carbs are the residual after
// protein and fat and are never negative.
type MacroBreakdown struct {
	ProteinGrams float64 `json:"protein_g"`
	FatGrams     float64 `json:"fat_g"`
	CarbGrams    float64 `json:"carbs_g"`
}

// Calories returns the energy contained in the breakdown (4/9/4 kcal per gram).
func (m MacroBreakdown) Calories() float64 {
	return m.ProteinGrams*kcalPerGramProtein + m.FatGrams*kcalPerGramFat + m.CarbGrams*kcalPerGramCarb
}

// Result is the full calculator output for one set of metrics.
type Result struct {
	Metrics  UserMetrics    `json:"metrics"`
	Estimate EnergyEstimate `json:"estimate"`
	Macros   MacroBreakdown `json:"macros"`
}

// Calculate runs the estimator, goal adjuster and macro allocator in order.
func Calculate(m UserMetrics) Result {
	est := Estimate(m)
	return Result{
		Metrics:  m,
		Estimate: est,
		Macros:   AllocateMacros(m, est.FinalCalories),
	}
}
