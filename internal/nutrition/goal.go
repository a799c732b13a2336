package nutrition

import "math"

var goalMultipliers = map[Goal]float64{
	MildCut:        0.85,
	AggressiveCut:  0.70,
	Maintain:       1.00,
	LeanGain:       1.07,
	AggressiveGain: 1.15,
}

// Daily calorie floors. An aggressive cut never drops below these.
const (
	MinCaloriesMale   = 1400
	MinCaloriesFemale = 1200
)

// MaxCalories caps the daily target. Inputs within the normalizer's bounds
// stay well below it.
const MaxCalories = 20000

// CalorieFloor returns the minimum daily target for the given sex.
func CalorieFloor(sex Sex) int {
	if sex == Female {
		return MinCaloriesFemale
	}
	return MinCaloriesMale
}

// AdjustForGoal applies the goal multiplier to finalTDEE, clamps the result
// to [sex floor, MaxCalories] and rounds to the nearest whole calorie. A NaN
// estimate yields the floor.
func AdjustForGoal(finalTDEE float64, goal Goal, sex Sex) int {
	floor := float64(CalorieFloor(sex))
	raw := finalTDEE * lookup(goalMultipliers, goal)
	if math.IsNaN(raw) {
		return int(floor)
	}
	raw = math.Min(math.Max(raw, floor), MaxCalories)
	return int(math.Round(raw))
}

// GoalMultiplier exposes the multiplier for goal (1.0 when unknown).
func GoalMultiplier(goal Goal) float64 {
	return lookup(goalMultipliers, goal)
}
