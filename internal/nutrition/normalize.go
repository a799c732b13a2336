package nutrition

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrIncomplete is matched (via errors.Is) by every *IncompleteError.
var ErrIncomplete = errors.New("required fields are missing or not positive")

// IncompleteError lists the numeric fields that were absent, unparseable or
// not greater than zero. Fields are reported in form order.
type IncompleteError struct {
	Fields []string
}

func (e *IncompleteError) Error() string {
	return "incomplete calculator input: " + strings.Join(e.Fields, ", ")
}

func (e *IncompleteError) Is(target error) bool {
	return target == ErrIncomplete
}

// FormValue is a raw form field. In JSON it may be a string, a number or
// null; all of them decode to their textual form ("" for null).
type FormValue string

func (v *FormValue) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*v = ""
		return nil
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*v = FormValue(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("form value must be a string or number: %w", err)
	}
	*v = FormValue(n.String())
	return nil
}

// RawInput is the calculator form exactly as posted. Any field may be empty.
type RawInput struct {
	Sex          FormValue `json:"sex"`
	Biotype      FormValue `json:"biotype"`
	Age          FormValue `json:"age"`
	Weight       FormValue `json:"weight"`
	Height       FormValue `json:"height"`
	Activity     FormValue `json:"activity_level"`
	Goal         FormValue `json:"objective"`
	CurrentState FormValue `json:"current_state"`
}

// UnmarshalJSON also accepts the camelCase keys the calculator page uses
// (gender, activityLevel, currentState). The snake_case key wins when both
// are present.
func (in *RawInput) UnmarshalJSON(b []byte) error {
	type plain RawInput
	var aux struct {
		plain
		Gender            FormValue `json:"gender"`
		ActivityLevel     FormValue `json:"activityLevel"`
		CurrentStateCamel FormValue `json:"currentState"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	*in = RawInput(aux.plain)
	if in.Sex == "" {
		in.Sex = aux.Gender
	}
	if in.Activity == "" {
		in.Activity = aux.ActivityLevel
	}
	if in.CurrentState == "" {
		in.CurrentState = aux.CurrentStateCamel
	}
	return nil
}

// Baselines used when a categorical field is absent or unrecognised.
const (
	DefaultSex      = Male
	DefaultBiotype  = Mesomorph
	DefaultActivity = 1.55
	DefaultGoal     = Maintain
	DefaultState    = StateUnspecified
)

// ActivityMultipliers maps activity level names to their TDEE multiplier.
// The values are the only accepted activity factors.
var ActivityMultipliers = map[string]float64{
	"sedentary":   1.2,
	"light":       1.375,
	"moderate":    1.55,
	"active":      1.725,
	"very_active": 1.9,
}

// Upper bounds for the numeric fields. Values above them are reported like
// missing ones.
const (
	MaxAge      = 120
	MaxWeightKg = 500
	MaxHeightCm = 300
)

// Normalize coerces a raw form into UserMetrics. Age must be a whole number
// of years in 1..MaxAge; weight and height must be positive and within
// MaxWeightKg / MaxHeightCm. Otherwise an *IncompleteError naming the
// offending fields is returned and the metrics must not be used.
func Normalize(in RawInput) (UserMetrics, error) {
	var missing []string

	age, ok := parseInRange(string(in.Age), MaxAge)
	if !ok || age != math.Trunc(age) {
		missing = append(missing, "age")
	}
	weight, ok := parseInRange(string(in.Weight), MaxWeightKg)
	if !ok {
		missing = append(missing, "weight")
	}
	height, ok := parseInRange(string(in.Height), MaxHeightCm)
	if !ok {
		missing = append(missing, "height")
	}
	if len(missing) > 0 {
		return UserMetrics{}, &IncompleteError{Fields: missing}
	}

	return UserMetrics{
		Sex:            normalizeSex(string(in.Sex)),
		Biotype:        normalizeBiotype(string(in.Biotype)),
		Age:            int(age),
		WeightKg:       weight,
		HeightCm:       height,
		ActivityFactor: normalizeActivity(string(in.Activity)),
		Goal:           normalizeGoal(string(in.Goal)),
		CurrentState:   normalizeState(string(in.CurrentState)),
	}, nil
}

// parseInRange accepts "70", "70.5" and "70,5" in (0, max]. NaN and
// infinities are rejected.
func parseInRange(s string, max float64) (float64, bool) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 || v > max {
		return 0, false
	}
	return v, true
}

func normalizeSex(s string) Sex {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "female", "f", "feminino":
		return Female
	case "male", "m", "masculino":
		return Male
	}
	return DefaultSex
}

func normalizeBiotype(s string) Biotype {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ecto", "ectomorph":
		return Ectomorph
	case "meso", "mesomorph":
		return Mesomorph
	case "endo", "endomorph":
		return Endomorph
	}
	return DefaultBiotype
}

// normalizeActivity accepts either a level name or one of the multipliers
// themselves, since the calculator form posts the numeric value.
func normalizeActivity(s string) float64 {
	s = strings.ToLower(strings.TrimSpace(s))
	if mult, ok := ActivityMultipliers[s]; ok {
		return mult
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		for _, mult := range ActivityMultipliers {
			if v == mult {
				return mult
			}
		}
	}
	return DefaultActivity
}

// normalizeGoal accepts either a goal name or its multiplier ("0.85").
func normalizeGoal(s string) Goal {
	s = strings.ToLower(strings.TrimSpace(s))
	if _, ok := goalMultipliers[Goal(s)]; ok {
		return Goal(s)
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		for g, mult := range goalMultipliers {
			if v == mult {
				return g
			}
		}
	}
	return DefaultGoal
}

func normalizeState(s string) BodyState {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "lean", "magro":
		return StateLean
	case "lean-moderate-fat", "magro-gordura-moderada":
		return StateLeanModerateFat
	case "skinny-fat", "falso-magro":
		return StateSkinnyFat
	case "overweight", "muito-acima-peso":
		return StateOverweight
	}
	return DefaultState
}
