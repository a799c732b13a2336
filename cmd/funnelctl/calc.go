package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"lg/diet-funnel-go-api/internal/nutrition"
)

func newCalcCmd() *cobra.Command {
	var (
		asJSON  bool
		sex     string
		biotype string
		age     string
		weight  string
		height  string
		act     string
		goal    string
		state   string
	)

	cmd := &cobra.Command{
		Use:   "calc",
		Short: "Compute BMR, calorie target and macros",
		Long: `Compute BMR, daily calorie target and macro split for one person.

Age, weight and height are prompted for when not given as flags. Categorical
flags accept the same values as the web form (e.g. --state falso-magro,
--goal 0.85 or --goal mild-cut); anything unrecognised uses the baseline.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			reader := bufio.NewReader(cmd.InOrStdin())
			out := cmd.OutOrStdout()
			if age == "" {
				age = prompt(reader, out, "Age: ")
			}
			if weight == "" {
				weight = prompt(reader, out, "Weight (kg): ")
			}
			if height == "" {
				height = prompt(reader, out, "Height (cm): ")
			}

			in := nutrition.RawInput{
				Sex: nutrition.FormValue(sex), Biotype: nutrition.FormValue(biotype),
				Age: nutrition.FormValue(age), Weight: nutrition.FormValue(weight), Height: nutrition.FormValue(height),
				Activity: nutrition.FormValue(act), Goal: nutrition.FormValue(goal), CurrentState: nutrition.FormValue(state),
			}
			m, err := nutrition.Normalize(in)
			if err != nil {
				var incomplete *nutrition.IncompleteError
				if errors.As(err, &incomplete) {
					return fmt.Errorf("invalid or missing: %v", incomplete.Fields)
				}
				return err
			}

			res := nutrition.Calculate(m)
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			}
			printResult(cmd, res)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&sex, "sex", "", "male | female")
	f.StringVar(&biotype, "biotype", "", "ecto | meso | endo")
	f.StringVar(&age, "age", "", "age in years")
	f.StringVar(&weight, "weight", "", "weight in kg")
	f.StringVar(&height, "height", "", "height in cm")
	f.StringVar(&act, "activity", "", "activity factor (1.2 to 1.9) or level name")
	f.StringVar(&goal, "goal", "", "goal name or multiplier")
	f.StringVar(&state, "state", "", "current body state")
	f.BoolVar(&asJSON, "json", false, "print the result as JSON")
	return cmd
}

func printResult(cmd *cobra.Command, res nutrition.Result) {
	e, mb := res.Estimate, res.Macros
	cmd.Printf("\nBMR:            %.0f kcal\n", e.BMR)
	cmd.Printf("Adjusted BMR:   %.0f kcal\n", e.AdjustedBMR)
	cmd.Printf("TDEE:           %.0f kcal\n", e.TDEE)
	cmd.Printf("Daily target:   %d kcal (%s)\n", e.FinalCalories, res.Metrics.Goal)
	cmd.Printf("  Protein:      %.0f g\n", mb.ProteinGrams)
	cmd.Printf("  Fat:          %.0f g\n", mb.FatGrams)
	cmd.Printf("  Carbs:        %.0f g\n", mb.CarbGrams)
}
