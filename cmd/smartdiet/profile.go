package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/smartdiet/smartdiet/internal/app"
	"github.com/smartdiet/smartdiet/internal/bodymetrics"
	"github.com/smartdiet/smartdiet/internal/profile"
)

type profileFlags struct {
	nickname   string
	weight     float64
	height     float64
	age        int
	gender     string
	activity   float64
	conditions []string
}

func (f *profileFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.nickname, "nickname", "", "Display name")
	cmd.Flags().Float64Var(&f.weight, "weight", 0, "Weight in kg")
	cmd.Flags().Float64Var(&f.height, "height", 0, "Height in cm")
	cmd.Flags().IntVar(&f.age, "age", 0, "Age in years")
	cmd.Flags().StringVar(&f.gender, "gender", "", "Male or Female")
	cmd.Flags().Float64Var(&f.activity, "activity", float64(bodymetrics.ActivitySedentary), "Activity factor (1.2, 1.375, 1.55, 1.725)")
	cmd.Flags().StringSliceVar(&f.conditions, "condition", nil, "Health condition (repeatable)")
}

func (f *profileFlags) input() profile.Input {
	return profile.Input{
		Nickname:         f.nickname,
		WeightKg:         f.weight,
		HeightCm:         f.height,
		Age:              f.age,
		Gender:           f.gender,
		ActivityFactor:   f.activity,
		HealthConditions: f.conditions,
	}
}

func (c *cli) profileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Manage your body profile and calorie target",
	}

	var setFlags profileFlags
	set := &cobra.Command{
		Use:   "set",
		Short: "Save the profile and recompute the daily calorie target",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withServices(cmd, func(svc *app.Services) error {
				p, err := svc.Profiles.Save(cmd.Context(), setFlags.input())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Saved profile for %s: %d kcal/day (BMI %.2f)\n", p.Nickname, p.CalorieTarget, p.BMI)
				return nil
			})
		},
	}
	setFlags.register(set)

	show := &cobra.Command{
		Use:   "show",
		Short: "Show the saved profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withServices(cmd, func(svc *app.Services) error {
				p, err := svc.Profiles.Current(cmd.Context())
				if err != nil {
					return err
				}
				if p == nil {
					return fmt.Errorf("no profile saved yet, run `smartdiet profile set`")
				}
				printProfile(cmd, p)
				return nil
			})
		},
	}

	var previewFlags profileFlags
	preview := &cobra.Command{
		Use:   "preview",
		Short: "Compute BMI, BMR, TDEE and calorie target without saving",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withServices(cmd, func(svc *app.Services) error {
				res, err := svc.Profiles.Preview(previewFlags.input())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "BMI\t%.2f\n", res.BMI)
				fmt.Fprintf(out, "BMR\t%.0f kcal\n", res.BMR)
				fmt.Fprintf(out, "TDEE\t%.0f kcal\n", res.TDEE)
				fmt.Fprintf(out, "TARGET\t%d kcal\n", res.CalorieTarget)
				return nil
			})
		},
	}
	previewFlags.register(preview)

	cmd.AddCommand(set, show, preview)
	return cmd
}

func printProfile(cmd *cobra.Command, p *profile.UserProfile) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Nickname\t%s\n", p.Nickname)
	fmt.Fprintf(out, "Weight\t%.1f kg\n", p.WeightKg)
	fmt.Fprintf(out, "Height\t%.1f cm\n", p.HeightCm)
	fmt.Fprintf(out, "Age\t%d\n", p.Age)
	fmt.Fprintf(out, "Gender\t%s\n", p.Gender)
	fmt.Fprintf(out, "Activity\t%s\n", p.Activity.Label())
	fmt.Fprintf(out, "BMI\t%.2f\n", p.BMI)
	fmt.Fprintf(out, "Target\t%d kcal\n", p.CalorieTarget)
	if len(p.HealthConditions) > 0 {
		fmt.Fprintf(out, "Conditions\t%s\n", strings.Join(p.HealthConditions, ", "))
	}
}
