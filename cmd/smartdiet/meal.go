package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/smartdiet/smartdiet/internal/app"
	"github.com/smartdiet/smartdiet/internal/meal"
)

func (c *cli) mealCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "meal",
		Short: "Log and analyze meals",
	}

	var save bool
	analyze := &cobra.Command{
		Use:   "analyze <description>",
		Short: "Ask Gemini for the calories and macros of a meal",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withServices(cmd, func(svc *app.Services) error {
				res, err := svc.Analyzer.Analyze(cmd.Context(), strings.Join(args, " "))
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "%s\n", strings.TrimSpace(res.Description))
				fmt.Fprintf(out, "%d kcal  P %.1fg  C %.1fg  F %.1fg\n", res.Calories, res.Protein, res.Carbs, res.Fat)
				if text := strings.TrimSpace(res.Analysis); text != "" {
					fmt.Fprintf(out, "%s\n", text)
				}
				if !save {
					return nil
				}
				rec, err := svc.Analyzer.Save(cmd.Context(), res, nil)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Saved meal %d\n", rec.ID)
				return nil
			})
		},
	}
	analyze.Flags().BoolVar(&save, "save", false, "Save the analyzed meal")

	add := &cobra.Command{
		Use:   "add <description>",
		Short: "Log a meal without analysis",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withServices(cmd, func(svc *app.Services) error {
				rec, err := svc.Meals.AddManual(cmd.Context(), strings.Join(args, " "))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added meal %d\n", rec.ID)
				return nil
			})
		},
	}

	var limit int
	list := &cobra.Command{
		Use:   "list",
		Short: "List logged meals, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withServices(cmd, func(svc *app.Services) error {
				var (
					records []*meal.Record
					err     error
				)
				if limit > 0 {
					records, err = svc.Meals.Recent(cmd.Context(), limit)
				} else {
					records, err = svc.Meals.List(cmd.Context())
				}
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, "ID\tTIME\tKCAL\tDESCRIPTION")
				for _, r := range records {
					fmt.Fprintf(out, "%d\t%s\t%s\t%s\n", r.ID, r.Timestamp.Local().Format("2006-01-02 15:04"), calories(r), r.Description)
				}
				return nil
			})
		},
	}
	list.Flags().IntVar(&limit, "limit", 0, "Show only the most recent meals")

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a meal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("meal id", args[0])
			if err != nil {
				return err
			}
			return c.withServices(cmd, func(svc *app.Services) error {
				if err := svc.Meals.Delete(cmd.Context(), id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted meal %d\n", id)
				return nil
			})
		},
	}

	today := &cobra.Command{
		Use:   "today",
		Short: "Show today's calories against the target",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withServices(cmd, func(svc *app.Services) error {
				sum, err := svc.Meals.Today(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d / %d kcal (%d remaining, %.0f%%)\n",
					sum.Date.Format("2006-01-02"), sum.Consumed, sum.Target, sum.Remaining, sum.Progress*100)
				return nil
			})
		},
	}

	cmd.AddCommand(analyze, add, list, del, today)
	return cmd
}

func calories(r *meal.Record) string {
	if r.Calories == nil {
		return "-"
	}
	return strconv.Itoa(*r.Calories)
}

func parseID(name, value string) (int64, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, value)
	}
	if v <= 0 {
		return 0, fmt.Errorf("%s must be > 0", name)
	}
	return v, nil
}
