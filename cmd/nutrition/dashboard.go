// ABOUTME: CLI command for the nutrition dashboard.
// ABOUTME: Prints totals, daily averages, completion and macro split for a window.
package main

import (
	"encoding/json"
	"fmt"

	"github.com/fatih/color"
	"github.com/harperreed/nutrition/internal/models"
	"github.com/harperreed/nutrition/internal/nutrition"
	"github.com/spf13/cobra"
)

var (
	dashboardWindow string
	dashboardDate   string
	dashboardJSON   bool
)

var dashboardCmd = &cobra.Command{
	Use:     "dashboard",
	Aliases: []string{"dash", "d"},
	Short:   "Show nutrition totals for a time window",
	Long: `Summarize the meals in a time window.

WINDOWS:

  day              One day (--date, default today)
  week             The last 7 days including today
  month            The last 30 days including today
  calendar-month   The month containing --date

The daily average divides by the number of days that have meals, not by
the window length.

EXAMPLES:

  nutrition dashboard                          # Today
  nutrition dashboard -w week
  nutrition dashboard -w calendar-month --date 2024-02-01
  nutrition dashboard -w month --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		w, err := nutrition.ParseWindow(dashboardWindow, dashboardDate)
		if err != nil {
			return err
		}

		sum, err := svc.Dashboard(w)
		if err != nil {
			return fmt.Errorf("failed to build dashboard: %w", err)
		}

		if dashboardJSON {
			data, err := json.MarshalIndent(sum, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(data))
			return nil
		}

		printSummary(sum)
		return nil
	},
}

func printSummary(sum nutrition.Summary) {
	faint := color.New(color.Faint)
	bold := color.New(color.Bold)

	bold.Printf("%s  %s → %s\n", sum.Window,
		sum.Start.Format(models.DateFormat), sum.End.Format(models.DateFormat))
	fmt.Printf("  Meals: %d (%d completed, %.0f%%)  Days with meals: %d\n",
		sum.MealCount, sum.CompletedCount, sum.CompletionRate, sum.DaysWithMeals)
	fmt.Println()

	fmt.Printf("  %s %s %s\n", padRight("", 10), padRight("total", 12), "daily avg")
	total := sum.Totals.Fields()
	avg := sum.DailyAverage.Fields()
	for _, name := range models.NutrientNames {
		unit := models.NutrientUnits[name]
		fmt.Printf("  %s %s %s\n",
			padRight(name, 10),
			padRight(fmt.Sprintf("%.1f %s", total[name], unit), 12),
			faint.Sprintf("%.1f %s", avg[name], unit))
	}
	fmt.Println()

	m := sum.Macros
	fmt.Printf("  Macros: protein %.0f%%  carbs %.0f%%  fat %.0f%%\n", m.ProteinPct, m.CarbsPct, m.FatPct)

	if len(sum.ByType) > 0 {
		fmt.Println()
		for _, mt := range models.AllMealTypes {
			if p, ok := sum.ByType[mt]; ok {
				fmt.Printf("  %s %s\n", padRight(string(mt), 10), formatProfile(p))
			}
		}
	}

	if len(sum.Series) > 1 {
		fmt.Println()
		for _, d := range sum.Series {
			fmt.Printf("  %s %6.0f kcal  %s\n",
				faint.Sprint(d.Date.Format(models.DateFormat)),
				d.Totals.Calories,
				faint.Sprintf("%d/%d", d.Completed, d.Meals))
		}
	}
}

func init() {
	dashboardCmd.Flags().StringVarP(&dashboardWindow, "window", "w", "day", "day, week, month, calendar-month")
	dashboardCmd.Flags().StringVar(&dashboardDate, "date", "", "anchor date YYYY-MM-DD for day and calendar-month")
	dashboardCmd.Flags().BoolVar(&dashboardJSON, "json", false, "print the summary as JSON")
	rootCmd.AddCommand(dashboardCmd)
}
