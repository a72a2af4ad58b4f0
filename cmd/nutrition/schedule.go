// ABOUTME: CLI command for repeating a meal on future days.
// ABOUTME: Expands a recurrence rule and copies the template meal onto each date.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/harperreed/nutrition/internal/nutrition"
	"github.com/harperreed/nutrition/internal/tracker"
	"github.com/spf13/cobra"
)

var (
	scheduleStart    string
	scheduleEnd      string
	scheduleRule     string
	scheduleWeekdays string
)

var scheduleCmd = &cobra.Command{
	Use:     "schedule <meal-id>",
	Aliases: []string{"repeat"},
	Short:   "Copy a meal onto future days",
	Long: `Copy an existing meal onto every date produced by a recurrence rule.

Each copy is an independent, uncompleted meal with fresh IDs and freshly
computed totals.

RULES:

  none       Only the start date
  daily      Every day
  weekly     The start date's weekday
  weekdays   Monday to Friday
  weekends   Saturday and Sunday
  custom     The days listed in --days

Without --end the schedule covers the next 30 days. An end before the
start produces nothing.

EXAMPLES:

  nutrition schedule abc12345 --rule weekdays --start 2024-01-08 --end 2024-01-19
  nutrition schedule abc12345 --rule custom --days mon,wed,fri
  nutrition schedule abc12345 --rule weekly --end 2024-03-31`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		in := tracker.ScheduleInput{
			TemplateID: args[0],
			Start:      scheduleStart,
			End:        scheduleEnd,
			Rule:       scheduleRule,
		}
		if scheduleWeekdays != "" {
			days, err := nutrition.ParseWeekdays(scheduleWeekdays)
			if err != nil {
				return fmt.Errorf("invalid --days: %w", err)
			}
			in.Weekdays = days
		}

		res, err := svc.Schedule(in)
		if err != nil {
			return err
		}

		if len(res.Meals) == 0 {
			fmt.Println("No dates matched; nothing scheduled.")
			return nil
		}

		color.Green("✓ Scheduled %d meals", len(res.Meals))
		for _, m := range res.Meals {
			printMealLine(m)
		}
		printWarnings(res.Warnings)
		return nil
	},
}

func init() {
	scheduleCmd.Flags().StringVar(&scheduleStart, "start", "", "first date YYYY-MM-DD (default: today)")
	scheduleCmd.Flags().StringVar(&scheduleEnd, "end", "", "last date YYYY-MM-DD (default: 30 days out)")
	scheduleCmd.Flags().StringVarP(&scheduleRule, "rule", "r", "none", "none, daily, weekly, weekdays, weekends, custom")
	scheduleCmd.Flags().StringVar(&scheduleWeekdays, "days", "", "weekdays for custom rule (mon,wed or 1,3)")
	rootCmd.AddCommand(scheduleCmd)
}
