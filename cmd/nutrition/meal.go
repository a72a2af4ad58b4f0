// ABOUTME: CLI commands for logging meals and editing their items.
// ABOUTME: Every item change recomputes the meal totals before saving.
package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/harperreed/nutrition/internal/models"
	"github.com/harperreed/nutrition/internal/nutrition"
	"github.com/harperreed/nutrition/internal/storage"
	"github.com/harperreed/nutrition/internal/tracker"
	"github.com/spf13/cobra"
)

var (
	mealDate  string
	mealNotes string

	mealListDate  string
	mealListFrom  string
	mealListTo    string
	mealListType  string
	mealListLimit int

	mealReopen bool
)

var mealCmd = &cobra.Command{
	Use:     "meal",
	Aliases: []string{"meals", "m"},
	Short:   "Log and edit meals",
	Long: `Log and edit meals.

A meal is a breakfast, lunch, dinner or snack on a given day, made of
catalog foods in grams. Items are written as FOOD:GRAMS where FOOD is a
food ID or ID prefix.

SUBCOMMANDS:

  add        Log a meal
  show       Show a meal with per-item nutrients
  list       List meals
  item       Add, resize or remove items
  complete   Mark a meal as eaten (or --reopen it)
  delete     Delete a meal`,
}

var mealAddCmd = &cobra.Command{
	Use:     "add <type> <food:grams>...",
	Aliases: []string{"a"},
	Short:   "Log a meal",
	Long: `Log a meal of the given type with one or more items.

TYPES:

  breakfast, lunch, dinner, snack

EXAMPLES:

  nutrition meal add breakfast 1a2b3c4d:60 5e6f7a8b:200
  nutrition meal add lunch 1a2b:150 --date 2024-01-15
  nutrition meal add snack 9c0d:30 --notes "after run"`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		items, err := parseItemArgs(args[1:])
		if err != nil {
			return err
		}

		res, err := svc.CreateMeal(tracker.MealInput{
			Date:  mealDate,
			Type:  args[0],
			Notes: mealNotes,
			Items: items,
		})
		if err != nil {
			return err
		}

		color.Green("✓ Logged %s", res.Meal.Type)
		printMealLine(res.Meal)
		printWarnings(res.Warnings)
		return nil
	},
}

var mealShowCmd = &cobra.Command{
	Use:     "show <id>",
	Aliases: []string{"get"},
	Short:   "Show a meal with its items",
	Long: `Show a meal, each item's computed nutrients and the meal totals.

EXAMPLES:

  nutrition meal show abc12345`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := svc.GetMeal(args[0])
		if err != nil {
			return fmt.Errorf("meal not found: %s: %w", args[0], err)
		}

		faint := color.New(color.Faint)
		status := color.YellowString("planned")
		if m.Completed {
			status = color.GreenString("completed")
		}
		fmt.Printf("%s %s %s\n",
			color.New(color.Bold).Sprintf("%s %s", m.DateString(), m.Type),
			status,
			faint.Sprint(m.ID.String()))
		if m.Notes != nil && *m.Notes != "" {
			fmt.Printf("  Notes: %s\n", *m.Notes)
		}
		fmt.Println()

		fmt.Println("  Items:")
		for _, it := range m.Items {
			line := "uncomputed"
			if it.Nutrients != nil {
				line = formatProfile(*it.Nutrients)
			}
			fmt.Printf("    %s %s %6.0fg  %s\n",
				faint.Sprint(it.ID.String()[:8]),
				padRight(truncate(it.FoodName, 28), 28),
				it.Grams,
				line)
		}
		fmt.Println()
		fmt.Println("  Totals:")
		printProfile(m.Totals, "    ")
		return nil
	},
}

var mealListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls", "l"},
	Short:   "List meals",
	Long: `List meals by date, breakfast to snack within a day.

OUTPUT FORMAT:

  Each line shows: ID  DATE  TYPE  ITEMS  TOTALS  [✓]

EXAMPLES:

  nutrition meal list                            # First 20 meals
  nutrition meal list --date 2024-01-15          # One day
  nutrition meal list --from 2024-01-01 --to 2024-01-07 -t dinner`,
	RunE: func(cmd *cobra.Command, args []string) error {
		filter, err := mealFilterFromFlags()
		if err != nil {
			return err
		}

		meals, err := svc.ListMeals(filter)
		if err != nil {
			return fmt.Errorf("failed to list meals: %w", err)
		}

		if len(meals) == 0 {
			fmt.Println("No meals found.")
			return nil
		}

		for _, m := range meals {
			printMealLine(m)
		}
		return nil
	},
}

var mealItemCmd = &cobra.Command{
	Use:   "item",
	Short: "Add, resize or remove meal items",
	Long: `Edit the items of a meal. Totals are recomputed after every change.

EXAMPLES:

  nutrition meal item add abc12345 1a2b:80
  nutrition meal item resize abc12345 9f8e 120
  nutrition meal item rm abc12345 9f8e`,
}

var mealItemAddCmd = &cobra.Command{
	Use:   "add <meal-id> <food:grams>",
	Short: "Add an item to a meal",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		items, err := parseItemArgs(args[1:])
		if err != nil {
			return err
		}
		res, err := svc.AddItem(args[0], items[0])
		if err != nil {
			return err
		}
		color.Green("✓ Added item")
		printMealLine(res.Meal)
		printWarnings(res.Warnings)
		return nil
	},
}

var mealItemResizeCmd = &cobra.Command{
	Use:     "resize <meal-id> <item-id> <grams>",
	Aliases: []string{"set"},
	Short:   "Change an item's grams",
	Args:    cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		grams, err := strconv.ParseFloat(args[2], 64)
		if err != nil {
			return fmt.Errorf("invalid grams: %s", args[2])
		}
		res, err := svc.ResizeItem(args[0], args[1], grams)
		if err != nil {
			return err
		}
		color.Green("✓ Resized item")
		printMealLine(res.Meal)
		printWarnings(res.Warnings)
		return nil
	},
}

var mealItemRemoveCmd = &cobra.Command{
	Use:     "rm <meal-id> <item-id>",
	Aliases: []string{"remove", "del"},
	Short:   "Remove an item from a meal",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := svc.RemoveItem(args[0], args[1])
		if err != nil {
			return err
		}
		color.Yellow("✗ Removed item")
		printMealLine(res.Meal)
		printWarnings(res.Warnings)
		return nil
	},
}

var mealCompleteCmd = &cobra.Command{
	Use:     "complete <id>",
	Aliases: []string{"done"},
	Short:   "Mark a meal as eaten",
	Long: `Mark a meal as completed. Totals are not changed.

EXAMPLES:

  nutrition meal complete abc12345
  nutrition meal complete abc12345 --reopen   # Back to planned`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := svc.SetCompleted(args[0], !mealReopen)
		if err != nil {
			return err
		}
		if m.Completed {
			color.Green("✓ Completed %s", m.Type)
		} else {
			color.Yellow("↺ Reopened %s", m.Type)
		}
		printMealLine(m)
		return nil
	},
}

var mealDeleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"del", "rm"},
	Short:   "Delete a meal",
	Long: `Delete a meal and all of its items.

CAUTION:

  This permanently deletes the meal. There is no undo.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := svc.DeleteMeal(args[0])
		if err != nil {
			return fmt.Errorf("failed to delete meal: %w", err)
		}
		color.Yellow("✗ Deleted %s", m.Type)
		printMealLine(m)
		return nil
	},
}

// parseItemArgs turns FOOD:GRAMS arguments into item inputs.
func parseItemArgs(args []string) ([]tracker.ItemInput, error) {
	items := make([]tracker.ItemInput, 0, len(args))
	for _, a := range args {
		i := strings.LastIndex(a, ":")
		if i <= 0 || i == len(a)-1 {
			return nil, fmt.Errorf("invalid item %q (use FOOD:GRAMS)", a)
		}
		grams, err := strconv.ParseFloat(a[i+1:], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid grams in %q", a)
		}
		items = append(items, tracker.ItemInput{FoodID: a[:i], Grams: grams})
	}
	return items, nil
}

func mealFilterFromFlags() (storage.MealFilter, error) {
	filter := storage.MealFilter{Limit: mealListLimit}
	if mealListDate != "" {
		d, err := models.ParseDay(mealListDate)
		if err != nil {
			return filter, fmt.Errorf("invalid date format: %s (use YYYY-MM-DD)", mealListDate)
		}
		day := storage.DayFilter(d)
		day.Limit = mealListLimit
		filter = day
	}
	for _, f := range []struct {
		val string
		dst **time.Time
	}{{mealListFrom, &filter.From}, {mealListTo, &filter.To}} {
		if f.val == "" {
			continue
		}
		d, err := models.ParseDay(f.val)
		if err != nil {
			return filter, fmt.Errorf("invalid date format: %s (use YYYY-MM-DD)", f.val)
		}
		*f.dst = &d
	}
	if mealListType != "" {
		mt, err := models.ParseMealType(mealListType)
		if err != nil {
			return filter, err
		}
		filter.Type = &mt
	}
	return filter, nil
}

func printMealLine(m *models.Meal) {
	faint := color.New(color.Faint)
	done := ""
	if m.Completed {
		done = color.GreenString(" ✓")
	}
	fmt.Printf("  %s %s %s %d items  %s%s\n",
		faint.Sprint(m.ID.String()[:8]),
		faint.Sprint(m.DateString()),
		padRight(string(m.Type), 9),
		len(m.Items),
		formatProfile(m.Totals),
		done)
}

func printWarnings(warnings []nutrition.Warning) {
	for _, w := range warnings {
		color.Yellow("  ! %s", w.String())
	}
}

func init() {
	mealAddCmd.Flags().StringVar(&mealDate, "date", "", "meal date YYYY-MM-DD (default: today)")
	mealAddCmd.Flags().StringVar(&mealNotes, "notes", "", "notes for the meal")

	mealListCmd.Flags().StringVar(&mealListDate, "date", "", "only this day (YYYY-MM-DD)")
	mealListCmd.Flags().StringVar(&mealListFrom, "from", "", "first day (YYYY-MM-DD)")
	mealListCmd.Flags().StringVar(&mealListTo, "to", "", "last day (YYYY-MM-DD)")
	mealListCmd.Flags().StringVarP(&mealListType, "type", "t", "", "filter by meal type")
	mealListCmd.Flags().IntVarP(&mealListLimit, "limit", "n", 20, "max number of results")

	mealCompleteCmd.Flags().BoolVar(&mealReopen, "reopen", false, "mark the meal as planned again")

	mealItemCmd.AddCommand(mealItemAddCmd, mealItemResizeCmd, mealItemRemoveCmd)
	mealCmd.AddCommand(mealAddCmd, mealShowCmd, mealListCmd, mealItemCmd, mealCompleteCmd, mealDeleteCmd)
	rootCmd.AddCommand(mealCmd)
}
