// ABOUTME: CLI commands for the food catalog.
// ABOUTME: Add, list, show, delete and look up foods by barcode or name.
package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/harperreed/nutrition/internal/models"
	"github.com/harperreed/nutrition/internal/tracker"
	"github.com/spf13/cobra"
)

var (
	foodBrand    string
	foodCategory string
	foodBarcode  string
	foodTags     []string
	foodProfile  models.NutrientProfile

	foodListQuery    string
	foodListCategory string
	foodListLimit    int

	lookupBarcode string
	lookupSave    bool
)

var foodCmd = &cobra.Command{
	Use:     "food",
	Aliases: []string{"foods", "f"},
	Short:   "Manage the food catalog",
	Long: `Manage the food catalog.

Every food carries a nutrient profile per 100 grams. Meals reference foods
by ID, and each meal item's nutrients are the profile scaled by its grams.

SUBCOMMANDS:

  add       Add a food by hand
  list      List or search foods
  show      Show a food's full profile
  delete    Remove a food from the catalog
  lookup    Resolve a barcode or name via the catalog and Open Food Facts`,
}

var foodAddCmd = &cobra.Command{
	Use:     "add <name>",
	Aliases: []string{"a"},
	Short:   "Add a food to the catalog",
	Long: `Add a food with its nutrient profile per 100 grams.

Missing nutrient flags default to 0. Negative values are rejected.

EXAMPLES:

  nutrition food add "Rolled oats" --kcal 389 --protein 16.9 --carbs 66.3 --fat 6.9 --fiber 10.6
  nutrition food add "Whole milk" --kcal 61 --protein 3.2 --carbs 4.8 --fat 3.3 --calcium 113
  nutrition food add "Nutella" --brand Ferrero --barcode 3017620422003 --kcal 539`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := svc.AddFood(tracker.FoodInput{
			Name:     strings.Join(args, " "),
			Brand:    foodBrand,
			Category: foodCategory,
			Barcode:  foodBarcode,
			Per100g:  foodProfile,
			Tags:     foodTags,
		})
		if err != nil {
			return err
		}

		color.Green("✓ Added %s", f.DisplayName())
		fmt.Printf("  %s %s\n",
			color.New(color.Faint).Sprint(f.ID.String()[:8]),
			formatProfile(f.Per100g))
		return nil
	},
}

var foodListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls", "l"},
	Short:   "List or search foods",
	Long: `List foods in the catalog.

OUTPUT FORMAT:

  Each line shows: ID  NAME  CATEGORY  KCAL/100g  [needs-review]

  The ID is an 8-character prefix you can use anywhere a food ID is expected.

EXAMPLES:

  nutrition food list                  # First 50 foods
  nutrition food list -q oat           # Search by name or brand
  nutrition food list -c dairy -n 10   # Ten foods in the dairy category`,
	RunE: func(cmd *cobra.Command, args []string) error {
		foods, err := svc.ListFoods(foodListQuery, foodListCategory, foodListLimit)
		if err != nil {
			return fmt.Errorf("failed to list foods: %w", err)
		}

		if len(foods) == 0 {
			fmt.Println("No foods found.")
			return nil
		}

		faint := color.New(color.Faint)
		for _, f := range foods {
			review := ""
			if f.NeedsReview() {
				review = color.YellowString(" [%s]", models.TagNeedsReview)
			}
			fmt.Printf("%s %s %s %6.0f kcal%s\n",
				faint.Sprint(f.ID.String()[:8]),
				padRight(truncate(f.DisplayName(), 32), 32),
				faint.Sprint(padRight(f.Category, 14)),
				f.Per100g.Calories,
				review)
		}
		return nil
	},
}

var foodShowCmd = &cobra.Command{
	Use:     "show <id>",
	Aliases: []string{"get"},
	Short:   "Show a food's nutrient profile",
	Long: `Show a food with every nutrient of its per-100g profile.

EXAMPLES:

  nutrition food show abc12345`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := svc.GetFood(args[0])
		if err != nil {
			return fmt.Errorf("food not found: %s: %w", args[0], err)
		}

		faint := color.New(color.Faint)
		fmt.Printf("%s %s\n", color.New(color.Bold).Sprint(f.DisplayName()), faint.Sprint(f.ID.String()))
		fmt.Printf("  Category: %s\n", f.Category)
		if f.Barcode != nil {
			fmt.Printf("  Barcode:  %s\n", *f.Barcode)
		}
		if len(f.Tags) > 0 {
			fmt.Printf("  Tags:     %s\n", strings.Join(f.Tags, ", "))
		}
		fmt.Println()
		fmt.Println("  Per 100g:")
		printProfile(f.Per100g, "    ")
		return nil
	},
}

var foodDeleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"del", "rm"},
	Short:   "Delete a food",
	Long: `Delete a food by its ID or ID prefix.

Meals that used the food keep its name, but their next recomputation counts
the item as zero and reports a warning.

EXAMPLES:

  nutrition food delete abc12345
  nutrition food rm abc1               # Short prefix (if unique)`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := svc.DeleteFood(args[0])
		if err != nil {
			return fmt.Errorf("failed to delete food: %w", err)
		}

		color.Yellow("✗ Deleted %s", f.DisplayName())
		fmt.Printf("  %s\n", color.New(color.Faint).Sprint(f.ID.String()[:8]))
		return nil
	},
}

var foodLookupCmd = &cobra.Command{
	Use:   "lookup [name]",
	Short: "Look up a food by barcode or name",
	Long: `Resolve a food through the local catalog, then Open Food Facts.

A miss is not an error: you get a zero-nutrient placeholder tagged
needs-review that you can fill in later.

EXAMPLES:

  nutrition food lookup --barcode 3017620422003
  nutrition food lookup --barcode 3017620422003 --save
  nutrition food lookup "greek yogurt"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		q := tracker.LookupQuery{
			Barcode: lookupBarcode,
			Name:    strings.Join(args, " "),
			Save:    lookupSave,
		}
		if q.Barcode == "" && q.Name == "" {
			return fmt.Errorf("provide a name or --barcode")
		}

		res, err := svc.LookupFood(cmd.Context(), q)
		if err != nil {
			return err
		}

		if res.Found {
			color.Green("✓ Found %s via %s", res.Food.DisplayName(), res.Source)
		} else {
			color.Yellow("? No match, placeholder %s", res.Food.DisplayName())
		}
		fmt.Printf("  %s %s\n",
			color.New(color.Faint).Sprint(res.Food.ID.String()[:8]),
			formatProfile(res.Food.Per100g))
		if res.Saved {
			fmt.Println("  Saved to catalog.")
		}
		return nil
	},
}

// formatProfile is the one-line macro summary used in command output.
func formatProfile(p models.NutrientProfile) string {
	return fmt.Sprintf("%.0f kcal  P %.1fg  C %.1fg  F %.1fg",
		p.Calories, p.Protein, p.Carbs, p.Fat)
}

func printProfile(p models.NutrientProfile, indent string) {
	fields := p.Fields()
	for _, name := range models.NutrientNames {
		fmt.Printf("%s%s %.1f %s\n", indent, padRight(name, 10), fields[name], models.NutrientUnits[name])
	}
}

func addProfileFlags(cmd *cobra.Command, p *models.NutrientProfile) {
	fs := cmd.Flags()
	fs.Float64Var(&p.Calories, "kcal", 0, "calories per 100g")
	fs.Float64Var(&p.Protein, "protein", 0, "protein g per 100g")
	fs.Float64Var(&p.Carbs, "carbs", 0, "carbohydrates g per 100g")
	fs.Float64Var(&p.Fat, "fat", 0, "fat g per 100g")
	fs.Float64Var(&p.Fiber, "fiber", 0, "fiber g per 100g")
	fs.Float64Var(&p.Sodium, "sodium", 0, "sodium mg per 100g")
	fs.Float64Var(&p.Potassium, "potassium", 0, "potassium mg per 100g")
	fs.Float64Var(&p.Calcium, "calcium", 0, "calcium mg per 100g")
	fs.Float64Var(&p.Iron, "iron", 0, "iron mg per 100g")
	fs.Float64Var(&p.VitaminC, "vitamin-c", 0, "vitamin C mg per 100g")
	fs.Float64Var(&p.VitaminD, "vitamin-d", 0, "vitamin D µg per 100g")
}

func init() {
	foodAddCmd.Flags().StringVar(&foodBrand, "brand", "", "brand name")
	foodAddCmd.Flags().StringVar(&foodCategory, "category", "", "category (default: uncategorized)")
	foodAddCmd.Flags().StringVar(&foodBarcode, "barcode", "", "EAN/UPC barcode")
	foodAddCmd.Flags().StringSliceVar(&foodTags, "tag", nil, "tag (repeatable)")
	addProfileFlags(foodAddCmd, &foodProfile)

	foodListCmd.Flags().StringVarP(&foodListQuery, "query", "q", "", "search by name or brand")
	foodListCmd.Flags().StringVarP(&foodListCategory, "category", "c", "", "filter by category")
	foodListCmd.Flags().IntVarP(&foodListLimit, "limit", "n", 50, "max number of results")

	foodLookupCmd.Flags().StringVar(&lookupBarcode, "barcode", "", "barcode to resolve")
	foodLookupCmd.Flags().BoolVar(&lookupSave, "save", false, "store the result in the catalog")

	foodCmd.AddCommand(foodAddCmd, foodListCmd, foodShowCmd, foodDeleteCmd, foodLookupCmd)
	rootCmd.AddCommand(foodCmd)
}
