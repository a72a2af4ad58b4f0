// ABOUTME: MCP tool implementations for the nutrition tracker.
// ABOUTME: Food catalog, meal logging, scheduling and dashboard tools.
package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/harperreed/nutrition/internal/models"
	"github.com/harperreed/nutrition/internal/nutrition"
	"github.com/harperreed/nutrition/internal/storage"
	"github.com/harperreed/nutrition/internal/tracker"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func (s *Server) registerTools() {
	// add_food
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "add_food",
		Description: "Add a food to the catalog with its nutrients per 100 grams",
	}, s.handleAddFood)

	// list_foods
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_foods",
		Description: "Search or list catalog foods, optionally filtered by category",
	}, s.handleListFoods)

	// lookup_food
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "lookup_food",
		Description: "Look up nutrition data by barcode or name (local catalog, then Open Food Facts)",
	}, s.handleLookupFood)

	// create_meal
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "create_meal",
		Description: "Log a meal made of catalog foods and gram quantities",
	}, s.handleCreateMeal)

	// add_meal_item
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "add_meal_item",
		Description: "Add a food to an existing meal",
	}, s.handleAddMealItem)

	// complete_meal
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "complete_meal",
		Description: "Mark a meal as eaten, or reopen it",
	}, s.handleCompleteMeal)

	// list_meals
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_meals",
		Description: "List meals for a date or date range",
	}, s.handleListMeals)

	// delete_meal
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "delete_meal",
		Description: "Delete a meal by ID or ID prefix",
	}, s.handleDeleteMeal)

	// dashboard
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "dashboard",
		Description: "Nutrition totals, daily averages, completion rate and macro split for a time window",
	}, s.handleDashboard)

	// schedule_meal
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "schedule_meal",
		Description: "Copy a meal onto future dates using a recurrence rule",
	}, s.handleScheduleMeal)
}

// Tool input/output types

type addFoodInput struct {
	Name     string                 `json:"name" jsonschema:"Food name"`
	Brand    string                 `json:"brand,omitempty" jsonschema:"Brand"`
	Category string                 `json:"category,omitempty" jsonschema:"Category label"`
	Barcode  string                 `json:"barcode,omitempty" jsonschema:"EAN/UPC barcode"`
	Per100g  models.NutrientProfile `json:"per100g" jsonschema:"Nutrients per 100 grams (calories kcal; protein, carbs, fat, fiber g; sodium, potassium, calcium, iron, vitaminC mg; vitaminD µg)"`
	Tags     []string               `json:"tags,omitempty" jsonschema:"Free-text tags"`
}

type foodOutput struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	NeedsReview bool   `json:"needs_review"`
	Message     string `json:"message"`
}

type listFoodsInput struct {
	Query    string `json:"query,omitempty" jsonschema:"Name or brand search"`
	Category string `json:"category,omitempty" jsonschema:"Filter by category"`
	Limit    int    `json:"limit,omitempty" jsonschema:"Max results (default 20)"`
}

type lookupFoodInput struct {
	Barcode string `json:"barcode,omitempty" jsonschema:"Barcode to look up"`
	Name    string `json:"name,omitempty" jsonschema:"Food name to search for"`
	Save    bool   `json:"save,omitempty" jsonschema:"Store the result in the catalog"`
}

type itemInput struct {
	FoodID string  `json:"food_id" jsonschema:"Food ID or prefix"`
	Grams  float64 `json:"grams" jsonschema:"Quantity in grams"`
}

type createMealInput struct {
	Date  string      `json:"date,omitempty" jsonschema:"Date YYYY-MM-DD, defaults to today"`
	Type  string      `json:"type" jsonschema:"breakfast, lunch, dinner or snack"`
	Notes string      `json:"notes,omitempty" jsonschema:"Optional notes"`
	Items []itemInput `json:"items" jsonschema:"Foods in the meal"`
}

type mealOutput struct {
	ID       string   `json:"id"`
	Date     string   `json:"date"`
	Type     string   `json:"type"`
	Calories float64  `json:"calories"`
	Protein  float64  `json:"protein"`
	Carbs    float64  `json:"carbs"`
	Fat      float64  `json:"fat"`
	Warnings []string `json:"warnings,omitempty"`
	Message  string   `json:"message"`
}

type addMealItemInput struct {
	MealID string  `json:"meal_id" jsonschema:"Meal ID or prefix"`
	FoodID string  `json:"food_id" jsonschema:"Food ID or prefix"`
	Grams  float64 `json:"grams" jsonschema:"Quantity in grams"`
}

type completeMealInput struct {
	ID     string `json:"id" jsonschema:"Meal ID or prefix"`
	Reopen bool   `json:"reopen,omitempty" jsonschema:"Mark the meal as not eaten instead"`
}

type listMealsInput struct {
	Date  string `json:"date,omitempty" jsonschema:"Single date YYYY-MM-DD"`
	From  string `json:"from,omitempty" jsonschema:"Range start YYYY-MM-DD"`
	To    string `json:"to,omitempty" jsonschema:"Range end YYYY-MM-DD"`
	Type  string `json:"type,omitempty" jsonschema:"Filter by meal type"`
	Limit int    `json:"limit,omitempty" jsonschema:"Max results (default 50)"`
}

type deleteMealInput struct {
	ID string `json:"id" jsonschema:"Meal ID or prefix"`
}

type simpleOutput struct {
	Message string `json:"message"`
}

type dashboardInput struct {
	Window string `json:"window,omitempty" jsonschema:"day, week, month or calendar-month (default day)"`
	Date   string `json:"date,omitempty" jsonschema:"Day or month anchor YYYY-MM-DD, defaults to today"`
}

type scheduleMealInput struct {
	TemplateID string `json:"template_id" jsonschema:"ID or prefix of the meal to copy"`
	Start      string `json:"start,omitempty" jsonschema:"First date YYYY-MM-DD, defaults to today"`
	End        string `json:"end,omitempty" jsonschema:"Last date YYYY-MM-DD, defaults to 30 days after start"`
	Rule       string `json:"rule,omitempty" jsonschema:"none, daily, weekly, weekdays, weekends or custom"`
	Weekdays   string `json:"weekdays,omitempty" jsonschema:"For custom: comma separated weekdays such as mon,wed,fri"`
}

// Tool handlers

func (s *Server) handleAddFood(ctx context.Context, req *mcp.CallToolRequest, input addFoodInput) (*mcp.CallToolResult, foodOutput, error) {
	f, err := s.svc.AddFood(tracker.FoodInput{
		Name:     input.Name,
		Brand:    input.Brand,
		Category: input.Category,
		Barcode:  input.Barcode,
		Per100g:  input.Per100g,
		Tags:     input.Tags,
	})
	if err != nil {
		return nil, foodOutput{}, fmt.Errorf("failed to add food: %w", err)
	}

	return nil, foodOutput{
		ID:      f.ID.String()[:8],
		Name:    f.Name,
		Message: fmt.Sprintf("Added %s: %.0f kcal/100g (ID: %s)", f.Name, f.Per100g.Calories, f.ID.String()[:8]),
	}, nil
}

func (s *Server) handleListFoods(ctx context.Context, req *mcp.CallToolRequest, input listFoodsInput) (*mcp.CallToolResult, any, error) {
	if input.Limit <= 0 {
		input.Limit = 20
	}

	foods, err := s.svc.ListFoods(input.Query, input.Category, input.Limit)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list foods: %w", err)
	}

	if len(foods) == 0 {
		return nil, map[string]interface{}{"message": "No foods found."}, nil
	}

	return nil, map[string]interface{}{"foods": foods}, nil
}

func (s *Server) handleLookupFood(ctx context.Context, req *mcp.CallToolRequest, input lookupFoodInput) (*mcp.CallToolResult, foodOutput, error) {
	res, err := s.svc.LookupFood(ctx, tracker.LookupQuery{Barcode: input.Barcode, Name: input.Name, Save: input.Save})
	if err != nil {
		return nil, foodOutput{}, fmt.Errorf("lookup failed: %w", err)
	}

	f := res.Food
	out := foodOutput{ID: f.ID.String()[:8], Name: f.Name, NeedsReview: f.NeedsReview()}
	switch {
	case !res.Found:
		out.Message = fmt.Sprintf("No match for %s; placeholder with zero nutrients needs manual correction", f.Name)
	default:
		out.Message = fmt.Sprintf("Found %s via %s: %.0f kcal/100g", f.DisplayName(), res.Source, f.Per100g.Calories)
	}
	if res.Saved {
		out.Message += fmt.Sprintf(" (saved as %s)", out.ID)
	}
	return nil, out, nil
}

func toMealOutput(res *tracker.MealResult, verb string) mealOutput {
	m := res.Meal
	out := mealOutput{
		ID:       m.ID.String()[:8],
		Date:     m.DateString(),
		Type:     string(m.Type),
		Calories: m.Totals.Calories,
		Protein:  m.Totals.Protein,
		Carbs:    m.Totals.Carbs,
		Fat:      m.Totals.Fat,
		Message:  fmt.Sprintf("%s %s on %s: %.0f kcal (ID: %s)", verb, m.Type, m.DateString(), m.Totals.Calories, m.ID.String()[:8]),
	}
	for _, w := range res.Warnings {
		out.Warnings = append(out.Warnings, w.String())
	}
	return out
}

func (s *Server) handleCreateMeal(ctx context.Context, req *mcp.CallToolRequest, input createMealInput) (*mcp.CallToolResult, mealOutput, error) {
	in := tracker.MealInput{Date: input.Date, Type: input.Type, Notes: input.Notes}
	for _, it := range input.Items {
		in.Items = append(in.Items, tracker.ItemInput{FoodID: it.FoodID, Grams: it.Grams})
	}

	res, err := s.svc.CreateMeal(in)
	if err != nil {
		return nil, mealOutput{}, fmt.Errorf("failed to create meal: %w", err)
	}
	return nil, toMealOutput(res, "Logged"), nil
}

func (s *Server) handleAddMealItem(ctx context.Context, req *mcp.CallToolRequest, input addMealItemInput) (*mcp.CallToolResult, mealOutput, error) {
	res, err := s.svc.AddItem(input.MealID, tracker.ItemInput{FoodID: input.FoodID, Grams: input.Grams})
	if err != nil {
		return nil, mealOutput{}, fmt.Errorf("failed to add item: %w", err)
	}
	return nil, toMealOutput(res, "Updated"), nil
}

func (s *Server) handleCompleteMeal(ctx context.Context, req *mcp.CallToolRequest, input completeMealInput) (*mcp.CallToolResult, simpleOutput, error) {
	m, err := s.svc.SetCompleted(input.ID, !input.Reopen)
	if err != nil {
		return nil, simpleOutput{}, fmt.Errorf("failed to update meal: %w", err)
	}

	state := "completed"
	if !m.Completed {
		state = "reopened"
	}
	return nil, simpleOutput{
		Message: fmt.Sprintf("Meal %s %s", m.ID.String()[:8], state),
	}, nil
}

func (s *Server) handleListMeals(ctx context.Context, req *mcp.CallToolRequest, input listMealsInput) (*mcp.CallToolResult, any, error) {
	if input.Limit <= 0 {
		input.Limit = 50
	}

	var filter storage.MealFilter
	if input.Date != "" {
		d, err := models.ParseDay(input.Date)
		if err != nil {
			return nil, nil, err
		}
		filter = storage.DayFilter(d)
	}
	if input.From != "" {
		d, err := models.ParseDay(input.From)
		if err != nil {
			return nil, nil, err
		}
		filter.From = &d
	}
	if input.To != "" {
		d, err := models.ParseDay(input.To)
		if err != nil {
			return nil, nil, err
		}
		filter.To = &d
	}
	if input.Type != "" {
		mt, err := models.ParseMealType(input.Type)
		if err != nil {
			return nil, nil, err
		}
		filter.Type = &mt
	}
	filter.Limit = input.Limit

	meals, err := s.svc.ListMeals(filter)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list meals: %w", err)
	}

	if len(meals) == 0 {
		return nil, map[string]interface{}{"message": "No meals found."}, nil
	}

	return nil, map[string]interface{}{"meals": meals}, nil
}

func (s *Server) handleDeleteMeal(ctx context.Context, req *mcp.CallToolRequest, input deleteMealInput) (*mcp.CallToolResult, simpleOutput, error) {
	m, err := s.svc.DeleteMeal(input.ID)
	if err != nil {
		return nil, simpleOutput{}, fmt.Errorf("failed to delete meal: %w", err)
	}

	return nil, simpleOutput{
		Message: fmt.Sprintf("Deleted %s on %s (%s)", m.Type, m.DateString(), m.ID.String()[:8]),
	}, nil
}

func (s *Server) handleDashboard(ctx context.Context, req *mcp.CallToolRequest, input dashboardInput) (*mcp.CallToolResult, any, error) {
	w, err := nutrition.ParseWindow(input.Window, input.Date)
	if err != nil {
		return nil, nil, err
	}

	sum, err := s.svc.Dashboard(w)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build dashboard: %w", err)
	}
	return nil, sum, nil
}

func (s *Server) handleScheduleMeal(ctx context.Context, req *mcp.CallToolRequest, input scheduleMealInput) (*mcp.CallToolResult, simpleOutput, error) {
	in := tracker.ScheduleInput{
		TemplateID: input.TemplateID,
		Start:      input.Start,
		End:        input.End,
		Rule:       input.Rule,
	}
	if strings.TrimSpace(input.Weekdays) != "" {
		days, err := nutrition.ParseWeekdays(input.Weekdays)
		if err != nil {
			return nil, simpleOutput{}, err
		}
		in.Weekdays = days
	}

	res, err := s.svc.Schedule(in)
	if err != nil {
		return nil, simpleOutput{}, fmt.Errorf("failed to schedule meal: %w", err)
	}

	if len(res.Meals) == 0 {
		return nil, simpleOutput{Message: "No dates matched; nothing scheduled."}, nil
	}
	first, last := res.Meals[0].DateString(), res.Meals[len(res.Meals)-1].DateString()
	return nil, simpleOutput{
		Message: fmt.Sprintf("Scheduled %d meals from %s to %s", len(res.Meals), first, last),
	}, nil
}
