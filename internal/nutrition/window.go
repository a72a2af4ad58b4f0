// ABOUTME: Time-window aggregation for dashboards: totals, averages, rates.
// ABOUTME: Windows are a single date, rolling 7/30 days, or a calendar month.
package nutrition

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/harperreed/nutrition/internal/models"
)

// ErrUnknownWindow is returned when a window kind string is not recognized.
var ErrUnknownWindow = errors.New("unknown window")

// WindowKind selects how a dashboard window is derived from "today".
type WindowKind string

const (
	WindowDay           WindowKind = "day"
	WindowWeek          WindowKind = "week"
	WindowMonth         WindowKind = "month"
	WindowCalendarMonth WindowKind = "calendar-month"
)

// AllWindowKinds lists the supported window kinds.
var AllWindowKinds = []WindowKind{WindowDay, WindowWeek, WindowMonth, WindowCalendarMonth}

// Window is a dashboard time range. Anchor picks the day for WindowDay and
// the month for WindowCalendarMonth; the zero Anchor means today. Rolling
// windows always end today.
type Window struct {
	Kind   WindowKind `json:"kind"`
	Anchor time.Time  `json:"anchor,omitempty"`
}

// ParseWindow builds a Window from a kind and an optional YYYY-MM-DD anchor.
func ParseWindow(kind, anchor string) (Window, error) {
	k := WindowKind(strings.ToLower(strings.TrimSpace(kind)))
	if k == "" {
		k = WindowDay
	}
	valid := false
	for _, wk := range AllWindowKinds {
		if wk == k {
			valid = true
			break
		}
	}
	if !valid {
		return Window{}, fmt.Errorf("%w: %q", ErrUnknownWindow, kind)
	}

	w := Window{Kind: k}
	if anchor != "" {
		d, err := models.ParseDay(anchor)
		if err != nil {
			return Window{}, err
		}
		w.Anchor = d
	}
	return w, nil
}

// Bounds returns the inclusive first and last calendar day of the window.
func (w Window) Bounds(today time.Time) (start, end time.Time) {
	today = models.Day(today)
	anchor := today
	if !w.Anchor.IsZero() {
		anchor = models.Day(w.Anchor)
	}

	switch w.Kind {
	case WindowWeek:
		return today.AddDate(0, 0, -6), today
	case WindowMonth:
		return today.AddDate(0, 0, -29), today
	case WindowCalendarMonth:
		first := time.Date(anchor.Year(), anchor.Month(), 1, 0, 0, 0, 0, time.UTC)
		return first, first.AddDate(0, 1, -1)
	default:
		return anchor, anchor
	}
}

// MacroDistribution is the share of energy coming from each macronutrient.
type MacroDistribution struct {
	ProteinKcal float64 `json:"proteinKcal"`
	CarbsKcal   float64 `json:"carbsKcal"`
	FatKcal     float64 `json:"fatKcal"`
	ProteinPct  float64 `json:"proteinPct"`
	CarbsPct    float64 `json:"carbsPct"`
	FatPct      float64 `json:"fatPct"`
}

// MacroSplit computes macro energy and its percentage of total kcal. Every
// percentage is 0 when total kcal is 0.
func MacroSplit(totals models.NutrientProfile) MacroDistribution {
	protein, carbs, fat := totals.MacroCalories()
	d := MacroDistribution{ProteinKcal: protein, CarbsKcal: carbs, FatKcal: fat}
	if totals.Calories > 0 {
		d.ProteinPct = protein / totals.Calories * 100
		d.CarbsPct = carbs / totals.Calories * 100
		d.FatPct = fat / totals.Calories * 100
	}
	return d
}

// CompletionRate returns completed/total as a percentage, 0 when total is 0.
func CompletionRate(completed, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(completed) / float64(total) * 100
}

// DayPoint is one entry of a dashboard's day-by-day series.
type DayPoint struct {
	Date      time.Time              `json:"date"`
	Totals    models.NutrientProfile `json:"totals"`
	Meals     int                    `json:"meals"`
	Completed int                    `json:"completed"`
}

// Summary is the aggregated view of the meals inside a window.
type Summary struct {
	Window         WindowKind                                `json:"window"`
	Start          time.Time                                 `json:"start"`
	End            time.Time                                 `json:"end"`
	MealCount      int                                       `json:"mealCount"`
	CompletedCount int                                       `json:"completedCount"`
	DaysWithMeals  int                                       `json:"daysWithMeals"`
	Totals         models.NutrientProfile                    `json:"totals"`
	DailyAverage   models.NutrientProfile                    `json:"dailyAverage"`
	CompletionRate float64                                   `json:"completionRate"`
	Macros         MacroDistribution                         `json:"macros"`
	ByType         map[models.MealType]models.NutrientProfile `json:"byType"`
	Series         []DayPoint                                `json:"series"`
}

// SelectMeals returns the meals whose day falls within [start, end].
func SelectMeals(meals []*models.Meal, start, end time.Time) []*models.Meal {
	start, end = models.Day(start), models.Day(end)
	var out []*models.Meal
	for _, m := range meals {
		if m == nil {
			continue
		}
		d := models.Day(m.Date)
		if d.Before(start) || d.After(end) {
			continue
		}
		out = append(out, m)
	}
	return out
}

// Summarize aggregates meals over w. now is read once, so every bound and
// series entry in the result agrees on what "today" is.
//
// Meal totals are the persisted values, already rounded when the meal was
// saved. Sums of those stay on the same precision grid, so the result is
// unrounded only in averages and percentages. Rounded is the display
// boundary for those.
func Summarize(meals []*models.Meal, w Window, now time.Time) Summary {
	if w.Kind == "" {
		w.Kind = WindowDay
	}
	start, end := w.Bounds(now)
	selected := SelectMeals(meals, start, end)

	s := Summary{
		Window: w.Kind,
		Start:  start,
		End:    end,
		ByType: make(map[models.MealType]models.NutrientProfile),
	}

	byDay := make(map[time.Time]*DayPoint)
	for _, m := range selected {
		s.MealCount++
		if m.Completed {
			s.CompletedCount++
		}
		s.Totals = s.Totals.Add(m.Totals)
		s.ByType[m.Type] = s.ByType[m.Type].Add(m.Totals)

		d := models.Day(m.Date)
		p, ok := byDay[d]
		if !ok {
			p = &DayPoint{Date: d}
			byDay[d] = p
		}
		p.Meals++
		if m.Completed {
			p.Completed++
		}
		p.Totals = p.Totals.Add(m.Totals)
	}

	s.DaysWithMeals = len(byDay)
	if s.DaysWithMeals > 0 {
		s.DailyAverage = s.Totals.DividedBy(float64(s.DaysWithMeals))
	}
	s.CompletionRate = CompletionRate(s.CompletedCount, s.MealCount)
	s.Macros = MacroSplit(s.Totals)

	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if p, ok := byDay[d]; ok {
			s.Series = append(s.Series, *p)
		} else {
			s.Series = append(s.Series, DayPoint{Date: d})
		}
	}
	sort.SliceStable(s.Series, func(i, j int) bool {
		return s.Series[i].Date.Before(s.Series[j].Date)
	})

	return s
}

// Rounded returns a copy of the summary with display rounding applied. It is
// the one rounding step for values derived here (averages, macro split,
// completion rate). For sums of persisted meal totals it only removes float
// drift, and applying it twice changes nothing.
func (s Summary) Rounded() Summary {
	out := s
	out.Totals = s.Totals.Rounded()
	out.DailyAverage = s.DailyAverage.Rounded()
	out.CompletionRate = math.Round(s.CompletionRate*10) / 10
	out.Macros = MacroDistribution{
		ProteinKcal: math.Round(s.Macros.ProteinKcal),
		CarbsKcal:   math.Round(s.Macros.CarbsKcal),
		FatKcal:     math.Round(s.Macros.FatKcal),
		ProteinPct:  math.Round(s.Macros.ProteinPct*10) / 10,
		CarbsPct:    math.Round(s.Macros.CarbsPct*10) / 10,
		FatPct:      math.Round(s.Macros.FatPct*10) / 10,
	}
	out.ByType = make(map[models.MealType]models.NutrientProfile, len(s.ByType))
	for k, v := range s.ByType {
		out.ByType[k] = v.Rounded()
	}
	out.Series = make([]DayPoint, len(s.Series))
	for i, p := range s.Series {
		p.Totals = p.Totals.Rounded()
		out.Series[i] = p
	}
	return out
}
