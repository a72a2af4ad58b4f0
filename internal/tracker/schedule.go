// ABOUTME: Scheduling and dashboard operations of the tracker service.
// ABOUTME: Expands recurrences into independent meals and summarizes time windows.
package tracker

import (
	"fmt"
	"time"

	"github.com/harperreed/nutrition/internal/models"
	"github.com/harperreed/nutrition/internal/nutrition"
	"github.com/harperreed/nutrition/internal/storage"
)

// ScheduleInput copies an existing meal onto the dates produced by a
// recurrence. An empty Start means today; an empty End uses the default
// horizon.
type ScheduleInput struct {
	TemplateID string         `json:"template_id"`
	Start      string         `json:"start,omitempty"`
	End        string         `json:"end,omitempty"`
	Rule       string         `json:"rule,omitempty"`
	Weekdays   []time.Weekday `json:"weekdays,omitempty"`
}

// ScheduleResult lists the meals created by Schedule.
type ScheduleResult struct {
	Dates    []time.Time         `json:"dates"`
	Meals    []*models.Meal      `json:"meals"`
	Warnings []nutrition.Warning `json:"warnings,omitempty"`
}

// Schedule creates one independent meal per date of the recurrence.
func (s *Service) Schedule(in ScheduleInput) (*ScheduleResult, error) {
	template, err := s.repo.GetMeal(in.TemplateID)
	if err != nil {
		return nil, fmt.Errorf("template meal: %w", err)
	}

	rule, err := nutrition.ParseRule(in.Rule)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if rule == nutrition.RuleCustom && len(in.Weekdays) == 0 {
		return nil, fmt.Errorf("%w: custom rule needs at least one weekday", ErrInvalidInput)
	}

	start, err := s.parseDate(in.Start)
	if err != nil {
		return nil, err
	}
	var end *time.Time
	if in.End != "" {
		e, err := s.parseDate(in.End)
		if err != nil {
			return nil, err
		}
		end = &e
	}

	dates, err := nutrition.Expand(start, end, nutrition.Recurrence{Rule: rule, Weekdays: in.Weekdays})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	out := &ScheduleResult{Dates: dates, Meals: []*models.Meal{}}
	now := s.now()
	for _, m := range nutrition.Instantiate(*template, dates) {
		m.CreatedAt = now
		m.UpdatedAt = now
		warnings, err := s.recompute(m)
		if err != nil {
			return nil, err
		}
		if err := s.repo.CreateMeal(m); err != nil {
			return nil, fmt.Errorf("create scheduled meal %s: %w", m.DateString(), err)
		}
		out.Meals = append(out.Meals, m)
		out.Warnings = append(out.Warnings, warnings...)
	}

	s.log.Info("meal scheduled", "template", template.ID.String()[:8], "rule", rule, "meals", len(out.Meals))
	return out, nil
}

// Dashboard summarizes the meals inside w. The clock is read once so the
// window bounds and the summary agree on what today is. The result is
// rounded for display.
func (s *Service) Dashboard(w nutrition.Window) (nutrition.Summary, error) {
	now := s.now()
	start, end := w.Bounds(now)

	meals, err := s.repo.ListMeals(storage.RangeFilter(start, end))
	if err != nil {
		return nutrition.Summary{}, fmt.Errorf("list meals: %w", err)
	}
	return nutrition.Summarize(meals, w, now).Rounded(), nil
}
