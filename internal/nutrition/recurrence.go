// ABOUTME: Recurrence expansion for meal scheduling.
// ABOUTME: Turns a start/end range and a rule into an ordered list of dates.
package nutrition

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/nutrition/internal/models"
)

// DefaultHorizonDays is the schedule length used when no end date is given.
const DefaultHorizonDays = 30

// ErrUnknownRule is returned when a recurrence rule string is not recognized.
var ErrUnknownRule = errors.New("unknown recurrence rule")

// ErrInvalidWeekday is returned when a custom weekday is outside 0..6.
var ErrInvalidWeekday = errors.New("weekday out of range")

// Rule is a recurrence pattern.
type Rule string

const (
	RuleNone     Rule = "none"
	RuleDaily    Rule = "daily"
	RuleWeekly   Rule = "weekly"
	RuleWeekdays Rule = "weekdays"
	RuleWeekends Rule = "weekends"
	RuleCustom   Rule = "custom"
)

// AllRules lists the supported recurrence rules.
var AllRules = []Rule{RuleNone, RuleDaily, RuleWeekly, RuleWeekdays, RuleWeekends, RuleCustom}

// Recurrence is a rule plus, for RuleCustom, the weekdays to keep.
type Recurrence struct {
	Rule     Rule           `json:"rule"`
	Weekdays []time.Weekday `json:"weekdays,omitempty"`
}

// ParseRule converts a string into a Rule. The empty string means RuleNone.
func ParseRule(s string) (Rule, error) {
	r := Rule(strings.ToLower(strings.TrimSpace(s)))
	if r == "" {
		return RuleNone, nil
	}
	for _, known := range AllRules {
		if known == r {
			return r, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownRule, s)
}

// ParseWeekdays parses a comma separated list of weekday indices (0=Sunday)
// or names ("mon", "Tuesday").
func ParseWeekdays(s string) ([]time.Weekday, error) {
	var out []time.Weekday
	for _, part := range strings.Split(s, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part == "" {
			continue
		}
		if n, err := strconv.Atoi(part); err == nil {
			if n < 0 || n > 6 {
				return nil, fmt.Errorf("%w: %d", ErrInvalidWeekday, n)
			}
			out = append(out, time.Weekday(n))
			continue
		}
		found := false
		for d := time.Sunday; d <= time.Saturday; d++ {
			name := strings.ToLower(d.String())
			if part == name || (len(part) >= 3 && strings.HasPrefix(name, part)) {
				out = append(out, d)
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("unknown weekday: %q", part)
		}
	}
	return out, nil
}

// Expand returns the ordered, deduplicated calendar days on which a meal
// should be instantiated. A nil end uses DefaultHorizonDays from start.
// RuleNone always yields exactly [start]; an end before start yields nothing.
func Expand(start time.Time, end *time.Time, r Recurrence) ([]time.Time, error) {
	start = models.Day(start)
	if r.Rule == "" || r.Rule == RuleNone {
		return []time.Time{start}, nil
	}

	last := start.AddDate(0, 0, DefaultHorizonDays)
	if end != nil {
		last = models.Day(*end)
	}
	if last.Before(start) {
		return []time.Time{}, nil
	}

	keep, err := r.matcher(start)
	if err != nil {
		return nil, err
	}

	dates := []time.Time{}
	for d := start; !d.After(last); d = d.AddDate(0, 0, 1) {
		if keep(d.Weekday()) {
			dates = append(dates, d)
		}
	}
	return dates, nil
}

func (r Recurrence) matcher(start time.Time) (func(time.Weekday) bool, error) {
	switch r.Rule {
	case RuleDaily:
		return func(time.Weekday) bool { return true }, nil
	case RuleWeekly:
		anchor := start.Weekday()
		return func(d time.Weekday) bool { return d == anchor }, nil
	case RuleWeekdays:
		return func(d time.Weekday) bool { return d != time.Saturday && d != time.Sunday }, nil
	case RuleWeekends:
		return func(d time.Weekday) bool { return d == time.Saturday || d == time.Sunday }, nil
	case RuleCustom:
		set := make(map[time.Weekday]bool, len(r.Weekdays))
		for _, d := range r.Weekdays {
			if d < time.Sunday || d > time.Saturday {
				return nil, fmt.Errorf("%w: %d", ErrInvalidWeekday, int(d))
			}
			set[d] = true
		}
		return func(d time.Weekday) bool { return set[d] }, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownRule, r.Rule)
	}
}

// Instantiate creates one independent, incomplete meal per date from a
// template. Items are copied with fresh IDs; totals are carried over since
// the items are identical.
func Instantiate(template models.Meal, dates []time.Time) []*models.Meal {
	sorted := append([]time.Time(nil), dates...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })

	meals := make([]*models.Meal, 0, len(sorted))
	var prev time.Time
	for i, d := range sorted {
		d = models.Day(d)
		if i > 0 && d.Equal(prev) {
			continue
		}
		prev = d

		m := models.NewMeal(d, template.Type)
		m.UserID = template.UserID
		if m.UserID == "" {
			m.UserID = models.DefaultUserID
		}
		if template.Notes != nil {
			m.WithNotes(*template.Notes)
		}
		for _, it := range template.Items {
			it.ID = uuid.New()
			if it.Nutrients != nil {
				n := *it.Nutrients
				it.Nutrients = &n
			}
			m.Items = append(m.Items, it)
		}
		m.Totals = template.Totals
		meals = append(meals, m)
	}
	return meals
}
