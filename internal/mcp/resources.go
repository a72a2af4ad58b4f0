// ABOUTME: MCP resource implementations for the nutrition tracker.
// ABOUTME: Provides nutrition://today, nutrition://week, and nutrition://foods resources.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/harperreed/nutrition/internal/nutrition"
	"github.com/harperreed/nutrition/internal/storage"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	uriToday = "nutrition://today"
	uriWeek  = "nutrition://week"
	uriFoods = "nutrition://foods"
)

func (s *Server) registerResources() {
	// nutrition://today - Today's meals and their totals
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         uriToday,
		Name:        "Today's Meals",
		Description: "Meals logged for today plus the day's nutrient summary",
		MIMEType:    "application/json",
	}, s.handleTodayResource)

	// nutrition://week - Rolling 7-day dashboard
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         uriWeek,
		Name:        "Weekly Nutrition Dashboard",
		Description: "Totals, daily averages and macro split for the last 7 days",
		MIMEType:    "application/json",
	}, s.handleWeekResource)

	// nutrition://foods - Food catalog
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         uriFoods,
		Name:        "Food Catalog",
		Description: "All catalog foods with their per-100g nutrient profiles",
		MIMEType:    "application/json",
	}, s.handleFoodsResource)
}

// Resource handlers

func (s *Server) handleTodayResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	today := s.svc.Today()

	meals, err := s.svc.ListMeals(storage.DayFilter(today))
	if err != nil {
		return nil, fmt.Errorf("failed to list meals: %w", err)
	}

	summary, err := s.svc.Dashboard(nutrition.Window{Kind: nutrition.WindowDay, Anchor: today})
	if err != nil {
		return nil, fmt.Errorf("failed to summarize today: %w", err)
	}

	result := map[string]interface{}{
		"date":    today.Format("2006-01-02"),
		"meals":   meals,
		"summary": summary,
	}
	return jsonResource(uriToday, result)
}

func (s *Server) handleWeekResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	summary, err := s.svc.Dashboard(nutrition.Window{Kind: nutrition.WindowWeek})
	if err != nil {
		return nil, fmt.Errorf("failed to summarize week: %w", err)
	}
	return jsonResource(uriWeek, summary)
}

func (s *Server) handleFoodsResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	foods, err := s.svc.ListFoods("", "", 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list foods: %w", err)
	}

	needsReview := 0
	for _, f := range foods {
		if f.NeedsReview() {
			needsReview++
		}
	}

	result := map[string]interface{}{
		"foods": foods,
		"counts": map[string]int{
			"foods":        len(foods),
			"needs_review": needsReview,
		},
	}
	return jsonResource(uriFoods, result)
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
