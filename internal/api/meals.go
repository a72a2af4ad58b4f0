// ABOUTME: HTTP handlers for meals, meal items, scheduling and the dashboard.
// ABOUTME: Routes under /api/v1/meals, /api/v1/schedule and /api/v1/dashboard.
package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/harperreed/nutrition/internal/models"
	"github.com/harperreed/nutrition/internal/nutrition"
	"github.com/harperreed/nutrition/internal/storage"
	"github.com/harperreed/nutrition/internal/tracker"
)

func (s *Server) handleListMeals(c *gin.Context) {
	var filter storage.MealFilter

	if d := c.Query("date"); d != "" {
		day, err := models.ParseDay(d)
		if err != nil {
			badRequest(c, err)
			return
		}
		filter = storage.DayFilter(day)
	}
	for _, bound := range []struct {
		key string
		dst **time.Time
	}{{"from", &filter.From}, {"to", &filter.To}} {
		v := c.Query(bound.key)
		if v == "" {
			continue
		}
		day, err := models.ParseDay(v)
		if err != nil {
			badRequest(c, err)
			return
		}
		*bound.dst = &day
	}
	if t := c.Query("type"); t != "" {
		mt, err := models.ParseMealType(t)
		if err != nil {
			s.fail(c, err)
			return
		}
		filter.Type = &mt
	}
	limit, err := queryInt(c, "limit")
	if err != nil {
		badRequest(c, err)
		return
	}
	filter.Limit = limit

	meals, err := s.svc.ListMeals(filter)
	if err != nil {
		s.fail(c, err)
		return
	}
	if meals == nil {
		meals = []*models.Meal{}
	}
	c.JSON(http.StatusOK, meals)
}

func (s *Server) handleCreateMeal(c *gin.Context) {
	var in tracker.MealInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}

	res, err := s.svc.CreateMeal(in)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.metrics.warnings(res.Warnings)
	c.JSON(http.StatusCreated, res)
}

func (s *Server) handleGetMeal(c *gin.Context) {
	m, err := s.svc.GetMeal(c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

type mealPatchRequest struct {
	tracker.MealPatch
	Completed *bool `json:"completed,omitempty"`
}

func (s *Server) handleUpdateMeal(c *gin.Context) {
	var req mealPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	id := c.Param("id")
	m, err := s.svc.UpdateMeal(id, req.MealPatch)
	if err != nil {
		s.fail(c, err)
		return
	}
	if req.Completed != nil && *req.Completed != m.Completed {
		m, err = s.svc.SetCompleted(m.ID.String(), *req.Completed)
		if err != nil {
			s.fail(c, err)
			return
		}
	}
	c.JSON(http.StatusOK, m)
}

func (s *Server) handleDeleteMeal(c *gin.Context) {
	if _, err := s.svc.DeleteMeal(c.Param("id")); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleDeleteAllMeals(c *gin.Context) {
	n, err := s.svc.DeleteAllMeals()
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": n})
}

func (s *Server) handleAddItem(c *gin.Context) {
	var in tracker.ItemInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}

	res, err := s.svc.AddItem(c.Param("id"), in)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.metrics.warnings(res.Warnings)
	c.JSON(http.StatusOK, res)
}

type resizeRequest struct {
	Grams *float64 `json:"grams"`
}

func (s *Server) handleResizeItem(c *gin.Context) {
	var req resizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if req.Grams == nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "grams is required"})
		return
	}

	res, err := s.svc.ResizeItem(c.Param("id"), c.Param("itemID"), *req.Grams)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.metrics.warnings(res.Warnings)
	c.JSON(http.StatusOK, res)
}

func (s *Server) handleRemoveItem(c *gin.Context) {
	res, err := s.svc.RemoveItem(c.Param("id"), c.Param("itemID"))
	if err != nil {
		s.fail(c, err)
		return
	}
	s.metrics.warnings(res.Warnings)
	c.JSON(http.StatusOK, res)
}

type completeRequest struct {
	Completed *bool `json:"completed"`
}

// handleComplete marks a meal completed. A body of {"completed": false}
// reopens it.
func (s *Server) handleComplete(c *gin.Context) {
	completed := true
	if c.Request.ContentLength > 0 {
		var req completeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		if req.Completed != nil {
			completed = *req.Completed
		}
	}

	m, err := s.svc.SetCompleted(c.Param("id"), completed)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (s *Server) handleSchedule(c *gin.Context) {
	var in tracker.ScheduleInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}

	res, err := s.svc.Schedule(in)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.metrics.warnings(res.Warnings)
	c.JSON(http.StatusCreated, res)
}

func (s *Server) handleDashboard(c *gin.Context) {
	w, err := nutrition.ParseWindow(c.Query("window"), c.Query("date"))
	if err != nil {
		badRequest(c, err)
		return
	}

	sum, err := s.svc.Dashboard(w)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, sum)
}
