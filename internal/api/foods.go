// ABOUTME: HTTP handlers for the food catalog and external nutrition lookups.
// ABOUTME: Routes under /api/v1/foods and /api/v1/lookup.
package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/harperreed/nutrition/internal/models"
	"github.com/harperreed/nutrition/internal/tracker"
)

func (s *Server) handleListFoods(c *gin.Context) {
	limit, err := queryInt(c, "limit")
	if err != nil {
		badRequest(c, err)
		return
	}

	foods, err := s.svc.ListFoods(c.Query("q"), c.Query("category"), limit)
	if err != nil {
		s.fail(c, err)
		return
	}
	if foods == nil {
		foods = []*models.Food{}
	}
	c.JSON(http.StatusOK, foods)
}

func (s *Server) handleCreateFood(c *gin.Context) {
	var in tracker.FoodInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}

	f, err := s.svc.AddFood(in)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, f)
}

func (s *Server) handleGetFood(c *gin.Context) {
	f, err := s.svc.GetFood(c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, f)
}

func (s *Server) handleUpdateFood(c *gin.Context) {
	var patch tracker.FoodPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, err)
		return
	}

	f, err := s.svc.UpdateFood(c.Param("id"), patch)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, f)
}

func (s *Server) handleDeleteFood(c *gin.Context) {
	if _, err := s.svc.DeleteFood(c.Param("id")); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleDeleteAllFoods(c *gin.Context) {
	n, err := s.svc.DeleteAllFoods()
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": n})
}

func (s *Server) handleLookup(c *gin.Context) {
	save, _ := strconv.ParseBool(c.DefaultQuery("save", "false"))
	res, err := s.svc.LookupFood(c.Request.Context(), tracker.LookupQuery{
		Barcode: c.Query("barcode"),
		Name:    c.Query("name"),
		Save:    save,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func queryInt(c *gin.Context, key string) (int, error) {
	v := c.Query(key)
	if v == "" {
		return 0, nil
	}
	return strconv.Atoi(v)
}
