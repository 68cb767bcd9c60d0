package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Shubz284/biryani-house/internal/models"
)

const menuItemNotFound = "Menu item not found"

func (s *Server) listMenuItems(c *gin.Context) {
	filter, err := parseMenuFilter(c)
	if err != nil {
		respondError(c, err, menuItemNotFound)
		return
	}
	items, err := s.catalog.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err, menuItemNotFound)
		return
	}
	if items == nil {
		items = []models.MenuItem{}
	}
	c.JSON(http.StatusOK, items)
}

func (s *Server) getMenuItem(c *gin.Context) {
	item, err := s.catalog.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, menuItemNotFound)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (s *Server) createMenuItem(c *gin.Context) {
	var in models.MenuItemInput
	if err := bindJSON(c, &in); err != nil {
		respondError(c, err, menuItemNotFound)
		return
	}
	item, err := s.catalog.Create(c.Request.Context(), in)
	if err != nil {
		respondError(c, err, menuItemNotFound)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (s *Server) updateMenuItem(c *gin.Context) {
	var patch models.MenuItemPatch
	if err := bindJSON(c, &patch); err != nil {
		respondError(c, err, menuItemNotFound)
		return
	}
	item, err := s.catalog.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		respondError(c, err, menuItemNotFound)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (s *Server) deleteMenuItem(c *gin.Context) {
	item, err := s.catalog.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, menuItemNotFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":   "Menu item deleted successfully",
		"menu_item": item,
	})
}

func parseMenuFilter(c *gin.Context) (models.MenuFilter, error) {
	var issues models.ValidationError
	var filter models.MenuFilter

	if raw := c.Query("category"); raw != "" {
		category, err := models.ParseCategory(raw)
		if err != nil {
			issues.Add("category", "%s is not a valid category", raw)
		} else {
			filter.Category = &category
		}
	}
	filter.IsFeatured = parseBoolParam(c, &issues, "is_featured")
	filter.Available = parseBoolParam(c, &issues, "available")

	return filter, issues.Err()
}

func parseBoolParam(c *gin.Context, issues *models.ValidationError, name string) *bool {
	raw, ok := c.GetQuery(name)
	if !ok || raw == "" {
		return nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		issues.Add(name, "%s must be true or false", name)
		return nil
	}
	return &v
}
