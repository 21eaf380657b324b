package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"want-salon-backend/services"
)

type ColorResponse struct {
	Name string `json:"name"`
	services.Shades
}

func ListColors(c *gin.Context) {
	out := make([]ColorResponse, 0, len(services.Palette))
	for _, name := range services.Palette {
		out = append(out, ColorResponse{Name: name, Shades: services.ExpandPalette(name)})
	}
	c.JSON(http.StatusOK, out)
}

// GetColor expands a palette name; unknown names fall back to the default.
func GetColor(c *gin.Context) {
	name := c.Param("name")
	if !services.IsPaletteColor(name) {
		name = services.DefaultColor
	}
	c.JSON(http.StatusOK, ColorResponse{Name: name, Shades: services.ExpandPalette(name)})
}
