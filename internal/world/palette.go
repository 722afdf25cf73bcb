package world

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// Color is a "#rrggbb" hex colour.
type Color string

// ToRGBA parses the colour for renderers. Malformed colours come back grey.
func (c Color) ToRGBA() color.RGBA {
	s := strings.TrimPrefix(string(c), "#")
	if len(s) != 6 {
		return color.RGBA{0x80, 0x80, 0x80, 0xff}
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.RGBA{0x80, 0x80, 0x80, 0xff}
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}
}

// Palette is an ordered set of distinct group colours. Spawning consumes one
// colour per group, so its length caps the number of groups.
type Palette []Color

// BasePalette is the bright 15-colour palette of the current tuning.
var BasePalette = Palette{
	"#1a1c2c", "#5d275d", "#b13e53", "#ef7d57", "#ffcd75",
	"#a7f070", "#38b764", "#257179", "#29366f", "#3b5dc9",
	"#41a6f6", "#73eff7", "#94b0c2", "#566c86", "#333c57",
}

// EarthPalette is the muted 16-colour palette of the classic tuning.
var EarthPalette = Palette{
	"#ddcf99", "#cca87b", "#b97a60", "#9c524e", "#774251", "#4b3d44",
	"#4e5463", "#5b7d73", "#8e9f7d", "#645355", "#8c7c79", "#a99c8d",
	"#7d7b62", "#aaa25d", "#846d59", "#a88a5e",
}

// PaletteByName returns a named palette ("base" or "earth").
func PaletteByName(name string) (Palette, error) {
	switch name {
	case "base", "":
		return BasePalette, nil
	case "earth":
		return EarthPalette, nil
	}
	return nil, fmt.Errorf("unknown palette %q", name)
}
