package viewer

import (
	"errors"
	"fmt"
	"sort"

	"github.com/Faultbox/neuroview/internal/scene"
)

// ErrUnknownColor is returned for color names outside the palette.
var ErrUnknownColor = errors.New("unknown color")

// Palette is the fixed set of region colors offered by the control panel.
var Palette = map[string]scene.Color{
	"Yellow":     0xffec84,
	"Deep Blue":  0x4f55ff,
	"Magenta":    0xff79f2,
	"Pink":       0xffb6c7,
	"Peach":      0xffe0d5,
	"Ivory":      0xfff7d9,
	"Coral":      0xffa38c,
	"Light Blue": 0xc4d0ff,
}

// DefaultColor is used for regions loaded without a color choice.
const DefaultColor = "Yellow"

// ParseColor looks up a palette color by name.
func ParseColor(name string) (scene.Color, error) {
	c, ok := Palette[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownColor, name)
	}
	return c, nil
}

// ColorNames returns the palette names in sorted order.
func ColorNames() []string {
	names := make([]string, 0, len(Palette))
	for n := range Palette {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Root overlay material.
const (
	RootName    = "root"
	RootColor   = scene.Color(0xd3d3d3)
	RootOpacity = 0.15
)

func rootMaterial() scene.Material {
	return scene.Material{
		Color:       RootColor,
		Opacity:     RootOpacity,
		Transparent: true,
		Visible:     true,
		DepthWrite:  false,
	}
}
