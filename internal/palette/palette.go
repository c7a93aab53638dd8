// Package palette provides the color arithmetic used to present table cells:
// hex parsing, linear interpolation between two colors, opposite colors and
// stable header shades.
package palette

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf16"
)

// Color is a 24-bit RGB color.
type Color struct {
	R, G, B uint8
}

// Black and White are the two text colors returned by Contrast and HeaderShade.
var (
	Black = Color{0, 0, 0}
	White = Color{255, 255, 255}
)

// Parse reads a color written as "#RRGGBB", "RRGGBB" or the short "#RGB" form.
func Parse(s string) (Color, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return Color{}, fmt.Errorf("invalid color %q — expected #RRGGBB", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("invalid color %q — expected #RRGGBB", s)
	}
	return Color{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}

// MustParse is like Parse but panics on invalid input. Intended for literals.
func MustParse(s string) Color {
	c, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Hex returns the color as uppercase "#RRGGBB".
func (c Color) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

func (c Color) String() string {
	return c.Hex()
}

// MarshalText encodes the color as its hex form.
func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.Hex()), nil
}

// UnmarshalText decodes a hex color.
func (c *Color) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Interpolate blends a towards b. Each channel is interpolated on its own and
// rounded to the nearest integer. The ratio is clamped to [0, 1].
func Interpolate(a, b Color, ratio float64) Color {
	if math.IsNaN(ratio) || ratio < 0 {
		ratio = 0
	} else if ratio > 1 {
		ratio = 1
	}
	return Color{
		R: lerp(a.R, b.R, ratio),
		G: lerp(a.G, b.G, ratio),
		B: lerp(a.B, b.B, ratio),
	}
}

func lerp(a, b uint8, ratio float64) uint8 {
	return uint8(math.Round(float64(a) + (float64(b)-float64(a))*ratio))
}

// Opposite inverts every channel.
func Opposite(c Color) Color {
	return Color{R: 255 - c.R, G: 255 - c.G, B: 255 - c.B}
}

// Luminance returns the perceived brightness of c in [0, 255].
func Luminance(c Color) float64 {
	return 0.299*float64(c.R) + 0.587*float64(c.G) + 0.114*float64(c.B)
}

// Contrast picks black or white text for the background c.
func Contrast(c Color) Color {
	if Luminance(c) < 128 {
		return White
	}
	return Black
}

// HeaderShade derives a stable gray background for a column header from its
// name, plus the text color to draw on it. The gray level always falls in
// [30, 229].
func HeaderShade(name string) (background, text Color) {
	var hash int64
	for _, unit := range utf16.Encode([]rune(name)) {
		shifted := int64(int32(hash) << 5)
		hash = int64(unit) + (shifted - hash)
	}
	rem := hash % 200
	if rem < 0 {
		rem = -rem
	}
	gray := uint8(rem + 30)
	background = Color{gray, gray, gray}
	if gray < 128 {
		return background, White
	}
	return background, Black
}
