package state

import (
	"fmt"
	"math"

	"github.com/gogpu/gg"
)

// Color maps v onto the scale's colour ramp. Values outside the domain are
// clamped; a degenerate domain maps to the middle of the ramp.
func (v *ValueScale) Color(x float64) string {
	if v == nil || len(v.Colors) == 0 {
		return ""
	}
	if len(v.Colors) == 1 {
		return v.Colors[0]
	}
	t := 0.5
	if v.Max > v.Min {
		t = (x - v.Min) / (v.Max - v.Min)
	}
	t = min(max(t, 0), 1)

	segments := float64(len(v.Colors) - 1)
	i := int(t * segments)
	if i >= len(v.Colors)-1 {
		return v.Colors[len(v.Colors)-1]
	}
	c := gg.Hex(v.Colors[i]).Lerp(gg.Hex(v.Colors[i+1]), t*segments-float64(i))
	return toHex(c)
}

func toHex(c gg.RGBA) string {
	ch := func(f float64) uint8 { return uint8(math.Round(min(max(f, 0), 1) * 255)) }
	return fmt.Sprintf("#%02x%02x%02x", ch(c.R), ch(c.G), ch(c.B))
}
