package viz

import (
	"fmt"
	"math"

	"github.com/charmbracelet/lipgloss"
)

// Jet maps t in [0, 1] to the classic blue-cyan-yellow-red ramp.
func Jet(t float64) (r, g, b uint8) {
	t = math.Max(0, math.Min(1, t))
	channel := func(offset float64) uint8 {
		v := 1.5 - math.Abs(4*t-offset)
		v = math.Max(0, math.Min(1, v))
		return uint8(math.Round(v * 255))
	}
	return channel(3), channel(2), channel(1)
}

// JetHex returns Jet(t) as #rrggbb.
func JetHex(t float64) string {
	r, g, b := Jet(t)
	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

// LevelColor is the color of band level out of n, sampled at the band
// center.
func LevelColor(level, n int) lipgloss.Color {
	if n <= 1 {
		return lipgloss.Color(JetHex(0.5))
	}
	return lipgloss.Color(JetHex((float64(level) + 0.5) / float64(n)))
}
