package export

import (
	"fmt"
	"strings"

	"github.com/san-kum/cylheat/internal/heat"
	"github.com/san-kum/cylheat/internal/viz"
)

// CanvasToSVG converts a Braille canvas to SVG format
func CanvasToSVG(canvas *viz.Canvas, scale float64) string {
	if canvas == nil {
		return ""
	}

	width := float64(canvas.PixelWidth()) * scale
	height := float64(canvas.PixelHeight()) * scale

	var sb strings.Builder
	sb.WriteString(svgHeader(width, height))
	sb.WriteString("<g fill=\"#00ff00\">\n")

	dotRadius := scale * 0.4
	for y := 0; y < canvas.PixelHeight(); y++ {
		for x := 0; x < canvas.PixelWidth(); x++ {
			if !canvas.IsSet(x, y) {
				continue
			}
			cx := float64(x)*scale + scale/2
			cy := float64(y)*scale + scale/2
			fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n", cx, cy, dotRadius)
		}
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// FieldSVG draws the field as a jet-colored heatmap with z across and r
// increasing upwards, cell pixels per node, plus a colorbar strip.
func FieldSVG(f *heat.Field, mesh *heat.Mesh, cell int, title string) string {
	if f == nil || cell <= 0 {
		return ""
	}
	nr, nz := f.Dims()
	const margin, bar = 40, 16

	plotW, plotH := nz*cell, nr*cell
	width := float64(plotW + 2*margin)
	height := float64(plotH + 2*margin + bar + 8)

	lo, hi, _ := f.FiniteRange()
	norm := func(v float64) float64 {
		if hi == lo {
			return 0.5
		}
		return heat.Normalize(v, lo, hi)
	}

	var sb strings.Builder
	sb.WriteString(svgHeader(width, height))
	if title != "" {
		fmt.Fprintf(&sb, "<text x=\"%d\" y=\"%d\" fill=\"#e0e0e0\" font-family=\"monospace\" font-size=\"12\">%s</text>\n",
			margin, margin/2, escape(title))
	}

	sb.WriteString("<g shape-rendering=\"crispEdges\">\n")
	for i := 0; i < nr; i++ {
		y := margin + (nr-1-i)*cell
		for j := 0; j < nz; j++ {
			x := margin + j*cell
			fmt.Fprintf(&sb, "<rect x=\"%d\" y=\"%d\" width=\"%d\" height=\"%d\" fill=\"%s\"/>\n",
				x, y, cell, cell, viz.JetHex(norm(f.At(i, j))))
		}
	}
	sb.WriteString("</g>\n")

	barY := margin + plotH + 8
	steps := 64
	for k := 0; k < steps; k++ {
		x := float64(margin) + float64(k)*float64(plotW)/float64(steps)
		fmt.Fprintf(&sb, "<rect x=\"%.1f\" y=\"%d\" width=\"%.1f\" height=\"%d\" fill=\"%s\"/>\n",
			x, barY, float64(plotW)/float64(steps)+0.5, bar, viz.JetHex((float64(k)+0.5)/float64(steps)))
	}
	label := "<text x=\"%d\" y=\"%d\" fill=\"#e0e0e0\" font-family=\"monospace\" font-size=\"10\" text-anchor=\"%s\">%s</text>\n"
	fmt.Fprintf(&sb, label, margin, barY+bar+12, "start", fmt.Sprintf("%.2f °C", lo))
	fmt.Fprintf(&sb, label, margin+plotW, barY+bar+12, "end", fmt.Sprintf("%.2f °C", hi))
	if mesh != nil && len(mesh.Z) > 0 && len(mesh.R) > 0 {
		fmt.Fprintf(&sb, label, margin+plotW, margin-4, "end",
			fmt.Sprintf("z ∈ [%.3g, %.3g] m, r ∈ [%.3g, %.3g] m", mesh.Z[0], mesh.Z[len(mesh.Z)-1], mesh.R[0], mesh.R[len(mesh.R)-1]))
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// HistorySVG plots log10(max change) per step as a polyline.
func HistorySVG(history []heat.HistoryEntry, width, height int, strokeColor string) string {
	if len(history) < 2 {
		return ""
	}

	ys := viz.Log10Changes(history)
	minX, maxX := float64(history[0].Step), float64(history[len(history)-1].Step)
	minY, maxY := ys[0], ys[0]
	for _, y := range ys {
		minY = min(minY, y)
		maxY = max(maxY, y)
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minY -= rangeY * 0.1
	rangeY *= 1.2

	var sb strings.Builder
	sb.WriteString(svgHeader(float64(width), float64(height)))
	fmt.Fprintf(&sb, "<path fill=\"none\" stroke=\"%s\" stroke-width=\"1.5\" d=\"M", strokeColor)

	for i, h := range history {
		x := (float64(h.Step) - minX) / rangeX * float64(width)
		y := float64(height) - (ys[i]-minY)/rangeY*float64(height)
		if i == 0 {
			fmt.Fprintf(&sb, "%.1f,%.1f", x, y)
		} else {
			fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
		}
	}

	sb.WriteString("\"/>\n</svg>")
	return sb.String()
}

func svgHeader(width, height float64) string {
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height)
}

var escaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

func escape(s string) string { return escaper.Replace(s) }
