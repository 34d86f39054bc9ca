package render

import (
	"fmt"
	"image/color"

	"github.com/ritzau/roadmap-graph/pkg/model"
	"github.com/ritzau/roadmap-graph/pkg/roadmap"
)

var (
	colorBackdrop    = color.RGBA{0xf8, 0xfa, 0xfc, 0xff}
	colorMain        = color.RGBA{0x25, 0x63, 0xeb, 0xff}
	colorMainBorder  = color.RGBA{0x3b, 0x82, 0xf6, 0xff}
	colorItem        = color.RGBA{0xfa, 0xcc, 0x15, 0xff}
	colorGroup       = color.RGBA{0xf5, 0x9e, 0x0b, 0xff}
	colorRecommended = color.RGBA{0x22, 0xc5, 0x5e, 0xff}
	colorStroke      = color.RGBA{0x1f, 0x29, 0x37, 0x33}
	colorActiveRing  = color.RGBA{0x1d, 0x4e, 0xd8, 0xff}
	colorEdge        = color.RGBA{0x94, 0xa3, 0xb8, 0xff}
	colorTextDark    = color.RGBA{0x11, 0x18, 0x27, 0xff}
	colorTextLight   = color.RGBA{0xff, 0xff, 0xff, 0xff}
	colorCalloutBG   = color.RGBA{0x0f, 0x17, 0x2a, 0xff}
)

// phasePalette colours brackets by phase number, cycling
var phasePalette = []color.RGBA{
	{0x06, 0xb6, 0xd4, 0xff}, // cyan
	{0x8b, 0x5c, 0xf6, 0xff}, // violet
	{0xf5, 0x9e, 0x0b, 0xff}, // amber
	{0x64, 0x74, 0x8b, 0xff}, // slate
}

// PhaseColor returns the bracket colour of a phase number (1-based)
func PhaseColor(number int) color.RGBA {
	if number < 1 {
		number = 1
	}
	return phasePalette[(number-1)%len(phasePalette)]
}

// Style is the derived look of one node for one render pass
type Style struct {
	Fill        color.RGBA
	Stroke      color.RGBA
	Text        color.RGBA
	StrokeWidth float64
}

// styleFor derives a node's colours from its template and current status.
// Nothing here is stored back on the node.
func styleFor(n *model.Node, tpl Template, active bool) Style {
	var st Style
	switch tpl.Kind {
	case TemplateMain:
		st = Style{Fill: colorMain, Stroke: colorMainBorder, Text: colorTextLight, StrokeWidth: 1}
	case TemplateBracket:
		return Style{Stroke: PhaseColor(n.Data.PhaseNumber), Text: PhaseColor(n.Data.PhaseNumber), StrokeWidth: 3}
	case TemplateGroup:
		st = Style{Fill: colorGroup, Stroke: colorStroke, Text: colorTextDark, StrokeWidth: 1}
	case TemplateButton:
		st = Style{Fill: colorItem, Stroke: colorStroke, Text: colorTextDark, StrokeWidth: 1}
		if n.Data.IsRecommended {
			st.Fill = colorRecommended
			st.Text = colorTextLight
		}
	default:
		panic(fmt.Sprintf("render: no style for template %d", tpl.Kind))
	}

	if n.Data.Status == roadmap.StatusMastered {
		// Outline one shade below the mastered fill
		st.Fill = darken(st.Fill, 0.55)
		st.Stroke = darken(st.Fill, 0.6)
		st.Text = colorTextLight
		st.StrokeWidth = 2
	}
	if active {
		st.Stroke = colorActiveRing
		st.StrokeWidth = 4
	}
	return st
}

func darken(c color.RGBA, factor float64) color.RGBA {
	return color.RGBA{
		R: uint8(float64(c.R) * factor),
		G: uint8(float64(c.G) * factor),
		B: uint8(float64(c.B) * factor),
		A: c.A,
	}
}

func css(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func cssAlpha(c color.RGBA) string {
	if c.A == 0xff {
		return css(c)
	}
	return fmt.Sprintf("rgba(%d,%d,%d,%.2f)", c.R, c.G, c.B, float64(c.A)/255)
}
