package render

import (
	"image/png"
	"io"
	"math"

	"git.sr.ht/~sbinet/gg"
	"golang.org/x/image/font/basicfont"
)

// writePNG rasterises a scene. Icons are remote and are not drawn.
func writePNG(w io.Writer, s *Scene) error {
	dc := gg.NewContext(int(math.Ceil(s.Width)), int(math.Ceil(s.Height)))
	dc.SetColor(colorBackdrop)
	dc.Clear()
	dc.SetFontFace(basicfont.Face7x13)

	dc.SetColor(colorEdge)
	dc.SetLineWidth(2)
	for _, e := range s.Edges {
		for i := 1; i < len(e.Points); i++ {
			a, b := e.Points[i-1], e.Points[i]
			dc.DrawLine(a.X, a.Y, b.X, b.Y)
			dc.Stroke()
		}
		dc.NewSubPath()
		dc.MoveTo(e.Arrow[0].X, e.Arrow[0].Y)
		dc.LineTo(e.Arrow[1].X, e.Arrow[1].Y)
		dc.LineTo(e.Arrow[2].X, e.Arrow[2].Y)
		dc.ClosePath()
		dc.Fill()
	}

	for i := range s.Nodes {
		drawNodePNG(dc, &s.Nodes[i])
	}

	return png.Encode(w, dc.Image())
}

func drawNodePNG(dc *gg.Context, n *SceneNode) {
	b := n.Box
	c := b.centre()

	if n.tpl.Kind == TemplateBracket {
		dc.SetColor(n.style.Stroke)
		dc.SetLineWidth(n.style.StrokeWidth)
		for _, seg := range bracePath(b) {
			switch seg.op {
			case 'M':
				dc.MoveTo(seg.pts[0].X, seg.pts[0].Y)
			case 'L':
				dc.LineTo(seg.pts[0].X, seg.pts[0].Y)
			case 'Q':
				dc.QuadraticTo(seg.pts[0].X, seg.pts[0].Y, seg.pts[1].X, seg.pts[1].Y)
			}
		}
		dc.Stroke()
		dc.SetColor(n.style.Text)
		dc.DrawStringAnchored(n.Label, c.X, b.Y-10, 0.5, 0.5)
		return
	}

	dc.SetColor(n.style.Fill)
	dc.DrawRoundedRectangle(b.X, b.Y, b.W, b.H, n.Radius)
	dc.Fill()
	dc.SetColor(n.style.Stroke)
	dc.SetLineWidth(n.style.StrokeWidth)
	dc.DrawRoundedRectangle(b.X, b.Y, b.W, b.H, n.Radius)
	dc.Stroke()

	dc.SetColor(n.style.Text)
	dc.DrawStringAnchored(truncate(n.Label, 26), c.X, c.Y, 0.5, 0.5)

	if n.Callout != nil {
		cb := n.Callout.Box
		dc.SetColor(colorCalloutBG)
		dc.DrawRoundedRectangle(cb.X, cb.Y, cb.W, cb.H, 4)
		dc.Fill()
		cc := cb.centre()
		dc.SetColor(colorTextLight)
		dc.DrawStringAnchored(n.Callout.Text, cc.X, cc.Y, 0.5, 0.5)
	}
}
