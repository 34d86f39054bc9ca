package render

import (
	"fmt"
	"html"
	"io"
	"math"
	"strings"

	svg "github.com/ajstarks/svgo"
)

const (
	fontFamily = "font-family:Inter,Helvetica,Arial,sans-serif"
	iconSize   = 14
)

// errWriter keeps the first write error; svgo does not report them
type errWriter struct {
	w   io.Writer
	n   int64
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return len(p), nil
	}
	n, err := e.w.Write(p)
	e.n += int64(n)
	e.err = err
	return len(p), nil
}

func px(v float64) int {
	return int(math.Round(v))
}

// writeSVG draws a scene. Each node is a <g> carrying data-id and
// data-clickable so a browser can dispatch clicks back to the server.
func writeSVG(w io.Writer, s *Scene) error {
	ew := &errWriter{w: w}
	canvas := svg.New(ew)
	canvas.Start(px(s.Width), px(s.Height))
	canvas.Rect(0, 0, px(s.Width), px(s.Height), fmt.Sprintf("fill:%s", css(colorBackdrop)))

	for _, e := range s.Edges {
		xs := make([]int, len(e.Points))
		ys := make([]int, len(e.Points))
		for i, p := range e.Points {
			xs[i], ys[i] = px(p.X), px(p.Y)
		}
		canvas.Polyline(xs, ys, fmt.Sprintf("fill:none;stroke:%s;stroke-width:2", e.Stroke))
		canvas.Polygon(
			[]int{px(e.Arrow[0].X), px(e.Arrow[1].X), px(e.Arrow[2].X)},
			[]int{px(e.Arrow[0].Y), px(e.Arrow[1].Y), px(e.Arrow[2].Y)},
			fmt.Sprintf("fill:%s", e.Stroke),
		)
	}

	for i := range s.Nodes {
		drawNodeSVG(canvas, &s.Nodes[i])
	}

	canvas.End()
	if ew.err != nil {
		return fmt.Errorf("writing svg after %d bytes: %w", ew.n, ew.err)
	}
	return nil
}

func drawNodeSVG(canvas *svg.SVG, n *SceneNode) {
	canvas.Group(
		fmt.Sprintf(`class="node %s"`, n.Template),
		fmt.Sprintf(`data-id="%s"`, html.EscapeString(n.ID)),
		fmt.Sprintf(`data-clickable="%t"`, n.Clickable),
	)
	defer canvas.Gend()

	b := n.Box
	x, y, w, h := px(b.X), px(b.Y), px(b.W), px(b.H)
	c := b.centre()

	if n.tpl.Kind == TemplateBracket {
		canvas.Path(svgPath(bracePath(b)),
			fmt.Sprintf("fill:none;stroke:%s;stroke-width:%.0f;stroke-linecap:round", n.Stroke, n.StrokeWidth))
		canvas.Text(px(c.X), y-8, n.Label,
			fmt.Sprintf("fill:%s;font-size:12px;font-weight:bold;text-anchor:middle;%s", n.TextColor, fontFamily))
		return
	}

	r := px(n.Radius)
	canvas.Roundrect(x, y, w, h, r, r,
		fmt.Sprintf("fill:%s;stroke:%s;stroke-width:%.0f", n.Fill, n.Stroke, n.StrokeWidth))

	textX := px(c.X)
	if n.IconURL != "" {
		canvas.Image(x+10, px(c.Y)-iconSize/2, iconSize, iconSize, n.IconURL)
		textX += iconSize / 2
	}
	weight := "normal"
	if n.tpl.Kind != TemplateButton || n.Mastered {
		weight = "bold"
	}
	canvas.Text(textX, px(c.Y)+4, truncate(n.Label, 26),
		fmt.Sprintf("fill:%s;font-size:11px;font-weight:%s;text-anchor:middle;%s", n.TextColor, weight, fontFamily))

	if n.Callout != nil {
		cb := n.Callout.Box
		canvas.Roundrect(px(cb.X), px(cb.Y), px(cb.W), px(cb.H), 4, 4,
			fmt.Sprintf("fill:%s", css(colorCalloutBG)), `pointer-events="none"`)
		cc := cb.centre()
		canvas.Text(px(cc.X), px(cc.Y)+3, n.Callout.Text,
			fmt.Sprintf("fill:%s;font-size:10px;font-weight:bold;text-anchor:middle;%s", css(colorTextLight), fontFamily),
			`pointer-events="none"`)
	}
}

func svgPath(segs []segment) string {
	var sb strings.Builder
	for _, s := range segs {
		sb.WriteByte(s.op)
		for _, p := range s.pts {
			fmt.Fprintf(&sb, " %.1f,%.1f", p.X, p.Y)
		}
		sb.WriteByte(' ')
	}
	return strings.TrimSpace(sb.String())
}
