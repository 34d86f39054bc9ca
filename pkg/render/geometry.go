package render

import (
	"github.com/ritzau/roadmap-graph/pkg/model"
)

const (
	calloutW   = 90.0
	calloutH   = 20.0
	calloutGap = 8.0
	arrowLen   = 8.0
	arrowHalf  = 4.0
)

// Point is a canvas coordinate after translation
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Box is a canvas rectangle by top-left corner
type Box struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

func (b Box) centre() Point {
	return Point{X: b.X + b.W/2, Y: b.Y + b.H/2}
}

// segment is one step of a path: M, L or Q (quadratic, control then end)
type segment struct {
	op  byte
	pts []Point
}

// bracePath draws a curly brace filling b, its tip pointing left
func bracePath(b Box) []segment {
	xr := b.X + b.W*0.75
	xm := b.X + b.W*0.5
	xl := b.X + b.W*0.25
	mid := b.Y + b.H/2
	bend := min(10, b.H/8)

	return []segment{
		{'M', []Point{{xr, b.Y}}},
		{'Q', []Point{{xm, b.Y}, {xm, b.Y + bend*1.5}}},
		{'L', []Point{{xm, mid - bend}}},
		{'Q', []Point{{xm, mid}, {xl, mid}}},
		{'Q', []Point{{xm, mid}, {xm, mid + bend}}},
		{'L', []Point{{xm, b.Y + b.H - bend*1.5}}},
		{'Q', []Point{{xm, b.Y + b.H}, {xr, b.Y + b.H}}},
	}
}

// edgeRoute returns the polyline from s to t. Straight when aligned,
// otherwise a three-leg step that leaves and enters along the handle axis.
func edgeRoute(s, t Point, sh model.Handle) []Point {
	if s.X == t.X || s.Y == t.Y {
		return []Point{s, t}
	}
	if sh == model.HandleTop || sh == model.HandleBottom {
		my := (s.Y + t.Y) / 2
		return []Point{s, {s.X, my}, {t.X, my}, t}
	}
	mx := (s.X + t.X) / 2
	return []Point{s, {mx, s.Y}, {mx, t.Y}, t}
}

// arrowHead returns the triangle of a closed arrow ending at tip and
// entering through handle h.
func arrowHead(tip Point, h model.Handle) [3]Point {
	switch h {
	case model.HandleTop:
		return [3]Point{tip, {tip.X - arrowHalf, tip.Y - arrowLen}, {tip.X + arrowHalf, tip.Y - arrowLen}}
	case model.HandleBottom:
		return [3]Point{tip, {tip.X - arrowHalf, tip.Y + arrowLen}, {tip.X + arrowHalf, tip.Y + arrowLen}}
	case model.HandleLeft:
		return [3]Point{tip, {tip.X - arrowLen, tip.Y - arrowHalf}, {tip.X - arrowLen, tip.Y + arrowHalf}}
	default:
		return [3]Point{tip, {tip.X + arrowLen, tip.Y - arrowHalf}, {tip.X + arrowLen, tip.Y + arrowHalf}}
	}
}

// opposite returns the handle on the other side of a node
func opposite(h model.Handle) model.Handle {
	switch h {
	case model.HandleTop:
		return model.HandleBottom
	case model.HandleBottom:
		return model.HandleTop
	case model.HandleLeft:
		return model.HandleRight
	default:
		return model.HandleLeft
	}
}

// calloutBox places a callout next to node box b on the given side
func calloutBox(b Box, side model.Handle) Box {
	c := b.centre()
	switch side {
	case model.HandleTop:
		return Box{X: c.X - calloutW/2, Y: b.Y - calloutGap - calloutH, W: calloutW, H: calloutH}
	case model.HandleBottom:
		return Box{X: c.X - calloutW/2, Y: b.Y + b.H + calloutGap, W: calloutW, H: calloutH}
	case model.HandleLeft:
		return Box{X: b.X - calloutGap - calloutW, Y: c.Y - calloutH/2, W: calloutW, H: calloutH}
	default:
		return Box{X: b.X + b.W + calloutGap, Y: c.Y - calloutH/2, W: calloutW, H: calloutH}
	}
}

func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}
