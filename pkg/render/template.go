package render

import (
	"net/url"

	"github.com/ritzau/roadmap-graph/pkg/model"
)

// TemplateKind is the drawing routine a template uses
type TemplateKind int

const (
	TemplateMain TemplateKind = iota
	TemplateGroup
	TemplateButton
	TemplateBracket
)

// Template is the visual recipe for one node type
type Template struct {
	Name      string
	Kind      TemplateKind
	Radius    float64
	Clickable bool
	ShowIcon  bool
}

// TemplateFor maps a node type to its template. Every node type has exactly
// one; an unknown type is a programming error.
func TemplateFor(t model.NodeType) Template {
	switch t {
	case model.NodeMain:
		return Template{Name: "main", Kind: TemplateMain, Radius: 12, Clickable: true, ShowIcon: true}
	case model.NodeTopicGroup:
		return Template{Name: "topic-group", Kind: TemplateGroup, Radius: 10, Clickable: true, ShowIcon: true}
	case model.NodeTopicItem:
		return Template{Name: "topic-item", Kind: TemplateButton, Radius: 6, Clickable: true, ShowIcon: true}
	case model.NodeOptionGroup:
		return Template{Name: "option-group", Kind: TemplateGroup, Radius: 8, Clickable: true, ShowIcon: true}
	case model.NodeOptionItem:
		return Template{Name: "option-item", Kind: TemplateButton, Radius: 6, Clickable: true, ShowIcon: true}
	case model.NodePhaseBracket:
		return Template{Name: "phase-bracket", Kind: TemplateBracket}
	}
	panic("render: no template for node type " + string(t))
}

// IconURL returns the simple-icons CDN URL for a slug
func IconURL(slug string) string {
	if slug == "" {
		return ""
	}
	return "https://cdn.simpleicons.org/" + url.PathEscape(slug)
}
