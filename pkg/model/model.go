package model

import "github.com/ritzau/roadmap-graph/pkg/roadmap"

// NodeType is the structural role of a node. Every renderer maps each of
// these to exactly one template.
type NodeType string

const (
	NodeMain         NodeType = "main"         // Phase header on the spine
	NodeTopicGroup   NodeType = "topicGroup"   // Topic that branches into options
	NodeTopicItem    NodeType = "topicItem"    // Single clickable topic on the spine
	NodeOptionGroup  NodeType = "optionGroup"  // Option with nested options
	NodeOptionItem   NodeType = "optionItem"   // Leaf option
	NodePhaseBracket NodeType = "phaseBracket" // Decorative brace spanning a phase
)

// NodeTypes lists all node types in a stable order
var NodeTypes = []NodeType{
	NodeMain,
	NodeTopicGroup,
	NodeTopicItem,
	NodeOptionGroup,
	NodeOptionItem,
	NodePhaseBracket,
}

// OnSpine reports whether nodes of this type sit in the vertical spine column
func (t NodeType) OnSpine() bool {
	return t == NodeMain || t == NodeTopicGroup || t == NodeTopicItem
}

// IsOption reports whether nodes of this type branch off a topic group
func (t NodeType) IsOption() bool {
	return t == NodeOptionGroup || t == NodeOptionItem
}

// Handle identifies the connection point on a node's border
type Handle string

const (
	HandleTop    Handle = "top"
	HandleBottom Handle = "bottom"
	HandleLeft   Handle = "left"
	HandleRight  Handle = "right"
)

// EdgeKind distinguishes the spine chain from lateral branches
type EdgeKind string

const (
	EdgeSpine  EdgeKind = "spine"
	EdgeBranch EdgeKind = "branch"
)

// MarkerArrowClosed is the only arrowhead style edges use
const MarkerArrowClosed = "arrowclosed"

// Position is a node centre in pixels
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Size is a node's bounding box in pixels
type Size struct {
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// NodeData is the type-specific payload carried by a node.
// Fields that do not apply to a node type are left zero.
type NodeData struct {
	EntityID      string         `json:"entityId"` // Path of the source phase/topic/option
	Label         string         `json:"label"`
	Status        roadmap.Status `json:"status,omitempty"`
	IconSlug      string         `json:"iconSlug,omitempty"`
	Description   string         `json:"description,omitempty"`
	IsRecommended bool           `json:"isRecommended,omitempty"`
	Side          roadmap.Side   `json:"side,omitempty"`
	Depth         int            `json:"depth,omitempty"` // Option nesting depth, 1 = direct child of a topic
	PhaseID       string         `json:"phaseId"`
	PhaseNumber   int            `json:"phaseNumber"`
	PhaseSubtitle string         `json:"phaseSubtitle,omitempty"`
	HeightHint    float64        `json:"heightHint,omitempty"`
	ChildCount    int            `json:"childCount,omitempty"`
}
