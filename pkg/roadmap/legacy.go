package roadmap

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// LegacyDocument is the export format of the older learning site:
// {"roadmap": {"title": ..., "phases": [...]}}
type LegacyDocument struct {
	Roadmap LegacyRoadmap `json:"roadmap"`
}

// LegacyRoadmap is the root object of a legacy export
type LegacyRoadmap struct {
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Phases      []LegacyPhase `json:"phases"`
}

// LegacyPhase groups steps under a numbered phase
type LegacyPhase struct {
	PhaseNumber      int          `json:"phase_number"`
	PhaseName        string       `json:"phase_name"`
	PhaseDescription string       `json:"phase_description"`
	Topics           []LegacyStep `json:"topics"`
}

// LegacyStep is a spine entry; its children branch to either side
type LegacyStep struct {
	ID          LegacyID        `json:"id"`
	Title       string          `json:"title"`
	ShortTitle  string          `json:"short_title"`
	Slug        string          `json:"slug"`
	Description string          `json:"description"`
	UIConfig    *LegacyUIConfig `json:"ui_config,omitempty"`
	Children    []LegacyChild   `json:"children"`
}

// LegacyUIConfig carries per-step presentation hints
type LegacyUIConfig struct {
	TopicLayout string `json:"topic_layout"`
	IconSlug    string `json:"icon_slug"`
	NodeType    string `json:"node_type"`
}

// LegacyChild is a branch entry (subtopic, module, topic or option)
type LegacyChild struct {
	ID            LegacyID      `json:"id"`
	Label         string        `json:"label"`
	Type          string        `json:"type"`
	Status        string        `json:"status"`
	IconSlug      string        `json:"icon_slug"`
	IsRecommended bool          `json:"is_recommended"`
	Side          string        `json:"side"`
	Children      []LegacyChild `json:"children"`
}

// LegacyID accepts both string and numeric ids
type LegacyID string

func (id *LegacyID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = LegacyID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("legacy id must be a string or number: %w", err)
	}
	*id = LegacyID(n.String())
	return nil
}

// ConvertLegacy maps a legacy export onto a Definition.
//
// Steps become topics (group when they have children), children become
// options. A child without an explicit side inherits its parent's side, and
// top-level children default to right for options and left for everything
// else. Statuses other than mastered ("locked", empty) map to available.
func ConvertLegacy(root *LegacyRoadmap) *Definition {
	def := &Definition{
		Title:       root.Title,
		Description: root.Description,
		Phases:      make([]Phase, 0, len(root.Phases)),
	}

	for i, lp := range root.Phases {
		number := lp.PhaseNumber
		if number <= 0 {
			number = i + 1
		}
		phase := Phase{
			ID:       fmt.Sprintf("phase-%d", number),
			Title:    lp.PhaseName,
			Subtitle: lp.PhaseDescription,
			Number:   number,
			Topics:   make([]Topic, 0, len(lp.Topics)),
		}

		for _, step := range lp.Topics {
			topic := Topic{
				ID:          legacyStepID(step),
				Label:       firstNonEmpty(step.ShortTitle, step.Title),
				Description: step.Description,
				Kind:        KindItem,
			}
			if step.UIConfig != nil {
				topic.IconSlug = step.UIConfig.IconSlug
			}
			if len(step.Children) > 0 {
				topic.Kind = KindGroup
				topic.Options = convertLegacyChildren(step.Children, "")
			}
			phase.Topics = append(phase.Topics, topic)
		}
		def.Phases = append(def.Phases, phase)
	}
	return def
}

func convertLegacyChildren(children []LegacyChild, parentSide Side) []Option {
	out := make([]Option, 0, len(children))
	for _, c := range children {
		side := resolveLegacySide(c, parentSide)
		opt := Option{
			ID:            string(c.ID),
			Label:         c.Label,
			IconSlug:      c.IconSlug,
			IsRecommended: c.IsRecommended,
			Side:          side,
		}
		if c.Status == string(StatusMastered) {
			opt.Status = StatusMastered
		}
		if len(c.Children) > 0 {
			opt.Options = convertLegacyChildren(c.Children, side)
		}
		out = append(out, opt)
	}
	return out
}

func resolveLegacySide(c LegacyChild, parentSide Side) Side {
	switch Side(c.Side) {
	case SideLeft, SideRight:
		return Side(c.Side)
	}
	if parentSide != "" {
		return parentSide
	}
	if c.Type == "option" {
		return SideRight
	}
	return SideLeft
}

func legacyStepID(step LegacyStep) string {
	if step.Slug != "" {
		return step.Slug
	}
	return string(step.ID)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
