package roadmap

// Status is the mastery state of a topic or option
type Status string

const (
	StatusAvailable Status = "available"
	StatusMastered  Status = "mastered"
)

// Kind distinguishes a single clickable topic from a branching group of options
type Kind string

const (
	KindItem  Kind = "item"
	KindGroup Kind = "group"
)

// Side is the side of the spine an option branches toward
type Side string

const (
	SideLeft  Side = "left"
	SideRight Side = "right"
)

// Definition is a complete roadmap: an ordered list of phases.
// A Definition is treated as immutable once handed to the normalizer.
type Definition struct {
	Slug        string  `json:"slug,omitempty" yaml:"slug,omitempty"`
	Title       string  `json:"title,omitempty" yaml:"title,omitempty"`
	Description string  `json:"description,omitempty" yaml:"description,omitempty"`
	Phases      []Phase `json:"phases" yaml:"phases"`
}

// Phase is a top-level section of the roadmap, drawn with a bracket
type Phase struct {
	ID       string  `json:"id" yaml:"id"`
	Title    string  `json:"title" yaml:"title"`
	Subtitle string  `json:"subtitle,omitempty" yaml:"subtitle,omitempty"`
	Number   int     `json:"number,omitempty" yaml:"number,omitempty"` // Display ordinal, 0 = position in list
	Height   float64 `json:"height,omitempty" yaml:"height,omitempty"` // Bracket/spacing hint, 0 = default
	Topics   []Topic `json:"topics" yaml:"topics"`
}

// Topic is a learning unit within a phase
type Topic struct {
	ID          string   `json:"id" yaml:"id"`
	Label       string   `json:"label" yaml:"label"`
	IconSlug    string   `json:"iconSlug,omitempty" yaml:"iconSlug,omitempty"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Status      Status   `json:"status,omitempty" yaml:"status,omitempty"`
	Kind        Kind     `json:"kind" yaml:"kind"`
	Options     []Option `json:"options,omitempty" yaml:"options,omitempty"`
}

// Option is a choice within a topic group. An option with nested options
// is itself a group and fans out further from the spine.
type Option struct {
	ID            string   `json:"id" yaml:"id"`
	Label         string   `json:"label" yaml:"label"`
	IconSlug      string   `json:"iconSlug,omitempty" yaml:"iconSlug,omitempty"`
	IsRecommended bool     `json:"isRecommended,omitempty" yaml:"isRecommended,omitempty"`
	Side          Side     `json:"side" yaml:"side"`
	Status        Status   `json:"status,omitempty" yaml:"status,omitempty"`
	Options       []Option `json:"options,omitempty" yaml:"options,omitempty"`
}

// EffectiveStatus maps the zero value to available
func EffectiveStatus(s Status) Status {
	if s == "" {
		return StatusAvailable
	}
	return s
}

// PhaseNumber returns the display ordinal of the phase at index i
func (d *Definition) PhaseNumber(i int) int {
	if n := d.Phases[i].Number; n > 0 {
		return n
	}
	return i + 1
}

// Clone returns a deep copy so callers can overlay state without touching
// the shared definition.
func (d *Definition) Clone() *Definition {
	out := *d
	out.Phases = make([]Phase, len(d.Phases))
	for i, p := range d.Phases {
		out.Phases[i] = p
		out.Phases[i].Topics = make([]Topic, len(p.Topics))
		for j, t := range p.Topics {
			out.Phases[i].Topics[j] = t
			out.Phases[i].Topics[j].Options = cloneOptions(t.Options)
		}
	}
	return &out
}

func cloneOptions(opts []Option) []Option {
	if opts == nil {
		return nil
	}
	out := make([]Option, len(opts))
	for i, o := range opts {
		out[i] = o
		out[i].Options = cloneOptions(o.Options)
	}
	return out
}

// Walk visits every topic and option with its entity path
// (phase:topic[:option...]). Returning false from fn stops the walk.
func (d *Definition) Walk(fn func(path string, status *Status) bool) {
	for i := range d.Phases {
		p := &d.Phases[i]
		for j := range p.Topics {
			t := &p.Topics[j]
			topicPath := p.ID + PathSeparator + t.ID
			if !fn(topicPath, &t.Status) {
				return
			}
			if !walkOptions(topicPath, t.Options, fn) {
				return
			}
		}
	}
}

func walkOptions(parent string, opts []Option, fn func(string, *Status) bool) bool {
	for i := range opts {
		o := &opts[i]
		path := parent + PathSeparator + o.ID
		if !fn(path, &o.Status) {
			return false
		}
		if !walkOptions(path, o.Options, fn) {
			return false
		}
	}
	return true
}

// PathSeparator joins entity ids into composite paths
const PathSeparator = ":"
