package layout

// Config holds the spacing constants of the layout, in pixels
type Config struct {
	SpineX       float64 `koanf:"spine_x"`       // x of the spine column
	PhaseStart   float64 `koanf:"phase_start"`   // y of the first phase
	SpinePitch   float64 `koanf:"spine_pitch"`   // Vertical distance between spine nodes
	OptionPitch  float64 `koanf:"option_pitch"`  // Vertical distance between stacked options
	GroupPadding float64 `koanf:"group_padding"` // Space below the last option of a group
	BranchOffset float64 `koanf:"branch_offset"` // Horizontal distance from a topic to its options
	DepthOffset  float64 `koanf:"depth_offset"`  // Extra horizontal distance per nesting level
	BracketWidth float64 `koanf:"bracket_width"`
	BracketGap   float64 `koanf:"bracket_gap"` // Space between a bracket and the leftmost node
}

// DefaultConfig returns the spacing used by the web viewer
func DefaultConfig() Config {
	return Config{
		SpineX:       0,
		PhaseStart:   50,
		SpinePitch:   120,
		OptionPitch:  44,
		GroupPadding: 40,
		BranchOffset: 220,
		DepthOffset:  220,
		BracketWidth: 60,
		BracketGap:   30,
	}
}

// withDefaults replaces non-positive spacings with their defaults
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	fill := func(v *float64, def float64) {
		if *v <= 0 {
			*v = def
		}
	}
	fill(&c.SpinePitch, d.SpinePitch)
	fill(&c.OptionPitch, d.OptionPitch)
	fill(&c.BranchOffset, d.BranchOffset)
	fill(&c.DepthOffset, d.DepthOffset)
	fill(&c.BracketWidth, d.BracketWidth)
	if c.GroupPadding < 0 {
		c.GroupPadding = 0
	}
	if c.BracketGap < 0 {
		c.BracketGap = 0
	}
	return c
}
