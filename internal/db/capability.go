package db

import "strings"

// Capability is the set of content types a model can produce.
type Capability uint8

const (
	CapText Capability = 1 << iota
	CapImage
)

// Has reports whether c includes every bit of other.
func (c Capability) Has(other Capability) bool {
	return c&other == other
}

func (c Capability) String() string {
	var parts []string
	if c.Has(CapText) {
		parts = append(parts, "text")
	}
	if c.Has(CapImage) {
		parts = append(parts, "image")
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "+")
}

// CapabilityFor maps a prompt type to the capability a model needs to serve it.
func CapabilityFor(promptType string) Capability {
	if promptType == PromptTypeImage {
		return CapImage
	}
	return CapText
}

// Capabilities returns the model's capability set.
func (m Model) Capabilities() Capability {
	var c Capability
	if m.TextOutput {
		c |= CapText
	}
	if m.ImageOutput {
		c |= CapImage
	}
	return c
}
