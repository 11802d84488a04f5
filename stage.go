package gpubind

import (
	"math/bits"
	"strings"
)

// ShaderStages is a bitmask of shader stages.
type ShaderStages uint32

const (
	StageVertex ShaderStages = 1 << iota
	StageHull
	StageDomain
	StageGeometry
	StageFragment
	StageCompute

	// StageNone is the empty mask.
	StageNone ShaderStages = 0

	// StageAllGraphics covers every graphics stage.
	StageAllGraphics = StageVertex | StageHull | StageDomain | StageGeometry | StageFragment

	// StageAll covers every stage.
	StageAll = StageAllGraphics | StageCompute
)

var stageNames = [...]string{"Vertex", "Hull", "Domain", "Geometry", "Fragment", "Compute"}

// String returns the stage names joined with '|'.
func (s ShaderStages) String() string {
	if s == StageNone {
		return "None"
	}
	var b strings.Builder
	for i, name := range stageNames {
		if s&(1<<i) == 0 {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('|')
		}
		b.WriteString(name)
	}
	return b.String()
}

// Overlaps reports whether s and o share at least one stage.
func (s ShaderStages) Overlaps(o ShaderStages) bool {
	return s&o != 0
}

// Count returns the number of stages in the mask.
func (s ShaderStages) Count() int {
	return bits.OnesCount32(uint32(s))
}

// Each calls fn for every stage in the mask, lowest bit first.
func (s ShaderStages) Each(fn func(ShaderStages)) {
	for rest := s & StageAll; rest != 0; rest &= rest - 1 {
		fn(rest & -rest)
	}
}

// LowestStage returns the lowest stage in the mask, or StageNone.
func (s ShaderStages) LowestStage() ShaderStages {
	return s & -s
}
