package gpubind

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownName is returned when text does not name a known enum value.
var ErrUnknownName = errors.New("gpubind: unknown name")

func lookupName(kind, text string, names []string) (int, error) {
	for i, n := range names {
		if n != "" && strings.EqualFold(n, text) {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: %s %q", ErrUnknownName, kind, text)
}

// splitMask splits "A|B", "A,B" and "A | B" into trimmed parts.
func splitMask(text string) []string {
	parts := strings.FieldsFunc(text, func(r rune) bool { return r == '|' || r == ',' })
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// MarshalText implements encoding.TextMarshaler.
func (s ShaderStages) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText accepts stage names joined with '|' or ',' plus the
// aliases None, AllGraphics and All. Matching ignores case.
func (s *ShaderStages) UnmarshalText(text []byte) error {
	var out ShaderStages
	for _, p := range splitMask(string(text)) {
		switch strings.ToLower(p) {
		case "", "none":
			continue
		case "allgraphics":
			out |= StageAllGraphics
			continue
		case "all":
			out |= StageAll
			continue
		case "pixel":
			out |= StageFragment
			continue
		}
		i, err := lookupName("shader stage", p, stageNames[:])
		if err != nil {
			return err
		}
		out |= 1 << i
	}
	*s = out
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (t ResourceType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *ResourceType) UnmarshalText(text []byte) error {
	i, err := lookupName("resource type", string(text), resourceTypeNames[:])
	if err != nil {
		return err
	}
	*t = ResourceType(i) //nolint:gosec // G115: index into a short name table
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (v VariableType) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (v *VariableType) UnmarshalText(text []byte) error {
	i, err := lookupName("variable type", string(text), variableTypeNames[:])
	if err != nil {
		return err
	}
	*v = VariableType(i) //nolint:gosec // G115: index into a short name table
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (f ResourceFlags) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// UnmarshalText accepts flag names joined with '|' or ','.
func (f *ResourceFlags) UnmarshalText(text []byte) error {
	var out ResourceFlags
	for _, p := range splitMask(string(text)) {
		if p == "" || strings.EqualFold(p, "none") {
			continue
		}
		i, err := lookupName("resource flag", p, resourceFlagNames[:])
		if err != nil {
			return err
		}
		out |= 1 << i
	}
	*f = out
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d ResourceDimension) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *ResourceDimension) UnmarshalText(text []byte) error {
	i, err := lookupName("resource dimension", string(text), dimensionNames[:])
	if err != nil {
		return err
	}
	*d = ResourceDimension(i) //nolint:gosec // G115: index into a short name table
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (p SamplerPolicy) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *SamplerPolicy) UnmarshalText(text []byte) error {
	i, err := lookupName("sampler policy", string(text), []string{"CombinedSuffix", "TextureName"})
	if err != nil {
		return err
	}
	*p = SamplerPolicy(i) //nolint:gosec // G115: index into a short name table
	return nil
}
