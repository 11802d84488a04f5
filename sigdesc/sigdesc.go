// Package sigdesc loads signature and implicit layout descriptions from
// TOML or YAML files.
//
// A TOML description:
//
//	[[signature]]
//	name = "material"
//	binding_index = 1
//	combined_sampler_suffix = "_sampler"
//
//	[[signature.resource]]
//	name = "albedo"
//	stages = "Fragment"
//	type = "TextureSRV"
//	var = "Mutable"
//
//	[[signature.immutable_sampler]]
//	name = "albedo"
//	stages = "Fragment"
//	filter = "linear"
//	address = "repeat"
//
// Enum fields take the names printed by the gpubind types. Masks join
// names with '|' or ','.
package sigdesc

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/gogpu/gpubind"
)

// ErrUnknownFormat is returned for file extensions other than .toml, .yaml and .yml.
var ErrUnknownFormat = errors.New("sigdesc: unknown file format")

// Format is a description file encoding.
type Format uint8

const (
	FormatTOML Format = iota
	FormatYAML
)

func (f Format) String() string {
	switch f {
	case FormatTOML:
		return "TOML"
	case FormatYAML:
		return "YAML"
	default:
		return fmt.Sprintf("Format(%d)", uint8(f))
	}
}

// FormatFromPath picks the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownFormat, path)
	}
}

// File is the root of a description file.
type File struct {
	Signatures []Signature `toml:"signature" yaml:"signatures"`

	// Layout controls implicit signatures. It is optional.
	Layout *Layout `toml:"layout" yaml:"layout"`
}

// Signature describes one explicit signature.
type Signature struct {
	Name         string `toml:"name" yaml:"name"`
	BindingIndex uint8  `toml:"binding_index" yaml:"binding_index"`

	// CombinedSamplerSuffix enables combined texture samplers when set.
	CombinedSamplerSuffix string `toml:"combined_sampler_suffix" yaml:"combined_sampler_suffix"`

	Resources         []Resource         `toml:"resource" yaml:"resources"`
	ImmutableSamplers []ImmutableSampler `toml:"immutable_sampler" yaml:"immutable_samplers"`
}

// Resource describes one resource of a signature. ArraySize defaults to
// 1, or to 0 for runtime arrays.
type Resource struct {
	Name      string                `toml:"name" yaml:"name"`
	Stages    gpubind.ShaderStages  `toml:"stages" yaml:"stages"`
	Type      gpubind.ResourceType  `toml:"type" yaml:"type"`
	VarType   gpubind.VariableType  `toml:"var" yaml:"var"`
	Flags     gpubind.ResourceFlags `toml:"flags" yaml:"flags"`
	ArraySize *uint32               `toml:"array_size" yaml:"array_size"`
}

// Layout describes how implicit signatures are derived from shaders.
type Layout struct {
	DefaultVariableType gpubind.VariableType `toml:"default_var" yaml:"default_var"`
	Variables           []Variable           `toml:"variable" yaml:"variables"`
	ImmutableSamplers   []ImmutableSampler   `toml:"immutable_sampler" yaml:"immutable_samplers"`
}

// Variable overrides the variable type of reflected resources called Name.
type Variable struct {
	Name    string                `toml:"name" yaml:"name"`
	Stages  gpubind.ShaderStages  `toml:"stages" yaml:"stages"`
	VarType gpubind.VariableType  `toml:"var" yaml:"var"`
	Flags   gpubind.ResourceFlags `toml:"flags" yaml:"flags"`
}

// Decode reads a description in format f. Unknown keys are errors.
func Decode(r io.Reader, f Format) (*File, error) {
	var file File
	switch f {
	case FormatTOML:
		if err := toml.NewDecoder(r).DisallowUnknownFields().Decode(&file); err != nil {
			return nil, fmt.Errorf("sigdesc: toml: %w", err)
		}
	case FormatYAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("sigdesc: yaml: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, f)
	}
	return &file, nil
}

// Load reads the description file at path. The format follows the extension.
func Load(path string) (*File, error) {
	f, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	fp, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fp.Close()

	file, err := Decode(bufio.NewReader(fp), f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return file, nil
}

// SignatureDescs converts every signature of the file. Resources are
// stably sorted by variable type, so files may list them in any order.
func (f *File) SignatureDescs() ([]gpubind.SignatureDesc, error) {
	out := make([]gpubind.SignatureDesc, 0, len(f.Signatures))
	for i := range f.Signatures {
		d, err := f.Signatures[i].Desc()
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

// Desc converts the signature description.
func (s *Signature) Desc() (gpubind.SignatureDesc, error) {
	d := gpubind.SignatureDesc{
		Name:                       s.Name,
		BindingIndex:               s.BindingIndex,
		UseCombinedTextureSamplers: s.CombinedSamplerSuffix != "",
		CombinedSamplerSuffix:      s.CombinedSamplerSuffix,
	}
	for _, r := range s.Resources {
		d.Resources = append(d.Resources, r.desc())
	}
	slices.SortStableFunc(d.Resources, func(a, b gpubind.ResourceDesc) int {
		return int(a.VarType) - int(b.VarType)
	})

	smp, err := immutableSamplers(s.ImmutableSamplers)
	if err != nil {
		return gpubind.SignatureDesc{}, fmt.Errorf("sigdesc: signature %q: %w", s.Name, err)
	}
	d.ImmutableSamplers = smp
	return d, nil
}

func (r *Resource) desc() gpubind.ResourceDesc {
	d := gpubind.ResourceDesc{
		Name:         r.Name,
		ShaderStages: r.Stages,
		ArraySize:    1,
		Type:         r.Type,
		VarType:      r.VarType,
		Flags:        r.Flags,
	}
	switch {
	case r.ArraySize != nil:
		d.ArraySize = *r.ArraySize
	case r.Flags&gpubind.FlagRuntimeArray != 0:
		d.ArraySize = 0
	}
	return d
}

// LayoutDesc converts the layout section. A file without one yields the
// zero layout, where every reflected resource is static.
func (f *File) LayoutDesc() (gpubind.LayoutDesc, error) {
	if f.Layout == nil {
		return gpubind.LayoutDesc{}, nil
	}
	l := gpubind.LayoutDesc{DefaultVariableType: f.Layout.DefaultVariableType}
	for _, v := range f.Layout.Variables {
		l.Variables = append(l.Variables, gpubind.LayoutVariable{
			ShaderStages: v.Stages,
			Name:         v.Name,
			Type:         v.VarType,
			Flags:        v.Flags,
		})
	}
	smp, err := immutableSamplers(f.Layout.ImmutableSamplers)
	if err != nil {
		return gpubind.LayoutDesc{}, fmt.Errorf("sigdesc: layout: %w", err)
	}
	l.ImmutableSamplers = smp
	return l, nil
}
