// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package config handles the driver-facing configuration bundle of a
// compilation unit: target stage and language, client API, binding shifts,
// auto-mapping toggles and resource limits.
//
// A bundle is read from a .toml or .yaml file and applied to an
// [ir.Intermediate] through its setters, so every action taken ends up in
// the unit's process log.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/tliron/commonlog"
	"gopkg.in/yaml.v3"

	"github.com/gogpu/glfront/ir"
)

var log = commonlog.GetLogger("glfront.config")

// ErrUnknownFormat is returned by Load for files that are neither TOML nor
// YAML.
var ErrUnknownFormat = errors.New("config: unknown file format")

// Format selects the decoder used by Parse.
type Format uint8

const (
	FormatTOML Format = iota
	FormatYAML
)

// FormatOf picks the format from a file extension.
func FormatOf(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, true
	case ".yaml", ".yml":
		return FormatYAML, true
	}
	return 0, false
}

// Options is the configuration bundle of one compilation unit.
type Options struct {
	Stage   string `toml:"stage" yaml:"stage"`
	Source  string `toml:"source" yaml:"source"`
	Profile string `toml:"profile" yaml:"profile"`
	Version int    `toml:"version" yaml:"version"`

	Client Client `toml:"client" yaml:"client"`

	Extensions        []string `toml:"extensions" yaml:"extensions"`
	EntryPoint        string   `toml:"entry-point" yaml:"entry-point"`
	MangledEntryPoint string   `toml:"mangled-entry-point" yaml:"mangled-entry-point"`
	KeepUncalled      bool     `toml:"keep-uncalled" yaml:"keep-uncalled"`

	// Defines are object-like macros predefined before preprocessing.
	Defines map[string]string `toml:"defines" yaml:"defines"`

	Bindings Bindings `toml:"bindings" yaml:"bindings"`

	AutoMapBindings      bool   `toml:"auto-map-bindings" yaml:"auto-map-bindings"`
	AutoMapLocations     bool   `toml:"auto-map-locations" yaml:"auto-map-locations"`
	InvertY              bool   `toml:"invert-y" yaml:"invert-y"`
	FlattenUniformArrays bool   `toml:"flatten-uniform-arrays" yaml:"flatten-uniform-arrays"`
	NoStorageFormat      bool   `toml:"no-storage-format" yaml:"no-storage-format"`
	HlslOffsets          bool   `toml:"hlsl-offsets" yaml:"hlsl-offsets"`
	HlslIoMapping        bool   `toml:"hlsl-iomap" yaml:"hlsl-iomap"`
	UseStorageBuffer     bool   `toml:"use-storage-buffer" yaml:"use-storage-buffer"`
	SamplerTransform     string `toml:"sampler-transform" yaml:"sampler-transform"`

	Limits Limits `toml:"limits" yaml:"limits"`

	// Path is the file the options were loaded from (set at load time).
	Path string `toml:"-" yaml:"-"`
}

// Client names the API the unit is compiled for.
type Client struct {
	// Vulkan is "1.0", "1.1" or empty.
	Vulkan string `toml:"vulkan" yaml:"vulkan"`
	// VulkanGLSL is the GL_KHR_vulkan_glsl version, typically 100.
	VulkanGLSL int `toml:"vulkan-glsl" yaml:"vulkan-glsl"`
	// OpenGL is the OpenGL client version, typically 450.
	OpenGL int    `toml:"opengl" yaml:"opengl"`
	Spirv  uint32 `toml:"spirv" yaml:"spirv"`
}

// Bindings holds binding shifts, keyed by resource kind ("sampler",
// "texture", "image", "ubo", "ssbo", "uav").
type Bindings struct {
	Shift       map[string]int `toml:"shift" yaml:"shift"`
	SetShift    []SetShift     `toml:"set-shift" yaml:"set-shift"`
	ResourceSet []string       `toml:"resource-set" yaml:"resource-set"`
}

// SetShift is a binding shift applied within one descriptor set.
type SetShift struct {
	Resource string `toml:"resource" yaml:"resource"`
	Set      int    `toml:"set" yaml:"set"`
	Shift    int    `toml:"shift" yaml:"shift"`
}

// Limits overrides implementation limits. Zero keeps the default.
type Limits struct {
	MaxTransformFeedbackBuffers               int `toml:"max-transform-feedback-buffers" yaml:"max-transform-feedback-buffers"`
	MaxTransformFeedbackInterleavedComponents int `toml:"max-transform-feedback-interleaved-components" yaml:"max-transform-feedback-interleaved-components"`
}

// Default returns the options used for keys a file leaves out.
func Default() *Options {
	return &Options{
		Stage:   "vertex",
		Source:  "glsl",
		Profile: "core",
		Version: 450,
	}
}

// Load reads options from a .toml, .yaml or .yml file.
func Load(path string) (*Options, error) {
	format, ok := FormatOf(path)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	o, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	o.Path = path
	log.Debugf("loaded %s", path)
	return o, nil
}

// Parse decodes options over the defaults and validates them.
func Parse(data []byte, format Format) (*Options, error) {
	o := Default()
	switch format {
	case FormatTOML:
		if _, err := toml.Decode(string(data), o); err != nil {
			return nil, err
		}
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(o); err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
	default:
		return nil, ErrUnknownFormat
	}
	if err := o.Validate(); err != nil {
		return nil, err
	}
	return o, nil
}

// Validate rejects names that do not map to a stage, language, profile,
// client version or resource kind.
func (o *Options) Validate() error {
	if _, ok := ir.ParseStage(o.Stage); !ok {
		return fmt.Errorf("unknown stage %q", o.Stage)
	}
	if _, ok := ir.ParseSource(o.Source); !ok {
		return fmt.Errorf("unknown source language %q", o.Source)
	}
	if _, ok := ir.ParseProfile(o.Profile); !ok {
		return fmt.Errorf("unknown profile %q", o.Profile)
	}
	if o.Version <= 0 {
		return fmt.Errorf("invalid version %d", o.Version)
	}
	if _, ok := vulkanTarget(o.Client.Vulkan); !ok {
		return fmt.Errorf("unknown vulkan version %q", o.Client.Vulkan)
	}
	for name := range o.Bindings.Shift {
		if _, ok := ir.ParseResourceType(name); !ok {
			return fmt.Errorf("unknown resource kind %q in bindings.shift", name)
		}
	}
	for _, s := range o.Bindings.SetShift {
		if _, ok := ir.ParseResourceType(s.Resource); !ok {
			return fmt.Errorf("unknown resource kind %q in bindings.set-shift", s.Resource)
		}
	}
	for name := range o.Defines {
		if name == "" {
			return errors.New("empty macro name in defines")
		}
	}
	if _, ok := samplerTransform(o.SamplerTransform); !ok {
		return fmt.Errorf("unknown sampler transform %q", o.SamplerTransform)
	}
	return nil
}

func vulkanTarget(v string) (int, bool) {
	switch v {
	case "":
		return 0, true
	case "1.0":
		return ir.TargetVulkan10, true
	case "1.1":
		return ir.TargetVulkan11, true
	}
	return 0, false
}

func samplerTransform(name string) (ir.TextureSamplerTransformMode, bool) {
	switch name {
	case "", "keep":
		return ir.TextureSamplerKeep, true
	case "upgrade-texture-remove-sampler":
		return ir.TextureSamplerUpgradeTextureRemoveSampler, true
	}
	return 0, false
}

// NewIntermediate validates the options and returns a fresh unit with the
// options applied.
func (o *Options) NewIntermediate() (*ir.Intermediate, error) {
	if err := o.Validate(); err != nil {
		return nil, err
	}
	stage, _ := ir.ParseStage(o.Stage)
	profile, _ := ir.ParseProfile(o.Profile)
	in := ir.NewIntermediate(stage, o.Version, profile)
	o.Apply(in)
	return in, nil
}

// Apply pushes the options into in. Options are assumed valid; names that
// do not parse are skipped.
func (o *Options) Apply(in *ir.Intermediate) {
	if src, ok := ir.ParseSource(o.Source); ok {
		in.SetSource(src)
	}

	vulkan, _ := vulkanTarget(o.Client.Vulkan)
	spv := ir.SpvVersion{
		Spv:        o.Client.Spirv,
		VulkanGLSL: o.Client.VulkanGLSL,
		Vulkan:     vulkan,
		OpenGL:     o.Client.OpenGL,
	}
	if spv != (ir.SpvVersion{}) {
		in.SetSpv(spv)
	}

	for _, ext := range o.Extensions {
		in.AddRequestedExtension(ext)
	}
	if o.EntryPoint != "" {
		in.SetEntryPointName(o.EntryPoint)
	}
	if o.MangledEntryPoint != "" {
		in.SetEntryPointMangledName(o.MangledEntryPoint)
	}

	for _, res := range o.shiftOrder() {
		kind, _ := ir.ParseResourceType(res)
		in.SetShiftBinding(kind, o.Bindings.Shift[res])
	}
	for _, s := range o.Bindings.SetShift {
		if kind, ok := ir.ParseResourceType(s.Resource); ok {
			in.SetShiftBindingForSet(kind, s.Shift, s.Set)
		}
	}
	in.SetResourceSetBinding(o.Bindings.ResourceSet)

	in.SetAutoMapBindings(o.AutoMapBindings)
	in.SetAutoMapLocations(o.AutoMapLocations)
	in.SetInvertY(o.InvertY)
	in.SetFlattenUniformArrays(o.FlattenUniformArrays)
	in.SetNoStorageFormat(o.NoStorageFormat)
	if o.HlslOffsets {
		in.SetHlslOffsets()
	}
	in.SetHlslIoMapping(o.HlslIoMapping)
	if o.UseStorageBuffer {
		in.SetUseStorageBuffer()
	}
	if mode, ok := samplerTransform(o.SamplerTransform); ok {
		in.SetTextureSamplerTransformMode(mode)
	}

	res := ir.DefaultResources()
	if o.Limits.MaxTransformFeedbackBuffers > 0 {
		res.MaxTransformFeedbackBuffers = o.Limits.MaxTransformFeedbackBuffers
	}
	if o.Limits.MaxTransformFeedbackInterleavedComponents > 0 {
		res.MaxTransformFeedbackInterleavedComponents = o.Limits.MaxTransformFeedbackInterleavedComponents
	}
	in.SetResources(res)

	log.Debugf("applied options to %s unit: %d processes", in.Stage(), len(in.Processes()))
}

// shiftOrder returns the configured shift kinds in resource-kind order so
// that the process log does not depend on map iteration.
func (o *Options) shiftOrder() []string {
	names := make([]string, 0, len(o.Bindings.Shift))
	for name := range o.Bindings.Shift {
		if _, ok := ir.ParseResourceType(name); ok {
			names = append(names, name)
		}
	}
	sort.Slice(names, func(i, j int) bool {
		a, _ := ir.ParseResourceType(names[i])
		b, _ := ir.ParseResourceType(names[j])
		if a != b {
			return a < b
		}
		return names[i] < names[j]
	})
	return names
}
