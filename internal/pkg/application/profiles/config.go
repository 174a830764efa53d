package profiles

import (
	"fmt"
	"io"
	"slices"

	yaml "gopkg.in/yaml.v2"
)

type EntityType string

type AttrMode string

const (
	// AttrModeAllow shows the configured attrs, in configured order
	AttrModeAllow AttrMode = "allow"
	// AttrModeBlock shows every attr except the hidden ones
	AttrModeBlock AttrMode = "block"
)

type EntityDisplayConfig struct {
	Type        EntityType                       `yaml:"type" json:"type"`
	Title       string                           `yaml:"title" json:"title"`
	Frames      []string                         `yaml:"frames" json:"frames"`
	Attrs       []string                         `yaml:"attrs" json:"attrs,omitempty"`
	AttrMode    AttrMode                         `yaml:"attrMode" json:"attrMode"`
	HiddenAttrs []string                         `yaml:"hiddenAttrs" json:"hiddenAttrs,omitempty"`
	SortFields  map[string]string                `yaml:"sortFields" json:"sortFields,omitempty"`
	Links       map[string]map[string]EntityType `yaml:"frameEntities" json:"frameEntities,omitempty"`
}

// LinkedFrames returns the displayed frames that have columns referencing
// other entities, in display order
func (cfg EntityDisplayConfig) LinkedFrames() []string {
	linked := make([]string, 0, len(cfg.Links))

	for _, f := range cfg.Frames {
		if _, ok := cfg.Links[f]; ok {
			linked = append(linked, f)
		}
	}

	return linked
}

type Config struct {
	Entities []EntityDisplayConfig `yaml:"entities"`
}

type Registry struct {
	types   []EntityType
	configs map[EntityType]EntityDisplayConfig
}

func (r *Registry) Get(entityType EntityType) (EntityDisplayConfig, bool) {
	cfg, ok := r.configs[entityType]
	return cfg, ok
}

// Types returns the configured entity types in configuration order
func (r *Registry) Types() []EntityType {
	return slices.Clone(r.types)
}

func LoadConfiguration(data io.Reader) (*Registry, error) {

	buf, err := io.ReadAll(data)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	err = yaml.Unmarshal(buf, &cfg)
	if err != nil {
		return nil, err
	}

	return NewRegistry(*cfg)
}

func NewRegistry(cfg Config) (*Registry, error) {
	r := &Registry{
		types:   make([]EntityType, 0, len(cfg.Entities)),
		configs: make(map[EntityType]EntityDisplayConfig, len(cfg.Entities)),
	}

	for _, e := range cfg.Entities {
		if e.Type == "" {
			return nil, fmt.Errorf("entity configuration without a type")
		}

		if _, exists := r.configs[e.Type]; exists {
			return nil, fmt.Errorf("entity type %s is configured more than once", e.Type)
		}

		if e.AttrMode == "" {
			e.AttrMode = AttrModeAllow
		}

		r.types = append(r.types, e.Type)
		r.configs[e.Type] = e
	}

	for _, t := range r.types {
		if err := r.validate(r.configs[t]); err != nil {
			return nil, fmt.Errorf("invalid configuration for entity type %s: %w", t, err)
		}
	}

	return r, nil
}

func (r *Registry) validate(e EntityDisplayConfig) error {
	if e.Title == "" {
		return fmt.Errorf("a title attribute is required")
	}

	if len(e.Frames) == 0 {
		return fmt.Errorf("at least one frame must be displayed")
	}

	for idx, f := range e.Frames {
		if slices.Contains(e.Frames[:idx], f) {
			return fmt.Errorf("frame %s is listed more than once", f)
		}
	}

	if e.AttrMode != AttrModeAllow && e.AttrMode != AttrModeBlock {
		return fmt.Errorf("unknown attr mode %q", e.AttrMode)
	}

	for f := range e.SortFields {
		if !slices.Contains(e.Frames, f) {
			return fmt.Errorf("sort field configured for unknown frame %s", f)
		}
	}

	for f, columns := range e.Links {
		if !slices.Contains(e.Frames, f) {
			return fmt.Errorf("entity links configured for unknown frame %s", f)
		}

		for column, target := range columns {
			if _, ok := r.configs[target]; !ok {
				return fmt.Errorf("column %s in frame %s references unknown entity type %s", column, f, target)
			}
		}
	}

	return nil
}
