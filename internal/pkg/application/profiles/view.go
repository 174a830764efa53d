package profiles

import (
	"fmt"
	"slices"
	"sort"
	"sync"

	"github.com/diwise/exhibit-profiles/pkg/exhibit"
)

// Table is the data contract consumed by a table renderer. Links names the
// columns whose values are ids of other entities, so that cells can be
// rendered as links to those profiles.
type Table struct {
	Columns []string              `json:"columns"`
	Rows    []exhibit.Row         `json:"data"`
	Links   map[string]EntityType `json:"links,omitempty"`
}

type ProfileView struct {
	ID         exhibit.ID                `json:"id"`
	Title      any                       `json:"title"`
	FrameNames []string                  `json:"frameNames"`
	AttrKeys   []string                  `json:"attrKeys"`
	Attrs      map[string]any            `json:"attrs"`
	Tables     map[string]Table          `json:"tables"`
	Network    Network                   `json:"network,omitempty"`
	Feed       []FeedItem                `json:"feed,omitempty"`
	Metrics    map[string]exhibit.Metric `json:"metrics,omitempty"`
}

func NewProfileView(id exhibit.ID, e exhibit.Exhibit, cfg EntityDisplayConfig, entityTypes []EntityType) *ProfileView {
	view := &ProfileView{
		ID:         id,
		Title:      e.Attrs[cfg.Title],
		FrameNames: slices.Clone(cfg.Frames),
		AttrKeys:   attrKeys(e.Attrs, cfg),
		Tables:     make(map[string]Table, len(cfg.Frames)),
		Metrics:    e.Metrics,
	}

	view.Attrs = make(map[string]any, len(view.AttrKeys))
	for _, key := range view.AttrKeys {
		view.Attrs[key] = e.Attrs[key]
	}

	for _, name := range cfg.Frames {
		f, ok := e.Frame(name)
		if !ok {
			continue
		}

		view.Tables[name] = Table{
			Columns: f.Columns,
			Rows:    f.Rows,
			Links:   cfg.Links[name],
		}
	}

	if len(cfg.Links) > 0 {
		view.Network = CountNetwork(e.Columns, e.Frames, cfg.Links, cfg.LinkedFrames(), id.ID, entityTypes)
	}

	if len(cfg.SortFields) > 0 {
		view.Feed = MergeFeed(e.Columns, e.Frames, cfg.SortFields)
	}

	return view
}

func attrKeys(attrs map[string]any, cfg EntityDisplayConfig) []string {
	if cfg.AttrMode != AttrModeBlock {
		return slices.Clone(cfg.Attrs)
	}

	keys := make([]string, 0, len(attrs))
	for key := range attrs {
		if !slices.Contains(cfg.HiddenAttrs, key) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	return keys
}

// ViewState tracks which frame of a profile view is displayed. Exactly one
// frame is active at any time.
type ViewState struct {
	mu     sync.Mutex
	frames []string
	active map[string]bool
}

func NewViewState(frameNames []string) *ViewState {
	vs := &ViewState{
		frames: slices.Clone(frameNames),
		active: make(map[string]bool, len(frameNames)),
	}

	for _, f := range vs.frames {
		vs.active[f] = false
	}

	if len(vs.frames) > 0 {
		vs.active[vs.frames[0]] = true
	}

	return vs
}

func (vs *ViewState) SetActive(frame string) error {
	vs.mu.Lock()
	defer vs.mu.Unlock()

	if _, ok := vs.active[frame]; !ok {
		return fmt.Errorf("frame %s is not displayed", frame)
	}

	for f := range vs.active {
		vs.active[f] = false
	}
	vs.active[frame] = true

	return nil
}

// Active returns the name of the active frame, or an empty string if the
// view has no frames
func (vs *ViewState) Active() string {
	vs.mu.Lock()
	defer vs.mu.Unlock()

	for _, f := range vs.frames {
		if vs.active[f] {
			return f
		}
	}

	return ""
}

func (vs *ViewState) IsActive(frame string) bool {
	vs.mu.Lock()
	defer vs.mu.Unlock()

	return vs.active[frame]
}

func (vs *ViewState) ActiveFrames() []string {
	vs.mu.Lock()
	defer vs.mu.Unlock()

	active := make([]string, 0, 1)
	for _, f := range vs.frames {
		if vs.active[f] {
			active = append(active, f)
		}
	}

	return active
}
