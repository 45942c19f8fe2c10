package models

import (
	"strconv"
	"strings"
)

// Mode determines how a group's own children combine
type Mode string

const (
	ModeAll     Mode = "all"
	ModeAny     Mode = "any"
	ModeAtLeast Mode = "at_least"
)

// Modes lists the modes in keyboard cycling order
var Modes = []Mode{ModeAll, ModeAny, ModeAtLeast}

// ParseMode parses a mode name, accepting a few spellings used in config files
func ParseMode(s string) (Mode, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "all", "and":
		return ModeAll, true
	case "any", "or":
		return ModeAny, true
	case "at_least", "atleast", "at-least":
		return ModeAtLeast, true
	}
	return "", false
}

// Next returns the mode that follows m when the user cycles modes
func (m Mode) Next() Mode {
	switch m {
	case ModeAll:
		return ModeAny
	case ModeAny:
		return ModeAtLeast
	default:
		return ModeAll
	}
}

// Label returns the display text for a mode
func (m Mode) Label(atLeast int) string {
	switch m {
	case ModeAny:
		return "ANY"
	case ModeAtLeast:
		return "AT LEAST " + strconv.Itoa(ClampAtLeast(atLeast))
	default:
		return "ALL"
	}
}

// Condition is a single answer-based filter leaf
type Condition struct {
	ID             string   `yaml:"id" json:"id"`
	QuestionID     string   `yaml:"question_id" json:"question_id"`
	QuestionName   string   `yaml:"question_name,omitempty" json:"question_name,omitempty"`
	DatapointIDs   []string `yaml:"datapoint_ids,omitempty" json:"datapoint_ids,omitempty"`
	DatapointNames []string `yaml:"datapoint_names,omitempty" json:"datapoint_names,omitempty"`
}

// NewCondition creates an unconfigured condition
func NewCondition(id string) Condition {
	return Condition{ID: id}
}

// Configured reports whether the user has picked a question yet.
// Unconfigured conditions are skipped by the compiler.
func (c Condition) Configured() bool {
	return c.QuestionID != ""
}

// WithDatapoints returns a copy of c holding the given answer options.
// Duplicate ids keep their first occurrence; names stay aligned with ids.
func (c Condition) WithDatapoints(ids, names []string) Condition {
	seen := make(map[string]struct{}, len(ids))
	outIDs := make([]string, 0, len(ids))
	outNames := make([]string, 0, len(ids))
	for i, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		outIDs = append(outIDs, id)
		name := ""
		if i < len(names) {
			name = names[i]
		}
		outNames = append(outNames, name)
	}
	c.DatapointIDs = outIDs
	c.DatapointNames = outNames
	return c
}

// Group is a node in the audience tree
type Group struct {
	ID           string      `yaml:"id" json:"id"`
	Mode         Mode        `yaml:"mode" json:"mode"`
	AtLeastCount int         `yaml:"at_least_count" json:"at_least_count"`
	Exclude      bool        `yaml:"exclude" json:"exclude"`
	Collapsed    bool        `yaml:"collapsed,omitempty" json:"collapsed,omitempty"` // presentation only
	Conditions   []Condition `yaml:"conditions" json:"conditions"`
	SubGroups    []Group     `yaml:"sub_groups,omitempty" json:"sub_groups,omitempty"`
}

// NewGroup creates an empty group in "all" mode
func NewGroup(id string) Group {
	return Group{
		ID:           id,
		Mode:         ModeAll,
		AtLeastCount: 1,
		Conditions:   []Condition{},
		SubGroups:    []Group{},
	}
}

// ClampAtLeast keeps an at-least count at 1 or above
func ClampAtLeast(n int) int {
	if n < 1 {
		return 1
	}
	return n
}

// IsEmpty reports whether the group has neither conditions nor subgroups
func (g Group) IsEmpty() bool {
	return len(g.Conditions) == 0 && len(g.SubGroups) == 0
}

// FindCondition returns the condition with the given id inside g
func (g Group) FindCondition(id string) (Condition, bool) {
	for _, c := range g.Conditions {
		if c.ID == id {
			return c, true
		}
	}
	return Condition{}, false
}

// FindGroup finds a group by ID anywhere in the forest (depth-first search)
func FindGroup(groups []Group, id string) (Group, bool) {
	for _, g := range groups {
		if g.ID == id {
			return g, true
		}
		if found, ok := FindGroup(g.SubGroups, id); ok {
			return found, true
		}
	}
	return Group{}, false
}

// ContainsGroup reports whether a group with the given id exists in the forest
func ContainsGroup(groups []Group, id string) bool {
	_, ok := FindGroup(groups, id)
	return ok
}

// GroupIDs returns the ids of g and all of its descendants
func (g Group) GroupIDs() []string {
	ids := []string{g.ID}
	for _, sub := range g.SubGroups {
		ids = append(ids, sub.GroupIDs()...)
	}
	return ids
}
