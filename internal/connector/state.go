// Package connector stores the operator that joins two consecutive siblings.
// A gap is keyed by the id of the sibling just before it, so removing or
// reordering siblings never renumbers unrelated gaps.
package connector

import (
	"strings"
)

// Connector is the operator applied across one gap
type Connector string

const (
	And    Connector = "and"
	Or     Connector = "or"
	AndNot Connector = "and_not"
)

// Default is used for every gap the user has not touched
const Default = And

// ConditionsKey addresses the gap between a group's last condition and its
// first subgroup.
const ConditionsKey = "__conditions__"

// Next returns the connector that follows c in the rotation and -> or -> and_not -> and
func (c Connector) Next() Connector {
	switch c {
	case And:
		return Or
	case Or:
		return AndNot
	default:
		return And
	}
}

// Label returns the display text for a connector
func (c Connector) Label() string {
	switch c {
	case Or:
		return "OR"
	case AndNot:
		return "AND NOT"
	default:
		return "AND"
	}
}

// ParseConnector parses a connector name
func ParseConnector(s string) (Connector, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "and":
		return And, true
	case "or":
		return Or, true
	case "and_not", "and not", "andnot":
		return AndNot, true
	}
	return "", false
}

// State maps gap keys to connectors. The zero value is an empty, usable state.
type State struct {
	m map[string]Connector
}

// NewState creates an empty state
func NewState() *State {
	return &State{}
}

// FromMap builds a state from a plain map, skipping unknown connector names
func FromMap(m map[string]Connector) *State {
	s := NewState()
	for k, v := range m {
		if c, ok := ParseConnector(string(v)); ok {
			s.Set(k, c)
		}
	}
	return s
}

// Get returns the connector after key, or Default when unset
func (s *State) Get(key string) Connector {
	if c, ok := s.Lookup(key); ok {
		return c
	}
	return Default
}

// Lookup returns the connector after key and whether it was set explicitly
func (s *State) Lookup(key string) (Connector, bool) {
	if s == nil || s.m == nil {
		return "", false
	}
	c, ok := s.m[key]
	return c, ok
}

// Cycle advances the connector after key and returns the new value
func (s *State) Cycle(key string) Connector {
	next := s.Get(key).Next()
	s.Set(key, next)
	return next
}

// Set stores c as the connector after key
func (s *State) Set(key string, c Connector) {
	if s.m == nil {
		s.m = make(map[string]Connector)
	}
	s.m[key] = c
}

// Delete forgets the connector after key
func (s *State) Delete(key string) {
	if s == nil {
		return
	}
	delete(s.m, key)
}

// Len returns the number of explicitly set gaps
func (s *State) Len() int {
	if s == nil {
		return 0
	}
	return len(s.m)
}

// Map returns a copy of the explicitly set gaps, suitable for persistence
func (s *State) Map() map[string]Connector {
	out := make(map[string]Connector, s.Len())
	if s == nil {
		return out
	}
	for k, v := range s.m {
		out[k] = v
	}
	return out
}
