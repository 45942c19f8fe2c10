package editor

import (
	"github.com/rebeliceyang/lazyaudience/internal/connector"
	"github.com/rebeliceyang/lazyaudience/internal/models"
)

// Snapshot is the persistable editing state of a session
type Snapshot struct {
	Groups          []models.Group                            `yaml:"groups" json:"groups"`
	Connectors      map[string]connector.Connector            `yaml:"connectors,omitempty" json:"connectors,omitempty"`
	GroupConnectors map[string]map[string]connector.Connector `yaml:"group_connectors,omitempty" json:"group_connectors,omitempty"`
}

// Snapshot captures the current tree and connector state
func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		Groups:     s.groups,
		Connectors: s.connectors.Map(),
	}
	for id, state := range s.inner {
		if state.Len() == 0 {
			continue
		}
		if snap.GroupConnectors == nil {
			snap.GroupConnectors = make(map[string]map[string]connector.Connector)
		}
		snap.GroupConnectors[id] = state.Map()
	}
	return snap
}

// Restore replaces the session state with snap. Loaded counts are clamped
// and an empty forest gets one fresh group.
func (s *Session) Restore(snap Snapshot) {
	s.groups = sanitize(snap.Groups)
	if len(s.groups) == 0 {
		s.groups = []models.Group{s.newGroup()}
	}
	s.connectors = connector.FromMap(snap.Connectors)
	s.inner = make(map[string]*connector.State, len(snap.GroupConnectors))
	for id, m := range snap.GroupConnectors {
		s.inner[id] = connector.FromMap(m)
	}
	s.recompile()
	s.log.Debugw("restore", "groups", len(s.groups))
}

// sanitize copies groups loaded from disk, fixing values the editor would
// never have produced itself
func sanitize(groups []models.Group) []models.Group {
	out := make([]models.Group, 0, len(groups))
	for _, g := range groups {
		if mode, ok := models.ParseMode(string(g.Mode)); ok {
			g.Mode = mode
		} else {
			g.Mode = models.ModeAll
		}
		g.AtLeastCount = models.ClampAtLeast(g.AtLeastCount)
		g.SubGroups = sanitize(g.SubGroups)
		out = append(out, g)
	}
	return out
}
