// Package editor is the stateful front of the audience compiler. Each user
// gesture maps to one Session method, which applies a pure tree or connector
// update and then recompiles the expression before returning.
package editor

import (
	"slices"

	"github.com/rebeliceyang/lazyaudience/internal/connector"
	"github.com/rebeliceyang/lazyaudience/internal/expr"
	"github.com/rebeliceyang/lazyaudience/internal/filter"
	"github.com/rebeliceyang/lazyaudience/internal/idgen"
	"github.com/rebeliceyang/lazyaudience/internal/logger"
	"github.com/rebeliceyang/lazyaudience/internal/models"
	"github.com/rebeliceyang/lazyaudience/internal/tree"
)

// Session holds one audience being edited. It is not safe for concurrent use;
// the UI calls it from its single update loop.
type Session struct {
	groups     []models.Group
	connectors *connector.State
	inner      map[string]*connector.State
	expression expr.Expression

	compiler       *filter.Compiler
	ids            *idgen.Generator
	log            *logger.Logger
	defaultMode    models.Mode
	defaultAtLeast int
}

// Option configures a Session
type Option func(*Session)

// WithLogger sets the session logger
func WithLogger(l *logger.Logger) Option {
	return func(s *Session) {
		s.log = l
	}
}

// WithIDs sets the id generator
func WithIDs(g *idgen.Generator) Option {
	return func(s *Session) {
		s.ids = g
	}
}

// WithDefaults sets the mode and at-least count given to new groups
func WithDefaults(mode models.Mode, atLeast int) Option {
	return func(s *Session) {
		s.defaultMode = mode
		s.defaultAtLeast = models.ClampAtLeast(atLeast)
	}
}

// New creates a session holding a single empty group
func New(opts ...Option) *Session {
	s := &Session{
		connectors:     connector.NewState(),
		inner:          make(map[string]*connector.State),
		ids:            idgen.Default(),
		log:            logger.Nop(),
		defaultMode:    models.ModeAll,
		defaultAtLeast: 1,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.WithComponent("editor")
	s.compiler = filter.NewCompiler(s.groupConnectors)
	s.groups = []models.Group{s.newGroup()}
	s.recompile()
	return s
}

func (s *Session) newGroup() models.Group {
	g := models.NewGroup(s.ids.Next())
	if s.defaultMode != "" {
		g.Mode = s.defaultMode
	}
	g.AtLeastCount = s.defaultAtLeast
	return g
}

func (s *Session) groupConnectors(groupID string) *connector.State {
	return s.inner[groupID]
}

func (s *Session) recompile() {
	s.expression = s.compiler.Fold(s.groups, s.connectors)
}

// apply updates one group and recompiles. Unknown ids are stale UI events
// and leave the session untouched.
func (s *Session) apply(action, groupID string, updater tree.Updater) bool {
	if !tree.Contains(s.groups, groupID) {
		s.log.Debugw("ignoring stale event", "action", action, "group_id", groupID)
		return false
	}
	s.groups = tree.Update(s.groups, groupID, updater)
	s.recompile()
	s.log.Debugw(action, "group_id", groupID)
	return true
}

// Groups returns the current forest. Callers must not modify it.
func (s *Session) Groups() []models.Group {
	return s.groups
}

// Expression returns the compiled audience, or nil when nothing is configured
func (s *Session) Expression() expr.Expression {
	return s.expression
}

// Ready reports whether at least one condition is configured
func (s *Session) Ready() bool {
	return s.expression != nil
}

// JSON returns the compiled audience in wire format, or null when not ready
func (s *Session) JSON() ([]byte, error) {
	return expr.Document{Expression: s.expression}.MarshalJSON()
}

// Describe returns a readable one-line rendering of the compiled audience
func (s *Session) Describe() string {
	return filter.DescribeWithLabels(s.expression, s.Labels())
}

// Labels collects the display names cached on the conditions
func (s *Session) Labels() filter.Labels {
	labels := filter.Labels{
		Questions:  make(map[string]string),
		Datapoints: make(map[string]string),
	}
	var visit func([]models.Group)
	visit = func(groups []models.Group) {
		for _, g := range groups {
			for _, c := range g.Conditions {
				if c.QuestionName != "" {
					labels.Questions[c.QuestionID] = c.QuestionName
				}
				for i, id := range c.DatapointIDs {
					if i < len(c.DatapointNames) && c.DatapointNames[i] != "" {
						labels.Datapoints[id] = c.DatapointNames[i]
					}
				}
			}
			visit(g.SubGroups)
		}
	}
	visit(s.groups)
	return labels
}

// AddGroup appends a new empty top-level group and returns its id
func (s *Session) AddGroup() string {
	g := s.newGroup()
	groups := make([]models.Group, 0, len(s.groups)+1)
	groups = append(groups, s.groups...)
	s.groups = append(groups, g)
	s.recompile()
	s.log.Debugw("add group", "group_id", g.ID)
	return g.ID
}

// AddCondition appends an unconfigured condition to the group and returns its
// id, or "" when the group no longer exists
func (s *Session) AddCondition(groupID string) string {
	c := models.NewCondition(s.ids.Next())
	if !s.apply("add condition", groupID, tree.AppendCondition(c)) {
		return ""
	}
	return c.ID
}

// UpdateCondition sets the question and answer options of a condition
func (s *Session) UpdateCondition(groupID, conditionID, questionID, questionName string, datapointIDs, datapointNames []string) {
	if !tree.ContainsCondition(s.groups, groupID, conditionID) {
		s.log.Debugw("ignoring stale event", "action", "update condition", "group_id", groupID, "condition_id", conditionID)
		return
	}
	s.apply("update condition", groupID, tree.EditCondition(conditionID, func(c models.Condition) models.Condition {
		c.QuestionID = questionID
		c.QuestionName = questionName
		return c.WithDatapoints(datapointIDs, datapointNames)
	}))
}

// RemoveCondition deletes a condition from its group
func (s *Session) RemoveCondition(groupID, conditionID string) {
	s.apply("remove condition", groupID, tree.DropCondition(conditionID))
}

// AddSubgroup appends an empty child group and returns its id, or "" when the
// parent no longer exists
func (s *Session) AddSubgroup(parentID string) string {
	sub := s.newGroup()
	if !s.apply("add subgroup", parentID, tree.AppendSubgroup(sub)) {
		return ""
	}
	return sub.ID
}

// RemoveGroup deletes a group and its descendants at any depth. Connector
// entries keyed by removed groups are dropped. The forest is never left
// empty: removing the last group leaves one fresh empty group.
func (s *Session) RemoveGroup(groupID string) {
	g, ok := models.FindGroup(s.groups, groupID)
	if !ok {
		s.log.Debugw("ignoring stale event", "action", "remove group", "group_id", groupID)
		return
	}
	parentID, hasParent := models.ParentOf(s.groups, groupID)

	s.groups = tree.Remove(s.groups, groupID)
	for _, id := range g.GroupIDs() {
		s.connectors.Delete(id)
		delete(s.inner, id)
	}
	if hasParent {
		s.inner[parentID].Delete(groupID)
	}

	if len(s.groups) == 0 {
		s.groups = []models.Group{s.newGroup()}
		s.log.Debugw("forest emptied, added fresh group", "group_id", s.groups[0].ID)
	}
	s.recompile()
	s.log.Debugw("remove group", "group_id", groupID)
}

// SetMode changes how the group's children combine
func (s *Session) SetMode(groupID string, mode models.Mode) {
	s.apply("set mode", groupID, tree.SetMode(mode))
}

// CycleMode advances the group to the next mode
func (s *Session) CycleMode(groupID string) {
	s.apply("cycle mode", groupID, tree.CycleMode())
}

// SetAtLeastCount sets the at-least threshold, clamped to 1
func (s *Session) SetAtLeastCount(groupID string, n int) {
	s.apply("set at-least count", groupID, tree.SetAtLeastCount(n))
}

// ToggleExclude flips the group's negation
func (s *Session) ToggleExclude(groupID string) {
	s.apply("toggle exclude", groupID, tree.ToggleExclude())
}

// ToggleCollapsed flips the group's presentation state
func (s *Session) ToggleCollapsed(groupID string) {
	s.apply("toggle collapsed", groupID, tree.ToggleCollapsed())
}

// Connector returns the top-level connector after the given group
func (s *Session) Connector(afterID string) connector.Connector {
	return s.connectors.Get(afterID)
}

// CycleConnector rotates the top-level connector after the given group
func (s *Session) CycleConnector(afterID string) connector.Connector {
	if !isTopLevel(s.groups, afterID) {
		s.log.Debugw("ignoring stale event", "action", "cycle connector", "after_id", afterID)
		return s.connectors.Get(afterID)
	}
	next := s.connectors.Cycle(afterID)
	s.recompile()
	s.log.Debugw("cycle connector", "after_id", afterID, "connector", next)
	return next
}

// GroupConnector returns the connector after afterID inside a group. afterID
// is a subgroup id or connector.ConditionsKey.
func (s *Session) GroupConnector(groupID, afterID string) connector.Connector {
	if conn, ok := s.inner[groupID].Lookup(afterID); ok {
		return conn
	}
	if g, ok := models.FindGroup(s.groups, groupID); ok && g.Mode == models.ModeAny {
		return connector.Or
	}
	return connector.Default
}

// Joins reports whether the connector after afterID currently sits between
// two compiled siblings. parentID is "" for the top level. Connectors next to
// groups that compile to nothing have no effect on the expression.
func (s *Session) Joins(parentID, afterID string) bool {
	if parentID == "" {
		return slices.Contains(s.compiler.Gaps(s.groups), afterID)
	}
	g, ok := models.FindGroup(s.groups, parentID)
	if !ok {
		return false
	}
	return slices.Contains(s.compiler.GroupGaps(g), afterID)
}

// CycleGroupConnector rotates the connector after afterID inside a group
func (s *Session) CycleGroupConnector(groupID, afterID string) connector.Connector {
	g, ok := models.FindGroup(s.groups, groupID)
	if !ok || !hasGap(g, afterID) {
		s.log.Debugw("ignoring stale event", "action", "cycle group connector", "group_id", groupID, "after_id", afterID)
		return s.GroupConnector(groupID, afterID)
	}

	state, ok := s.inner[groupID]
	if !ok {
		state = connector.NewState()
		s.inner[groupID] = state
	}
	next := s.GroupConnector(groupID, afterID).Next()
	state.Set(afterID, next)
	s.recompile()
	s.log.Debugw("cycle group connector", "group_id", groupID, "after_id", afterID, "connector", next)
	return next
}

// Reset discards everything and starts over with one empty group
func (s *Session) Reset() {
	s.groups = []models.Group{s.newGroup()}
	s.connectors = connector.NewState()
	s.inner = make(map[string]*connector.State)
	s.recompile()
	s.log.Debugw("reset")
}

func isTopLevel(groups []models.Group, id string) bool {
	for _, g := range groups {
		if g.ID == id {
			return true
		}
	}
	return false
}

// hasGap reports whether afterID names a gap inside g. The conditions block
// only has a gap when a subgroup follows it, and the last subgroup has none.
func hasGap(g models.Group, afterID string) bool {
	if afterID == connector.ConditionsKey {
		return len(g.Conditions) > 0 && len(g.SubGroups) > 0
	}
	for i, sub := range g.SubGroups {
		if sub.ID == afterID {
			return i < len(g.SubGroups)-1
		}
	}
	return false
}
