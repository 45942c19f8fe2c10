// Package filter compiles the audience editing tree into an expression.
package filter

import (
	"github.com/rebeliceyang/lazyaudience/internal/connector"
	"github.com/rebeliceyang/lazyaudience/internal/expr"
	"github.com/rebeliceyang/lazyaudience/internal/models"
)

// GroupConnectors returns the within-group connector state for a group id, or nil
type GroupConnectors func(groupID string) *connector.State

// Compiler turns groups into expressions. It never fails: unconfigured
// conditions and empty groups simply produce no node.
type Compiler struct {
	inner GroupConnectors
}

// NewCompiler creates a compiler. inner may be nil, in which case every group
// combines its children purely by mode.
func NewCompiler(inner GroupConnectors) *Compiler {
	return &Compiler{inner: inner}
}

// CompileGroup compiles one group with no within-group connectors
func CompileGroup(g models.Group) expr.Expression {
	return NewCompiler(nil).CompileGroup(g)
}

// Fold compiles and joins top-level groups with no within-group connectors
func Fold(groups []models.Group, connectors *connector.State) expr.Expression {
	return NewCompiler(nil).Fold(groups, connectors)
}

// CompileGroup compiles g and its subgroups. It returns nil when nothing in
// the group is configured yet.
func (c *Compiler) CompileGroup(g models.Group) expr.Expression {
	var node expr.Expression
	if chain := c.chain(g); chain != nil && g.Mode != models.ModeAtLeast {
		node = c.compileChained(g, chain)
	} else {
		node = c.compileByMode(g)
	}

	if node == nil {
		return nil
	}
	if g.Exclude {
		return expr.NewNot(node)
	}
	return node
}

func (c *Compiler) chain(g models.Group) *connector.State {
	if c == nil || c.inner == nil {
		return nil
	}
	s := c.inner(g.ID)
	if s.Len() == 0 {
		return nil
	}
	return s
}

// compileByMode combines conditions then subgroups under the group's mode
func (c *Compiler) compileByMode(g models.Group) expr.Expression {
	children := append(compileConditions(g.Conditions), c.compileSubGroups(g.SubGroups)...)
	if len(children) == 0 {
		return nil
	}
	return combine(g.Mode, g.AtLeastCount, children)
}

// compileChained joins the group's condition block and each subgroup with the
// group's own connectors. Gaps the user never touched use the mode's operator.
func (c *Compiler) compileChained(g models.Group, chain *connector.State) expr.Expression {
	fallback := connector.And
	if g.Mode == models.ModeAny {
		fallback = connector.Or
	}

	operands, keys := c.chainOperands(g)
	return foldOperands(operands, keys, func(key string) connector.Connector {
		if conn, ok := chain.Lookup(key); ok {
			return conn
		}
		return fallback
	})
}

// chainOperands returns the condition block and each compiled subgroup of g,
// keyed the way the group's own connectors are
func (c *Compiler) chainOperands(g models.Group) ([]expr.Expression, []string) {
	var operands []expr.Expression
	var keys []string

	if conds := compileConditions(g.Conditions); len(conds) > 0 {
		operands = append(operands, combine(g.Mode, g.AtLeastCount, conds))
		keys = append(keys, connector.ConditionsKey)
	}
	for _, sub := range g.SubGroups {
		if node := c.CompileGroup(sub); node != nil {
			operands = append(operands, node)
			keys = append(keys, sub.ID)
		}
	}
	return operands, keys
}

func compileConditions(conditions []models.Condition) []expr.Expression {
	out := make([]expr.Expression, 0, len(conditions))
	for _, cond := range conditions {
		if !cond.Configured() {
			continue
		}
		out = append(out, expr.NewQuestion(cond.QuestionID, cond.DatapointIDs...))
	}
	return out
}

func (c *Compiler) compileSubGroups(groups []models.Group) []expr.Expression {
	out := make([]expr.Expression, 0, len(groups))
	for _, sub := range groups {
		if node := c.CompileGroup(sub); node != nil {
			out = append(out, node)
		}
	}
	return out
}

// combine applies mode semantics to a non-empty child list
func combine(mode models.Mode, atLeast int, children []expr.Expression) expr.Expression {
	if mode == models.ModeAtLeast {
		return expr.NewAtLeast(models.ClampAtLeast(atLeast), children...)
	}
	if len(children) == 1 {
		return children[0]
	}
	if mode == models.ModeAny {
		return expr.Or{Expressions: children}
	}
	return expr.And{Expressions: children}
}

// Fold compiles each group and joins the results left to right. The gap after
// a group is looked up by that group's id.
func (c *Compiler) Fold(groups []models.Group, connectors *connector.State) expr.Expression {
	operands, keys := c.siblingOperands(groups)
	return foldOperands(operands, keys, connectors.Get)
}

func (c *Compiler) siblingOperands(groups []models.Group) ([]expr.Expression, []string) {
	operands := make([]expr.Expression, 0, len(groups))
	keys := make([]string, 0, len(groups))
	for _, g := range groups {
		if node := c.CompileGroup(g); node != nil {
			operands = append(operands, node)
			keys = append(keys, g.ID)
		}
	}
	return operands, keys
}

// Gaps returns the keys whose connector currently joins two compiled
// top-level groups. A gap next to an empty group is not among them.
func (c *Compiler) Gaps(groups []models.Group) []string {
	_, keys := c.siblingOperands(groups)
	return effective(keys)
}

// GroupGaps is Gaps for the connectors inside g. An at-least group combines
// its children by count, so it has none.
func (c *Compiler) GroupGaps(g models.Group) []string {
	if g.Mode == models.ModeAtLeast {
		return nil
	}
	_, keys := c.chainOperands(g)
	return effective(keys)
}

// effective drops the last key, which has no right-hand operand
func effective(keys []string) []string {
	if len(keys) < 2 {
		return nil
	}
	return keys[:len(keys)-1]
}

// foldOperands left-folds operands. keys[i] names the sibling before gap i.
// Same-operator chains are flattened into one n-ary node.
func foldOperands(operands []expr.Expression, keys []string, lookup func(string) connector.Connector) expr.Expression {
	if len(operands) == 0 {
		return nil
	}

	acc := operands[0]
	for i := 1; i < len(operands); i++ {
		right := operands[i]
		switch lookup(keys[i-1]) {
		case connector.Or:
			acc = joinOr(acc, right)
		case connector.AndNot:
			acc = joinAnd(acc, expr.NewNot(right))
		default:
			acc = joinAnd(acc, right)
		}
	}
	return acc
}

func joinAnd(acc, right expr.Expression) expr.Expression {
	if and, ok := acc.(expr.And); ok {
		return expr.And{Expressions: appendCopy(and.Expressions, right)}
	}
	return expr.NewAnd(acc, right)
}

func joinOr(acc, right expr.Expression) expr.Expression {
	if or, ok := acc.(expr.Or); ok {
		return expr.Or{Expressions: appendCopy(or.Expressions, right)}
	}
	return expr.NewOr(acc, right)
}

// appendCopy never writes into list's backing array, which may belong to a
// node another caller still holds.
func appendCopy(list []expr.Expression, e expr.Expression) []expr.Expression {
	out := make([]expr.Expression, 0, len(list)+1)
	out = append(out, list...)
	return append(out, e)
}
