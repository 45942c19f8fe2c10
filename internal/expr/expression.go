// Package expr defines the compiled audience expression: the canonical boolean
// tree handed to the statistics service, and its JSON wire format.
package expr

// Kind identifies the variant of an Expression
type Kind string

const (
	KindQuestion Kind = "question"
	KindAnd      Kind = "and"
	KindOr       Kind = "or"
	KindNot      Kind = "not"
	KindAtLeast  Kind = "at_least"
)

// Expression is one node of a compiled audience. The concrete types are
// Question, And, Or, Not and AtLeast; values are never mutated after
// construction.
type Expression interface {
	Kind() Kind
	isExpression()
}

// Question is true when the respondent's answer to QuestionID intersects DatapointIDs
type Question struct {
	QuestionID   string
	DatapointIDs []string
}

// And is true when every child is true
type And struct {
	Expressions []Expression
}

// Or is true when any child is true
type Or struct {
	Expressions []Expression
}

// Not negates its child
type Not struct {
	Expression Expression
}

// AtLeast is true when at least Count children are true
type AtLeast struct {
	Count       int
	Expressions []Expression
}

func (Question) Kind() Kind { return KindQuestion }
func (And) Kind() Kind      { return KindAnd }
func (Or) Kind() Kind       { return KindOr }
func (Not) Kind() Kind      { return KindNot }
func (AtLeast) Kind() Kind  { return KindAtLeast }

func (Question) isExpression() {}
func (And) isExpression()      {}
func (Or) isExpression()       {}
func (Not) isExpression()      {}
func (AtLeast) isExpression()  {}

// NewQuestion builds a question leaf. The datapoint list is copied.
func NewQuestion(questionID string, datapointIDs ...string) Question {
	return Question{
		QuestionID:   questionID,
		DatapointIDs: append([]string{}, datapointIDs...),
	}
}

// NewAnd builds an And node over a copy of children
func NewAnd(children ...Expression) And {
	return And{Expressions: append([]Expression{}, children...)}
}

// NewOr builds an Or node over a copy of children
func NewOr(children ...Expression) Or {
	return Or{Expressions: append([]Expression{}, children...)}
}

// NewNot wraps e in a negation
func NewNot(e Expression) Not {
	return Not{Expression: e}
}

// NewAtLeast builds an AtLeast node over a copy of children
func NewAtLeast(count int, children ...Expression) AtLeast {
	return AtLeast{Count: count, Expressions: append([]Expression{}, children...)}
}

// Children returns the direct operands of e
func Children(e Expression) []Expression {
	switch n := e.(type) {
	case And:
		return n.Expressions
	case Or:
		return n.Expressions
	case AtLeast:
		return n.Expressions
	case Not:
		return []Expression{n.Expression}
	}
	return nil
}

// Walk visits e and its descendants depth-first, parents before children.
// Returning false from fn skips the node's children.
func Walk(e Expression, fn func(Expression) bool) {
	if e == nil || !fn(e) {
		return
	}
	for _, child := range Children(e) {
		Walk(child, fn)
	}
}

// QuestionIDs returns the distinct question ids referenced by e, in first-seen order
func QuestionIDs(e Expression) []string {
	seen := make(map[string]struct{})
	ids := make([]string, 0)
	Walk(e, func(n Expression) bool {
		if q, ok := n.(Question); ok {
			if _, dup := seen[q.QuestionID]; !dup {
				seen[q.QuestionID] = struct{}{}
				ids = append(ids, q.QuestionID)
			}
		}
		return true
	})
	return ids
}

// Equal reports whether a and b are structurally identical. A nil and an
// empty datapoint list compare equal.
func Equal(a, b Expression) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() {
		return false
	}

	switch x := a.(type) {
	case Question:
		y := b.(Question)
		if x.QuestionID != y.QuestionID || len(x.DatapointIDs) != len(y.DatapointIDs) {
			return false
		}
		for i := range x.DatapointIDs {
			if x.DatapointIDs[i] != y.DatapointIDs[i] {
				return false
			}
		}
		return true
	case Not:
		return Equal(x.Expression, b.(Not).Expression)
	case AtLeast:
		if x.Count != b.(AtLeast).Count {
			return false
		}
	}

	ac, bc := Children(a), Children(b)
	if len(ac) != len(bc) {
		return false
	}
	for i := range ac {
		if !Equal(ac[i], bc[i]) {
			return false
		}
	}
	return true
}
