package filter

import (
	"fmt"
	"strings"

	"github.com/rebeliceyang/lazyaudience/internal/expr"
)

// Labels resolves display names for questions and datapoints. Missing entries
// fall back to the raw ids.
type Labels struct {
	Questions  map[string]string
	Datapoints map[string]string
}

func (l Labels) question(id string) string {
	if name, ok := l.Questions[id]; ok && name != "" {
		return name
	}
	return id
}

func (l Labels) datapoint(id string) string {
	if name, ok := l.Datapoints[id]; ok && name != "" {
		return name
	}
	return id
}

// Describe renders e as a one-line infix string, e.g.
// "q1 IN (dp1, dp2) AND NOT (q2 IN (dp3))". A nil expression renders as "".
func Describe(e expr.Expression) string {
	return DescribeWithLabels(e, Labels{})
}

// DescribeWithLabels is like Describe but prints display names where known
func DescribeWithLabels(e expr.Expression, labels Labels) string {
	if e == nil {
		return ""
	}
	return describe(e, labels, false)
}

// describe builds a single node. nested is true when the node sits inside an
// operator and needs parentheses around a multi-operand list.
func describe(e expr.Expression, labels Labels, nested bool) string {
	switch n := e.(type) {
	case expr.Question:
		names := make([]string, 0, len(n.DatapointIDs))
		for _, id := range n.DatapointIDs {
			names = append(names, labels.datapoint(id))
		}
		return fmt.Sprintf("%s IN (%s)", labels.question(n.QuestionID), strings.Join(names, ", "))
	case expr.And:
		return joinClauses(n.Expressions, " AND ", labels, nested)
	case expr.Or:
		return joinClauses(n.Expressions, " OR ", labels, nested)
	case expr.Not:
		return "NOT (" + describe(n.Expression, labels, false) + ")"
	case expr.AtLeast:
		clauses := make([]string, 0, len(n.Expressions))
		for _, child := range n.Expressions {
			clauses = append(clauses, describe(child, labels, true))
		}
		return fmt.Sprintf("AT LEAST %d OF (%s)", n.Count, strings.Join(clauses, "; "))
	}
	return ""
}

func joinClauses(children []expr.Expression, sep string, labels Labels, nested bool) string {
	clauses := make([]string, 0, len(children))
	for _, child := range children {
		clauses = append(clauses, describe(child, labels, true))
	}
	joined := strings.Join(clauses, sep)
	if nested && len(clauses) > 1 {
		return "(" + joined + ")"
	}
	return joined
}
