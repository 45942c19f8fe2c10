package filter

import (
	"testing"

	"github.com/rebeliceyang/lazyaudience/internal/expr"
)

func TestDescribe(t *testing.T) {
	cases := []struct {
		name string
		expr expr.Expression
		want string
	}{
		{"nil", nil, ""},
		{"question", expr.NewQuestion("q1", "dp1", "dp2"), "q1 IN (dp1, dp2)"},
		{
			"and with not",
			expr.NewAnd(expr.NewQuestion("q1", "dp1"), expr.NewNot(expr.NewQuestion("q2", "dp3"))),
			"q1 IN (dp1) AND NOT (q2 IN (dp3))",
		},
		{
			"nested or",
			expr.NewAnd(expr.NewQuestion("q1", "dp1"), expr.NewOr(expr.NewQuestion("q2", "dp2"), expr.NewQuestion("q3", "dp3"))),
			"q1 IN (dp1) AND (q2 IN (dp2) OR q3 IN (dp3))",
		},
		{
			"at least",
			expr.NewAtLeast(2, expr.NewQuestion("q1", "dp1"), expr.NewQuestion("q2", "dp2"), expr.NewQuestion("q3", "dp3")),
			"AT LEAST 2 OF (q1 IN (dp1); q2 IN (dp2); q3 IN (dp3))",
		},
	}

	for _, tc := range cases {
		if got := Describe(tc.expr); got != tc.want {
			t.Errorf("%s: expected %q, got %q", tc.name, tc.want, got)
		}
	}
}

func TestDescribeWithLabels(t *testing.T) {
	labels := Labels{
		Questions:  map[string]string{"q1": "Gender"},
		Datapoints: map[string]string{"dp1": "Female", "dp2": ""},
	}

	got := DescribeWithLabels(expr.NewQuestion("q1", "dp1", "dp2"), labels)
	if got != "Gender IN (Female, dp2)" {
		t.Errorf("unexpected description: %q", got)
	}
}
