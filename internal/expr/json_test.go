package expr

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() Expression {
	return NewAnd(
		NewQuestion("q1", "dp1"),
		NewNot(NewOr(
			NewQuestion("q2", "dp2", "dp3"),
			NewAtLeast(2,
				NewQuestion("q3", "dp4"),
				NewQuestion("q4", "dp5"),
				NewQuestion("q5", "dp6"),
			),
		)),
	)
}

func TestMarshal_WireShapes(t *testing.T) {
	cases := []struct {
		name string
		expr Expression
		want string
	}{
		{
			name: "question",
			expr: NewQuestion("q1", "dp1", "dp2"),
			want: `{"question":{"question_id":"q1","datapoint_ids":["dp1","dp2"]}}`,
		},
		{
			name: "question without datapoints",
			expr: Question{QuestionID: "q1"},
			want: `{"question":{"question_id":"q1","datapoint_ids":[]}}`,
		},
		{
			name: "and",
			expr: NewAnd(NewQuestion("q1", "dp1"), NewQuestion("q2", "dp2")),
			want: `{"and":[{"question":{"question_id":"q1","datapoint_ids":["dp1"]}},{"question":{"question_id":"q2","datapoint_ids":["dp2"]}}]}`,
		},
		{
			name: "or",
			expr: NewOr(NewQuestion("q1", "dp1")),
			want: `{"or":[{"question":{"question_id":"q1","datapoint_ids":["dp1"]}}]}`,
		},
		{
			name: "not",
			expr: NewNot(NewQuestion("q1", "dp1")),
			want: `{"not":{"question":{"question_id":"q1","datapoint_ids":["dp1"]}}}`,
		},
		{
			name: "at_least",
			expr: NewAtLeast(2, NewQuestion("q1", "dp1")),
			want: `{"at_least":{"count":2,"expressions":[{"question":{"question_id":"q1","datapoint_ids":["dp1"]}}]}}`,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			data, err := Marshal(tc.expr)
			require.NoError(t, err)
			assert.JSONEq(t, tc.want, string(data))
		})
	}
}

func TestRoundTrip(t *testing.T) {
	original := sample()

	data, err := Marshal(original)
	require.NoError(t, err)

	parsed, err := Parse(data)
	require.NoError(t, err)

	assert.True(t, Equal(original, parsed), "round trip changed the expression:\n%s", data)
	assert.Equal(t, original, parsed)
}

func TestMarshalIndent(t *testing.T) {
	data, err := MarshalIndent(NewNot(NewQuestion("q1", "dp1")), "  ")
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n  \"not\"")

	parsed, err := Parse(data)
	require.NoError(t, err)
	assert.True(t, Equal(NewNot(NewQuestion("q1", "dp1")), parsed))
}

func TestMarshal_RejectsNil(t *testing.T) {
	_, err := Marshal(nil)
	assert.ErrorIs(t, err, ErrInvalidExpression)

	_, err = Marshal(Not{})
	assert.ErrorIs(t, err, ErrInvalidExpression)

	_, err = Marshal(And{Expressions: []Expression{NewQuestion("q1"), nil}})
	assert.ErrorIs(t, err, ErrInvalidExpression)
}

func TestParse_Invalid(t *testing.T) {
	docs := map[string]string{
		"not json":           `{`,
		"null":               `null`,
		"array":              `[]`,
		"no keys":            `{}`,
		"two keys":           `{"and":[{"question":{"question_id":"q"}}],"or":[{"question":{"question_id":"q"}}]}`,
		"unknown key":        `{"xor":[]}`,
		"empty and":          `{"and":[]}`,
		"empty or":           `{"or":[]}`,
		"missing question":   `{"question":{"datapoint_ids":["dp1"]}}`,
		"null not":           `{"not":null}`,
		"zero count":         `{"at_least":{"count":0,"expressions":[{"question":{"question_id":"q"}}]}}`,
		"missing count":      `{"at_least":{"expressions":[{"question":{"question_id":"q"}}]}}`,
		"missing operands":   `{"at_least":{"count":1}}`,
		"bad nested operand": `{"and":[{"question":{"question_id":"q"}},{"nand":[]}]}`,
	}

	for name, doc := range docs {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidExpression), "unexpected error: %v", err)
		})
	}
}

func TestParse_ErrorNamesPath(t *testing.T) {
	_, err := Parse([]byte(`{"and":[{"question":{"question_id":"q"}},{"not":{"or":[]}}]}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "$.and[1].not.or")
}

func TestDocument(t *testing.T) {
	type envelope struct {
		Name string   `json:"name"`
		Expr Document `json:"expression"`
	}

	in := envelope{Name: "adults", Expr: Document{Expression: sample()}}
	data, err := json.Marshal(in)
	require.NoError(t, err)

	var out envelope
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, "adults", out.Name)
	assert.True(t, Equal(in.Expr.Expression, out.Expr.Expression))

	empty, err := json.Marshal(envelope{Name: "none"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"none","expression":null}`, string(empty))

	var back envelope
	require.NoError(t, json.Unmarshal(empty, &back))
	assert.Nil(t, back.Expr.Expression)
}
