package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstructorsCopyInputs(t *testing.T) {
	ids := []string{"dp1", "dp2"}
	q := NewQuestion("q1", ids...)
	ids[0] = "changed"
	assert.Equal(t, []string{"dp1", "dp2"}, q.DatapointIDs)

	children := []Expression{NewQuestion("a"), NewQuestion("b")}
	and := NewAnd(children...)
	children[0] = NewQuestion("z")
	assert.Equal(t, "a", and.Expressions[0].(Question).QuestionID)
}

func TestEqual(t *testing.T) {
	assert.True(t, Equal(nil, nil))
	assert.False(t, Equal(nil, NewQuestion("q1")))
	assert.True(t, Equal(Question{QuestionID: "q1"}, NewQuestion("q1")))
	assert.False(t, Equal(NewQuestion("q1", "dp1"), NewQuestion("q1", "dp2")))
	assert.False(t, Equal(NewAnd(NewQuestion("q1")), NewOr(NewQuestion("q1"))))
	assert.False(t, Equal(NewAtLeast(1, NewQuestion("q1")), NewAtLeast(2, NewQuestion("q1"))))
	assert.False(t, Equal(NewAnd(NewQuestion("q1")), NewAnd(NewQuestion("q1"), NewQuestion("q2"))))
	assert.True(t, Equal(sample(), sample()))
}

func TestQuestionIDs(t *testing.T) {
	e := NewAnd(
		NewQuestion("q2", "dp1"),
		NewNot(NewQuestion("q1")),
		NewOr(NewQuestion("q2", "dp9"), NewQuestion("q3")),
	)
	assert.Equal(t, []string{"q2", "q1", "q3"}, QuestionIDs(e))
	assert.Empty(t, QuestionIDs(nil))
}

func TestWalk_SkipChildren(t *testing.T) {
	var kinds []Kind
	Walk(sample(), func(e Expression) bool {
		kinds = append(kinds, e.Kind())
		return e.Kind() != KindNot
	})
	assert.Equal(t, []Kind{KindAnd, KindQuestion, KindNot}, kinds)
}
