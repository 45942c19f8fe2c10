package expr

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// ErrInvalidExpression is returned when a document does not follow the wire format
var ErrInvalidExpression = errors.New("invalid expression")

type questionBody struct {
	QuestionID   string   `json:"question_id"`
	DatapointIDs []string `json:"datapoint_ids"`
}

type atLeastBody struct {
	Count       int          `json:"count"`
	Expressions []Expression `json:"expressions"`
}

// MarshalJSON encodes {"question": {"question_id": ..., "datapoint_ids": [...]}}
func (q Question) MarshalJSON() ([]byte, error) {
	ids := q.DatapointIDs
	if ids == nil {
		ids = []string{}
	}
	return json.Marshal(map[string]questionBody{
		"question": {QuestionID: q.QuestionID, DatapointIDs: ids},
	})
}

// MarshalJSON encodes {"and": [...]}
func (a And) MarshalJSON() ([]byte, error) {
	return marshalList(KindAnd, a.Expressions)
}

// MarshalJSON encodes {"or": [...]}
func (o Or) MarshalJSON() ([]byte, error) {
	return marshalList(KindOr, o.Expressions)
}

// MarshalJSON encodes {"not": <expression>}
func (n Not) MarshalJSON() ([]byte, error) {
	if n.Expression == nil {
		return nil, fmt.Errorf("%w: not without operand", ErrInvalidExpression)
	}
	return json.Marshal(map[string]Expression{"not": n.Expression})
}

// MarshalJSON encodes {"at_least": {"count": n, "expressions": [...]}}
func (a AtLeast) MarshalJSON() ([]byte, error) {
	if err := checkOperands(KindAtLeast, a.Expressions); err != nil {
		return nil, err
	}
	return json.Marshal(map[string]atLeastBody{
		"at_least": {Count: a.Count, Expressions: a.Expressions},
	})
}

func marshalList(kind Kind, children []Expression) ([]byte, error) {
	if err := checkOperands(kind, children); err != nil {
		return nil, err
	}
	return json.Marshal(map[string][]Expression{string(kind): children})
}

func checkOperands(kind Kind, children []Expression) error {
	for i, child := range children {
		if child == nil {
			return fmt.Errorf("%w: %s[%d] is nil", ErrInvalidExpression, kind, i)
		}
	}
	return nil
}

// Marshal encodes e in the wire format
func Marshal(e Expression) ([]byte, error) {
	if e == nil {
		return nil, fmt.Errorf("%w: nil expression", ErrInvalidExpression)
	}
	return json.Marshal(e)
}

// MarshalIndent is like Marshal but indents the output
func MarshalIndent(e Expression, indent string) ([]byte, error) {
	data, err := Marshal(e)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", indent); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Parse decodes a wire-format document. Every node must hold exactly one
// known key, lists must be non-empty and at-least counts must be positive.
func Parse(data []byte) (Expression, error) {
	return parseNode(json.RawMessage(data), "$")
}

func invalid(path, format string, args ...any) error {
	return fmt.Errorf("%w at %s: %s", ErrInvalidExpression, path, fmt.Sprintf(format, args...))
}

func parseNode(raw json.RawMessage, path string) (Expression, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, invalid(path, "%v", err)
	}
	if doc == nil {
		return nil, invalid(path, "null expression")
	}
	if len(doc) != 1 {
		return nil, invalid(path, "expected exactly one key, got %d", len(doc))
	}

	for key, body := range doc {
		switch Kind(key) {
		case KindQuestion:
			return parseQuestion(body, path+".question")
		case KindAnd:
			children, err := parseList(body, path+".and")
			if err != nil {
				return nil, err
			}
			return And{Expressions: children}, nil
		case KindOr:
			children, err := parseList(body, path+".or")
			if err != nil {
				return nil, err
			}
			return Or{Expressions: children}, nil
		case KindNot:
			child, err := parseNode(body, path+".not")
			if err != nil {
				return nil, err
			}
			return Not{Expression: child}, nil
		case KindAtLeast:
			return parseAtLeast(body, path+".at_least")
		default:
			return nil, invalid(path, "unknown key %q", key)
		}
	}
	return nil, invalid(path, "empty document")
}

func parseQuestion(raw json.RawMessage, path string) (Expression, error) {
	var body questionBody
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, invalid(path, "%v", err)
	}
	if body.QuestionID == "" {
		return nil, invalid(path, "missing question_id")
	}
	if body.DatapointIDs == nil {
		body.DatapointIDs = []string{}
	}
	return Question{QuestionID: body.QuestionID, DatapointIDs: body.DatapointIDs}, nil
}

func parseList(raw json.RawMessage, path string) ([]Expression, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, invalid(path, "%v", err)
	}
	if len(items) == 0 {
		return nil, invalid(path, "empty operand list")
	}

	children := make([]Expression, 0, len(items))
	for i, item := range items {
		child, err := parseNode(item, path+"["+strconv.Itoa(i)+"]")
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}
	return children, nil
}

func parseAtLeast(raw json.RawMessage, path string) (Expression, error) {
	var body struct {
		Count       *int            `json:"count"`
		Expressions json.RawMessage `json:"expressions"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, invalid(path, "%v", err)
	}
	if body.Count == nil {
		return nil, invalid(path, "missing count")
	}
	if *body.Count < 1 {
		return nil, invalid(path, "count must be at least 1, got %d", *body.Count)
	}
	if body.Expressions == nil {
		return nil, invalid(path, "missing expressions")
	}

	children, err := parseList(body.Expressions, path+".expressions")
	if err != nil {
		return nil, err
	}
	return AtLeast{Count: *body.Count, Expressions: children}, nil
}

// Document wraps an Expression so it can sit inside structs that are encoded
// with encoding/json. A nil expression encodes as null.
type Document struct {
	Expression Expression
}

// MarshalJSON implements json.Marshaler
func (d Document) MarshalJSON() ([]byte, error) {
	if d.Expression == nil {
		return []byte("null"), nil
	}
	return Marshal(d.Expression)
}

// UnmarshalJSON implements json.Unmarshaler
func (d *Document) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		d.Expression = nil
		return nil
	}
	e, err := Parse(data)
	if err != nil {
		return err
	}
	d.Expression = e
	return nil
}
