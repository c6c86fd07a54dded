package condition

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind tags the two condition variants.
type Kind string

const (
	KindDirect  Kind = "direct"
	KindLogical Kind = "logical"
)

// Condition decides whether a route may be taken for a set of answers.
// The only implementations are Direct and Comparison.
type Condition interface {
	Kind() Kind
	Matches(answers Answers) bool
	String() string
	condition()
}

// Direct is an unconditional route. It always matches.
type Direct struct{}

func (Direct) Kind() Kind           { return KindDirect }
func (Direct) Matches(Answers) bool { return true }
func (Direct) String() string       { return "always" }
func (Direct) condition()           {}

// Comparison reads the answers for QuestionRef and applies Op against Value.
type Comparison struct {
	QuestionRef string
	Op          Operator
	Value       Value
}

func (*Comparison) Kind() Kind { return KindLogical }
func (*Comparison) condition() {}

func (c *Comparison) Matches(answers Answers) bool {
	return compare(c.Op, answers.Lookup(c.QuestionRef), c.Value)
}

func (c *Comparison) String() string {
	return fmt.Sprintf("%s %s %s", c.QuestionRef, c.Op.Symbol(), c.Value)
}

// Evaluate reports whether cond matches. A nil condition is unconditional.
func Evaluate(cond Condition, answers Answers) bool {
	if cond == nil {
		return true
	}
	return cond.Matches(answers)
}

// IsDirect reports whether cond is absent or Direct.
func IsDirect(cond Condition) bool {
	return cond == nil || cond.Kind() == KindDirect
}

// Value is a comparison value: a single string or a list of strings.
type Value struct {
	items []string
	list  bool
}

// Scalar builds a single-valued Value.
func Scalar(s string) Value { return Value{items: []string{s}} }

// List builds a list Value.
func List(items ...string) Value {
	return Value{items: append([]string(nil), items...), list: true}
}

// ValueOf converts a decoded YAML/JSON value (string, number, bool or list of
// those) into a Value.
func ValueOf(raw interface{}) (Value, error) {
	switch v := raw.(type) {
	case nil:
		return Value{}, nil
	case []interface{}:
		items := make([]string, 0, len(v))
		for i, it := range v {
			s, err := scalarString(it)
			if err != nil {
				return Value{}, fmt.Errorf("value[%d]: %w", i, err)
			}
			items = append(items, s)
		}
		return List(items...), nil
	case []string:
		return List(v...), nil
	default:
		s, err := scalarString(v)
		if err != nil {
			return Value{}, err
		}
		return Scalar(s), nil
	}
}

func scalarString(v interface{}) (string, error) {
	switch s := v.(type) {
	case string:
		return s, nil
	case bool:
		return strconv.FormatBool(s), nil
	case int:
		return strconv.Itoa(s), nil
	case int64:
		return strconv.FormatInt(s, 10), nil
	case uint64:
		return strconv.FormatUint(s, 10), nil
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64), nil
	case float32:
		return strconv.FormatFloat(float64(s), 'f', -1, 32), nil
	}
	return "", fmt.Errorf("unsupported value type %T", v)
}

// Scalar returns the single value, or the first list item.
func (v Value) Scalar() string {
	if len(v.items) == 0 {
		return ""
	}
	return v.items[0]
}

// Items returns the list items; a scalar is a one-item list.
func (v Value) Items() []string { return append([]string(nil), v.items...) }

// IsList reports whether the value was declared as a list.
func (v Value) IsList() bool { return v.list }

// Raw returns the value in the shape it was declared with.
func (v Value) Raw() interface{} {
	if v.list {
		return v.Items()
	}
	return v.Scalar()
}

func (v Value) String() string {
	if !v.list {
		return strconv.Quote(v.Scalar())
	}
	quoted := make([]string, len(v.items))
	for i, it := range v.items {
		quoted[i] = strconv.Quote(it)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
