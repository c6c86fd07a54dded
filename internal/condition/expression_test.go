package condition

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	cases := []struct {
		name string
		expr string
		ref  string
		op   Operator
		want Value
	}{
		{name: "numeric gte", expr: "q_age >= 18", ref: "q_age", op: OpGte, want: Scalar("18")},
		{name: "negative number", expr: "temp < -3.5", ref: "temp", op: OpLt, want: Scalar("-3.5")},
		{name: "quoted string", expr: `q_ok == "yes please"`, ref: "q_ok", op: OpEq, want: Scalar("yes please")},
		{name: "single quotes", expr: `q_ok != 'no'`, ref: "q_ok", op: OpNeq, want: Scalar("no")},
		{name: "bare word", expr: "q_color == blue", ref: "q_color", op: OpEq, want: Scalar("blue")},
		{name: "dotted ref", expr: "household.size > 2", ref: "household.size", op: OpGt, want: Scalar("2")},
		{name: "in list", expr: `q_role in ["dev", ops, 3]`, ref: "q_role", op: OpIn, want: List("dev", "ops", "3")},
		{name: "not in list", expr: `q_pet NOT IN [cat]`, ref: "q_pet", op: OpNotIn, want: List("cat")},
		{name: "in scalar widens", expr: `q_pet in cat`, ref: "q_pet", op: OpIn, want: List("cat")},
		{name: "empty list", expr: `q_pet in []`, ref: "q_pet", op: OpIn, want: List()},
		{name: "uuid ref", expr: "3f2a9c10-aa >= 18", ref: "3f2a9c10-aa", op: OpGte, want: Scalar("18")},
		{name: "digit-led bare literal", expr: "q1 == 2nd", ref: "q1", op: OpEq, want: Scalar("2nd")},
		{name: "exponent number", expr: "q1 > 1e3", ref: "q1", op: OpGt, want: Scalar("1e3")},
		{name: "digit-led list items", expr: "q1 in [1st, 2nd]", ref: "q1", op: OpIn, want: List("1st", "2nd")},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cond, err := Parse(tc.expr)
			require.NoError(t, err)
			cmp, ok := cond.(*Comparison)
			require.True(t, ok, "expected *Comparison, got %T", cond)
			assert.Equal(t, tc.ref, cmp.QuestionRef)
			assert.Equal(t, tc.op, cmp.Op)
			assert.Equal(t, tc.want.Items(), cmp.Value.Items())
			assert.Equal(t, tc.want.IsList(), cmp.Value.IsList())
		})
	}
}

func TestParse_Always(t *testing.T) {
	cond, err := Parse("  Always ")
	require.NoError(t, err)
	assert.Equal(t, KindDirect, cond.Kind())
}

func TestParse_Errors(t *testing.T) {
	cases := []string{
		`q "unterminated`,
		`q_age 18`,          // missing operator
		``,                  // empty
		`q_age = 18`,        // single '='
		`q_pet not [cat]`,   // not without in
		`q_pet in [cat`,     // unclosed list
		`q_age >= 18 extra`, // trailing token
		`== 18`,             // missing ref
		`always now`,
	}
	for _, expr := range cases {
		t.Run(expr, func(t *testing.T) {
			_, err := Parse(expr)
			assert.Error(t, err, "expected parse error for %q", expr)
		})
	}
}

func TestParseOperator(t *testing.T) {
	cases := map[string]Operator{
		"equal":            OpEq,
		"==":               OpEq,
		"Not-Equal":        OpNeq,
		">=":               OpGte,
		"less_or_equal":    OpLte,
		"in-set":           OpIn,
		"not  in":          OpNotIn,
		"not-in-set":       OpNotIn,
		"greater":          OpGt,
		"greater-or-equal": OpGte,
	}
	for in, want := range cases {
		got, err := ParseOperator(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseOperator("contains")
	assert.Error(t, err)
}

func TestValueOf(t *testing.T) {
	v, err := ValueOf(float64(18))
	require.NoError(t, err)
	assert.Equal(t, "18", v.Scalar())
	assert.False(t, v.IsList())

	v, err = ValueOf([]interface{}{"a", 2, true})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "2", "true"}, v.Items())
	assert.True(t, v.IsList())

	_, err = ValueOf(map[string]interface{}{"x": 1})
	assert.Error(t, err)
}

func TestParse_DigitLedTokensEvaluate(t *testing.T) {
	cond, err := Parse("3f2a9c10-aa > 1e3")
	require.NoError(t, err)

	assert.True(t, cond.Matches(Answers{{Key: "3f2a9c10-aa", Values: []string{"1500"}}}))
	assert.False(t, cond.Matches(Answers{{Key: "3f2a9c10-aa", Values: []string{"999"}}}))
}
