package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *SurveyConfig {
	return &SurveyConfig{
		Version: "v1",
		Survey: SurveyDef{Pages: []PageDef{
			{ID: "a", Position: 1, Questions: []QuestionDef{{Ref: "q"}}, Routes: []RouteDef{
				{Question: "q", Operator: "==", Value: "x", To: "b"},
				{When: "q in [y, z]", To: "c"},
				{To: "c"},
			}},
			{ID: "b", Position: 2},
			{ID: "c", Position: 3},
		}},
	}
}

func TestValidate_OK(t *testing.T) {
	require.NoError(t, Validate(validConfig()))
	assert.Empty(t, Lint(validConfig()))
}

func TestValidate_Errors(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*SurveyConfig)
		want   string
	}{
		{name: "nil version", mutate: func(c *SurveyConfig) { c.Version = "" }, want: "Version"},
		{name: "missing page id", mutate: func(c *SurveyConfig) { c.Survey.Pages[1].ID = "" }, want: "Survey.Pages[1].ID"},
		{name: "missing question ref", mutate: func(c *SurveyConfig) { c.Survey.Pages[0].Questions[0].Ref = "" }, want: "Questions[0].Ref"},
		{name: "duplicate page", mutate: func(c *SurveyConfig) { c.Survey.Pages[2].ID = "b" }, want: `duplicate page id "b"`},
		{name: "bad backend", mutate: func(c *SurveyConfig) { c.Session.Backend = "etcd" }, want: "Session.Backend"},
		{name: "redis without addr", mutate: func(c *SurveyConfig) { c.Session.Backend = "redis" }, want: "Session.RedisAddr"},
		{name: "when and operator", mutate: func(c *SurveyConfig) { c.Survey.Pages[0].Routes[1].Operator = "==" }, want: "only one of when/operator"},
		{name: "unknown operator", mutate: func(c *SurveyConfig) { c.Survey.Pages[0].Routes[0].Operator = "contains" }, want: `unknown operator "contains"`},
		{name: "operator without question", mutate: func(c *SurveyConfig) { c.Survey.Pages[0].Routes[0].Question = "" }, want: "question is required"},
		{name: "bad expression", mutate: func(c *SurveyConfig) { c.Survey.Pages[0].Routes[1].When = "q ==" }, want: "routes[1]: when"},
		{name: "direct with condition", mutate: func(c *SurveyConfig) { c.Survey.Pages[0].Routes[1].Kind = "direct" }, want: "direct routes take no condition"},
		{name: "logical without condition", mutate: func(c *SurveyConfig) { c.Survey.Pages[0].Routes[2].Kind = "logical" }, want: "logical routes need"},
		{name: "bad kind", mutate: func(c *SurveyConfig) { c.Survey.Pages[0].Routes[2].Kind = "sometimes" }, want: "Kind"},
		{name: "question without operator", mutate: func(c *SurveyConfig) { c.Survey.Pages[0].Routes[0].Operator = "" }, want: "operator required when question/value is set"},
		{name: "value without operator", mutate: func(c *SurveyConfig) { c.Survey.Pages[0].Routes[2].Value = "x" }, want: "routes[2]: operator required"},
		{name: "direct with question", mutate: func(c *SurveyConfig) {
			c.Survey.Pages[0].Routes[2].Kind = "direct"
			c.Survey.Pages[0].Routes[2].Question = "q"
		}, want: "direct routes take no condition"},
		{name: "bad value", mutate: func(c *SurveyConfig) { c.Survey.Pages[0].Routes[0].Value = map[string]interface{}{} }, want: "value:"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(cfg)
			err := Validate(cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestValidate_ReportsAll(t *testing.T) {
	cfg := validConfig()
	cfg.Version = ""
	cfg.Survey.Pages[2].ID = "b"
	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Version")
	assert.Contains(t, err.Error(), "duplicate page id")
}

func TestValidate_Nil(t *testing.T) {
	assert.ErrorIs(t, Validate(nil), ErrInvalid)
}

func TestLint(t *testing.T) {
	cfg := validConfig()
	cfg.Survey.Pages[0].Routes = append(cfg.Survey.Pages[0].Routes,
		RouteDef{Question: "other", Operator: "==", Value: "1", To: "ghost"},
		RouteDef{When: "q == 2"},
	)
	cfg.Survey.Pages[2].Position = 2

	warns := Lint(cfg)
	require.Len(t, warns, 4)
	assert.Contains(t, warns[0], `unknown destination "ghost"`)
	assert.Contains(t, warns[1], `reads question "other"`)
	assert.Contains(t, warns[2], "no destination")
	assert.Contains(t, warns[3], "position 2 already used by page b")
}
