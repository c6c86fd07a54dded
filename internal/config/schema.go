package config

import "time"

// SurveyConfig is the top-level survey definition file.
type SurveyConfig struct {
	Version string      `mapstructure:"version" json:"version" validate:"required"`
	Engine  EngineConf  `mapstructure:"engine" json:"engine"`
	Session SessionConf `mapstructure:"session" json:"session"`
	Survey  SurveyDef   `mapstructure:"survey" json:"survey"`
}

// EngineConf holds tunable concurrency settings for the navigator.
type EngineConf struct {
	Workers    int `mapstructure:"workers" json:"workers" validate:"gte=0"`
	QueueDepth int `mapstructure:"queue_depth" json:"queue_depth" validate:"gte=0"`
	TimeoutMs  int `mapstructure:"timeout_ms" json:"timeout_ms" validate:"gte=0"`
}

// SessionConf selects where respondent progress is kept.
type SessionConf struct {
	Backend       string        `mapstructure:"backend" json:"backend" validate:"omitempty,oneof=memory redis"`
	RedisAddr     string        `mapstructure:"redis_addr" json:"redis_addr" validate:"required_if=Backend redis"`
	RedisPassword string        `mapstructure:"redis_password" json:"-"`
	RedisDB       int           `mapstructure:"redis_db" json:"redis_db" validate:"gte=0"`
	TTL           time.Duration `mapstructure:"ttl" json:"ttl"`
	KeyPrefix     string        `mapstructure:"key_prefix" json:"key_prefix"`
}

// SurveyDef is the page list of one survey.
type SurveyDef struct {
	ID    string    `mapstructure:"id" json:"id"`
	Title string    `mapstructure:"title" json:"title"`
	Pages []PageDef `mapstructure:"pages" json:"pages" validate:"dive"`
}

// PageDef describes one page. Position drives the default ordering and
// need not be unique or contiguous.
type PageDef struct {
	ID        string        `mapstructure:"id" json:"id" validate:"required"`
	Title     string        `mapstructure:"title" json:"title,omitempty"`
	Position  int           `mapstructure:"position" json:"position"`
	Questions []QuestionDef `mapstructure:"questions" json:"questions" validate:"dive"`
	Routes    []RouteDef    `mapstructure:"routes" json:"routes" validate:"dive"`
}

// QuestionDef carries the navigation-relevant flags of a question.
type QuestionDef struct {
	Ref      string `mapstructure:"ref" json:"ref" validate:"required"`
	Required bool   `mapstructure:"required" json:"required"`
	FollowUp bool   `mapstructure:"follow_up" json:"follow_up"`
}

// RouteDef is one outbound route. It takes one of three shapes:
//   - when: an expression such as `q_age >= 18`
//   - question + operator + value
//   - kind: direct (or no operator at all), which always matches
type RouteDef struct {
	Kind     string      `mapstructure:"kind" json:"kind,omitempty" validate:"omitempty,oneof=direct logical"`
	Question string      `mapstructure:"question" json:"question,omitempty"`
	Operator string      `mapstructure:"operator" json:"operator,omitempty"`
	Value    interface{} `mapstructure:"value" json:"value,omitempty"`
	When     string      `mapstructure:"when" json:"when,omitempty"`
	To       string      `mapstructure:"to" json:"to"`
}

// IsDirect reports whether the route declares no condition.
func (r RouteDef) IsDirect() bool {
	return r.Kind == "direct" || (r.When == "" && r.Operator == "")
}
