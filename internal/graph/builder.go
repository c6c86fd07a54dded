package graph

import (
	"fmt"

	"github.com/gyaneshwarpardhi/pageflow/internal/condition"
	"github.com/gyaneshwarpardhi/pageflow/internal/config"
)

// Build constructs a Graph from a validated SurveyConfig.
// All route expressions are compiled here; zero parsing happens at navigation time.
func Build(cfg *config.SurveyConfig) (*Graph, error) {
	pages, err := Pages(cfg.Survey.Pages)
	if err != nil {
		return nil, err
	}
	return New(pages)
}

// Pages converts page definitions into graph input.
func Pages(defs []config.PageDef) ([]Page, error) {
	pages := make([]Page, 0, len(defs))
	for _, pd := range defs {
		p := Page{
			ID:        pd.ID,
			Position:  pd.Position,
			Questions: make([]Question, 0, len(pd.Questions)),
			Routes:    make([]Route, 0, len(pd.Routes)),
		}
		for _, q := range pd.Questions {
			p.Questions = append(p.Questions, Question{Ref: q.Ref, Required: q.Required, FollowUp: q.FollowUp})
		}
		for j, rd := range pd.Routes {
			cond, err := compileRoute(rd)
			if err != nil {
				return nil, fmt.Errorf("page %s: route %d: %w", pd.ID, j, err)
			}
			p.Routes = append(p.Routes, Route{Condition: cond, Destination: rd.To})
		}
		pages = append(pages, p)
	}
	return pages, nil
}

func compileRoute(rd config.RouteDef) (condition.Condition, error) {
	switch {
	case rd.IsDirect():
		return condition.Direct{}, nil
	case rd.When != "":
		cond, err := condition.Parse(rd.When)
		if err != nil {
			return nil, fmt.Errorf("parse %q: %w", rd.When, err)
		}
		return cond, nil
	}
	op, err := condition.ParseOperator(rd.Operator)
	if err != nil {
		return nil, err
	}
	val, err := condition.ValueOf(rd.Value)
	if err != nil {
		return nil, fmt.Errorf("value: %w", err)
	}
	if (op == condition.OpIn || op == condition.OpNotIn) && !val.IsList() {
		val = condition.List(val.Items()...)
	}
	return &condition.Comparison{QuestionRef: rd.Question, Op: op, Value: val}, nil
}
