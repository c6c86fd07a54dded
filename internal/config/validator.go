package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/gyaneshwarpardhi/pageflow/internal/condition"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ErrInvalid wraps every error returned by Validate.
var ErrInvalid = errors.New("config validation errors")

// Validate checks the definition for:
//   - Required fields and enum values (struct tags)
//   - Duplicate page IDs
//   - Route shape: exactly one of `when` or `operator`, known operators,
//     a question for structured routes, parseable expressions
//
// Every problem is reported in one error.
func Validate(cfg *SurveyConfig) error {
	if cfg == nil {
		return fmt.Errorf("%w: definition is empty", ErrInvalid)
	}
	var errs []string

	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("config: %w", err)
		}
		for _, fe := range verrs {
			errs = append(errs, fmt.Sprintf("%s: failed %q", fieldPath(fe.Namespace()), fe.Tag()))
		}
	}

	ids := make(map[string]int) // id → page index
	for i, p := range cfg.Survey.Pages {
		if p.ID == "" {
			continue // reported by the struct tags
		}
		loc := fmt.Sprintf("page %s", p.ID)
		if prev, ok := ids[p.ID]; ok {
			errs = append(errs, fmt.Sprintf("duplicate page id %q (pages[%d] and pages[%d])", p.ID, prev, i))
		} else {
			ids[p.ID] = i
		}
		for j, r := range p.Routes {
			validateRoute(r, fmt.Sprintf("%s.routes[%d]", loc, j), &errs)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w:\n  - %s", ErrInvalid, strings.Join(errs, "\n  - "))
	}
	return nil
}

func validateRoute(r RouteDef, loc string, errs *[]string) {
	switch {
	case r.When != "" && r.Operator != "":
		*errs = append(*errs, fmt.Sprintf("%s: only one of when/operator may be set", loc))
	case r.Kind == "direct" && (r.When != "" || r.Operator != "" || r.Question != "" || r.Value != nil):
		*errs = append(*errs, fmt.Sprintf("%s: direct routes take no condition", loc))
	case r.Kind == "logical" && r.When == "" && r.Operator == "":
		*errs = append(*errs, fmt.Sprintf("%s: logical routes need when or operator", loc))
	case r.When == "" && r.Operator == "" && (r.Question != "" || r.Value != nil):
		*errs = append(*errs, fmt.Sprintf("%s: operator required when question/value is set", loc))
	case r.When != "":
		if _, err := condition.Parse(r.When); err != nil {
			*errs = append(*errs, fmt.Sprintf("%s: when %q: %s", loc, r.When, err))
		}
	case r.Operator != "":
		if _, err := condition.ParseOperator(r.Operator); err != nil {
			*errs = append(*errs, fmt.Sprintf("%s: %s", loc, err))
		}
		if r.Question == "" {
			*errs = append(*errs, fmt.Sprintf("%s: question is required with operator", loc))
		}
		if _, err := condition.ValueOf(r.Value); err != nil {
			*errs = append(*errs, fmt.Sprintf("%s: value: %s", loc, err))
		}
	}
}

// fieldPath trims the root struct name from a validator namespace.
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

// Lint returns non-fatal observations about a valid definition: routes that
// end the survey because their destination is missing, positions shared by
// several pages, and routes that read a question not asked on their page.
func Lint(cfg *SurveyConfig) []string {
	var warns []string
	ids := make(map[string]struct{}, len(cfg.Survey.Pages))
	for _, p := range cfg.Survey.Pages {
		ids[p.ID] = struct{}{}
	}
	positions := make(map[int]string, len(cfg.Survey.Pages))
	for _, p := range cfg.Survey.Pages {
		if first, ok := positions[p.Position]; ok {
			warns = append(warns, fmt.Sprintf("page %s: position %d already used by page %s; default edges resolve to %s", p.ID, p.Position, first, first))
		} else {
			positions[p.Position] = p.ID
		}
		refs := make(map[string]struct{}, len(p.Questions))
		for _, q := range p.Questions {
			refs[q.Ref] = struct{}{}
		}
		for j, r := range p.Routes {
			if _, ok := ids[r.To]; !ok {
				if r.To == "" {
					warns = append(warns, fmt.Sprintf("page %s.routes[%d]: no destination, completes the survey", p.ID, j))
				} else {
					warns = append(warns, fmt.Sprintf("page %s.routes[%d]: unknown destination %q, completes the survey", p.ID, j, r.To))
				}
			}
			if ref := routeQuestion(r); ref != "" {
				if _, ok := refs[ref]; !ok {
					warns = append(warns, fmt.Sprintf("page %s.routes[%d]: reads question %q which is not on the page", p.ID, j, ref))
				}
			}
		}
	}
	return warns
}

func routeQuestion(r RouteDef) string {
	if r.When != "" {
		cond, err := condition.Parse(r.When)
		if err != nil {
			return ""
		}
		if c, ok := cond.(*condition.Comparison); ok {
			return c.QuestionRef
		}
		return ""
	}
	return r.Question
}
