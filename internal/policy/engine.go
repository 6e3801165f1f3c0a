package policy

import (
	"fmt"
	"strings"

	"github.com/google/cel-go/cel"
	"github.com/patuh/patuh/internal/models"
)

// Gate outcomes
const (
	StatusPass = "pass"
	StatusWarn = "warn"
	StatusFail = "fail"
)

// Engine evaluates release gates written in CEL over a validation run.
type Engine struct {
	env *cel.Env
}

func NewEngine() (*Engine, error) {
	env, err := cel.NewEnv(
		cel.Variable("input", cel.MapType(cel.StringType, cel.DynType)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}

	return &Engine{env: env}, nil
}

// Evaluate runs every rule against the report. Rules that fail to compile or
// evaluate are reported as failed results, not errors.
func (e *Engine) Evaluate(config *models.PolicyConfig, report *models.RunReport) ([]models.PolicyResult, error) {
	if config == nil || report == nil {
		return nil, fmt.Errorf("policy config and report are required")
	}

	input := BuildInput(report)
	results := make([]models.PolicyResult, 0, len(config.Rules))
	for _, rule := range config.Rules {
		results = append(results, e.evaluateRule(rule, input))
	}
	return results, nil
}

func (e *Engine) evaluateRule(rule models.PolicyRule, input map[string]any) models.PolicyResult {
	result := models.PolicyResult{
		RuleName:    rule.Name,
		Severity:    ruleSeverity(rule),
		ControlRefs: rule.ControlRefs,
	}
	fail := func(format string, args ...any) models.PolicyResult {
		result.FailureMsg = fmt.Sprintf(format, args...)
		return result
	}

	ast, issues := e.env.Compile(rule.Expr)
	if issues != nil && issues.Err() != nil {
		return fail("CEL compile error: %v", issues.Err())
	}

	prg, err := e.env.Program(ast)
	if err != nil {
		return fail("CEL program error: %v", err)
	}

	out, _, err := prg.Eval(map[string]any{"input": input})
	if err != nil {
		return fail("CEL evaluation error: %v", err)
	}

	passed, ok := out.Value().(bool)
	if !ok {
		return fail("rule expression must return boolean, got %T", out.Value())
	}

	result.Passed = passed
	if !passed {
		result.FailureMsg = rule.FailureMsg
	}
	return result
}

// CompileAndValidate reports every rule that does not compile.
func (e *Engine) CompileAndValidate(config *models.PolicyConfig) error {
	var errs []string

	for _, rule := range config.Rules {
		_, issues := e.env.Compile(rule.Expr)
		if issues != nil && issues.Err() != nil {
			errs = append(errs, fmt.Sprintf("rule %q: %v", rule.Name, issues.Err()))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("policy validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}

// Outcome folds rule results into pass, warn or fail. Failed warn rules only
// fail the gate in strict mode.
func Outcome(config *models.PolicyConfig, results []models.PolicyResult) string {
	var errs, warns int
	for _, r := range results {
		if r.Passed {
			continue
		}
		if r.Severity == models.PolicySeverityWarn {
			warns++
		} else {
			errs++
		}
	}

	switch {
	case errs > 0:
		return StatusFail
	case warns == 0:
		return StatusPass
	case config.Mode == models.PolicyModeWarn:
		return StatusWarn
	default:
		return StatusFail
	}
}

func ruleSeverity(rule models.PolicyRule) models.PolicySeverity {
	if rule.Severity == "" {
		return models.PolicySeverityError
	}
	return rule.Severity
}
