package engine

import (
	"log/slog"
	"time"

	"github.com/dop251/goja"

	"github.com/airdesk-ai/airdesk/internal/domain/workflow"
)

// evalTimeLimit bounds a single expression evaluation. Expressions are
// declared by workflow authors, not users, but collected data they read is
// conversation-supplied.
const evalTimeLimit = 250 * time.Millisecond

// Evaluator computes a step's derived fields from collected data. Each
// expression runs in a fresh JavaScript VM whose only globals are the
// collected data entries, so expressions are limited to arithmetic, field
// lookup and indexing over that namespace.
type Evaluator struct {
	logger *slog.Logger
}

// NewEvaluator creates a derived-value evaluator.
func NewEvaluator(logger *slog.Logger) *Evaluator {
	return &Evaluator{logger: logger}
}

// Calculate evaluates every value calculation declared on the step against
// the collected data. A failing expression is logged and skipped so one
// bad expression cannot abort the remaining fields.
func (e *Evaluator) Calculate(step *workflow.Step, collected map[string]any) map[string]any {
	if len(step.ValueCalculations) == 0 {
		return nil
	}

	calculated := make(map[string]any, len(step.ValueCalculations))
	for field, expr := range step.ValueCalculations {
		value, err := e.evaluate(expr, collected)
		if err != nil {
			e.logger.Warn("Value calculation failed, skipping field",
				"step", step.Name,
				"field", field,
				"error", err)
			continue
		}
		calculated[field] = value
	}
	return calculated
}

func (e *Evaluator) evaluate(expr string, collected map[string]any) (any, error) {
	vm := goja.New()
	for key, value := range collected {
		if err := vm.Set(key, value); err != nil {
			return nil, err
		}
	}

	timer := time.AfterFunc(evalTimeLimit, func() {
		vm.Interrupt("expression time limit exceeded")
	})
	defer timer.Stop()

	result, err := vm.RunString(expr)
	if err != nil {
		return nil, err
	}
	return result.Export(), nil
}
