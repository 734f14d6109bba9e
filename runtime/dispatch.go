package runtime

import (
	"context"
	"fmt"

	"github.com/constellation-run/constellation/compile"
	"github.com/constellation-run/constellation/module"
	"github.com/constellation-run/constellation/synthetic"
	"github.com/constellation-run/constellation/types"
)

// syntheticEvaluator builds the module.Evaluator backing a synthetic
// transform's resolved arguments (spec.md §4.4). Higher-order ops and
// match are handled directly in runModule/evalMatch since they need the
// compiled module node's Lambda/MatchArms, not just a flat args map.
func syntheticEvaluator(name string) module.Evaluator {
	return func(_ context.Context, args map[string]types.Value) (types.Value, error) {
		switch name {
		case compile.SynMerge:
			return synthetic.Merge(name, args["a"], args["b"])
		case compile.SynCond:
			test, _ := args["test"].AsBool()
			return synthetic.Cond(test, args["then"], args["else"]), nil
		case compile.SynGuard:
			cond, _ := args["cond"].AsBool()
			return synthetic.Guard(args["src"], cond), nil
		case compile.SynCoalesce:
			return synthetic.Coalesce(args["a"], args["b"]), nil
		case compile.SynAnd:
			a, _ := args["a"].AsBool()
			b, _ := args["b"].AsBool()
			return types.NewBool(synthetic.And(a, b)), nil
		case compile.SynOr:
			a, _ := args["a"].AsBool()
			b, _ := args["b"].AsBool()
			return types.NewBool(synthetic.Or(a, b)), nil
		case compile.SynNot:
			x, _ := args["x"].AsBool()
			return types.NewBool(synthetic.Not(x)), nil
		default:
			return types.Value{}, fmt.Errorf("runtime: unknown synthetic module %q", name)
		}
	}
}

// syntheticEvaluatorWithNode builds the evaluator for synthetic modules
// whose computation needs static data carried on the compiled module
// node rather than a wired argument ($project's field list, $field's
// field name).
func syntheticEvaluatorWithNode(mn *compile.ModuleNode) module.Evaluator {
	switch mn.Module {
	case compile.SynProject:
		fields := mn.ProjectFields
		return func(_ context.Context, args map[string]types.Value) (types.Value, error) {
			return synthetic.Project(args["src"], fields), nil
		}
	case compile.SynField:
		name := mn.FieldName
		return func(_ context.Context, args map[string]types.Value) (types.Value, error) {
			return synthetic.Field(args["src"], name)
		}
	default:
		return syntheticEvaluator(mn.Module)
	}
}
