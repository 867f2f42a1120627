package stdlib

import (
	"fmt"
	"strings"

	"github.com/soplang/soplang/pkg/diagnostics"
	"github.com/soplang/soplang/pkg/evaluator"
)

// RegisterDefaults adds all builtins, list methods and object methods.
func RegisterDefaults(r *Registry) {
	// I/O
	r.Register(evaluator.Builtin{Name: "qor", Execute: stdlibPrint}, "bandhig")
	r.Register(evaluator.Builtin{Name: "akhri", Execute: stdlibRead}, "gelin")

	// Types and conversion
	r.Register(evaluator.Builtin{Name: "nooc", Execute: stdlibType})
	r.Register(evaluator.Builtin{Name: "tiro", Execute: stdlibInt})
	r.Register(evaluator.Builtin{Name: "jajab", Execute: stdlibFloat})
	r.Register(evaluator.Builtin{Name: "qoraal", Execute: stdlibString})
	r.Register(evaluator.Builtin{Name: "bool", Execute: stdlibBool}, "labadaran")
	r.Register(evaluator.Builtin{Name: "liis", Execute: stdlibList})
	r.Register(evaluator.Builtin{Name: "shey", Execute: stdlibObject}, "walax")
	r.Register(evaluator.Builtin{Name: "dherer", Execute: stdlibLen})

	// List methods
	r.RegisterListMethod(evaluator.Method{Name: "push", Execute: listPush}, "ku_dar_dhamaad")
	r.RegisterListMethod(evaluator.Method{Name: "pop", Execute: listPop}, "kasaar")
	r.RegisterListMethod(evaluator.Method{Name: "length", Execute: listLength}, "dherer")
	r.RegisterListMethod(evaluator.Method{Name: "concat", Execute: listConcat}, "kudar")
	r.RegisterListMethod(evaluator.Method{Name: "contains", Execute: listContains}, "leeyahay")
	r.RegisterListMethod(evaluator.Method{Name: "copy", Execute: listCopy}, "nuqul")
	r.RegisterListMethod(evaluator.Method{Name: "clear", Execute: listClear}, "nadiifi")
	r.RegisterListMethod(evaluator.Method{Name: "reverse", Execute: listReverse}, "rog")
	r.RegisterListMethod(evaluator.Method{Name: "sort", Execute: listSort}, "habee")
	r.RegisterListMethod(evaluator.Method{Name: "filter", Execute: listFilter}, "shaandhee")
	r.RegisterListMethod(evaluator.Method{Name: "slice", Execute: listSlice}, "jar")
	r.RegisterListMethod(evaluator.Method{Name: "map", Execute: listMap}, "khariidad")
	r.RegisterListMethod(evaluator.Method{Name: "find_index", Execute: listFindIndex}, "hel_index")
	r.RegisterListMethod(evaluator.Method{Name: "get", Execute: listGet})
	r.RegisterListMethod(evaluator.Method{Name: "set", Execute: listSet})

	// Object methods
	r.RegisterObjectMethod(evaluator.Method{Name: "keys", Execute: objectKeys}, "fure")
	r.RegisterObjectMethod(evaluator.Method{Name: "values", Execute: objectValues}, "qiimaha")
	r.RegisterObjectMethod(evaluator.Method{Name: "has", Execute: objectHas}, "leeyahay")
	r.RegisterObjectMethod(evaluator.Method{Name: "remove", Execute: objectRemove}, "tirtir")
	r.RegisterObjectMethod(evaluator.Method{Name: "merge", Execute: objectMerge}, "kudar")
	r.RegisterObjectMethod(evaluator.Method{Name: "get", Execute: objectGet})
	r.RegisterObjectMethod(evaluator.Method{Name: "set", Execute: objectSet})
}

// qor(args...) writes the arguments separated by spaces and a newline.
func stdlibPrint(c *evaluator.CallContext, args []evaluator.Value) (evaluator.Value, error) {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = evaluator.Stringify(a)
	}
	if _, err := fmt.Fprintln(c.Stdout(), strings.Join(parts, " ")); err != nil {
		return nil, evaluator.NewError(diagnostics.EIO, nil, diagnostics.Args{"detail": err.Error()})
	}
	return evaluator.NewNull(), nil
}

// akhri(prompt?) reads one line and returns it as text.
func stdlibRead(c *evaluator.CallContext, args []evaluator.Value) (evaluator.Value, error) {
	prompt := ""
	if len(args) > 0 {
		prompt = evaluator.Stringify(args[0])
	}
	line, err := c.ReadLine(prompt)
	if err != nil {
		return nil, err
	}
	return evaluator.NewString(line), nil
}

// --- argument helpers ---

func arg(args []evaluator.Value, i int) evaluator.Value {
	if i < len(args) {
		return args[i]
	}
	return evaluator.NewNull()
}

func wantArgs(c *evaluator.CallContext, args []evaluator.Value, n int) error {
	if len(args) < n {
		return evaluator.NewError(diagnostics.EMissingArgument, nil, diagnostics.Args{
			"func_name": c.Name,
			"expected":  n,
			"provided":  len(args),
		})
	}
	return nil
}

func argTypeError(c *evaluator.CallContext, expected string) error {
	return evaluator.NewError(diagnostics.EArgType, nil, diagnostics.Args{"func": c.Name, "expected": expected})
}
